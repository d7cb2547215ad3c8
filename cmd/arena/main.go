package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GizzZmo/Arena/internal/arena"
	"github.com/GizzZmo/Arena/internal/config"
	"github.com/GizzZmo/Arena/internal/engine"
	"github.com/GizzZmo/Arena/internal/obslog"
	"github.com/GizzZmo/Arena/internal/oracle"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "arena:", err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "arena",
		Short: "pit a UCI chess engine against a generative model",
		Long: heredoc.Doc(`
			Arena plays full chess games between a UCI engine (White) and a
			generative text model (Black), and appends every finished game to
			a PGN file for training-data collection.

			The model is prompted with the position and the full legal-move
			list each turn; illegal or malformed replies are retried with
			corrective feedback, then replaced by a random legal move.
		`),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(playCommand())
	return root
}

func playCommand() *cobra.Command {
	var (
		games      int
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "play games and append them to the training log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if games > 0 {
				cfg.GamesPerSession = games
			}

			if err := obslog.InitFromEnv(); err != nil {
				return fmt.Errorf("init logging: %w", err)
			}
			logger := obslog.L()
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runSession(ctx, cfg, logger)
		},
	}

	cmd.Flags().IntVar(&games, "games", 0, "number of games to play (overrides GAMES_PER_SESSION)")
	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file (overrides ARENA_CONFIG)")
	return cmd
}

func loadConfig(path string) (*config.AppConfig, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func runSession(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) error {
	client := oracle.NewClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel,
		oracle.WithTimeout(time.Duration(cfg.OracleTimeoutMS)*time.Millisecond),
	)

	writer := arena.NewRecordWriter(
		cfg.PGNPath(),
		cfg.EventName,
		fmt.Sprintf("Stockfish Level %d", cfg.EngineSkillLevel),
		client.Model(),
		logger,
	)

	logger.Info("session starting",
		zap.Int("games", cfg.GamesPerSession),
		zap.String("engine", cfg.StockfishPath),
		zap.Int("skill_level", cfg.EngineSkillLevel),
		zap.String("model", cfg.GeminiModel),
		zap.String("output", cfg.PGNPath()),
	)

	for i := 1; i <= cfg.GamesPerSession; i++ {
		if err := playGame(ctx, cfg, client, writer, logger, i); err != nil {
			return fmt.Errorf("game %d: %w", i, err)
		}
	}
	return nil
}

// playGame starts a fresh engine process per game so a crashed or wedged
// engine cannot poison subsequent games.
func playGame(ctx context.Context, cfg *config.AppConfig, client *oracle.Client, writer *arena.RecordWriter, logger *zap.Logger, n int) error {
	eng, err := engine.New(ctx, engine.Config{
		BinaryPath:     cfg.StockfishPath,
		SkillLevel:     cfg.EngineSkillLevel,
		Threads:        cfg.EngineThreads,
		HashMB:         cfg.EngineHashMB,
		MoveTimeMillis: cfg.EngineMoveTimeMS,
	}, logger)
	if err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	defer func() { _ = eng.Close() }()

	acquirer := arena.NewAcquirer(client, arena.AcquirerConfig{
		MaxAttempts:    cfg.OracleMaxAttempts,
		AttemptTimeout: time.Duration(cfg.OracleTimeoutMS) * time.Millisecond,
	}, logger)

	res, err := arena.NewSession(eng, acquirer, logger).Run(ctx)
	if err != nil {
		return err
	}

	rec, err := writer.Write(res)
	if err != nil {
		return fmt.Errorf("record game: %w", err)
	}

	logger.Info("game saved",
		zap.Int("game", n),
		zap.String("game_id", rec.GameID),
		zap.Int("plies", rec.PlyCount),
		zap.String("termination", rec.Termination),
	)
	return nil
}
