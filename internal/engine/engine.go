package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/GizzZmo/Arena/internal/uci"
	"go.uber.org/zap"
)

// Engine is the deterministic move source. One subprocess is launched per
// game and must be closed on every exit path.
type Engine struct {
	session *uci.Session
	limits  uci.Limits
	skill   int
	logger  *zap.Logger
}

type Config struct {
	BinaryPath     string
	SkillLevel     int
	Threads        int
	HashMB         int
	MoveTimeMillis int
}

func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Engine, error) {
	if strings.TrimSpace(cfg.BinaryPath) == "" {
		return nil, fmt.Errorf("engine binary path is required")
	}
	if cfg.MoveTimeMillis <= 0 {
		return nil, fmt.Errorf("engine move time must be > 0: %d", cfg.MoveTimeMillis)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	session, err := uci.NewSession(ctx, cfg.BinaryPath, uci.Options{
		Threads:    cfg.Threads,
		SkillLevel: cfg.SkillLevel,
		HashMB:     cfg.HashMB,
	})
	if err != nil {
		return nil, fmt.Errorf("start uci session: %w", err)
	}

	if err := session.NewGame(ctx); err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("new game handshake: %w", err)
	}

	return &Engine{
		session: session,
		limits:  uci.Limits{MoveTimeMillis: cfg.MoveTimeMillis},
		skill:   cfg.SkillLevel,
		logger:  logger,
	}, nil
}

// Play asks the engine for one move from the start position after the given
// UCI move history. Any failure here is fatal to the current game; the caller
// must never substitute a move for the engine side.
func (e *Engine) Play(ctx context.Context, moves []string) (string, error) {
	start := time.Now()
	best, err := e.session.BestMove(ctx, uci.SearchRequest{
		FEN:    "startpos",
		Moves:  moves,
		Limits: e.limits,
	})
	if err != nil {
		return "", fmt.Errorf("engine search: %w", err)
	}

	e.logger.Debug("engine move",
		zap.String("move", best),
		zap.Int("ply", len(moves)+1),
		zap.Duration("duration", time.Since(start)),
	)
	return best, nil
}

// SkillLevel reports the configured difficulty, used for record labels.
func (e *Engine) SkillLevel() int { return e.skill }

func (e *Engine) Close() error {
	if e.session == nil {
		return nil
	}
	return e.session.Close()
}
