package arena

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/corentings/chess/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EngineMover is the deterministic side of a game. A failure here aborts the
// game: no move may ever be substituted for the engine.
type EngineMover interface {
	Play(ctx context.Context, moves []string) (string, error)
}

// MoveAcquirer is the generative side. It always resolves to a legal move or
// an error; the bool reports whether a random fallback was played.
type MoveAcquirer interface {
	Acquire(ctx context.Context, game *chess.Game) (*chess.Move, bool, error)
}

// Session drives a single game: engine as White, acquirer as Black,
// alternating until the game reaches a terminal outcome.
type Session struct {
	engine    EngineMover
	acquirer  MoveAcquirer
	logger    *zap.Logger
	showBoard bool
}

// Result captures one finished game for the record writer.
type Result struct {
	ID        string
	Game      *chess.Game
	MovesUCI  []string
	Fallbacks int
	StartedAt time.Time
	EndedAt   time.Time
}

func NewSession(engine EngineMover, acquirer MoveAcquirer, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		engine:    engine,
		acquirer:  acquirer,
		logger:    logger,
		showBoard: logger.Core().Enabled(zap.DebugLevel),
	}
}

// Run plays one full game. An engine failure returns an error with no result;
// partially played games are never recorded.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	game := chess.NewGame()
	res := &Result{
		ID:        uuid.NewString(),
		Game:      game,
		StartedAt: time.Now(),
	}
	notation := chess.UCINotation{}

	s.logger.Info("game started", zap.String("game_id", res.ID))

	for game.Outcome() == chess.NoOutcome {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pos := game.Position()
		if pos.Turn() == chess.White {
			moveText, err := s.engine.Play(ctx, res.MovesUCI)
			if err != nil {
				return nil, fmt.Errorf("engine move at ply %d: %w", len(res.MovesUCI)+1, err)
			}
			mv, err := notation.Decode(pos, moveText)
			if err != nil {
				return nil, fmt.Errorf("decode engine move %q: %w", moveText, err)
			}
			if err := game.Move(mv, nil); err != nil {
				return nil, fmt.Errorf("apply engine move %q: %w", moveText, err)
			}
			res.MovesUCI = append(res.MovesUCI, strings.ToLower(notation.Encode(pos, mv)))
		} else {
			mv, fellBack, err := s.acquirer.Acquire(ctx, game)
			if err != nil {
				return nil, fmt.Errorf("acquire move at ply %d: %w", len(res.MovesUCI)+1, err)
			}
			moveText := strings.ToLower(notation.Encode(pos, mv))
			if err := game.Move(mv, nil); err != nil {
				return nil, fmt.Errorf("apply oracle move %q: %w", moveText, err)
			}
			if fellBack {
				res.Fallbacks++
			}
			res.MovesUCI = append(res.MovesUCI, moveText)
		}

		if s.showBoard {
			s.logger.Debug("position",
				zap.Int("ply", len(res.MovesUCI)),
				zap.String("board", "\n"+game.Position().Board().Draw()),
			)
		}
	}

	res.EndedAt = time.Now()
	s.logger.Info("game finished",
		zap.String("game_id", res.ID),
		zap.String("result", game.Outcome().String()),
		zap.String("method", game.Method().String()),
		zap.Int("plies", len(res.MovesUCI)),
		zap.Int("fallbacks", res.Fallbacks),
		zap.Duration("duration", res.EndedAt.Sub(res.StartedAt)),
	)
	return res, nil
}
