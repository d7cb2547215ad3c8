package arena

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/corentings/chess/v2"
	"go.uber.org/zap"
)

// Oracle produces freeform text for a prompt. Replies are untrusted.
type Oracle interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var uciMovePattern = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][qrbn]?$`)

// Acquirer turns oracle replies into legal moves. Every call recomputes the
// legal-move set from the live game; a stale set is never reused. When the
// attempt budget runs out it falls back to a uniformly random legal move, so
// a successful call always yields a playable move.
type Acquirer struct {
	oracle         Oracle
	maxAttempts    int
	attemptTimeout time.Duration
	rng            *rand.Rand
	logger         *zap.Logger
}

type AcquirerConfig struct {
	MaxAttempts    int
	AttemptTimeout time.Duration
}

func NewAcquirer(oracle Oracle, cfg AcquirerConfig, logger *zap.Logger) *Acquirer {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Acquirer{
		oracle:         oracle,
		maxAttempts:    cfg.MaxAttempts,
		attemptTimeout: cfg.AttemptTimeout,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:         logger,
	}
}

// SeedFallback replaces the fallback random source, for reproducible runs.
func (a *Acquirer) SeedFallback(seed int64) {
	a.rng = rand.New(rand.NewSource(seed))
}

// attemptOutcome is the explicit result of one oracle round trip: either an
// accepted move, or a feedback note describing the rejection.
type attemptOutcome struct {
	move     *chess.Move
	moveText string
	feedback string
}

// Acquire asks the oracle for one move in the current position. The returned
// bool reports whether the random fallback was used. Feedback from rejected
// attempts accumulates in the prompt within this call only.
func (a *Acquirer) Acquire(ctx context.Context, game *chess.Game) (*chess.Move, bool, error) {
	pos := game.Position()
	legal := game.ValidMoves()
	if len(legal) == 0 {
		return nil, false, fmt.Errorf("no legal moves in position %s", game.FEN())
	}

	notation := chess.UCINotation{}
	legalUCI := make([]string, len(legal))
	byUCI := make(map[string]*chess.Move, len(legal))
	for i := range legal {
		text := strings.ToLower(notation.Encode(pos, &legal[i]))
		legalUCI[i] = text
		byUCI[text] = &legal[i]
	}

	base := buildPrompt(pos.Turn().String(), game.FEN(), legalUCI)

	var notes []string
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		out := a.attempt(ctx, promptWithFeedback(base, notes), byUCI)
		if out.move != nil {
			a.logger.Info("oracle move accepted",
				zap.String("move", out.moveText),
				zap.Int("attempt", attempt),
			)
			return out.move, false, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		a.logger.Info("oracle move rejected",
			zap.Int("attempt", attempt),
			zap.String("reply", out.moveText),
			zap.String("reason", out.feedback),
		)
		notes = append(notes, out.feedback)
	}

	fallback := &legal[a.rng.Intn(len(legal))]
	fallbackText := strings.ToLower(notation.Encode(pos, fallback))
	a.logger.Warn("oracle attempts exhausted, playing random legal move",
		zap.String("move", fallbackText),
		zap.Int("attempts", a.maxAttempts),
	)
	return fallback, true, nil
}

func (a *Acquirer) attempt(ctx context.Context, prompt string, byUCI map[string]*chess.Move) attemptOutcome {
	callCtx, cancel := context.WithTimeout(ctx, a.attemptTimeout)
	defer cancel()

	raw, err := a.oracle.Generate(callCtx, prompt)
	if err != nil {
		return attemptOutcome{
			feedback: fmt.Sprintf("ERROR: the previous request failed (%v). Reply ONLY with the move in UCI format (e.g., e7e5).", err),
		}
	}

	moveText := strings.ToLower(normalizeReply(raw))
	if !uciMovePattern.MatchString(moveText) {
		return attemptOutcome{
			moveText: moveText,
			feedback: fmt.Sprintf("ERROR: %q is not valid UCI notation. Reply ONLY with the move in UCI format (e.g., e7e5).", moveText),
		}
	}

	mv, ok := byUCI[moveText]
	if !ok {
		return attemptOutcome{
			moveText: moveText,
			feedback: fmt.Sprintf("ERROR: %s is not a legal move in this position. Choose strictly from the provided list.", moveText),
		}
	}
	return attemptOutcome{move: mv, moveText: moveText}
}
