package arena

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/corentings/chess/v2"
	"go.uber.org/zap"
)

// RecordWriter appends finished games to a single PGN file. Each record is
// written with one Write call so concurrent runs never interleave records.
type RecordWriter struct {
	path   string
	event  string
	white  string
	black  string
	logger *zap.Logger
}

// GameRecord is one serialized training example.
type GameRecord struct {
	GameID      string
	PGN         string
	PlyCount    int
	Duration    time.Duration
	Termination string
}

func NewRecordWriter(path, event, white, black string, logger *zap.Logger) *RecordWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordWriter{
		path:   path,
		event:  event,
		white:  white,
		black:  black,
		logger: logger,
	}
}

// Write builds the PGN record for a finished game and appends it to the log.
func (w *RecordWriter) Write(res *Result) (*GameRecord, error) {
	if res == nil || res.Game == nil {
		return nil, fmt.Errorf("nil game result")
	}
	if res.Game.Outcome() == chess.NoOutcome {
		return nil, fmt.Errorf("refusing to record unfinished game %s", res.ID)
	}

	rec := w.buildRecord(res)

	if dir := filepath.Dir(w.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open pgn file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(rec.PGN + "\n\n"); err != nil {
		return nil, fmt.Errorf("append pgn record: %w", err)
	}

	w.logger.Info("game recorded",
		zap.String("game_id", rec.GameID),
		zap.String("file", w.path),
		zap.Int("plies", rec.PlyCount),
		zap.String("termination", rec.Termination),
	)
	return rec, nil
}

func (w *RecordWriter) buildRecord(res *Result) *GameRecord {
	game := res.Game
	duration := res.EndedAt.Sub(res.StartedAt).Round(time.Millisecond)
	termination := strings.ToLower(game.Method().String())

	game.AddTagPair("Event", w.event)
	game.AddTagPair("Site", "Arena")
	game.AddTagPair("Date", res.StartedAt.Format("2006.01.02"))
	game.AddTagPair("White", w.white)
	game.AddTagPair("Black", w.black)
	game.AddTagPair("Result", game.Outcome().String())
	game.AddTagPair("PlyCount", strconv.Itoa(len(res.MovesUCI)))
	game.AddTagPair("GameDuration", duration.String())
	game.AddTagPair("Termination", termination)
	game.AddTagPair("SessionID", res.ID)
	game.AddTagPair("FallbackMoves", strconv.Itoa(res.Fallbacks))

	return &GameRecord{
		GameID:      res.ID,
		PGN:         strings.TrimSpace(game.String()),
		PlyCount:    len(res.MovesUCI),
		Duration:    duration,
		Termination: termination,
	}
}
