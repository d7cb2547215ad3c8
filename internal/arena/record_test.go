package arena

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func finishedResult(t *testing.T) *Result {
	t.Helper()
	game := gameAfter(t, "f2f3", "e7e5", "g2g4", "d8h4")
	start := time.Now().Add(-3 * time.Second)
	return &Result{
		ID:        uuid.NewString(),
		Game:      game,
		MovesUCI:  []string{"f2f3", "e7e5", "g2g4", "d8h4"},
		StartedAt: start,
		EndedAt:   start.Add(3 * time.Second),
	}
}

func TestRecordWriterAppendsTaggedPGN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "training_data.pgn")
	w := NewRecordWriter(path, "Cyberchess Dojo", "Stockfish Level 5", "gemini-1.5-flash", nil)

	res := finishedResult(t)
	rec, err := w.Write(res)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if rec.PlyCount != 4 {
		t.Fatalf("expected 4 plies, got %d", rec.PlyCount)
	}
	if rec.Termination != "checkmate" {
		t.Fatalf("expected checkmate termination, got %s", rec.Termination)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read pgn: %v", err)
	}
	pgn := string(raw)
	for _, want := range []string{
		`[Event "Cyberchess Dojo"]`,
		`[White "Stockfish Level 5"]`,
		`[Black "gemini-1.5-flash"]`,
		`[Result "0-1"]`,
		`[PlyCount "4"]`,
		`[Termination "checkmate"]`,
		`[SessionID "` + res.ID + `"]`,
		"0-1",
	} {
		if !strings.Contains(pgn, want) {
			t.Fatalf("pgn missing %s:\n%s", want, pgn)
		}
	}
}

func TestRecordWriterAccumulatesGames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "training_data.pgn")
	w := NewRecordWriter(path, "Cyberchess Dojo", "Stockfish Level 5", "gemini-1.5-flash", nil)

	first := finishedResult(t)
	second := finishedResult(t)
	if _, err := w.Write(first); err != nil {
		t.Fatalf("first Write: %v", err)
	}
	if _, err := w.Write(second); err != nil {
		t.Fatalf("second Write: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read pgn: %v", err)
	}
	pgn := string(raw)
	if got := strings.Count(pgn, `[Event "Cyberchess Dojo"]`); got != 2 {
		t.Fatalf("expected 2 records, found %d", got)
	}
	if strings.Index(pgn, first.ID) > strings.Index(pgn, second.ID) {
		t.Fatalf("records out of order")
	}
}

func TestRecordWriterRejectsUnfinishedGame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "training_data.pgn")
	w := NewRecordWriter(path, "e", "w", "b", nil)

	res := &Result{
		ID:        uuid.NewString(),
		Game:      gameAfter(t, "e2e4"),
		MovesUCI:  []string{"e2e4"},
		StartedAt: time.Now(),
		EndedAt:   time.Now(),
	}
	if _, err := w.Write(res); err == nil {
		t.Fatalf("expected error for unfinished game")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("no file should be created for a rejected record")
	}
}

func TestRecordWriterReportsOpenFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	// Parent "directory" is a regular file, so the append must fail.
	w := NewRecordWriter(filepath.Join(blocker, "training_data.pgn"), "e", "w", "b", nil)
	if _, err := w.Write(finishedResult(t)); err == nil {
		t.Fatalf("expected error when output path is unwritable")
	}
}
