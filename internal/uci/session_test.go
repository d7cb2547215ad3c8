package uci

import (
	"testing"
	"time"
)

func TestBuildPositionCommand(t *testing.T) {
	cases := []struct {
		fen   string
		moves []string
		want  string
	}{
		{"startpos", nil, "position startpos\n"},
		{"", nil, "position startpos\n"},
		{"startpos", []string{"e2e4", "e7e5"}, "position startpos moves e2e4 e7e5\n"},
		{
			"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			[]string{"g1f3"},
			"position fen rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1 moves g1f3\n",
		},
	}
	for _, c := range cases {
		if got := buildPositionCommand(c.fen, c.moves); got != c.want {
			t.Fatalf("buildPositionCommand(%q, %v) = %q, want %q", c.fen, c.moves, got, c.want)
		}
	}
}

func TestValidateOptions(t *testing.T) {
	if err := validateOptions(Options{SkillLevel: 5, HashMB: 64}); err != nil {
		t.Fatalf("valid options rejected: %v", err)
	}
	if err := validateOptions(Options{SkillLevel: 21, HashMB: 64}); err == nil {
		t.Fatalf("expected error for skill level 21")
	}
	if err := validateOptions(Options{SkillLevel: 5, HashMB: 0}); err == nil {
		t.Fatalf("expected error for zero hash")
	}
}

func TestSearchTimeoutAddsBuffer(t *testing.T) {
	got := searchTimeout(Limits{MoveTimeMillis: 100})
	want := 100*time.Millisecond + searchTimeoutBuffer
	if got != want {
		t.Fatalf("searchTimeout = %v, want %v", got, want)
	}
}
