package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("STOCKFISH_PATH", "/usr/bin/stockfish")
	t.Setenv("GEMINI_API_KEY", "test-key")
	// Empty values are ignored by the loader, so these pin the defaults even
	// when the host environment has them set.
	for _, key := range []string{
		"ARENA_CONFIG", "GEMINI_MODEL", "ENGINE_SKILL_LEVEL", "ENGINE_MOVE_TIME_MS",
		"ORACLE_MAX_ATTEMPTS", "GAMES_PER_SESSION", "OUTPUT_DIR", "PGN_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GeminiModel != "gemini-1.5-flash" {
		t.Fatalf("unexpected default model: %s", cfg.GeminiModel)
	}
	if cfg.EngineSkillLevel != 5 || cfg.OracleMaxAttempts != 3 || cfg.GamesPerSession != 1 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !strings.HasSuffix(cfg.PGNPath(), filepath.Join("cyberchess", "training_data.pgn")) {
		t.Fatalf("unexpected pgn path: %s", cfg.PGNPath())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ENGINE_SKILL_LEVEL", "12")
	t.Setenv("ORACLE_MAX_ATTEMPTS", "5")
	t.Setenv("GEMINI_MODEL", "gemini-1.5-pro")
	t.Setenv("OUTPUT_DIR", "/tmp/arena-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EngineSkillLevel != 12 || cfg.OracleMaxAttempts != 5 {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.PGNPath() != filepath.Join("/tmp/arena-test", "training_data.pgn") {
		t.Fatalf("unexpected pgn path: %s", cfg.PGNPath())
	}
	if cfg.GeminiModel != "gemini-1.5-pro" {
		t.Fatalf("unexpected model: %s", cfg.GeminiModel)
	}
}

func TestLoadFileThenEnvWins(t *testing.T) {
	setRequired(t)
	t.Setenv("ENGINE_MOVE_TIME_MS", "250")

	path := filepath.Join(t.TempDir(), "arena.yaml")
	data := "engine_move_time_ms: 999\nevent_name: File Event\ngames_per_session: 4\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.EventName != "File Event" || cfg.GamesPerSession != 4 {
		t.Fatalf("yaml values not applied: %+v", cfg)
	}
	if cfg.EngineMoveTimeMS != 250 {
		t.Fatalf("env should override yaml, got %d", cfg.EngineMoveTimeMS)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("GEMINI_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when GEMINI_API_KEY is missing")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	setRequired(t)
	t.Setenv("ENGINE_SKILL_LEVEL", "25")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for skill level out of range")
	}
}
