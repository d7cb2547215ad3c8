package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	StockfishPath string `yaml:"stockfish_path"`

	GeminiAPIKey  string `yaml:"gemini_api_key"`
	GeminiModel   string `yaml:"gemini_model"`
	GeminiBaseURL string `yaml:"gemini_base_url"`

	OracleTimeoutMS   int `yaml:"oracle_timeout_ms"`
	OracleMaxAttempts int `yaml:"oracle_max_attempts"`

	EngineSkillLevel int `yaml:"engine_skill_level"`
	EngineMoveTimeMS int `yaml:"engine_move_time_ms"`
	EngineThreads    int `yaml:"engine_threads"`
	EngineHashMB     int `yaml:"engine_hash_mb"`

	GamesPerSession int `yaml:"games_per_session"`

	OutputDir string `yaml:"output_dir"`
	PGNFile   string `yaml:"pgn_file"`
	EventName string `yaml:"event_name"`
}

func defaults() *AppConfig {
	return &AppConfig{
		GeminiModel:       "gemini-1.5-flash",
		GeminiBaseURL:     "https://generativelanguage.googleapis.com",
		OracleTimeoutMS:   30000,
		OracleMaxAttempts: 3,
		EngineSkillLevel:  5,
		EngineMoveTimeMS:  100,
		EngineThreads:     1,
		EngineHashMB:      64,
		GamesPerSession:   1,
		OutputDir:         filepath.Join(xdg.DataHome, "cyberchess"),
		PGNFile:           "training_data.pgn",
		EventName:         "Cyberchess Dojo",
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// ARENA_CONFIG, and finally the environment. Environment values win.
func Load() (*AppConfig, error) {
	return LoadFile(strings.TrimSpace(os.Getenv("ARENA_CONFIG")))
}

func LoadFile(path string) (*AppConfig, error) {
	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	setString(&cfg.StockfishPath, "STOCKFISH_PATH")
	setString(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&cfg.GeminiModel, "GEMINI_MODEL")
	setString(&cfg.GeminiBaseURL, "GEMINI_BASE_URL")

	setInt(&cfg.OracleTimeoutMS, "ORACLE_TIMEOUT_MS")
	setInt(&cfg.OracleMaxAttempts, "ORACLE_MAX_ATTEMPTS")

	setInt(&cfg.EngineSkillLevel, "ENGINE_SKILL_LEVEL")
	setInt(&cfg.EngineMoveTimeMS, "ENGINE_MOVE_TIME_MS")
	setInt(&cfg.EngineThreads, "ENGINE_THREADS")
	setInt(&cfg.EngineHashMB, "ENGINE_HASH_MB")

	setInt(&cfg.GamesPerSession, "GAMES_PER_SESSION")

	setString(&cfg.OutputDir, "OUTPUT_DIR")
	setString(&cfg.PGNFile, "PGN_FILE")
	setString(&cfg.EventName, "EVENT_NAME")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func (c *AppConfig) validate() error {
	if strings.TrimSpace(c.StockfishPath) == "" {
		return errors.New("STOCKFISH_PATH is required")
	}
	if strings.TrimSpace(c.GeminiAPIKey) == "" {
		return errors.New("GEMINI_API_KEY is required")
	}
	if c.EngineSkillLevel < 0 || c.EngineSkillLevel > 20 {
		return fmt.Errorf("engine skill level %d out of range 0-20", c.EngineSkillLevel)
	}
	if c.EngineMoveTimeMS <= 0 {
		return fmt.Errorf("engine move time must be > 0: %d", c.EngineMoveTimeMS)
	}
	if c.EngineThreads <= 0 {
		return fmt.Errorf("engine threads must be > 0: %d", c.EngineThreads)
	}
	if c.EngineHashMB <= 0 {
		return fmt.Errorf("engine hash size must be > 0: %d", c.EngineHashMB)
	}
	if c.OracleMaxAttempts <= 0 {
		return fmt.Errorf("oracle max attempts must be > 0: %d", c.OracleMaxAttempts)
	}
	if c.OracleTimeoutMS <= 0 {
		return fmt.Errorf("oracle timeout must be > 0: %d", c.OracleTimeoutMS)
	}
	if c.GamesPerSession <= 0 {
		return fmt.Errorf("games per session must be > 0: %d", c.GamesPerSession)
	}
	if strings.TrimSpace(c.PGNFile) == "" {
		return errors.New("pgn file name must not be empty")
	}
	return nil
}

// PGNPath is the aggregated training log location.
func (c *AppConfig) PGNPath() string {
	return filepath.Join(c.OutputDir, c.PGNFile)
}
