package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration shared by the lightson commands.
// Command flags may override individual fields after Load.
type Config struct {
	Addr              string        `env:"LIGHTSON_ADDR" envDefault:":8080"`
	Storage           string        `env:"LIGHTSON_STORAGE" envDefault:"fs"`
	PersistPath       string        `env:"LIGHTSON_PERSIST_PATH" envDefault:"./data"`
	SQLitePath        string        `env:"LIGHTSON_SQLITE_PATH" envDefault:"./data/lightson.db"`
	LogLevel          string        `env:"LIGHTSON_LOG_LEVEL" envDefault:"info"`
	Solver            string        `env:"LIGHTSON_SOLVER" envDefault:"linear"`
	BoardSize         int           `env:"LIGHTSON_BOARD_SIZE" envDefault:"5"`
	ToggleProbability float64       `env:"LIGHTSON_TOGGLE_PROBABILITY" envDefault:"0.25"`
	SessionTTL        time.Duration `env:"LIGHTSON_SESSION_TTL" envDefault:"30m"`
	OTelEndpoint      string        `env:"LIGHTSON_OTEL_ENDPOINT"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadDotEnv loads path into the environment if it exists. Variables that
// are already set win over the file.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads LIGHTSON_ENV_FILE (default ".env") and then the environment.
func Load() (Config, error) {
	path, ok := os.LookupEnv("LIGHTSON_ENV_FILE")
	if !ok {
		path = ".env"
	}
	if err := LoadDotEnv(path); err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseLevel maps debug|info|warn|error to a slog level; anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
