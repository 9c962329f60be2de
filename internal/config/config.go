// Package config loads server configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port          string `env:"PORT" envDefault:"8080"`
	UploadDir     string `env:"UPLOAD_DIR" envDefault:"./uploads"`
	MaxUploadSize int64  `env:"MAX_UPLOAD_SIZE" envDefault:"524288000"`

	DBType         string `env:"DB_TYPE" envDefault:"sqlite"`
	DBHost         string `env:"DB_HOST" envDefault:"localhost"`
	DBPort         int    `env:"DB_PORT" envDefault:"5432"`
	DBUser         string `env:"DB_USER" envDefault:"vidquiz"`
	DBPassword     string `env:"DB_PASSWORD" envDefault:"vidquiz_dev"`
	DBName         string `env:"DB_NAME" envDefault:"vidquiz"`
	DBPath         string `env:"DB_PATH" envDefault:"./vidquiz.db"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"./migrations"`

	SegmentWindow   float64       `env:"SEGMENT_WINDOW_SECONDS" envDefault:"300"`
	StageTimeout    time.Duration `env:"STAGE_TIMEOUT" envDefault:"10m"`
	DefaultDuration float64       `env:"DEFAULT_DURATION_SECONDS" envDefault:"600"`

	// Stub transcription/generation pacing. Zero delay makes the
	// pipeline effectively instantaneous, which tests rely on.
	StubDelay time.Duration `env:"STUB_DELAY" envDefault:"500ms"`
	StubSeed  int64         `env:"STUB_SEED" envDefault:"0"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads .env if present, then parses the environment. Environment
// variables win over .env entries.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if cfg.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_SIZE must be positive, got %d", cfg.MaxUploadSize)
	}
	if cfg.SegmentWindow <= 0 {
		return nil, fmt.Errorf("SEGMENT_WINDOW_SECONDS must be positive, got %g", cfg.SegmentWindow)
	}
	if cfg.DBType != "sqlite" && cfg.DBType != "postgres" {
		return nil, fmt.Errorf("unsupported DB_TYPE %q", cfg.DBType)
	}

	return cfg, nil
}
