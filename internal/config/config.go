package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Data source modes
const (
	SourceCSV    = "csv"
	SourceFeed   = "feed"
	SourceRemote = "remote"
	SourceMock   = "mock"
)

// Config holds all configuration for the dashboard service
type Config struct {
	// Server configuration
	Port string `env:"PORT,default=8990"`

	// Dashboard layout and records
	LayoutPath string        `env:"LAYOUT_PATH,default=./layout.json"`
	DataSource string        `env:"DATA_SOURCE,default=csv"`
	DataPath   string        `env:"DATA_PATH"`
	FeedURL    string        `env:"FEED_URL"`
	RemoteURL  string        `env:"REMOTE_URL"`
	MocksDir   string        `env:"MOCKS_DIR,default=./mocks"`
	EventDelay time.Duration `env:"EVENT_DELAY,default=0s"`

	// Filter snapshot storage
	StorageMode string `env:"STORAGE_MODE,default=local"`
	SnapshotDir string `env:"SNAPSHOT_DIR,default=./snapshots"`
	GCSBucket   string `env:"GCS_BUCKET"`

	// Service configuration
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	LogFormat   string `env:"LOG_FORMAT,default=auto"`
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings each mode depends on
func (c *Config) Validate() error {
	switch c.DataSource {
	case SourceCSV:
		if c.DataPath == "" {
			return fmt.Errorf("DATA_PATH is required when DATA_SOURCE=%s", c.DataSource)
		}
	case SourceFeed:
		if c.FeedURL == "" {
			return fmt.Errorf("FEED_URL is required when DATA_SOURCE=%s", c.DataSource)
		}
	case SourceRemote:
		if c.RemoteURL == "" {
			return fmt.Errorf("REMOTE_URL is required when DATA_SOURCE=%s", c.DataSource)
		}
	case SourceMock:
	default:
		return fmt.Errorf("unsupported DATA_SOURCE: %q", c.DataSource)
	}

	switch c.StorageMode {
	case "local":
	case "gcs":
		if c.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required when STORAGE_MODE=gcs")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_MODE: %q", c.StorageMode)
	}

	if c.EventDelay < 0 {
		return fmt.Errorf("EVENT_DELAY must not be negative, got %s", c.EventDelay)
	}
	return nil
}
