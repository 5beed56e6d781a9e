package config

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		envVars     map[string]string
		expectError string
		validate    func(*Config)
	}{
		{
			name: "defaults with a CSV data path",
			envVars: map[string]string{
				"DATA_PATH": "payments.csv",
			},
			validate: func(cfg *Config) {
				if cfg.Port != "8990" {
					t.Errorf("Expected default Port to be '8990', got '%s'", cfg.Port)
				}
				if cfg.DataSource != SourceCSV {
					t.Errorf("Expected default DataSource to be 'csv', got '%s'", cfg.DataSource)
				}
				if cfg.LayoutPath != "./layout.json" {
					t.Errorf("Expected default LayoutPath to be './layout.json', got '%s'", cfg.LayoutPath)
				}
				if cfg.EventDelay != 0 {
					t.Errorf("Expected default EventDelay to be 0, got %s", cfg.EventDelay)
				}
				if cfg.StorageMode != "local" {
					t.Errorf("Expected default StorageMode to be 'local', got '%s'", cfg.StorageMode)
				}
				if cfg.SnapshotDir != "./snapshots" {
					t.Errorf("Expected default SnapshotDir to be './snapshots', got '%s'", cfg.SnapshotDir)
				}
				if cfg.Environment != "development" {
					t.Errorf("Expected default Environment to be 'development', got '%s'", cfg.Environment)
				}
				if cfg.LogFormat != "auto" {
					t.Errorf("Expected default LogFormat to be 'auto', got '%s'", cfg.LogFormat)
				}
			},
		},
		{
			name: "custom configuration values",
			envVars: map[string]string{
				"PORT":         "9000",
				"DATA_SOURCE":  "remote",
				"REMOTE_URL":   "http://engine:8080",
				"EVENT_DELAY":  "250ms",
				"STORAGE_MODE": "gcs",
				"GCS_BUCKET":   "dash-snapshots",
				"LOG_LEVEL":    "debug",
				"LOG_FORMAT":   "json",
				"ENVIRONMENT":  "production",
			},
			validate: func(cfg *Config) {
				if cfg.Port != "9000" {
					t.Errorf("Expected Port to be '9000', got '%s'", cfg.Port)
				}
				if cfg.RemoteURL != "http://engine:8080" {
					t.Errorf("Expected RemoteURL to be 'http://engine:8080', got '%s'", cfg.RemoteURL)
				}
				if cfg.EventDelay != 250*time.Millisecond {
					t.Errorf("Expected EventDelay to be 250ms, got %s", cfg.EventDelay)
				}
				if cfg.GCSBucket != "dash-snapshots" {
					t.Errorf("Expected GCSBucket to be 'dash-snapshots', got '%s'", cfg.GCSBucket)
				}
				if cfg.LogLevel != "debug" {
					t.Errorf("Expected LogLevel to be 'debug', got '%s'", cfg.LogLevel)
				}
			},
		},
		{
			name:     "mock source needs nothing else",
			envVars:  map[string]string{"DATA_SOURCE": "mock"},
			validate: func(cfg *Config) {},
		},
		{
			name:        "csv without a data path",
			envVars:     map[string]string{},
			expectError: "DATA_PATH",
		},
		{
			name:        "feed without a URL",
			envVars:     map[string]string{"DATA_SOURCE": "feed"},
			expectError: "FEED_URL",
		},
		{
			name:        "gcs without a bucket",
			envVars:     map[string]string{"DATA_SOURCE": "mock", "STORAGE_MODE": "gcs"},
			expectError: "GCS_BUCKET",
		},
		{
			name:        "unknown data source",
			envVars:     map[string]string{"DATA_SOURCE": "kafka"},
			expectError: "DATA_SOURCE",
		},
		{
			name:        "negative event delay",
			envVars:     map[string]string{"DATA_SOURCE": "mock", "EVENT_DELAY": "-1s"},
			expectError: "EVENT_DELAY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv()
			defer clearEnv()
			for key, value := range tt.envVars {
				os.Setenv(key, value)
			}

			cfg, err := Load(context.Background())

			if tt.expectError != "" {
				if err == nil {
					t.Errorf("Expected error mentioning %s but got none", tt.expectError)
				} else if !strings.Contains(err.Error(), tt.expectError) {
					t.Errorf("Expected error mentioning %s, got: %v", tt.expectError, err)
				}
				return
			}
			if err != nil {
				t.Errorf("Expected no error but got: %v", err)
				return
			}
			tt.validate(cfg)
		})
	}
}

func TestLoadWithContext(t *testing.T) {
	clearEnv()
	defer clearEnv()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	os.Setenv("DATA_SOURCE", "mock")

	cfg, err := Load(ctx)
	if err != nil {
		t.Errorf("Expected no error with cancelled context, got: %v", err)
	}
	if cfg == nil {
		t.Error("Expected config to be loaded even with cancelled context")
	}
}

// clearEnv removes every variable the config reads
func clearEnv() {
	envVars := []string{
		"PORT", "LAYOUT_PATH", "DATA_SOURCE", "DATA_PATH", "FEED_URL", "REMOTE_URL", "MOCKS_DIR",
		"EVENT_DELAY", "STORAGE_MODE", "SNAPSHOT_DIR", "GCS_BUCKET", "ENVIRONMENT", "LOG_LEVEL",
		"LOG_FORMAT",
	}
	for _, env := range envVars {
		os.Unsetenv(env)
	}
}
