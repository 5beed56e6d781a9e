package storage

import (
	"context"
	"path/filepath"
	"testing"

	"chartsync/internal/config"
)

func TestNewStorageClient_Local(t *testing.T) {
	cfg := &config.Config{SnapshotDir: filepath.Join(t.TempDir(), "snaps")}

	client, err := NewStorageClient(context.Background(), DeploymentLocal, cfg)
	if err != nil {
		t.Fatalf("Failed to create local storage client: %v", err)
	}
	defer client.Close()

	if _, ok := client.(*LocalStorageClient); !ok {
		t.Errorf("Expected LocalStorageClient, got %T", client)
	}
}

func TestNewStorageClient_GCS(t *testing.T) {
	cfg := &config.Config{GCSBucket: "test-bucket"}

	// Without credentials this fails; either outcome exercises the branch
	client, err := NewStorageClient(context.Background(), DeploymentGCS, cfg)
	if err != nil {
		t.Logf("GCS client creation failed as expected in test environment: %v", err)
		return
	}
	defer client.Close()
	if _, ok := client.(*GCSClient); !ok {
		t.Errorf("Expected GCSClient, got %T", client)
	}
}

func TestNewStorageClient_Unsupported(t *testing.T) {
	_, err := NewStorageClient(context.Background(), DeploymentMode("s3"), &config.Config{})
	if err == nil {
		t.Error("Expected error for unsupported deployment mode")
	}
}
