package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested object does not exist
var ErrNotFound = errors.New("storage: object not found")

// StorageClient defines the object operations snapshots need
type StorageClient interface {
	// Close closes the storage client
	Close() error

	// StoreFile stores data at the slash-separated object path
	StoreFile(ctx context.Context, objectPath string, data []byte) error

	// GetFile retrieves an object; missing objects yield ErrNotFound
	GetFile(ctx context.Context, objectPath string) ([]byte, error)

	// List returns the object paths under prefix in ascending order
	List(ctx context.Context, prefix string) ([]string, error)

	// FileExists checks if an object exists
	FileExists(ctx context.Context, objectPath string) (bool, error)
}
