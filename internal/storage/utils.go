package storage

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
)

// SnapshotPrefix is the object prefix all filter snapshots share
const SnapshotPrefix = "snapshots/"

// ErrInvalidName is returned for snapshot names that cannot map to an object path
var ErrInvalidName = errors.New("invalid snapshot name")

var snapshotName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,63}$`)

// SnapshotPath returns the object path for a named snapshot
func SnapshotPath(name string) (string, error) {
	if !snapshotName.MatchString(name) || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w %q", ErrInvalidName, name)
	}
	return SnapshotPrefix + name + ".json", nil
}

// SnapshotName recovers the snapshot name from an object path
func SnapshotName(objectPath string) (string, bool) {
	if !strings.HasPrefix(objectPath, SnapshotPrefix) || path.Ext(objectPath) != ".json" {
		return "", false
	}
	name := strings.TrimSuffix(strings.TrimPrefix(objectPath, SnapshotPrefix), ".json")
	return name, snapshotName.MatchString(name)
}

// GetContentType determines the MIME content type based on file extension
func GetContentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".json":
		return "application/json"
	case ".html":
		return "text/html"
	case ".png":
		return "image/png"
	case ".csv":
		return "text/csv"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
