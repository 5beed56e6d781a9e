package config

import (
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
)

const fallbackVersion = "0.1.0"

// Version returns APP_VERSION when set, then the VERSION file, then the module build info
func Version() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	if v := fileVersion("VERSION"); v != "" {
		return v
	}
	return buildVersion()
}

// fileVersion reads a VERSION file from the working directory or its parent
func fileVersion(name string) string {
	for _, path := range []string{name, filepath.Join("..", name)} {
		if content, err := os.ReadFile(path); err == nil {
			if v := strings.TrimSpace(string(content)); v != "" {
				return v
			}
		}
	}
	return ""
}

// buildVersion uses the main module version, with a short VCS revision for development builds
func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return fallbackVersion
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return strings.TrimPrefix(v, "v")
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return fallbackVersion + "+" + s.Value[:7]
		}
	}
	return fallbackVersion
}
