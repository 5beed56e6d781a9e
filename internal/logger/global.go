package logger

import (
	"os"
	"strings"
	"sync/atomic"
)

var globalLogger atomic.Pointer[Logger]

func init() {
	l := NewDefault()
	configureFromEnv(l)
	globalLogger.Store(l)
}

// configureFromEnv applies LOG_LEVEL and LOG_FORMAT to l
func configureFromEnv(l *Logger) {
	if level, ok := ParseLevel(os.Getenv("LOG_LEVEL")); ok {
		l.SetLevel(level)
	}
	if format, ok := ParseFormat(os.Getenv("LOG_FORMAT")); ok {
		l.SetFormat(format)
	}
}

// ParseLevel parses a log level name, case-insensitively
func ParseLevel(level string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return DEBUG, true
	case "INFO":
		return INFO, true
	case "WARN", "WARNING":
		return WARN, true
	case "ERROR":
		return ERROR, true
	case "FATAL":
		return FATAL, true
	}
	return INFO, false
}

// ParseFormat parses a log format name; "auto" selects JSON
func ParseFormat(format string) (LogFormat, bool) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "auto":
		return JSONFormat, true
	case "text":
		return TextFormat, true
	}
	return JSONFormat, false
}

// Configure applies level and format names to the global logger. Unknown names are ignored.
func Configure(level, format string) {
	l := GetGlobalLogger()
	if lv, ok := ParseLevel(level); ok {
		l.SetLevel(lv)
	}
	if f, ok := ParseFormat(format); ok {
		l.SetFormat(f)
	}
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	return globalLogger.Load()
}

// SetGlobalLogger sets the global logger instance
func SetGlobalLogger(logger *Logger) {
	globalLogger.Store(logger)
}

// Debug logs a debug message using the global logger
func Debug(message string, fields ...Fields) {
	GetGlobalLogger().Debug(message, fields...)
}

// Info logs an info message using the global logger
func Info(message string, fields ...Fields) {
	GetGlobalLogger().Info(message, fields...)
}

// Warn logs a warning message using the global logger
func Warn(message string, fields ...Fields) {
	GetGlobalLogger().Warn(message, fields...)
}

// Error logs an error message using the global logger
func Error(message string, err error, fields ...Fields) {
	GetGlobalLogger().Error(message, err, fields...)
}

// Fatal logs a fatal message using the global logger and exits
func Fatal(message string, err error, fields ...Fields) {
	GetGlobalLogger().Fatal(message, err, fields...)
}

// Infof logs a formatted info message using the global logger
func Infof(format string, args ...interface{}) {
	GetGlobalLogger().Infof(format, args...)
}

// Warnf logs a formatted warning message using the global logger
func Warnf(format string, args ...interface{}) {
	GetGlobalLogger().Warnf(format, args...)
}
