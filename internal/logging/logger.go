// Package logging builds the structured loggers used by the scanner.
//
// Logs always go to stderr: stdout carries the MCP JSON-RPC stream in
// server mode and may carry CSV output in scan mode.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LevelEnv names the environment variable that overrides the log level.
const LevelEnv = "OMR_LOG_LEVEL"

// NewLogger builds a JSON logger writing to stderr at the given level.
// An empty level means "info".
func NewLogger(level string) (*zap.Logger, error) {
	lvl := zap.NewAtomicLevelAt(zap.InfoLevel)
	if strings.TrimSpace(level) != "" {
		parsed, err := zap.ParseAtomicLevel(strings.ToLower(strings.TrimSpace(level)))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

// FromEnv builds a logger at the level named by OMR_LOG_LEVEL.
func FromEnv() (*zap.Logger, error) {
	return NewLogger(os.Getenv(LevelEnv))
}

// WithOperation enriches the logger with the operation name and, when set,
// the file being processed.
func WithOperation(logger *zap.Logger, operation, file string) *zap.Logger {
	fields := []zap.Field{zap.String("operation", operation)}
	if file != "" {
		fields = append(fields, zap.String("file", file))
	}
	return logger.With(fields...)
}
