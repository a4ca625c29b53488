// Package logging builds the zap logger shared by the CLI and the popup.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger writing human-readable output to stderr. level is
// one of debug, info, warn, error; anything else falls back to warn so a
// misconfigured level never silences operator-facing warnings.
func New(level string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true

	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		parsed = zapcore.WarnLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(parsed)

	return cfg.Build()
}
