// Package logging builds the zap logger used by the vlingest CLI.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger for mode ("dev" or "prod") at level ("debug", "info",
// "warn", "error"). Dev writes colored console lines; prod writes JSON.
// An empty level means info.
func New(mode, level string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production", "json":
		cfg = zap.NewProductionConfig()
	case "", "dev", "development", "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("logging: unknown mode %q", mode)
	}

	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			return nil, fmt.Errorf("logging: level %q: %w", level, err)
		}
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}
