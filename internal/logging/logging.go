package logging

import (
	"fmt"

	"lm-go/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap logger from the logging section of the config
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	cfgZap := zap.NewProductionConfig()
	if cfg.Development {
		cfgZap = zap.NewDevelopmentConfig()
	}

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(cfg.Level); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}
	cfgZap.Level.SetLevel(level)

	if len(cfg.OutputPaths) > 0 {
		cfgZap.OutputPaths = cfg.OutputPaths
	}

	logger, err := cfgZap.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
