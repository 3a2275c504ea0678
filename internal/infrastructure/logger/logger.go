package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"dealdesk/internal/config"
)

func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapConfig zap.Config

	if cfg.IsDevelopment() {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	// console format is handy when tailing a dev box even with env=production
	if cfg.Logging.Format == "console" {
		zapConfig.Encoding = "console"
	}

	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	return logger.Named(cfg.App.Name), nil
}
