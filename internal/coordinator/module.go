package coordinator

import (
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"dealdesk/internal/config"
)

func NewFromConfig(cfg *config.Config, logger *zap.Logger) *Coordinator {
	return New(time.Duration(cfg.Coordinator.TimeoutSeconds)*time.Second, logger)
}

var Module = fx.Module("coordinator",
	fx.Provide(NewFromConfig),
)
