package server

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"dealdesk/internal/config"
	"dealdesk/internal/coordinator"
	"dealdesk/internal/delivery/http/router"
)

const shutdownGrace = 10 * time.Second

func NewServer(
	lc fx.Lifecycle,
	cfg *config.Config,
	r *router.Router,
	ops *coordinator.Coordinator,
	logger *zap.Logger,
) error {
	app := r.Setup()

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			addr := fmt.Sprintf(":%d", cfg.App.Port)
			logger.Info("Starting HTTP server",
				zap.String("address", addr),
				zap.String("env", cfg.App.Env),
			)

			go func() {
				if err := app.Listen(addr); err != nil {
					logger.Error("Failed to start server", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			// a transition caught mid-flight by the shutdown shows up here
			if inflight := ops.Snapshot(); len(inflight) > 0 {
				logger.Warn("Shutting down with unsettled operations",
					zap.Int("count", len(inflight)),
				)
			}

			logger.Info("Shutting down HTTP server")
			return app.ShutdownWithTimeout(shutdownGrace)
		},
	})

	return nil
}
