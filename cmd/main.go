package main

import (
	"go.uber.org/fx"

	"dealdesk/internal/config"
	"dealdesk/internal/coordinator"
	deliveryhttp "dealdesk/internal/delivery/http"
	"dealdesk/internal/infrastructure/database"
	"dealdesk/internal/infrastructure/logger"
	"dealdesk/internal/infrastructure/notifier"
	"dealdesk/internal/infrastructure/redis"
	"dealdesk/internal/infrastructure/repository"
	"dealdesk/internal/lifecycle"
	"dealdesk/internal/server"
	"dealdesk/internal/usecase"
)

func main() {
	fx.New(
		// Configuration
		config.Module,

		// Infrastructure
		logger.Module,
		database.Module,
		redis.Module,
		notifier.Module,
		repository.Module,

		// Domain services
		lifecycle.Module,
		coordinator.Module,

		// Business Logic
		usecase.Module,

		// Delivery
		deliveryhttp.Module,

		// Server
		server.Module,
	).Run()
}
