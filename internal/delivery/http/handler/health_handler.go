package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"dealdesk/internal/infrastructure/database"
	"dealdesk/internal/infrastructure/redis"
)

type HealthHandler struct {
	db     *database.Database
	redis  *redis.RedisClient
	logger *zap.Logger
}

func NewHealthHandler(db *database.Database, rdb *redis.RedisClient, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		redis:  rdb,
		logger: logger,
	}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	status := fiber.StatusOK
	checks := fiber.Map{
		"database": "up",
		"redis":    "up",
	}

	if err := h.db.DB.PingContext(c.UserContext()); err != nil {
		h.logger.Warn("Health check: database unreachable", zap.Error(err))
		checks["database"] = "down"
		status = fiber.StatusServiceUnavailable
	}
	if err := h.redis.Client.Ping(c.UserContext()).Err(); err != nil {
		h.logger.Warn("Health check: redis unreachable", zap.Error(err))
		checks["redis"] = "down"
		status = fiber.StatusServiceUnavailable
	}

	overall := "healthy"
	if status != fiber.StatusOK {
		overall = "degraded"
	}
	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": checks,
	})
}
