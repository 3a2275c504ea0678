package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"dealdesk/internal/domain/apperror"
	"dealdesk/internal/domain/entity"
)

func statusForKind(kind apperror.Kind) (int, string) {
	switch kind {
	case apperror.KindValidation:
		return fiber.StatusBadRequest, "VALIDATION_ERROR"
	case apperror.KindPermission:
		return fiber.StatusForbidden, "PERMISSION_DENIED"
	case apperror.KindStaleState:
		return fiber.StatusConflict, "STALE_STATE"
	case apperror.KindNotFound:
		return fiber.StatusNotFound, "NOT_FOUND"
	}
	return fiber.StatusServiceUnavailable, "TRANSIENT_ERROR"
}

// respondError maps the domain error taxonomy onto HTTP statuses. Errors
// from outside the taxonomy (driver, network) surface as a retryable 503
// without leaking their internals.
func respondError(c *fiber.Ctx, err error) error {
	status, code := statusForKind(apperror.KindOf(err))

	message := "temporarily unavailable, please retry"
	var ae *apperror.AppError
	if errors.As(err, &ae) {
		message = ae.Message
	}

	return c.Status(status).JSON(entity.NewErrorResponse(code, message))
}
