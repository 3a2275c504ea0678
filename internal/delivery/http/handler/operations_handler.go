package handler

import (
	"github.com/gofiber/fiber/v2"

	"dealdesk/internal/coordinator"
	"dealdesk/internal/delivery/http/middleware"
	"dealdesk/internal/domain/entity"
)

// OperationsHandler exposes the in-flight mutation set for operators. A
// stuck entry here means a transition began and never settled.
type OperationsHandler struct {
	ops *coordinator.Coordinator
}

func NewOperationsHandler(ops *coordinator.Coordinator) *OperationsHandler {
	return &OperationsHandler{ops: ops}
}

func (h *OperationsHandler) InFlight(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)
	if p.Role != entity.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(
			entity.NewErrorResponse("PERMISSION_DENIED", "operator access required"),
		)
	}
	return c.JSON(entity.NewSuccessResponse(h.ops.Snapshot(), "In-flight operations"))
}
