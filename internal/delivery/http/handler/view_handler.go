package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"dealdesk/internal/delivery/http/middleware"
	"dealdesk/internal/domain/entity"
	"dealdesk/internal/usecase"
)

// HeaderViewerSession carries the anonymous viewer's session token. The
// token is minted on first use and reused by the tracker for the rest of
// the visit, so repeat views count one unique viewer.
const HeaderViewerSession = "X-Viewer-Session"

type ViewHandler struct {
	usecase usecase.ViewUsecase
	logger  *zap.Logger
}

func NewViewHandler(uc usecase.ViewUsecase, logger *zap.Logger) *ViewHandler {
	return &ViewHandler{
		usecase: uc,
		logger:  logger,
	}
}

// Record appends one view event. Accepted from signed-in principals and
// from anonymous sessions alike; the response is 202 because the event
// is a fire-and-forget append from the tracker's point of view.
func (h *ViewHandler) Record(c *fiber.Ctx) error {
	var req usecase.RecordViewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("VALIDATION_ERROR", "Invalid request body"),
		)
	}

	var principal *entity.Principal
	if p, ok := middleware.PrincipalFrom(c); ok {
		principal = &p
	}
	sessionToken := c.Get(HeaderViewerSession)

	err := h.usecase.RecordView(c.UserContext(), principal, sessionToken, c.Params("id"), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(
		entity.NewSuccessResponse(nil, "View recorded"),
	)
}

func (h *ViewHandler) Analytics(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)

	snapshot, err := h.usecase.GetAnalytics(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entity.NewSuccessResponse(snapshot, "Engagement analytics computed"))
}
