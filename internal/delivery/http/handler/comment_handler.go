package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"dealdesk/internal/delivery/http/middleware"
	"dealdesk/internal/domain/entity"
	"dealdesk/internal/usecase"
)

type CommentHandler struct {
	usecase usecase.CommentUsecase
	logger  *zap.Logger
}

func NewCommentHandler(uc usecase.CommentUsecase, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{
		usecase: uc,
		logger:  logger,
	}
}

func (h *CommentHandler) Add(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)

	var req usecase.AddCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("VALIDATION_ERROR", "Invalid request body"),
		)
	}

	comment, err := h.usecase.Add(c.UserContext(), p, c.Params("id"), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(
		entity.NewSuccessResponse(comment, "Comment added"),
	)
}

func (h *CommentHandler) List(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)

	comments, err := h.usecase.List(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entity.NewSuccessResponse(comments, "Comments retrieved"))
}
