package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"dealdesk/internal/coordinator"
	"dealdesk/internal/delivery/http/middleware"
	"dealdesk/internal/domain/entity"
	"dealdesk/internal/usecase"
)

type DocumentHandler struct {
	usecase usecase.DocumentUsecase
	ops     *coordinator.Coordinator
	logger  *zap.Logger
}

func NewDocumentHandler(uc usecase.DocumentUsecase, ops *coordinator.Coordinator, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		usecase: uc,
		ops:     ops,
		logger:  logger,
	}
}

func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)

	var req usecase.CreateDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("VALIDATION_ERROR", "Invalid request body"),
		)
	}

	doc, err := h.usecase.Create(c.UserContext(), p, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(
		entity.NewSuccessResponse(doc, "Document created"),
	)
}

// List returns the caller's side of the pipeline: issuers see their own
// documents, counter-parties see what has been sent to them.
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	perPage, _ := strconv.Atoi(c.Query("per_page", "20"))

	docs, total, err := h.usecase.List(c.UserContext(), p, page, perPage)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entity.NewListResponse(docs, "Documents retrieved", page, perPage, total))
}

func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)

	doc, err := h.usecase.Get(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entity.NewSuccessResponse(doc, "Document retrieved"))
}

func (h *DocumentHandler) Update(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)

	var req usecase.UpdateDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("VALIDATION_ERROR", "Invalid request body"),
		)
	}

	doc, err := h.usecase.Update(c.UserContext(), p, c.Params("id"), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entity.NewSuccessResponse(doc, "Document updated"))
}

func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)

	if err := h.usecase.Delete(c.UserContext(), p, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(entity.NewSuccessResponse(nil, "Document deleted"))
}

func (h *DocumentHandler) Send(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)
	id := c.Params("id")

	var doc *entity.Document
	err := h.ops.Run(id, "send", func() error {
		var err error
		doc, err = h.usecase.Send(c.UserContext(), p, id)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entity.NewSuccessResponse(doc, "Document sent"))
}

func (h *DocumentHandler) Accept(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)
	id := c.Params("id")

	var (
		doc      *entity.Document
		contract *entity.Contract
	)
	err := h.ops.Run(id, "accept", func() error {
		var err error
		doc, contract, err = h.usecase.Accept(c.UserContext(), p, id)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entity.NewSuccessResponse(fiber.Map{
		"document": doc,
		"contract": contract,
	}, "Document accepted"))
}

func (h *DocumentHandler) Reject(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)
	id := c.Params("id")

	var doc *entity.Document
	err := h.ops.Run(id, "reject", func() error {
		var err error
		doc, err = h.usecase.Reject(c.UserContext(), p, id)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entity.NewSuccessResponse(doc, "Document rejected"))
}

func (h *DocumentHandler) Duplicate(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)

	dup, err := h.usecase.Duplicate(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(
		entity.NewSuccessResponse(dup, "Document duplicated"),
	)
}
