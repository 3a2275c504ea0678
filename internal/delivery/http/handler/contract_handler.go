package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"dealdesk/internal/coordinator"
	"dealdesk/internal/delivery/http/middleware"
	"dealdesk/internal/domain/entity"
	"dealdesk/internal/usecase"
)

type CreateContractRequest struct {
	DocumentID string `json:"document_id"`
}

type ContractHandler struct {
	usecase usecase.ContractUsecase
	ops     *coordinator.Coordinator
	logger  *zap.Logger
}

func NewContractHandler(uc usecase.ContractUsecase, ops *coordinator.Coordinator, logger *zap.Logger) *ContractHandler {
	return &ContractHandler{
		usecase: uc,
		ops:     ops,
		logger:  logger,
	}
}

func (h *ContractHandler) Create(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)

	var req CreateContractRequest
	if err := c.BodyParser(&req); err != nil || req.DocumentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("VALIDATION_ERROR", "document_id is required"),
		)
	}

	contract, err := h.usecase.CreateFromDocument(c.UserContext(), p, req.DocumentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(
		entity.NewSuccessResponse(contract, "Contract created"),
	)
}

func (h *ContractHandler) Get(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)

	contract, err := h.usecase.Get(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entity.NewSuccessResponse(contract, "Contract retrieved"))
}

func (h *ContractHandler) Sign(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)
	id := c.Params("id")

	var req usecase.SignContractRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewErrorResponse("VALIDATION_ERROR", "Invalid request body"),
		)
	}

	var contract *entity.Contract
	err := h.ops.Run(id, "sign", func() error {
		var err error
		contract, err = h.usecase.Sign(c.UserContext(), p, id, &req)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entity.NewSuccessResponse(contract, "Contract signed"))
}

func (h *ContractHandler) Complete(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)
	id := c.Params("id")

	var contract *entity.Contract
	err := h.ops.Run(id, "complete", func() error {
		var err error
		contract, err = h.usecase.Complete(c.UserContext(), p, id)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entity.NewSuccessResponse(contract, "Contract completed"))
}

func (h *ContractHandler) Cancel(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)
	id := c.Params("id")

	var contract *entity.Contract
	err := h.ops.Run(id, "cancel", func() error {
		var err error
		contract, err = h.usecase.Cancel(c.UserContext(), p, id)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entity.NewSuccessResponse(contract, "Contract cancelled"))
}
