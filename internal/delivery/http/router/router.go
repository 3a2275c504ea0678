package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"dealdesk/internal/config"
	"dealdesk/internal/delivery/http/handler"
	"dealdesk/internal/delivery/http/middleware"
	"dealdesk/internal/domain/apperror"
	"dealdesk/internal/domain/entity"
)

type Router struct {
	app               *fiber.App
	config            *config.Config
	auth              *middleware.Auth
	documentHandler   *handler.DocumentHandler
	contractHandler   *handler.ContractHandler
	viewHandler       *handler.ViewHandler
	commentHandler    *handler.CommentHandler
	healthHandler     *handler.HealthHandler
	operationsHandler *handler.OperationsHandler
}

func NewRouter(
	cfg *config.Config,
	auth *middleware.Auth,
	documentHandler *handler.DocumentHandler,
	contractHandler *handler.ContractHandler,
	viewHandler *handler.ViewHandler,
	commentHandler *handler.CommentHandler,
	healthHandler *handler.HealthHandler,
	operationsHandler *handler.OperationsHandler,
) *Router {
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: customErrorHandler,
	})

	return &Router{
		app:               app,
		config:            cfg,
		auth:              auth,
		documentHandler:   documentHandler,
		contractHandler:   contractHandler,
		viewHandler:       viewHandler,
		commentHandler:    commentHandler,
		healthHandler:     healthHandler,
		operationsHandler: operationsHandler,
	}
}

func (r *Router) Setup() *fiber.App {
	// Middleware
	r.app.Use(recover.New())
	r.app.Use(requestid.New())
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Viewer-Session",
	}))

	if r.config.IsDevelopment() {
		r.app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}

	// Health check route
	r.app.Get("/health", r.healthHandler.Health)

	// API v1 routes
	api := r.app.Group("/api/v1")
	{
		documents := api.Group("/documents")
		{
			// the view append must also accept anonymous sessions, so it
			// sits outside the required-auth set
			documents.Post("/:id/views", r.auth.Optional(), r.viewHandler.Record)

			authed := documents.Group("", r.auth.Require())
			authed.Post("", r.documentHandler.Create)
			authed.Get("", r.documentHandler.List)
			authed.Get("/:id", r.documentHandler.Get)
			authed.Put("/:id", r.documentHandler.Update)
			authed.Delete("/:id", r.documentHandler.Delete)

			authed.Post("/:id/send", r.documentHandler.Send)
			authed.Post("/:id/accept", r.documentHandler.Accept)
			authed.Post("/:id/reject", r.documentHandler.Reject)
			authed.Post("/:id/duplicate", r.documentHandler.Duplicate)

			authed.Get("/:id/analytics", r.viewHandler.Analytics)

			authed.Get("/:id/comments", r.commentHandler.List)
			authed.Post("/:id/comments", r.commentHandler.Add)
		}

		contracts := api.Group("/contracts", r.auth.Require())
		{
			contracts.Post("", r.contractHandler.Create)
			contracts.Get("/:id", r.contractHandler.Get)
			contracts.Post("/:id/sign", r.contractHandler.Sign)
			contracts.Post("/:id/complete", r.contractHandler.Complete)
			contracts.Post("/:id/cancel", r.contractHandler.Cancel)
		}

		api.Get("/operations", r.auth.Require(), r.operationsHandler.InFlight)
	}

	return r.app
}

func (r *Router) GetApp() *fiber.App {
	return r.app
}

// customErrorHandler catches errors that escape the handlers: fiber's own
// routing errors and anything a panic recovery surfaces. Domain errors are
// normally mapped inside the handlers; this is the backstop.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	errCode := "INTERNAL_ERROR"
	message := err.Error()

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	var ae *apperror.AppError
	if errors.As(err, &ae) {
		switch ae.Kind {
		case apperror.KindValidation:
			code = fiber.StatusBadRequest
			errCode = "VALIDATION_ERROR"
		case apperror.KindPermission:
			code = fiber.StatusForbidden
			errCode = "PERMISSION_DENIED"
		case apperror.KindStaleState:
			code = fiber.StatusConflict
			errCode = "STALE_STATE"
		case apperror.KindNotFound:
			code = fiber.StatusNotFound
			errCode = "NOT_FOUND"
		case apperror.KindTransient:
			code = fiber.StatusServiceUnavailable
			errCode = "TRANSIENT_ERROR"
		}
		message = ae.Message
	}

	return c.Status(code).JSON(entity.NewErrorResponse(errCode, message))
}
