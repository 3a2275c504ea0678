package http

import (
	"go.uber.org/fx"

	"dealdesk/internal/delivery/http/handler"
	"dealdesk/internal/delivery/http/middleware"
	"dealdesk/internal/delivery/http/router"
)

var Module = fx.Module("http",
	fx.Provide(
		middleware.NewAuth,
		handler.NewDocumentHandler,
		handler.NewContractHandler,
		handler.NewViewHandler,
		handler.NewCommentHandler,
		handler.NewHealthHandler,
		handler.NewOperationsHandler,
		router.NewRouter,
	),
)
