package redis

import (
	"go.uber.org/fx"

	"dealdesk/internal/usecase"
)

var Module = fx.Module("redis",
	fx.Provide(NewRedisClient),
	fx.Provide(
		fx.Annotate(
			NewViewerSessions,
			fx.As(new(usecase.ViewerSessionStore)),
		),
	),
	fx.Provide(
		fx.Annotate(
			NewOnceGuard,
			fx.As(new(usecase.TransitionGuard)),
		),
	),
)
