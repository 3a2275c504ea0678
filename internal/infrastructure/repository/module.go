package repository

import (
	"go.uber.org/fx"
)

var Module = fx.Module("repository",
	fx.Provide(NewDocumentRepository),
	fx.Provide(NewViewEventRepository),
	fx.Provide(NewCommentRepository),
	fx.Provide(NewContractRepository),
	fx.Provide(NewTransitionLogRepository),
)
