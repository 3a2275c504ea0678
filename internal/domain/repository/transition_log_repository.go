package repository

import (
	"context"

	"dealdesk/internal/domain/entity"
)

// TransitionLogRepository records every applied status change. The log is
// append-only audit data and is kept even for deleted drafts.
type TransitionLogRepository interface {
	Record(ctx context.Context, rec *entity.TransitionRecord) error
	ListByDocument(ctx context.Context, documentID string) ([]entity.TransitionRecord, error)
}
