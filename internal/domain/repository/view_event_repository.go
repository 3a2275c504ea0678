package repository

import (
	"context"

	"dealdesk/internal/domain/entity"
)

// ViewEventRepository is the append-only event log. Events are never
// updated or deleted; they leave the store only when their document does.
type ViewEventRepository interface {
	Append(ctx context.Context, ev *entity.ViewEvent) error
	ListByDocument(ctx context.Context, documentID string) ([]entity.ViewEvent, error)
}
