package repository

import (
	"context"

	"dealdesk/internal/domain/entity"
)

type CommentRepository interface {
	Create(ctx context.Context, c *entity.Comment) error
	// ListByDocument returns comments oldest-first; internal comments are
	// filtered out unless includeInternal is set.
	ListByDocument(ctx context.Context, documentID string, includeInternal bool) ([]entity.Comment, error)
}
