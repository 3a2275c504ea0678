package repository

import (
	"context"
	"time"

	"dealdesk/internal/domain/entity"
)

type DocumentRepository interface {
	Create(ctx context.Context, d *entity.Document) error
	GetByID(ctx context.Context, id string) (*entity.Document, error)
	ListByIssuer(ctx context.Context, issuerID string, page, perPage int) ([]entity.Document, int, error)
	ListByCounterparty(ctx context.Context, email string, page, perPage int) ([]entity.Document, int, error)
	// Update persists content edits; legal only while the document is a
	// draft, which the usecase guards before calling.
	Update(ctx context.Context, d *entity.Document) error
	Delete(ctx context.Context, id string) error
	// TransitionStatus applies a compare-and-set status change: the row
	// is updated only if its current status is one of from. It reports
	// whether the transition was applied, so a losing concurrent request
	// surfaces as stale instead of overwriting the winner.
	TransitionStatus(ctx context.Context, id string, from []entity.DocumentStatus, to entity.DocumentStatus, now time.Time) (bool, error)
}
