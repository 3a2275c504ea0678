package repository

import (
	"context"
	"fmt"

	"dealdesk/internal/domain/entity"
	"dealdesk/internal/domain/repository"
	"dealdesk/internal/infrastructure/database"
)

type viewEventRepository struct {
	db *database.Database
}

// NewViewEventRepository is the append-only event log. There is no update
// or delete path by design; events vanish only through the document's
// ON DELETE CASCADE.
func NewViewEventRepository(db *database.Database) repository.ViewEventRepository {
	return &viewEventRepository{db: db}
}

func (r *viewEventRepository) Append(ctx context.Context, ev *entity.ViewEvent) error {
	query := `
		INSERT INTO view_events (id, document_id, viewer_id, section, time_spent_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.DB.ExecContext(ctx, query,
		ev.ID, ev.DocumentID, ev.ViewerID, ev.Section, ev.TimeSpentSeconds, ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append view event: %w", err)
	}
	return nil
}

func (r *viewEventRepository) ListByDocument(ctx context.Context, documentID string) ([]entity.ViewEvent, error) {
	query := `
		SELECT id, document_id, viewer_id, section, time_spent_seconds, created_at
		FROM view_events
		WHERE document_id = $1
	`

	rows, err := r.db.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list view events: %w", err)
	}
	defer rows.Close()

	var events []entity.ViewEvent
	for rows.Next() {
		var ev entity.ViewEvent
		if err := rows.Scan(&ev.ID, &ev.DocumentID, &ev.ViewerID, &ev.Section, &ev.TimeSpentSeconds, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan view event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
