package repository

import (
	"context"
	"fmt"

	"dealdesk/internal/domain/entity"
	"dealdesk/internal/domain/repository"
	"dealdesk/internal/infrastructure/database"
)

type transitionLogRepository struct {
	db *database.Database
}

// NewTransitionLogRepository records the audit trail of applied status
// changes. Rows are written after a transition wins its compare-and-set,
// so the log only ever holds transitions that actually happened.
func NewTransitionLogRepository(db *database.Database) repository.TransitionLogRepository {
	return &transitionLogRepository{db: db}
}

func (r *transitionLogRepository) Record(ctx context.Context, rec *entity.TransitionRecord) error {
	query := `
		INSERT INTO transition_log (id, document_id, from_status, to_status, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.DB.ExecContext(ctx, query,
		rec.ID, rec.DocumentID, rec.FromStatus, rec.ToStatus, rec.ActorID, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record transition: %w", err)
	}
	return nil
}

func (r *transitionLogRepository) ListByDocument(ctx context.Context, documentID string) ([]entity.TransitionRecord, error) {
	query := `
		SELECT id, document_id, from_status, to_status, actor_id, created_at
		FROM transition_log
		WHERE document_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transitions: %w", err)
	}
	defer rows.Close()

	var records []entity.TransitionRecord
	for rows.Next() {
		var rec entity.TransitionRecord
		if err := rows.Scan(&rec.ID, &rec.DocumentID, &rec.FromStatus, &rec.ToStatus, &rec.ActorID, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transition: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
