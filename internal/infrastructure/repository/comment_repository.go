package repository

import (
	"context"
	"fmt"

	"dealdesk/internal/domain/entity"
	"dealdesk/internal/domain/repository"
	"dealdesk/internal/infrastructure/database"
)

type commentRepository struct {
	db *database.Database
}

func NewCommentRepository(db *database.Database) repository.CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, c *entity.Comment) error {
	query := `
		INSERT INTO comments (id, document_id, author_id, content, is_internal, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.DB.ExecContext(ctx, query,
		c.ID, c.DocumentID, c.AuthorID, c.Content, c.IsInternal, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

func (r *commentRepository) ListByDocument(ctx context.Context, documentID string, includeInternal bool) ([]entity.Comment, error) {
	query := `
		SELECT id, document_id, author_id, content, is_internal, created_at
		FROM comments
		WHERE document_id = $1 AND (is_internal = FALSE OR $2)
		ORDER BY created_at
	`

	rows, err := r.db.DB.QueryContext(ctx, query, documentID, includeInternal)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []entity.Comment
	for rows.Next() {
		var c entity.Comment
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.AuthorID, &c.Content, &c.IsInternal, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
