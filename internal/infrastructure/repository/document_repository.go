package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"dealdesk/internal/domain/apperror"
	"dealdesk/internal/domain/entity"
	"dealdesk/internal/domain/repository"
	"dealdesk/internal/infrastructure/database"
)

type documentRepository struct {
	db *database.Database
}

func NewDocumentRepository(db *database.Database) repository.DocumentRepository {
	return &documentRepository{db: db}
}

const documentColumns = `id, issuer_id, counterparty_email, title, amount_cents, currency,
	content, deliverables, timeline, status, viewed_at, responded_at, created_at, updated_at`

func (r *documentRepository) Create(ctx context.Context, d *entity.Document) error {
	query := `
		INSERT INTO documents (id, issuer_id, counterparty_email, title, amount_cents, currency,
			content, deliverables, timeline, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.DB.ExecContext(ctx, query,
		d.ID, d.IssuerID, d.CounterpartyEmail, d.Title, d.AmountCents, d.Currency,
		d.Content, pq.Array(d.Deliverables), d.Timeline, string(d.Status), d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

func (r *documentRepository) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`

	row := r.db.DB.QueryRowContext(ctx, query, id)
	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, apperror.NotFound("document not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

func (r *documentRepository) ListByIssuer(ctx context.Context, issuerID string, page, perPage int) ([]entity.Document, int, error) {
	return r.list(ctx, `issuer_id = $1`, issuerID, page, perPage)
}

// ListByCounterparty excludes drafts: the counter-party has no visibility
// before the document is sent.
func (r *documentRepository) ListByCounterparty(ctx context.Context, email string, page, perPage int) ([]entity.Document, int, error) {
	return r.list(ctx, `counterparty_email = $1 AND status <> 'draft'`, email, page, perPage)
}

func (r *documentRepository) list(ctx context.Context, where, arg string, page, perPage int) ([]entity.Document, int, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 || perPage > 100 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	var total int
	countQuery := `SELECT COUNT(*) FROM documents WHERE ` + where
	if err := r.db.DB.QueryRowContext(ctx, countQuery, arg).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count documents: %w", err)
	}

	query := `SELECT ` + documentColumns + ` FROM documents WHERE ` + where + `
		ORDER BY updated_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.DB.QueryContext(ctx, query, arg, perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]entity.Document, 0, perPage)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, total, rows.Err()
}

func (r *documentRepository) Update(ctx context.Context, d *entity.Document) error {
	query := `
		UPDATE documents
		SET counterparty_email = $2, title = $3, amount_cents = $4, currency = $5,
			content = $6, deliverables = $7, timeline = $8, updated_at = $9
		WHERE id = $1
	`

	res, err := r.db.DB.ExecContext(ctx, query,
		d.ID, d.CounterpartyEmail, d.Title, d.AmountCents, d.Currency,
		d.Content, pq.Array(d.Deliverables), d.Timeline, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("document not found")
	}
	return nil
}

func (r *documentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("document not found")
	}
	return nil
}

// TransitionStatus is the optimistic-concurrency write: the status moves
// only if the row still holds one of the expected source statuses, so two
// racing transitions cannot both win. Timestamp stamps ride along in the
// same statement.
func (r *documentRepository) TransitionStatus(ctx context.Context, id string, from []entity.DocumentStatus, to entity.DocumentStatus, now time.Time) (bool, error) {
	fromStrings := make([]string, len(from))
	for i, s := range from {
		fromStrings[i] = string(s)
	}

	query := `
		UPDATE documents
		SET status = $2,
			updated_at = $3,
			viewed_at = CASE WHEN $2 = 'viewed' AND viewed_at IS NULL THEN $3 ELSE viewed_at END,
			responded_at = CASE WHEN $2 IN ('accepted', 'rejected') THEN $3 ELSE responded_at END
		WHERE id = $1 AND status = ANY($4)
	`

	res, err := r.db.DB.ExecContext(ctx, query, id, string(to), now.UTC(), pq.Array(fromStrings))
	if err != nil {
		return false, fmt.Errorf("failed to transition document status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*entity.Document, error) {
	var d entity.Document
	var status string
	var viewedAt, respondedAt sql.NullTime

	err := row.Scan(
		&d.ID, &d.IssuerID, &d.CounterpartyEmail, &d.Title, &d.AmountCents, &d.Currency,
		&d.Content, pq.Array(&d.Deliverables), &d.Timeline, &status,
		&viewedAt, &respondedAt, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.Status = entity.DocumentStatus(status)
	if !d.Status.Valid() {
		return nil, fmt.Errorf("invalid document status %q in store", status)
	}
	if viewedAt.Valid {
		d.ViewedAt = &viewedAt.Time
	}
	if respondedAt.Valid {
		d.RespondedAt = &respondedAt.Time
	}
	return &d, nil
}
