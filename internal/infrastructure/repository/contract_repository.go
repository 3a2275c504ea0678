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

type contractRepository struct {
	db *database.Database
}

func NewContractRepository(db *database.Database) repository.ContractRepository {
	return &contractRepository{db: db}
}

const contractColumns = `id, document_id, issuer_id, counterparty_email, title, amount_cents,
	currency, terms, deliverables, timeline, status, signer_name, signed_at, created_at, updated_at`

func (r *contractRepository) Create(ctx context.Context, c *entity.Contract) error {
	query := `
		INSERT INTO contracts (id, document_id, issuer_id, counterparty_email, title, amount_cents,
			currency, terms, deliverables, timeline, status, signer_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.DB.ExecContext(ctx, query,
		c.ID, c.DocumentID, c.IssuerID, c.CounterpartyEmail, c.Title, c.AmountCents,
		c.Currency, c.Terms, pq.Array(c.Deliverables), c.Timeline, string(c.Status),
		c.SignerName, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert contract: %w", err)
	}
	return nil
}

func (r *contractRepository) GetByID(ctx context.Context, id string) (*entity.Contract, error) {
	return r.get(ctx, `id = $1`, id)
}

func (r *contractRepository) GetByDocumentID(ctx context.Context, documentID string) (*entity.Contract, error) {
	return r.get(ctx, `document_id = $1`, documentID)
}

func (r *contractRepository) get(ctx context.Context, where, arg string) (*entity.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE ` + where

	var c entity.Contract
	var status string
	var signedAt sql.NullTime

	err := r.db.DB.QueryRowContext(ctx, query, arg).Scan(
		&c.ID, &c.DocumentID, &c.IssuerID, &c.CounterpartyEmail, &c.Title, &c.AmountCents,
		&c.Currency, &c.Terms, pq.Array(&c.Deliverables), &c.Timeline, &status,
		&c.SignerName, &signedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperror.NotFound("contract not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}

	c.Status = entity.ContractStatus(status)
	if !c.Status.Valid() {
		return nil, fmt.Errorf("invalid contract status %q in store", status)
	}
	if signedAt.Valid {
		c.SignedAt = &signedAt.Time
	}
	return &c, nil
}

func (r *contractRepository) TransitionStatus(ctx context.Context, id string, from []entity.ContractStatus, to entity.ContractStatus, signerName string, now time.Time) (bool, error) {
	fromStrings := make([]string, len(from))
	for i, s := range from {
		fromStrings[i] = string(s)
	}

	query := `
		UPDATE contracts
		SET status = $2,
			updated_at = $3,
			signer_name = CASE WHEN $2 = 'signed' THEN $5 ELSE signer_name END,
			signed_at = CASE WHEN $2 = 'signed' THEN $3 ELSE signed_at END
		WHERE id = $1 AND status = ANY($4)
	`

	res, err := r.db.DB.ExecContext(ctx, query, id, string(to), now.UTC(), pq.Array(fromStrings), signerName)
	if err != nil {
		return false, fmt.Errorf("failed to transition contract status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
