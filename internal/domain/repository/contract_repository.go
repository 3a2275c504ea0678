package repository

import (
	"context"
	"time"

	"dealdesk/internal/domain/entity"
)

type ContractRepository interface {
	Create(ctx context.Context, c *entity.Contract) error
	GetByID(ctx context.Context, id string) (*entity.Contract, error)
	GetByDocumentID(ctx context.Context, documentID string) (*entity.Contract, error)
	// TransitionStatus is the contract-side compare-and-set. signerName
	// is stamped only on the sent -> signed transition.
	TransitionStatus(ctx context.Context, id string, from []entity.ContractStatus, to entity.ContractStatus, signerName string, now time.Time) (bool, error)
}
