package usecase

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"dealdesk/internal/domain/apperror"
	"dealdesk/internal/domain/entity"
	"dealdesk/internal/domain/repository"
	"dealdesk/internal/infrastructure/notifier"
	"dealdesk/internal/lifecycle"
)

type SignContractRequest struct {
	SignerName string `json:"signerName"`
}

type ContractUsecase interface {
	// CreateFromDocument spawns a contract for an accepted proposal. The
	// call is idempotent: a contract already spawned (by Accept or an
	// earlier call) is returned as-is.
	CreateFromDocument(ctx context.Context, p entity.Principal, documentID string) (*entity.Contract, error)
	Get(ctx context.Context, p entity.Principal, id string) (*entity.Contract, error)
	Sign(ctx context.Context, p entity.Principal, id string, req *SignContractRequest) (*entity.Contract, error)
	Complete(ctx context.Context, p entity.Principal, id string) (*entity.Contract, error)
	Cancel(ctx context.Context, p entity.Principal, id string) (*entity.Contract, error)
}

type contractUsecase struct {
	docs      repository.DocumentRepository
	contracts repository.ContractRepository
	engine    *lifecycle.Engine
	guard     TransitionGuard
	notify    notifier.Notifier
	logger    *zap.Logger
}

func NewContractUsecase(
	docs repository.DocumentRepository,
	contracts repository.ContractRepository,
	engine *lifecycle.Engine,
	guard TransitionGuard,
	notify notifier.Notifier,
	logger *zap.Logger,
) ContractUsecase {
	return &contractUsecase{
		docs:      docs,
		contracts: contracts,
		engine:    engine,
		guard:     guard,
		notify:    notify,
		logger:    logger,
	}
}

func (u *contractUsecase) CreateFromDocument(ctx context.Context, p entity.Principal, documentID string) (*entity.Contract, error) {
	doc, err := u.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !p.IsIssuerOf(doc) && p.Role != entity.RoleAdmin {
		return nil, apperror.Permission("only the issuing party may create a contract")
	}
	if doc.Status != entity.StatusAccepted {
		return nil, apperror.Validationf("contracts can only be created from accepted documents, not %s", doc.Status)
	}

	if existing, err := u.contracts.GetByDocumentID(ctx, documentID); err == nil {
		return existing, nil
	} else if !apperror.IsKind(err, apperror.KindNotFound) {
		return nil, err
	}

	contract := u.engine.SpawnContract(doc, time.Now().UTC())
	if err := u.contracts.Create(ctx, contract); err != nil {
		return nil, err
	}
	return contract, nil
}

func (u *contractUsecase) Get(ctx context.Context, p entity.Principal, id string) (*entity.Contract, error) {
	contract, err := u.contracts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.canReadContract(contract, p) {
		return nil, apperror.Permission("no access to this contract")
	}
	return contract, nil
}

func (u *contractUsecase) Sign(ctx context.Context, p entity.Principal, id string, req *SignContractRequest) (*entity.Contract, error) {
	signerName := strings.TrimSpace(req.SignerName)
	if signerName == "" {
		return nil, apperror.Validation("signerName is required")
	}

	contract, err := u.transition(ctx, p, id, entity.ContractSigned, signerName, "sign")
	if err != nil {
		return nil, err
	}

	if err := u.notify.Notify(ctx, notifier.Event{
		Type:       notifier.EventContractSigned,
		ContractID: contract.ID,
		DocumentID: contract.DocumentID,
		Recipient:  contract.IssuerID,
		OccurredAt: contract.UpdatedAt,
	}); err != nil {
		u.logger.Warn("Failed to deliver signature notification",
			zap.String("contract_id", contract.ID),
			zap.Error(err),
		)
	}
	return contract, nil
}

func (u *contractUsecase) Complete(ctx context.Context, p entity.Principal, id string) (*entity.Contract, error) {
	return u.transition(ctx, p, id, entity.ContractCompleted, "", "")
}

func (u *contractUsecase) Cancel(ctx context.Context, p entity.Principal, id string) (*entity.Contract, error) {
	return u.transition(ctx, p, id, entity.ContractCancelled, "", "")
}

// transition authorizes before it consults the dedup guard, so a rejected
// attempt never consumes the window of the legitimate signer.
func (u *contractUsecase) transition(ctx context.Context, p entity.Principal, id string, target entity.ContractStatus, signerName, guardAction string) (*entity.Contract, error) {
	contract, err := u.contracts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.engine.AuthorizeContract(contract, p, target); err != nil {
		return nil, err
	}
	if guardAction != "" && !u.guard.Acquire(ctx, guardAction, id) {
		return nil, u.duplicateInFlight(ctx, p, id, target)
	}

	now := time.Now().UTC()
	applied, err := u.contracts.TransitionStatus(ctx, id, u.engine.AllowedContractFrom(target), target, signerName, now)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, u.staleFromCurrent(ctx, id)
	}

	u.engine.ApplyContract(contract, target, signerName, now)
	return contract, nil
}

func (u *contractUsecase) staleFromCurrent(ctx context.Context, id string) error {
	current, err := u.contracts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return apperror.Stale(string(current.Status))
}

// duplicateInFlight mirrors the document-side classification: stale only
// when the refetched contract actually disallows the target, retryable
// otherwise.
func (u *contractUsecase) duplicateInFlight(ctx context.Context, p entity.Principal, id string, target entity.ContractStatus) error {
	current, err := u.contracts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := u.engine.AuthorizeContract(current, p, target); err != nil {
		return err
	}
	return apperror.Transient("a duplicate request for this transition is in flight, retry shortly")
}

func (u *contractUsecase) canReadContract(c *entity.Contract, p entity.Principal) bool {
	switch p.Role {
	case entity.RoleAdmin:
		return true
	case entity.RoleIssuer:
		return p.ID == c.IssuerID
	case entity.RoleCounterparty:
		return p.Email == c.CounterpartyEmail
	}
	return false
}
