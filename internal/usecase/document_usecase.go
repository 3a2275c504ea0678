package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dealdesk/internal/domain/apperror"
	"dealdesk/internal/domain/entity"
	"dealdesk/internal/domain/repository"
	"dealdesk/internal/infrastructure/notifier"
	"dealdesk/internal/lifecycle"
)

type CreateDocumentRequest struct {
	Title             string   `json:"title"`
	CounterpartyEmail string   `json:"counterparty_email"`
	AmountCents       int64    `json:"amount_cents"`
	Currency          string   `json:"currency"`
	Content           string   `json:"content"`
	Deliverables      []string `json:"deliverables"`
	Timeline          string   `json:"timeline"`
}

type UpdateDocumentRequest struct {
	Title             *string  `json:"title"`
	CounterpartyEmail *string  `json:"counterparty_email"`
	AmountCents       *int64   `json:"amount_cents"`
	Currency          *string  `json:"currency"`
	Content           *string  `json:"content"`
	Deliverables      []string `json:"deliverables"`
	Timeline          *string  `json:"timeline"`
}

type DocumentUsecase interface {
	Create(ctx context.Context, p entity.Principal, req *CreateDocumentRequest) (*entity.Document, error)
	Get(ctx context.Context, p entity.Principal, id string) (*entity.Document, error)
	List(ctx context.Context, p entity.Principal, page, perPage int) ([]entity.Document, int, error)
	Update(ctx context.Context, p entity.Principal, id string, req *UpdateDocumentRequest) (*entity.Document, error)
	Delete(ctx context.Context, p entity.Principal, id string) error
	Send(ctx context.Context, p entity.Principal, id string) (*entity.Document, error)
	Accept(ctx context.Context, p entity.Principal, id string) (*entity.Document, *entity.Contract, error)
	Reject(ctx context.Context, p entity.Principal, id string) (*entity.Document, error)
	Duplicate(ctx context.Context, p entity.Principal, id string) (*entity.Document, error)
}

type documentUsecase struct {
	docs      repository.DocumentRepository
	contracts repository.ContractRepository
	audit     repository.TransitionLogRepository
	engine    *lifecycle.Engine
	guard     TransitionGuard
	notify    notifier.Notifier
	logger    *zap.Logger
}

func NewDocumentUsecase(
	docs repository.DocumentRepository,
	contracts repository.ContractRepository,
	audit repository.TransitionLogRepository,
	engine *lifecycle.Engine,
	guard TransitionGuard,
	notify notifier.Notifier,
	logger *zap.Logger,
) DocumentUsecase {
	return &documentUsecase{
		docs:      docs,
		contracts: contracts,
		audit:     audit,
		engine:    engine,
		guard:     guard,
		notify:    notify,
		logger:    logger,
	}
}

func (u *documentUsecase) Create(ctx context.Context, p entity.Principal, req *CreateDocumentRequest) (*entity.Document, error) {
	if p.Role != entity.RoleIssuer {
		return nil, apperror.Permission("only issuers may create documents")
	}
	if err := validateDocumentFields(req.Title, req.CounterpartyEmail, req.AmountCents, req.Currency); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := &entity.Document{
		ID:                uuid.NewString(),
		IssuerID:          p.ID,
		CounterpartyEmail: strings.ToLower(strings.TrimSpace(req.CounterpartyEmail)),
		Title:             strings.TrimSpace(req.Title),
		AmountCents:       req.AmountCents,
		Currency:          strings.ToUpper(req.Currency),
		Content:           req.Content,
		Deliverables:      req.Deliverables,
		Timeline:          req.Timeline,
		Status:            entity.StatusDraft,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if doc.Deliverables == nil {
		doc.Deliverables = []string{}
	}

	if err := u.docs.Create(ctx, doc); err != nil {
		return nil, err
	}

	u.logger.Info("Document created",
		zap.String("document_id", doc.ID),
		zap.String("issuer_id", p.ID),
	)
	return doc, nil
}

func (u *documentUsecase) Get(ctx context.Context, p entity.Principal, id string) (*entity.Document, error) {
	doc, err := u.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.engine.CanRead(doc, p) {
		return nil, apperror.Permission("no read access to this document")
	}
	return doc, nil
}

func (u *documentUsecase) List(ctx context.Context, p entity.Principal, page, perPage int) ([]entity.Document, int, error) {
	if p.Role == entity.RoleCounterparty {
		return u.docs.ListByCounterparty(ctx, p.Email, page, perPage)
	}
	return u.docs.ListByIssuer(ctx, p.ID, page, perPage)
}

func (u *documentUsecase) Update(ctx context.Context, p entity.Principal, id string, req *UpdateDocumentRequest) (*entity.Document, error) {
	doc, err := u.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.engine.CanEdit(doc, p) {
		if p.IsIssuerOf(doc) {
			return nil, apperror.Stale(string(doc.Status))
		}
		return nil, apperror.Permission("only the issuing party may edit a draft")
	}

	if req.Title != nil {
		doc.Title = strings.TrimSpace(*req.Title)
	}
	if req.CounterpartyEmail != nil {
		doc.CounterpartyEmail = strings.ToLower(strings.TrimSpace(*req.CounterpartyEmail))
	}
	if req.AmountCents != nil {
		doc.AmountCents = *req.AmountCents
	}
	if req.Currency != nil {
		doc.Currency = strings.ToUpper(*req.Currency)
	}
	if req.Content != nil {
		doc.Content = *req.Content
	}
	if req.Deliverables != nil {
		doc.Deliverables = req.Deliverables
	}
	if req.Timeline != nil {
		doc.Timeline = *req.Timeline
	}
	if err := validateDocumentFields(doc.Title, doc.CounterpartyEmail, doc.AmountCents, doc.Currency); err != nil {
		return nil, err
	}

	doc.UpdatedAt = time.Now().UTC()
	if err := u.docs.Update(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (u *documentUsecase) Delete(ctx context.Context, p entity.Principal, id string) error {
	doc, err := u.docs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !u.engine.CanDelete(doc, p) {
		if doc.Status.Terminal() {
			return apperror.Permission("completed business cannot be deleted")
		}
		return apperror.Permission("only the issuing party may delete a document")
	}
	return u.docs.Delete(ctx, id)
}

func (u *documentUsecase) Send(ctx context.Context, p entity.Principal, id string) (*entity.Document, error) {
	doc, err := u.transition(ctx, p, id, entity.StatusSent, "")
	if err != nil {
		return nil, err
	}

	u.notifyEvent(ctx, notifier.Event{
		Type:       notifier.EventDocumentSent,
		DocumentID: doc.ID,
		Recipient:  doc.CounterpartyEmail,
		OccurredAt: doc.UpdatedAt,
	})
	return doc, nil
}

// Accept is the one transition allowed to spawn a side document: the
// contract is created from the proposal's fields once the compare-and-set
// has confirmed this caller won.
func (u *documentUsecase) Accept(ctx context.Context, p entity.Principal, id string) (*entity.Document, *entity.Contract, error) {
	doc, err := u.transition(ctx, p, id, entity.StatusAccepted, "accept")
	if err != nil {
		return nil, nil, err
	}

	contract := u.engine.SpawnContract(doc, time.Now().UTC())
	if err := u.contracts.Create(ctx, contract); err != nil {
		return nil, nil, err
	}

	u.notifyEvent(ctx, notifier.Event{
		Type:       notifier.EventDocumentAccepted,
		DocumentID: doc.ID,
		ContractID: contract.ID,
		Recipient:  doc.IssuerID,
		OccurredAt: doc.UpdatedAt,
	})
	return doc, contract, nil
}

func (u *documentUsecase) Reject(ctx context.Context, p entity.Principal, id string) (*entity.Document, error) {
	doc, err := u.transition(ctx, p, id, entity.StatusRejected, "reject")
	if err != nil {
		return nil, err
	}

	u.notifyEvent(ctx, notifier.Event{
		Type:       notifier.EventDocumentRejected,
		DocumentID: doc.ID,
		Recipient:  doc.IssuerID,
		OccurredAt: doc.UpdatedAt,
	})
	return doc, nil
}

// Duplicate copies a document into a fresh draft. The copy gets a new
// identity, so comments and view events of the original never attach to it.
func (u *documentUsecase) Duplicate(ctx context.Context, p entity.Principal, id string) (*entity.Document, error) {
	doc, err := u.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.engine.CanDuplicate(doc, p) {
		return nil, apperror.Permission("only the issuing party may duplicate a document")
	}

	dup := u.engine.Duplicate(doc, time.Now().UTC())
	if err := u.docs.Create(ctx, dup); err != nil {
		return nil, err
	}

	u.logger.Info("Document duplicated",
		zap.String("source_id", doc.ID),
		zap.String("copy_id", dup.ID),
	)
	return dup, nil
}

// transition runs the full authorize + guard + compare-and-set + audit
// pipeline for one status change. A lost race never applies anything; it
// surfaces the actual current state as a stale error so the caller
// refetches. The guard is consulted only after authorization passes, so a
// rejected attempt never consumes the dedup window of a legitimate caller.
func (u *documentUsecase) transition(ctx context.Context, p entity.Principal, id string, target entity.DocumentStatus, guardAction string) (*entity.Document, error) {
	doc, err := u.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.engine.Authorize(doc, p, target); err != nil {
		return nil, err
	}
	if guardAction != "" && !u.guard.Acquire(ctx, guardAction, id) {
		return nil, u.duplicateInFlight(ctx, p, id, target)
	}

	now := time.Now().UTC()
	applied, err := u.docs.TransitionStatus(ctx, id, u.engine.AllowedFrom(target), target, now)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, u.staleFromCurrent(ctx, id)
	}

	from := doc.Status
	u.engine.Apply(doc, target, now)
	u.recordTransition(ctx, doc.ID, from, target, p.ID)
	return doc, nil
}

func (u *documentUsecase) staleFromCurrent(ctx context.Context, id string) error {
	current, err := u.docs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return apperror.Stale(string(current.Status))
}

// duplicateInFlight classifies a guard-shed request. A stale answer is only
// honest once the winning duplicate has landed; until then the document is
// still legally transitionable and the caller just needs to retry.
func (u *documentUsecase) duplicateInFlight(ctx context.Context, p entity.Principal, id string, target entity.DocumentStatus) error {
	current, err := u.docs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := u.engine.Authorize(current, p, target); err != nil {
		return err
	}
	return apperror.Transient("a duplicate request for this transition is in flight, retry shortly")
}

func (u *documentUsecase) recordTransition(ctx context.Context, docID string, from, to entity.DocumentStatus, actorID string) {
	rec := &entity.TransitionRecord{
		ID:         uuid.NewString(),
		DocumentID: docID,
		FromStatus: string(from),
		ToStatus:   string(to),
		ActorID:    actorID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := u.audit.Record(ctx, rec); err != nil {
		u.logger.Warn("Failed to record transition audit entry",
			zap.String("document_id", docID),
			zap.Error(err),
		)
	}
}

func (u *documentUsecase) notifyEvent(ctx context.Context, ev notifier.Event) {
	if err := u.notify.Notify(ctx, ev); err != nil {
		u.logger.Warn("Failed to deliver notification",
			zap.String("type", ev.Type),
			zap.Error(err),
		)
	}
}

func validateDocumentFields(title, email string, amountCents int64, currency string) error {
	if strings.TrimSpace(title) == "" {
		return apperror.Validation("title is required")
	}
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return apperror.Validation("a valid counterparty email is required")
	}
	if amountCents < 0 {
		return apperror.Validation("amount must not be negative")
	}
	if len(currency) != 3 {
		return apperror.Validation("currency must be a 3-letter code")
	}
	return nil
}
