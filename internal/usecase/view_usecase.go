package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dealdesk/internal/analytics"
	"dealdesk/internal/domain/apperror"
	"dealdesk/internal/domain/entity"
	"dealdesk/internal/domain/repository"
	"dealdesk/internal/lifecycle"
)

type RecordViewRequest struct {
	TimeSpent int    `json:"timeSpent"`
	Section   string `json:"section,omitempty"`
}

type ViewUsecase interface {
	// RecordView appends one event to the document's log. principal is
	// nil for anonymous viewers, who are identified by session token
	// instead. Appending is order-independent: events from one session
	// may arrive out of visit order and still aggregate identically.
	RecordView(ctx context.Context, principal *entity.Principal, sessionToken, documentID string, req *RecordViewRequest) error
	// GetAnalytics recomputes the engagement snapshot from the full
	// event log. Nothing is cached, so the snapshot can never drift.
	GetAnalytics(ctx context.Context, p entity.Principal, documentID string) (*entity.EngagementSnapshot, error)
}

type viewUsecase struct {
	docs     repository.DocumentRepository
	events   repository.ViewEventRepository
	audit    repository.TransitionLogRepository
	engine   *lifecycle.Engine
	sessions ViewerSessionStore
	logger   *zap.Logger
}

func NewViewUsecase(
	docs repository.DocumentRepository,
	events repository.ViewEventRepository,
	audit repository.TransitionLogRepository,
	engine *lifecycle.Engine,
	sessions ViewerSessionStore,
	logger *zap.Logger,
) ViewUsecase {
	return &viewUsecase{
		docs:     docs,
		events:   events,
		audit:    audit,
		engine:   engine,
		sessions: sessions,
		logger:   logger,
	}
}

func (u *viewUsecase) RecordView(ctx context.Context, principal *entity.Principal, sessionToken, documentID string, req *RecordViewRequest) error {
	// malformed input is rejected before any write
	if req.TimeSpent < 0 {
		return apperror.Validation("timeSpent must not be negative")
	}

	doc, err := u.docs.GetByID(ctx, documentID)
	if err != nil {
		return err
	}

	// a draft is private to the issuing side until it is sent
	if doc.Status == entity.StatusDraft && !isIssuerSideView(principal, doc) {
		return apperror.Permission("draft documents are not shared with viewers")
	}

	viewerID, err := u.resolveViewer(ctx, principal, sessionToken)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	ev := &entity.ViewEvent{
		ID:               uuid.NewString(),
		DocumentID:       doc.ID,
		ViewerID:         viewerID,
		Section:          req.Section,
		TimeSpentSeconds: req.TimeSpent,
		CreatedAt:        now,
	}
	if err := u.events.Append(ctx, ev); err != nil {
		return err
	}

	// the first counter-party visit advances sent -> viewed; losing that
	// race to a sibling event is fine, the marker is already set
	if doc.Status == entity.StatusSent && !isIssuerView(principal, doc) {
		applied, err := u.docs.TransitionStatus(ctx, doc.ID,
			[]entity.DocumentStatus{entity.StatusSent}, entity.StatusViewed, now)
		if err != nil {
			u.logger.Warn("Failed to set viewed marker",
				zap.String("document_id", doc.ID),
				zap.Error(err),
			)
		} else if applied {
			u.recordTransition(ctx, doc.ID, entity.StatusSent, entity.StatusViewed, viewerID)
		}
	}

	return nil
}

func (u *viewUsecase) GetAnalytics(ctx context.Context, p entity.Principal, documentID string) (*entity.EngagementSnapshot, error) {
	doc, err := u.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !u.engine.CanReadAnalytics(doc, p) {
		return nil, apperror.Permission("engagement analytics are restricted to the issuing party")
	}

	events, err := u.events.ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, err
	}

	snapshot := analytics.Aggregate(events)
	return &snapshot, nil
}

// resolveViewer picks the event's viewer identity: the signed-in
// principal when there is one, otherwise a stable anonymized session
// identity minted in redis.
func (u *viewUsecase) resolveViewer(ctx context.Context, principal *entity.Principal, sessionToken string) (string, error) {
	if principal != nil {
		return principal.ID, nil
	}
	if sessionToken == "" {
		return "", apperror.Validation("a viewer session token is required for anonymous views")
	}
	return u.sessions.Resolve(ctx, sessionToken)
}

func isIssuerView(principal *entity.Principal, doc *entity.Document) bool {
	return principal != nil && principal.IsIssuerOf(doc)
}

func isIssuerSideView(principal *entity.Principal, doc *entity.Document) bool {
	return principal != nil && (principal.IsIssuerOf(doc) || principal.Role == entity.RoleAdmin)
}

func (u *viewUsecase) recordTransition(ctx context.Context, docID string, from, to entity.DocumentStatus, actorID string) {
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
