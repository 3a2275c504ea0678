package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dealdesk/internal/domain/apperror"
	"dealdesk/internal/domain/entity"
	"dealdesk/internal/lifecycle"
)

type memViewEventRepo struct {
	mu     sync.Mutex
	events []entity.ViewEvent
}

func (r *memViewEventRepo) Append(_ context.Context, ev *entity.ViewEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *ev)
	return nil
}

func (r *memViewEventRepo) ListByDocument(_ context.Context, documentID string) ([]entity.ViewEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.ViewEvent
	for _, ev := range r.events {
		if ev.DocumentID == documentID {
			out = append(out, ev)
		}
	}
	return out, nil
}

type fakeSessions struct {
	mu  sync.Mutex
	ids map[string]string
}

func (s *fakeSessions) Resolve(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ids == nil {
		s.ids = map[string]string{}
	}
	if id, ok := s.ids[token]; ok {
		return id, nil
	}
	id := fmt.Sprintf("anon-%d", len(s.ids)+1)
	s.ids[token] = id
	return id, nil
}

type viewFixture struct {
	docs     *memDocRepo
	events   *memViewEventRepo
	audit    *memAuditRepo
	sessions *fakeSessions
	usecase  ViewUsecase
}

func newViewFixture() *viewFixture {
	f := &viewFixture{
		docs:     newMemDocRepo(),
		events:   &memViewEventRepo{},
		audit:    &memAuditRepo{},
		sessions: &fakeSessions{},
	}
	f.usecase = NewViewUsecase(
		f.docs, f.events, f.audit,
		lifecycle.NewEngine(), f.sessions, zap.NewNop(),
	)
	return f
}

func (f *viewFixture) seed(t *testing.T, status entity.DocumentStatus) *entity.Document {
	t.Helper()
	now := time.Now().UTC()
	doc := &entity.Document{
		ID:                "doc-" + string(status),
		IssuerID:          testIssuer.ID,
		CounterpartyEmail: testCounterparty.Email,
		Title:             "Website redesign",
		AmountCents:       1250000,
		Currency:          "USD",
		Status:            status,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, f.docs.Create(context.Background(), doc))
	return doc
}

func TestRecordView_AdvancesSentToViewedOnce(t *testing.T) {
	f := newViewFixture()
	doc := f.seed(t, entity.StatusSent)

	err := f.usecase.RecordView(context.Background(), &testCounterparty, "", doc.ID,
		&RecordViewRequest{TimeSpent: 12, Section: "pricing"})
	require.NoError(t, err)

	current, err := f.docs.GetByID(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusViewed, current.Status)

	records, _ := f.audit.ListByDocument(context.Background(), doc.ID)
	require.Len(t, records, 1)
	assert.Equal(t, "sent", records[0].FromStatus)
	assert.Equal(t, "viewed", records[0].ToStatus)

	// the marker is set once; later views only append events
	err = f.usecase.RecordView(context.Background(), &testCounterparty, "", doc.ID,
		&RecordViewRequest{TimeSpent: 30})
	require.NoError(t, err)

	events, _ := f.events.ListByDocument(context.Background(), doc.ID)
	assert.Len(t, events, 2)
	records, _ = f.audit.ListByDocument(context.Background(), doc.ID)
	assert.Len(t, records, 1)
}

func TestRecordView_IssuerPreviewDoesNotAdvance(t *testing.T) {
	f := newViewFixture()
	doc := f.seed(t, entity.StatusSent)

	err := f.usecase.RecordView(context.Background(), &testIssuer, "", doc.ID,
		&RecordViewRequest{TimeSpent: 5})
	require.NoError(t, err)

	current, err := f.docs.GetByID(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSent, current.Status)
	assert.Empty(t, f.audit.records)
}

func TestRecordView_AnonymousSessionIdentity(t *testing.T) {
	f := newViewFixture()
	doc := f.seed(t, entity.StatusSent)

	require.NoError(t, f.usecase.RecordView(context.Background(), nil, "tok-1", doc.ID,
		&RecordViewRequest{TimeSpent: 10, Section: "overview"}))
	require.NoError(t, f.usecase.RecordView(context.Background(), nil, "tok-1", doc.ID,
		&RecordViewRequest{TimeSpent: 20, Section: "pricing"}))
	require.NoError(t, f.usecase.RecordView(context.Background(), nil, "tok-2", doc.ID,
		&RecordViewRequest{TimeSpent: 3}))

	events, _ := f.events.ListByDocument(context.Background(), doc.ID)
	require.Len(t, events, 3)
	assert.Equal(t, events[0].ViewerID, events[1].ViewerID)
	assert.NotEqual(t, events[0].ViewerID, events[2].ViewerID)

	// anonymous views advance the marker like any counter-party view
	current, err := f.docs.GetByID(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusViewed, current.Status)

	// no principal and no token leaves the viewer unidentifiable
	err = f.usecase.RecordView(context.Background(), nil, "", doc.ID,
		&RecordViewRequest{TimeSpent: 1})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestRecordView_NegativeTimeSpentRejected(t *testing.T) {
	f := newViewFixture()
	doc := f.seed(t, entity.StatusSent)

	err := f.usecase.RecordView(context.Background(), &testCounterparty, "", doc.ID,
		&RecordViewRequest{TimeSpent: -1})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Empty(t, f.events.events)
}

func TestRecordView_DraftIsPrivate(t *testing.T) {
	f := newViewFixture()
	doc := f.seed(t, entity.StatusDraft)

	err := f.usecase.RecordView(context.Background(), &testCounterparty, "", doc.ID,
		&RecordViewRequest{TimeSpent: 5})
	assert.Equal(t, apperror.KindPermission, apperror.KindOf(err))

	err = f.usecase.RecordView(context.Background(), nil, "tok-1", doc.ID,
		&RecordViewRequest{TimeSpent: 5})
	assert.Equal(t, apperror.KindPermission, apperror.KindOf(err))
	assert.Empty(t, f.events.events)

	// the issuer may still preview their own draft
	err = f.usecase.RecordView(context.Background(), &testIssuer, "", doc.ID,
		&RecordViewRequest{TimeSpent: 5})
	require.NoError(t, err)
}

func TestGetAnalytics_AccessAndAggregation(t *testing.T) {
	f := newViewFixture()
	doc := f.seed(t, entity.StatusSent)

	require.NoError(t, f.usecase.RecordView(context.Background(), nil, "tok-1", doc.ID,
		&RecordViewRequest{TimeSpent: 40, Section: "overview"}))
	require.NoError(t, f.usecase.RecordView(context.Background(), nil, "tok-1", doc.ID,
		&RecordViewRequest{TimeSpent: 20, Section: "pricing"}))

	_, err := f.usecase.GetAnalytics(context.Background(), testCounterparty, doc.ID)
	assert.Equal(t, apperror.KindPermission, apperror.KindOf(err))

	snapshot, err := f.usecase.GetAnalytics(context.Background(), testIssuer, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.TotalViews)
	assert.Equal(t, 1, snapshot.UniqueViews)
	assert.Equal(t, 60, snapshot.TimeSpentViewing)
}
