package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealdesk/internal/domain/apperror"
	"dealdesk/internal/domain/entity"
)

var (
	issuer       = entity.Principal{ID: "usr_1", Email: "issuer@acme.test", Role: entity.RoleIssuer}
	counterparty = entity.Principal{ID: "usr_2", Email: "client@example.test", Role: entity.RoleCounterparty}
	admin        = entity.Principal{ID: "usr_9", Email: "ops@acme.test", Role: entity.RoleAdmin}
)

func newDoc(status entity.DocumentStatus) *entity.Document {
	now := time.Now().UTC()
	return &entity.Document{
		ID:                "doc_1",
		IssuerID:          issuer.ID,
		CounterpartyEmail: counterparty.Email,
		Title:             "Website redesign",
		AmountCents:       1250000,
		Currency:          "USD",
		Content:           "Full redesign of the marketing site.",
		Deliverables:      []string{"wireframes", "design system", "launch"},
		Timeline:          "6 weeks",
		Status:            status,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func TestAuthorize_SendGuards(t *testing.T) {
	e := NewEngine()

	assert.NoError(t, e.Authorize(newDoc(entity.StatusDraft), issuer, entity.StatusSent))

	err := e.Authorize(newDoc(entity.StatusDraft), counterparty, entity.StatusSent)
	assert.Equal(t, apperror.KindPermission, apperror.KindOf(err))

	// resend of an already-sent document is stale, not a silent no-op
	err = e.Authorize(newDoc(entity.StatusSent), issuer, entity.StatusSent)
	assert.Equal(t, apperror.KindStaleState, apperror.KindOf(err))
}

func TestAuthorize_RespondGuards(t *testing.T) {
	e := NewEngine()

	for _, from := range []entity.DocumentStatus{entity.StatusSent, entity.StatusViewed} {
		assert.NoError(t, e.Authorize(newDoc(from), counterparty, entity.StatusAccepted))
		assert.NoError(t, e.Authorize(newDoc(from), counterparty, entity.StatusRejected))
	}

	// issuer may never accept its own proposal
	err := e.Authorize(newDoc(entity.StatusViewed), issuer, entity.StatusAccepted)
	assert.Equal(t, apperror.KindPermission, apperror.KindOf(err))

	// a stranger with the counter-party role but the wrong email is denied
	stranger := entity.Principal{ID: "usr_3", Email: "other@example.test", Role: entity.RoleCounterparty}
	err = e.Authorize(newDoc(entity.StatusViewed), stranger, entity.StatusAccepted)
	assert.Equal(t, apperror.KindPermission, apperror.KindOf(err))
}

func TestAuthorize_TerminalIsStale(t *testing.T) {
	e := NewEngine()

	for _, terminal := range []entity.DocumentStatus{entity.StatusAccepted, entity.StatusRejected} {
		d := newDoc(terminal)
		err := e.Authorize(d, counterparty, entity.StatusAccepted)
		require.Error(t, err)
		assert.Equal(t, apperror.KindStaleState, apperror.KindOf(err))
		assert.Contains(t, err.Error(), "already "+string(terminal))
		// guard failure never mutates status
		assert.Equal(t, terminal, d.Status)
	}
}

func TestAuthorize_DraftCannotBeAccepted(t *testing.T) {
	e := NewEngine()
	err := e.Authorize(newDoc(entity.StatusDraft), counterparty, entity.StatusAccepted)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestApply_Stamps(t *testing.T) {
	e := NewEngine()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	d := newDoc(entity.StatusSent)
	e.Apply(d, entity.StatusViewed, now)
	require.NotNil(t, d.ViewedAt)
	assert.Equal(t, now, *d.ViewedAt)
	assert.Equal(t, entity.StatusViewed, d.Status)

	e.Apply(d, entity.StatusAccepted, now.Add(time.Hour))
	require.NotNil(t, d.RespondedAt)
	assert.Equal(t, now.Add(time.Hour), *d.RespondedAt)

	// ViewedAt is stamped once and kept
	assert.Equal(t, now, *d.ViewedAt)
}

func TestEditDeleteDuplicateGuards(t *testing.T) {
	e := NewEngine()

	assert.True(t, e.CanEdit(newDoc(entity.StatusDraft), issuer))
	assert.False(t, e.CanEdit(newDoc(entity.StatusSent), issuer))
	assert.False(t, e.CanEdit(newDoc(entity.StatusDraft), counterparty))

	assert.True(t, e.CanDelete(newDoc(entity.StatusDraft), issuer))
	assert.True(t, e.CanDelete(newDoc(entity.StatusViewed), issuer))
	assert.False(t, e.CanDelete(newDoc(entity.StatusAccepted), issuer))
	assert.False(t, e.CanDelete(newDoc(entity.StatusRejected), admin))

	for _, s := range []entity.DocumentStatus{entity.StatusDraft, entity.StatusSent, entity.StatusAccepted} {
		assert.True(t, e.CanDuplicate(newDoc(s), issuer))
		assert.False(t, e.CanDuplicate(newDoc(s), counterparty))
	}
}

func TestReadAccess(t *testing.T) {
	e := NewEngine()

	// drafts are private to the issuer
	assert.True(t, e.CanRead(newDoc(entity.StatusDraft), issuer))
	assert.False(t, e.CanRead(newDoc(entity.StatusDraft), counterparty))

	// sending grants the counter-party read access
	assert.True(t, e.CanRead(newDoc(entity.StatusSent), counterparty))
	assert.True(t, e.CanRead(newDoc(entity.StatusSent), admin))

	// analytics stay issuer-facing
	assert.False(t, e.CanReadAnalytics(newDoc(entity.StatusSent), counterparty))
	assert.True(t, e.CanReadAnalytics(newDoc(entity.StatusSent), issuer))
}

func TestDuplicate_ResetsCopy(t *testing.T) {
	e := NewEngine()
	now := time.Now().UTC()

	orig := newDoc(entity.StatusAccepted)
	viewed := now.Add(-time.Hour)
	orig.ViewedAt = &viewed
	orig.RespondedAt = &now

	dup := e.Duplicate(orig, now)

	assert.NotEqual(t, orig.ID, dup.ID)
	assert.Equal(t, entity.StatusDraft, dup.Status)
	assert.Nil(t, dup.ViewedAt)
	assert.Nil(t, dup.RespondedAt)
	assert.Equal(t, orig.AmountCents, dup.AmountCents)
	assert.Equal(t, orig.Currency, dup.Currency)
	assert.Equal(t, orig.Deliverables, dup.Deliverables)
	assert.Equal(t, orig.Timeline, dup.Timeline)
	assert.Equal(t, orig.Content, dup.Content)

	// deliverables are copied, not shared
	dup.Deliverables[0] = "changed"
	assert.NotEqual(t, orig.Deliverables[0], dup.Deliverables[0])
}

func TestSpawnContract_CarriesFieldsVerbatim(t *testing.T) {
	e := NewEngine()
	now := time.Now().UTC()

	d := newDoc(entity.StatusAccepted)
	c := e.SpawnContract(d, now)

	assert.Equal(t, d.ID, c.DocumentID)
	assert.Equal(t, d.AmountCents, c.AmountCents)
	assert.Equal(t, d.Currency, c.Currency)
	assert.Equal(t, d.Deliverables, c.Deliverables)
	assert.Equal(t, d.Timeline, c.Timeline)
	assert.Equal(t, d.Content, c.Terms)
	assert.Equal(t, entity.ContractSent, c.Status)
}

func TestContractTransitions(t *testing.T) {
	e := NewEngine()
	now := time.Now().UTC()

	c := e.SpawnContract(newDoc(entity.StatusAccepted), now)

	// only the registered counter-party signs, and only while sent
	err := e.AuthorizeContract(c, issuer, entity.ContractSigned)
	assert.Equal(t, apperror.KindPermission, apperror.KindOf(err))

	require.NoError(t, e.AuthorizeContract(c, counterparty, entity.ContractSigned))
	e.ApplyContract(c, entity.ContractSigned, "Jordan Client", now)
	assert.Equal(t, entity.ContractSigned, c.Status)
	assert.Equal(t, "Jordan Client", c.SignerName)
	require.NotNil(t, c.SignedAt)

	err = e.AuthorizeContract(c, counterparty, entity.ContractSigned)
	assert.Equal(t, apperror.KindStaleState, apperror.KindOf(err))

	// completion is issuer bookkeeping after signing
	require.NoError(t, e.AuthorizeContract(c, issuer, entity.ContractCompleted))
	e.ApplyContract(c, entity.ContractCompleted, "", now)

	// terminal contracts cannot be cancelled
	err = e.AuthorizeContract(c, issuer, entity.ContractCancelled)
	assert.Equal(t, apperror.KindStaleState, apperror.KindOf(err))
}

func TestContractCancelFromNonTerminal(t *testing.T) {
	e := NewEngine()
	now := time.Now().UTC()

	for _, from := range []entity.ContractStatus{entity.ContractSent, entity.ContractSigned} {
		c := e.SpawnContract(newDoc(entity.StatusAccepted), now)
		c.Status = from
		assert.NoError(t, e.AuthorizeContract(c, issuer, entity.ContractCancelled), string(from))
		assert.NoError(t, e.AuthorizeContract(c, admin, entity.ContractCancelled), string(from))
		err := e.AuthorizeContract(c, counterparty, entity.ContractCancelled)
		assert.Equal(t, apperror.KindPermission, apperror.KindOf(err))
	}
}

func TestCanTransitionMatchesAuthorize(t *testing.T) {
	e := NewEngine()
	assert.True(t, e.CanTransition(newDoc(entity.StatusDraft), issuer, entity.StatusSent))
	assert.False(t, e.CanTransition(newDoc(entity.StatusAccepted), counterparty, entity.StatusRejected))
}
