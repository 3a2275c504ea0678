package lifecycle

import (
	"time"

	"github.com/google/uuid"

	"dealdesk/internal/domain/apperror"
	"dealdesk/internal/domain/entity"
)

// Engine is the authoritative state machine for documents and contracts.
// It evaluates role-gated guards and applies transition stamps; persistence
// of the transition itself is the caller's concern, so the engine never
// touches a store.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// proposalFrom maps a target status to the statuses a transition may leave.
var proposalFrom = map[entity.DocumentStatus][]entity.DocumentStatus{
	entity.StatusSent:     {entity.StatusDraft},
	entity.StatusViewed:   {entity.StatusSent},
	entity.StatusAccepted: {entity.StatusSent, entity.StatusViewed},
	entity.StatusRejected: {entity.StatusSent, entity.StatusViewed},
}

var contractFrom = map[entity.ContractStatus][]entity.ContractStatus{
	entity.ContractSigned:    {entity.ContractSent},
	entity.ContractCompleted: {entity.ContractSigned},
	entity.ContractCancelled: {entity.ContractSent, entity.ContractSigned},
}

// AllowedFrom returns the source statuses a document transition may leave.
func (e *Engine) AllowedFrom(target entity.DocumentStatus) []entity.DocumentStatus {
	return proposalFrom[target]
}

func (e *Engine) AllowedContractFrom(target entity.ContractStatus) []entity.ContractStatus {
	return contractFrom[target]
}

// Authorize checks whether the principal may move the document to target
// from its current status. A document already at or past the target fails
// with a stale-state error so the caller refreshes instead of retrying.
func (e *Engine) Authorize(d *entity.Document, p entity.Principal, target entity.DocumentStatus) error {
	allowed, ok := proposalFrom[target]
	if !ok {
		return apperror.Validationf("unknown target status %q", target)
	}

	switch target {
	case entity.StatusSent:
		if !p.IsIssuerOf(d) {
			return apperror.Permission("only the issuing party may send a document")
		}
	case entity.StatusViewed, entity.StatusAccepted, entity.StatusRejected:
		if !p.IsCounterpartyOf(d) {
			return apperror.Permission("only the counter-party may respond to a document")
		}
	}

	for _, from := range allowed {
		if d.Status == from {
			return nil
		}
	}
	if d.Status.Terminal() || d.Status == target || statusRank(d.Status) > statusRank(target) {
		return apperror.Stale(string(d.Status))
	}
	return apperror.Validationf("cannot move a %s document to %s", d.Status, target)
}

// CanTransition is the capability query consulted by UI glue before it
// invokes an action, so guard logic lives in one testable place.
func (e *Engine) CanTransition(d *entity.Document, p entity.Principal, target entity.DocumentStatus) bool {
	return e.Authorize(d, p, target) == nil
}

// Apply mutates the in-memory document after the store has accepted the
// transition. Stamps follow the transition: viewed sets ViewedAt, a
// response sets RespondedAt, everything bumps UpdatedAt.
func (e *Engine) Apply(d *entity.Document, target entity.DocumentStatus, now time.Time) {
	t := now.UTC()
	d.Status = target
	d.UpdatedAt = t
	switch target {
	case entity.StatusViewed:
		if d.ViewedAt == nil {
			d.ViewedAt = &t
		}
	case entity.StatusAccepted, entity.StatusRejected:
		d.RespondedAt = &t
	}
}

// CanEdit: content-mutating actions are legal only for the issuer and only
// while the document is a draft.
func (e *Engine) CanEdit(d *entity.Document, p entity.Principal) bool {
	return p.IsIssuerOf(d) && d.Status == entity.StatusDraft
}

// CanDelete: legal in any state except a terminal one, preserving the
// audit trail of completed business.
func (e *Engine) CanDelete(d *entity.Document, p entity.Principal) bool {
	if d.Status.Terminal() {
		return false
	}
	return p.IsIssuerOf(d) || p.Role == entity.RoleAdmin
}

// CanDuplicate: legal for the issuer in any state.
func (e *Engine) CanDuplicate(d *entity.Document, p entity.Principal) bool {
	return p.IsIssuerOf(d)
}

// CanRead: the issuer always holds read access; the counter-party gains it
// once the document has been sent; admins see everything.
func (e *Engine) CanRead(d *entity.Document, p entity.Principal) bool {
	if p.Role == entity.RoleAdmin || p.IsIssuerOf(d) {
		return true
	}
	return p.IsCounterpartyOf(d) && d.Status != entity.StatusDraft
}

// CanReadAnalytics: engagement metrics describe the counter-party's
// behavior and are issuer-facing.
func (e *Engine) CanReadAnalytics(d *entity.Document, p entity.Principal) bool {
	return p.Role == entity.RoleAdmin || p.IsIssuerOf(d)
}

// Duplicate produces a fresh draft copy. Engagement history and comments
// are stripped by construction: the copy starts with a new identity and no
// events reference it.
func (e *Engine) Duplicate(d *entity.Document, now time.Time) *entity.Document {
	t := now.UTC()
	deliverables := make([]string, len(d.Deliverables))
	copy(deliverables, d.Deliverables)
	return &entity.Document{
		ID:                uuid.NewString(),
		IssuerID:          d.IssuerID,
		CounterpartyEmail: d.CounterpartyEmail,
		Title:             d.Title,
		AmountCents:       d.AmountCents,
		Currency:          d.Currency,
		Content:           d.Content,
		Deliverables:      deliverables,
		Timeline:          d.Timeline,
		Status:            entity.StatusDraft,
		CreatedAt:         t,
		UpdatedAt:         t,
	}
}

// SpawnContract builds the contract for a freshly accepted proposal.
// Amount, currency, deliverables and timeline carry over verbatim; the
// proposal content becomes the contract's initial terms. Reaching accepted
// is the only transition allowed to produce a side document.
func (e *Engine) SpawnContract(d *entity.Document, now time.Time) *entity.Contract {
	t := now.UTC()
	deliverables := make([]string, len(d.Deliverables))
	copy(deliverables, d.Deliverables)
	return &entity.Contract{
		ID:                uuid.NewString(),
		DocumentID:        d.ID,
		IssuerID:          d.IssuerID,
		CounterpartyEmail: d.CounterpartyEmail,
		Title:             d.Title,
		AmountCents:       d.AmountCents,
		Currency:          d.Currency,
		Terms:             d.Content,
		Deliverables:      deliverables,
		Timeline:          d.Timeline,
		Status:            entity.ContractSent,
		CreatedAt:         t,
		UpdatedAt:         t,
	}
}

// AuthorizeContract mirrors Authorize for the contract sub-machine:
// sent -> signed (counter-party), signed -> completed (issuer bookkeeping),
// cancelled from any non-terminal state (issuer or admin).
func (e *Engine) AuthorizeContract(c *entity.Contract, p entity.Principal, target entity.ContractStatus) error {
	allowed, ok := contractFrom[target]
	if !ok {
		return apperror.Validationf("unknown contract status %q", target)
	}

	switch target {
	case entity.ContractSigned:
		if p.Role != entity.RoleCounterparty || p.Email != c.CounterpartyEmail {
			return apperror.Permission("only the registered counter-party may sign")
		}
	case entity.ContractCompleted, entity.ContractCancelled:
		issuer := p.Role == entity.RoleIssuer && p.ID == c.IssuerID
		if !issuer && p.Role != entity.RoleAdmin {
			return apperror.Permission("only the issuing party may close a contract")
		}
	}

	for _, from := range allowed {
		if c.Status == from {
			return nil
		}
	}
	if c.Status.Terminal() || c.Status == target {
		return apperror.Stale(string(c.Status))
	}
	return apperror.Validationf("cannot move a %s contract to %s", c.Status, target)
}

func (e *Engine) ApplyContract(c *entity.Contract, target entity.ContractStatus, signerName string, now time.Time) {
	t := now.UTC()
	c.Status = target
	c.UpdatedAt = t
	if target == entity.ContractSigned {
		c.SignerName = signerName
		c.SignedAt = &t
	}
}

func statusRank(s entity.DocumentStatus) int {
	switch s {
	case entity.StatusDraft:
		return 0
	case entity.StatusSent:
		return 1
	case entity.StatusViewed:
		return 2
	case entity.StatusAccepted, entity.StatusRejected:
		return 3
	}
	return -1
}
