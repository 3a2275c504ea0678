package entity

type Role string

const (
	RoleIssuer       Role = "issuer"
	RoleCounterparty Role = "counter-party"
	RoleAdmin        Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleIssuer || r == RoleCounterparty || r == RoleAdmin
}

// Principal is the signed-in identity supplied by the external auth
// provider. The core only ever reads the role claim to evaluate guards.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsIssuerOf reports whether the principal owns the document.
func (p Principal) IsIssuerOf(d *Document) bool {
	return p.Role == RoleIssuer && p.ID == d.IssuerID
}

// IsCounterpartyOf matches on email: counter-parties are addressed by
// email before they ever hold an account.
func (p Principal) IsCounterpartyOf(d *Document) bool {
	return p.Role == RoleCounterparty && p.Email != "" && p.Email == d.CounterpartyEmail
}
