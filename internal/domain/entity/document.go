package entity

import "time"

type DocumentStatus string

const (
	StatusDraft    DocumentStatus = "draft"
	StatusSent     DocumentStatus = "sent"
	StatusViewed   DocumentStatus = "viewed"
	StatusAccepted DocumentStatus = "accepted"
	StatusRejected DocumentStatus = "rejected"
)

func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusViewed, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Terminal statuses end the proposal lifecycle; no transition leaves them.
func (s DocumentStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Document is a commercial proposal moving between the issuing party and a
// counter-party addressed by email. Status only ever moves forward through
// draft -> sent -> viewed -> accepted/rejected.
type Document struct {
	ID                string         `json:"id"`
	IssuerID          string         `json:"issuer_id"`
	CounterpartyEmail string         `json:"counterparty_email"`
	Title             string         `json:"title"`
	AmountCents       int64          `json:"amount_cents"`
	Currency          string         `json:"currency"`
	Content           string         `json:"content"`
	Deliverables      []string       `json:"deliverables"`
	Timeline          string         `json:"timeline"`
	Status            DocumentStatus `json:"status"`
	ViewedAt          *time.Time     `json:"viewed_at,omitempty"`
	RespondedAt       *time.Time     `json:"responded_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}
