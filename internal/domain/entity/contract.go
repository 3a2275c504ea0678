package entity

import "time"

type ContractStatus string

const (
	ContractSent      ContractStatus = "sent"
	ContractSigned    ContractStatus = "signed"
	ContractCompleted ContractStatus = "completed"
	ContractCancelled ContractStatus = "cancelled"
)

func (s ContractStatus) Valid() bool {
	switch s {
	case ContractSent, ContractSigned, ContractCompleted, ContractCancelled:
		return true
	}
	return false
}

func (s ContractStatus) Terminal() bool {
	return s == ContractCompleted || s == ContractCancelled
}

// Contract is spawned from an accepted proposal. Amount, currency,
// deliverables and timeline are carried over verbatim; the proposal content
// becomes the contract's initial terms.
type Contract struct {
	ID                string         `json:"id"`
	DocumentID        string         `json:"document_id"`
	IssuerID          string         `json:"issuer_id"`
	CounterpartyEmail string         `json:"counterparty_email"`
	Title             string         `json:"title"`
	AmountCents       int64          `json:"amount_cents"`
	Currency          string         `json:"currency"`
	Terms             string         `json:"terms"`
	Deliverables      []string       `json:"deliverables"`
	Timeline          string         `json:"timeline"`
	Status            ContractStatus `json:"status"`
	SignerName        string         `json:"signer_name,omitempty"`
	SignedAt          *time.Time     `json:"signed_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}
