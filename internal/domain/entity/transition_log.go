package entity

import "time"

// TransitionRecord is one applied status change. The log is the audit trail
// that survives even after a document reaches a terminal state.
type TransitionRecord struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ActorID    string    `json:"actor_id"`
	CreatedAt  time.Time `json:"created_at"`
}
