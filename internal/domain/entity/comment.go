package entity

import "time"

// Comment on a document. Internal comments are visible only to the issuing
// party; counter-party readers never see them.
type Comment struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	AuthorID   string    `json:"author_id"`
	Content    string    `json:"content"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}
