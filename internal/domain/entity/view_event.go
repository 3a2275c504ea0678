package entity

import "time"

// ViewEvent is one immutable record of a viewing session or section-dwell
// interval. Events are append-only: never mutated, never deleted except
// together with their document.
type ViewEvent struct {
	ID               string    `json:"id"`
	DocumentID       string    `json:"document_id"`
	ViewerID         string    `json:"viewer_id"`
	Section          string    `json:"section,omitempty"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	CreatedAt        time.Time `json:"created_at"`
}

// EngagementSnapshot is derived on every read from the full event log and
// never persisted, so it cannot drift from the events it summarizes.
type EngagementSnapshot struct {
	TotalViews       int            `json:"total_views"`
	UniqueViews      int            `json:"unique_views"`
	TimeSpentViewing int            `json:"time_spent_viewing"`
	EngagementScore  int            `json:"engagement_score"`
	ViewsBySection   map[string]int `json:"views_by_section"`
	ViewTimeline     []ViewEvent    `json:"view_timeline"`
}
