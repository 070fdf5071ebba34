package models

import "time"

// Thread is a persisted conversation exclusively owned by one caller
// identity. Ownership is established at creation and never transferred.
// Messages form a strictly append-ordered sequence; the sequence never
// shrinks except via whole-thread deletion.
type Thread struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title,omitempty"`
	Messages  []Message `json:"messages,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ThreadSummary is the metadata-only view of a thread used by list
// operations; it never carries message bodies.
type ThreadSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary returns the metadata-only view of t.
func (t Thread) Summary() ThreadSummary {
	return ThreadSummary{ID: t.ID, Title: t.Title, UpdatedAt: t.UpdatedAt}
}
