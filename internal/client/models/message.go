// Package models defines the client-side domain types: chat messages,
// schools, time-off requests, shifts and yearbook checklist entries.
package models

import "time"

// Message is one item of a conversation feed.
//
// ID is opaque and unique within a conversation. Confirmed messages carry the
// server-assigned id; messages that are still awaiting confirmation carry a
// locally generated temporary id and Pending=true. A confirmed message is
// immutable; pending messages only ever get replaced or removed.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	AuthorID       string    `json:"author_id"`
	Body           string    `json:"body,omitempty"`
	AttachmentRef  string    `json:"attachment_ref,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	Pending        bool      `json:"-"`
}

// Before reports whether m sorts ahead of other in a feed. Messages order by
// creation time ascending, ties broken by id string comparison so the order
// is total and stable across rebuilds.
func (m Message) Before(other Message) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.Before(other.CreatedAt)
	}
	return m.ID < other.ID
}

// SamePayload reports whether two messages carry the same author and payload.
// Used to correlate a server-confirmed message with a pending local one.
func (m Message) SamePayload(other Message) bool {
	return m.AuthorID == other.AuthorID &&
		m.Body == other.Body &&
		m.AttachmentRef == other.AttachmentRef
}
