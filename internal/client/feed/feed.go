// Package feed reconciles a remote conversation feed into locally observable
// state: an ordered message list with optimistic sends, batch-applied remote
// changes and bounded history backfill.
//
// One Reconciler instance owns the feed of exactly one conversation. All feed
// mutations are serialized on the reconciler; switching conversations means
// closing the reconciler and building a new one.
package feed

import (
	"context"
	"encoding/json"

	"github.com/crewdesk-app/crewdesk/internal/client/models"
)

// ChangeKind classifies one remote-reported mutation.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeRemove ChangeKind = "remove"
	// ChangeMove signals the remote reordered items. It carries no payload;
	// the reconciler reacts with a wholesale rebuild from History.
	ChangeMove ChangeKind = "move"
)

// Change is a single mutation reported by the remote collaborator. Raw still
// holds the wire form; decoding happens item by item during apply so one
// malformed item cannot sink the rest of the batch. Remove only needs ID.
type Change struct {
	Kind ChangeKind
	ID   string
	Raw  json.RawMessage
}

// Batch is one delivery of remote changes, applied atomically with respect
// to other feed mutations.
type Batch struct {
	Changes []Change
}

// Draft is the user-submitted payload of an outgoing message.
type Draft struct {
	Body          string
	AttachmentRef string
}

// Converter decodes a wire item into the local message model.
type Converter func(raw json.RawMessage) (models.Message, error)

// Source is the remote feed collaborator, typically backed by the chat
// transport. The reconciler never reaches around it.
type Source interface {
	// Subscribe streams change batches for the conversation until ctx is
	// canceled. Deliveries are cumulative-eventually: a dropped batch is
	// superseded by later ones.
	Subscribe(ctx context.Context, conversationID string) (<-chan Batch, error)

	// Send submits a draft and blocks until the remote acknowledges it,
	// returning the confirmed item in wire form.
	Send(ctx context.Context, conversationID string, d Draft) (json.RawMessage, error)

	// LoadBefore returns up to limit items older than beforeID (newest page
	// when beforeID is empty) and whether more history remains beyond them.
	LoadBefore(ctx context.Context, conversationID, beforeID string, limit int) ([]json.RawMessage, bool, error)

	// History returns the authoritative full item list, used to rebuild the
	// feed after a reorder notification.
	History(ctx context.Context, conversationID string) ([]json.RawMessage, error)

	// MarkRead advances the read watermark. Fire-and-forget; not part of
	// reconciliation correctness.
	MarkRead(ctx context.Context, conversationID, messageID string) error
}
