package feed

import "github.com/crewdesk-app/crewdesk/internal/client/models"

// Tracker keeps the locally-created messages that are still waiting for
// server confirmation, in submission order. Entries live only for the
// process lifetime and only until they are resolved or expired.
//
// Confirmed messages are correlated by author and payload rather than by a
// correlation id, because the wire protocol does not carry one. Two pending
// messages with identical author and text are therefore ambiguous; resolving
// oldest-first keeps the match deterministic and, in practice, correct.
type Tracker struct {
	pending []models.Message
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// PendingCount returns the number of unconfirmed entries.
func (t *Tracker) PendingCount() int {
	return len(t.pending)
}

// RegisterPending records m as awaiting confirmation. m must carry the
// temporary id and Pending=true.
func (t *Tracker) RegisterPending(m models.Message) {
	t.pending = append(t.pending, m)
}

// Resolve scans pending entries for the oldest one matching confirmed's
// author and payload, removes it and returns its temporary id. ok=false
// means the confirmed message is wholly new (another participant, or a
// message from a prior session).
func (t *Tracker) Resolve(confirmed models.Message) (tempID string, ok bool) {
	for i, p := range t.pending {
		if p.SamePayload(confirmed) {
			t.pending = append(t.pending[:i], t.pending[i+1:]...)
			return p.ID, true
		}
	}
	return "", false
}

// Expire removes the entry with the given temporary id unconditionally.
// Used when a send fails. Expiring an unknown id is a no-op.
func (t *Tracker) Expire(tempID string) {
	for i, p := range t.pending {
		if p.ID == tempID {
			t.pending = append(t.pending[:i], t.pending[i+1:]...)
			return
		}
	}
}
