package feed

import (
	"sort"

	"github.com/crewdesk-app/crewdesk/internal/client/models"
)

// Store is an in-memory ordered collection of feed messages keyed by id.
// Messages are kept ascending by (CreatedAt, ID). The store is not safe for
// concurrent use; the owning reconciler serializes access.
//
// Feeds hold hundreds of items at most, so positions are found by linear
// scan rather than anything cleverer.
type Store struct {
	items []models.Message
}

func NewStore() *Store {
	return &Store{}
}

// Len returns the number of stored messages.
func (s *Store) Len() int {
	return len(s.items)
}

// Get returns the message with the given id, if present.
func (s *Store) Get(id string) (models.Message, bool) {
	if i := s.index(id); i >= 0 {
		return s.items[i], true
	}
	return models.Message{}, false
}

// Oldest returns the first message in feed order, if any.
func (s *Store) Oldest() (models.Message, bool) {
	if len(s.items) == 0 {
		return models.Message{}, false
	}
	return s.items[0], true
}

// Newest returns the last message in feed order, if any.
func (s *Store) Newest() (models.Message, bool) {
	if len(s.items) == 0 {
		return models.Message{}, false
	}
	return s.items[len(s.items)-1], true
}

// Insert places m keeping feed order. Inserting an id that is already present
// replaces the stored message instead, so replayed deliveries merge cleanly.
func (s *Store) Insert(m models.Message) {
	if i := s.index(m.ID); i >= 0 {
		s.replaceAt(i, m)
		return
	}
	at := sort.Search(len(s.items), func(i int) bool {
		return m.Before(s.items[i])
	})
	s.items = append(s.items, models.Message{})
	copy(s.items[at+1:], s.items[at:])
	s.items[at] = m
}

// Replace swaps the message with the given id for m, keeping its position
// unless the ordering key changed, in which case it is removed and
// reinserted. Returns false if id is not present.
func (s *Store) Replace(id string, m models.Message) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.replaceAt(i, m)
	return true
}

// Remove deletes the message with the given id. Removing an absent id is a
// no-op.
func (s *Store) Remove(id string) {
	if i := s.index(id); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
}

// All returns the current feed as a fresh slice; mutating it does not affect
// the store.
func (s *Store) All() []models.Message {
	out := make([]models.Message, len(s.items))
	copy(out, s.items)
	return out
}

// Rebuild discards the current contents and replaces them with the given
// authoritative list, re-sorted into feed order. Duplicate ids keep the last
// occurrence.
func (s *Store) Rebuild(list []models.Message) {
	s.items = s.items[:0]
	for _, m := range list {
		s.Insert(m)
	}
}

func (s *Store) index(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) replaceAt(i int, m models.Message) {
	old := s.items[i]
	if old.CreatedAt.Equal(m.CreatedAt) && old.ID == m.ID {
		s.items[i] = m
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.Insert(m)
}
