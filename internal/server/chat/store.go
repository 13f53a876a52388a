// Package chat stores conversation messages in Redis and fans changes out
// to subscribed clients. Messages live in one sorted set per conversation,
// scored by send time; every mutation also publishes a change batch on the
// conversation's event channel so connected feeds converge without polling.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/crewdesk-app/crewdesk/internal/common"
)

// Message is a chat message in wire form. Timestamp is unix milliseconds.
type Message struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	From           string `json:"from"`
	Body           string `json:"body,omitempty"`
	AttachmentRef  string `json:"attachment_ref,omitempty"`
	Timestamp      int64  `json:"ts"`
}

// Change kinds published on the event channel.
const (
	ChangeInsert = "insert"
	ChangeUpdate = "update"
	ChangeRemove = "remove"
	ChangeMove   = "move"
)

// Change is one mutation in an event batch.
type Change struct {
	Kind string          `json:"kind"`
	ID   string          `json:"id,omitempty"`
	Item json.RawMessage `json:"item,omitempty"`
}

// Batch is one pub/sub delivery.
type Batch struct {
	Changes []Change `json:"changes"`
}

// Store handles Redis operations for conversation messages.
type Store struct {
	client *redis.Client
}

// NewStore pings the given client and wraps it.
func NewStore(ctx context.Context, client *redis.Client) (*Store, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// messagesKey returns the key for a conversation's message sorted set.
func messagesKey(conversationID string) string {
	return fmt.Sprintf("conv:%s:messages", conversationID)
}

// eventsChannel returns the pub/sub channel for a conversation's change
// batches. Must match the client transport's subscriber.
func eventsChannel(conversationID string) string {
	return fmt.Sprintf("conv:%s:events", conversationID)
}

// readKey returns the key holding one employee's read watermark.
func readKey(conversationID, employeeID string) string {
	return fmt.Sprintf("conv:%s:read:%s", conversationID, employeeID)
}

// AddMessage stores a message and publishes an insert event. The store
// assigns the id and timestamp; msg is updated in place.
func (s *Store) AddMessage(ctx context.Context, msg *Message) error {
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	key := messagesKey(msg.ConversationID)
	err = s.client.ZAdd(ctx, key, redis.Z{
		Score:  float64(msg.Timestamp),
		Member: string(data),
	}).Err()
	if err != nil {
		return err
	}

	return s.publish(ctx, msg.ConversationID, Batch{Changes: []Change{
		{Kind: ChangeInsert, ID: msg.ID, Item: data},
	}})
}

// Messages returns up to limit messages older than beforeID (or the newest
// page when beforeID is empty), oldest first, plus whether older ones remain.
//
// Paging walks the sorted set by rank rather than by score: burst sends land
// on the same millisecond score, and an exclusive score boundary would skip
// the anchor's same-score neighbors for good. Rank is stable because ties
// keep a fixed lexicographic member order.
func (s *Store) Messages(ctx context.Context, conversationID, beforeID string, limit int) ([]Message, bool, error) {
	if limit <= 0 {
		limit = 50
	}

	key := messagesKey(conversationID)

	start := int64(0)
	if beforeID != "" {
		anchor, raw, err := s.findRaw(ctx, conversationID, beforeID)
		if err != nil {
			return nil, false, err
		}
		if anchor == nil {
			return nil, false, common.ErrNotFound
		}
		rank, err := s.client.ZRevRank(ctx, key, raw).Result()
		if err != nil {
			return nil, false, err
		}
		start = rank + 1
	}

	// Fetch newest first, one extra to detect more pages.
	results, err := s.client.ZRevRange(ctx, key, start, start+int64(limit)).Result()
	if err != nil {
		return nil, false, err
	}

	hasMore := len(results) > limit
	if hasMore {
		results = results[:limit]
	}

	// Reverse into feed order (oldest first).
	messages := make([]Message, 0, len(results))
	for i := len(results) - 1; i >= 0; i-- {
		var msg Message
		if err := json.Unmarshal([]byte(results[i]), &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, hasMore, nil
}

// History returns the full conversation, oldest first.
func (s *Store) History(ctx context.Context, conversationID string) ([]Message, error) {
	key := messagesKey(conversationID)
	results, err := s.client.ZRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	messages := make([]Message, 0, len(results))
	for _, data := range results {
		var msg Message
		if err := json.Unmarshal([]byte(data), &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// GetMessage retrieves a specific message by ID, nil if absent.
func (s *Store) GetMessage(ctx context.Context, conversationID, msgID string) (*Message, error) {
	key := messagesKey(conversationID)
	results, err := s.client.ZRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	for _, data := range results {
		var msg Message
		if err := json.Unmarshal([]byte(data), &msg); err != nil {
			continue
		}
		if msg.ID == msgID {
			return &msg, nil
		}
	}
	return nil, nil
}

// UpdateMessage replaces the body and attachment of an existing message and
// publishes an update event. The timestamp and id are immutable.
func (s *Store) UpdateMessage(ctx context.Context, conversationID, msgID, body, attachmentRef string) (*Message, error) {
	old, raw, err := s.findRaw(ctx, conversationID, msgID)
	if err != nil {
		return nil, err
	}
	if old == nil {
		return nil, common.ErrNotFound
	}

	updated := *old
	updated.Body = body
	updated.AttachmentRef = attachmentRef
	data, err := json.Marshal(&updated)
	if err != nil {
		return nil, err
	}

	key := messagesKey(conversationID)
	pipe := s.client.Pipeline()
	pipe.ZRem(ctx, key, raw)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(updated.Timestamp), Member: string(data)})
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	err = s.publish(ctx, conversationID, Batch{Changes: []Change{
		{Kind: ChangeUpdate, ID: msgID, Item: data},
	}})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteMessage removes a message and publishes a remove event. Deleting an
// already absent message is a no-op.
func (s *Store) DeleteMessage(ctx context.Context, conversationID, msgID string) error {
	old, raw, err := s.findRaw(ctx, conversationID, msgID)
	if err != nil {
		return err
	}
	if old == nil {
		return nil
	}

	if err := s.client.ZRem(ctx, messagesKey(conversationID), raw).Err(); err != nil {
		return err
	}

	return s.publish(ctx, conversationID, Batch{Changes: []Change{
		{Kind: ChangeRemove, ID: msgID},
	}})
}

// MarkRead advances the employee's read watermark. Watermarks only move
// forward; marking an older message than the current watermark is a no-op.
func (s *Store) MarkRead(ctx context.Context, conversationID, employeeID, msgID string) error {
	msg, err := s.GetMessage(ctx, conversationID, msgID)
	if err != nil {
		return err
	}
	if msg == nil {
		return common.ErrNotFound
	}

	key := readKey(conversationID, employeeID)
	cur, err := s.client.Get(ctx, key).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	if cur != "" {
		if prev, err := s.GetMessage(ctx, conversationID, cur); err == nil && prev != nil && prev.Timestamp > msg.Timestamp {
			return nil
		}
	}
	return s.client.Set(ctx, key, msgID, 0).Err()
}

// ReadMarker returns the employee's current watermark, empty if unset.
func (s *Store) ReadMarker(ctx context.Context, conversationID, employeeID string) (string, error) {
	id, err := s.client.Get(ctx, readKey(conversationID, employeeID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return id, err
}

// findRaw locates a message and the exact member string storing it.
func (s *Store) findRaw(ctx context.Context, conversationID, msgID string) (*Message, string, error) {
	key := messagesKey(conversationID)
	results, err := s.client.ZRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, "", err
	}

	for _, data := range results {
		var msg Message
		if err := json.Unmarshal([]byte(data), &msg); err != nil {
			continue
		}
		if msg.ID == msgID {
			return &msg, data, nil
		}
	}
	return nil, "", nil
}

func (s *Store) publish(ctx context.Context, conversationID string, b Batch) error {
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, eventsChannel(conversationID), data).Err()
}
