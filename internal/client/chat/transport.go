package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/crewdesk-app/crewdesk/internal/client/feed"
	"github.com/crewdesk-app/crewdesk/internal/common"
	"github.com/crewdesk-app/crewdesk/internal/logging"
)

// Transport implements feed.Source against the CrewDesk backend: message
// CRUD over HTTP/JSON, change batches over a Redis pub/sub channel per
// conversation.
type Transport struct {
	baseURL string
	token   string
	http    *http.Client
	rdb     *redis.Client
	log     logging.Logger
}

// NewTransport builds a transport. token is the opaque session token sent on
// every request; rdb is a connected Redis client used only for subscribing.
func NewTransport(baseURL, token string, rdb *redis.Client, log logging.Logger) *Transport {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Transport{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
		rdb:     rdb,
		log:     log,
	}
}

// eventsChannel is the pub/sub channel carrying change batches for one
// conversation. Must match the server's publisher.
func eventsChannel(conversationID string) string {
	return "conv:" + conversationID + ":events"
}

// Subscribe streams change batches until ctx is canceled. Undecodable
// deliveries are logged and skipped; the next delivery supersedes them.
func (t *Transport) Subscribe(ctx context.Context, conversationID string) (<-chan feed.Batch, error) {
	sub := t.rdb.Subscribe(ctx, eventsChannel(conversationID))
	// Force the subscription onto the wire before returning.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", conversationID, err)
	}

	out := make(chan feed.Batch, 4)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var wb wireBatch
				if err := json.Unmarshal([]byte(msg.Payload), &wb); err != nil {
					t.log.Warn(ctx, "dropping undecodable change batch", "err", err)
					continue
				}
				b := feed.Batch{Changes: make([]feed.Change, 0, len(wb.Changes))}
				for _, wc := range wb.Changes {
					b.Changes = append(b.Changes, feed.Change{
						Kind: feed.ChangeKind(wc.Kind),
						ID:   wc.ID,
						Raw:  wc.Item,
					})
				}
				select {
				case out <- b:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Send posts a draft and returns the confirmed item in wire form.
func (t *Transport) Send(ctx context.Context, conversationID string, d feed.Draft) (json.RawMessage, error) {
	body := struct {
		Body          string `json:"body"`
		AttachmentRef string `json:"attachment_ref,omitempty"`
	}{Body: d.Body, AttachmentRef: d.AttachmentRef}

	var resp struct {
		Message json.RawMessage `json:"message"`
	}
	path := "/api/conversations/" + url.PathEscape(conversationID) + "/messages"
	if err := t.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	return resp.Message, nil
}

// LoadBefore fetches one page of history older than beforeID (the newest
// page when beforeID is empty).
func (t *Transport) LoadBefore(ctx context.Context, conversationID, beforeID string, limit int) ([]json.RawMessage, bool, error) {
	q := url.Values{}
	if beforeID != "" {
		q.Set("before", beforeID)
	}
	q.Set("limit", strconv.Itoa(limit))

	var resp struct {
		Messages []json.RawMessage `json:"messages"`
		HasMore  bool              `json:"has_more"`
	}
	path := "/api/conversations/" + url.PathEscape(conversationID) + "/messages?" + q.Encode()
	if err := t.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, false, err
	}
	return resp.Messages, resp.HasMore, nil
}

// History returns the authoritative full message list for the conversation.
func (t *Transport) History(ctx context.Context, conversationID string) ([]json.RawMessage, error) {
	var resp struct {
		Messages []json.RawMessage `json:"messages"`
	}
	path := "/api/conversations/" + url.PathEscape(conversationID) + "/history"
	if err := t.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// MarkRead advances the read watermark to messageID.
func (t *Transport) MarkRead(ctx context.Context, conversationID, messageID string) error {
	body := struct {
		MessageID string `json:"message_id"`
	}{MessageID: messageID}
	path := "/api/conversations/" + url.PathEscape(conversationID) + "/read"
	return t.do(ctx, http.MethodPost, path, body, nil)
}

func (t *Transport) do(ctx context.Context, method, path string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(common.AccessTokenHeaderName, t.token)

	resp, err := t.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return common.ErrNotAuthenticated
	case resp.StatusCode == http.StatusNotFound:
		return common.ErrNotFound
	case resp.StatusCode >= 400:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, string(b))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var _ feed.Source = (*Transport)(nil)
