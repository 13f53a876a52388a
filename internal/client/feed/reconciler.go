package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crewdesk-app/crewdesk/internal/client/models"
	"github.com/crewdesk-app/crewdesk/internal/common"
	"github.com/crewdesk-app/crewdesk/internal/logging"
)

// DefaultPageSize is the backfill page size requested from the source.
const DefaultPageSize = 50

// Options tune a Reconciler. OnChange receives a fresh snapshot of the feed
// after every successful mutation; it runs on the reconciler's serialized
// context and must not call back into the reconciler. OnError receives
// asynchronous send failures.
type Options struct {
	PageSize int
	Logger   logging.Logger
	OnChange func([]models.Message)
	OnError  func(error)
}

// Reconciler owns the feed of a single conversation: it applies remote
// change batches to the ordered store, shows optimistic sends immediately
// and backfills history on demand.
//
// All mutations are serialized on one mutex. Batches are applied at most one
// at a time. A batch handed to ApplyBatch while another is mid-apply is
// dropped, so direct callers must be prepared to redeliver; the subscription
// pump instead waits for its turn, because pub/sub deltas are delivered
// exactly once and a drop there would never converge.
type Reconciler struct {
	conversationID string
	authorID       string

	src  Source
	conv Converter

	mu      sync.Mutex
	store   *Store
	pending *Tracker
	cursor  *Cursor
	closed  bool

	pageSize int
	log      logging.Logger
	onChange func([]models.Message)
	onError  func(error)

	cancel context.CancelFunc
}

// NewReconciler builds a reconciler for one conversation. authorID is the
// current user; an empty authorID means there is no active session and
// Submit will refuse with ErrNotAuthenticated.
func NewReconciler(conversationID, authorID string, src Source, conv Converter, opts Options) *Reconciler {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger{}
	}
	return &Reconciler{
		conversationID: conversationID,
		authorID:       authorID,
		src:            src,
		conv:           conv,
		store:          NewStore(),
		pending:        NewTracker(),
		cursor:         NewCursor(),
		pageSize:       opts.PageSize,
		log:            opts.Logger.With("conversation_id", conversationID),
		onChange:       opts.OnChange,
		onError:        opts.OnError,
	}
}

// Start loads the newest history page and begins consuming the change
// stream. It returns once the initial page is applied; batches are then
// processed in the background until Close or ctx cancellation.
func (r *Reconciler) Start(ctx context.Context) error {
	if !r.cursor.BeginLoad() {
		return fmt.Errorf("start: %w", common.ErrLoadFailed)
	}
	raws, more, err := r.src.LoadBefore(ctx, r.conversationID, "", r.pageSize)
	if err != nil {
		r.cursor.Fail()
		return fmt.Errorf("initial page: %w", errors.Join(common.ErrLoadFailed, err))
	}
	r.cursor.EndLoad(more)

	r.mu.Lock()
	for _, raw := range raws {
		m, err := r.conv(raw)
		if err != nil {
			r.log.Warn(ctx, "skipping malformed item", "err", err)
			continue
		}
		r.store.Insert(m)
	}
	r.emitLocked()
	r.mu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	batches, err := r.src.Subscribe(subCtx, r.conversationID)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe: %w", err)
	}
	r.cancel = cancel

	go r.pump(subCtx, batches)
	return nil
}

// Close cancels interest in the conversation. Notifications still in flight
// for this feed are ignored from here on.
func (r *Reconciler) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
}

// Messages returns a snapshot of the current feed in order.
func (r *Reconciler) Messages() []models.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.All()
}

// PendingCount returns how many optimistic sends await confirmation.
func (r *Reconciler) PendingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending.PendingCount()
}

// Submit shows an optimistic message immediately and settles it in the
// background: on acknowledgment the matching change batch replaces it with
// the confirmed item, on failure it is rolled back and OnError is invoked.
// The returned message carries the temporary id.
func (r *Reconciler) Submit(ctx context.Context, d Draft) (models.Message, error) {
	if r.authorID == "" {
		return models.Message{}, common.ErrNotAuthenticated
	}

	m := models.Message{
		ID:             "local-" + uuid.NewString(),
		ConversationID: r.conversationID,
		AuthorID:       r.authorID,
		Body:           d.Body,
		AttachmentRef:  d.AttachmentRef,
		CreatedAt:      time.Now().UTC(),
		Pending:        true,
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return models.Message{}, common.ErrFeedClosed
	}
	r.pending.RegisterPending(m)
	r.store.Insert(m)
	r.emitLocked()
	r.mu.Unlock()

	go r.settle(ctx, m, d)

	return m, nil
}

func (r *Reconciler) settle(ctx context.Context, m models.Message, d Draft) {
	_, err := r.src.Send(ctx, r.conversationID, d)
	if err == nil {
		r.log.Debug(ctx, "send acknowledged", "temp_id", m.ID)
		return
	}

	r.mu.Lock()
	r.pending.Expire(m.ID)
	r.store.Remove(m.ID)
	if !r.closed {
		r.emitLocked()
	}
	r.mu.Unlock()

	r.log.Warn(ctx, "send failed, optimistic message rolled back", "temp_id", m.ID, "err", err)
	if r.onError != nil {
		r.onError(fmt.Errorf("submit: %w", errors.Join(common.ErrSendFailed, err)))
	}
}

// RequestMore backfills one page of older history. It is a no-op when no
// more history exists, a load is already in flight, or the feed is empty
// (nothing to extend — silently treated as no more history).
func (r *Reconciler) RequestMore(ctx context.Context) error {
	r.mu.Lock()
	oldest, ok := r.store.Oldest()
	r.mu.Unlock()
	if !ok {
		r.log.Debug(ctx, "backfill on empty feed ignored")
		return nil
	}

	if !r.cursor.BeginLoad() {
		return nil
	}

	raws, more, err := r.src.LoadBefore(ctx, r.conversationID, oldest.ID, r.pageSize)
	if err != nil {
		r.cursor.Fail()
		return fmt.Errorf("backfill: %w", errors.Join(common.ErrLoadFailed, err))
	}
	r.cursor.EndLoad(more)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return common.ErrFeedClosed
	}
	for _, raw := range raws {
		m, convErr := r.conv(raw)
		if convErr != nil {
			r.log.Warn(ctx, "skipping malformed item", "err", convErr)
			continue
		}
		r.store.Insert(m)
	}
	r.emitLocked()
	return nil
}

// CanLoadMore reports whether RequestMore would dispatch a request.
func (r *Reconciler) CanLoadMore() bool {
	return r.cursor.CanLoadMore()
}

// MarkRead advances the remote read watermark to the newest message.
// Fire-and-forget: failures are logged, never surfaced.
func (r *Reconciler) MarkRead(ctx context.Context) {
	r.mu.Lock()
	newest, ok := r.store.Newest()
	r.mu.Unlock()
	if !ok || newest.Pending {
		return
	}
	if err := r.src.MarkRead(ctx, r.conversationID, newest.ID); err != nil {
		r.log.Debug(ctx, "mark read failed", "err", err)
	}
}

func (r *Reconciler) pump(ctx context.Context, batches <-chan Batch) {
	for {
		select {
		case <-ctx.Done():
			return
		case b, ok := <-batches:
			if !ok {
				return
			}
			r.apply(ctx, b)
		}
	}
}

// apply waits for the feed lock instead of dropping. The subscription
// channel already serializes deliveries, and a delta lost here would not be
// redelivered by the transport.
func (r *Reconciler) apply(ctx context.Context, b Batch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applyLocked(ctx, b)
}

// ApplyBatch applies one batch of remote changes to the store. It returns
// false without applying anything when the feed is busy with a previous
// batch (or another mutation); a direct caller owns redelivery of a dropped
// batch. Changes apply in reported order, except moves, which are deferred
// to a single wholesale rebuild after the rest of the batch.
func (r *Reconciler) ApplyBatch(ctx context.Context, b Batch) bool {
	if !r.mu.TryLock() {
		return false
	}
	defer r.mu.Unlock()
	return r.applyLocked(ctx, b)
}

func (r *Reconciler) applyLocked(ctx context.Context, b Batch) bool {
	if r.closed {
		return false
	}

	rebuild := false
	for _, ch := range b.Changes {
		switch ch.Kind {
		case ChangeInsert:
			m, err := r.conv(ch.Raw)
			if err != nil {
				r.log.Warn(ctx, "skipping malformed insert", "err", err)
				continue
			}
			if tempID, ok := r.pending.Resolve(m); ok {
				r.store.Remove(tempID)
			}
			r.store.Insert(m)

		case ChangeUpdate:
			m, err := r.conv(ch.Raw)
			if err != nil {
				r.log.Warn(ctx, "skipping malformed update", "err", err)
				continue
			}
			// Items that predate this session's view are ignored.
			r.store.Replace(m.ID, m)

		case ChangeRemove:
			r.store.Remove(ch.ID)

		case ChangeMove:
			rebuild = true

		default:
			r.log.Warn(ctx, "unknown change kind", "kind", ch.Kind)
		}
	}

	if rebuild {
		if err := r.rebuildLocked(ctx); err != nil {
			r.log.Error(ctx, "full rebuild failed, keeping incremental state", "err", err)
		}
	}

	r.emitLocked()
	return true
}

// rebuildLocked replaces the store contents with the authoritative remote
// list. Incremental repositioning under partial batches is fragile; a
// reorder always triggers this wholesale path instead.
func (r *Reconciler) rebuildLocked(ctx context.Context) error {
	raws, err := r.src.History(ctx, r.conversationID)
	if err != nil {
		return errors.Join(common.ErrLoadFailed, err)
	}
	list := make([]models.Message, 0, len(raws))
	for _, raw := range raws {
		m, convErr := r.conv(raw)
		if convErr != nil {
			r.log.Warn(ctx, "skipping malformed item in rebuild", "err", convErr)
			continue
		}
		list = append(list, m)
	}
	r.store.Rebuild(list)
	return nil
}

func (r *Reconciler) emitLocked() {
	if r.onChange != nil {
		r.onChange(r.store.All())
	}
}
