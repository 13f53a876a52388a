package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewdesk-app/crewdesk/internal/client/models"
	"github.com/crewdesk-app/crewdesk/internal/common"
)

// fakeSource is an in-memory Source with adjustable behavior.
type fakeSource struct {
	mu           sync.Mutex
	batches      chan Batch
	sendGate     chan struct{}
	sendErr      error
	sent         []Draft
	page         []json.RawMessage
	pageMore     bool
	loadErr      error
	loadCalls    int
	history      []json.RawMessage
	historyCalls int
	marked       []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{batches: make(chan Batch, 8)}
}

func (f *fakeSource) Subscribe(ctx context.Context, conversationID string) (<-chan Batch, error) {
	return f.batches, nil
}

func (f *fakeSource) Send(ctx context.Context, conversationID string, d Draft) (json.RawMessage, error) {
	if f.sendGate != nil {
		<-f.sendGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, d)
	return json.RawMessage(`{}`), nil
}

func (f *fakeSource) LoadBefore(ctx context.Context, conversationID, beforeID string, limit int) ([]json.RawMessage, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loadCalls++
	if f.loadErr != nil {
		return nil, false, f.loadErr
	}
	return f.page, f.pageMore, nil
}

func (f *fakeSource) History(ctx context.Context, conversationID string) ([]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyCalls++
	return f.history, nil
}

func (f *fakeSource) MarkRead(ctx context.Context, conversationID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, messageID)
	return nil
}

func (f *fakeSource) loadCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loadCalls
}

func (f *fakeSource) setPage(page []json.RawMessage, more bool, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.page, f.pageMore, f.loadErr = page, more, err
}

func testConverter(raw json.RawMessage) (models.Message, error) {
	var m models.Message
	if err := json.Unmarshal(raw, &m); err != nil {
		return models.Message{}, err
	}
	if m.ID == "" {
		return models.Message{}, fmt.Errorf("item without id")
	}
	return m, nil
}

func rawOf(t *testing.T, m models.Message) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	return data
}

func newTestReconciler(t *testing.T, src *fakeSource, opts Options) *Reconciler {
	t.Helper()
	return NewReconciler("conv-1", "emp-1", src, testConverter, opts)
}

func insertBatch(t *testing.T, ms ...models.Message) Batch {
	t.Helper()
	b := Batch{}
	for _, m := range ms {
		b.Changes = append(b.Changes, Change{Kind: ChangeInsert, Raw: rawOf(t, m)})
	}
	return b
}

func TestReconciler_SubmitShowsOptimisticImmediately(t *testing.T) {
	src := newFakeSource()
	src.sendGate = make(chan struct{})
	defer close(src.sendGate)

	r := newTestReconciler(t, src, Options{})

	m, err := r.Submit(context.Background(), Draft{Body: "on my way"})
	require.NoError(t, err)
	assert.True(t, m.Pending)

	// Visible before the remote acknowledges.
	got := r.Messages()
	require.Len(t, got, 1)
	assert.Equal(t, "on my way", got[0].Body)
	assert.Equal(t, "emp-1", got[0].AuthorID)
	assert.Equal(t, 1, r.PendingCount())
}

func TestReconciler_SubmitRequiresSession(t *testing.T) {
	r := NewReconciler("conv-1", "", newFakeSource(), testConverter, Options{})

	_, err := r.Submit(context.Background(), Draft{Body: "hi"})
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)
	assert.Empty(t, r.Messages())
}

func TestReconciler_ConfirmedInsertResolvesOptimistic(t *testing.T) {
	src := newFakeSource()
	r := newTestReconciler(t, src, Options{})
	ctx := context.Background()

	m, err := r.Submit(ctx, Draft{Body: "done for today"})
	require.NoError(t, err)

	confirmed := models.Message{
		ID:             "srv-1",
		ConversationID: "conv-1",
		AuthorID:       "emp-1",
		Body:           "done for today",
		CreatedAt:      storeBase,
	}
	require.True(t, r.ApplyBatch(ctx, insertBatch(t, confirmed)))

	got := r.Messages()
	require.Len(t, got, 1, "no duplicate, no gap")
	assert.Equal(t, "srv-1", got[0].ID)
	assert.Zero(t, r.PendingCount())
	assert.NotContains(t, ids(got), m.ID)
}

func TestReconciler_SendFailureRollsBack(t *testing.T) {
	src := newFakeSource()
	src.sendErr = errors.New("transport down")

	errCh := make(chan error, 1)
	r := newTestReconciler(t, src, Options{OnError: func(err error) { errCh <- err }})

	_, err := r.Submit(context.Background(), Draft{Body: "hello?"})
	require.NoError(t, err, "submit itself succeeds optimistically")

	select {
	case err = <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("send failure was never surfaced")
	}
	assert.ErrorIs(t, err, common.ErrSendFailed)

	// Feed returns to its pre-submit state.
	assert.Empty(t, r.Messages())
	assert.Zero(t, r.PendingCount())
}

func TestReconciler_FIFOResolutionForIdenticalSends(t *testing.T) {
	src := newFakeSource()
	src.sendGate = make(chan struct{})
	defer close(src.sendGate)

	r := newTestReconciler(t, src, Options{})
	ctx := context.Background()

	first, err := r.Submit(ctx, Draft{Body: "ok"})
	require.NoError(t, err)
	second, err := r.Submit(ctx, Draft{Body: "ok"})
	require.NoError(t, err)

	confirm1 := models.Message{ID: "srv-1", ConversationID: "conv-1", AuthorID: "emp-1", Body: "ok", CreatedAt: storeBase}
	require.True(t, r.ApplyBatch(ctx, insertBatch(t, confirm1)))

	got := ids(r.Messages())
	assert.Contains(t, got, "srv-1")
	assert.Contains(t, got, second.ID, "second optimistic entry must survive the first confirmation")
	assert.NotContains(t, got, first.ID, "first confirmation matches the first-submitted entry")

	confirm2 := models.Message{ID: "srv-2", ConversationID: "conv-1", AuthorID: "emp-1", Body: "ok", CreatedAt: storeBase.Add(time.Second)}
	require.True(t, r.ApplyBatch(ctx, insertBatch(t, confirm2)))

	got = ids(r.Messages())
	assert.ElementsMatch(t, []string{"srv-1", "srv-2"}, got)
	assert.Zero(t, r.PendingCount())
}

func TestReconciler_BatchSemantics(t *testing.T) {
	src := newFakeSource()
	r := newTestReconciler(t, src, Options{})
	ctx := context.Background()

	require.True(t, r.ApplyBatch(ctx, insertBatch(t, msg("A", 1*time.Minute), msg("B", 2*time.Minute))))
	requireOrdered(t, r.Messages())

	// Remove, idempotent for absent ids.
	require.True(t, r.ApplyBatch(ctx, Batch{Changes: []Change{
		{Kind: ChangeRemove, ID: "A"},
		{Kind: ChangeRemove, ID: "never-existed"},
	}}))
	assert.Equal(t, []string{"B"}, ids(r.Messages()))

	// Ordering key governs position, not arrival order.
	require.True(t, r.ApplyBatch(ctx, insertBatch(t, msg("C", 0))))
	assert.Equal(t, []string{"C", "B"}, ids(r.Messages()))

	// Update replaces a known item, ignores an unknown one.
	edited := msg("B", 2*time.Minute)
	edited.Body = "edited"
	ghost := msg("ghost", 5*time.Minute)
	require.True(t, r.ApplyBatch(ctx, Batch{Changes: []Change{
		{Kind: ChangeUpdate, Raw: rawOf(t, edited)},
		{Kind: ChangeUpdate, Raw: rawOf(t, ghost)},
	}}))
	got := r.Messages()
	assert.Equal(t, []string{"C", "B"}, ids(got))
	assert.Equal(t, "edited", got[1].Body)
	requireOrdered(t, got)
}

func TestReconciler_MalformedItemSkippedBatchProceeds(t *testing.T) {
	src := newFakeSource()
	r := newTestReconciler(t, src, Options{})
	ctx := context.Background()

	good := msg("good", time.Minute)
	b := Batch{Changes: []Change{
		{Kind: ChangeInsert, Raw: json.RawMessage(`{"id":`)},
		{Kind: ChangeInsert, Raw: json.RawMessage(`{"body":"no id"}`)},
		{Kind: ChangeInsert, Raw: rawOf(t, good)},
	}}
	require.True(t, r.ApplyBatch(ctx, b))

	assert.Equal(t, []string{"good"}, ids(r.Messages()))
}

func TestReconciler_MoveTriggersFullRebuild(t *testing.T) {
	src := newFakeSource()
	r := newTestReconciler(t, src, Options{})
	ctx := context.Background()

	require.True(t, r.ApplyBatch(ctx, insertBatch(t, msg("stale-1", 1*time.Minute), msg("stale-2", 2*time.Minute))))

	// Authoritative list, deliberately out of order on the wire.
	src.history = []json.RawMessage{
		rawOf(t, msg("h3", 3*time.Minute)),
		rawOf(t, msg("h1", 1*time.Minute)),
		rawOf(t, msg("h2", 2*time.Minute)),
	}

	b := insertBatch(t, msg("extra", 4*time.Minute))
	b.Changes = append(b.Changes, Change{Kind: ChangeMove})
	require.True(t, r.ApplyBatch(ctx, b))

	assert.Equal(t, []string{"h1", "h2", "h3"}, ids(r.Messages()),
		"feed must equal the authoritative list regardless of prior contents")
	assert.Equal(t, 1, src.historyCalls)
	requireOrdered(t, r.Messages())
}

func TestReconciler_RequestMoreNoopWhenExhausted(t *testing.T) {
	src := newFakeSource()
	r := newTestReconciler(t, src, Options{})
	ctx := context.Background()

	require.True(t, r.ApplyBatch(ctx, insertBatch(t, msg("A", time.Minute))))

	src.setPage(nil, false, nil)
	require.NoError(t, r.RequestMore(ctx))
	assert.Equal(t, 1, src.loadCallCount())
	assert.False(t, r.CanLoadMore())

	// more=false: zero further calls to the source.
	require.NoError(t, r.RequestMore(ctx))
	assert.Equal(t, 1, src.loadCallCount())
}

func TestReconciler_RequestMoreEmptyFeedRejected(t *testing.T) {
	src := newFakeSource()
	r := newTestReconciler(t, src, Options{})

	require.NoError(t, r.RequestMore(context.Background()))
	assert.Zero(t, src.loadCallCount(), "no prior page to extend")
}

func TestReconciler_RequestMoreFailureAllowsRetry(t *testing.T) {
	src := newFakeSource()
	r := newTestReconciler(t, src, Options{})
	ctx := context.Background()

	require.True(t, r.ApplyBatch(ctx, insertBatch(t, msg("B", 2*time.Minute))))

	src.setPage(nil, false, errors.New("flaky network"))
	err := r.RequestMore(ctx)
	assert.ErrorIs(t, err, common.ErrLoadFailed)
	assert.Equal(t, []string{"B"}, ids(r.Messages()), "existing history stays intact")

	// In-flight flag cleared, more unchanged: the retry dispatches.
	src.setPage([]json.RawMessage{rawOf(t, msg("A", time.Minute))}, false, nil)
	require.NoError(t, r.RequestMore(ctx))
	assert.Equal(t, 2, src.loadCallCount())
	assert.Equal(t, []string{"A", "B"}, ids(r.Messages()))
}

func TestReconciler_StartSeedsFeedAndStreamsBatches(t *testing.T) {
	src := newFakeSource()
	src.setPage([]json.RawMessage{
		rawOf(t, msg("m1", 1*time.Minute)),
		rawOf(t, msg("m2", 2*time.Minute)),
	}, true, nil)

	r := newTestReconciler(t, src, Options{})
	require.NoError(t, r.Start(context.Background()))
	defer r.Close()

	assert.Equal(t, []string{"m1", "m2"}, ids(r.Messages()))
	assert.True(t, r.CanLoadMore())

	src.batches <- insertBatch(t, msg("m3", 3*time.Minute))
	require.Eventually(t, func() bool {
		return len(r.Messages()) == 3
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"m1", "m2", "m3"}, ids(r.Messages()))
}

func TestReconciler_CloseIgnoresLateNotifications(t *testing.T) {
	src := newFakeSource()
	src.setPage(nil, false, nil)

	r := newTestReconciler(t, src, Options{})
	require.NoError(t, r.Start(context.Background()))
	r.Close()

	assert.False(t, r.ApplyBatch(context.Background(), insertBatch(t, msg("late", time.Minute))))
	assert.Empty(t, r.Messages())
}

func TestReconciler_ConcurrentBatchIsDropped(t *testing.T) {
	src := newFakeSource()

	var block atomic.Bool
	gate := make(chan struct{})
	entered := make(chan struct{}, 1)
	r := newTestReconciler(t, src, Options{OnChange: func([]models.Message) {
		if block.Load() {
			entered <- struct{}{}
			<-gate
		}
	}})
	ctx := context.Background()

	block.Store(true)
	first := insertBatch(t, msg("first", time.Minute))
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.True(t, r.ApplyBatch(ctx, first))
	}()

	<-entered
	// The previous batch is still applying: this one must be dropped.
	assert.False(t, r.ApplyBatch(ctx, insertBatch(t, msg("second", 2*time.Minute))))

	block.Store(false)
	close(gate)
	<-done

	// Redelivery after the first batch finished applies normally.
	require.True(t, r.ApplyBatch(ctx, insertBatch(t, msg("second", 2*time.Minute))))
	assert.Equal(t, []string{"first", "second"}, ids(r.Messages()))
}

func TestReconciler_StreamedBatchWaitsForBusyFeed(t *testing.T) {
	src := newFakeSource()
	src.setPage(nil, false, nil)
	src.sendGate = make(chan struct{})
	defer close(src.sendGate)

	var block atomic.Bool
	gate := make(chan struct{})
	entered := make(chan struct{}, 1)
	r := newTestReconciler(t, src, Options{OnChange: func([]models.Message) {
		if block.CompareAndSwap(true, false) {
			entered <- struct{}{}
			<-gate
		}
	}})
	require.NoError(t, r.Start(context.Background()))
	defer r.Close()

	block.Store(true)
	go func() {
		_, err := r.Submit(context.Background(), Draft{Body: "heads up"})
		assert.NoError(t, err)
	}()
	<-entered

	// Submit still holds the feed lock while its observer runs. The streamed
	// confirmation below is delivered exactly once; it must land once the
	// feed frees up, not vanish.
	confirmed := models.Message{
		ID:             "srv-1",
		ConversationID: "conv-1",
		AuthorID:       "emp-1",
		Body:           "heads up",
		CreatedAt:      storeBase,
	}
	src.batches <- insertBatch(t, confirmed)
	close(gate)

	require.Eventually(t, func() bool {
		return r.PendingCount() == 0 && len(r.Messages()) == 1
	}, 2*time.Second, 10*time.Millisecond, "streamed batch was lost while the feed was busy")
	assert.Equal(t, []string{"srv-1"}, ids(r.Messages()))
}

func TestReconciler_MarkRead(t *testing.T) {
	src := newFakeSource()
	r := newTestReconciler(t, src, Options{})
	ctx := context.Background()

	// Empty feed: nothing to acknowledge.
	r.MarkRead(ctx)
	assert.Empty(t, src.marked)

	require.True(t, r.ApplyBatch(ctx, insertBatch(t, msg("m1", time.Minute), msg("m2", 2*time.Minute))))
	r.MarkRead(ctx)
	assert.Equal(t, []string{"m2"}, src.marked)
}

func TestReconciler_SnapshotEmittedAfterEveryMutation(t *testing.T) {
	src := newFakeSource()

	var emits int32
	r := newTestReconciler(t, src, Options{OnChange: func(ms []models.Message) {
		atomic.AddInt32(&emits, 1)
		requireOrdered(t, ms)
	}})
	ctx := context.Background()

	require.True(t, r.ApplyBatch(ctx, insertBatch(t, msg("a", time.Minute))))
	require.True(t, r.ApplyBatch(ctx, Batch{Changes: []Change{{Kind: ChangeRemove, ID: "a"}}}))

	assert.Equal(t, int32(2), atomic.LoadInt32(&emits))
}
