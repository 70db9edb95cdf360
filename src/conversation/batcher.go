package conversation

import (
	"context"
	"restaurant_chat/src/model"
	"strings"
	"sync"
	"time"
)

// DefaultBatchWindow is the debounce interval for consecutive user messages
const DefaultBatchWindow = 500 * time.Millisecond

type pendingBatch struct {
	key        string
	messages   []model.Message
	lastUpdate time.Time
	timer      *time.Timer
	generation int

	resolved bool
	result   []model.Message
	done     chan struct{}
}

// Batcher merges bursts of user messages sent to one conversation. Each
// batch resolves exactly once, by its timer, by Flush, or by a displacing
// batch.
type Batcher struct {
	mu      sync.Mutex
	pending map[string]*pendingBatch
	now     func() time.Time
}

func NewBatcher() *Batcher {
	return &Batcher{
		pending: make(map[string]*pendingBatch),
		now:     time.Now,
	}
}

// Ticket is a submitter's handle on the batch its message landed in
type Ticket struct {
	batcher *Batcher
	batch   *pendingBatch
	owner   bool
}

// Submit adds msg to the live batch for key or starts a new one.
func (b *Batcher) Submit(key string, msg model.Message, window time.Duration) *Ticket {
	if window <= 0 {
		window = DefaultBatchWindow
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if existing, ok := b.pending[key]; ok && !existing.resolved {
		if now.Sub(existing.lastUpdate) < window {
			existing.timer.Stop()
			existing.messages = append(existing.messages, msg)
			existing.lastUpdate = now
			b.armLocked(existing, window)
			return &Ticket{batcher: b, batch: existing}
		}
		// Stale batch whose timer has not fired yet
		b.resolveLocked(existing)
	}

	batch := &pendingBatch{
		key:        key,
		messages:   []model.Message{msg},
		lastUpdate: now,
		done:       make(chan struct{}),
	}
	b.pending[key] = batch
	b.armLocked(batch, window)
	return &Ticket{batcher: b, batch: batch, owner: true}
}

// Flush resolves the pending batch for key early and returns its messages.
// It returns nil when nothing is pending.
func (b *Batcher) Flush(key string) []model.Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	batch, ok := b.pending[key]
	if !ok {
		return nil
	}
	b.resolveLocked(batch)
	return batch.result
}

// Pending reports whether key has an unresolved batch
func (b *Batcher) Pending(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.pending[key]
	return ok
}

func (b *Batcher) armLocked(batch *pendingBatch, window time.Duration) {
	batch.generation++
	generation := batch.generation
	batch.timer = time.AfterFunc(window, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		// A rearm happened while this callback waited for the lock
		if batch.generation != generation {
			return
		}
		b.resolveLocked(batch)
	})
}

func (b *Batcher) resolveLocked(batch *pendingBatch) {
	if batch.resolved {
		return
	}
	batch.resolved = true
	if batch.timer != nil {
		batch.timer.Stop()
	}
	if b.pending[batch.key] == batch {
		delete(b.pending, batch.key)
	}
	batch.result = append([]model.Message(nil), batch.messages...)
	close(batch.done)
}

// Owner reports whether this ticket started the batch. Only the owner
// should run the merged turn; other submitters were absorbed into it.
func (t *Ticket) Owner() bool {
	return t.owner
}

// Done is closed once the batch resolves
func (t *Ticket) Done() <-chan struct{} {
	return t.batch.done
}

// Wait blocks until the batch resolves. A positive fallback bounds the
// wait: when it elapses first the batch is flushed with whatever it holds,
// so the slower timer can never resolve it a second time.
func (t *Ticket) Wait(ctx context.Context, fallback time.Duration) ([]model.Message, error) {
	var expired <-chan time.Time
	if fallback > 0 {
		timer := time.NewTimer(fallback)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-t.batch.done:
	case <-expired:
		t.flush()
	case <-ctx.Done():
		t.flush()
		return nil, ctx.Err()
	}
	return t.batch.result, nil
}

func (t *Ticket) flush() {
	t.batcher.mu.Lock()
	defer t.batcher.mu.Unlock()
	t.batcher.resolveLocked(t.batch)
}

// Combine folds a resolved batch into a single user turn, separating the
// original messages with a blank line.
func Combine(messages []model.Message) model.Message {
	switch len(messages) {
	case 0:
		return model.UserMessage("")
	case 1:
		return messages[0]
	}

	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		parts = append(parts, m.Content)
	}
	return model.UserMessage(strings.Join(parts, "\n\n"))
}
