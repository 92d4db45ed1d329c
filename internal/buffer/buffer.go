// Package buffer implements the per-conversation ordered append log that
// backs the conversation tracker. All mutations happen under a single lock;
// no I/O is performed while the lock is held.
package buffer

import (
	"sync"
	"time"

	"github.com/agentsight/agentsight-go/pkg/model"
)

// Buffer is a thread-safe map of conversation id to an ordered sequence of
// tracked items. One lock guards the whole map: unrelated conversations
// serialize on it, which is acceptable because every critical section is a
// short in-memory mutation.
type Buffer struct {
	mu    sync.Mutex
	items map[string][]model.TrackedItem
}

// New creates an empty buffer.
func New() *Buffer {
	return &Buffer{
		items: make(map[string][]model.TrackedItem),
	}
}

// Timestamp returns the current UTC time in the wire format used for
// tracked items.
func Timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Ensure idempotently creates an empty entry for the conversation.
func (b *Buffer) Ensure(conversationID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureLocked(conversationID)
}

func (b *Buffer) ensureLocked(conversationID string) {
	if _, ok := b.items[conversationID]; !ok {
		b.items[conversationID] = []model.TrackedItem{}
	}
}

// Append builds a tracked item with a fresh timestamp and appends it to the
// conversation's sequence, creating the entry if needed.
func (b *Buffer) Append(conversationID string, kind model.Kind, data map[string]any) model.TrackedItem {
	item := model.TrackedItem{
		Kind:      kind,
		Timestamp: Timestamp(),
		Data:      data,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureLocked(conversationID)
	b.items[conversationID] = append(b.items[conversationID], item)
	return item
}

// Splice inserts the item immediately before the last buffered item, or
// appends it when the sequence holds at most one item. This keeps a trailing
// answer as the literal last item flushed while still recording the spliced
// item in the same batch.
func (b *Buffer) Splice(conversationID string, item model.TrackedItem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	(&Tx{b: b}).Splice(conversationID, item)
}

// DetachAndClear atomically removes and returns the conversation's item
// sequence. It reports false when no entry exists or the sequence is empty;
// this is the only sanctioned way to drain a conversation, and it guarantees
// that items appended concurrently after the detach point land in a fresh
// entry rather than the detached slice.
func (b *Buffer) DetachAndClear(conversationID string) ([]model.TrackedItem, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return (&Tx{b: b}).DetachAndClear(conversationID)
}

// Snapshot deep-copies the conversation's current sequence without draining
// it. The second return value reports whether an entry exists.
func (b *Buffer) Snapshot(conversationID string) ([]model.TrackedItem, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	seq, ok := b.items[conversationID]
	if !ok {
		return nil, false
	}
	return model.CloneItems(seq), true
}

// Len returns the number of buffered items for the conversation.
func (b *Buffer) Len(conversationID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items[conversationID])
}

// WithLock runs fn while holding the buffer lock. The flush path uses it to
// make the token-usage splice and the detach a single indivisible step with
// respect to concurrent appends.
func (b *Buffer) WithLock(fn func(tx *Tx)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(&Tx{b: b})
}

// Tx exposes buffer operations inside a WithLock critical section.
type Tx struct {
	b *Buffer
}

// Len returns the number of buffered items for the conversation.
func (tx *Tx) Len(conversationID string) int {
	return len(tx.b.items[conversationID])
}

// Exists reports whether an entry exists for the conversation.
func (tx *Tx) Exists(conversationID string) bool {
	_, ok := tx.b.items[conversationID]
	return ok
}

// Splice is Buffer.Splice without re-acquiring the lock.
func (tx *Tx) Splice(conversationID string, item model.TrackedItem) {
	seq := tx.b.items[conversationID]
	if len(seq) <= 1 {
		tx.b.items[conversationID] = append(seq, item)
		return
	}
	seq = append(seq, model.TrackedItem{})
	copy(seq[len(seq)-1:], seq[len(seq)-2:])
	seq[len(seq)-2] = item
	tx.b.items[conversationID] = seq
}

// DetachAndClear is Buffer.DetachAndClear without re-acquiring the lock.
func (tx *Tx) DetachAndClear(conversationID string) ([]model.TrackedItem, bool) {
	seq, ok := tx.b.items[conversationID]
	if !ok || len(seq) == 0 {
		return nil, false
	}
	delete(tx.b.items, conversationID)
	return seq, true
}
