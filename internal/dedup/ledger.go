package dedup

import (
	"sync"

	"instacord/internal/constants"
)

// Ledger is a bounded, insertion-ordered set of item identifiers that
// have already been forwarded. It is deliberately process-local: a
// restart forgets recent history and the bridge degrades to
// at-least-once delivery rather than carrying persistent state.
type Ledger struct {
	mu       sync.Mutex
	seen     map[string]struct{}
	order    []string
	capacity int
	evict    int
}

// NewLedger returns a ledger with the default high-water mark.
func NewLedger() *Ledger {
	return NewLedgerWithCapacity(constants.LedgerHighWater, constants.LedgerEvictBatch)
}

// NewLedgerWithCapacity returns a ledger that evicts the oldest
// evictBatch entries whenever a record pushes it past capacity.
func NewLedgerWithCapacity(capacity, evictBatch int) *Ledger {
	if capacity <= 0 {
		capacity = constants.LedgerHighWater
	}
	if evictBatch <= 0 || evictBatch > capacity {
		evictBatch = capacity / 2
	}
	return &Ledger{
		seen:     make(map[string]struct{}, capacity),
		order:    make([]string, 0, capacity),
		capacity: capacity,
		evict:    evictBatch,
	}
}

// Has reports whether id has been recorded and not yet evicted.
func (l *Ledger) Has(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.seen[id]
	return ok
}

// Record marks id as forwarded. If the ledger would exceed its
// high-water mark the oldest batch is dropped in insertion order,
// one bulk eviction rather than continuous trimming.
func (l *Ledger) Record(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.seen[id]; ok {
		return
	}
	l.seen[id] = struct{}{}
	l.order = append(l.order, id)

	if len(l.seen) > l.capacity {
		for _, old := range l.order[:l.evict] {
			delete(l.seen, old)
		}
		l.order = append(l.order[:0], l.order[l.evict:]...)
	}
}

// Size returns the current number of tracked identifiers.
func (l *Ledger) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.seen)
}
