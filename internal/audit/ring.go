package audit

import (
	"context"
	"sort"
	"sync"
	"time"

	dErrors "custodian/pkg/domain-errors"
)

const defaultRingCapacity = 10000

// RingBuffer is a bounded in-memory Backend. When full the oldest entry is
// dropped to make room. It is the system of record only when no persistent
// backend is configured; otherwise the logger keeps it as a cache.
type RingBuffer struct {
	mu       sync.RWMutex
	entries  []Entry
	head     int // next write position
	tail     int // oldest entry
	count    int
	capacity int
	lastSeq  int64
	dropped  int64
}

// NewRingBuffer creates a ring buffer with the given capacity.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = defaultRingCapacity
	}
	return &RingBuffer{
		entries:  make([]Entry, capacity),
		capacity: capacity,
	}
}

func (b *RingBuffer) Append(_ context.Context, e *Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if e.Seq == 0 {
		b.lastSeq++
		e.Seq = b.lastSeq
	} else if e.Seq > b.lastSeq {
		b.lastSeq = e.Seq
	}

	if b.count >= b.capacity {
		b.entries[b.tail] = Entry{}
		b.tail = (b.tail + 1) % b.capacity
		b.count--
		b.dropped++
		ringDropped.Inc()
	}

	b.entries[b.head] = *e
	b.head = (b.head + 1) % b.capacity
	b.count++
	return nil
}

// snapshot returns entries oldest first. Callers hold at least a read lock.
func (b *RingBuffer) snapshot() []Entry {
	out := make([]Entry, 0, b.count)
	for i := 0; i < b.count; i++ {
		out = append(out, b.entries[(b.tail+i)%b.capacity])
	}
	return out
}

// replace swaps the contents for kept, which must be oldest first and no
// longer than the capacity. Callers hold the write lock.
func (b *RingBuffer) replace(kept []Entry) {
	b.entries = make([]Entry, b.capacity)
	copy(b.entries, kept)
	b.tail = 0
	b.count = len(kept)
	b.head = b.count % b.capacity
}

func (b *RingBuffer) Query(_ context.Context, f Filter) ([]Entry, int, error) {
	f = f.Normalized()

	b.mu.RLock()
	matched := make([]Entry, 0)
	for i := 0; i < b.count; i++ {
		e := b.entries[(b.tail+i)%b.capacity]
		if f.Matches(e) {
			matched = append(matched, e)
		}
	}
	b.mu.RUnlock()

	SortNewestFirst(matched)
	total := len(matched)
	start := f.Offset()
	if start >= total {
		return []Entry{}, total, nil
	}
	end := min(start+f.PageSize, total)
	return matched[start:end], total, nil
}

func (b *RingBuffer) Get(_ context.Context, id string) (Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for i := 0; i < b.count; i++ {
		if e := b.entries[(b.tail+i)%b.capacity]; e.ID == id {
			return e, nil
		}
	}
	return Entry{}, dErrors.New(dErrors.CodeNotFound, "audit entry not found")
}

func (b *RingBuffer) DeleteExpired(_ context.Context, c Cutoffs) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	all := b.snapshot()
	kept := all[:0]
	for _, e := range all {
		if !c.Expired(e) {
			kept = append(kept, e)
		}
	}
	deleted := len(all) - len(kept)
	if deleted > 0 {
		b.replace(kept)
	}
	return deleted, nil
}

func (b *RingBuffer) TrimOldest(_ context.Context, keep int, maxSeq int64) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	excess := b.count - keep
	if excess <= 0 {
		return 0, nil
	}

	// Entries kept only in memory after a failed write may share a seq with
	// a persisted one, so victims are chosen by position.
	all := b.snapshot()
	eligible := make([]int, 0, len(all))
	for i, e := range all {
		if e.Seq <= maxSeq {
			eligible = append(eligible, i)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool { return all[eligible[i]].Seq < all[eligible[j]].Seq })
	excess = min(excess, len(eligible))
	doomed := make(map[int]struct{}, excess)
	for _, pos := range eligible[:excess] {
		doomed[pos] = struct{}{}
	}

	kept := make([]Entry, 0, len(all)-excess)
	for i, e := range all {
		if _, ok := doomed[i]; !ok {
			kept = append(kept, e)
		}
	}
	deleted := len(all) - len(kept)
	b.replace(kept)
	return deleted, nil
}

func (b *RingBuffer) Count(context.Context) (int, error) {
	return b.Len(), nil
}

func (b *RingBuffer) Oldest(context.Context) (time.Time, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.count == 0 {
		return time.Time{}, false, nil
	}
	oldest := b.entries[b.tail].Timestamp
	for i := 1; i < b.count; i++ {
		if ts := b.entries[(b.tail+i)%b.capacity].Timestamp; ts.Before(oldest) {
			oldest = ts
		}
	}
	return oldest, true, nil
}

func (b *RingBuffer) MaxSeq(context.Context) (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastSeq, nil
}

// Len returns the number of buffered entries.
func (b *RingBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

// Dropped returns how many entries were evicted to make room.
func (b *RingBuffer) Dropped() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped
}
