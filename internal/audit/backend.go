package audit

import (
	"context"
	"sort"
	"strings"
	"time"
)

// Backend stores entries. RingBuffer and the postgres store implement it with
// identical filter, ordering and pagination semantics.
type Backend interface {
	// Append stores e and assigns e.Seq when it is zero.
	Append(ctx context.Context, e *Entry) error
	// Query returns one page of matching entries, newest first, and the total
	// number of matches.
	Query(ctx context.Context, f Filter) ([]Entry, int, error)
	Get(ctx context.Context, id string) (Entry, error)
	// DeleteExpired removes entries older than the cutoffs, never touching
	// entries above the sweep watermark.
	DeleteExpired(ctx context.Context, c Cutoffs) (int, error)
	// TrimOldest deletes the lowest-seq entries at or below maxSeq until at
	// most keep entries remain.
	TrimOldest(ctx context.Context, keep int, maxSeq int64) (int, error)
	Count(ctx context.Context) (int, error)
	// Oldest returns the timestamp of the oldest entry, false when empty.
	Oldest(ctx context.Context) (time.Time, bool, error)
	MaxSeq(ctx context.Context) (int64, error)
}

// Cutoffs is computed once at sweep start.
type Cutoffs struct {
	Before         time.Time
	KeepHighRisk   bool
	HighRiskBefore time.Time
	MaxSeq         int64
}

// Expired reports whether e falls under the cutoffs.
func (c Cutoffs) Expired(e Entry) bool {
	if e.Seq > c.MaxSeq {
		return false
	}
	if c.KeepHighRisk && e.Risk.AtLeastHigh() {
		return e.Timestamp.Before(c.HighRiskBefore)
	}
	return e.Timestamp.Before(c.Before)
}

// Matches applies every filter field except pagination.
func (f Filter) Matches(e Entry) bool {
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.Operation != "" && !strings.Contains(strings.ToLower(e.Operation), strings.ToLower(f.Operation)) {
		return false
	}
	if f.Actor != "" && e.Actor != f.Actor {
		return false
	}
	if f.Risk != "" && e.Risk != f.Risk {
		return false
	}
	if f.Start != nil && e.Timestamp.Before(*f.Start) {
		return false
	}
	if f.End != nil && e.Timestamp.After(*f.End) {
		return false
	}
	if f.SuccessOnly && !e.Success {
		return false
	}
	if f.SessionID != "" && e.SessionID != f.SessionID {
		return false
	}
	return true
}

// SortNewestFirst orders entries by timestamp desc, then seq desc.
func SortNewestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].Timestamp.After(entries[j].Timestamp)
		}
		return entries[i].Seq > entries[j].Seq
	})
}
