// Package store holds the dsr.Store and dsr.PersonalData implementations.
package store

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"custodian/internal/dsr"
	"custodian/pkg/platform/sentinel"
	psync "custodian/pkg/platform/sync"
)

// Error Contract:
// - Return sentinel.ErrNotFound when the requested entity does not exist
// - Return *dsr.StateError when a transition's source status does not match

// InMemoryStore keeps requests in memory. Transitions of one request are
// serialized by a sharded mutex; mutate runs without the map lock held.
type InMemoryStore struct {
	mu       sync.RWMutex
	requests map[string]*dsr.Request
	order    []string
	locks    *psync.ShardedMutex
}

func New() *InMemoryStore {
	return &InMemoryStore{
		requests: make(map[string]*dsr.Request),
		locks:    psync.NewShardedMutex(),
	}
}

func (s *InMemoryStore) Create(_ context.Context, r *dsr.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[r.ID] = cloneRequest(r)
	s.order = append(s.order, r.ID)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (*dsr.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneRequest(r), nil
}

func (s *InMemoryStore) List(_ context.Context, filter dsr.Filter) ([]dsr.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []dsr.Request{}
	for _, id := range s.order {
		r := s.requests[id]
		if filter.Matches(*r) {
			out = append(out, *cloneRequest(r))
		}
	}
	return out, nil
}

func (s *InMemoryStore) OpenBefore(_ context.Context, cutoff time.Time) ([]dsr.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []dsr.Request{}
	for _, id := range s.order {
		r := s.requests[id]
		if r.Status.Open() && r.Deadline.Before(cutoff) {
			out = append(out, *cloneRequest(r))
		}
	}
	return out, nil
}

func (s *InMemoryStore) Transition(ctx context.Context, id string, from []dsr.Status, mutate func(*dsr.Request) error) (*dsr.Request, error) {
	var out *dsr.Request
	err := s.locks.Do(id, func() error {
		current, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if !slices.Contains(from, current.Status) {
			return &dsr.StateError{Current: current.Status}
		}
		if err := mutate(current); err != nil {
			return err
		}
		s.mu.Lock()
		s.requests[id] = cloneRequest(current)
		s.mu.Unlock()
		out = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func cloneRequest(r *dsr.Request) *dsr.Request {
	c := *r
	c.RequestData = maps.Clone(r.RequestData)
	c.ResponseData = maps.Clone(r.ResponseData)
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
