// Package store holds the compliance.Store implementations.
package store

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"custodian/internal/compliance"
	"custodian/pkg/platform/sentinel"
)

// Error Contract:
// - Return sentinel.ErrNotFound when the requested entity does not exist
// - Return nil for successful operations

// InMemoryStore keeps compliance state in memory for tests and single-node runs.
type InMemoryStore struct {
	mu       sync.RWMutex
	policies []compliance.Policy
	results  []compliance.CheckResult
	history  []compliance.ScoreHistory
	reports  []compliance.Report
}

func New() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) indexOf(id string) int {
	return slices.IndexFunc(s.policies, func(p compliance.Policy) bool { return p.ID == id })
}

func (s *InMemoryStore) CreatePolicy(_ context.Context, p *compliance.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies = append(s.policies, clonePolicy(*p))
	return nil
}

func (s *InMemoryStore) UpdatePolicy(_ context.Context, p *compliance.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(p.ID)
	if i < 0 {
		return sentinel.ErrNotFound
	}
	s.policies[i] = clonePolicy(*p)
	return nil
}

// DeletePolicy cascades to the policy's check results.
func (s *InMemoryStore) DeletePolicy(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return sentinel.ErrNotFound
	}
	s.policies = slices.Delete(s.policies, i, i+1)
	s.results = slices.DeleteFunc(s.results, func(r compliance.CheckResult) bool { return r.PolicyID == id })
	return nil
}

func (s *InMemoryStore) GetPolicy(_ context.Context, id string) (*compliance.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return nil, sentinel.ErrNotFound
	}
	p := clonePolicy(s.policies[i])
	return &p, nil
}

func (s *InMemoryStore) ListPolicies(_ context.Context, filter compliance.PolicyFilter) ([]compliance.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []compliance.Policy{}
	for _, p := range s.policies {
		if filter.Matches(p) {
			out = append(out, clonePolicy(p))
		}
	}
	return out, nil
}

func (s *InMemoryStore) RecordRun(_ context.Context, results []compliance.CheckResult, history *compliance.ScoreHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range results {
		// a policy deleted mid-run loses its result; the rest of the run stands
		if s.indexOf(r.PolicyID) >= 0 {
			s.results = append(s.results, r)
		}
	}
	s.history = append(s.history, *history)
	return nil
}

func (s *InMemoryStore) ListCheckResults(_ context.Context, policyID string) ([]compliance.CheckResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []compliance.CheckResult{}
	for i := len(s.results) - 1; i >= 0; i-- {
		if s.results[i].PolicyID == policyID {
			out = append(out, s.results[i])
		}
	}
	return out, nil
}

func (s *InMemoryStore) LatestScore(_ context.Context, framework compliance.Framework) (*compliance.ScoreHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *compliance.ScoreHistory
	for i := range s.history {
		h := &s.history[i]
		if h.Framework != framework {
			continue
		}
		if latest == nil || !h.RecordedAt.Before(latest.RecordedAt) {
			latest = h
		}
	}
	if latest == nil {
		return nil, sentinel.ErrNotFound
	}
	out := *latest
	return &out, nil
}

func (s *InMemoryStore) ScoreHistory(_ context.Context, framework compliance.Framework, since time.Time) ([]compliance.ScoreHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []compliance.ScoreHistory{}
	for _, h := range s.history {
		if h.Framework == framework && !h.RecordedAt.Before(since) {
			out = append(out, h)
		}
	}
	slices.SortStableFunc(out, func(a, b compliance.ScoreHistory) int {
		return a.RecordedAt.Compare(b.RecordedAt)
	})
	return out, nil
}

func (s *InMemoryStore) SaveReport(_ context.Context, r *compliance.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, *r)
	return nil
}

func (s *InMemoryStore) GetReport(_ context.Context, id string) (*compliance.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reports {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListReports(_ context.Context, framework compliance.Framework) ([]compliance.ReportSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []compliance.ReportSummary{}
	for i := len(s.reports) - 1; i >= 0; i-- {
		r := s.reports[i]
		if framework != "" && r.Framework != framework {
			continue
		}
		out = append(out, summarize(r))
	}
	slices.SortStableFunc(out, func(a, b compliance.ReportSummary) int {
		return b.GeneratedAt.Compare(a.GeneratedAt)
	})
	return out, nil
}

func summarize(r compliance.Report) compliance.ReportSummary {
	return compliance.ReportSummary{
		ID:          r.ID,
		Framework:   r.Framework,
		Title:       r.Title,
		Score:       r.Score,
		PeriodStart: r.PeriodStart,
		PeriodEnd:   r.PeriodEnd,
		GeneratedAt: r.GeneratedAt,
	}
}

// clonePolicy deep-copies rules so callers cannot mutate stored state.
func clonePolicy(p compliance.Policy) compliance.Policy {
	p.Rules = cloneRules(p.Rules)
	return p
}

func cloneRules(r compliance.Rules) compliance.Rules {
	if r == nil {
		return compliance.Rules{}
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return r.Clone()
	}
	out := compliance.Rules{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return r.Clone()
	}
	return out
}
