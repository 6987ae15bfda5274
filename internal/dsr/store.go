package dsr

import (
	"context"
	"time"

	"custodian/pkg/platform/sentinel"
)

//go:generate mockgen -source=store.go -destination=mocks/store_mock.go -package=mocks Store,PersonalData

// Store persists requests.
// Error Contract:
//   - Get and Transition return sentinel.ErrNotFound for unknown ids
//   - Transition returns *StateError when the current status is not in from;
//     nothing is written in that case or when mutate fails
//   - List orders by creation time, oldest first
type Store interface {
	Create(ctx context.Context, r *Request) error
	Get(ctx context.Context, id string) (*Request, error)
	List(ctx context.Context, filter Filter) ([]Request, error)
	// OpenBefore returns pending and in-progress requests whose deadline is
	// before cutoff.
	OpenBefore(ctx context.Context, cutoff time.Time) ([]Request, error)
	// Transition loads the request, checks its status against from, applies
	// mutate and writes the result while holding the request's lock, so
	// concurrent transitions of one request are serialized.
	Transition(ctx context.Context, id string, from []Status, mutate func(*Request) error) (*Request, error)
}

// StateError reports the status that blocked a transition.
type StateError struct {
	Current Status
}

func (e *StateError) Error() string {
	return "request is " + string(e.Current)
}

func (e *StateError) Unwrap() error {
	return sentinel.ErrInvalidState
}

// PersonalData reads and changes subject rows in personal-data tables.
// Table and column names are validated identifiers.
type PersonalData interface {
	Export(ctx context.Context, t Table, subjectID string) ([]map[string]any, error)
	Delete(ctx context.Context, t Table, subjectID string) (int64, error)
	// Rectify updates one record matched by both id and subject.
	Rectify(ctx context.Context, t Table, subjectID, recordID string, fields map[string]any) (int64, error)
}
