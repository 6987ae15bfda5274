package dsr

import (
	"fmt"
	"slices"

	dErrors "custodian/pkg/domain-errors"
)

// transitions lists the legal source states of each target state.
var transitions = map[Status][]Status{
	StatusInProgress: {StatusPending},
	StatusCompleted:  {StatusPending, StatusInProgress},
	StatusRejected:   {StatusPending, StatusInProgress},
}

// sourcesOf returns the states from which to is reachable.
func sourcesOf(to Status) []Status {
	return transitions[to]
}

// CanTransition reports whether from → to is legal.
func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[to], from)
}

func illegalTransition(from, to Status) error {
	return dErrors.New(dErrors.CodeInvalidTransition,
		fmt.Sprintf("cannot move request from %s to %s", from, to))
}
