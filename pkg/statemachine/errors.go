package statemachine

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition reports a transition with an empty from, to, or event.
var ErrInvalidTransition = errors.New("statemachine: transition states and event must be non-empty")

// NoTransitionError indicates the chart has no edge for a state/event pair.
type NoTransitionError struct {
	From  State
	Event Event
}

func (e *NoTransitionError) Error() string {
	return fmt.Sprintf("statemachine: no transition from state %q for event %q", e.From, e.Event)
}

// IsNoTransition reports whether err is a NoTransitionError.
func IsNoTransition(err error) bool {
	var e *NoTransitionError
	return errors.As(err, &e)
}
