// Package statemachine provides a small, stateless finite state machine
// engine. A Chart holds the transition table; the current state lives with
// the entity being driven (typically a database row), so one Chart safely
// serves any number of entities concurrently.
package statemachine

import "context"

// State is a named state in the chart.
type State string

// Event triggers a transition.
type Event string

// Guard decides whether a transition may proceed. Returning a non-nil error
// blocks the transition; the error is surfaced to the caller so it can
// explain the refusal (incomplete data, missing permission, and so on).
type Guard func(ctx context.Context, from State, event Event, data any) error

// Action runs side effects after all guards pass and before the new state is
// returned. A failing action aborts the transition.
type Action func(ctx context.Context, from, to State, event Event, data any) error

// Transition is one edge of the chart.
type Transition struct {
	From    State
	To      State
	Event   Event
	Guards  []Guard
	Actions []Action
}

// Chart is an immutable transition table. Build one with NewChart and share
// it freely; it performs no locking because it is never mutated after
// construction.
type Chart struct {
	transitions map[State]map[Event][]Transition
}

// NewChart builds a chart from the given transitions. Multiple transitions
// for the same from/event pair are allowed; the first one whose guards all
// pass wins, which enables guard-based branching.
func NewChart(transitions ...Transition) (*Chart, error) {
	c := &Chart{transitions: make(map[State]map[Event][]Transition)}

	for _, t := range transitions {
		if t.From == "" || t.To == "" || t.Event == "" {
			return nil, ErrInvalidTransition
		}
		if _, ok := c.transitions[t.From]; !ok {
			c.transitions[t.From] = make(map[Event][]Transition)
		}
		c.transitions[t.From][t.Event] = append(c.transitions[t.From][t.Event], t)
	}

	return c, nil
}

// MustNewChart builds a chart and panics on invalid transitions. Charts are
// constructed at startup from static tables, so failing fast beats carrying
// an error value through every constructor.
func MustNewChart(transitions ...Transition) *Chart {
	c, err := NewChart(transitions...)
	if err != nil {
		panic(err)
	}
	return c
}

// Fire attempts the transition for event from the given state and returns
// the resulting state. It returns a *NoTransitionError when the chart has no
// edge for the state/event pair, the guard's own error when a guard refuses,
// and the action's error when a side effect fails. The entity's state must
// only be advanced when Fire returns nil error.
func (c *Chart) Fire(ctx context.Context, from State, event Event, data any) (State, error) {
	candidates, ok := c.transitions[from][event]
	if !ok || len(candidates) == 0 {
		return from, &NoTransitionError{From: from, Event: event}
	}

	var chosen *Transition
	var guardErr error
	for i := range candidates {
		if err := checkGuards(ctx, &candidates[i], data); err != nil {
			if guardErr == nil {
				guardErr = err
			}
			continue
		}
		chosen = &candidates[i]
		break
	}

	if chosen == nil {
		return from, guardErr
	}

	for _, action := range chosen.Actions {
		if action == nil {
			continue
		}
		if err := action(ctx, from, chosen.To, event, data); err != nil {
			return from, err
		}
	}

	return chosen.To, nil
}

// CanFire reports whether the event has at least one transition from the
// given state whose guards all pass. It runs no actions.
func (c *Chart) CanFire(ctx context.Context, from State, event Event, data any) bool {
	for i := range c.transitions[from][event] {
		if checkGuards(ctx, &c.transitions[from][event][i], data) == nil {
			return true
		}
	}
	return false
}

func checkGuards(ctx context.Context, t *Transition, data any) error {
	for _, guard := range t.Guards {
		if guard == nil {
			continue
		}
		if err := guard(ctx, t.From, t.Event, data); err != nil {
			return err
		}
	}
	return nil
}
