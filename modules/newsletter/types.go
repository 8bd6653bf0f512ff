// Package newsletter manages the subscriber list and admin email broadcasts.
package newsletter

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Subscriber is one entry on the mailing list.
type Subscriber struct {
	ID           uuid.UUID
	Email        string
	SubscribedAt time.Time
}

// BroadcastResult summarizes one broadcast run.
type BroadcastResult struct {
	Total  int
	Sent   int
	Failed int
}

var (
	ErrInvalidEmail      = errors.New("newsletter: invalid email address")
	ErrAlreadySubscribed = errors.New("newsletter: email is already subscribed")
	ErrNotSubscribed     = errors.New("newsletter: email is not subscribed")
	ErrEmptySubject      = errors.New("newsletter: subject is required")
	ErrEmptyBody         = errors.New("newsletter: body is required")
	ErrNoSubscribers     = errors.New("newsletter: no subscribers to broadcast to")
)
