package newsletter

import "context"

// Repository persists the subscriber list. Create must return
// ErrAlreadySubscribed for a duplicate email so Subscribe can stay
// idempotent.
type Repository interface {
	Create(ctx context.Context, sub Subscriber) error
	Delete(ctx context.Context, email string) error
	List(ctx context.Context) ([]Subscriber, error)
	Count(ctx context.Context) (int, error)
}
