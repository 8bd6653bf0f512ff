package auth

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository persists portal accounts.
type UserRepository interface {
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
}
