package gallery

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists gallery pictures.
type Repository interface {
	Create(ctx context.Context, pic Picture) error
	Get(ctx context.Context, id uuid.UUID) (Picture, error)
	List(ctx context.Context) ([]Picture, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
