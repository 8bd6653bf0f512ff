package membership

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows List results. Zero value lists everything.
type ListFilter struct {
	Status Status
	Limit  int
	Offset int
}

// Repository persists member profiles. Implementations must treat the
// workflow-owned columns (status, membership id, approver, rejection reason)
// as a unit: UpdateStatus writes them together so a reader never sees a
// half-applied transition.
type Repository interface {
	Create(ctx context.Context, profile Profile) error
	Get(ctx context.Context, userID uuid.UUID) (Profile, error)
	List(ctx context.Context, filter ListFilter) ([]Profile, error)
	UpdateFields(ctx context.Context, profile Profile) error
	UpdateStatus(ctx context.Context, profile Profile) error
	NextMembershipSeq(ctx context.Context, year int) (int, error)
}
