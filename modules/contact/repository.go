package contact

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows List results. Zero value lists everything.
type ListFilter struct {
	Status MessageStatus
	Limit  int
	Offset int
}

// Repository persists contact messages and their replies.
type Repository interface {
	Create(ctx context.Context, msg Message) error
	Get(ctx context.Context, id uuid.UUID) (Message, error)
	List(ctx context.Context, filter ListFilter) ([]Message, error)
	SetStatus(ctx context.Context, id uuid.UUID, status MessageStatus) error
	AppendReply(ctx context.Context, reply Reply) error
}
