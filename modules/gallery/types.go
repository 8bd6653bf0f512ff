// Package gallery manages the public picture gallery. Admins upload and
// remove pictures; the listing is public.
package gallery

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Picture is one gallery entry. Path is the storage-relative location; the
// public URL is derived from it by the storage backend.
type Picture struct {
	ID         uuid.UUID
	Title      string
	Caption    string
	Path       string
	MIMEType   string
	Size       int64
	UploadedBy uuid.UUID
	CreatedAt  time.Time
}

var (
	ErrPictureNotFound = errors.New("gallery: picture not found")
	ErrEmptyTitle      = errors.New("gallery: title is required")
	ErrMissingFile     = errors.New("gallery: image file is required")
	ErrNotAnImage      = errors.New("gallery: file is not an allowed image type")
)
