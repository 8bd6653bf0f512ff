package gallery

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/zafarimam8588/ayo-portal/pkg/file"
	"github.com/zafarimam8588/ayo-portal/pkg/logger"
	"github.com/zafarimam8588/ayo-portal/pkg/rbac"
	"github.com/zafarimam8588/ayo-portal/pkg/sanitizer"
)

// Actor identifies the admin driving an upload or delete.
type Actor struct {
	ID   uuid.UUID
	Role rbac.Role
}

// PermissionError is returned when an actor lacks the required permission.
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string {
	return "gallery: " + e.Reason
}

// UploadParams carries one gallery upload.
type UploadParams struct {
	Title   string
	Caption string
	File    *multipart.FileHeader
}

// Service manages gallery pictures on top of a storage backend.
type Service struct {
	repo    Repository
	storage file.Storage
	authz   *rbac.Authorizer
	log     *slog.Logger
	now     func() time.Time
}

func NewService(repo Repository, storage file.Storage, authz *rbac.Authorizer, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		storage: storage,
		authz:   authz,
		log:     log.With(logger.Component("gallery")),
		now:     time.Now,
	}
}

// Upload stores the image and records the picture. The file's content type
// is sniffed from its bytes; only common image formats are accepted.
func (s *Service) Upload(ctx context.Context, actor Actor, params UploadParams) (Picture, error) {
	if decision := s.authz.Check(actor.Role, rbac.PermGalleryManage); !decision.Allowed() {
		return Picture{}, &PermissionError{Reason: decision.Reason()}
	}
	title := sanitizer.Subject(params.Title)
	if title == "" {
		return Picture{}, ErrEmptyTitle
	}
	if params.File == nil {
		return Picture{}, ErrMissingFile
	}
	if !file.IsAllowedImage(params.File) {
		return Picture{}, ErrNotAnImage
	}

	id := uuid.New()
	path := fmt.Sprintf("gallery/%s%s", id, filepath.Ext(file.SanitizeFilename(params.File.Filename)))
	stored, err := s.storage.Save(ctx, params.File, path)
	if err != nil {
		return Picture{}, fmt.Errorf("gallery: store image: %w", err)
	}

	pic := Picture{
		ID:         id,
		Title:      title,
		Caption:    sanitizer.MessageBody(params.Caption),
		Path:       stored.RelativePath,
		MIMEType:   stored.MIMEType,
		Size:       stored.Size,
		UploadedBy: actor.ID,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.Create(ctx, pic); err != nil {
		// Best effort cleanup so the bucket does not accumulate orphans.
		if delErr := s.storage.Delete(ctx, pic.Path); delErr != nil {
			s.log.ErrorContext(ctx, "orphaned image cleanup failed", slog.String("path", pic.Path), logger.Error(delErr))
		}
		return Picture{}, err
	}
	return pic, nil
}

// List returns all pictures, newest first. It is public.
func (s *Service) List(ctx context.Context) ([]Picture, error) {
	return s.repo.List(ctx)
}

// URL resolves a picture's public URL.
func (s *Service) URL(pic Picture) string {
	return s.storage.URL(pic.Path)
}

// Delete removes the picture record and its stored file. A failed file
// delete is logged; the record is already gone and the orphan is harmless.
func (s *Service) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if decision := s.authz.Check(actor.Role, rbac.PermGalleryManage); !decision.Allowed() {
		return &PermissionError{Reason: decision.Reason()}
	}

	pic, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, pic.Path); err != nil {
		s.log.ErrorContext(ctx, "image delete failed", slog.String("path", pic.Path), logger.Error(err))
	}
	return nil
}
