package gallery

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zafarimam8588/ayo-portal/pkg/httpx"
	"github.com/zafarimam8588/ayo-portal/pkg/jwt"
	"github.com/zafarimam8588/ayo-portal/pkg/rbac"
)

// maxUploadBytes bounds one multipart upload held in memory plus temp files.
const maxUploadBytes = 10 << 20

// Handler exposes the public gallery listing and the admin upload/delete
// routes.
type Handler struct {
	svc    *Service
	tokens *jwt.Service
}

func NewHandler(svc *Service, tokens *jwt.Service) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Group(func(r chi.Router) {
		r.Use(jwt.Middleware(h.tokens))
		r.Post("/", h.upload)
		r.Delete("/{pictureID}", h.remove)
	})
	return r
}

type pictureResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Caption   string `json:"caption,omitempty"`
	URL       string `json:"url"`
	MIMEType  string `json:"mime_type"`
	Size      int64  `json:"size"`
	CreatedAt string `json:"created_at"`
}

func (h *Handler) toPictureResponse(p Picture) pictureResponse {
	return pictureResponse{
		ID:        p.ID.String(),
		Title:     p.Title,
		Caption:   p.Caption,
		URL:       h.svc.URL(p),
		MIMEType:  p.MIMEType,
		Size:      p.Size,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	pics, err := h.svc.List(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	resp := make([]pictureResponse, 0, len(pics))
	for _, p := range pics {
		resp = append(resp, h.toPictureResponse(p))
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.Error(w, httpx.ErrUnauthorized)
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.Error(w, httpx.ErrBadRequest)
		return
	}
	_, fh, err := r.FormFile("image")
	if err != nil {
		httpx.Error(w, mapGalleryError(ErrMissingFile))
		return
	}

	pic, err := h.svc.Upload(r.Context(), actor, UploadParams{
		Title:   r.FormValue("title"),
		Caption: r.FormValue("caption"),
		File:    fh,
	})
	if err != nil {
		var permErr *PermissionError
		if errors.As(err, &permErr) {
			httpx.Notice(w, permErr.Reason)
			return
		}
		httpx.Error(w, mapGalleryError(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, h.toPictureResponse(pic))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.Error(w, httpx.ErrUnauthorized)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "pictureID"))
	if err != nil {
		httpx.Error(w, httpx.ErrBadRequest)
		return
	}
	if err := h.svc.Delete(r.Context(), actor, id); err != nil {
		var permErr *PermissionError
		if errors.As(err, &permErr) {
			httpx.Notice(w, permErr.Reason)
			return
		}
		httpx.Error(w, mapGalleryError(err))
		return
	}
	httpx.Message(w, http.StatusOK, "picture deleted")
}

func actorFromRequest(r *http.Request) (Actor, bool) {
	claims, ok := jwt.ClaimsFromContext(r.Context())
	if !ok {
		return Actor{}, false
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Actor{}, false
	}
	return Actor{ID: id, Role: rbac.Role(claims.Role)}, true
}

func mapGalleryError(err error) error {
	var permErr *PermissionError
	switch {
	case errors.Is(err, ErrPictureNotFound):
		return errors.Join(httpx.ErrNotFound, err)
	case errors.Is(err, ErrEmptyTitle),
		errors.Is(err, ErrMissingFile),
		errors.Is(err, ErrNotAnImage):
		return errors.Join(httpx.ErrUnprocessableEntity, err)
	case errors.As(err, &permErr):
		return errors.Join(httpx.ErrForbidden, err)
	default:
		return err
	}
}
