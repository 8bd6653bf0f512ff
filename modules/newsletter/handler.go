package newsletter

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zafarimam8588/ayo-portal/pkg/httpx"
	"github.com/zafarimam8588/ayo-portal/pkg/jwt"
	"github.com/zafarimam8588/ayo-portal/pkg/rbac"
)

// Handler exposes the public subscribe/unsubscribe routes and the admin
// broadcast route.
type Handler struct {
	svc    *Service
	tokens *jwt.Service
}

func NewHandler(svc *Service, tokens *jwt.Service) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/subscribe", h.subscribe)
	r.Post("/unsubscribe", h.unsubscribe)
	r.Group(func(r chi.Router) {
		r.Use(jwt.Middleware(h.tokens))
		r.Get("/subscribers/count", h.count)
		r.Post("/broadcast", h.broadcast)
	})
	return r
}

type subscribeRequest struct {
	Email string `json:"email"`
}

func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.svc.Subscribe(r.Context(), req.Email); err != nil {
		httpx.Error(w, mapNewsletterError(err))
		return
	}
	httpx.Message(w, http.StatusOK, "subscribed")
}

func (h *Handler) unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.svc.Unsubscribe(r.Context(), req.Email); err != nil {
		httpx.Error(w, mapNewsletterError(err))
		return
	}
	httpx.Message(w, http.StatusOK, "unsubscribed")
}

func (h *Handler) count(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.Error(w, httpx.ErrUnauthorized)
		return
	}
	count, err := h.svc.Count(r.Context(), actor)
	if err != nil {
		httpx.Error(w, mapNewsletterError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"count": count})
}

type broadcastRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type broadcastResponse struct {
	Total  int `json:"total"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

func (h *Handler) broadcast(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.Error(w, httpx.ErrUnauthorized)
		return
	}
	var req broadcastRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	result, err := h.svc.Broadcast(r.Context(), actor, req.Subject, req.Body)
	if err != nil {
		var permErr *PermissionError
		if errors.As(err, &permErr) {
			httpx.Notice(w, permErr.Reason)
			return
		}
		httpx.Error(w, mapNewsletterError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, broadcastResponse(result))
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

func mapNewsletterError(err error) error {
	var permErr *PermissionError
	switch {
	case errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrEmptySubject),
		errors.Is(err, ErrEmptyBody):
		return errors.Join(httpx.ErrUnprocessableEntity, err)
	case errors.Is(err, ErrNotSubscribed):
		return errors.Join(httpx.ErrNotFound, err)
	case errors.Is(err, ErrNoSubscribers):
		return errors.Join(httpx.ErrConflict, err)
	case errors.As(err, &permErr):
		return errors.Join(httpx.ErrForbidden, err)
	default:
		return err
	}
}
