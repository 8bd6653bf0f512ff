package contact

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

// Handler exposes the public contact form and the admin inbox.
type Handler struct {
	svc    *Service
	tokens *jwt.Service
}

func NewHandler(svc *Service, tokens *jwt.Service) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

// Router mounts the public submit route plus the authenticated admin routes.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.submit)
	r.Group(func(r chi.Router) {
		r.Use(jwt.Middleware(h.tokens))
		r.Get("/", h.list)
		r.Get("/{messageID}", h.get)
		r.Post("/{messageID}/reply", h.reply)
	})
	return r
}

type submitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type replyResponse struct {
	ID        string `json:"id"`
	AdminID   string `json:"admin_id"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

type messageResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone,omitempty"`
	Subject   string          `json:"subject"`
	Body      string          `json:"body"`
	Status    string          `json:"status"`
	CreatedAt string          `json:"created_at"`
	Replies   []replyResponse `json:"replies,omitempty"`
}

func toMessageResponse(m Message) messageResponse {
	resp := messageResponse{
		ID:        m.ID.String(),
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Subject:   m.Subject,
		Body:      m.Body,
		Status:    string(m.Status),
		CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, reply := range m.Replies {
		resp.Replies = append(resp.Replies, replyResponse{
			ID:        reply.ID.String(),
			AdminID:   reply.AdminID.String(),
			Body:      reply.Body,
			CreatedAt: reply.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return resp
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

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	msg, err := h.svc.Submit(r.Context(), SubmitParams{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Body:    req.Body,
	})
	if err != nil {
		httpx.Error(w, mapContactError(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, toMessageResponse(msg))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.Error(w, httpx.ErrUnauthorized)
		return
	}
	filter := ListFilter{Status: MessageStatus(r.URL.Query().Get("status"))}
	messages, err := h.svc.List(r.Context(), actor, filter)
	if err != nil {
		httpx.Error(w, mapContactError(err))
		return
	}
	resp := make([]messageResponse, 0, len(messages))
	for _, m := range messages {
		resp = append(resp, toMessageResponse(m))
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.Error(w, httpx.ErrUnauthorized)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "messageID"))
	if err != nil {
		httpx.Error(w, httpx.ErrBadRequest)
		return
	}
	msg, err := h.svc.Get(r.Context(), actor, id)
	if err != nil {
		httpx.Error(w, mapContactError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, toMessageResponse(msg))
}

type replyRequest struct {
	Body string `json:"body"`
}

func (h *Handler) reply(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.Error(w, httpx.ErrUnauthorized)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "messageID"))
	if err != nil {
		httpx.Error(w, httpx.ErrBadRequest)
		return
	}
	var req replyRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	reply, err := h.svc.Reply(r.Context(), actor, id, req.Body)
	if err != nil {
		var permErr *PermissionError
		if errors.As(err, &permErr) {
			httpx.Notice(w, permErr.Reason)
			return
		}
		httpx.Error(w, mapContactError(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, replyResponse{
		ID:        reply.ID.String(),
		AdminID:   reply.AdminID.String(),
		Body:      reply.Body,
		CreatedAt: reply.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func mapContactError(err error) error {
	var permErr *PermissionError
	switch {
	case errors.Is(err, ErrMessageNotFound):
		return errors.Join(httpx.ErrNotFound, err)
	case errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrInvalidPhone),
		errors.Is(err, ErrEmptyName),
		errors.Is(err, ErrEmptySubject),
		errors.Is(err, ErrEmptyBody),
		errors.Is(err, ErrEmptyReply):
		return errors.Join(httpx.ErrUnprocessableEntity, err)
	case errors.As(err, &permErr):
		return errors.Join(httpx.ErrForbidden, err)
	default:
		return err
	}
}
