package auth

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zafarimam8588/ayo-portal/pkg/httpx"
	"github.com/zafarimam8588/ayo-portal/pkg/jwt"
)

// Handler exposes the auth endpoints.
type Handler struct {
	svc    *Service
	tokens *jwt.Service
}

func NewHandler(svc *Service, tokens *jwt.Service) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

// Router mounts the public auth routes plus the authenticated /me endpoint.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.register)
	r.Post("/verify", h.verify)
	r.Post("/resend-code", h.resendCode)
	r.Post("/login", h.login)
	r.Group(func(r chi.Router) {
		r.Use(jwt.Middleware(h.tokens))
		r.Get("/me", h.me)
	})
	return r
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"email_verified"`
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:            u.ID.String(),
		Name:          u.Name,
		Email:         u.Email,
		Role:          string(u.Role),
		EmailVerified: u.EmailVerified,
	}
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	user, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		httpx.Error(w, mapAuthError(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, toUserResponse(user))
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.svc.VerifyEmail(r.Context(), req.Email, req.Code); err != nil {
		httpx.Error(w, mapAuthError(err))
		return
	}
	httpx.Message(w, http.StatusOK, "email verified")
}

type resendRequest struct {
	Email string `json:"email"`
}

func (h *Handler) resendCode(w http.ResponseWriter, r *http.Request) {
	var req resendRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.svc.ResendCode(r.Context(), req.Email); err != nil {
		// User enumeration guard: a missing account still reports success.
		if !errors.Is(err, ErrUserNotFound) {
			httpx.Error(w, mapAuthError(err))
			return
		}
	}
	httpx.Message(w, http.StatusOK, "verification code sent")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	token, user, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Error(w, mapAuthError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, loginResponse{Token: token, User: toUserResponse(user)})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwt.ClaimsFromContext(r.Context())
	if !ok {
		httpx.Error(w, httpx.ErrUnauthorized)
		return
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		httpx.Error(w, httpx.ErrUnauthorized)
		return
	}
	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		httpx.Error(w, mapAuthError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, toUserResponse(user))
}

func mapAuthError(err error) error {
	switch {
	case errors.Is(err, ErrEmailTaken):
		return errors.Join(httpx.ErrConflict, err)
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidOTP),
		errors.Is(err, ErrEmailNotVerified):
		return errors.Join(httpx.ErrUnauthorized, err)
	case errors.Is(err, ErrUserNotFound):
		return errors.Join(httpx.ErrNotFound, err)
	case errors.Is(err, ErrRateLimited):
		return errors.Join(httpx.ErrTooManyRequests, err)
	case errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrWeakPassword),
		errors.Is(err, ErrEmptyName):
		return errors.Join(httpx.ErrBadRequest, err)
	default:
		return err
	}
}
