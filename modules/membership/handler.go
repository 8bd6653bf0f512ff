package membership

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zafarimam8588/ayo-portal/pkg/httpx"
	"github.com/zafarimam8588/ayo-portal/pkg/jwt"
	"github.com/zafarimam8588/ayo-portal/pkg/rbac"
	"github.com/zafarimam8588/ayo-portal/pkg/statemachine"
)

// Handler exposes the member profile and admin review endpoints.
type Handler struct {
	svc    *Service
	tokens *jwt.Service
}

func NewHandler(svc *Service, tokens *jwt.Service) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

// Router mounts all membership routes behind authentication.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(jwt.Middleware(h.tokens))

	r.Get("/profile", h.getOwnProfile)
	r.Put("/profile", h.updateProfile)
	r.Post("/profile/submit", h.submit)

	r.Get("/members", h.list)
	r.Get("/members/{userID}", h.getMember)
	r.Post("/members/{userID}/approve", h.approve)
	r.Post("/members/{userID}/reject", h.reject)

	return r
}

type addressPayload struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

type profileResponse struct {
	UserID          string         `json:"user_id"`
	Phone           string         `json:"phone"`
	DateOfBirth     string         `json:"date_of_birth"`
	Gender          string         `json:"gender"`
	Address         addressPayload `json:"address"`
	ReasonToJoin    string         `json:"reason_to_join"`
	Status          string         `json:"status"`
	MembershipID    string         `json:"membership_id,omitempty"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	ApprovedBy      string         `json:"approved_by,omitempty"`
	ApprovedAt      string         `json:"approved_at,omitempty"`
	MissingFields   []string       `json:"missing_fields,omitempty"`
}

func toProfileResponse(p Profile) profileResponse {
	resp := profileResponse{
		UserID:      p.UserID.String(),
		Phone:       p.Phone,
		DateOfBirth: p.DateOfBirth,
		Gender:      p.Gender,
		Address: addressPayload{
			Street:     p.Address.Street,
			City:       p.Address.City,
			State:      p.Address.State,
			PostalCode: p.Address.PostalCode,
		},
		ReasonToJoin:    p.ReasonToJoin,
		Status:          string(p.Status),
		MembershipID:    p.MembershipID,
		RejectionReason: p.RejectionReason,
		MissingFields:   p.MissingFields(),
	}
	if p.ApprovedBy != uuid.Nil {
		resp.ApprovedBy = p.ApprovedBy.String()
	}
	if !p.ApprovedAt.IsZero() {
		resp.ApprovedAt = p.ApprovedAt.UTC().Format(time.RFC3339)
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

func (h *Handler) getOwnProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.Error(w, httpx.ErrUnauthorized)
		return
	}
	profile, err := h.svc.EnsureProfile(r.Context(), actor.ID)
	if err != nil {
		httpx.Error(w, mapMembershipError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, toProfileResponse(profile))
}

type updateProfileRequest struct {
	Phone        string         `json:"phone"`
	DateOfBirth  string         `json:"date_of_birth"`
	Gender       string         `json:"gender"`
	Address      addressPayload `json:"address"`
	ReasonToJoin string         `json:"reason_to_join"`
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.Error(w, httpx.ErrUnauthorized)
		return
	}
	var req updateProfileRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	profile, err := h.svc.UpdateProfile(r.Context(), actor.ID, UpdateProfileParams{
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
		Address: Address{
			Street:     req.Address.Street,
			City:       req.Address.City,
			State:      req.Address.State,
			PostalCode: req.Address.PostalCode,
		},
		ReasonToJoin: req.ReasonToJoin,
	})
	if err != nil {
		httpx.Error(w, mapMembershipError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, toProfileResponse(profile))
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.Error(w, httpx.ErrUnauthorized)
		return
	}
	profile, err := h.svc.Submit(r.Context(), actor.ID)
	if err != nil {
		httpx.Error(w, mapMembershipError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, toProfileResponse(profile))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.Error(w, httpx.ErrUnauthorized)
		return
	}
	filter := ListFilter{Status: Status(r.URL.Query().Get("status"))}
	profiles, err := h.svc.List(r.Context(), actor, filter)
	if err != nil {
		httpx.Error(w, mapMembershipError(err))
		return
	}
	resp := make([]profileResponse, 0, len(profiles))
	for _, p := range profiles {
		resp = append(resp, toProfileResponse(p))
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) getMember(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.Error(w, httpx.ErrUnauthorized)
		return
	}
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httpx.Error(w, httpx.ErrBadRequest)
		return
	}
	profile, err := h.svc.Get(r.Context(), actor, userID)
	if err != nil {
		httpx.Error(w, mapMembershipError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, toProfileResponse(profile))
}

type approveRequest struct {
	Message string `json:"message"`
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.Error(w, httpx.ErrUnauthorized)
		return
	}
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httpx.Error(w, httpx.ErrBadRequest)
		return
	}
	var req approveRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	profile, err := h.svc.Approve(r.Context(), actor, userID, req.Message)
	if err != nil {
		h.writeWorkflowError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProfileResponse(profile))
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.Error(w, httpx.ErrUnauthorized)
		return
	}
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httpx.Error(w, httpx.ErrBadRequest)
		return
	}
	var req rejectRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	profile, err := h.svc.Reject(r.Context(), actor, userID, req.Reason)
	if err != nil {
		h.writeWorkflowError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProfileResponse(profile))
}

// writeWorkflowError renders permission refusals as an informational notice
// rather than an error so view-only admins get a plain explanation.
func (h *Handler) writeWorkflowError(w http.ResponseWriter, err error) {
	var permErr *PermissionError
	if errors.As(err, &permErr) {
		httpx.Notice(w, permErr.Reason)
		return
	}
	httpx.Error(w, mapMembershipError(err))
}

func mapMembershipError(err error) error {
	var noTransition *statemachine.NoTransitionError
	switch {
	case errors.Is(err, ErrProfileNotFound):
		return errors.Join(httpx.ErrNotFound, err)
	case errors.Is(err, ErrProfileIncomplete),
		errors.Is(err, ErrEmptyReason),
		errors.Is(err, ErrInvalidPhone):
		return errors.Join(httpx.ErrUnprocessableEntity, err)
	case errors.Is(err, ErrAlreadyPending),
		errors.Is(err, ErrNotPending),
		errors.Is(err, ErrProfileLocked):
		return errors.Join(httpx.ErrConflict, err)
	case errors.As(err, &noTransition):
		return errors.Join(httpx.ErrConflict, err)
	default:
		var permErr *PermissionError
		if errors.As(err, &permErr) {
			return errors.Join(httpx.ErrForbidden, err)
		}
		return err
	}
}
