package membership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zafarimam8588/ayo-portal/modules/auth"
	"github.com/zafarimam8588/ayo-portal/pkg/email"
	"github.com/zafarimam8588/ayo-portal/pkg/logger"
	"github.com/zafarimam8588/ayo-portal/pkg/rbac"
	"github.com/zafarimam8588/ayo-portal/pkg/sanitizer"
	"github.com/zafarimam8588/ayo-portal/pkg/statemachine"
)

// Actor identifies who is driving a workflow transition.
type Actor struct {
	ID   uuid.UUID
	Role rbac.Role
}

// UserDirectory resolves account details for notification emails.
// *auth.Service satisfies it.
type UserDirectory interface {
	GetUser(ctx context.Context, id uuid.UUID) (auth.User, error)
}

// UpdateProfileParams carries the member-editable profile fields.
type UpdateProfileParams struct {
	Phone        string
	DateOfBirth  string
	Gender       string
	Address      Address
	ReasonToJoin string
}

// Service drives the membership approval workflow. Every transition is
// persisted before its notification email is sent; a failed send is logged
// and never rolls the transition back.
type Service struct {
	repo   Repository
	users  UserDirectory
	authz  *rbac.Authorizer
	chart  *statemachine.Chart
	sender email.EmailSender
	log    *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, users UserDirectory, authz *rbac.Authorizer, sender email.EmailSender, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		authz:  authz,
		chart:  newWorkflow(),
		sender: sender,
		log:    log.With(logger.Component("membership")),
		now:    time.Now,
	}
}

// EnsureProfile returns the member's profile, creating an empty not_submitted
// one on first access.
func (s *Service) EnsureProfile(ctx context.Context, userID uuid.UUID) (Profile, error) {
	profile, err := s.repo.Get(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return Profile{}, err
	}

	profile = Profile{
		UserID:    userID,
		Status:    StatusNotSubmitted,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// Get loads a profile. Members may only load their own; admins may load any.
func (s *Service) Get(ctx context.Context, actor Actor, userID uuid.UUID) (Profile, error) {
	if actor.ID != userID {
		if decision := s.authz.Check(actor.Role, rbac.PermMemberList); !decision.Allowed() {
			return Profile{}, &PermissionError{Reason: decision.Reason()}
		}
	}
	return s.repo.Get(ctx, userID)
}

// List returns profiles for admin review.
func (s *Service) List(ctx context.Context, actor Actor, filter ListFilter) ([]Profile, error) {
	if decision := s.authz.Check(actor.Role, rbac.PermMemberList); !decision.Allowed() {
		return nil, &PermissionError{Reason: decision.Reason()}
	}
	return s.repo.List(ctx, filter)
}

// UpdateProfile saves member-editable fields. Editing is blocked while the
// application is pending review so admins judge a stable snapshot.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, params UpdateProfileParams) (Profile, error) {
	profile, err := s.EnsureProfile(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	if profile.Status == StatusPending {
		return Profile{}, ErrProfileLocked
	}

	phone := strings.TrimSpace(params.Phone)
	if phone != "" && !sanitizer.IsValidPhone(phone) {
		return Profile{}, ErrInvalidPhone
	}

	profile.Phone = phone
	profile.DateOfBirth = sanitizer.Name(params.DateOfBirth)
	profile.Gender = sanitizer.Name(params.Gender)
	profile.Address = Address{
		Street:     sanitizer.Name(params.Address.Street),
		City:       sanitizer.Name(params.Address.City),
		State:      sanitizer.Name(params.Address.State),
		PostalCode: sanitizer.Name(params.Address.PostalCode),
	}
	profile.ReasonToJoin = sanitizer.MessageBody(params.ReasonToJoin)
	profile.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdateFields(ctx, profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// Submit moves a complete profile into pending review. An incomplete profile
// is refused before anything is persisted; the error lists what is missing.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID) (Profile, error) {
	profile, err := s.repo.Get(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	if profile.Status == StatusPending {
		return Profile{}, ErrAlreadyPending
	}

	data := &transitionData{profile: &profile, authz: s.authz}
	next, err := s.chart.Fire(ctx, statemachine.State(profile.Status), EventSubmit, data)
	if err != nil {
		if errors.Is(err, ErrProfileIncomplete) {
			return Profile{}, fmt.Errorf("%w: missing %v", ErrProfileIncomplete, profile.MissingFields())
		}
		return Profile{}, err
	}

	profile.Status = Status(next)
	profile.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateStatus(ctx, profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// Approve marks a pending application approved, assigns the membership id,
// and records who approved it and when. The optional message rides along in
// the notification email.
func (s *Service) Approve(ctx context.Context, actor Actor, memberID uuid.UUID, message string) (Profile, error) {
	profile, err := s.repo.Get(ctx, memberID)
	if err != nil {
		return Profile{}, err
	}

	data := &transitionData{profile: &profile, actor: actor, authz: s.authz}
	next, err := s.chart.Fire(ctx, statemachine.State(profile.Status), EventApprove, data)
	if err != nil {
		if statemachine.IsNoTransition(err) {
			return Profile{}, ErrNotPending
		}
		return Profile{}, err
	}

	now := s.now().UTC()
	membershipID, err := s.assignMembershipID(ctx, now.Year())
	if err != nil {
		return Profile{}, err
	}

	profile.Status = Status(next)
	profile.MembershipID = membershipID
	profile.RejectionReason = ""
	profile.ApprovedBy = actor.ID
	profile.ApprovedAt = now
	profile.UpdatedAt = now
	if err := s.repo.UpdateStatus(ctx, profile); err != nil {
		return Profile{}, err
	}

	s.notifyApproval(ctx, profile, message)
	return profile, nil
}

// Reject marks a pending application rejected. The reason is required and is
// stored verbatim; sanitization happens only when the email is built.
func (s *Service) Reject(ctx context.Context, actor Actor, memberID uuid.UUID, reason string) (Profile, error) {
	profile, err := s.repo.Get(ctx, memberID)
	if err != nil {
		return Profile{}, err
	}

	data := &transitionData{profile: &profile, actor: actor, reason: reason, authz: s.authz}
	next, err := s.chart.Fire(ctx, statemachine.State(profile.Status), EventReject, data)
	if err != nil {
		if statemachine.IsNoTransition(err) {
			return Profile{}, ErrNotPending
		}
		return Profile{}, err
	}

	profile.Status = Status(next)
	profile.RejectionReason = reason
	profile.ApprovedBy = uuid.Nil
	profile.ApprovedAt = time.Time{}
	profile.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateStatus(ctx, profile); err != nil {
		return Profile{}, err
	}

	s.notifyRejection(ctx, profile, reason)
	return profile, nil
}

func (s *Service) assignMembershipID(ctx context.Context, year int) (string, error) {
	seq, err := s.repo.NextMembershipSeq(ctx, year)
	if err != nil {
		return "", err
	}
	return sanitizer.MembershipID(fmt.Sprintf("AYO-%d-%03d", year, seq)), nil
}

func (s *Service) notifyApproval(ctx context.Context, profile Profile, message string) {
	user, err := s.users.GetUser(ctx, profile.UserID)
	if err != nil {
		s.log.ErrorContext(ctx, "approval email skipped", logger.MemberID(profile.MembershipID), logger.Error(err))
		return
	}
	params, err := email.ApprovalEmail(user.Email, user.Name, profile.MembershipID, message)
	if err != nil {
		s.log.ErrorContext(ctx, "approval email build failed", logger.Recipient(user.Email), logger.Error(err))
		return
	}
	if err := s.sender.SendEmail(ctx, params); err != nil {
		s.log.ErrorContext(ctx, "approval email failed", logger.Recipient(user.Email), logger.Error(err))
	}
}

func (s *Service) notifyRejection(ctx context.Context, profile Profile, reason string) {
	user, err := s.users.GetUser(ctx, profile.UserID)
	if err != nil {
		s.log.ErrorContext(ctx, "rejection email skipped", logger.UserID(profile.UserID.String()), logger.Error(err))
		return
	}
	params := email.RejectionEmail(user.Email, user.Name, reason)
	if err := s.sender.SendEmail(ctx, params); err != nil {
		s.log.ErrorContext(ctx, "rejection email failed", logger.Recipient(user.Email), logger.Error(err))
	}
}
