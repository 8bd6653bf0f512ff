package contact

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zafarimam8588/ayo-portal/pkg/email"
	"github.com/zafarimam8588/ayo-portal/pkg/logger"
	"github.com/zafarimam8588/ayo-portal/pkg/rbac"
	"github.com/zafarimam8588/ayo-portal/pkg/sanitizer"
)

// Actor identifies the admin driving a read or reply.
type Actor struct {
	ID   uuid.UUID
	Role rbac.Role
}

// SubmitParams carries the public contact form fields.
type SubmitParams struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Body    string
}

// PermissionError is returned when an actor lacks the required permission.
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string {
	return "contact: " + e.Reason
}

// Service implements the contact message flow.
type Service struct {
	repo   Repository
	authz  *rbac.Authorizer
	sender email.EmailSender
	log    *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, authz *rbac.Authorizer, sender email.EmailSender, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		authz:  authz,
		sender: sender,
		log:    log.With(logger.Component("contact")),
		now:    time.Now,
	}
}

// Submit stores a message from the public contact form. Fields are sanitized
// on the way in since the form is unauthenticated.
func (s *Service) Submit(ctx context.Context, params SubmitParams) (Message, error) {
	name := sanitizer.Name(params.Name)
	if name == "" {
		return Message{}, ErrEmptyName
	}
	if !sanitizer.IsValidEmail(params.Email) {
		return Message{}, ErrInvalidEmail
	}
	phone := strings.TrimSpace(params.Phone)
	if phone != "" && !sanitizer.IsValidPhone(phone) {
		return Message{}, ErrInvalidPhone
	}
	subject := sanitizer.Subject(params.Subject)
	if subject == "" {
		return Message{}, ErrEmptySubject
	}
	body := sanitizer.MessageBody(params.Body)
	if body == "" {
		return Message{}, ErrEmptyBody
	}

	msg := Message{
		ID:        uuid.New(),
		Name:      name,
		Email:     sanitizer.NormalizeEmail(params.Email),
		Phone:     phone,
		Subject:   subject,
		Body:      body,
		Status:    StatusUnread,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}

// Get loads a message with its replies and marks an unread one as read.
func (s *Service) Get(ctx context.Context, actor Actor, id uuid.UUID) (Message, error) {
	if decision := s.authz.Check(actor.Role, rbac.PermContactView); !decision.Allowed() {
		return Message{}, &PermissionError{Reason: decision.Reason()}
	}

	msg, err := s.repo.Get(ctx, id)
	if err != nil {
		return Message{}, err
	}
	if msg.Status == StatusUnread {
		if err := s.repo.SetStatus(ctx, id, StatusRead); err != nil {
			return Message{}, err
		}
		msg.Status = StatusRead
	}
	return msg, nil
}

// List returns messages for the admin inbox.
func (s *Service) List(ctx context.Context, actor Actor, filter ListFilter) ([]Message, error) {
	if decision := s.authz.Check(actor.Role, rbac.PermContactView); !decision.Allowed() {
		return nil, &PermissionError{Reason: decision.Reason()}
	}
	return s.repo.List(ctx, filter)
}

// Reply appends an admin reply, emails it to the sender, and marks the
// message replied. The reply is stored verbatim and sanitized only when the
// email is built.
func (s *Service) Reply(ctx context.Context, actor Actor, messageID uuid.UUID, body string) (Reply, error) {
	if decision := s.authz.Check(actor.Role, rbac.PermContactReply); !decision.Allowed() {
		return Reply{}, &PermissionError{Reason: decision.Reason()}
	}
	if strings.TrimSpace(body) == "" {
		return Reply{}, ErrEmptyReply
	}

	msg, err := s.repo.Get(ctx, messageID)
	if err != nil {
		return Reply{}, err
	}

	reply := Reply{
		ID:        uuid.New(),
		MessageID: messageID,
		AdminID:   actor.ID,
		Body:      body,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.AppendReply(ctx, reply); err != nil {
		return Reply{}, err
	}
	if err := s.repo.SetStatus(ctx, messageID, StatusReplied); err != nil {
		return Reply{}, err
	}

	params := email.ContactReplyEmail(msg.Email, msg.Name, msg.Subject, body)
	if err := s.sender.SendEmail(ctx, params); err != nil {
		s.log.ErrorContext(ctx, "contact reply email failed", logger.Recipient(msg.Email), logger.Error(err))
	}
	return reply, nil
}
