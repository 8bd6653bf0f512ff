package newsletter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zafarimam8588/ayo-portal/pkg/async"
	"github.com/zafarimam8588/ayo-portal/pkg/email"
	"github.com/zafarimam8588/ayo-portal/pkg/logger"
	"github.com/zafarimam8588/ayo-portal/pkg/rbac"
	"github.com/zafarimam8588/ayo-portal/pkg/sanitizer"
)

// Actor identifies the admin driving a broadcast.
type Actor struct {
	ID   uuid.UUID
	Role rbac.Role
}

// PermissionError is returned when an actor lacks the required permission.
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string {
	return "newsletter: " + e.Reason
}

// Config holds the newsletter module's tunables.
type Config struct {
	BroadcastWorkers int `env:"NEWSLETTER_BROADCAST_WORKERS" envDefault:"4"`
}

// Service manages subscriptions and broadcasts.
type Service struct {
	cfg    Config
	repo   Repository
	authz  *rbac.Authorizer
	sender email.EmailSender
	log    *slog.Logger
	now    func() time.Time
}

func NewService(cfg Config, repo Repository, authz *rbac.Authorizer, sender email.EmailSender, log *slog.Logger) *Service {
	if cfg.BroadcastWorkers <= 0 {
		cfg.BroadcastWorkers = 4
	}
	return &Service{
		cfg:    cfg,
		repo:   repo,
		authz:  authz,
		sender: sender,
		log:    log.With(logger.Component("newsletter")),
		now:    time.Now,
	}
}

// Subscribe adds an email to the list. Subscribing an address that is already
// on the list is a no-op, not an error, so the public form never leaks who is
// subscribed.
func (s *Service) Subscribe(ctx context.Context, emailAddr string) error {
	if !sanitizer.IsValidEmail(emailAddr) {
		return ErrInvalidEmail
	}
	sub := Subscriber{
		ID:           uuid.New(),
		Email:        sanitizer.NormalizeEmail(emailAddr),
		SubscribedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		if errors.Is(err, ErrAlreadySubscribed) {
			return nil
		}
		return err
	}
	return nil
}

// Unsubscribe removes an email from the list.
func (s *Service) Unsubscribe(ctx context.Context, emailAddr string) error {
	if !sanitizer.IsValidEmail(emailAddr) {
		return ErrInvalidEmail
	}
	return s.repo.Delete(ctx, sanitizer.NormalizeEmail(emailAddr))
}

// Count returns the subscriber total for the admin dashboard.
func (s *Service) Count(ctx context.Context, actor Actor) (int, error) {
	if decision := s.authz.Check(actor.Role, rbac.PermBroadcastSend); !decision.Allowed() {
		return 0, &PermissionError{Reason: decision.Reason()}
	}
	return s.repo.Count(ctx)
}

// Broadcast sends one email to every subscriber. The list is split into
// chunks, one future per chunk, so at most BroadcastWorkers sends run at
// once. Individual failures are counted and logged but do not stop the run.
func (s *Service) Broadcast(ctx context.Context, actor Actor, subject, body string) (BroadcastResult, error) {
	if decision := s.authz.Check(actor.Role, rbac.PermBroadcastSend); !decision.Allowed() {
		return BroadcastResult{}, &PermissionError{Reason: decision.Reason()}
	}
	if strings.TrimSpace(subject) == "" {
		return BroadcastResult{}, ErrEmptySubject
	}
	if strings.TrimSpace(body) == "" {
		return BroadcastResult{}, ErrEmptyBody
	}

	subs, err := s.repo.List(ctx)
	if err != nil {
		return BroadcastResult{}, err
	}
	if len(subs) == 0 {
		return BroadcastResult{}, ErrNoSubscribers
	}

	futures := make([]*async.Future[int], 0, s.cfg.BroadcastWorkers)
	for _, chunk := range splitChunks(subs, s.cfg.BroadcastWorkers) {
		futures = append(futures, async.Go(ctx, chunk, func(ctx context.Context, chunk []Subscriber) (int, error) {
			sent := 0
			for _, sub := range chunk {
				params := email.BroadcastEmail(sub.Email, subject, body)
				if err := s.sender.SendEmail(ctx, params); err != nil {
					s.log.ErrorContext(ctx, "broadcast send failed", logger.Recipient(sub.Email), logger.Error(err))
					continue
				}
				sent++
			}
			return sent, nil
		}))
	}

	counts, err := async.WaitAll(futures...)
	if err != nil {
		return BroadcastResult{}, err
	}

	result := BroadcastResult{Total: len(subs)}
	for _, sent := range counts {
		result.Sent += sent
	}
	result.Failed = result.Total - result.Sent

	s.log.InfoContext(ctx, "broadcast finished",
		slog.Int("total", result.Total), slog.Int("sent", result.Sent), slog.Int("failed", result.Failed))
	return result, nil
}

// splitChunks divides subs into at most n contiguous chunks of near-equal
// size.
func splitChunks(subs []Subscriber, n int) [][]Subscriber {
	if n > len(subs) {
		n = len(subs)
	}
	chunks := make([][]Subscriber, 0, n)
	size := (len(subs) + n - 1) / n
	for start := 0; start < len(subs); start += size {
		end := start + size
		if end > len(subs) {
			end = len(subs)
		}
		chunks = append(chunks, subs[start:end])
	}
	return chunks
}
