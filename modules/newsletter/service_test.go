package newsletter_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zafarimam8588/ayo-portal/modules/newsletter"
	"github.com/zafarimam8588/ayo-portal/pkg/email"
	"github.com/zafarimam8588/ayo-portal/pkg/rbac"
)

type memRepo struct {
	mu   sync.Mutex
	subs []newsletter.Subscriber
}

func (r *memRepo) Create(_ context.Context, sub newsletter.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.Email == sub.Email {
			return newsletter.ErrAlreadySubscribed
		}
	}
	r.subs = append(r.subs, sub)
	return nil
}

func (r *memRepo) Delete(_ context.Context, addr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.subs {
		if s.Email == addr {
			r.subs = append(r.subs[:i], r.subs[i+1:]...)
			return nil
		}
	}
	return newsletter.ErrNotSubscribed
}

func (r *memRepo) List(_ context.Context) ([]newsletter.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]newsletter.Subscriber(nil), r.subs...), nil
}

func (r *memRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs), nil
}

// flakySender fails for addresses in failFor and records the rest.
type flakySender struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]bool
}

func (s *flakySender) SendEmail(_ context.Context, params email.SendEmailParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[params.SendTo] {
		return errors.New("smtp says no")
	}
	s.sent = append(s.sent, params.SendTo)
	return nil
}

func newTestService(t *testing.T) (*newsletter.Service, *memRepo, *flakySender) {
	t.Helper()
	repo := &memRepo{}
	sender := &flakySender{failFor: make(map[string]bool)}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := newsletter.NewService(newsletter.Config{BroadcastWorkers: 3}, repo, rbac.NewAuthorizer(), sender, log)
	return svc, repo, sender
}

func admin() newsletter.Actor {
	return newsletter.Actor{ID: uuid.New(), Role: rbac.RoleAdmin}
}

func subscribeN(t *testing.T, svc *newsletter.Service, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, svc.Subscribe(context.Background(), fmtEmail(i)))
	}
}

func fmtEmail(i int) string {
	return string(rune('a'+i)) + "@example.com"
}

func TestService_Subscribe(t *testing.T) {
	t.Parallel()

	t.Run("normalizes and stores the email", func(t *testing.T) {
		t.Parallel()
		svc, repo, _ := newTestService(t)

		require.NoError(t, svc.Subscribe(context.Background(), "  News@Example.COM "))
		require.Len(t, repo.subs, 1)
		assert.Equal(t, "news@example.com", repo.subs[0].Email)
		assert.False(t, repo.subs[0].SubscribedAt.IsZero())
	})

	t.Run("double subscribe is a no-op", func(t *testing.T) {
		t.Parallel()
		svc, repo, _ := newTestService(t)
		ctx := context.Background()

		require.NoError(t, svc.Subscribe(ctx, "news@example.com"))
		require.NoError(t, svc.Subscribe(ctx, "news@example.com"))
		assert.Len(t, repo.subs, 1)
	})

	t.Run("invalid email is refused", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newTestService(t)
		err := svc.Subscribe(context.Background(), "not-an-email")
		assert.ErrorIs(t, err, newsletter.ErrInvalidEmail)
	})
}

func TestService_Unsubscribe(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Subscribe(ctx, "news@example.com"))
	require.NoError(t, svc.Unsubscribe(ctx, "News@Example.com"))
	assert.Empty(t, repo.subs)

	err := svc.Unsubscribe(ctx, "news@example.com")
	assert.ErrorIs(t, err, newsletter.ErrNotSubscribed)
}

func TestService_Broadcast(t *testing.T) {
	t.Parallel()

	t.Run("sends to every subscriber", func(t *testing.T) {
		t.Parallel()
		svc, _, sender := newTestService(t)
		subscribeN(t, svc, 7)

		result, err := svc.Broadcast(context.Background(), admin(), "Monthly update", "Hello everyone")
		require.NoError(t, err)
		assert.Equal(t, newsletter.BroadcastResult{Total: 7, Sent: 7, Failed: 0}, result)
		assert.Len(t, sender.sent, 7)
	})

	t.Run("individual failures are counted, not fatal", func(t *testing.T) {
		t.Parallel()
		svc, _, sender := newTestService(t)
		subscribeN(t, svc, 5)
		sender.failFor["b@example.com"] = true
		sender.failFor["d@example.com"] = true

		result, err := svc.Broadcast(context.Background(), admin(), "Monthly update", "Hello everyone")
		require.NoError(t, err)
		assert.Equal(t, newsletter.BroadcastResult{Total: 5, Sent: 3, Failed: 2}, result)
	})

	t.Run("view-only admin is blocked before any send", func(t *testing.T) {
		t.Parallel()
		svc, _, sender := newTestService(t)
		subscribeN(t, svc, 2)

		viewer := newsletter.Actor{ID: uuid.New(), Role: rbac.RoleViewer}
		_, err := svc.Broadcast(context.Background(), viewer, "Subject", "Body")
		var permErr *newsletter.PermissionError
		require.ErrorAs(t, err, &permErr)
		assert.Contains(t, permErr.Reason, "view-only")
		assert.Empty(t, sender.sent)
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newTestService(t)
		subscribeN(t, svc, 1)
		ctx := context.Background()

		_, err := svc.Broadcast(ctx, admin(), "  ", "Body")
		assert.ErrorIs(t, err, newsletter.ErrEmptySubject)
		_, err = svc.Broadcast(ctx, admin(), "Subject", "")
		assert.ErrorIs(t, err, newsletter.ErrEmptyBody)
	})

	t.Run("empty list is reported", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newTestService(t)
		_, err := svc.Broadcast(context.Background(), admin(), "Subject", "Body")
		assert.ErrorIs(t, err, newsletter.ErrNoSubscribers)
	})
}

func TestService_Count(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	subscribeN(t, svc, 3)

	count, err := svc.Count(context.Background(), admin())
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	member := newsletter.Actor{ID: uuid.New(), Role: rbac.RoleMember}
	_, err = svc.Count(context.Background(), member)
	var permErr *newsletter.PermissionError
	assert.ErrorAs(t, err, &permErr)
}
