package auth_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/zafarimam8588/ayo-portal/modules/auth"
	"github.com/zafarimam8588/ayo-portal/pkg/email"
	"github.com/zafarimam8588/ayo-portal/pkg/jwt"
	"github.com/zafarimam8588/ayo-portal/pkg/rbac"
)

type memRepo struct {
	users map[string]auth.User
}

func newMemRepo() *memRepo { return &memRepo{users: make(map[string]auth.User)} }

func (r *memRepo) Create(_ context.Context, user auth.User) error {
	if _, ok := r.users[user.Email]; ok {
		return auth.ErrEmailTaken
	}
	r.users[user.Email] = user
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id uuid.UUID) (auth.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return auth.User{}, auth.ErrUserNotFound
}

func (r *memRepo) GetByEmail(_ context.Context, addr string) (auth.User, error) {
	u, ok := r.users[addr]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	return u, nil
}

func (r *memRepo) MarkEmailVerified(_ context.Context, id uuid.UUID) error {
	for k, u := range r.users {
		if u.ID == id {
			u.EmailVerified = true
			r.users[k] = u
			return nil
		}
	}
	return auth.ErrUserNotFound
}

type fakeCodes struct {
	issued map[string]string
}

func newFakeCodes() *fakeCodes { return &fakeCodes{issued: make(map[string]string)} }

func (c *fakeCodes) Issue(_ context.Context, addr string) (string, error) {
	c.issued[addr] = "123456"
	return "123456", nil
}

func (c *fakeCodes) Verify(_ context.Context, addr, code string) error {
	if c.issued[addr] != code {
		return auth.ErrInvalidOTP
	}
	delete(c.issued, addr)
	return nil
}

type fakeLimiter struct {
	hits   map[string]int
	budget int
}

func (l *fakeLimiter) Allow(_ context.Context, key string) error {
	l.hits[key]++
	if l.hits[key] > l.budget {
		return auth.ErrRateLimited
	}
	return nil
}

type recordingSender struct {
	sent []email.SendEmailParams
}

func (s *recordingSender) SendEmail(_ context.Context, params email.SendEmailParams) error {
	s.sent = append(s.sent, params)
	return nil
}

func newTestService(t *testing.T) (*auth.Service, *memRepo, *fakeCodes, *recordingSender) {
	t.Helper()
	tokens, err := jwt.New("test-secret", "ayo-portal", time.Hour)
	require.NoError(t, err)
	repo := newMemRepo()
	codes := newFakeCodes()
	sender := &recordingSender{}
	limiter := &fakeLimiter{hits: make(map[string]int), budget: 3}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := auth.Config{BcryptCost: bcrypt.MinCost}
	svc := auth.NewService(cfg, repo, codes, limiter, tokens, sender, log)
	return svc, repo, codes, sender
}

func TestService_Register(t *testing.T) {
	t.Parallel()

	t.Run("creates unverified member and sends code", func(t *testing.T) {
		t.Parallel()
		svc, repo, codes, sender := newTestService(t)

		user, err := svc.Register(context.Background(), "  Amina Yusuf  ", "Amina@Example.COM", "s3cretpass")
		require.NoError(t, err)
		assert.Equal(t, "Amina Yusuf", user.Name)
		assert.Equal(t, "amina@example.com", user.Email)
		assert.Equal(t, rbac.RoleMember, user.Role)
		assert.False(t, user.EmailVerified)

		_, ok := repo.users["amina@example.com"]
		assert.True(t, ok)
		assert.Equal(t, "123456", codes.issued["amina@example.com"])
		require.Len(t, sender.sent, 1)
		assert.Equal(t, "amina@example.com", sender.sent[0].SendTo)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		t.Parallel()
		svc, _, _, _ := newTestService(t)

		_, err := svc.Register(context.Background(), "First", "dup@example.com", "password1")
		require.NoError(t, err)
		_, err = svc.Register(context.Background(), "Second", "dup@example.com", "password2")
		assert.ErrorIs(t, err, auth.ErrEmailTaken)
	})

	t.Run("input validation", func(t *testing.T) {
		t.Parallel()
		svc, _, _, _ := newTestService(t)
		ctx := context.Background()

		_, err := svc.Register(ctx, "   ", "a@example.com", "password1")
		assert.ErrorIs(t, err, auth.ErrEmptyName)
		_, err = svc.Register(ctx, "Name", "not-an-email", "password1")
		assert.ErrorIs(t, err, auth.ErrInvalidEmail)
		_, err = svc.Register(ctx, "Name", "a@example.com", "short")
		assert.ErrorIs(t, err, auth.ErrWeakPassword)
	})
}

func TestService_VerifyEmail(t *testing.T) {
	t.Parallel()

	t.Run("marks account verified and sends welcome", func(t *testing.T) {
		t.Parallel()
		svc, repo, _, sender := newTestService(t)
		ctx := context.Background()

		_, err := svc.Register(ctx, "Amina", "amina@example.com", "s3cretpass")
		require.NoError(t, err)

		require.NoError(t, svc.VerifyEmail(ctx, "amina@example.com", "123456"))
		assert.True(t, repo.users["amina@example.com"].EmailVerified)
		require.Len(t, sender.sent, 2)
		assert.Equal(t, email.TagWelcome, sender.sent[1].Tag)
	})

	t.Run("wrong code is refused", func(t *testing.T) {
		t.Parallel()
		svc, repo, _, _ := newTestService(t)
		ctx := context.Background()

		_, err := svc.Register(ctx, "Amina", "amina@example.com", "s3cretpass")
		require.NoError(t, err)

		err = svc.VerifyEmail(ctx, "amina@example.com", "000000")
		assert.ErrorIs(t, err, auth.ErrInvalidOTP)
		assert.False(t, repo.users["amina@example.com"].EmailVerified)
	})
}

func TestService_Login(t *testing.T) {
	t.Parallel()

	register := func(t *testing.T, svc *auth.Service, verify bool) {
		t.Helper()
		ctx := context.Background()
		_, err := svc.Register(ctx, "Amina", "amina@example.com", "s3cretpass")
		require.NoError(t, err)
		if verify {
			require.NoError(t, svc.VerifyEmail(ctx, "amina@example.com", "123456"))
		}
	}

	t.Run("returns token for verified account", func(t *testing.T) {
		t.Parallel()
		svc, _, _, _ := newTestService(t)
		register(t, svc, true)

		token, user, err := svc.Login(context.Background(), "amina@example.com", "s3cretpass")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "amina@example.com", user.Email)
	})

	t.Run("wrong password and unknown email map to one error", func(t *testing.T) {
		t.Parallel()
		svc, _, _, _ := newTestService(t)
		register(t, svc, true)
		ctx := context.Background()

		_, _, err := svc.Login(ctx, "amina@example.com", "wrongpass")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		_, _, err = svc.Login(ctx, "nobody@example.com", "whatever")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unverified account cannot log in", func(t *testing.T) {
		t.Parallel()
		svc, _, _, _ := newTestService(t)
		register(t, svc, false)

		_, _, err := svc.Login(context.Background(), "amina@example.com", "s3cretpass")
		assert.ErrorIs(t, err, auth.ErrEmailNotVerified)
	})

	t.Run("attempts beyond the budget are throttled", func(t *testing.T) {
		t.Parallel()
		svc, _, _, _ := newTestService(t)
		register(t, svc, true)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			_, _, err := svc.Login(ctx, "amina@example.com", "wrongpass")
			assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		}
		_, _, err := svc.Login(ctx, "amina@example.com", "s3cretpass")
		assert.ErrorIs(t, err, auth.ErrRateLimited)
	})
}
