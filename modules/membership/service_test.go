package membership_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zafarimam8588/ayo-portal/modules/auth"
	"github.com/zafarimam8588/ayo-portal/modules/membership"
	"github.com/zafarimam8588/ayo-portal/pkg/email"
	"github.com/zafarimam8588/ayo-portal/pkg/rbac"
)

type memRepo struct {
	profiles map[uuid.UUID]membership.Profile
	seqs     map[int]int
}

func newMemRepo() *memRepo {
	return &memRepo{
		profiles: make(map[uuid.UUID]membership.Profile),
		seqs:     make(map[int]int),
	}
}

func (r *memRepo) Create(_ context.Context, p membership.Profile) error {
	r.profiles[p.UserID] = p
	return nil
}

func (r *memRepo) Get(_ context.Context, userID uuid.UUID) (membership.Profile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return membership.Profile{}, membership.ErrProfileNotFound
	}
	return p, nil
}

func (r *memRepo) List(_ context.Context, filter membership.ListFilter) ([]membership.Profile, error) {
	var out []membership.Profile
	for _, p := range r.profiles {
		if filter.Status == "" || p.Status == filter.Status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memRepo) UpdateFields(_ context.Context, p membership.Profile) error {
	if _, ok := r.profiles[p.UserID]; !ok {
		return membership.ErrProfileNotFound
	}
	r.profiles[p.UserID] = p
	return nil
}

func (r *memRepo) UpdateStatus(_ context.Context, p membership.Profile) error {
	if _, ok := r.profiles[p.UserID]; !ok {
		return membership.ErrProfileNotFound
	}
	r.profiles[p.UserID] = p
	return nil
}

func (r *memRepo) NextMembershipSeq(_ context.Context, year int) (int, error) {
	r.seqs[year]++
	return r.seqs[year], nil
}

type fakeDirectory struct {
	users map[uuid.UUID]auth.User
}

func (d *fakeDirectory) GetUser(_ context.Context, id uuid.UUID) (auth.User, error) {
	u, ok := d.users[id]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	return u, nil
}

type recordingSender struct {
	sent []email.SendEmailParams
}

func (s *recordingSender) SendEmail(_ context.Context, params email.SendEmailParams) error {
	s.sent = append(s.sent, params)
	return nil
}

type fixture struct {
	svc      *membership.Service
	repo     *memRepo
	sender   *recordingSender
	memberID uuid.UUID
	adminID  uuid.UUID
	viewerID uuid.UUID
}

func (f *fixture) admin() membership.Actor {
	return membership.Actor{ID: f.adminID, Role: rbac.RoleAdmin}
}

func (f *fixture) viewer() membership.Actor {
	return membership.Actor{ID: f.viewerID, Role: rbac.RoleViewer}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:     newMemRepo(),
		sender:   &recordingSender{},
		memberID: uuid.New(),
		adminID:  uuid.New(),
		viewerID: uuid.New(),
	}
	dir := &fakeDirectory{users: map[uuid.UUID]auth.User{
		f.memberID: {ID: f.memberID, Name: "Amina Yusuf", Email: "amina@example.com"},
	}}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = membership.NewService(f.repo, dir, rbac.NewAuthorizer(), f.sender, log)
	return f
}

func completeParams() membership.UpdateProfileParams {
	return membership.UpdateProfileParams{
		Phone:       "+234 801 234 5678",
		DateOfBirth: "1994-03-12",
		Gender:      "female",
		Address: membership.Address{
			Street:     "12 Unity Road",
			City:       "Abuja",
			State:      "FCT",
			PostalCode: "900001",
		},
		ReasonToJoin: "I want to volunteer with the youth programs.",
	}
}

func (f *fixture) completeAndSubmit(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.UpdateProfile(ctx, f.memberID, completeParams())
	require.NoError(t, err)
	profile, err := f.svc.Submit(ctx, f.memberID)
	require.NoError(t, err)
	require.Equal(t, membership.StatusPending, profile.Status)
}

func TestProfile_Completeness(t *testing.T) {
	t.Parallel()

	params := completeParams()
	params.Gender = ""

	var p membership.Profile
	p.Phone = params.Phone
	p.DateOfBirth = params.DateOfBirth
	p.Address = params.Address
	p.ReasonToJoin = params.ReasonToJoin

	assert.False(t, p.Complete())
	assert.Equal(t, []string{"gender"}, p.MissingFields())
}

func TestService_Submit(t *testing.T) {
	t.Parallel()

	t.Run("incomplete profile is refused before any write", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()

		params := completeParams()
		params.Gender = ""
		_, err := f.svc.UpdateProfile(ctx, f.memberID, params)
		require.NoError(t, err)

		_, err = f.svc.Submit(ctx, f.memberID)
		assert.ErrorIs(t, err, membership.ErrProfileIncomplete)
		assert.ErrorContains(t, err, "gender")

		stored := f.repo.profiles[f.memberID]
		assert.Equal(t, membership.StatusNotSubmitted, stored.Status)
	})

	t.Run("complete profile moves to pending", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.completeAndSubmit(t)
		assert.Equal(t, membership.StatusPending, f.repo.profiles[f.memberID].Status)
	})

	t.Run("double submit is refused", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.completeAndSubmit(t)

		_, err := f.svc.Submit(context.Background(), f.memberID)
		assert.ErrorIs(t, err, membership.ErrAlreadyPending)
	})
}

func TestService_Approve(t *testing.T) {
	t.Parallel()

	t.Run("records approver, timestamp, and membership id", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.completeAndSubmit(t)

		profile, err := f.svc.Approve(context.Background(), f.admin(), f.memberID, "")
		require.NoError(t, err)

		assert.Equal(t, membership.StatusApproved, profile.Status)
		assert.Equal(t, f.adminID, profile.ApprovedBy)
		assert.False(t, profile.ApprovedAt.IsZero())
		year := time.Now().UTC().Year()
		assert.Equal(t, membershipIDFor(year, 1), profile.MembershipID)

		require.Len(t, f.sender.sent, 1)
		assert.Equal(t, email.TagApproval, f.sender.sent[0].Tag)
	})

	t.Run("view-only admin is blocked with a reason and no side effects", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.completeAndSubmit(t)

		_, err := f.svc.Approve(context.Background(), f.viewer(), f.memberID, "")
		var permErr *membership.PermissionError
		require.ErrorAs(t, err, &permErr)
		assert.Contains(t, permErr.Reason, "view-only")

		assert.Equal(t, membership.StatusPending, f.repo.profiles[f.memberID].Status)
		assert.Empty(t, f.sender.sent)
	})

	t.Run("non-pending profile cannot be approved", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.svc.UpdateProfile(context.Background(), f.memberID, completeParams())
		require.NoError(t, err)

		_, err = f.svc.Approve(context.Background(), f.admin(), f.memberID, "")
		assert.ErrorIs(t, err, membership.ErrNotPending)
	})
}

func TestService_Reject(t *testing.T) {
	t.Parallel()

	t.Run("reason empty after trim is refused", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.completeAndSubmit(t)

		_, err := f.svc.Reject(context.Background(), f.admin(), f.memberID, "   ")
		assert.ErrorIs(t, err, membership.ErrEmptyReason)
		assert.Equal(t, membership.StatusPending, f.repo.profiles[f.memberID].Status)
	})

	t.Run("reason is stored verbatim", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.completeAndSubmit(t)

		reason := "Incomplete address proof <see notes>"
		profile, err := f.svc.Reject(context.Background(), f.admin(), f.memberID, reason)
		require.NoError(t, err)

		assert.Equal(t, membership.StatusRejected, profile.Status)
		assert.Equal(t, reason, profile.RejectionReason)

		require.Len(t, f.sender.sent, 1)
		assert.Equal(t, email.TagRejection, f.sender.sent[0].Tag)
		// The email body carries the escaped form, never the raw reason.
		assert.NotContains(t, f.sender.sent[0].BodyHTML, "<see notes>")
	})

	t.Run("view-only admin is blocked locally", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.completeAndSubmit(t)

		_, err := f.svc.Reject(context.Background(), f.viewer(), f.memberID, "reason")
		var permErr *membership.PermissionError
		require.ErrorAs(t, err, &permErr)
		assert.Equal(t, membership.StatusPending, f.repo.profiles[f.memberID].Status)
		assert.Empty(t, f.sender.sent)
	})
}

func TestService_Resubmit(t *testing.T) {
	t.Parallel()

	t.Run("after rejection returns to pending and clears the reason", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.completeAndSubmit(t)
		ctx := context.Background()

		_, err := f.svc.Reject(ctx, f.admin(), f.memberID, "Missing documents")
		require.NoError(t, err)

		profile, err := f.svc.Submit(ctx, f.memberID)
		require.NoError(t, err)
		assert.Equal(t, membership.StatusPending, profile.Status)
		assert.Empty(t, profile.RejectionReason)
	})

	t.Run("after approval returns to pending", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.completeAndSubmit(t)
		ctx := context.Background()

		_, err := f.svc.Approve(ctx, f.admin(), f.memberID, "welcome")
		require.NoError(t, err)

		profile, err := f.svc.Submit(ctx, f.memberID)
		require.NoError(t, err)
		assert.Equal(t, membership.StatusPending, profile.Status)
	})
}

func TestService_UpdateProfile(t *testing.T) {
	t.Parallel()

	t.Run("locked while pending", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.completeAndSubmit(t)

		_, err := f.svc.UpdateProfile(context.Background(), f.memberID, completeParams())
		assert.ErrorIs(t, err, membership.ErrProfileLocked)
	})

	t.Run("invalid phone is refused", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		params := completeParams()
		params.Phone = "not-a-phone"

		_, err := f.svc.UpdateProfile(context.Background(), f.memberID, params)
		assert.ErrorIs(t, err, membership.ErrInvalidPhone)
	})
}

func TestService_List(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.completeAndSubmit(t)

	profiles, err := f.svc.List(context.Background(), f.admin(), membership.ListFilter{Status: membership.StatusPending})
	require.NoError(t, err)
	assert.Len(t, profiles, 1)

	// Viewers keep read access.
	profiles, err = f.svc.List(context.Background(), f.viewer(), membership.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, profiles, 1)

	_, err = f.svc.List(context.Background(), membership.Actor{ID: f.memberID, Role: rbac.RoleMember}, membership.ListFilter{})
	var permErr *membership.PermissionError
	assert.ErrorAs(t, err, &permErr)
}

func membershipIDFor(year, seq int) string {
	return fmt.Sprintf("AYO-%d-%03d", year, seq)
}
