package approval

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alumnet/alumni-backend/internal/rbac"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAvatars struct {
	url string
	err error
}

func (s *stubAvatars) AvatarURL(_ context.Context, key string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.url + "/" + key, nil
}

func newWorkflowFixture(grants map[string][]Grant, rows []Privilege) (*Workflow, *fakeProfiles, *fakeAudit, *fakeNotifier) {
	profiles := newFakeProfiles()
	audit := &fakeAudit{}
	notifier := &fakeNotifier{}
	engine := NewEngine(&fakeMemberships{grants: grants}, &fakePrivileges{rows: rows}, profiles)
	return NewWorkflow(engine, profiles, audit, nil, notifier), profiles, audit, notifier
}

func approvalMatrix() []Privilege {
	return []Privilege{
		execRow(rbac.TypeAdminL1, rbac.ApproveOnboardAll),
		execRow(rbac.TypeAdminL2, rbac.ApproveOnboardBatch),
	}
}

func pendingProfile(year int) Profile {
	return Profile{
		ID:             uuid.New(),
		Name:           "Pending Person",
		Email:          uuid.NewString() + "@example.com",
		GraduationYear: year,
		Status:         StatusPending,
		CreatedAt:      now.Add(-time.Hour),
	}
}

func TestWorkflow_Approve(t *testing.T) {
	ctx := context.Background()
	start := now.Add(-30 * 24 * time.Hour)

	l2Grants := map[string][]Grant{
		"l2@example.com": {
			grant("l2@example.com", rbac.TypeAdminL2, start, nil, YearSet{2016: {}}),
		},
	}

	t.Run("unknown action", func(t *testing.T) {
		w, profiles, _, _ := newWorkflowFixture(l2Grants, approvalMatrix())
		target := pendingProfile(2016)
		profiles.add(target)

		_, err := w.Approve(ctx, "l2@example.com", target.ID, Action("DEFER"), now)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidState)
	})

	t.Run("profile not found", func(t *testing.T) {
		w, _, _, _ := newWorkflowFixture(l2Grants, approvalMatrix())

		_, err := w.Approve(ctx, "l2@example.com", uuid.New(), ActionApprove, now)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("already resolved", func(t *testing.T) {
		w, profiles, audit, _ := newWorkflowFixture(l2Grants, approvalMatrix())
		target := pendingProfile(2016)
		target.Status = StatusApproved
		profiles.add(target)

		_, err := w.Approve(ctx, "l2@example.com", target.ID, ActionApprove, now)
		assert.ErrorIs(t, err, ErrInvalidState)
		assert.Empty(t, audit.all())
	})

	t.Run("forbidden leaves profile untouched", func(t *testing.T) {
		w, profiles, audit, notifier := newWorkflowFixture(l2Grants, approvalMatrix())
		target := pendingProfile(2019)
		profiles.add(target)

		_, err := w.Approve(ctx, "l2@example.com", target.ID, ActionApprove, now)
		assert.ErrorIs(t, err, ErrForbidden)

		stored, getErr := profiles.GetByID(ctx, target.ID)
		require.NoError(t, getErr)
		assert.Equal(t, StatusPending, stored.Status)
		assert.Empty(t, audit.all())
		assert.Zero(t, notifier.count())
	})

	t.Run("approve within batch scope", func(t *testing.T) {
		w, profiles, audit, notifier := newWorkflowFixture(l2Grants, approvalMatrix())
		target := pendingProfile(2016)
		profiles.add(target)

		status, err := w.Approve(ctx, "l2@example.com", target.ID, ActionApprove, now)
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, status)

		stored, getErr := profiles.GetByID(ctx, target.ID)
		require.NoError(t, getErr)
		assert.Equal(t, StatusApproved, stored.Status)
		require.NotNil(t, stored.ApprovedBy)
		assert.Equal(t, "l2@example.com", *stored.ApprovedBy)
		require.NotNil(t, stored.ApprovedAt)

		entries := audit.all()
		require.Len(t, entries, 1)
		assert.Equal(t, target.ID, entries[0].ProfileID)
		assert.Equal(t, "l2@example.com", entries[0].Approver)
		assert.Equal(t, rbac.TypeAdminL2, entries[0].MembershipTypeUsed)
		assert.Equal(t, ActionApprove, entries[0].Action)

		assert.Equal(t, 1, notifier.count())
	})

	t.Run("reject", func(t *testing.T) {
		w, profiles, audit, _ := newWorkflowFixture(l2Grants, approvalMatrix())
		target := pendingProfile(2016)
		profiles.add(target)

		status, err := w.Approve(ctx, "l2@example.com", target.ID, ActionReject, now)
		require.NoError(t, err)
		assert.Equal(t, StatusRejected, status)

		stored, getErr := profiles.GetByID(ctx, target.ID)
		require.NoError(t, getErr)
		assert.Equal(t, StatusRejected, stored.Status)
		assert.Nil(t, stored.ApprovedAt)

		entries := audit.all()
		require.Len(t, entries, 1)
		assert.Equal(t, ActionReject, entries[0].Action)
	})

	t.Run("fallback approval is audited without grant attribution", func(t *testing.T) {
		grants := map[string][]Grant{
			"fallback@example.com": {
				grant("fallback@example.com", rbac.TypeAdminL2, start, nil, NoScope{}),
			},
		}
		w, profiles, audit, _ := newWorkflowFixture(grants, approvalMatrix())

		profiles.add(Profile{
			ID: uuid.New(), Email: "fallback@example.com",
			GraduationYear: 2013, Status: StatusApproved,
		})
		target := pendingProfile(2013)
		profiles.add(target)

		status, err := w.Approve(ctx, "fallback@example.com", target.ID, ActionApprove, now)
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, status)

		entries := audit.all()
		require.Len(t, entries, 1)
		assert.Empty(t, entries[0].MembershipTypeUsed)
	})

	t.Run("audit failure does not undo the decision", func(t *testing.T) {
		w, profiles, audit, notifier := newWorkflowFixture(l2Grants, approvalMatrix())
		audit.err = errors.New("audit table unavailable")
		target := pendingProfile(2016)
		profiles.add(target)

		status, err := w.Approve(ctx, "l2@example.com", target.ID, ActionApprove, now)
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, status)

		stored, getErr := profiles.GetByID(ctx, target.ID)
		require.NoError(t, getErr)
		assert.Equal(t, StatusApproved, stored.Status)
		assert.Equal(t, 1, notifier.count())
	})

	t.Run("concurrent approvals produce one winner", func(t *testing.T) {
		grants := map[string][]Grant{
			"l1@example.com": {grant("l1@example.com", rbac.TypeAdminL1, start, nil, nil)},
		}
		w, profiles, audit, _ := newWorkflowFixture(grants, approvalMatrix())
		target := pendingProfile(2016)
		profiles.add(target)

		const racers = 16
		results := make([]error, racers)
		var wg sync.WaitGroup
		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, results[i] = w.Approve(ctx, "l1@example.com", target.ID, ActionApprove, now)
			}(i)
		}
		wg.Wait()

		var wins, conflicts int
		for _, err := range results {
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrInvalidState):
				conflicts++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, wins)
		assert.Equal(t, racers-1, conflicts)
		assert.Len(t, audit.all(), 1)
	})
}

func TestWorkflow_ListPendingFor(t *testing.T) {
	ctx := context.Background()
	start := now.Add(-30 * 24 * time.Hour)

	t.Run("unconditional approver sees every pending profile", func(t *testing.T) {
		grants := map[string][]Grant{
			"l1@example.com": {grant("l1@example.com", rbac.TypeAdminL1, start, nil, nil)},
		}
		w, profiles, _, _ := newWorkflowFixture(grants, approvalMatrix())
		profiles.add(pendingProfile(2010))
		profiles.add(pendingProfile(2020))
		resolved := pendingProfile(2015)
		resolved.Status = StatusRejected
		profiles.add(resolved)

		pending, err := w.ListPendingFor(ctx, "l1@example.com", now)
		require.NoError(t, err)
		assert.Len(t, pending, 2)
	})

	t.Run("batch approver sees only covered years", func(t *testing.T) {
		grants := map[string][]Grant{
			"l2@example.com": {
				grant("l2@example.com", rbac.TypeAdminL2, start, nil, YearSet{2016: {}, 2017: {}}),
			},
		}
		w, profiles, _, _ := newWorkflowFixture(grants, approvalMatrix())
		in := pendingProfile(2016)
		profiles.add(in)
		profiles.add(pendingProfile(2019))

		pending, err := w.ListPendingFor(ctx, "l2@example.com", now)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, in.ID, pending[0].ID)
	})

	t.Run("no privileges yields an empty list", func(t *testing.T) {
		w, profiles, _, _ := newWorkflowFixture(nil, approvalMatrix())
		profiles.add(pendingProfile(2016))

		pending, err := w.ListPendingFor(ctx, "nobody@example.com", now)
		require.NoError(t, err)
		assert.NotNil(t, pending)
		assert.Empty(t, pending)
	})

	t.Run("avatar urls resolved when a resolver is wired", func(t *testing.T) {
		grants := map[string][]Grant{
			"l1@example.com": {grant("l1@example.com", rbac.TypeAdminL1, start, nil, nil)},
		}
		profiles := newFakeProfiles()
		engine := NewEngine(&fakeMemberships{grants: grants}, &fakePrivileges{rows: approvalMatrix()}, profiles)
		w := NewWorkflow(engine, profiles, &fakeAudit{}, &stubAvatars{url: "https://cdn.example"}, nil)

		withAvatar := pendingProfile(2016)
		withAvatar.AvatarKey = "avatars/a.png"
		profiles.add(withAvatar)
		without := pendingProfile(2017)
		profiles.add(without)

		pending, err := w.ListPendingFor(ctx, "l1@example.com", now)
		require.NoError(t, err)
		require.Len(t, pending, 2)

		byID := map[uuid.UUID]PendingProfile{}
		for _, p := range pending {
			byID[p.ID] = p
		}
		require.NotNil(t, byID[withAvatar.ID].AvatarURL)
		assert.Equal(t, "https://cdn.example/avatars/a.png", *byID[withAvatar.ID].AvatarURL)
		assert.Nil(t, byID[without.ID].AvatarURL)
	})

	t.Run("avatar resolver failure degrades to null", func(t *testing.T) {
		grants := map[string][]Grant{
			"l1@example.com": {grant("l1@example.com", rbac.TypeAdminL1, start, nil, nil)},
		}
		profiles := newFakeProfiles()
		engine := NewEngine(&fakeMemberships{grants: grants}, &fakePrivileges{rows: approvalMatrix()}, profiles)
		w := NewWorkflow(engine, profiles, &fakeAudit{}, &stubAvatars{err: errors.New("s3 down")}, nil)

		p := pendingProfile(2016)
		p.AvatarKey = "avatars/a.png"
		profiles.add(p)

		pending, err := w.ListPendingFor(ctx, "l1@example.com", now)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Nil(t, pending[0].AvatarURL)
	})
}
