package approval

import (
	"context"
	"fmt"
	"time"

	"github.com/alumnet/alumni-backend/internal/logging"
	"github.com/google/uuid"
)

// Workflow applies approval decisions to the target registry. The
// conditional update in the profile store is the only concurrency
// guard: two racing approvers produce exactly one winner, and the
// loser sees ErrInvalidState.
type Workflow struct {
	engine   *Engine
	profiles ProfileStore
	audit    AuditStore
	avatars  AvatarResolver   // optional; nil means no avatar URLs
	notifier DecisionNotifier // optional
}

func NewWorkflow(engine *Engine, profiles ProfileStore, audit AuditStore, avatars AvatarResolver, notifier DecisionNotifier) *Workflow {
	return &Workflow{
		engine:   engine,
		profiles: profiles,
		audit:    audit,
		avatars:  avatars,
		notifier: notifier,
	}
}

func (w *Workflow) Engine() *Engine {
	return w.engine
}

// Approve resolves a pending profile to APPROVED or REJECTED on behalf
// of principal. The audit write and owner notification are best-effort
// side effects: the state transition stands even if they fail.
func (w *Workflow) Approve(ctx context.Context, principal string, targetID uuid.UUID, action Action, now time.Time) (Status, error) {
	if action != ActionApprove && action != ActionReject {
		return "", fmt.Errorf("unknown action %q", action)
	}

	profile, err := w.profiles.GetByID(ctx, targetID)
	if err != nil {
		return "", fmt.Errorf("loading profile: %w", err)
	}
	if profile == nil {
		return "", ErrNotFound
	}
	if profile.Status != StatusPending {
		return "", ErrInvalidState
	}

	decision, err := w.engine.Decide(ctx, principal, profile.GraduationYear, now)
	if err != nil {
		return "", err
	}
	if !decision.Allowed {
		logging.Info("approval denied",
			"approver", principal,
			"profile_id", targetID,
			"reason", decision.Reason)
		return "", ErrForbidden
	}

	next := StatusApproved
	if action == ActionReject {
		next = StatusRejected
	}

	applied, err := w.profiles.ResolveDecision(ctx, targetID, next, principal, now)
	if err != nil {
		return "", fmt.Errorf("applying decision: %w", err)
	}
	if !applied {
		// Someone else resolved it between our status check and the
		// conditional write.
		return "", ErrInvalidState
	}

	if err := w.audit.Append(ctx, AuditEntry{
		ProfileID:          targetID,
		Approver:           principal,
		MembershipTypeUsed: decision.MembershipType,
		Action:             action,
		At:                 now,
	}); err != nil {
		logging.Error("failed to write approval audit entry",
			"profile_id", targetID,
			"approver", principal,
			"error", err)
	}

	if w.notifier != nil {
		w.notifier.DecisionResolved(ctx, *profile, action)
	}

	return next, nil
}

// PendingProfile is a pending registration prepared for display.
// AvatarURL is nil when the profile has no avatar or the resolver
// could not produce a URL.
type PendingProfile struct {
	Profile
	AvatarURL *string
}

// ListPendingFor returns the pending profiles the principal is allowed
// to act on. An empty allowed-year set returns an empty list without
// touching the registry.
func (w *Workflow) ListPendingFor(ctx context.Context, principal string, now time.Time) ([]PendingProfile, error) {
	years, err := w.engine.ResolveAllowedYears(ctx, principal, now)
	if err != nil {
		return nil, err
	}

	var profiles []Profile
	switch {
	case years.All:
		profiles, err = w.profiles.ListPending(ctx)
	case years.Empty():
		return []PendingProfile{}, nil
	default:
		profiles, err = w.profiles.ListPendingByYears(ctx, years.Years)
	}
	if err != nil {
		return nil, fmt.Errorf("listing pending profiles: %w", err)
	}

	pending := make([]PendingProfile, 0, len(profiles))
	for _, p := range profiles {
		pending = append(pending, PendingProfile{
			Profile:   p,
			AvatarURL: w.resolveAvatar(ctx, p),
		})
	}
	return pending, nil
}

func (w *Workflow) resolveAvatar(ctx context.Context, p Profile) *string {
	if w.avatars == nil || p.AvatarKey == "" {
		return nil
	}
	url, err := w.avatars.AvatarURL(ctx, p.AvatarKey)
	if err != nil {
		logging.Warn("failed to resolve avatar URL",
			"profile_id", p.ID,
			"avatar_key", p.AvatarKey,
			"error", err)
		return nil
	}
	return &url
}
