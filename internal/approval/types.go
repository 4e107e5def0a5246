package approval

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Status of a profile in the target registry.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Action requested against a pending profile.
type Action string

const (
	ActionApprove Action = "APPROVE"
	ActionReject  Action = "REJECT"
)

// Grant is a time-bounded assignment of a membership type to a
// principal. Scope is parsed once at the store boundary; a grant
// whose params were absent or malformed carries NoScope.
type Grant struct {
	Principal string
	Type      string
	StartsAt  time.Time
	EndsAt    *time.Time
	Scope     Scope
}

// ActiveAt reports whether the grant is active at t: it has started
// and either never expires or has not yet expired. The end instant
// itself is still active.
func (g Grant) ActiveAt(t time.Time) bool {
	if g.StartsAt.After(t) {
		return false
	}
	return g.EndsAt == nil || !g.EndsAt.Before(t)
}

// Privilege is one row of the privilege matrix, keyed by
// (membership type, privilege name).
type Privilege struct {
	MembershipType string
	Name           string
	View           bool
	Edit           bool
	Execute        bool
}

// Profile is a registration record in the target registry.
type Profile struct {
	ID             uuid.UUID
	Name           string
	Email          string
	GraduationYear int
	Branch         string
	Company        string
	AvatarKey      string
	Status         Status
	ApprovedBy     *string
	ApprovedAt     *time.Time
	CreatedAt      time.Time
}

// AuditEntry records one resolved approval decision.
// MembershipTypeUsed is empty when the decision was justified by the
// legacy graduation-year fallback rather than an explicit grant.
type AuditEntry struct {
	ProfileID          uuid.UUID
	Approver           string
	MembershipTypeUsed string
	Action             Action
	At                 time.Time
}

// MembershipStore supplies a principal's membership grants.
type MembershipStore interface {
	GrantsByPrincipal(ctx context.Context, principal string) ([]Grant, error)
}

// PrivilegeStore supplies privilege-matrix rows for a set of
// membership types.
type PrivilegeStore interface {
	PrivilegesForTypes(ctx context.Context, membershipTypes []string) ([]Privilege, error)
}

// GraduationLookup resolves a principal's own graduation year for the
// legacy fallback. ok is false when the principal has no profile.
type GraduationLookup interface {
	GraduationYearByEmail(ctx context.Context, email string) (year int, ok bool, err error)
}

// ProfileStore is the target registry.
type ProfileStore interface {
	GraduationLookup

	// GetByID returns (nil, nil) when no profile exists with the id.
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)

	ListPending(ctx context.Context) ([]Profile, error)
	ListPendingByYears(ctx context.Context, years []int) ([]Profile, error)

	// ResolveDecision applies the status transition atomically,
	// conditioned on the row still being PENDING. Returns false when
	// the conditional update matched no row (a concurrent request won).
	ResolveDecision(ctx context.Context, id uuid.UUID, status Status, approver string, at time.Time) (bool, error)
}

// AuditStore appends approval audit entries.
type AuditStore interface {
	Append(ctx context.Context, entry AuditEntry) error
}

// AvatarResolver turns a stored avatar reference into a fetchable URL.
type AvatarResolver interface {
	AvatarURL(ctx context.Context, key string) (string, error)
}

// DecisionNotifier is told about resolved decisions so it can inform
// the profile owner. Implementations must not fail the approval; any
// delivery problem is theirs to log.
type DecisionNotifier interface {
	DecisionResolved(ctx context.Context, profile Profile, action Action)
}
