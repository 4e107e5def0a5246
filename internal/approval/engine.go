package approval

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/alumnet/alumni-backend/internal/rbac"
)

// Deny reasons surfaced on Decision. These are internal diagnostics;
// HTTP handlers must not echo them to forbidden callers.
const (
	ReasonNoActiveMemberships  = "no active memberships"
	ReasonNoApprovalPrivileges = "no approval privileges"
	ReasonBatchNotCovered      = "not authorized for this target's batch"
)

// Decision is the outcome of a single authorization check.
// MembershipType names the grant that justified an allow; it is empty
// on deny and on the legacy graduation-year fallback. Which grant is
// named is audit metadata only, never something to branch on.
type Decision struct {
	Allowed        bool
	MembershipType string
	Reason         string
}

// Engine resolves whether a principal may act on a target batch year.
// It reads the membership store and privilege matrix per call and
// keeps no state of its own, so a single instance is safe to share
// across requests.
type Engine struct {
	memberships MembershipStore
	privileges  PrivilegeStore
	graduation  GraduationLookup
}

func NewEngine(memberships MembershipStore, privileges PrivilegeStore, graduation GraduationLookup) *Engine {
	return &Engine{
		memberships: memberships,
		privileges:  privileges,
		graduation:  graduation,
	}
}

// ActiveMemberships returns the principal's grants active at now, in
// store order. An empty result is valid and means no privileges.
func (e *Engine) ActiveMemberships(ctx context.Context, principal string, now time.Time) ([]Grant, error) {
	grants, err := e.memberships.GrantsByPrincipal(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("loading membership grants: %w", err)
	}

	var active []Grant
	for _, g := range grants {
		if g.ActiveAt(now) {
			active = append(active, g)
		}
	}
	return active, nil
}

// ResolvePrivileges returns the privilege-matrix rows for the given
// membership types. Empty input short-circuits without a query.
func (e *Engine) ResolvePrivileges(ctx context.Context, membershipTypes []string) ([]Privilege, error) {
	if len(membershipTypes) == 0 {
		return nil, nil
	}
	privs, err := e.privileges.PrivilegesForTypes(ctx, membershipTypes)
	if err != nil {
		return nil, fmt.Errorf("loading privileges: %w", err)
	}
	return privs, nil
}

// Decide answers whether principal may act on a target of the given
// batch year at now. The step order is the tie-break policy and is
// fixed: unconditional grants win over batch-scoped ones, and the
// legacy fallback runs only when no explicit batch grant matched.
func (e *Engine) Decide(ctx context.Context, principal string, targetYear int, now time.Time) (Decision, error) {
	active, err := e.ActiveMemberships(ctx, principal, now)
	if err != nil {
		return Decision{}, err
	}
	if len(active) == 0 {
		return Decision{Reason: ReasonNoActiveMemberships}, nil
	}

	privs, err := e.ResolvePrivileges(ctx, dedupeTypes(active))
	if err != nil {
		return Decision{}, err
	}

	allType, batchTypes := indexApprovalPrivileges(privs)
	if allType == "" && len(batchTypes) == 0 {
		return Decision{Reason: ReasonNoApprovalPrivileges}, nil
	}

	if allType != "" {
		return Decision{Allowed: true, MembershipType: allType}, nil
	}

	for _, g := range active {
		if !batchTypes[g.Type] {
			continue
		}
		if g.Scope.Contains(targetYear) {
			return Decision{Allowed: true, MembershipType: g.Type}, nil
		}
	}

	// Legacy fallback: an approver may act on their own batch even
	// without an explicit grant covering it. No grant attribution.
	year, ok, err := e.graduation.GraduationYearByEmail(ctx, principal)
	if err != nil {
		return Decision{}, fmt.Errorf("resolving approver graduation year: %w", err)
	}
	if ok && year == targetYear {
		return Decision{Allowed: true}, nil
	}

	return Decision{Reason: ReasonBatchNotCovered}, nil
}

// AllowedYears is the set of batch years a principal may act upon.
// All takes precedence over Years and means every year without
// enumeration.
type AllowedYears struct {
	All   bool
	Years []int
}

func (a AllowedYears) Contains(year int) bool {
	if a.All {
		return true
	}
	for _, y := range a.Years {
		if y == year {
			return true
		}
	}
	return false
}

func (a AllowedYears) Empty() bool {
	return !a.All && len(a.Years) == 0
}

// ResolveAllowedYears computes the full year set for listing. Every
// year it returns is one Decide would allow; the reverse does not hold
// for the legacy fallback year once any explicit batch year exists.
func (e *Engine) ResolveAllowedYears(ctx context.Context, principal string, now time.Time) (AllowedYears, error) {
	active, err := e.ActiveMemberships(ctx, principal, now)
	if err != nil {
		return AllowedYears{}, err
	}
	if len(active) == 0 {
		return AllowedYears{}, nil
	}

	privs, err := e.ResolvePrivileges(ctx, dedupeTypes(active))
	if err != nil {
		return AllowedYears{}, err
	}

	allType, batchTypes := indexApprovalPrivileges(privs)
	if allType != "" {
		return AllowedYears{All: true}, nil
	}
	if len(batchTypes) == 0 {
		return AllowedYears{}, nil
	}

	set := make(map[int]struct{})
	for _, g := range active {
		if !batchTypes[g.Type] {
			continue
		}
		for _, y := range g.Scope.Years() {
			set[y] = struct{}{}
		}
	}

	if len(set) == 0 {
		year, ok, err := e.graduation.GraduationYearByEmail(ctx, principal)
		if err != nil {
			return AllowedYears{}, fmt.Errorf("resolving approver graduation year: %w", err)
		}
		if ok {
			set[year] = struct{}{}
		}
	}

	if len(set) == 0 {
		return AllowedYears{}, nil
	}

	years := make([]int, 0, len(set))
	for y := range set {
		years = append(years, y)
	}
	sort.Ints(years)
	return AllowedYears{Years: years}, nil
}

// HasPrivilege reports whether any of the principal's active
// memberships carries execute rights for the named privilege. Used by
// endpoints gated on a single capability, like the membership toggle.
func (e *Engine) HasPrivilege(ctx context.Context, principal, privilege string, now time.Time) (bool, error) {
	active, err := e.ActiveMemberships(ctx, principal, now)
	if err != nil {
		return false, err
	}

	privs, err := e.ResolvePrivileges(ctx, dedupeTypes(active))
	if err != nil {
		return false, err
	}

	for _, p := range privs {
		if p.Name == privilege && p.Execute {
			return true, nil
		}
	}
	return false, nil
}

// dedupeTypes extracts membership type names preserving first-seen
// order.
func dedupeTypes(grants []Grant) []string {
	seen := make(map[string]struct{}, len(grants))
	var types []string
	for _, g := range grants {
		if _, ok := seen[g.Type]; ok {
			continue
		}
		seen[g.Type] = struct{}{}
		types = append(types, g.Type)
	}
	return types
}

// indexApprovalPrivileges scans privilege rows once, returning the
// membership type of the first unconditional execute row (empty when
// none) and the set of types carrying batch-scoped execute rights.
func indexApprovalPrivileges(privs []Privilege) (allType string, batchTypes map[string]bool) {
	batchTypes = make(map[string]bool)
	for _, p := range privs {
		if !p.Execute {
			continue
		}
		switch p.Name {
		case rbac.ApproveOnboardAll:
			if allType == "" {
				allType = p.MembershipType
			}
		case rbac.ApproveOnboardBatch:
			batchTypes[p.MembershipType] = true
		}
	}
	return allType, batchTypes
}
