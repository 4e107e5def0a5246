package approval

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// In-memory fakes for the engine and workflow tests. The profile fake
// is mutex-guarded so the double-approve race test can hammer it from
// concurrent goroutines.

type fakeMemberships struct {
	grants map[string][]Grant
	err    error
}

func (f *fakeMemberships) GrantsByPrincipal(_ context.Context, principal string) ([]Grant, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.grants[principal], nil
}

type fakePrivileges struct {
	rows []Privilege
	err  error
}

func (f *fakePrivileges) PrivilegesForTypes(_ context.Context, membershipTypes []string) ([]Privilege, error) {
	if f.err != nil {
		return nil, f.err
	}
	wanted := make(map[string]bool, len(membershipTypes))
	for _, t := range membershipTypes {
		wanted[t] = true
	}
	var out []Privilege
	for _, row := range f.rows {
		if wanted[row.MembershipType] {
			out = append(out, row)
		}
	}
	return out, nil
}

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*Profile
	gradYear map[string]int
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{
		profiles: make(map[uuid.UUID]*Profile),
		gradYear: make(map[string]int),
	}
}

func (f *fakeProfiles) add(p Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := p
	f.profiles[p.ID] = &stored
	f.gradYear[p.Email] = p.GraduationYear
}

func (f *fakeProfiles) GraduationYearByEmail(_ context.Context, email string) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	year, ok := f.gradYear[email]
	return year, ok, nil
}

func (f *fakeProfiles) GetByID(_ context.Context, id uuid.UUID) (*Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProfiles) ListPending(_ context.Context) ([]Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Profile
	for _, p := range f.profiles {
		if p.Status == StatusPending {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProfiles) ListPendingByYears(_ context.Context, years []int) ([]Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	allowed := make(map[int]bool, len(years))
	for _, y := range years {
		allowed[y] = true
	}
	var out []Profile
	for _, p := range f.profiles {
		if p.Status == StatusPending && allowed[p.GraduationYear] {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProfiles) ResolveDecision(_ context.Context, id uuid.UUID, status Status, approver string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok || p.Status != StatusPending {
		return false, nil
	}
	p.Status = status
	p.ApprovedBy = &approver
	if status == StatusApproved {
		t := at
		p.ApprovedAt = &t
	}
	return true, nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []AuditEntry
	err     error
}

func (f *fakeAudit) Append(_ context.Context, entry AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAudit) all() []AuditEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]AuditEntry(nil), f.entries...)
}

type fakeNotifier struct {
	mu       sync.Mutex
	resolved []Action
}

func (f *fakeNotifier) DecisionResolved(_ context.Context, _ Profile, action Action) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolved = append(f.resolved, action)
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.resolved)
}

func grant(principal, membershipType string, start time.Time, end *time.Time, scope Scope) Grant {
	if scope == nil {
		scope = NoScope{}
	}
	return Grant{
		Principal: principal,
		Type:      membershipType,
		StartsAt:  start,
		EndsAt:    end,
		Scope:     scope,
	}
}

func execRow(membershipType, privilege string) Privilege {
	return Privilege{MembershipType: membershipType, Name: privilege, Execute: true}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
