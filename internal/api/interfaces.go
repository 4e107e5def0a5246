package api

import (
	"context"
	"time"

	"github.com/alumnet/alumni-backend/internal/approval"
	"github.com/alumnet/alumni-backend/internal/store"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// ApprovalService is the slice of the approval workflow the handlers
// consume.
type ApprovalService interface {
	Approve(ctx context.Context, principal string, targetID uuid.UUID, action approval.Action, now time.Time) (approval.Status, error)
	ListPendingFor(ctx context.Context, principal string, now time.Time) ([]approval.PendingProfile, error)
}

// PrivilegeChecker answers single-capability checks for admin
// endpoints.
type PrivilegeChecker interface {
	HasPrivilege(ctx context.Context, principal, privilege string, now time.Time) (bool, error)
}

// DirectoryStore covers onboarding and the member directory.
type DirectoryStore interface {
	Create(ctx context.Context, p store.CreateParams) (uuid.UUID, error)
	SearchApproved(ctx context.Context, term string, limit, offset int64) ([]approval.Profile, error)
	CountApproved(ctx context.Context, term string) (int64, error)
}

// MembershipAdmin performs the admin membership-type toggle.
type MembershipAdmin interface {
	ToggleAdminLevel(ctx context.Context, principal string) (string, error)
}

// EmailQueue delivers transactional mail asynchronously.
type EmailQueue interface {
	Enqueue(taskType string, data interface{}) (*asynq.TaskInfo, error)
}

// AuthService defines the authentication operations used by the login
// endpoints.
type AuthService interface {
	RequestOTP(ctx context.Context, email string) (string, error)
	VerifyOTP(ctx context.Context, email, code string) (accessToken, refreshToken string, err error)
	Refresh(ctx context.Context, refreshToken string) (newAccess, newRefresh string, err error)
	Logout(ctx context.Context, refreshToken string) error
}
