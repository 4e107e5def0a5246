package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/alumnet/alumni-backend/internal/approval"
	"github.com/alumnet/alumni-backend/internal/store"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
)

// MockApprovalService is a mock implementation of the approval service
// consumed by the HTTP handlers.
type MockApprovalService struct {
	mock.Mock
}

func NewMockApprovalService(t *testing.T) *MockApprovalService {
	m := &MockApprovalService{}
	m.Test(t)
	return m
}

func (m *MockApprovalService) Approve(ctx context.Context, principal string, targetID uuid.UUID, action approval.Action, now time.Time) (approval.Status, error) {
	args := m.Called(ctx, principal, targetID, action, now)
	return args.Get(0).(approval.Status), args.Error(1)
}

func (m *MockApprovalService) ListPendingFor(ctx context.Context, principal string, now time.Time) ([]approval.PendingProfile, error) {
	args := m.Called(ctx, principal, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]approval.PendingProfile), args.Error(1)
}

// MockPrivilegeChecker mocks single-capability privilege checks.
type MockPrivilegeChecker struct {
	mock.Mock
}

func NewMockPrivilegeChecker(t *testing.T) *MockPrivilegeChecker {
	m := &MockPrivilegeChecker{}
	m.Test(t)
	return m
}

func (m *MockPrivilegeChecker) HasPrivilege(ctx context.Context, principal, privilege string, now time.Time) (bool, error) {
	args := m.Called(ctx, principal, privilege, now)
	return args.Bool(0), args.Error(1)
}

// MockDirectoryStore mocks the onboarding and directory queries.
type MockDirectoryStore struct {
	mock.Mock
}

func NewMockDirectoryStore(t *testing.T) *MockDirectoryStore {
	m := &MockDirectoryStore{}
	m.Test(t)
	return m
}

func (m *MockDirectoryStore) Create(ctx context.Context, p store.CreateParams) (uuid.UUID, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockDirectoryStore) SearchApproved(ctx context.Context, term string, limit, offset int64) ([]approval.Profile, error) {
	args := m.Called(ctx, term, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]approval.Profile), args.Error(1)
}

func (m *MockDirectoryStore) CountApproved(ctx context.Context, term string) (int64, error) {
	args := m.Called(ctx, term)
	return args.Get(0).(int64), args.Error(1)
}

// MockMembershipAdmin mocks the admin membership toggle.
type MockMembershipAdmin struct {
	mock.Mock
}

func NewMockMembershipAdmin(t *testing.T) *MockMembershipAdmin {
	m := &MockMembershipAdmin{}
	m.Test(t)
	return m
}

func (m *MockMembershipAdmin) ToggleAdminLevel(ctx context.Context, principal string) (string, error) {
	args := m.Called(ctx, principal)
	return args.String(0), args.Error(1)
}

// MockAuthService mocks the OTP login operations.
type MockAuthService struct {
	mock.Mock
}

func NewMockAuthService(t *testing.T) *MockAuthService {
	m := &MockAuthService{}
	m.Test(t)
	return m
}

func (m *MockAuthService) RequestOTP(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) VerifyOTP(ctx context.Context, email, code string) (string, string, error) {
	args := m.Called(ctx, email, code)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockAuthService) Logout(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

// MockEmailQueue mocks asynchronous email delivery.
type MockEmailQueue struct {
	mock.Mock
}

func NewMockEmailQueue(t *testing.T) *MockEmailQueue {
	m := &MockEmailQueue{}
	m.Test(t)
	return m
}

func (m *MockEmailQueue) Enqueue(taskType string, data interface{}) (*asynq.TaskInfo, error) {
	args := m.Called(taskType, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}

// MockAvatarResolver mocks presigned avatar URL generation.
type MockAvatarResolver struct {
	mock.Mock
}

func NewMockAvatarResolver(t *testing.T) *MockAvatarResolver {
	m := &MockAvatarResolver{}
	m.Test(t)
	return m
}

func (m *MockAvatarResolver) AvatarURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

// Helper methods for setting up common mock expectations

// ExpectApprove sets up expectation for Approve
func (m *MockApprovalService) ExpectApprove(principal string, targetID uuid.UUID, action approval.Action, status approval.Status, err error) *mock.Call {
	return m.On("Approve", mock.Anything, principal, targetID, action, mock.Anything).Return(status, err)
}

// ExpectListPendingFor sets up expectation for ListPendingFor
func (m *MockApprovalService) ExpectListPendingFor(principal string, pending []approval.PendingProfile, err error) *mock.Call {
	return m.On("ListPendingFor", mock.Anything, principal, mock.Anything).Return(pending, err)
}

// ExpectHasPrivilege sets up expectation for HasPrivilege
func (m *MockPrivilegeChecker) ExpectHasPrivilege(principal, privilege string, allowed bool, err error) *mock.Call {
	return m.On("HasPrivilege", mock.Anything, principal, privilege, mock.Anything).Return(allowed, err)
}

// ExpectToggleAdminLevel sets up expectation for ToggleAdminLevel
func (m *MockMembershipAdmin) ExpectToggleAdminLevel(principal, newType string, err error) *mock.Call {
	return m.On("ToggleAdminLevel", mock.Anything, principal).Return(newType, err)
}
