package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alumnet/alumni-backend/internal/auth"
	"github.com/alumnet/alumni-backend/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

// testFixture bundles a server wired to mocks with a real JWT service
// so the auth middleware runs for real in handler tests.
type testFixture struct {
	router      chi.Router
	jwt         *auth.JWTService
	approvals   *testutil.MockApprovalService
	privileges  *testutil.MockPrivilegeChecker
	directory   *testutil.MockDirectoryStore
	memberships *testutil.MockMembershipAdmin
	authSvc     *testutil.MockAuthService
	avatars     *testutil.MockAvatarResolver
	emails      *testutil.MockEmailQueue
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()

	jwtSvc, err := auth.NewJWTService([]byte("test-signing-key"), "test-issuer", time.Hour)
	require.NoError(t, err)

	f := &testFixture{
		jwt:         jwtSvc,
		approvals:   testutil.NewMockApprovalService(t),
		privileges:  testutil.NewMockPrivilegeChecker(t),
		directory:   testutil.NewMockDirectoryStore(t),
		memberships: testutil.NewMockMembershipAdmin(t),
		authSvc:     testutil.NewMockAuthService(t),
		avatars:     testutil.NewMockAvatarResolver(t),
		emails:      testutil.NewMockEmailQueue(t),
	}

	server := NewServer(f.approvals, f.privileges, f.directory, f.memberships,
		f.authSvc, f.avatars, f.emails, jwtSvc)
	f.router = server.Routes()
	return f
}

func (f *testFixture) token(t *testing.T, email string) string {
	t.Helper()
	token, err := f.jwt.GenerateToken(context.Background(), email)
	require.NoError(t, err)
	return token
}

func (f *testFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "body: %s", rec.Body.String())
}
