package api

import (
	"net/http"
	"testing"

	"github.com/alumnet/alumni-backend/internal/auth"
	"github.com/alumnet/alumni-backend/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestServer_PostRequestOTP(t *testing.T) {
	t.Run("sends code via email queue", func(t *testing.T) {
		f := newTestFixture(t)
		f.authSvc.On("RequestOTP", mock.Anything, "user@example.com").Return("123456", nil)
		f.emails.On("Enqueue", queue.TypeEmailDelivery, mock.MatchedBy(func(p interface{}) bool {
			payload, ok := p.(queue.EmailDeliveryPayload)
			return ok && payload.To == "user@example.com"
		})).Return(nil, nil)

		rec := f.do(t, http.MethodPost, "/auth/request-otp", "", map[string]string{
			"email": "user@example.com",
		})
		requireStatus(t, rec, http.StatusNoContent)
		f.emails.AssertExpectations(t)
	})

	t.Run("unknown email still returns 204", func(t *testing.T) {
		f := newTestFixture(t)
		f.authSvc.On("RequestOTP", mock.Anything, "nobody@example.com").
			Return("", auth.ErrUserNotFound)

		rec := f.do(t, http.MethodPost, "/auth/request-otp", "", map[string]string{
			"email": "nobody@example.com",
		})
		requireStatus(t, rec, http.StatusNoContent)
		f.emails.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
	})

	t.Run("cooldown", func(t *testing.T) {
		f := newTestFixture(t)
		f.authSvc.On("RequestOTP", mock.Anything, "user@example.com").
			Return("", auth.ErrOTPCooldown)

		rec := f.do(t, http.MethodPost, "/auth/request-otp", "", map[string]string{
			"email": "user@example.com",
		})
		requireStatus(t, rec, http.StatusTooManyRequests)
	})

	t.Run("missing email", func(t *testing.T) {
		f := newTestFixture(t)

		rec := f.do(t, http.MethodPost, "/auth/request-otp", "", map[string]string{})
		requireStatus(t, rec, http.StatusBadRequest)
	})
}

func TestServer_PostVerifyOTP(t *testing.T) {
	t.Run("returns token pair", func(t *testing.T) {
		f := newTestFixture(t)
		f.authSvc.On("VerifyOTP", mock.Anything, "user@example.com", "123456").
			Return("access-token", "refresh-token", nil)

		rec := f.do(t, http.MethodPost, "/auth/verify-otp", "", map[string]string{
			"email": "user@example.com", "code": "123456",
		})
		requireStatus(t, rec, http.StatusOK)

		var body tokenPairResponse
		decodeResponse(t, rec, &body)
		assert.Equal(t, "access-token", body.AccessToken)
		assert.Equal(t, "refresh-token", body.RefreshToken)
	})

	t.Run("invalid code", func(t *testing.T) {
		f := newTestFixture(t)
		f.authSvc.On("VerifyOTP", mock.Anything, "user@example.com", "000000").
			Return("", "", auth.ErrOTPInvalid)

		rec := f.do(t, http.MethodPost, "/auth/verify-otp", "", map[string]string{
			"email": "user@example.com", "code": "000000",
		})
		requireStatus(t, rec, http.StatusUnauthorized)
	})

	t.Run("too many attempts", func(t *testing.T) {
		f := newTestFixture(t)
		f.authSvc.On("VerifyOTP", mock.Anything, "user@example.com", "000000").
			Return("", "", auth.ErrOTPMaxAttempts)

		rec := f.do(t, http.MethodPost, "/auth/verify-otp", "", map[string]string{
			"email": "user@example.com", "code": "000000",
		})
		requireStatus(t, rec, http.StatusUnauthorized)
	})

	t.Run("missing fields", func(t *testing.T) {
		f := newTestFixture(t)

		rec := f.do(t, http.MethodPost, "/auth/verify-otp", "", map[string]string{
			"email": "user@example.com",
		})
		requireStatus(t, rec, http.StatusBadRequest)
	})
}

func TestServer_PostRefresh(t *testing.T) {
	t.Run("rotates the pair", func(t *testing.T) {
		f := newTestFixture(t)
		f.authSvc.On("Refresh", mock.Anything, "old-refresh").
			Return("new-access", "new-refresh", nil)

		rec := f.do(t, http.MethodPost, "/auth/refresh", "", map[string]string{
			"refresh_token": "old-refresh",
		})
		requireStatus(t, rec, http.StatusOK)

		var body tokenPairResponse
		decodeResponse(t, rec, &body)
		assert.Equal(t, "new-refresh", body.RefreshToken)
	})

	t.Run("invalid token", func(t *testing.T) {
		f := newTestFixture(t)
		f.authSvc.On("Refresh", mock.Anything, "bogus").
			Return("", "", auth.ErrRefreshInvalid)

		rec := f.do(t, http.MethodPost, "/auth/refresh", "", map[string]string{
			"refresh_token": "bogus",
		})
		requireStatus(t, rec, http.StatusUnauthorized)
	})
}

func TestServer_PostLogout(t *testing.T) {
	f := newTestFixture(t)
	f.authSvc.On("Logout", mock.Anything, "some-refresh").Return(nil)

	rec := f.do(t, http.MethodPost, "/auth/logout", "", map[string]string{
		"refresh_token": "some-refresh",
	})
	requireStatus(t, rec, http.StatusNoContent)
}
