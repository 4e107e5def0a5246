package api

import (
	"errors"
	"net/http"

	"github.com/alumnet/alumni-backend/internal/auth"
	"github.com/alumnet/alumni-backend/internal/middleware"
	"github.com/alumnet/alumni-backend/internal/queue"
)

type requestOTPRequest struct {
	Email string `json:"email"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// PostRequestOTP issues a login code. The response is 204 regardless
// of whether the email is known, to avoid account enumeration.
func (s *Server) PostRequestOTP(w http.ResponseWriter, r *http.Request) {
	var req requestOTPRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	logger := middleware.GetLoggerFromContext(r.Context())

	code, err := s.authService.RequestOTP(r.Context(), req.Email)
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		logger.Info("OTP requested for unknown email", "email", req.Email)
	case errors.Is(err, auth.ErrOTPCooldown):
		writeError(w, http.StatusTooManyRequests, "Please wait before requesting another code")
		return
	case err != nil:
		logger.Error("OTP request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	default:
		if _, err := s.emails.Enqueue(queue.TypeEmailDelivery, queue.EmailDeliveryPayload{
			To:      req.Email,
			Subject: "Your alumni network login code",
			Body:    "Your one-time login code is " + code + ". It expires in a few minutes.",
		}); err != nil {
			logger.Error("failed to enqueue OTP email", "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) PostVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, "Email and code are required")
		return
	}

	access, refresh, err := s.authService.VerifyOTP(r.Context(), req.Email, req.Code)
	switch {
	case errors.Is(err, auth.ErrOTPInvalid), errors.Is(err, auth.ErrOTPMaxAttempts):
		writeError(w, http.StatusUnauthorized, "Invalid or expired code")
		return
	case err != nil:
		middleware.GetLoggerFromContext(r.Context()).Error("OTP verification failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{AccessToken: access, RefreshToken: refresh})
}

func (s *Server) PostRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	access, refresh, err := s.authService.Refresh(r.Context(), req.RefreshToken)
	switch {
	case errors.Is(err, auth.ErrRefreshInvalid):
		writeError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	case err != nil:
		middleware.GetLoggerFromContext(r.Context()).Error("token refresh failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{AccessToken: access, RefreshToken: refresh})
}

func (s *Server) PostLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.authService.Logout(r.Context(), req.RefreshToken); err != nil {
		middleware.GetLoggerFromContext(r.Context()).Error("logout failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
