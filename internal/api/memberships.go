package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/alumnet/alumni-backend/internal/auth"
	"github.com/alumnet/alumni-backend/internal/middleware"
	"github.com/alumnet/alumni-backend/internal/rbac"
	"github.com/alumnet/alumni-backend/internal/store"
)

type membershipToggleRequest struct {
	Email string `json:"email"`
}

// PostMembershipToggle flips a principal's admin membership between
// ADMIN_L1 and ADMIN_L2. Plain CRUD, gated on MANAGE_MEMBERSHIPS.
func (s *Server) PostMembershipToggle(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthenticatedUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	allowed, err := s.privileges.HasPrivilege(r.Context(), user.Email, rbac.ManageMemberships, time.Now())
	if err != nil {
		middleware.GetLoggerFromContext(r.Context()).Error("privilege check failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !allowed {
		writeError(w, http.StatusForbidden, "You are not authorized to perform this action")
		return
	}

	var req membershipToggleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	newType, err := s.memberships.ToggleAdminLevel(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNoAdminMembership) {
			writeError(w, http.StatusNotFound, "No admin membership found for this email")
			return
		}
		middleware.GetLoggerFromContext(r.Context()).Error("membership toggle failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"membership_type": newType})
}
