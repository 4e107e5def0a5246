package api

import (
	"net/http"
	"time"

	"github.com/alumnet/alumni-backend/internal/approval"
	"github.com/alumnet/alumni-backend/internal/auth"
	"github.com/google/uuid"
)

type approveRequest struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}

// PendingProfileResponse is one entry of the pending list. AvatarURL
// is null when no avatar is stored or resolvable.
type PendingProfileResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	GraduationYear int       `json:"graduation_year"`
	Branch         string    `json:"branch,omitempty"`
	Company        string    `json:"company,omitempty"`
	AvatarURL      *string   `json:"avatar_url"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// PostApprove resolves a pending profile to APPROVED or REJECTED.
func (s *Server) PostApprove(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthenticatedUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req approveRequest
	if !decodeBody(w, r, &req) {
		return
	}

	targetID, err := uuid.Parse(req.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid profile id")
		return
	}

	action := approval.Action(req.Action)
	if action != approval.ActionApprove && action != approval.ActionReject {
		writeError(w, http.StatusBadRequest, "Action must be APPROVE or REJECT")
		return
	}

	status, err := s.approvals.Approve(r.Context(), user.Email, targetID, action, time.Now())
	if err != nil {
		writeApprovalError(w, r, err)
		return
	}

	msg := "Profile approved successfully"
	if status == approval.StatusRejected {
		msg = "Profile rejected successfully"
	}
	writeMessage(w, http.StatusOK, msg)
}

// GetPending lists the pending profiles the caller may act on.
func (s *Server) GetPending(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthenticatedUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	pending, err := s.approvals.ListPendingFor(r.Context(), user.Email, time.Now())
	if err != nil {
		writeApprovalError(w, r, err)
		return
	}

	response := make([]PendingProfileResponse, 0, len(pending))
	for _, p := range pending {
		response = append(response, PendingProfileResponse{
			ID:             p.ID,
			Name:           p.Name,
			Email:          p.Email,
			GraduationYear: p.GraduationYear,
			Branch:         p.Branch,
			Company:        p.Company,
			AvatarURL:      p.AvatarURL,
			SubmittedAt:    p.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"pending": response})
}
