package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/alumnet/alumni-backend/internal/middleware"
	"github.com/alumnet/alumni-backend/internal/store"
)

type onboardRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	GraduationYear int    `json:"graduation_year"`
	Branch         string `json:"branch"`
	Company        string `json:"company"`
}

// PostOnboard registers a new alumni profile in PENDING state.
func (s *Server) PostOnboard(w http.ResponseWriter, r *http.Request) {
	var req onboardRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	switch {
	case req.Name == "":
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	case req.Email == "" || !strings.Contains(req.Email, "@"):
		writeError(w, http.StatusBadRequest, "A valid email is required")
		return
	case req.GraduationYear < 1900 || req.GraduationYear > time.Now().Year()+1:
		writeError(w, http.StatusBadRequest, "Graduation year is out of range")
		return
	}

	id, err := s.directory.Create(r.Context(), store.CreateParams{
		Name:           req.Name,
		Email:          req.Email,
		GraduationYear: req.GraduationYear,
		Branch:         strings.TrimSpace(req.Branch),
		Company:        strings.TrimSpace(req.Company),
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "A profile already exists for this email")
			return
		}
		middleware.GetLoggerFromContext(r.Context()).Error("onboarding failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}
