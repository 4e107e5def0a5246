package api

import (
	"net/http"
	"time"

	"github.com/alumnet/alumni-backend/internal/middleware"
	"github.com/google/uuid"
)

// AlumniResponse is one approved profile in the member directory.
type AlumniResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	GraduationYear int       `json:"graduation_year"`
	Branch         string    `json:"branch,omitempty"`
	Company        string    `json:"company,omitempty"`
	AvatarURL      *string   `json:"avatar_url"`
	JoinedAt       time.Time `json:"joined_at"`
}

type PaginationMeta struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// GetAlumni serves the searchable member directory.
func (s *Server) GetAlumni(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	term := r.URL.Query().Get("q")

	profiles, err := s.directory.SearchApproved(r.Context(), term, limit, offset)
	if err != nil {
		middleware.GetLoggerFromContext(r.Context()).Error("directory query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	total, err := s.directory.CountApproved(r.Context(), term)
	if err != nil {
		middleware.GetLoggerFromContext(r.Context()).Error("directory count failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response := make([]AlumniResponse, 0, len(profiles))
	for _, p := range profiles {
		var avatarURL *string
		if s.avatars != nil && p.AvatarKey != "" {
			if url, err := s.avatars.AvatarURL(r.Context(), p.AvatarKey); err == nil {
				avatarURL = &url
			}
		}
		response = append(response, AlumniResponse{
			ID:             p.ID,
			Name:           p.Name,
			GraduationYear: p.GraduationYear,
			Branch:         p.Branch,
			Company:        p.Company,
			AvatarURL:      avatarURL,
			JoinedAt:       p.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": response,
		"meta": PaginationMeta{
			Total:   int(total),
			Limit:   int(limit),
			Offset:  int(offset),
			HasMore: int(offset)+int(limit) < int(total),
		},
	})
}
