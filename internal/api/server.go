package api

import (
	"github.com/alumnet/alumni-backend/internal/approval"
	"github.com/alumnet/alumni-backend/internal/auth"
	"github.com/go-chi/chi/v5"
)

// Server holds the handler dependencies. Collaborators come in as
// interfaces so tests can swap them for mocks.
type Server struct {
	approvals   ApprovalService
	privileges  PrivilegeChecker
	directory   DirectoryStore
	memberships MembershipAdmin
	authService AuthService
	avatars     approval.AvatarResolver
	emails      EmailQueue
	jwt         *auth.JWTService
}

func NewServer(
	approvals ApprovalService,
	privileges PrivilegeChecker,
	directory DirectoryStore,
	memberships MembershipAdmin,
	authService AuthService,
	avatars approval.AvatarResolver,
	emails EmailQueue,
	jwt *auth.JWTService,
) *Server {
	return &Server{
		approvals:   approvals,
		privileges:  privileges,
		directory:   directory,
		memberships: memberships,
		authService: authService,
		avatars:     avatars,
		emails:      emails,
		jwt:         jwt,
	}
}

// Routes mounts the public and authenticated route groups.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)

	r.Post("/auth/request-otp", s.PostRequestOTP)
	r.Post("/auth/verify-otp", s.PostVerifyOTP)
	r.Post("/auth/refresh", s.PostRefresh)
	r.Post("/auth/logout", s.PostLogout)

	r.Post("/onboard", s.PostOnboard)

	r.Group(func(r chi.Router) {
		r.Use(s.jwt.Middleware)

		r.Get("/alumni", s.GetAlumni)
		r.Get("/pending", s.GetPending)
		r.Post("/approve", s.PostApprove)
		r.Post("/admin/membership-toggle", s.PostMembershipToggle)
	})

	return r
}
