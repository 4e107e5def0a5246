package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/alumnet/alumni-backend/internal/rbac"
	"github.com/alumnet/alumni-backend/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestServer_PostMembershipToggle(t *testing.T) {
	admin := "admin@example.com"

	t.Run("requires authentication", func(t *testing.T) {
		f := newTestFixture(t)

		rec := f.do(t, http.MethodPost, "/admin/membership-toggle", "", map[string]string{
			"email": "someone@example.com",
		})
		requireStatus(t, rec, http.StatusUnauthorized)
	})

	t.Run("forbidden without manage privilege", func(t *testing.T) {
		f := newTestFixture(t)
		f.privileges.ExpectHasPrivilege(admin, rbac.ManageMemberships, false, nil)

		rec := f.do(t, http.MethodPost, "/admin/membership-toggle", f.token(t, admin), map[string]string{
			"email": "someone@example.com",
		})
		requireStatus(t, rec, http.StatusForbidden)

		var body map[string]string
		decodeResponse(t, rec, &body)
		assert.Equal(t, "You are not authorized to perform this action", body["error"])
	})

	t.Run("missing email", func(t *testing.T) {
		f := newTestFixture(t)
		f.privileges.ExpectHasPrivilege(admin, rbac.ManageMemberships, true, nil)

		rec := f.do(t, http.MethodPost, "/admin/membership-toggle", f.token(t, admin), map[string]string{})
		requireStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("no admin membership for target", func(t *testing.T) {
		f := newTestFixture(t)
		f.privileges.ExpectHasPrivilege(admin, rbac.ManageMemberships, true, nil)
		f.memberships.ExpectToggleAdminLevel("someone@example.com", "", store.ErrNoAdminMembership)

		rec := f.do(t, http.MethodPost, "/admin/membership-toggle", f.token(t, admin), map[string]string{
			"email": "someone@example.com",
		})
		requireStatus(t, rec, http.StatusNotFound)
	})

	t.Run("toggles admin level", func(t *testing.T) {
		f := newTestFixture(t)
		f.privileges.ExpectHasPrivilege(admin, rbac.ManageMemberships, true, nil)
		f.memberships.ExpectToggleAdminLevel("someone@example.com", rbac.TypeAdminL2, nil)

		rec := f.do(t, http.MethodPost, "/admin/membership-toggle", f.token(t, admin), map[string]string{
			"email": "someone@example.com",
		})
		requireStatus(t, rec, http.StatusOK)

		var body map[string]string
		decodeResponse(t, rec, &body)
		assert.Equal(t, rbac.TypeAdminL2, body["membership_type"])
	})

	t.Run("privilege check failure", func(t *testing.T) {
		f := newTestFixture(t)
		f.privileges.ExpectHasPrivilege(admin, rbac.ManageMemberships, false, errors.New("db down"))

		rec := f.do(t, http.MethodPost, "/admin/membership-toggle", f.token(t, admin), map[string]string{
			"email": "someone@example.com",
		})
		requireStatus(t, rec, http.StatusInternalServerError)
	})
}
