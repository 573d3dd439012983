package access

import (
	"testing"

	"reviewgate/internal/common/errors"
	"reviewgate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanManage(t *testing.T) {
	tests := []struct {
		name     string
		session  models.Session
		business string
		want     bool
	}{
		{name: "super any business", session: SuperSession(), business: "b2", want: true},
		{name: "admin own business", session: AdminSession("b1"), business: "b1", want: true},
		{name: "admin other business", session: AdminSession("b1"), business: "b2", want: false},
		{name: "admin empty business", session: AdminSession(""), business: "", want: false},
		{name: "no role", session: models.Session{}, business: "b1", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanManage(tt.session, tt.business))
		})
	}
}

func TestAuthorize(t *testing.T) {
	assert.NoError(t, Authorize(AdminSession("b1"), "b1"))
	assert.True(t, errors.HasCode(Authorize(AdminSession("b1"), "b2"), errors.ErrCodeUnauthorized))
}

func TestImpersonation(t *testing.T) {
	s, err := Impersonate(SuperSession(), "b2")
	require.NoError(t, err)
	assert.Equal(t, models.Session{Role: models.RoleAdmin, BusinessID: "b2", Impersonating: true}, s)
	assert.True(t, CanManage(s, "b2"))
	assert.False(t, CanManage(s, "b1"))

	back := ExitImpersonation(s)
	assert.Equal(t, SuperSession(), back)

	admin := AdminSession("b1")
	same, err := Impersonate(admin, "b2")
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnauthorized))
	assert.Equal(t, admin, same)
	assert.Equal(t, admin, ExitImpersonation(admin))

	_, err = Impersonate(SuperSession(), "")
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))
}
