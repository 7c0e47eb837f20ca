package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarforge/internal/model"
	"scholarforge/internal/pkg/jwtutil"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc := NewAuthService(newMemUsers(), "secret", time.Hour)

	res, err := svc.Register(RegisterInput{
		Username: "ada",
		Email:    " Ada@Example.org ",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.org", res.User.Email)
	assert.Equal(t, "ada", res.User.DisplayName)
	assert.Equal(t, model.RoleStudent, res.User.Role)
	assert.Equal(t, model.ThemeLight, res.User.Theme)

	claims, err := jwtutil.ParseToken("secret", res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)

	login, err := svc.Login(LoginInput{Username: "ada", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	_, err = svc.Login(LoginInput{Username: "ada", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = svc.Login(LoginInput{Username: "nobody", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredential)

	byEmail, err := svc.Login(LoginInput{Username: "ADA@example.org", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, byEmail.User.ID)

	me, err := svc.GetUserByID(res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", me.Username)

	_, err = svc.GetUserByID(999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_RegisterConflictsAndValidation(t *testing.T) {
	svc := NewAuthService(newMemUsers(), "secret", time.Hour)
	_, err := svc.Register(RegisterInput{Username: "ada", Email: "a@x.org", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Register(RegisterInput{Username: "ada", Email: "b@x.org", Password: "password123"})
	assert.ErrorIs(t, err, ErrUsernameExists)

	_, err = svc.Register(RegisterInput{Username: "bob", Email: "a@x.org", Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = svc.Register(RegisterInput{Username: "bob", Email: "b@x.org", Password: "short"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Register(RegisterInput{Username: "bob", Email: "b@x.org", Password: "password123", Role: "wizard"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Register(RegisterInput{Username: "bob", Email: "not-an-address", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Register(RegisterInput{Username: "bob@x", Email: "c@x.org", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
