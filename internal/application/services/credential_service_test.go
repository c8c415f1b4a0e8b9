package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/businesstrust/backend/pkg/errors"
)

func TestCreateUser_NormalizesAndHashes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.credentials.CreateUser(ctx, NewUser{Email: "  Bob@Example.COM ", Password: testPassword, UserType: entities.UserTypeCustomer})
	require.NoError(t, err)

	assert.Equal(t, "bob@example.com", user.Email)
	assert.NotEqual(t, testPassword, user.PasswordHash)
	assert.NotEmpty(t, user.ID)

	_, err = env.credentials.CreateUser(ctx, NewUser{Email: "BOB@example.com", Password: testPassword, UserType: entities.UserTypeCompany})
	assert.ErrorIs(t, err, entities.ErrDuplicateEmail)
}

func TestCreateUser_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.credentials.CreateUser(ctx, NewUser{Email: "", Password: testPassword, UserType: entities.UserTypeCustomer})
	assert.ErrorIs(t, err, entities.ErrCredentialsRequired)

	_, err = env.credentials.CreateUser(ctx, NewUser{Email: "a@example.com", Password: testPassword, UserType: "admin"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestAuthenticate_FailsIdentically(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signupCustomer(t, "bob@example.com", "Bob", "")

	_, wrongPassword := env.credentials.Authenticate(ctx, "bob@example.com", "wrong-password", entities.UserTypeCustomer)
	_, unknownEmail := env.credentials.Authenticate(ctx, "nobody@example.com", testPassword, entities.UserTypeCustomer)
	_, wrongType := env.credentials.Authenticate(ctx, "bob@example.com", testPassword, entities.UserTypeCompany)

	for _, err := range []error{wrongPassword, unknownEmail, wrongType} {
		assert.ErrorIs(t, err, entities.ErrInvalidCredentials)
		assert.Equal(t, wrongPassword.Error(), err.Error())
	}

	user, err := env.credentials.Authenticate(ctx, "BOB@example.com", testPassword, entities.UserTypeCustomer)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", user.Email)
}

func TestTokenLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	res := env.signupCustomer(t, "bob@example.com", "Bob", "")

	identity, err := env.credentials.VerifyToken(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, identity.UserID)
	assert.Equal(t, entities.UserTypeCustomer, identity.UserType)

	require.NoError(t, env.credentials.RevokeToken(ctx, res.Token))
	_, err = env.credentials.VerifyToken(ctx, res.Token)
	assert.ErrorIs(t, err, entities.ErrAuthenticationRequired)

	// revoking twice is fine
	assert.NoError(t, env.credentials.RevokeToken(ctx, res.Token))
}

func TestVerifyToken_ExpiredIsPurged(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	res := env.signupCustomer(t, "bob@example.com", "Bob", "")
	before := env.store.TokenCount()

	env.credentials.now = func() time.Time { return time.Now().Add(31 * 24 * time.Hour) }

	_, err := env.credentials.VerifyToken(ctx, res.Token)
	assert.ErrorIs(t, err, entities.ErrAuthenticationRequired)
	assert.Equal(t, before-1, env.store.TokenCount())
}

func TestVerifyToken_EmptyAndUnknown(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.credentials.VerifyToken(ctx, "")
	assert.ErrorIs(t, err, entities.ErrAuthenticationRequired)

	_, err = env.credentials.VerifyToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, entities.ErrAuthenticationRequired)
}
