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

func TestResolveCustomer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bob := env.signupCustomer(t, "bob@example.com", "Bob", "")
	acme := env.signupCompany(t, "owner@acme.com", "Acme", "Plumbing")

	user, err := env.directory.ResolveCustomer(ctx, bob.Token)
	require.NoError(t, err)
	assert.Equal(t, bob.User.ID, user.ID)

	_, err = env.directory.ResolveCustomer(ctx, acme.Token)
	assert.ErrorIs(t, err, entities.ErrCustomerRequired)
	assert.ErrorIs(t, err, entities.ErrWrongRole)
	assert.Equal(t, "Authentication as a customer is required.", apperrors.Message(err))

	_, err = env.directory.ResolveCustomer(ctx, "")
	assert.ErrorIs(t, err, entities.ErrAuthenticationRequired)
	assert.Equal(t, "Authentication as a customer is required.", apperrors.Message(err))
}

func TestResolveCustomer_RejectsCompanyOwnerWithCustomerToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bob := env.signupCustomer(t, "bob@example.com", "Bob", "")

	// A company record pointing at a customer user makes it a company owner.
	now := time.Now().UTC()
	require.NoError(t, env.store.Companies().Create(ctx, &entities.Company{
		ID: "c-1", UserID: bob.User.ID, Name: "Bob's", Category: "Food", IsActive: true, CreatedAt: now, UpdatedAt: now,
	}))

	_, err := env.directory.ResolveCustomer(ctx, bob.Token)
	assert.ErrorIs(t, err, entities.ErrWrongRole)
	assert.Nil(t, env.directory.OptionalCustomer(ctx, bob.Token))
}

func TestResolveCompany(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acme := env.signupCompany(t, "owner@acme.com", "Acme", "Plumbing")
	bob := env.signupCustomer(t, "bob@example.com", "Bob", "")

	user, company, err := env.directory.ResolveCompany(ctx, acme.Token)
	require.NoError(t, err)
	assert.Equal(t, acme.User.ID, user.ID)
	assert.Equal(t, acme.Company.ID, company.ID)

	_, _, err = env.directory.ResolveCompany(ctx, bob.Token)
	assert.ErrorIs(t, err, entities.ErrCompanyRequired)
	assert.Equal(t, "Company authentication required.", apperrors.Message(err))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
}

func TestOptionalCustomer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bob := env.signupCustomer(t, "bob@example.com", "Bob", "")

	assert.Nil(t, env.directory.OptionalCustomer(ctx, ""))
	assert.Nil(t, env.directory.OptionalCustomer(ctx, "garbage"))
	require.NotNil(t, env.directory.OptionalCustomer(ctx, bob.Token))
	assert.Equal(t, bob.User.ID, env.directory.OptionalCustomer(ctx, bob.Token).ID)
}
