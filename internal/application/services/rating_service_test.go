package services

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
)

func TestSubmitRating_AggregatesAndRejectsResubmission(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acme := env.signupCompany(t, "owner@acme.com", "Acme", "Plumbing")
	bob := env.signupCustomer(t, "bob@example.com", "Bob", "")
	carol := env.signupCustomer(t, "carol@example.com", "Carol", "")

	res, err := env.ratings.SubmitRating(ctx, acme.Company.ID, bob.User, 4.0)
	require.NoError(t, err)
	assert.Equal(t, 4.0, res.Company.AverageRating)
	assert.Equal(t, 1, res.Company.TotalReviews)
	require.NotNil(t, res.MyRating)
	assert.Equal(t, 4.0, *res.MyRating)

	res, err = env.ratings.SubmitRating(ctx, acme.Company.ID, carol.User, 2.0)
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.Company.AverageRating)
	assert.Equal(t, 2, res.Company.TotalReviews)

	_, err = env.ratings.SubmitRating(ctx, acme.Company.ID, bob.User, 5.0)
	assert.ErrorIs(t, err, entities.ErrDuplicateRating)

	company, err := env.companies.GetByID(ctx, acme.Company.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, company.AverageRating)
	assert.Equal(t, 2, company.TotalReviews)

	mine, err := env.ratings.GetMyRating(ctx, acme.Company.ID, bob.User.ID)
	require.NoError(t, err)
	require.NotNil(t, mine)
	assert.Equal(t, 4.0, *mine)
}

func TestSubmitRating_MeanOverManySubmissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acme := env.signupCompany(t, "owner@acme.com", "Acme", "Plumbing")

	values := []float64{1.0, 5.0, 3.5, 2.5, 4.5}
	var sum float64
	for i, v := range values {
		customer := env.signupCustomer(t, "c"+string(rune('a'+i))+"@example.com", "", "")
		res, err := env.ratings.SubmitRating(ctx, acme.Company.ID, customer.User, v)
		require.NoError(t, err)

		sum += v
		assert.InDelta(t, sum/float64(i+1), res.Company.AverageRating, 1e-9)
		assert.Equal(t, i+1, res.Company.TotalReviews)
	}
}

func TestSubmitRating_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acme := env.signupCompany(t, "owner@acme.com", "Acme", "Plumbing")
	bob := env.signupCustomer(t, "bob@example.com", "Bob", "")

	for _, v := range []float64{0.99, 5.01, -1, math.NaN(), math.Inf(1)} {
		_, err := env.ratings.SubmitRating(ctx, acme.Company.ID, bob.User, v)
		assert.ErrorIs(t, err, entities.ErrInvalidRating, "value %v", v)
	}

	_, err := env.ratings.SubmitRating(ctx, "missing", bob.User, 3)
	assert.ErrorIs(t, err, entities.ErrCompanyNotFound)

	// value is validated before the company lookup
	_, err = env.ratings.SubmitRating(ctx, "missing", bob.User, 7)
	assert.ErrorIs(t, err, entities.ErrInvalidRating)

	for _, v := range []float64{1.0, 5.0} {
		customer := env.signupCustomer(t, "edge"+string(rune('0'+int(v)))+"@example.com", "", "")
		_, err := env.ratings.SubmitRating(ctx, acme.Company.ID, customer.User, v)
		assert.NoError(t, err)
	}
}

func TestSubmitRating_MirrorsToIndexAndBus(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	acme := env.signupCompany(t, "owner@acme.com", "Acme", "Plumbing")
	bob := env.signupCustomer(t, "bob@example.com", "Bob", "")

	eventsCh, err := env.bus.Subscribe(ctx, "companies:events")
	require.NoError(t, err)

	_, err = env.ratings.SubmitRating(ctx, acme.Company.ID, bob.User, 4.0)
	require.NoError(t, err)

	indexed, ok := env.search.get(acme.Company.ID)
	require.True(t, ok)
	assert.Equal(t, 4.0, indexed.AverageRating)
	assert.Equal(t, 1, indexed.TotalReviews)

	event := <-eventsCh
	assert.Equal(t, entities.CompanyEventAggregateUpdated, event.EventType)
	assert.Equal(t, acme.Company.ID, event.CompanyID)

	var rated int
	for _, e := range env.store.ActivityEvents() {
		if e.EventType == entities.ActivityCompanyRated {
			rated++
		}
	}
	assert.Equal(t, 1, rated)
}

func TestRatingSummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acme := env.signupCompany(t, "owner@acme.com", "Acme", "Plumbing")
	bob := env.signupCustomer(t, "bob@example.com", "Bob", "")
	carol := env.signupCustomer(t, "carol@example.com", "Carol", "")

	_, err := env.ratings.SubmitRating(ctx, acme.Company.ID, bob.User, 4.0)
	require.NoError(t, err)

	anon, err := env.ratings.RatingSummary(ctx, acme.Company.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, anon.MyRating)
	assert.Equal(t, 4.0, anon.Company.AverageRating)

	mine, err := env.ratings.RatingSummary(ctx, acme.Company.ID, bob.User)
	require.NoError(t, err)
	require.NotNil(t, mine.MyRating)
	assert.Equal(t, 4.0, *mine.MyRating)

	other, err := env.ratings.RatingSummary(ctx, acme.Company.ID, carol.User)
	require.NoError(t, err)
	assert.Nil(t, other.MyRating)

	_, err = env.ratings.RatingSummary(ctx, "missing", nil)
	assert.ErrorIs(t, err, entities.ErrCompanyNotFound)
}
