package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
)

func seedDirectory(t *testing.T, env *testEnv) map[string]*AuthResult {
	t.Helper()
	ctx := context.Background()

	out := map[string]*AuthResult{}
	for _, c := range []struct{ email, name, category, city string }{
		{"a@acme.com", "Acme Plumbing", "Plumbing", "Lagos"},
		{"b@best.com", "Best Pipes", "Plumbing", "Abuja"},
		{"c@cafe.com", "Cafe 100%", "Food", "Lagos"},
	} {
		res, err := env.accounts.SignupCompany(ctx, CompanySignup{Email: c.email, Password: testPassword, Name: c.name, Category: c.category, City: c.city})
		require.NoError(t, err)
		out[c.name] = res
	}

	bob := env.signupCustomer(t, "bob@example.com", "Bob", "")
	_, err := env.ratings.SubmitRating(ctx, out["Best Pipes"].Company.ID, bob.User, 5)
	require.NoError(t, err)
	return out
}

func names(companies []*entities.Company) []string {
	out := make([]string, 0, len(companies))
	for _, c := range companies {
		out = append(out, c.Name)
	}
	return out
}

func TestSearch_DatabasePath(t *testing.T) {
	env := newTestEnv(t)
	env.companySvc = NewCompanyService(env.companies, nil, nil)
	seedDirectory(t, env)
	ctx := context.Background()

	all, err := env.companySvc.Search(ctx, repositories.CompanyFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Best Pipes", "Acme Plumbing", "Cafe 100%"}, names(all))

	plumbing, err := env.companySvc.Search(ctx, repositories.CompanyFilter{Category: " plumb "})
	require.NoError(t, err)
	assert.Equal(t, []string{"Best Pipes", "Acme Plumbing"}, names(plumbing))

	lagos, err := env.companySvc.Search(ctx, repositories.CompanyFilter{Query: "a", City: "LAGOS"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme Plumbing", "Cafe 100%"}, names(lagos))
}

func TestSearch_IndexPathPostFiltersAndFallsBack(t *testing.T) {
	env := newTestEnv(t)
	seeded := seedDirectory(t, env)
	ctx := context.Background()

	env.search.ids = []string{seeded["Best Pipes"].Company.ID, seeded["Acme Plumbing"].Company.ID, "stale-id"}
	results, err := env.companySvc.Search(ctx, repositories.CompanyFilter{Query: "p", City: "lagos"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme Plumbing"}, names(results))
	require.NotEmpty(t, env.search.queries)
	assert.Equal(t, "p", env.search.queries[0].Query)

	env.search.err = errors.New("typesense down")
	results, err = env.companySvc.Search(ctx, repositories.CompanyFilter{Query: "pipes"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Best Pipes"}, names(results))
}

func TestTopByCategory(t *testing.T) {
	env := newTestEnv(t)
	seedDirectory(t, env)

	top, err := env.companySvc.TopByCategory(context.Background(), 0)
	require.NoError(t, err)

	require.Len(t, top, 2)
	assert.Equal(t, []string{"Best Pipes", "Acme Plumbing"}, names(top["Plumbing"]))
	assert.Equal(t, []string{"Cafe 100%"}, names(top["Food"]))

	top, err = env.companySvc.TopByCategory(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Best Pipes"}, names(top["Plumbing"]))
}

func TestRecommendations(t *testing.T) {
	env := newTestEnv(t)
	seedDirectory(t, env)

	recs, err := env.companySvc.Recommendations(context.Background(), repositories.CompanyFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Best Pipes", "Acme Plumbing", "Cafe 100%"}, names(recs))

	recs, err = env.companySvc.Recommendations(context.Background(), repositories.CompanyFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	acme := env.signupCompany(t, "owner@acme.com", "Acme", "Plumbing")

	eventsCh, err := env.bus.Subscribe(ctx, "companies:events")
	require.NoError(t, err)

	city := "Lagos"
	name := "Acme Ltd"
	updated, err := env.companySvc.UpdateProfile(ctx, acme.Company, entities.CompanyProfilePatch{Name: &name, City: &city})
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", updated.Name)
	assert.Equal(t, "Lagos", updated.City)
	assert.Equal(t, "Plumbing", updated.Category)

	event := <-eventsCh
	assert.Equal(t, entities.CompanyEventProfileUpdated, event.EventType)
	assert.Contains(t, event.ChangedFields, "name")
	assert.Contains(t, event.ChangedFields, "city")

	indexed, ok := env.search.get(acme.Company.ID)
	require.True(t, ok)
	assert.Equal(t, "Acme Ltd", indexed.Name)

	fetched, err := env.companySvc.Get(ctx, acme.Company.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", fetched.Name)

	blank := "  "
	_, err = env.companySvc.UpdateProfile(ctx, updated, entities.CompanyProfilePatch{Category: &blank})
	assert.ErrorIs(t, err, entities.ErrProfileFieldRequired)

	same, err := env.companySvc.UpdateProfile(ctx, updated, entities.CompanyProfilePatch{})
	require.NoError(t, err)
	assert.Equal(t, updated, same)
}

func TestGetCompany_NotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.companySvc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, entities.ErrCompanyNotFound)
}

func TestReindexAll(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acme := env.signupCompany(t, "acme@example.com", "Acme", "Retail")
	bolt := env.signupCompany(t, "bolt@example.com", "Bolt", "Transport")

	env.search.mu.Lock()
	env.search.indexed = map[string]entities.Company{}
	env.search.mu.Unlock()

	n, err := env.companySvc.ReindexAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, ok := env.search.get(acme.Company.ID)
	assert.True(t, ok)
	_, ok = env.search.get(bolt.Company.ID)
	assert.True(t, ok)

	noIndex := NewCompanyService(env.companies, nil, nil)
	n, err = noIndex.ReindexAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
