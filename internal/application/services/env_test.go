package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zatekoja/businesstrust/backend/internal/adapters/cache"
	"github.com/zatekoja/businesstrust/backend/internal/adapters/database"
	"github.com/zatekoja/businesstrust/backend/internal/adapters/events"
	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
	"github.com/zatekoja/businesstrust/backend/internal/testutil/memory"
	"github.com/zatekoja/businesstrust/backend/pkg/config"
	"github.com/zatekoja/businesstrust/backend/pkg/password"
)

const testPassword = "correct-horse"

// fakeSearch records indexed companies and answers searches from ids or err
type fakeSearch struct {
	mu      sync.Mutex
	indexed map[string]entities.Company
	ids     []string
	err     error
	queries []repositories.CompanyFilter
}

func newFakeSearch() *fakeSearch {
	return &fakeSearch{indexed: make(map[string]entities.Company)}
}

func (f *fakeSearch) Index(ctx context.Context, company *entities.Company) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed[company.ID] = *company
	return nil
}

func (f *fakeSearch) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.indexed, id)
	return nil
}

func (f *fakeSearch) Search(ctx context.Context, filter repositories.CompanyFilter) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, filter)
	return f.ids, f.err
}

func (f *fakeSearch) get(id string) (entities.Company, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.indexed[id]
	return c, ok
}

type testEnv struct {
	store       *memory.Store
	cache       *cache.MemoryAdapter
	bus         *events.MemoryEventBus
	search      *fakeSearch
	companies   repositories.CompanyRepository
	credentials *CredentialService
	accounts    *AccountService
	directory   *DirectoryService
	aggregation *AggregationService
	ratings     *RatingService
	comments    *CommentService
	companySvc  *CompanyService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	memCache := cache.NewMemoryAdapter()
	bus := events.NewMemoryEventBus()
	t.Cleanup(func() { _ = bus.Close() })
	search := newFakeSearch()

	companies := database.NewCachedCompanyAdapter(store.Companies(), memCache)
	activity := NewActivityRecorder(store.Events())
	credentials := NewCredentialService(store.Users(), store.Tokens(), password.NewBcryptHasher(4), 30*24*time.Hour)
	aggregation := NewAggregationService(companies, store.Ratings(), store.Comments(), store.Users(), search, bus, NewFeatureFlags(config.FeatureConfig{}))

	return &testEnv{
		store:       store,
		cache:       memCache,
		bus:         bus,
		search:      search,
		companies:   companies,
		credentials: credentials,
		accounts:    NewAccountService(credentials, companies, search, activity),
		directory:   NewDirectoryService(credentials, store.Users(), companies),
		aggregation: aggregation,
		ratings:     NewRatingService(companies, store.Ratings(), aggregation, activity, nil),
		comments:    NewCommentService(companies, store.Comments(), activity, nil),
		companySvc:  NewCompanyService(companies, search, bus),
	}
}

func (e *testEnv) signupCompany(t *testing.T, email, name, category string) *AuthResult {
	t.Helper()
	res, err := e.accounts.SignupCompany(context.Background(), CompanySignup{
		Email:    email,
		Password: testPassword,
		Name:     name,
		Category: category,
	})
	require.NoError(t, err)
	return res
}

func (e *testEnv) signupCustomer(t *testing.T, email, first, last string) *AuthResult {
	t.Helper()
	res, err := e.accounts.SignupCustomer(context.Background(), CustomerSignup{
		Email:     email,
		Password:  testPassword,
		FirstName: first,
		LastName:  last,
	})
	require.NoError(t, err)
	return res
}
