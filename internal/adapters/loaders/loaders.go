package loaders

import (
	"context"
	"errors"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
)

type ctxKey string

const loadersKey ctxKey = "dataloaders"

// Loaders contains the request-scoped batch loaders
type Loaders struct {
	UserLoader    *dataloader.Loader[string, *entities.User]
	CompanyLoader *dataloader.Loader[string, *entities.Company]
}

// NewLoaders creates a new instance of Loaders. Loaders cache results, so a
// fresh set is built for every request.
func NewLoaders(userRepo repositories.UserRepository, companyRepo repositories.CompanyRepository) *Loaders {
	return &Loaders{
		UserLoader: dataloader.NewBatchedLoader(func(ctx context.Context, keys []string) []*dataloader.Result[*entities.User] {
			results := make([]*dataloader.Result[*entities.User], len(keys))
			users, err := userRepo.GetByIDs(ctx, keys)

			for i, key := range keys {
				if err != nil {
					results[i] = &dataloader.Result[*entities.User]{Error: err}
				} else if u, ok := users[key]; ok {
					results[i] = &dataloader.Result[*entities.User]{Data: u}
				} else {
					results[i] = &dataloader.Result[*entities.User]{Error: entities.ErrUserNotFound}
				}
			}
			return results
		}),
		CompanyLoader: dataloader.NewBatchedLoader(func(ctx context.Context, keys []string) []*dataloader.Result[*entities.Company] {
			results := make([]*dataloader.Result[*entities.Company], len(keys))
			companies, err := companyRepo.GetByIDs(ctx, keys)

			companyMap := make(map[string]*entities.Company, len(companies))
			if err == nil {
				for _, c := range companies {
					companyMap[c.ID] = c
				}
			}

			for i, key := range keys {
				if err != nil {
					results[i] = &dataloader.Result[*entities.Company]{Error: err}
				} else if c, ok := companyMap[key]; ok {
					results[i] = &dataloader.Result[*entities.Company]{Data: c}
				} else {
					results[i] = &dataloader.Result[*entities.Company]{Error: entities.ErrCompanyNotFound}
				}
			}
			return results
		}),
	}
}

// For returns the loaders attached to ctx, or nil
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}

// WithLoaders returns a new context with the loaders attached
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}

// LoadUsers resolves ids through the user loader. Ids that fail to load are
// absent from the result; the first non-NotFound error is returned.
func (l *Loaders) LoadUsers(ctx context.Context, ids []string) (map[string]*entities.User, error) {
	thunks := make([]dataloader.Thunk[*entities.User], len(ids))
	for i, id := range ids {
		thunks[i] = l.UserLoader.Load(ctx, id)
	}

	users := make(map[string]*entities.User, len(ids))
	for i, thunk := range thunks {
		u, err := thunk()
		if err != nil {
			if errors.Is(err, entities.ErrUserNotFound) {
				continue
			}
			return nil, err
		}
		users[ids[i]] = u
	}
	return users, nil
}
