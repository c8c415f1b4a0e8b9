package repositories

import (
	"context"

	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create persists a new user. A taken email returns entities.ErrDuplicateEmail.
	Create(ctx context.Context, user *entities.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// GetByIDs retrieves users by IDs, keyed by ID. Missing IDs are absent from the map.
	GetByIDs(ctx context.Context, ids []string) (map[string]*entities.User, error)

	// GetByEmail retrieves a user by lower-cased email
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
}

// TokenRepository defines the interface for bearer token persistence
type TokenRepository interface {
	Create(ctx context.Context, token *entities.Token) error
	GetByHash(ctx context.Context, tokenHash string) (*entities.Token, error)
	// DeleteByHash removes a token; deleting a missing token is not an error
	DeleteByHash(ctx context.Context, tokenHash string) error
}
