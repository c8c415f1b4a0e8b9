package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/businesstrust/backend/pkg/errors"
)

const userColumns = `id, email, password_hash, user_type, first_name, last_name, created_at, updated_at`

// UserAdapter implements the UserRepository interface
type UserAdapter struct {
	client *postgres.Client
}

// NewUserAdapter creates a new user adapter
func NewUserAdapter(client *postgres.Client) repositories.UserRepository {
	return &UserAdapter{client: client}
}

// Create creates a new user. The users_email_key index decides email uniqueness.
func (a *UserAdapter) Create(ctx context.Context, user *entities.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := a.client.DB().ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.UserType,
		user.FirstName,
		user.LastName,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if isUniqueViolation(err, "users_email_key") {
		return entities.ErrDuplicateEmail
	}
	if err != nil {
		return apperrors.NewInternalError("failed to create user", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (a *UserAdapter) GetByID(ctx context.Context, id string) (*entities.User, error) {
	if !isUUID(id) {
		return nil, entities.ErrUserNotFound
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(a.client.DB().QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entities.ErrUserNotFound
	}
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to get user %s", id), err)
	}
	return user, nil
}

// GetByIDs retrieves users by IDs
func (a *UserAdapter) GetByIDs(ctx context.Context, ids []string) (map[string]*entities.User, error) {
	users := make(map[string]*entities.User, len(ids))
	valid := uuidsOnly(ids)
	if len(valid) == 0 {
		return users, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`
	rows, err := a.client.DB().QueryContext(ctx, query, pq.Array(valid))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get users", err)
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan user", err)
		}
		users[user.ID] = user
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate users", err)
	}

	return users, nil
}

// GetByEmail retrieves a user by lower-cased email
func (a *UserAdapter) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(a.client.DB().QueryRowContext(ctx, query, entities.NormalizeEmail(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entities.ErrUserNotFound
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user by email", err)
	}
	return user, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*entities.User, error) {
	user := &entities.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.UserType,
		&user.FirstName,
		&user.LastName,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if !user.UserType.Valid() {
		return nil, fmt.Errorf("user %s has unknown type %q", user.ID, user.UserType)
	}
	return user, nil
}
