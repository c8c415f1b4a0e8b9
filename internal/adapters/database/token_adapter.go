package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/businesstrust/backend/pkg/errors"
)

// TokenAdapter implements the TokenRepository interface
type TokenAdapter struct {
	client *postgres.Client
}

// NewTokenAdapter creates a new token adapter
func NewTokenAdapter(client *postgres.Client) repositories.TokenRepository {
	return &TokenAdapter{client: client}
}

// Create stores a token digest
func (a *TokenAdapter) Create(ctx context.Context, token *entities.Token) error {
	query := `
		INSERT INTO tokens (token_hash, user_id, user_type, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := a.client.DB().ExecContext(ctx, query,
		token.TokenHash, token.UserID, token.UserType, token.CreatedAt, token.ExpiresAt)
	if err != nil {
		return apperrors.NewInternalError("failed to create token", err)
	}
	return nil
}

// GetByHash looks a token up by exact digest match
func (a *TokenAdapter) GetByHash(ctx context.Context, tokenHash string) (*entities.Token, error) {
	query := `
		SELECT token_hash, user_id, user_type, created_at, expires_at
		FROM tokens
		WHERE token_hash = $1
	`

	token := &entities.Token{}
	err := a.client.DB().QueryRowContext(ctx, query, tokenHash).Scan(
		&token.TokenHash,
		&token.UserID,
		&token.UserType,
		&token.CreatedAt,
		&token.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entities.ErrTokenNotFound
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get token", err)
	}
	return token, nil
}

// DeleteByHash deletes a token; missing tokens are ignored
func (a *TokenAdapter) DeleteByHash(ctx context.Context, tokenHash string) error {
	if _, err := a.client.DB().ExecContext(ctx, `DELETE FROM tokens WHERE token_hash = $1`, tokenHash); err != nil {
		return apperrors.NewInternalError("failed to delete token", err)
	}
	return nil
}
