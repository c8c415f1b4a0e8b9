package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/businesstrust/backend/pkg/errors"
	"github.com/zatekoja/businesstrust/backend/pkg/password"
	"github.com/zatekoja/businesstrust/backend/pkg/token"
)

// NewUser holds the fields needed to register an account
type NewUser struct {
	Email     string
	Password  string
	UserType  entities.UserType
	FirstName string
	LastName  string
}

// CredentialService owns password verification and the bearer token lifecycle
type CredentialService struct {
	users  repositories.UserRepository
	tokens repositories.TokenRepository
	hasher password.Hasher
	ttl    time.Duration
	now    func() time.Time
}

// NewCredentialService creates a new credential service
func NewCredentialService(users repositories.UserRepository, tokens repositories.TokenRepository, hasher password.Hasher, ttl time.Duration) *CredentialService {
	return &CredentialService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		ttl:    ttl,
		now:    time.Now,
	}
}

// CreateUser registers a user with a hashed password. The email is stored
// lower-cased; a taken email returns entities.ErrDuplicateEmail.
func (s *CredentialService) CreateUser(ctx context.Context, in NewUser) (*entities.User, error) {
	email := entities.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, entities.ErrCredentialsRequired
	}
	if !in.UserType.Valid() {
		return nil, apperrors.NewValidationError("Unknown user type.")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, entities.ErrDuplicateEmail
	} else if !errors.Is(err, entities.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if errors.Is(err, password.ErrTooLong) {
		return nil, apperrors.NewValidationError("Password is too long.")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}

	now := s.now().UTC()
	user := &entities.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		UserType:     in.UserType,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks an email and password. When expected is set the user
// must be of that type. Unknown email, wrong password and type mismatch all
// return entities.ErrInvalidCredentials after a full hash comparison.
func (s *CredentialService) Authenticate(ctx context.Context, email, pw string, expected entities.UserType) (*entities.User, error) {
	user, err := s.users.GetByEmail(ctx, entities.NormalizeEmail(email))
	if errors.Is(err, entities.ErrUserNotFound) {
		s.hasher.Check(pw, "")
		return nil, entities.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !s.hasher.Check(pw, user.PasswordHash) {
		return nil, entities.ErrInvalidCredentials
	}
	if expected != "" && user.UserType != expected {
		return nil, entities.ErrInvalidCredentials
	}
	return user, nil
}

// IssueToken creates a bearer token for a user. Only its digest is stored.
func (s *CredentialService) IssueToken(ctx context.Context, user *entities.User) (string, error) {
	raw, err := token.Generate()
	if err != nil {
		return "", apperrors.NewInternalError("failed to generate token", err)
	}

	now := s.now().UTC()
	record := &entities.Token{
		TokenHash: token.Hash(raw),
		UserID:    user.ID,
		UserType:  user.UserType,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.tokens.Create(ctx, record); err != nil {
		return "", err
	}
	return raw, nil
}

// VerifyToken resolves a bearer token. Expired tokens are deleted on sight.
func (s *CredentialService) VerifyToken(ctx context.Context, raw string) (*entities.Identity, error) {
	if raw == "" {
		return nil, entities.ErrAuthenticationRequired
	}

	digest := token.Hash(raw)
	record, err := s.tokens.GetByHash(ctx, digest)
	if errors.Is(err, entities.ErrTokenNotFound) {
		return nil, entities.ErrAuthenticationRequired
	}
	if err != nil {
		return nil, err
	}

	if record.Expired(s.now()) {
		if err := s.tokens.DeleteByHash(ctx, digest); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("user_id", record.UserID).Msg("Failed to delete expired token")
		}
		return nil, entities.ErrAuthenticationRequired
	}

	return &entities.Identity{UserID: record.UserID, UserType: record.UserType}, nil
}

// RevokeToken deletes a token. Unknown tokens are ignored.
func (s *CredentialService) RevokeToken(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	return s.tokens.DeleteByHash(ctx, token.Hash(raw))
}
