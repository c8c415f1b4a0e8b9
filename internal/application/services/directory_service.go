package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
)

// DirectoryService resolves the acting identity behind a bearer token
type DirectoryService struct {
	credentials *CredentialService
	users       repositories.UserRepository
	companies   repositories.CompanyRepository
}

// NewDirectoryService creates a new directory service
func NewDirectoryService(credentials *CredentialService, users repositories.UserRepository, companies repositories.CompanyRepository) *DirectoryService {
	return &DirectoryService{
		credentials: credentials,
		users:       users,
		companies:   companies,
	}
}

// ResolveCustomer returns the customer behind raw. A user that owns a company
// is never treated as a customer, whatever its stored type.
func (s *DirectoryService) ResolveCustomer(ctx context.Context, raw string) (*entities.User, error) {
	identity, err := s.credentials.VerifyToken(ctx, raw)
	if err != nil {
		return nil, customerError(err)
	}
	if identity.UserType != entities.UserTypeCustomer {
		return nil, customerError(entities.ErrWrongRole)
	}

	user, err := s.users.GetByID(ctx, identity.UserID)
	if errors.Is(err, entities.ErrUserNotFound) {
		return nil, customerError(entities.ErrAuthenticationRequired)
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.companies.GetByOwner(ctx, user.ID); err == nil {
		return nil, customerError(entities.ErrWrongRole)
	} else if !errors.Is(err, entities.ErrCompanyNotFound) {
		return nil, err
	}

	return user, nil
}

// ResolveCompany returns the company user behind raw and the company it owns
func (s *DirectoryService) ResolveCompany(ctx context.Context, raw string) (*entities.User, *entities.Company, error) {
	identity, err := s.credentials.VerifyToken(ctx, raw)
	if err != nil {
		return nil, nil, companyError(err)
	}
	if identity.UserType != entities.UserTypeCompany {
		return nil, nil, companyError(entities.ErrWrongRole)
	}

	user, err := s.users.GetByID(ctx, identity.UserID)
	if errors.Is(err, entities.ErrUserNotFound) {
		return nil, nil, companyError(entities.ErrAuthenticationRequired)
	}
	if err != nil {
		return nil, nil, err
	}

	company, err := s.companies.GetByOwner(ctx, user.ID)
	if errors.Is(err, entities.ErrCompanyNotFound) {
		return nil, nil, companyError(entities.ErrWrongRole)
	}
	if err != nil {
		return nil, nil, err
	}

	return user, company, nil
}

// OptionalCustomer is ResolveCustomer for endpoints that also serve anonymous
// callers. Any resolution failure yields nil.
func (s *DirectoryService) OptionalCustomer(ctx context.Context, raw string) *entities.User {
	if raw == "" {
		return nil
	}
	user, err := s.ResolveCustomer(ctx, raw)
	if err != nil {
		return nil
	}
	return user
}

// customerError wraps auth failures so the client sees the customer message
// while errors.Is still matches the cause. Storage errors pass through.
func customerError(cause error) error {
	if !isAuthFailure(cause) {
		return cause
	}
	return fmt.Errorf("%w: %w", entities.ErrCustomerRequired, cause)
}

func companyError(cause error) error {
	if !isAuthFailure(cause) {
		return cause
	}
	return fmt.Errorf("%w: %w", entities.ErrCompanyRequired, cause)
}

func isAuthFailure(err error) bool {
	return errors.Is(err, entities.ErrAuthenticationRequired) || errors.Is(err, entities.ErrWrongRole)
}
