package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/observability"
	"github.com/zatekoja/businesstrust/backend/pkg/password"
)

// CompanySignup is the input of a company registration
type CompanySignup struct {
	Email       string
	Password    string
	Name        string
	Category    string
	Description string
	Phone       string
	Address     string
	City        string
	Country     string
}

// CustomerSignup is the input of a customer registration
type CustomerSignup struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthResult is returned by signup and login flows
type AuthResult struct {
	Token   string
	User    *entities.User
	Company *entities.Company
}

// AccountService implements signup, login and logout for both account types
type AccountService struct {
	credentials *CredentialService
	companies   repositories.CompanyRepository
	search      repositories.CompanySearchRepository
	activity    *ActivityRecorder
}

// NewAccountService creates a new account service. search may be nil.
func NewAccountService(credentials *CredentialService, companies repositories.CompanyRepository, search repositories.CompanySearchRepository, activity *ActivityRecorder) *AccountService {
	return &AccountService{
		credentials: credentials,
		companies:   companies,
		search:      search,
		activity:    activity,
	}
}

// SignupCompany creates a company user and its profile and issues a token
func (s *AccountService) SignupCompany(ctx context.Context, in CompanySignup) (*AuthResult, error) {
	email := entities.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	category := strings.TrimSpace(in.Category)
	if email == "" || in.Password == "" || name == "" || category == "" {
		return nil, entities.ErrCompanyFieldsRequired
	}
	if !password.Valid(in.Password) {
		return nil, entities.ErrPasswordTooShort
	}

	user, err := s.credentials.CreateUser(ctx, NewUser{
		Email:    email,
		Password: in.Password,
		UserType: entities.UserTypeCompany,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	company := &entities.Company{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Name:        name,
		Email:       email,
		Category:    category,
		Description: in.Description,
		Phone:       in.Phone,
		Address:     in.Address,
		City:        in.City,
		Country:     in.Country,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.companies.Create(ctx, company); err != nil {
		return nil, err
	}

	if s.search != nil {
		if err := s.search.Index(ctx, company); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("company_id", company.ID).Msg("Failed to index company")
		}
	}

	tok, err := s.credentials.IssueToken(ctx, user)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, entities.ActivityCompanySignup, company.ID, user.ID, map[string]interface{}{
		"company_name": name,
		"email":        email,
	})

	return &AuthResult{Token: tok, User: user, Company: company}, nil
}

// LoginCompany authenticates a company user and issues a token
func (s *AccountService) LoginCompany(ctx context.Context, email, pw string) (*AuthResult, error) {
	if entities.NormalizeEmail(email) == "" || pw == "" {
		return nil, entities.ErrCredentialsRequired
	}

	user, err := s.credentials.Authenticate(ctx, email, pw, entities.UserTypeCompany)
	if err != nil {
		return nil, err
	}

	company, err := s.companies.GetByOwner(ctx, user.ID)
	if errors.Is(err, entities.ErrCompanyNotFound) {
		return nil, entities.ErrCompanyProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	tok, err := s.credentials.IssueToken(ctx, user)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, entities.ActivityCompanyLogin, company.ID, user.ID, map[string]interface{}{
		"company_name": company.Name,
		"email":        user.Email,
	})

	return &AuthResult{Token: tok, User: user, Company: company}, nil
}

// SignupCustomer creates a customer user and issues a token
func (s *AccountService) SignupCustomer(ctx context.Context, in CustomerSignup) (*AuthResult, error) {
	email := entities.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, entities.ErrCredentialsRequired
	}
	if !password.Valid(in.Password) {
		return nil, entities.ErrPasswordTooShort
	}

	user, err := s.credentials.CreateUser(ctx, NewUser{
		Email:     email,
		Password:  in.Password,
		UserType:  entities.UserTypeCustomer,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
	})
	if err != nil {
		return nil, err
	}

	tok, err := s.credentials.IssueToken(ctx, user)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, entities.ActivityCustomerSignup, "", user.ID, map[string]interface{}{"email": email})

	return &AuthResult{Token: tok, User: user}, nil
}

// LoginCustomer authenticates a customer and issues a token
func (s *AccountService) LoginCustomer(ctx context.Context, email, pw string) (*AuthResult, error) {
	if entities.NormalizeEmail(email) == "" || pw == "" {
		return nil, entities.ErrCredentialsRequired
	}

	user, err := s.credentials.Authenticate(ctx, email, pw, entities.UserTypeCustomer)
	if err != nil {
		return nil, err
	}

	tok, err := s.credentials.IssueToken(ctx, user)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, entities.ActivityCustomerLogin, "", user.ID, map[string]interface{}{"email": user.Email})

	return &AuthResult{Token: tok, User: user}, nil
}

// Logout revokes the presented token
func (s *AccountService) Logout(ctx context.Context, raw string) error {
	if _, err := s.credentials.VerifyToken(ctx, raw); err != nil {
		return err
	}
	return s.credentials.RevokeToken(ctx, raw)
}
