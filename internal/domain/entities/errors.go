package entities

import (
	apperrors "github.com/zatekoja/businesstrust/backend/pkg/errors"
)

// Domain errors. Compare with errors.Is.
var (
	ErrInvalidRating          = apperrors.NewValidationError("Rating must be between 1.0 and 5.0.")
	ErrRatingNotNumber        = apperrors.NewValidationError("Rating must be a number between 1.0 and 5.0.")
	ErrPasswordTooShort       = apperrors.NewValidationError("Password must be at least 8 characters.")
	ErrEmptyComment           = apperrors.NewValidationError("Comment cannot be empty.")
	ErrCommentTooLong         = apperrors.NewValidationError("Comment is too long (max 2000 characters).")
	ErrCredentialsRequired    = apperrors.NewValidationError("Email and password are required.")
	ErrCompanyFieldsRequired  = apperrors.NewValidationError("Email, password, name, and category are required.")
	ErrAuthenticationRequired = apperrors.NewUnauthorizedError("Authentication credentials were not provided or are invalid.")
	ErrWrongRole              = apperrors.NewUnauthorizedError("This account is not allowed to perform this action.")
	ErrCustomerRequired       = apperrors.NewUnauthorizedError("Authentication as a customer is required.")
	ErrCompanyRequired        = apperrors.NewUnauthorizedError("Company authentication required.")
	ErrInvalidCredentials     = apperrors.NewUnauthorizedError("Invalid email or password.")
	ErrDuplicateEmail         = apperrors.NewConflictError("A user with this email already exists.")
	ErrDuplicateRating        = apperrors.NewConflictError("You have already rated this company.")
	ErrCompanyNotFound        = apperrors.NewNotFoundError("Company not found.")
	ErrCompanyProfileNotFound = apperrors.NewNotFoundError("Company profile not found.")
	ErrProfileFieldRequired   = apperrors.NewValidationError("Name and category cannot be empty.")
	ErrUserNotFound           = apperrors.NewNotFoundError("User not found.")
	ErrTokenNotFound          = apperrors.NewNotFoundError("Token not found.")
	ErrRatingNotFound         = apperrors.NewNotFoundError("Rating not found.")
)
