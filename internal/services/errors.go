package services

import "errors"

// Domain errors surfaced to the handlers, which map them onto HTTP statuses.
var (
	ErrInvalidRole        = errors.New("invalid role")
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")

	ErrMealNotFound    = errors.New("meal not found")
	ErrMealUnavailable = errors.New("meal unavailable")

	ErrInvalidBeneficiary = errors.New("invalid beneficiary")
	ErrInsufficientTokens = errors.New("insufficient tokens")
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderNotPending    = errors.New("order not pending")
)
