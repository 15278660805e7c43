package auth

import "errors"

var (
	// ErrInvalidCredentials is returned for any rejected credential set.
	// Deliberately generic to prevent user enumeration.
	ErrInvalidCredentials = errors.New("auth.invalid_credentials")

	// ErrStrategyFailure wraps internal strategy faults. Callers surface a
	// generic failure to the user and log the wrapped detail.
	ErrStrategyFailure = errors.New("auth.strategy_failure")

	// ErrUnknownStrategy indicates no strategy is registered under the name.
	ErrUnknownStrategy = errors.New("auth.unknown_strategy")

	// ErrNotAuthenticated indicates the request carries no authenticated session.
	ErrNotAuthenticated = errors.New("auth.not_authenticated")

	// ErrUserNotFound indicates the user record does not exist.
	ErrUserNotFound = errors.New("auth.user_not_found")

	// ErrEmailAlreadyExists indicates a registration conflict.
	ErrEmailAlreadyExists = errors.New("auth.email_already_exists")
)
