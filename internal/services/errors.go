// internal/services/errors.go
package services

import "errors"

// Error taxonomy shared by all services. Handlers map these onto HTTP
// statuses; anything else is treated as an infrastructure failure.
var (
	// ErrNotFound covers unknown records and, deliberately, inactive
	// products resolved through the public path: the public caller is
	// never told the difference.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks malformed input; field detail travels in the
	// wrapping error message or in utils.ValidationError slices.
	ErrValidation = errors.New("validation failed")

	// ErrConflict marks a unique-code collision with retries exhausted.
	ErrConflict = errors.New("conflict")

	// ErrInvalidCredentials covers a failed login, whether the account
	// is unknown or the password is wrong. Database failures during
	// login stay infrastructure errors and must not map onto it.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
