package services

import "errors"

var (
	// ErrInvalidCredentials is returned for any sign-in failure, whether
	// the name is unknown or the birthday does not match. The two cases
	// deliberately share one error so callers cannot enumerate users.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrValidation is returned when a required field is missing or
	// malformed.
	ErrValidation = errors.New("validation failed")
)
