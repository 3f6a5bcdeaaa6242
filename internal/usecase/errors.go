package usecase

import "errors"

// Error kinds returned by UserService. Handlers map them to status codes.
var (
	ErrValidation         = errors.New("validation failed")
	ErrUserAlreadyExists  = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyActive      = errors.New("already active")
	ErrCodeExpired        = errors.New("code expired")
	ErrInvalidCode        = errors.New("invalid code")
	ErrServiceUnavailable = errors.New("service unavailable")
)
