package application

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrUserNotFound = errors.New("token subject not found")
	ErrForbidden    = errors.New("forbidden")

	// ErrNoSuchUser is a missing user addressed by an admin operation, as
	// opposed to ErrUserNotFound which rejects a token whose subject is gone.
	ErrNoSuchUser      = errors.New("user not found")
	ErrBookNotFound    = errors.New("book not found")
	ErrCoverStorageOff = errors.New("cover storage not configured")
)

// ValidationError reports rejected input. Fields maps JSON field names to
// messages and may be empty.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string, fields ...string) *ValidationError {
	ve := &ValidationError{Message: msg, Fields: map[string]string{}}
	for i := 0; i+1 < len(fields); i += 2 {
		ve.Fields[fields[i]] = fields[i+1]
	}
	return ve
}
