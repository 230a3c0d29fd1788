package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/library-catalog/internal/domain/entity"
)

var (
	// ErrNotFound is returned when a record does not exist or its id is not
	// a valid identifier for the backing store.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when an insert violates email uniqueness.
	ErrDuplicateEmail = errors.New("duplicate email")
)

// UserRepository defines the credential store operations.
type UserRepository interface {
	// Create assigns ID and CreatedAt on success.
	Create(ctx context.Context, u *entity.User) error
	// GetByID loads the user without the password digest.
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByEmail loads the user including the password digest.
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdateRole(ctx context.Context, id string, role entity.Role) (*entity.User, error)
}
