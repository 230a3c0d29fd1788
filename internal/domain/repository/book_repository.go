package repository

import (
	"context"

	"github.com/oksasatya/library-catalog/internal/domain/entity"
)

// BookRepository defines plain CRUD over book records.
type BookRepository interface {
	// Create assigns ID and CreatedAt on success.
	Create(ctx context.Context, b *entity.Book) error
	GetByID(ctx context.Context, id string) (*entity.Book, error)
	// List returns every book, newest first.
	List(ctx context.Context) ([]entity.Book, error)
	// Search matches q case-insensitively against title, author and description.
	Search(ctx context.Context, q string, limit int) ([]entity.Book, error)
	Update(ctx context.Context, id string, patch entity.BookPatch) (*entity.Book, error)
	Delete(ctx context.Context, id string) error
}

// Pinger reports store health.
type Pinger interface {
	Ping(ctx context.Context) error
}
