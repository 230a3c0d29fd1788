package application

import (
	"context"
	"io"
	"time"

	"github.com/oksasatya/library-catalog/internal/domain/entity"
	"github.com/oksasatya/library-catalog/pkg/helpers"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

type TokenService interface {
	Issue(userID, role string) (string, time.Time, error)
	Verify(token string) (*helpers.Claims, error)
}

// EmailPublisher queues outgoing mail jobs.
type EmailPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// BookCache fills are conditional: the generation is read before the store
// query and a fill is dropped when Invalidate ran in between.
type BookCache interface {
	GetList(ctx context.Context) ([]entity.Book, bool, error)
	ListGeneration(ctx context.Context) (int64, error)
	SetList(ctx context.Context, books []entity.Book, gen int64) error
	GetBook(ctx context.Context, id string) (*entity.Book, bool, error)
	BookGeneration(ctx context.Context, id string) (int64, error)
	SetBook(ctx context.Context, b *entity.Book, gen int64) error
	Invalidate(ctx context.Context, ids ...string) error
}

type BookIndex interface {
	Index(ctx context.Context, b *entity.Book) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]entity.Book, error)
}

type CoverStorage interface {
	Upload(ctx context.Context, bookID, ext, contentType string, r io.Reader) (string, error)
	Remove(ctx context.Context, url string) error
}
