package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/library-catalog/internal/domain/entity"
	"github.com/oksasatya/library-catalog/internal/domain/repository"
)

type bookRecord struct {
	book entity.Book
	seq  uint64
}

// BookRepository keeps books in process memory. Safe for concurrent use.
type BookRepository struct {
	mu    sync.RWMutex
	books map[string]*bookRecord
	seq   uint64
}

func NewBookRepository() *BookRepository {
	return &BookRepository{books: make(map[string]*bookRecord)}
}

func (r *BookRepository) Create(_ context.Context, b *entity.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	b.ID = uuid.NewString()
	b.CreatedAt = time.Now().UTC()
	r.books[b.ID] = &bookRecord{book: *b, seq: r.seq}
	return nil
}

func (r *BookRepository) GetByID(_ context.Context, id string) (*entity.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.books[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	b := rec.book
	return &b, nil
}

func (r *BookRepository) List(_ context.Context) ([]entity.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(entity.Book) bool { return true }, 0), nil
}

func (r *BookRepository) Search(_ context.Context, q string, limit int) ([]entity.Book, error) {
	needle := strings.ToLower(q)
	match := func(b entity.Book) bool {
		return strings.Contains(strings.ToLower(b.Title), needle) ||
			strings.Contains(strings.ToLower(b.Author), needle) ||
			strings.Contains(strings.ToLower(b.Description), needle)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(match, limit), nil
}

func (r *BookRepository) Update(_ context.Context, id string, patch entity.BookPatch) (*entity.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.books[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	patch.Apply(&rec.book)
	b := rec.book
	return &b, nil
}

func (r *BookRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.books, id)
	return nil
}

// Ping always succeeds.
func (r *BookRepository) Ping(context.Context) error { return nil }

// collect returns matching books newest first; insertion order breaks ties.
// Callers must hold the read lock.
func (r *BookRepository) collect(match func(entity.Book) bool, limit int) []entity.Book {
	recs := make([]*bookRecord, 0, len(r.books))
	for _, rec := range r.books {
		if match(rec.book) {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].book.CreatedAt.Equal(recs[j].book.CreatedAt) {
			return recs[i].book.CreatedAt.After(recs[j].book.CreatedAt)
		}
		return recs[i].seq > recs[j].seq
	})
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	out := make([]entity.Book, len(recs))
	for i, rec := range recs {
		out[i] = rec.book
	}
	return out
}

var _ repository.BookRepository = (*BookRepository)(nil)
