package application

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/library-catalog/internal/domain/entity"
	repo "github.com/oksasatya/library-catalog/internal/domain/repository"
	"github.com/oksasatya/library-catalog/pkg/helpers"
)

const (
	DefaultSearchSize = 20
	MaxSearchSize     = 50
	MaxCoverBytes     = 5 << 20
)

var coverTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// BookService owns the book catalog. Cache, Index and Covers are optional.
type BookService struct {
	Books  repo.BookRepository
	Cache  BookCache
	Index  BookIndex
	Covers CoverStorage
	Logger *logrus.Logger
}

func NewBookService(books repo.BookRepository, logger *logrus.Logger) *BookService {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &BookService{Books: books, Logger: logger}
}

type CreateBookInput struct {
	Title       string
	Author      string
	Description string
}

func (s *BookService) List(ctx context.Context) ([]entity.Book, error) {
	fill, gen := false, int64(0)
	if s.Cache != nil {
		books, ok, err := s.Cache.GetList(ctx)
		if err == nil && ok {
			return books, nil
		}
		if err == nil {
			gen, err = s.Cache.ListGeneration(ctx)
		}
		if err != nil {
			s.Logger.WithError(err).Warn("book cache read failed")
		}
		fill = err == nil
	}
	books, err := s.Books.List(ctx)
	if err != nil {
		return nil, err
	}
	if fill {
		if err := s.Cache.SetList(ctx, books, gen); err != nil {
			s.Logger.WithError(err).Warn("book cache write failed")
		}
	}
	return books, nil
}

func (s *BookService) Get(ctx context.Context, id string) (*entity.Book, error) {
	fill, gen := false, int64(0)
	if s.Cache != nil {
		b, ok, err := s.Cache.GetBook(ctx, id)
		if err == nil && ok {
			return b, nil
		}
		if err == nil {
			gen, err = s.Cache.BookGeneration(ctx, id)
		}
		if err != nil {
			s.Logger.WithError(err).WithField("book_id", id).Warn("book cache read failed")
		}
		fill = err == nil
	}
	b, err := s.Books.GetByID(ctx, id)
	if err != nil {
		return nil, mapBookErr(err)
	}
	if fill {
		if err := s.Cache.SetBook(ctx, b, gen); err != nil {
			s.Logger.WithError(err).WithField("book_id", id).Warn("book cache write failed")
		}
	}
	return b, nil
}

// Create stores a new book. Missing author and description get defaults.
func (s *BookService) Create(ctx context.Context, in CreateBookInput, createdBy string) (*entity.Book, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("Title is required", "title", "is required")
	}
	author := strings.TrimSpace(in.Author)
	if author == "" {
		author = entity.DefaultAuthor
	}
	description := in.Description
	if strings.TrimSpace(description) == "" {
		description = entity.DefaultDescription
	}

	b := &entity.Book{Title: title, Author: author, Description: description, CreatedBy: createdBy}
	if err := s.Books.Create(ctx, b); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, b)
	s.Logger.WithFields(logrus.Fields{"book_id": b.ID, "created_by": createdBy}).Info("book created")
	return b, nil
}

// Update applies a partial change. A title that is present must not be
// blank; a blank author falls back to the default.
func (s *BookService) Update(ctx context.Context, id string, patch entity.BookPatch) (*entity.Book, error) {
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		if t == "" {
			return nil, invalid("Title is required", "title", "must not be blank")
		}
		patch.Title = &t
	}
	if patch.Author != nil && strings.TrimSpace(*patch.Author) == "" {
		def := entity.DefaultAuthor
		patch.Author = &def
	}
	b, err := s.Books.Update(ctx, id, patch)
	if err != nil {
		return nil, mapBookErr(err)
	}
	s.afterWrite(ctx, b)
	return b, nil
}

func (s *BookService) Delete(ctx context.Context, id string) error {
	var cover string
	if s.Covers != nil {
		if b, err := s.Books.GetByID(ctx, id); err == nil {
			cover = b.CoverURL
		}
	}
	if err := s.Books.Delete(ctx, id); err != nil {
		return mapBookErr(err)
	}
	s.invalidate(ctx, id)
	s.removeCover(ctx, id, cover)
	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil {
			s.Logger.WithError(err).WithField("book_id", id).Warn("book unindex failed")
		}
	}
	s.Logger.WithField("book_id", id).Info("book deleted")
	return nil
}

// Search uses the full-text index when configured and falls back to the
// repository when it is absent or failing.
func (s *BookService) Search(ctx context.Context, q string, size int) ([]entity.Book, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, invalid("Search query is required", "q", "is required")
	}
	if size <= 0 || size > MaxSearchSize {
		size = DefaultSearchSize
	}
	if s.Index != nil {
		books, err := s.Index.Search(ctx, q, size)
		if err == nil {
			return books, nil
		}
		s.Logger.WithError(err).Warn("book index search failed, using store")
	}
	return s.Books.Search(ctx, q, size)
}

// SetCover uploads a cover image and records its URL on the book.
func (s *BookService) SetCover(ctx context.Context, id, contentType string, size int64, r io.Reader) (*entity.Book, error) {
	if s.Covers == nil {
		return nil, ErrCoverStorageOff
	}
	ext, ok := coverTypes[contentType]
	if !ok {
		return nil, invalid("Cover must be a JPEG, PNG or WebP image", "cover", "unsupported content type")
	}
	if size > MaxCoverBytes {
		return nil, invalid("Cover must be at most 5 MiB", "cover", "too large")
	}
	current, err := s.Books.GetByID(ctx, id)
	if err != nil {
		return nil, mapBookErr(err)
	}

	url, err := s.Covers.Upload(ctx, id, ext, contentType, io.LimitReader(r, MaxCoverBytes))
	if err != nil {
		return nil, err
	}
	b, err := s.Update(ctx, id, entity.BookPatch{CoverURL: &url})
	if err != nil {
		s.removeCover(ctx, id, url)
		return nil, err
	}
	if current.CoverURL != url {
		s.removeCover(ctx, id, current.CoverURL)
	}
	return b, nil
}

// removeCover drops a cover object that no book references any more.
// Failures only leave an orphaned object behind.
func (s *BookService) removeCover(ctx context.Context, id, url string) {
	if s.Covers == nil || url == "" {
		return
	}
	if err := s.Covers.Remove(ctx, url); err != nil {
		s.Logger.WithError(err).WithField("book_id", id).Warn("cover cleanup failed")
	}
}

func (s *BookService) afterWrite(ctx context.Context, b *entity.Book) {
	s.invalidate(ctx, b.ID)
	if s.Index != nil {
		if err := s.Index.Index(ctx, b); err != nil {
			s.Logger.WithError(err).WithField("book_id", b.ID).Warn("book index failed")
		}
	}
}

func (s *BookService) invalidate(ctx context.Context, id string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx, id); err != nil {
		s.Logger.WithError(err).WithField("book_id", id).Warn("book cache invalidate failed")
	}
}

func mapBookErr(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrBookNotFound
	}
	return err
}
