package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/library-catalog/internal/domain/entity"
	"github.com/oksasatya/library-catalog/internal/domain/repository"
)

const bookColumns = `id::text, title, author, description, cover_url, COALESCE(created_by::text, ''), created_at`

type BookRepository struct {
	db DBTX
}

func NewBookRepository(db DBTX) *BookRepository {
	return &BookRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*entity.Book, error) {
	b := &entity.Book{}
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.CoverURL, &b.CreatedBy, &b.CreatedAt); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BookRepository) Create(ctx context.Context, b *entity.Book) error {
	var createdBy any
	if b.CreatedBy != "" {
		createdBy = b.CreatedBy
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO books (title, author, description, cover_url, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text, created_at
	`, b.Title, b.Author, b.Description, b.CoverURL, createdBy)

	if err := row.Scan(&b.ID, &b.CreatedAt); err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

func (r *BookRepository) GetByID(ctx context.Context, id string) (*entity.Book, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	b, err := scanBook(r.db.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select book %s: %w", id, err)
	}
	return b, nil
}

func (r *BookRepository) List(ctx context.Context) ([]entity.Book, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookColumns+` FROM books ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return collectBooks(rows)
}

func (r *BookRepository) Search(ctx context.Context, q string, limit int) ([]entity.Book, error) {
	pattern := "%" + escapeLike(q) + "%"
	rows, err := r.db.Query(ctx, `
		SELECT `+bookColumns+`
		FROM books
		WHERE title ILIKE $1 OR author ILIKE $1 OR description ILIKE $1
		ORDER BY created_at DESC
		LIMIT $2
	`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return collectBooks(rows)
}

func (r *BookRepository) Update(ctx context.Context, id string, patch entity.BookPatch) (*entity.Book, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	b, err := scanBook(r.db.QueryRow(ctx, `
		UPDATE books
		SET title       = COALESCE($2, title),
		    author      = COALESCE($3, author),
		    description = COALESCE($4, description),
		    cover_url   = COALESCE($5, cover_url)
		WHERE id = $1
		RETURNING `+bookColumns,
		id, patch.Title, patch.Author, patch.Description, patch.CoverURL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("update book %s: %w", id, err)
	}
	return b, nil
}

func (r *BookRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	res, err := r.db.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book %s: %w", id, err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func collectBooks(rows pgx.Rows) ([]entity.Book, error) {
	defer rows.Close()
	books := make([]entity.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var _ repository.BookRepository = (*BookRepository)(nil)
