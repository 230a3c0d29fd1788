package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/library-catalog/internal/domain/entity"
	"github.com/oksasatya/library-catalog/internal/domain/repository"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	u := &entity.User{Name: "Ann", Email: "ann@x.io", Password: "digest", Role: entity.RoleUser}
	require.NoError(t, repo.Create(ctx, u))
	require.NotEmpty(t, u.ID)

	byEmail, err := repo.GetByEmail(ctx, "ann@x.io")
	require.NoError(t, err)
	assert.Equal(t, "digest", byEmail.Password)

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, byID.Password)
	assert.Equal(t, "Ann", byID.Name)

	_, err = repo.GetByEmail(ctx, "ANN@x.io")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	require.NoError(t, repo.Create(ctx, &entity.User{Name: "Ann", Email: "ann@x.io"}))
	err := repo.Create(ctx, &entity.User{Name: "Other", Email: "ann@x.io"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestUserRepository_ConcurrentSameEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Create(ctx, &entity.User{Name: "Ann", Email: "race@x.io"})
		}()
	}
	wg.Wait()
	close(errs)

	var ok, dup int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, repository.ErrDuplicateEmail):
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dup)
}

func TestUserRepository_UpdateRole(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	u := &entity.User{Name: "Ann", Email: "ann@x.io", Password: "digest", Role: entity.RoleUser}
	require.NoError(t, repo.Create(ctx, u))

	updated, err := repo.UpdateRole(ctx, u.ID, entity.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, updated.IsAdmin())
	assert.Empty(t, updated.Password)

	stored, err := repo.GetByEmail(ctx, "ann@x.io")
	require.NoError(t, err)
	assert.Equal(t, "digest", stored.Password)

	_, err = repo.UpdateRole(ctx, "missing", entity.RoleAdmin)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestBookRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewBookRepository()

	first := &entity.Book{Title: "Dune", Author: entity.DefaultAuthor}
	second := &entity.Book{Title: "Emma", Author: "Jane Austen", Description: "a comedy of manners"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Emma", list[0].Title)
	assert.Equal(t, "Dune", list[1].Title)

	title := "Dune Messiah"
	updated, err := repo.Update(ctx, first.ID, entity.BookPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, entity.DefaultAuthor, updated.Author)

	require.NoError(t, repo.Delete(ctx, first.ID))
	assert.ErrorIs(t, repo.Delete(ctx, first.ID), repository.ErrNotFound)
	_, err = repo.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.Update(ctx, first.ID, entity.BookPatch{Title: &title})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestBookRepository_Search(t *testing.T) {
	ctx := context.Background()
	repo := NewBookRepository()
	for _, b := range []*entity.Book{
		{Title: "Dune", Author: "Frank Herbert"},
		{Title: "Emma", Author: "Jane Austen"},
		{Title: "Persuasion", Author: "Jane Austen"},
	} {
		require.NoError(t, repo.Create(ctx, b))
	}

	got, err := repo.Search(ctx, "AUSTEN", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Persuasion", got[0].Title)

	got, err = repo.Search(ctx, "austen", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = repo.Search(ctx, "tolkien", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBookRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewBookRepository()
	b := &entity.Book{Title: "Dune"}
	require.NoError(t, repo.Create(ctx, b))

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	got.Title = "changed"

	again, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", again.Title)
}
