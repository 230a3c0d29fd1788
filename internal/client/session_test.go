package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/library-catalog/config"
	"github.com/oksasatya/library-catalog/internal/application"
	"github.com/oksasatya/library-catalog/internal/container"
	"github.com/oksasatya/library-catalog/internal/domain/entity"
	"github.com/oksasatya/library-catalog/internal/router"
	"github.com/oksasatya/library-catalog/pkg/helpers"
	"github.com/oksasatya/library-catalog/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

// newServer runs the real API over a memory store.
func newServer(t *testing.T) (*httptest.Server, *container.Container) {
	t.Helper()
	cfg := &config.Config{
		StoreDriver:    config.DriverMemory,
		JWTSecret:      "client-test-secret",
		JWTTTL:         time.Hour,
		RequestTimeout: 5 * time.Second,
	}
	c, err := container.NewWithStores(cfg, helpers.NewDiscardLogger(), container.MemoryStores())
	require.NoError(t, err)
	srv := httptest.NewServer(router.NewEngine(c))
	t.Cleanup(srv.Close)
	return srv, c
}

func seedAdmin(t *testing.T, c *container.Container) {
	t.Helper()
	_, _, err := c.AuthService.EnsureAdmin(context.Background(), application.RegisterInput{
		Name: "Root", Email: "root@x.com", Password: "rootpw1",
	})
	require.NoError(t, err)
}

func TestSession_RegisterPersistsAndRestores(t *testing.T) {
	srv, _ := newServer(t)
	ctx := context.Background()
	store := FileTokenStore{Path: filepath.Join(t.TempDir(), "library-catalog", "token")}

	s := NewSession(New(srv.URL, srv.Client()), store)
	require.NoError(t, s.Register(ctx, "Ann", "a@x.com", "secret1"))
	st := s.State()
	require.True(t, st.LoggedIn())
	assert.Equal(t, "Ann", st.User.Name)
	assert.False(t, st.IsAdmin())

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, st.Token, saved)

	again := NewSession(New(srv.URL, srv.Client()), store)
	require.NoError(t, again.Restore(ctx))
	assert.Equal(t, st.User, again.State().User)

	require.NoError(t, again.Logout())
	assert.False(t, again.State().LoggedIn())
	saved, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestSession_RestoreDiscardsRejectedToken(t *testing.T) {
	srv, _ := newServer(t)
	store := &MemoryTokenStore{}
	require.NoError(t, store.Save("stale-token"))

	s := NewSession(New(srv.URL, srv.Client()), store)
	require.NoError(t, s.Restore(context.Background()))
	assert.False(t, s.State().LoggedIn())

	tok, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestSession_RestoreKeepsTokenOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"internal server error"}`))
	}))
	defer srv.Close()
	store := &MemoryTokenStore{}
	require.NoError(t, store.Save("tok"))

	s := NewSession(New(srv.URL, srv.Client()), store)
	err := s.Restore(context.Background())
	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusInternalServerError, ae.Status)

	tok, _ := store.Load()
	assert.Equal(t, "tok", tok)
}

func TestSession_LoginFailure(t *testing.T) {
	srv, _ := newServer(t)
	s := NewSession(New(srv.URL, srv.Client()), &MemoryTokenStore{})

	err := s.Login(context.Background(), "nobody@x.com", "secret1")
	require.True(t, IsUnauthorized(err))
	assert.Equal(t, "Invalid email or password", err.Error())
	assert.False(t, s.State().LoggedIn())
}

func TestSession_BookActions(t *testing.T) {
	srv, c := newServer(t)
	seedAdmin(t, c)
	ctx := context.Background()

	s := NewSession(New(srv.URL, srv.Client()), &MemoryTokenStore{})
	_, err := s.SubmitBook(ctx, BookInput{Title: "Dune"})
	require.ErrorIs(t, err, ErrNotLoggedIn)

	require.NoError(t, s.Login(ctx, "root@x.com", "rootpw1"))
	require.True(t, s.State().IsAdmin())

	dune, err := s.SubmitBook(ctx, BookInput{Title: "Dune"})
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultAuthor, dune.Author)
	_, err = s.SubmitBook(ctx, BookInput{Title: "Neuromancer", Author: "Gibson"})
	require.NoError(t, err)

	require.NoError(t, s.FetchBooks(ctx))
	books := s.State().Books
	require.Len(t, books, 2)
	assert.Equal(t, "Neuromancer", books[0].Title)

	title := "Dune Messiah"
	upd, err := s.UpdateBook(ctx, dune.ID, BookUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, upd.Title)
	assert.Equal(t, title, s.State().Books[1].Title)

	require.NoError(t, s.SearchBooks(ctx, "messiah"))
	require.Len(t, s.State().Books, 1)

	require.NoError(t, s.FetchBooks(ctx))
	require.NoError(t, s.DeleteBook(ctx, dune.ID))
	assert.Len(t, s.State().Books, 1)

	err = s.DeleteBook(ctx, dune.ID)
	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusNotFound, ae.Status)
	assert.True(t, s.State().LoggedIn())
}

func TestSession_NonAdminForbidden(t *testing.T) {
	srv, _ := newServer(t)
	ctx := context.Background()

	s := NewSession(New(srv.URL, srv.Client()), &MemoryTokenStore{})
	require.NoError(t, s.Register(ctx, "Ann", "a@x.com", "secret1"))

	_, err := s.SubmitBook(ctx, BookInput{Title: "Dune"})
	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusForbidden, ae.Status)
	assert.True(t, s.State().LoggedIn())
}

func TestSession_AssignRole(t *testing.T) {
	srv, c := newServer(t)
	seedAdmin(t, c)
	ctx := context.Background()

	ann := NewSession(New(srv.URL, srv.Client()), &MemoryTokenStore{})
	require.NoError(t, ann.Register(ctx, "Ann", "a@x.com", "secret1"))

	root := NewSession(New(srv.URL, srv.Client()), &MemoryTokenStore{})
	require.NoError(t, root.Login(ctx, "root@x.com", "rootpw1"))

	u, err := root.AssignRole(ctx, ann.State().User.ID, entity.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, u.Role)

	require.NoError(t, ann.Restore(ctx))
	assert.True(t, ann.State().IsAdmin())
}

func TestState_IsSnapshot(t *testing.T) {
	s := NewSession(New("http://unused", nil), &MemoryTokenStore{})
	s.signIn("tok", entity.PublicUser{ID: "1", Name: "Ann"})
	s.setBooks([]entity.Book{{ID: "b1"}})

	st := s.State()
	st.User.Name = "Mallory"
	st.Books[0].ID = "changed"

	assert.Equal(t, "Ann", s.State().User.Name)
	assert.Equal(t, "b1", s.State().Books[0].ID)
}
