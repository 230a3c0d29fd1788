package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/library-catalog/config"
	"github.com/oksasatya/library-catalog/internal/application"
	"github.com/oksasatya/library-catalog/internal/container"
	"github.com/oksasatya/library-catalog/internal/domain/entity"
	"github.com/oksasatya/library-catalog/pkg/helpers"
	"github.com/oksasatya/library-catalog/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

type testApp struct {
	engine *gin.Engine
	c      *container.Container
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cfg := &config.Config{
		AppName:             "library-catalog",
		StoreDriver:         config.DriverMemory,
		JWTSecret:           "test-secret",
		JWTTTL:              time.Hour,
		RequestTimeout:      5 * time.Second,
		CORSAllowedOrigins:  "http://localhost:3000",
		DebugMetricsEnabled: true,
	}
	c, err := container.NewWithStores(cfg, helpers.NewDiscardLogger(), container.MemoryStores())
	require.NoError(t, err)
	return &testApp{engine: NewEngine(c), c: c}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// adminToken seeds an admin directly and returns a token for it.
func (a *testApp) adminToken(t *testing.T) string {
	t.Helper()
	_, _, err := a.c.AuthService.EnsureAdmin(context.Background(), application.RegisterInput{
		Name: "Root", Email: "root@x.com", Password: "rootpw1",
	})
	require.NoError(t, err)
	res, err := a.c.AuthService.Login(context.Background(), "root@x.com", "rootpw1")
	require.NoError(t, err)
	return res.Token
}

type authResp struct {
	Message string            `json:"message"`
	Token   string            `json:"token"`
	User    entity.PublicUser `json:"user"`
}

type bookResp struct {
	Message string      `json:"message"`
	Book    entity.Book `json:"book"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestScenario_RegisterLogin(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Ann", "email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reg := decode[authResp](t, w)
	assert.Equal(t, "User registered successfully", reg.Message)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, entity.RoleUser, reg.User.Role)
	assert.NotContains(t, w.Body.String(), "password")

	w = app.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "a@x.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", decode[gin.H](t, w)["message"])

	// tokens are second-granular; the jti keeps them distinct
	w = app.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "a@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	login := decode[authResp](t, w)
	assert.Equal(t, "Login successful", login.Message)
	assert.NotEqual(t, reg.Token, login.Token)

	a, err := app.c.JWT.Verify(reg.Token)
	require.NoError(t, err)
	b, err := app.c.JWT.Verify(login.Token)
	require.NoError(t, err)
	assert.Equal(t, a.UserID, b.UserID)
	assert.Equal(t, reg.User.ID, b.UserID)

	w = app.do(t, http.MethodGet, "/api/auth/verify", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, reg.User, decode[struct {
		User entity.PublicUser `json:"user"`
	}](t, w).User)
}

func TestRegister_Validation(t *testing.T) {
	app := newTestApp(t)

	cases := []struct {
		name string
		body any
		msg  string
	}{
		{"missing name", gin.H{"email": "a@x.com", "password": "secret1"}, "All fields are required"},
		{"empty body", nil, "All fields are required"},
		{"short password", gin.H{"name": "Ann", "email": "a@x.com", "password": "abc"}, "Password must be at least 6 characters"},
		{"blank name", gin.H{"name": "   ", "email": "a@x.com", "password": "secret1"}, "All fields are required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := app.do(t, http.MethodPost, "/api/auth/register", "", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.msg, decode[gin.H](t, w)["message"])
		})
	}
}

func TestRegister_DuplicateEmailAndIgnoredRole(t *testing.T) {
	app := newTestApp(t)

	body := gin.H{"name": "Ann", "email": "a@x.com", "password": "secret1", "role": "admin"}
	w := app.do(t, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, entity.RoleUser, decode[authResp](t, w).User.Role)

	w = app.do(t, http.MethodPost, "/api/auth/register", "", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already registered", decode[gin.H](t, w)["message"])
}

func TestScenario_BookDefaultsAndGet(t *testing.T) {
	app := newTestApp(t)
	tok := app.adminToken(t)

	w := app.do(t, http.MethodPost, "/api/books", tok, gin.H{"title": "Dune"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[bookResp](t, w)
	assert.Equal(t, "Book added successfully", created.Message)
	assert.Equal(t, "Unknown", created.Book.Author)
	assert.Equal(t, "", created.Book.Description)

	w = app.do(t, http.MethodGet, "/api/books/"+created.Book.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[entity.Book](t, w)
	assert.Equal(t, created.Book.ID, got.ID)
	assert.Equal(t, created.Book.Title, got.Title)
	assert.Equal(t, created.Book.Author, got.Author)
	assert.True(t, created.Book.CreatedAt.Equal(got.CreatedAt))

	w = app.do(t, http.MethodGet, "/api/books", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]entity.Book](t, w), 1)
}

func TestScenario_DeleteTwice(t *testing.T) {
	app := newTestApp(t)
	tok := app.adminToken(t)

	w := app.do(t, http.MethodPost, "/api/books", tok, gin.H{"title": "Dune"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[bookResp](t, w).Book.ID

	w = app.do(t, http.MethodDelete, "/api/books/"+id, tok, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Book deleted successfully", decode[gin.H](t, w)["message"])

	w = app.do(t, http.MethodDelete, "/api/books/"+id, tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Book not found", decode[gin.H](t, w)["message"])
}

func TestUserTokenCannotCreateBooks(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Ann", "email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	tok := decode[authResp](t, w).Token

	w = app.do(t, http.MethodPost, "/api/books", tok, gin.H{"title": "Dune"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied. Admin only.", decode[gin.H](t, w)["message"])

	w = app.do(t, http.MethodGet, "/api/books", "", nil)
	assert.Empty(t, decode[[]entity.Book](t, w))
}

func TestProtectedRoutes_Unauthorized(t *testing.T) {
	app := newTestApp(t)

	expired, _, err := app.c.JWT.IssueWithTTL(helpers.Claims{UserID: "someone"}, -time.Minute)
	require.NoError(t, err)
	ghost, _, err := app.c.JWT.Issue("00000000-0000-0000-0000-000000000000", "admin")
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"missing": "",
		"garbage": "not-a-token",
		"expired": expired,
		"ghost":   ghost,
	} {
		t.Run(name, func(t *testing.T) {
			w := app.do(t, http.MethodPost, "/api/books", tok, gin.H{"title": "Dune"})
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "unauthorized", decode[gin.H](t, w)["message"])
		})
	}
}

func TestUpdateBook(t *testing.T) {
	app := newTestApp(t)
	tok := app.adminToken(t)

	w := app.do(t, http.MethodPost, "/api/books", tok, gin.H{"title": "Dune", "author": "Herbert", "description": "spice"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[bookResp](t, w).Book.ID

	w = app.do(t, http.MethodPut, "/api/books/"+id, tok, gin.H{"description": "sand"})
	require.Equal(t, http.StatusOK, w.Code)
	upd := decode[bookResp](t, w)
	assert.Equal(t, "Book updated successfully", upd.Message)
	assert.Equal(t, "Dune", upd.Book.Title)
	assert.Equal(t, "Herbert", upd.Book.Author)
	assert.Equal(t, "sand", upd.Book.Description)

	w = app.do(t, http.MethodPut, "/api/books/"+id, tok, gin.H{"title": " "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPut, "/api/books/missing", tok, gin.H{"title": "X"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchBooks(t *testing.T) {
	app := newTestApp(t)
	tok := app.adminToken(t)

	for _, title := range []string{"Dune", "Dune Messiah", "Neuromancer"} {
		w := app.do(t, http.MethodPost, "/api/books", tok, gin.H{"title": title})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := app.do(t, http.MethodGet, "/api/books/search?q=dune", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]entity.Book](t, w), 2)

	w = app.do(t, http.MethodGet, "/api/books/search?q=", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignRole(t *testing.T) {
	app := newTestApp(t)
	tok := app.adminToken(t)

	w := app.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Ann", "email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	ann := decode[authResp](t, w)

	w = app.do(t, http.MethodPatch, "/api/users/"+ann.User.ID+"/role", ann.Token, gin.H{"role": "admin"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodPatch, "/api/users/"+ann.User.ID+"/role", tok, gin.H{"role": "owner"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPatch, "/api/users/nobody/role", tok, gin.H{"role": "admin"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", decode[gin.H](t, w)["message"])

	w = app.do(t, http.MethodPatch, "/api/users/"+ann.User.ID+"/role", tok, gin.H{"role": "admin"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entity.RoleAdmin, decode[authResp](t, w).User.Role)

	// the old token now carries admin rights since the role is read from the store
	w = app.do(t, http.MethodPost, "/api/books", ann.Token, gin.H{"title": "Dune"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

type memCovers struct {
	mu      sync.Mutex
	objects map[string][]byte
	removed []string
}

func (m *memCovers) Upload(_ context.Context, bookID, ext, _ string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	url := fmt.Sprintf("https://storage.googleapis.com/covers/%s/%d%s", bookID, len(m.objects), ext)
	m.objects[url] = data
	return url, nil
}

func (m *memCovers) Remove(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, url)
	m.removed = append(m.removed, url)
	return nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func (a *testApp) uploadCover(t *testing.T, token, id, field, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/books/"+id+"/cover", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) createBook(t *testing.T, token, title string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/books", token, gin.H{"title": title})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[bookResp](t, w).Book.ID
}

func TestUploadCover_StorageDisabled(t *testing.T) {
	app := newTestApp(t)
	tok := app.adminToken(t)
	id := app.createBook(t, tok, "Dune")

	rec := app.uploadCover(t, tok, id, "cover", "dune.png", pngHeader)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "cover storage not configured", decode[gin.H](t, rec)["message"])
}

func TestUploadCover(t *testing.T) {
	app := newTestApp(t)
	covers := &memCovers{objects: map[string][]byte{}}
	app.c.BookService.Covers = covers
	tok := app.adminToken(t)
	id := app.createBook(t, tok, "Dune")

	img := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 2048)...)
	rec := app.uploadCover(t, tok, id, "cover", "dune.png", img)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[bookResp](t, rec)
	assert.Equal(t, "Cover uploaded successfully", body.Message)
	require.NotEmpty(t, body.Book.CoverURL)
	assert.True(t, strings.HasSuffix(body.Book.CoverURL, ".png"), body.Book.CoverURL)
	assert.Equal(t, img, covers.objects[body.Book.CoverURL])

	w := app.do(t, http.MethodGet, "/api/books/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, body.Book.CoverURL, decode[entity.Book](t, w).CoverURL)

	// a replacement drops the previous object
	rec = app.uploadCover(t, tok, id, "cover", "dune.png", img)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{body.Book.CoverURL}, covers.removed)
}

func TestUploadCover_Rejections(t *testing.T) {
	app := newTestApp(t)
	covers := &memCovers{objects: map[string][]byte{}}
	app.c.BookService.Covers = covers
	tok := app.adminToken(t)
	id := app.createBook(t, tok, "Dune")

	cases := []struct {
		name     string
		field    string
		filename string
		data     []byte
		msg      string
	}{
		{"not an image", "cover", "x.png", []byte("just some text pretending to be a png"), "Cover must be a JPEG, PNG or WebP image"},
		{"missing part", "image", "dune.png", pngHeader, "Cover file is required"},
		{"over the limit", "cover", "big.png", append(append([]byte{}, pngHeader...), make([]byte, application.MaxCoverBytes)...), "Cover must be at most 5 MiB"},
		{"over the body cap", "cover", "huge.png", append(append([]byte{}, pngHeader...), make([]byte, 7<<20)...), "Cover must be at most 5 MiB"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := app.uploadCover(t, tok, id, tc.field, tc.filename, tc.data)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.msg, decode[gin.H](t, rec)["message"])
		})
	}
	assert.Empty(t, covers.objects)

	rec := app.uploadCover(t, tok, "missing-id", "cover", "dune.png", pngHeader)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	w := app.do(t, http.MethodGet, "/api/books/"+id, "", nil)
	assert.Empty(t, decode[entity.Book](t, w).CoverURL)
}

func TestHealthBannerAndDebug(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[gin.H](t, w)["status"])

	w = app.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "running")

	app.do(t, http.MethodGet, "/api/auth/verify", "", nil)
	w = app.do(t, http.MethodGet, "/api/debug/vars", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "auth_failures")

	w = app.do(t, http.MethodGet, "/api/debug/auth-failures", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	counts := decode[map[string]int64](t, w)
	assert.GreaterOrEqual(t, counts["missing_token"], int64(1))
	assert.Contains(t, counts, "forbidden")

	w = app.do(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
