package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oksasatya/library-catalog/internal/domain/entity"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusUnauthorized
}

// Client is a thin JSON client for the catalog API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: httpClient}
}

// AuthResponse is returned by Register and Login.
type AuthResponse struct {
	Message string            `json:"message"`
	Token   string            `json:"token"`
	User    entity.PublicUser `json:"user"`
}

type BookInput struct {
	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	Description string `json:"description,omitempty"`
}

// BookUpdate leaves nil fields unchanged on the server.
type BookUpdate struct {
	Title       *string `json:"title,omitempty"`
	Author      *string `json:"author,omitempty"`
	Description *string `json:"description,omitempty"`
}

type bookEnvelope struct {
	Book entity.Book `json:"book"`
}

type userEnvelope struct {
	User entity.PublicUser `json:"user"`
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	in := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Verify resolves a token to its user.
func (c *Client) Verify(ctx context.Context, token string) (*entity.PublicUser, error) {
	var out userEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/auth/verify", token, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) ListBooks(ctx context.Context) ([]entity.Book, error) {
	var out []entity.Book
	if err := c.do(ctx, http.MethodGet, "/api/books", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetBook(ctx context.Context, id string) (*entity.Book, error) {
	var out entity.Book
	if err := c.do(ctx, http.MethodGet, "/api/books/"+url.PathEscape(id), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SearchBooks(ctx context.Context, q string) ([]entity.Book, error) {
	var out []entity.Book
	path := "/api/books/search?" + url.Values{"q": {q}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateBook(ctx context.Context, token string, in BookInput) (*entity.Book, error) {
	var out bookEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/books", token, in, &out); err != nil {
		return nil, err
	}
	return &out.Book, nil
}

func (c *Client) UpdateBook(ctx context.Context, token, id string, in BookUpdate) (*entity.Book, error) {
	var out bookEnvelope
	if err := c.do(ctx, http.MethodPut, "/api/books/"+url.PathEscape(id), token, in, &out); err != nil {
		return nil, err
	}
	return &out.Book, nil
}

func (c *Client) DeleteBook(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/books/"+url.PathEscape(id), token, nil, nil)
}

func (c *Client) AssignRole(ctx context.Context, token, userID string, role entity.Role) (*entity.PublicUser, error) {
	var out userEnvelope
	in := map[string]string{"role": string(role)}
	if err := c.do(ctx, http.MethodPatch, "/api/users/"+url.PathEscape(userID)+"/role", token, in, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var eb struct {
			Message string            `json:"message"`
			Errors  map[string]string `json:"errors"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil {
			apiErr.Message, apiErr.Fields = eb.Message, eb.Errors
		}
		return apiErr
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
