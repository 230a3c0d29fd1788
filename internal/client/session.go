package client

import (
	"context"
	"errors"
	"sync"

	"github.com/oksasatya/library-catalog/internal/domain/entity"
)

var ErrNotLoggedIn = errors.New("not logged in")

// State is a snapshot of the client's view: who is signed in and the last
// fetched book list.
type State struct {
	Token string
	User  *entity.PublicUser
	Books []entity.Book
}

func (s State) LoggedIn() bool { return s.Token != "" && s.User != nil }

func (s State) IsAdmin() bool { return s.LoggedIn() && s.User.Role == entity.RoleAdmin }

// Session is the client state store. State changes only through its
// actions; readers take snapshots with State.
type Session struct {
	api   *Client
	store TokenStore

	mu    sync.Mutex
	state State
}

func NewSession(api *Client, store TokenStore) *Session {
	return &Session{api: api, store: store}
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	st.Books = append([]entity.Book(nil), st.Books...)
	return st
}

// Restore loads the saved token and re-verifies it. A token the server
// rejects is discarded and the session is left signed out.
func (s *Session) Restore(ctx context.Context) error {
	token, err := s.store.Load()
	if err != nil {
		return err
	}
	if token == "" {
		s.signOut()
		return nil
	}
	u, err := s.api.Verify(ctx, token)
	if err != nil {
		if IsUnauthorized(err) {
			s.signOut()
			return s.store.Clear()
		}
		return err
	}
	s.signIn(token, *u)
	return nil
}

func (s *Session) Login(ctx context.Context, email, password string) error {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return s.accept(res)
}

func (s *Session) Register(ctx context.Context, name, email, password string) error {
	res, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	return s.accept(res)
}

func (s *Session) Logout() error {
	s.signOut()
	return s.store.Clear()
}

func (s *Session) FetchBooks(ctx context.Context) error {
	books, err := s.api.ListBooks(ctx)
	if err != nil {
		return err
	}
	s.setBooks(books)
	return nil
}

func (s *Session) SearchBooks(ctx context.Context, q string) error {
	books, err := s.api.SearchBooks(ctx, q)
	if err != nil {
		return err
	}
	s.setBooks(books)
	return nil
}

// Book fetches one book without touching the list.
func (s *Session) Book(ctx context.Context, id string) (*entity.Book, error) {
	return s.api.GetBook(ctx, id)
}

// SubmitBook creates a book and puts it at the head of the list.
func (s *Session) SubmitBook(ctx context.Context, in BookInput) (*entity.Book, error) {
	token, err := s.token()
	if err != nil {
		return nil, err
	}
	b, err := s.api.CreateBook(ctx, token, in)
	if err != nil {
		return nil, s.checkAuth(err)
	}
	s.mu.Lock()
	s.state.Books = append([]entity.Book{*b}, s.state.Books...)
	s.mu.Unlock()
	return b, nil
}

func (s *Session) UpdateBook(ctx context.Context, id string, in BookUpdate) (*entity.Book, error) {
	token, err := s.token()
	if err != nil {
		return nil, err
	}
	b, err := s.api.UpdateBook(ctx, token, id, in)
	if err != nil {
		return nil, s.checkAuth(err)
	}
	s.mu.Lock()
	for i := range s.state.Books {
		if s.state.Books[i].ID == id {
			s.state.Books[i] = *b
		}
	}
	s.mu.Unlock()
	return b, nil
}

func (s *Session) DeleteBook(ctx context.Context, id string) error {
	token, err := s.token()
	if err != nil {
		return err
	}
	if err := s.api.DeleteBook(ctx, token, id); err != nil {
		return s.checkAuth(err)
	}
	s.mu.Lock()
	kept := s.state.Books[:0]
	for _, b := range s.state.Books {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	s.state.Books = kept
	s.mu.Unlock()
	return nil
}

func (s *Session) AssignRole(ctx context.Context, userID string, role entity.Role) (*entity.PublicUser, error) {
	token, err := s.token()
	if err != nil {
		return nil, err
	}
	u, err := s.api.AssignRole(ctx, token, userID, role)
	if err != nil {
		return nil, s.checkAuth(err)
	}
	return u, nil
}

func (s *Session) accept(res *AuthResponse) error {
	s.signIn(res.Token, res.User)
	return s.store.Save(res.Token)
}

// checkAuth signs the session out when the server no longer accepts the
// token.
func (s *Session) checkAuth(err error) error {
	if IsUnauthorized(err) {
		s.signOut()
		_ = s.store.Clear()
	}
	return err
}

func (s *Session) token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Token == "" {
		return "", ErrNotLoggedIn
	}
	return s.state.Token, nil
}

func (s *Session) signIn(token string, u entity.PublicUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Token = token
	s.state.User = &u
}

func (s *Session) signOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Token = ""
	s.state.User = nil
}

func (s *Session) setBooks(books []entity.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Books = books
}
