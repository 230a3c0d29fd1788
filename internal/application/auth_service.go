package application

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/library-catalog/internal/domain/entity"
	repo "github.com/oksasatya/library-catalog/internal/domain/repository"
	"github.com/oksasatya/library-catalog/pkg/helpers"
	"github.com/oksasatya/library-catalog/pkg/mailer"
)

// MinPasswordLength is counted in characters, not bytes.
const MinPasswordLength = 6

type AuthService struct {
	Users   repo.UserRepository
	Hasher  PasswordHasher
	Tokens  TokenService
	Mail    EmailPublisher // optional
	AppName string
	Logger  *logrus.Logger
}

func NewAuthService(users repo.UserRepository, hasher PasswordHasher, tokens TokenService, mail EmailPublisher, logger *logrus.Logger) *AuthService {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &AuthService{Users: users, Hasher: hasher, Tokens: tokens, Mail: mail, Logger: logger}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
}

// Register creates a regular user and signs a token for it. Any role the
// caller asked for is ignored.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if strings.TrimSpace(in.Name) == "" || in.Email == "" || in.Password == "" {
		return nil, invalid("All fields are required")
	}
	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		return nil, invalid("Password must be at least 6 characters", "password", "must be at least 6 characters")
	}

	if _, err := s.Users.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{Name: in.Name, Email: in.Email, Password: hash, Role: entity.RoleUser}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	s.Logger.WithField("user_id", u.ID).Info("user registered")
	s.sendWelcome(ctx, u)
	return res, nil
}

// Login checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, invalid("Email and password are required")
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.Hasher.Verify(password, u.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(u)
}

// Authenticate resolves a bearer token to the current user record, without
// the password digest.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	claims, err := s.Tokens.Verify(token)
	if err != nil {
		if errors.Is(err, helpers.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	u.Password = ""
	return u, nil
}

// AssignRole changes the role of an existing user.
func (s *AuthService) AssignRole(ctx context.Context, userID string, role entity.Role) (*entity.User, error) {
	if !role.Valid() {
		return nil, invalid("Role must be user or admin", "role", "must be one of user, admin")
	}
	u, err := s.Users.UpdateRole(ctx, userID, role)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNoSuchUser
		}
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "role": role}).Info("role assigned")
	return u, nil
}

// EnsureAdmin creates the bootstrap admin or promotes the existing account
// with that email. It reports whether a new account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, in RegisterInput) (*entity.User, bool, error) {
	existing, err := s.Users.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		if existing.IsAdmin() {
			return existing, false, nil
		}
		u, err := s.AssignRole(ctx, existing.ID, entity.RoleAdmin)
		return u, false, err
	case !errors.Is(err, repo.ErrNotFound):
		return nil, false, err
	}

	if strings.TrimSpace(in.Name) == "" || in.Email == "" || in.Password == "" {
		return nil, false, invalid("All fields are required")
	}
	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		return nil, false, invalid("Password must be at least 6 characters")
	}
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, false, err
	}
	u := &entity.User{Name: in.Name, Email: in.Email, Password: hash, Role: entity.RoleAdmin}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, false, ErrDuplicateEmail
		}
		return nil, false, err
	}
	return u, true, nil
}

func (s *AuthService) issue(u *entity.User) (*AuthResult, error) {
	tok, exp, err := s.Tokens.Issue(u.ID, string(u.Role))
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("issue token failed")
		return nil, err
	}
	return &AuthResult{Token: tok, ExpiresAt: exp, User: u}, nil
}

// sendWelcome never fails the caller; queue errors are only logged.
func (s *AuthService) sendWelcome(ctx context.Context, u *entity.User) {
	if s.Mail == nil {
		return
	}
	job := mailer.NewWelcomeJob(s.AppName, u.Name, u.Email)
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := s.Mail.PublishJSON(c, job); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("enqueue welcome email failed")
	}
}
