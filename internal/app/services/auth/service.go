package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	domainauth "staybook/internal/domain/auth"
	domainuser "staybook/internal/domain/user"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrPasswordTooShort   = errors.New("auth: password must be at least 8 characters")
	ErrNotConfigured      = errors.New("auth: service dependencies missing")
)

// PasswordHasher is an injected capability; the engine never commits to a
// specific algorithm.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenGenerator interface {
	NewToken() (string, error)
}

// Service is the identity collaborator: it registers users, issues bearer
// sessions, and resolves guest/host existence for the reservation engine.
type Service struct {
	Users      domainuser.Repository
	Sessions   domainauth.SessionStore
	Passwords  PasswordHasher
	Tokens     TokenGenerator
	SessionTTL time.Duration
	Logger     *slog.Logger
}

type RegisterParams struct {
	Email      string
	Name       string
	Password   string
	WantToHost bool
}

type LoginParams struct {
	Email    string
	Password string
}

type AuthResult struct {
	User  *domainuser.User
	Token string
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	email := domainuser.NormalizeEmail(params.Email)
	name := strings.TrimSpace(params.Name)
	if email == "" {
		return nil, domainuser.ErrEmailRequired
	}
	if name == "" {
		return nil, domainuser.ErrNameRequired
	}
	if err := s.validatePassword(params.Password); err != nil {
		return nil, err
	}
	hash, err := s.Passwords.Hash(params.Password)
	if err != nil {
		return nil, err
	}
	roles := []domainuser.Role{domainuser.RoleGuest}
	if params.WantToHost {
		roles = append(roles, domainuser.RoleHost)
	}
	user, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(uuid.NewString()),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Roles:        roles,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Users.Save(ctx, user); err != nil {
		return nil, err
	}
	token, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user registered", "user_id", user.ID, "email", user.Email, "roles", user.Roles)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *Service) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	email := domainuser.NormalizeEmail(params.Email)
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.Passwords.Compare(user.PasswordHash, params.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if s.Sessions == nil {
		return ErrNotConfigured
	}
	return s.Sessions.Delete(ctx, domainauth.Token(strings.TrimSpace(token)))
}

// Resolve maps a bearer token to its user, rejecting expired sessions.
func (s *Service) Resolve(ctx context.Context, token string) (*domainuser.User, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	session, err := s.Sessions.Get(ctx, domainauth.Token(strings.TrimSpace(token)))
	if err != nil {
		return nil, err
	}
	if session.Expired(time.Now()) {
		_ = s.Sessions.Delete(ctx, session.Token)
		return nil, domainauth.ErrSessionNotFound
	}
	return s.Users.ByID(ctx, session.UserID)
}

func (s *Service) issueSession(ctx context.Context, user *domainuser.User) (string, error) {
	raw, err := s.Tokens.NewToken()
	if err != nil {
		return "", err
	}
	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	session, err := domainauth.NewSession(domainauth.CreateSessionParams{
		Token:  domainauth.Token(raw),
		UserID: user.ID,
		Roles:  user.Roles,
		TTL:    ttl,
		Now:    time.Now(),
	})
	if err != nil {
		return "", err
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return "", err
	}
	return raw, nil
}

func (s *Service) validatePassword(password string) error {
	if utf8.RuneCountInString(password) < 8 {
		return ErrPasswordTooShort
	}
	return nil
}

func (s *Service) ensureDependencies() error {
	if s.Users == nil || s.Sessions == nil || s.Passwords == nil || s.Tokens == nil {
		return ErrNotConfigured
	}
	return nil
}
