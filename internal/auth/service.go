package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Akshat120/Book-Review-API/internal/config"
	"github.com/Akshat120/Book-Review-API/internal/database"
	"github.com/Akshat120/Book-Review-API/internal/entities"
)

var (
	ErrUsernameTaken      = errors.New("Username already registered.")
	ErrInvalidCredentials = errors.New("Invalid username or password")
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	CreateUser(ctx context.Context, name, username, passwordHash string) (*entities.User, error)
	FindUserByUsername(ctx context.Context, username string) (*entities.User, error)
}

// Service handles signup and login.
type Service struct {
	users  UserRepository
	issuer TokenIssuer
	config config.Auth

	dummyOnce sync.Once
	dummyHash string
}

// NewService creates a new authentication service.
func NewService(users UserRepository, issuer TokenIssuer, cfg config.Auth) *Service {
	return &Service{
		users:  users,
		issuer: issuer,
		config: cfg,
	}
}

type SignupInput struct {
	Name     string
	Username string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	User  *entities.User
	Token Token
}

// Signup validates and registers a new user.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*entities.User, error) {
	if err := ValidateSignup(in.Name, in.Username, in.Password); err != nil {
		return nil, err
	}

	_, err := s.users.FindUserByUsername(ctx, in.Username)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := HashPassword(in.Password, s.config.BcryptCost)
	if err != nil {
		if errors.Is(err, ErrPasswordTooLong) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, in.Name, in.Username, passwordHash)
	if err != nil {
		// Lost a race with a concurrent signup for the same username.
		if errors.Is(err, database.ErrConstraintViolation) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login checks credentials and issues a session token. Unknown usernames and
// wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := ValidateLogin(in.Username, in.Password); err != nil {
		return nil, err
	}

	user, err := s.users.FindUserByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// Unknown usernames take the same bcrypt path as wrong passwords.
			_ = CheckPassword(in.Password, s.placeholderHash())
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := CheckPassword(in.Password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password: %w", err)
	}

	token, err := s.issuer.Issue(ctx, Identity{UserID: user.ID, Username: user.Username})
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	return &LoginResult{User: user, Token: token}, nil
}

func (s *Service) placeholderHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = HashPassword("placeholder-Passw0rd", s.config.BcryptCost)
	})
	return s.dummyHash
}
