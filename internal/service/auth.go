package service

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"jwtauthenticator/internal/crypto"
	"jwtauthenticator/internal/models"
	"jwtauthenticator/internal/repository"
	"jwtauthenticator/internal/token"
)

var ( // Define custom errors
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidCredentials deliberately covers both "user not found" and
	// "wrong password" so responses don't reveal which usernames exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("password does not meet requirements")
)

// SessionTokens is everything Login produces for the client: the identity
// plus an access/refresh token pair with their CSRF companions.
type SessionTokens struct {
	User    models.PublicUser
	Access  *token.Issued
	Refresh *token.Issued
}

type AuthService interface {
	Register(username, password string) (*models.User, error)
	// Login verifies credentials and issues a fresh access token plus a
	// refresh token.
	Login(username, password string) (*SessionTokens, error)
	// FreshLogin re-verifies credentials mid-session and issues only a fresh
	// access token, leaving the existing refresh token alone.
	FreshLogin(username, password string) (*SessionTokens, error)
	// Refresh mints a new access token for the identity carried by a decoded
	// refresh token. The result is never fresh.
	Refresh(claims *models.Claims) (*token.Issued, error)
	GetUser(username string) (*models.User, error)
	ListUsers() ([]models.PublicUser, error)
}

type authService struct {
	repo   repository.AuthRepository
	hasher *crypto.PasswordHasher
	tokens *token.Manager
	logger *zap.Logger
}

func NewAuthService(repo repository.AuthRepository, hasher *crypto.PasswordHasher, tokens *token.Manager, logger *zap.Logger) AuthService {
	return &authService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

func (s *authService) Register(username, password string) (*models.User, error) {
	if username == "" {
		return nil, ErrInvalidPassword
	}
	if !passwordMeetsPolicy(password) {
		return nil, ErrInvalidPassword
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: passwordHash,
	}

	// No pre-check against the store: the UNIQUE constraint decides races
	// between concurrent registrations of the same username.
	if err := s.repo.CreateUser(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, ErrUserAlreadyExists
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", zap.String("username", user.Username))
	return user, nil
}

func (s *authService) Login(username, password string) (*SessionTokens, error) {
	user, err := s.verifyCredentials(username, password)
	if err != nil {
		return nil, err
	}

	access, err := s.tokens.Issue(user.Username, models.TokenKindAccess, true)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refresh, err := s.tokens.Issue(user.Username, models.TokenKindRefresh, false)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	s.logger.Info("User logged in", zap.String("username", user.Username))
	return &SessionTokens{User: user.Public(), Access: access, Refresh: refresh}, nil
}

func (s *authService) FreshLogin(username, password string) (*SessionTokens, error) {
	user, err := s.verifyCredentials(username, password)
	if err != nil {
		return nil, err
	}

	access, err := s.tokens.Issue(user.Username, models.TokenKindAccess, true)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	s.logger.Info("User re-authenticated", zap.String("username", user.Username))
	return &SessionTokens{User: user.Public(), Access: access}, nil
}

func (s *authService) Refresh(claims *models.Claims) (*token.Issued, error) {
	// Identity comes from the signed refresh token; freshness is always
	// downgraded because no password was checked in this request.
	access, err := s.tokens.Issue(claims.Username, models.TokenKindAccess, false)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	return access, nil
}

func (s *authService) GetUser(username string) (*models.User, error) {
	return s.repo.GetUserByUsername(username)
}

func (s *authService) ListUsers() ([]models.PublicUser, error) {
	users, err := s.repo.ListUsers()
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	public := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}
	return public, nil
}

func (s *authService) verifyCredentials(username, password string) (*models.User, error) {
	user, err := s.repo.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Failed to get user by username", zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// passwordMeetsPolicy enforces the registration password rules: at least 8
// characters with an upper-case letter, a lower-case letter, a digit and a
// special character.
func passwordMeetsPolicy(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			special = true
		}
	}
	return upper && lower && digit && special
}
