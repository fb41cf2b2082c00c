package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/devconnector/devconnector-go/internal/avatar"
	"github.com/devconnector/devconnector-go/internal/model"
	"github.com/devconnector/devconnector-go/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("Invalid Credentials")
	ErrNameRequired       = errors.New("Name is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrEmailTaken         = errors.New("User already exists")
	ErrUserNotFound       = errors.New("User not found")
)

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// TokenIssuer issues signed tokens for authenticated accounts.
type TokenIssuer interface {
	Issue(accountID string) (string, error)
}

// timingPassword is hashed once so that unknown emails cost one comparison too.
const timingPassword = "timing-equalization-password"

// AuthService handles registration, credential verification and token issuance.
type AuthService struct {
	repo   repository.UserRepository
	hasher PasswordHasher
	tokens TokenIssuer

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register creates a new account and returns a token for it.
func (s *AuthService) Register(ctx context.Context, req model.CreateUserRequest) (model.TokenResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.TokenResponse{}, ErrNameRequired
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return model.TokenResponse{}, ErrEmailRequired
	}
	if req.Password == "" {
		return model.TokenResponse{}, ErrPasswordRequired
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.TokenResponse{}, err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Avatar:       avatar.Gravatar(email),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.TokenResponse{}, ErrEmailTaken
		}
		return model.TokenResponse{}, fmt.Errorf("creating user: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("user_id", user.ID).Msg("user registered")

	return s.issue(user.ID)
}

// Login verifies the credentials and returns a token for the account.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.TokenResponse, error) {
	userID, err := s.VerifyCredentials(ctx, req.Email, req.Password)
	if err != nil {
		return model.TokenResponse{}, err
	}
	return s.issue(userID)
}

// VerifyCredentials returns the id of the account identified by email if
// password matches its stored hash. Unknown emails and wrong passwords both
// yield ErrInvalidCredentials; only the log records which one it was.
func (s *AuthService) VerifyCredentials(ctx context.Context, email, password string) (string, error) {
	log := zerolog.Ctx(ctx)
	email = strings.TrimSpace(email)

	if email == "" || password == "" {
		log.Warn().Msg("login rejected: empty email or password")
		return "", ErrInvalidCredentials
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.equalizeTiming(password)
			log.Warn().Msg("login rejected: unknown email")
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("looking up user: %w", err)
	}

	match, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("verifying password for user %s: %w", user.ID, err)
	}
	if !match {
		log.Warn().Str("user_id", user.ID).Msg("login rejected: password mismatch")
		return "", ErrInvalidCredentials
	}

	return user.ID, nil
}

// CurrentUser returns the account without its credential fields.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (model.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrUserNotFound
		}
		return model.UserResponse{}, err
	}

	return model.NewUserResponse(user), nil
}

func (s *AuthService) issue(userID string) (model.TokenResponse, error) {
	token, err := s.tokens.Issue(userID)
	if err != nil {
		return model.TokenResponse{}, fmt.Errorf("issuing token: %w", err)
	}
	return model.TokenResponse{Token: token}, nil
}

func (s *AuthService) equalizeTiming(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash(timingPassword)
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}
