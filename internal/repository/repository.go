package repository

import (
	"context"
	"errors"

	"github.com/devconnector/devconnector-go/internal/model"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrDuplicateEmail  = errors.New("email already exists")
	ErrProfileNotFound = errors.New("profile not found")
)

// UserRepository handles account persistence.
type UserRepository interface {
	// Create inserts user and sets its generated ID and creation time.
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// ProfileRepository handles profile persistence. Profiles are keyed by user.
type ProfileRepository interface {
	GetByUser(ctx context.Context, userID string) (*model.Profile, error)
	// Upsert creates the user's profile or applies update to it and returns
	// the stored version. CreatedAt is only set on insert.
	Upsert(ctx context.Context, update *model.ProfileUpdate) (*model.Profile, error)
}

// Store bundles the repositories of one backend.
type Store struct {
	Users    UserRepository
	Profiles ProfileRepository

	migrate func(ctx context.Context) error
	close   func(ctx context.Context) error
}

// Migrate brings the backend schema (indexes or tables) up to date.
func (s *Store) Migrate(ctx context.Context) error {
	if s.migrate == nil {
		return nil
	}
	return s.migrate(ctx)
}

// Close releases the backend connection pool.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}
