// Package repotest provides in-memory repositories for tests.
package repotest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devconnector/devconnector-go/internal/model"
	"github.com/devconnector/devconnector-go/internal/repository"
)

// Users is an in-memory repository.UserRepository. A non-nil Err is
// returned from every call.
type Users struct {
	mu   sync.Mutex
	byID map[string]model.User
	Err  error
}

func NewUsers() *Users {
	return &Users{byID: make(map[string]model.User)}
}

func (r *Users) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}
	for _, u := range r.byID {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	r.byID[user.ID] = *user
	return nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	for _, u := range r.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *Users) GetByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

// Put stores user as is, replacing any account with the same ID.
func (r *Users) Put(user model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[user.ID] = user
}

// Delete removes the account with the given ID.
func (r *Users) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
}

// Profiles is an in-memory repository.ProfileRepository.
type Profiles struct {
	mu     sync.Mutex
	byUser map[string]model.Profile
	Err    error
}

func NewProfiles() *Profiles {
	return &Profiles{byUser: make(map[string]model.Profile)}
}

func (r *Profiles) GetByUser(_ context.Context, userID string) (*model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	p, ok := r.byUser[userID]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	return &p, nil
}

// Upsert merges update into the stored profile the way the real stores do.
func (r *Profiles) Upsert(_ context.Context, update *model.ProfileUpdate) (*model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}

	now := time.Now().UTC()
	stored, ok := r.byUser[update.UserID]
	if !ok {
		stored = model.Profile{ID: uuid.NewString(), UserID: update.UserID, CreatedAt: now}
	}

	stored.Status = update.Status
	stored.Skills = append([]string{}, update.Skills...)
	stored.Website = update.Website
	stored.Social = update.Social
	for _, f := range []struct {
		in  *string
		out *string
	}{
		{update.Company, &stored.Company},
		{update.Location, &stored.Location},
		{update.Bio, &stored.Bio},
		{update.GitHubUsername, &stored.GitHubUsername},
	} {
		if f.in != nil {
			*f.out = *f.in
		}
	}
	stored.UpdatedAt = now

	r.byUser[update.UserID] = stored
	return &stored, nil
}

// NewStore returns a Store over fresh in-memory repositories.
func NewStore() (*repository.Store, *Users, *Profiles) {
	users, profiles := NewUsers(), NewProfiles()
	return &repository.Store{Users: users, Profiles: profiles}, users, profiles
}
