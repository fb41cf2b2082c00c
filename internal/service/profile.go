package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/devconnector/devconnector-go/internal/model"
	"github.com/devconnector/devconnector-go/internal/repository"
	"github.com/devconnector/devconnector-go/internal/urlnorm"
)

var (
	ErrProfileNotFound = errors.New("There is no profile for this user")
	ErrStatusRequired  = errors.New("Status is required")
	ErrSkillsRequired  = errors.New("Skills is required")
)

// InvalidLinkError reports a profile link that could not be normalized.
type InvalidLinkError struct {
	Field string
}

func (e *InvalidLinkError) Error() string {
	return fmt.Sprintf("%s is not a valid URL", e.Field)
}

// ProfileService handles profile lookups and upserts.
type ProfileService struct {
	profiles repository.ProfileRepository
	users    repository.UserRepository
}

// NewProfileService creates a new ProfileService.
func NewProfileService(profiles repository.ProfileRepository, users repository.UserRepository) *ProfileService {
	return &ProfileService{profiles: profiles, users: users}
}

// Me returns the user's own profile with their name and avatar.
func (s *ProfileService) Me(ctx context.Context, userID string) (model.ProfileResponse, error) {
	profile, err := s.profiles.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return model.ProfileResponse{}, ErrProfileNotFound
		}
		return model.ProfileResponse{}, err
	}

	return s.withOwner(ctx, profile)
}

// Upsert creates the user's profile or updates it. Optional fields left out
// of req keep their stored values.
func (s *ProfileService) Upsert(ctx context.Context, userID string, req model.ProfileRequest) (model.ProfileResponse, error) {
	if strings.TrimSpace(req.Status) == "" {
		return model.ProfileResponse{}, ErrStatusRequired
	}
	if len(req.Skills) == 0 {
		return model.ProfileResponse{}, ErrSkillsRequired
	}

	update, err := buildUpdate(userID, req)
	if err != nil {
		return model.ProfileResponse{}, err
	}

	stored, err := s.profiles.Upsert(ctx, update)
	if err != nil {
		return model.ProfileResponse{}, fmt.Errorf("upserting profile: %w", err)
	}

	return s.withOwner(ctx, stored)
}

func (s *ProfileService) withOwner(ctx context.Context, profile *model.Profile) (model.ProfileResponse, error) {
	owner, err := s.users.GetByID(ctx, profile.UserID)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return model.ProfileResponse{}, err
	}
	return model.NewProfileResponse(profile, owner), nil
}

// buildUpdate maps a request onto a profile update, normalizing every link.
func buildUpdate(userID string, req model.ProfileRequest) (*model.ProfileUpdate, error) {
	u := &model.ProfileUpdate{
		UserID:         userID,
		Status:         strings.TrimSpace(req.Status),
		Skills:         []string(req.Skills),
		Company:        trimmed(req.Company),
		Location:       trimmed(req.Location),
		Bio:            req.Bio,
		GitHubUsername: trimmed(req.GitHubUsername),
	}

	links := []struct {
		field string
		in    string
		out   *string
	}{
		{"website", req.Website, &u.Website},
		{"youtube", req.YouTube, &u.Social.YouTube},
		{"twitter", req.Twitter, &u.Social.Twitter},
		{"facebook", req.Facebook, &u.Social.Facebook},
		{"linkedin", req.LinkedIn, &u.Social.LinkedIn},
		{"instagram", req.Instagram, &u.Social.Instagram},
	}
	for _, l := range links {
		normalized, err := urlnorm.Normalize(l.in)
		if err != nil {
			return nil, &InvalidLinkError{Field: l.field}
		}
		*l.out = normalized
	}

	return u, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
