package service

import (
	"context"
	"errors"
	"testing"

	"github.com/devconnector/devconnector-go/internal/model"
	"github.com/devconnector/devconnector-go/internal/repository/repotest"
)

func newTestProfileService() (*ProfileService, *repotest.Users, *repotest.Profiles) {
	users, profiles := repotest.NewUsers(), repotest.NewProfiles()
	users.Put(model.User{ID: "u1", Name: "Ann", Email: "a@x.com", Avatar: "https://www.gravatar.com/avatar/abc"})
	return NewProfileService(profiles, users), users, profiles
}

func TestProfileMe_NotFound(t *testing.T) {
	svc, _, _ := newTestProfileService()

	_, err := svc.Me(context.Background(), "u1")
	if err != ErrProfileNotFound {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestProfileUpsert_CreatesAndNormalizes(t *testing.T) {
	svc, _, _ := newTestProfileService()

	resp, err := svc.Upsert(context.Background(), "u1", model.ProfileRequest{
		Status:   "Developer",
		Skills:   model.SkillList{"Go", "SQL"},
		Website:  "example.com",
		Twitter:  "http://twitter.com/ann",
		Company:  ptr("  Acme  "),
		Location: ptr("Berlin"),
	})
	if err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}

	if resp.Website != "https://example.com" {
		t.Errorf("website = %q, want %q", resp.Website, "https://example.com")
	}
	if resp.Social.Twitter != "https://twitter.com/ann" {
		t.Errorf("twitter = %q, want %q", resp.Social.Twitter, "https://twitter.com/ann")
	}
	if resp.Company != "Acme" {
		t.Errorf("company = %q, want %q", resp.Company, "Acme")
	}
	if resp.User.Name != "Ann" || resp.User.ID != "u1" {
		t.Errorf("user = %+v, want the owner populated", resp.User)
	}
	if len(resp.Skills) != 2 {
		t.Errorf("skills = %v, want 2 entries", resp.Skills)
	}
}

func TestProfileUpsert_UpdateKeepsIdentity(t *testing.T) {
	svc, _, _ := newTestProfileService()
	ctx := context.Background()

	first, err := svc.Upsert(ctx, "u1", model.ProfileRequest{Status: "Junior", Skills: model.SkillList{"Go"}})
	if err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}
	second, err := svc.Upsert(ctx, "u1", model.ProfileRequest{Status: "Senior", Skills: model.SkillList{"Go", "Rust"}})
	if err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("profile id changed from %q to %q", first.ID, second.ID)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("created at changed from %v to %v", first.CreatedAt, second.CreatedAt)
	}

	me, err := svc.Me(ctx, "u1")
	if err != nil {
		t.Fatalf("Me() unexpected error: %v", err)
	}
	if me.Status != "Senior" {
		t.Errorf("status = %q, want %q", me.Status, "Senior")
	}
}

func TestProfileUpsert_OmittedFieldsKeepValues(t *testing.T) {
	svc, _, _ := newTestProfileService()
	ctx := context.Background()

	_, err := svc.Upsert(ctx, "u1", model.ProfileRequest{
		Status:         "Junior",
		Skills:         model.SkillList{"Go"},
		Company:        ptr("Acme"),
		Location:       ptr("Berlin"),
		Bio:            ptr("Gopher"),
		GitHubUsername: ptr("ann"),
		Website:        "acme.dev",
		Twitter:        "twitter.com/ann",
	})
	if err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}

	updated, err := svc.Upsert(ctx, "u1", model.ProfileRequest{
		Status: "Senior",
		Skills: model.SkillList{"Go", "SQL"},
	})
	if err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}

	if updated.Company != "Acme" || updated.Location != "Berlin" || updated.Bio != "Gopher" || updated.GitHubUsername != "ann" {
		t.Errorf("omitted fields were overwritten: %+v", updated)
	}
	if updated.Status != "Senior" {
		t.Errorf("status = %q, want %q", updated.Status, "Senior")
	}
	if updated.Website != "" {
		t.Errorf("website = %q, want it cleared when absent", updated.Website)
	}
	if updated.Social != (model.Social{}) {
		t.Errorf("social = %+v, want it replaced as a whole", updated.Social)
	}
}

func TestProfileUpsert_ExplicitEmptyClearsField(t *testing.T) {
	svc, _, _ := newTestProfileService()
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, "u1", model.ProfileRequest{Status: "Dev", Skills: model.SkillList{"Go"}, Company: ptr("Acme")}); err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}
	updated, err := svc.Upsert(ctx, "u1", model.ProfileRequest{Status: "Dev", Skills: model.SkillList{"Go"}, Company: ptr("")})
	if err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}

	if updated.Company != "" {
		t.Errorf("company = %q, want it cleared", updated.Company)
	}
}

func TestProfileUpsert_RequiredFields(t *testing.T) {
	svc, _, _ := newTestProfileService()

	tests := []struct {
		name string
		req  model.ProfileRequest
		want error
	}{
		{"missing status", model.ProfileRequest{Skills: model.SkillList{"Go"}}, ErrStatusRequired},
		{"blank status", model.ProfileRequest{Status: "  ", Skills: model.SkillList{"Go"}}, ErrStatusRequired},
		{"missing skills", model.ProfileRequest{Status: "Developer"}, ErrSkillsRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upsert(context.Background(), "u1", tt.req)
			if err != tt.want {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestProfileUpsert_InvalidLink(t *testing.T) {
	svc, _, profiles := newTestProfileService()

	_, err := svc.Upsert(context.Background(), "u1", model.ProfileRequest{
		Status:   "Developer",
		Skills:   model.SkillList{"Go"},
		Facebook: "ftp://facebook.com/ann",
	})

	var linkErr *InvalidLinkError
	if !errors.As(err, &linkErr) {
		t.Fatalf("expected InvalidLinkError, got %v", err)
	}
	if linkErr.Field != "facebook" {
		t.Errorf("field = %q, want %q", linkErr.Field, "facebook")
	}
	if _, err := profiles.GetByUser(context.Background(), "u1"); err == nil {
		t.Error("profile was stored despite the invalid link")
	}
}

func TestProfileMe_OwnerDeleted(t *testing.T) {
	svc, users, _ := newTestProfileService()
	if _, err := svc.Upsert(context.Background(), "u1", model.ProfileRequest{Status: "Dev", Skills: model.SkillList{"Go"}}); err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}
	users.Delete("u1")

	resp, err := svc.Me(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Me() unexpected error: %v", err)
	}
	if resp.User.ID != "u1" || resp.User.Name != "" {
		t.Errorf("user = %+v, want only the id", resp.User)
	}
}

func TestProfileUpsert_RepositoryError(t *testing.T) {
	svc, _, profiles := newTestProfileService()
	profiles.Err = errors.New("write conflict")

	_, err := svc.Upsert(context.Background(), "u1", model.ProfileRequest{Status: "Dev", Skills: model.SkillList{"Go"}})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, profiles.Err) {
		t.Errorf("expected error to wrap the repository error, got %v", err)
	}
}

func ptr(s string) *string {
	return &s
}
