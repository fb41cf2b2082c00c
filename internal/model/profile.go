package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Social holds a profile's social network links.
type Social struct {
	YouTube   string `json:"youtube,omitempty" bson:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty" bson:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty" bson:"facebook,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty" bson:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty" bson:"instagram,omitempty"`
}

// Profile represents a user's developer profile. There is at most one per user.
type Profile struct {
	ID             string
	UserID         string
	Company        string
	Website        string
	Location       string
	Status         string
	Skills         []string
	Bio            string
	GitHubUsername string
	Social         Social
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SkillList accepts either a JSON array of strings or a comma separated string.
type SkillList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *SkillList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = cleanSkills(list)
		return nil
	}

	var csv string
	if err := json.Unmarshal(data, &csv); err != nil {
		return err
	}
	*s = cleanSkills(strings.Split(csv, ","))
	return nil
}

// cleanSkills trims every skill and drops empty ones. The result is never nil.
func cleanSkills(raw []string) SkillList {
	out := make(SkillList, 0, len(raw))
	for _, skill := range raw {
		if skill = strings.TrimSpace(skill); skill != "" {
			out = append(out, skill)
		}
	}
	return out
}

// ProfileRequest represents a create-or-update profile request. Optional
// scalar fields are pointers so that an update can leave them out.
type ProfileRequest struct {
	Company        *string   `json:"company"`
	Website        string    `json:"website"`
	Location       *string   `json:"location"`
	Status         string    `json:"status" validate:"required" msg:"Status is required"`
	Skills         SkillList `json:"skills" validate:"required,min=1" msg:"Skills is required"`
	Bio            *string   `json:"bio"`
	GitHubUsername *string   `json:"githubusername"`
	YouTube        string    `json:"youtube"`
	Twitter        string    `json:"twitter"`
	Facebook       string    `json:"facebook"`
	LinkedIn       string    `json:"linkedin"`
	Instagram      string    `json:"instagram"`
}

// ProfileUpdate is the write applied by a profile upsert. Status, Skills,
// Website and Social are always written; Social as a whole. A nil optional
// field keeps its stored value, or is empty on insert.
type ProfileUpdate struct {
	UserID  string
	Status  string
	Skills  []string
	Website string
	Social  Social

	Company        *string
	Location       *string
	Bio            *string
	GitHubUsername *string
}

// ProfileUser is the subset of the owning user embedded in profile responses.
type ProfileUser struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// ProfileResponse represents a profile with its owner's name and avatar.
type ProfileResponse struct {
	ID             string      `json:"_id"`
	User           ProfileUser `json:"user"`
	Company        string      `json:"company,omitempty"`
	Website        string      `json:"website,omitempty"`
	Location       string      `json:"location,omitempty"`
	Status         string      `json:"status"`
	Skills         []string    `json:"skills"`
	Bio            string      `json:"bio,omitempty"`
	GitHubUsername string      `json:"githubusername,omitempty"`
	Social         Social      `json:"social"`
	CreatedAt      time.Time   `json:"date"`
}

// NewProfileResponse combines a profile with its owner.
func NewProfileResponse(p *Profile, owner *User) ProfileResponse {
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}

	resp := ProfileResponse{
		ID:             p.ID,
		User:           ProfileUser{ID: p.UserID},
		Company:        p.Company,
		Website:        p.Website,
		Location:       p.Location,
		Status:         p.Status,
		Skills:         skills,
		Bio:            p.Bio,
		GitHubUsername: p.GitHubUsername,
		Social:         p.Social,
		CreatedAt:      p.CreatedAt,
	}
	if owner != nil {
		resp.User.Name = owner.Name
		resp.User.Avatar = owner.Avatar
	}
	return resp
}
