package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/devconnector/devconnector-go/internal/model"
)

const profileColumns = `id, user_id, company, website, location, status, skills, bio, github_username, social, created_at, updated_at`

// profileUpsertQuery inserts a profile or updates the existing one. The
// optional columns are bound twice; a NULL bind stores '' on insert and keeps
// the current value on update. id and created_at survive updates.
const profileUpsertQuery = `
	INSERT INTO profiles (id, user_id, company, website, location, status, skills, bio, github_username, social)
	VALUES (?, ?, COALESCE(?, ''), ?, COALESCE(?, ''), ?, ?, COALESCE(?, ''), COALESCE(?, ''), ?)
	ON DUPLICATE KEY UPDATE
		company         = COALESCE(?, company),
		website         = VALUES(website),
		location        = COALESCE(?, location),
		status          = VALUES(status),
		skills          = VALUES(skills),
		bio             = COALESCE(?, bio),
		github_username = COALESCE(?, github_username),
		social          = VALUES(social)`

type profileMySQLRepository struct {
	db *sql.DB
}

// NewProfileMySQLRepository creates a ProfileRepository backed by the profiles table.
func NewProfileMySQLRepository(db *sql.DB) ProfileRepository {
	return &profileMySQLRepository{db: db}
}

func (r *profileMySQLRepository) GetByUser(ctx context.Context, userID string) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = ?`
	return scanProfile(r.db.QueryRowContext(ctx, query, userID))
}

// Upsert writes the update and reads the profile back within one transaction.
func (r *profileMySQLRepository) Upsert(ctx context.Context, update *model.ProfileUpdate) (*model.Profile, error) {
	skills := update.Skills
	if skills == nil {
		skills = []string{}
	}
	skillsJSON, err := json.Marshal(skills)
	if err != nil {
		return nil, fmt.Errorf("encoding skills: %w", err)
	}
	socialJSON, err := json.Marshal(update.Social)
	if err != nil {
		return nil, fmt.Errorf("encoding social: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, profileUpsertQuery,
		uuid.NewString(),
		update.UserID,
		update.Company,
		update.Website,
		update.Location,
		update.Status,
		string(skillsJSON),
		update.Bio,
		update.GitHubUsername,
		string(socialJSON),
		update.Company,
		update.Location,
		update.Bio,
		update.GitHubUsername,
	)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = ?`
	stored, err := scanProfile(tx.QueryRowContext(ctx, query, update.UserID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return stored, nil
}

func scanProfile(row *sql.Row) (*model.Profile, error) {
	var (
		p          model.Profile
		skillsJSON []byte
		socialJSON []byte
	)

	err := row.Scan(
		&p.ID, &p.UserID, &p.Company, &p.Website, &p.Location, &p.Status,
		&skillsJSON, &p.Bio, &p.GitHubUsername, &socialJSON, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(skillsJSON, &p.Skills); err != nil {
		return nil, fmt.Errorf("decoding skills: %w", err)
	}
	if err := json.Unmarshal(socialJSON, &p.Social); err != nil {
		return nil, fmt.Errorf("decoding social: %w", err)
	}
	return &p, nil
}
