package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/devconnector/devconnector-go/internal/model"
)

const userColumns = `id, name, email, password_hash, avatar, created_at`

type userMySQLRepository struct {
	db *sql.DB
}

// NewUserMySQLRepository creates a UserRepository backed by the users table.
func NewUserMySQLRepository(db *sql.DB) UserRepository {
	return &userMySQLRepository{db: db}
}

// Create inserts a new user and sets the generated ID on the user struct.
func (r *userMySQLRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, name, email, password_hash, avatar, created_at) VALUES (?, ?, ?, ?, ?, ?)`

	id := uuid.NewString()
	createdAt := time.Now().UTC().Truncate(time.Millisecond)

	_, err := r.db.ExecContext(ctx, query, id, user.Name, user.Email, user.PasswordHash, user.Avatar, createdAt)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	user.ID = id
	user.CreatedAt = createdAt
	return nil
}

// GetByEmail retrieves a user by their email address.
func (r *userMySQLRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

// GetByID retrieves a user by their ID.
func (r *userMySQLRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *userMySQLRepository) scanOne(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Avatar, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
