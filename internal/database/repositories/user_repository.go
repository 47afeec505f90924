package repositories

import (
	"context"
	"database/sql"
	"strings"

	"github.com/DMHCAIT/crm-backend-sub002/internal/database"
)

const userColumns = `id, username, email, name, password_hash, role, role_level,
               is_active, last_login, created_at, updated_at`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *database.User) error {
	query := `
        INSERT INTO users (id, username, email, name, password_hash, role, role_level, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Username, strings.ToLower(user.Email), user.Name,
		user.PasswordHash, user.Role, user.RoleLevel, user.IsActive)
	return err
}

// GetByIdentifier retrieves an active user by username or email
func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier string) (*database.User, error) {
	query := `
        SELECT ` + userColumns + `
        FROM users
        WHERE (LOWER(username) = $1 OR LOWER(email) = $1) AND is_active = TRUE
    `
	return r.scanOne(r.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(identifier))))
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*database.User, error) {
	query := `
        SELECT ` + userColumns + `
        FROM users
        WHERE id = $1
    `
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID))
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID string) error {
	query := `
        UPDATE users
        SET last_login = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

// DeactivateUser disables the active user matching a username or email.
// It returns sql.ErrNoRows when no active user matched.
func (r *UserRepository) DeactivateUser(ctx context.Context, identifier string) error {
	query := `
        UPDATE users SET is_active = FALSE, updated_at = CURRENT_TIMESTAMP
        WHERE (LOWER(username) = $1 OR LOWER(email) = $1) AND is_active = TRUE
    `
	return execOne(ctx, r.db, query, strings.ToLower(strings.TrimSpace(identifier)))
}

func (r *UserRepository) scanOne(row *sql.Row) (*database.User, error) {
	var user database.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.Name, &user.PasswordHash,
		&user.Role, &user.RoleLevel, &user.IsActive, &user.LastLogin,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
