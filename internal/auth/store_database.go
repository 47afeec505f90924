package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/DMHCAIT/crm-backend-sub002/internal/database"
)

// UserLookup is the slice of the user repository the database store needs
type UserLookup interface {
	GetByIdentifier(ctx context.Context, identifier string) (*database.User, error)
	GetByID(ctx context.Context, id string) (*database.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
}

// DatabaseStore checks credentials against the users table
type DatabaseStore struct {
	users UserLookup
	// OnTouchError is called when recording last_login fails. Optional.
	OnTouchError func(userID string, err error)
}

func NewDatabaseStore(users UserLookup) *DatabaseStore {
	return &DatabaseStore{users: users}
}

func (s *DatabaseStore) FindByCredentials(ctx context.Context, identifier, password string) (*UserRecord, error) {
	if normalizeIdentifier(identifier) == "" {
		return nil, ErrUserNotFound
	}

	u, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			burnPasswordCheck(password)
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if !CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	record, err := toRecord(u)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.users.UpdateLastLogin(ctx, u.ID); err != nil && s.OnTouchError != nil {
		s.OnTouchError(u.ID, err)
	}

	return record, nil
}

func (s *DatabaseStore) FindByID(ctx context.Context, id string) (*UserRecord, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return toRecord(u)
}

func toRecord(u *database.User) (*UserRecord, error) {
	role, err := ParseRole(u.Role)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", u.ID, err)
	}
	return &UserRecord{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Name:      u.Name,
		Role:      role,
		RoleLevel: u.RoleLevel,
	}, nil
}
