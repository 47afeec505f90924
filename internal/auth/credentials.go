package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost used for new password hashes
const PasswordCost = bcrypt.DefaultCost

// UserRecord is a user as known to a credential store
type UserRecord struct {
	ID        string
	Username  string
	Email     string
	Name      string
	Role      Role
	RoleLevel int
}

// Identity converts the record into token identity at the given level
func (u *UserRecord) Identity(level int) Identity {
	return Identity{
		UserID:    u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		RoleLevel: level,
	}
}

// CredentialStore looks users up for login. FindByCredentials returns
// ErrInvalidCredentials or ErrUserNotFound for auth failures and
// ErrStoreUnavailable when the backing store cannot be reached.
type CredentialStore interface {
	FindByCredentials(ctx context.Context, identifier, password string) (*UserRecord, error)
	FindByID(ctx context.Context, id string) (*UserRecord, error)
}

// HashPassword returns a bcrypt hash of password
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// dummyHash is compared against when no user matched, so a miss costs
// about as much as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("crm-dummy-password"), PasswordCost)

var burnPasswordCheck = func(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

func normalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

// StaticStore serves a single user configured at startup, typically the
// bootstrap super admin.
type StaticStore struct {
	user         UserRecord
	passwordHash string
}

// NewStaticStore hashes password and returns a store holding user
func NewStaticStore(user UserRecord, password string) (*StaticStore, error) {
	if user.Username == "" && user.Email == "" {
		return nil, errors.New("static user requires a username or email")
	}
	if !user.Role.Valid() {
		return nil, fmt.Errorf("static user has unknown role %q", user.Role)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	if user.ID == "" {
		user.ID = "static-" + normalizeIdentifier(user.Username)
	}
	return &StaticStore{user: user, passwordHash: hash}, nil
}

func (s *StaticStore) matches(identifier string) bool {
	id := normalizeIdentifier(identifier)
	if id == "" {
		return false
	}
	return id == normalizeIdentifier(s.user.Username) || id == normalizeIdentifier(s.user.Email)
}

func (s *StaticStore) FindByCredentials(_ context.Context, identifier, password string) (*UserRecord, error) {
	if !s.matches(identifier) {
		burnPasswordCheck(password)
		return nil, ErrUserNotFound
	}
	if !CheckPassword(s.passwordHash, password) {
		return nil, ErrInvalidCredentials
	}
	u := s.user
	return &u, nil
}

func (s *StaticStore) FindByID(_ context.Context, id string) (*UserRecord, error) {
	if id != s.user.ID {
		return nil, ErrUserNotFound
	}
	u := s.user
	return &u, nil
}

// ChainStore consults several stores in order and returns the first match.
type ChainStore struct {
	stores []CredentialStore
}

// NewChainStore creates a chain over stores, skipping nil entries
func NewChainStore(stores ...CredentialStore) *ChainStore {
	c := &ChainStore{}
	for _, s := range stores {
		if s != nil {
			c.stores = append(c.stores, s)
		}
	}
	return c
}

func (c *ChainStore) FindByCredentials(ctx context.Context, identifier, password string) (*UserRecord, error) {
	return c.find(func(s CredentialStore) (*UserRecord, error) {
		return s.FindByCredentials(ctx, identifier, password)
	}, ErrInvalidCredentials)
}

func (c *ChainStore) FindByID(ctx context.Context, id string) (*UserRecord, error) {
	return c.find(func(s CredentialStore) (*UserRecord, error) {
		return s.FindByID(ctx, id)
	}, ErrUserNotFound)
}

// find returns the first match. An unavailable store is reported only if no
// other store answers; otherwise the chain reports miss.
func (c *ChainStore) find(lookup func(CredentialStore) (*UserRecord, error), miss error) (*UserRecord, error) {
	var unavailable error
	for _, s := range c.stores {
		u, err := lookup(s)
		switch {
		case err == nil:
			return u, nil
		case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUserNotFound):
		default:
			unavailable = err
		}
	}
	if unavailable != nil {
		return nil, unavailable
	}
	return nil, miss
}
