package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/DMHCAIT/crm-backend-sub002/internal/api/interfaces"
	"github.com/DMHCAIT/crm-backend-sub002/internal/auth"
	"github.com/DMHCAIT/crm-backend-sub002/internal/database/repositories"
	"github.com/DMHCAIT/crm-backend-sub002/pkg/config"
	"github.com/DMHCAIT/crm-backend-sub002/pkg/logger"
)

// Services contains all the dependencies for API handlers
type Services struct {
	DB     *sql.DB
	Logger *logger.Logger
	Config *config.Config

	tokenService   *auth.TokenService
	policy         *auth.Policy
	credentials    auth.CredentialStore
	userRepository *repositories.UserRepository
	leadRepository *repositories.LeadRepository
}

// NewServices wires the token service, access policy and credential stores
// from configuration. The signing secret is copied into the token service
// once here and never read from configuration again.
func NewServices(db *sql.DB, log *logger.Logger, cfg *config.Config) (*Services, error) {
	ranks, err := auth.NewRankTable(cfg.Security.RoleLevels)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret: cfg.Security.JWTSecret,
		TTL:    cfg.Security.JWTExpiration,
	})
	if err != nil {
		return nil, fmt.Errorf("token service: %w", err)
	}

	s := &Services{
		DB:           db,
		Logger:       log,
		Config:       cfg,
		tokenService: tokens,
		policy:       auth.NewPolicy(ranks),
	}

	var stores []auth.CredentialStore
	if cfg.Admin.Enabled {
		admin, err := newAdminStore(cfg.Admin)
		if err != nil {
			return nil, fmt.Errorf("admin credential: %w", err)
		}
		stores = append(stores, admin)
	}

	if db != nil {
		s.userRepository = repositories.NewUserRepository(db)
		s.leadRepository = repositories.NewLeadRepository(db)

		dbStore := auth.NewDatabaseStore(s.userRepository)
		dbStore.OnTouchError = func(userID string, err error) {
			log.WithComponent("auth").Warning("Failed to record last login", "user_id", userID, "error", err.Error())
		}
		stores = append(stores, dbStore)
	}

	s.credentials = auth.NewChainStore(stores...)
	return s, nil
}

func newAdminStore(cfg config.AdminConfig) (*auth.StaticStore, error) {
	role, err := auth.ParseRole(cfg.Role)
	if err != nil {
		return nil, err
	}
	return auth.NewStaticStore(auth.UserRecord{
		ID:       "admin",
		Username: cfg.Username,
		Email:    cfg.Email,
		Name:     cfg.Name,
		Role:     role,
	}, cfg.Password)
}

// Interface implementation methods
func (s *Services) GetLogger() *logger.Logger {
	return s.Logger
}

func (s *Services) TokenService() interfaces.TokenServiceInterface {
	return s.tokenService
}

func (s *Services) Policy() *auth.Policy {
	return s.policy
}

func (s *Services) Credentials() auth.CredentialStore {
	return s.credentials
}

func (s *Services) LeadRepository() interfaces.LeadStore {
	if s.leadRepository == nil {
		return nil
	}
	return s.leadRepository
}

// Ping checks the database connection
func (s *Services) Ping(ctx context.Context) error {
	if s.DB == nil {
		return errors.New("database not configured")
	}
	return s.DB.PingContext(ctx)
}
