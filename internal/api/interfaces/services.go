package interfaces

import (
	"context"

	"github.com/DMHCAIT/crm-backend-sub002/internal/auth"
	"github.com/DMHCAIT/crm-backend-sub002/internal/database"
	"github.com/DMHCAIT/crm-backend-sub002/pkg/logger"
)

// LeadStore is the lead persistence the handlers depend on
type LeadStore interface {
	Create(ctx context.Context, lead *database.Lead) error
	GetByID(ctx context.Context, id string) (*database.Lead, error)
	List(ctx context.Context, filter database.LeadFilter) ([]database.Lead, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

// Services defines the interface for API services
type Services interface {
	GetLogger() *logger.Logger
	TokenService() TokenServiceInterface
	Policy() *auth.Policy
	Credentials() auth.CredentialStore
	LeadRepository() LeadStore
	Ping(ctx context.Context) error
}
