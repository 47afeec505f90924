package interfaces

import "github.com/DMHCAIT/crm-backend-sub002/internal/auth"

// TokenServiceInterface issues and verifies access tokens
type TokenServiceInterface interface {
	Issue(id auth.Identity) (string, *auth.Claims, error)
	Verify(token string) (*auth.Claims, error)
}
