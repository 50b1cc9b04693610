package ports

import (
	"context"

	"github.com/formasuite/trainerdesk/internal/core/domain"
)

// LoginResult is the backend's answer to a login call. User is nil when the
// backend rejected the credentials.
type LoginResult struct {
	Success bool         `json:"success"`
	User    *domain.User `json:"user,omitempty"`
}

// BackendClient is the remote API as seen by the session layer.
type BackendClient interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

// IdentityProvider triggers the hosted password-reset flow.
type IdentityProvider interface {
	ResetPassword(ctx context.Context, email string) error
}
