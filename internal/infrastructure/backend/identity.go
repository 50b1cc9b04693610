package backend

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

const recoverPath = "/auth/v1/recover"

// IdentityConfig points at the hosted auth service (Supabase GoTrue).
type IdentityConfig struct {
	URL     string
	AnonKey string
	Timeout time.Duration
}

// IdentityClient implements ports.IdentityProvider.
type IdentityClient struct {
	inner *Client
}

func NewIdentityClient(cfg IdentityConfig) *IdentityClient {
	return &IdentityClient{inner: NewClient(Config{
		BaseURL: cfg.URL,
		APIKey:  cfg.AnonKey,
		Timeout: cfg.Timeout,
	})}
}

type recoverRequest struct {
	Email string `json:"email"`
}

// ResetPassword asks the identity provider to send a reset email. The provider
// answers with an empty body on success.
func (c *IdentityClient) ResetPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return errors.New("reset password: email is required")
	}
	return c.inner.postJSON(ctx, "reset password", recoverPath, recoverRequest{Email: email}, nil)
}

// Ping checks the identity provider health endpoint.
func (c *IdentityClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.inner.baseURL+"/auth/v1/health", nil)
	if err != nil {
		return err
	}
	c.inner.setHeaders(req)
	resp, err := c.inner.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return statusError("identity ping", resp)
	}
	return nil
}
