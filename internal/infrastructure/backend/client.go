// Package backend talks to the remote training-management API and to its
// hosted identity provider.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/formasuite/trainerdesk/internal/core/domain"
	"github.com/formasuite/trainerdesk/internal/core/ports"
)

const (
	defaultTimeout = 15 * time.Second
	loginPath      = "/rpc/login"
	maxErrorBody   = 512
)

// Config holds connection settings for the REST API.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client is the REST implementation of ports.BackendClient.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login posts the credentials to the login procedure. A rejected login is a
// normal response with success=false; only transport and payload problems are
// returned as errors.
func (c *Client) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	const op = "backend login"

	var res ports.LoginResult
	if err := c.postJSON(ctx, op, loginPath, loginRequest{Email: email, Password: password}, &res); err != nil {
		var ne *domain.NetworkError
		if errors.As(err, &ne) && (ne.StatusCode == http.StatusUnauthorized || ne.StatusCode == http.StatusForbidden) {
			return &ports.LoginResult{Success: false}, nil
		}
		return nil, err
	}
	return &res, nil
}

// Ping checks the API root answers.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: "backend ping", Err: err}
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return &domain.NetworkError{Op: "backend ping", StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, op, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.DecodingError{Op: op, Err: err}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func statusError(op string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(snippet))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &domain.NetworkError{Op: op, StatusCode: resp.StatusCode, Err: errors.New(msg)}
}
