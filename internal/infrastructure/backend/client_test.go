package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/formasuite/trainerdesk/internal/core/domain"
)

func TestClient_Login_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != loginPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("apikey") != "anon" || r.Header.Get("Authorization") != "Bearer anon" {
			t.Errorf("missing api key headers: %v", r.Header)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["email"] != "alice@example.com" || body["password"] != "secret" {
			t.Errorf("unexpected body: %v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"user":{"id":42,"email":"alice@example.com","role":"admin","prenom":"Alice","nom":"Martin"}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/", APIKey: "anon"})
	res, err := c.Login(context.Background(), "alice@example.com", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !res.Success || res.User == nil || res.User.ID != 42 || res.User.Role != "admin" || res.User.Prenom != "Alice" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestClient_Login_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	res, err := NewClient(Config{BaseURL: srv.URL}).Login(context.Background(), "a@example.com", "bad")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Success || res.User != nil {
		t.Fatalf("expected rejected login, got %+v", res)
	}
}

func TestClient_Login_UnauthorizedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	res, err := NewClient(Config{BaseURL: srv.URL}).Login(context.Background(), "a@example.com", "bad")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Success {
		t.Fatalf("expected success=false")
	}
}

func TestClient_Login_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database unavailable", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).Login(context.Background(), "a@example.com", "pw")
	var ne *domain.NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if ne.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", ne.StatusCode)
	}
}

func TestClient_Login_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(Config{BaseURL: url}).Login(context.Background(), "a@example.com", "pw")
	var ne *domain.NetworkError
	if !errors.As(err, &ne) || ne.StatusCode != 0 {
		t.Fatalf("expected transport NetworkError, got %v", err)
	}
}

func TestClient_Login_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": "yes"`))
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).Login(context.Background(), "a@example.com", "pw")
	var de *domain.DecodingError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodingError, got %v", err)
	}
}

func TestClient_Ping(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	status = http.StatusBadGateway
	if err := c.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping failure on 502")
	}
}

func TestIdentityClient_ResetPassword(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != recoverPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body recoverRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		got = body.Email
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewIdentityClient(IdentityConfig{URL: srv.URL, AnonKey: "anon"})
	if err := c.ResetPassword(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if got != "alice@example.com" {
		t.Fatalf("unexpected email sent: %q", got)
	}
}

func TestIdentityClient_ResetPassword_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"msg":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewIdentityClient(IdentityConfig{URL: srv.URL})
	if err := c.ResetPassword(context.Background(), " "); err == nil {
		t.Fatalf("expected error for empty email")
	}

	var ne *domain.NetworkError
	if err := c.ResetPassword(context.Background(), "alice@example.com"); !errors.As(err, &ne) || ne.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 NetworkError, got %v", err)
	}
}
