package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BACKEND_URL", "https://api.example.com")
	t.Setenv("KEYCHAIN_SECRET", "local-secret")
	t.Setenv("CREDENTIAL_SIGNING_KEY", "signing-key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Credentials.Store != CredentialStoreFile || cfg.Extras.Backend != ExtrasBackendFile {
		t.Fatalf("unexpected backends: %+v %+v", cfg.Credentials, cfg.Extras)
	}
	if cfg.Backend.Timeout != 15*time.Second {
		t.Fatalf("unexpected backend timeout: %v", cfg.Backend.Timeout)
	}
	if cfg.Mongo.Database != "trainerdesk" {
		t.Fatalf("unexpected mongo database: %q", cfg.Mongo.Database)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development mode")
	}
}

func TestLoad_EnvFile(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")

	path := filepath.Join(t.TempDir(), ".env")
	content := "PORT=7070\nEXTRAS_BACKEND=mongo\nSESSION_TTL=12h\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("EXTRAS_BACKEND")
		os.Unsetenv("SESSION_TTL")
	})

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("environment should win over the file, got port %q", cfg.Port)
	}
	if cfg.Extras.Backend != ExtrasBackendMongo || cfg.Credentials.SessionTTL != 12*time.Hour {
		t.Fatalf("file values not applied: %+v %+v", cfg.Extras, cfg.Credentials)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	t.Setenv("KEYCHAIN_SECRET", "")
	t.Setenv("CREDENTIAL_SIGNING_KEY", "")

	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.env"))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"BACKEND_URL", "KEYCHAIN_SECRET", "CREDENTIAL_SIGNING_KEY"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %s", err, want)
		}
	}
}

func TestValidate_Enums(t *testing.T) {
	cfg := Config{
		Backend:     BackendConfig{URL: "https://api.example.com"},
		Credentials: CredentialsConfig{Store: "vault", SigningKey: "k"},
		Extras:      ExtrasConfig{Backend: "sqlite"},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "CREDENTIAL_STORE") || !strings.Contains(err.Error(), "EXTRAS_BACKEND") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_RedisNeedsNoKeychainSecret(t *testing.T) {
	cfg := Config{
		Backend:     BackendConfig{URL: "https://api.example.com"},
		Credentials: CredentialsConfig{Store: CredentialStoreRedis, SigningKey: "k"},
		Extras:      ExtrasConfig{Backend: ExtrasBackendFile},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate_NegativeTTL(t *testing.T) {
	cfg := Config{
		Backend:     BackendConfig{URL: "https://api.example.com"},
		Credentials: CredentialsConfig{Store: CredentialStoreFile, Secret: "s", SigningKey: "k", SessionTTL: -time.Minute},
		Extras:      ExtrasConfig{Backend: ExtrasBackendFile},
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "SESSION_TTL") {
		t.Fatalf("expected SESSION_TTL error, got %v", err)
	}
}
