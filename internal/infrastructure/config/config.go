package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	CredentialStoreFile  = "file"
	CredentialStoreRedis = "redis"

	ExtrasBackendFile  = "file"
	ExtrasBackendMongo = "mongo"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Backend     BackendConfig
	Identity    IdentityConfig
	Credentials CredentialsConfig
	Extras      ExtrasConfig

	Mongo MongoConfig
	Redis RedisConfig
}

type BackendConfig struct {
	URL     string        `env:"BACKEND_URL"`
	APIKey  string        `env:"BACKEND_API_KEY"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT, default=15s"`
}

type IdentityConfig struct {
	URL     string `env:"SUPABASE_URL"`
	AnonKey string `env:"SUPABASE_ANON_KEY"`
}

type CredentialsConfig struct {
	Store       string        `env:"CREDENTIAL_STORE,       default=file"`
	KeychainDir string        `env:"KEYCHAIN_DIR,           default=./data/keychain"`
	Secret      string        `env:"KEYCHAIN_SECRET"`
	SigningKey  string        `env:"CREDENTIAL_SIGNING_KEY"`
	SessionTTL  time.Duration `env:"SESSION_TTL,            default=0s"`
	Namespace   string        `env:"CREDENTIAL_NAMESPACE"`
}

type ExtrasConfig struct {
	Backend string `env:"EXTRAS_BACKEND, default=file"`
	Path    string `env:"EXTRAS_PATH,    default=./data/extras.json"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=trainerdesk"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// Load reads an optional .env file, then the environment. Variables already set
// in the environment win over the file.
func Load(ctx context.Context, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the combinations envconfig cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Credentials.Store) {
	case CredentialStoreFile:
		if c.Credentials.Secret == "" {
			errs = append(errs, errors.New("KEYCHAIN_SECRET is required with CREDENTIAL_STORE=file"))
		}
	case CredentialStoreRedis:
	default:
		errs = append(errs, fmt.Errorf("CREDENTIAL_STORE must be %q or %q, got %q", CredentialStoreFile, CredentialStoreRedis, c.Credentials.Store))
	}
	if c.Credentials.SigningKey == "" {
		errs = append(errs, errors.New("CREDENTIAL_SIGNING_KEY is required"))
	}
	if c.Credentials.SessionTTL < 0 {
		errs = append(errs, errors.New("SESSION_TTL must not be negative"))
	}

	switch strings.ToLower(c.Extras.Backend) {
	case ExtrasBackendFile, ExtrasBackendMongo:
	default:
		errs = append(errs, fmt.Errorf("EXTRAS_BACKEND must be %q or %q, got %q", ExtrasBackendFile, ExtrasBackendMongo, c.Extras.Backend))
	}

	if c.Backend.URL == "" {
		errs = append(errs, errors.New("BACKEND_URL is required"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}
