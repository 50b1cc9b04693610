package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/formasuite/trainerdesk/internal/api"
	"github.com/formasuite/trainerdesk/internal/core/ports"
	"github.com/formasuite/trainerdesk/internal/core/service"
	"github.com/formasuite/trainerdesk/internal/infrastructure/backend"
	"github.com/formasuite/trainerdesk/internal/infrastructure/config"
	"github.com/formasuite/trainerdesk/internal/infrastructure/credential"
	"github.com/formasuite/trainerdesk/internal/infrastructure/db/file"
	mongodb "github.com/formasuite/trainerdesk/internal/infrastructure/db/mongo"
	redisdb "github.com/formasuite/trainerdesk/internal/infrastructure/db/redis"
	"github.com/formasuite/trainerdesk/internal/infrastructure/http/handlers"
	"github.com/formasuite/trainerdesk/internal/infrastructure/keychain"
	"github.com/formasuite/trainerdesk/internal/infrastructure/metrics"
	"github.com/formasuite/trainerdesk/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "trainerdesk: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "trainerdesk",
	})

	probes := map[string]handlers.Pinger{}
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	// --- Credential persistence ---
	store, err := newCredentialStore(ctx, cfg, log, probes, &closers)
	if err != nil {
		return err
	}
	codec, err := credential.NewJWTCodec(cfg.Credentials.SigningKey, cfg.Credentials.SessionTTL)
	if err != nil {
		return err
	}

	// --- Remote services ---
	client := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.URL,
		APIKey:  cfg.Backend.APIKey,
		Timeout: cfg.Backend.Timeout,
	})
	probes["backend"] = client

	var identity ports.IdentityProvider
	if cfg.Identity.URL != "" {
		idp := backend.NewIdentityClient(backend.IdentityConfig{
			URL:     cfg.Identity.URL,
			AnonKey: cfg.Identity.AnonKey,
			Timeout: cfg.Backend.Timeout,
		})
		identity = idp
		probes["identity"] = idp
	} else {
		log.Warn().Msg("SUPABASE_URL not set, password reset disabled")
	}

	// --- Extras side-car ---
	persister, err := newExtrasPersister(ctx, cfg, log, probes, &closers)
	if err != nil {
		return err
	}
	extras := service.NewExtrasStore(ctx, persister, logger.For("extras")).WithMetrics(metrics.Recorder{})
	// Close stops the worker once echo has drained, not the signal.
	extras.Start(context.Background())
	closers = append(closers, func() {
		if err := extras.Close(); err != nil {
			log.Error().Err(err).Msg("final extras write failed")
		}
	})

	// --- Session ---
	auth := service.NewAuthService(client, identity, store, codec, logger.For("auth")).
		WithMetrics(metrics.Recorder{})
	state := auth.CheckAuthStatus(ctx)
	log.Info().Bool("authenticated", state.IsAuthenticated).Str("role", string(state.Role)).Msg("session restored")

	e := api.NewRouter(api.Dependencies{
		Auth:    auth,
		Extras:  extras,
		Probes:  probes,
		Log:     logger.For("http"),
		Swagger: cfg.IsDevelopment(),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	return nil
}

func newCredentialStore(
	ctx context.Context,
	cfg *config.Config,
	log zerolog.Logger,
	probes map[string]handlers.Pinger,
	closers *[]func(),
) (ports.CredentialStore, error) {
	switch strings.ToLower(cfg.Credentials.Store) {
	case config.CredentialStoreRedis:
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, func() {
			if err := rdb.Close(); err != nil {
				log.Warn().Err(err).Msg("redis close")
			}
		})
		store := redisdb.NewCredentialStore(rdb, cfg.Credentials.Namespace)
		probes["credentials"] = store
		log.Info().Str("addr", cfg.Redis.Addr).Msg("credentials stored in redis")
		return store, nil
	default:
		kc, err := keychain.New(cfg.Credentials.KeychainDir, cfg.Credentials.Secret)
		if err != nil {
			return nil, err
		}
		probes["credentials"] = kc
		log.Info().Str("dir", cfg.Credentials.KeychainDir).Msg("credentials stored in keychain")
		return kc, nil
	}
}

func newExtrasPersister(
	ctx context.Context,
	cfg *config.Config,
	log zerolog.Logger,
	probes map[string]handlers.Pinger,
	closers *[]func(),
) (ports.ExtrasPersister, error) {
	switch strings.ToLower(cfg.Extras.Backend) {
	case config.ExtrasBackendMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, func() {
			if err := mongodb.Disconnect(client); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect")
			}
		})
		repo := mongodb.NewExtrasRepository(db)
		probes["extras"] = repo
		log.Info().Str("database", cfg.Mongo.Database).Msg("extras stored in mongo")
		return repo, nil
	default:
		repo := file.NewExtrasRepository(cfg.Extras.Path)
		probes["extras"] = repo
		log.Info().Str("path", repo.Path()).Msg("extras stored on disk")
		return repo, nil
	}
}
