package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/formasuite/trainerdesk/internal/core/domain"
	"github.com/formasuite/trainerdesk/internal/core/ports"
)

// CredentialKey is the single key under which the signed-in user is persisted.
const CredentialKey = "trainerdesk.current_user"

// AuthService owns the signed-in session and its persistence across restarts.
//
// Mutations are serialized by publishMu: state is replaced and every observer is
// notified before the mutating call returns, so observers see one ordered
// sequence of states. Observers must not call back into SignIn, SignOut or
// CheckAuthStatus.
type AuthService struct {
	backend  ports.BackendClient
	identity ports.IdentityProvider
	store    ports.CredentialStore
	codec    ports.CredentialCodec
	log      zerolog.Logger
	metrics  ports.SessionMetrics

	publishMu sync.Mutex

	mu        sync.RWMutex
	state     domain.AuthState
	observers map[uint64]func(domain.AuthState)
	nextID    uint64
}

func NewAuthService(
	backend ports.BackendClient,
	identity ports.IdentityProvider,
	store ports.CredentialStore,
	codec ports.CredentialCodec,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		backend:   backend,
		identity:  identity,
		store:     store,
		codec:     codec,
		log:       log,
		metrics:   nopMetrics{},
		state:     domain.SignedOut(),
		observers: make(map[uint64]func(domain.AuthState)),
	}
}

// WithMetrics attaches m. Call it before the service is shared.
func (s *AuthService) WithMetrics(m ports.SessionMetrics) *AuthService {
	if m != nil {
		s.metrics = m
	}
	return s
}

// CheckAuthStatus hydrates the state from the credential store. It never talks
// to the backend; any unreadable or invalid credential yields the signed-out state.
func (s *AuthService) CheckAuthStatus(ctx context.Context) domain.AuthState {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	next := domain.SignedOut()
	if user := s.loadCredential(ctx); user != nil {
		next = domain.SignedIn(*user)
	}
	s.publish(next)
	return next.Clone()
}

func (s *AuthService) loadCredential(ctx context.Context) *domain.User {
	blob, ok, err := s.store.Get(ctx, CredentialKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("read stored credential failed, starting signed out")
		return nil
	}
	if !ok || blob == "" {
		return nil
	}

	user, err := s.codec.Decode(blob)
	if err != nil {
		s.log.Warn().Err(err).Msg("stored credential rejected, starting signed out")
		return nil
	}
	if user == nil || !user.Valid() {
		s.log.Warn().Msg("stored credential carries no usable user, starting signed out")
		return nil
	}
	return user
}

// SignIn authenticates against the backend, persists the user and only then
// publishes the authenticated state. On any failure the state is left as it was.
func (s *AuthService) SignIn(ctx context.Context, email, password string) error {
	res, err := s.backend.Login(ctx, email, password)
	if err != nil {
		s.metrics.SignIn("error")
		return err
	}
	if res == nil || !res.Success || res.User == nil {
		s.metrics.SignIn("unauthorized")
		return domain.ErrUnauthorized
	}
	user := *res.User

	blob, err := s.codec.Encode(user)
	if err != nil {
		s.metrics.SignIn("persist_failed")
		return fmt.Errorf("sign in: %w: encode: %v", domain.ErrCredentialPersist, err)
	}

	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	if err := s.store.Save(ctx, CredentialKey, blob); err != nil {
		s.metrics.SignIn("persist_failed")
		return fmt.Errorf("sign in: %w: %v", domain.ErrCredentialPersist, err)
	}

	s.publish(domain.SignedIn(user))
	s.metrics.SignIn("success")

	s.log.Info().
		Int64("user_id", user.ID).
		Str("role", string(domain.ParseRole(user.Role))).
		Msg("signed in")
	return nil
}

// SignOut publishes the signed-out state, then removes the stored credential.
// The state is cleared even when the removal fails.
func (s *AuthService) SignOut(ctx context.Context) error {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.publish(domain.SignedOut())

	if err := s.store.Delete(ctx, CredentialKey); err != nil {
		s.log.Error().Err(err).Msg("delete stored credential failed")
		return fmt.Errorf("sign out: %w", err)
	}
	s.log.Info().Msg("signed out")
	return nil
}

// ResetPassword hands the email to the identity provider unchanged.
func (s *AuthService) ResetPassword(ctx context.Context, email string) error {
	if s.identity == nil {
		return errors.New("reset password: no identity provider configured")
	}
	return s.identity.ResetPassword(ctx, strings.TrimSpace(email))
}

// State returns a snapshot of the current state.
func (s *AuthService) State() domain.AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Subscribe registers fn for every future state change and returns a function
// that removes it. fn is not called with the current state.
func (s *AuthService) Subscribe(fn func(domain.AuthState)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	n := len(s.observers)
	s.mu.Unlock()
	s.metrics.Observers(n)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			n := len(s.observers)
			s.mu.Unlock()
			s.metrics.Observers(n)
		})
	}
}

// publish must be called with publishMu held.
func (s *AuthService) publish(next domain.AuthState) {
	s.mu.Lock()
	s.state = next
	fns := make([]func(domain.AuthState), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	s.metrics.StateChanged(next.IsAuthenticated)

	for _, fn := range fns {
		fn(next.Clone())
	}
}
