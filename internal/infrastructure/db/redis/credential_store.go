package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "credential:"

// CredentialStore keeps credentials in Redis, for installs where several
// trainerdesk processes share one session. Values never expire on their own.
type CredentialStore struct {
	client redis.UniversalClient
	prefix string
}

// NewCredentialStore namespaces every key under namespace (for example the
// install id) so several installs can share a server.
func NewCredentialStore(client redis.UniversalClient, namespace string) *CredentialStore {
	prefix := keyPrefix
	if namespace != "" {
		prefix = keyPrefix + namespace + ":"
	}
	return &CredentialStore{client: client, prefix: prefix}
}

func (s *CredentialStore) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, errors.New("key cannot be empty")
	}

	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return v, true, nil
}

func (s *CredentialStore) Save(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes key; a missing key is not an error.
func (s *CredentialStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *CredentialStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
