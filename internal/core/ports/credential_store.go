package ports

import (
	"context"

	"github.com/formasuite/trainerdesk/internal/core/domain"
)

// CredentialStore is a durable, tamper-resistant key-value store for secrets.
type CredentialStore interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Save(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// CredentialCodec turns the current user into the blob kept in the CredentialStore
// and back. Decode fails on blobs that were altered or have expired.
type CredentialCodec interface {
	Encode(user domain.User) (string, error)
	Decode(blob string) (*domain.User, error)
}
