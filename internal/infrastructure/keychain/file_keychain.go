// Package keychain provides the default CredentialStore: one AES-GCM encrypted
// file per key inside a private directory.
package keychain

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/crypto/hkdf"
)

const (
	keyInfo  = "trainerdesk-keychain-v1"
	dirPerm  = 0o700
	filePerm = 0o600
)

var (
	ErrEmptySecret  = errors.New("keychain secret is empty")
	ErrCorruptEntry = errors.New("keychain entry cannot be decrypted")
)

// FileKeychain stores each key in <dir>/<sha256(key)>.enc, sealed with a
// 256-bit key derived from the configured secret.
type FileKeychain struct {
	dir  string
	aead cipher.AEAD
}

// New derives the encryption key from secret with HKDF-SHA256.
func New(dir, secret string) (*FileKeychain, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive keychain key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &FileKeychain{dir: dir, aead: aead}, nil
}

func (k *FileKeychain) Get(_ context.Context, key string) (string, bool, error) {
	blob, err := os.ReadFile(k.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read keychain entry: %w", err)
	}

	ns := k.aead.NonceSize()
	if len(blob) < ns {
		return "", false, ErrCorruptEntry
	}
	// key name as additional data: an entry copied under another name fails to open
	plain, err := k.aead.Open(nil, blob[:ns], blob[ns:], []byte(key))
	if err != nil {
		return "", false, ErrCorruptEntry
	}
	return string(plain), true, nil
}

func (k *FileKeychain) Save(_ context.Context, key, value string) error {
	nonce := make([]byte, k.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("keychain nonce: %w", err)
	}
	blob := k.aead.Seal(nonce, nonce, []byte(value), []byte(key))

	if err := os.MkdirAll(k.dir, dirPerm); err != nil {
		return fmt.Errorf("create keychain dir: %w", err)
	}

	tmp, err := os.CreateTemp(k.dir, ".entry-*.tmp")
	if err != nil {
		return fmt.Errorf("create keychain entry: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(blob); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write keychain entry: %w", err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod keychain entry: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync keychain entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close keychain entry: %w", err)
	}
	if err := os.Rename(tmpName, k.path(key)); err != nil {
		return fmt.Errorf("replace keychain entry: %w", err)
	}
	return nil
}

// Delete removes key; a missing key is not an error.
func (k *FileKeychain) Delete(_ context.Context, key string) error {
	err := os.Remove(k.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete keychain entry: %w", err)
	}
	return nil
}

// Ping checks the keychain directory exists or can be created.
func (k *FileKeychain) Ping(_ context.Context) error {
	if err := os.MkdirAll(k.dir, dirPerm); err != nil {
		return fmt.Errorf("keychain dir: %w", err)
	}
	return nil
}

func (k *FileKeychain) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(k.dir, hex.EncodeToString(sum[:])+".enc")
}
