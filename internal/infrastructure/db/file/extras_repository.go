package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/formasuite/trainerdesk/internal/core/domain"
)

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

// ExtrasRepository persists the extras document as a single JSON file.
// Writes go to a temporary file in the same directory which is synced and then
// renamed over the target, so a crash leaves either the old or the new document.
type ExtrasRepository struct {
	path string
}

func NewExtrasRepository(path string) *ExtrasRepository {
	return &ExtrasRepository{path: path}
}

// Path returns the backing file location.
func (r *ExtrasRepository) Path() string {
	return r.path
}

// Load reads and decodes the document. A missing file yields an empty document.
func (r *ExtrasRepository) Load(_ context.Context) (*domain.ExtrasDocument, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.NewExtrasDocument(), nil
		}
		return nil, fmt.Errorf("read extras: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return domain.NewExtrasDocument(), nil
	}

	var doc domain.ExtrasDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &domain.DecodingError{Op: "load extras", Err: err}
	}
	doc.Normalize()
	return &doc, nil
}

// Save overwrites the file with doc.
func (r *ExtrasRepository) Save(_ context.Context, doc *domain.ExtrasDocument) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode extras: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create extras dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp extras: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once the rename succeeded
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write extras: %w", err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod extras: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync extras: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close extras: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace extras: %w", err)
	}
	return nil
}

// Ping checks that the directory holding the document is usable.
func (r *ExtrasRepository) Ping(_ context.Context) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("extras dir: %w", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("extras dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("extras dir: %s is not a directory", dir)
	}
	return nil
}
