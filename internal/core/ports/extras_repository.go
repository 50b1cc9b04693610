package ports

import (
	"context"

	"github.com/formasuite/trainerdesk/internal/core/domain"
)

// ExtrasPersister loads and stores the whole extras document. Save always
// overwrites the previous document entirely.
type ExtrasPersister interface {
	// Load returns the stored document. A missing document is reported as an
	// empty document, not an error.
	Load(ctx context.Context) (*domain.ExtrasDocument, error)
	Save(ctx context.Context, doc *domain.ExtrasDocument) error
}
