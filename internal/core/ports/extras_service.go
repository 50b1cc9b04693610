package ports

import (
	"context"

	"github.com/formasuite/trainerdesk/internal/core/domain"
)

// ExtrasService is the keyed side-car used by entity detail screens.
// Reads never touch the persister; writes are persisted asynchronously.
type ExtrasService interface {
	Client(id int64) (*domain.ClientExtras, bool)
	SetClient(id int64, extras *domain.ClientExtras)
	Formateur(id int64) (*domain.FormateurExtras, bool)
	SetFormateur(id int64, extras *domain.FormateurExtras)
	Session(id int64) (*domain.SessionExtras, bool)
	SetSession(id int64, extras *domain.SessionExtras)

	// Flush blocks until every mutation made before the call has been written
	// (or dropped) and returns the outcome of the latest write.
	Flush(ctx context.Context) error
}
