package ports

import (
	"time"

	"github.com/formasuite/trainerdesk/internal/core/domain"
)

// SessionMetrics records what the session service does. Implementations must
// be safe for concurrent use.
type SessionMetrics interface {
	// SignIn records one attempt; result is "success", "unauthorized",
	// "error" or "persist_failed".
	SignIn(result string)
	StateChanged(authenticated bool)
	Observers(n int)
}

// ExtrasMetrics records extras mutations and write-backs.
type ExtrasMetrics interface {
	// Mutation records one set or remove and the resulting entry count for kind.
	Mutation(kind domain.EntityKind, op string, entries int)
	Entries(kind domain.EntityKind, n int)
	Write(elapsed time.Duration, err error)
}
