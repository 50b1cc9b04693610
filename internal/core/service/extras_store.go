package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/formasuite/trainerdesk/internal/core/domain"
	"github.com/formasuite/trainerdesk/internal/core/ports"
)

// ExtrasStore keeps the extras document in memory and writes it back in full
// after every mutation.
//
// All access to the document goes through mu. Write-back runs on one worker
// goroutine (see writeBack) and always persists a snapshot of the latest
// in-memory document, so bursts of Set calls may be written once.
type ExtrasStore struct {
	persister ports.ExtrasPersister
	log       zerolog.Logger
	metrics   ports.ExtrasMetrics
	wb        *writeBack

	mu       sync.Mutex
	doc      *domain.ExtrasDocument
	rev      uint64 // bumped by every mutation
	savedRev uint64 // latest rev whose write attempt has finished
	lastErr  error
	saved    chan struct{} // closed and replaced after every write attempt
}

// NewExtrasStore loads the document once. A missing, unreadable or corrupt
// document is replaced by an empty one; the cause is only logged.
// Call Start before relying on write-back.
func NewExtrasStore(ctx context.Context, persister ports.ExtrasPersister, log zerolog.Logger) *ExtrasStore {
	doc, err := persister.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("extras document unreadable, starting empty")
		doc = nil
	}
	if doc == nil {
		doc = domain.NewExtrasDocument()
	}
	doc.Normalize()

	s := &ExtrasStore{
		persister: persister,
		log:       log,
		metrics:   nopMetrics{},
		doc:       doc,
		saved:     make(chan struct{}),
	}
	s.wb = newWriteBack(s.writeOnce, log)

	log.Debug().Int("entries", doc.Len()).Msg("extras document loaded")
	return s
}

// WithMetrics attaches m and reports the loaded entry counts. Call it before
// Start.
func (s *ExtrasStore) WithMetrics(m ports.ExtrasMetrics) *ExtrasStore {
	if m == nil {
		return s
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = m
	m.Entries(domain.KindClient, len(s.doc.Clients))
	m.Entries(domain.KindFormateur, len(s.doc.Formateurs))
	m.Entries(domain.KindSession, len(s.doc.Sessions))
	return s
}

// Start launches the write-back worker; it stops when ctx is cancelled.
func (s *ExtrasStore) Start(ctx context.Context) {
	s.wb.Start(ctx)
}

// Close writes anything still pending and stops the worker. It returns the
// outcome of the last write.
func (s *ExtrasStore) Close() error {
	s.wb.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *ExtrasStore) Client(id int64) (*domain.ClientExtras, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return getEntry(s.doc.Clients, id, (*domain.ClientExtras).Clone)
}

func (s *ExtrasStore) SetClient(id int64, extras *domain.ClientExtras) {
	s.mu.Lock()
	op := setEntry(s.doc.Clients, id, extras.Clone())
	n := len(s.doc.Clients)
	s.rev++
	s.mu.Unlock()
	s.mutated(domain.KindClient, op, n)
}

func (s *ExtrasStore) Formateur(id int64) (*domain.FormateurExtras, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return getEntry(s.doc.Formateurs, id, (*domain.FormateurExtras).Clone)
}

func (s *ExtrasStore) SetFormateur(id int64, extras *domain.FormateurExtras) {
	s.mu.Lock()
	op := setEntry(s.doc.Formateurs, id, extras.Clone())
	n := len(s.doc.Formateurs)
	s.rev++
	s.mu.Unlock()
	s.mutated(domain.KindFormateur, op, n)
}

func (s *ExtrasStore) Session(id int64) (*domain.SessionExtras, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return getEntry(s.doc.Sessions, id, (*domain.SessionExtras).Clone)
}

func (s *ExtrasStore) SetSession(id int64, extras *domain.SessionExtras) {
	s.mu.Lock()
	op := setEntry(s.doc.Sessions, id, extras.Clone())
	n := len(s.doc.Sessions)
	s.rev++
	s.mu.Unlock()
	s.mutated(domain.KindSession, op, n)
}

// Flush waits until every mutation made before the call has been through a
// write attempt and returns that attempt's error. It returns
// domain.ErrStoreClosed when the worker exited with mutations still unwritten.
func (s *ExtrasStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	target := s.rev
	s.mu.Unlock()

	for {
		s.mu.Lock()
		if s.savedRev >= target {
			err := s.lastErr
			s.mu.Unlock()
			return err
		}
		saved := s.saved
		s.mu.Unlock()

		s.wb.Schedule()

		select {
		case <-saved:
		case <-s.wb.Done():
			s.mu.Lock()
			ok, err := s.savedRev >= target, s.lastErr
			s.mu.Unlock()
			if ok {
				return err
			}
			return domain.ErrStoreClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *ExtrasStore) mutated(kind domain.EntityKind, op string, entries int) {
	s.metrics.Mutation(kind, op, entries)
	s.wb.Schedule()
}

// writeOnce persists a snapshot of the current document if anything changed
// since the last attempt. A failed write is logged and dropped.
func (s *ExtrasStore) writeOnce(ctx context.Context) {
	s.mu.Lock()
	if s.rev == s.savedRev {
		s.mu.Unlock()
		return
	}
	snapshot := s.doc.Clone()
	rev := s.rev
	s.mu.Unlock()

	start := time.Now()
	err := s.persister.Save(ctx, snapshot)
	s.metrics.Write(time.Since(start), err)

	if err != nil {
		s.log.Error().Err(err).Uint64("rev", rev).Msg("extras write-back failed")
	} else {
		s.log.Debug().Uint64("rev", rev).Int("entries", snapshot.Len()).Msg("extras written")
	}

	s.mu.Lock()
	s.savedRev = rev
	s.lastErr = err
	close(s.saved)
	s.saved = make(chan struct{})
	s.mu.Unlock()
}

func getEntry[T any](m map[string]*T, id int64, clone func(*T) *T) (*T, bool) {
	v, ok := m[domain.ExtrasKey(id)]
	if !ok || v == nil {
		return nil, false
	}
	return clone(v), true
}

// setEntry replaces the entry for id, or removes it when v is nil.
func setEntry[T any](m map[string]*T, id int64, v *T) string {
	key := domain.ExtrasKey(id)
	if v == nil {
		delete(m, key)
		return "remove"
	}
	m[key] = v
	return "set"
}
