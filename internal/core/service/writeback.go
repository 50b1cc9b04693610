package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// writeBack runs one persistence job on a single background worker. Schedule
// requests are coalesced: any number of calls made while a job is pending or
// running result in at most one further run.
type writeBack struct {
	job  func(ctx context.Context)
	kick chan struct{}
	stop chan struct{}
	done chan struct{}
	log  zerolog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	drainMu   sync.Mutex // serializes runs made after the worker exited
}

func newWriteBack(job func(ctx context.Context), log zerolog.Logger) *writeBack {
	return &writeBack{
		job:  job,
		kick: make(chan struct{}, 1),
		stop: make(chan struct{}),
		done: make(chan struct{}),
		log:  log,
	}
}

// Start launches the worker. It stops when ctx is cancelled or Close is called,
// running the job one last time either way. Only the first call has any effect.
func (w *writeBack) Start(ctx context.Context) {
	w.startOnce.Do(func() {
		go w.run(ctx)
	})
}

// Schedule asks for a run. Never blocks.
func (w *writeBack) Schedule() {
	select {
	case w.kick <- struct{}{}:
	default:
	}
}

// Close waits for the worker to exit and then runs the job once more, so work
// scheduled after a context cancellation stopped the worker is not lost. Safe
// to call more than once; a never-started worker is started first.
func (w *writeBack) Close() {
	w.Start(context.Background())
	w.stopOnce.Do(func() { close(w.stop) })
	<-w.done

	w.drainMu.Lock()
	defer w.drainMu.Unlock()
	w.job(context.Background())
}

// Done is closed once the worker has exited.
func (w *writeBack) Done() <-chan struct{} {
	return w.done
}

func (w *writeBack) run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			w.log.Debug().Msg("write-back worker stopped by context")
			w.job(context.WithoutCancel(ctx))
			return
		case <-w.stop:
			w.job(context.WithoutCancel(ctx))
			return
		case <-w.kick:
			w.job(ctx)
		}
	}
}
