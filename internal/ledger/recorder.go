package ledger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Farman-RT/QuickSaver/internal/logging"
)

const (
	defaultQueueCapacity = 256
	appendTimeout        = 10 * time.Second
)

// Appender persists one submission.
type Appender interface {
	Append(ctx context.Context, url string, at time.Time) (int64, error)
}

type pendingEntry struct {
	url string
	at  time.Time
}

// Recorder serializes ledger writes through a single goroutine fed by a
// bounded queue, keeping submissions off the request path. Record never
// blocks; a full queue drops the entry with a warning.
type Recorder struct {
	store  Appender
	logger *slog.Logger
	queue  chan pendingEntry

	mu     sync.Mutex
	closed bool
	done   chan struct{}

	dropped  int64
	failures int64
}

// NewRecorder starts the writer goroutine. Close must be called to drain it.
func NewRecorder(store Appender, logger *slog.Logger, capacity int) *Recorder {
	if capacity <= 0 {
		capacity = defaultQueueCapacity
	}
	r := &Recorder{
		store:  store,
		logger: logging.NewComponentLogger(logger, "ledger"),
		queue:  make(chan pendingEntry, capacity),
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

// Record enqueues url and reports whether it was accepted.
func (r *Recorder) Record(url string, at time.Time) bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	select {
	case r.queue <- pendingEntry{url: url, at: at}:
		return true
	default:
		r.dropped++
		logging.WarnWithContext(r.logger, "ledger queue full; submission not recorded", "ledger_dropped",
			logging.Int64("dropped_total", r.dropped),
			logging.String(logging.FieldErrorHint, "raise ledger.queue_capacity or check disk latency"),
			logging.String(logging.FieldImpact, "admin history incomplete"),
		)
		return false
	}
}

// Stats returns counters for dropped entries and failed writes.
func (r *Recorder) Stats() (dropped, failures int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped, r.failures
}

// Close stops accepting entries, writes everything queued and waits for the
// writer to exit.
func (r *Recorder) Close() {
	if r == nil {
		return
	}
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	<-r.done
}

func (r *Recorder) run() {
	defer close(r.done)
	for entry := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
		_, err := r.store.Append(ctx, entry.url, entry.at)
		cancel()
		if err != nil {
			r.mu.Lock()
			r.failures++
			r.mu.Unlock()
			logging.ErrorWithContext(r.logger, "ledger write failed", "ledger_write_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check data_dir permissions and free space"),
			)
			continue
		}
		r.logger.Debug("submission recorded", logging.String("url", entry.url))
	}
}
