package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Farman-RT/QuickSaver/internal/ledger"
	"github.com/Farman-RT/QuickSaver/internal/logging"
)

type blockingAppender struct {
	mu      sync.Mutex
	release chan struct{}
	urls    []string
	err     error
}

func (b *blockingAppender) Append(ctx context.Context, url string, at time.Time) (int64, error) {
	if b.release != nil {
		<-b.release
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return 0, b.err
	}
	b.urls = append(b.urls, url)
	return int64(len(b.urls)), nil
}

func (b *blockingAppender) recorded() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.urls...)
}

func TestRecorderPersistsThroughStore(t *testing.T) {
	store := openStore(t)
	recorder := ledger.NewRecorder(store, logging.NewNop(), 8)
	for _, url := range []string{"https://a.test", "https://b.test"} {
		if !recorder.Record(url, time.Now()) {
			t.Fatalf("Record(%s) rejected", url)
		}
	}
	recorder.Close()

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 entries after drain, got %d", count)
	}
}

func TestRecorderDropsWhenFull(t *testing.T) {
	appender := &blockingAppender{release: make(chan struct{})}
	recorder := ledger.NewRecorder(appender, logging.NewNop(), 1)

	accepted := 0
	for i := 0; i < 10; i++ {
		if recorder.Record("https://x.test", time.Now()) {
			accepted++
		}
	}
	// One entry may be held by the writer and one by the queue.
	if accepted > 2 || accepted == 0 {
		t.Fatalf("unexpected accepted count %d", accepted)
	}
	dropped, _ := recorder.Stats()
	if dropped != int64(10-accepted) {
		t.Fatalf("expected %d dropped, got %d", 10-accepted, dropped)
	}

	close(appender.release)
	recorder.Close()
	if got := len(appender.recorded()); got != accepted {
		t.Fatalf("expected %d persisted, got %d", accepted, got)
	}
}

func TestRecorderCountsFailures(t *testing.T) {
	appender := &blockingAppender{err: errors.New("disk full")}
	recorder := ledger.NewRecorder(appender, logging.NewNop(), 4)
	recorder.Record("https://x.test", time.Now())
	recorder.Close()

	_, failures := recorder.Stats()
	if failures != 1 {
		t.Fatalf("expected 1 failure, got %d", failures)
	}
}

func TestRecorderRejectsAfterClose(t *testing.T) {
	recorder := ledger.NewRecorder(&blockingAppender{}, logging.NewNop(), 4)
	recorder.Close()
	recorder.Close()
	if recorder.Record("https://x.test", time.Now()) {
		t.Fatal("expected Record to fail after Close")
	}
}
