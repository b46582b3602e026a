package testsupport

import (
	"context"
	"testing"
	"time"

	"github.com/Farman-RT/QuickSaver/internal/config"
	"github.com/Farman-RT/QuickSaver/internal/ledger"
)

// MustOpenLedger opens a ledger.Store for tests and registers cleanup.
func MustOpenLedger(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(cfg.LedgerPath())
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// AppendURL records url in the ledger at the given time.
func AppendURL(t testing.TB, store *ledger.Store, url string, at time.Time) int64 {
	t.Helper()

	id, err := store.Append(context.Background(), url, at)
	if err != nil {
		t.Fatalf("store.Append: %v", err)
	}
	return id
}
