package ledger_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Farman-RT/QuickSaver/internal/ledger"
)

func openStore(t *testing.T) *ledger.Store {
	t.Helper()
	store, err := ledger.Open(filepath.Join(t.TempDir(), "data", "urls.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAppendAndRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Unix(1_700_000_000, 0)

	for i, url := range []string{"https://a.test", "https://b.test", "https://c.test"} {
		if _, err := store.Append(ctx, url, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("Append %s: %v", url, err)
		}
	}

	entries, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].URL != "https://c.test" || entries[1].URL != "https://b.test" {
		t.Fatalf("expected newest first, got %+v", entries)
	}
	if entries[0].Timestamp != base.Add(2*time.Minute).Unix() {
		t.Fatalf("unexpected timestamp %d", entries[0].Timestamp)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected count 3, got %d", count)
	}
}

func TestAppendRejectsEmptyURL(t *testing.T) {
	store := openStore(t)
	if _, err := store.Append(context.Background(), "  ", time.Now()); err == nil {
		t.Fatal("expected error for empty url")
	}
}

func TestRecentWithNonPositiveLimit(t *testing.T) {
	store := openStore(t)
	entries, err := store.Recent(context.Background(), 0)
	if err != nil || entries != nil {
		t.Fatalf("expected nil result, got %v, %v", entries, err)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.db")
	store, err := ledger.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.Append(context.Background(), "https://a.test", time.Now()); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := ledger.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	count, err := reopened.Count(context.Background())
	if err != nil || count != 1 {
		t.Fatalf("expected 1 entry after reopen, got %d, %v", count, err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := ledger.Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
