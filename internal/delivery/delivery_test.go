package delivery_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Farman-RT/QuickSaver/internal/delivery"
	"github.com/Farman-RT/QuickSaver/internal/logging"
	"github.com/Farman-RT/QuickSaver/internal/testsupport"
	"github.com/Farman-RT/QuickSaver/internal/workspace"
)

func newService(t *testing.T, chunk int) (*delivery.Service, *workspace.Manager) {
	t.Helper()
	files, err := workspace.New(t.TempDir())
	if err != nil {
		t.Fatalf("workspace.New: %v", err)
	}
	return delivery.NewService(files, chunk, logging.NewNop()), files
}

// countingWriter records the size of every write it receives.
type countingWriter struct {
	bytes.Buffer
	writes []int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.writes = append(c.writes, len(p))
	return c.Buffer.Write(p)
}

func TestOpenStreamAndDelete(t *testing.T) {
	svc, files := newService(t, 1024)
	content := testsupport.WriteArtifact(t, files.Dir(), "video-abc.mp4", 2500)

	dl, err := svc.Open("video-abc.mp4")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if dl.Name != "video-abc.mp4" || dl.ContentType != "video/mp4" || dl.Size != 2500 {
		t.Fatalf("unexpected metadata %+v", dl)
	}

	var out countingWriter
	n, err := dl.WriteTo(&out)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if n != 2500 || !bytes.Equal(out.Bytes(), content) {
		t.Fatalf("streamed content mismatch: n=%d", n)
	}
	for _, w := range out.writes {
		if w > 1024 {
			t.Fatalf("write of %d bytes exceeds chunk size", w)
		}
	}
	if len(out.writes) != 3 {
		t.Fatalf("expected 3 chunked writes, got %v", out.writes)
	}

	if err := dl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if testsupport.Exists(t, filepath.Join(files.Dir(), "video-abc.mp4")) {
		t.Fatal("artifact should be deleted after Close")
	}
	if err := dl.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got %v", err)
	}

	if _, err := svc.Open("video-abc.mp4"); !errors.Is(err, delivery.ErrNotFound) {
		t.Fatalf("expected second redemption to fail, got %v", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("client gone") }

func TestCloseDeletesAfterInterruptedStream(t *testing.T) {
	svc, files := newService(t, 16)
	testsupport.WriteArtifact(t, files.Dir(), "video-abc.mp3", 100)

	dl, err := svc.Open("video-abc.mp3")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := dl.WriteTo(failingWriter{}); err == nil {
		t.Fatal("expected write error")
	}
	_ = dl.Close()
	if testsupport.Exists(t, filepath.Join(files.Dir(), "video-abc.mp3")) {
		t.Fatal("artifact should be deleted even when streaming fails")
	}
}

func TestOpenRejectsUnknownAndTraversal(t *testing.T) {
	svc, files := newService(t, 0)
	testsupport.WriteArtifact(t, files.Dir(), "video-abc.mp4.part", 10)

	for _, token := range []string{"video-missing.mp4", "../../etc/passwd", "", "video-abc.mp4.part", ".."} {
		if _, err := svc.Open(token); !errors.Is(err, delivery.ErrNotFound) {
			t.Errorf("Open(%q) expected ErrNotFound, got %v", token, err)
		}
	}
	if !testsupport.Exists(t, filepath.Join(files.Dir(), "video-abc.mp4.part")) {
		t.Fatal("rejected open must not remove files")
	}
}

func TestContentType(t *testing.T) {
	for name, want := range map[string]string{
		"video-a.mp4":  "video/mp4",
		"video-a.MP3":  "audio/mpeg",
		"video-a.webm": "video/webm",
		"video-a.m4a":  "audio/mp4",
		"video-a":      "application/octet-stream",
		"video-a.zzz9": "application/octet-stream",
	} {
		if got := delivery.ContentType(name); got != want {
			t.Errorf("ContentType(%q) = %q, want %q", name, got, want)
		}
	}
}
