package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Farman-RT/QuickSaver/internal/logging"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	m, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestNewRejectsEmptyDir(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatal("expected error for empty scratch dir")
	}
}

func TestNewIdentifierIsHexAndUnique(t *testing.T) {
	m := newManager(t)
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := m.NewIdentifier()
		if len(id) != identifierLength || !validIdentifier(id) {
			t.Fatalf("unexpected identifier %q", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate identifier %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestOutputTemplate(t *testing.T) {
	m := newManager(t)
	got := m.OutputTemplate("abc123")
	want := filepath.Join(m.Dir(), "video-abc123.%(ext)s")
	if got != want {
		t.Fatalf("OutputTemplate = %q, want %q", got, want)
	}
}

func TestResolveArtifactSkipsPartials(t *testing.T) {
	m := newManager(t)
	writeFile(t, filepath.Join(m.Dir(), "video-abc123.mp4.part"), "partial")
	writeFile(t, filepath.Join(m.Dir(), "video-abc123.f137.mp4.ytdl"), "state")

	if _, err := m.ResolveArtifact("abc123"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound with only partial files, got %v", err)
	}

	writeFile(t, filepath.Join(m.Dir(), "video-abc123.mp4"), "finished")
	artifact, err := m.ResolveArtifact("abc123")
	if err != nil {
		t.Fatalf("ResolveArtifact: %v", err)
	}
	if artifact.Name != "video-abc123.mp4" {
		t.Fatalf("unexpected artifact %q", artifact.Name)
	}
	if artifact.Size != int64(len("finished")) {
		t.Fatalf("unexpected size %d", artifact.Size)
	}
}

func TestResolveArtifactIgnoresOtherIdentifiers(t *testing.T) {
	m := newManager(t)
	writeFile(t, filepath.Join(m.Dir(), "video-abc1234.mp4"), "other")
	if _, err := m.ResolveArtifact("abc123"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected prefix collision to be ignored, got %v", err)
	}
	if _, err := m.ResolveArtifact("../etc"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected non-hex identifier to be rejected, got %v", err)
	}
}

func TestPathFor(t *testing.T) {
	m := newManager(t)
	cases := []struct {
		token string
		want  string
		err   bool
	}{
		{token: "video-abc.mp4", want: "video-abc.mp4"},
		{token: "nested/video-abc.mp3", want: "video-abc.mp3"},
		{token: "../../etc/passwd", err: true},
		{token: "..\\..\\video-x.mp4", want: "video-x.mp4"},
		{token: "..", err: true},
		{token: ".", err: true},
		{token: "", err: true},
		{token: "video-", err: true},
		{token: "passwd", err: true},
		{token: "video-abc.mp4.part", err: true},
		{token: "video-a\x00b.mp4", err: true},
	}
	for _, tc := range cases {
		got, err := m.PathFor(tc.token)
		if tc.err {
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("PathFor(%q) expected ErrInvalidToken, got %q, %v", tc.token, got, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("PathFor(%q) unexpected error: %v", tc.token, err)
			continue
		}
		if got != filepath.Join(m.Dir(), tc.want) {
			t.Errorf("PathFor(%q) = %q, want %q", tc.token, got, tc.want)
		}
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	m := newManager(t)
	path := filepath.Join(m.Dir(), "video-abc.mp4")
	writeFile(t, path, "x")
	if err := m.Remove(path); err != nil {
		t.Fatalf("first remove: %v", err)
	}
	if err := m.Remove(path); err != nil {
		t.Fatalf("second remove should be a no-op, got %v", err)
	}
}

func TestRemoveIdentifierRemovesPartialsToo(t *testing.T) {
	m := newManager(t)
	writeFile(t, filepath.Join(m.Dir(), "video-abc.mp4"), "a")
	writeFile(t, filepath.Join(m.Dir(), "video-abc.webm.part"), "b")
	writeFile(t, filepath.Join(m.Dir(), "video-def.mp4"), "c")

	if n := m.RemoveIdentifier("abc"); n != 2 {
		t.Fatalf("expected 2 removed, got %d", n)
	}
	if _, err := os.Stat(filepath.Join(m.Dir(), "video-def.mp4")); err != nil {
		t.Fatalf("unrelated artifact should survive: %v", err)
	}
}

func TestSweepRemovesOnlyOldArtifacts(t *testing.T) {
	m := newManager(t)
	old := filepath.Join(m.Dir(), "video-old.mp4")
	fresh := filepath.Join(m.Dir(), "video-new.mp4")
	foreign := filepath.Join(m.Dir(), "notes.txt")
	writeFile(t, old, "12345")
	writeFile(t, fresh, "x")
	writeFile(t, foreign, "keep")
	past := time.Now().Add(-2 * time.Hour)
	for _, p := range []string{old, foreign} {
		if err := os.Chtimes(p, past, past); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	result := m.Sweep(context.Background(), time.Hour, logging.NewNop())
	if len(result.Removed) != 1 || result.Removed[0] != old {
		t.Fatalf("unexpected removals: %v", result.Removed)
	}
	if result.Reclaimed != 5 {
		t.Fatalf("expected 5 bytes reclaimed, got %d", result.Reclaimed)
	}
	if result.Considered != 2 {
		t.Fatalf("expected 2 considered, got %d", result.Considered)
	}
	for _, p := range []string{fresh, foreign} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("%s should remain: %v", p, err)
		}
	}
}

func TestResolvedArtifactSurvivesSweepDespiteServerMtime(t *testing.T) {
	m := newManager(t)
	id := m.NewIdentifier()
	path := filepath.Join(m.Dir(), "video-"+id+".mp4")
	writeFile(t, path, "media")
	lastModified := time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC)
	if err := os.Chtimes(path, lastModified, lastModified); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	artifact, err := m.ResolveArtifact(id)
	if err != nil {
		t.Fatalf("ResolveArtifact: %v", err)
	}
	if time.Since(artifact.ModTime) > time.Minute {
		t.Fatalf("expected retention clock reset on resolve, got %s", artifact.ModTime)
	}

	result := m.Sweep(context.Background(), time.Hour, logging.NewNop())
	if len(result.Removed) != 0 {
		t.Fatalf("freshly resolved artifact swept: %v", result.Removed)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("artifact should remain redeemable: %v", err)
	}
}

func TestSweepDisabledWithZeroAge(t *testing.T) {
	m := newManager(t)
	writeFile(t, filepath.Join(m.Dir(), "video-old.mp4"), "x")
	if result := m.Sweep(context.Background(), 0, nil); len(result.Removed) != 0 {
		t.Fatalf("expected no removals, got %v", result.Removed)
	}
}

func TestListReportsArtifacts(t *testing.T) {
	m := newManager(t)
	writeFile(t, filepath.Join(m.Dir(), "video-a.mp4"), "a")
	writeFile(t, filepath.Join(m.Dir(), "video-b.mp3.part"), "b")
	writeFile(t, filepath.Join(m.Dir(), "other"), "c")

	list, err := m.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(list))
	}
	for _, a := range list {
		if !strings.HasPrefix(a.Name, ArtifactPrefix) {
			t.Fatalf("unexpected entry %q", a.Name)
		}
	}
}

func TestIsPartial(t *testing.T) {
	for name, want := range map[string]bool{
		"video-a.mp4.part": true,
		"video-a.MP4.PART": true,
		"video-a.ytdl":     true,
		"video-a.temp":     true,
		"video-a.mp4":      false,
		"video-a.partial":  false,
	} {
		if got := IsPartial(name); got != want {
			t.Errorf("IsPartial(%q) = %v, want %v", name, got, want)
		}
	}
}
