package deps

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Farman-RT/QuickSaver/internal/config"
)

var stubScript = []byte("#!/bin/sh\nexit 0\n")

func writeStub(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, executableName(name))
	if err := os.WriteFile(path, stubScript, 0o755); err != nil {
		t.Fatalf("write %s stub: %v", name, err)
	}
	return path
}

func TestCheckBinaries(t *testing.T) {
	present := writeStub(t, t.TempDir(), "present")
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path != present || results[0].Detail != "" {
		t.Fatalf("unexpected status for present binary: %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for blank command: %q", results[2].Detail)
	}
}

func TestCheckFFmpegPrefersSibling(t *testing.T) {
	tmp := t.TempDir()
	ytdlpPath := writeStub(t, tmp, "yt-dlp")
	ffmpegPath := writeStub(t, tmp, "ffmpeg")

	status := CheckFFmpegForYtDlp(ytdlpPath)
	if !status.Available {
		t.Fatalf("expected sibling ffmpeg to be available, got detail %q", status.Detail)
	}
	if status.Command != ffmpegPath {
		t.Fatalf("expected ffmpeg command %q, got %q", ffmpegPath, status.Command)
	}
}

func TestCheckFFmpegPathFallback(t *testing.T) {
	tmp := t.TempDir()
	ytdlpPath := writeStub(t, tmp, "yt-dlp")
	binDir := filepath.Join(tmp, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	ffmpegPath := writeStub(t, binDir, "ffmpeg")
	t.Setenv("PATH", binDir)

	status := CheckFFmpegForYtDlp(ytdlpPath)
	if !status.Available || status.Path != ffmpegPath {
		t.Fatalf("expected PATH ffmpeg %q, got %#v", ffmpegPath, status)
	}
}

func TestCheckFFmpegNotFound(t *testing.T) {
	t.Setenv("PATH", "")
	status := CheckFFmpegForYtDlp(filepath.Join(t.TempDir(), "yt-dlp"))
	if status.Available || status.Detail == "" {
		t.Fatalf("expected unavailable ffmpeg with detail, got %#v", status)
	}
	if !status.Optional {
		t.Fatal("ffmpeg should be reported as optional")
	}
}

func TestCheckAndMissingRequired(t *testing.T) {
	binDir := t.TempDir()
	t.Setenv("PATH", binDir)

	cfg := config.Default()
	statuses := Check(&cfg)
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	missing := MissingRequired(statuses)
	if len(missing) != 1 || missing[0].Name != "yt-dlp" {
		t.Fatalf("expected yt-dlp reported missing, got %#v", missing)
	}

	writeStub(t, binDir, "yt-dlp")
	if missing := MissingRequired(Check(&cfg)); len(missing) != 0 {
		t.Fatalf("expected no missing requirements, got %#v", missing)
	}
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}
