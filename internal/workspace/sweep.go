package workspace

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Farman-RT/QuickSaver/internal/logging"
)

// SweepResult contains the outcome of an orphan sweep.
type SweepResult struct {
	Removed    []string
	Reclaimed  int64
	Errors     []SweepError
	Considered int
}

// SweepError pairs a file path with its removal error.
type SweepError struct {
	Path  string
	Error error
}

// Sweep removes downloader files older than maxAge. Only names carrying the
// artifact prefix are considered, so unrelated files sharing the directory are
// left alone. maxAge must exceed the fetch timeout; otherwise a live download
// could lose its partial file.
func (m *Manager) Sweep(ctx context.Context, maxAge time.Duration, logger *slog.Logger) SweepResult {
	result := SweepResult{}
	if maxAge <= 0 {
		return result
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, SweepError{Path: m.dir, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if ctx != nil && ctx.Err() != nil {
			break
		}
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), ArtifactPrefix) {
			continue
		}
		result.Considered++

		path := filepath.Join(m.dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			if !os.IsNotExist(err) {
				result.Errors = append(result.Errors, SweepError{Path: path, Error: err})
			}
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := m.Remove(path); err != nil {
			result.Errors = append(result.Errors, SweepError{Path: path, Error: err})
			if logger != nil {
				logger.Warn("failed to remove orphaned artifact",
					logging.String("path", path),
					logging.Error(err),
					logging.String(logging.FieldEventType, "sweep_failed"),
					logging.String(logging.FieldErrorHint, "check scratch_dir permissions"),
					logging.String(logging.FieldImpact, "disk space not reclaimed"),
				)
			}
			continue
		}
		result.Removed = append(result.Removed, path)
		result.Reclaimed += info.Size()
		if logger != nil {
			logger.Info("removed orphaned artifact",
				logging.String("path", path),
				logging.Duration("age", time.Since(info.ModTime())),
				logging.Int64("bytes", info.Size()),
				logging.String(logging.FieldEventType, "sweep_removed"),
			)
		}
	}
	return result
}

// List returns every downloader file currently in scratch, partial or not.
func (m *Manager) List() ([]Artifact, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []Artifact
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), ArtifactPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, Artifact{
			Name:    entry.Name(),
			Path:    filepath.Join(m.dir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return out, nil
}
