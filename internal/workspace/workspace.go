package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ArtifactPrefix starts every file name the downloader writes into scratch.
const ArtifactPrefix = "video-"

// identifierLength is the number of hex characters kept from a random UUID (64 bits).
const identifierLength = 16

var (
	// ErrNotFound reports that no resolved artifact exists for an identifier.
	ErrNotFound = errors.New("artifact not found")
	// ErrInvalidToken reports a token that cannot name an artifact inside scratch.
	ErrInvalidToken = errors.New("invalid download token")
)

// partialSuffixes mark files yt-dlp is still writing.
var partialSuffixes = []string{".part", ".ytdl", ".temp"}

// Artifact is a resolved downloader output inside the scratch directory.
type Artifact struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Manager owns the scratch directory shared by concurrent fetches. Each fetch
// owns the files carrying its identifier prefix; the manager itself holds no
// per-request state.
type Manager struct {
	dir string
}

// New returns a manager rooted at dir, creating the directory when missing.
func New(dir string) (*Manager, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("scratch directory required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve scratch directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}
	return &Manager{dir: abs}, nil
}

// Dir returns the absolute scratch directory.
func (m *Manager) Dir() string {
	return m.dir
}

// NewIdentifier returns a fresh lowercase hex identifier.
func (m *Manager) NewIdentifier() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:identifierLength]
}

// OutputTemplate returns the yt-dlp output template for an identifier; yt-dlp
// substitutes the extension it chooses for %(ext)s.
func (m *Manager) OutputTemplate(id string) string {
	return filepath.Join(m.dir, artifactStem(id)+".%(ext)s")
}

// ResolveArtifact scans scratch for the finished file of an identifier.
//
// Files still carrying a partial suffix are skipped. The suffix is the only
// completion signal yt-dlp offers, so a file renamed between the listing and the
// caller's use is possible; callers treat the result as best available.
//
// The resolved file's modification time is reset to now so the sweep's
// retention window starts at resolution, whatever timestamp the downloader set.
func (m *Manager) ResolveArtifact(id string) (Artifact, error) {
	if !validIdentifier(id) {
		return Artifact{}, ErrNotFound
	}
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return Artifact{}, fmt.Errorf("list scratch directory: %w", err)
	}
	prefix := artifactStem(id) + "."
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) || IsPartial(name) {
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(m.dir, name)
		modTime := info.ModTime()
		now := time.Now()
		if err := os.Chtimes(path, now, now); err == nil {
			modTime = now
		}
		return Artifact{
			Name:    name,
			Path:    path,
			Size:    info.Size(),
			ModTime: modTime,
		}, nil
	}
	return Artifact{}, ErrNotFound
}

// PathFor maps an externally supplied token to a path inside scratch. Only the
// token's base name is considered, and anything that cannot be a finished
// artifact name is rejected with ErrInvalidToken.
func (m *Manager) PathFor(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsRune(token, 0) {
		return "", ErrInvalidToken
	}
	name := filepath.Base(filepath.FromSlash(strings.ReplaceAll(token, "\\", "/")))
	switch {
	case name == "." || name == ".." || name == string(filepath.Separator):
		return "", ErrInvalidToken
	case strings.ContainsAny(name, `/\`):
		return "", ErrInvalidToken
	case !strings.HasPrefix(name, ArtifactPrefix) || len(name) <= len(ArtifactPrefix):
		return "", ErrInvalidToken
	case IsPartial(name):
		return "", ErrInvalidToken
	}
	path := filepath.Join(m.dir, name)
	if filepath.Dir(path) != m.dir {
		return "", ErrInvalidToken
	}
	return path, nil
}

// Remove deletes a file; a missing file is not an error.
func (m *Manager) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// RemoveIdentifier deletes every file carrying the identifier's prefix,
// finished or partial, and reports how many were removed.
func (m *Manager) RemoveIdentifier(id string) int {
	if !validIdentifier(id) {
		return 0
	}
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return 0
	}
	prefix := artifactStem(id) + "."
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		if err := os.Remove(filepath.Join(m.dir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed
}

// IsPartial reports whether name carries an in-progress downloader suffix.
func IsPartial(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range partialSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

func artifactStem(id string) string {
	return ArtifactPrefix + id
}

func validIdentifier(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
