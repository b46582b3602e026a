package delivery

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Farman-RT/QuickSaver/internal/logging"
	"github.com/Farman-RT/QuickSaver/internal/workspace"
)

// DefaultChunkSize is the streaming buffer size when none is configured.
const DefaultChunkSize = 256 * 1024

const fallbackContentType = "application/octet-stream"

// ErrNotFound reports a token that is unknown, malformed, or already redeemed.
var ErrNotFound = errors.New("file not found or expired")

// mediaTypes covers the containers yt-dlp commonly produces; the platform
// MIME table is consulted for anything else.
var mediaTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".mov":  "video/quicktime",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".opus": "audio/ogg",
	".ogg":  "audio/ogg",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".aac":  "audio/aac",
}

// Resolver maps tokens to scratch paths and removes redeemed files.
type Resolver interface {
	PathFor(token string) (string, error)
	Remove(path string) error
}

// Service opens artifacts for one-time redemption.
type Service struct {
	files     Resolver
	chunkSize int
	logger    *slog.Logger
}

// NewService constructs a delivery service. A non-positive chunkSize selects
// DefaultChunkSize.
func NewService(files Resolver, chunkSize int, logger *slog.Logger) *Service {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Service{
		files:     files,
		chunkSize: chunkSize,
		logger:    logging.NewComponentLogger(logger, "delivery"),
	}
}

// Download is an opened artifact. Close must be called exactly once the
// stream ends; it removes the file regardless of whether the copy finished.
type Download struct {
	Name        string
	ContentType string
	Size        int64

	path      string
	file      *os.File
	files     Resolver
	chunkSize int
	logger    *slog.Logger
	once      sync.Once
	closeErr  error
}

// Open resolves token and opens the file for streaming. Unknown, rejected and
// non-regular targets all yield ErrNotFound without side effects.
func (s *Service) Open(token string) (*Download, error) {
	path, err := s.files.PathFor(token)
	if err != nil {
		if errors.Is(err, workspace.ErrInvalidToken) {
			s.logger.Debug("token rejected", logging.String(logging.FieldToken, token))
		}
		return nil, ErrNotFound
	}
	file, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("artifact open failed",
				logging.String(logging.FieldToken, token),
				logging.Error(err),
				logging.String(logging.FieldEventType, "delivery_open_failed"),
				logging.String(logging.FieldErrorHint, "check scratch_dir permissions"),
				logging.String(logging.FieldImpact, "client receives not found"),
			)
		}
		return nil, ErrNotFound
	}
	info, err := file.Stat()
	if err != nil || !info.Mode().IsRegular() {
		_ = file.Close()
		return nil, ErrNotFound
	}

	name := filepath.Base(path)
	return &Download{
		Name:        name,
		ContentType: ContentType(name),
		Size:        info.Size(),
		path:        path,
		file:        file,
		files:       s.files,
		chunkSize:   s.chunkSize,
		logger:      s.logger,
	}, nil
}

// WriteTo streams the file to w in fixed-size chunks.
func (d *Download) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, d.chunkSize)
	n, err := io.CopyBuffer(onlyWriter{w}, onlyReader{d.file}, buf)
	if err != nil {
		return n, fmt.Errorf("stream %s: %w", d.Name, err)
	}
	return n, nil
}

// Close releases the file handle and deletes the artifact. Repeated calls
// return the first result.
func (d *Download) Close() error {
	d.once.Do(func() {
		closeErr := d.file.Close()
		removeErr := d.files.Remove(d.path)
		if removeErr != nil {
			d.logger.Warn("failed to delete redeemed artifact",
				logging.String("path", d.path),
				logging.Error(removeErr),
				logging.String(logging.FieldEventType, "delivery_cleanup_failed"),
				logging.String(logging.FieldErrorHint, "the orphan sweep will retry"),
				logging.String(logging.FieldImpact, "disk space held until next sweep"),
			)
		}
		d.closeErr = errors.Join(closeErr, removeErr)
	})
	return d.closeErr
}

// ContentType guesses the media type from name's extension.
func ContentType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return fallbackContentType
	}
	if ct, ok := mediaTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return fallbackContentType
}

// onlyReader and onlyWriter hide WriterTo and ReaderFrom so CopyBuffer moves
// data through the chunk buffer.
type onlyReader struct {
	r io.Reader
}

func (o onlyReader) Read(p []byte) (int, error) {
	return o.r.Read(p)
}

type onlyWriter struct {
	w io.Writer
}

func (o onlyWriter) Write(p []byte) (int, error) {
	return o.w.Write(p)
}
