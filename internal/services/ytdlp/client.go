package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Format selects what the downloader produces.
type Format string

const (
	FormatMP4 Format = "mp4"
	FormatMP3 Format = "mp3"
)

// ParseFormat maps client input to a Format. Anything other than mp3 yields mp4.
func ParseFormat(value string) Format {
	if strings.EqualFold(strings.TrimSpace(value), string(FormatMP3)) {
		return FormatMP3
	}
	return FormatMP4
}

const (
	defaultFragments    = 4
	defaultPlayerClient = "android"
	outputTailLimit     = 64 << 10
	waitDelay           = 5 * time.Second
)

// Options describes one downloader invocation.
type Options struct {
	URL            string
	OutputTemplate string
	Format         Format
	Fragments      int
	PlayerClient   string
}

// BuildArgs returns the yt-dlp argument vector for opts. The URL is always the
// final argument; callers validate it as an absolute http(s) URL first, so it
// can never be read as an option.
func BuildArgs(opts Options) []string {
	fragments := opts.Fragments
	if fragments <= 0 {
		fragments = defaultFragments
	}
	client := strings.TrimSpace(opts.PlayerClient)
	if client == "" {
		client = defaultPlayerClient
	}

	args := []string{
		"--no-playlist",
		"--geo-bypass",
		"--no-mtime",
		"-N", strconv.Itoa(fragments),
		"--extractor-args", "youtube:player_client=" + client,
		"-o", opts.OutputTemplate,
	}
	switch opts.Format {
	case FormatMP3:
		args = append(args, "-x", "--audio-format", "mp3", "-S", "abr,asr,ext:m4a")
	default:
		args = append(args, "-f", "bv*[ext=mp4]+ba[ext=m4a]/b[ext=mp4]/bv*+ba/b", "-S", "res,ext:mp4:m4a")
	}
	return append(args, opts.URL)
}

// Result captures a finished process. Stdout and Stderr hold at most the last
// 64 KiB of each stream.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Elapsed  time.Duration
}

// Executor abstracts command execution for testability. A non-zero exit is
// reported through Result.ExitCode with a nil error; errors are reserved for
// start failures and for context cancellation, in which case the context's
// error is returned.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (Result, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary string
	exec   Executor
}

// New constructs a yt-dlp client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	client := &Client{binary: binary, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary returns the configured executable.
func (c *Client) Binary() string {
	return c.binary
}

// Download runs yt-dlp with the arguments built from opts. The caller owns the
// deadline on ctx.
func (c *Client) Download(ctx context.Context, opts Options) (Result, []string, error) {
	if strings.TrimSpace(opts.URL) == "" {
		return Result{}, nil, errors.New("url required")
	}
	if strings.TrimSpace(opts.OutputTemplate) == "" {
		return Result{}, nil, errors.New("output template required")
	}
	args := BuildArgs(opts)
	result, err := c.exec.Run(ctx, c.binary, args)
	return result, args, err
}

// Version reports the installed yt-dlp version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	result, err := c.exec.Run(ctx, c.binary, []string{"--version"})
	if err != nil {
		return "", err
	}
	if result.ExitCode != 0 {
		return "", fmt.Errorf("yt-dlp --version exited with status %d", result.ExitCode)
	}
	return strings.TrimSpace(result.Stdout), nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (Result, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.WaitDelay = waitDelay
	stdout := &tailBuffer{limit: outputTailLimit}
	stderr := &tailBuffer{limit: outputTailLimit}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("start command: %w", err)
	}
	err := cmd.Wait()
	result := Result{
		ExitCode: -1,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Elapsed:  time.Since(start),
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}
	// A clean exit wins over a deadline that fired while Wait was returning.
	if err == nil && cmd.ProcessState != nil && cmd.ProcessState.Success() {
		return result, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return result, nil
		}
		return result, fmt.Errorf("wait command: %w", err)
	}
	return result, nil
}

// tailBuffer keeps the most recent limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	limit int
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(p)
	if len(p) >= b.limit {
		b.buf.Reset()
		b.buf.Write(p[len(p)-b.limit:])
		return n, nil
	}
	if over := b.buf.Len() + len(p) - b.limit; over > 0 {
		b.buf.Next(over)
	}
	b.buf.Write(p)
	return n, nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
