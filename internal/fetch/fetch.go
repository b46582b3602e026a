package fetch

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Farman-RT/QuickSaver/internal/logging"
	"github.com/Farman-RT/QuickSaver/internal/services"
	"github.com/Farman-RT/QuickSaver/internal/services/ytdlp"
	"github.com/Farman-RT/QuickSaver/internal/workspace"
)

// DefaultTimeout bounds one yt-dlp run when no timeout is configured.
const DefaultTimeout = 12 * time.Minute

const stage = "fetch"

// Downloader runs the external fetcher.
type Downloader interface {
	Download(ctx context.Context, opts ytdlp.Options) (ytdlp.Result, []string, error)
}

// Recorder accepts submissions for the ledger without blocking.
type Recorder interface {
	Record(url string, at time.Time) bool
}

// Notifier publishes operator alerts for failed fetches.
type Notifier interface {
	NotifyFetchFailed(ctx context.Context, url, reason, detail string) error
}

// Workspace is the slice of the scratch manager a fetch needs.
type Workspace interface {
	NewIdentifier() string
	OutputTemplate(id string) string
	ResolveArtifact(id string) (workspace.Artifact, error)
	RemoveIdentifier(id string) int
}

// Request is one client submission.
type Request struct {
	URL    string
	Format ytdlp.Format
}

// Result describes a fetched artifact ready for redemption.
type Result struct {
	Token      string
	Path       string
	Identifier string
	Size       int64
}

// Settings tunes the downloader invocation.
type Settings struct {
	Timeout      time.Duration
	Fragments    int
	PlayerClient string
}

// Orchestrator turns a submission into a redeemable artifact. It holds no
// per-request state, so one instance serves every concurrent request.
type Orchestrator struct {
	files      Workspace
	downloader Downloader
	recorder   Recorder
	notifier   Notifier
	settings   Settings
	logger     *slog.Logger
	now        func() time.Time
	active     atomic.Int64
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithNotifier alerts n whenever a valid submission fails to produce a token.
func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) {
		o.notifier = n
	}
}

// NewOrchestrator wires the fetch pipeline. recorder may be nil.
func NewOrchestrator(files Workspace, downloader Downloader, recorder Recorder, settings Settings, logger *slog.Logger, opts ...Option) *Orchestrator {
	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}
	o := &Orchestrator{
		files:      files,
		downloader: downloader,
		recorder:   recorder,
		settings:   settings,
		logger:     logging.NewComponentLogger(logger, "fetch"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Active reports the number of fetches currently running.
func (o *Orchestrator) Active() int64 {
	return o.active.Load()
}

// Fetch validates the request, runs the downloader under the configured
// timeout and resolves the produced artifact. The downloader keeps running if
// ctx is cancelled; only the timeout stops it.
func (o *Orchestrator) Fetch(ctx context.Context, req Request) (Result, error) {
	target, err := ValidateURL(req.URL)
	if err != nil {
		return Result{}, err
	}
	format := req.Format
	if format != ytdlp.FormatMP3 {
		format = ytdlp.FormatMP4
	}

	if o.recorder != nil {
		o.recorder.Record(target, o.now())
	}

	id := o.files.NewIdentifier()
	ctx = services.WithFetchID(ctx, id)
	logger := logging.WithContext(ctx, o.logger)

	o.active.Add(1)
	defer o.active.Add(-1)

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.settings.Timeout)
	defer cancel()

	opts := ytdlp.Options{
		URL:            target,
		OutputTemplate: o.files.OutputTemplate(id),
		Format:         format,
		Fragments:      o.settings.Fragments,
		PlayerClient:   o.settings.PlayerClient,
	}
	logger.Info("fetch started", logging.String("url", target), logging.String("format", string(format)))
	started := o.now()
	result, args, runErr := o.downloader.Download(runCtx, opts)
	elapsed := o.now().Sub(started)

	if runErr != nil {
		removed := o.files.RemoveIdentifier(id)
		if errors.Is(runErr, context.DeadlineExceeded) || errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			logging.WarnWithContext(logger, "fetch timed out", "fetch_timeout",
				logging.Duration("timeout", o.settings.Timeout),
				logging.Int("files_removed", removed),
				logging.String(logging.FieldErrorHint, "raise fetch.timeout_seconds or retry later"),
				logging.String(logging.FieldImpact, "client receives a timeout"),
			)
			err := services.Wrap(services.ErrTimeout, stage, "run", "download timed out", runErr)
			o.alert(ctx, logger, target, err)
			return Result{}, err
		}
		logging.ErrorWithContext(logger, "fetch process error", "fetch_process_error",
			logging.Error(runErr),
			logging.String(logging.FieldErrorHint, "check fetch.binary is installed and executable"),
		)
		err := services.Wrap(services.ErrExternalTool, stage, "run", "yt-dlp could not be executed", runErr)
		o.alert(ctx, logger, target, err)
		return Result{}, err
	}

	artifact, err := o.files.ResolveArtifact(id)
	if err != nil {
		removed := o.files.RemoveIdentifier(id)
		logging.ErrorWithContext(logger, "fetch produced no artifact", "fetch_no_artifact",
			logging.String("url", target),
			logging.String("args", strings.Join(args, " ")),
			logging.Int("exit_code", result.ExitCode),
			logging.String("stdout", result.Stdout),
			logging.String("stderr", result.Stderr),
			logging.Int("files_removed", removed),
			logging.String(logging.FieldErrorHint, "inspect stderr; the link may be unsupported or yt-dlp outdated"),
		)
		err = services.Wrap(services.ErrNotFound, stage, "resolve", "no artifact produced", err)
		o.alert(ctx, logger, target, err)
		return Result{}, err
	}

	logger.Info("fetch completed",
		logging.String(logging.FieldToken, artifact.Name),
		logging.Int64("bytes", artifact.Size),
		logging.Duration("elapsed", elapsed),
		logging.Int("exit_code", result.ExitCode),
	)
	return Result{
		Token:      artifact.Name,
		Path:       artifact.Path,
		Identifier: id,
		Size:       artifact.Size,
	}, nil
}

// alert publishes the failure in the background so the client response is
// never held up by the notification endpoint.
func (o *Orchestrator) alert(ctx context.Context, logger *slog.Logger, target string, err error) {
	if o.notifier == nil {
		return
	}
	notifier := o.notifier
	reason := string(Reason(err))
	ctx = context.WithoutCancel(ctx)
	go func() {
		if nerr := notifier.NotifyFetchFailed(ctx, target, reason, err.Error()); nerr != nil {
			logging.WarnWithContext(logger, "failure notification not delivered", "notification_failed",
				logging.Error(nerr),
				logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
				logging.String(logging.FieldImpact, "operator not alerted about failed fetch"),
			)
		}
	}()
}

// ValidateURL trims raw and accepts only absolute http(s) URLs with a host.
func ValidateURL(raw string) (string, error) {
	target := strings.TrimSpace(raw)
	if target == "" {
		return "", services.Wrap(services.ErrValidation, stage, "validate", "url required", nil)
	}
	parsed, err := url.Parse(target)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, stage, "validate", "url unparseable", err)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return "", services.Wrap(services.ErrValidation, stage, "validate", "url scheme must be http or https", nil)
	}
	if parsed.Host == "" || parsed.Hostname() == "" {
		return "", services.Wrap(services.ErrValidation, stage, "validate", "url host required", nil)
	}
	return target, nil
}
