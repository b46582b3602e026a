package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"github.com/Farman-RT/QuickSaver/internal/api"
	"github.com/Farman-RT/QuickSaver/internal/config"
	"github.com/Farman-RT/QuickSaver/internal/delivery"
	"github.com/Farman-RT/QuickSaver/internal/deps"
	"github.com/Farman-RT/QuickSaver/internal/fetch"
	"github.com/Farman-RT/QuickSaver/internal/ledger"
	"github.com/Farman-RT/QuickSaver/internal/logging"
	"github.com/Farman-RT/QuickSaver/internal/notifications"
	"github.com/Farman-RT/QuickSaver/internal/services/ytdlp"
	"github.com/Farman-RT/QuickSaver/internal/workspace"
)

// Option configures a Daemon.
type Option func(*Daemon)

// WithExecutor replaces the process runner used for yt-dlp (primarily for tests).
func WithExecutor(exec ytdlp.Executor) Option {
	return func(d *Daemon) {
		d.executor = exec
	}
}

// WithNotifier overrides the alert sink built from the notifications config.
func WithNotifier(n notifications.Service) Option {
	return func(d *Daemon) {
		d.notifier = n
	}
}

// Daemon coordinates the HTTP server, ledger recorder and orphan sweeper and
// enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	base     *slog.Logger
	logger   *slog.Logger
	store    *ledger.Store
	files    *workspace.Manager
	executor ytdlp.Executor
	notifier notifications.Service

	lockPath string
	lock     *flock.Flock

	// lifecycle serializes Start and Stop; mu guards the running components.
	lifecycle sync.Mutex
	mu        sync.RWMutex
	recorder  *ledger.Recorder
	fetcher   *fetch.Orchestrator
	api       *apiServer
	sweeps    sync.WaitGroup

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Address      string
	ScratchDir   string
	LedgerPath   string
	LockFilePath string
	Dependencies []deps.Status
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *ledger.Store, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("daemon requires config and ledger store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	files, err := workspace.New(cfg.Paths.ScratchDir)
	if err != nil {
		return nil, fmt.Errorf("scratch workspace: %w", err)
	}
	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		base:     logger,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		files:    files,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.notifier == nil {
		d.notifier = notifications.NewService(cfg)
	}
	return d, nil
}

// Start acquires the instance lock, then starts the recorder, sweeper and
// HTTP server.
func (d *Daemon) Start(ctx context.Context) error {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another quicksaver instance is already running")
	}

	var clientOpts []ytdlp.Option
	if d.executor != nil {
		clientOpts = append(clientOpts, ytdlp.WithExecutor(d.executor))
	}
	client, err := ytdlp.New(d.cfg.Fetch.Binary, clientOpts...)
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("yt-dlp client: %w", err)
	}

	parent := d.base
	recorder := ledger.NewRecorder(d.store, parent, d.cfg.Ledger.QueueCapacity)
	fetcher := fetch.NewOrchestrator(d.files, client, recorder, fetch.Settings{
		Timeout:      d.cfg.FetchTimeout(),
		Fragments:    d.cfg.Fetch.FragmentConcurrency,
		PlayerClient: d.cfg.Fetch.PlayerClient,
	}, parent, fetch.WithNotifier(d.notifier))
	server := api.New(api.Options{
		Fetcher:    fetcher,
		Delivery:   delivery.NewService(d.files, d.cfg.ChunkSize(), parent),
		History:    d.store,
		Health:     d,
		AdminToken: d.cfg.Server.AdminToken,
		AdminLimit: d.cfg.Ledger.AdminLimit,
		Debug:      d.cfg.Server.Debug,
		Logger:     parent,
	})

	runCtx, cancel := context.WithCancel(ctx)
	srv := newAPIServer(d.cfg.ListenAddress(), server.Handler(), d.logger)
	if err := srv.start(runCtx); err != nil {
		cancel()
		recorder.Close()
		_ = d.lock.Unlock()
		return err
	}

	d.mu.Lock()
	d.recorder = recorder
	d.fetcher = fetcher
	d.api = srv
	d.mu.Unlock()
	d.cancel = cancel
	if d.cfg.Sweep.Enabled {
		d.sweeps.Add(1)
		go d.runSweeper(runCtx)
	}

	d.running.Store(true)
	d.logger.Info("quicksaver daemon started",
		logging.String("address", srv.address()),
		logging.String("scratch_dir", d.files.Dir()),
		logging.String("lock", d.lockPath),
	)
	go d.announce(context.WithoutCancel(ctx), srv.address())
	return nil
}

// Stop shuts the HTTP server down, drains the ledger recorder and releases
// the instance lock. In-flight fetches are given the server's shutdown grace.
func (d *Daemon) Stop() {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.sweeps.Wait()
	d.recorder.Close()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock",
			logging.Error(err),
			logging.String(logging.FieldEventType, "lock_release_failed"),
			logging.String(logging.FieldErrorHint, "remove "+d.lockPath+" if no quicksaver process is running"),
			logging.String(logging.FieldImpact, "next start may report another instance"),
		)
	}
	d.mu.Lock()
	d.api = nil
	d.fetcher = nil
	d.recorder = nil
	d.mu.Unlock()
	d.running.Store(false)
	d.logger.Info("quicksaver daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Address returns the bound listen address while running.
func (d *Daemon) Address() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.api == nil {
		return ""
	}
	return d.api.address()
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	return Status{
		Running:      d.running.Load(),
		Address:      d.Address(),
		ScratchDir:   d.files.Dir(),
		LedgerPath:   d.store.Path(),
		LockFilePath: d.lockPath,
		Dependencies: deps.Check(d.cfg),
	}
}

// Health implements api.HealthReporter.
func (d *Daemon) Health(ctx context.Context) api.Health {
	health := api.Health{Status: "ok", ScratchDir: d.files.Dir()}

	d.mu.RLock()
	fetcher, recorder := d.fetcher, d.recorder
	d.mu.RUnlock()
	if fetcher != nil {
		health.ActiveFetches = fetcher.Active()
	}
	if recorder != nil {
		health.LedgerDropped, _ = recorder.Stats()
	}
	if free, err := d.files.FreeBytes(); err == nil {
		health.ScratchFreeBytes = free
	}
	if list, err := d.files.List(); err == nil {
		health.PendingArtifacts = len(list)
	}
	for _, status := range deps.Check(d.cfg) {
		health.Dependencies = append(health.Dependencies, api.DependencyStatus{
			Name:        status.Name,
			Command:     status.Command,
			Description: status.Description,
			Optional:    status.Optional,
			Available:   status.Available,
			Detail:      status.Detail,
		})
	}
	return health
}

func (d *Daemon) announce(ctx context.Context, address string) {
	if err := d.notifier.NotifyServerStarted(ctx, address); err != nil {
		logging.WarnWithContext(d.logger, "startup notification not delivered", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "operator not told the server started"),
		)
	}
}
