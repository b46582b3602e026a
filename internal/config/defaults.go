package config

const (
	defaultScratchDir          = "~/.local/share/quicksaver/tmp"
	defaultDataDir             = "~/.local/share/quicksaver/data"
	defaultLogDir              = "~/.local/share/quicksaver/logs"
	defaultHost                = "0.0.0.0"
	defaultPort                = 5000
	defaultYtDlpBinary         = "yt-dlp"
	defaultFetchTimeoutSeconds = 12 * 60
	defaultFragmentConcurrency = 4
	defaultPlayerClient        = "android"
	defaultChunkSizeKiB        = 256
	defaultSweepMaxAgeMinutes  = 60
	defaultSweepInterval       = 300
	defaultLedgerQueueCapacity = 256
	defaultAdminLimit          = 200
	defaultNtfyTimeoutSeconds  = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ScratchDir: defaultScratchDir,
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
		},
		Server: Server{
			Host: defaultHost,
			Port: defaultPort,
		},
		Fetch: Fetch{
			Binary:              defaultYtDlpBinary,
			TimeoutSeconds:      defaultFetchTimeoutSeconds,
			FragmentConcurrency: defaultFragmentConcurrency,
			PlayerClient:        defaultPlayerClient,
		},
		Delivery: Delivery{
			ChunkSizeKiB: defaultChunkSizeKiB,
		},
		Sweep: Sweep{
			Enabled:         true,
			MaxAgeMinutes:   defaultSweepMaxAgeMinutes,
			IntervalSeconds: defaultSweepInterval,
		},
		Ledger: Ledger{
			QueueCapacity: defaultLedgerQueueCapacity,
			AdminLimit:    defaultAdminLimit,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
