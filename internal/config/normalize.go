package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeServer(); err != nil {
		return err
	}
	c.normalizeFetch()
	c.normalizeDelivery()
	c.normalizeLedger()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ScratchDir) == "" {
		c.Paths.ScratchDir = defaultScratchDir
	}
	if c.Paths.ScratchDir, err = expandPath(c.Paths.ScratchDir); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

// normalizeServer applies the PORT, HOST and QUICKSAVER_DEBUG overrides used by
// hosting platforms that inject the listener through the environment.
func (c *Config) normalizeServer() error {
	if value, ok := os.LookupEnv("PORT"); ok && strings.TrimSpace(value) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("PORT: invalid value %q", value)
		}
		c.Server.Port = port
	}
	if value, ok := os.LookupEnv("HOST"); ok && strings.TrimSpace(value) != "" {
		c.Server.Host = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("QUICKSAVER_DEBUG"); ok {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "1", "true", "yes", "on":
			c.Server.Debug = true
		case "0", "false", "no", "off", "":
			c.Server.Debug = false
		}
	}
	c.Server.Host = strings.TrimSpace(c.Server.Host)
	if c.Server.Host == "" {
		c.Server.Host = defaultHost
	}
	if c.Server.AdminToken == "" {
		if value, ok := os.LookupEnv("QUICKSAVER_ADMIN_TOKEN"); ok {
			c.Server.AdminToken = value
		}
	}
	c.Server.AdminToken = strings.TrimSpace(c.Server.AdminToken)
	return nil
}

func (c *Config) normalizeFetch() {
	c.Fetch.Binary = strings.TrimSpace(c.Fetch.Binary)
	if c.Fetch.Binary == "" {
		c.Fetch.Binary = defaultYtDlpBinary
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		c.Fetch.TimeoutSeconds = defaultFetchTimeoutSeconds
	}
	if c.Fetch.FragmentConcurrency <= 0 {
		c.Fetch.FragmentConcurrency = defaultFragmentConcurrency
	}
	c.Fetch.PlayerClient = strings.TrimSpace(c.Fetch.PlayerClient)
}

func (c *Config) normalizeDelivery() {
	if c.Delivery.ChunkSizeKiB <= 0 {
		c.Delivery.ChunkSizeKiB = defaultChunkSizeKiB
	}
}

func (c *Config) normalizeLedger() {
	if c.Ledger.QueueCapacity <= 0 {
		c.Ledger.QueueCapacity = defaultLedgerQueueCapacity
	}
	if c.Ledger.AdminLimit <= 0 {
		c.Ledger.AdminLimit = defaultAdminLimit
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Server.Debug {
		c.Logging.Level = "debug"
	}
}
