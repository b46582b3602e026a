package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validateSweep(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	if !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return fmt.Errorf("notifications.ntfy_topic must be an http(s) URL, got %q", topic)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	return nil
}

func (c *Config) validateFetch() error {
	if c.Fetch.FragmentConcurrency > 64 {
		return errors.New("fetch.fragment_concurrency must be 64 or lower")
	}
	return nil
}

// validateSweep rejects retention windows that could reclaim a file still
// being written by an in-flight fetch.
func (c *Config) validateSweep() error {
	if !c.Sweep.Enabled {
		return nil
	}
	if c.Sweep.MaxAgeMinutes <= 0 {
		return errors.New("sweep.max_age_minutes must be positive when sweep.enabled is true")
	}
	if c.Sweep.IntervalSeconds <= 0 {
		return errors.New("sweep.interval_seconds must be positive when sweep.enabled is true")
	}
	if c.SweepMaxAge() <= c.FetchTimeout() {
		return fmt.Errorf("sweep.max_age_minutes (%s) must exceed fetch.timeout_seconds (%s)", c.SweepMaxAge(), c.FetchTimeout())
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
