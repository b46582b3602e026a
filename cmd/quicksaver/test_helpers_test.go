package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Farman-RT/QuickSaver/internal/config"
	"github.com/Farman-RT/QuickSaver/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	homeDir := filepath.Join(t.TempDir(), "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("PORT", "")
	t.Setenv("HOST", "")
	t.Setenv("QUICKSAVER_DEBUG", "")
	t.Setenv("QUICKSAVER_ADMIN_TOKEN", "")

	cfg := testsupport.NewConfig(t, opts...)
	configPath := filepath.Join(homeDir, ".config", "quicksaver", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	// CLI commands never bind, but config validation rejects port 0.
	port := cfg.Server.Port
	if port == 0 {
		port = 18080
	}
	content := fmt.Sprintf(
		"[paths]\nscratch_dir = %q\ndata_dir = %q\nlog_dir = %q\n\n[server]\nhost = %q\nport = %d\nadmin_token = %q\n\n[fetch]\nbinary = %q\ntimeout_seconds = %d\n",
		cfg.Paths.ScratchDir,
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		cfg.Server.Host,
		port,
		cfg.Server.AdminToken,
		cfg.Fetch.Binary,
		cfg.Fetch.TimeoutSeconds,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
