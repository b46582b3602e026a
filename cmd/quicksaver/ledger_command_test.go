package main

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Farman-RT/QuickSaver/internal/testsupport"
)

func TestLedgerCommandEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"ledger"}, env.configPath)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	requireContains(t, out, "No submissions recorded")
}

func TestLedgerCommandListsNewestFirst(t *testing.T) {
	env := setupCLITestEnv(t)
	store := testsupport.MustOpenLedger(t, env.cfg)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range 3 {
		testsupport.AppendURL(t, store, fmt.Sprintf("https://example.com/v/%d", i), base.Add(time.Duration(i)*time.Minute))
	}

	out, _, err := runCLI(t, []string{"ledger", "--limit", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	requireContains(t, out, "https://example.com/v/2")
	requireContains(t, out, "https://example.com/v/1")
	if strings.Contains(out, "https://example.com/v/0") {
		t.Fatalf("expected oldest entry beyond limit to be omitted, got %q", out)
	}
	if strings.Index(out, "/v/2") > strings.Index(out, "/v/1") {
		t.Fatalf("expected newest entry first, got %q", out)
	}
	requireContains(t, out, "Showing 2 of 3 submissions")
}
