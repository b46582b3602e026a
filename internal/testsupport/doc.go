// Package testsupport holds shared helpers for package tests: temp-dir backed
// configs, stub binaries on PATH, ledger fixtures and artifact files.
package testsupport
