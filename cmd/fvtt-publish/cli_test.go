// Where: cmd/fvtt-publish/cli_test.go
// What: Tests for CLI dependency wiring.
// Why: Ensure buildDependencies produces a fully wired Dependencies value.
package main

import "testing"

func TestBuildDependencies(t *testing.T) {
	deps := buildDependencies()

	if deps.Out == nil {
		t.Fatalf("expected output writer")
	}
	if deps.Stdin == nil {
		t.Fatalf("expected stdin reader")
	}
	if deps.PasswordPrompt == nil {
		t.Fatalf("expected password prompt")
	}
	// Test runners never attach a TTY to stdin.
	if deps.Interactive {
		t.Fatalf("expected non-interactive stdin under test")
	}
}
