package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestRun_UnknownCommandSkipsBootstrap(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	err := run(context.Background(), missing, "bogus", nil)
	if !errors.Is(err, errUnknownCommand) {
		t.Fatalf("expected errUnknownCommand, got %v", err)
	}
	if err.Error() != `unknown command "bogus"` {
		t.Errorf("unexpected message %q", err.Error())
	}

	// A known online command does reach bootstrap and fails on the config.
	err = run(context.Background(), missing, "domain", nil)
	if err == nil || errors.Is(err, errUnknownCommand) {
		t.Fatalf("expected a bootstrap error, got %v", err)
	}
}

func TestRun_OfflineCommands(t *testing.T) {
	if err := run(context.Background(), "", "split", []string{"100"}); err == nil {
		t.Error("expected usage error for split without shares")
	}
	if err := run(context.Background(), "", "metadata", nil); err == nil {
		t.Error("expected usage error for metadata without a file")
	}
}
