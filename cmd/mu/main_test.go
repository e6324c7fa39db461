package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mu-graph/mu/errs"
)

const sampleProjectGo = `package app

func Run() {
	Helper()
}

func Helper() {
}
`

func TestBootstrapAndStatus(t *testing.T) {
	logger = zap.NewNop()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "main.go"), []byte(sampleProjectGo), 0o644); err != nil {
		t.Fatal(err)
	}
	flagPath = root
	defer func() { flagPath = "" }()

	cmd := &cobra.Command{}
	if err := bootstrapCmd.RunE(cmd, nil); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, ".mu", "mubase")); err != nil {
		t.Errorf("mubase was not created: %v", err)
	}

	if err := statusCmd.RunE(cmd, nil); err != nil {
		t.Fatalf("status failed: %v", err)
	}
}

func TestExitCodeFor(t *testing.T) {
	err := errs.New(errs.Config, "bad config")
	if got := exitCodeFor(err); got != errs.Config.ExitCode() {
		t.Errorf("expected exit code %d, got %d", errs.Config.ExitCode(), got)
	}

	wrapped := errs.Wrap(errs.Parse, "parse failed", err)
	if got := exitCodeFor(wrapped); got != errs.Parse.ExitCode() {
		t.Errorf("expected exit code %d, got %d", errs.Parse.ExitCode(), got)
	}

	if got := exitCodeFor(os.ErrClosed); got != 1 {
		t.Errorf("expected default exit code 1, got %d", got)
	}
}

func TestAsMuError(t *testing.T) {
	e := errs.New(errs.NotFound, "missing")
	if asMuError(e) != e {
		t.Error("expected direct *errs.Error to be returned unchanged")
	}
	if asMuError(os.ErrClosed) != nil {
		t.Error("expected nil for an unrelated error")
	}
}
