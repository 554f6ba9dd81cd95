package cmd

import (
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestExecute_UnknownCommand(t *testing.T) {
	orig := os.Args
	defer func() { os.Args = orig }()

	os.Args = []string{"coach", "bogus"}
	err := Execute()
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), "bogus") {
		t.Errorf("error should name the command, got %q", err.Error())
	}
}

func TestExecute_Version(t *testing.T) {
	orig := os.Args
	defer func() { os.Args = orig }()

	os.Args = []string{"coach", "version"}
	if err := Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}
}

func TestInitLogger_LevelFromEnv(t *testing.T) {
	t.Setenv("COACH_LOG_LEVEL", "debug")
	logger := initLogger()
	if logger == nil {
		t.Fatal("expected a logger")
	}
	if !logger.Enabled(t.Context(), slog.LevelDebug) {
		t.Error("debug level should be enabled")
	}
}
