package exec

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestRunSuccess(t *testing.T) {
	res, err := Run(context.Background(), Command{Name: "go", Args: []string{"env", "GOHOSTOS"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", res.ExitCode)
	}
	if res.Stdout == "" {
		t.Error("expected stdout output, got empty")
	}
}

func TestRunStdin(t *testing.T) {
	res, err := Run(context.Background(), Command{Name: "cat", Stdin: []byte("<p>hi</p>")})
	if res.ExitCode == ExitNotFound {
		t.Skip("cat not available")
	}
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "<p>hi</p>" {
		t.Fatalf("stdout = %q", res.Stdout)
	}
}

func TestRunNotFound(t *testing.T) {
	res, _ := Run(context.Background(), Command{Name: "nonexistentcommand12345"})
	if res.ExitCode != ExitNotFound {
		t.Errorf("expected exit code %d for missing command, got %d", ExitNotFound, res.ExitCode)
	}
}

func TestRunTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	res, _ := Run(ctx, Command{Name: "sleep", Args: []string{"2"}})
	if res.ExitCode == ExitNotFound {
		t.Skip("sleep command not found, skipping timeout test")
	}
	if res.ExitCode != ExitTimeout {
		t.Errorf("expected exit code %d for timeout, got %d", ExitTimeout, res.ExitCode)
	}
}
