// Package exec runs external tools such as the local markup validator.
package exec

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// Exit codes reported for failures that never reached the tool.
const (
	ExitTimeout  = 124
	ExitNotFound = 127
)

// Command describes one invocation.
type Command struct {
	Name  string
	Args  []string
	Dir   string
	Stdin []byte // fed to the process when non-nil
}

// Result holds the execution result.
type Result struct {
	Stdout   string
	Stderr   string
	Duration time.Duration
	ExitCode int
}

// Run executes cmd under ctx, capturing output and duration. A deadline hit
// is reported as ExitTimeout, a missing binary as ExitNotFound.
func Run(ctx context.Context, c Command) (Result, error) {
	start := time.Now()
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if c.Stdin != nil {
		cmd.Stdin = bytes.NewReader(c.Stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	} else {
		res.ExitCode = 1
	}
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.ExitCode = ExitTimeout
	case errors.Is(err, exec.ErrNotFound):
		res.ExitCode = ExitNotFound
	}
	return res, err
}
