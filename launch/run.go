package launch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Config holds the configuration for one host invocation.
type Config struct {
	// Command is the name or path of the host binary (required).
	Command string

	// Args are the command-line arguments.
	Args []string

	// WorkDir is the working directory for the command.
	WorkDir string

	// Env specifies environment variables in "KEY=value" format. If nil,
	// the command inherits the parent process environment.
	Env []string

	// Timeout caps the execution duration. Zero means no timeout.
	Timeout time.Duration

	// StdinData is sent to the command's stdin when non-empty.
	StdinData []byte
}

// Result holds one invocation's captured output.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// Run executes the host binary. A non-zero exit code is not an error; the
// Result carries it and the caller decides. Only actual launch failures
// (binary not found, timeout, cancellation) return an error.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Command == "" {
		return nil, errors.New("command is required")
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	if cfg.WorkDir != "" {
		cmd.Dir = cfg.WorkDir
	}
	if cfg.Env != nil {
		cmd.Env = cfg.Env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if len(cfg.StdinData) > 0 {
		cmd.Stdin = bytes.NewReader(cfg.StdinData)
	}

	start := time.Now()
	err := cmd.Run()

	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return result, fmt.Errorf("host timed out after %v", cfg.Timeout)
		}
		if ctx.Err() == context.Canceled {
			return result, errors.New("host invocation cancelled")
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("host execution failed: %w", err)
	}

	return result, nil
}

// BinaryExists reports whether a binary is present in the system PATH.
func BinaryExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// BinaryPath returns the full path to a binary in the system PATH.
func BinaryPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("binary %q not found in PATH: %w", name, err)
	}
	return path, nil
}
