package launch

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestRunCapturesStdout(t *testing.T) {
	result, err := Run(context.Background(), Config{
		Command: "echo",
		Args:    []string{"hello", "world"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", result.ExitCode)
	}
	if got := strings.TrimSpace(string(result.Stdout)); got != "hello world" {
		t.Errorf("unexpected stdout: %q", got)
	}
}

func TestRunRequiresCommand(t *testing.T) {
	if _, err := Run(context.Background(), Config{}); err == nil {
		t.Fatal("expected an error for empty command")
	}
}

func TestRunNonZeroExitIsNotAnError(t *testing.T) {
	result, err := Run(context.Background(), Config{
		Command: "sh",
		Args:    []string{"-c", "exit 3"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", result.ExitCode)
	}
}

func TestRunMissingBinary(t *testing.T) {
	_, err := Run(context.Background(), Config{Command: "definitely-not-a-binary-xyz"})
	if err == nil {
		t.Fatal("expected an error for a missing binary")
	}
}

func TestRunTimeout(t *testing.T) {
	start := time.Now()
	_, err := Run(context.Background(), Config{
		Command: "sleep",
		Args:    []string{"10"},
		Timeout: 100 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("timeout took too long: %v", elapsed)
	}
}

func TestRunStdin(t *testing.T) {
	result, err := Run(context.Background(), Config{
		Command:   "cat",
		StdinData: []byte("piped input"),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if string(result.Stdout) != "piped input" {
		t.Errorf("unexpected stdout: %q", result.Stdout)
	}
}

func TestBinaryExists(t *testing.T) {
	if !BinaryExists("sh") {
		t.Error("expected sh to exist")
	}
	if BinaryExists("definitely-not-a-binary-xyz") {
		t.Error("expected missing binary to report false")
	}
}

func TestBinaryPath(t *testing.T) {
	path, err := BinaryPath("sh")
	if err != nil {
		t.Fatalf("BinaryPath failed: %v", err)
	}
	if path == "" {
		t.Error("expected a non-empty path")
	}

	if _, err := BinaryPath("definitely-not-a-binary-xyz"); err == nil {
		t.Error("expected an error for a missing binary")
	}
}
