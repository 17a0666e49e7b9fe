package launch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNoJSON indicates the host emitted no JSON object on stdout.
var ErrNoJSON = errors.New("no JSON object found in host output")

// Wrapper re-invokes the engine's CLI inside a host binary and parses the
// result back out of the host's mixed stdout.
type Wrapper struct {
	// Exec is the host binary to launch (required).
	Exec string

	// PreArgs are host-specific arguments placed before the forwarded
	// engine flags, e.g. the host's batch-mode and script switches.
	PreArgs []string

	// WorkDir is the working directory for the host process.
	WorkDir string

	// Timeout caps the whole invocation. Zero means no timeout.
	Timeout time.Duration
}

// Invoke launches the host with the given engine flags appended and
// returns the first JSON object found on its stdout, raw. A non-zero host
// exit is an error carrying the host's stderr.
func (w *Wrapper) Invoke(ctx context.Context, flags []string) (json.RawMessage, error) {
	if w.Exec == "" {
		return nil, errors.New("host executable is required")
	}

	args := make([]string, 0, len(w.PreArgs)+len(flags))
	args = append(args, w.PreArgs...)
	args = append(args, flags...)

	result, err := Run(ctx, Config{
		Command: w.Exec,
		Args:    args,
		WorkDir: w.WorkDir,
		Timeout: w.Timeout,
	})
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		return nil, fmt.Errorf("host exited with code %d: %s",
			result.ExitCode, bytes.TrimSpace(result.Stderr))
	}

	return ExtractFirstJSON(result.Stdout)
}

// ExtractFirstJSON scans mixed output for the first decodable JSON object
// and returns it verbatim. Host banners before the object and trailing
// chatter after it are discarded.
func ExtractFirstJSON(out []byte) (json.RawMessage, error) {
	for off := 0; off < len(out); {
		i := bytes.IndexByte(out[off:], '{')
		if i < 0 {
			return nil, ErrNoJSON
		}
		start := off + i

		dec := json.NewDecoder(bytes.NewReader(out[start:]))
		var obj json.RawMessage
		if err := dec.Decode(&obj); err == nil {
			return obj, nil
		}

		off = start + 1
	}
	return nil, ErrNoJSON
}
