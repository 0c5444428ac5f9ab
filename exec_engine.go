package psconv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/alnah/go-psconv/internal/process"
)

// Worker process defaults.
const (
	// defaultWaitDelay bounds how long Run waits for output pipes to drain
	// after the worker was killed.
	defaultWaitDelay = 5 * time.Second

	// maxCapturedOutput caps each of stdout and stderr kept for diagnostics.
	maxCapturedOutput = 64 << 10
)

// DefaultBinary returns the Ghostscript executable name for this platform.
func DefaultBinary() string {
	if runtime.GOOS == "windows" {
		return "gswin64c"
	}
	return "gs"
}

// ExecEngine runs each invocation in a fresh Ghostscript process.
// The calling goroutine blocks until the worker exits; that wait is what
// ties a running worker to the slot its caller holds.
type ExecEngine struct {
	binary    string
	waitDelay time.Duration
}

// NewExecEngine creates an engine for the given binary.
// Empty binary means DefaultBinary(), looked up in PATH at run time.
func NewExecEngine(binary string) *ExecEngine {
	if binary == "" {
		binary = DefaultBinary()
	}
	return &ExecEngine{binary: binary, waitDelay: defaultWaitDelay}
}

// Binary returns the configured executable.
func (e *ExecEngine) Binary() string {
	return e.binary
}

// LookPath resolves the binary to an absolute path.
func (e *ExecEngine) LookPath() (string, error) {
	p, err := exec.LookPath(e.binary)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	return p, nil
}

// Run starts the worker and waits for it. When ctx is done the worker's
// process group is killed and ctx.Err() is returned.
func (e *ExecEngine) Run(ctx context.Context, args []string) (*EngineResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stdout := &cappedBuffer{limit: maxCapturedOutput}
	stderr := &cappedBuffer{limit: maxCapturedOutput}

	cmd := exec.CommandContext(ctx, e.binary, args...) // #nosec G204 -- binary is operator configuration, args built by Variant.Args
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = e.waitDelay
	process.Isolate(cmd)

	err := cmd.Run()
	res := &EngineResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return res, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}

	// A grandchild kept the output pipes open after the worker exited.
	if errors.Is(err, exec.ErrWaitDelay) && cmd.ProcessState != nil && cmd.ProcessState.Success() {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// -1 when the worker was killed by a signal we did not send.
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}

	return nil, fmt.Errorf("%w: %s: %v", ErrEngineUnavailable, e.binary, err)
}

// cappedBuffer keeps the first limit bytes written and silently drops the
// rest, so a chatty worker cannot grow memory without bound.
type cappedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if room := b.limit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
			b.truncated = true
		} else {
			b.buf.Write(p)
		}
	} else if len(p) > 0 {
		b.truncated = true
	}
	return len(p), nil
}

func (b *cappedBuffer) Bytes() []byte {
	if b.truncated {
		return append(b.buf.Bytes(), "\n[output truncated]"...)
	}
	return b.buf.Bytes()
}
