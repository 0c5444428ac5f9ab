package psconv

import "context"

// Engine runs one interpreter invocation described by an argument vector.
//
// A non-zero exit status is reported through EngineResult.ExitCode, not as
// an error. Run returns an error only when the invocation could not be
// carried out at all (engine missing, context cancelled).
type Engine interface {
	Run(ctx context.Context, args []string) (*EngineResult, error)
}

// SharedEngine is an engine backed by process-wide interpreter state.
// Reset must be called after every Run, whatever its outcome, to return the
// interpreter to a neutral state before the next caller uses it.
type SharedEngine interface {
	Engine
	Reset() error
}

// EngineResult is the outcome of one engine invocation.
type EngineResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Success reports whether the engine exited cleanly.
func (r *EngineResult) Success() bool {
	return r != nil && r.ExitCode == 0
}

// Compile-time interface checks.
var (
	_ Engine       = (*ExecEngine)(nil)
	_ SharedEngine = (*LibraryEngine)(nil)
	_ SharedEngine = nopResetEngine{}
)

// NopReset adapts an engine without shared state for use in exclusive mode.
func NopReset(e Engine) SharedEngine {
	return nopResetEngine{Engine: e}
}

type nopResetEngine struct {
	Engine
}

func (nopResetEngine) Reset() error { return nil }
