package psconv

import (
	"context"
	"fmt"
	"sync"

	"github.com/alnah/go-psconv/internal/gsapi"
)

// LibraryEngine runs Ghostscript inside the current process through libgs.
//
// Run creates the interpreter and executes one job; Reset tears it down.
// Between the two the engine is taken: another Run, from this converter or
// from any other converter sharing the engine, waits until Reset or until its
// context is done. libgs allows one live instance per process, so engines
// loading the same library also wait on each other. Create with
// NewLibraryEngine; the zero value is not usable.
type LibraryEngine struct {
	path string
	turn chan struct{} // holds a token from Run until Reset

	mu     sync.Mutex
	interp *gsapi.Interpreter
}

// NewLibraryEngine creates an engine loading libgs from path, or from the
// platform's default library names when path is empty. Nothing is loaded
// until the first Run.
func NewLibraryEngine(path string) *LibraryEngine {
	return &LibraryEngine{path: path, turn: make(chan struct{}, 1)}
}

// Check loads the library without creating an interpreter.
func (e *LibraryEngine) Check() error {
	if err := gsapi.Available(e.path); err != nil {
		return fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	return nil
}

// Run executes one interpreter invocation. The interpreter does not observe
// ctx once started; cancellation is only checked while waiting for the
// engine. Stdout and Stderr are not captured in this mode.
func (e *LibraryEngine) Run(ctx context.Context, args []string) (*EngineResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	select {
	case e.turn <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	interp, err := gsapi.New(e.path)
	if err != nil {
		<-e.turn
		return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	e.interp = interp

	// The interpreter stays live after a failed run; Reset releases it.
	code, err := interp.Run(args)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	return &EngineResult{ExitCode: code}, nil
}

// Reset exits and deletes the interpreter and hands the engine to the next
// waiting Run. It is a no-op when no interpreter is live.
func (e *LibraryEngine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.interp == nil {
		return nil
	}
	err := e.interp.Close()
	e.interp = nil
	<-e.turn
	return err
}

// Close releases any live interpreter.
func (e *LibraryEngine) Close() error {
	return e.Reset()
}
