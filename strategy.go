package psconv

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// Execution modes.
const (
	ModeInProcess    = "in-process"
	ModeMultiProcess = "multi-process"
)

// job is one admitted conversion. It lives for the duration of a Convert call.
type job struct {
	id      string
	variant *Variant
	doc     Document
	sink    io.Writer
	opts    Options
	log     zerolog.Logger

	cleanupFailed bool
}

// strategy runs an admitted job. Callers hold a slot for the whole call.
type strategy interface {
	run(ctx context.Context, j *job) error
	mode() string
}

// workspaces places per-job workspaces and removes them afterwards.
type workspaces struct {
	tempDir string
	remove  func(*workspace) error // nil means (*workspace).remove
}

func (w workspaces) removeFunc() func(*workspace) error {
	if w.remove != nil {
		return w.remove
	}
	return (*workspace).remove
}

// exclusiveStrategy drives a SharedEngine. The converter pairs it with a
// single-slot allocator, so one job at a time owns the interpreter.
type exclusiveStrategy struct {
	engine SharedEngine
	ws     workspaces
}

func (s *exclusiveStrategy) mode() string { return ModeInProcess }

func (s *exclusiveStrategy) run(ctx context.Context, j *job) error {
	return execute(ctx, j, s.engine, s.engine.Reset, s.ws)
}

// processStrategy runs every job in its own worker process.
type processStrategy struct {
	engine Engine
	ws     workspaces
}

func (s *processStrategy) mode() string { return ModeMultiProcess }

func (s *processStrategy) run(ctx context.Context, j *job) error {
	return execute(ctx, j, s.engine, nil, s.ws)
}

// newStrategy selects the execution mode for a slot capacity.
func newStrategy(capacity int, engine Engine, shared SharedEngine, ws workspaces) strategy {
	if capacity == 1 {
		return &exclusiveStrategy{engine: shared, ws: ws}
	}
	return &processStrategy{engine: engine, ws: ws}
}

// execute runs one job through engine inside a private workspace.
//
// teardown, when set, runs right after the engine returns, before any
// output reaches the sink. The workspace is removed on every path; a
// removal failure is logged and recorded on the job but never replaces the
// job's own result. The sink is written only after a clean engine exit.
func execute(ctx context.Context, j *job, engine Engine, teardown func() error, spaces workspaces) (err error) {
	ws, err := newWorkspace(spaces.tempDir, j.id, j.doc, j.variant.Extension)
	if err != nil {
		return fmt.Errorf("preparing workspace: %w", err)
	}
	remove := spaces.removeFunc()
	defer func() {
		if cerr := remove(ws); cerr != nil {
			j.cleanupFailed = true
			j.log.Warn().Err(cerr).Str("dir", ws.dir).Msg("workspace cleanup failed")
		}
	}()

	args := j.variant.Args(j.opts, ws.input, ws.output)
	j.log.Debug().Strs("args", args).Msg("invoking engine")

	res, runErr := engine.Run(ctx, args)

	var resetErr error
	if teardown != nil {
		if terr := teardown(); terr != nil {
			j.log.Error().Err(terr).Msg("engine reset failed")
			resetErr = fmt.Errorf("%w: %v", ErrEngineReset, terr)
		}
	}

	switch {
	case runErr != nil && ctx.Err() != nil:
		return errors.Join(cancelled(ctx.Err()), resetErr)
	case runErr != nil:
		return errors.Join(fmt.Errorf("running %s engine: %w", j.variant.Name, runErr), resetErr)
	case res == nil:
		return errors.Join(fmt.Errorf("%w: %s engine returned no result", ErrEngineUnavailable, j.variant.Name), resetErr)
	case !res.Success():
		engErr := &EngineError{
			Variant:  j.variant.Name,
			ExitCode: res.ExitCode,
			Stdout:   string(res.Stdout),
			Stderr:   string(res.Stderr),
		}
		j.log.Warn().Int("exit_code", res.ExitCode).Str("stderr", engErr.diagnostic()).Msg("engine failed")
		return errors.Join(engErr, resetErr)
	case resetErr != nil:
		return resetErr
	}

	if err := ctx.Err(); err != nil {
		return cancelled(err)
	}

	n, err := ws.copyOutput(j.sink)
	if err != nil {
		return err
	}
	j.log.Debug().Int64("bytes", n).Msg("output delivered")
	return nil
}

// cancelled wraps a context error so it matches both ErrCancelled and the
// original context error.
func cancelled(ctxErr error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, ctxErr)
}
