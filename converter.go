package psconv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/alnah/go-psconv/internal/fileutil"
)

// Compile-time interface implementation checks.
var (
	_ strategy = (*exclusiveStrategy)(nil)
	_ strategy = (*processStrategy)(nil)
)

// Converter admits conversion jobs, bounds how many run at once and
// dispatches them to the interpreter.
// Create with NewConverter, use Convert for conversion, and Close when done.
// A Converter is safe for concurrent use.
type Converter struct {
	variant *Variant
	cfg     converterConfig
	engine  Engine
	shared  SharedEngine

	mu       sync.Mutex
	slots    *SlotAllocator
	strategy strategy
	pending  int // jobs waiting for or holding a slot
	closed   bool

	admitted        atomic.Int64
	completed       atomic.Int64
	failed          atomic.Int64
	rejected        atomic.Int64
	cleanupFailures atomic.Int64
}

// Stats is a snapshot of converter activity.
type Stats struct {
	Mode            string
	Capacity        int
	InUse           int
	Peak            int
	Admitted        int64
	Completed       int64
	Failed          int64
	Rejected        int64
	CleanupFailures int64
}

// NewConverter creates a converter for the given variant.
// Without options it runs in in-process exclusive mode through libgs; use
// WithMaxProcessCount to run Ghostscript worker processes instead.
func NewConverter(variant *Variant, opts ...Option) (*Converter, error) {
	if variant == nil {
		return nil, ErrNilVariant
	}

	c := &Converter{
		variant: variant,
		cfg: converterConfig{
			maxProcessCount: defaultMaxProcessCount,
			logger:          zerolog.Nop(),
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.cfg.maxProcessCount < 1 {
		return nil, fmt.Errorf("%w: %d (must be at least 1)", ErrInvalidProcessCount, c.cfg.maxProcessCount)
	}
	if c.cfg.acquireTimeout < 0 {
		return nil, fmt.Errorf("%w: acquire timeout %v", ErrInvalidTimeout, c.cfg.acquireTimeout)
	}

	// Create engines if not injected (e.g., by tests)
	if c.engine == nil {
		c.engine = NewExecEngine("")
	}
	if c.shared == nil {
		c.shared = NewLibraryEngine("")
	}

	c.slots = NewSlotAllocator(c.cfg.maxProcessCount)
	c.strategy = newStrategy(c.cfg.maxProcessCount, c.engine, c.shared, c.cfg.workspaces())

	return c, nil
}

// NewPDFConverter creates a PostScript to PDF converter.
func NewPDFConverter(opts ...Option) (*Converter, error) {
	return NewConverter(VariantPDF, opts...)
}

// NewPSConverter creates a PostScript/PDF to PostScript converter.
func NewPSConverter(opts ...Option) (*Converter, error) {
	return NewConverter(VariantPS, opts...)
}

// Variant returns the conversion variant.
func (c *Converter) Variant() *Variant {
	return c.variant
}

// Convert converts doc and writes the result to sink.
//
// The document kind is checked before anything else; unsupported kinds fail
// with ErrUnsupportedDocumentKind without touching the engine. Convert then
// waits for a slot, runs the job and always gives the slot back.
//
// On error the sink may hold nothing or a truncated stream; callers must
// check the returned error rather than the sink's size. Cancellation while
// waiting or running returns an error matching ErrCancelled. opts may be nil.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, doc Document, sink io.Writer, opts *Options) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := c.validate(doc, sink, opts); err != nil {
		c.rejected.Add(1)
		return err
	}

	slots, strat, err := c.enter()
	if err != nil {
		return err
	}
	defer c.leave()

	if err := c.acquire(ctx, slots); err != nil {
		return err
	}
	defer slots.Release()
	c.admitted.Add(1)

	j := &job{
		id:      uuid.NewString(),
		variant: c.variant,
		doc:     doc,
		sink:    sink,
		opts:    opts.withDefaults(),
	}
	j.log = c.cfg.logger.With().
		Str("job", j.id).
		Str("variant", c.variant.Name).
		Str("kind", doc.Kind().String()).
		Str("mode", strat.mode()).
		Logger()
	j.log.Debug().Int("slots_in_use", slots.InUse()).Int("capacity", slots.Capacity()).Msg("job admitted")

	start := time.Now()
	err = strat.run(ctx, j)

	if j.cleanupFailed {
		c.cleanupFailures.Add(1)
	}
	if err != nil {
		c.failed.Add(1)
		j.log.Debug().Err(err).Dur("duration", time.Since(start)).Msg("job failed")
		return err
	}
	c.completed.Add(1)
	j.log.Debug().Dur("duration", time.Since(start)).Msg("job finished")
	return nil
}

// ConvertFile converts the document at inPath and writes it to outPath.
// The output is written under a temporary name and renamed into place only
// on success, so outPath never holds a partial document.
func (c *Converter) ConvertFile(ctx context.Context, inPath, outPath string, opts *Options) error {
	doc, err := OpenFile(inPath)
	if err != nil {
		return err
	}

	out, err := fileutil.CreatePartial(outPath)
	if err != nil {
		return err
	}

	if err := c.Convert(ctx, doc, out, opts); err != nil {
		if aerr := out.Abort(); aerr != nil {
			c.cfg.logger.Warn().Err(aerr).Str("path", out.Name()).Msg("removing partial output failed")
		}
		return err
	}
	return out.Commit()
}

// validate performs the checks that need no resources.
func (c *Converter) validate(doc Document, sink io.Writer, opts *Options) error {
	if doc == nil {
		return ErrNilDocument
	}
	if sink == nil {
		return ErrNilSink
	}
	if kind := doc.Kind(); !c.variant.Supports(kind) {
		return fmt.Errorf("%w: %s documents are not supported by the %s converter (accepted: %s)",
			ErrUnsupportedDocumentKind, kind, c.variant.Name, c.variant.acceptedKinds())
	}
	return opts.Validate()
}

// enter registers a pending job and snapshots the allocator and strategy
// it will use, so a later SetMaxProcessCount cannot pull them away.
func (c *Converter) enter() (*SlotAllocator, strategy, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, nil, ErrConverterClosed
	}
	c.pending++
	return c.slots, c.strategy, nil
}

func (c *Converter) leave() {
	c.mu.Lock()
	c.pending--
	c.mu.Unlock()
}

// acquire waits for a slot, honoring the configured acquire timeout.
func (c *Converter) acquire(ctx context.Context, slots *SlotAllocator) error {
	waitCtx := ctx
	if c.cfg.acquireTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, c.cfg.acquireTimeout)
		defer cancel()
	}

	err := slots.Acquire(waitCtx)
	if err == nil {
		return nil
	}
	if ctx.Err() == nil {
		return fmt.Errorf("%w: no slot free after %v", ErrAcquireTimeout, c.cfg.acquireTimeout)
	}
	return fmt.Errorf("%w: waiting for a free slot: %w", ErrCancelled, ctx.Err())
}

// SetMaxProcessCount changes how many engine invocations may run at once.
// Setting the current value again is a no-op. Changing it while any job is
// waiting or running fails with ErrConverterBusy.
func (c *Converter) SetMaxProcessCount(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: %d (must be at least 1)", ErrInvalidProcessCount, n)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConverterClosed
	}
	if n == c.slots.Capacity() {
		return nil
	}
	if c.pending > 0 {
		return fmt.Errorf("%w: %d pending", ErrConverterBusy, c.pending)
	}

	c.cfg.maxProcessCount = n
	c.slots = NewSlotAllocator(n)
	c.strategy = newStrategy(n, c.engine, c.shared, c.cfg.workspaces())
	return nil
}

// MaxProcessCount returns the current slot capacity.
func (c *Converter) MaxProcessCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slots.Capacity()
}

// Stats returns a snapshot of converter activity.
func (c *Converter) Stats() Stats {
	c.mu.Lock()
	slots, strat := c.slots, c.strategy
	c.mu.Unlock()

	return Stats{
		Mode:            strat.mode(),
		Capacity:        slots.Capacity(),
		InUse:           slots.InUse(),
		Peak:            slots.Peak(),
		Admitted:        c.admitted.Load(),
		Completed:       c.completed.Load(),
		Failed:          c.failed.Load(),
		Rejected:        c.rejected.Load(),
		CleanupFailures: c.cleanupFailures.Load(),
	}
}

// Close stops the converter from accepting new jobs and releases engines
// that hold resources. Jobs already running are not interrupted.
func (c *Converter) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	var errs []error
	for _, e := range []any{c.engine, c.shared} {
		if cl, ok := e.(io.Closer); ok {
			if err := cl.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
