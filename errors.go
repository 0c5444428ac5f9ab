package psconv

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for library operations.
var (
	ErrUnsupportedDocumentKind = errors.New("unsupported document kind")
	ErrEngineExecution         = errors.New("engine execution failed")
	ErrEngineUnavailable       = errors.New("engine unavailable")
	ErrEngineReset             = errors.New("engine reset failed")
	ErrCancelled               = errors.New("conversion cancelled")
	ErrAcquireTimeout          = errors.New("timed out waiting for a free slot")
	ErrResourceCleanup         = errors.New("resource cleanup failed")

	// Converter lifecycle errors.
	ErrConverterClosed = errors.New("converter is closed")
	ErrConverterBusy   = errors.New("converter has jobs in flight")

	// Input validation errors.
	ErrNilVariant    = errors.New("variant cannot be nil")
	ErrNilDocument   = errors.New("document cannot be nil")
	ErrNilSink       = errors.New("sink cannot be nil")
	ErrEmptyDocument = errors.New("document content cannot be empty")
	ErrUnknownKind   = errors.New("unknown document kind")

	// Configuration errors.
	ErrInvalidProcessCount = errors.New("invalid max process count")
	ErrInvalidTimeout      = errors.New("invalid timeout")

	// Options validation errors.
	ErrInvalidPaperSize          = errors.New("invalid paper size")
	ErrInvalidLanguageLevel      = errors.New("invalid language level")
	ErrInvalidDevice             = errors.New("invalid device name")
	ErrInvalidExtraArg           = errors.New("invalid extra argument")
	ErrInvalidCompatibilityLevel = errors.New("invalid PDF compatibility level")
	ErrInvalidPDFSettings        = errors.New("invalid PDF settings preset")
	ErrInvalidColorModel         = errors.New("invalid process color model")
	ErrInvalidAutoRotate         = errors.New("invalid auto-rotate mode")
)

// maxDiagnosticLen caps the engine output quoted in EngineError messages.
const maxDiagnosticLen = 512

// EngineError reports an engine invocation that exited with a non-zero status.
// It carries the captured worker output for diagnostics and matches
// ErrEngineExecution with errors.Is.
type EngineError struct {
	Variant  string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *EngineError) Error() string {
	msg := fmt.Sprintf("%s: %s engine exited with status %d", ErrEngineExecution, e.Variant, e.ExitCode)
	if diag := e.diagnostic(); diag != "" {
		msg += ": " + diag
	}
	return msg
}

// Unwrap lets errors.Is(err, ErrEngineExecution) match.
func (e *EngineError) Unwrap() error {
	return ErrEngineExecution
}

// diagnostic returns the most useful captured output, truncated.
func (e *EngineError) diagnostic() string {
	out := strings.TrimSpace(e.Stderr)
	if out == "" {
		out = strings.TrimSpace(e.Stdout)
	}
	if len(out) > maxDiagnosticLen {
		out = out[:maxDiagnosticLen] + "..."
	}
	return out
}
