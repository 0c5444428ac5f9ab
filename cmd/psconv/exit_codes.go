package main

import (
	"errors"
	"os"

	psconv "github.com/alnah/go-psconv"
	"github.com/alnah/go-psconv/internal/config"
	"github.com/alnah/go-psconv/internal/fileutil"
)

// Exit codes for psconv CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, input kind or validation
	ExitIO      = 3 // File not found, permission denied
	ExitEngine  = 4 // Ghostscript missing or failed
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Engine errors (exit 4)
	if errors.Is(err, psconv.ErrEngineExecution) ||
		errors.Is(err, psconv.ErrEngineUnavailable) ||
		errors.Is(err, psconv.ErrEngineReset) {
		return ExitEngine
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrNoFiles) ||
		errors.Is(err, fileutil.ErrPartialFileDone) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, psconv.ErrUnsupportedDocumentKind) ||
		errors.Is(err, psconv.ErrUnknownKind) ||
		errors.Is(err, psconv.ErrEmptyDocument) ||
		errors.Is(err, psconv.ErrInvalidProcessCount) ||
		errors.Is(err, psconv.ErrInvalidTimeout) ||
		errors.Is(err, psconv.ErrInvalidPaperSize) ||
		errors.Is(err, psconv.ErrInvalidLanguageLevel) ||
		errors.Is(err, psconv.ErrInvalidDevice) ||
		errors.Is(err, psconv.ErrInvalidExtraArg) ||
		errors.Is(err, psconv.ErrInvalidCompatibilityLevel) ||
		errors.Is(err, psconv.ErrInvalidPDFSettings) ||
		errors.Is(err, psconv.ErrInvalidColorModel) ||
		errors.Is(err, psconv.ErrInvalidAutoRotate) ||
		errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrInvalidEnvValue) ||
		errors.Is(err, ErrOutputIsInput) ||
		errors.Is(err, ErrOutputNotDir) ||
		errors.Is(err, ErrOutputCollision) ||
		errors.Is(err, ErrUnsupportedShell) {
		return ExitUsage
	}

	return ExitGeneral
}
