package main

// Notes:
// - exitCodeFor: we test each error family, including wrapped errors and
//   errors carried by a batchError.
// No coverage gaps: the function is a pure mapping.

import (
	"errors"
	"fmt"
	"os"
	"testing"

	psconv "github.com/alnah/go-psconv"
	"github.com/alnah/go-psconv/internal/config"
	"github.com/alnah/go-psconv/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"unknown error", errors.New("boom"), ExitGeneral},
		{"cancelled", psconv.ErrCancelled, ExitGeneral},
		{"acquire timeout", psconv.ErrAcquireTimeout, ExitGeneral},

		{"engine execution", &psconv.EngineError{Variant: "pdf", ExitCode: 1}, ExitEngine},
		{"engine unavailable", fmt.Errorf("starting: %w", psconv.ErrEngineUnavailable), ExitEngine},
		{"engine reset", psconv.ErrEngineReset, ExitEngine},

		{"not found", fmt.Errorf("stat: %w", os.ErrNotExist), ExitIO},
		{"permission", os.ErrPermission, ExitIO},
		{"no input", ErrNoInput, ExitIO},
		{"no files", ErrNoFiles, ExitIO},
		{"partial file", fileutil.ErrPartialFileDone, ExitIO},

		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"config value", config.ErrInvalidValue, ExitUsage},
		{"unsupported kind", psconv.ErrUnsupportedDocumentKind, ExitUsage},
		{"unknown kind", psconv.ErrUnknownKind, ExitUsage},
		{"empty document", psconv.ErrEmptyDocument, ExitUsage},
		{"paper size", psconv.ErrInvalidPaperSize, ExitUsage},
		{"extra arg", psconv.ErrInvalidExtraArg, ExitUsage},
		{"invalid format", ErrInvalidFormat, ExitUsage},
		{"env value", ErrInvalidEnvValue, ExitUsage},
		{"output is input", ErrOutputIsInput, ExitUsage},
		{"output collision", ErrOutputCollision, ExitUsage},
		{"unsupported shell", ErrUnsupportedShell, ExitUsage},

		{"batch of engine failures", &batchError{failed: 1, total: 3, first: psconv.ErrEngineUnavailable}, ExitEngine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
