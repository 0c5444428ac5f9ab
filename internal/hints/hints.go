// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-psconv/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForEngineUnavailable returns hints for a Ghostscript executable that
// cannot be found or started.
func ForEngineUnavailable() string {
	var hints []string

	if IsInContainer() {
		hints = append(hints, "install the ghostscript package in the image")
	} else {
		hints = append(hints, "install Ghostscript")
	}

	if os.Getenv("PSCONV_GS") == "" {
		hints = append(hints, "set PSCONV_GS or --gs to a gs executable")
	}

	hints = append(hints, "run 'psconv doctor' to check the setup")
	return formatHints(hints)
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for large documents, raise --timeout")
}

// ForAcquireTimeout returns a hint for jobs that waited too long for a slot.
func ForAcquireTimeout() string {
	return format("raise --acquire-timeout or --workers")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config and generating a starting file with the config command.
func ForConfigNotFound() string {
	return format("use --config /path/to/file.yaml, or create one with 'psconv config > psconv.yaml'")
}

// ForUnsupportedKind returns a hint for input the target format rejects.
// Only PostScript output accepts PDF input.
func ForUnsupportedKind() string {
	return format("PDF input can only be converted with --format ps")
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
