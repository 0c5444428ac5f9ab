// Package gsapi binds the Ghostscript interpreter C API (libgs) without cgo.
//
// The interpreter keeps process-wide state and most builds allow a single
// instance per process. New therefore takes a process-wide lock that is
// held until Close: at most one Interpreter exists at any time, whichever
// caller created it.
package gsapi

import "errors"

// Sentinel errors for interpreter operations.
var (
	ErrLoad                = errors.New("gsapi: cannot load libgs")
	ErrInstance            = errors.New("gsapi: cannot create interpreter instance")
	ErrExit                = errors.New("gsapi: interpreter exit failed")
	ErrClosed              = errors.New("gsapi: interpreter already closed")
	ErrUnsupportedPlatform = errors.New("gsapi: in-process interpreter not supported on this platform")
)

// Interpreter return codes.
const (
	argEncodingUTF8 = 1

	// errorQuit is returned by init_with_args when -dBATCH ends the run.
	errorQuit = -101
)

// normalizeCode maps the interpreter's "quit" status to success.
func normalizeCode(code int32) int {
	if code == errorQuit {
		return 0
	}
	return int(code)
}

// cStrings builds a NUL-terminated argv. The returned buffers back the
// pointers and must stay reachable until the call using argv returns.
func cStrings(args []string) (argv []*byte, bufs [][]byte) {
	argv = make([]*byte, len(args)+1)
	bufs = make([][]byte, len(args))
	for i, a := range args {
		b := make([]byte, len(a)+1)
		copy(b, a)
		bufs[i] = b
		argv[i] = &b[0]
	}
	return argv, bufs
}
