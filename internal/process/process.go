// Package process manages the lifetime of interpreter worker processes.
package process

import "errors"

// ErrInvalidPID is returned for PIDs that would target the caller's own
// process group or every process.
var ErrInvalidPID = errors.New("process: invalid pid")
