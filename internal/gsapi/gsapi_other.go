//go:build !(darwin || freebsd || linux)

package gsapi

// Available always fails on platforms without dlopen support.
func Available(string) error {
	return ErrUnsupportedPlatform
}

// Interpreter is unavailable on this platform.
type Interpreter struct{}

// New always fails on platforms without dlopen support.
func New(string) (*Interpreter, error) {
	return nil, ErrUnsupportedPlatform
}

// Run always fails on platforms without dlopen support.
func (*Interpreter) Run([]string) (int, error) {
	return 0, ErrUnsupportedPlatform
}

// Close is a no-op on platforms without dlopen support.
func (*Interpreter) Close() error {
	return nil
}
