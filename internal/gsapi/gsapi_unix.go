//go:build darwin || freebsd || linux

package gsapi

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/ebitengine/purego"
)

// library holds the resolved libgs entry points.
type library struct {
	newInstance    func(pinstance *uintptr, callerHandle uintptr) int32
	deleteInstance func(instance uintptr)
	setArgEncoding func(instance uintptr, encoding int32) int32
	initWithArgs   func(instance uintptr, argc int32, argv **byte) int32
	exit           func(instance uintptr) int32
}

var (
	libMu sync.Mutex
	libs  = map[string]*library{}

	// instanceMu is held from New until Close.
	instanceMu sync.Mutex
)

// defaultLibraryNames returns the sonames tried when no path is configured.
func defaultLibraryNames() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"libgs.dylib", "libgs.10.dylib", "/opt/homebrew/lib/libgs.dylib", "/usr/local/lib/libgs.dylib"}
	default:
		return []string{"libgs.so.10", "libgs.so.9", "libgs.so"}
	}
}

// load opens libgs once per path and resolves the symbols we use.
func load(path string) (*library, error) {
	libMu.Lock()
	defer libMu.Unlock()

	if lib, ok := libs[path]; ok {
		return lib, nil
	}

	names := defaultLibraryNames()
	if path != "" {
		names = []string{path}
	}

	var errs []string
	for _, name := range names {
		handle, err := purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		lib, err := bind(handle)
		if err != nil {
			_ = purego.Dlclose(handle)
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		libs[path] = lib
		return lib, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrLoad, strings.Join(errs, "; "))
}

func bind(handle uintptr) (*library, error) {
	lib := &library{}
	symbols := []struct {
		name string
		fptr any
	}{
		{"gsapi_new_instance", &lib.newInstance},
		{"gsapi_delete_instance", &lib.deleteInstance},
		{"gsapi_set_arg_encoding", &lib.setArgEncoding},
		{"gsapi_init_with_args", &lib.initWithArgs},
		{"gsapi_exit", &lib.exit},
	}
	for _, s := range symbols {
		sym, err := purego.Dlsym(handle, s.name)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", s.name, err)
		}
		purego.RegisterFunc(s.fptr, sym)
	}
	return lib, nil
}

// Available reports whether libgs can be loaded from path ("" = defaults).
func Available(path string) error {
	_, err := load(path)
	return err
}

// Interpreter is a live libgs instance.
type Interpreter struct {
	lib      *library
	instance uintptr
}

// New loads libgs and creates an interpreter instance. It blocks while
// another Interpreter is open anywhere in the process.
func New(path string) (*Interpreter, error) {
	lib, err := load(path)
	if err != nil {
		return nil, err
	}

	instanceMu.Lock()

	var instance uintptr
	if code := lib.newInstance(&instance, 0); code < 0 || instance == 0 {
		instanceMu.Unlock()
		return nil, fmt.Errorf("%w: code %d", ErrInstance, code)
	}
	if code := lib.setArgEncoding(instance, argEncodingUTF8); code < 0 {
		lib.deleteInstance(instance)
		instanceMu.Unlock()
		return nil, fmt.Errorf("%w: setting arg encoding: code %d", ErrInstance, code)
	}

	return &Interpreter{lib: lib, instance: instance}, nil
}

// Run initializes the interpreter with args (without a program name) and
// runs it to completion. The returned code is 0 on success.
func (i *Interpreter) Run(args []string) (int, error) {
	if i.instance == 0 {
		return 0, ErrClosed
	}
	argv, bufs := cStrings(append([]string{"gs"}, args...))
	code := i.lib.initWithArgs(i.instance, int32(len(bufs)), &argv[0])
	runtime.KeepAlive(bufs)
	runtime.KeepAlive(argv)
	return normalizeCode(code), nil
}

// Close exits and deletes the instance and releases the process-wide lock.
// The lock is released even when exit reports an error.
func (i *Interpreter) Close() error {
	if i.instance == 0 {
		return nil
	}
	code := i.lib.exit(i.instance)
	i.lib.deleteInstance(i.instance)
	i.instance = 0
	instanceMu.Unlock()

	if normalizeCode(code) < 0 {
		return fmt.Errorf("%w: code %d", ErrExit, code)
	}
	return nil
}
