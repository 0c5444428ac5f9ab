package main

// Notes:
// - Shared fixtures for the command tests: a mock engine that copies its
//   input to the -sOutputFile path, a goroutine-safe buffer for log output,
//   and an Environment wired to both.
// No coverage gaps: this is test infrastructure, not production code.

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	psconv "github.com/alnah/go-psconv"
)

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

const (
	samplePS  = "%!PS-Adobe-3.0\n/Helvetica findfont 12 scalefont setfont\n72 720 moveto (hello) show\nshowpage\n"
	samplePDF = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n"
)

// convertedPrefix marks output written by mockEngine.
const convertedPrefix = "converted:"

// ---------------------------------------------------------------------------
// mockEngine - stands in for Ghostscript
// ---------------------------------------------------------------------------

// mockEngine copies the -f input to the -sOutputFile path with a prefix.
// It implements psconv.SharedEngine so it can back both modes.
type mockEngine struct {
	exitCode int
	stderr   string
	delay    time.Duration

	mu        sync.Mutex
	calls     [][]string
	active    int
	maxActive int
	resets    int
}

func (m *mockEngine) Run(ctx context.Context, args []string) (*psconv.EngineResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, slices.Clone(args))
	m.active++
	m.maxActive = max(m.maxActive, m.active)
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.active--
		m.mu.Unlock()
	}()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.exitCode != 0 {
		return &psconv.EngineResult{ExitCode: m.exitCode, Stderr: []byte(m.stderr)}, nil
	}

	data, err := os.ReadFile(argAfter(args, "-f"))
	if err != nil {
		return nil, err
	}
	out := argWithPrefix(args, "-sOutputFile=")
	if err := os.WriteFile(out, append([]byte(convertedPrefix), data...), 0o600); err != nil {
		return nil, err
	}
	return &psconv.EngineResult{}, nil
}

func (m *mockEngine) Reset() error {
	m.mu.Lock()
	m.resets++
	m.mu.Unlock()
	return nil
}

func (m *mockEngine) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockEngine) lastArgs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	return m.calls[len(m.calls)-1]
}

func (m *mockEngine) peak() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxActive
}

func (m *mockEngine) resetCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets
}

func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func argWithPrefix(args []string, prefix string) string {
	for _, a := range args {
		if v, ok := strings.CutPrefix(a, prefix); ok {
			return v
		}
	}
	return ""
}

// ---------------------------------------------------------------------------
// syncBuffer - log output written from several goroutines
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// ---------------------------------------------------------------------------
// Environment and file helpers
// ---------------------------------------------------------------------------

// newTestEnv returns an Environment backed by eng in both modes.
func newTestEnv(eng *mockEngine) (*Environment, *syncBuffer, *syncBuffer) {
	stdout, stderr := &syncBuffer{}, &syncBuffer{}
	env := &Environment{
		Context:      context.Background(),
		Now:          time.Now,
		Stdout:       stdout,
		Stderr:       stderr,
		Engine:       eng,
		SharedEngine: eng,
	}
	return env, stdout, stderr
}

// setupTestDir creates a temp directory with the given file structure.
// Files map paths to content. Returns the temp directory path.
func setupTestDir(t *testing.T, files map[string]string) string {
	t.Helper()
	tempDir := t.TempDir()

	for path, content := range files {
		fullPath := filepath.Join(tempDir, path)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
			t.Fatalf("failed to create dir for %s: %v", path, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}

	return tempDir
}

// runConvertArgs parses args like the convert command and runs it.
func runConvertArgs(ctx context.Context, env *Environment, args ...string) error {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	return runConvert(ctx, positional, flags, env)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func assertNotExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("%s should not exist (stat err: %v)", path, err)
	}
}
