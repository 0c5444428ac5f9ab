package main

// Notes:
// - runConvert: we drive the whole command through a mock engine that copies
//   its input, so tests check real files on disk without Ghostscript.
//   Real Ghostscript runs are covered by the library's integration tests.
// - mergeFlags/buildOptions/resolveVariant: we test flag priority and the
//   mapping from config to psconv.Options.
// - The libgs fallback is tested with a library path that cannot load; the
//   success path of libgs is covered by the library's integration tests.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	psconv "github.com/alnah/go-psconv"
	"github.com/alnah/go-psconv/internal/config"
)

// ---------------------------------------------------------------------------
// TestRunConvert_SingleFile - One PostScript file, each execution mode
// ---------------------------------------------------------------------------

func TestRunConvert_SingleFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		workers    string
		wantResets int
	}{
		{"in-process", "1", 1},
		{"multi-process", "3", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := setupTestDir(t, map[string]string{"doc.ps": samplePS})
			eng := &mockEngine{}
			env, stdout, _ := newTestEnv(eng)

			err := runConvertArgs(context.Background(), env, "-w", tt.workers, filepath.Join(dir, "doc.ps"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			out := filepath.Join(dir, "doc.pdf")
			if got := readFile(t, out); got != convertedPrefix+samplePS {
				t.Errorf("output = %q, want converted input", got)
			}
			if !strings.Contains(stdout.String(), "Created "+out) {
				t.Errorf("stdout = %q, want Created line", stdout.String())
			}
			if got := eng.resetCount(); got != tt.wantResets {
				t.Errorf("resets = %d, want %d", got, tt.wantResets)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunConvert_Directory - Non-recursive scan with an output directory
// ---------------------------------------------------------------------------

func TestRunConvert_Directory(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string]string{
		"a.ps":        samplePS,
		"b.EPS":       samplePS,
		"notes.txt":   "not a document",
		"sub/deep.ps": samplePS,
	})
	outDir := filepath.Join(t.TempDir(), "out")
	eng := &mockEngine{}
	env, stdout, _ := newTestEnv(eng)

	if err := runConvertArgs(context.Background(), env, "-w", "2", "-o", outDir, dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, name := range []string{"a.pdf", "b.pdf"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
	assertNotExist(t, filepath.Join(outDir, "deep.pdf"))
	assertNotExist(t, filepath.Join(outDir, "notes.pdf"))

	if got := eng.callCount(); got != 2 {
		t.Errorf("engine calls = %d, want 2", got)
	}
	if !strings.Contains(stdout.String(), "2 succeeded, 0 failed") {
		t.Errorf("stdout = %q, want summary", stdout.String())
	}
}

// ---------------------------------------------------------------------------
// TestRunConvert_Kinds - Kind validation before the engine runs
// ---------------------------------------------------------------------------

func TestRunConvert_Kinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		file      string
		content   string
		format    string
		wantOut   string
		wantErr   error
		wantCalls int
	}{
		{"ps to pdf", "in.ps", samplePS, "pdf", "in.pdf", nil, 1},
		{"pdf to ps", "in.pdf", samplePDF, "ps", "in.ps", nil, 1},
		{"pdf to pdf rejected", "in.pdf", samplePDF, "pdf", "", psconv.ErrUnsupportedDocumentKind, 0},
		{"unknown content rejected", "in.ps", "plain text", "pdf", "", psconv.ErrUnknownKind, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := setupTestDir(t, map[string]string{tt.file: tt.content})
			outDir := filepath.Join(dir, "out")
			eng := &mockEngine{}
			env, _, stderr := newTestEnv(eng)

			err := runConvertArgs(context.Background(), env, "-w", "2", "-f", tt.format, "-o", outDir, filepath.Join(dir, tt.file))

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				if exitCodeFor(err) != ExitUsage {
					t.Errorf("exit code = %d, want %d", exitCodeFor(err), ExitUsage)
				}
				if !strings.Contains(stderr.String(), "FAILED") {
					t.Errorf("stderr = %q, want FAILED line", stderr.String())
				}
				entries, _ := os.ReadDir(outDir)
				if len(entries) != 0 {
					t.Errorf("output dir should be empty, has %d entries", len(entries))
				}
			case err != nil:
				t.Fatalf("unexpected error: %v", err)
			default:
				if got := readFile(t, filepath.Join(outDir, tt.wantOut)); !strings.HasPrefix(got, convertedPrefix) {
					t.Errorf("output = %q, want converted input", got)
				}
			}

			if got := eng.callCount(); got != tt.wantCalls {
				t.Errorf("engine calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunConvert_EngineFailure - Non-zero exit leaves no output
// ---------------------------------------------------------------------------

func TestRunConvert_EngineFailure(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string]string{"doc.ps": samplePS})
	eng := &mockEngine{exitCode: 1, stderr: "Error: /undefined in foo"}
	env, _, stderr := newTestEnv(eng)

	err := runConvertArgs(context.Background(), env, "-w", "2", filepath.Join(dir, "doc.ps"))

	if !errors.Is(err, psconv.ErrEngineExecution) {
		t.Fatalf("error = %v, want ErrEngineExecution", err)
	}
	var engErr *psconv.EngineError
	if !errors.As(err, &engErr) {
		t.Fatalf("error should carry *psconv.EngineError, got %T", err)
	}
	if engErr.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", engErr.ExitCode)
	}
	if exitCodeFor(err) != ExitEngine {
		t.Errorf("exit code = %d, want %d", exitCodeFor(err), ExitEngine)
	}
	if !strings.Contains(stderr.String(), "/undefined in foo") {
		t.Errorf("stderr should quote engine output, got %q", stderr.String())
	}
	assertNotExist(t, filepath.Join(dir, "doc.pdf"))
}

// ---------------------------------------------------------------------------
// TestRunConvert_PartialFailure - One bad file does not stop the batch
// ---------------------------------------------------------------------------

func TestRunConvert_PartialFailure(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string]string{
		"good.ps": samplePS,
		"bad.pdf": samplePDF,
	})
	eng := &mockEngine{}
	env, stdout, _ := newTestEnv(eng)

	err := runConvertArgs(context.Background(), env, "-w", "2", "-o", filepath.Join(dir, "out"), dir)

	var batchErr *batchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("error = %v, want *batchError", err)
	}
	if batchErr.failed != 1 || batchErr.total != 2 {
		t.Errorf("batchError = %d of %d, want 1 of 2", batchErr.failed, batchErr.total)
	}
	if !errors.Is(err, psconv.ErrUnsupportedDocumentKind) {
		t.Errorf("error should unwrap to the failure cause, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "good.pdf")); err != nil {
		t.Errorf("good.pdf should exist: %v", err)
	}
	if !strings.Contains(stdout.String(), "1 succeeded, 1 failed") {
		t.Errorf("stdout = %q, want summary", stdout.String())
	}
}

// ---------------------------------------------------------------------------
// TestRunConvert_BoundsWorkers - Never more engines than --workers
// ---------------------------------------------------------------------------

func TestRunConvert_BoundsWorkers(t *testing.T) {
	t.Parallel()

	files := make(map[string]string)
	for i := range 8 {
		files[fmt.Sprintf("doc%d.ps", i)] = samplePS
	}
	dir := setupTestDir(t, files)
	eng := &mockEngine{delay: 20 * time.Millisecond}
	env, _, _ := newTestEnv(eng)

	if err := runConvertArgs(context.Background(), env, "-q", "-w", "2", "-o", filepath.Join(dir, "out"), dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := eng.callCount(); got != 8 {
		t.Errorf("engine calls = %d, want 8", got)
	}
	if got := eng.peak(); got > 2 {
		t.Errorf("peak concurrent engines = %d, want <= 2", got)
	}
}

// ---------------------------------------------------------------------------
// TestRunConvert_OptionsReachEngine - Document flags become engine switches
// ---------------------------------------------------------------------------

func TestRunConvert_OptionsReachEngine(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string]string{"doc.ps": samplePS})
	eng := &mockEngine{}
	env, _, _ := newTestEnv(eng)

	err := runConvertArgs(context.Background(), env,
		"-w", "2",
		"-p", "a4",
		"--pdf-settings", "ebook",
		"--color-model", "gray",
		"--extra-arg", "-r300",
		"--extra-arg", "-dEmbedAllFonts=true",
		filepath.Join(dir, "doc.ps"),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	args := eng.lastArgs()
	for _, want := range []string{
		"-dDEVICEWIDTHPOINTS=595",
		"-dDEVICEHEIGHTPOINTS=842",
		"-dPDFSETTINGS=/ebook",
		"-dProcessColorModel=/DeviceGray",
		"-r300",
		"-dEmbedAllFonts=true",
		"-sDEVICE=pdfwrite",
	} {
		if !slices.Contains(args, want) {
			t.Errorf("engine args missing %q: %v", want, args)
		}
	}
}

// ---------------------------------------------------------------------------
// TestRunConvert_ConfigFile - Config file settings apply, flags win
// ---------------------------------------------------------------------------

func TestRunConvert_ConfigFile(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string]string{
		"doc.ps": samplePS,
		"psconv.yaml": "workers: 2\n" +
			"output:\n  format: ps\n" +
			"document:\n  paperSize: a4\n  languageLevel: 2\n",
	})
	cfgPath := filepath.Join(dir, "psconv.yaml")

	t.Run("config applies", func(t *testing.T) {
		t.Parallel()

		eng := &mockEngine{}
		env, _, _ := newTestEnv(eng)
		out := filepath.Join(t.TempDir(), "a")

		if err := runConvertArgs(context.Background(), env, "-c", cfgPath, "-o", out, filepath.Join(dir, "doc.ps")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		args := eng.lastArgs()
		for _, want := range []string{"-sDEVICE=ps2write", "-dLanguageLevel=2", "-dDEVICEWIDTHPOINTS=595"} {
			if !slices.Contains(args, want) {
				t.Errorf("engine args missing %q: %v", want, args)
			}
		}
		if _, err := os.Stat(filepath.Join(out, "doc.ps")); err != nil {
			t.Errorf("expected doc.ps output: %v", err)
		}
	})

	t.Run("flags win", func(t *testing.T) {
		t.Parallel()

		eng := &mockEngine{}
		env, _, _ := newTestEnv(eng)
		out := filepath.Join(t.TempDir(), "b")

		err := runConvertArgs(context.Background(), env, "-c", cfgPath, "-f", "pdf", "-p", "letter", "-o", out, filepath.Join(dir, "doc.ps"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		args := eng.lastArgs()
		for _, want := range []string{"-sDEVICE=pdfwrite", "-dDEVICEWIDTHPOINTS=612"} {
			if !slices.Contains(args, want) {
				t.Errorf("engine args missing %q: %v", want, args)
			}
		}
	})

	t.Run("missing config", func(t *testing.T) {
		t.Parallel()

		env, _, _ := newTestEnv(&mockEngine{})
		err := runConvertArgs(context.Background(), env, "-c", filepath.Join(dir, "nope.yaml"), filepath.Join(dir, "doc.ps"))
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Fatalf("error = %v, want ErrConfigNotFound", err)
		}
		if exitCodeFor(err) != ExitUsage {
			t.Errorf("exit code = %d, want %d", exitCodeFor(err), ExitUsage)
		}
	})
}

// ---------------------------------------------------------------------------
// TestRunConvert_InvalidSettings - Rejected before any file is touched
// ---------------------------------------------------------------------------

func TestRunConvert_InvalidSettings(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string]string{"doc.ps": samplePS})
	input := filepath.Join(dir, "doc.ps")

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"unknown format", []string{"-f", "docx"}, config.ErrInvalidValue},
		{"unknown paper size", []string{"-p", "b7"}, psconv.ErrInvalidPaperSize},
		{"language level", []string{"--language-level", "4"}, config.ErrInvalidValue},
		{"reserved extra arg", []string{"--extra-arg", "-sOutputFile=/etc/passwd"}, psconv.ErrInvalidExtraArg},
		{"pdf settings", []string{"--pdf-settings", "tiny"}, psconv.ErrInvalidPDFSettings},
		{"bad timeout", []string{"-t", "soon"}, config.ErrInvalidValue},
		{"negative workers", []string{"-w", "-1"}, config.ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			eng := &mockEngine{}
			env, _, _ := newTestEnv(eng)

			err := runConvertArgs(context.Background(), env, append(tt.args, input)...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if exitCodeFor(err) != ExitUsage {
				t.Errorf("exit code = %d, want %d", exitCodeFor(err), ExitUsage)
			}
			if eng.callCount() != 0 {
				t.Error("engine should not run")
			}
			assertNotExist(t, filepath.Join(dir, "doc.pdf"))
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunConvert_Cancellation - Timeouts and cancelled contexts
// ---------------------------------------------------------------------------

func TestRunConvert_Cancellation(t *testing.T) {
	t.Parallel()

	t.Run("per-file timeout", func(t *testing.T) {
		t.Parallel()

		dir := setupTestDir(t, map[string]string{"slow.ps": samplePS})
		eng := &mockEngine{delay: 10 * time.Second}
		env, _, _ := newTestEnv(eng)

		err := runConvertArgs(context.Background(), env, "-w", "2", "-t", "50ms", filepath.Join(dir, "slow.ps"))
		if !errors.Is(err, psconv.ErrCancelled) {
			t.Fatalf("error = %v, want ErrCancelled", err)
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("error should match context.DeadlineExceeded, got %v", err)
		}
		assertNotExist(t, filepath.Join(dir, "slow.pdf"))
	})

	t.Run("cancelled before start", func(t *testing.T) {
		t.Parallel()

		dir := setupTestDir(t, map[string]string{"doc.ps": samplePS})
		eng := &mockEngine{}
		env, _, _ := newTestEnv(eng)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := runConvertArgs(ctx, env, "-w", "2", filepath.Join(dir, "doc.ps"))
		if !errors.Is(err, psconv.ErrCancelled) {
			t.Fatalf("error = %v, want ErrCancelled", err)
		}
		if eng.callCount() != 0 {
			t.Error("engine should not run after cancellation")
		}
	})
}

// ---------------------------------------------------------------------------
// TestRunConvert_LibraryFallback - One worker without libgs uses gs processes
// ---------------------------------------------------------------------------

func TestRunConvert_LibraryFallback(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string]string{"doc.ps": samplePS})
	eng := &mockEngine{}
	env, _, stderr := newTestEnv(eng)
	env.SharedEngine = nil

	err := runConvertArgs(context.Background(), env, "-w", "1", "--libgs", filepath.Join(dir, "no-such-libgs.so"), filepath.Join(dir, "doc.ps"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stderr.String(), "libgs unavailable") {
		t.Errorf("stderr = %q, want fallback warning", stderr.String())
	}
	if eng.callCount() != 1 {
		t.Errorf("engine calls = %d, want 1", eng.callCount())
	}
	if _, err := os.Stat(filepath.Join(dir, "doc.pdf")); err != nil {
		t.Errorf("expected output: %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestRunConvert_NoInput - Missing and empty inputs
// ---------------------------------------------------------------------------

func TestRunConvert_NoInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"no arguments", nil, ErrNoInput},
		{"missing file", []string{filepath.Join(t.TempDir(), "missing.ps")}, os.ErrNotExist},
		{"empty directory", []string{t.TempDir()}, ErrNoFiles},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, _ := newTestEnv(&mockEngine{})
			err := runConvertArgs(context.Background(), env, tt.args...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if exitCodeFor(err) != ExitIO {
				t.Errorf("exit code = %d, want %d", exitCodeFor(err), ExitIO)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestMergeFlags - CLI values override config values
// ---------------------------------------------------------------------------

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	t.Run("empty flags keep config", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Workers = 4
		cfg.Document.ExtraArgs = []string{"-r72"}

		mergeFlags(&convertFlags{}, cfg)

		if cfg.Workers != 4 {
			t.Errorf("Workers = %d, want 4", cfg.Workers)
		}
		if cfg.Output.Format != config.FormatPDF {
			t.Errorf("Format = %q, want pdf", cfg.Output.Format)
		}
		if len(cfg.Document.ExtraArgs) != 1 {
			t.Errorf("ExtraArgs = %v, want config value", cfg.Document.ExtraArgs)
		}
	})

	t.Run("set flags win", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Document.ExtraArgs = []string{"-r72"}

		flags := &convertFlags{
			format:  "ps",
			workers: 3,
			common:  commonFlags{logFormat: "json"},
			engine: engineFlags{
				binary:         "/opt/gs/bin/gs",
				library:        "/opt/gs/lib/libgs.so",
				timeout:        "1m",
				acquireTimeout: "5s",
			},
			document: documentFlags{
				paperSize:          "a3",
				device:             "eps2write",
				languageLevel:      2,
				extraArgs:          []string{"-r300"},
				compatibilityLevel: "1.7",
				pdfSettings:        "printer",
				colorModel:         "cmyk",
				autoRotate:         "none",
			},
		}
		mergeFlags(flags, cfg)

		checks := []struct {
			field string
			got   any
			want  any
		}{
			{"Output.Format", cfg.Output.Format, "ps"},
			{"Workers", cfg.Workers, 3},
			{"Log.Format", cfg.Log.Format, "json"},
			{"Engine.Binary", cfg.Engine.Binary, "/opt/gs/bin/gs"},
			{"Engine.Library", cfg.Engine.Library, "/opt/gs/lib/libgs.so"},
			{"Engine.Timeout", cfg.Engine.Timeout, "1m"},
			{"Engine.AcquireTimeout", cfg.Engine.AcquireTimeout, "5s"},
			{"Document.PaperSize", cfg.Document.PaperSize, "a3"},
			{"Document.Device", cfg.Document.Device, "eps2write"},
			{"Document.LanguageLevel", cfg.Document.LanguageLevel, 2},
			{"Document.ExtraArgs", strings.Join(cfg.Document.ExtraArgs, " "), "-r300"},
			{"PDF.CompatibilityLevel", cfg.Document.PDF.CompatibilityLevel, "1.7"},
			{"PDF.Settings", cfg.Document.PDF.Settings, "printer"},
			{"PDF.ColorModel", cfg.Document.PDF.ColorModel, "cmyk"},
			{"PDF.AutoRotate", cfg.Document.PDF.AutoRotate, "none"},
		}
		for _, c := range checks {
			if c.got != c.want {
				t.Errorf("%s = %v, want %v", c.field, c.got, c.want)
			}
		}
	})
}

// ---------------------------------------------------------------------------
// TestBuildOptions - Config to psconv.Options
// ---------------------------------------------------------------------------

func TestBuildOptions(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Document.PaperSize = ""

		opts, err := buildOptions(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if *opts.PaperSize != psconv.DefaultPaperSize {
			t.Errorf("PaperSize = %v, want default", *opts.PaperSize)
		}
	})

	t.Run("named paper and pdf settings", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Document.PaperSize = "A4"
		cfg.Document.PDF.CompatibilityLevel = "1.5"
		cfg.Document.PDF.AutoRotate = "pagebypage"

		opts, err := buildOptions(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if *opts.PaperSize != psconv.PaperA4 {
			t.Errorf("PaperSize = %v, want a4", *opts.PaperSize)
		}
		if opts.CompatibilityLevel != "1.5" || opts.AutoRotatePages != "pagebypage" {
			t.Errorf("PDF options not carried: %+v", opts)
		}
	})

	t.Run("unknown paper lists names", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Document.PaperSize = "quarto"

		_, err := buildOptions(cfg)
		if !errors.Is(err, psconv.ErrInvalidPaperSize) {
			t.Fatalf("error = %v, want ErrInvalidPaperSize", err)
		}
		if !strings.Contains(err.Error(), "letter") {
			t.Errorf("error should list known sizes, got %v", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestResolveVariant - Output format names
// ---------------------------------------------------------------------------

func TestResolveVariant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format  string
		want    *psconv.Variant
		wantErr bool
	}{
		{"", psconv.VariantPDF, false},
		{"pdf", psconv.VariantPDF, false},
		{"PS", psconv.VariantPS, false},
		{"tiff", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			got, err := resolveVariant(tt.format)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFormat) {
					t.Fatalf("error = %v, want ErrInvalidFormat", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("variant = %s, want %s", got.Name, tt.want.Name)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestPrintResultsWithWriter - Result reporting
// ---------------------------------------------------------------------------

func TestPrintResultsWithWriter(t *testing.T) {
	t.Parallel()

	results := []ConversionResult{
		{InputPath: "a.ps", OutputPath: "a.pdf", Duration: 1500 * time.Microsecond},
		{InputPath: "b.ps", OutputPath: "b.pdf", Err: errors.New("boom")},
	}

	tests := []struct {
		name       string
		quiet      bool
		verbose    bool
		wantStdout []string
		notStdout  []string
	}{
		{"default", false, false, []string{"Created a.pdf", "1 succeeded, 1 failed"}, nil},
		{"verbose", false, true, []string{"a.ps -> a.pdf (2ms)"}, []string{"Created"}},
		{"quiet", true, false, nil, []string{"Created", "succeeded"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := newTestEnv(&mockEngine{})
			failed := printResultsWithWriter(results, tt.quiet, tt.verbose, env)

			if failed != 1 {
				t.Errorf("failed = %d, want 1", failed)
			}
			if !strings.Contains(stderr.String(), "FAILED b.ps: boom") {
				t.Errorf("stderr = %q, want FAILED line", stderr.String())
			}
			for _, s := range tt.wantStdout {
				if !strings.Contains(stdout.String(), s) {
					t.Errorf("stdout should contain %q, got %q", s, stdout.String())
				}
			}
			for _, s := range tt.notStdout {
				if strings.Contains(stdout.String(), s) {
					t.Errorf("stdout should not contain %q, got %q", s, stdout.String())
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestBatchError - Message and unwrapping
// ---------------------------------------------------------------------------

func TestBatchError(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("wrapped: %w", psconv.ErrEngineUnavailable)
	err := &batchError{failed: 2, total: 5, first: cause}

	if got := err.Error(); got != "2 of 5 conversion(s) failed" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, psconv.ErrEngineUnavailable) {
		t.Error("batchError should unwrap to its first failure")
	}
	if exitCodeFor(err) != ExitEngine {
		t.Errorf("exit code = %d, want %d", exitCodeFor(err), ExitEngine)
	}
}
