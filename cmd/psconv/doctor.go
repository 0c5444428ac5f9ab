package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	psconv "github.com/alnah/go-psconv"
	"github.com/alnah/go-psconv/internal/fileutil"
)

// versionProbeTimeout bounds `gs --version`.
const versionProbeTimeout = 5 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"` // "ready", "warnings", "errors"
	GS       gsInfo      `json:"ghostscript"`
	Library  libraryInfo `json:"libgs"`
	Env      envInfo     `json:"environment"`
	System   systemInfo  `json:"system"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// gsInfo holds Ghostscript executable detection results.
type gsInfo struct {
	Found   bool   `json:"found"`
	Binary  string `json:"binary"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// libraryInfo holds libgs detection results.
type libraryInfo struct {
	Loadable bool   `json:"loadable"`
	Path     string `json:"path,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS         string `json:"os"`
	Arch       string `json:"arch"`
	GOMAXPROCS int    `json:"gomaxprocs"`
	Workers    int    `json:"auto_workers"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempDir      string `json:"temp_dir"`
	TempWritable bool   `json:"temp_writable"`
}

// doctorOptions selects what runDoctor probes.
type doctorOptions struct {
	binary  string
	library string
	tempDir string
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad flags.
func runDoctorCmd(args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	fs.Usage = func() { printDoctorUsage(env.Stderr) }

	var jsonOutput bool
	opts := doctorOptions{
		binary:  os.Getenv("PSCONV_GS"),
		library: os.Getenv("PSCONV_LIBGS"),
	}
	fs.BoolVar(&jsonOutput, "json", false, "output as JSON")
	fs.StringVar(&opts.binary, "gs", opts.binary, "Ghostscript executable to check")
	fs.StringVar(&opts.library, "libgs", opts.library, "libgs shared library to check")
	fs.StringVar(&opts.tempDir, "temp-dir", "", "directory to check for workspaces")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, "error:", err)
		return ExitUsage
	}

	result := runDoctor(env.Context, opts)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, opts doctorOptions) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			GOMAXPROCS: runtime.GOMAXPROCS(0),
			Workers:    psconv.ResolveProcessCount(0),
		},
	}

	checkGhostscript(ctx, result, opts.binary)
	checkLibrary(result, opts.library)
	checkSystem(result, opts.tempDir)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkGhostscript locates the gs executable and asks for its version.
func checkGhostscript(ctx context.Context, result *doctorResult, binary string) {
	engine := psconv.NewExecEngine(binary)
	result.GS.Binary = engine.Binary()

	path, err := engine.LookPath()
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Ghostscript executable %q not found. Install Ghostscript or set PSCONV_GS", engine.Binary()))
		return
	}
	result.GS.Found = true
	result.GS.Path = path

	ctx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "--version").Output() // #nosec G204 -- user-selected gs binary
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Ghostscript version: %v", err))
		return
	}
	result.GS.Version = strings.TrimSpace(string(out))
}

// checkLibrary reports whether in-process mode is available.
// A missing libgs only means single-worker runs fall back to gs processes.
func checkLibrary(result *doctorResult, library string) {
	result.Library.Path = library
	if err := psconv.NewLibraryEngine(library).Check(); err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("libgs not loadable (%v); --workers 1 will run gs processes", err))
		return
	}
	result.Library.Loadable = true
}

// checkSystem verifies that per-job workspaces can be created.
func checkSystem(result *doctorResult, tempDir string) {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	result.System.TempDir = tempDir

	if !fileutil.DirExists(tempDir) {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory does not exist: %s", tempDir))
		return
	}

	_, cleanup, err := fileutil.MkdirTemp(tempDir, "psconv-doctor-")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tempDir))
		return
	}
	result.System.TempWritable = true
	if err := cleanup(); err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not remove doctor workspace: %v", err))
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "psconv doctor")
	fmt.Fprintln(w)

	// Ghostscript section
	fmt.Fprintln(w, "Ghostscript")
	if r.GS.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.GS.Path)
		if r.GS.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.GS.Version)
		}
	} else {
		fmt.Fprintf(w, "  [ERROR] %s not found\n", r.GS.Binary)
	}
	if r.Library.Loadable {
		fmt.Fprintln(w, "  [OK] libgs: loadable (in-process mode available)")
	} else {
		fmt.Fprintln(w, "  [WARN] libgs: not loadable")
	}
	fmt.Fprintln(w)

	// Environment section
	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	fmt.Fprintf(w, "  [OK] GOMAXPROCS: %d (auto workers: %d)\n", r.Env.GOMAXPROCS, r.Env.Workers)
	fmt.Fprintln(w)

	// System section
	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintf(w, "  [OK] Temp directory: %s writable\n", r.System.TempDir)
	} else {
		fmt.Fprintf(w, "  [ERROR] Temp directory: %s not writable\n", r.System.TempDir)
	}
	fmt.Fprintln(w)

	// Warnings
	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	// Errors
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	// Final status
	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
