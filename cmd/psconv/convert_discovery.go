package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Sentinel errors for file discovery.
var (
	ErrNoInput         = errors.New("no input specified")
	ErrNoFiles         = errors.New("no PostScript or PDF files found")
	ErrOutputIsInput   = errors.New("output would overwrite its input")
	ErrOutputNotDir    = errors.New("output must be a directory for several inputs")
	ErrOutputCollision = errors.New("several inputs map to the same output")
)

// inputExtensions are picked up when scanning a directory. Files named
// explicitly are accepted whatever their extension; the converter decides
// from their content.
var inputExtensions = []string{".ps", ".eps", ".pdf"}

// FileToConvert represents a single file to process.
type FileToConvert struct {
	InputPath  string
	OutputPath string
}

// discoverFiles expands inputs into the files to convert. Directories are
// scanned without recursion. output is a directory, a file path when it
// ends in .ext and exactly one file is found, or empty for "next to the
// input".
func discoverFiles(inputs []string, output, ext string) ([]FileToConvert, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInput
	}

	var paths []string
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, in)
			continue
		}
		found, err := scanDir(in)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFiles, strings.Join(inputs, ", "))
	}

	outputIsFile := strings.EqualFold(filepath.Ext(output), "."+ext)
	if outputIsFile && len(paths) > 1 {
		return nil, fmt.Errorf("%w: %s (%d inputs)", ErrOutputNotDir, output, len(paths))
	}

	files := make([]FileToConvert, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		out := output
		if !outputIsFile {
			out = resolveOutputPath(p, output, ext)
		}
		if samePath(p, out) {
			return nil, fmt.Errorf("%w: %s", ErrOutputIsInput, p)
		}
		key := filepath.Clean(out)
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: %s and %s -> %s", ErrOutputCollision, prev, p, out)
		}
		seen[key] = p
		files = append(files, FileToConvert{InputPath: p, OutputPath: out})
	}

	return files, nil
}

// scanDir lists the convertible files directly inside dir, sorted by name.
func scanDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !isInputFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

// isInputFile reports whether name carries a convertible extension.
func isInputFile(name string) bool {
	return slices.Contains(inputExtensions, strings.ToLower(filepath.Ext(name)))
}

// resolveOutputPath determines the output path for an input file.
func resolveOutputPath(inputPath, outputDir, ext string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath)) + "." + ext

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base)
	}
	return filepath.Join(outputDir, base)
}

// samePath reports whether a and b name the same file location.
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
