// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrExtensionEmpty         = errors.New("extension cannot be empty")
	ErrExtensionPathTraversal = errors.New("extension contains path separator or null byte")
	ErrPrefixPathTraversal    = errors.New("prefix contains path separator or null byte")
	ErrPartialFileDone        = errors.New("partial file already committed or aborted")
)

// File permission constants.
const (
	privateFilePermissions = 0o600 // rw-------: job-private temp files
	outputFilePermissions  = 0o644 // rw-r--r--: converted documents
)

// MkdirTemp creates a uniquely named private directory under parent
// (os.TempDir() when empty). The returned cleanup removes the directory and
// everything in it; it is safe to call more than once.
func MkdirTemp(parent, prefix string) (dir string, cleanup func() error, err error) {
	if strings.ContainsAny(prefix, "/\\\x00") {
		return "", nil, ErrPrefixPathTraversal
	}

	dir, err = os.MkdirTemp(parent, prefix+"*")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp dir: %w", err)
	}

	cleanup = func() error {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("removing %s: %w", dir, err)
		}
		return nil
	}
	return dir, cleanup, nil
}

// WriteFile creates path exclusively with private permissions and copies r
// into it. A failed write removes the file.
func WriteFile(path string, r io.Reader) (int64, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, privateFilePermissions) // #nosec G304 -- path built by caller inside its own temp dir
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", path, err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return n, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return n, fmt.Errorf("closing %s: %w", path, err)
	}
	return n, nil
}

// CopyTo streams the content of path into w.
func CopyTo(w io.Writer, path string) (int64, error) {
	f, err := os.Open(path) // #nosec G304 -- path built by caller inside its own temp dir
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	n, err := io.Copy(w, f)
	if err != nil {
		return n, fmt.Errorf("copying %s: %w", path, err)
	}
	return n, nil
}

// PartialFile is a file written under a temporary name next to its final
// path. Commit renames it into place; Abort removes it. Readers of the final
// path never observe a truncated document.
type PartialFile struct {
	f     *os.File
	final string
	done  bool
}

// CreatePartial starts a PartialFile for finalPath. The parent directory
// must exist.
func CreatePartial(finalPath string) (*PartialFile, error) {
	dir, base := filepath.Split(finalPath)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".partial-*")
	if err != nil {
		return nil, fmt.Errorf("creating partial file: %w", err)
	}
	return &PartialFile{f: f, final: finalPath}, nil
}

// Write appends to the temporary file.
func (p *PartialFile) Write(b []byte) (int, error) {
	if p.done {
		return 0, ErrPartialFileDone
	}
	return p.f.Write(b)
}

// Name returns the temporary path currently being written.
func (p *PartialFile) Name() string {
	return p.f.Name()
}

// Commit closes the temporary file and renames it to the final path.
func (p *PartialFile) Commit() error {
	if p.done {
		return ErrPartialFileDone
	}
	p.done = true

	tmp := p.f.Name()
	if err := p.f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("closing partial file: %w", err)
	}
	if err := os.Chmod(tmp, outputFilePermissions); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmp, p.final); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming partial file: %w", err)
	}
	return nil
}

// Abort discards the temporary file. Calling Abort after Commit is a no-op.
func (p *PartialFile) Abort() error {
	if p.done {
		return nil
	}
	p.done = true

	tmp := p.f.Name()
	_ = p.f.Close()
	if err := os.Remove(tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing partial file: %w", err)
	}
	return nil
}

// ValidateExtension checks that the extension is safe for use in temp file names.
func ValidateExtension(extension string) error {
	if extension == "" {
		return ErrExtensionEmpty
	}
	if strings.ContainsAny(extension, "/\\\x00") {
		return ErrExtensionPathTraversal
	}
	return nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "production" -> false (name)
//   - "./psconv.yaml" -> true (relative path)
//   - "/etc/psconv/ci.yaml" -> true (absolute)
//   - "C:\config\ci.yaml" -> true (Windows)
//   - "sub/dir" -> true (contains separator)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}
