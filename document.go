package psconv

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

// DocumentKind identifies the format of an input document.
type DocumentKind int

// Document kinds understood by the converters.
const (
	KindUnknown DocumentKind = iota
	KindPostScript
	KindPDF
)

// String returns the short name of the kind ("ps", "pdf").
func (k DocumentKind) String() string {
	switch k {
	case KindPostScript:
		return "ps"
	case KindPDF:
		return "pdf"
	default:
		return "unknown"
	}
}

// ParseKind converts a name or file extension into a DocumentKind.
// Matching is case-insensitive and ignores a leading dot.
func ParseKind(s string) (DocumentKind, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "ps", "postscript", "eps":
		return KindPostScript, nil
	case "pdf":
		return KindPDF, nil
	}
	return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// sniffLen is how many leading bytes DetectKind inspects.
const sniffLen = 1024

var (
	psMagic     = []byte("%!")
	pdfMagic    = []byte("%PDF-")
	dosEPSMagic = []byte{0xC5, 0xD0, 0xD3, 0xC6}
)

// DetectKind guesses the document kind from its leading bytes.
// PostScript must start with "%!" (optionally after a Ctrl-D) or the binary
// DOS EPS header. PDF readers accept a "%PDF-" marker anywhere in the first
// 1024 bytes, so the search here does too.
func DetectKind(header []byte) DocumentKind {
	if len(header) > sniffLen {
		header = header[:sniffLen]
	}
	if bytes.HasPrefix(header, dosEPSMagic) {
		return KindPostScript
	}
	// Printer drivers sometimes emit Ctrl-D before "%!".
	if bytes.HasPrefix(bytes.TrimLeft(header, "\x04"), psMagic) {
		return KindPostScript
	}
	if bytes.Contains(header, pdfMagic) {
		return KindPDF
	}
	return KindUnknown
}

// Document is a typed, read-only handle to input content.
//
// Open returns a fresh stream each call; callers close it. Path returns the
// backing file when there is one, or "" for in-memory content. A converter
// only borrows the document for the duration of one conversion.
type Document interface {
	Kind() DocumentKind
	Open() (io.ReadCloser, error)
	Path() string
}

// Compile-time interface checks.
var (
	_ Document = (*FileDocument)(nil)
	_ Document = (*MemoryDocument)(nil)
)

// FileDocument is a document backed by a file on disk.
type FileDocument struct {
	kind DocumentKind
	path string
}

// NewFileDocument wraps path as a document of the given kind without
// touching the filesystem.
func NewFileDocument(kind DocumentKind, path string) *FileDocument {
	return &FileDocument{kind: kind, path: path}
}

// OpenFile creates a FileDocument, detecting its kind from the file header.
// Returns ErrEmptyDocument for empty files and ErrUnknownKind when the header
// matches no supported format.
func OpenFile(path string) (*FileDocument, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided input path
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}
	defer f.Close()

	header := make([]byte, sniffLen)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("reading document header: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDocument, path)
	}

	kind := DetectKind(header[:n])
	if kind == KindUnknown {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, path)
	}
	return NewFileDocument(kind, path), nil
}

// Kind returns the document kind.
func (d *FileDocument) Kind() DocumentKind { return d.kind }

// Path returns the backing file path.
func (d *FileDocument) Path() string { return d.path }

// Open opens the backing file for reading.
func (d *FileDocument) Open() (io.ReadCloser, error) {
	f, err := os.Open(d.path)
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}
	return f, nil
}

// MemoryDocument is a document held entirely in memory.
type MemoryDocument struct {
	kind DocumentKind
	data []byte
}

// NewMemoryDocument wraps data as a document of the given kind.
// The slice is not copied; callers must not modify it afterwards.
func NewMemoryDocument(kind DocumentKind, data []byte) *MemoryDocument {
	return &MemoryDocument{kind: kind, data: data}
}

// LoadDocument reads r to the end and detects the document kind.
func LoadDocument(r io.Reader) (*MemoryDocument, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}
	kind := DetectKind(data)
	if kind == KindUnknown {
		return nil, ErrUnknownKind
	}
	return NewMemoryDocument(kind, data), nil
}

// Kind returns the document kind.
func (d *MemoryDocument) Kind() DocumentKind { return d.kind }

// Path returns "", so the content is materialized before conversion.
func (d *MemoryDocument) Path() string { return "" }

// Open returns a reader over the in-memory content.
func (d *MemoryDocument) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(d.data)), nil
}

// Size returns the content length in bytes.
func (d *MemoryDocument) Size() int { return len(d.data) }
