// Package psconv converts PostScript and PDF documents with Ghostscript while
// bounding how many interpreter invocations run at the same time.
//
// # Quick Start
//
// Create a converter, convert a document, and close when done:
//
//	conv, err := psconv.NewPDFConverter(psconv.WithMaxProcessCount(4))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	doc, err := psconv.OpenFile("input.ps")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var out bytes.Buffer
//	if err := conv.Convert(ctx, doc, &out, nil); err != nil {
//	    log.Fatal(err)
//	}
//
// # Execution Modes
//
// The slot capacity (WithMaxProcessCount, SetMaxProcessCount) selects how
// Ghostscript is driven:
//
//   - 1 (default): in-process mode. Jobs run one at a time inside the
//     current process through libgs, which keeps global state. The
//     interpreter is torn down after every job.
//   - N > 1: multi-process mode. Each job runs in its own Ghostscript
//     process; at most N processes exist at once and further callers block
//     until a slot frees.
//
// Stream-backed documents are written to a private temp directory before
// the engine runs; output goes to the same directory and is copied to the
// caller's writer only after a clean exit. The directory is removed
// whatever the outcome.
//
// # Variants
//
// VariantPDF (pdfwrite) accepts PostScript. VariantPS (ps2write) accepts
// PostScript and PDF. Converting an unsupported kind fails immediately with
// ErrUnsupportedDocumentKind.
//
// # Per-job Options
//
//	paper := psconv.PaperA4
//	err := conv.Convert(ctx, doc, w, &psconv.Options{
//	    PaperSize:   &paper,
//	    PDFSettings: psconv.PDFSettingsEbook,
//	    ExtraArgs:   []string{"-dEmbedAllFonts=true"},
//	})
//
// Defaults are Letter paper, language level 3 and PDF compatibility 1.4.
//
// # Errors
//
// Failures match one of ErrUnsupportedDocumentKind, ErrEngineExecution
// (see EngineError for the captured worker output), ErrCancelled or
// ErrAcquireTimeout. Cleanup failures are logged, never returned in place of
// the conversion result. When Convert returns an error the writer's content
// must not be trusted.
//
// # Ghostscript Requirements
//
// Multi-process mode needs the gs executable (gswin64c on Windows) in PATH,
// or set with WithEngine(NewExecEngine(path)). In-process mode needs the
// libgs shared library on Linux, macOS or FreeBSD; set its location with
// WithSharedEngine(NewLibraryEngine(path)).
package psconv
