package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	logFormat string
	quiet     bool
	verbose   bool
}

// engineFlags locate Ghostscript and bound its runs.
type engineFlags struct {
	binary         string
	library        string
	timeout        string
	acquireTimeout string
}

// documentFlags holds per-document engine settings.
type documentFlags struct {
	paperSize     string
	device        string
	languageLevel int
	extraArgs     []string

	compatibilityLevel string
	pdfSettings        string
	colorModel         string
	autoRotate         string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common   commonFlags
	output   string
	format   string
	workers  int
	engine   engineFlags
	document documentFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.logFormat, "log-format", "", "log output: console, json")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// addEngineFlags adds Ghostscript location and timeout flags to a FlagSet.
func addEngineFlags(fs *flag.FlagSet, f *engineFlags) {
	fs.StringVar(&f.binary, "gs", "", "Ghostscript executable (default: gs in PATH)")
	fs.StringVar(&f.library, "libgs", "", "libgs shared library for in-process mode")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-file timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.acquireTimeout, "acquire-timeout", "", "max wait for a free worker slot")
}

// addDocumentFlags adds per-document settings to a FlagSet.
func addDocumentFlags(fs *flag.FlagSet, f *documentFlags) {
	fs.StringVarP(&f.paperSize, "paper-size", "p", "", "paper size: letter, a4, legal, ...")
	fs.StringVar(&f.device, "device", "", "override the output device")
	fs.IntVar(&f.languageLevel, "language-level", 0, "PostScript language level (1-3)")
	fs.StringArrayVar(&f.extraArgs, "extra-arg", nil, "extra -d/-s switch (repeatable)")
	fs.StringVar(&f.compatibilityLevel, "pdf-compat", "", "PDF compatibility level (1.2-2.0)")
	fs.StringVar(&f.pdfSettings, "pdf-settings", "", "PDF preset: default, screen, ebook, printer, prepress")
	fs.StringVar(&f.colorModel, "color-model", "", "PDF color model: rgb, cmyk, gray")
	fs.StringVar(&f.autoRotate, "auto-rotate", "", "PDF page rotation: none, all, pagebypage, off")
}

// newConvertFlagSet registers every convert flag on a fresh FlagSet.
func newConvertFlagSet(f *convertFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.StringVarP(&f.format, "format", "f", "", "output format: pdf, ps")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel Ghostscript processes (0 = auto, 1 = in-process)")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addEngineFlags(fs, &f.engine)
	addDocumentFlags(fs, &f.document)

	return fs
}

// parseConvertFlags parses convert command flags and returns positional args.
// Usage and parse errors are written to w.
func parseConvertFlags(args []string, w io.Writer) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := newConvertFlagSet(f)
	fs.SetOutput(w)
	fs.Usage = func() { printConvertUsage(w) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
