package psconv

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// PaperSize is a page size in PostScript points (1/72 inch).
type PaperSize struct {
	Name   string
	Width  int
	Height int
}

// Named paper sizes.
var (
	PaperA0        = PaperSize{Name: "a0", Width: 2384, Height: 3370}
	PaperA1        = PaperSize{Name: "a1", Width: 1684, Height: 2384}
	PaperA2        = PaperSize{Name: "a2", Width: 1191, Height: 1684}
	PaperA3        = PaperSize{Name: "a3", Width: 842, Height: 1191}
	PaperA4        = PaperSize{Name: "a4", Width: 595, Height: 842}
	PaperA5        = PaperSize{Name: "a5", Width: 420, Height: 595}
	PaperA6        = PaperSize{Name: "a6", Width: 297, Height: 420}
	PaperLetter    = PaperSize{Name: "letter", Width: 612, Height: 792}
	PaperLegal     = PaperSize{Name: "legal", Width: 612, Height: 1008}
	PaperLedger    = PaperSize{Name: "ledger", Width: 1224, Height: 792}
	Paper11x17     = PaperSize{Name: "11x17", Width: 792, Height: 1224}
	PaperExecutive = PaperSize{Name: "executive", Width: 540, Height: 720}
)

var paperSizes = []PaperSize{
	PaperA0, PaperA1, PaperA2, PaperA3, PaperA4, PaperA5, PaperA6,
	PaperLetter, PaperLegal, PaperLedger, Paper11x17, PaperExecutive,
}

// Paper dimension bounds in points. Ghostscript accepts larger media, but
// anything beyond 200 inches is almost certainly a unit mistake.
const (
	minPaperPoints = 1
	maxPaperPoints = 14400
)

// LookupPaperSize returns the named paper size (case-insensitive).
func LookupPaperSize(name string) (PaperSize, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, p := range paperSizes {
		if p.Name == key {
			return p, nil
		}
	}
	return PaperSize{}, fmt.Errorf("%w: %q", ErrInvalidPaperSize, name)
}

// PaperSizeNames lists the names accepted by LookupPaperSize.
func PaperSizeNames() []string {
	names := make([]string, len(paperSizes))
	for i, p := range paperSizes {
		names[i] = p.Name
	}
	return names
}

// Validate checks that both dimensions are within bounds.
func (p PaperSize) Validate() error {
	if p.Width < minPaperPoints || p.Width > maxPaperPoints ||
		p.Height < minPaperPoints || p.Height > maxPaperPoints {
		return fmt.Errorf("%w: %dx%d points (each side must be between %d and %d)",
			ErrInvalidPaperSize, p.Width, p.Height, minPaperPoints, maxPaperPoints)
	}
	return nil
}

// Documented defaults applied when Options fields are left zero.
const (
	DefaultLanguageLevel      = 3
	DefaultCompatibilityLevel = "1.4"
)

// DefaultPaperSize is used when Options.PaperSize is nil.
var DefaultPaperSize = PaperLetter

// PDF settings presets (-dPDFSETTINGS).
const (
	PDFSettingsDefault  = "default"
	PDFSettingsScreen   = "screen"
	PDFSettingsEbook    = "ebook"
	PDFSettingsPrinter  = "printer"
	PDFSettingsPrepress = "prepress"
)

// Process color models (-dProcessColorModel).
const (
	ColorModelRGB  = "rgb"
	ColorModelCMYK = "cmyk"
	ColorModelGray = "gray"
)

// Auto-rotate modes (-dAutoRotatePages).
const (
	AutoRotateNone       = "none"
	AutoRotateAll        = "all"
	AutoRotatePageByPage = "pagebypage"
	AutoRotateOff        = "off"
)

var compatibilityLevels = []string{"1.2", "1.3", "1.4", "1.5", "1.6", "1.7", "2.0"}

// Options holds per-job conversion settings. The zero value is valid and
// means: Letter paper, language level 3, the variant's default device.
type Options struct {
	PaperSize     *PaperSize // nil = DefaultPaperSize
	Device        string     // "" = variant default (pdfwrite, ps2write)
	LanguageLevel int        // 1-3, 0 = DefaultLanguageLevel
	ExtraArgs     []string   // passed to the engine before the input file

	// PDF output only; ignored by other variants.
	CompatibilityLevel string // "1.2".."2.0", "" = DefaultCompatibilityLevel
	PDFSettings        string // default, screen, ebook, printer, prepress
	ProcessColorModel  string // rgb, cmyk, gray
	AutoRotatePages    string // none, all, pagebypage, off
}

// DefaultOptions returns options with every default spelled out.
func DefaultOptions() *Options {
	paper := DefaultPaperSize
	return &Options{
		PaperSize:          &paper,
		LanguageLevel:      DefaultLanguageLevel,
		CompatibilityLevel: DefaultCompatibilityLevel,
	}
}

// Validate checks that options are valid.
// Returns nil if o is nil (nil means use defaults).
func (o *Options) Validate() error {
	if o == nil {
		return nil
	}

	if o.PaperSize != nil {
		if err := o.PaperSize.Validate(); err != nil {
			return err
		}
	}

	if o.Device != "" && !isValidDevice(o.Device) {
		return fmt.Errorf("%w: %q", ErrInvalidDevice, o.Device)
	}

	if o.LanguageLevel < 0 || o.LanguageLevel > 3 {
		return fmt.Errorf("%w: %d (must be between 1 and 3)", ErrInvalidLanguageLevel, o.LanguageLevel)
	}

	for _, arg := range o.ExtraArgs {
		if err := validateExtraArg(arg); err != nil {
			return err
		}
	}

	if o.CompatibilityLevel != "" && !slices.Contains(compatibilityLevels, o.CompatibilityLevel) {
		return fmt.Errorf("%w: %q", ErrInvalidCompatibilityLevel, o.CompatibilityLevel)
	}

	switch strings.ToLower(o.PDFSettings) {
	case "", PDFSettingsDefault, PDFSettingsScreen, PDFSettingsEbook, PDFSettingsPrinter, PDFSettingsPrepress:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPDFSettings, o.PDFSettings)
	}

	switch strings.ToLower(o.ProcessColorModel) {
	case "", ColorModelRGB, ColorModelCMYK, ColorModelGray:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidColorModel, o.ProcessColorModel)
	}

	switch strings.ToLower(o.AutoRotatePages) {
	case "", AutoRotateNone, AutoRotateAll, AutoRotatePageByPage, AutoRotateOff:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAutoRotate, o.AutoRotatePages)
	}

	return nil
}

// withDefaults returns a copy of o with zero fields filled in.
func (o *Options) withDefaults() Options {
	var r Options
	if o != nil {
		r = *o
		r.ExtraArgs = slices.Clone(o.ExtraArgs)
	}
	if r.PaperSize == nil {
		paper := DefaultPaperSize
		r.PaperSize = &paper
	}
	if r.LanguageLevel == 0 {
		r.LanguageLevel = DefaultLanguageLevel
	}
	if r.CompatibilityLevel == "" {
		r.CompatibilityLevel = DefaultCompatibilityLevel
	}
	return r
}

// isValidDevice accepts Ghostscript device names: lowercase letters, digits,
// underscores and dashes.
func isValidDevice(name string) bool {
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

// reservedArgPrefixes are switches the converter owns. Letting callers set
// them would redirect output outside the job's workspace, widen the file
// access -dSAFER allows, or turn it off.
var reservedArgPrefixes = []string{
	"-sOutputFile", "-o", "-sDEVICE",
	"-dNOSAFER", "-dDELAYSAFER", "-dSAFER=",
	"--permit-",
}

func validateExtraArg(arg string) error {
	if !strings.HasPrefix(arg, "-") || len(arg) < 2 {
		return fmt.Errorf("%w: %q (must be a switch starting with '-')", ErrInvalidExtraArg, arg)
	}
	if strings.ContainsRune(arg, 0) {
		return fmt.Errorf("%w: contains null byte", ErrInvalidExtraArg)
	}
	// "-f" ends switch parsing; anything after it would be read as input.
	if arg == "-f" {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidExtraArg, arg)
	}
	for _, p := range reservedArgPrefixes {
		if strings.HasPrefix(arg, p) {
			return fmt.Errorf("%w: %q is reserved", ErrInvalidExtraArg, arg)
		}
	}
	return nil
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	maxProcessCount int
	acquireTimeout  time.Duration
	tempDir         string
	logger          zerolog.Logger
	removeWorkspace func(*workspace) error
}

func (c converterConfig) workspaces() workspaces {
	return workspaces{tempDir: c.tempDir, remove: c.removeWorkspace}
}

// defaultMaxProcessCount selects in-process exclusive mode.
const defaultMaxProcessCount = 1

// WithMaxProcessCount sets how many engine invocations may run at once.
// 1 selects in-process exclusive mode, more selects multi-process mode.
// Values below 1 make NewConverter fail with ErrInvalidProcessCount.
func WithMaxProcessCount(n int) Option {
	return func(c *Converter) {
		c.cfg.maxProcessCount = n
	}
}

// WithAcquireTimeout bounds how long Convert waits for a free slot.
// Zero (the default) waits until the context is done.
func WithAcquireTimeout(d time.Duration) Option {
	return func(c *Converter) {
		c.cfg.acquireTimeout = d
	}
}

// WithTempDir sets the parent directory for per-job workspaces.
// Empty means os.TempDir().
func WithTempDir(dir string) Option {
	return func(c *Converter) {
		c.cfg.tempDir = dir
	}
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Converter) {
		c.cfg.logger = l
	}
}

// WithEngine sets the engine used in multi-process mode.
func WithEngine(e Engine) Option {
	return func(c *Converter) {
		c.engine = e
	}
}

// WithSharedEngine sets the engine used in in-process exclusive mode.
func WithSharedEngine(e SharedEngine) Option {
	return func(c *Converter) {
		c.shared = e
	}
}
