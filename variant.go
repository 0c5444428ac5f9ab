package psconv

import (
	"slices"
	"strconv"
	"strings"
)

// Variant describes one conversion target: the engine device it drives,
// the extension of its output and the input kinds it accepts.
type Variant struct {
	Name           string
	Device         string
	Extension      string
	SupportedKinds []DocumentKind

	// pdfOutput enables the PDF-specific switches of Options.
	pdfOutput bool
}

// Built-in variants.
var (
	// VariantPDF converts PostScript to PDF with the pdfwrite device.
	VariantPDF = &Variant{
		Name:           "pdf",
		Device:         "pdfwrite",
		Extension:      "pdf",
		SupportedKinds: []DocumentKind{KindPostScript},
		pdfOutput:      true,
	}

	// VariantPS converts PostScript or PDF to PostScript with ps2write.
	VariantPS = &Variant{
		Name:           "ps",
		Device:         "ps2write",
		Extension:      "ps",
		SupportedKinds: []DocumentKind{KindPostScript, KindPDF},
	}
)

// LookupVariant returns the built-in variant with the given name.
func LookupVariant(name string) (*Variant, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case VariantPDF.Name:
		return VariantPDF, true
	case VariantPS.Name, "postscript":
		return VariantPS, true
	}
	return nil, false
}

// Supports reports whether the variant accepts documents of kind k.
func (v *Variant) Supports(k DocumentKind) bool {
	return slices.Contains(v.SupportedKinds, k)
}

// acceptedKinds renders the supported set for error messages.
func (v *Variant) acceptedKinds() string {
	names := make([]string, len(v.SupportedKinds))
	for i, k := range v.SupportedKinds {
		names[i] = k.String()
	}
	return strings.Join(names, ", ")
}

// Args builds the engine argument vector for one job. The vector does not
// include a program name. opts must already have defaults applied.
func (v *Variant) Args(opts Options, input, output string) []string {
	device := opts.Device
	if device == "" {
		device = v.Device
	}

	args := []string{"-dNOPAUSE", "-dBATCH", "-dSAFER"}

	if v.pdfOutput {
		args = append(args, "-dCompatibilityLevel="+opts.CompatibilityLevel)
		if opts.PDFSettings != "" {
			args = append(args, "-dPDFSETTINGS=/"+strings.ToLower(opts.PDFSettings))
		}
		if cm := colorModelName(opts.ProcessColorModel); cm != "" {
			args = append(args, "-dProcessColorModel=/"+cm)
		}
		if ar := autoRotateName(opts.AutoRotatePages); ar != "" {
			args = append(args, "-dAutoRotatePages=/"+ar)
		}
	} else {
		args = append(args, "-dLanguageLevel="+strconv.Itoa(opts.LanguageLevel))
	}

	args = append(args,
		"-dDEVICEWIDTHPOINTS="+strconv.Itoa(opts.PaperSize.Width),
		"-dDEVICEHEIGHTPOINTS="+strconv.Itoa(opts.PaperSize.Height),
		"-sDEVICE="+device,
		"-sOutputFile="+output,
		"-q",
	)
	args = append(args, opts.ExtraArgs...)
	return append(args, "-f", input)
}

func colorModelName(model string) string {
	switch strings.ToLower(model) {
	case ColorModelRGB:
		return "DeviceRGB"
	case ColorModelCMYK:
		return "DeviceCMYK"
	case ColorModelGray:
		return "DeviceGray"
	}
	return ""
}

func autoRotateName(mode string) string {
	switch strings.ToLower(mode) {
	case AutoRotateNone:
		return "None"
	case AutoRotateAll:
		return "All"
	case AutoRotatePageByPage:
		return "PageByPage"
	case AutoRotateOff:
		return "Off"
	}
	return ""
}
