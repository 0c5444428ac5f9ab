package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	psconv "github.com/alnah/go-psconv"
	"github.com/alnah/go-psconv/internal/config"
)

// ErrInvalidFormat is returned for an output format other than pdf or ps.
var ErrInvalidFormat = errors.New("invalid output format")

// dirPermissions is used for output directories created on demand.
const dirPermissions = 0o750 // rwxr-x---: owner full, group read+execute

// fileConverter is the part of psconv.Converter the batch needs.
type fileConverter interface {
	ConvertFile(ctx context.Context, inPath, outPath string, opts *psconv.Options) error
}

// Compile-time interface implementation check.
var _ fileConverter = (*psconv.Converter)(nil)

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Err        error
	Duration   time.Duration
}

// batchError reports failed conversions and unwraps to the first failure,
// so exit codes follow its cause.
type batchError struct {
	failed int
	total  int
	first  error
}

func (e *batchError) Error() string {
	return fmt.Sprintf("%d of %d conversion(s) failed", e.failed, e.total)
}

func (e *batchError) Unwrap() error {
	return e.first
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, env *Environment) error {
	cfg, err := loadSettings(flags.common.config, env)
	if err != nil {
		return err
	}

	// Merge CLI flags into config (CLI wins)
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(env.Stderr, cfg.Log.Format, cfg.Log.Level, flags.common.verbose, flags.common.quiet)

	variant, err := resolveVariant(cfg.Output.Format)
	if err != nil {
		return err
	}

	opts, err := buildOptions(cfg)
	if err != nil {
		return err
	}

	files, err := discoverFiles(positionalArgs, resolveOutputDir(flags.output, cfg), variant.Extension)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}

	conv, err := newConverter(cfg, variant, env, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conv.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("closing converter")
		}
	}()

	logger.Debug().
		Str("variant", variant.Name).
		Str("mode", conv.Stats().Mode).
		Int("workers", conv.MaxProcessCount()).
		Int("files", len(files)).
		Msg("starting conversion")

	results := convertBatch(ctx, conv, files, opts, cfg.Timeout(), env.Now)

	stats := conv.Stats()
	logger.Debug().
		Int("peak", stats.Peak).
		Int64("completed", stats.Completed).
		Int64("failed", stats.Failed).
		Int64("rejected", stats.Rejected).
		Int64("cleanup_failures", stats.CleanupFailures).
		Msg("conversion finished")

	failed := printResultsWithWriter(results, flags.common.quiet, flags.common.verbose, env)
	if failed > 0 {
		return &batchError{failed: failed, total: len(results), first: firstError(results)}
	}
	return nil
}

// loadSettings builds the configuration from the config file (flag, then
// PSCONV_CONFIG) and the PSCONV_* environment.
func loadSettings(configFlag string, env *Environment) (*config.Config, error) {
	warnUnknownEnvVars(env.Stderr)

	envCfg, err := loadEnvConfig()
	if err != nil {
		return nil, err
	}

	path := configFlag
	if path == "" {
		path = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if path != "" {
		cfg, err = config.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	applyEnvConfig(envCfg, cfg)
	return cfg, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	if flags.format != "" {
		cfg.Output.Format = flags.format
	}
	if flags.workers != 0 {
		cfg.Workers = flags.workers
	}
	if flags.common.logFormat != "" {
		cfg.Log.Format = flags.common.logFormat
	}

	// Engine flags
	if flags.engine.binary != "" {
		cfg.Engine.Binary = flags.engine.binary
	}
	if flags.engine.library != "" {
		cfg.Engine.Library = flags.engine.library
	}
	if flags.engine.timeout != "" {
		cfg.Engine.Timeout = flags.engine.timeout
	}
	if flags.engine.acquireTimeout != "" {
		cfg.Engine.AcquireTimeout = flags.engine.acquireTimeout
	}

	// Document flags
	if flags.document.paperSize != "" {
		cfg.Document.PaperSize = flags.document.paperSize
	}
	if flags.document.device != "" {
		cfg.Document.Device = flags.document.device
	}
	if flags.document.languageLevel != 0 {
		cfg.Document.LanguageLevel = flags.document.languageLevel
	}
	if len(flags.document.extraArgs) > 0 {
		cfg.Document.ExtraArgs = flags.document.extraArgs
	}

	// PDF flags
	if flags.document.compatibilityLevel != "" {
		cfg.Document.PDF.CompatibilityLevel = flags.document.compatibilityLevel
	}
	if flags.document.pdfSettings != "" {
		cfg.Document.PDF.Settings = flags.document.pdfSettings
	}
	if flags.document.colorModel != "" {
		cfg.Document.PDF.ColorModel = flags.document.colorModel
	}
	if flags.document.autoRotate != "" {
		cfg.Document.PDF.AutoRotate = flags.document.autoRotate
	}
}

// resolveOutputDir determines the output path from flag or config.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// resolveVariant maps the configured format to a conversion variant.
func resolveVariant(format string) (*psconv.Variant, error) {
	if format == "" {
		format = config.FormatPDF
	}
	v, ok := psconv.LookupVariant(format)
	if !ok {
		return nil, fmt.Errorf("%w: %q (must be pdf or ps)", ErrInvalidFormat, format)
	}
	return v, nil
}

// buildOptions creates psconv.Options from the document config.
func buildOptions(cfg *config.Config) (*psconv.Options, error) {
	paper := psconv.DefaultPaperSize
	if cfg.Document.PaperSize != "" {
		p, err := psconv.LookupPaperSize(cfg.Document.PaperSize)
		if err != nil {
			return nil, fmt.Errorf("%w (known: %s)", err, strings.Join(psconv.PaperSizeNames(), ", "))
		}
		paper = p
	}

	opts := &psconv.Options{
		PaperSize:          &paper,
		Device:             cfg.Document.Device,
		LanguageLevel:      cfg.Document.LanguageLevel,
		ExtraArgs:          cfg.Document.ExtraArgs,
		CompatibilityLevel: cfg.Document.PDF.CompatibilityLevel,
		PDFSettings:        cfg.Document.PDF.Settings,
		ProcessColorModel:  cfg.Document.PDF.ColorModel,
		AutoRotatePages:    cfg.Document.PDF.AutoRotate,
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// newConverter creates the converter for the resolved worker count.
// With a single worker it prefers libgs in-process and falls back to one
// gs process at a time when the library cannot be loaded.
func newConverter(cfg *config.Config, variant *psconv.Variant, env *Environment, logger zerolog.Logger) (*psconv.Converter, error) {
	workers := psconv.ResolveProcessCount(cfg.Workers)

	engine := env.Engine
	if engine == nil {
		engine = psconv.NewExecEngine(cfg.Engine.Binary)
	}

	opts := []psconv.Option{
		psconv.WithMaxProcessCount(workers),
		psconv.WithEngine(engine),
		psconv.WithLogger(logger),
	}
	if d := cfg.AcquireTimeout(); d > 0 {
		opts = append(opts, psconv.WithAcquireTimeout(d))
	}

	if workers == 1 {
		shared := env.SharedEngine
		if shared == nil {
			lib := psconv.NewLibraryEngine(cfg.Engine.Library)
			if err := lib.Check(); err != nil {
				logger.Warn().Err(err).Msg("libgs unavailable, running one gs process at a time")
				shared = psconv.NopReset(engine)
			} else {
				shared = lib
			}
		}
		opts = append(opts, psconv.WithSharedEngine(shared))
	}

	return psconv.NewConverter(variant, opts...)
}

// convertBatch converts files concurrently. The converter's slots bound how
// many engines run; the group limit keeps at most one waiting job per slot.
func convertBatch(ctx context.Context, conv fileConverter, files []FileToConvert, opts *psconv.Options, timeout time.Duration, now func() time.Time) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	limit := 2
	if sized, ok := conv.(interface{ MaxProcessCount() int }); ok {
		limit = 2 * sized.MaxProcessCount()
	}

	results := make([]ConversionResult, len(files))
	var g errgroup.Group
	g.SetLimit(limit)

	for i, f := range files {
		g.Go(func() error {
			results[i] = convertFile(ctx, conv, f, opts, timeout, now)
			return nil
		})
	}

	// Errors are carried in results, never returned by the goroutines.
	_ = g.Wait()
	return results
}

// convertFile processes a single file and returns the result.
func convertFile(ctx context.Context, conv fileConverter, f FileToConvert, opts *psconv.Options, timeout time.Duration, now func() time.Time) ConversionResult {
	start := now()
	result := ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}

	if err := os.MkdirAll(filepath.Dir(f.OutputPath), dirPermissions); err != nil {
		result.Err = fmt.Errorf("creating output directory: %w", err)
		result.Duration = now().Sub(start)
		return result
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result.Err = conv.ConvertFile(ctx, f.InputPath, f.OutputPath, opts)
	result.Duration = now().Sub(start)
	return result
}

// firstError returns the first failure in input order.
func firstError(results []ConversionResult) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResultsWithWriter outputs conversion results using the provided writers.
func printResultsWithWriter(results []ConversionResult, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}
