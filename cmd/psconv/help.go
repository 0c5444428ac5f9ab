package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: psconv <command> [flags] [args]")
	fmt.Fprintln(w, "       psconv [flags] <file|dir>...   (same as convert)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert     Convert PostScript/PDF files with Ghostscript")
	fmt.Fprintln(w, "  doctor      Check the Ghostscript installation")
	fmt.Fprintln(w, "  config      Print the effective configuration")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'psconv help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: psconv convert <file|dir>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert PostScript to PDF, or PostScript/PDF to PostScript.")
	fmt.Fprintln(w, "Directories are scanned (not recursively) for .ps, .eps and .pdf files.")
	fmt.Fprintln(w, "Explicit files are converted whatever their extension; the content decides")
	fmt.Fprintln(w, "whether the target format accepts them.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>          Output file (single input) or directory")
	fmt.Fprintln(w, "  -f, --format <s>             Output format: pdf (from PS), ps (from PS or PDF)")
	fmt.Fprintln(w, "  -c, --config <name>          Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Engine:")
	fmt.Fprintln(w, "  -w, --workers <n>            Parallel gs processes (0 = auto, 1 = in-process libgs)")
	fmt.Fprintln(w, "  -t, --timeout <d>            Per-file timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --acquire-timeout <d>    Max wait for a free worker slot")
	fmt.Fprintln(w, "      --gs <path>              Ghostscript executable")
	fmt.Fprintln(w, "      --libgs <path>           libgs shared library")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "  -p, --paper-size <s>         Paper size: letter, a4, legal, ledger, ...")
	fmt.Fprintln(w, "      --device <s>             Override the output device")
	fmt.Fprintln(w, "      --language-level <n>     PostScript language level (1-3)")
	fmt.Fprintln(w, "      --extra-arg <s>          Extra -d/-s switch (repeatable)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "PDF Output:")
	fmt.Fprintln(w, "      --pdf-compat <s>         Compatibility level: 1.2 to 2.0")
	fmt.Fprintln(w, "      --pdf-settings <s>       Preset: default, screen, ebook, printer, prepress")
	fmt.Fprintln(w, "      --color-model <s>        Color model: rgb, cmyk, gray")
	fmt.Fprintln(w, "      --auto-rotate <s>        Page rotation: none, all, pagebypage, off")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "      --log-format <s>         Log output: console, json")
	fmt.Fprintln(w, "  -q, --quiet                  Only show errors")
	fmt.Fprintln(w, "  -v, --verbose                Show debug logs and timing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  PSCONV_CONFIG, PSCONV_FORMAT, PSCONV_WORKERS, PSCONV_TIMEOUT, PSCONV_GS,")
	fmt.Fprintln(w, "  PSCONV_LIBGS, PSCONV_ACQUIRE_TIMEOUT, PSCONV_OUTPUT_DIR, PSCONV_PAPER_SIZE,")
	fmt.Fprintln(w, "  PSCONV_LOG_LEVEL, PSCONV_LOG_FORMAT. A .env file in the working directory")
	fmt.Fprintln(w, "  (or PSCONV_ENV_FILE) is loaded first. Flags win over the environment,")
	fmt.Fprintln(w, "  which wins over the config file.")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: psconv doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that Ghostscript can be found and run.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json             Output as JSON")
	fmt.Fprintln(w, "      --gs <path>        Ghostscript executable to check")
	fmt.Fprintln(w, "      --libgs <path>     libgs shared library to check")
	fmt.Fprintln(w, "      --temp-dir <path>  Directory to check for workspaces")
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: psconv config [-c <name>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the effective configuration as YAML: defaults, then the config")
	fmt.Fprintln(w, "file, then PSCONV_* environment variables.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: psconv version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: psconv help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
