package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	psconv "github.com/alnah/go-psconv"
	"github.com/alnah/go-psconv/internal/config"
	"github.com/alnah/go-psconv/internal/hints"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))

	env := DefaultEnv()
	loadDotEnv(env.Stderr)

	os.Exit(runMain(os.Args, env))
}

// commands lists the subcommand names. Anything else is treated as
// input for the default convert command.
var commands = []string{"convert", "doctor", "config", "completion", "version", "help"}

// isCommand reports whether arg names a subcommand.
func isCommand(arg string) bool {
	return slices.Contains(commands, arg)
}

// runMain dispatches to a subcommand and returns the process exit code.
// args includes the program name, like os.Args.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]
	switch cmd {
	case "-h", "--help":
		printUsage(env.Stdout)
		return ExitSuccess
	case "-V", "--version":
		cmd = "version"
	}
	if !isCommand(cmd) {
		cmd, rest = "convert", args[1:]
	}

	switch cmd {
	case "version":
		fmt.Fprintf(env.Stdout, "psconv %s\n", Version)
		return ExitSuccess
	case "help":
		return runHelp(rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "completion":
		if err := runCompletion(rest, env); err != nil {
			fmt.Fprintln(env.Stderr, err)
			return exitCodeFor(err)
		}
		return ExitSuccess
	case "config":
		return runConfigCmd(rest, env)
	}

	flags, positional, err := parseConvertFlags(rest, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, "error:", err)
		return ExitUsage
	}

	ctx, stop := notifyContext(env.Context)
	defer stop()

	return reportErr(runConvert(ctx, positional, flags, env), env)
}

// reportErr prints err, if any, and maps it to an exit code.
func reportErr(err error, env *Environment) int {
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
	}
	return exitCodeFor(err)
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, psconv.ErrEngineUnavailable):
		return hints.ForEngineUnavailable()
	case errors.Is(err, psconv.ErrAcquireTimeout):
		return hints.ForAcquireTimeout()
	case errors.Is(err, psconv.ErrCancelled) && errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound()
	case errors.Is(err, psconv.ErrUnsupportedDocumentKind):
		return hints.ForUnsupportedKind()
	case errors.Is(err, os.ErrPermission):
		return hints.ForOutputDirectory()
	default:
		return ""
	}
}
