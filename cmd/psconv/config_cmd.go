package main

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"
)

// runConfigCmd prints the effective configuration (defaults, config file
// and PSCONV_* environment merged) as YAML. The output is a valid config
// file, so it doubles as a starting point for one.
func runConfigCmd(args []string, env *Environment) int {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	fs.Usage = func() { printConfigUsage(env.Stderr) }

	var configFlag string
	fs.StringVarP(&configFlag, "config", "c", "", "config file name or path")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, "error:", err)
		return ExitUsage
	}

	cfg, err := loadSettings(configFlag, env)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		return reportErr(err, env)
	}

	out, err := cfg.Marshal()
	if err != nil {
		return reportErr(fmt.Errorf("rendering config: %w", err), env)
	}
	_, _ = env.Stdout.Write(out)
	return ExitSuccess
}
