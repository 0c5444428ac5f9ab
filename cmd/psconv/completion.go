package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	psconv "github.com/alnah/go-psconv"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// inputGlob matches the files convert picks up from directories.
const inputGlob = "*.ps,*.eps,*.pdf"

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagEnum // has predefined values
	flagFile // file, optionally filtered by a glob
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name string
	Desc string
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string // enum values
	FileGlob string   // file glob pattern ("*" = any file)
	IsDir    bool     // directory completion
}

// flagCompletionMeta maps flag names to their completion metadata.
func flagCompletionMeta() map[string]completionMeta {
	return map[string]completionMeta{
		// Enum flags
		"format":       {Values: []string{"pdf", "ps"}},
		"paper-size":   {Values: psconv.PaperSizeNames()},
		"log-format":   {Values: []string{"console", "json"}},
		"pdf-compat":   {Values: []string{"1.2", "1.3", "1.4", "1.5", "1.6", "1.7", "2.0"}},
		"pdf-settings": {Values: []string{"default", "screen", "ebook", "printer", "prepress"}},
		"color-model":  {Values: []string{"rgb", "cmyk", "gray"}},
		"auto-rotate":  {Values: []string{"none", "all", "pagebypage", "off"}},

		// File flags
		"config": {FileGlob: "*.yaml,*.yml"},
		"gs":     {FileGlob: "*"},
		"libgs":  {FileGlob: "*.so,*.so.*,*.dylib,*.dll"},

		// Directory flags
		"output": {IsDir: true},
	}
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	meta := flagCompletionMeta()
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		// Determine base type from pflag type
		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int":
			fd.Type = flagInt
		default:
			fd.Type = flagString
		}

		// Override type based on completion metadata
		if m, ok := meta[f.Name]; ok {
			switch {
			case len(m.Values) > 0:
				fd.Type = flagEnum
				fd.Values = m.Values
			case m.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = m.FileGlob
			case m.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
func getCommands() []commandDef {
	return []commandDef{
		{Name: "convert", Desc: "Convert PostScript/PDF files with Ghostscript"},
		{Name: "doctor", Desc: "Check the Ghostscript installation"},
		{Name: "config", Desc: "Print the effective configuration"},
		{Name: "completion", Desc: "Generate shell completion script"},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
	}
}

// convertFlagDefs returns the convert flags from the real FlagSet, the
// single source of truth for names and descriptions.
func convertFlagDefs() []flagDef {
	return extractFlagsFromFlagSet(newConvertFlagSet(&convertFlags{}))
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	var b strings.Builder
	switch shell {
	case ShellBash:
		generateBash(&b)
	case ShellZsh:
		generateZsh(&b)
	case ShellFish:
		generateFish(&b)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// generateBash writes a bash completion function.
func generateBash(b *strings.Builder) {
	flags := convertFlagDefs()
	commands := getCommands()

	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.Name
	}
	var all []string
	for _, f := range flags {
		all = append(all, "--"+f.Long)
		if f.Short != "" {
			all = append(all, "-"+f.Short)
		}
	}

	b.WriteString("# bash completion for psconv\n")
	b.WriteString("_psconv() {\n")
	b.WriteString("    local cur prev\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    COMPREPLY=()\n\n")
	b.WriteString("    case \"$prev\" in\n")
	for _, f := range flags {
		var action string
		switch f.Type {
		case flagEnum:
			action = fmt.Sprintf("COMPREPLY=($(compgen -W %q -- \"$cur\"))", strings.Join(f.Values, " "))
		case flagFile:
			action = "COMPREPLY=($(compgen -f -- \"$cur\"))"
		case flagDir:
			action = "COMPREPLY=($(compgen -d -- \"$cur\"))"
		case flagBool:
			continue
		default:
			action = "" // free-form value
		}
		fmt.Fprintf(b, "        %s)\n            %s\n            return ;;\n", bashPattern(f), action)
	}
	b.WriteString("    esac\n\n")
	fmt.Fprintf(b, "    if [[ \"$cur\" == -* ]]; then\n        COMPREPLY=($(compgen -W %q -- \"$cur\"))\n        return\n    fi\n\n",
		strings.Join(all, " "))
	fmt.Fprintf(b, "    if [[ $COMP_CWORD -eq 1 ]]; then\n        COMPREPLY=($(compgen -W %q -- \"$cur\"))\n    fi\n",
		strings.Join(names, " "))
	b.WriteString("    COMPREPLY+=($(compgen -f -- \"$cur\"))\n")
	b.WriteString("}\n")
	b.WriteString("complete -o filenames -F _psconv psconv\n")
}

func bashPattern(f flagDef) string {
	if f.Short != "" {
		return "--" + f.Long + "|-" + f.Short
	}
	return "--" + f.Long
}

// generateZsh writes a zsh completion function.
func generateZsh(b *strings.Builder) {
	b.WriteString("#compdef psconv\n\n")
	b.WriteString("_psconv() {\n")
	b.WriteString("  local -a commands\n")
	b.WriteString("  commands=(\n")
	for _, c := range getCommands() {
		fmt.Fprintf(b, "    '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("  )\n\n")
	b.WriteString("  if (( CURRENT == 2 )) && [[ $words[2] != -* ]]; then\n")
	b.WriteString("    _describe -t commands 'psconv command' commands\n")
	fmt.Fprintf(b, "    _files -g '%s'\n", zshGlob(inputGlob))
	b.WriteString("    return\n")
	b.WriteString("  fi\n\n")
	b.WriteString("  _arguments -s \\\n")
	for _, f := range convertFlagDefs() {
		fmt.Fprintf(b, "    %s \\\n", zshSpec(f))
	}
	fmt.Fprintf(b, "    '*:input:_files -g \"%s\"'\n", zshGlob(inputGlob))
	b.WriteString("}\n\n")
	b.WriteString("_psconv \"$@\"\n")
}

// zshSpec renders one _arguments flag specification.
func zshSpec(f flagDef) string {
	desc := "[" + zshEscape(f.Desc) + "]"

	var action string
	switch f.Type {
	case flagBool:
		action = ""
	case flagEnum:
		action = ":" + f.Long + ":(" + strings.Join(f.Values, " ") + ")"
	case flagFile:
		if f.FileGlob == "*" {
			action = ":" + f.Long + ":_files"
		} else {
			action = ":" + f.Long + ":_files -g \"" + zshGlob(f.FileGlob) + "\""
		}
	case flagDir:
		action = ":" + f.Long + ":_files -/"
	default:
		action = ":" + f.Long + ": "
	}

	// Repeatable flags may appear more than once.
	if f.Long == "extra-arg" {
		return "'*--" + f.Long + desc + action + "'"
	}
	if f.Short != "" {
		return "'(-" + f.Short + " --" + f.Long + ")'{-" + f.Short + ",--" + f.Long + "}'" + desc + action + "'"
	}
	return "'--" + f.Long + desc + action + "'"
}

// zshGlob turns "*.a,*.b" into "*.(a|b)" style alternation.
func zshGlob(glob string) string {
	parts := strings.Split(glob, ",")
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, "|") + ")"
}

func zshEscape(s string) string {
	r := strings.NewReplacer("'", "'\\''", "[", "\\[", "]", "\\]", ":", "\\:")
	return r.Replace(s)
}

// generateFish writes fish completions.
func generateFish(b *strings.Builder) {
	b.WriteString("# fish completion for psconv\n")
	b.WriteString("complete -c psconv -f\n\n")
	for _, c := range getCommands() {
		fmt.Fprintf(b, "complete -c psconv -n '__fish_use_subcommand' -a %s -d '%s'\n", c.Name, fishEscape(c.Desc))
	}
	b.WriteString("\n")
	for _, f := range convertFlagDefs() {
		line := "complete -c psconv -l " + f.Long
		if f.Short != "" {
			line += " -s " + f.Short
		}
		switch f.Type {
		case flagEnum:
			line += " -x -a '" + strings.Join(f.Values, " ") + "'"
		case flagFile:
			line += " -r -F"
		case flagDir:
			line += " -x -a '(__fish_complete_directories)'"
		case flagString, flagInt:
			line += " -x"
		}
		line += " -d '" + fishEscape(f.Desc) + "'"
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	for _, g := range strings.Split(inputGlob, ",") {
		fmt.Fprintf(b, "complete -c psconv -a '(__fish_complete_suffix %s)'\n", strings.TrimPrefix(g, "*"))
	}
}

func fishEscape(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}

	shell := Shell(args[0])
	return GenerateCompletion(env.Stdout, shell)
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: psconv completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(psconv completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (before compinit):")
	fmt.Fprintln(w, "    eval \"$(psconv completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    psconv completion fish > ~/.config/fish/completions/psconv.fish")
}
