package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/normjump/internal/grammar"
)

// Error codes reported by the validate command.
const (
	ErrCodeGrammarFile   = "E001" // file missing or unreadable
	ErrCodeGrammarTables = "E002" // tables fail structural validation
)

// GrammarSummary is the JSON payload for a valid grammar file.
type GrammarSummary struct {
	Path    string `json:"path"`
	Hash    string `json:"hash"`
	TopRule string `json:"top_rule"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <grammar-file>",
		Short: "Validate a grammar file",
		Long: `Validate a grammar file (.yaml or .cue) without running anything.

Checks syntax, rule arities, regrowth coverage, and probability sums,
then prints the grammar hash on success.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := grammar.LoadFile(path)
	if err != nil {
		code := ErrCodeGrammarFile
		var cueErr *grammar.CUEError
		var cfgErr *grammar.ConfigError
		switch {
		case errors.As(err, &cueErr), errors.As(err, &cfgErr):
			code = ErrCodeGrammarTables
		}
		_ = formatter.Error(code, err.Error(), nil)
		if code == ErrCodeGrammarTables {
			return WrapExitError(ExitFailure, "invalid grammar", err)
		}
		return WrapExitError(ExitCommandError, "cannot load grammar", err)
	}

	formatter.VerboseLog("Loaded grammar from %s", path)

	if formatter.Format == "json" {
		return formatter.Success(GrammarSummary{Path: path, Hash: cfg.Hash(), TopRule: cfg.TopRule()})
	}

	fmt.Fprintf(formatter.Writer, "✓ Grammar valid\n")
	fmt.Fprintf(formatter.Writer, "  hash:     %s\n", cfg.Hash())
	fmt.Fprintf(formatter.Writer, "  top rule: %s\n", cfg.TopRule())
	return nil
}
