package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/normjump/internal/store"
)

// RunDetail is the JSON payload for a single persisted run.
type RunDetail struct {
	RunToken      string         `json:"run_token"`
	GrammarHash   string         `json:"grammar_hash"`
	TopRule       string         `json:"top_rule"`
	Seed          int64          `json:"seed"`
	Steps         int            `json:"steps"`
	CreatedAt     string         `json:"created_at"`
	Samples       int            `json:"samples"`
	Accepted      int            `json:"accepted"`
	FinalTree     string         `json:"final_tree,omitempty"`
	TreeFrequency map[string]int `json:"tree_frequency,omitempty"`
}

// RunListing is the JSON payload for the run index.
type RunListing struct {
	Runs []RunDetail `json:"runs"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "inspect [run-token]",
		Short: "Inspect persisted chain runs",
		Long: `Inspect runs recorded by the chain command.

Without a run token, lists every run in the database. With a token,
shows that run's parameters, sample counts, and how often each
distinct tree was held.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			token := ""
			if len(args) == 1 {
				token = args[0]
			}
			return runInspect(rootOpts, cmd, dbPath, token)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database to read (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runInspect(opts *RootOptions, cmd *cobra.Command, dbPath, token string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot open database", err)
	}
	defer st.Close()

	if token == "" {
		return listRuns(formatter, cmd, st)
	}
	return showRun(formatter, cmd, st, token)
}

func listRuns(formatter *OutputFormatter, cmd *cobra.Command, st *store.Store) error {
	runs, err := st.ListRuns(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot list runs", err)
	}

	if formatter.Format == "json" {
		listing := RunListing{Runs: make([]RunDetail, 0, len(runs))}
		for _, r := range runs {
			listing.Runs = append(listing.Runs, runDetail(r))
		}
		return formatter.Success(listing)
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "no runs recorded")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(formatter.Writer, "%s  seed=%d steps=%d grammar=%s\n", r.RunToken, r.Seed, r.Steps, shortHash(r.GrammarHash))
	}
	return nil
}

func showRun(formatter *OutputFormatter, cmd *cobra.Command, st *store.Store, token string) error {
	run, err := st.ReadRun(cmd.Context(), token)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			return NewExitError(ExitCommandError, fmt.Sprintf("run %q not found", token))
		}
		return WrapExitError(ExitCommandError, "cannot read run", err)
	}

	samples, err := st.ReadSamples(cmd.Context(), token)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot read samples", err)
	}
	freq, err := st.TreeFrequencies(cmd.Context(), token)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot read tree frequencies", err)
	}

	detail := runDetail(run)
	detail.Samples = len(samples)
	for _, s := range samples {
		if s.Accepted {
			detail.Accepted++
		}
	}
	if len(samples) > 0 {
		detail.FinalTree = samples[len(samples)-1].Tree
	}
	detail.TreeFrequency = freq

	if formatter.Format == "json" {
		return formatter.Success(detail)
	}

	fmt.Fprintf(formatter.Writer, "run:      %s\n", detail.RunToken)
	fmt.Fprintf(formatter.Writer, "created:  %s\n", detail.CreatedAt)
	fmt.Fprintf(formatter.Writer, "grammar:  %s\n", detail.GrammarHash)
	fmt.Fprintf(formatter.Writer, "top rule: %s\n", detail.TopRule)
	fmt.Fprintf(formatter.Writer, "seed:     %d\n", detail.Seed)
	fmt.Fprintf(formatter.Writer, "samples:  %d (%d accepted)\n", detail.Samples, detail.Accepted)
	if detail.FinalTree != "" {
		fmt.Fprintf(formatter.Writer, "final:    %s\n", detail.FinalTree)
	}
	if len(freq) > 0 {
		fmt.Fprintln(formatter.Writer, "trees:")
		for _, h := range sortedByCount(freq) {
			fmt.Fprintf(formatter.Writer, "  %s  ×%d\n", shortHash(h), freq[h])
		}
	}
	return nil
}

func runDetail(r store.Run) RunDetail {
	return RunDetail{
		RunToken:    r.RunToken,
		GrammarHash: r.GrammarHash,
		TopRule:     r.TopRule,
		Seed:        r.Seed,
		Steps:       r.Steps,
		CreatedAt:   r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// sortedByCount orders hashes by descending frequency, ties by hash
// so output is stable.
func sortedByCount(freq map[string]int) []string {
	hashes := make([]string, 0, len(freq))
	for h := range freq {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool {
		if freq[hashes[i]] != freq[hashes[j]] {
			return freq[hashes[i]] > freq[hashes[j]]
		}
		return hashes[i] < hashes[j]
	})
	return hashes
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
