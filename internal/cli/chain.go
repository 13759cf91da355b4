package cli

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/normjump/internal/apply"
	"github.com/roach88/normjump/internal/chain"
	"github.com/roach88/normjump/internal/norm"
	"github.com/roach88/normjump/internal/store"
)

// ChainSummary is the JSON payload for a completed chain run.
type ChainSummary struct {
	RunToken       string  `json:"run_token"`
	Steps          int     `json:"steps"`
	Accepted       int     `json:"accepted"`
	AcceptanceRate float64 `json:"acceptance_rate"`
	FinalTree      string  `json:"final_tree"`
	FinalHash      string  `json:"final_hash"`
}

// NewChainCommand creates the chain command.
func NewChainCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		grammarPath string
		dbPath      string
		token       string
		seed        int64
		steps       int
		obsFlags    []string
		zones       []string
	)

	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Run a sampling chain over norm trees",
		Long: `Run a seeded Metropolis-Hastings chain of subtree-replacement
moves, optionally conditioned on observed task placements.

Observations are given as colour:zone pairs, e.g. --obs red:2. With
--db, the run and every sample are persisted to a SQLite database for
later inspection.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChain(rootOpts, cmd, chainParams{
				grammarPath: grammarPath,
				dbPath:      dbPath,
				token:       token,
				seed:        seed,
				steps:       steps,
				obsFlags:    obsFlags,
				zones:       zones,
			})
		},
	}

	cmd.Flags().StringVarP(&grammarPath, "grammar", "g", "", "grammar file (.yaml or .cue); default built-in")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database to record the run into")
	cmd.Flags().StringVar(&token, "token", "", "run token; default a fresh UUIDv7")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().IntVar(&steps, "steps", 100, "number of chain steps")
	cmd.Flags().StringArrayVar(&obsFlags, "obs", nil, "observation as colour:zone (repeatable)")
	cmd.Flags().StringSliceVar(&zones, "zones", nil, "zone layout; default 1,2,3")

	return cmd
}

type chainParams struct {
	grammarPath string
	dbPath      string
	token       string
	seed        int64
	steps       int
	obsFlags    []string
	zones       []string
}

func runChain(opts *RootOptions, cmd *cobra.Command, p chainParams) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if p.steps < 1 {
		return NewExitError(ExitCommandError, fmt.Sprintf("steps must be positive, got %d", p.steps))
	}

	cfg, err := loadGrammar(p.grammarPath)
	if err != nil {
		return err
	}

	obs, err := parseObservations(p.obsFlags)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid observation", err)
	}

	var chainOpts []chain.Option
	if len(p.zones) > 0 {
		chainOpts = append(chainOpts, chain.WithZones(p.zones))
	}

	var st *store.Store
	if p.dbPath != "" {
		st, err = store.Open(p.dbPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "cannot open database", err)
		}
		defer st.Close()
		chainOpts = append(chainOpts, chain.WithRecorder(st.Recorder(cmd.Context())))
	}

	var tokens chain.RunTokenGenerator = chain.UUIDv7Generator{}
	if p.token != "" {
		tokens = chain.NewFixedGenerator(p.token)
	}

	rng := rand.New(rand.NewSource(p.seed))
	c, err := chain.New(cfg, obs, rng, tokens, chainOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot initialize chain", err)
	}

	formatter.VerboseLog("Run %s: %d steps, seed %d, %d observation(s)", c.RunToken(), p.steps, p.seed, len(obs))

	result, err := c.Run(cmd.Context(), p.steps, p.seed)
	if err != nil {
		return WrapExitError(ExitFailure, "chain run failed", err)
	}

	final := c.Current()
	hash, err := norm.TreeHash(final)
	if err != nil {
		return WrapExitError(ExitFailure, "hashing failed", err)
	}

	summary := ChainSummary{
		RunToken:       result.RunToken,
		Steps:          len(result.Samples),
		Accepted:       result.Accepted,
		AcceptanceRate: result.AcceptanceRate(),
		FinalTree:      norm.Render(final),
		FinalHash:      hash,
	}

	if formatter.Format == "json" {
		return formatter.Success(summary)
	}

	fmt.Fprintf(formatter.Writer, "run:        %s\n", summary.RunToken)
	fmt.Fprintf(formatter.Writer, "steps:      %d\n", summary.Steps)
	fmt.Fprintf(formatter.Writer, "accepted:   %d (%.1f%%)\n", summary.Accepted, summary.AcceptanceRate*100)
	fmt.Fprintf(formatter.Writer, "final tree: %s\n", summary.FinalTree)
	return nil
}

// parseObservations converts colour:zone flag values into observations.
func parseObservations(flags []string) ([]apply.Observation, error) {
	obs := make([]apply.Observation, 0, len(flags))
	for _, f := range flags {
		colour, zone, ok := strings.Cut(f, ":")
		if !ok || colour == "" || zone == "" {
			return nil, fmt.Errorf("observation %q: want colour:zone", f)
		}
		obs = append(obs, apply.Observation{Colour: colour, Zone: zone})
	}
	return obs, nil
}
