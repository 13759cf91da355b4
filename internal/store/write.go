package store

import (
	"context"
	"fmt"

	"github.com/roach88/normjump/internal/chain"
	"github.com/roach88/normjump/internal/norm"
)

// WriteRun inserts a run record. Uses ON CONFLICT DO NOTHING for
// idempotency - re-registering a run token is silently ignored.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (run_token, grammar_hash, top_rule, seed, steps)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_token) DO NOTHING
	`,
		run.RunToken,
		run.GrammarHash,
		run.TopRule,
		run.Seed,
		run.Steps,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	return nil
}

// WriteSample inserts one sample row. Duplicate (run_token, step)
// pairs are silently ignored.
//
// The run referenced by RunToken must exist (foreign key constraint).
func (s *Store) WriteSample(ctx context.Context, sample Sample) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO samples (run_token, step, tree_hash, tree, log_weight, log_likelihood, accepted)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_token, step) DO NOTHING
	`,
		sample.RunToken,
		sample.Step,
		sample.TreeHash,
		sample.Tree,
		sample.LogWeight,
		sample.LogLikelihood,
		sample.Accepted,
	)
	if err != nil {
		return fmt.Errorf("write sample: %w", err)
	}

	return nil
}

// recorder adapts the store to the chain's persistence interface,
// carrying the context the run was started under.
type recorder struct {
	s   *Store
	ctx context.Context
}

// Recorder returns a chain recorder writing through this store.
func (s *Store) Recorder(ctx context.Context) chain.Recorder {
	return &recorder{s: s, ctx: ctx}
}

func (r *recorder) BeginRun(info chain.RunInfo) error {
	return r.s.WriteRun(r.ctx, Run{
		RunToken:    info.RunToken,
		GrammarHash: info.GrammarHash,
		TopRule:     info.TopRule,
		Seed:        info.Seed,
		Steps:       info.Steps,
	})
}

func (r *recorder) WriteSample(runToken string, s chain.Sample) error {
	tree, err := norm.MarshalCanonical(s.Tree)
	if err != nil {
		return fmt.Errorf("write sample: %w", err)
	}
	return r.s.WriteSample(r.ctx, Sample{
		RunToken:      runToken,
		Step:          s.Step,
		TreeHash:      s.TreeHash,
		Tree:          string(tree),
		LogWeight:     s.LogWeight,
		LogLikelihood: s.LogLikelihood,
		Accepted:      s.Accepted,
	})
}
