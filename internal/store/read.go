package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Run is one persisted chain run.
type Run struct {
	RunToken    string
	GrammarHash string
	TopRule     string
	Seed        int64
	Steps       int
	CreatedAt   time.Time
}

// Sample is one persisted chain step. Tree holds the canonical JSON
// rendering of the tree the chain held after the step.
type Sample struct {
	RunToken      string
	Step          int
	TreeHash      string
	Tree          string
	LogWeight     float64
	LogLikelihood float64
	Accepted      bool
}

// ErrRunNotFound is returned when a run token has no record.
var ErrRunNotFound = errors.New("run not found")

// ReadRun returns the run record for a token.
func (s *Store) ReadRun(ctx context.Context, runToken string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_token, grammar_hash, top_rule, seed, steps, created_at
		FROM runs
		WHERE run_token = ?
	`, runToken)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %q: %w", runToken, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %q: %w", runToken, err)
	}
	return run, nil
}

// ListRuns returns all runs. UUIDv7 run tokens sort by creation time,
// so token order is chronological.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_token, grammar_hash, top_rule, seed, steps, created_at
		FROM runs
		ORDER BY run_token COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// ReadSamples returns a run's samples in step order.
//
// Returns an empty slice (not nil) if the run has no samples.
func (s *Store) ReadSamples(ctx context.Context, runToken string) ([]Sample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_token, step, tree_hash, tree, log_weight, log_likelihood, accepted
		FROM samples
		WHERE run_token = ?
		ORDER BY step ASC
	`, runToken)
	if err != nil {
		return nil, fmt.Errorf("read samples: %w", err)
	}
	defer rows.Close()

	samples := []Sample{}
	for rows.Next() {
		var sm Sample
		if err := rows.Scan(&sm.RunToken, &sm.Step, &sm.TreeHash, &sm.Tree, &sm.LogWeight, &sm.LogLikelihood, &sm.Accepted); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		samples = append(samples, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read samples: %w", err)
	}
	return samples, nil
}

// TreeFrequencies returns, for one run, how often each distinct tree
// hash was held, most frequent first.
func (s *Store) TreeFrequencies(ctx context.Context, runToken string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tree_hash, COUNT(*)
		FROM samples
		WHERE run_token = ?
		GROUP BY tree_hash
	`, runToken)
	if err != nil {
		return nil, fmt.Errorf("tree frequencies: %w", err)
	}
	defer rows.Close()

	freq := map[string]int{}
	for rows.Next() {
		var hash string
		var count int
		if err := rows.Scan(&hash, &count); err != nil {
			return nil, fmt.Errorf("scan frequency: %w", err)
		}
		freq[hash] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tree frequencies: %w", err)
	}
	return freq, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var createdAt string
	if err := row.Scan(&run.RunToken, &run.GrammarHash, &run.TopRule, &run.Seed, &run.Steps, &createdAt); err != nil {
		return Run{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	run.CreatedAt = ts
	return run, nil
}
