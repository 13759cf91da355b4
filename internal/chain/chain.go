package chain

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/roach88/normjump/internal/apply"
	"github.com/roach88/normjump/internal/gen"
	"github.com/roach88/normjump/internal/grammar"
	"github.com/roach88/normjump/internal/move"
	"github.com/roach88/normjump/internal/norm"
	"github.com/roach88/normjump/internal/prior"
)

// Sample records one chain step: the tree the chain holds after the
// accept/reject decision, the proposal's log weight, and whether the
// proposal was taken.
type Sample struct {
	Step          int
	Tree          norm.Node
	TreeHash      string
	LogWeight     float64
	LogLikelihood float64
	Accepted      bool
}

// RunInfo describes a run for persistence.
type RunInfo struct {
	RunToken    string
	GrammarHash string
	TopRule     string
	Seed        int64
	Steps       int
}

// Recorder persists a run and its samples. Implementations must
// tolerate being called once per step from a single goroutine.
type Recorder interface {
	BeginRun(info RunInfo) error
	WriteSample(runToken string, s Sample) error
}

// Result summarizes a completed run.
type Result struct {
	RunToken string
	Samples  []Sample
	Accepted int
}

// AcceptanceRate returns the fraction of steps whose proposal was
// taken, or 0 for an empty run.
func (r *Result) AcceptanceRate() float64 {
	if len(r.Samples) == 0 {
		return 0
	}
	return float64(r.Accepted) / float64(len(r.Samples))
}

// Chain is a Metropolis-Hastings sampler over norm trees. Each step
// proposes a subtree replacement and accepts it with probability
// exp(logWeight + likelihood delta), so the stationary distribution
// is the grammar prior reweighted by the observations.
//
// Not safe for concurrent use: one chain, one goroutine.
type Chain struct {
	cfg      *grammar.Config
	obs      []apply.Observation
	zones    []string
	rng      *rand.Rand
	src      gen.Source
	tokens   RunTokenGenerator
	recorder Recorder

	runToken string
	current  *gen.Trace[norm.Node]
	logLike  float64
	step     int
	accepted int
}

// Option configures a Chain.
type Option func(*Chain)

// WithZones overrides the zone layout the likelihood scores against.
func WithZones(zones []string) Option {
	return func(c *Chain) { c.zones = zones }
}

// WithRecorder persists the run and every sample as the chain steps.
func WithRecorder(rec Recorder) Option {
	return func(c *Chain) { c.recorder = rec }
}

// New builds a chain, draws its initial tree from the grammar prior,
// and scores it against the observations. The rand source drives both
// the proposals and the accept draws, so a seed fully determines the
// run.
func New(cfg *grammar.Config, obs []apply.Observation, rng *rand.Rand, tokens RunTokenGenerator, opts ...Option) (*Chain, error) {
	c := &Chain{
		cfg:    cfg,
		obs:    obs,
		zones:  apply.DefaultZones,
		rng:    rng,
		src:    gen.NewRandSource(rng),
		tokens: tokens,
	}
	for _, opt := range opts {
		opt(c)
	}

	tr, err := gen.Simulate(prior.Process(cfg), c.src)
	if err != nil {
		return nil, fmt.Errorf("chain init: %w", err)
	}
	ll, err := apply.LogLikelihood(tr.Ret, c.obs, c.zones)
	if err != nil {
		return nil, fmt.Errorf("chain init: %w", err)
	}

	c.runToken = tokens.Generate()
	c.current = tr
	c.logLike = ll
	return c, nil
}

// RunToken returns the token identifying this run.
func (c *Chain) RunToken() string { return c.runToken }

// Current returns the tree the chain holds right now.
func (c *Chain) Current() norm.Node { return c.current.Ret }

// Step advances the chain by one proposal and returns the resulting
// sample. Inadmissible proposals and forbidden-observation trees
// carry a -Inf acceptance term and are always rejected.
func (c *Chain) Step() (Sample, error) {
	c.step++

	_, newTr, _, logW, err := move.Step(c.current, c.cfg, c.src)
	if err != nil {
		return Sample{}, fmt.Errorf("chain step %d: %w", c.step, err)
	}

	accepted := false
	newLL := 0.0
	if newTr != nil {
		newLL, err = apply.LogLikelihood(newTr.Ret, c.obs, c.zones)
		if err != nil {
			return Sample{}, fmt.Errorf("chain step %d: %w", c.step, err)
		}
		logAccept := logW + newLL - c.logLike
		accepted = logAccept >= 0 || math.Log(c.rng.Float64()) < logAccept
	}

	if accepted {
		c.current = newTr
		c.logLike = newLL
		c.accepted++
	}

	hash, err := norm.TreeHash(c.current.Ret)
	if err != nil {
		return Sample{}, fmt.Errorf("chain step %d: %w", c.step, err)
	}
	s := Sample{
		Step:          c.step,
		Tree:          c.current.Ret,
		TreeHash:      hash,
		LogWeight:     logW,
		LogLikelihood: c.logLike,
		Accepted:      accepted,
	}

	slog.Debug("chain step",
		"run", c.runToken,
		"step", c.step,
		"accepted", accepted,
		"log_weight", logW,
		"tree", norm.Render(c.current.Ret))

	if c.recorder != nil {
		if err := c.recorder.WriteSample(c.runToken, s); err != nil {
			return Sample{}, fmt.Errorf("chain step %d: record sample: %w", c.step, err)
		}
	}
	return s, nil
}

// Run advances the chain for the given number of steps, honoring
// context cancellation between steps.
func (c *Chain) Run(ctx context.Context, steps int, seed int64) (*Result, error) {
	slog.Info("chain starting",
		"run", c.runToken,
		"steps", steps,
		"grammar", c.cfg.Hash(),
		"observations", len(c.obs))

	if c.recorder != nil {
		info := RunInfo{
			RunToken:    c.runToken,
			GrammarHash: c.cfg.Hash(),
			TopRule:     c.cfg.TopRule(),
			Seed:        seed,
			Steps:       steps,
		}
		if err := c.recorder.BeginRun(info); err != nil {
			return nil, fmt.Errorf("chain run: %w", err)
		}
	}

	result := &Result{RunToken: c.runToken, Samples: make([]Sample, 0, steps)}
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			slog.Info("chain stopping: context cancelled", "run", c.runToken, "step", c.step)
			return result, err
		}
		s, err := c.Step()
		if err != nil {
			return result, err
		}
		result.Samples = append(result.Samples, s)
	}
	result.Accepted = c.accepted

	slog.Info("chain finished",
		"run", c.runToken,
		"steps", steps,
		"accepted", c.accepted,
		"final_tree", norm.Render(c.current.Ret))
	return result, nil
}
