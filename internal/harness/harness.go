package harness

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/roach88/normjump/internal/apply"
	"github.com/roach88/normjump/internal/chain"
	"github.com/roach88/normjump/internal/grammar"
	"github.com/roach88/normjump/internal/norm"
)

// Result captures a scenario run for assertion checking.
type Result struct {
	RunToken       string
	Samples        []chain.Sample
	Final          norm.Node
	AcceptanceRate float64
	Zones          []string
}

// Run executes a scenario: load the grammar, run a seeded chain over
// the observations, and return the outcome. Assertions are checked
// separately via Check so callers can inspect failing results.
func Run(scenario *Scenario) (*Result, error) {
	cfg := grammar.Default()
	if scenario.Grammar != "" {
		loaded, err := grammar.LoadFile(scenario.Grammar)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		cfg = loaded
	}

	zones := apply.DefaultZones
	if len(scenario.Zones) > 0 {
		zones = scenario.Zones
	}

	rng := rand.New(rand.NewSource(scenario.Seed))
	c, err := chain.New(cfg, scenario.Observations, rng, chain.NewFixedGenerator(scenario.Name), chain.WithZones(zones))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	run, err := c.Run(context.Background(), scenario.Steps, scenario.Seed)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	return &Result{
		RunToken:       run.RunToken,
		Samples:        run.Samples,
		Final:          c.Current(),
		AcceptanceRate: run.AcceptanceRate(),
		Zones:          zones,
	}, nil
}

// Check evaluates every assertion against a result, returning the
// first failure.
func Check(scenario *Scenario, result *Result) error {
	for i, a := range scenario.Assertions {
		if err := checkAssertion(&a, result); err != nil {
			return fmt.Errorf("scenario %s: assertions[%d] (%s): %w", scenario.Name, i, a.Type, err)
		}
	}
	return nil
}

func checkAssertion(a *Assertion, result *Result) error {
	switch a.Type {
	case AssertSampleCount:
		if len(result.Samples) != a.Count {
			return fmt.Errorf("got %d samples, want %d", len(result.Samples), a.Count)
		}
	case AssertAcceptanceBetween:
		if result.AcceptanceRate < a.Min || result.AcceptanceRate > a.Max {
			return fmt.Errorf("acceptance rate %.3f outside [%.3f, %.3f]", result.AcceptanceRate, a.Min, a.Max)
		}
	case AssertFinalAllows:
		zoneIdx := -1
		for i, z := range result.Zones {
			if z == a.Zone {
				zoneIdx = i
				break
			}
		}
		if zoneIdx < 0 {
			return fmt.Errorf("zone %q not in layout %v", a.Zone, result.Zones)
		}
		dist := apply.ZoneDistribution(result.Final, a.Colour, result.Zones)
		if dist[zoneIdx] <= 0 {
			return fmt.Errorf("final tree %s forbids colour %q in zone %q", norm.Render(result.Final), a.Colour, a.Zone)
		}
	case AssertFinalTree:
		if got := norm.Render(result.Final); got != a.Render {
			return fmt.Errorf("final tree %s, want %s", got, a.Render)
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// RunAndCheck runs a scenario and evaluates its assertions.
func RunAndCheck(scenario *Scenario) (*Result, error) {
	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := Check(scenario, result); err != nil {
		return result, err
	}
	return result, nil
}
