package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/normjump/internal/apply"
)

// Scenario defines one conformance run: a grammar, a seeded chain,
// observations to condition on, and assertions over the outcome.
type Scenario struct {
	// Name uniquely identifies this scenario. It doubles as the run
	// token, so persisted scenario runs are traceable by name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Grammar is an optional path to a grammar file (.yaml or .cue),
	// resolved relative to the scenario file. Empty means the stock
	// grammar.
	Grammar string `yaml:"grammar,omitempty"`

	// Seed drives every random draw of the run.
	Seed int64 `yaml:"seed"`

	// Steps is the number of chain steps to take.
	Steps int `yaml:"steps"`

	// Zones overrides the zone layout. Empty means the default
	// three-zone layout.
	Zones []string `yaml:"zones,omitempty"`

	// Observations condition the chain's likelihood.
	Observations []apply.Observation `yaml:"observations,omitempty"`

	// Assertions validate the sample stream and final tree.
	// Supported types: sample_count, acceptance_between, final_allows,
	// final_tree.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one aspect of a scenario run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "sample_count": the run produced exactly Count samples
	// - "acceptance_between": acceptance rate lies in [Min, Max]
	// - "final_allows": the final tree gives Colour a positive
	//   probability of ending in Zone
	// - "final_tree": the final tree renders exactly as Render
	Type string `yaml:"type"`

	// Count is the expected sample count (sample_count).
	Count int `yaml:"count,omitempty"`

	// Min and Max bound the acceptance rate (acceptance_between).
	Min float64 `yaml:"min,omitempty"`
	Max float64 `yaml:"max,omitempty"`

	// Colour and Zone name the observation cell (final_allows).
	Colour string `yaml:"colour,omitempty"`
	Zone   string `yaml:"zone,omitempty"`

	// Render is the expected single-line rendering (final_tree).
	Render string `yaml:"render,omitempty"`
}

// Assertion type constants.
const (
	AssertSampleCount       = "sample_count"
	AssertAcceptanceBetween = "acceptance_between"
	AssertFinalAllows       = "final_allows"
	AssertFinalTree         = "final_tree"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields
// are rejected so typos fail loudly, and the grammar path is resolved
// relative to the scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Grammar != "" && !filepath.IsAbs(scenario.Grammar) {
		scenario.Grammar = filepath.Join(filepath.Dir(path), scenario.Grammar)
	}
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML without path resolution or file
// existence checks. Used by LoadScenario and by tests.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Steps <= 0 {
		return fmt.Errorf("steps must be positive")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.Grammar != "" {
		if _, err := os.Stat(s.Grammar); os.IsNotExist(err) {
			return fmt.Errorf("grammar file not found: %s", s.Grammar)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertSampleCount:
		if a.Count <= 0 {
			return fmt.Errorf("assertions[%d]: count must be positive for sample_count", index)
		}
	case AssertAcceptanceBetween:
		if a.Min < 0 || a.Max > 1 || a.Min > a.Max {
			return fmt.Errorf("assertions[%d]: want 0 <= min <= max <= 1 for acceptance_between", index)
		}
	case AssertFinalAllows:
		if a.Colour == "" || a.Zone == "" {
			return fmt.Errorf("assertions[%d]: colour and zone are required for final_allows", index)
		}
	case AssertFinalTree:
		if a.Render == "" {
			return fmt.Errorf("assertions[%d]: render is required for final_tree", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
