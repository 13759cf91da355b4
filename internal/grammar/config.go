package grammar

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// probSumTolerance bounds the acceptable drift of a probability table
// away from 1.
const probSumTolerance = 1e-9

// Config is a validated, immutable grammar configuration.
//
// Categorical draws need a stable ordering over map keys, so the
// constructor precomputes, per rule and per leaf type, a sorted name
// slice with an aligned probability slice. Draw indices always refer
// to these orderings.
type Config struct {
	topRule            string
	rules              map[string]map[string][]string
	nodeTypeProbs      map[string]map[string]float64
	terminalValueProbs map[string]map[string]float64
	registry           *Registry

	typeOrder  map[string][]string  // rule -> sorted node-type names
	typeProbs  map[string][]float64 // rule -> probs aligned with typeOrder
	valueOrder map[string][]string  // leaf type -> sorted value labels
	valueProbs map[string][]float64 // leaf type -> probs aligned with valueOrder

	hash string
}

// New validates the three tables against the registry and returns an
// immutable Config. The input maps are not copied; callers hand over
// ownership and must not mutate them afterwards.
func New(topRule string, rules map[string]map[string][]string, nodeTypeProbs map[string]map[string]float64, terminalValueProbs map[string]map[string]float64, registry *Registry) (*Config, error) {
	c := &Config{
		topRule:            topRule,
		rules:              rules,
		nodeTypeProbs:      nodeTypeProbs,
		terminalValueProbs: terminalValueProbs,
		registry:           registry,
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	c.finalize()
	if err := c.computeHash(); err != nil {
		return nil, err
	}
	return c, nil
}

// validate performs all load-time checks so that generation can fail
// only on genuinely unforeseeable conditions, never on a name lookup.
func (c *Config) validate() error {
	if _, ok := c.rules[c.topRule]; !ok {
		return &ConfigError{Code: ErrCodeUnknownRule, Message: fmt.Sprintf("top rule %q is not defined", c.topRule), Rule: c.topRule}
	}

	for rule, expansions := range c.rules {
		probs, ok := c.nodeTypeProbs[rule]
		if !ok {
			return &ConfigError{Code: ErrCodeNoDistribution, Message: "no node type distribution for rule", Rule: rule}
		}
		if err := checkSum(probs); err != nil {
			return &ConfigError{Code: ErrCodeBadProbabilitySum, Message: err.Error(), Rule: rule}
		}

		for nodeType, children := range expansions {
			if _, ok := probs[nodeType]; !ok {
				return &ConfigError{Code: ErrCodeNoDistribution, Message: "node type has no probability entry", Rule: rule, NodeType: nodeType}
			}
			if len(children) > 2 {
				return &ConfigError{Code: ErrCodeInvalidArity, Message: "internal nodes support at most two children", Rule: rule, NodeType: nodeType}
			}
			for _, child := range children {
				if _, ok := c.rules[child]; !ok {
					return &ConfigError{Code: ErrCodeUnknownRule, Message: fmt.Sprintf("child rule %q is not defined", child), Rule: rule, NodeType: nodeType}
				}
			}

			if len(children) == 0 {
				// Terminal node type: needs a leaf constructor, a value
				// distribution, and a registered regrowth rule.
				if _, ok := c.registry.Leaf(nodeType); !ok {
					return &ConfigError{Code: ErrCodeUnknownNodeType, Message: "no leaf constructor registered", Rule: rule, NodeType: nodeType}
				}
				values, ok := c.terminalValueProbs[nodeType]
				if !ok {
					return &ConfigError{Code: ErrCodeNoDistribution, Message: "no distribution found for terminal parameter", NodeType: nodeType}
				}
				if err := checkSum(values); err != nil {
					return &ConfigError{Code: ErrCodeBadProbabilitySum, Message: err.Error(), NodeType: nodeType}
				}
				regrow, ok := c.registry.RegrowthRule(nodeType)
				if !ok {
					return &ConfigError{Code: ErrCodeMissingRegrowthRule, Message: "no regrowth rule registered for leaf type", NodeType: nodeType}
				}
				if _, ok := c.rules[regrow]; !ok {
					return &ConfigError{Code: ErrCodeMissingRegrowthRule, Message: fmt.Sprintf("regrowth rule %q is not defined", regrow), NodeType: nodeType}
				}
			} else {
				if _, ok := c.registry.Branch(nodeType); !ok {
					return &ConfigError{Code: ErrCodeUnknownNodeType, Message: "no branch constructor registered", Rule: rule, NodeType: nodeType}
				}
			}
		}

		// Every node type with probability mass must expand somewhere.
		for nodeType := range probs {
			if _, ok := expansions[nodeType]; !ok {
				return &ConfigError{Code: ErrCodeUnknownNodeType, Message: "probability entry has no expansion", Rule: rule, NodeType: nodeType}
			}
		}
	}
	return nil
}

func checkSum(probs map[string]float64) error {
	sum := 0.0
	for name, p := range probs {
		if p < 0 || p > 1 {
			return fmt.Errorf("probability for %q outside [0, 1]: %v", name, p)
		}
		sum += p
	}
	if math.Abs(sum-1) > probSumTolerance {
		return fmt.Errorf("probabilities sum to %v, want 1", sum)
	}
	return nil
}

// finalize precomputes the sorted categorical orderings.
func (c *Config) finalize() {
	c.typeOrder = make(map[string][]string, len(c.nodeTypeProbs))
	c.typeProbs = make(map[string][]float64, len(c.nodeTypeProbs))
	for rule, probs := range c.nodeTypeProbs {
		names := sortedKeys(probs)
		aligned := make([]float64, len(names))
		for i, name := range names {
			aligned[i] = probs[name]
		}
		c.typeOrder[rule] = names
		c.typeProbs[rule] = aligned
	}

	c.valueOrder = make(map[string][]string, len(c.terminalValueProbs))
	c.valueProbs = make(map[string][]float64, len(c.terminalValueProbs))
	for leafType, probs := range c.terminalValueProbs {
		labels := sortedKeys(probs)
		aligned := make([]float64, len(labels))
		for i, label := range labels {
			aligned[i] = probs[label]
		}
		c.valueOrder[leafType] = labels
		c.valueProbs[leafType] = aligned
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TopRule returns the rule the whole tree generates under.
func (c *Config) TopRule() string { return c.topRule }

// Registry returns the constructor registry.
func (c *Config) Registry() *Registry { return c.registry }

// NodeTypes returns the node-type names for a rule in categorical
// draw order, with aligned probabilities.
func (c *Config) NodeTypes(rule string) (names []string, probs []float64, ok bool) {
	names, ok = c.typeOrder[rule]
	if !ok {
		return nil, nil, false
	}
	return names, c.typeProbs[rule], true
}

// TerminalValues returns a leaf type's value labels in categorical
// draw order, with aligned probabilities.
func (c *Config) TerminalValues(leafType string) (labels []string, probs []float64, ok bool) {
	labels, ok = c.valueOrder[leafType]
	if !ok {
		return nil, nil, false
	}
	return labels, c.valueProbs[leafType], true
}

// ChildRules returns the ordered child rule list for a node type
// under a rule. The list has length 0 (terminal), 1, or 2.
func (c *Config) ChildRules(rule, nodeType string) ([]string, bool) {
	expansions, ok := c.rules[rule]
	if !ok {
		return nil, false
	}
	children, ok := expansions[nodeType]
	return children, ok
}

// DomainGrammar is the domain prefix for grammar identity hashes.
const DomainGrammar = "normjump/grammar/v1"

// Hash returns the content-addressed identity of the grammar tables.
// Stored with chain runs so that samples are traceable to the exact
// grammar that produced them.
func (c *Config) Hash() string { return c.hash }

func (c *Config) computeHash() error {
	// encoding/json marshals map keys in sorted order, which is
	// deterministic for these all-ASCII tables.
	payload := struct {
		TopRule            string                         `json:"top_rule"`
		Rules              map[string]map[string][]string `json:"rules"`
		NodeTypeProbs      map[string]map[string]float64  `json:"node_type_probabilities"`
		TerminalValueProbs map[string]map[string]float64  `json:"terminal_value_probabilities"`
	}{c.topRule, c.rules, c.nodeTypeProbs, c.terminalValueProbs}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("grammar hash: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(DomainGrammar))
	h.Write([]byte{0x00})
	h.Write(data)
	c.hash = hex.EncodeToString(h.Sum(nil))
	return nil
}

// Default returns the stock norms grammar: every tree is a Norm
// wrapper whose body is NoNorm or an Obligation or Prohibition over a
// colour and a zone. The wrapper keeps the root internal, so regrowing
// the root under the top rule regenerates the whole tree, and every
// leaf's regrowth rule produces a node type admissible at the leaf's
// position. Used by tests and as the CLI fallback when no grammar file
// is given.
func Default() *Config {
	cfg, err := New(
		"NORM",
		map[string]map[string][]string{
			"NORM": {
				"Norm": {"NORMTYPE"},
			},
			"NORMTYPE": {
				"NoNorm":      {},
				"Obligation":  {"COLOUR", "ZONE"},
				"Prohibition": {"COLOUR", "ZONE"},
			},
			"NONORM": {"NoNorm": {}},
			"COLOUR": {"Colour": {}},
			"ZONE":   {"Zone": {}},
			"EMPTY":  {"Empty": {}},
		},
		map[string]map[string]float64{
			"NORM":     {"Norm": 1.0},
			"NORMTYPE": {"NoNorm": 0.5, "Obligation": 0.25, "Prohibition": 0.25},
			"NONORM":   {"NoNorm": 1.0},
			"COLOUR":   {"Colour": 1.0},
			"ZONE":     {"Zone": 1.0},
			"EMPTY":    {"Empty": 1.0},
		},
		map[string]map[string]float64{
			"NoNorm": {"true": 1.0},
			"Colour": {"any": 0.25, "blue": 0.25, "green": 0.25, "red": 0.25},
			"Zone":   {"1": 1.0 / 3, "2": 1.0 / 3, "3": 1.0 / 3},
			"Empty":  {"": 1.0},
		},
		DefaultRegistry(),
	)
	if err != nil {
		panic(fmt.Sprintf("grammar: default config invalid: %v", err))
	}
	return cfg
}
