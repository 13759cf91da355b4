package grammar

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlGrammar mirrors the on-disk YAML grammar layout.
type yamlGrammar struct {
	TopRule            string                         `yaml:"top_rule"`
	Rules              map[string]map[string][]string `yaml:"rules"`
	NodeTypeProbs      map[string]map[string]float64  `yaml:"node_type_probabilities"`
	TerminalValueProbs map[string]map[string]float64  `yaml:"terminal_value_probabilities"`
}

// LoadYAML reads and validates a YAML grammar file against the
// default registry.
func LoadYAML(path string) (*Config, error) {
	return LoadYAMLWithRegistry(path, DefaultRegistry())
}

// LoadYAMLWithRegistry reads and validates a YAML grammar file
// against a caller-supplied registry.
func LoadYAMLWithRegistry(path string, registry *Registry) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read grammar file: %w", err)
	}
	return ParseYAML(data, registry)
}

// ParseYAML parses YAML grammar bytes. Unknown fields are rejected to
// catch typos like "node_type_probs:".
func ParseYAML(data []byte, registry *Registry) (*Config, error) {
	var raw yamlGrammar
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if raw.TopRule == "" {
		return nil, &ConfigError{Code: ErrCodeUnknownRule, Message: "top_rule is required"}
	}
	if len(raw.Rules) == 0 {
		return nil, &ConfigError{Code: ErrCodeUnknownRule, Message: "rules table is empty"}
	}

	// YAML omits child lists for terminals; normalize nil to empty.
	for _, expansions := range raw.Rules {
		for nodeType, children := range expansions {
			if children == nil {
				expansions[nodeType] = []string{}
			}
		}
	}

	return New(raw.TopRule, raw.Rules, raw.NodeTypeProbs, raw.TerminalValueProbs, registry)
}
