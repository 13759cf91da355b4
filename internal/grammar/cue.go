package grammar

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CUEError reports a problem compiling a CUE grammar file, with the
// source position when available.
type CUEError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CUEError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Field, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// LoadCUE reads and validates a CUE grammar file against the default
// registry. The file must define a top-level "grammar" struct:
//
//	grammar: {
//		top_rule: "NORM"
//		rules: { NORM: { Norm: ["NORMTYPE"] } }
//		node_type_probabilities: { NORM: { NoNorm: 0.5, Norm: 0.5 } }
//		terminal_value_probabilities: { NoNorm: { "true": 1.0 } }
//	}
func LoadCUE(path string) (*Config, error) {
	return LoadCUEWithRegistry(path, DefaultRegistry())
}

// LoadCUEWithRegistry reads and validates a CUE grammar file against
// a caller-supplied registry.
func LoadCUEWithRegistry(path string, registry *Registry) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read grammar file: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	g := v.LookupPath(cue.ParsePath("grammar"))
	if !g.Exists() {
		return nil, &CUEError{Field: "grammar", Message: "top-level grammar struct is required", Pos: v.Pos()}
	}
	return CompileCUE(g, registry)
}

// CompileCUE parses a CUE value holding the grammar struct into a
// validated Config. Uses the CUE SDK's Go API directly.
func CompileCUE(v cue.Value, registry *Registry) (*Config, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	topVal := v.LookupPath(cue.ParsePath("top_rule"))
	if !topVal.Exists() {
		return nil, &CUEError{Field: "top_rule", Message: "top_rule is required", Pos: v.Pos()}
	}
	topRule, err := topVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}

	rules, err := parseRules(v.LookupPath(cue.ParsePath("rules")))
	if err != nil {
		return nil, err
	}

	nodeTypeProbs, err := parseProbTables(v.LookupPath(cue.ParsePath("node_type_probabilities")), "node_type_probabilities")
	if err != nil {
		return nil, err
	}

	terminalValueProbs, err := parseProbTables(v.LookupPath(cue.ParsePath("terminal_value_probabilities")), "terminal_value_probabilities")
	if err != nil {
		return nil, err
	}

	return New(topRule, rules, nodeTypeProbs, terminalValueProbs, registry)
}

// parseRules decodes rules: rule name -> node type -> child rule list.
func parseRules(v cue.Value) (map[string]map[string][]string, error) {
	if !v.Exists() {
		return nil, &CUEError{Field: "rules", Message: "rules table is required"}
	}
	rules := make(map[string]map[string][]string)

	ruleIter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for ruleIter.Next() {
		ruleName := ruleIter.Label()
		expansions := make(map[string][]string)

		typeIter, err := ruleIter.Value().Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for typeIter.Next() {
			nodeType := typeIter.Label()
			children := []string{}

			listIter, err := typeIter.Value().List()
			if err != nil {
				return nil, &CUEError{
					Field:   fmt.Sprintf("rules.%s.%s", ruleName, nodeType),
					Message: "child rules must be a list of rule names",
					Pos:     typeIter.Value().Pos(),
				}
			}
			for listIter.Next() {
				child, err := listIter.Value().String()
				if err != nil {
					return nil, formatCUEError(err)
				}
				children = append(children, child)
			}
			expansions[nodeType] = children
		}
		rules[ruleName] = expansions
	}
	return rules, nil
}

// parseProbTables decodes a two-level table of probabilities.
func parseProbTables(v cue.Value, field string) (map[string]map[string]float64, error) {
	if !v.Exists() {
		return nil, &CUEError{Field: field, Message: "table is required"}
	}
	tables := make(map[string]map[string]float64)

	outerIter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for outerIter.Next() {
		outerKey := outerIter.Label()
		probs := make(map[string]float64)

		innerIter, err := outerIter.Value().Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for innerIter.Next() {
			innerKey := innerIter.Label()
			p, err := innerIter.Value().Float64()
			if err != nil {
				return nil, &CUEError{
					Field:   fmt.Sprintf("%s.%s.%s", field, outerKey, innerKey),
					Message: "probability must be a number",
					Pos:     innerIter.Value().Pos(),
				}
			}
			probs[innerKey] = p
		}
		tables[outerKey] = probs
	}
	return tables, nil
}

// formatCUEError converts a CUE error into a positioned CUEError.
func formatCUEError(err error) error {
	var pos token.Pos
	if positions := cueerrors.Positions(err); len(positions) > 0 {
		pos = positions[0]
	}
	return &CUEError{Message: cueerrors.Details(err, nil), Pos: pos}
}
