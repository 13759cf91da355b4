package prior

import (
	"strconv"

	"github.com/roach88/normjump/internal/gen"
	"github.com/roach88/normjump/internal/grammar"
	"github.com/roach88/normjump/internal/norm"
)

// ScopeTree is the choice-map scope under which whole-tree generation
// draws are recorded.
const ScopeTree = "tree"

// Generate recursively builds a node at heap index idx by expanding
// ruleName. Draws are recorded under scope/idx: the node-type draw as
// "type", a terminal's value draw as "value:<nodeType>". The type
// label carries no rule name so that a recorded draw can be forced
// into a regrowth under a different rule whose support shares the
// label.
//
// A rule expanding to more than two child rules or a terminal type
// without a value distribution is a fatal configuration error. Both
// are also rejected at grammar load, so hitting them here means the
// config bypassed validation.
func Generate(r *gen.Run, cfg *grammar.Config, scope string, idx int, ruleName string) (norm.Node, error) {
	names, probs, ok := cfg.NodeTypes(ruleName)
	if !ok {
		return nil, &grammar.ConfigError{
			Code:    grammar.ErrCodeUnknownRule,
			Message: "rule has no node type distribution",
			Rule:    ruleName,
		}
	}

	idxKey := strconv.Itoa(idx)
	typeIdx, err := r.Categorical(names, probs, scope, idxKey, "type")
	if err != nil {
		return nil, err
	}
	nodeType := names[typeIdx]

	children, ok := cfg.ChildRules(ruleName, nodeType)
	if !ok {
		return nil, &grammar.ConfigError{
			Code:     grammar.ErrCodeUnknownRule,
			Message:  "node type has no expansion",
			Rule:     ruleName,
			NodeType: nodeType,
		}
	}

	if len(children) == 0 {
		return generateLeaf(r, cfg, scope, idxKey, nodeType)
	}
	if len(children) > 2 {
		return nil, &grammar.ConfigError{
			Code:     grammar.ErrCodeInvalidArity,
			Message:  "internal nodes support at most two children",
			Rule:     ruleName,
			NodeType: nodeType,
		}
	}

	leftIdx, rightIdx := norm.ChildIndices(idx)
	left, err := Generate(r, cfg, scope, leftIdx, children[0])
	if err != nil {
		return nil, err
	}
	var right norm.Node = norm.NewEmpty()
	if len(children) == 2 {
		right, err = Generate(r, cfg, scope, rightIdx, children[1])
		if err != nil {
			return nil, err
		}
	}

	ctor, ok := cfg.Registry().Branch(nodeType)
	if !ok {
		return nil, &grammar.ConfigError{
			Code:     grammar.ErrCodeUnknownNodeType,
			Message:  "no branch constructor registered",
			NodeType: nodeType,
		}
	}
	return ctor(left, right), nil
}

func generateLeaf(r *gen.Run, cfg *grammar.Config, scope, idxKey, nodeType string) (norm.Node, error) {
	labels, probs, ok := cfg.TerminalValues(nodeType)
	if !ok {
		return nil, &grammar.ConfigError{
			Code:     grammar.ErrCodeNoDistribution,
			Message:  "no distribution found for terminal parameter",
			NodeType: nodeType,
		}
	}
	valueIdx, err := r.Categorical(labels, probs, scope, idxKey, "value:"+nodeType)
	if err != nil {
		return nil, err
	}
	ctor, ok := cfg.Registry().Leaf(nodeType)
	if !ok {
		return nil, &grammar.ConfigError{
			Code:     grammar.ErrCodeUnknownNodeType,
			Message:  "no leaf constructor registered",
			NodeType: nodeType,
		}
	}
	return ctor(labels[valueIdx]), nil
}

// Process wraps whole-tree generation under cfg's top rule as a
// generative process, recording draws under the "tree" scope with the
// root at heap index 1.
func Process(cfg *grammar.Config) gen.Process[norm.Node] {
	return func(r *gen.Run) (norm.Node, error) {
		return Generate(r, cfg, ScopeTree, 1, cfg.TopRule())
	}
}
