package move

import (
	"fmt"

	"github.com/roach88/normjump/internal/gen"
	"github.com/roach88/normjump/internal/grammar"
	"github.com/roach88/normjump/internal/norm"
	"github.com/roach88/normjump/internal/prior"
)

// Choice-map scopes of a proposal's draws.
const (
	ScopeSelect = "select"
	ScopeRegrow = "regrow"
)

// Retval is the proposal's return value: where the replacement
// happens and the subtree proposed for that position.
type Retval struct {
	PickedIdx   int
	PickedDepth int
	Subtree     norm.Node
}

// Proposal bundles a subtree-replace proposal: the picked node, the
// regrown subtree, and all recorded draws (selection under "select",
// regrowth under "regrow").
type Proposal struct {
	Picked  prior.Selection
	Retval  Retval
	Choices *gen.ChoiceMap
}

// process builds the proposal as a generative process: select a node
// uniformly, then regrow at its position. A picked leaf regrows under
// its registered regrowth rule; a picked internal node regrows its
// whole subtree under the grammar's top rule.
func process(tree norm.Node, cfg *grammar.Config) gen.Process[Retval] {
	return func(r *gen.Run) (Retval, error) {
		sel, err := prior.SelectRandomNode(r, ScopeSelect, tree, 1, 1, false, false)
		if err != nil {
			return Retval{}, err
		}

		rule := cfg.TopRule()
		if norm.IsLeaf(sel.Node) {
			var ok bool
			rule, ok = cfg.Registry().RegrowthRule(sel.Node.TypeName())
			if !ok {
				return Retval{}, &grammar.ConfigError{
					Code:     grammar.ErrCodeMissingRegrowthRule,
					Message:  "picked leaf has no regrowth rule",
					NodeType: sel.Node.TypeName(),
				}
			}
		}

		subtree, err := prior.Generate(r, cfg, ScopeRegrow, sel.Idx, rule)
		if err != nil {
			return Retval{}, err
		}
		return Retval{PickedIdx: sel.Idx, PickedDepth: sel.Depth, Subtree: subtree}, nil
	}
}

// ProposeSubtreeReplace draws a subtree-replace proposal for the
// given tree. The proposal's draws consist of exactly the selection
// draws and the regrowth draws rooted at the picked index, disjoint
// from the tree trace's draws at other addresses.
func ProposeSubtreeReplace(tree norm.Node, cfg *grammar.Config, src gen.Source) (*Proposal, error) {
	tr, err := gen.Simulate(process(tree, cfg), src)
	if err != nil {
		return nil, fmt.Errorf("propose subtree replace: %w", err)
	}

	picked, ok := norm.At(tree, tr.Ret.PickedIdx)
	if !ok {
		return nil, fmt.Errorf("propose subtree replace: picked index %d not in tree", tr.Ret.PickedIdx)
	}
	return &Proposal{
		Picked:  prior.Selection{Node: picked, Idx: tr.Ret.PickedIdx, Depth: tr.Ret.PickedDepth},
		Retval:  tr.Ret,
		Choices: tr.Choices,
	}, nil
}
