package move

import (
	"fmt"
	"strconv"

	"github.com/roach88/normjump/internal/gen"
	"github.com/roach88/normjump/internal/grammar"
	"github.com/roach88/normjump/internal/norm"
	"github.com/roach88/normjump/internal/prior"
)

// ApplyMove grafts a proposed subtree into the current tree trace and
// returns the new trace, the reverse proposal's choice set, and the
// log weight (log joint-probability ratio of the new trace over the
// old, restricted to the changed region).
//
// The reverse choice set reuses the forward selection draws verbatim
// (the picked position is identical in both directions) and replaces
// the regrowth draws with the choices the graft displaced: replaying
// them regenerates the pre-move subtree exactly, making the move its
// own inverse.
//
// A proposal whose subtree is inadmissible at the picked position
// (its node type falls outside the support of the rule in force
// there) yields a nil trace and a -Inf weight. Chain drivers treat
// that as a rejection.
func ApplyMove(current *gen.Trace[norm.Node], cfg *grammar.Config, forwardChoices *gen.ChoiceMap, retval Retval) (*gen.Trace[norm.Node], *gen.ChoiceMap, float64, error) {
	regrow := forwardChoices.Submap(ScopeRegrow)
	if regrow == nil {
		return nil, nil, 0, fmt.Errorf("apply move: proposal carries no regrowth draws")
	}

	// Edit set: the regrowth draws, rescoped under the tree root.
	edits := gen.NewChoiceMap()
	edits.SetSubmap(prior.ScopeTree, regrow)

	// The graft is a fully forced re-execution: outside the region the
	// old choices constrain every draw, inside it the edit set does,
	// so no source is needed and any uncovered address is an error.
	inRegion := func(key string) bool {
		idx, err := strconv.Atoi(key)
		return err == nil && norm.InSubtree(idx, retval.PickedIdx)
	}
	newTrace, logWeight, discarded, err := gen.Update(current, prior.Process(cfg), nil, prior.ScopeTree, inRegion, edits)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("apply move: %w", err)
	}
	if newTrace == nil {
		return nil, nil, logWeight, nil
	}

	reverse := gen.NewChoiceMap()
	if sel := forwardChoices.Submap(ScopeSelect); sel != nil {
		reverse.SetSubmap(ScopeSelect, sel)
	}
	reverse.SetSubmap(ScopeRegrow, discarded)

	return newTrace, reverse, logWeight, nil
}

// Step proposes and applies a move in one call, as chain drivers
// consume it. A nil new trace with a -Inf weight means the proposal
// was inadmissible and the step must be rejected.
func Step(current *gen.Trace[norm.Node], cfg *grammar.Config, src gen.Source) (*Proposal, *gen.Trace[norm.Node], *gen.ChoiceMap, float64, error) {
	proposal, err := ProposeSubtreeReplace(current.Ret, cfg, src)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	newTrace, reverse, logWeight, err := ApplyMove(current, cfg, proposal.Choices, proposal.Retval)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	return proposal, newTrace, reverse, logWeight, nil
}

// ExtractSubtree replays the regrowth draws of a choice set at the
// given index and returns the subtree they encode. Used to build the
// Retval of a reverse move from its choice set.
func ExtractSubtree(choices *gen.ChoiceMap, cfg *grammar.Config, tree norm.Node, pickedIdx int) (norm.Node, error) {
	regrow := choices.Submap(ScopeRegrow)
	if regrow == nil {
		return nil, fmt.Errorf("extract subtree: choice set carries no regrowth draws")
	}

	picked, ok := norm.At(tree, pickedIdx)
	if !ok {
		return nil, fmt.Errorf("extract subtree: index %d not in tree", pickedIdx)
	}
	rule := cfg.TopRule()
	if norm.IsLeaf(picked) {
		var haveRule bool
		rule, haveRule = cfg.Registry().RegrowthRule(picked.TypeName())
		if !haveRule {
			return nil, &grammar.ConfigError{
				Code:     grammar.ErrCodeMissingRegrowthRule,
				Message:  "picked leaf has no regrowth rule",
				NodeType: picked.TypeName(),
			}
		}
	}

	scoped := gen.NewChoiceMap()
	scoped.SetSubmap(ScopeRegrow, regrow)
	proc := gen.Process[norm.Node](func(r *gen.Run) (norm.Node, error) {
		return prior.Generate(r, cfg, ScopeRegrow, pickedIdx, rule)
	})
	tr, err := gen.Replay(proc, scoped)
	if err != nil {
		return nil, fmt.Errorf("extract subtree: %w", err)
	}
	return tr.Ret, nil
}
