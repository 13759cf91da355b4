package move

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/normjump/internal/gen"
	"github.com/roach88/normjump/internal/grammar"
	"github.com/roach88/normjump/internal/norm"
	"github.com/roach88/normjump/internal/testutil"
)

func TestApplyMove_RoundTrip(t *testing.T) {
	cfg := grammar.Default()
	tr := obligationTrace(t, cfg)

	rootPicks, leafPicks := 0, 0
	for seed := int64(0); seed < 60; seed++ {
		src := testutil.Source(seed)
		proposal, newTr, reverse, logW, err := Step(tr, cfg, src)
		require.NoError(t, err)
		if newTr == nil {
			// Proposal inadmissible at the picked position.
			require.True(t, math.IsInf(logW, -1))
			continue
		}
		if _, isEmpty := proposal.Picked.Node.(*norm.Empty); isEmpty {
			// Implicit leaves carry no generation draws, so grafting
			// over one changes nothing.
			assert.True(t, norm.Equal(tr.Ret, newTr.Ret))
			assert.Zero(t, logW)
			continue
		}

		if proposal.Retval.PickedIdx == 1 {
			rootPicks++
		}
		if norm.IsLeaf(proposal.Picked.Node) {
			leafPicks++
		}

		// The grafted tree carries the proposed subtree at the picked
		// position.
		grafted, ok := norm.At(newTr.Ret, proposal.Retval.PickedIdx)
		require.True(t, ok)
		assert.True(t, norm.Equal(proposal.Retval.Subtree, grafted))

		// Applying the reverse choice set must reconstruct the
		// original trace and negate the log weight.
		back, err := ExtractSubtree(reverse, cfg, newTr.Ret, proposal.Retval.PickedIdx)
		require.NoError(t, err)
		assert.True(t, norm.Equal(proposal.Picked.Node, back),
			"reverse regrowth draws encode the displaced subtree")

		backTr, forward, logW2, err := ApplyMove(newTr, cfg, reverse, Retval{
			PickedIdx:   proposal.Retval.PickedIdx,
			PickedDepth: proposal.Retval.PickedDepth,
			Subtree:     back,
		})
		require.NoError(t, err)
		require.NotNil(t, backTr)

		assert.True(t, norm.Equal(tr.Ret, backTr.Ret), "seed %d: round trip must restore the tree", seed)
		assert.True(t, tr.Choices.Equal(backTr.Choices))
		assert.InDelta(t, -logW, logW2, 1e-12)

		// The second reversal's choice set is the forward proposal
		// again, up to the draws it displaced.
		assert.True(t, forward.Submap(ScopeRegrow).Equal(proposal.Choices.Submap(ScopeRegrow)))
	}
	require.Greater(t, rootPicks, 0, "at least one root pick in 60 seeds")
	require.Greater(t, leafPicks, 0, "at least one leaf pick in 60 seeds")
}

func TestApplyMove_InadmissibleSubtreeRejected(t *testing.T) {
	cfg := grammar.Default()
	tr := obligationTrace(t, cfg)

	// A whole-tree regrowth forced at the body position: the Norm
	// wrapper type is not in the body rule's support.
	forward := gen.NewChoiceMap()
	forward.Set(gen.Choice{Value: gen.Label("Norm")}, ScopeRegrow, "2", "type")
	forward.Set(gen.Choice{Value: gen.Label("NoNorm")}, ScopeRegrow, "4", "type")
	forward.Set(gen.Choice{Value: gen.Label("true")}, ScopeRegrow, "4", "value:NoNorm")

	subtree := norm.NewNorm(norm.NewNoNorm("true"), norm.NewEmpty())
	newTr, reverse, logW, err := ApplyMove(tr, cfg, forward, Retval{PickedIdx: 2, PickedDepth: 2, Subtree: subtree})
	require.NoError(t, err)
	assert.Nil(t, newTr)
	assert.Nil(t, reverse)
	assert.True(t, math.IsInf(logW, -1))
}

func TestApplyMove_LeafValueChangeWeight(t *testing.T) {
	cfg := grammar.Default()
	tr := obligationTrace(t, cfg)

	// Replace Zone("2") with Zone("3") at index 5. Both values carry
	// probability 1/3, so the move is weight-neutral.
	forward := gen.NewChoiceMap()
	forward.Set(gen.Choice{Value: gen.Label("Zone")}, ScopeRegrow, "5", "type")
	forward.Set(gen.Choice{Value: gen.Label("3")}, ScopeRegrow, "5", "value:Zone")

	newTr, reverse, logW, err := ApplyMove(tr, cfg, forward, Retval{PickedIdx: 5, PickedDepth: 3, Subtree: norm.NewZone("3")})
	require.NoError(t, err)
	require.NotNil(t, newTr)

	assert.Equal(t, `Norm(Obligation(Colour("red"), Zone("3")))`, norm.Render(newTr.Ret))
	assert.InDelta(t, 0, logW, 1e-12)

	// The displaced draws name the old zone.
	c, ok := reverse.Get(ScopeRegrow, "5", "value:Zone")
	require.True(t, ok)
	assert.Equal(t, gen.Label("2"), c.Value)
}

func TestApplyMove_MissingRegrowthDraws(t *testing.T) {
	cfg := grammar.Default()
	tr := obligationTrace(t, cfg)

	_, _, _, err := ApplyMove(tr, cfg, gen.NewChoiceMap(), Retval{PickedIdx: 5, PickedDepth: 3, Subtree: norm.NewZone("3")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no regrowth draws")
}
