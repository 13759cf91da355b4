package prior

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/normjump/internal/gen"
	"github.com/roach88/normjump/internal/norm"
	"github.com/roach88/normjump/internal/testutil"
)

func selectProcess(tree norm.Node, leafOnly, excludeRoot bool) gen.Process[Selection] {
	return func(r *gen.Run) (Selection, error) {
		return SelectRandomNode(r, "select", tree, 1, 1, leafOnly, excludeRoot)
	}
}

// =============================================================================
// Uniformity Tests
// =============================================================================

func TestSelect_UniformOverThreeNodes(t *testing.T) {
	tree := norm.NewObligation(norm.NewColour("red"), norm.NewZone("2"))
	require.Equal(t, 3, tree.Size())

	src := testutil.Source(17)
	const iterations = 30000
	counts := map[int]int{}
	for i := 0; i < iterations; i++ {
		tr, err := gen.Simulate(selectProcess(tree, false, false), src)
		require.NoError(t, err)
		counts[tr.Ret.Idx]++
	}

	require.Len(t, counts, 3, "only indices 1, 2, 3 are selectable")
	for _, idx := range []int{1, 2, 3} {
		freq := float64(counts[idx]) / iterations
		assert.InDelta(t, 1.0/3, freq, 0.015, "index %d frequency %v", idx, freq)
	}
}

func TestSelect_UniformOverNestedTree(t *testing.T) {
	// Norm(Obligation(Colour, Zone), Empty): size 5, indices 1..5.
	tree := norm.NewNorm(norm.NewObligation(norm.NewColour("red"), norm.NewZone("2")), norm.NewEmpty())
	require.Equal(t, 5, tree.Size())

	src := testutil.Source(19)
	const iterations = 50000
	counts := map[int]int{}
	for i := 0; i < iterations; i++ {
		tr, err := gen.Simulate(selectProcess(tree, false, false), src)
		require.NoError(t, err)
		counts[tr.Ret.Idx]++
	}

	require.Len(t, counts, 5)
	for _, idx := range []int{1, 2, 3, 4, 5} {
		freq := float64(counts[idx]) / iterations
		assert.InDelta(t, 1.0/5, freq, 0.012, "index %d frequency %v", idx, freq)
	}
}

// =============================================================================
// Degenerate and Mode Tests
// =============================================================================

func TestSelect_SingleLeafAlwaysRoot(t *testing.T) {
	tree := norm.NewNoNorm("true")
	src := testutil.Source(23)

	for i := 0; i < 100; i++ {
		tr, err := gen.Simulate(selectProcess(tree, false, false), src)
		require.NoError(t, err)
		assert.Equal(t, 1, tr.Ret.Idx)
		assert.Equal(t, 1, tr.Ret.Depth)
		assert.Same(t, norm.Node(tree), tr.Ret.Node)
	}
}

func TestSelect_ExcludeRootOnLeafIsFatal(t *testing.T) {
	tree := norm.NewNoNorm("true")
	src := testutil.Source(29)

	_, err := gen.Simulate(selectProcess(tree, false, true), src)
	require.Error(t, err)
	var selErr *SelectionError
	require.ErrorAs(t, err, &selErr)
	assert.Contains(t, selErr.Error(), "impossible selection")
}

func TestSelect_ExcludeRootSkipsRoot(t *testing.T) {
	tree := norm.NewObligation(norm.NewColour("red"), norm.NewZone("2"))
	src := testutil.Source(31)

	for i := 0; i < 500; i++ {
		tr, err := gen.Simulate(selectProcess(tree, false, true), src)
		require.NoError(t, err)
		assert.NotEqual(t, 1, tr.Ret.Idx, "root must never be selected with excludeRoot")
		assert.Contains(t, []int{2, 3}, tr.Ret.Idx)
		assert.Equal(t, 2, tr.Ret.Depth)
	}
}

func TestSelect_LeafOnlySkipsInternalNodes(t *testing.T) {
	tree := norm.NewNorm(norm.NewObligation(norm.NewColour("red"), norm.NewZone("2")), norm.NewEmpty())
	src := testutil.Source(37)

	for i := 0; i < 500; i++ {
		tr, err := gen.Simulate(selectProcess(tree, true, false), src)
		require.NoError(t, err)
		assert.True(t, norm.IsLeaf(tr.Ret.Node), "leafOnly selected %s at %d", tr.Ret.Node.TypeName(), tr.Ret.Idx)
	}
}

func TestSelect_DepthTracksDescent(t *testing.T) {
	tree := norm.NewNorm(norm.NewObligation(norm.NewColour("red"), norm.NewZone("2")), norm.NewEmpty())
	src := testutil.Source(41)

	tr, err := gen.Simulate(selectProcess(tree, true, false), src)
	require.NoError(t, err)
	switch tr.Ret.Idx {
	case 3: // Empty right child of the root
		assert.Equal(t, 2, tr.Ret.Depth)
	case 4, 5: // leaves under the Obligation at idx 2
		assert.Equal(t, 3, tr.Ret.Depth)
	default:
		t.Fatalf("unexpected leaf index %d", tr.Ret.Idx)
	}
}

func TestSelect_ReplayIsDeterministic(t *testing.T) {
	tree := norm.NewNorm(norm.NewObligation(norm.NewColour("red"), norm.NewZone("2")), norm.NewEmpty())
	src := testutil.Source(43)

	tr, err := gen.Simulate(selectProcess(tree, false, false), src)
	require.NoError(t, err)

	replayed, err := gen.Replay(selectProcess(tree, false, false), tr.Choices)
	require.NoError(t, err)
	assert.Equal(t, tr.Ret.Idx, replayed.Ret.Idx)
	assert.Equal(t, tr.Ret.Depth, replayed.Ret.Depth)
}
