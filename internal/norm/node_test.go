package norm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Size/Depth Cache Tests
// =============================================================================

func TestLeaf_SizeDepth(t *testing.T) {
	leaves := []Node{
		NewNoNorm("true"),
		NewZone("2"),
		NewColour("red"),
		NewEmpty(),
	}
	for _, leaf := range leaves {
		assert.Equal(t, 1, leaf.Size(), "leaf %s should have size 1", leaf.TypeName())
		assert.Equal(t, 0, leaf.Depth(), "leaf %s should have depth 0", leaf.TypeName())
	}
}

func TestBranch_SizeDepth(t *testing.T) {
	ob := NewObligation(NewColour("red"), NewZone("2"))
	assert.Equal(t, 3, ob.Size())
	assert.Equal(t, 1, ob.Depth())

	tree := NewNorm(ob, NewEmpty())
	assert.Equal(t, 5, tree.Size())
	assert.Equal(t, 2, tree.Depth())
}

// checkInvariant verifies the recursive size/depth formulas for every
// node of a tree.
func checkInvariant(t *testing.T, n Node) {
	t.Helper()
	b, ok := n.(Branch)
	if !ok {
		require.Equal(t, 1, n.Size())
		require.Equal(t, 0, n.Depth())
		return
	}
	require.Equal(t, 1+b.Left().Size()+b.Right().Size(), n.Size())
	maxDepth := b.Left().Depth()
	if b.Right().Depth() > maxDepth {
		maxDepth = b.Right().Depth()
	}
	require.Equal(t, 1+maxDepth, n.Depth())
	checkInvariant(t, b.Left())
	checkInvariant(t, b.Right())
}

func TestInvariant_NestedTree(t *testing.T) {
	tree := NewNorm(
		NewProhibition(NewColour("any"), NewZone("1")),
		NewNorm(NewObligation(NewColour("blue"), NewZone("3")), NewEmpty()),
	)
	checkInvariant(t, tree)
	assert.Equal(t, 9, tree.Size())
	assert.Equal(t, 3, tree.Depth())
}

// =============================================================================
// Heap Index Addressing Tests
// =============================================================================

func TestChildIndices(t *testing.T) {
	l, r := ChildIndices(1)
	assert.Equal(t, 2, l)
	assert.Equal(t, 3, r)

	l, r = ChildIndices(5)
	assert.Equal(t, 10, l)
	assert.Equal(t, 11, r)
}

func TestInSubtree(t *testing.T) {
	assert.True(t, InSubtree(1, 1))
	assert.True(t, InSubtree(2, 1))
	assert.True(t, InSubtree(5, 2), "5 = right child of 2")
	assert.True(t, InSubtree(11, 2), "11 -> 5 -> 2")
	assert.False(t, InSubtree(3, 2))
	assert.False(t, InSubtree(2, 3))
	assert.False(t, InSubtree(1, 2), "ancestor is not in subtree")
}

func TestAt(t *testing.T) {
	ob := NewObligation(NewColour("red"), NewZone("2"))
	tree := NewNorm(ob, NewEmpty())

	root, ok := At(tree, 1)
	require.True(t, ok)
	assert.Same(t, Node(tree), root)

	left, ok := At(tree, 2)
	require.True(t, ok)
	assert.Same(t, Node(ob), left)

	colour, ok := At(tree, 4)
	require.True(t, ok)
	assert.Equal(t, "Colour", colour.TypeName())

	zone, ok := At(tree, 5)
	require.True(t, ok)
	assert.Equal(t, "Zone", zone.TypeName())

	_, ok = At(tree, 8)
	assert.False(t, ok, "index below a leaf should not resolve")
	_, ok = At(tree, 0)
	assert.False(t, ok)
}

// =============================================================================
// Structural Equality Tests
// =============================================================================

func TestEqual(t *testing.T) {
	a := NewObligation(NewColour("red"), NewZone("2"))
	b := NewObligation(NewColour("red"), NewZone("2"))
	c := NewObligation(NewColour("red"), NewZone("3"))
	d := NewProhibition(NewColour("red"), NewZone("2"))

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c), "different leaf value")
	assert.False(t, Equal(a, d), "different variant")
	assert.True(t, Equal(NewEmpty(), NewEmpty()))
	assert.False(t, Equal(NewNoNorm("true"), NewEmpty()))
}

func TestIsLeaf(t *testing.T) {
	assert.True(t, IsLeaf(NewZone("1")))
	assert.True(t, IsLeaf(NewEmpty()))
	assert.False(t, IsLeaf(NewObligation(NewColour("red"), NewZone("2"))))
}
