package norm

// Node is a sealed interface over the seven norm-tree variants.
// Only NoNorm, Zone, Colour, Empty, Norm, Obligation, and Prohibition
// implement it. Consumers dispatch with exhaustive type switches so
// that adding a variant is a compile-time-visible change everywhere.
type Node interface {
	node() // Sealed - only the types in this package implement it

	// TypeName returns the variant name as used by grammar
	// configurations ("NoNorm", "Zone", "Colour", "Empty", "Norm",
	// "Obligation", "Prohibition").
	TypeName() string

	// Size returns the cached node count of the subtree rooted here.
	// Leaves have size 1; internal nodes have 1 + size(left) + size(right).
	Size() int

	// Depth returns the cached depth of the subtree rooted here.
	// Leaves have depth 0; internal nodes have 1 + max child depth.
	Depth() int
}

// Branch is implemented by the three internal variants. It exposes
// the two children; the right child is Empty when the producing
// grammar rule had a single child rule.
type Branch interface {
	Node
	Left() Node
	Right() Node
}

// Leaf node variants.

// NoNorm is the leaf marking the absence of a norm.
type NoNorm struct{ value string }

// Zone is a leaf naming a zone (e.g. "2").
type Zone struct{ value string }

// Colour is a leaf naming a task colour (e.g. "red", "any").
type Colour struct{ value string }

// Empty is the placeholder leaf used as the right child of
// single-child internal nodes.
type Empty struct{}

// NewNoNorm creates a NoNorm leaf.
func NewNoNorm(value string) *NoNorm { return &NoNorm{value: value} }

// NewZone creates a Zone leaf.
func NewZone(value string) *Zone { return &Zone{value: value} }

// NewColour creates a Colour leaf.
func NewColour(value string) *Colour { return &Colour{value: value} }

// NewEmpty creates an Empty leaf.
func NewEmpty() *Empty { return &Empty{} }

func (*NoNorm) node() {}
func (*Zone) node()   {}
func (*Colour) node() {}
func (*Empty) node()  {}

func (*NoNorm) TypeName() string { return "NoNorm" }
func (*Zone) TypeName() string   { return "Zone" }
func (*Colour) TypeName() string { return "Colour" }
func (*Empty) TypeName() string  { return "Empty" }

func (*NoNorm) Size() int { return 1 }
func (*Zone) Size() int   { return 1 }
func (*Colour) Size() int { return 1 }
func (*Empty) Size() int  { return 1 }

func (*NoNorm) Depth() int { return 0 }
func (*Zone) Depth() int   { return 0 }
func (*Colour) Depth() int { return 0 }
func (*Empty) Depth() int  { return 0 }

// Value returns the leaf's concrete value label.
func (n *NoNorm) Value() string { return n.value }

// Value returns the zone label.
func (n *Zone) Value() string { return n.value }

// Value returns the colour label.
func (n *Colour) Value() string { return n.value }

// branch carries the shared structure of internal variants: two
// children and the size/depth caches, computed once at construction
// (invariant: size = 1 + size(left) + size(right),
// depth = 1 + max(depth(left), depth(right))).
type branch struct {
	left  Node
	right Node
	size  int
	depth int
}

func newBranch(left, right Node) branch {
	d := left.Depth()
	if r := right.Depth(); r > d {
		d = r
	}
	return branch{
		left:  left,
		right: right,
		size:  1 + left.Size() + right.Size(),
		depth: 1 + d,
	}
}

func (b *branch) Left() Node  { return b.left }
func (b *branch) Right() Node { return b.right }
func (b *branch) Size() int   { return b.size }
func (b *branch) Depth() int  { return b.depth }

// Internal node variants.

// Norm wraps a norm body (Obligation or Prohibition subtree).
type Norm struct{ branch }

// Obligation obliges tasks of a colour to a zone.
type Obligation struct{ branch }

// Prohibition forbids tasks of a colour from a zone.
type Prohibition struct{ branch }

// NewNorm creates a Norm node over two children. Pass Empty for the
// right child when the node has a single logical child.
func NewNorm(left, right Node) *Norm { return &Norm{newBranch(left, right)} }

// NewObligation creates an Obligation node over two children.
func NewObligation(left, right Node) *Obligation { return &Obligation{newBranch(left, right)} }

// NewProhibition creates a Prohibition node over two children.
func NewProhibition(left, right Node) *Prohibition { return &Prohibition{newBranch(left, right)} }

func (*Norm) node()        {}
func (*Obligation) node()  {}
func (*Prohibition) node() {}

func (*Norm) TypeName() string        { return "Norm" }
func (*Obligation) TypeName() string  { return "Obligation" }
func (*Prohibition) TypeName() string { return "Prohibition" }

// IsLeaf reports whether n is one of the four leaf variants.
func IsLeaf(n Node) bool {
	switch n.(type) {
	case *NoNorm, *Zone, *Colour, *Empty:
		return true
	default:
		return false
	}
}

// Heap index addressing: root = 1, left child of i is 2i, right child
// is 2i+1.

// ChildIndices returns the heap indices of the two children of idx.
func ChildIndices(idx int) (left, right int) {
	return 2 * idx, 2*idx + 1
}

// InSubtree reports whether heap index idx lies in the subtree rooted
// at heap index root (inclusive).
func InSubtree(idx, root int) bool {
	if idx < root {
		return false
	}
	for idx > root {
		idx >>= 1
	}
	return idx == root
}

// At returns the node at heap index idx relative to root (which has
// index 1). The second return is false when idx does not address a
// position present in the tree.
func At(root Node, idx int) (Node, bool) {
	if idx < 1 {
		return nil, false
	}
	// Recover the root-to-idx path from the index bits, high to low,
	// skipping the leading 1 bit.
	var path []int
	for i := idx; i > 1; i >>= 1 {
		path = append(path, i&1)
	}
	cur := root
	for i := len(path) - 1; i >= 0; i-- {
		b, ok := cur.(Branch)
		if !ok {
			return nil, false
		}
		if path[i] == 0 {
			cur = b.Left()
		} else {
			cur = b.Right()
		}
	}
	return cur, true
}

// Equal reports deep structural equality of two trees, including
// leaf values.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case *NoNorm:
		y, ok := b.(*NoNorm)
		return ok && x.value == y.value
	case *Zone:
		y, ok := b.(*Zone)
		return ok && x.value == y.value
	case *Colour:
		y, ok := b.(*Colour)
		return ok && x.value == y.value
	case *Empty:
		_, ok := b.(*Empty)
		return ok
	case *Norm:
		y, ok := b.(*Norm)
		return ok && Equal(x.left, y.left) && Equal(x.right, y.right)
	case *Obligation:
		y, ok := b.(*Obligation)
		return ok && Equal(x.left, y.left) && Equal(x.right, y.right)
	case *Prohibition:
		y, ok := b.(*Prohibition)
		return ok && Equal(x.left, y.left) && Equal(x.right, y.right)
	default:
		return false
	}
}
