package grammar

import "github.com/roach88/normjump/internal/norm"

// LeafConstructor builds a leaf node from its drawn value label.
type LeafConstructor func(value string) norm.Node

// BranchConstructor builds an internal node from its two children.
type BranchConstructor func(left, right norm.Node) norm.Node

// Registry maps grammar node-type names to constructor closures, and
// each leaf type to the rule its subtree regrows under. Lookups are
// plain map reads; no runtime reflection or name construction occurs
// anywhere in generation.
type Registry struct {
	leaves   map[string]LeafConstructor
	branches map[string]BranchConstructor
	regrowth map[string]string // leaf type -> regrowth rule name
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		leaves:   make(map[string]LeafConstructor),
		branches: make(map[string]BranchConstructor),
		regrowth: make(map[string]string),
	}
}

// RegisterLeaf registers a leaf type with its constructor and the
// rule a picked leaf of this type regrows under.
func (r *Registry) RegisterLeaf(name string, ctor LeafConstructor, regrowthRule string) {
	r.leaves[name] = ctor
	r.regrowth[name] = regrowthRule
}

// RegisterBranch registers an internal node type.
func (r *Registry) RegisterBranch(name string, ctor BranchConstructor) {
	r.branches[name] = ctor
}

// Leaf returns the constructor for a leaf type.
func (r *Registry) Leaf(name string) (LeafConstructor, bool) {
	ctor, ok := r.leaves[name]
	return ctor, ok
}

// Branch returns the constructor for an internal node type.
func (r *Registry) Branch(name string) (BranchConstructor, bool) {
	ctor, ok := r.branches[name]
	return ctor, ok
}

// Has reports whether a node-type name is registered as either kind.
func (r *Registry) Has(name string) bool {
	if _, ok := r.leaves[name]; ok {
		return true
	}
	_, ok := r.branches[name]
	return ok
}

// RegrowthRule returns the regrowth rule registered for a leaf type.
func (r *Registry) RegrowthRule(leafType string) (string, bool) {
	rule, ok := r.regrowth[leafType]
	return rule, ok
}

// DefaultRegistry registers the seven norm-tree variants. Leaf
// regrowth rules follow the uppercase naming convention of the stock
// grammars; custom grammars can register different rule names.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.RegisterLeaf("NoNorm", func(v string) norm.Node { return norm.NewNoNorm(v) }, "NONORM")
	r.RegisterLeaf("Zone", func(v string) norm.Node { return norm.NewZone(v) }, "ZONE")
	r.RegisterLeaf("Colour", func(v string) norm.Node { return norm.NewColour(v) }, "COLOUR")
	r.RegisterLeaf("Empty", func(string) norm.Node { return norm.NewEmpty() }, "EMPTY")
	r.RegisterBranch("Norm", func(l, rt norm.Node) norm.Node { return norm.NewNorm(l, rt) })
	r.RegisterBranch("Obligation", func(l, rt norm.Node) norm.Node { return norm.NewObligation(l, rt) })
	r.RegisterBranch("Prohibition", func(l, rt norm.Node) norm.Node { return norm.NewProhibition(l, rt) })
	return r
}
