// Package norm defines the norm-tree data model.
//
// A norm tree encodes an obligation/prohibition structure over task
// colours and zones. Nodes form a closed sum over seven variants:
// four leaves (NoNorm, Zone, Colour, Empty) and three binary internal
// nodes (Norm, Obligation, Prohibition). Trees are immutable once
// built; size and depth are cached at construction and never
// recomputed.
//
// Every tree position is addressed by a 1-based binary-heap index:
// the root is 1, the left child of i is 2i, the right child is 2i+1.
// This addressing is stable across structural edits at other
// positions, which the reversible subtree-replace move depends on.
//
// The package also provides deterministic text rendering, canonical
// JSON serialization, and content-addressed tree hashing.
package norm
