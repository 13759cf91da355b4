// Package move implements the subtree-replace proposal and its
// reversible involution over norm-tree traces.
//
// A proposal's randomness decomposes into "which position" (the
// selector's draws, recorded under the "select" scope) and "what goes
// there" (regrowth draws under the "regrow" scope, keyed by heap
// addresses rooted at the picked index). The involution grafts the
// regrown subtree by re-executing the tree trace with the regrowth
// draws as edits; the choices it displaces are exactly the old
// subtree's generative draws, and replaying them as the reverse
// edit set reconstructs the pre-move tree. Position selection is
// symmetric (tree shape outside the edited region is unchanged), so
// no Jacobian correction is needed and the acceptance ratio reduces
// to the returned log weight plus the target density ratio.
package move
