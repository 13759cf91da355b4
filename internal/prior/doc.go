// Package prior implements the grammar-constrained generative prior
// over norm trees and the size-proportional random node selector.
//
// Generation is a recursive descent over the grammar's production
// rules. Every random draw is recorded under an address derived from
// the node's heap index and a label, so a later targeted edit at one
// position cannot collide with draws at any other position. The
// node-type draw precedes the children; the left child precedes the
// right; this order is what makes traces replayable.
//
// Selection descends the same heap addressing. With leafOnly and
// excludeRoot both false, a subtree of size s stops at its own root
// with probability 1/s and otherwise descends into a child chosen
// proportionally to its size, which telescopes to uniform selection
// over all s nodes without indexing the tree up front.
package prior
