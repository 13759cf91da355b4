// Package chain drives Metropolis-Hastings sampling over norm trees.
//
// A chain starts from a tree drawn from the grammar prior and
// repeatedly proposes subtree replacements, accepting each with the
// standard MH ratio: the move's log weight plus the change in
// observation log-likelihood. Runs are identified by UUIDv7 tokens
// and can be persisted through a Recorder.
package chain
