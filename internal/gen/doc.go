// Package gen is the generative execution engine underneath the tree
// generator and the reversible-jump moves.
//
// A generative process is a function that makes primitive random
// draws (categorical, Bernoulli) through a Run. Every draw is
// recorded in a hierarchical choice map under a caller-supplied
// address, together with its log-probability. Executing a process
// yields a Trace: the recorded choices, the return value, and the
// total log-probability.
//
// Three execution modes exist:
//
//   - Simulate: every draw is sampled fresh from the Source.
//   - GenerateConstrained: draws whose address appears in a
//     constraint map are forced to the recorded value; the returned
//     log weight sums the log-probabilities of the forced draws and
//     is -Inf when a forced value has zero probability.
//   - Update: re-executes a traced process with a region of its old
//     choices dropped and replaced by an edit set, returning the
//     delta log-probability and the discarded former choices.
//
// Draw order is fully determined by the process's own call order, so
// replaying a trace's choices reproduces its return value exactly.
// The engine holds no global state; the Source is injected.
package gen
