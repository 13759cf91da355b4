// Package apply maps norm trees onto task outcomes.
//
// A norm constrains which zone a task of a given colour may end in.
// ZoneDistribution turns a tree plus a task colour into a probability
// distribution over zones, and LogLikelihood scores observed
// colour/zone pairs against a tree. Trees the package cannot
// interpret fall back to the uniform distribution rather than
// failing: a chain exploring tree space must be able to score every
// tree the grammar can produce.
package apply
