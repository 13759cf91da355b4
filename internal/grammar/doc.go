// Package grammar holds the production-rule configuration that
// drives norm-tree generation.
//
// A grammar is three tables: rules (rule name -> node type -> child
// rule names), node-type probabilities (which variant a rule expands
// to), and terminal value probabilities (a leaf's concrete value).
// The tables are immutable after load and shared by reference across
// all generation and selection operations.
//
// Node-type names never reach a constructor through reflection or
// name mangling: a Registry maps each name to a constructor closure
// and each leaf type to its regrowth rule, and Validate checks at
// load time that every name the tables mention is registered.
//
// Grammars load from YAML (strict field checking) or CUE files.
package grammar
