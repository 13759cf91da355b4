package grammar

import (
	"errors"
	"fmt"
)

// ConfigError reports a malformed grammar configuration. All grammar
// failures are fatal: they are detected at load time or abort the
// current chain step, never retried.
type ConfigError struct {
	// Code identifies the error category.
	Code ConfigErrorCode

	// Message is a human-readable description.
	Message string

	// Rule names the offending production rule, when known.
	Rule string

	// NodeType names the offending node type, when known.
	NodeType string
}

// ConfigErrorCode categorizes grammar configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeInvalidArity indicates a node type expanding to more than
	// two child rules.
	ErrCodeInvalidArity ConfigErrorCode = "INVALID_ARITY"

	// ErrCodeNoDistribution indicates a terminal node type with no
	// entry in the terminal value probabilities.
	ErrCodeNoDistribution ConfigErrorCode = "NO_DISTRIBUTION"

	// ErrCodeUnknownNodeType indicates a node type with no registered
	// constructor.
	ErrCodeUnknownNodeType ConfigErrorCode = "UNKNOWN_NODE_TYPE"

	// ErrCodeBadProbabilitySum indicates a probability table that does
	// not sum to 1.
	ErrCodeBadProbabilitySum ConfigErrorCode = "BAD_PROBABILITY_SUM"

	// ErrCodeMissingRegrowthRule indicates a leaf type whose regrowth
	// rule is unregistered or names a nonexistent rule.
	ErrCodeMissingRegrowthRule ConfigErrorCode = "MISSING_REGROWTH_RULE"

	// ErrCodeUnknownRule indicates a reference to a rule name with no
	// definition.
	ErrCodeUnknownRule ConfigErrorCode = "UNKNOWN_RULE"
)

// Error implements the error interface.
func (e *ConfigError) Error() string {
	switch {
	case e.Rule != "" && e.NodeType != "":
		return fmt.Sprintf("%s: %s (rule=%s, node_type=%s)", e.Code, e.Message, e.Rule, e.NodeType)
	case e.Rule != "":
		return fmt.Sprintf("%s: %s (rule=%s)", e.Code, e.Message, e.Rule)
	case e.NodeType != "":
		return fmt.Sprintf("%s: %s (node_type=%s)", e.Code, e.Message, e.NodeType)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsNoDistribution returns true if err is a missing terminal
// distribution error. Uses errors.As to handle wrapped errors.
func IsNoDistribution(err error) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeNoDistribution
	}
	return false
}

// IsInvalidArity returns true if err is an invalid arity error.
func IsInvalidArity(err error) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeInvalidArity
	}
	return false
}
