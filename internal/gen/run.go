package gen

import (
	"fmt"
	"math"
	"strings"
)

// Run is the execution context handed to a generative process. Its
// draw methods consult the constraint map first and fall back to the
// Source, recording every outcome in the run's choice map.
type Run struct {
	src         Source
	constraints *ChoiceMap
	choices     *ChoiceMap
	logProb     float64
	weight      float64
}

// AddrError reports a bad draw address: a duplicate, a kind mismatch
// against a constraint, or an unconstrained draw during replay.
type AddrError struct {
	Addr    []string
	Message string
}

func (e *AddrError) Error() string {
	return fmt.Sprintf("address %s: %s", strings.Join(e.Addr, "/"), e.Message)
}

// InconsistentError reports a constrained label that falls outside the
// support of the draw it was forced into. The run cannot continue past
// the bad draw; GenerateConstrained translates this into a -Inf weight
// rather than a failure.
type InconsistentError struct {
	Addr  []string
	Label string
}

func (e *InconsistentError) Error() string {
	return fmt.Sprintf("address %s: label %q outside support", strings.Join(e.Addr, "/"), e.Label)
}

// Categorical draws one of labels with the matching probability from
// probs, recording the chosen label under addr and returning its
// index. When the address is constrained, the constrained label is
// forced and its log-probability under probs is added to the run's
// weight; a zero probability makes the weight -Inf, while a label
// absent from labels is an InconsistentError.
func (r *Run) Categorical(labels []string, probs []float64, addr ...string) (int, error) {
	if len(labels) == 0 || len(labels) != len(probs) {
		return 0, &AddrError{Addr: addr, Message: "categorical draw over empty or mismatched support"}
	}
	if r.choices.Has(addr...) {
		return 0, &AddrError{Addr: addr, Message: "duplicate draw address"}
	}

	var idx int
	forced := false
	if c, ok := r.constraints.Get(addr...); ok {
		label, isLabel := c.Value.(Label)
		if !isLabel {
			return 0, &AddrError{Addr: addr, Message: "constraint is not a categorical choice"}
		}
		idx = -1
		for i, l := range labels {
			if l == string(label) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return 0, &InconsistentError{Addr: addr, Label: string(label)}
		}
		forced = true
	} else {
		if r.src == nil {
			return 0, &AddrError{Addr: addr, Message: "unconstrained draw during replay"}
		}
		idx = r.src.Categorical(probs)
	}

	lp := math.Log(probs[idx])
	r.choices.Set(Choice{Value: Label(labels[idx]), LogProb: lp}, addr...)
	r.logProb += lp
	if forced {
		r.weight += lp
	}
	return idx, nil
}

// Bernoulli draws a boolean with probability p of true, recording it
// under addr. Constrained draws behave as in Categorical.
func (r *Run) Bernoulli(p float64, addr ...string) (bool, error) {
	if r.choices.Has(addr...) {
		return false, &AddrError{Addr: addr, Message: "duplicate draw address"}
	}

	var v bool
	forced := false
	if c, ok := r.constraints.Get(addr...); ok {
		flag, isFlag := c.Value.(Flag)
		if !isFlag {
			return false, &AddrError{Addr: addr, Message: "constraint is not a Bernoulli choice"}
		}
		v = bool(flag)
		forced = true
	} else {
		if r.src == nil {
			return false, &AddrError{Addr: addr, Message: "unconstrained draw during replay"}
		}
		v = r.src.Bernoulli(p)
	}

	var lp float64
	if v {
		lp = math.Log(p)
	} else {
		lp = math.Log(1 - p)
	}
	r.choices.Set(Choice{Value: Flag(v), LogProb: lp}, addr...)
	r.logProb += lp
	if forced {
		r.weight += lp
	}
	return v, nil
}
