package gen

import (
	"errors"
	"math"
)

// Process is a generative computation producing a value of type T
// while drawing through the Run. Processes must be deterministic
// given their draws: equal choice maps imply equal return values.
type Process[T any] func(r *Run) (T, error)

// Trace bundles one execution of a process: its recorded choices,
// its return value, and the total log joint probability of the
// recorded draws.
type Trace[T any] struct {
	Choices *ChoiceMap
	Ret     T
	LogProb float64
}

// Simulate runs p with every draw sampled fresh from src.
func Simulate[T any](p Process[T], src Source) (*Trace[T], error) {
	t, _, err := run(p, src, nil)
	return t, err
}

// GenerateConstrained runs p forcing constrained addresses to their
// recorded values. The second return is the log weight: the sum of
// log-probabilities of the forced draws, -Inf when a forced value is
// inconsistent with a realizable execution. A -Inf weight is not an
// error; callers doing repeated constrained sampling discard such
// draws.
func GenerateConstrained[T any](p Process[T], src Source, constraints *ChoiceMap) (*Trace[T], float64, error) {
	t, w, err := run(p, src, constraints)
	var inc *InconsistentError
	if errors.As(err, &inc) {
		return nil, math.Inf(-1), nil
	}
	return t, w, err
}

// Replay re-executes p with every draw forced from choices. Any draw
// not covered by choices is an error: a replayed trace must be fully
// determined.
func Replay[T any](p Process[T], choices *ChoiceMap) (*Trace[T], error) {
	t, _, err := run(p, nil, choices)
	return t, err
}

// Update re-executes a traced process with part of its old choices
// replaced. The drop predicate selects which top-level keys of the
// scope sub-map belong to the replaced region; edits supplies the new
// choices for that region (scoped like the trace's own choices, i.e.
// containing the scope key).
//
// Returns the new trace, the log weight (log joint-probability of the
// new trace minus the old - draws outside the region carry identical
// probabilities, so this is the delta of the changed region), and the
// discarded choices: exactly the old sub-maps the predicate dropped,
// keyed as they were under the scope. An edit set inconsistent with a
// realizable execution yields a nil trace and a -Inf weight, not an
// error.
func Update[T any](t *Trace[T], p Process[T], src Source, scope string, drop func(key string) bool, edits *ChoiceMap) (*Trace[T], float64, *ChoiceMap, error) {
	constraints := t.Choices.Clone()
	discarded := NewChoiceMap()
	if sub := constraints.Submap(scope); sub != nil {
		for _, key := range sub.Keys() {
			if !drop(key) {
				continue
			}
			if inner := sub.Submap(key); inner != nil {
				discarded.SetSubmap(key, inner)
			} else if c, ok := sub.Get(key); ok {
				discarded.Set(c, key)
			}
			sub.Delete(key)
		}
	}
	constraints.Merge(edits)

	newTrace, _, err := run(p, src, constraints)
	var inc *InconsistentError
	if errors.As(err, &inc) {
		return nil, math.Inf(-1), nil, nil
	}
	if err != nil {
		return nil, 0, nil, err
	}
	return newTrace, newTrace.LogProb - t.LogProb, discarded, nil
}

func run[T any](p Process[T], src Source, constraints *ChoiceMap) (*Trace[T], float64, error) {
	r := &Run{
		src:         src,
		constraints: constraints,
		choices:     NewChoiceMap(),
	}
	ret, err := p(r)
	if err != nil {
		return nil, 0, err
	}
	return &Trace[T]{Choices: r.choices, Ret: ret, LogProb: r.logProb}, r.weight, nil
}
