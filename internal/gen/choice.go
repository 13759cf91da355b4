package gen

import "fmt"

// ChoiceValue is a sealed interface over the two primitive draw
// kinds. Only Label and Flag implement it.
type ChoiceValue interface {
	choiceValue() // Sealed - only these types implement it
}

// Label is the recorded outcome of a categorical draw. Draws record
// the chosen label, not its index, so a recorded choice can be forced
// into any later execution whose support contains the label - the
// probability it carries there is the later support's, and a label
// outside the support is an inconsistency, not a misread.
type Label string

func (Label) choiceValue() {}

// Flag is the recorded outcome of a Bernoulli draw.
type Flag bool

func (Flag) choiceValue() {}

// Choice is one recorded draw: its value and the log-probability it
// carried at the time it was recorded.
type Choice struct {
	Value   ChoiceValue
	LogProb float64
}

// String renders a choice value for diagnostics and snapshots.
func (c Choice) String() string {
	switch v := c.Value.(type) {
	case Label:
		return fmt.Sprintf("%q", string(v))
	case Flag:
		return fmt.Sprintf("flag(%t)", bool(v))
	default:
		return fmt.Sprintf("<unknown %T>", c.Value)
	}
}
