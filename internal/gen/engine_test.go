package gen

import (
	"math"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pairProcess draws a label for each of two slots and returns the pair
// of indices. Slot addresses mimic the tree generator's idx-keyed
// scheme.
func pairProcess(labels []string, probs []float64) Process[[2]int] {
	return func(r *Run) ([2]int, error) {
		var out [2]int
		for slot := 0; slot < 2; slot++ {
			idx, err := r.Categorical(labels, probs, "tree", strconv.Itoa(slot+1), "type")
			if err != nil {
				return out, err
			}
			out[slot] = idx
		}
		return out, nil
	}
}

func TestSimulate_RecordsAllDraws(t *testing.T) {
	src := NewRandSource(rand.New(rand.NewSource(7)))
	tr, err := Simulate(pairProcess([]string{"a", "b"}, []float64{0.5, 0.5}), src)
	require.NoError(t, err)

	assert.Equal(t, 2, tr.Choices.Len())
	assert.InDelta(t, 2*math.Log(0.5), tr.LogProb, 1e-12)
}

func TestReplay_ReproducesReturn(t *testing.T) {
	src := NewRandSource(rand.New(rand.NewSource(11)))
	p := pairProcess([]string{"a", "b", "c"}, []float64{0.2, 0.3, 0.5})

	tr, err := Simulate(p, src)
	require.NoError(t, err)

	replayed, err := Replay(p, tr.Choices)
	require.NoError(t, err)
	assert.Equal(t, tr.Ret, replayed.Ret)
	assert.InDelta(t, tr.LogProb, replayed.LogProb, 1e-12)
}

func TestReplay_MissingAddressFails(t *testing.T) {
	choices := NewChoiceMap()
	choices.Set(Choice{Value: Label("a")}, "tree", "1", "type")

	_, err := Replay(pairProcess([]string{"a", "b"}, []float64{0.5, 0.5}), choices)
	require.Error(t, err)
	var addrErr *AddrError
	require.ErrorAs(t, err, &addrErr)
	assert.Contains(t, addrErr.Message, "unconstrained draw")
}

func TestGenerateConstrained_WeightsForcedDraws(t *testing.T) {
	constraints := NewChoiceMap()
	constraints.Set(Choice{Value: Label("b")}, "tree", "1", "type")
	constraints.Set(Choice{Value: Label("c")}, "tree", "2", "type")

	tr, w, err := GenerateConstrained(pairProcess([]string{"a", "b", "c"}, []float64{0.2, 0.3, 0.5}), nil, constraints)
	require.NoError(t, err)
	assert.Equal(t, [2]int{1, 2}, tr.Ret)
	assert.InDelta(t, math.Log(0.3)+math.Log(0.5), w, 1e-12)
}

func TestGenerateConstrained_ZeroProbabilityIsMinusInf(t *testing.T) {
	constraints := NewChoiceMap()
	constraints.Set(Choice{Value: Label("b")}, "tree", "1", "type")
	constraints.Set(Choice{Value: Label("a")}, "tree", "2", "type")

	// Second slot forced to an outcome with zero probability.
	tr, w, err := GenerateConstrained(pairProcess([]string{"a", "b"}, []float64{0, 1}), nil, constraints)
	require.NoError(t, err, "zero-probability constraints are a weight, not an error")
	assert.True(t, math.IsInf(w, -1))
	assert.True(t, math.IsInf(tr.LogProb, -1))
}

func TestGenerateConstrained_LabelOutsideSupportIsMinusInf(t *testing.T) {
	constraints := NewChoiceMap()
	constraints.Set(Choice{Value: Label("z")}, "tree", "1", "type")

	tr, w, err := GenerateConstrained(pairProcess([]string{"a", "b"}, []float64{0.5, 0.5}), nil, constraints)
	require.NoError(t, err)
	assert.Nil(t, tr, "no realizable execution exists for the bad label")
	assert.True(t, math.IsInf(w, -1))
}

func TestDuplicateAddressFails(t *testing.T) {
	p := Process[int](func(r *Run) (int, error) {
		if _, err := r.Bernoulli(0.5, "x"); err != nil {
			return 0, err
		}
		if _, err := r.Bernoulli(0.5, "x"); err != nil {
			return 0, err
		}
		return 0, nil
	})
	src := NewRandSource(rand.New(rand.NewSource(1)))
	_, err := Simulate(p, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate draw address")
}

func TestUpdate_ReplacesRegionAndDiscardsOld(t *testing.T) {
	labels := []string{"a", "b"}
	p := pairProcess(labels, []float64{0.25, 0.75})
	src := NewRandSource(rand.New(rand.NewSource(3)))

	tr, err := Simulate(p, src)
	require.NoError(t, err)

	old, ok := tr.Choices.Get("tree", "2", "type")
	require.True(t, ok)
	oldIdx := 0
	if old.Value == Label("b") {
		oldIdx = 1
	}
	forcedNew := Label(labels[1-oldIdx]) // flip slot 2

	edits := NewChoiceMap()
	edits.Set(Choice{Value: forcedNew}, "tree", "2", "type")

	newTr, logW, discarded, err := Update(tr, p, src, "tree", func(key string) bool {
		return key == "2"
	}, edits)
	require.NoError(t, err)

	// Slot 1 unchanged, slot 2 flipped.
	assert.Equal(t, tr.Ret[0], newTr.Ret[0])
	assert.Equal(t, 1-oldIdx, newTr.Ret[1])

	// Discarded holds exactly the old slot-2 draw.
	assert.Equal(t, 1, discarded.Len())
	got, ok := discarded.Get("2", "type")
	require.True(t, ok)
	assert.Equal(t, old.Value, got.Value)

	// Log weight is the probability ratio of the changed region.
	assert.InDelta(t, newTr.LogProb-tr.LogProb, logW, 1e-12)
}

func TestUpdate_InverseEditRestoresTrace(t *testing.T) {
	p := pairProcess([]string{"a", "b"}, []float64{0.4, 0.6})
	src := NewRandSource(rand.New(rand.NewSource(5)))

	tr, err := Simulate(p, src)
	require.NoError(t, err)

	edits := NewChoiceMap()
	edits.Set(Choice{Value: Label("a")}, "tree", "1", "type")

	dropSlot1 := func(key string) bool { return key == "1" }
	mid, logW1, discarded, err := Update(tr, p, src, "tree", dropSlot1, edits)
	require.NoError(t, err)

	// Re-apply the discarded choices as edits: must restore the
	// original trace and negate the log weight.
	reverse := NewChoiceMap()
	reverse.SetSubmap("tree", discarded)
	back, logW2, _, err := Update(mid, p, src, "tree", dropSlot1, reverse)
	require.NoError(t, err)

	assert.Equal(t, tr.Ret, back.Ret)
	assert.True(t, tr.Choices.Equal(back.Choices))
	assert.InDelta(t, -logW1, logW2, 1e-12)
}

func TestRandSource_CategoricalBounds(t *testing.T) {
	src := NewRandSource(rand.New(rand.NewSource(42)))
	probs := []float64{0.1, 0.2, 0.7}
	for i := 0; i < 1000; i++ {
		idx := src.Categorical(probs)
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, len(probs))
	}
}
