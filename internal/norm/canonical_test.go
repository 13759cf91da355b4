package norm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_Leaf(t *testing.T) {
	data, err := MarshalCanonical(NewZone("2"))
	require.NoError(t, err)
	assert.Equal(t, `{"type":"Zone","value":"2"}`, string(data))

	data, err = MarshalCanonical(NewEmpty())
	require.NoError(t, err)
	assert.Equal(t, `{"type":"Empty"}`, string(data))
}

func TestMarshalCanonical_Branch(t *testing.T) {
	tree := NewObligation(NewColour("red"), NewZone("2"))
	data, err := MarshalCanonical(tree)
	require.NoError(t, err)
	assert.Equal(t,
		`{"type":"Obligation","left":{"type":"Colour","value":"red"},"right":{"type":"Zone","value":"2"}}`,
		string(data))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	data, err := MarshalCanonical(NewColour("a<b&c>d"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"a<b&c>d"`, "< > & must not be escaped")
}

func TestTreeHash_StableAcrossEqualTrees(t *testing.T) {
	a := NewNorm(NewObligation(NewColour("red"), NewZone("2")), NewEmpty())
	b := NewNorm(NewObligation(NewColour("red"), NewZone("2")), NewEmpty())

	ha, err := TreeHash(a)
	require.NoError(t, err)
	hb, err := TreeHash(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
	assert.Len(t, ha, 64, "hex-encoded SHA-256")
}

func TestTreeHash_DistinguishesTrees(t *testing.T) {
	a := NewObligation(NewColour("red"), NewZone("2"))
	b := NewProhibition(NewColour("red"), NewZone("2"))

	ha, err := TreeHash(a)
	require.NoError(t, err)
	hb, err := TreeHash(b)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb)
}

func TestRender(t *testing.T) {
	tree := NewNorm(NewObligation(NewColour("red"), NewZone("2")), NewEmpty())
	assert.Equal(t, `Norm(Obligation(Colour("red"), Zone("2")))`, Render(tree))
	assert.Equal(t, `NoNorm("true")`, Render(NewNoNorm("true")))
}
