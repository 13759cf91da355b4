package apply

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/normjump/internal/norm"
)

func obligation(colour, zone string) norm.Node {
	return norm.NewObligation(norm.NewColour(colour), norm.NewZone(zone))
}

func prohibition(colour, zone string) norm.Node {
	return norm.NewProhibition(norm.NewColour(colour), norm.NewZone(zone))
}

func TestZoneDistribution_ObligationMatchingColour(t *testing.T) {
	dist := ZoneDistribution(obligation("red", "2"), "red", DefaultZones)
	assert.Equal(t, []float64{0, 1, 0}, dist)
}

func TestZoneDistribution_ProhibitionAnyColour(t *testing.T) {
	dist := ZoneDistribution(prohibition("any", "1"), "red", DefaultZones)
	assert.Equal(t, []float64{0, 0.5, 0.5}, dist)
}

func TestZoneDistribution_NonMatchingColourIsUniform(t *testing.T) {
	dist := ZoneDistribution(obligation("blue", "2"), "red", DefaultZones)
	for _, p := range dist {
		assert.InDelta(t, 1.0/3, p, 1e-12)
	}
}

func TestZoneDistribution_NormWrapperRecurses(t *testing.T) {
	tree := norm.NewNorm(obligation("red", "3"), norm.NewEmpty())
	dist := ZoneDistribution(tree, "red", DefaultZones)
	assert.Equal(t, []float64{0, 0, 1}, dist)
}

func TestZoneDistribution_UnrecognizedShapesFallBackToUniform(t *testing.T) {
	cases := []norm.Node{
		norm.NewNoNorm("true"),
		norm.NewZone("1"),
		norm.NewEmpty(),
		// Zone named by the norm is outside the layout.
		obligation("red", "9"),
		// Colour slot holds a non-colour node.
		norm.NewObligation(norm.NewZone("1"), norm.NewZone("2")),
	}
	for _, tree := range cases {
		dist := ZoneDistribution(tree, "red", DefaultZones)
		for _, p := range dist {
			assert.InDelta(t, 1.0/3, p, 1e-12, "tree %s", norm.Render(tree))
		}
	}
}

func TestZoneDistribution_SingleZoneProhibition(t *testing.T) {
	dist := ZoneDistribution(prohibition("any", "1"), "red", []string{"1"})
	assert.Equal(t, []float64{1}, dist)
}

func TestLogLikelihood(t *testing.T) {
	tree := prohibition("any", "1")
	obs := []Observation{
		{Colour: "red", Zone: "2"},
		{Colour: "blue", Zone: "3"},
	}
	ll, err := LogLikelihood(tree, obs, DefaultZones)
	require.NoError(t, err)
	assert.InDelta(t, 2*math.Log(0.5), ll, 1e-12)
}

func TestLogLikelihood_ForbiddenZoneIsMinusInf(t *testing.T) {
	tree := obligation("red", "2")
	ll, err := LogLikelihood(tree, []Observation{{Colour: "red", Zone: "1"}}, DefaultZones)
	require.NoError(t, err)
	assert.True(t, math.IsInf(ll, -1))
}

func TestLogLikelihood_UnknownObservationZone(t *testing.T) {
	_, err := LogLikelihood(norm.NewNoNorm("true"), []Observation{{Colour: "red", Zone: "9"}}, DefaultZones)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in layout")
}

func TestLogLikelihood_EmptyObservations(t *testing.T) {
	ll, err := LogLikelihood(norm.NewNoNorm("true"), nil, DefaultZones)
	require.NoError(t, err)
	assert.Zero(t, ll)
}
