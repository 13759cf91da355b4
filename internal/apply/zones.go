package apply

import (
	"fmt"
	"math"

	"github.com/roach88/normjump/internal/norm"
)

// ColourAny matches every task colour when it appears in a norm's
// colour position.
const ColourAny = "any"

// DefaultZones is the stock zone layout.
var DefaultZones = []string{"1", "2", "3"}

// Uniform returns the uniform distribution over n zones.
func Uniform(n int) []float64 {
	dist := make([]float64, n)
	for i := range dist {
		dist[i] = 1.0 / float64(n)
	}
	return dist
}

// ZoneDistribution computes the probability of a task of the given
// colour ending in each zone, under the norm encoded by the tree.
//
// An obligation whose colour matches puts all mass on the obligated
// zone; a prohibition whose colour matches spreads the mass uniformly
// over the remaining zones. A norm that does not apply to the colour,
// a NoNorm, or any tree shape the mapping does not recognize yields
// the uniform distribution.
func ZoneDistribution(n norm.Node, colour string, zones []string) []float64 {
	switch node := n.(type) {
	case *norm.Norm:
		return ZoneDistribution(node.Left(), colour, zones)
	case *norm.Obligation:
		zone, ok := appliesTo(node, colour, zones)
		if !ok {
			return Uniform(len(zones))
		}
		dist := make([]float64, len(zones))
		dist[zone] = 1.0
		return dist
	case *norm.Prohibition:
		zone, ok := appliesTo(node, colour, zones)
		if !ok || len(zones) < 2 {
			return Uniform(len(zones))
		}
		dist := make([]float64, len(zones))
		p := 1.0 / float64(len(zones)-1)
		for i := range dist {
			if i != zone {
				dist[i] = p
			}
		}
		return dist
	default:
		return Uniform(len(zones))
	}
}

// appliesTo reports whether a two-child norm node constrains the
// given colour, and the index of the zone it names.
func appliesTo(n norm.Branch, colour string, zones []string) (int, bool) {
	c, ok := n.Left().(*norm.Colour)
	if !ok {
		return 0, false
	}
	if c.Value() != ColourAny && c.Value() != colour {
		return 0, false
	}
	z, ok := n.Right().(*norm.Zone)
	if !ok {
		return 0, false
	}
	for i, label := range zones {
		if label == z.Value() {
			return i, true
		}
	}
	return 0, false
}

// Observation is one observed task outcome: a task of some colour
// ended in some zone.
type Observation struct {
	Colour string `yaml:"colour" json:"colour"`
	Zone   string `yaml:"zone" json:"zone"`
}

// LogLikelihood scores the observations under the tree's induced zone
// distributions. The result is -Inf when an observation lands in a
// zone the tree forbids. An observation naming a zone outside the
// layout is an error.
func LogLikelihood(n norm.Node, obs []Observation, zones []string) (float64, error) {
	total := 0.0
	for _, o := range obs {
		idx := -1
		for i, label := range zones {
			if label == o.Zone {
				idx = i
				break
			}
		}
		if idx < 0 {
			return 0, fmt.Errorf("observation zone %q not in layout %v", o.Zone, zones)
		}
		dist := ZoneDistribution(n, o.Colour, zones)
		total += math.Log(dist[idx])
	}
	return total, nil
}
