package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/normjump/internal/norm"
)

// SnapshotTree compares a tree's indexed multi-line rendering against
// a golden file in testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func SnapshotTree(t *testing.T, name string, tree norm.Node) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(norm.RenderIndented(tree)))
}
