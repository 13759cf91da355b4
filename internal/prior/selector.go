package prior

import (
	"fmt"
	"strconv"

	"github.com/roach88/normjump/internal/gen"
	"github.com/roach88/normjump/internal/norm"
)

// Selection identifies one node of a tree: the node itself, its heap
// index, and its depth counted from the original top call.
type Selection struct {
	Node  norm.Node
	Idx   int
	Depth int
}

// SelectionError reports an impossible selection request. It is
// fatal: the requested mode admits no valid outcome.
type SelectionError struct {
	Idx     int
	Message string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("impossible selection at index %d: %s", e.Idx, e.Message)
}

// SelectRandomNode picks one node of the subtree rooted at node,
// recording its draws under scope/idx. Stopping law:
//
//   - leaf, excludeRoot false: stop with probability 1
//   - leaf, excludeRoot true: fatal SelectionError (no descent possible)
//   - internal, excludeRoot true: never stop (forced descent)
//   - internal, leafOnly true: never stop (forced descent)
//   - internal, otherwise: stop with probability 1/size(node)
//
// On descent the left branch is taken with probability
// size(left)/(size(node)-1), and excludeRoot propagates as false:
// only the outermost call may forbid selecting its own node.
//
// With leafOnly and excludeRoot both false, every node of the subtree
// is selected with probability exactly 1/size(node).
func SelectRandomNode(r *gen.Run, scope string, node norm.Node, idx, depth int, leafOnly, excludeRoot bool) (Selection, error) {
	idxKey := strconv.Itoa(idx)

	branch, isBranch := node.(norm.Branch)
	if !isBranch {
		if excludeRoot {
			return Selection{}, &SelectionError{Idx: idx, Message: "cannot exclude the root of a leaf"}
		}
		// Leaves always terminate the descent. The draw is recorded
		// anyway so selection traces replay address-for-address.
		if _, err := r.Bernoulli(1.0, scope, idxKey, "stop"); err != nil {
			return Selection{}, err
		}
		return Selection{Node: node, Idx: idx, Depth: depth}, nil
	}

	stopProb := 1.0 / float64(node.Size())
	if excludeRoot || leafOnly {
		stopProb = 0
	}
	stop, err := r.Bernoulli(stopProb, scope, idxKey, "stop")
	if err != nil {
		return Selection{}, err
	}
	if stop {
		return Selection{Node: node, Idx: idx, Depth: depth}, nil
	}

	pLeft := float64(branch.Left().Size()) / float64(node.Size()-1)
	goLeft, err := r.Bernoulli(pLeft, scope, idxKey, "left")
	if err != nil {
		return Selection{}, err
	}

	leftIdx, rightIdx := norm.ChildIndices(idx)
	if goLeft {
		return SelectRandomNode(r, scope, branch.Left(), leftIdx, depth+1, leafOnly, false)
	}
	return SelectRandomNode(r, scope, branch.Right(), rightIdx, depth+1, leafOnly, false)
}
