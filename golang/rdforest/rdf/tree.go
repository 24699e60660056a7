package rdf

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

//Node is a slot of the tree arena. A split node holds a feature and owns the slots
//2*idx+1 and 2*idx+2; every reached node, split or not, holds statistics.
type Node[F any, S any] struct {
	Feature    F
	Statistics S
	split      bool
}

//IsSplit reports whether the node has children.
func (n *Node[F, S]) IsSplit() bool {
	return n.split
}

//Tree is a complete binary tree of fixed maximum depth stored in a flat array.
//Slots that no split reaches stay zero and are never evaluated.
type Tree[I any, O any, F Feature[I], S Statistics[O, S]] struct {
	maxDepth int
	nodes    []Node[F, S]
}

//NewTree allocates the arena for maxDepth and seeds the root statistics.
func NewTree[I any, O any, F Feature[I], S Statistics[O, S]](maxDepth int, rootStatistics S) (*Tree[I, O, F, S], error) {
	tree := &Tree[I, O, F, S]{}
	if err := tree.Init(maxDepth, rootStatistics); err != nil {
		return nil, err
	}
	return tree, nil
}

//Init allocates 2^(maxDepth+1) node slots and stores the root statistics.
//It discards any previous content of the tree.
func (t *Tree[I, O, F, S]) Init(maxDepth int, rootStatistics S) error {
	if maxDepth < 0 || maxDepth > MaxTreeDepth {
		return invalidConfig("tree depth %d outside of [0, %d]", maxDepth, MaxTreeDepth)
	}
	t.allocate(maxDepth, maxDepth)
	t.nodes[0].Statistics = rootStatistics
	return nil
}

//allocate sizes the arena for nodes down to arenaDepth, which loaded trees keep below maxDepth.
func (t *Tree[I, O, F, S]) allocate(maxDepth, arenaDepth int) {
	t.maxDepth = maxDepth
	t.nodes = make([]Node[F, S], 1<<uint(arenaDepth+1))
}

//MaxDepth of the arena.
func (t *Tree[I, O, F, S]) MaxDepth() int {
	return t.maxDepth
}

//Root returns the root slot.
func (t *Tree[I, O, F, S]) Root() *Node[F, S] {
	return &t.nodes[0]
}

//LeftChild returns the index of the left child of the node at idx.
func (t *Tree[I, O, F, S]) LeftChild(idx int) int {
	return idx*2 + 1
}

//RightChild returns the index of the right child of the node at idx.
func (t *Tree[I, O, F, S]) RightChild(idx int) int {
	return idx*2 + 2
}

//NodeAt returns the slot stored at an arena index.
func (t *Tree[I, O, F, S]) NodeAt(idx int) (*Node[F, S], error) {
	if idx < 0 || idx >= len(t.nodes) {
		return nil, errors.Wrapf(ErrOutOfRange, "index %d, arena of %d nodes", idx, len(t.nodes))
	}
	return &t.nodes[idx], nil
}

//GetNode returns the slot addressed by a path. A path of depth 0 is always the root.
func (t *Tree[I, O, F, S]) GetNode(path Path) (*Node[F, S], error) {
	if len(t.nodes) == 0 {
		return nil, errors.Wrap(ErrOutOfRange, "tree is not initialized")
	}
	if path.Depth == 0 {
		return &t.nodes[0], nil
	}
	if path.Depth > t.maxDepth {
		return nil, errors.Wrapf(ErrOutOfRange, "%v deeper than max depth %d", path, t.maxDepth)
	}
	if path.Offset < 0 || path.Offset >= 1<<uint(path.Depth) {
		return nil, errors.Wrapf(ErrOutOfRange, "%v offset outside of level %d", path, path.Depth)
	}
	return t.NodeAt(path.Index())
}

//HydrateSplitNode turns the node at idx into a split node and stores its children's statistics.
//This is the only way tree structure is created.
func (t *Tree[I, O, F, S]) HydrateSplitNode(idx int, feature F, left, right S) error {
	if _, err := t.NodeAt(idx); err != nil {
		return err
	}
	rightIdx := t.RightChild(idx)
	if rightIdx >= len(t.nodes) {
		return errors.Wrapf(ErrOutOfRange, "node %d at max depth %d cannot be split", idx, t.maxDepth)
	}
	n := &t.nodes[idx]
	n.Feature = feature
	n.split = true
	t.nodes[t.LeftChild(idx)].Statistics = left
	t.nodes[rightIdx].Statistics = right
	return nil
}

//Evaluate routes the input from the root to a leaf and returns the leaf statistics.
//The result is shared with the tree and must not be modified.
//Trained trees are immutable, so concurrent calls are safe.
func (t *Tree[I, O, F, S]) Evaluate(input I) S {
	idx := 0
	for t.nodes[idx].split {
		if t.nodes[idx].Feature.Test(input) {
			idx = t.RightChild(idx)
		} else {
			idx = t.LeftChild(idx)
		}
	}
	return t.nodes[idx].Statistics
}

//walk visits every reached node in preorder.
func (t *Tree[I, O, F, S]) walk(idx, depth int, visit func(idx, depth int, n *Node[F, S])) {
	n := &t.nodes[idx]
	visit(idx, depth, n)
	if n.split {
		t.walk(t.LeftChild(idx), depth+1, visit)
		t.walk(t.RightChild(idx), depth+1, visit)
	}
}

//NumNodes counts the reached nodes.
func (t *Tree[I, O, F, S]) NumNodes() int {
	if len(t.nodes) == 0 {
		return 0
	}
	count := 0
	t.walk(0, 0, func(int, int, *Node[F, S]) { count++ })
	return count
}

//NumLeaves counts the reached leaves.
func (t *Tree[I, O, F, S]) NumLeaves() int {
	if len(t.nodes) == 0 {
		return 0
	}
	count := 0
	t.walk(0, 0, func(_ int, _ int, n *Node[F, S]) {
		if !n.split {
			count++
		}
	})
	return count
}

//String prints the tree in preorder: features for split nodes, statistics for leaves.
func (t *Tree[I, O, F, S]) String() string {
	if len(t.nodes) == 0 {
		return ""
	}
	var sb strings.Builder
	t.walk(0, 0, func(_ int, depth int, n *Node[F, S]) {
		sb.WriteString(strings.Repeat(" ", 2*depth))
		if n.split {
			sb.WriteString(fmt.Sprint(n.Feature))
		} else {
			sb.WriteString(fmt.Sprint(n.Statistics))
		}
		sb.WriteString("\n")
	})
	return sb.String()
}
