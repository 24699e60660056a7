package rdf

import (
	"io"

	"github.com/pkg/errors"
)

const (
	forestElement = "Forest"
	treeElement   = "Tree"
	nodeElement   = "Node"
	maxDepthAttr  = "maxdepth"

	//A decoded arena larger than denseArenaSlots must hold at least one stored node
	//per sparseArenaRatio slots.
	denseArenaSlots  = 1 << 20
	sparseArenaRatio = 1 << 10
)

//MarshalElement stores the tree depth first: a split node holds its feature and both
//child nodes, a leaf holds its statistics.
func (t *Tree[I, O, F, S]) MarshalElement() (*Element, error) {
	if len(t.nodes) == 0 {
		return nil, errors.Wrap(ErrOutOfRange, "tree is not initialized")
	}
	root, err := t.marshalNode(0)
	if err != nil {
		return nil, err
	}
	return NewElement(treeElement).SetIntAttr(maxDepthAttr, t.maxDepth).AddChild(root), nil
}

func (t *Tree[I, O, F, S]) marshalNode(idx int) (*Element, error) {
	n := &t.nodes[idx]
	el := NewElement(nodeElement)
	if !n.split {
		stats, err := n.Statistics.MarshalElement()
		if err != nil {
			return nil, errors.Wrapf(err, "statistics of node %d", idx)
		}
		return el.AddChild(stats), nil
	}

	feature, err := n.Feature.MarshalElement()
	if err != nil {
		return nil, errors.Wrapf(err, "feature of node %d", idx)
	}
	left, err := t.marshalNode(t.LeftChild(idx))
	if err != nil {
		return nil, err
	}
	right, err := t.marshalNode(t.RightChild(idx))
	if err != nil {
		return nil, err
	}
	return el.AddChild(feature).AddChild(left).AddChild(right), nil
}

//DecodeTree restores a tree written by MarshalElement. Split node statistics are
//rebuilt by merging the statistics of their children. The arena only reaches the
//deepest stored node; maxdepth is kept as the depth the tree was trained for.
func DecodeTree[I any, O any, F Feature[I], S Statistics[O, S]](el *Element, codec Codec[F, S]) (*Tree[I, O, F, S], error) {
	if codec.DecodeFeature == nil || codec.DecodeStatistics == nil || codec.NewStatistics == nil {
		return nil, invalidConfig("incomplete codec")
	}
	if el.Name != treeElement {
		return nil, formatError("expected <%s>, got <%s>", treeElement, el.Name)
	}
	maxDepth, err := el.IntAttr(maxDepthAttr)
	if err != nil {
		return nil, err
	}
	if maxDepth < 0 || maxDepth > MaxTreeDepth {
		return nil, formatError("tree depth %d outside of [0, %d]", maxDepth, MaxTreeDepth)
	}
	if len(el.Children) != 1 {
		return nil, formatError("<%s> must have exactly one root node, has %d children", treeElement, len(el.Children))
	}

	deepest, count := nodeExtent(el.Children[0], 0, maxDepth)
	if deepest > maxDepth {
		return nil, errors.Wrapf(ErrOutOfRange, "node at depth %d below max depth %d", deepest, maxDepth)
	}
	if slots := 1 << uint(deepest+1); slots > denseArenaSlots && slots > count*sparseArenaRatio {
		return nil, formatError("%d nodes down to depth %d for an arena of %d slots", count, deepest, slots)
	}

	tree := &Tree[I, O, F, S]{}
	tree.allocate(maxDepth, deepest)
	if err := tree.decodeNode(el.Children[0], 0, codec); err != nil {
		return nil, err
	}
	return tree, nil
}

//nodeExtent returns the depth of the deepest <Node> under el and the number of <Node>
//elements seen. It does not descend below limit.
func nodeExtent(el *Element, depth, limit int) (deepest, count int) {
	deepest, count = depth, 1
	if depth > limit {
		return deepest, count
	}
	for _, child := range el.Children {
		if child.Name != nodeElement {
			continue
		}
		d, c := nodeExtent(child, depth+1, limit)
		deepest = max(deepest, d)
		count += c
	}
	return deepest, count
}

func (t *Tree[I, O, F, S]) decodeNode(el *Element, idx int, codec Codec[F, S]) error {
	if el.Name != nodeElement {
		return formatError("expected <%s>, got <%s>", nodeElement, el.Name)
	}
	if depth := PathFromIndex(idx).Depth; depth > t.maxDepth {
		return errors.Wrapf(ErrOutOfRange, "node %d at depth %d below max depth %d", idx, depth, t.maxDepth)
	}
	n, err := t.NodeAt(idx)
	if err != nil {
		return err
	}

	switch len(el.Children) {
	case 1:
		stats, err := codec.DecodeStatistics(el.Children[0])
		if err != nil {
			return errors.Wrapf(err, "statistics of node %d", idx)
		}
		n.Statistics = stats
		return nil
	case 3:
		feature, err := codec.DecodeFeature(el.Children[0])
		if err != nil {
			return errors.Wrapf(err, "feature of node %d", idx)
		}
		leftIdx, rightIdx := t.LeftChild(idx), t.RightChild(idx)
		if err := t.decodeNode(el.Children[1], leftIdx, codec); err != nil {
			return err
		}
		if err := t.decodeNode(el.Children[2], rightIdx, codec); err != nil {
			return err
		}
		stats := codec.NewStatistics()
		stats.Merge(t.nodes[leftIdx].Statistics)
		stats.Merge(t.nodes[rightIdx].Statistics)
		n.Feature = feature
		n.Statistics = stats
		n.split = true
		return nil
	default:
		return formatError("node %d has %d children, expected 1 or 3", idx, len(el.Children))
	}
}

//MarshalElement stores every trained tree under one root element.
func (f *Forest[I, O, F, S]) MarshalElement() (*Element, error) {
	el := NewElement(forestElement)
	for i, tree := range f.trees {
		treeEl, err := tree.MarshalElement()
		if err != nil {
			return nil, errors.Wrapf(err, "tree %d", i)
		}
		el.AddChild(treeEl)
	}
	return el, nil
}

//UnmarshalElement appends the trees stored in el to the forest. Nothing is appended on error.
func (f *Forest[I, O, F, S]) UnmarshalElement(el *Element, codec Codec[F, S]) error {
	if el.Name != forestElement {
		return formatError("expected <%s>, got <%s>", forestElement, el.Name)
	}
	if codec.NewStatistics == nil {
		codec.NewStatistics = f.newStats
	}
	trees := make([]*Tree[I, O, F, S], 0, len(el.Children))
	for i, treeEl := range el.Children {
		tree, err := DecodeTree[I, O, F, S](treeEl, codec)
		if err != nil {
			return errors.Wrapf(err, "tree %d", i)
		}
		trees = append(trees, tree)
	}
	f.trees = append(f.trees, trees...)
	return nil
}

//Save writes the forest as an XML document.
func (f *Forest[I, O, F, S]) Save(w io.Writer) error {
	el, err := f.MarshalElement()
	if err != nil {
		return err
	}
	return WriteDocument(w, el)
}

//Load reads an XML document written by Save and appends its trees.
func (f *Forest[I, O, F, S]) Load(r io.Reader, codec Codec[F, S]) error {
	el, err := ReadDocument(r)
	if err != nil {
		return err
	}
	return f.UnmarshalElement(el, codec)
}
