package rdf

import (
	"fmt"
	"path"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var figureFormats = map[string]graphviz.Format{
	"png": graphviz.PNG,
	"svg": graphviz.SVG,
	"jpg": graphviz.JPG,
}

func (t *Tree[I, O, F, S]) recurrentDraw(g *cgraph.Graph, idx int, parent *cgraph.Node, edgeLabel string) error {
	current, err := g.CreateNode(fmt.Sprint(idx))
	if err != nil {
		return err
	}
	if parent != nil {
		edge, err := g.CreateEdge(fmt.Sprintf("%d", idx), parent, current)
		if err != nil {
			return err
		}
		edge.SetLabel(edgeLabel)
	}

	n := &t.nodes[idx]
	if !n.split {
		current.Set("label", fmt.Sprint(n.Statistics))
		current.Set("shape", "box")
		return nil
	}
	current.Set("label", fmt.Sprintf("%v\n%v", n.Feature, n.Statistics))
	if err := t.recurrentDraw(g, t.LeftChild(idx), current, "no"); err != nil {
		return err
	}
	return t.recurrentDraw(g, t.RightChild(idx), current, "yes")
}

//DrawGraph builds a graphviz graph of the reached nodes. The caller closes both values.
func (t *Tree[I, O, F, S]) DrawGraph() (*graphviz.Graphviz, *cgraph.Graph, error) {
	if len(t.nodes) == 0 {
		return nil, nil, errors.Wrap(ErrOutOfRange, "tree is not initialized")
	}
	graphViz := graphviz.New()
	graph, err := graphViz.Graph()
	if err != nil {
		graphViz.Close()
		return nil, nil, err
	}
	if err := t.recurrentDraw(graph, 0, nil, ""); err != nil {
		graph.Close()
		graphViz.Close()
		return nil, nil, err
	}
	return graphViz, graph, nil
}

//RenderTrees writes one picture per tree named <prefix>_<index>.<figureType> into directory.
//figureType is one of png, svg, jpg.
func (f *Forest[I, O, F, S]) RenderTrees(prefix, figureType, directory string) ([]string, error) {
	format, ok := figureFormats[figureType]
	if !ok {
		return nil, invalidConfig("unknown figure type %q", figureType)
	}

	files := make([]string, 0, len(f.trees))
	for i, tree := range f.trees {
		filename := path.Join(directory, fmt.Sprintf("%s_%05d.%s", prefix, i, figureType))
		graphViz, graph, err := tree.DrawGraph()
		if err != nil {
			return files, errors.Wrapf(err, "tree %d", i)
		}
		err = graphViz.RenderFilename(graph, format, filename)
		graph.Close()
		graphViz.Close()
		if err != nil {
			return files, errors.Wrapf(err, "render %s", filename)
		}
		f.logger.Debug("tree rendered", zap.String("file", filename))
		files = append(files, filename)
	}
	return files, nil
}
