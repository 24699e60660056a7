package rdf

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementAttributes(t *testing.T) {
	el := NewElement("Node").SetIntAttr("depth", 3).SetFloatAttr("threshold", 0.1).SetAttr("name", "a")
	el.SetIntAttr("depth", 4)

	depth, err := el.IntAttr("depth")
	require.NoError(t, err)
	assert.Equal(t, 4, depth)
	threshold, err := el.FloatAttr("threshold")
	require.NoError(t, err)
	assert.Equal(t, 0.1, threshold)
	assert.Len(t, el.Attrs, 3)

	_, err = el.IntAttr("missing")
	assert.True(t, errors.Is(err, ErrFormat))
	_, err = el.IntAttr("name")
	assert.True(t, errors.Is(err, ErrFormat))
	_, err = el.FloatAttr("name")
	assert.True(t, errors.Is(err, ErrFormat))
}

func TestElementDocument(t *testing.T) {
	root := NewElement("Forest")
	root.AddChild(NewElement("Tree").SetIntAttr("maxdepth", 2).AddChild(NewElement("Node")))
	root.AddChild(NewElement("Tree").SetAttr("note", `a<b & "c"`))

	var buf bytes.Buffer
	require.NoError(t, WriteDocument(&buf, root))
	read, err := ReadDocument(&buf)
	require.NoError(t, err)

	assert.Equal(t, root, read)
	assert.Nil(t, read.ChildByName("Node"))
	assert.Same(t, read.Children[0], read.ChildByName("Tree"))
}

func TestReadDocumentIgnoresText(t *testing.T) {
	read, err := ReadDocument(strings.NewReader("<a x=\"1\">\n  text <b/> more\n</a>"))
	require.NoError(t, err)
	assert.Equal(t, &Element{Name: "a", Attrs: []Attr{{Name: "x", Value: "1"}}, Children: []*Element{{Name: "b"}}}, read)
}

func TestReadDocumentMalformed(t *testing.T) {
	_, err := ReadDocument(strings.NewReader("<a><b></a>"))
	assert.True(t, errors.Is(err, ErrFormat))
	_, err = ReadDocument(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrFormat))
}
