package rdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTrees(t *testing.T) {
	forest := trainedForest(t, 31, 2, 1)
	dir := t.TempDir()

	files, err := forest.RenderTrees("tree", "svg", dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "tree_00000.svg"), filepath.Join(dir, "tree_00001.svg")}, files)
	for _, name := range files {
		info, err := os.Stat(name)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}

	_, err = forest.RenderTrees("tree", "bmp", dir)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestDrawGraphUninitialized(t *testing.T) {
	var tree testTree
	_, _, err := tree.DrawGraph()
	assert.True(t, errors.Is(err, ErrOutOfRange))
}
