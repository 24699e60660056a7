package classify

import (
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/tarstars/random_decision_forest/golang/rdforest/rdf"
)

func TestNewDataset(t *testing.T) {
	inputs := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	data, numClasses, err := NewDataset(inputs, []float64{0, 3, 1})
	require.NoError(t, err)
	assert.Equal(t, 4, numClasses)
	assert.Equal(t, []float64{3, 4}, data[1].Input)
	assert.Equal(t, []int{0, 3, 1}, data.Labels())
	assert.True(t, mat.Equal(inputs, data.Inputs()))

	data[0].Input[0] = 100
	assert.Equal(t, 1.0, inputs.At(0, 0), "rows are copied")
}

func TestNewDatasetErrors(t *testing.T) {
	inputs := mat.NewDense(2, 1, []float64{1, 2})
	for name, labels := range map[string][]float64{
		"count":      {0},
		"negative":   {0, -1},
		"fractional": {0, 1.5},
	} {
		_, _, err := NewDataset(inputs, labels)
		assert.True(t, errors.Is(err, rdf.ErrInvalidConfig), name)
	}
	_, _, err := NewDataset(&mat.Dense{}, nil)
	assert.True(t, errors.Is(err, rdf.ErrInvalidConfig))
}

func TestNpyRoundTrip(t *testing.T) {
	dir := t.TempDir()
	inputs := mat.NewDense(4, 2, []float64{0, 0, 1, 0, 0, 1, 1, 1})
	labels := mat.NewDense(4, 1, []float64{0, 1, 1, 2})
	require.NoError(t, SaveNpy(filepath.Join(dir, "x.npy"), inputs))
	require.NoError(t, SaveNpy(filepath.Join(dir, "y.npy"), labels))

	read, err := ReadNpy(filepath.Join(dir, "x.npy"))
	require.NoError(t, err)
	assert.True(t, mat.Equal(inputs, read))

	data, numClasses, err := LoadNpy(filepath.Join(dir, "x.npy"), filepath.Join(dir, "y.npy"))
	require.NoError(t, err)
	assert.Equal(t, 3, numClasses)
	assert.Equal(t, []int{0, 1, 1, 2}, data.Labels())

	_, _, err = LoadNpy(filepath.Join(dir, "x.npy"), filepath.Join(dir, "x.npy"))
	assert.True(t, errors.Is(err, rdf.ErrInvalidConfig), "a matrix is not a label vector")

	_, err = ReadNpy(filepath.Join(dir, "missing.npy"))
	assert.Error(t, err)
}
