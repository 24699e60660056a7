package classify

import (
	"math"
	"os"

	"github.com/pkg/errors"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/tarstars/random_decision_forest/golang/rdforest/rdf"
)

//Point is a labelled input vector.
type Point = rdf.DataPoint[[]float64, int]

//Dataset is the training set shared read-only by all tree trainers.
type Dataset []Point

//ReadNpy reads a one or two dimensional npy array as a matrix. One dimensional arrays become columns.
func ReadNpy(fileName string) (denseMat *mat.Dense, err error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read npy header of %s", fileName)
	}

	denseMat = &mat.Dense{}
	if err := r.Read(denseMat); err != nil {
		return nil, errors.Wrapf(err, "read npy data of %s", fileName)
	}
	return denseMat, nil
}

//SaveNpy writes a matrix to an npy file.
func SaveNpy(fileName string, m *mat.Dense) (err error) {
	dest, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := dest.Close(); err == nil {
			err = closeErr
		}
	}()
	return errors.Wrapf(npyio.Write(dest, m), "write %s", fileName)
}

//NewDataset pairs each input row with its label. Labels must be non-negative integers;
//the number of classes is the largest label plus one.
func NewDataset(inputs mat.Matrix, labels []float64) (Dataset, int, error) {
	rows, cols := inputs.Dims()
	if rows == 0 || cols == 0 {
		return nil, 0, errors.Wrapf(rdf.ErrInvalidConfig, "empty input matrix %dx%d", rows, cols)
	}
	if rows != len(labels) {
		return nil, 0, errors.Wrapf(rdf.ErrInvalidConfig, "%d input rows but %d labels", rows, len(labels))
	}

	data := make(Dataset, rows)
	numClasses := 0
	for i := range data {
		label := labels[i]
		if label < 0 || label != math.Trunc(label) {
			return nil, 0, errors.Wrapf(rdf.ErrInvalidConfig, "label %v of row %d is not a class index", label, i)
		}
		data[i] = Point{Input: mat.Row(nil, i, inputs), Output: int(label)}
		numClasses = max(numClasses, int(label)+1)
	}
	return data, numClasses, nil
}

//labelVector flattens an n x 1 or 1 x n matrix.
func labelVector(m *mat.Dense) ([]float64, error) {
	rows, cols := m.Dims()
	switch {
	case cols == 1:
		return mat.Col(nil, 0, m), nil
	case rows == 1:
		return mat.Row(nil, 0, m), nil
	default:
		return nil, errors.Wrapf(rdf.ErrInvalidConfig, "labels must be a vector, got %dx%d", rows, cols)
	}
}

//LoadNpy reads the inputs matrix and the label vector and builds a dataset.
func LoadNpy(inputsFile, labelsFile string) (Dataset, int, error) {
	inputs, err := ReadNpy(inputsFile)
	if err != nil {
		return nil, 0, err
	}
	labelsMat, err := ReadNpy(labelsFile)
	if err != nil {
		return nil, 0, err
	}
	labels, err := labelVector(labelsMat)
	if err != nil {
		return nil, 0, err
	}
	return NewDataset(inputs, labels)
}

//Inputs stacks the input vectors into a matrix.
func (d Dataset) Inputs() *mat.Dense {
	if len(d) == 0 {
		return &mat.Dense{}
	}
	m := mat.NewDense(len(d), len(d[0].Input), nil)
	for i, p := range d {
		m.SetRow(i, p.Input)
	}
	return m
}

//Labels returns the class of every point.
func (d Dataset) Labels() []int {
	labels := make([]int, len(d))
	for i, p := range d {
		labels[i] = p.Output
	}
	return labels
}
