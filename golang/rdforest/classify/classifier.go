package classify

import (
	"io"
	"runtime"

	"github.com/pkg/errors"
	"github.com/sourcegraph/conc/iter"
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"

	"github.com/tarstars/random_decision_forest/golang/rdforest/rdf"
)

const inputsAttr = "inputs"

//Forest is the forest over numeric inputs and class labels.
type Forest = rdf.Forest[[]float64, int, Feature, *rdf.Histogram]

//Tree is one tree of a Forest.
type Tree = rdf.Tree[[]float64, int, Feature, *rdf.Histogram]

//Classifier predicts class labels with a forest of class histograms.
type Classifier struct {
	forest     *Forest
	numClasses int
	inputs     int
	workers    int
}

//NewClassifier creates a classifier without trees.
func NewClassifier(numClasses int, opts ...rdf.Option) (*Classifier, error) {
	newStats, err := rdf.HistogramFactory(numClasses)
	if err != nil {
		return nil, err
	}
	return &Classifier{
		forest:     rdf.NewForest[[]float64, int, Feature, *rdf.Histogram](newStats, opts...),
		numClasses: numClasses,
		workers:    runtime.GOMAXPROCS(0),
	}, nil
}

//Codec decodes features and histograms of numClasses classes.
func Codec(numClasses int) rdf.Codec[Feature, *rdf.Histogram] {
	return rdf.Codec[Feature, *rdf.Histogram]{
		DecodeFeature:    DecodeFeature,
		DecodeStatistics: DecodeHistogram(numClasses),
		NewStatistics:    func() *rdf.Histogram { return rdf.NewHistogram(numClasses) },
	}
}

//DecodeHistogram decodes a histogram and checks its number of classes.
func DecodeHistogram(numClasses int) func(*rdf.Element) (*rdf.Histogram, error) {
	return func(el *rdf.Element) (*rdf.Histogram, error) {
		h, err := rdf.DecodeHistogram(el)
		if err != nil {
			return nil, err
		}
		if h.NumClasses() != numClasses {
			return nil, errors.Wrapf(rdf.ErrFormat, "histogram of %d classes in a model of %d", h.NumClasses(), numClasses)
		}
		return h, nil
	}
}

//numClassesOf finds the size of the first histogram in a model document.
func numClassesOf(el *rdf.Element) (int, bool, error) {
	if el.Name == "histogram" {
		size, err := el.IntAttr("size")
		return size, true, err
	}
	for _, child := range el.Children {
		if size, found, err := numClassesOf(child); found || err != nil {
			return size, found, err
		}
	}
	return 0, false, nil
}

//LoadClassifier reads a model written by Save. The number of classes is taken from the document.
func LoadClassifier(r io.Reader, opts ...rdf.Option) (*Classifier, error) {
	el, err := rdf.ReadDocument(r)
	if err != nil {
		return nil, err
	}
	numClasses, found, err := numClassesOf(el)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Wrap(rdf.ErrFormat, "model has no trees")
	}
	c, err := NewClassifier(numClasses, opts...)
	if err != nil {
		return nil, errors.Wrap(rdf.ErrFormat, err.Error())
	}

	var widest, oblique int
	codec := Codec(numClasses)
	codec.DecodeFeature = func(featureEl *rdf.Element) (Feature, error) {
		f, err := DecodeFeature(featureEl)
		if err != nil {
			return Feature{}, err
		}
		if f.IsOblique() {
			if oblique != 0 && oblique != len(f.Weights) {
				return Feature{}, errors.Wrapf(rdf.ErrFormat, "projections over %d and %d inputs", oblique, len(f.Weights))
			}
			oblique = len(f.Weights)
		}
		widest = max(widest, f.width())
		return f, nil
	}
	if err := c.forest.UnmarshalElement(el, codec); err != nil {
		return nil, err
	}

	c.inputs = widest
	if _, ok := el.Attr(inputsAttr); ok {
		if c.inputs, err = el.IntAttr(inputsAttr); err != nil {
			return nil, err
		}
		if c.inputs < widest {
			return nil, errors.Wrapf(rdf.ErrFormat, "features read %d inputs of a model of %d", widest, c.inputs)
		}
	}
	if oblique != 0 && oblique != c.inputs {
		return nil, errors.Wrapf(rdf.ErrFormat, "projections over %d inputs in a model of %d", oblique, c.inputs)
	}
	return c, nil
}

//Save writes the model as an XML document.
func (c *Classifier) Save(w io.Writer) error {
	el, err := c.forest.MarshalElement()
	if err != nil {
		return err
	}
	if c.inputs > 0 {
		el.SetIntAttr(inputsAttr, c.inputs)
	}
	return rdf.WriteDocument(w, el)
}

//Forest exposes the underlying ensemble.
func (c *Classifier) Forest() *Forest {
	return c.forest
}

//NumClasses of the labels.
func (c *Classifier) NumClasses() int {
	return c.numClasses
}

//Inputs is the width of the input vectors, 0 until the classifier is trained or loaded.
//A model saved without it takes the widest input its features read.
func (c *Classifier) Inputs() int {
	return c.inputs
}

func (c *Classifier) checkInputs(width int) error {
	if c.inputs != 0 && width != c.inputs {
		return errors.Wrapf(rdf.ErrInvalidConfig, "inputs of %d coordinates for a model of %d", width, c.inputs)
	}
	return nil
}

func (c *Classifier) checkDataset(data Dataset) error {
	for i, p := range data {
		if err := c.checkInputs(len(p.Input)); err != nil {
			return errors.Wrapf(err, "point %d", i)
		}
	}
	return nil
}

//Train grows params.Trees more trees on data.
//All points must have the width of the first one, and of the trees already in the model.
func (c *Classifier) Train(data Dataset, params rdf.TrainingParameters, sampler rdf.FeatureSampler[Feature], threads int, showProgress bool) error {
	width := 0
	if len(data) > 0 {
		width = len(data[0].Input)
	}
	for i, p := range data {
		if len(p.Input) != width {
			return errors.Wrapf(rdf.ErrInvalidConfig, "point %d has %d coordinates, point 0 has %d", i, len(p.Input), width)
		}
		if p.Output < 0 || p.Output >= c.numClasses {
			return errors.Wrapf(rdf.ErrInvalidConfig, "label %d of point %d outside of %d classes", p.Output, i, c.numClasses)
		}
	}
	if err := c.checkInputs(width); err != nil {
		return err
	}
	if err := c.forest.EnqueueTreeTraining(data, params, sampler, 0); err != nil {
		return err
	}
	c.inputs = width
	return c.forest.Train(threads, showProgress)
}

//Predict returns the mode of the merged leaf histograms and its probability.
func (c *Classifier) Predict(x []float64) (int, float64, error) {
	if err := c.checkInputs(len(x)); err != nil {
		return 0, 0, err
	}
	return c.forest.Evaluate(x).Predict()
}

func (c *Classifier) rows(inputs mat.Matrix) ([][]float64, error) {
	rows, cols := inputs.Dims()
	if err := c.checkInputs(cols); err != nil {
		return nil, err
	}
	result := make([][]float64, rows)
	for i := range result {
		result[i] = mat.Row(nil, i, inputs)
	}
	return result, nil
}

//PredictProba returns, for every input row, the class distribution of the merged leaf histograms.
//Rows are evaluated concurrently.
func (c *Classifier) PredictProba(inputs mat.Matrix) (*mat.Dense, error) {
	rows, err := c.rows(inputs)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &mat.Dense{}, nil
	}
	result := mat.NewDense(len(rows), c.numClasses, nil)
	iter.Iterator[[]float64]{MaxGoroutines: c.workers}.ForEachIdx(rows, func(i int, x *[]float64) {
		h := c.forest.Evaluate(*x)
		for k := 0; k < c.numClasses; k++ {
			result.Set(i, k, h.Probability(k))
		}
	})
	return result, nil
}

//TreeProbabilities returns the class distribution of every tree's leaf as a rows x trees x classes tensor.
func (c *Classifier) TreeProbabilities(inputs mat.Matrix) (*tensor.Dense, error) {
	rows, err := c.rows(inputs)
	if err != nil {
		return nil, err
	}
	trees := c.forest.NumTrees()
	if len(rows) == 0 || trees == 0 {
		return nil, errors.Wrapf(rdf.ErrInvalidConfig, "%d rows and %d trees", len(rows), trees)
	}

	result := tensor.New(tensor.WithShape(len(rows), trees, c.numClasses), tensor.Of(tensor.Float64))
	for i, x := range rows {
		for t, h := range c.forest.EvaluateEach(x) {
			for k := 0; k < c.numClasses; k++ {
				if err := result.SetAt(h.Probability(k), i, t, k); err != nil {
					return nil, err
				}
			}
		}
	}
	return result, nil
}

//Accuracy is the share of points whose label is predicted by the first trees of the forest.
//Points whose merged histogram is empty count as misclassified.
func (c *Classifier) Accuracy(data Dataset, trees int) (float64, error) {
	if len(data) == 0 {
		return 0, errors.Wrap(rdf.ErrInvalidConfig, "accuracy over empty data")
	}
	if err := c.checkDataset(data); err != nil {
		return 0, err
	}
	hits := iter.Mapper[Point, bool]{MaxGoroutines: c.workers}.Map(data, func(p *Point) bool {
		class, _, err := c.forest.EvaluateFirst(p.Input, trees).Predict()
		return err == nil && class == p.Output
	})
	correct := 0
	for _, hit := range hits {
		if hit {
			correct++
		}
	}
	return float64(correct) / float64(len(data)), nil
}

//LearningCurve returns the accuracy of the first k trees for k = 1..NumTrees.
func (c *Classifier) LearningCurve(data Dataset) ([]float64, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(rdf.ErrInvalidConfig, "learning curve over empty data")
	}
	if err := c.checkDataset(data); err != nil {
		return nil, err
	}
	trees := c.forest.Trees()
	hits := iter.Mapper[Point, []bool]{MaxGoroutines: c.workers}.Map(data, func(p *Point) []bool {
		merged := rdf.NewHistogram(c.numClasses)
		result := make([]bool, len(trees))
		for k, tree := range trees {
			merged.Merge(tree.Evaluate(p.Input))
			class, _, err := merged.Predict()
			result[k] = err == nil && class == p.Output
		}
		return result
	})

	curve := make([]float64, len(trees))
	for _, pointHits := range hits {
		for k, hit := range pointHits {
			if hit {
				curve[k]++
			}
		}
	}
	for k := range curve {
		curve[k] /= float64(len(data))
	}
	return curve, nil
}
