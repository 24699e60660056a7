package rdf

import (
	"fmt"

	"github.com/tarstars/random_decision_forest/golang/rdforest/random"
)

type axisFeature struct {
	dim       int
	threshold float64
}

func (f axisFeature) Test(x []float64) bool {
	return x[f.dim] >= f.threshold
}

func (f axisFeature) String() string {
	return fmt.Sprintf("x[%d] >= %g", f.dim, f.threshold)
}

func (f axisFeature) MarshalElement() (*Element, error) {
	return NewElement("Axis").SetIntAttr("dim", f.dim).SetFloatAttr("threshold", f.threshold), nil
}

func decodeAxisFeature(el *Element) (axisFeature, error) {
	if el.Name != "Axis" {
		return axisFeature{}, formatError("expected <Axis>, got <%s>", el.Name)
	}
	dim, err := el.IntAttr("dim")
	if err != nil {
		return axisFeature{}, err
	}
	threshold, err := el.FloatAttr("threshold")
	if err != nil {
		return axisFeature{}, err
	}
	return axisFeature{dim: dim, threshold: threshold}, nil
}

//listSampler returns its features cycled to the requested count.
type listSampler []axisFeature

func (s listSampler) Sample(_ Rand, n int) []axisFeature {
	if len(s) == 0 {
		return nil
	}
	result := make([]axisFeature, n)
	for i := range result {
		result[i] = s[i%len(s)]
	}
	return result
}

type uniformSampler struct {
	dims     int
	min, max float64
}

func (s uniformSampler) Sample(rng Rand, n int) []axisFeature {
	result := make([]axisFeature, n)
	for i := range result {
		result[i] = axisFeature{dim: rng.Int(0, s.dims-1), threshold: rng.Float(s.min, s.max)}
	}
	return result
}

type (
	testTree   = Tree[[]float64, int, axisFeature, *Histogram]
	testForest = Forest[[]float64, int, axisFeature, *Histogram]
	testPoint  = DataPoint[[]float64, int]
)

func twoClasses() func() *Histogram {
	return func() *Histogram { return NewHistogram(2) }
}

func testCodec() Codec[axisFeature, *Histogram] {
	return Codec[axisFeature, *Histogram]{
		DecodeFeature:    decodeAxisFeature,
		DecodeStatistics: DecodeHistogram,
		NewStatistics:    twoClasses(),
	}
}

//separablePoints puts class 0 at x0 in {0, 1} and class 1 at x0 in {2, 3}.
func separablePoints() []testPoint {
	return []testPoint{
		{Input: []float64{0, 5}, Output: 0},
		{Input: []float64{1, 3}, Output: 0},
		{Input: []float64{2, 4}, Output: 1},
		{Input: []float64{3, 2}, Output: 1},
	}
}

//noisyPoints draws n points in the unit square labelled by the diagonal, with 10% of labels flipped.
func noisyPoints(n int, seed uint64) []testPoint {
	rng := random.New(seed)
	points := make([]testPoint, n)
	for i := range points {
		x := []float64{rng.Float(0, 1), rng.Float(0, 1)}
		label := 0
		if x[0]+x[1] > 1 {
			label = 1
		}
		if rng.Bool(0.1) {
			label = 1 - label
		}
		points[i] = testPoint{Input: x, Output: label}
	}
	return points
}

func histogramOf(numClasses int, counts ...int) *Histogram {
	h := NewHistogram(numClasses)
	for class, c := range counts {
		for i := 0; i < c; i++ {
			h.Increment(class)
		}
	}
	return h
}
