package classify

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/tarstars/random_decision_forest/golang/rdforest/rdf"
)

var validate = validator.New()

//Sampler draws features uniformly inside the bounding box of the training inputs.
//With probability ObliqueProbability a feature is a projection on normally distributed
//weights through a uniform point of the box, otherwise a threshold on a uniform coordinate.
type Sampler struct {
	Lower              []float64 `validate:"required,min=1"`
	Upper              []float64 `validate:"required,min=1"`
	ObliqueProbability float64   `validate:"min=0,max=1"`
}

//NewSampler takes the per-coordinate bounds from the data.
func NewSampler(data Dataset, obliqueProbability float64) (*Sampler, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(rdf.ErrInvalidConfig, "sampler over empty data")
	}
	dims := len(data[0].Input)
	if dims == 0 {
		return nil, errors.Wrap(rdf.ErrInvalidConfig, "sampler over zero-dimensional inputs")
	}
	lower, upper := make([]float64, dims), make([]float64, dims)
	column := make([]float64, len(data))
	for d := 0; d < dims; d++ {
		for i, p := range data {
			column[i] = p.Input[d]
		}
		lower[d], upper[d] = floats.Min(column), floats.Max(column)
	}

	s := &Sampler{Lower: lower, Upper: upper, ObliqueProbability: obliqueProbability}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

//Validate checks the bounds and the oblique probability.
func (s *Sampler) Validate() error {
	if len(s.Lower) != len(s.Upper) {
		return errors.Wrapf(rdf.ErrInvalidConfig, "sampler bounds of %d and %d coordinates", len(s.Lower), len(s.Upper))
	}
	if err := validate.Struct(s); err != nil {
		return errors.Wrapf(rdf.ErrInvalidConfig, "sampler: %v", err)
	}
	return nil
}

//Dims is the input dimension the sampler draws for.
func (s *Sampler) Dims() int {
	return len(s.Lower)
}

//Sample draws n independent features.
func (s *Sampler) Sample(rng rdf.Rand, n int) []Feature {
	result := make([]Feature, n)
	for i := range result {
		if rng.Bool(s.ObliqueProbability) {
			result[i] = s.oblique(rng)
		} else {
			dim := rng.Int(0, s.Dims()-1)
			result[i] = Feature{Dim: dim, Threshold: rng.Float(s.Lower[dim], s.Upper[dim])}
		}
	}
	return result
}

func (s *Sampler) oblique(rng rdf.Rand) Feature {
	weights := make([]float64, s.Dims())
	point := make([]float64, s.Dims())
	for d := range weights {
		weights[d] = rng.Normal(0, 1)
		point[d] = rng.Float(s.Lower[d], s.Upper[d])
	}
	return Feature{Weights: weights, Threshold: floats.Dot(weights, point)}
}

//FixedSampler hands out its features in order, cycling when more are requested.
type FixedSampler struct {
	Features []Feature
}

//Sample ignores rng.
func (s FixedSampler) Sample(_ rdf.Rand, n int) []Feature {
	if len(s.Features) == 0 {
		return nil
	}
	result := make([]Feature, n)
	for i := range result {
		result[i] = s.Features[i%len(s.Features)]
	}
	return result
}
