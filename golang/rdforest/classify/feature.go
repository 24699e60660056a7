//Package classify binds the generic forest to numeric feature vectors and integer class labels.
package classify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/tarstars/random_decision_forest/golang/rdforest/rdf"
)

const featureElement = "Feature"

//Feature is a threshold test on one coordinate, or on a projection when Weights is set.
//A sample goes right when the tested value is at least Threshold.
type Feature struct {
	Dim       int
	Weights   []float64
	Threshold float64
}

//IsOblique reports whether the feature tests a projection.
func (f Feature) IsOblique() bool {
	return len(f.Weights) > 0
}

//Test applies the feature to a sample.
func (f Feature) Test(x []float64) bool {
	if f.IsOblique() {
		return floats.Dot(f.Weights, x) >= f.Threshold
	}
	return x[f.Dim] >= f.Threshold
}

//width is the number of input coordinates the feature reads.
func (f Feature) width() int {
	if f.IsOblique() {
		return len(f.Weights)
	}
	return f.Dim + 1
}

func (f Feature) String() string {
	if f.IsOblique() {
		return fmt.Sprintf("w.x >= %.4g", f.Threshold)
	}
	return fmt.Sprintf("x[%d] >= %.4g", f.Dim, f.Threshold)
}

//MarshalElement stores the feature as attributes.
func (f Feature) MarshalElement() (*rdf.Element, error) {
	el := rdf.NewElement(featureElement).SetIntAttr("dim", f.Dim).SetFloatAttr("threshold", f.Threshold)
	if f.IsOblique() {
		weights := make([]string, len(f.Weights))
		for i, w := range f.Weights {
			weights[i] = strconv.FormatFloat(w, 'g', -1, 64)
		}
		el.SetAttr("weights", strings.Join(weights, " "))
	}
	return el, nil
}

//DecodeFeature restores a feature written by MarshalElement.
func DecodeFeature(el *rdf.Element) (Feature, error) {
	if el.Name != featureElement {
		return Feature{}, errors.Wrapf(rdf.ErrFormat, "expected <%s>, got <%s>", featureElement, el.Name)
	}
	dim, err := el.IntAttr("dim")
	if err != nil {
		return Feature{}, err
	}
	if dim < 0 {
		return Feature{}, errors.Wrapf(rdf.ErrFormat, "negative feature dimension %d", dim)
	}
	threshold, err := el.FloatAttr("threshold")
	if err != nil {
		return Feature{}, err
	}
	f := Feature{Dim: dim, Threshold: threshold}

	if s, ok := el.Attr("weights"); ok {
		for _, field := range strings.Fields(s) {
			w, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return Feature{}, errors.Wrapf(rdf.ErrFormat, "feature weight %q", field)
			}
			f.Weights = append(f.Weights, w)
		}
	}
	return f, nil
}
