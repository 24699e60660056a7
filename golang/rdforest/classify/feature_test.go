package classify

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarstars/random_decision_forest/golang/rdforest/rdf"
)

func TestFeatureTest(t *testing.T) {
	axis := Feature{Dim: 1, Threshold: 0.5}
	assert.False(t, axis.IsOblique())
	assert.True(t, axis.Test([]float64{0, 0.5}))
	assert.False(t, axis.Test([]float64{9, 0.4}))

	oblique := Feature{Weights: []float64{1, -1}, Threshold: 0}
	assert.True(t, oblique.IsOblique())
	assert.True(t, oblique.Test([]float64{2, 1}))
	assert.True(t, oblique.Test([]float64{1, 1}))
	assert.False(t, oblique.Test([]float64{1, 2}))

	assert.Equal(t, "x[1] >= 0.5", axis.String())
	assert.Equal(t, "w.x >= 0", oblique.String())
}

func TestFeatureElementRoundTrip(t *testing.T) {
	for _, f := range []Feature{
		{Dim: 3, Threshold: -1.25},
		{Weights: []float64{0.1, -2.5e-7, 3}, Threshold: 0.3333333333333333},
	} {
		el, err := f.MarshalElement()
		require.NoError(t, err)
		decoded, err := DecodeFeature(el)
		require.NoError(t, err)
		assert.Equal(t, f, decoded)
	}
}

func TestDecodeFeatureErrors(t *testing.T) {
	cases := map[string]*rdf.Element{
		"name":          rdf.NewElement("Axis"),
		"no dim":        rdf.NewElement("Feature").SetFloatAttr("threshold", 1),
		"negative dim":  rdf.NewElement("Feature").SetIntAttr("dim", -1).SetFloatAttr("threshold", 1),
		"no threshold":  rdf.NewElement("Feature").SetIntAttr("dim", 0),
		"bad weights":   rdf.NewElement("Feature").SetIntAttr("dim", 0).SetFloatAttr("threshold", 1).SetAttr("weights", "1 x"),
		"bad threshold": rdf.NewElement("Feature").SetIntAttr("dim", 0).SetAttr("threshold", "high"),
	}
	for name, el := range cases {
		_, err := DecodeFeature(el)
		assert.True(t, errors.Is(err, rdf.ErrFormat), "%s: %v", name, err)
	}
}
