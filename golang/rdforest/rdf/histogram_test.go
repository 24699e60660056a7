package rdf

import (
	"bytes"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarstars/random_decision_forest/golang/rdforest/random"
)

const eps = 1e-12

func TestHistogramMerge(t *testing.T) {
	a := histogramOf(3, 1, 4, 2)
	b := histogramOf(3, 5, 0, 3)
	c := histogramOf(3, 2, 2, 7)

	ab := histogramOf(3, 1, 4, 2)
	ab.Merge(b)
	ba := histogramOf(3, 5, 0, 3)
	ba.Merge(a)
	assert.Equal(t, ab.Counts(), ba.Counts(), "commutative")
	assert.Equal(t, ab.N(), ba.N())

	left := histogramOf(3, 1, 4, 2)
	left.Merge(b)
	left.Merge(c)
	bc := histogramOf(3, 5, 0, 3)
	bc.Merge(c)
	right := histogramOf(3, 1, 4, 2)
	right.Merge(bc)
	assert.Equal(t, left.Counts(), right.Counts(), "associative")

	identity := histogramOf(3, 1, 4, 2)
	identity.Merge(NewHistogram(3))
	assert.Equal(t, a.Counts(), identity.Counts())
	assert.Equal(t, a.N(), identity.N())
	assert.InDelta(t, a.Entropy(), identity.Entropy(), eps)
}

func TestHistogramMergeMismatchPanics(t *testing.T) {
	assert.Panics(t, func() { NewHistogram(2).Merge(NewHistogram(3)) })
	assert.Panics(t, func() { NewHistogram(2).Increment(2) })
}

func TestHistogramEntropy(t *testing.T) {
	assert.InDelta(t, 0, histogramOf(4, 0, 0, 9, 0).Entropy(), eps)
	assert.InDelta(t, 0, NewHistogram(4).Entropy(), eps)
	for k := 1; k <= 8; k++ {
		counts := make([]int, k)
		for i := range counts {
			counts[i] = 3
		}
		assert.InDelta(t, math.Log2(float64(k)), histogramOf(k, counts...).Entropy(), 1e-9, "k=%d", k)
	}
}

func TestHistogramEntropyInvalidatedByIncrement(t *testing.T) {
	h := histogramOf(2, 2)
	assert.InDelta(t, 0, h.Entropy(), eps)
	h.Increment(1)
	h.Increment(1)
	assert.InDelta(t, 1, h.Entropy(), eps)
}

func TestHistogramMarshalLeavesCacheAlone(t *testing.T) {
	h := histogramOf(2, 3, 3)
	el, err := h.MarshalElement()
	require.NoError(t, err)
	entropy, err := el.FloatAttr("entropy")
	require.NoError(t, err)
	assert.InDelta(t, 1, entropy, eps)
	assert.Less(t, h.entropy, 0.0, "marshalling must not fill the cache")

	assert.InDelta(t, 1, h.Entropy(), eps)
	el, err = h.MarshalElement()
	require.NoError(t, err)
	entropy, err = el.FloatAttr("entropy")
	require.NoError(t, err)
	assert.InDelta(t, 1, entropy, eps)
}

func TestHistogramInformationGainNonNegative(t *testing.T) {
	rng := random.New(42)
	for trial := 0; trial < 500; trial++ {
		k := rng.Int(1, 6)
		left, right := NewHistogram(k), NewHistogram(k)
		for i := rng.Int(0, 50); i > 0; i-- {
			left.Increment(rng.Int(0, k-1))
		}
		for i := rng.Int(0, 50); i > 0; i-- {
			right.Increment(rng.Int(0, k-1))
		}
		parent := NewHistogram(k)
		parent.Merge(left)
		parent.Merge(right)
		if gain := parent.InformationGain(left, right); gain < -1e-9 {
			t.Fatalf("trial %d: gain %v for %v = %v + %v", trial, gain, parent, left, right)
		}
	}
}

func TestHistogramInformationGainPerfectSplit(t *testing.T) {
	parent := histogramOf(2, 5, 5)
	assert.InDelta(t, 1, parent.InformationGain(histogramOf(2, 5), histogramOf(2, 0, 5)), eps)
	assert.InDelta(t, 0, parent.InformationGain(histogramOf(2, 5, 5), NewHistogram(2)), eps)
	assert.Equal(t, 0.0, NewHistogram(2).InformationGain(NewHistogram(2), NewHistogram(2)))
}

func TestHistogramPredict(t *testing.T) {
	class, p, err := histogramOf(3, 1, 6, 3).Predict()
	require.NoError(t, err)
	assert.Equal(t, 1, class)
	assert.InDelta(t, 0.6, p, eps)

	class, p, err = histogramOf(3, 2, 0, 2).Predict()
	require.NoError(t, err)
	assert.Equal(t, 0, class, "ties go to the lowest class")
	assert.InDelta(t, 0.5, p, eps)

	_, _, err = NewHistogram(3).Predict()
	assert.True(t, errors.Is(err, ErrEmptyStatistics))
}

func TestHistogramProbabilityAndString(t *testing.T) {
	h := histogramOf(3, 1, 3)
	assert.InDelta(t, 0.25, h.Probability(0), eps)
	assert.InDelta(t, 0.75, h.Probability(1), eps)
	assert.Equal(t, 0.0, h.Probability(2))
	assert.Equal(t, 0.0, NewHistogram(3).Probability(1))
	assert.Equal(t, 3, h.NumClasses())
	assert.Equal(t, "4: { (0,1) (1,3) (2,0) }", h.String())
}

func TestHistogramFactory(t *testing.T) {
	_, err := HistogramFactory(0)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	newStats, err := HistogramFactory(5)
	require.NoError(t, err)
	assert.Equal(t, 5, newStats().NumClasses())
	assert.NotSame(t, newStats(), newStats())
}

func TestHistogramDocument(t *testing.T) {
	h := histogramOf(3, 2, 0, 7)
	el, err := h.MarshalElement()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteDocument(&buf, el))
	read, err := ReadDocument(&buf)
	require.NoError(t, err)

	restored, err := DecodeHistogram(read)
	require.NoError(t, err)
	assert.Equal(t, h.Counts(), restored.Counts())
	assert.Equal(t, h.N(), restored.N())
	assert.InDelta(t, h.Entropy(), restored.Entropy(), eps)
}

func TestDecodeHistogramErrors(t *testing.T) {
	build := func(n, size int, entries ...[2]int) *Element {
		counts := NewElement("histogram").SetIntAttr("size", size)
		for _, e := range entries {
			counts.AddChild(NewElement("class").SetIntAttr("index", e[0]).SetIntAttr("count", e[1]))
		}
		return NewElement("Histogram").SetIntAttr("n", n).SetFloatAttr("entropy", 0).AddChild(counts)
	}

	cases := map[string]*Element{
		"missing entry":    build(3, 3, [2]int{0, 1}, [2]int{1, 2}),
		"extra entry":      build(3, 1, [2]int{0, 1}, [2]int{0, 2}),
		"index too large":  build(3, 2, [2]int{0, 1}, [2]int{2, 2}),
		"negative count":   build(1, 2, [2]int{0, 2}, [2]int{1, -1}),
		"n mismatch":       build(4, 2, [2]int{0, 1}, [2]int{1, 2}),
		"zero size":        build(0, 0),
		"wrong name":       NewElement("Counts"),
		"no histogram":     NewElement("Histogram").SetIntAttr("n", 0).SetFloatAttr("entropy", 0),
		"unparsable count": NewElement("Histogram").SetAttr("n", "many").SetFloatAttr("entropy", 0),
	}
	for name, el := range cases {
		_, err := DecodeHistogram(el)
		assert.True(t, errors.Is(err, ErrFormat), "%s: %v", name, err)
	}

	h, err := DecodeHistogram(build(3, 2, [2]int{1, 2}, [2]int{0, 1}))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, h.Counts(), "entries may come in any order")
}
