package rdf

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

const (
	histogramElement = "Histogram"
	countsElement    = "histogram"
	classElement     = "class"
)

//Histogram counts class labels 0..NumClasses()-1. The entropy is cached and
//recomputed lazily after any count changes.
type Histogram struct {
	counts  []int
	n       int
	entropy float64 // negative when stale
}

//NewHistogram creates an empty histogram over numClasses classes.
func NewHistogram(numClasses int) *Histogram {
	return &Histogram{counts: make([]int, numClasses), entropy: -1}
}

//HistogramFactory returns a constructor of empty histograms to be shared by trainers and forests.
func HistogramFactory(numClasses int) (func() *Histogram, error) {
	if numClasses <= 0 {
		return nil, invalidConfig("histogram needs at least one class, got %d", numClasses)
	}
	return func() *Histogram { return NewHistogram(numClasses) }, nil
}

//Increment counts one label.
func (h *Histogram) Increment(class int) {
	if class < 0 || class >= len(h.counts) {
		panic(fmt.Sprintf("class %d outside of histogram with %d classes", class, len(h.counts)))
	}
	h.counts[class]++
	h.n++
	h.entropy = -1
}

//Merge adds the counts of other.
func (h *Histogram) Merge(other *Histogram) {
	if len(other.counts) != len(h.counts) {
		panic(fmt.Sprintf("merge of histograms with %d and %d classes", len(h.counts), len(other.counts)))
	}
	for i, c := range other.counts {
		h.counts[i] += c
	}
	h.n += other.n
	h.entropy = -1
}

//Predict returns the most frequent class with its probability. Ties go to the lowest class.
func (h *Histogram) Predict() (int, float64, error) {
	if h.n == 0 {
		return 0, 0, errors.WithStack(ErrEmptyStatistics)
	}
	best := 0
	for i, c := range h.counts {
		if c > h.counts[best] {
			best = i
		}
	}
	return best, float64(h.counts[best]) / float64(h.n), nil
}

//InformationGain is the entropy of the receiver minus the weighted entropies of left and right.
func (h *Histogram) InformationGain(left, right *Histogram) float64 {
	if h.n == 0 {
		return 0
	}
	fraction := float64(left.n) / float64(h.n)
	return h.Entropy() - (fraction*left.Entropy() + (1-fraction)*right.Entropy())
}

//Entropy in bits.
func (h *Histogram) Entropy() float64 {
	if h.entropy < 0 {
		h.entropy = h.computeEntropy()
	}
	return h.entropy
}

//computeEntropy reads the cache but never writes it.
func (h *Histogram) computeEntropy() float64 {
	if h.entropy >= 0 {
		return h.entropy
	}
	if h.n == 0 {
		return 0
	}
	p := make([]float64, len(h.counts))
	for i, c := range h.counts {
		p[i] = float64(c) / float64(h.n)
	}
	return stat.Entropy(p) / math.Ln2
}

//Probability of a class, 0 for an empty histogram.
func (h *Histogram) Probability(class int) float64 {
	if h.n == 0 || h.counts[class] == 0 {
		return 0
	}
	return float64(h.counts[class]) / float64(h.n)
}

//N is the number of labels counted.
func (h *Histogram) N() int {
	return h.n
}

//NumClasses is the number of histogram bins.
func (h *Histogram) NumClasses() int {
	return len(h.counts)
}

//Counts returns a copy of the bins.
func (h *Histogram) Counts() []int {
	return append([]int(nil), h.counts...)
}

func (h *Histogram) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d: { ", h.n))
	for c, v := range h.counts {
		sb.WriteString(fmt.Sprintf("(%d,%d) ", c, v))
	}
	sb.WriteString("}")
	return sb.String()
}

//MarshalElement stores n, the entropy and an (index, count) entry per class.
func (h *Histogram) MarshalElement() (*Element, error) {
	el := NewElement(histogramElement)
	el.SetIntAttr("n", h.n)
	el.SetFloatAttr("entropy", h.computeEntropy())

	counts := NewElement(countsElement).SetIntAttr("size", len(h.counts))
	for i, c := range h.counts {
		counts.AddChild(NewElement(classElement).SetIntAttr("index", i).SetIntAttr("count", c))
	}
	el.AddChild(counts)
	return el, nil
}

//DecodeHistogram restores a histogram written by MarshalElement. The declared size of the
//histogram element sets the number of classes.
func DecodeHistogram(el *Element) (*Histogram, error) {
	if el.Name != histogramElement {
		return nil, formatError("expected <%s>, got <%s>", histogramElement, el.Name)
	}
	n, err := el.IntAttr("n")
	if err != nil {
		return nil, err
	}
	entropy, err := el.FloatAttr("entropy")
	if err != nil {
		return nil, err
	}
	countsEl := el.ChildByName(countsElement)
	if countsEl == nil {
		return nil, formatError("<%s> has no <%s> child", histogramElement, countsElement)
	}
	size, err := countsEl.IntAttr("size")
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, formatError("histogram size %d", size)
	}

	h := NewHistogram(size)
	entries, total := 0, 0
	for _, entry := range countsEl.Children {
		if entry.Name != classElement {
			continue
		}
		idx, err := entry.IntAttr("index")
		if err != nil {
			return nil, err
		}
		count, err := entry.IntAttr("count")
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= size {
			return nil, formatError("class index %d outside of histogram size %d", idx, size)
		}
		if count < 0 {
			return nil, formatError("negative count %d for class %d", count, idx)
		}
		h.counts[idx] = count
		total += count
		entries++
	}
	if entries != size {
		return nil, formatError("histogram declares %d classes but lists %d", size, entries)
	}
	if total != n {
		return nil, formatError("histogram declares n=%d but counts sum to %d", n, total)
	}
	h.n = n
	h.entropy = entropy
	return h, nil
}
