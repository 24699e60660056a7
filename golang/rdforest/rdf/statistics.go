package rdf

//Feature is a binary test over an input sample. True routes the sample to the right child.
type Feature[I any] interface {
	Test(input I) bool
	ElementMarshaler
}

//FeatureSampler draws a batch of candidate features. The trainer hands it a private
//generator, so an implementation holds no mutable state of its own.
type FeatureSampler[F any] interface {
	Sample(rng Rand, n int) []F
}

//Rand is the subset of random.Generator a sampler uses.
type Rand interface {
	Int(min, max int) int
	Float(min, max float64) float64
	Normal(mean, std float64) float64
	Bool(p float64) bool
}

//Statistics is an aggregate of output labels kept at every node.
//S is the implementing type itself, normally a pointer.
type Statistics[O any, S any] interface {
	//Increment counts one more output label.
	Increment(output O)
	//Merge adds all counts of other to the receiver.
	Merge(other S)
	//Predict returns the mode with its empirical probability.
	Predict() (O, float64, error)
	//InformationGain scores the split of the receiver into left and right.
	InformationGain(left, right S) float64
	//N is the number of labels counted.
	N() int
	ElementMarshaler
}

//DataPoint is a training sample: an input and its label.
type DataPoint[I any, O any] struct {
	Input  I
	Output O
}

//Codec restores features and statistics from model documents.
//NewStatistics creates the empty aggregates split nodes are rebuilt into; when nil,
//a forest falls back to its own constructor.
type Codec[F any, S any] struct {
	DecodeFeature    func(*Element) (F, error)
	DecodeStatistics func(*Element) (S, error)
	NewStatistics    func() S
}
