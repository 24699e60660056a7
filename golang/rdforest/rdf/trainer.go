package rdf

import (
	"math"

	"go.uber.org/zap"

	"github.com/tarstars/random_decision_forest/golang/rdforest/random"
)

//TreeTrainer grows one tree breadth first from a shared, read-only data set.
//A trainer is used once and then discarded.
type TreeTrainer[I any, O any, F Feature[I], S Statistics[O, S]] struct {
	data     []DataPoint[I, O]
	params   TrainingParameters
	sampler  FeatureSampler[F]
	newStats func() S
	rng      *random.Generator
	logger   *zap.Logger

	tree       *Tree[I, O, F, S]
	depth      int
	paths      []Path
	blacklist  []Path
	features   []F
	candidates [][]S
}

//NewTreeTrainer prepares the training of one tree. The data slice is only read.
//Feature sampling draws from a private generator seeded with seed.
func NewTreeTrainer[I any, O any, F Feature[I], S Statistics[O, S]](
	data []DataPoint[I, O],
	params TrainingParameters,
	sampler FeatureSampler[F],
	newStats func() S,
	seed uint64,
	logger *zap.Logger,
) (*TreeTrainer[I, O, F, S], error) {
	if len(data) == 0 {
		return nil, invalidConfig("empty training data")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if sampler == nil {
		return nil, invalidConfig("no feature sampler")
	}
	if newStats == nil {
		return nil, invalidConfig("no statistics constructor")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TreeTrainer[I, O, F, S]{
		data:     data,
		params:   params,
		sampler:  sampler,
		newStats: newStats,
		rng:      random.New(seed),
		logger:   logger,
	}, nil
}

//shouldTerminate is the pruning criterion for a node with the given best gain.
func shouldTerminate(gain float64) bool {
	return gain < MinInformationGain
}

//rootStatistics aggregates all outputs of the data set.
func (t *TreeTrainer[I, O, F, S]) rootStatistics() S {
	s := t.newStats()
	for i := range t.data {
		s.Increment(t.data[i].Output)
	}
	return s
}

//allocateCandidateStatistics allocates a (left, right) pair per feature for every live node of the level.
func (t *TreeTrainer[I, O, F, S]) allocateCandidateStatistics(numNodes int) int {
	t.candidates = make([][]S, numNodes)
	active := 0
	for i := 0; i < numNodes; i++ {
		if NewPath(t.depth, i).IsBlacklisted(t.blacklist) {
			continue
		}
		stats := make([]S, 2*len(t.features))
		for k := range stats {
			stats[k] = t.newStats()
		}
		t.candidates[i] = stats
		active++
	}
	return active
}

//fillCandidateStatistics scans the whole data set once and counts every sample
//into the left or right accumulator of each candidate feature of its current node.
func (t *TreeTrainer[I, O, F, S]) fillCandidateStatistics() {
	for i := range t.data {
		path := t.paths[i]
		if path.IsBlacklisted(t.blacklist) {
			continue
		}
		stats := t.candidates[path.Offset]
		input, output := t.data[i].Input, t.data[i].Output
		for f := range t.features {
			side := 0
			if t.features[f].Test(input) {
				side = 1
			}
			stats[2*f+side].Increment(output)
		}
	}
}

//selectBestSplits picks the feature of highest gain for every live node of the level
//and writes it to the tree. It reports whether any node was split.
func (t *TreeTrainer[I, O, F, S]) selectBestSplits(numNodes int) (bool, error) {
	growing := false
	for i := 0; i < numNodes; i++ {
		path := NewPath(t.depth, i)
		if path.IsBlacklisted(t.blacklist) {
			continue
		}
		n, err := t.tree.GetNode(path)
		if err != nil {
			return false, err
		}
		stats := t.candidates[i]

		bestIdx, bestGain := 0, math.Inf(-1)
		for f := range t.features {
			gain := n.Statistics.InformationGain(stats[2*f], stats[2*f+1])
			if gain > bestGain {
				bestIdx, bestGain = f, gain
			}
		}

		split, err := t.writeSplit(path, bestGain, bestIdx, stats)
		if err != nil {
			return false, err
		}
		growing = growing || split
	}
	return growing, nil
}

//writeSplit hydrates the node unless its gain is too low, in which case the node
//becomes a permanent leaf. Nodes of depth 0 and 1 always split.
func (t *TreeTrainer[I, O, F, S]) writeSplit(path Path, gain float64, featureIdx int, stats []S) (bool, error) {
	if shouldTerminate(gain) && path.Depth > 1 {
		t.blacklist = append(t.blacklist, path)
		return false, nil
	}
	err := t.tree.HydrateSplitNode(path.Index(), t.features[featureIdx], stats[2*featureIdx], stats[2*featureIdx+1])
	return err == nil, err
}

//updateDataPaths moves every live sample whose node was split one level down.
func (t *TreeTrainer[I, O, F, S]) updateDataPaths() error {
	for i := range t.data {
		path := &t.paths[i]
		if path.IsBlacklisted(t.blacklist) {
			continue
		}
		n, err := t.tree.GetNode(*path)
		if err != nil {
			return err
		}
		if n.IsSplit() {
			path.Add(n.Feature.Test(t.data[i].Input))
		}
	}
	return nil
}

func (t *TreeTrainer[I, O, F, S]) release() {
	t.features = nil
	t.candidates = nil
	t.paths = nil
	t.blacklist = nil
	t.tree = nil
}

//Train grows a tree level by level. The loop stops at MaxDepth or as soon as no node of a level splits.
func (t *TreeTrainer[I, O, F, S]) Train(showProgress bool) (*Tree[I, O, F, S], error) {
	tree, err := NewTree[I, O, F, S](t.params.MaxDepth, t.rootStatistics())
	if err != nil {
		return nil, err
	}
	t.tree = tree
	t.paths = make([]Path, len(t.data))
	t.blacklist = nil
	defer t.release()

	for t.depth = 0; t.depth < t.params.MaxDepth; t.depth++ {
		numNodes := 1 << uint(t.depth)

		t.features = t.sampler.Sample(t.rng, t.params.TestsPerLevel)
		if len(t.features) == 0 {
			return nil, invalidConfig("sampler returned no features at depth %d", t.depth)
		}

		active := t.allocateCandidateStatistics(numNodes)
		if showProgress {
			t.logger.Info("tree level",
				zap.Int("depth", t.depth),
				zap.Int("max_depth", t.params.MaxDepth),
				zap.Int("active_nodes", active),
				zap.Int("pruned", len(t.blacklist)))
		}
		t.fillCandidateStatistics()

		growing, err := t.selectBestSplits(numNodes)
		t.features, t.candidates = nil, nil
		if err != nil {
			return nil, err
		}
		if !growing {
			t.logger.Debug("tree not growing, exit", zap.Int("depth", t.depth))
			break
		}

		if err := t.updateDataPaths(); err != nil {
			return nil, err
		}
	}

	return tree, nil
}
