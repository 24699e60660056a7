package rdf

import (
	"runtime"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tarstars/random_decision_forest/golang/rdforest/random"
)

type forestOptions struct {
	logger *zap.Logger
	seed   *uint64
}

//Option configures a Forest.
type Option func(*forestOptions)

//WithLogger sets the logger for training progress. The default logger discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *forestOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

//WithSeed makes the per-tree seeds, and so the whole training, reproducible.
func WithSeed(seed uint64) Option {
	return func(o *forestOptions) {
		o.seed = &seed
	}
}

//Forest is an ensemble of trees plus the queue of trainers still to run.
type Forest[I any, O any, F Feature[I], S Statistics[O, S]] struct {
	trees    []*Tree[I, O, F, S]
	trainers []*TreeTrainer[I, O, F, S]
	newStats func() S
	rng      *random.Generator
	logger   *zap.Logger
}

//NewForest creates an empty forest. newStats creates the empty aggregates used
//for evaluation, training and loading.
func NewForest[I any, O any, F Feature[I], S Statistics[O, S]](newStats func() S, opts ...Option) *Forest[I, O, F, S] {
	o := forestOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	rng := random.NewFromEntropy()
	if o.seed != nil {
		rng = random.New(*o.seed)
	}
	return &Forest[I, O, F, S]{
		newStats: newStats,
		rng:      rng,
		logger:   o.logger,
	}
}

//Add appends a fully trained tree.
func (f *Forest[I, O, F, S]) Add(tree *Tree[I, O, F, S]) {
	f.trees = append(f.trees, tree)
}

//Trees returns the trained trees in training order.
func (f *Forest[I, O, F, S]) Trees() []*Tree[I, O, F, S] {
	return f.trees
}

//NumTrees is the ensemble size.
func (f *Forest[I, O, F, S]) NumTrees() int {
	return len(f.trees)
}

//Pending is the number of queued trainers.
func (f *Forest[I, O, F, S]) Pending() int {
	return len(f.trainers)
}

//EnqueueTreeTraining queues numTrees trainers over the same data, or params.Trees of them
//when numTrees is 0. Each trainer gets its own seed drawn from the forest generator.
func (f *Forest[I, O, F, S]) EnqueueTreeTraining(data []DataPoint[I, O], params TrainingParameters, sampler FeatureSampler[F], numTrees int) error {
	if numTrees < 0 {
		return invalidConfig("negative number of trees %d", numTrees)
	}
	if numTrees == 0 {
		numTrees = params.Trees
	}
	if numTrees == 0 {
		return invalidConfig("no trees requested")
	}

	trainers := make([]*TreeTrainer[I, O, F, S], 0, numTrees)
	for i := 0; i < numTrees; i++ {
		trainer, err := NewTreeTrainer[I, O, F, S](data, params, sampler, f.newStats, f.rng.Uint64(), f.logger.With(zap.Int("tree", len(f.trees)+len(f.trainers)+i)))
		if err != nil {
			return err
		}
		trainers = append(trainers, trainer)
	}
	f.trainers = append(f.trainers, trainers...)
	return nil
}

//Train runs all queued trainers and appends their trees. With threads == 1 the trees
//are grown one by one on the calling goroutine; otherwise batches of
//min(threads, GOMAXPROCS) trees are grown concurrently and joined before the next batch.
//threads == 0 uses all available parallelism. The queue is empty afterwards, even on error.
func (f *Forest[I, O, F, S]) Train(threads int, showProgress bool) error {
	defer func() { f.trainers = nil }()

	if threads < 0 {
		return invalidConfig("negative thread count %d", threads)
	}

	if threads == 1 {
		for i, trainer := range f.trainers {
			if showProgress {
				f.logger.Info("training tree", zap.Int("index", i+1), zap.Int("total", len(f.trainers)))
			}
			tree, err := trainer.Train(showProgress)
			if err != nil {
				return errors.Wrapf(err, "tree %d", i)
			}
			f.trees = append(f.trees, tree)
		}
		return nil
	}

	batchSize := runtime.GOMAXPROCS(0)
	if threads > 0 && threads < batchSize {
		batchSize = threads
	}

	for start := 0; start < len(f.trainers); start += batchSize {
		end := min(start+batchSize, len(f.trainers))
		trees := make([]*Tree[I, O, F, S], end-start)

		var g errgroup.Group
		for i := start; i < end; i++ {
			i := i
			if showProgress {
				f.logger.Info("starting tree worker", zap.Int("index", i+1), zap.Int("total", len(f.trainers)))
			}
			g.Go(func() error {
				tree, err := f.trainers[i].Train(showProgress)
				if err != nil {
					return errors.Wrapf(err, "tree %d", i)
				}
				trees[i-start] = tree
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		f.trees = append(f.trees, trees...)
	}
	return nil
}

//EvaluateEach returns the leaf statistics of every tree for the input. The values
//are shared with the trees and must not be modified.
func (f *Forest[I, O, F, S]) EvaluateEach(input I) []S {
	result := make([]S, 0, len(f.trees))
	for _, tree := range f.trees {
		result = append(result, tree.Evaluate(input))
	}
	return result
}

//Evaluate merges the leaf statistics of all trees into a fresh aggregate.
func (f *Forest[I, O, F, S]) Evaluate(input I) S {
	return f.EvaluateFirst(input, len(f.trees))
}

//EvaluateFirst merges the leaf statistics of the first k trees, as used for learning curves.
func (f *Forest[I, O, F, S]) EvaluateFirst(input I, k int) S {
	result := f.newStats()
	for _, tree := range f.trees[:max(0, min(k, len(f.trees)))] {
		result.Merge(tree.Evaluate(input))
	}
	return result
}
