/*
Package sapling grows binary decision trees from partitions of entries,
choosing at every node the feature and threshold that maximise the
information gain on the label.
*/
package sapling

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pbanos/sapling/dataset"
	"github.com/pbanos/sapling/feature"
	"github.com/pbanos/sapling/tree"
	"go.uber.org/zap"
)

/*
Grower holds the configuration to grow trees.

Pruner decides whether the best split found for a node is worth adding to
the tree; when nil, DefaultPruner is used. Regardless of the pruner, splits
without information gain or leaving a side empty are never accepted.

MaxDepth limits the depth of grown trees, 0 meaning no limit.

Concurrency is the maximum number of goroutines developing subtrees at the
same time. Values below 2 grow trees sequentially.

Logger receives debug entries for each developed node; nil disables logging.
*/
type Grower struct {
	Pruner      Pruner
	MaxDepth    int
	Concurrency int
	Logger      *zap.Logger
}

// task holds a node to develop with the entries that reached it
type task struct {
	node      *tree.Node
	partition *dataset.Partition
	mask      *feature.Mask
	depth     int
}

// New takes a pruner and returns a sequential Grower using it
func New(pruner Pruner) *Grower {
	return &Grower{Pruner: pruner}
}

/*
Grow takes a context and a partition and returns the tree grown from the
partition entries to predict the label of its schema. Every feature but the
label is eligible for splitting at the root.

An error is returned if the partition entries are not valid for its schema,
if a split cannot be performed, if the pruner fails or if the context is
cancelled before the tree is complete. No partial tree is returned.
*/
func (g *Grower) Grow(ctx context.Context, p *dataset.Partition) (*tree.Tree, error) {
	if p == nil {
		return nil, fmt.Errorf("growing tree: nil partition")
	}
	err := p.Validate()
	if err != nil {
		return nil, fmt.Errorf("growing tree: %w", err)
	}
	schema := p.Schema()
	t := tree.New(schema)
	root := &task{
		node:      t.AddRoot(),
		partition: p,
		mask:      feature.NewMaskFor(schema),
	}
	var sem chan struct{}
	if g.Concurrency > 1 {
		sem = make(chan struct{}, g.Concurrency-1)
	}
	g.logger().Debug("growing tree",
		zap.Int("entries", p.Count()),
		zap.Int("features", schema.Len()-1),
		zap.String("label", schema.Feature(schema.LabelIndex()).Name()),
	)
	err = g.develop(ctx, t, root, sem)
	if err != nil {
		return nil, err
	}
	g.logger().Debug("tree grown", zap.Int("nodes", t.Len()), zap.Int("depth", t.Depth()))
	return t, nil
}

func (g *Grower) develop(ctx context.Context, t *tree.Tree, tk *task, sem chan struct{}) error {
	err := ctx.Err()
	if err != nil {
		return err
	}
	subtasks, err := g.branchOut(ctx, t, tk)
	if err != nil || subtasks == nil {
		return err
	}
	left, right := subtasks[0], subtasks[1]
	select {
	case sem <- struct{}{}:
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		var wg sync.WaitGroup
		var rightErr error
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			rightErr = g.develop(ctx, t, right, sem)
			if rightErr != nil {
				cancel()
			}
		}()
		leftErr := g.develop(ctx, t, left, sem)
		if leftErr != nil {
			cancel()
		}
		wg.Wait()
		return firstError(leftErr, rightErr)
	default:
		err = g.develop(ctx, t, left, sem)
		if err != nil {
			return err
		}
		return g.develop(ctx, t, right, sem)
	}
}

// firstError returns the first non nil error, preferring errors other than
// the cancellation caused by a failing sibling
func firstError(errs ...error) error {
	var first error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if first == nil || (errors.Is(first, context.Canceled) && !errors.Is(err, context.Canceled)) {
			first = err
		}
	}
	return first
}

/*
branchOut sets the prediction of the task's node and, if its entries can be
split, turns it into an internal node and returns the tasks to develop its
children. It returns nil tasks for nodes that must remain leaves.
*/
func (g *Grower) branchOut(ctx context.Context, t *tree.Tree, tk *task) ([]*task, error) {
	n, p := tk.node, tk.partition
	d := p.LabelDistribution()
	prediction, err := tree.NewPredictionFromDistribution(d)
	if err != nil && err != tree.ErrCannotPredictFromEmptySet {
		return nil, err
	}
	n.Prediction = prediction
	log := g.logger().With(zap.Int("node", int(n.ID)), zap.Int("entries", p.Count()), zap.Int("depth", tk.depth))
	if p.Count() < 2 || Entropy(d) == 0 || tk.mask.Empty() || (g.MaxDepth > 0 && tk.depth >= g.MaxDepth) {
		log.Debug("leaf", zap.Stringer("mask", tk.mask))
		return nil, nil
	}
	s, err := BestSplit(p, tk.mask)
	if err != nil {
		return nil, fmt.Errorf("selecting split for node %d: %w", n.ID, err)
	}
	n.InformationGain = s.InformationGain
	if s.FeatureIndex == NoFeature || s.InformationGain <= 0 || s.Left.Count() == 0 || s.Right.Count() == 0 {
		log.Debug("leaf without useful split", zap.Float64("gain", s.InformationGain))
		return nil, nil
	}
	prune, err := g.pruner().Prune(ctx, p, s)
	if err != nil {
		return nil, fmt.Errorf("pruning split for node %d: %w", n.ID, err)
	}
	if prune {
		log.Debug("split pruned", zap.Int("feature", s.FeatureIndex), zap.Float64("gain", s.InformationGain))
		return nil, nil
	}
	left, right := t.Branch(n, s.FeatureIndex, s.Threshold)
	log.Debug("node split",
		zap.Int("feature", s.FeatureIndex),
		zap.Stringer("threshold", s.Threshold),
		zap.Float64("gain", s.InformationGain),
		zap.Int("left", int(left.ID)),
		zap.Int("right", int(right.ID)),
	)
	return []*task{
		{left, s.Left, childMask(tk.mask, s.Left), tk.depth + 1},
		{right, s.Right, childMask(tk.mask, s.Right), tk.depth + 1},
	}, nil
}

// childMask returns a copy of mask without the features that take less than
// two distinct values in p, as splitting on them cannot separate its entries.
func childMask(mask *feature.Mask, p *dataset.Partition) *feature.Mask {
	m := mask.Copy()
	for _, fi := range mask.Indexes() {
		if p.Cardinality(fi) < 2 {
			m.Set(fi, false)
		}
	}
	return m
}

func (g *Grower) pruner() Pruner {
	if g.Pruner == nil {
		return DefaultPruner()
	}
	return g.Pruner
}

func (g *Grower) logger() *zap.Logger {
	if g.Logger == nil {
		return zap.NewNop()
	}
	return g.Logger
}
