package sapling

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pbanos/sapling/dataset"
)

// DefaultMinimumInformationGain is the information gain a split must exceed
// to be accepted by the DefaultPruner.
const DefaultMinimumInformationGain = 1e-4

/*
Pruner is an interface wrapping the Prune method, that can be used
to decide whether a split is good enough to become part of a tree
or if it must be pruned instead.

The Prune method takes a context, a partition and the best split found for
it and returns a boolean: true to indicate the split must be pruned, leaving
the node as a leaf, false to allow its adding to the tree and further
development.
*/
type Pruner interface {
	Prune(ctx context.Context, p *dataset.Partition, s *Split) (bool, error)
}

/*
PrunerFunc wraps a function with the Prune method signature to implement
the Pruner interface
*/
type PrunerFunc func(ctx context.Context, p *dataset.Partition, s *Split) (bool, error)

/*
Prune takes a context.Context, a partition and a split and
invokes the PrunerFunc with those parameters to return its boolean result.
*/
func (pf PrunerFunc) Prune(ctx context.Context, p *dataset.Partition, s *Split) (bool, error) {
	return pf(ctx, p, s)
}

/*
DefaultPruner returns a Pruner that prunes splits whose information gain
does not exceed DefaultMinimumInformationGain.
*/
func DefaultPruner() Pruner {
	return FixedInformationGainPruner(DefaultMinimumInformationGain)
}

/*
FixedInformationGainPruner takes an informationGainThreshold float64 value
and returns a Pruner whose Prune method returns whether the informationGainThreshold
is greater or equal to the received split's information gain
*/
func FixedInformationGainPruner(informationGainThreshold float64) Pruner {
	return PrunerFunc(func(ctx context.Context, p *dataset.Partition, s *Split) (bool, error) {
		return informationGainThreshold >= s.InformationGain, nil
	})
}

/*
MinimumDescriptionLengthPruner returns a Pruner whose Prune method evaluates
a minimum information gain for the split and returns true if the split
information gain does not exceed it and false otherwise.
This minimum is calculated as
(1/N) x log2(N-1) + (1/N) x [ log2(3^k-2) - (k x Entropy(S) - k1 x Entropy(S1) - k2 x Entropy(S2)) ]
with
  - N being the number of entries in the partition
  - k being the number of different labels in the partition
  - k1, k2 being the number of different labels in the left and right partitions
  - S1, S2 being the left and right partitions
*/
func MinimumDescriptionLengthPruner() Pruner {
	return PrunerFunc(func(ctx context.Context, p *dataset.Partition, s *Split) (bool, error) {
		n := float64(p.Count())
		if n < 2 {
			return true, nil
		}
		d := p.LabelDistribution()
		k := float64(len(d))
		minimum := math.Log2(n-1.0) + math.Log2(math.Pow(3.0, k)-2) - k*Entropy(d)
		for _, child := range []*dataset.Partition{s.Left, s.Right} {
			cd := child.LabelDistribution()
			minimum += float64(len(cd)) * Entropy(cd)
		}
		minimum = minimum / n
		return minimum >= s.InformationGain, nil
	})
}

/*
NoPruner returns a Pruner whose Prune method always returns false, that is,
never prunes.
*/
func NoPruner() Pruner {
	return PrunerFunc(func(ctx context.Context, p *dataset.Partition, s *Split) (bool, error) {
		return false, nil
	})
}

/*
ParsePruner takes a pruning strategy description and returns the Pruner it
describes. Valid descriptions are "default", "none", "mdl" and
"minimum-information-gain:VALUE".
*/
func ParsePruner(ps string) (Pruner, error) {
	name, param, hasParam := strings.Cut(ps, ":")
	switch name {
	case "default":
		return DefaultPruner(), nil
	case "none":
		return NoPruner(), nil
	case "mdl":
		return MinimumDescriptionLengthPruner(), nil
	case "minimum-information-gain":
		if !hasParam {
			return nil, fmt.Errorf("minimum-information-gain pruning strategy requires a value")
		}
		minimum, err := strconv.ParseFloat(param, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing minimum-information-gain parameter: %v", err)
		}
		return FixedInformationGainPruner(minimum), nil
	}
	return nil, fmt.Errorf("unknown pruning strategy %s", ps)
}
