package sapling

import (
	"fmt"
	"math"

	"github.com/google/btree"
	"github.com/pbanos/sapling/dataset"
	"github.com/pbanos/sapling/feature"
	"gonum.org/v1/gonum/stat"
)

// NoFeature is the feature index of splits that found no candidate
const NoFeature = -1

/*
Split represents the best binary split of a partition found on a feature:
the threshold to compare values of the feature against, the information gain
of the split for the label and the resulting partitions.
*/
type Split struct {
	FeatureIndex    int
	Threshold       feature.Value
	InformationGain float64
	Left, Right     *dataset.Partition
}

/*
Entropy takes a label distribution and returns its Shannon entropy in bits:
0 for empty distributions or those with a single label, 1 for a distribution
evenly divided between two labels.
*/
func Entropy(d dataset.Distribution) float64 {
	total := d.Total()
	if total == 0 {
		return 0.0
	}
	probs := make([]float64, 0, len(d))
	for _, l := range d.Labels() {
		probs = append(probs, float64(d[l])/float64(total))
	}
	return stat.Entropy(probs) / math.Ln2
}

/*
InformationGain takes a partition and the two partitions it was split into
and returns the reduction of entropy of the label the split achieves.
*/
func InformationGain(parent, left, right *dataset.Partition) float64 {
	return informationGain(Entropy(parent.LabelDistribution()), parent.Count(), left, right)
}

func informationGain(parentEntropy float64, count int, left, right *dataset.Partition) float64 {
	if count == 0 {
		return 0.0
	}
	n := float64(count)
	remainder := float64(left.Count())/n*Entropy(left.LabelDistribution()) +
		float64(right.Count())/n*Entropy(right.LabelDistribution())
	return math.Max(parentEntropy-remainder, 0.0)
}

/*
BestSplit takes a partition and a mask of eligible features and returns the
split with the highest information gain among every eligible feature and
candidate threshold. Features are considered in index order and candidate
thresholds in increasing order; ties go to the first candidate found.

Candidate thresholds for a continuous feature are the midpoints between
consecutive distinct values it takes in the partition, for a discrete
feature every code it may take.

When the partition has less than 2 entries or there are no candidates, the
returned split has NoFeature as feature index and no information gain.
An error is returned if the partition cannot be split.
*/
func BestSplit(p *dataset.Partition, mask *feature.Mask) (*Split, error) {
	best := &Split{FeatureIndex: NoFeature}
	if p.Count() < 2 {
		return best, nil
	}
	schema := p.Schema()
	parentEntropy := Entropy(p.LabelDistribution())
	for fi := 0; fi < schema.Len(); fi++ {
		if fi == schema.LabelIndex() || !mask.Get(fi) {
			continue
		}
		thresholds, err := candidateThresholds(p, fi)
		if err != nil {
			return nil, err
		}
		for _, threshold := range thresholds {
			left, right, err := p.Split(fi, threshold)
			if err != nil {
				return nil, err
			}
			gain := informationGain(parentEntropy, p.Count(), left, right)
			if best.FeatureIndex == NoFeature || gain > best.InformationGain {
				best = &Split{fi, threshold, gain, left, right}
			}
		}
	}
	return best, nil
}

func candidateThresholds(p *dataset.Partition, featureIndex int) ([]feature.Value, error) {
	switch f := p.Schema().Feature(featureIndex).(type) {
	case *feature.DiscreteFeature:
		thresholds := make([]feature.Value, 0, len(f.Values()))
		for _, code := range f.Values() {
			thresholds = append(thresholds, feature.DiscreteValue(code))
		}
		return thresholds, nil
	case *feature.ContinuousFeature:
		values := btree.NewOrderedG[float64](8)
		for _, e := range p.Entries() {
			values.ReplaceOrInsert(f.Round(e.Value(featureIndex).Number()))
		}
		thresholds := make([]feature.Value, 0, values.Len())
		previous, first := 0.0, true
		values.Ascend(func(v float64) bool {
			if !first {
				threshold := previous + (v-previous)/2
				// adjacent floats have no midpoint between them
				if threshold <= previous {
					threshold = v
				}
				thresholds = append(thresholds, feature.ContinuousValue(threshold))
			}
			previous, first = v, false
			return true
		})
		return thresholds, nil
	default:
		return nil, fmt.Errorf("unknown feature type %T for feature %d", f, featureIndex)
	}
}
