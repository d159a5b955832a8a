package dataset

import (
	"fmt"
	"math/rand"

	"github.com/pbanos/sapling/feature"
)

// PartitionError represents a misuse of a Partition
type PartitionError string

const (
	// ErrFeatureOutOfRange is returned when splitting on a feature index
	// that is not in the schema
	ErrFeatureOutOfRange = PartitionError("feature index out of range")
	// ErrThresholdKind is returned when splitting with a threshold whose
	// kind does not match the feature's
	ErrThresholdKind = PartitionError("threshold kind does not match feature kind")
	// ErrValueKind is returned when an entry holds a value whose kind
	// does not match the feature's
	ErrValueKind = PartitionError("entry value kind does not match feature kind")
	// ErrEntryLength is returned when an entry does not have a value for
	// every feature in the schema
	ErrEntryLength = PartitionError("entry length does not match schema")
)

func (pe PartitionError) Error() string {
	return string(pe)
}

/*
Partition is an ordered group of entries bound to a schema. Partitions
never modify their entries: splitting one yields two new partitions that
share the entries and the schema with it.
*/
type Partition struct {
	schema  *feature.Schema
	entries []*Entry
}

// New takes a schema and a slice of entries and returns a partition with them
func New(schema *feature.Schema, entries []*Entry) *Partition {
	return &Partition{schema, entries}
}

// Schema returns the schema shared by the partition and all derived from it
func (p *Partition) Schema() *feature.Schema {
	return p.schema
}

// Count returns the number of entries in the partition
func (p *Partition) Count() int {
	return len(p.entries)
}

// Entries returns the entries of the partition. The slice must not be modified.
func (p *Partition) Entries() []*Entry {
	return p.entries
}

// LabelDistribution returns the number of entries for each label code
func (p *Partition) LabelDistribution() Distribution {
	d := make(Distribution)
	li := p.schema.LabelIndex()
	for _, e := range p.entries {
		d[e.Value(li).Code()]++
	}
	return d
}

/*
Split takes a feature index and a threshold and returns two partitions with
the entries that satisfy the criterion of the feature and the threshold on
the left and the ones that do not on the right. For continuous features the
criterion is being below the threshold, for discrete ones being equal to it.
Every entry ends up in exactly one of them, in the same relative order.

An error is returned if the feature index is out of range, or the threshold
or a value of an entry are not of the kind of the feature.
*/
func (p *Partition) Split(featureIndex int, threshold feature.Value) (*Partition, *Partition, error) {
	f := p.schema.Feature(featureIndex)
	if f == nil {
		return nil, nil, fmt.Errorf("splitting on feature %d of %d: %w", featureIndex, p.schema.Len(), ErrFeatureOutOfRange)
	}
	if threshold.Kind() != f.Kind() {
		return nil, nil, fmt.Errorf("splitting %s feature %s with %s threshold: %w", f.Kind(), f.Name(), threshold.Kind(), ErrThresholdKind)
	}
	c := feature.NewCriterion(f, featureIndex, threshold)
	left := make([]*Entry, 0, len(p.entries))
	var right []*Entry
	for i, e := range p.entries {
		v := e.Value(featureIndex)
		if v.Kind() != f.Kind() || featureIndex >= e.Len() {
			return nil, nil, fmt.Errorf("splitting on feature %s: entry %d: %w", f.Name(), i, ErrValueKind)
		}
		if c.Holds(v) {
			left = append(left, e)
		} else {
			right = append(right, e)
		}
	}
	return &Partition{p.schema, left}, &Partition{p.schema, right}, nil
}

/*
Cardinality returns the number of distinct values the feature at the given
index takes in the partition. Continuous values are rounded to the precision
of the feature before being compared.
*/
func (p *Partition) Cardinality(featureIndex int) int {
	f := p.schema.Feature(featureIndex)
	cf, _ := f.(*feature.ContinuousFeature)
	seen := make(map[feature.Value]struct{})
	for _, e := range p.entries {
		v := e.Value(featureIndex)
		if cf != nil {
			v = feature.ContinuousValue(cf.Round(v.Number()))
		}
		seen[v] = struct{}{}
	}
	return len(seen)
}

/*
Validate checks every entry has a valid value for each feature of the schema
and returns an error describing the first entry that does not.
*/
func (p *Partition) Validate() error {
	n := p.schema.Len()
	for i, e := range p.entries {
		if e.Len() != n {
			return fmt.Errorf("entry %d has %d values for %d features: %w", i, e.Len(), n, ErrEntryLength)
		}
		for fi := 0; fi < n; fi++ {
			f := p.schema.Feature(fi)
			v := e.Value(fi)
			if v.Kind() != f.Kind() {
				return fmt.Errorf("entry %d feature %s: %w", i, f.Name(), ErrValueKind)
			}
			if err := f.Valid(v); err != nil {
				return fmt.Errorf("entry %d: %v", i, err)
			}
		}
	}
	return nil
}

/*
SplitRandom takes a source of randomness and a probability between 0 and 1
and returns two partitions: one with the entries that were not selected and
another with the entries selected with the given probability.
*/
func (p *Partition) SplitRandom(r *rand.Rand, probability float64) (*Partition, *Partition) {
	var kept, selected []*Entry
	for _, e := range p.entries {
		if r.Float64() < probability {
			selected = append(selected, e)
		} else {
			kept = append(kept, e)
		}
	}
	return &Partition{p.schema, kept}, &Partition{p.schema, selected}
}

func (p *Partition) String() string {
	return fmt.Sprintf("partition of %d entries %v", len(p.entries), p.LabelDistribution())
}
