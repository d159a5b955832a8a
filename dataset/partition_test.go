package dataset

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/pbanos/sapling/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema(t *testing.T) *feature.Schema {
	s, err := feature.NewSchema(
		feature.NewContinuousFeature("x", math.Inf(-1), math.Inf(1), feature.NoPrecision),
		feature.NewDiscreteFeature("color", []int{0, 1, 2}),
		feature.NewLabelFeature("y", []int{0, 1}),
	)
	require.NoError(t, err)
	return s
}

func entry(x float64, color, y int) *Entry {
	return NewEntry(feature.ContinuousValue(x), feature.DiscreteValue(color), feature.DiscreteValue(y))
}

func testPartition(t *testing.T) *Partition {
	return New(testSchema(t), []*Entry{
		entry(1, 0, 0),
		entry(2, 2, 0),
		entry(8, 1, 1),
		entry(9, 2, 1),
		entry(5, 2, 1),
	})
}

func TestSplitContinuous(t *testing.T) {
	p := testPartition(t)
	left, right, err := p.Split(0, feature.ContinuousValue(5))
	require.NoError(t, err)
	assert.Equal(t, []*Entry{p.Entries()[0], p.Entries()[1]}, left.Entries())
	assert.Equal(t, []*Entry{p.Entries()[2], p.Entries()[3], p.Entries()[4]}, right.Entries())
	assert.Same(t, p.Schema(), left.Schema())
	assert.Same(t, p.Schema(), right.Schema())
}

func TestSplitDiscrete(t *testing.T) {
	p := testPartition(t)
	left, right, err := p.Split(1, feature.DiscreteValue(2))
	require.NoError(t, err)
	assert.Equal(t, 3, left.Count())
	assert.Equal(t, 2, right.Count())
	for _, e := range left.Entries() {
		assert.Equal(t, 2, e.Value(1).Code())
	}
	for _, e := range right.Entries() {
		assert.NotEqual(t, 2, e.Value(1).Code())
	}
}

func TestSplitConservesEntries(t *testing.T) {
	p := testPartition(t)
	for _, threshold := range []float64{-1, 1, 1.5, 5, 8.5, 100} {
		left, right, err := p.Split(0, feature.ContinuousValue(threshold))
		require.NoError(t, err)
		assert.Equal(t, p.Count(), left.Count()+right.Count())
		seen := make(map[*Entry]int)
		for _, e := range append(left.Entries(), right.Entries()...) {
			seen[e]++
		}
		for _, e := range p.Entries() {
			assert.Equal(t, 1, seen[e])
		}
	}
}

func TestSplitEmptyPartition(t *testing.T) {
	p := New(testSchema(t), nil)
	left, right, err := p.Split(0, feature.ContinuousValue(1))
	require.NoError(t, err)
	assert.Equal(t, 0, left.Count())
	assert.Equal(t, 0, right.Count())
	assert.Empty(t, left.LabelDistribution())
}

func TestSplitErrors(t *testing.T) {
	p := testPartition(t)
	testCases := map[string]struct {
		index     int
		threshold feature.Value
		err       error
	}{
		"index too big": {
			index:     3,
			threshold: feature.ContinuousValue(1),
			err:       ErrFeatureOutOfRange,
		},
		"negative index": {
			index:     -1,
			threshold: feature.ContinuousValue(1),
			err:       ErrFeatureOutOfRange,
		},
		"discrete threshold on continuous feature": {
			index:     0,
			threshold: feature.DiscreteValue(1),
			err:       ErrThresholdKind,
		},
		"continuous threshold on discrete feature": {
			index:     1,
			threshold: feature.ContinuousValue(1),
			err:       ErrThresholdKind,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, _, err := p.Split(tc.index, tc.threshold)
			assert.True(t, errors.Is(err, tc.err), "expected %v, got %v", tc.err, err)
		})
	}
}

func TestSplitValueKindMismatch(t *testing.T) {
	p := New(testSchema(t), []*Entry{
		NewEntry(feature.DiscreteValue(1), feature.DiscreteValue(0), feature.DiscreteValue(0)),
	})
	_, _, err := p.Split(0, feature.ContinuousValue(1))
	assert.True(t, errors.Is(err, ErrValueKind))
}

func TestLabelDistribution(t *testing.T) {
	d := testPartition(t).LabelDistribution()
	assert.Equal(t, Distribution{0: 2, 1: 3}, d)
	assert.Equal(t, 5, d.Total())
	assert.Equal(t, []int{0, 1}, d.Labels())
}

func TestCardinality(t *testing.T) {
	p := testPartition(t)
	assert.Equal(t, 5, p.Cardinality(0))
	assert.Equal(t, 3, p.Cardinality(1))
	assert.Equal(t, 2, p.Cardinality(2))

	s, err := feature.NewSchema(
		feature.NewContinuousFeature("x", math.Inf(-1), math.Inf(1), 0),
		feature.NewLabelFeature("y", []int{0, 1}),
	)
	require.NoError(t, err)
	rounded := New(s, []*Entry{
		NewEntry(feature.ContinuousValue(1.1), feature.DiscreteValue(0)),
		NewEntry(feature.ContinuousValue(0.9), feature.DiscreteValue(1)),
	})
	assert.Equal(t, 1, rounded.Cardinality(0))
}

func TestValidate(t *testing.T) {
	s := testSchema(t)
	assert.NoError(t, testPartition(t).Validate())

	short := New(s, []*Entry{NewEntry(feature.ContinuousValue(1))})
	assert.True(t, errors.Is(short.Validate(), ErrEntryLength))

	wrongKind := New(s, []*Entry{
		NewEntry(feature.DiscreteValue(1), feature.DiscreteValue(0), feature.DiscreteValue(0)),
	})
	assert.True(t, errors.Is(wrongKind.Validate(), ErrValueKind))

	unknownCode := New(s, []*Entry{entry(1, 7, 0)})
	assert.Error(t, unknownCode.Validate())
}

func TestSplitRandom(t *testing.T) {
	p := testPartition(t)
	kept, selected := p.SplitRandom(rand.New(rand.NewSource(1)), 0.5)
	assert.Equal(t, p.Count(), kept.Count()+selected.Count())

	kept, selected = p.SplitRandom(rand.New(rand.NewSource(1)), 0)
	assert.Equal(t, p.Count(), kept.Count())
	assert.Equal(t, 0, selected.Count())
}
