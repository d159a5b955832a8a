package mongodataset

import (
	"context"
	"errors"
	"testing"

	"github.com/pbanos/sapling/dataset"
	"github.com/pbanos/sapling/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/mgo.v2/bson"
)

func testSchema(t *testing.T) *feature.Schema {
	s, err := feature.NewSchema(
		feature.NewContinuousFeature("x", 0, 10, feature.NoPrecision),
		feature.NewLabelFeature("y", []int{0, 1}),
	)
	require.NoError(t, err)
	return s
}

func TestCheckFieldName(t *testing.T) {
	assert.NoError(t, checkFieldName("petal_width"))
	for _, invalid := range []string{"_id", "a.b", "$x"} {
		assert.Error(t, checkFieldName(invalid), invalid)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	s := testSchema(t)
	e := dataset.NewEntry(feature.ContinuousValue(2.5), feature.DiscreteValue(1))
	doc := documentFor(s, e)
	assert.Equal(t, bson.M{"x": 2.5, "y": 1}, doc)
	read, err := entryFrom(s, doc)
	require.NoError(t, err)
	assert.Equal(t, e, read)
}

func TestEntryFromConvertsNumbers(t *testing.T) {
	s := testSchema(t)
	e, err := entryFrom(s, bson.M{"x": int64(3), "y": float64(0)})
	require.NoError(t, err)
	assert.Equal(t, feature.ContinuousValue(3), e.Value(0))
	assert.Equal(t, feature.DiscreteValue(0), e.Value(1))

	testCases := map[string]bson.M{
		"missing field":     {"x": 1.0},
		"not a number":      {"x": "one", "y": 0},
		"non integer label": {"x": 1.0, "y": 0.5},
	}
	for name, doc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := entryFrom(s, doc)
			assert.Error(t, err)
		})
	}
}

type sliceIterator struct {
	docs   []bson.M
	closed bool
	err    error
}

func (si *sliceIterator) Next(result interface{}) bool {
	if len(si.docs) == 0 {
		return false
	}
	*(result.(*bson.M)) = si.docs[0]
	si.docs = si.docs[1:]
	return true
}

func (si *sliceIterator) Close() error {
	si.closed = true
	return si.err
}

func TestSendEntries(t *testing.T) {
	s := testSchema(t)
	iter := &sliceIterator{docs: []bson.M{{"x": 1.5, "y": 0}, {"x": 7, "y": 1}}}
	entries := make(chan *dataset.Entry, 2)
	require.NoError(t, sendEntries(context.Background(), s, iter, entries))
	close(entries)
	var read []*dataset.Entry
	for e := range entries {
		read = append(read, e)
	}
	assert.Equal(t, []*dataset.Entry{
		dataset.NewEntry(feature.ContinuousValue(1.5), feature.DiscreteValue(0)),
		dataset.NewEntry(feature.ContinuousValue(7), feature.DiscreteValue(1)),
	}, read)
	assert.True(t, iter.closed)
}

func TestSendEntriesErrors(t *testing.T) {
	s := testSchema(t)

	iter := &sliceIterator{docs: []bson.M{{"x": 1.5}}}
	assert.Error(t, sendEntries(context.Background(), s, iter, make(chan *dataset.Entry, 1)))
	assert.True(t, iter.closed)

	closeErr := errors.New("cursor lost")
	iter = &sliceIterator{err: closeErr}
	assert.ErrorIs(t, sendEntries(context.Background(), s, iter, make(chan *dataset.Entry)), closeErr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	iter = &sliceIterator{docs: []bson.M{{"x": 1.5, "y": 0}}}
	assert.ErrorIs(t, sendEntries(ctx, s, iter, make(chan *dataset.Entry)), context.Canceled)
	assert.True(t, iter.closed)
}
