package sqlite3adapter_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pbanos/sapling/dataset"
	"github.com/pbanos/sapling/dataset/sqldataset"
	"github.com/pbanos/sapling/dataset/sqldataset/sqlite3adapter"
	"github.com/pbanos/sapling/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndLoad(t *testing.T) {
	s, err := feature.NewSchema(
		feature.NewContinuousFeature("x", 0, 100, feature.NoPrecision),
		feature.NewDiscreteFeature("color", []int{0, 1, 2}),
		feature.NewLabelFeature("y", []int{0, 1}),
	)
	require.NoError(t, err)
	entries := make([]*dataset.Entry, 0, 23)
	for i := 0; i < 23; i++ {
		entries = append(entries, dataset.NewEntry(
			feature.ContinuousValue(float64(i)+0.25),
			feature.DiscreteValue(i%3),
			feature.DiscreteValue(i%2),
		))
	}
	p := dataset.New(s, entries)

	a, err := sqlite3adapter.New(filepath.Join(t.TempDir(), "entries.db"), 1)
	require.NoError(t, err)
	defer a.DB().Close()

	ctx := context.Background()
	n, err := sqldataset.Write(ctx, a, p)
	require.NoError(t, err)
	assert.Equal(t, 23, n)

	loaded, err := sqldataset.Load(ctx, a, s)
	require.NoError(t, err)
	assert.Equal(t, p.Entries(), loaded.Entries())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	wide, err := feature.NewSchema(
		feature.NewDiscreteFeature("color", []int{0, 1, 2, 3}),
		feature.NewLabelFeature("y", []int{0, 1}),
	)
	require.NoError(t, err)
	narrow, err := feature.NewSchema(
		feature.NewDiscreteFeature("color", []int{0, 1}),
		feature.NewLabelFeature("y", []int{0, 1}),
	)
	require.NoError(t, err)

	a, err := sqlite3adapter.New(filepath.Join(t.TempDir(), "entries.db"), 1)
	require.NoError(t, err)
	defer a.DB().Close()

	ctx := context.Background()
	_, err = sqldataset.Write(ctx, a, dataset.New(wide, []*dataset.Entry{
		dataset.NewEntry(feature.DiscreteValue(3), feature.DiscreteValue(1)),
	}))
	require.NoError(t, err)
	_, err = sqldataset.Load(ctx, a, narrow)
	assert.Error(t, err)
}
