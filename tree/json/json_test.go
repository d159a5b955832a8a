package json

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"

	"github.com/pbanos/sapling/feature"
	"github.com/pbanos/sapling/tree"
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

func testTree(t *testing.T) *tree.Tree {
	tr := tree.New(testSchema(t))
	root := tr.AddRoot()
	root.Prediction = tree.NewPrediction(map[int]float64{0: 0.5, 1: 0.5}, 4)
	root.InformationGain = 0.31
	low, high := tr.Branch(root, 0, feature.ContinuousValue(5.5))
	low.Prediction = tree.NewPrediction(map[int]float64{0: 0.5, 1: 0.5}, 2)
	low.InformationGain = 1
	high.Prediction = tree.NewPrediction(map[int]float64{1: 1}, 2)
	zero, other := tr.Branch(low, 1, feature.DiscreteValue(0))
	zero.Prediction = tree.NewPrediction(map[int]float64{1: 1}, 1)
	other.Prediction = tree.NewPrediction(map[int]float64{0: 1}, 1)
	return tr
}

func TestWriteThenReadJSONTree(t *testing.T) {
	ctx := context.Background()
	tr := testTree(t)
	ned := NewNodeEncodeDecoder(tr.Schema())
	var buf bytes.Buffer
	require.NoError(t, WriteJSONTree(ctx, tr, ned, &buf))
	assert.True(t, strings.HasPrefix(buf.String(), `{"rootID":0,"label":"y","nodes":[{"id":0,"pId":-1,"l":1,"r":2,"f":"x","t":5.5`))

	read, err := ReadJSONTree(ctx, tr.Schema(), ned, &buf)
	require.NoError(t, err)
	require.Equal(t, tr.Len(), read.Len())
	for i, n := range tr.Nodes() {
		assert.Equal(t, n, read.Nodes()[i])
	}
	assert.Equal(t, tr.String(), read.String())
}

func TestEncodeLeafWithoutPrediction(t *testing.T) {
	s := testSchema(t)
	tr := tree.New(s)
	tr.AddRoot()
	ned := NewNodeEncodeDecoder(s)
	b, err := ned.Encode(tr.Root())
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":0,"pId":-1,"l":-1,"r":-1,"g":0}`, string(b))
	n, err := ned.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, tr.Root(), n)
}

func TestReadJSONTreeErrors(t *testing.T) {
	ctx := context.Background()
	testCases := map[string]string{
		"not json":        `{"rootID":`,
		"wrong label":     `{"rootID":0,"label":"z","nodes":[{"id":0,"pId":-1,"l":-1,"r":-1,"g":0}]}`,
		"missing root":    `{"label":"y","nodes":[{"id":0,"pId":-1,"l":-1,"r":-1,"g":0}]}`,
		"nonzero root":    `{"rootID":1,"label":"y","nodes":[{"id":0,"pId":-1,"l":-1,"r":-1,"g":0}]}`,
		"no nodes":        `{"rootID":0,"label":"y","nodes":[]}`,
		"unknown feature": `{"rootID":0,"label":"y","nodes":[{"id":0,"pId":-1,"l":1,"r":2,"f":"w","t":1,"g":0},{"id":1,"pId":0,"l":-1,"r":-1,"g":0},{"id":2,"pId":0,"l":-1,"r":-1,"g":0}]}`,
		"dangling child":  `{"rootID":0,"label":"y","nodes":[{"id":0,"pId":-1,"l":1,"r":2,"f":"x","t":1,"g":0},{"id":1,"pId":0,"l":-1,"r":-1,"g":0}]}`,
		"bad label code":  `{"rootID":0,"label":"y","nodes":[{"id":0,"pId":-1,"l":-1,"r":-1,"g":0,"pred":{"probs":{"one":1},"w":1}}]}`,
	}
	s := testSchema(t)
	for name, input := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadJSONTree(ctx, s, NewNodeEncodeDecoder(s), strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestUnmarshalJSONPrediction(t *testing.T) {
	p, err := UnmarshalJSONPrediction([]byte(`{"probs":{"0":0.25,"1":0.75},"w":4}`))
	require.NoError(t, err)
	assert.Equal(t, 0.75, p.ProbabilityOf(1))
	assert.Equal(t, 4, p.Weight())
}
