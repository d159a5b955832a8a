package dot

import (
	"bytes"
	"math"
	"testing"

	"github.com/pbanos/sapling/feature"
	"github.com/pbanos/sapling/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree(t *testing.T) *tree.Tree {
	s, err := feature.NewSchema(
		feature.NewContinuousFeature("x", math.Inf(-1), math.Inf(1), feature.NoPrecision),
		feature.NewLabelFeature("y", []int{0, 1}),
	)
	require.NoError(t, err)
	tr := tree.New(s)
	root := tr.AddRoot()
	root.Prediction = tree.NewPrediction(map[int]float64{0: 0.5, 1: 0.5}, 4)
	low, high := tr.Branch(root, 0, feature.ContinuousValue(5))
	low.Prediction = tree.NewPrediction(map[int]float64{0: 0.75, 1: 0.25}, 4)
	high.Prediction = nil
	return tr
}

func TestGraph(t *testing.T) {
	g, err := Graph(testTree(t), 1)
	require.NoError(t, err)
	assert.Len(t, g.Nodes.Nodes, 3)
	assert.Len(t, g.Edges.Edges, 2)
	assert.Equal(t, `"x < 5"`, g.Nodes.Lookup["n0"].Attrs["label"])
	assert.Equal(t, "box", g.Nodes.Lookup["n1"].Attrs["shape"])
	assert.Equal(t, `"P(y = 1) = 0.250\nw = 4"`, g.Nodes.Lookup["n1"].Attrs["label"])
	assert.Equal(t, `"no prediction"`, g.Nodes.Lookup["n2"].Attrs["label"])
	edges := g.Edges.SrcToDsts["n0"]
	require.Contains(t, edges, "n1")
	assert.Equal(t, `"true"`, edges["n1"][0].Attrs["label"])
	assert.Equal(t, `"false"`, edges["n2"][0].Attrs["label"])
}

func TestGraphMostLikely(t *testing.T) {
	g, err := Graph(testTree(t), MostLikely)
	require.NoError(t, err)
	assert.Equal(t, `"y = 0\nP = 0.750\nw = 4"`, g.Nodes.Lookup["n1"].Attrs["label"])
}

func TestWriteDOT(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDOT(testTree(t), 1, &buf))
	out := buf.String()
	assert.Contains(t, out, "digraph tree")
	assert.Contains(t, out, "n0->n1")
}
