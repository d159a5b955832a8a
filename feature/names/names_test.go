package names

import (
	"errors"
	"strings"
	"testing"

	"github.com/pbanos/sapling/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSchema(t *testing.T) {
	s, err := ReadSchema(strings.NewReader(`
# iris-like dataset
petal c 0 10 1
sepal c
colour d n 3 0 1 2
class d y 2 0 1
`))
	require.NoError(t, err)
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, 3, s.LabelIndex())
	petal, ok := s.Feature(0).(*feature.ContinuousFeature)
	require.True(t, ok)
	assert.Equal(t, 1, petal.Precision())
	colour, ok := s.Feature(2).(*feature.DiscreteFeature)
	require.True(t, ok)
	assert.Equal(t, []int{0, 1, 2}, colour.Values())
	assert.False(t, colour.IsLabel())
}

func TestReadSchemaErrors(t *testing.T) {
	testCases := map[string]struct {
		names string
		err   error
	}{
		"count mismatch": {
			names: "x c\ny d y 3 0 1\n",
			err:   feature.ErrPossibilityCount,
		},
		"no label": {
			names: "x c\ny d 2 0 1\n",
			err:   feature.ErrNoLabel,
		},
		"two labels": {
			names: "x d y 2 0 1\ny d y 2 0 1\n",
			err:   feature.ErrMultipleLabels,
		},
		"continuous label": {
			names: "x c y\ny d 2 0 1\n",
			err:   feature.ErrLabelNotDiscrete,
		},
		"too few features": {
			names: "y d y 2 0 1\n",
			err:   feature.ErrTooFewFeatures,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadSchema(strings.NewReader(tc.names))
			assert.True(t, errors.Is(err, tc.err), "expected %v, got %v", tc.err, err)
		})
	}
}

func TestReadDeclarationsMalformed(t *testing.T) {
	for name, names := range map[string]string{
		"missing kind":      "x\n",
		"unknown kind":      "x q\n",
		"missing count":     "x d y\n",
		"non numeric value": "x d 2 0 a\n",
		"single bound":      "x c 0\n",
		"bad bound":         "x c a 1\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadDeclarations(strings.NewReader(names))
			assert.Error(t, err)
		})
	}
}
