package yaml

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pbanos/sapling/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validMetadata = `
features:
  - name: x
    type: continuous
    lower: 0
    upper: 10
    precision: 2
  - name: color
    type: discrete
    values: [0, 1, 2]
  - name: width
    type: continuous
  - name: y
    type: discrete
    label: true
    count: 2
    values: [0, 1]
`

func TestReadSchema(t *testing.T) {
	s, err := ReadSchema([]byte(validMetadata))
	require.NoError(t, err)
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, 3, s.LabelIndex())

	x, ok := s.Feature(0).(*feature.ContinuousFeature)
	require.True(t, ok)
	lower, upper := x.Bounds()
	assert.Equal(t, 0.0, lower)
	assert.Equal(t, 10.0, upper)
	assert.Equal(t, 2, x.Precision())

	color, ok := s.Feature(1).(*feature.DiscreteFeature)
	require.True(t, ok)
	assert.Equal(t, []int{0, 1, 2}, color.Values())

	width, ok := s.Feature(2).(*feature.ContinuousFeature)
	require.True(t, ok)
	lower, upper = width.Bounds()
	assert.True(t, math.IsInf(lower, -1))
	assert.True(t, math.IsInf(upper, 1))
	assert.Equal(t, feature.NoPrecision, width.Precision())
}

func TestReadSchemaErrors(t *testing.T) {
	testCases := map[string]struct {
		md  string
		err error
	}{
		"count mismatch": {
			md: `
features:
  - {name: x, type: continuous}
  - {name: y, type: discrete, label: true, count: 3, values: [0, 1]}
`,
			err: feature.ErrPossibilityCount,
		},
		"no label": {
			md: `
features:
  - {name: x, type: continuous}
  - {name: y, type: discrete, values: [0, 1]}
`,
			err: feature.ErrNoLabel,
		},
		"continuous label": {
			md: `
features:
  - {name: x, type: continuous, label: true}
  - {name: y, type: discrete, values: [0, 1]}
`,
			err: feature.ErrLabelNotDiscrete,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadSchema([]byte(tc.md))
			assert.True(t, errors.Is(err, tc.err), "expected %v, got %v", tc.err, err)
		})
	}
}

func TestReadDeclarationsMalformed(t *testing.T) {
	_, err := ReadDeclarations([]byte(`features:
  - {name: x, type: ordinal}
`))
	assert.Error(t, err)
	_, err = ReadDeclarations([]byte(`other: 1`))
	assert.Error(t, err)
	_, err = ReadDeclarations([]byte(`features: {x: continuous}`))
	assert.Error(t, err)
}

func TestReadSchemaFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.yml")
	require.NoError(t, os.WriteFile(path, []byte(validMetadata), 0o600))
	s, err := ReadSchemaFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "y", s.Label().Name())

	_, err = ReadSchemaFromFile(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
