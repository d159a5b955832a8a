package feature

import (
	"fmt"
	"math"
)

// SchemaError represents an error building a Schema
type SchemaError string

const (
	// ErrTooFewFeatures is returned for schemas with less than 2 features
	ErrTooFewFeatures = SchemaError("schema requires at least 2 features")
	// ErrNoLabel is returned for schemas where no feature is the label
	ErrNoLabel = SchemaError("schema has no label feature")
	// ErrMultipleLabels is returned for schemas with more than one label
	ErrMultipleLabels = SchemaError("schema has more than one label feature")
	// ErrLabelNotDiscrete is returned when a continuous feature is flagged as label
	ErrLabelNotDiscrete = SchemaError("label feature must be discrete")
	// ErrPossibilityCount is returned when the declared count of possible
	// values of a discrete feature does not match the supplied values
	ErrPossibilityCount = SchemaError("declared possibility count does not match supplied values")
	// ErrNoValues is returned for discrete features without available values
	ErrNoValues = SchemaError("discrete feature has no available values")
	// ErrDuplicateValue is returned for discrete features with repeated values
	ErrDuplicateValue = SchemaError("discrete feature has repeated values")
	// ErrDiscreteProperty is returned when a continuous feature declares
	// values or a possibility count
	ErrDiscreteProperty = SchemaError("continuous feature declares discrete properties")
	// ErrDuplicateFeature is returned when two features share a name
	ErrDuplicateFeature = SchemaError("duplicate feature name")
	// ErrInvalidBounds is returned for continuous features whose lower bound
	// is above the upper one
	ErrInvalidBounds = SchemaError("lower bound is greater than upper bound")
	// ErrUnnamedFeature is returned for features with an empty name
	ErrUnnamedFeature = SchemaError("feature has no name")
	// ErrNilFeature is returned when a schema is given a nil feature
	ErrNilFeature = SchemaError("nil feature")
)

func (se SchemaError) Error() string {
	return string(se)
}

/*
Schema is an ordered, immutable list of features where exactly one of them is
the label. The position of a feature in the schema is its index, used by
entries, masks and trees to refer to it.
*/
type Schema struct {
	features []Feature
	label    int
	index    map[string]int
}

/*
Declaration holds an already parsed description of a feature, as read from a
metadata document, before it is validated into a Feature.

Count is the declared number of possible values for a discrete feature and
may be nil when the document does not declare it. Lower, Upper and Precision
may be nil to leave a continuous feature unbounded or with every digit
significant.
*/
type Declaration struct {
	Name      string
	Kind      Kind
	Label     bool
	Count     *int
	Values    []int
	Lower     *float64
	Upper     *float64
	Precision *int
}

/*
NewSchema takes the features in order and returns a Schema with them or an
error if there are less than 2 features, any of them is nil or invalid, there
is not exactly one label, the label is not discrete or two features share
their name.
*/
func NewSchema(features ...Feature) (*Schema, error) {
	if len(features) < 2 {
		return nil, ErrTooFewFeatures
	}
	s := &Schema{
		features: append([]Feature(nil), features...),
		label:    -1,
		index:    make(map[string]int, len(features)),
	}
	for i, f := range features {
		if err := checkFeature(f); err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		if f.Name() == "" {
			return nil, fmt.Errorf("feature %d: %w", i, ErrUnnamedFeature)
		}
		if _, ok := s.index[f.Name()]; ok {
			return nil, fmt.Errorf("feature %q: %w", f.Name(), ErrDuplicateFeature)
		}
		s.index[f.Name()] = i
		if !f.IsLabel() {
			continue
		}
		if f.Kind() != Discrete {
			return nil, fmt.Errorf("feature %q: %w", f.Name(), ErrLabelNotDiscrete)
		}
		if s.label >= 0 {
			return nil, fmt.Errorf("features %q and %q: %w", s.features[s.label].Name(), f.Name(), ErrMultipleLabels)
		}
		s.label = i
	}
	if s.label < 0 {
		return nil, ErrNoLabel
	}
	return s, nil
}

// checkFeature returns the SchemaError that makes f unusable in a schema, if
// any
func checkFeature(f Feature) error {
	switch f := f.(type) {
	case nil:
		return ErrNilFeature
	case *DiscreteFeature:
		if f == nil {
			return ErrNilFeature
		}
		if len(f.Values()) == 0 {
			return fmt.Errorf("%q: %w", f.Name(), ErrNoValues)
		}
	case *ContinuousFeature:
		if f == nil {
			return ErrNilFeature
		}
		if lower, upper := f.Bounds(); lower > upper || math.IsNaN(lower) || math.IsNaN(upper) {
			return fmt.Errorf("%q: %w", f.Name(), ErrInvalidBounds)
		}
	}
	return nil
}

/*
Declare takes a slice of declarations and returns a Schema with the features
they describe or the first SchemaError found validating them.
*/
func Declare(decls []Declaration) (*Schema, error) {
	features := make([]Feature, 0, len(decls))
	for _, d := range decls {
		f, err := d.Feature()
		if err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	return NewSchema(features...)
}

/*
Feature validates the declaration and returns the Feature it describes or an
error wrapping the SchemaError that makes it invalid.
*/
func (d Declaration) Feature() (Feature, error) {
	if d.Name == "" {
		return nil, ErrUnnamedFeature
	}
	switch d.Kind {
	case Discrete:
		if d.Count != nil && *d.Count != len(d.Values) {
			return nil, fmt.Errorf("feature %q declares %d values and supplies %d: %w", d.Name, *d.Count, len(d.Values), ErrPossibilityCount)
		}
		if len(d.Values) == 0 {
			return nil, fmt.Errorf("feature %q: %w", d.Name, ErrNoValues)
		}
		seen := make(map[int]bool, len(d.Values))
		for _, v := range d.Values {
			if seen[v] {
				return nil, fmt.Errorf("feature %q value %d: %w", d.Name, v, ErrDuplicateValue)
			}
			seen[v] = true
		}
		if d.Label {
			return NewLabelFeature(d.Name, d.Values), nil
		}
		return NewDiscreteFeature(d.Name, d.Values), nil
	case Continuous:
		if d.Label {
			return nil, fmt.Errorf("feature %q: %w", d.Name, ErrLabelNotDiscrete)
		}
		if d.Count != nil || len(d.Values) > 0 {
			return nil, fmt.Errorf("feature %q: %w", d.Name, ErrDiscreteProperty)
		}
		lower, upper, precision := math.Inf(-1), math.Inf(1), NoPrecision
		if d.Lower != nil {
			lower = *d.Lower
		}
		if d.Upper != nil {
			upper = *d.Upper
		}
		if d.Precision != nil && *d.Precision >= 0 {
			precision = *d.Precision
		}
		if lower > upper {
			return nil, fmt.Errorf("feature %q: %w", d.Name, ErrInvalidBounds)
		}
		return NewContinuousFeature(d.Name, lower, upper, precision), nil
	}
	return nil, fmt.Errorf("feature %q has unknown %v", d.Name, d.Kind)
}

// Len returns the number of features in the schema
func (s *Schema) Len() int {
	return len(s.features)
}

// Feature returns the feature at index i, nil if out of range
func (s *Schema) Feature(i int) Feature {
	if i < 0 || i >= len(s.features) {
		return nil
	}
	return s.features[i]
}

// Features returns a copy of the features of the schema in order
func (s *Schema) Features() []Feature {
	return append([]Feature(nil), s.features...)
}

// LabelIndex returns the index of the label feature
func (s *Schema) LabelIndex() int {
	return s.label
}

// Label returns the label feature
func (s *Schema) Label() *DiscreteFeature {
	if df, ok := s.features[s.label].(*DiscreteFeature); ok {
		return df
	}
	return nil
}

// Index returns the index of the feature with the given name
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}
