package feature

import (
	"context"
	"fmt"
)

/*
Sample is an interface for something that can satisfy a Criterion.

Its ValueFor method returns the value corresponding to the feature at the
index passed as parameter.
*/
type Sample interface {
	ValueFor(ctx context.Context, index int) (Value, error)
}

/*
Criterion represents the binary question a tree node asks about a feature:
whether a continuous value is below a threshold or whether a discrete value
equals a code.
*/
type Criterion struct {
	feature   Feature
	index     int
	threshold Value
}

/*
NewCriterion takes a feature, its index in the schema and a threshold and
returns the criterion comparing values of the feature against the threshold.
*/
func NewCriterion(f Feature, index int, threshold Value) *Criterion {
	return &Criterion{f, index, threshold}
}

// Feature returns the feature to which the criterion applies
func (c *Criterion) Feature() Feature {
	return c.feature
}

// FeatureIndex returns the index of the feature to which the criterion applies
func (c *Criterion) FeatureIndex() int {
	return c.index
}

// Threshold returns the value against which values are compared
func (c *Criterion) Threshold() Value {
	return c.threshold
}

/*
Holds takes a value of the criterion's feature and returns whether it
satisfies the criterion. Continuous values are rounded to the feature's
precision and must be strictly below the threshold, discrete values must be
equal to it.
*/
func (c *Criterion) Holds(v Value) bool {
	if c.threshold.Kind() == Continuous {
		n := v.Number()
		if cf, ok := c.feature.(*ContinuousFeature); ok {
			n = cf.Round(n)
		}
		return n < c.threshold.Number()
	}
	return v.Code() == c.threshold.Code()
}

/*
SatisfiedBy receives a sample as parameter and returns a boolean indicating if
the sample satisfies the criterion, or an error if the value cannot be
obtained from the sample or is of the wrong kind.
*/
func (c *Criterion) SatisfiedBy(ctx context.Context, s Sample) (bool, error) {
	v, err := s.ValueFor(ctx, c.index)
	if err != nil {
		return false, err
	}
	if v.Kind() != c.threshold.Kind() {
		return false, fmt.Errorf("feature %s expects %s value, got %s value %v", c.feature.Name(), c.threshold.Kind(), v.Kind(), v)
	}
	return c.Holds(v), nil
}

func (c *Criterion) String() string {
	if c.threshold.Kind() == Continuous {
		return fmt.Sprintf("%s < %v", c.feature.Name(), c.threshold)
	}
	return fmt.Sprintf("%s is %v", c.feature.Name(), c.threshold)
}

// Negation returns the description of values that do not satisfy the criterion
func (c *Criterion) Negation() string {
	if c.threshold.Kind() == Continuous {
		return fmt.Sprintf("%s >= %v", c.feature.Name(), c.threshold)
	}
	return fmt.Sprintf("%s is not %v", c.feature.Name(), c.threshold)
}
