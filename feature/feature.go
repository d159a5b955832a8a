/*
Package feature defines the properties observed on the entries of a dataset,
the schemas grouping them and the criteria used to split entries on them.
*/
package feature

import (
	"fmt"
	"math"
	"strconv"
)

// Kind tells apart discrete features from continuous ones
type Kind int

const (
	// Discrete features take a value among a finite set of integer codes
	Discrete Kind = iota
	// Continuous features take a real value
	Continuous
)

// NoPrecision is the precision of continuous features for which every
// digit of their values is significant.
const NoPrecision = -1

func (k Kind) String() string {
	switch k {
	case Discrete:
		return "discrete"
	case Continuous:
		return "continuous"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

/*
Feature represents a property that can be observed on an entry.

Its Valid method takes a Value and returns nil if the value is acceptable for
the feature, or an error describing why it is not.
*/
type Feature interface {
	Name() string
	Kind() Kind
	IsLabel() bool
	Valid(Value) error
}

/*
DiscreteFeature represents a property that can be observed and that can only
take a value among a finite set of integer codes.
*/
type DiscreteFeature struct {
	name   string
	values []int
	label  bool
}

/*
ContinuousFeature represents a property that can be observed and that can take
a real value between a lower and an upper bound.
*/
type ContinuousFeature struct {
	name         string
	lower, upper float64
	precision    int
}

/*
NewDiscreteFeature takes a name string and a slice of available codes
and returns a discrete feature with the given name and available values.
*/
func NewDiscreteFeature(name string, values []int) *DiscreteFeature {
	return &DiscreteFeature{name: name, values: append([]int(nil), values...)}
}

/*
NewLabelFeature takes a name string and a slice of available codes and
returns a discrete feature flagged as the label a tree must predict.
*/
func NewLabelFeature(name string, values []int) *DiscreteFeature {
	df := NewDiscreteFeature(name, values)
	df.label = true
	return df
}

/*
NewContinuousFeature takes a name string, the lower and upper bounds for its
values and the number of decimal places that are significant when comparing
them against thresholds, and returns a continuous feature. Pass -Inf/+Inf to
leave it unbounded and NoPrecision to consider every digit.
*/
func NewContinuousFeature(name string, lower, upper float64, precision int) *ContinuousFeature {
	return &ContinuousFeature{name, lower, upper, precision}
}

// Name returns a string with the name of the feature
func (df *DiscreteFeature) Name() string {
	return df.name
}

// Kind returns Discrete
func (df *DiscreteFeature) Kind() Kind {
	return Discrete
}

// IsLabel returns whether the feature is the one trees predict
func (df *DiscreteFeature) IsLabel() bool {
	return df.label
}

/*
Valid receives a Value and returns nil when it is a discrete value whose code
is among the available values of the feature. Otherwise it returns an error
describing the reason.
*/
func (df *DiscreteFeature) Valid(v Value) error {
	if v.Kind() != Discrete {
		return fmt.Errorf("discrete feature %s expects discrete value, got %s value %v", df.name, v.Kind(), v)
	}
	for _, av := range df.values {
		if av == v.Code() {
			return nil
		}
	}
	return fmt.Errorf("discrete feature %s got unknown value %d", df.name, v.Code())
}

// Values returns the codes available for the feature in declaration order
func (df *DiscreteFeature) Values() []int {
	return df.values
}

func (df *DiscreteFeature) String() string {
	return df.name
}

// Name returns a string with the name of the feature
func (cf *ContinuousFeature) Name() string {
	return cf.name
}

// Kind returns Continuous
func (cf *ContinuousFeature) Kind() Kind {
	return Continuous
}

// IsLabel returns false: labels are always discrete
func (cf *ContinuousFeature) IsLabel() bool {
	return false
}

/*
Valid receives a Value and returns nil when it is a continuous value that is
a number between the bounds of the feature (both included). Otherwise it
returns an error describing the reason.
*/
func (cf *ContinuousFeature) Valid(v Value) error {
	if v.Kind() != Continuous {
		return fmt.Errorf("continuous feature %s expects continuous value, got %s value %v", cf.name, v.Kind(), v)
	}
	n := v.Number()
	if math.IsNaN(n) {
		return fmt.Errorf("continuous feature %s got NaN", cf.name)
	}
	if n < cf.lower || n > cf.upper {
		return fmt.Errorf("continuous feature %s got %v out of bounds [%v, %v]", cf.name, n, cf.lower, cf.upper)
	}
	return nil
}

// Bounds returns the lower and upper bound for the values of the feature
func (cf *ContinuousFeature) Bounds() (float64, float64) {
	return cf.lower, cf.upper
}

// Precision returns the number of significant decimal places, or NoPrecision
func (cf *ContinuousFeature) Precision() int {
	return cf.precision
}

// Round returns v rounded to the precision of the feature
func (cf *ContinuousFeature) Round(v float64) float64 {
	if cf.precision < 0 || math.IsInf(v, 0) {
		return v
	}
	p := math.Pow(10, float64(cf.precision))
	return math.Round(v*p) / p
}

func (cf *ContinuousFeature) String() string {
	return cf.name
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
