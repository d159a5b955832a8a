package feature

import (
	"fmt"
	"strconv"
	"strings"
)

/*
Value is the value an entry takes for a feature. It is either a discrete
integer code or a continuous real number, and it keeps track of which one it
is so that mismatches can be detected when splitting.

The zero Value is the discrete code 0.
*/
type Value struct {
	kind   Kind
	code   int
	number float64
}

// DiscreteValue returns a discrete Value for the given code
func DiscreteValue(code int) Value {
	return Value{kind: Discrete, code: code}
}

// ContinuousValue returns a continuous Value for the given number
func ContinuousValue(number float64) Value {
	return Value{kind: Continuous, number: number}
}

// Kind returns the kind of the value
func (v Value) Kind() Kind {
	return v.kind
}

// Code returns the code of a discrete value, 0 for continuous ones
func (v Value) Code() int {
	return v.code
}

// Number returns the number of a continuous value, 0 for discrete ones
func (v Value) Number() float64 {
	return v.number
}

func (v Value) String() string {
	if v.kind == Continuous {
		return formatNumber(v.number)
	}
	return strconv.Itoa(v.code)
}

/*
ParseValue takes a feature and the text representation of a value and
returns the value it represents for the feature, or an error if it cannot be
parsed or is not valid for the feature.
*/
func ParseValue(f Feature, s string) (Value, error) {
	var v Value
	s = strings.TrimSpace(s)
	switch f.Kind() {
	case Continuous:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return v, fmt.Errorf("converting %q to float64 for feature %s: %v", s, f.Name(), err)
		}
		v = ContinuousValue(n)
	default:
		code, err := strconv.Atoi(s)
		if err != nil {
			return v, fmt.Errorf("converting %q to a code for feature %s: %v", s, f.Name(), err)
		}
		v = DiscreteValue(code)
	}
	if err := f.Valid(v); err != nil {
		return Value{}, err
	}
	return v, nil
}
