/*
Package inputsample provides an implementation of feature.Sample whose values
are read from an io.Reader as they are needed.
*/
package inputsample

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/pbanos/sapling/feature"
)

/*
readSample represents a sample whose feature values
are retrieved from a reader. A feature value will be
requested using a FeatureValueRequester before reading it.
*/
type readSample struct {
	obtainedValues        map[int]feature.Value
	scanner               *bufio.Scanner
	featureValueRequester FeatureValueRequester
	schema                *feature.Schema
}

/*
FeatureValueRequester represents a way to ask
for feature values and reject the given values.
*/
type FeatureValueRequester interface {
	RequestValueFor(feature.Feature) error
	RejectValueFor(feature.Feature, string) error
}

/*
New takes an io.Reader, a schema and a FeatureValueRequester and returns a
feature.Sample.

The returned Sample ValueFor method reads feature values first
requesting them with the given FeatureValueRequester and
then parsing the values from the reader. Each value is read once: later
calls for the same feature return the value already obtained.

The parsing expects each value to be presented ending with the
'\n' character, that is in new lines. Lines will be read from the
reader until one holding a valid value for the feature is found: a
number within bounds for continuous features, or one of the declared codes
for discrete ones. Non accepted values will be rejected with the
FeatureValueRequester's RejectValueFor method.

Attempting to obtain a value for an index outside the schema, or for its
label, returns an error.
*/
func New(r io.Reader, schema *feature.Schema, featureValueRequester FeatureValueRequester) feature.Sample {
	scanner := bufio.NewScanner(r)
	return &readSample{make(map[int]feature.Value), scanner, featureValueRequester, schema}
}

func (rs *readSample) ValueFor(ctx context.Context, i int) (feature.Value, error) {
	value, ok := rs.obtainedValues[i]
	if ok {
		return value, nil
	}
	f := rs.schema.Feature(i)
	if f == nil {
		return value, fmt.Errorf("have no information about feature %d, do not know how to read its value", i)
	}
	if f.IsLabel() {
		return value, fmt.Errorf("feature %s is the label and cannot be requested", f.Name())
	}
	err := rs.featureValueRequester.RequestValueFor(f)
	if err != nil {
		return value, err
	}
	for rs.scanner.Scan() {
		if err = ctx.Err(); err != nil {
			return value, err
		}
		line := rs.scanner.Text()
		value, err = feature.ParseValue(f, line)
		if err == nil {
			rs.obtainedValues[i] = value
			return value, nil
		}
		err = rs.featureValueRequester.RejectValueFor(f, line)
		if err != nil {
			return feature.Value{}, err
		}
	}
	err = rs.scanner.Err()
	if err != nil {
		return feature.Value{}, err
	}
	return feature.Value{}, fmt.Errorf("EOF when requesting value for %s", f.Name())
}
