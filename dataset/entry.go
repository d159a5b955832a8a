/*
Package dataset provides the entries trees are grown from and the partitions
grouping them.
*/
package dataset

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pbanos/sapling/feature"
)

/*
Entry represents an observation: a value for each feature of a schema, in
the order of the schema. Entries are never modified once built.
*/
type Entry struct {
	values []feature.Value
}

// NewEntry takes the values of an entry in schema order and returns the entry
func NewEntry(values ...feature.Value) *Entry {
	return &Entry{append([]feature.Value(nil), values...)}
}

// Len returns the number of values in the entry
func (e *Entry) Len() int {
	return len(e.values)
}

// Value returns the value at index i, the zero Value if out of range
func (e *Entry) Value(i int) feature.Value {
	if i < 0 || i >= len(e.values) {
		return feature.Value{}
	}
	return e.values[i]
}

// Values returns a copy of the values of the entry
func (e *Entry) Values() []feature.Value {
	return append([]feature.Value(nil), e.values...)
}

/*
ValueFor implements feature.Sample, returning the value at index i or an
error if the entry has no such value.
*/
func (e *Entry) ValueFor(_ context.Context, i int) (feature.Value, error) {
	if i < 0 || i >= len(e.values) {
		return feature.Value{}, fmt.Errorf("entry has no value for feature %d", i)
	}
	return e.values[i], nil
}

func (e *Entry) String() string {
	vs := make([]string, 0, len(e.values))
	for _, v := range e.values {
		vs = append(vs, v.String())
	}
	return fmt.Sprintf("[%s]", strings.Join(vs, " "))
}

// Distribution maps label codes to the number of entries with that label
type Distribution map[int]int

// Total returns the number of entries in the distribution
func (d Distribution) Total() int {
	var total int
	for _, c := range d {
		total += c
	}
	return total
}

// Labels returns the codes in the distribution in increasing order
func (d Distribution) Labels() []int {
	labels := make([]int, 0, len(d))
	for l := range d {
		labels = append(labels, l)
	}
	sort.Ints(labels)
	return labels
}
