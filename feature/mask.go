package feature

import (
	"fmt"

	"github.com/yourbasic/bit"
)

/*
Mask is a growable set of flags, one per feature index, telling which
features are still eligible for splitting along a tree path. Flags that were
never set read as false, and reading never changes the mask.
*/
type Mask struct {
	bits *bit.Set
}

// NewMask returns an empty mask
func NewMask() *Mask {
	return &Mask{bit.New()}
}

/*
NewMaskFor takes a schema and returns a mask with every feature but the
label set.
*/
func NewMaskFor(s *Schema) *Mask {
	m := NewMask()
	for i := 0; i < s.Len(); i++ {
		if i != s.LabelIndex() {
			m.bits.Add(i)
		}
	}
	return m
}

// Set sets the flag at index i to v. Negative indexes are ignored.
func (m *Mask) Set(i int, v bool) {
	if i < 0 {
		return
	}
	if v {
		m.bits.Add(i)
		return
	}
	m.bits.Delete(i)
}

// Get returns the flag at index i, false for indexes never set
func (m *Mask) Get(i int) bool {
	if i < 0 {
		return false
	}
	return m.bits.Contains(i)
}

// Copy returns an independent copy of the mask
func (m *Mask) Copy() *Mask {
	return &Mask{new(bit.Set).Set(m.bits)}
}

// Empty returns whether no flag is set
func (m *Mask) Empty() bool {
	return m.bits.Empty()
}

// Len returns the number of flags set
func (m *Mask) Len() int {
	return m.bits.Size()
}

// Indexes returns the indexes whose flag is set in increasing order
func (m *Mask) Indexes() []int {
	indexes := make([]int, 0, m.bits.Size())
	m.bits.Visit(func(i int) bool {
		indexes = append(indexes, i)
		return false
	})
	return indexes
}

func (m *Mask) String() string {
	return fmt.Sprintf("%v", m.Indexes())
}
