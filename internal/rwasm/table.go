package rwasm

import "github.com/fluentlabs-xyz/rwasm/internal/value"

// ElemType distinguishes a table's element kind. SIMD/GC reference types
// beyond funcref are non-goals (spec.md §1).
type ElemType byte

const (
	ElemTypeFuncref ElemType = 0x70
)

// Table is a vector of funcref-or-null, growable up to Max elements.
type Table struct {
	elems []value.Value
	typ   ElemType
	max   uint32
}

// NewTable allocates a table initialized to min elements (all null), capped
// at max.
func NewTable(typ ElemType, min, max uint32) *Table {
	return &Table{elems: make([]value.Value, min), typ: typ, max: max}
}

// Type returns the table's element type.
func (t *Table) Type() ElemType { return t.typ }

// Size returns the current element count.
func (t *Table) Size() uint32 { return uint32(len(t.elems)) }

// Get returns the element at i, or false if i is out of bounds.
func (t *Table) Get(i uint32) (value.Value, bool) {
	if i >= uint32(len(t.elems)) {
		return 0, false
	}
	return t.elems[i], true
}

// Set writes the element at i, or returns false if i is out of bounds.
func (t *Table) Set(i uint32, v value.Value) bool {
	if i >= uint32(len(t.elems)) {
		return false
	}
	t.elems[i] = v
	return true
}

// Grow attempts to grow the table by delta elements, filling new slots with
// fill. Returns the previous size, and false if the growth would exceed max.
func (t *Table) Grow(delta uint32, fill value.Value) (previous uint32, ok bool) {
	previous = t.Size()
	next := uint64(previous) + uint64(delta)
	if next > uint64(t.max) {
		return previous, false
	}
	grown := make([]value.Value, next)
	copy(grown, t.elems)
	for i := previous; i < uint32(next); i++ {
		grown[i] = fill
	}
	t.elems = grown
	return previous, true
}

// Fill overwrites count elements starting at i with v. Callers must
// bounds-check i+count against Size before calling.
func (t *Table) Fill(i, count uint32, v value.Value) {
	for k := uint32(0); k < count; k++ {
		t.elems[i+k] = v
	}
}
