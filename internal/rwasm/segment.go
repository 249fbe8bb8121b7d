package rwasm

import "github.com/fluentlabs-xyz/rwasm/internal/value"

// DataSegment holds the raw bytes used by memory.init. The translator
// unifies all module data segments into the memory section with a
// zero-length sentinel at index 0 (spec.md §4.3).
type DataSegment struct {
	Bytes   []byte
	dropped bool
}

// NewDataSegment wraps raw bytes as a not-yet-dropped segment.
func NewDataSegment(b []byte) *DataSegment { return &DataSegment{Bytes: b} }

// Dropped reports whether data.drop has run against this segment.
func (d *DataSegment) Dropped() bool { return d.dropped }

// Drop sets the dropped flag. Per SPEC_FULL.md's resolution of the
// DataDrop/MemoryInit Open Question, a dropped segment subsequently reads
// as empty rather than trapping.
func (d *DataSegment) Drop() { d.dropped = true }

// Read returns the segment bytes, or an empty slice if dropped.
func (d *DataSegment) Read() []byte {
	if d.dropped {
		return nil
	}
	return d.Bytes
}

// ElementSegment holds funcref indices used by table.init, with the same
// drop lifecycle as DataSegment.
type ElementSegment struct {
	Refs    []value.Value
	dropped bool
}

// NewElementSegment wraps funcref values as a not-yet-dropped segment.
func NewElementSegment(refs []value.Value) *ElementSegment { return &ElementSegment{Refs: refs} }

// Dropped reports whether elem.drop has run against this segment.
func (e *ElementSegment) Dropped() bool { return e.dropped }

// Drop sets the dropped flag; see DataSegment.Drop for the chosen policy.
func (e *ElementSegment) Drop() { e.dropped = true }

// Read returns the segment's funcref values, or nil if dropped.
func (e *ElementSegment) Read() []value.Value {
	if e.dropped {
		return nil
	}
	return e.Refs
}
