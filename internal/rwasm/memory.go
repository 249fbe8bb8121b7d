package rwasm

// PageSize is the size in bytes of one linear memory page.
const PageSize = 65536

// GrowFailed is the sentinel memory.grow / table.grow result pushed on
// failure, matching WebAssembly's -1-as-u32 convention.
const GrowFailed = 0xFFFFFFFF

// Memory is a growable, paged byte store bounds-checked on every access.
type Memory struct {
	data     []byte
	minPages uint32
	maxPages uint32
}

// NewMemory allocates a memory initialized to minPages, capped at maxPages.
func NewMemory(minPages, maxPages uint32) *Memory {
	return &Memory{
		data:     make([]byte, uint64(minPages)*PageSize),
		minPages: minPages,
		maxPages: maxPages,
	}
}

// Pages returns the current size in pages.
func (m *Memory) Pages() uint32 { return uint32(len(m.data) / PageSize) }

// Size returns the current size in bytes.
func (m *Memory) Size() uint32 { return uint32(len(m.data)) }

// Grow attempts to grow memory by delta pages, returning the previous page
// count, and false if the growth would exceed maxPages.
func (m *Memory) Grow(delta uint32) (previous uint32, ok bool) {
	previous = m.Pages()
	next := uint64(previous) + uint64(delta)
	if next > uint64(m.maxPages) {
		return previous, false
	}
	grown := make([]byte, next*PageSize)
	copy(grown, m.data)
	m.data = grown
	return previous, true
}

// Bytes exposes the backing store directly; callers must bounds-check.
func (m *Memory) Bytes() []byte { return m.data }
