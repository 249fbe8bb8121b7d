package rwasm

import (
	"github.com/fluentlabs-xyz/rwasm/internal/logging"
)

// Config controls translation- and runtime-time behavior, with the default
// set by NewConfig. It is immutable once built: every With* method clones
// the receiver and returns the modified copy, so a Config can be shared
// and further specialized without the specializations interfering with
// each other.
type Config struct {
	fuelEnabled       bool
	maxFuel           uint64
	maxMemoryPages    uint32
	maxTableSize      uint32
	maxRecursionDepth int

	enableTracing bool
	tracerWriter  logging.Writer
	tracerScopes  logging.LogScopes
}

// defaultConfig holds every Config field's zero-fuel, generous-limits
// default. NewConfig clones it rather than returning it directly so a
// caller can never observe (or mutate) the package-level value.
var defaultConfig = &Config{
	maxMemoryPages:    4096,
	maxRecursionDepth: 1024,
	tracerScopes:      logging.LogScopeAll,
}

// NewConfig returns a Config with every field at its default: fuel
// metering disabled, a 4096-page (256 MiB) memory ceiling, and a
// 1024-frame recursion limit.
func NewConfig() *Config {
	ret := *defaultConfig
	return &ret
}

func (c *Config) clone() *Config {
	ret := *c
	return &ret
}

// WithFuelEnabled toggles fuel metering. Translate emits a ConsumeFuel
// marker at every basic block entry only when the Config it's passed has
// this set, since fuel accounting otherwise costs nothing the interpreter
// can skip at runtime.
func (c *Config) WithFuelEnabled(enabled bool) *Config {
	ret := c.clone()
	ret.fuelEnabled = enabled
	return ret
}

// WithMaxFuel sets the fuel budget an Invoke starts with. Has no effect
// unless fuel is enabled.
func (c *Config) WithMaxFuel(max uint64) *Config {
	ret := c.clone()
	ret.maxFuel = max
	return ret
}

// WithMaxMemoryPages caps how many 64KiB pages memory.grow may reach,
// independent of any limit declared in the source module. A grow past the
// cap fails and pushes 0xFFFFFFFF; it does not trap.
func (c *Config) WithMaxMemoryPages(pages uint32) *Config {
	ret := c.clone()
	ret.maxMemoryPages = pages
	return ret
}

// WithMaxTableSize caps how many elements table.grow may reach. A grow past
// the cap fails and pushes 0xFFFFFFFF; it does not trap.
func (c *Config) WithMaxTableSize(size uint32) *Config {
	ret := c.clone()
	ret.maxTableSize = size
	return ret
}

// WithMaxRecursionDepth bounds CallInternal/CallIndirect frame nesting
// before a stack-overflow trap fires. Tail calls reuse the current frame
// and are not counted.
func (c *Config) WithMaxRecursionDepth(depth int) *Config {
	ret := c.clone()
	ret.maxRecursionDepth = depth
	return ret
}

// WithTracing enables per-instruction tracing: NewInterpreter wires a
// logging.Tracer writing to w, reporting only the enabled scopes, into
// the interpreter it builds. Tracing has no effect on execution results;
// it only reports what ran.
func (c *Config) WithTracing(w logging.Writer, scopes logging.LogScopes) *Config {
	ret := c.clone()
	ret.enableTracing = true
	ret.tracerWriter = w
	ret.tracerScopes = scopes
	return ret
}
