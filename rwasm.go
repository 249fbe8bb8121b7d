// Package rwasm is the public entry point for the translate-encode-decode-
// execute pipeline: Translate lowers a validated source module into the
// flat rwasm bytecode form, Encode/Decode serialize it to and from its
// binary representation, and NewInterpreter builds an execution engine for
// it.
package rwasm

import (
	"os"

	"github.com/fluentlabs-xyz/rwasm/internal/host"
	"github.com/fluentlabs-xyz/rwasm/internal/interpreter"
	"github.com/fluentlabs-xyz/rwasm/internal/logging"
	rwasmcore "github.com/fluentlabs-xyz/rwasm/internal/rwasm"
	"github.com/fluentlabs-xyz/rwasm/internal/rwasm/binary"
	"github.com/fluentlabs-xyz/rwasm/internal/sourcewasm"
	"github.com/fluentlabs-xyz/rwasm/internal/translator"
)

// Module is the flattened, binary-ready program Translate and Decode
// produce and Encode/NewInterpreter consume.
type Module = rwasmcore.Module

// Interpreter executes one translated Module. See (*Interpreter).Invoke
// and (*Interpreter).Resume.
type Interpreter = interpreter.Interpreter

// Snapshot captures an invocation paused because a host call requested
// suspension; pass it to (*Interpreter).Resume to continue.
type Snapshot = interpreter.Snapshot

// Registry resolves host-call function indices to callable Go functions.
type Registry = host.Registry

// NewRegistry returns an empty Registry, ready for Register calls.
func NewRegistry() *Registry { return host.NewRegistry() }

// Translate lowers src into a flat Module. cfg may be nil, in which case
// NewConfig's defaults apply; only cfg's fuelEnabled setting affects
// translation, since ConsumeFuel markers are only worth emitting when fuel
// metering will actually consult them.
func Translate(src *sourcewasm.Module, cfg *Config) (*Module, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	return translator.Translate(src, translator.Options{TrackFuel: cfg.fuelEnabled})
}

// Encode serializes m into its bit-exact binary form.
func Encode(m *Module) []byte { return binary.Encode(m) }

// Decode parses a binary image produced by Encode back into a Module.
func Decode(b []byte) (*Module, error) { return binary.Decode(b) }

// NewInterpreter builds an Interpreter for m. registry may be nil if m
// makes no host calls. cfg may be nil, in which case NewConfig's defaults
// apply.
func NewInterpreter(m *Module, registry *Registry, cfg *Config) *Interpreter {
	if cfg == nil {
		cfg = NewConfig()
	}
	icfg := interpreter.Config{
		FuelEnabled:       cfg.fuelEnabled,
		MaxFuel:           cfg.maxFuel,
		MaxMemoryPages:    cfg.maxMemoryPages,
		MaxTableSize:      cfg.maxTableSize,
		MaxRecursionDepth: cfg.maxRecursionDepth,
	}
	if cfg.enableTracing {
		w := cfg.tracerWriter
		if w == nil {
			w = os.Stdout
		}
		icfg.Tracer = logging.NewTracer(w, m, cfg.tracerScopes)
	}
	return interpreter.NewInterpreter(m, registry, icfg)
}
