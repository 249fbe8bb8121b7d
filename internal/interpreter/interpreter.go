// Package interpreter executes a translated rwasm.Module: a fetch-execute
// loop over the flat instruction stream, a shared value-stack-plus-call-
// frames execution model, fuel metering, and the panic/recover trap idiom
// opcode handlers use to unwind out of the dispatch loop on failure.
package interpreter

import (
	"context"

	"github.com/fluentlabs-xyz/rwasm/internal/host"
	"github.com/fluentlabs-xyz/rwasm/internal/rwasm"
	"github.com/fluentlabs-xyz/rwasm/internal/trap"
	"github.com/fluentlabs-xyz/rwasm/internal/value"
)

// haltIP is the sentinel returnIP of the outermost call frame: reaching it
// via Return means execution is complete rather than resuming a caller.
const haltIP = ^uint32(0)

// Interpreter executes one rwasm.Module. It is immutable and safe to reuse
// across concurrent Invoke calls; each call gets its own Store and
// execution state.
type Interpreter struct {
	module   *rwasm.Module
	registry *host.Registry
	cfg      Config
}

// NewInterpreter builds an Interpreter for m. registry may be nil if the
// module makes no host calls.
func NewInterpreter(m *rwasm.Module, registry *host.Registry, cfg Config) *Interpreter {
	if registry == nil {
		registry = host.NewRegistry()
	}
	if cfg.MaxRecursionDepth == 0 {
		cfg.MaxRecursionDepth = 1024
	}
	return &Interpreter{module: m, registry: registry, cfg: cfg}
}

// execState is the full mutable state of one in-flight invocation.
type execState struct {
	store  *rwasm.Store
	values []value.Value
	frames []callFrame
	ip     uint32
	fuel   uint64

	// final holds the result values once the outermost frame has
	// returned; set only when step reports outcomeDone.
	final []value.Value
}

// Snapshot captures an invocation paused mid-execution because a host call
// requested suspension (experimental/checkpoint.go's Snapshotter contract).
// Resume continues from exactly where it left off.
type Snapshot struct {
	store  *rwasm.Store
	values []value.Value
	frames []callFrame
	ip     uint32
	fuel   uint64
}

// Invoke runs the module's entrypoint with args as the designated entry
// function's parameters. It returns either the entry function's results,
// or a non-nil Snapshot if a host call suspended execution, or a trap/host
// error.
func (it *Interpreter) Invoke(ctx context.Context, args ...uint64) ([]uint64, *Snapshot, error) {
	store := rwasm.NewStore(it.module, it.effectiveMaxMemoryPages(), it.effectiveMaxTableSize())
	values := make([]value.Value, len(args))
	for i, a := range args {
		values[i] = value.Value(a)
	}
	frames := []callFrame{{base: len(args), returnIP: haltIP}}
	entryOffset := it.module.EntrypointFunc()
	offsets := it.module.FunctionOffsets()
	st := &execState{
		store:  store,
		values: values,
		frames: frames,
		ip:     offsets[entryOffset] + 1, // skip the entrypoint's own SignatureCheck slot
		fuel:   it.cfg.MaxFuel,
	}
	return it.run(ctx, st)
}

// Resume continues a Snapshot captured by a suspended host call, supplying
// hostResults as that call's return values.
func (it *Interpreter) Resume(ctx context.Context, snap *Snapshot, hostResults []uint64) ([]uint64, *Snapshot, error) {
	st := &execState{
		store:  snap.store,
		values: append(snap.values, toValues(hostResults)...),
		frames: snap.frames,
		ip:     snap.ip,
		fuel:   snap.fuel,
	}
	return it.run(ctx, st)
}

func toValues(u []uint64) []value.Value {
	out := make([]value.Value, len(u))
	for i, v := range u {
		out[i] = value.Value(v)
	}
	return out
}

func (it *Interpreter) effectiveMaxMemoryPages() uint32 {
	if it.cfg.MaxMemoryPages == 0 || it.cfg.MaxMemoryPages > absoluteMaxPages {
		return absoluteMaxPages
	}
	return it.cfg.MaxMemoryPages
}

func (it *Interpreter) effectiveMaxTableSize() uint32 {
	if it.cfg.MaxTableSize == 0 || it.cfg.MaxTableSize > absoluteMaxTableSize {
		return absoluteMaxTableSize
	}
	return it.cfg.MaxTableSize
}

// run drives the fetch-execute loop until the outermost call frame
// returns, a host call suspends, or a trap/host error unwinds the stack.
func (it *Interpreter) run(ctx context.Context, st *execState) (results []uint64, snap *Snapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			if te, ok := trap.AsTrap(r); ok {
				err = te
				return
			}
			panic(r)
		}
	}()

	for {
		instr := it.module.Instructions[st.ip]
		if it.cfg.Tracer != nil {
			it.cfg.Tracer.OnInstruction(st.ip)
		}

		outcome, err2 := it.step(ctx, st, instr)
		if err2 != nil {
			return nil, nil, err2
		}
		switch outcome {
		case outcomeSuspended:
			return nil, &Snapshot{store: st.store, values: st.values, frames: st.frames, ip: st.ip, fuel: st.fuel}, nil
		case outcomeDone:
			out := make([]uint64, len(st.final))
			for i, v := range st.final {
				out[i] = uint64(v)
			}
			return out, nil, nil
		}
	}
}
