// Package host defines the capability interface the interpreter uses to
// invoke externally-registered functions reached via the Call opcode. The
// registry itself — how host functions get bound to names or WASI-style
// ABIs — is an external collaborator (spec.md §1); this package only fixes
// the call shape the interpreter depends on.
package host

import (
	"context"
	"errors"
)

// Func is a host function callable by FuncIdx from the Call/ReturnCall
// opcodes. It receives the popped argument values in call order and
// returns result values in return order, or an error to trap the
// invocation.
type Func func(ctx context.Context, args []uint64) ([]uint64, error)

// Error lets a host function pick the HostCode an interpreter HostFailure
// trap reports, instead of always reporting code zero.
type Error struct {
	Code uint32
}

func (e *Error) Error() string { return "rwasm: host failure" }

// ErrSuspend is returned by a Func to pause the invocation instead of
// failing it: the interpreter captures a Snapshot at the call site and
// reports it to the caller in place of a result. Resume re-enters the call
// with the host-supplied results standing in for this call's return values.
var ErrSuspend = errors.New("rwasm: host requested suspension")

// Registry resolves FuncIdx to a callable Func. A Registry is read-only
// once built and may be shared across concurrent Interpreter invocations.
type Registry struct {
	funcs map[uint32]Func
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry { return &Registry{funcs: map[uint32]Func{}} }

// Register binds idx to fn. Registering the same idx twice replaces the
// previous binding.
func (r *Registry) Register(idx uint32, fn Func) { r.funcs[idx] = fn }

// Lookup returns the Func bound to idx, or ok=false if none is registered.
func (r *Registry) Lookup(idx uint32) (Func, bool) {
	fn, ok := r.funcs[idx]
	return fn, ok
}
