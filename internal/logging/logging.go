// Package logging implements a scoped instruction tracer that satisfies
// interpreter.Observer: a callback fired before every instruction the
// interpreter executes. It is its own package, independent of interpreter,
// to avoid a dependency cycle (interpreter.Config.Tracer is an interface,
// satisfied structurally, so neither package imports the other).
package logging

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fluentlabs-xyz/rwasm/internal/rwasm"
)

// Writer is the output surface a Tracer writes its trace lines to.
type Writer interface {
	io.Writer
	io.StringWriter
}

// LogScopes is a bitset selecting which instruction families a Tracer
// reports; an instruction outside every enabled scope is skipped rather
// than logged.
type LogScopes uint64

const (
	LogScopeNone                 = LogScopes(0)
	LogScopeControl   LogScopes  = 1 << iota
	LogScopeCall
	LogScopeMemory
	LogScopeTable
	LogScopeArithmetic
	LogScopeAll = LogScopes(0xffffffffffffffff)
)

func scopeName(s LogScopes) string {
	switch s {
	case LogScopeControl:
		return "control"
	case LogScopeCall:
		return "call"
	case LogScopeMemory:
		return "memory"
	case LogScopeTable:
		return "table"
	case LogScopeArithmetic:
		return "arithmetic"
	default:
		return fmt.Sprintf("<unknown=%d>", s)
	}
}

// IsEnabled returns true if scope (or any bit in a group of scopes) is set.
func (f LogScopes) IsEnabled(scope LogScopes) bool { return f&scope != 0 }

// String implements fmt.Stringer by returning each enabled log scope,
// pipe-separated.
func (f LogScopes) String() string {
	if f == LogScopeAll {
		return "all"
	}
	var b strings.Builder
	for i := 0; i <= 63; i++ { // cycle through all bits to reduce code and maintenance
		target := LogScopes(1 << i)
		if f.IsEnabled(target) {
			if b.Len() > 0 {
				b.WriteByte('|')
			}
			b.WriteString(scopeName(target))
		}
	}
	return b.String()
}

// scopeOf classifies op into the LogScopes bit a Tracer consults to decide
// whether to report it.
func scopeOf(op rwasm.Opcode) LogScopes {
	switch {
	case op <= rwasm.OpReturnCall:
		return LogScopeControl // unreachable, local get/set/tee, br family, consume_fuel, return family
	case op <= rwasm.OpCallIndirect:
		return LogScopeCall
	case op <= rwasm.OpGlobalSet:
		return LogScopeControl // signature_check, drop, select, global access
	case op <= rwasm.OpDataDrop:
		return LogScopeMemory
	case op <= rwasm.OpRefFunc:
		return LogScopeTable
	default:
		return LogScopeArithmetic // consts, comparisons, arithmetic, conversions
	}
}

// Tracer implements interpreter.Observer: it writes one line per executed
// instruction whose scope is enabled, formatted as "<ip>: <opcode-name>".
type Tracer struct {
	w      Writer
	module *rwasm.Module
	scopes LogScopes
}

// NewTracer builds a Tracer reporting instructions from module whose scope
// is enabled in scopes, writing to w.
func NewTracer(w Writer, module *rwasm.Module, scopes LogScopes) *Tracer {
	return &Tracer{w: w, module: module, scopes: scopes}
}

// OnInstruction implements interpreter.Observer.
func (t *Tracer) OnInstruction(ip uint32) {
	instr := t.module.Instructions[ip]
	if !t.scopes.IsEnabled(scopeOf(instr.Op)) {
		return
	}
	t.w.WriteString(strconv.FormatUint(uint64(ip), 10)) //nolint
	t.w.WriteString(": ")                                //nolint
	t.w.WriteString(instr.Op.Name())                     //nolint
	t.w.WriteString("\n")                                //nolint
}
