package interpreter

import (
	"github.com/fluentlabs-xyz/rwasm/internal/rwasm"
	"github.com/fluentlabs-xyz/rwasm/internal/value"
)

// applyDropKeep performs the in-place stack-unwind Return, ReturnIfNez, and
// the BrAdjust family describe: keep the top dk.Keep values, discard the
// dk.Drop values directly beneath them, leave everything further down
// untouched.
func applyDropKeep(stack []value.Value, dk rwasm.DropKeep) []value.Value {
	if dk.Drop == 0 {
		return stack
	}
	newLen := len(stack) - int(dk.Drop)
	srcStart := len(stack) - int(dk.Keep)
	dstStart := newLen - int(dk.Keep)
	copy(stack[dstStart:newLen], stack[srcStart:])
	return stack[:newLen]
}

