package translator

type frameKind int

const (
	frameBody frameKind = iota
	frameBlock
	frameLoop
	frameIf
)

// ctrlFrame is one entry of the control-frame stack a function body is
// flattened against. Forward branches targeting a frame that hasn't closed
// yet record their instruction index in brFixups; backward branches (to a
// loop head) resolve immediately since the target PC is already known.
type ctrlFrame struct {
	kind frameKind

	hasResult bool // arity of the label this frame exposes to br (0 or 1)

	stackHeightAtEntry int // operand-stack height when the frame was entered

	loopHeadPC int // valid only for frameLoop: absolute PC branches jump back to

	brFixups []int // indices of not-yet-resolved forward branch instructions

	elseFixup int // frameIf only: index of the BrIfEqz testing the condition, -1 once resolved

	fuelMarkIdx int // index of this frame's ConsumeFuel instruction, -1 if untracked
}

// labelKeep is the number of values a branch to this frame keeps on top of
// the stack. A loop's label type is its own entry (param) arity, which in
// this single-result MVP model is always 0: branching to a loop restarts
// it rather than supplying a result.
func (f *ctrlFrame) labelKeep() uint32 {
	if f.kind == frameLoop {
		return 0
	}
	if f.hasResult {
		return 1
	}
	return 0
}
