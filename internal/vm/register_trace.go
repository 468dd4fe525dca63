package vm

import (
	"fmt"
	"strings"

	"regvm/internal/regfile"
	"regvm/internal/word"
)

// RegisterWrite records one register write observed during Execute.
// Adapted from the teacher's RegisterAccessEntry: reads aren't tracked here
// since nearly every instruction reads a register as an operand, which
// would make the trace mostly noise for a 15-register file; writes are the
// signal the debugger's register-highlight feature actually needs.
type RegisterWrite struct {
	Sequence uint64
	PC       word.Word
	Register int
	OldValue word.Word
	NewValue word.Word
}

// RegisterTrace accumulates RegisterWrite entries in execution order.
type RegisterTrace struct {
	entries  []RegisterWrite
	sequence uint64
}

func newRegisterTrace() *RegisterTrace {
	return &RegisterTrace{}
}

// record appends a write entry; called by Execute's writeReg helper.
func (t *RegisterTrace) record(pc word.Word, reg int, oldValue, newValue word.Word) {
	t.sequence++
	t.entries = append(t.entries, RegisterWrite{
		Sequence: t.sequence,
		PC:       pc,
		Register: reg,
		OldValue: oldValue,
		NewValue: newValue,
	})
}

// String renders the trace as one line per write.
func (t *RegisterTrace) String() string {
	var sb strings.Builder
	for _, e := range t.entries {
		name, err := regfile.Name(e.Register)
		if err != nil {
			name = fmt.Sprintf("?%d", e.Register)
		}
		fmt.Fprintf(&sb, "#%-4d PC=%04X %-3s %016X -> %016X\n",
			e.Sequence, uint64(e.PC), name, uint64(e.OldValue), uint64(e.NewValue))
	}
	return sb.String()
}
