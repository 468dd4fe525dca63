package encoding

import (
	"fmt"

	"regvm/internal/regfile"
	"regvm/internal/word"
)

// Instruction is the decoded form of one instruction: the register-flag bit,
// the opcode, the primary/destination register index, and the resolved
// payload word (either a literal immediate or a zero-extended register
// index, depending on RFL).
type Instruction struct {
	RFL bool
	Opc Opcode
	Reg byte
	Val word.Word
}

// EncodedLength returns the number of bytes this instruction occupies in
// RAM: 3 for register-mode (RFL set), 2+W for immediate-mode.
func (i Instruction) EncodedLength() int {
	if i.RFL {
		return 3
	}
	return 2 + word.Size
}

// String renders the instruction in a disassembly-friendly form, e.g.
// "SET    R0  $000000000000002A" or "JNE    R0  %R0".
func (i Instruction) String() string {
	var val string
	if i.RFL {
		name, err := regfile.Name(int(i.Val))
		if err != nil {
			val = fmt.Sprintf("%%?%d", i.Val)
		} else {
			val = "%" + name
		}
	} else {
		val = fmt.Sprintf("$%0*X", word.Size*2, uint64(i.Val))
	}
	reg, err := regfile.Name(int(i.Reg))
	if err != nil {
		reg = fmt.Sprintf("?%d", i.Reg)
	}
	return fmt.Sprintf("%-6s %-3s %s", i.Opc, reg, val)
}
