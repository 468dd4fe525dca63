package encoding

import (
	"fmt"

	"regvm/internal/regfile"
	"regvm/internal/word"
)

// Decode parses one instruction whose first byte sits at addr in ram. It
// returns the decoded instruction, its encoded length, and true on success.
// A short read at the tail of ram (fewer bytes remaining than the form
// requires) yields ok=false — never an error, and never confused with a
// malformed opcode, which is deferred to Execute (§4.C). Decode is pure: it
// never mutates ram and is deterministic for a given ram.
func Decode(ram []byte, addr word.Word) (Instruction, int, bool) {
	a := addr.AsInt()
	if a < 0 || a+2 > len(ram) {
		return Instruction{}, 0, false
	}

	first := ram[a]
	rfl := first&0x80 != 0
	opc := Opcode(first & 0x7F)
	reg := ram[a+1]

	if rfl {
		if a+3 > len(ram) {
			return Instruction{}, 0, false
		}
		val := word.Word(ram[a+2])
		return Instruction{RFL: true, Opc: opc, Reg: reg, Val: val}, 3, true
	}

	length := 2 + word.Size
	if a+length > len(ram) {
		return Instruction{}, 0, false
	}
	val := word.FromBytes(ram[a+2 : a+length])
	return Instruction{RFL: false, Opc: opc, Reg: reg, Val: val}, length, true
}

// ErrBadRegisterOperand is returned by Encode when an instruction claims
// register mode (RFL) but names a register-mode operand byte that is not a
// valid register index.
type ErrBadRegisterOperand struct {
	Val word.Word
}

func (e *ErrBadRegisterOperand) Error() string {
	return fmt.Sprintf("register-mode operand %d is not a valid register index", e.Val)
}

// Encode is the inverse of Decode: it renders an Instruction back into
// wire bytes. Used by tests and by internal/tools to build fixture
// programs; the VM itself never calls Encode.
func Encode(i Instruction) ([]byte, error) {
	if i.RFL && i.Val >= word.Word(regfile.Count) {
		return nil, &ErrBadRegisterOperand{Val: i.Val}
	}

	first := byte(i.Opc) & 0x7F
	if i.RFL {
		first |= 0x80
	}

	if i.RFL {
		return []byte{first, i.Reg, byte(i.Val)}, nil
	}

	out := make([]byte, 2, 2+word.Size)
	out[0] = first
	out[1] = i.Reg
	out = append(out, i.Val.Bytes()...)
	return out, nil
}
