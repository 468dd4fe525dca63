package vm

import (
	"regvm/internal/encoding"
	. "regvm/internal/encoding"
	"regvm/internal/regfile"
	"regvm/internal/word"
)

// TargetRegs reports which register indices Execute would read from and
// write to for instruction i, without running it. Declarative and must stay
// coherent with Execute (§4.D design note) — the debugger's highlighting is
// the only consumer, so any drift is invisible except as a wrong highlight.
func TargetRegs(i encoding.Instruction) (written, read []int) {
	reg := int(i.Reg)
	addRead := func(idx int) { read = append(read, idx) }
	addWritten := func(idx int) { written = append(written, idx) }

	if i.RFL {
		addRead(int(i.Val))
	}

	switch i.Opc {
	case NOP, SYCALL:
		// no register effect

	case HALT:
		// reads V only, handled above

	case CLEAR:
		addWritten(reg)

	case SET:
		addWritten(reg)

	case LOAD:
		addWritten(reg)

	case STORE:
		addRead(reg)

	case ADD, SUB, MUL, DIV, MOD,
		AND, OR, XOR, NAND, NOR, NXOR, SHL, SHR, RCL, RCR:
		addRead(reg)
		addWritten(reg)

	case NEG, INC, DEC, NOT, BSWAP:
		addRead(reg)
		addWritten(reg)

	case CMP:
		addRead(reg)
		addWritten(regfile.SR)
		addWritten(regfile.FR)

	case SWAP:
		addRead(reg)
		addWritten(reg)
		addWritten(int(i.Val))

	case PUSH:
		addRead(regfile.SP)
		addWritten(regfile.SP)

	case DUP:
		addRead(regfile.SP)
		addWritten(regfile.SP)

	case POP:
		addRead(regfile.SP)
		addWritten(regfile.SP)
		addWritten(reg)

	case DROP:
		addRead(regfile.SP)
		addWritten(regfile.SP)

	case CALL:
		addWritten(regfile.PC)
		addWritten(regfile.LR)

	case RET:
		addRead(regfile.LR)
		addWritten(regfile.PC)
		addWritten(regfile.RR)

	case JMP:
		addWritten(regfile.PC)

	case JEQ, JNE, JGT, JGE, JLT, JLE:
		addRead(reg)
		addWritten(regfile.PC)

	case PRINT, EPRINT:
		// reads V only

	case DUMP:
		// reads the whole register file; not modelled per-register here
	}

	return written, read
}

// RAMTarget describes one region of RAM an instruction reads or writes.
// AddrIsReg distinguishes "address held in a register" (the common case,
// e.g. STORE's *reg) from "a literal address known at decode time".
type RAMTarget struct {
	AddrIsReg bool
	AddrValue word.Word
	Write     bool
}

// TargetRAM reports which RAM regions instruction i would touch, given the
// register values currently visible. Returns nil if resolving the address
// would itself fault (e.g. an out-of-range register index) — the frame
// still renders, just without that highlight (§7).
func (vm *VM) TargetRAM(i encoding.Instruction) []RAMTarget {
	v, vErr := vm.resolveVal(i)
	regVal, rErr := vm.GetReg(int(i.Reg))

	switch i.Opc {
	case LOAD:
		if vErr != nil {
			return nil
		}
		return []RAMTarget{{AddrIsReg: i.RFL, AddrValue: v, Write: false}}

	case STORE:
		if rErr != nil {
			return nil
		}
		return []RAMTarget{{AddrIsReg: true, AddrValue: regVal, Write: true}}

	case PUSH, DUP:
		sp, err := vm.GetReg(regfile.SP)
		if err != nil {
			return nil
		}
		targets := []RAMTarget{{AddrIsReg: true, AddrValue: sp, Write: true}}
		if i.Opc == DUP && vErr == nil {
			targets = append(targets, RAMTarget{AddrIsReg: i.RFL, AddrValue: v, Write: false})
		}
		return targets

	case POP, DROP:
		sp, err := vm.GetReg(regfile.SP)
		if err != nil {
			return nil
		}
		return []RAMTarget{{AddrIsReg: true, AddrValue: sp - word.Size, Write: false}}

	default:
		return nil
	}
}

// resolveVal computes V = rfl ? regs.get(val) : val without faulting the
// caller — used by metadata queries, which must degrade gracefully rather
// than abort a frame render (§7 user-visible failure behaviour).
func (vm *VM) resolveVal(i encoding.Instruction) (word.Word, error) {
	if !i.RFL {
		return i.Val, nil
	}
	return vm.GetReg(int(i.Val))
}

// TargetAddr returns the prospective jump target for control-flow
// instructions, or ok=false for anything else or if the register lookup
// that would resolve it fails.
func (vm *VM) TargetAddr(i encoding.Instruction) (addr word.Word, ok bool) {
	if !encoding.IsControlFlow(i.Opc) {
		return 0, false
	}
	if i.Opc == RET {
		lr, err := vm.GetReg(regfile.LR)
		if err != nil {
			return 0, false
		}
		return lr, true
	}
	v, err := vm.resolveVal(i)
	if err != nil {
		return 0, false
	}
	return v, true
}
