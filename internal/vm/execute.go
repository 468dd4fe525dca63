package vm

import (
	"io"
	"unicode/utf8"

	"regvm/internal/encoding"
	. "regvm/internal/encoding"
	"regvm/internal/regfile"
	"regvm/internal/word"
)

// flagZero, flagSign and flagCarry are the bits CMP sets in FR. The spec
// leaves SR/FR's exact bit layout to the implementation (§9 Open Question);
// SR holds the raw wrapping subtraction result, FR holds these three flags —
// grounded on the teacher's status-register pattern, not the Rust original
// (which never implements CMP).
const (
	flagZero  = word.Word(1) << 0
	flagSign  = word.Word(1) << 1
	flagCarry = word.Word(1) << 2
)

// Execute performs the effect of one decoded instruction and returns a
// non-nil exit code only for HALT. PC advances by the instruction's encoded
// length afterward unless the instruction is a jump, call or return that
// set PC itself.
func (vm *VM) Execute(i encoding.Instruction) (*int, error) {
	pc := vm.PC()
	length := i.EncodedLength()

	regVal, err := vm.GetReg(int(i.Reg))
	if err != nil {
		return nil, err
	}

	resolve := func() (word.Word, error) {
		if !i.RFL {
			return i.Val, nil
		}
		return vm.GetReg(int(i.Val))
	}

	v, err := resolve()
	if err != nil {
		return nil, err
	}

	pcTouched := false
	jumpTo := func(target word.Word) {
		_ = vm.writeReg(regfile.PC, target)
		pcTouched = true
	}

	if vm.stats != nil {
		vm.stats.Record(i.Opc.String())
	}

	switch i.Opc {
	case NOP:
		// no effect

	case HALT:
		code := int(v)
		return &code, nil

	case CLEAR:
		if err := vm.writeReg(int(i.Reg), 0); err != nil {
			return nil, err
		}

	case SET:
		if err := vm.writeReg(int(i.Reg), v); err != nil {
			return nil, err
		}

	case LOAD:
		loaded, err := vm.readWord(v)
		if err != nil {
			return nil, err
		}
		if err := vm.writeReg(int(i.Reg), loaded); err != nil {
			return nil, err
		}

	case STORE:
		if err := vm.writeWord(regVal, v); err != nil {
			return nil, err
		}

	case ADD:
		if err := vm.writeReg(int(i.Reg), regVal+v); err != nil {
			return nil, err
		}
	case SUB:
		if err := vm.writeReg(int(i.Reg), regVal-v); err != nil {
			return nil, err
		}
	case MUL:
		if err := vm.writeReg(int(i.Reg), regVal*v); err != nil {
			return nil, err
		}
	case DIV:
		if v == 0 {
			return nil, newFault(ErrDivisionByZero, "division by zero at PC=0x%X", uint64(pc))
		}
		if err := vm.writeReg(int(i.Reg), regVal/v); err != nil {
			return nil, err
		}
	case MOD:
		if v == 0 {
			return nil, newFault(ErrDivisionByZero, "modulo by zero at PC=0x%X", uint64(pc))
		}
		if err := vm.writeReg(int(i.Reg), regVal%v); err != nil {
			return nil, err
		}

	case AND:
		if err := vm.writeReg(int(i.Reg), regVal&v); err != nil {
			return nil, err
		}
	case OR:
		if err := vm.writeReg(int(i.Reg), regVal|v); err != nil {
			return nil, err
		}
	case XOR:
		if err := vm.writeReg(int(i.Reg), regVal^v); err != nil {
			return nil, err
		}
	case NAND:
		if err := vm.writeReg(int(i.Reg), ^(regVal & v)); err != nil {
			return nil, err
		}
	case NOR:
		if err := vm.writeReg(int(i.Reg), ^(regVal | v)); err != nil {
			return nil, err
		}
	case NXOR:
		if err := vm.writeReg(int(i.Reg), ^(regVal ^ v)); err != nil {
			return nil, err
		}
	case SHL:
		if err := vm.writeReg(int(i.Reg), regVal<<(v%64)); err != nil {
			return nil, err
		}
	case SHR:
		if err := vm.writeReg(int(i.Reg), regVal>>(v%64)); err != nil {
			return nil, err
		}
	case RCL:
		shift := uint(v % 64)
		result := (regVal << shift) | (regVal >> (64 - shift))
		if shift == 0 {
			result = regVal
		}
		if err := vm.writeReg(int(i.Reg), result); err != nil {
			return nil, err
		}
	case RCR:
		shift := uint(v % 64)
		result := (regVal >> shift) | (regVal << (64 - shift))
		if shift == 0 {
			result = regVal
		}
		if err := vm.writeReg(int(i.Reg), result); err != nil {
			return nil, err
		}

	case NEG:
		if err := vm.writeReg(int(i.Reg), ^regVal + 1); err != nil {
			return nil, err
		}
	case INC:
		if err := vm.writeReg(int(i.Reg), regVal+1); err != nil {
			return nil, err
		}
	case DEC:
		if err := vm.writeReg(int(i.Reg), regVal-1); err != nil {
			return nil, err
		}
	case NOT:
		if err := vm.writeReg(int(i.Reg), ^regVal); err != nil {
			return nil, err
		}
	case BSWAP:
		if err := vm.writeReg(int(i.Reg), byteSwap(regVal)); err != nil {
			return nil, err
		}

	case CMP:
		result := regVal - v
		var flags word.Word
		if result == 0 {
			flags |= flagZero
		}
		if result&(1<<63) != 0 {
			flags |= flagSign
		}
		if regVal < v {
			flags |= flagCarry
		}
		if err := vm.writeReg(regfile.SR, result); err != nil {
			return nil, err
		}
		if err := vm.writeReg(regfile.FR, flags); err != nil {
			return nil, err
		}

	case SWAP:
		other, err := vm.GetReg(int(i.Val))
		if err != nil {
			return nil, err
		}
		if err := vm.writeReg(int(i.Reg), other); err != nil {
			return nil, err
		}
		if err := vm.writeReg(int(i.Val), regVal); err != nil {
			return nil, err
		}

	case PUSH:
		sp, err := vm.GetReg(regfile.SP)
		if err != nil {
			return nil, err
		}
		if err := vm.writeWord(sp, v); err != nil {
			return nil, err
		}
		if err := vm.writeReg(regfile.SP, sp+word.Size); err != nil {
			return nil, err
		}

	case DUP:
		sp, err := vm.GetReg(regfile.SP)
		if err != nil {
			return nil, err
		}
		src, err := vm.readWord(v)
		if err != nil {
			return nil, err
		}
		if err := vm.writeWord(sp, src); err != nil {
			return nil, err
		}
		if err := vm.writeReg(regfile.SP, sp+word.Size); err != nil {
			return nil, err
		}

	case POP:
		sp, err := vm.GetReg(regfile.SP)
		if err != nil {
			return nil, err
		}
		sp -= word.Size
		popped, err := vm.readWord(sp)
		if err != nil {
			return nil, err
		}
		if err := vm.writeReg(regfile.SP, sp); err != nil {
			return nil, err
		}
		if err := vm.writeReg(int(i.Reg), popped); err != nil {
			return nil, err
		}

	case DROP:
		sp, err := vm.GetReg(regfile.SP)
		if err != nil {
			return nil, err
		}
		if err := vm.writeReg(regfile.SP, sp-word.Size); err != nil {
			return nil, err
		}

	case CALL:
		if err := vm.writeReg(regfile.LR, pc+word.Word(length)); err != nil {
			return nil, err
		}
		jumpTo(v)

	case RET:
		if err := vm.writeReg(regfile.RR, v); err != nil {
			return nil, err
		}
		lr, err := vm.GetReg(regfile.LR)
		if err != nil {
			return nil, err
		}
		jumpTo(lr)

	case JMP:
		jumpTo(v)
	case JEQ:
		if regVal == 0 {
			jumpTo(v)
		}
	case JNE:
		if regVal != 0 {
			jumpTo(v)
		}
	case JGT:
		if regVal != 0 {
			jumpTo(v)
		}
	case JGE:
		// regVal is unsigned, so "≥ 0" always holds.
		jumpTo(v)
	case JLT:
		// regVal is unsigned, so "< 0" never holds.
	case JLE:
		if regVal == 0 {
			jumpTo(v)
		}

	case PRINT:
		if err := emitUTF8(&vm.stdout, v); err != nil {
			return nil, err
		}
	case EPRINT:
		if err := emitUTF8(&vm.stderr, v); err != nil {
			return nil, err
		}

	case SYCALL:
		return nil, newFault(ErrUnknownOpcode, "SYCALL is reserved and not implemented")

	case DUMP:
		vm.stderr.WriteString("--- DUMP ---\n")
		for _, line := range vm.ShowRegs() {
			vm.stderr.WriteString(line)
			vm.stderr.WriteByte('\n')
		}
		vm.stderr.WriteString(vm.ShowRAM())
		vm.stderr.WriteByte('\n')
		if vm.stats != nil {
			vm.stderr.WriteString(vm.stats.String())
		}
		if vm.regTrace != nil {
			vm.stderr.WriteString(vm.regTrace.String())
		}

	default:
		return nil, newFault(ErrUnknownOpcode, "unknown opcode 0x%02X at PC=0x%X", byte(i.Opc), uint64(pc))
	}

	if !pcTouched {
		if err := vm.writeReg(regfile.PC, pc+word.Word(length)); err != nil {
			return nil, err
		}
	}

	return nil, nil
}

// writeReg sets register idx to value, faulting on an invalid index and
// recording the write for register tracing when enabled.
func (vm *VM) writeReg(idx int, value word.Word) error {
	old, err := vm.regs.Get(idx)
	if err != nil {
		return wrapFault(ErrInvalidRegister, err, "write register %d", idx)
	}
	if err := vm.regs.Set(idx, value); err != nil {
		return wrapFault(ErrInvalidRegister, err, "write register %d", idx)
	}
	if vm.regTrace != nil {
		pc, _ := vm.regs.Get(regfile.PC)
		vm.regTrace.record(pc, idx, old, value)
	}
	return nil
}

func byteSwap(w word.Word) word.Word {
	b := w.Bytes()
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return word.FromBytes(b)
}

// emitUTF8 appends the little-endian bytes of v to buf, faulting if the
// result is not valid UTF-8 (trailing zero bytes are trimmed first, since a
// short ASCII/UTF-8 payload is the common case and Word is always 8 bytes).
func emitUTF8(buf io.Writer, v word.Word) error {
	b := v.Bytes()
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	b = b[:end]
	if !utf8.Valid(b) {
		return newFault(ErrInvalidUTF8, "value 0x%X is not valid UTF-8", uint64(v))
	}
	_, err := buf.Write(b)
	return err
}
