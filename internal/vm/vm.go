// Package vm implements the VM core: a fixed-size RAM, a register file, two
// output buffers, and the decode/execute loop that ties them together.
// Instruction metadata (metadata.go) lives in this package beside Execute
// (execute.go) so the two cannot silently drift apart (§4.D design note).
package vm

import (
	"bytes"
	"math/rand/v2"

	"regvm/internal/encoding"
	"regvm/internal/regfile"
	"regvm/internal/word"
)

// VM owns RAM, the register file, and the two output buffers. Zero value is
// not useful; construct with New.
type VM struct {
	regs *regfile.File
	ram  [RAMLen]byte

	stdout bytes.Buffer
	stderr bytes.Buffer

	programEnd word.Word

	stats    *Statistics
	regTrace *RegisterTrace
}

// New constructs a VM with the given RAM fill mode. All registers start at
// zero regardless of fill mode — only RAM content differs.
func New(fill FillMode) *VM {
	v := &VM{regs: regfile.New()}
	if fill == FillRandom {
		r := rand.New(rand.NewPCG(1, 2))
		for i := range v.ram {
			v.ram[i] = byte(r.Uint32())
		}
	}
	return v
}

// EnableStatistics turns on cycle/opcode counting (§4.E expansion).
func (vm *VM) EnableStatistics() {
	vm.stats = newStatistics()
}

// Stats returns the current statistics snapshot, or nil if statistics were
// never enabled.
func (vm *VM) Stats() *Statistics {
	return vm.stats
}

// EnableRegisterTrace turns on per-write register tracing (§4.E expansion).
func (vm *VM) EnableRegisterTrace() {
	vm.regTrace = newRegisterTrace()
}

// Trace returns the recorded register writes, or nil if tracing was never
// enabled.
func (vm *VM) Trace() []RegisterWrite {
	if vm.regTrace == nil {
		return nil
	}
	return vm.regTrace.entries
}

// Load writes program into RAM starting at offset 0 and sets SP and BP to
// program_end; PC is left untouched (it remains 0 on a fresh VM). Returns
// program_end.
func (vm *VM) Load(program []byte) (word.Word, error) {
	if len(program) > RAMLen {
		return 0, newFault(ErrWriteOutOfMemory, "program length %d exceeds RAM size %d", len(program), RAMLen)
	}
	copy(vm.ram[:], program)
	vm.programEnd = word.Word(len(program))
	_ = vm.regs.Set(regfile.SP, vm.programEnd)
	_ = vm.regs.Set(regfile.BP, vm.programEnd)
	return vm.programEnd, nil
}

// ProgramEnd returns the byte offset just past the last loaded program byte.
func (vm *VM) ProgramEnd() word.Word {
	return vm.programEnd
}

// PC returns the current program counter.
func (vm *VM) PC() word.Word {
	v, _ := vm.regs.Get(regfile.PC)
	return v
}

// GetReg returns the value of register idx.
func (vm *VM) GetReg(idx int) (word.Word, error) {
	v, err := vm.regs.Get(idx)
	if err != nil {
		return 0, wrapFault(ErrInvalidRegister, err, "get register %d", idx)
	}
	return v, nil
}

// ShowRegs returns one "NAME XXXXXXXXXXXXXXXX" line per register.
func (vm *VM) ShowRegs() []string {
	return vm.regs.Show()
}

// DecodedInstruction pairs a decoded instruction with the RAM address it was
// decoded from — the shape ShowProgram and internal/tools both work with.
type DecodedInstruction struct {
	Instruction encoding.Instruction
	Addr        word.Word
}

// ShowProgram decodes sequentially from address 0 until Decode returns
// false, yielding (Instruction, addr) pairs — i.e. it disassembles whatever
// RAM prefix looks like valid instruction encoding, not just program_end,
// since a decode failure (not an unknown-opcode fault) is what stops it.
func (vm *VM) ShowProgram() []DecodedInstruction {
	var out []DecodedInstruction
	addr := word.Word(0)
	for {
		inst, length, ok := encoding.Decode(vm.ram[:], addr)
		if !ok {
			break
		}
		out = append(out, DecodedInstruction{Instruction: inst, Addr: addr})
		addr += word.Word(length)
	}
	return out
}

// Decode decodes the instruction at the current PC.
func (vm *VM) Decode() (encoding.Instruction, bool) {
	inst, _, ok := encoding.Decode(vm.ram[:], vm.PC())
	return inst, ok
}

// Stdout drains and returns the accumulated stdout bytes.
func (vm *VM) Stdout() []byte {
	return drain(&vm.stdout)
}

// Stderr drains and returns the accumulated stderr bytes.
func (vm *VM) Stderr() []byte {
	return drain(&vm.stderr)
}

func drain(buf *bytes.Buffer) []byte {
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	buf.Reset()
	return out
}
