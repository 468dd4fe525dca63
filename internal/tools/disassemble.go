// Package tools provides address-based static analysis over a loaded
// program image: disassembly, structural linting, and cross-referencing.
// Re-grounded from the teacher's symbol/AST-based tools package onto decoded
// binary addresses, since there is no assembler or symbol table here (§9).
package tools

import (
	"fmt"
	"strings"

	"regvm/internal/encoding"
	"regvm/internal/word"
)

// Line pairs one decoded instruction with the address it was decoded from.
type Line struct {
	Addr        word.Word
	Instruction encoding.Instruction
	Length      int
}

// Scan decodes ram sequentially from address 0 until Decode returns false,
// the same traversal vm.VM.ShowProgram uses — shared here so Lint and
// CrossReference don't each re-walk the image independently.
func Scan(ram []byte) []Line {
	var out []Line
	addr := word.Word(0)
	for {
		inst, length, ok := encoding.Decode(ram, addr)
		if !ok {
			break
		}
		out = append(out, Line{Addr: addr, Instruction: inst, Length: length})
		addr += word.Word(length)
	}
	return out
}

// Disassemble renders one "AAAA: MNEMONIC REG VAL" line per decoded
// instruction in ram.
func Disassemble(ram []byte) []string {
	lines := Scan(ram)
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = fmt.Sprintf("%04X: %s", uint64(l.Addr), l.Instruction.String())
	}
	return out
}

// DisassembleString joins Disassemble's lines with newlines, for CLI output.
func DisassembleString(ram []byte) string {
	return strings.Join(Disassemble(ram), "\n")
}
