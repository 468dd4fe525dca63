// Package regfile implements the VM's named, word-sized register bank.
package regfile

import (
	"fmt"

	"regvm/internal/word"
)

// Register index constants, matching the fixed role table.
const (
	PC = iota
	SP
	BP
	LR
	RR
	SR
	FR
	R0
	R1
	R2
	R3
	R4
	R5
	R6
	R7

	Count // number of registers
)

var names = [Count]string{
	PC: "PC", SP: "SP", BP: "BP", LR: "LR", RR: "RR", SR: "SR", FR: "FR",
	R0: "R0", R1: "R1", R2: "R2", R3: "R3", R4: "R4", R5: "R5", R6: "R6", R7: "R7",
}

// ErrInvalidRegister is returned by Get/Set/Name when idx is out of range.
type ErrInvalidRegister struct {
	Idx int
}

func (e *ErrInvalidRegister) Error() string {
	return fmt.Sprintf("invalid register index %d", e.Idx)
}

// File is the register bank: Count word registers, all zero-initialised.
type File struct {
	regs [Count]word.Word
}

// New returns a zero-initialised register file.
func New() *File {
	return &File{}
}

// Reset zeroes every register in place.
func (f *File) Reset() {
	f.regs = [Count]word.Word{}
}

// Get returns the value of register idx.
func (f *File) Get(idx int) (word.Word, error) {
	if idx < 0 || idx >= Count {
		return 0, &ErrInvalidRegister{Idx: idx}
	}
	return f.regs[idx], nil
}

// Set stores value into register idx.
func (f *File) Set(idx int, value word.Word) error {
	if idx < 0 || idx >= Count {
		return &ErrInvalidRegister{Idx: idx}
	}
	f.regs[idx] = value
	return nil
}

// Name returns the mnemonic name of register idx.
func Name(idx int) (string, error) {
	if idx < 0 || idx >= Count {
		return "", &ErrInvalidRegister{Idx: idx}
	}
	return names[idx], nil
}

// Show returns one "NAME XXXXXXXXXXXXXXXX" line per register, in index order.
func (f *File) Show() []string {
	lines := make([]string, Count)
	for i, v := range f.regs {
		lines[i] = fmt.Sprintf("%-3s %016X", names[i], uint64(v))
	}
	return lines
}
