// Package debugger implements the interactive stepping driver (§4.G) and its
// tview-based terminal front end. The driver is front-end-agnostic: it knows
// nothing about tcell or tview, only about the VM and the two-phase
// step/auto-run state machine.
package debugger

import (
	"fmt"

	"regvm/internal/encoding"
	"regvm/internal/vm"
	"regvm/internal/word"
)

// Driver owns a VM and the state needed to drive it one frame at a time:
// the two-phase LOAD/EXEC step, free-run toggling, and the scrollback that
// accumulates drained output and runtime events.
type Driver struct {
	VM *vm.VM

	program []byte
	newVM   func() *vm.VM

	LastInstruction *encoding.Instruction
	NextInstruction *encoding.Instruction

	Auto bool
	Done bool

	History *History
}

// NewDriver constructs a driver around a freshly loaded machine. newVM is
// called again on Reset to get a clean VM with the same fill mode; program
// is reloaded into it each time.
func NewDriver(newVM func() *vm.VM, program []byte, historySize int) (*Driver, error) {
	machine := newVM()
	if _, err := machine.Load(program); err != nil {
		return nil, err
	}
	return &Driver{
		VM:      machine,
		program: program,
		newVM:   newVM,
		History: NewHistory(historySize),
	}, nil
}

// Reset builds a fresh VM, reloads the program, and clears history/done —
// the 'r' key (§4.G).
func (d *Driver) Reset() error {
	machine := d.newVM()
	if _, err := machine.Load(d.program); err != nil {
		return err
	}
	d.VM = machine
	d.LastInstruction = nil
	d.NextInstruction = nil
	d.Auto = false
	d.Done = false
	d.History.Clear()
	return nil
}

// ToggleAuto flips free-run mode — the Enter key (§4.G).
func (d *Driver) ToggleAuto() {
	d.Auto = !d.Auto
}

// Step performs one Space-key press: if done, it's a no-op; otherwise this
// is the two-phase LOAD/EXEC step — a pending NextInstruction executes, or
// absent one, the current PC is decoded into NextInstruction.
func (d *Driver) Step() {
	if d.Done {
		return
	}
	if d.NextInstruction != nil {
		d.runOne(*d.NextInstruction)
		d.NextInstruction = nil
		return
	}
	inst, ok := d.VM.Decode()
	if !ok {
		d.Done = true
		d.History.Add(StyleExit, "end of program")
		return
	}
	d.LastInstruction = &inst
	d.NextInstruction = &inst
}

// Tick performs one auto-run frame: a full decode-then-execute, run once per
// driver-frame while Auto is on and not Done (§4.G).
func (d *Driver) Tick() {
	if d.Done || !d.Auto {
		return
	}
	inst, ok := d.VM.Decode()
	if !ok {
		d.Done = true
		d.Auto = false
		d.History.Add(StyleExit, "end of program")
		return
	}
	d.LastInstruction = &inst
	d.NextInstruction = nil
	d.runOne(inst)
}

// runOne executes inst and drains the frame's effects into history.
func (d *Driver) runOne(inst encoding.Instruction) {
	code, err := d.VM.Execute(inst)

	for _, line := range splitLines(d.VM.Stdout()) {
		d.History.Add(StylePlain, line)
	}
	for _, line := range splitLines(d.VM.Stderr()) {
		d.History.Add(StyleStderr, line)
	}

	if err != nil {
		d.History.Add(StyleFault, err.Error())
		d.Auto = false
		return
	}
	if code != nil {
		d.History.Add(StyleExit, fmt.Sprintf("Program exited with code : %d", *code))
		d.Done = true
		d.Auto = false
	}
}

// PendingTargetAddr reports the prospective jump target of the pending
// instruction, if any, for the program-view highlight (§4.G).
func (d *Driver) PendingTargetAddr() (word.Word, bool) {
	if d.NextInstruction == nil {
		return 0, false
	}
	return d.VM.TargetAddr(*d.NextInstruction)
}

func splitLines(b []byte) []string {
	if len(b) == 0 {
		return nil
	}
	var lines []string
	start := 0
	for i, c := range b {
		if c == '\n' {
			lines = append(lines, string(b[start:i]))
			start = i + 1
		}
	}
	if start < len(b) {
		lines = append(lines, string(b[start:]))
	}
	return lines
}
