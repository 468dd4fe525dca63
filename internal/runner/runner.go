// Package runner drives the VM non-interactively: decode, execute, repeat
// until halt or fault, with no terminal UI involved (§4.F).
package runner

import (
	"fmt"
	"io"

	"regvm/internal/vm"
)

// Run decodes and executes instructions from machine starting at its current
// PC until decode fails (end of program), execute halts, or execute faults.
// Output buffers are drained to stdout/stderr after each step, matching the
// debugger driver's per-frame drain so behaviour is identical between the
// two front ends.
func Run(machine *vm.VM, stdout, stderr io.Writer) int {
	for {
		inst, ok := machine.Decode()
		if !ok {
			return 0
		}

		code, err := machine.Execute(inst)

		stdout.Write(machine.Stdout())
		stderr.Write(machine.Stderr())

		if err != nil {
			fmt.Fprintf(stderr, "fault: %v\n", err)
			return 1
		}

		if code != nil {
			fmt.Fprintf(stdout, "Program exited with code: %d\n", *code)
			return 0
		}
	}
}
