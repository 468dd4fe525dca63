package vm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"regvm/internal/encoding"
	"regvm/internal/vm"
)

// assemble concatenates the wire encoding of insts into one byte slice, in
// program order, starting at address 0.
func assemble(t *testing.T, insts ...encoding.Instruction) []byte {
	t.Helper()
	var out []byte
	for _, inst := range insts {
		b, err := encoding.Encode(inst)
		require.NoError(t, err)
		out = append(out, b...)
	}
	return out
}

// run loads program into a fresh zero-filled VM and decode/executes until
// HALT returns an exit code or Execute faults, whichever comes first. It
// never loops past maxSteps, so a runaway test program fails loudly instead
// of hanging.
func run(t *testing.T, program []byte) (machine *vm.VM, exitCode *int, faultErr error) {
	t.Helper()
	machine = vm.New(vm.FillZero)
	_, err := machine.Load(program)
	require.NoError(t, err)

	const maxSteps = 10_000
	for step := 0; step < maxSteps; step++ {
		inst, ok := machine.Decode()
		if !ok {
			return machine, nil, nil
		}
		code, err := machine.Execute(inst)
		if err != nil {
			return machine, nil, err
		}
		if code != nil {
			return machine, code, nil
		}
	}
	t.Fatalf("program did not halt within %d steps", maxSteps)
	return nil, nil, nil
}
