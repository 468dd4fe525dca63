package runner_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regvm/internal/encoding"
	"regvm/internal/regfile"
	"regvm/internal/runner"
	"regvm/internal/vm"
	"regvm/internal/word"
)

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

func TestRun_Halt_PrintsExitCodeAndReturnsZero(t *testing.T) {
	program := assemble(t, encoding.Instruction{Opc: encoding.HALT, Val: 0x2A})
	machine := vm.New(vm.FillZero)
	_, err := machine.Load(program)
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	code := runner.Run(machine, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "Program exited with code: 42")
	assert.Empty(t, stderr.String())
}

func TestRun_EndOfProgram_StopsCleanlyWithoutHalt(t *testing.T) {
	program := assemble(t, encoding.Instruction{Opc: encoding.NOP})
	machine := vm.New(vm.FillZero)
	_, err := machine.Load(program)
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	code := runner.Run(machine, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRun_Fault_PrintsFaultAndReturnsOne(t *testing.T) {
	program := assemble(t, encoding.Instruction{Opc: encoding.DIV, Reg: regfile.R0, Val: 0})
	machine := vm.New(vm.FillZero)
	_, err := machine.Load(program)
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	code := runner.Run(machine, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "fault:")
}

func TestRun_DrainsProgramOutputBeforeExitLine(t *testing.T) {
	program := assemble(t,
		encoding.Instruction{Opc: encoding.PRINT, Val: word.Word('A')},
		encoding.Instruction{Opc: encoding.HALT, Val: 0},
	)
	machine := vm.New(vm.FillZero)
	_, err := machine.Load(program)
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	code := runner.Run(machine, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Equal(t, "AProgram exited with code: 0\n", stdout.String())
}
