package vm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regvm/internal/encoding"
	"regvm/internal/regfile"
	"regvm/internal/vm"
	"regvm/internal/word"
)

// S1: an immediate SET followed by an immediate HALT.
func TestScenario_S1_ImmediateSetAndHalt(t *testing.T) {
	program := assemble(t,
		encoding.Instruction{Opc: encoding.SET, Reg: regfile.R0, Val: 0x2A},
		encoding.Instruction{Opc: encoding.HALT, Val: 0x2A},
	)

	machine, code, err := run(t, program)
	require.NoError(t, err)
	require.NotNil(t, code)
	assert.Equal(t, 0x2A, *code)

	r0, err := machine.GetReg(regfile.R0)
	require.NoError(t, err)
	assert.Equal(t, word.Word(0x2A), r0)
}

// S2: two immediate SETs, a register-mode ADD of R1 into R0, then a
// register-mode HALT reading the result.
func TestScenario_S2_AddThenRegisterHalt(t *testing.T) {
	program := assemble(t,
		encoding.Instruction{Opc: encoding.SET, Reg: regfile.R0, Val: 5},
		encoding.Instruction{Opc: encoding.SET, Reg: regfile.R1, Val: 7},
		encoding.Instruction{Opc: encoding.ADD, RFL: true, Reg: regfile.R0, Val: regfile.R1},
		encoding.Instruction{Opc: encoding.HALT, RFL: true, Val: regfile.R0},
	)

	_, code, err := run(t, program)
	require.NoError(t, err)
	require.NotNil(t, code)
	assert.Equal(t, 12, *code)
}

// S3: PUSH then POP restores the value into a different register and leaves
// SP back where it started.
func TestScenario_S3_PushPopRoundTrip(t *testing.T) {
	machine := vm.New(vm.FillZero)
	program := assemble(t,
		encoding.Instruction{Opc: encoding.SET, Reg: regfile.R0, Val: 0x99},
		encoding.Instruction{Opc: encoding.PUSH, RFL: true, Val: regfile.R0},
		encoding.Instruction{Opc: encoding.POP, Reg: regfile.R1},
		encoding.Instruction{Opc: encoding.HALT, Val: 0},
	)
	_, err := machine.Load(program)
	require.NoError(t, err)

	spBefore, err := machine.GetReg(regfile.SP)
	require.NoError(t, err)

	for {
		inst, ok := machine.Decode()
		require.True(t, ok)
		code, err := machine.Execute(inst)
		require.NoError(t, err)
		if code != nil {
			break
		}
	}

	r1, err := machine.GetReg(regfile.R1)
	require.NoError(t, err)
	assert.Equal(t, word.Word(0x99), r1)

	spAfter, err := machine.GetReg(regfile.SP)
	require.NoError(t, err)
	assert.Equal(t, spBefore, spAfter)
}

// S4: a countdown loop using DEC and a conditional jump back to the loop
// head, terminating with HALT once the counter reaches zero.
func TestScenario_S4_CountdownLoop(t *testing.T) {
	setR0, _ := encoding.Encode(encoding.Instruction{Opc: encoding.SET, Reg: regfile.R0, Val: 3})
	decR0, _ := encoding.Encode(encoding.Instruction{Opc: encoding.DEC, Reg: regfile.R0})
	// JNE's target is patched in below once the loop head address is known.
	jneTemplate := encoding.Instruction{Opc: encoding.JNE, Reg: regfile.R0}
	haltZero, _ := encoding.Encode(encoding.Instruction{Opc: encoding.HALT, Val: 0})

	loopHead := word.Word(len(setR0))
	jne := jneTemplate
	jne.Val = loopHead
	jneBytes, err := encoding.Encode(jne)
	require.NoError(t, err)

	var program []byte
	program = append(program, setR0...)
	program = append(program, decR0...)
	program = append(program, jneBytes...)
	program = append(program, haltZero...)

	machine, code, err := run(t, program)
	require.NoError(t, err)
	require.NotNil(t, code)
	assert.Equal(t, 0, *code)

	r0, err := machine.GetReg(regfile.R0)
	require.NoError(t, err)
	assert.Zero(t, r0)
}

// S5: CALL transfers control and records a return address in LR; RET stores
// its operand in RR and resumes at LR, never at its own encoded operand.
func TestScenario_S5_CallReturn(t *testing.T) {
	callTemplate := encoding.Instruction{Opc: encoding.CALL, Val: 0} // target patched below
	haltRR, _ := encoding.Encode(encoding.Instruction{Opc: encoding.HALT, RFL: true, Val: regfile.RR})
	ret, _ := encoding.Encode(encoding.Instruction{Opc: encoding.RET, Val: 7})

	callLen := callTemplate.EncodedLength()
	funcAddr := word.Word(callLen + len(haltRR))

	call := callTemplate
	call.Val = funcAddr
	callBytes, err := encoding.Encode(call)
	require.NoError(t, err)

	var program []byte
	program = append(program, callBytes...)
	program = append(program, haltRR...)
	program = append(program, ret...)

	expectedReturnAddr := word.Word(len(callBytes))

	machine := vm.New(vm.FillZero)
	_, err = machine.Load(program)
	require.NoError(t, err)

	// Step through CALL and confirm LR points just past it.
	inst, ok := machine.Decode()
	require.True(t, ok)
	_, err = machine.Execute(inst)
	require.NoError(t, err)
	lr, err := machine.GetReg(regfile.LR)
	require.NoError(t, err)
	assert.Equal(t, expectedReturnAddr, lr)
	assert.Equal(t, funcAddr, machine.PC())

	// Step through RET and confirm it resumes at LR, not at its own operand.
	inst, ok = machine.Decode()
	require.True(t, ok)
	_, err = machine.Execute(inst)
	require.NoError(t, err)
	assert.Equal(t, expectedReturnAddr, machine.PC())

	rr, err := machine.GetReg(regfile.RR)
	require.NoError(t, err)
	assert.Equal(t, word.Word(7), rr)

	// Finally HALT RR surfaces the value RET stored.
	inst, ok = machine.Decode()
	require.True(t, ok)
	code, err := machine.Execute(inst)
	require.NoError(t, err)
	require.NotNil(t, code)
	assert.Equal(t, 7, *code)
}

// S6: a round trip of the full 64-bit word width through STORE and LOAD.
func TestScenario_S6_StoreLoadRoundTrip(t *testing.T) {
	const addr = word.Word(0x100)
	const payload = word.Word(0xCAFEBABEDEADBEEF)

	program := assemble(t,
		encoding.Instruction{Opc: encoding.SET, Reg: regfile.R0, Val: addr},
		encoding.Instruction{Opc: encoding.STORE, Reg: regfile.R0, Val: payload},
		encoding.Instruction{Opc: encoding.LOAD, Reg: regfile.R1, Val: addr},
		encoding.Instruction{Opc: encoding.HALT, Val: 0},
	)

	machine, code, err := run(t, program)
	require.NoError(t, err)
	require.NotNil(t, code)

	r1, err := machine.GetReg(regfile.R1)
	require.NoError(t, err)
	assert.Equal(t, payload, r1)
}
