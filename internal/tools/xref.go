package tools

import (
	"sort"

	"regvm/internal/encoding"
	"regvm/internal/word"
)

// CrossReference maps each statically-known jump/call target address to the
// addresses of the instructions that reference it. Adapted from the
// teacher's symbol-table XRefGenerator: there are no named symbols here, so
// the map key is the target address itself rather than a label.
func CrossReference(ram []byte) map[word.Word][]word.Word {
	lines := Scan(ram)
	refs := make(map[word.Word][]word.Word)

	for _, l := range lines {
		inst := l.Instruction
		if inst.Opc == encoding.RET {
			continue // RET's target is always LR, never an encoded operand
		}
		if inst.RFL || !encoding.IsControlFlow(inst.Opc) {
			continue // register-indirect targets aren't statically known
		}
		refs[inst.Val] = append(refs[inst.Val], l.Addr)
	}

	for target := range refs {
		sort.Slice(refs[target], func(i, j int) bool { return refs[target][i] < refs[target][j] })
	}

	return refs
}
