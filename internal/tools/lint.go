package tools

import (
	"fmt"

	"regvm/internal/encoding"
	"regvm/internal/word"
)

// LintLevel mirrors the teacher's severity tiers, trimmed to what a
// structural binary-level lint can actually distinguish: there is no parser
// producing "errors" here, only findings.
type LintLevel int

const (
	LintWarning LintLevel = iota
	LintInfo
)

func (l LintLevel) String() string {
	if l == LintWarning {
		return "warning"
	}
	return "info"
}

// LintIssue is a single finding, addressed by byte offset rather than
// source line since there is no source.
type LintIssue struct {
	Level   LintLevel
	Addr    word.Word
	Message string
	Code    string
}

func (i LintIssue) String() string {
	return fmt.Sprintf("%04X: %s: %s [%s]", uint64(i.Addr), i.Level, i.Message, i.Code)
}

// isUnconditionalTerminator reports whether opc always transfers control with
// no fallthrough: the instruction immediately after it is reachable only via
// a jump, never by falling off the end of opc. Conditional jumps can fall
// through and CALL's successor is the return address (not a statically
// tracked xref target), so neither counts.
func isUnconditionalTerminator(opc encoding.Opcode) bool {
	switch opc {
	case encoding.HALT, encoding.JMP, encoding.RET:
		return true
	default:
		return false
	}
}

// Lint analyzes a loaded program image for structural issues:
//   - a literal jump target that doesn't land on an instruction boundary
//     the scan actually reached (JUMP_INTO_MIDDLE)
//   - use of the reserved SYCALL opcode (RESERVED_OPCODE)
//   - a decoded instruction sitting immediately after an unconditional
//     HALT/JMP/RET with no incoming jump target, i.e. unreachable by any
//     statically known control-flow edge (UNREACHABLE_TAIL)
func Lint(ram []byte) []LintIssue {
	lines := Scan(ram)

	boundaries := make(map[word.Word]bool, len(lines))
	for _, l := range lines {
		boundaries[l.Addr] = true
	}
	refs := CrossReference(ram)

	var issues []LintIssue

	for idx, l := range lines {
		inst := l.Instruction

		if inst.Opc == encoding.SYCALL {
			issues = append(issues, LintIssue{
				Level:   LintWarning,
				Addr:    l.Addr,
				Message: "SYCALL is reserved and faults at execution",
				Code:    "RESERVED_OPCODE",
			})
		}

		if idx > 0 {
			prev := lines[idx-1].Instruction
			if isUnconditionalTerminator(prev.Opc) && len(refs[l.Addr]) == 0 {
				issues = append(issues, LintIssue{
					Level:   LintInfo,
					Addr:    l.Addr,
					Message: fmt.Sprintf("instruction follows an unconditional %s with no incoming jump target", prev.Opc),
					Code:    "UNREACHABLE_TAIL",
				})
			}
		}

		if inst.Opc == encoding.RET {
			continue // RET's target is always LR, never an encoded operand
		}
		if !encoding.IsControlFlow(inst.Opc) || inst.RFL {
			continue // register-indirect targets aren't statically known
		}
		target := inst.Val
		if target >= word.Word(len(ram)) {
			continue // an out-of-range target makes the next decode fail, ending the run; not a lint concern
		}
		if !boundaries[target] {
			issues = append(issues, LintIssue{
				Level:   LintWarning,
				Addr:    l.Addr,
				Message: fmt.Sprintf("jump target 0x%04X does not land on a decoded instruction boundary", uint64(target)),
				Code:    "JUMP_INTO_MIDDLE",
			})
		}
	}

	return issues
}
