package cpu

import (
	"fmt"
)

// String disassembles the instruction into assembler syntax.
func (code Code) String() string {
	op, fields, err := code.Decode()
	if err != nil {
		return fmt.Sprintf("; invalid opcode %#x", uint32(op))
	}

	switch op {
	case OP_ALU:
		if fields.Alu > ALU_DIV {
			return fmt.Sprintf("; invalid alu function %#x", uint32(fields.Alu))
		}
		return fmt.Sprintf("%v %v %v %v", fields.Alu, fields.Rd, fields.Rs1, fields.Rs2)
	case OP_LSL, OP_ASR, OP_LSR:
		return fmt.Sprintf("%v %v %v %v", op, fields.Rd, fields.Rs1, fields.Rs2)
	case OP_LOAD, OP_STORE:
		return fmt.Sprintf("%v %v %v", op, fields.Rd, fields.Rs1)
	case OP_LOADI:
		half := "h"
		if fields.Lhw {
			half = "l"
		}
		return fmt.Sprintf("%v.%v %v %v %#x", op, half, fields.Rd, fields.Rs1, fields.Imm)
	case OP_JMP:
		return fmt.Sprintf("%v %v", op, fields.Rs1)
	case OP_JMPC:
		return fmt.Sprintf("%v %v", conditional(op, fields.Select), fields.Rs1)
	case OP_JMPI:
		return fmt.Sprintf("%v %d", op, fields.Offset)
	case OP_JMPIC:
		return fmt.Sprintf("%v %d", conditional(op, fields.Select), fields.Offset)
	case OP_BREAK:
		return op.String()
	}

	return fmt.Sprintf("; invalid opcode %#x", uint32(op))
}

// conditional returns the mnemonic of a conditional jump.
func conditional(op Opcode, selection Flags) string {
	if selection == 0 {
		return op.String()
	}
	return op.String() + "." + selection.String()
}

// Disassemble formats the instruction at pc as a listing line.
func Disassemble(pc uint64, code Code) string {
	return fmt.Sprintf("%04x: %08x  %v", pc, uint32(code), code)
}
