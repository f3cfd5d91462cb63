package cpu

import (
	"strings"
)

// Instruction field widths, in bits.
const (
	WORD_BITS   = 32 // Bits in an instruction word.
	OPCODE_BITS = 4  // Opcode field.
	REG_BITS    = 5  // Register index field.
	ALU_BITS    = 5  // ALU function field.
	IMM_BITS    = 16 // Immediate field.
	OFFSET_BITS = 24 // Signed branch offset field.
	SELECT_BITS = 4  // Flag select field.
	LHW_BITS    = 1  // Low half word selector.

	REG_COUNT  = 1 << REG_BITS // Number of registers.
	REG_MASK   = REG_COUNT - 1 // Mask of a register index.
	FLAG_COUNT = SELECT_BITS   // Number of flags.

	OFFSET_MIN = -(1 << (OFFSET_BITS - 1))    // Most negative branch offset.
	OFFSET_MAX = (1 << (OFFSET_BITS - 1)) - 1 // Most positive branch offset.
)

// Opcode is the instruction class held in the low 4 bits of a word.
type Opcode int

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_ALU   = Opcode(0)  // alu
	OP_LSL   = Opcode(1)  // lsl
	OP_ASR   = Opcode(2)  // asr
	OP_LSR   = Opcode(3)  // lsr
	OP_LOAD  = Opcode(4)  // load
	OP_LOADI = Opcode(5)  // loadi
	OP_STORE = Opcode(6)  // store
	OP_JMP   = Opcode(7)  // jmp
	OP_JMPI  = Opcode(8)  // jmpi
	OP_JMPC  = Opcode(9)  // jmpc
	OP_JMPIC = Opcode(10) // jmpic
	OP_BREAK = Opcode(15) // break
)

// AluFunc selects the operation of an OP_ALU instruction.
type AluFunc int

//go:generate go tool stringer -linecomment -type=AluFunc
const (
	ALU_AND = AluFunc(0) // and
	ALU_OR  = AluFunc(1) // or
	ALU_NOR = AluFunc(2) // nor
	ALU_XOR = AluFunc(3) // xor
	ALU_ADD = AluFunc(4) // add
	ALU_SUB = AluFunc(5) // sub
	ALU_MUL = AluFunc(6) // mul
	ALU_DIV = AluFunc(7) // div
)

// Flag is the index of a condition flag.
type Flag int

//go:generate go tool stringer -linecomment -type=Flag
const (
	FLAG_ZERO     = Flag(0) // z
	FLAG_NEGATIVE = Flag(1) // n
	FLAG_CARRY    = Flag(2) // c
	FLAG_OVERFLOW = Flag(3) // v
)

// Flags is a set of condition flags, one bit per Flag. It is both the
// processor flag state and the select field of conditional jumps.
type Flags uint8

// Has returns true if flag is set.
func (fl Flags) Has(flag Flag) bool {
	return fl&(1<<flag) != 0
}

// With returns the set with flag set or cleared.
func (fl Flags) With(flag Flag, on bool) Flags {
	if on {
		return fl | (1 << flag)
	}
	return fl &^ (1 << flag)
}

// Test returns true if any flag of the selection is set.
func (fl Flags) Test(selection Flags) bool {
	return fl&selection != 0
}

// String returns the letters of the set flags, in z, n, c, v order.
func (fl Flags) String() string {
	var sb strings.Builder
	for flag := range Flag(FLAG_COUNT) {
		if fl.Has(flag) {
			sb.WriteString(flag.String())
		}
	}
	return sb.String()
}

// ParseFlags parses a string of flag letters.
func ParseFlags(text string) (fl Flags, err error) {
	for _, ch := range text {
		switch ch {
		case 'z':
			fl = fl.With(FLAG_ZERO, true)
		case 'n':
			fl = fl.With(FLAG_NEGATIVE, true)
		case 'c':
			fl = fl.With(FLAG_CARRY, true)
		case 'v':
			fl = fl.With(FLAG_OVERFLOW, true)
		default:
			err = ErrFlagsInvalid
			return
		}
	}
	return
}

// Reg is a register index.
type Reg uint8

// Well known registers.
const (
	REG_ZERO = Reg(0) // Always reads as 0.
	REG_ONE  = Reg(1) // Always reads as 1.
)

// String returns the assembler name of the register.
func (reg Reg) String() string {
	return f("r%d", uint8(reg))
}

// Code is an encoded instruction word.
type Code uint32

// CODE_BREAK is the breakpoint sentinel instruction.
const CODE_BREAK = Code(OP_BREAK)

// Fields holds the decoded operands of an instruction. Only the fields in
// the layout of the opcode are meaningful. Two-register forms (load, loadi,
// store) use Rd and Rs1; jmp and jmpc use Rs1.
type Fields struct {
	Rd     Reg
	Rs1    Reg
	Rs2    Reg
	Alu    AluFunc
	Imm    uint16
	Lhw    bool // Set for the low half word, clear for the high half word.
	Offset int32
	Select Flags
}

// Opcode returns the opcode field of the instruction.
func (code Code) Opcode() Opcode {
	return Opcode(uint32(code) & ((1 << OPCODE_BITS) - 1))
}

// MakeCodeAlu creates a binary ALU instruction.
func MakeCodeAlu(fn AluFunc, rd, rs1, rs2 Reg) Code {
	return Encode(OP_ALU, Fields{Rd: rd, Rs1: rs1, Rs2: rs2, Alu: fn})
}

// MakeCodeShift creates a shift instruction. op is OP_LSL, OP_ASR or OP_LSR.
func MakeCodeShift(op Opcode, rd, rs1, rs2 Reg) Code {
	return Encode(op, Fields{Rd: rd, Rs1: rs1, Rs2: rs2})
}

// MakeCodeLoad creates rd <- RAM[rs].
func MakeCodeLoad(rd, rs Reg) Code {
	return Encode(OP_LOAD, Fields{Rd: rd, Rs1: rs})
}

// MakeCodeLoadi creates rd <- rs + imm (low half) or rd <- rs + imm<<16.
func MakeCodeLoadi(rd, rs Reg, imm uint16, lhw bool) Code {
	return Encode(OP_LOADI, Fields{Rd: rd, Rs1: rs, Imm: imm, Lhw: lhw})
}

// MakeCodeStore creates RAM[rd] <- rs.
func MakeCodeStore(rd, rs Reg) Code {
	return Encode(OP_STORE, Fields{Rd: rd, Rs1: rs})
}

// MakeCodeJmp creates an absolute jump to the value of rs.
func MakeCodeJmp(rs Reg) Code {
	return Encode(OP_JMP, Fields{Rs1: rs})
}

// MakeCodeJmpi creates a jump relative to the next instruction.
func MakeCodeJmpi(offset int32) Code {
	return Encode(OP_JMPI, Fields{Offset: offset})
}

// MakeCodeJmpc creates a conditional absolute jump.
func MakeCodeJmpc(rs Reg, selection Flags) Code {
	return Encode(OP_JMPC, Fields{Rs1: rs, Select: selection})
}

// MakeCodeJmpic creates a conditional relative jump.
func MakeCodeJmpic(offset int32, selection Flags) Code {
	return Encode(OP_JMPIC, Fields{Offset: offset, Select: selection})
}
