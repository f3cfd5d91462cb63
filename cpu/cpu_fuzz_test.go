package cpu

import (
	"errors"
	"fmt"
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
)

func FuzzCpu(f *testing.F) {
	for op := range Opcode(16) {
		f.Add(uint32(op), uint32(0), uint32(0), uint8(0))
		f.Add(uint32(op)|0xfffffff0, uint32(0xffffffff), uint32(1), uint8(0xf))
	}

	f.Fuzz(func(t *testing.T, word uint32, a uint32, b uint32, flags uint8) {
		assert := assert.New(t)

		code := Code(word)

		cpu := newTestCpu(code, MakeCodeJmpi(-2))
		for n := Reg(2); n < REG_COUNT; n++ {
			cpu.Register.Set(n, a+uint32(n))
		}
		cpu.Register.Set(2, a)
		cpu.Register.Set(3, b)
		cpu.Flags = Flags(flags & 0xf)

		pre := cpu.Register
		pre_flags := cpu.Flags

		err := cpu.Step()

		code_str := fmt.Sprintf("%#08x (%v) a:%#x b:%#x flags:%v\ncpu:%v", word, code, a, b, pre_flags, cpu.String())

		op, fields, decode_err := code.Decode()
		if decode_err != nil {
			assert.True(errors.Is(err, ErrIllFormedProgram), code_str)
			assert.Equal(uint64(0), cpu.Pc, code_str)
			return
		}

		get := func(reg Reg) uint32 { return pre.Get(reg) }

		if err != nil {
			switch {
			case op == OP_ALU && fields.Alu > ALU_DIV:
				assert.True(errors.Is(err, ErrOpcodeAlu), code_str)
			case op == OP_ALU && fields.Alu == ALU_DIV && get(fields.Rs2) == 0:
				assert.True(errors.Is(err, ErrDivisionByZero), code_str)
			case op == OP_JMPI || op == OP_JMPIC:
				assert.True(errors.Is(err, ErrJumpNegative), code_str)
				assert.Less(int64(1)+int64(fields.Offset), int64(0), code_str)
			case op == OP_BREAK:
				assert.True(errors.Is(err, ErrBreakpointMissing), code_str)
			default:
				assert.NoError(err, code_str)
			}
			assert.Equal(pre, cpu.Register, code_str)
			assert.Equal(pre_flags, cpu.Flags, code_str)
			assert.Equal(uint64(0), cpu.Pc, code_str)
			return
		}

		next_pc := uint64(1)
		expect_regs := pre
		expect_flags := pre_flags
		set := func(reg Reg, value uint32) { expect_regs[reg] = value }

		switch op {
		case OP_ALU:
			var output uint32
			s1, s2 := get(fields.Rs1), get(fields.Rs2)
			switch fields.Alu {
			case ALU_AND:
				output = s1 & s2
			case ALU_OR:
				output = s1 | s2
			case ALU_NOR:
				output = ^(s1 | s2)
			case ALU_XOR:
				output = s1 ^ s2
			case ALU_ADD:
				output = s1 + s2
			case ALU_SUB:
				output = s1 - s2
			case ALU_MUL:
				output = s1 * s2
			case ALU_DIV:
				output = s1 / s2
			}
			set(fields.Rd, output)
			assert.Equal(output == 0, cpu.Flags.Has(FLAG_ZERO), code_str)
			assert.Equal(output>>31 == 1, cpu.Flags.Has(FLAG_NEGATIVE), code_str)
			switch fields.Alu {
			case ALU_ADD:
				_, carry := bits.Add32(s1, s2, 0)
				assert.Equal(carry == 1, cpu.Flags.Has(FLAG_CARRY), code_str)
				assert.Equal((s1^output)&(s2^output)>>31 == 1, cpu.Flags.Has(FLAG_OVERFLOW), code_str)
			case ALU_SUB:
				assert.Equal(s1 < s2, cpu.Flags.Has(FLAG_CARRY), code_str)
				assert.Equal((s1^s2)&(s1^output)>>31 == 1, cpu.Flags.Has(FLAG_OVERFLOW), code_str)
			case ALU_MUL:
				hi, _ := bits.Mul32(s1, s2)
				assert.Equal(hi != 0, cpu.Flags.Has(FLAG_CARRY), code_str)
			default:
				assert.False(cpu.Flags.Has(FLAG_CARRY), code_str)
				assert.False(cpu.Flags.Has(FLAG_OVERFLOW), code_str)
			}
			expect_flags = cpu.Flags
		case OP_LSL:
			set(fields.Rd, get(fields.Rs1)<<(get(fields.Rs2)&0x1f))
		case OP_ASR:
			set(fields.Rd, uint32(int32(get(fields.Rs1))>>(get(fields.Rs2)&0x1f)))
		case OP_LSR:
			set(fields.Rd, get(fields.Rs1)>>(get(fields.Rs2)&0x1f))
		case OP_LOAD:
			set(fields.Rd, 0)
		case OP_LOADI:
			imm := uint32(fields.Imm)
			if !fields.Lhw {
				imm <<= 16
			}
			set(fields.Rd, get(fields.Rs1)+imm)
		case OP_STORE:
			assert.Equal(get(fields.Rs1), cpu.Ram.Read(get(fields.Rd)), code_str)
		case OP_JMP:
			next_pc = uint64(get(fields.Rs1))
		case OP_JMPC:
			if pre_flags.Test(fields.Select) {
				next_pc = uint64(get(fields.Rs1))
			}
		case OP_JMPI:
			next_pc = uint64(1 + int64(fields.Offset))
		case OP_JMPIC:
			if pre_flags.Test(fields.Select) {
				next_pc = uint64(1 + int64(fields.Offset))
			}
		default:
			assert.Fail("unexpected opcode", code_str)
		}

		if next_pc == 2 {
			next_pc = PC_HALT
		}

		assert.Equal(expect_regs, cpu.Register, code_str)
		assert.Equal(expect_flags, cpu.Flags, code_str)
		assert.Equal(next_pc, cpu.Pc, code_str)
	})
}
