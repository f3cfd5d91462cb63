package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCursor_Next(t *testing.T) {
	assert := assert.New(t)

	cur := Cursor{Code: 0x87654321}

	value, next := cur.Next(4)
	assert.Equal(uint32(0x1), value)
	assert.Equal(uint(4), next.Offset)
	assert.Equal(uint(0), cur.Offset)

	value, next = next.Next(8)
	assert.Equal(uint32(0x32), value)

	value, next = next.Next(20)
	assert.Equal(uint32(0x87654), value)
	assert.Equal(uint(32), next.Offset)

	// Past the end of the word reads as zero.
	value, _ = next.Next(4)
	assert.Equal(uint32(0), value)
}

func TestCode_FieldPositions(t *testing.T) {
	assert := assert.New(t)

	// rd at bit 4, rs1 at bit 9, rs2 at bit 14, alu at bit 19.
	code := MakeCodeAlu(ALU_SUB, 3, 5, 7)
	assert.Equal(Code(0<<0|3<<4|5<<9|7<<14|5<<19), code)

	// imm at bit 14, lhw at bit 30.
	code = MakeCodeLoadi(2, 1, 0xabcd, true)
	assert.Equal(Code(5|2<<4|1<<9|0xabcd<<14|1<<30), code)

	// offset at bit 4, select at bit 28.
	code = MakeCodeJmpic(-1, 0b1010)
	assert.Equal(Code(10|0xffffff<<4|0b1010<<28), code)

	// select of jmpc at bit 9.
	code = MakeCodeJmpc(31, 0b0001)
	assert.Equal(Code(9|31<<4|1<<9), code)

	assert.Equal(Code(15), CODE_BREAK)
}

func TestCode_Decode(t *testing.T) {
	table := [](struct {
		code   Code
		op     Opcode
		fields Fields
	}){
		{MakeCodeAlu(ALU_MUL, 31, 30, 29), OP_ALU, Fields{Rd: 31, Rs1: 30, Rs2: 29, Alu: ALU_MUL}},
		{MakeCodeShift(OP_ASR, 2, 3, 4), OP_ASR, Fields{Rd: 2, Rs1: 3, Rs2: 4}},
		{MakeCodeLoad(5, 6), OP_LOAD, Fields{Rd: 5, Rs1: 6}},
		{MakeCodeLoadi(7, 8, 0xffff, false), OP_LOADI, Fields{Rd: 7, Rs1: 8, Imm: 0xffff}},
		{MakeCodeStore(9, 10), OP_STORE, Fields{Rd: 9, Rs1: 10}},
		{MakeCodeJmp(11), OP_JMP, Fields{Rs1: 11}},
		{MakeCodeJmpi(OFFSET_MIN), OP_JMPI, Fields{Offset: OFFSET_MIN}},
		{MakeCodeJmpi(OFFSET_MAX), OP_JMPI, Fields{Offset: OFFSET_MAX}},
		{MakeCodeJmpc(12, 0xf), OP_JMPC, Fields{Rs1: 12, Select: 0xf}},
		{MakeCodeJmpic(-100, 0b0100), OP_JMPIC, Fields{Offset: -100, Select: 0b0100}},
		{CODE_BREAK, OP_BREAK, Fields{}},
	}

	for _, entry := range table {
		op, fields, err := entry.code.Decode()
		assert.NoError(t, err, entry.code)
		assert.Equal(t, entry.op, op)
		assert.Equal(t, entry.fields, fields, entry.code)
		assert.Equal(t, entry.op, entry.code.Opcode())
		assert.Equal(t, entry.code, Encode(op, fields))
	}
}

func TestCode_DecodeInvalid(t *testing.T) {
	assert := assert.New(t)

	for op := Opcode(11); op <= 14; op++ {
		_, _, err := Code(op).Decode()
		assert.ErrorIs(err, ErrOpcodeDecode)
	}
}

func TestEncode_Truncates(t *testing.T) {
	assert := assert.New(t)

	code := Encode(OP_JMP, Fields{Rs1: 0xff})
	_, fields, err := code.Decode()
	assert.NoError(err)
	assert.Equal(Reg(31), fields.Rs1)
}

func TestFlags(t *testing.T) {
	assert := assert.New(t)

	var fl Flags
	fl = fl.With(FLAG_ZERO, true).With(FLAG_OVERFLOW, true)
	assert.True(fl.Has(FLAG_ZERO))
	assert.False(fl.Has(FLAG_CARRY))
	assert.Equal("zv", fl.String())
	assert.True(fl.Test(0b1000))
	assert.False(fl.Test(0b0110))

	fl = fl.With(FLAG_ZERO, false)
	assert.Equal("v", fl.String())

	parsed, err := ParseFlags("nc")
	assert.NoError(err)
	assert.Equal(Flags(0b0110), parsed)

	_, err = ParseFlags("x")
	assert.ErrorIs(err, ErrFlagsInvalid)
}
