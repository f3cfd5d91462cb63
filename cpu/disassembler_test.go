package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_String(t *testing.T) {
	table := [](struct {
		code Code
		text string
	}){
		{MakeCodeAlu(ALU_ADD, 2, 3, 4), "add r2 r3 r4"},
		{MakeCodeAlu(ALU_NOR, 31, 0, 1), "nor r31 r0 r1"},
		{Encode(OP_ALU, Fields{Alu: 9}), "; invalid alu function 0x9"},
		{MakeCodeShift(OP_LSR, 5, 6, 7), "lsr r5 r6 r7"},
		{MakeCodeLoad(2, 3), "load r2 r3"},
		{MakeCodeStore(4, 5), "store r4 r5"},
		{MakeCodeLoadi(2, 0, 0xabcd, false), "loadi.h r2 r0 0xabcd"},
		{MakeCodeLoadi(2, 2, 0x12, true), "loadi.l r2 r2 0x12"},
		{MakeCodeJmp(9), "jmp r9"},
		{MakeCodeJmpc(9, 0b0101), "jmpc.zc r9"},
		{MakeCodeJmpc(9, 0), "jmpc r9"},
		{MakeCodeJmpi(-3), "jmpi -3"},
		{MakeCodeJmpic(12, 0b1000), "jmpic.v 12"},
		{CODE_BREAK, "break"},
		{Code(12), "; invalid opcode 0xc"},
	}

	for _, entry := range table {
		assert.Equal(t, entry.text, entry.code.String())
	}
}

func TestDisassemble(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("0010: 00000008  jmpi 0", Disassemble(16, MakeCodeJmpi(0)))
}
