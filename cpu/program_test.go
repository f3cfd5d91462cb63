package cpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgram_Debug(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Statements: []Statement{
			{LineNo: 1, Pc: 0, Words: []string{"li", "r2", "0x10000"},
				Codes: []Code{MakeCodeLoadi(2, 0, 1, false), MakeCodeLoadi(2, 2, 0, true)}},
			{LineNo: 3, Pc: 2, Words: []string{"add", "r2", "r2", "r2"},
				Codes: []Code{MakeCodeAlu(ALU_ADD, 2, 2, 2)}},
		},
	}

	dbg := prog.Debug(0)
	assert.NotNil(dbg.Statement)
	assert.Equal(1, dbg.LineNo)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(1)
	assert.NotNil(dbg.Statement)
	assert.Equal(1, dbg.LineNo)
	assert.Equal(1, dbg.Index)
	assert.Equal("li r2 0x10000", dbg.Text())

	dbg = prog.Debug(2)
	assert.Equal(3, dbg.LineNo)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(3)
	assert.Nil(dbg.Statement)
	assert.Equal(0, prog.LineNo(3))
	assert.Equal(3, prog.LineNo(2))
}

func TestProgram_Binary(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader("li r2 5\nadd r2 r2 r2\n"))
	assert.NoError(err)

	assert.Equal([]uint32{
		uint32(MakeCodeLoadi(2, 0, 0, false)),
		uint32(MakeCodeLoadi(2, 2, 5, true)),
		uint32(MakeCodeAlu(ALU_ADD, 2, 2, 2)),
	}, prog.Binary())
}

func TestNewProgram(t *testing.T) {
	assert := assert.New(t)

	words := []uint32{0x11, 0x22, 0x33}
	prog := NewProgram(words)

	assert.Equal(words, prog.Binary())
	assert.Len(prog.Statements, 3)

	dbg := prog.Debug(2)
	assert.Equal(uint64(2), dbg.Pc)
	assert.Equal(0, dbg.LineNo)
}
