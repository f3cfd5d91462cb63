package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line string
		cmd  Command
	}){
		{"", Command{}},
		{"   ", Command{}},
		{"quit", Command{Id: CMD_QUIT, Name: "quit", Args: []string{}}},
		{"  Q  ", Command{Id: CMD_QUIT, Name: "q", Args: []string{}}},
		{"regs 3 7", Command{Id: CMD_REGS, Name: "regs", Args: []string{"3", "7"}}},
		{"r\t3", Command{Id: CMD_REGS, Name: "r", Args: []string{"3"}}},
		{"cont", Command{Id: CMD_EXECUTE, Name: "cont", Args: []string{}}},
		{"del $10", Command{Id: CMD_DELETE, Name: "del", Args: []string{"$10"}}},
		{"disassembler file", Command{Id: CMD_DIS, Name: "disassembler", Args: []string{"file"}}},
		{"bogus 1", Command{Id: CMD_INVALID, Name: "bogus", Args: []string{"1"}}},
	}

	for _, entry := range table {
		assert.Equal(entry.cmd, ParseCommand(entry.line), entry.line)
	}
}

func TestParseAddress(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		text string
		addr uint64
		err  error
	}){
		{"$10", 16, nil},
		{"0x10", 16, nil},
		{"#10", 10, nil},
		{"10", 10, nil},
		{"$", 0, ErrAddressSyntax},
		{"zz", 0, ErrAddressSyntax},
		{"-1", 0, ErrAddressSyntax},
	}

	for _, entry := range table {
		addr, err := ParseAddress(entry.text)
		assert.Equal(entry.err, err, entry.text)
		if entry.err == nil {
			assert.Equal(entry.addr, addr, entry.text)
		}
	}
}

func TestComplete(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line  string
		lines []string
	}){
		{"st", []string{"step"}},
		{"ST", []string{"step"}},
		{"e", []string{"e", "equ", "exec", "execute", "exit"}},
		{"dis ", []string{"dis file"}},
		{"d f", []string{"d file"}},
		{"dis x", nil},
		{"help re", []string{"help regs"}},
		{"regs 1", nil},
		{"zz", nil},
	}

	for _, entry := range table {
		assert.Equal(entry.lines, Complete(entry.line), entry.line)
	}

	all := Complete("")
	assert.Len(all, len(_commands))
	assert.Contains(all, "quit")
	assert.NotContains(all, "q")
}

func TestHint(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line string
		hint string
	}){
		{"regs", " <reg> [<new_value>]"},
		{"regs ", "<reg> [<new_value>]"},
		{"regs 3", " [<new_value>]"},
		{"regs 3 4", ""},
		{"b", " <addr>"},
		{"ram 10", " [<count>]"},
		{"dis", " [file|<n>]"},
		{"pc", ""},
		{"bogus", ""},
		{"", ""},
	}

	for _, entry := range table {
		assert.Equal(entry.hint, Hint(entry.line), entry.line)
	}
}

func TestCommonPrefix(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("", commonPrefix(nil))
	assert.Equal("step", commonPrefix([]string{"step"}))
	assert.Equal("e", commonPrefix([]string{"e", "exec", "exit"}))
	assert.Equal("exec", commonPrefix([]string{"exec", "execute"}))
	assert.Equal("", commonPrefix([]string{"step", "quit"}))
}

func TestAutoComplete(t *testing.T) {
	assert := assert.New(t)

	line, pos, ok := autoComplete("st", 2, '\t')
	assert.True(ok)
	assert.Equal("step ", line)
	assert.Equal(5, pos)

	line, pos, ok = autoComplete("exe 3", 3, '\t')
	assert.True(ok)
	assert.Equal("exec 3", line)
	assert.Equal(4, pos)

	// Cursor positions count runes, not bytes.
	line, pos, ok = autoComplete("dis\u00a0f", 5, '\t')
	assert.True(ok)
	assert.Equal("dis\u00a0file ", line)
	assert.Equal(9, pos)

	line, pos, ok = autoComplete("st \u00e9", 2, '\t')
	assert.True(ok)
	assert.Equal("step  \u00e9", line)
	assert.Equal(5, pos)

	_, _, ok = autoComplete("e", 1, '\t')
	assert.False(ok)

	_, _, ok = autoComplete("st", 2, 'x')
	assert.False(ok)
}
