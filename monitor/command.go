package monitor

import (
	"slices"
	"strconv"
	"strings"
)

// CommandId identifies a monitor command.
type CommandId int

const (
	CMD_INVALID CommandId = iota
	CMD_QUIT
	CMD_HELP
	CMD_REGS
	CMD_FLAGS
	CMD_BREAK
	CMD_DELETE
	CMD_PC
	CMD_DIS
	CMD_STEP
	CMD_EXECUTE
	CMD_RAM
	CMD_DEFINES
	CMD_CLEAR
)

// Command is a parsed monitor input line.
type Command struct {
	Id   CommandId
	Name string   // Command word, lower-cased.
	Args []string // Remaining words.
}

type commandInfo struct {
	id    CommandId
	names []string // Primary name first, then aliases.
	args  []string // Argument placeholders.
	help  string
}

var _commands = []commandInfo{
	{CMD_QUIT, []string{"quit", "q", "exit"}, nil, "leave the monitor"},
	{CMD_HELP, []string{"help", "h"}, []string{"[<command>]"}, "list commands"},
	{CMD_REGS, []string{"regs", "reg", "r"}, []string{"<reg>", "[<new_value>]"}, "show or set registers"},
	{CMD_FLAGS, []string{"flags", "flag", "f"}, nil, "show the condition flags"},
	{CMD_BREAK, []string{"break", "b"}, []string{"<addr>"}, "list breakpoints, or set one"},
	{CMD_DELETE, []string{"delete", "del"}, []string{"<addr>"}, "remove a breakpoint"},
	{CMD_PC, []string{"pc"}, nil, "show the program counter"},
	{CMD_DIS, []string{"dis", "d", "disassembler"}, []string{"[file|<n>]"}, "disassemble from the program counter"},
	{CMD_STEP, []string{"step", "s", "next"}, []string{"<n>"}, "execute n instructions"},
	{CMD_EXECUTE, []string{"execute", "exec", "e", "continue", "cont"}, nil, "run to a breakpoint or the end"},
	{CMD_RAM, []string{"ram"}, []string{"<addr>", "[<count>]"}, "show RAM words"},
	{CMD_DEFINES, []string{"defines", "equ"}, nil, "list the predefined equates"},
	{CMD_CLEAR, []string{"clear"}, nil, "clear the screen"},
}

func lookup(name string) (info commandInfo, ok bool) {
	for _, info = range _commands {
		if slices.Contains(info.names, name) {
			ok = true
			return
		}
	}

	return
}

// ParseCommand splits a line into its command and arguments.
// Unknown commands have the CMD_INVALID id.
func ParseCommand(line string) (cmd Command) {
	words := strings.Fields(line)
	if len(words) == 0 {
		return
	}

	cmd.Name = strings.ToLower(words[0])
	cmd.Args = words[1:]

	info, ok := lookup(cmd.Name)
	if ok {
		cmd.Id = info.id
	}

	return
}

// ParseAddress parses a code or RAM address. Accepted forms are `$hex`,
// `0xhex`, `#dec` and plain decimal.
func ParseAddress(text string) (addr uint64, err error) {
	base := 0
	switch {
	case strings.HasPrefix(text, "$"):
		text = text[1:]
		base = 16
	case strings.HasPrefix(text, "#"):
		text = text[1:]
		base = 10
	}

	addr, err = strconv.ParseUint(text, base, 64)
	if err != nil {
		err = ErrAddressSyntax
	}

	return
}

// Complete returns the full-line completions of a partial input line.
func Complete(line string) (lines []string) {
	words := strings.Fields(line)
	trailing := strings.HasSuffix(line, " ")

	switch {
	case len(words) == 0:
		for _, info := range _commands {
			lines = append(lines, info.names[0])
		}
	case len(words) == 1 && !trailing:
		prefix := strings.ToLower(words[0])
		for _, info := range _commands {
			for _, name := range info.names {
				if strings.HasPrefix(name, prefix) {
					lines = append(lines, name)
				}
			}
		}
	default:
		cmd := ParseCommand(line)
		var partial string
		if !trailing {
			partial = words[len(words)-1]
		}
		stem := strings.TrimSuffix(line, partial)
		args := len(cmd.Args)
		if !trailing {
			args--
		}
		switch {
		case cmd.Id == CMD_DIS && args == 0 && strings.HasPrefix("file", partial):
			lines = append(lines, stem+"file")
		case cmd.Id == CMD_HELP && args == 0:
			for _, info := range _commands {
				if strings.HasPrefix(info.names[0], partial) {
					lines = append(lines, stem+info.names[0])
				}
			}
		}
	}

	slices.Sort(lines)
	lines = slices.Compact(lines)

	return
}

// Hint returns the placeholders of the arguments still missing from a
// partial input line, or "" if there are none.
func Hint(line string) string {
	cmd := ParseCommand(line)
	info, ok := lookup(cmd.Name)
	if !ok || len(cmd.Args) >= len(info.args) {
		return ""
	}

	hint := strings.Join(info.args[len(cmd.Args):], " ")
	if !strings.HasSuffix(line, " ") {
		hint = " " + hint
	}

	return hint
}

// commonPrefix returns the longest prefix shared by all of lines.
func commonPrefix(lines []string) (prefix string) {
	if len(lines) == 0 {
		return
	}

	prefix = lines[0]
	for _, line := range lines[1:] {
		n := 0
		for n < len(prefix) && n < len(line) && prefix[n] == line[n] {
			n++
		}
		prefix = prefix[:n]
	}

	return
}
