// Package monitor is the interactive debugger of the CPUlm emulator.
//
// The monitor reads one command per line, runs it against an emulator, and
// prints the result. Core faults that make the program ill-formed end the
// session; every other error is reported and the session continues.
package monitor

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/cpulm/cpulm/cpu"
	"github.com/cpulm/cpulm/emulator"
	"github.com/cpulm/cpulm/internal"
	"github.com/cpulm/cpulm/memory"
	"github.com/cpulm/cpulm/translate"
)

// PROMPT is the monitor input prompt.
const PROMPT = "cpulm> "

const (
	ERROR_PREFIX = "\x1b[1;31mERROR:\x1b[0m "
	CLEAR_SCREEN = "\x1b[2J\x1b[H"
)

// RAM_DUMP_MAX is the most words a single `ram` command prints.
const RAM_DUMP_MAX = 4096

// Monitor is a debugging session over an emulator.
type Monitor struct {
	*emulator.Emulator
	Output io.Writer // Command output. Set by Run when nil.
}

// NewMonitor creates a monitor over emu, printing to output.
func NewMonitor(emu *emulator.Emulator, output io.Writer) *Monitor {
	return &Monitor{
		Emulator: emu,
		Output:   output,
	}
}

func (mon *Monitor) printf(format string, args ...any) {
	translate.Fprintf(mon.Output, format, args...)
}

// Run reads and executes commands from rw until `quit`, end of input, or a
// fatal error.
func (mon *Monitor) Run(rw io.ReadWriter) (err error) {
	t := term.NewTerminal(rw, PROMPT)
	t.AutoCompleteCallback = autoComplete

	if mon.Output == nil {
		mon.Output = t
	}
	if mon.Tape.Output == nil {
		mon.Tape.Output = t
	}

	for {
		var line string
		line, err = t.ReadLine()
		if errors.Is(err, io.EOF) {
			err = nil
			return
		}
		if err != nil {
			return
		}

		var more bool
		more, err = mon.Execute(line)
		if err != nil {
			if errors.Is(err, cpu.ErrIllFormedProgram) {
				return
			}
			fmt.Fprintf(mon.Output, "%s%v\n", ERROR_PREFIX, err)
			err = nil
		}
		if !more {
			return
		}
	}
}

// autoComplete completes the word under the cursor on TAB.
func autoComplete(line string, pos int, key rune) (newLine string, newPos int, ok bool) {
	if key != '\t' {
		return
	}

	runes := []rune(line)
	pos = min(max(pos, 0), len(runes))

	head := string(runes[:pos])
	lines := Complete(head)
	prefix := commonPrefix(lines)
	if len(lines) == 1 {
		prefix += " "
	}
	if len(prefix) <= len(head) {
		return
	}

	newLine = prefix + string(runes[pos:])
	newPos = utf8.RuneCountInString(prefix)
	ok = true

	return
}

// Execute runs a single command line. more is false once the session should
// end. Errors wrapping cpu.ErrIllFormedProgram are fatal; any other error
// is a rejected command.
func (mon *Monitor) Execute(line string) (more bool, err error) {
	more = true

	cmd := ParseCommand(line)
	if cmd.Name == "" {
		return
	}

	switch cmd.Id {
	case CMD_QUIT:
		err = checkArgs(cmd, 0, 0)
		if err == nil {
			more = false
		}
	case CMD_HELP:
		err = mon.cmdHelp(cmd)
	case CMD_REGS:
		err = mon.cmdRegs(cmd)
	case CMD_FLAGS:
		err = mon.cmdFlags(cmd)
	case CMD_BREAK:
		err = mon.cmdBreak(cmd)
	case CMD_DELETE:
		err = mon.cmdDelete(cmd)
	case CMD_PC:
		err = mon.cmdPc(cmd)
	case CMD_DIS:
		err = mon.cmdDis(cmd)
	case CMD_STEP:
		err = mon.cmdStep(cmd)
	case CMD_EXECUTE:
		err = mon.cmdExecute(cmd)
	case CMD_RAM:
		err = mon.cmdRam(cmd)
	case CMD_DEFINES:
		err = checkArgs(cmd, 0, 0)
		if err == nil {
			for equ, value := range internal.IterSeq2Sorted(mon.Defines()) {
				fmt.Fprintf(mon.Output, "%s = %s\n", equ, value)
			}
		}
	case CMD_CLEAR:
		err = checkArgs(cmd, 0, 0)
		if err == nil {
			fmt.Fprint(mon.Output, CLEAR_SCREEN)
		}
	default:
		err = ErrCommandSyntax
	}

	return
}

func checkArgs(cmd Command, least, most int) error {
	if len(cmd.Args) < least || len(cmd.Args) > most {
		return ErrCommandSyntax
	}
	return nil
}

func (mon *Monitor) cmdHelp(cmd Command) (err error) {
	err = checkArgs(cmd, 0, 1)
	if err != nil {
		return
	}

	if len(cmd.Args) == 1 {
		info, ok := lookup(strings.ToLower(cmd.Args[0]))
		if !ok {
			err = ErrCommandSyntax
			return
		}
		mon.printf("%v%v - %v\n", info.names[0], Hint(info.names[0]), info.help)
		mon.printf("  aliases: %v\n", strings.Join(info.names[1:], " "))
		return
	}

	mon.printf("Commands:\n")
	for _, info := range _commands {
		usage := info.names[0] + Hint(info.names[0])
		fmt.Fprintf(mon.Output, "  %-30s %s\n", usage, info.help)
	}

	return
}

// parseReg parses a register index, with or without the `r` prefix.
func parseReg(text string) (reg cpu.Reg, err error) {
	index, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(text), "r"), 10, 64)
	if err != nil {
		err = ErrCommandSyntax
		return
	}
	if index >= cpu.REG_COUNT {
		err = ErrRegisterMissing(index)
		return
	}

	reg = cpu.Reg(index)
	return
}

// parseValue parses a register value, signed or unsigned.
func parseValue(text string) (value uint32, err error) {
	number, err := strconv.ParseInt(text, 0, 64)
	if err != nil || number < -(1<<31) || number >= (1<<32) {
		err = ErrValueSyntax
		return
	}

	value = uint32(number)
	return
}

func (mon *Monitor) cmdRegs(cmd Command) (err error) {
	err = checkArgs(cmd, 0, 2)
	if err != nil {
		return
	}

	regs := &mon.Cpu.Register

	if len(cmd.Args) == 0 {
		mon.printf("Registers:\n")
		rows := cpu.REG_COUNT / 4
		for row := range rows {
			for col := range 4 {
				reg := cpu.Reg(col*rows + row)
				cell := fmt.Sprintf("%v = %d", reg, regs.Get(reg))
				fmt.Fprintf(mon.Output, "  - %-16s", cell)
			}
			fmt.Fprintln(mon.Output)
		}
		return
	}

	reg, err := parseReg(cmd.Args[0])
	if err != nil {
		return
	}

	if len(cmd.Args) == 1 {
		mon.printf("Register %v = %s\n", reg, fmt.Sprint(int32(regs.Get(reg))))
		return
	}

	value, err := parseValue(cmd.Args[1])
	if err != nil {
		return
	}
	if reg == cpu.REG_ZERO || reg == cpu.REG_ONE {
		err = ErrRegisterReadOnly(reg)
		return
	}

	regs.Set(reg, value)
	mon.printf("Register %v set to %s\n", reg, fmt.Sprint(int32(value)))

	return
}

func (mon *Monitor) cmdFlags(cmd Command) (err error) {
	err = checkArgs(cmd, 0, 0)
	if err != nil {
		return
	}

	bit := func(flag cpu.Flag) int {
		if mon.Cpu.Flags.Has(flag) {
			return 1
		}
		return 0
	}

	mon.printf("Flags:\n")
	mon.printf("  - Z = %d             - N = %d             - C = %d             - V = %d\n",
		bit(cpu.FLAG_ZERO), bit(cpu.FLAG_NEGATIVE), bit(cpu.FLAG_CARRY), bit(cpu.FLAG_OVERFLOW))

	return
}

func (mon *Monitor) cmdBreak(cmd Command) (err error) {
	err = checkArgs(cmd, 0, 1)
	if err != nil {
		return
	}

	bps := mon.Cpu.Breakpoints

	if len(cmd.Args) == 0 {
		list := bps.List()
		if len(list) == 0 {
			mon.printf("No breakpoints.\n")
			return
		}
		mon.printf("Breakpoints:\n")
		for _, brk := range list {
			state := f("disabled")
			if brk.Enabled {
				state = f("enabled")
			}
			mon.printf("  - %#x (line %s) %v: %v\n", brk.Address, fmt.Sprint(mon.Program.LineNo(brk.Address)), state, brk.Saved)
		}
		return
	}

	addr, err := ParseAddress(cmd.Args[0])
	if err != nil {
		return
	}

	err = bps.Add(addr)
	if err != nil {
		return
	}

	mon.printf("Breakpoint set at %#x\n", addr)

	return
}

func (mon *Monitor) cmdDelete(cmd Command) (err error) {
	err = checkArgs(cmd, 1, 1)
	if err != nil {
		return
	}

	addr, err := ParseAddress(cmd.Args[0])
	if err != nil {
		return
	}

	err = mon.Cpu.Breakpoints.Remove(addr)
	if err != nil {
		return
	}

	mon.printf("Breakpoint removed at %#x\n", addr)

	return
}

func (mon *Monitor) cmdPc(cmd Command) (err error) {
	err = checkArgs(cmd, 0, 0)
	if err != nil {
		return
	}

	if mon.Cpu.Halted() {
		mon.printf("PC: halted\n")
		return
	}

	mon.printf("PC: %s\n", fmt.Sprintf("%#x (%d)", mon.Cpu.Pc, mon.Cpu.Pc))

	return
}

// disassemble prints count instructions starting at pc, looking through
// armed breakpoints. Breakpoint addresses are marked with `*`.
func (mon *Monitor) disassemble(pc uint64, count uint64) {
	bps := mon.Cpu.Breakpoints
	for addr := pc; addr < pc+count; addr++ {
		code, ok := bps.Saved(addr)
		if !ok {
			return
		}
		mark := " "
		if bps.Enabled(addr) {
			mark = "*"
		}
		fmt.Fprintf(mon.Output, "%s%s\n", mark, cpu.Disassemble(addr, code))
	}
}

func (mon *Monitor) cmdDis(cmd Command) (err error) {
	err = checkArgs(cmd, 0, 1)
	if err != nil {
		return
	}

	if len(cmd.Args) == 1 && strings.ToLower(cmd.Args[0]) == "file" {
		mon.disassemble(0, uint64(len(mon.Cpu.Code())))
		return
	}

	count := uint64(1)
	if len(cmd.Args) == 1 {
		count, err = strconv.ParseUint(cmd.Args[0], 10, 64)
		if err != nil {
			err = ErrCommandSyntax
			return
		}
	}

	if mon.Cpu.Halted() {
		mon.printf("Program already terminated.\n")
		return
	}

	mon.disassemble(mon.Cpu.Pc, count)

	return
}

// stopped reports why execution stopped.
func (mon *Monitor) stopped() {
	switch {
	case mon.Cpu.Halted():
		mon.printf("Program terminated.\n")
	case mon.Cpu.AtBreakpoint():
		mon.printf("Breakpoint hit at %#x (line %s)\n", mon.Cpu.Pc, fmt.Sprint(mon.LineNo()))
	default:
		mon.disassemble(mon.Cpu.Pc, 1)
	}
}

func (mon *Monitor) cmdStep(cmd Command) (err error) {
	err = checkArgs(cmd, 0, 1)
	if err != nil {
		return
	}

	steps := uint64(1)
	if len(cmd.Args) == 1 {
		steps, err = strconv.ParseUint(cmd.Args[0], 10, 64)
		if err != nil {
			err = ErrCommandSyntax
			return
		}
	}

	if mon.Cpu.Halted() {
		mon.printf("Program already terminated.\n")
		return
	}

	for ; steps > 0; steps-- {
		var done bool
		done, err = mon.Tick()
		if err != nil {
			return
		}
		if done || mon.Cpu.AtBreakpoint() {
			break
		}
	}

	mon.stopped()

	return
}

func (mon *Monitor) cmdExecute(cmd Command) (err error) {
	err = checkArgs(cmd, 0, 0)
	if err != nil {
		return
	}

	if mon.Cpu.Halted() {
		mon.printf("Program already terminated.\n")
		return
	}

	err = mon.Emulator.Run()
	if err != nil {
		return
	}

	if mon.Verbose {
		log.Printf("monitor: %d ticks", mon.Cpu.Ticks)
	}

	mon.stopped()

	return
}

func (mon *Monitor) cmdRam(cmd Command) (err error) {
	err = checkArgs(cmd, 0, 2)
	if err != nil {
		return
	}

	ram := mon.Cpu.Ram

	if len(cmd.Args) == 0 {
		pages := ram.Pages()
		mon.printf("RAM: %s words, %s pages allocated\n", fmt.Sprintf("%#x", ram.Len()), fmt.Sprint(len(pages)))
		for _, index := range pages {
			fmt.Fprintf(mon.Output, "  - %08x\n", uint64(index)<<memory.PAGE_BITS)
		}
		return
	}

	addr, err := ParseAddress(cmd.Args[0])
	if err != nil {
		return
	}

	count := uint64(1)
	if len(cmd.Args) == 2 {
		count, err = strconv.ParseUint(cmd.Args[1], 0, 64)
		if err != nil {
			err = ErrCommandSyntax
			return
		}
	}

	if count > RAM_DUMP_MAX {
		err = ErrCountRange(count)
		return
	}
	if addr+count > 1<<32 {
		err = ErrAddressSyntax
		return
	}

	for n, value := range ram.Slice(uint32(addr), int(count)) {
		fmt.Fprintf(mon.Output, "%08x: %08x %d\n", addr+uint64(n), value, int32(value))
	}

	return
}
