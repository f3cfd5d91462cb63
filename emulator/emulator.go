// Package emulator assembles the CPUlm machine: the processor, its RAM, the
// memory-mapped devices, and the listing of the loaded program.
package emulator

import (
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"slices"

	"github.com/cpulm/cpulm/cpu"
	"github.com/cpulm/cpulm/internal"
	dev "github.com/cpulm/cpulm/io"
	"github.com/cpulm/cpulm/memory"
)

var _emulator_defines = map[string]string{
	"PAGE_SIZE": fmt.Sprintf("%d", memory.PAGE_SIZE),
}

// Emulator state. CPU + RAM + devices.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	Clock dev.Clock // Real-time clock.
	Tape  dev.Tape  // Tape output.

	image []uint32 // Initial RAM contents.
}

// NewEmulator creates a new emulator with no program loaded.
func NewEmulator() (emu *Emulator) {
	ram := &memory.Ram{}

	emu = &Emulator{
		Cpu:     cpu.NewCpu(nil, ram),
		Program: &cpu.Program{},
	}

	emu.Clock.Attach(ram)
	emu.Tape.Attach(ram)

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
		emu.Cpu.Timer.Defines(),
		emu.Clock.Defines(),
		emu.Tape.Defines(),
	)
}

// Assemble parses source text with the emulator defines predefined.
func (emu *Emulator) Assemble(input io.Reader) (prog *cpu.Program, err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for equ, value := range emu.Defines() {
		asm.Predefine(equ, value)
	}

	return asm.Parse(input)
}

// Load installs a program and an initial RAM image, and resets.
func (emu *Emulator) Load(prog *cpu.Program, image []uint32) {
	if prog == nil {
		prog = &cpu.Program{}
	}

	emu.Program = prog
	emu.image = slices.Clone(image)

	emu.Reset()
}

// Reset restarts the loaded program from its initial RAM image.
// Breakpoints are dropped.
func (emu *Emulator) Reset() {
	emu.Cpu.Verbose = emu.Verbose

	emu.Cpu.Ram.Reset()
	emu.Cpu.Ram.Load(emu.image)
	emu.Cpu.Load(emu.Program.Binary())

	emu.Tape.Written = 0

	if emu.Verbose {
		log.Printf("emulator: %d codes, %d ram words", len(emu.Cpu.Code()), len(emu.image))
	}
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	if emu.Cpu.Halted() {
		return 0
	}

	return emu.Program.LineNo(emu.Cpu.Pc)
}

// Tick performs a single instruction of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	defer emu.wrap(&err)

	err = emu.Cpu.Step()
	done = emu.Cpu.Halted()

	return
}

// Run executes until the program halts or stops on a breakpoint.
func (emu *Emulator) Run() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	defer emu.wrap(&err)

	err = emu.Cpu.Execute()

	return
}

// wrap annotates a processor error with its source location.
func (emu *Emulator) wrap(err *error) {
	if *err == nil {
		return
	}

	*err = &ErrRuntime{
		Pc:     emu.Cpu.Pc,
		LineNo: emu.LineNo(),
		Err:    *err,
	}
}
