package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"math/bits"
	"strings"
	"time"

	"github.com/cpulm/cpulm/io"
	"github.com/cpulm/cpulm/memory"
)

// PC_HALT is the program counter of a halted processor.
const PC_HALT = ^uint64(0)

var _cpu_defines = map[string]string{
	"REG_COUNT":     fmt.Sprintf("%d", REG_COUNT),
	"FLAG_ZERO":     fmt.Sprintf("%#x", 1<<FLAG_ZERO),
	"FLAG_NEGATIVE": fmt.Sprintf("%#x", 1<<FLAG_NEGATIVE),
	"FLAG_CARRY":    fmt.Sprintf("%#x", 1<<FLAG_CARRY),
	"FLAG_OVERFLOW": fmt.Sprintf("%#x", 1<<FLAG_OVERFLOW),
}

// Cpu is the simulation context of the CPUlm processor.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Now func() time.Time // Wall clock source. Uses time.Now if nil.

	Ram         *memory.Ram  // Main memory.
	Timer       io.Timer     // Tick timer, polled before each instruction.
	Breakpoints *Breakpoints // Breakpoints patched into the code.

	Pc       uint64    // Index of the next instruction, or PC_HALT.
	Register Registers // Register bank.
	Flags    Flags     // Condition flags of the last ALU instruction.

	Ticks int // Executed instruction counter.

	code         []uint32
	atBreakpoint bool
}

// NewCpu creates a processor executing code, using ram as main memory.
// The code buffer is shared with the breakpoint manager.
func NewCpu(code []uint32, ram *memory.Ram) (cpu *Cpu) {
	if ram == nil {
		ram = &memory.Ram{}
	}

	cpu = &Cpu{
		Ram: ram,
	}
	cpu.Timer.Attach(ram)
	cpu.Load(code)

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Load replaces the code buffer, dropping all breakpoints, and resets the
// processor.
func (cpu *Cpu) Load(code []uint32) {
	cpu.code = code
	cpu.Breakpoints = NewBreakpoints(code)
	cpu.Reset()
}

// Reset the processor state. Registers and flags are cleared, the program
// counter returns to the first instruction, and the tick timer restarts.
// Memory and breakpoints are left untouched.
func (cpu *Cpu) Reset() {
	cpu.Register = Registers{}
	cpu.Flags = 0
	cpu.Pc = 0
	cpu.Ticks = 0
	cpu.atBreakpoint = false
	cpu.checkEnd()

	// The first poll samples the clock.
	cpu.Timer.Start(time.Time{})
}

// Code returns the code buffer, including any patched breakpoints.
func (cpu *Cpu) Code() []uint32 {
	return cpu.code
}

// Halted returns true once the program has run off its end.
func (cpu *Cpu) Halted() bool {
	return cpu.Pc == PC_HALT
}

// AtBreakpoint returns true if the last step stopped on a breakpoint.
func (cpu *Cpu) AtBreakpoint() bool {
	return cpu.atBreakpoint
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() string {
	var sb strings.Builder

	if cpu.Halted() {
		sb.WriteString("   pc: halted\n")
	} else {
		fmt.Fprintf(&sb, "   pc: %04x\n", cpu.Pc)
	}
	fmt.Fprintf(&sb, "flags: %v\n", cpu.Flags)
	for n := range REG_COUNT {
		fmt.Fprintf(&sb, "%5v: %04X_%04X", Reg(n), cpu.Register.Get(Reg(n))>>16, cpu.Register.Get(Reg(n))&0xffff)
		if n%4 == 3 {
			sb.WriteString("\n")
		} else {
			sb.WriteString(" ")
		}
	}

	return sb.String()
}

func (cpu *Cpu) now() time.Time {
	if cpu.Now != nil {
		return cpu.Now()
	}
	return time.Now()
}

// checkEnd halts the processor when the program counter is exactly one
// past the last instruction.
func (cpu *Cpu) checkEnd() {
	if cpu.Pc == uint64(len(cpu.code)) {
		cpu.Pc = PC_HALT
	}
}

// Step executes a single instruction. Stepping a halted processor does
// nothing. Any returned error is fatal to the program.
func (cpu *Cpu) Step() (err error) {
	if cpu.Halted() {
		return
	}

	cpu.atBreakpoint = false
	cpu.Timer.Poll(cpu.now())

	if cpu.Pc >= uint64(len(cpu.code)) {
		err = errors.Join(ErrIllFormedProgram, ErrPc(cpu.Pc))
		return
	}

	pc := cpu.Pc
	code := Code(cpu.code[pc])
	if cpu.Verbose {
		log.Printf("cpu: %04x: %v", pc, code)
	}
	cpu.Pc++

	err = cpu.dispatch(code)
	if err != nil {
		// Leave the processor on the faulting instruction.
		cpu.Pc = pc
		return
	}

	if !cpu.atBreakpoint {
		cpu.Ticks++
	}
	cpu.checkEnd()

	return
}

// Execute steps the processor until it halts, stops on a breakpoint, or
// fails.
func (cpu *Cpu) Execute() (err error) {
	for {
		err = cpu.Step()
		if err != nil || cpu.Halted() || cpu.atBreakpoint {
			return
		}
	}
}

// dispatch executes a single instruction. The program counter has already
// been advanced past it.
func (cpu *Cpu) dispatch(code Code) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(code), err)
		}
	}()

	op, fields, err := code.Decode()
	if err != nil {
		err = errors.Join(ErrIllFormedProgram, err)
		return
	}

	reg := &cpu.Register

	switch op {
	case OP_ALU:
		var output uint32
		var flags Flags
		output, flags, err = doAlu(fields.Alu, reg.Get(fields.Rs1), reg.Get(fields.Rs2))
		if err != nil {
			return
		}
		reg.Set(fields.Rd, output)
		cpu.Flags = flags
	case OP_LSL:
		reg.Set(fields.Rd, reg.Get(fields.Rs1)<<(reg.Get(fields.Rs2)&0x1f))
	case OP_ASR:
		reg.Set(fields.Rd, uint32(int32(reg.Get(fields.Rs1))>>(reg.Get(fields.Rs2)&0x1f)))
	case OP_LSR:
		reg.Set(fields.Rd, reg.Get(fields.Rs1)>>(reg.Get(fields.Rs2)&0x1f))
	case OP_LOAD:
		reg.Set(fields.Rd, cpu.Ram.Read(reg.Get(fields.Rs1)))
	case OP_LOADI:
		imm := uint32(fields.Imm)
		if !fields.Lhw {
			imm <<= 16
		}
		reg.Set(fields.Rd, reg.Get(fields.Rs1)+imm)
	case OP_STORE:
		cpu.Ram.Write(reg.Get(fields.Rd), reg.Get(fields.Rs1))
	case OP_JMP:
		cpu.Pc = uint64(reg.Get(fields.Rs1))
	case OP_JMPI:
		err = cpu.jumpRelative(fields.Offset)
	case OP_JMPC:
		if cpu.Flags.Test(fields.Select) {
			cpu.Pc = uint64(reg.Get(fields.Rs1))
		}
	case OP_JMPIC:
		if cpu.Flags.Test(fields.Select) {
			err = cpu.jumpRelative(fields.Offset)
		}
	case OP_BREAK:
		err = cpu.doBreak()
	}

	return
}

// jumpRelative moves the program counter by offset from the next
// instruction.
func (cpu *Cpu) jumpRelative(offset int32) (err error) {
	target := int64(cpu.Pc) + int64(offset)
	if target < 0 {
		err = errors.Join(ErrIllFormedProgram, ErrJumpNegative)
		return
	}
	cpu.Pc = uint64(target)
	return
}

// doBreak suspends on a breakpoint, restoring the original instruction so
// that the next step executes it.
func (cpu *Cpu) doBreak() (err error) {
	cpu.Pc--

	err = cpu.Breakpoints.Disable(cpu.Pc)
	if err != nil {
		err = errors.Join(ErrIllFormedProgram, ErrBreakpointMissing, err)
		return
	}

	log.Printf("cpu: breakpoint at %#x", cpu.Pc)
	cpu.atBreakpoint = true

	return
}

// doAlu performs the requested ALU action, and returns the output value
// and the recomputed flags. Carry and overflow are only produced by add,
// sub and mul.
func doAlu(fn AluFunc, a uint32, b uint32) (output uint32, flags Flags, err error) {
	var carry, overflow bool

	switch fn {
	case ALU_AND:
		output = a & b
	case ALU_OR:
		output = a | b
	case ALU_NOR:
		output = ^(a | b)
	case ALU_XOR:
		output = a ^ b
	case ALU_ADD:
		var c uint32
		output, c = bits.Add32(a, b, 0)
		carry = c != 0
		overflow = !fitsInt32(int64(int32(a)) + int64(int32(b)))
	case ALU_SUB:
		var borrow uint32
		output, borrow = bits.Sub32(a, b, 0)
		carry = borrow != 0
		overflow = !fitsInt32(int64(int32(a)) - int64(int32(b)))
	case ALU_MUL:
		var hi uint32
		hi, output = bits.Mul32(a, b)
		carry = hi != 0
		overflow = !fitsInt32(int64(int32(a)) * int64(int32(b)))
	case ALU_DIV:
		if b == 0 {
			err = errors.Join(ErrIllFormedProgram, ErrDivisionByZero)
			return
		}
		output = a / b
	default:
		err = errors.Join(ErrIllFormedProgram, ErrOpcodeAlu)
		return
	}

	flags = flags.With(FLAG_ZERO, output == 0)
	flags = flags.With(FLAG_NEGATIVE, int32(output) < 0)
	flags = flags.With(FLAG_CARRY, carry)
	flags = flags.With(FLAG_OVERFLOW, overflow)

	return
}

func fitsInt32(value int64) bool {
	return value == int64(int32(value))
}
