package cpu

import (
	"errors"

	"github.com/cpulm/cpulm/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrIllFormedProgram  = errors.New(f("ill-formed program"))
	ErrDivisionByZero    = errors.New(f("division by zero"))
	ErrJumpNegative      = errors.New(f("jump before start of code"))
	ErrBreakpointMissing = errors.New(f("break without an enabled breakpoint"))

	// Instruction decode errors
	ErrOpcodeDecode = errors.New(f("decode"))
	ErrOpcodeAlu    = errors.New(f("alu"))

	// Breakpoint errors
	ErrBreakpointAddress = errors.New(f("breakpoint address out of code"))
	ErrBreakpointUnknown = errors.New(f("no breakpoint at address"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeMissing      = errors.New(f("operand missing"))
	ErrOpcodeInvalid      = errors.New(f("opcode invalid"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrFlagsInvalid       = errors.New(f("flags invalid"))
	ErrImmediateRange     = errors.New(f("immediate out of range"))
	ErrOffsetRange        = errors.New(f("offset out of range"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

// ErrPc is the error for a program counter outside of the code.
type ErrPc uint64

func (err ErrPc) Error() string {
	return f("pc %#x outside of code", uint64(err))
}

func (err ErrPc) Is(target error) (ok bool) {
	_, ok = target.(ErrPc)
	return
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrOpcode annotates an error with the instruction that caused it.
type ErrOpcode Code

func (eo ErrOpcode) Error() string {
	return f("bad opcode %#08x %v", uint32(eo), Code(eo).String())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
