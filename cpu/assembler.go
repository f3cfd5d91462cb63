package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":     "0",
	"OFFSET_MIN": fmt.Sprintf("%d", OFFSET_MIN),
	"OFFSET_MAX": fmt.Sprintf("%d", OFFSET_MAX),
}

// Assembler is a single pass macro assembler for the CPUlm processor.
type Assembler struct {
	Verbose    bool        // If set, verbosely logs the assembler actions.
	Statements []Statement // List of generated statements.

	predefine map[string]string   // Predefines
	Label     map[string]uint64   // Map of labels to code addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	expansions int // Count of macro expansions, for local labels.
}

// Predefine defines a new equate or redefines an existing equate, applied
// at the start of every Parse.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// regMap is a map of register names to register indices.
var regMap = func() map[string]Reg {
	regs := map[string]Reg{
		"zero": REG_ZERO,
		"one":  REG_ONE,
	}
	for n := range REG_COUNT {
		regs[Reg(n).String()] = Reg(n)
	}
	return regs
}()

// aluMap maps ALU mnemonics.
var aluMap = map[string]AluFunc{
	"and": ALU_AND,
	"or":  ALU_OR,
	"nor": ALU_NOR,
	"xor": ALU_XOR,
	"add": ALU_ADD,
	"sub": ALU_SUB,
	"mul": ALU_MUL,
	"div": ALU_DIV,
}

// shiftMap maps shift mnemonics.
var shiftMap = map[string]Opcode{
	"lsl": OP_LSL,
	"asr": OP_ASR,
	"lsr": OP_LSR,
}

// splitWords splits a line on whitespace and commas.
func splitWords(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
}

// valueOf returns the value of a simple word, which must fit in 32 bits
// as either a signed or an unsigned number.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	invert := false
	if len(word) > 0 && word[0] == '~' {
		invert = true
		word = word[1:]
	}
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(strings.Trim(word, "'"))
		return
	}
	value, err = strconv.ParseInt(word, 0, 64)
	if err != nil || value > 0xffffffff || value < -0x80000000 {
		err = ErrParseNumber(word)
		return
	}

	if invert {
		value = int64(^uint32(value))
	}

	return
}

// parseReg parses a register name.
func (asm *Assembler) parseReg(word string) (reg Reg, err error) {
	reg, ok := regMap[word]
	if !ok {
		err = ErrRegisterInvalid
	}
	return
}

// parseRegs parses a list of register names.
func (asm *Assembler) parseRegs(words []string) (regs []Reg, err error) {
	regs = make([]Reg, len(words))
	for n, word := range words {
		regs[n], err = asm.parseReg(word)
		if err != nil {
			return
		}
	}
	return
}

// parseImm16 parses a 16-bit immediate, signed or unsigned.
func (asm *Assembler) parseImm16(word string) (imm uint16, err error) {
	value, err := asm.valueOf(word)
	if err != nil {
		return
	}
	if value < -0x8000 || value > 0xffff {
		err = ErrImmediateRange
		return
	}
	imm = uint16(value)
	return
}

// parseTarget parses a relative jump target, which is either a numeric
// offset or a label to link later.
func (asm *Assembler) parseTarget(word string) (offset int32, label string, err error) {
	value, err := asm.valueOf(word)
	if err == nil {
		if value < OFFSET_MIN || value > OFFSET_MAX {
			err = ErrOffsetRange
			return
		}
		offset = int32(value)
		return
	}

	if !isLabel(word) {
		return
	}

	label = word
	err = nil
	return
}

var reLabel = regexp.MustCompile(`^[A-Za-z_.][A-Za-z0-9_.]*$`)

func isLabel(word string) bool {
	return reLabel.MatchString(word)
}

// checkArgs verifies that exactly count operands follow the mnemonic.
func checkArgs(words []string, count int) (err error) {
	switch {
	case len(words)-1 < count:
		err = ErrOpcodeMissing
	case len(words)-1 > count:
		err = ErrOpcodeExtraArgs
	}
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value64 int64
		value64, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt64(value64)
	}
	for key, pc := range asm.Label {
		_, ok := pred[key]
		if !ok {
			pred[key] = starlark.MakeUint64(pc)
		}
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	re := regexp.MustCompile(`'\\?[^']'`)
	line = re.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "0":
				str = "\x00"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	re = regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = splitWords(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]uint64, 16)
		}
		asm.Label[label] = asm.currentPc()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		// '@' makes labels local to this expansion.
		asm.expansions++
		local := fmt.Sprintf("%v_%v_", name, asm.expansions)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentPc gets the address of the next generated code.
func (asm *Assembler) currentPc() uint64 {
	if len(asm.Statements) == 0 {
		return 0
	}

	last := asm.Statements[len(asm.Statements)-1]

	return last.Pc + uint64(len(last.Codes))
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Statements = asm.Statements[:0]
	asm.expansions = 0
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("asm: %v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := splitWords(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	for n := range asm.Statements {
		st := &asm.Statements[n]

		if len(st.LinkLabel) == 0 {
			continue
		}

		lineno = st.LineNo
		line = st.Text()

		err = asm.link(st)
		if err != nil {
			return
		}
	}

	prog = &Program{
		Statements: slices.Clone(asm.Statements),
	}

	return
}

// link resolves the label of a statement into its codes. Relative jumps
// receive the offset from the following instruction; li receives the
// absolute address.
func (asm *Assembler) link(st *Statement) (err error) {
	label := st.LinkLabel
	target, ok := asm.Label[label]
	if !ok {
		err = ErrLabelMissing(label)
		return
	}

	last := len(st.Codes) - 1
	if last < 0 {
		log.Fatalf("Unable to link label '%s' to line %d: %v", label, st.LineNo, st.Words)
	}

	op, fields, err := st.Codes[last].Decode()
	if err != nil {
		return
	}

	switch op {
	case OP_JMPI, OP_JMPIC:
		offset := int64(target) - int64(st.Pc+uint64(last)+1)
		if offset < OFFSET_MIN || offset > OFFSET_MAX {
			err = ErrOffsetRange
			return
		}
		fields.Offset = int32(offset)
		st.Codes[last] = Encode(op, fields)
	case OP_LOADI:
		if last < 1 || target > 0xffffffff {
			err = ErrImmediateRange
			return
		}
		st.Codes[last-1] = MakeCodeLoadi(fields.Rd, REG_ZERO, uint16(target>>16), false)
		st.Codes[last] = MakeCodeLoadi(fields.Rd, fields.Rd, uint16(target), true)
	default:
		log.Fatalf("Unable to link label '%s' to line %d: %v", label, st.LineNo, st.Words)
	}

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []Code
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if len(codes) == 0 {
			return
		}
		st := Statement{LineNo: lineno, Pc: asm.currentPc(), Words: initial_words, Codes: codes, LinkLabel: label}
		asm.Statements = append(asm.Statements, st)
	}()

	mnemonic, suffix, has_suffix := strings.Cut(words[0], ".")

	// Pseudo-instruction substitutions
	switch {
	case mnemonic == "mov" && len(words) == 3:
		// mov RD RS => or RD RS r0
		words = []string{"or", words[1], words[2], "r0"}
	case mnemonic == "not" && len(words) == 3:
		// not RD RS => nor RD RS RS
		words = []string{"nor", words[1], words[2], words[2]}
	case mnemonic == "neg" && len(words) == 3:
		// neg RD RS => sub RD r0 RS
		words = []string{"sub", words[1], "r0", words[2]}
	case mnemonic == "nop" && len(words) == 1:
		// nop => or r0 r0 r0
		words = []string{"or", "r0", "r0", "r0"}
	default:
		// unchanged
	}

	if has_suffix {
		switch mnemonic {
		case "loadi", "jmpc", "jmpic":
		default:
			err = ErrOpcodeInvalid
			return
		}
	} else {
		mnemonic = words[0]
	}

	if fn, ok := aluMap[mnemonic]; ok {
		err = checkArgs(words, 3)
		if err != nil {
			return
		}
		var regs []Reg
		regs, err = asm.parseRegs(words[1:])
		if err != nil {
			return
		}
		codes = append(codes, MakeCodeAlu(fn, regs[0], regs[1], regs[2]))
		return
	}

	if op, ok := shiftMap[mnemonic]; ok {
		err = checkArgs(words, 3)
		if err != nil {
			return
		}
		var regs []Reg
		regs, err = asm.parseRegs(words[1:])
		if err != nil {
			return
		}
		codes = append(codes, MakeCodeShift(op, regs[0], regs[1], regs[2]))
		return
	}

	switch mnemonic {
	case "load", "store":
		err = checkArgs(words, 2)
		if err != nil {
			return
		}
		var regs []Reg
		regs, err = asm.parseRegs(words[1:])
		if err != nil {
			return
		}
		if mnemonic == "load" {
			codes = append(codes, MakeCodeLoad(regs[0], regs[1]))
		} else {
			codes = append(codes, MakeCodeStore(regs[0], regs[1]))
		}
	case "loadi":
		var lhw bool
		switch suffix {
		case "", "l":
			lhw = true
		case "h":
			lhw = false
		default:
			err = ErrOpcodeInvalid
			return
		}
		err = checkArgs(words, 3)
		if err != nil {
			return
		}
		var regs []Reg
		regs, err = asm.parseRegs(words[1:3])
		if err != nil {
			return
		}
		var imm uint16
		imm, err = asm.parseImm16(words[3])
		if err != nil {
			return
		}
		codes = append(codes, MakeCodeLoadi(regs[0], regs[1], imm, lhw))
	case "li":
		// li RD IMM32 => loadi.h RD r0 HI ; loadi.l RD RD LO
		err = checkArgs(words, 2)
		if err != nil {
			return
		}
		var rd Reg
		rd, err = asm.parseReg(words[1])
		if err != nil {
			return
		}
		var value int64
		value, err = asm.valueOf(words[2])
		if err != nil {
			if !isLabel(words[2]) {
				return
			}
			label = words[2]
			err = nil
		}
		codes = append(codes,
			MakeCodeLoadi(rd, REG_ZERO, uint16(uint32(value)>>16), false),
			MakeCodeLoadi(rd, rd, uint16(uint32(value)), true),
		)
	case "jmp", "jmpc":
		err = checkArgs(words, 1)
		if err != nil {
			return
		}
		var rs Reg
		rs, err = asm.parseReg(words[1])
		if err != nil {
			return
		}
		if mnemonic == "jmp" {
			codes = append(codes, MakeCodeJmp(rs))
			return
		}
		var selection Flags
		selection, err = ParseFlags(suffix)
		if err != nil {
			return
		}
		codes = append(codes, MakeCodeJmpc(rs, selection))
	case "jmpi", "jmpic":
		err = checkArgs(words, 1)
		if err != nil {
			return
		}
		var offset int32
		offset, label, err = asm.parseTarget(words[1])
		if err != nil {
			return
		}
		if mnemonic == "jmpi" {
			codes = append(codes, MakeCodeJmpi(offset))
			return
		}
		var selection Flags
		selection, err = ParseFlags(suffix)
		if err != nil {
			return
		}
		codes = append(codes, MakeCodeJmpic(offset, selection))
	default:
		err = ErrInstructionInvalid
		return
	}

	return
}
