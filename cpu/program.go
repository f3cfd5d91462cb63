package cpu

import (
	"iter"
	"strings"
)

// Statement is a single assembled source line and the codes it produced.
type Statement struct {
	LineNo    int      // Source line number, or 0 for raw binaries.
	Pc        uint64   // Address of the first code.
	Words     []string // Source words.
	Codes     []Code   // Generated codes.
	LinkLabel string   // Label to resolve into the codes when linking.
}

// Text returns the source text of the statement.
func (st *Statement) Text() string {
	return strings.Join(st.Words, " ")
}

// Program is an assembled program listing.
type Program struct {
	Statements []Statement
}

// Debug locates the statement that generated the code at a program address.
type Debug struct {
	*Statement
	Index int // Index of the code within the statement.
}

// NewProgram creates a listing for a raw binary, one statement per word.
func NewProgram(words []uint32) (prog *Program) {
	prog = &Program{
		Statements: make([]Statement, len(words)),
	}
	for n, word := range words {
		prog.Statements[n] = Statement{Pc: uint64(n), Codes: []Code{Code(word)}}
	}

	return
}

func (prog *Program) Debug(pc uint64) (dbg Debug) {
	for n, st := range prog.Statements {
		if pc >= st.Pc && pc < st.Pc+uint64(len(st.Codes)) {
			dbg = Debug{
				Statement: &prog.Statements[n],
				Index:     int(pc - st.Pc),
			}
			break
		}
	}

	return
}

// LineNo returns the source line of the code at pc, or 0 if unknown.
func (prog *Program) LineNo(pc uint64) int {
	dbg := prog.Debug(pc)
	if dbg.Statement == nil {
		return 0
	}
	return dbg.LineNo
}

// Binary returns the code words of the program.
func (prog *Program) Binary() (bins []uint32) {
	for _, code := range prog.Codes() {
		bins = append(bins, uint32(code))
	}

	return
}

// Codes iterates over the program address and code of every instruction.
func (prog *Program) Codes() iter.Seq2[uint64, Code] {
	return func(yield func(pc uint64, code Code) bool) {
		for _, st := range prog.Statements {
			for n, code := range st.Codes {
				if !yield(st.Pc+uint64(n), code) {
					return
				}
			}
		}
	}
}
