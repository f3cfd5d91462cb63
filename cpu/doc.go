// Package cpu implements the CPUlm processor, its instruction encoding,
// assembler and disassembler.
//
// The processor has 32 general-purpose 32-bit registers (r0 and r1 are
// hard-wired to 0 and 1), four condition flags (zero, negative, carry,
// overflow), a program counter indexing a word-addressed code buffer, and a
// growable word RAM. Instructions are single 32-bit words whose fields are
// drawn least significant bits first, starting with a 4-bit opcode.
//
// Breakpoints are implemented by patching the code buffer with the BREAK
// opcode; the processor suspends when it fetches one and restores the
// original instruction.
//
// The assembler provides a small assembly language for the instruction set,
// supporting macros, labels, equates, and compile-time expression evaluation.
package cpu
