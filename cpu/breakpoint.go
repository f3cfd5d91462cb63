package cpu

import (
	"slices"
)

// Breakpoint is a code address patched with the BREAK instruction.
type Breakpoint struct {
	Address uint64 // Code address.
	Saved   Code   // Original instruction.
	Enabled bool   // Set while the code holds the BREAK instruction.
}

// Breakpoints manages the breakpoints of a code buffer. The buffer is
// patched in place.
type Breakpoints struct {
	code  []uint32
	table map[uint64]*Breakpoint
}

// NewBreakpoints creates a breakpoint manager over code.
func NewBreakpoints(code []uint32) *Breakpoints {
	return &Breakpoints{
		code:  code,
		table: make(map[uint64]*Breakpoint),
	}
}

// Add enables a breakpoint at addr. A new breakpoint saves the instruction
// it replaces; a disabled one is re-armed; an enabled one is left alone.
func (bp *Breakpoints) Add(addr uint64) (err error) {
	if addr >= uint64(len(bp.code)) {
		err = ErrBreakpointAddress
		return
	}

	brk, ok := bp.table[addr]
	if !ok {
		brk = &Breakpoint{Address: addr, Saved: Code(bp.code[addr])}
		bp.table[addr] = brk
	}

	if !brk.Enabled {
		bp.code[addr] = uint32(CODE_BREAK)
		brk.Enabled = true
	}

	return
}

// Remove deletes the breakpoint at addr, restoring the original
// instruction if it is still patched.
func (bp *Breakpoints) Remove(addr uint64) (err error) {
	brk, ok := bp.table[addr]
	if !ok {
		err = ErrBreakpointUnknown
		return
	}

	if brk.Enabled {
		bp.code[addr] = uint32(brk.Saved)
	}
	delete(bp.table, addr)

	return
}

// Disable restores the original instruction at addr, keeping the
// breakpoint record so that it can be re-armed.
func (bp *Breakpoints) Disable(addr uint64) (err error) {
	brk, ok := bp.table[addr]
	if !ok || !brk.Enabled {
		err = ErrBreakpointUnknown
		return
	}

	bp.code[addr] = uint32(brk.Saved)
	brk.Enabled = false

	return
}

// Enabled returns true if a breakpoint is armed at addr.
func (bp *Breakpoints) Enabled(addr uint64) bool {
	brk, ok := bp.table[addr]
	return ok && brk.Enabled
}

// Saved returns the original instruction at addr, looking through any
// armed breakpoint.
func (bp *Breakpoints) Saved(addr uint64) (code Code, ok bool) {
	if addr >= uint64(len(bp.code)) {
		return
	}

	brk, found := bp.table[addr]
	if found && brk.Enabled {
		return brk.Saved, true
	}

	return Code(bp.code[addr]), true
}

// List returns all breakpoints, ordered by address.
func (bp *Breakpoints) List() (list []Breakpoint) {
	for _, brk := range bp.table {
		list = append(list, *brk)
	}
	slices.SortFunc(list, func(a, b Breakpoint) int {
		switch {
		case a.Address < b.Address:
			return -1
		case a.Address > b.Address:
			return 1
		}
		return 0
	})

	return
}
