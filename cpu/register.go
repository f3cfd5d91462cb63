package cpu

// Registers is the register file. Reads of REG_ZERO and REG_ONE always
// return 0 and 1; writes to them are kept but never observed.
type Registers [REG_COUNT]uint32

// Get returns the value of a register.
func (regs *Registers) Get(reg Reg) (value uint32) {
	switch reg {
	case REG_ZERO:
		value = 0
	case REG_ONE:
		value = 1
	default:
		value = regs[reg&REG_MASK]
	}
	return
}

// Set stores the value of a register.
func (regs *Registers) Set(reg Reg, value uint32) {
	regs[reg&REG_MASK] = value
}

// raw returns the stored value of a register, ignoring the hard-wired
// registers.
func (regs *Registers) raw(reg Reg) uint32 {
	return regs[reg&REG_MASK]
}
