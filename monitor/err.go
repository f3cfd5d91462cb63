package monitor

import (
	"errors"
	"fmt"

	"github.com/cpulm/cpulm/translate"
)

var f = translate.From

var (
	ErrCommandSyntax = errors.New(f("invalid command"))
	ErrAddressSyntax = errors.New(f("invalid address"))
	ErrValueSyntax   = errors.New(f("invalid value"))
)

// ErrRegisterMissing is returned for a register index past the bank.
type ErrRegisterMissing uint64

func (err ErrRegisterMissing) Error() string {
	return f("register r%d does not exist", uint64(err))
}

// ErrCountRange is returned for a `ram` dump longer than RAM_DUMP_MAX.
type ErrCountRange uint64

func (err ErrCountRange) Error() string {
	return f("count %s exceeds %s", fmt.Sprint(uint64(err)), fmt.Sprint(RAM_DUMP_MAX))
}

// ErrRegisterReadOnly is returned when setting a hard-wired register.
type ErrRegisterReadOnly uint8

func (err ErrRegisterReadOnly) Error() string {
	return f("register r%d is read-only", uint8(err))
}
