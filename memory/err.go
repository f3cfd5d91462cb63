package memory

import (
	"github.com/cpulm/cpulm/translate"
)

var f = translate.From

// ErrUninitializedRead is the diagnostic for a read past the end of the RAM.
type ErrUninitializedRead uint32

func (err ErrUninitializedRead) Error() string {
	return f("read of uninitialized address %#x", uint32(err))
}

func (err ErrUninitializedRead) Is(target error) (ok bool) {
	_, ok = target.(ErrUninitializedRead)
	return
}
