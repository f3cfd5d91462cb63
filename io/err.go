package io

import (
	"errors"

	"github.com/cpulm/cpulm/translate"
)

var f = translate.From

var (
	// Image errors
	ErrMalformedInput = errors.New(f("image length is not a multiple of 4 bytes"))
)
