package io

import (
	"fmt"
	"io"
	"iter"
	"log"
	"maps"

	"github.com/cpulm/cpulm/memory"
)

// Tape streams guest output to the host. Every write to TAPE_OUT emits the
// low byte of the written word.
type Tape struct {
	Output io.Writer

	Written int // Bytes emitted.
}

var _ Device = (*Tape)(nil)

// Attach maps the output register.
func (tc *Tape) Attach(ram *memory.Ram) {
	ram.MapWrite(TAPE_OUT, TAPE_OUT, func(addr, value uint32) {
		err := tc.Send(uint8(value))
		if err != nil {
			log.Printf("tape: %v", err)
		}
	})
}

// Defines returns the tape register equates.
func (tc *Tape) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"TAPE_OUT": fmt.Sprintf("%d", TAPE_OUT),
	})
}

// Send writes a byte to the output stream. Bytes are dropped when there is
// no output.
func (tc *Tape) Send(value uint8) (err error) {
	if tc.Output == nil {
		return
	}

	_, err = tc.Output.Write([]byte{value})
	if err != nil {
		return
	}

	tc.Written++
	return
}
