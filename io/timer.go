package io

import (
	"fmt"
	"iter"
	"maps"
	"time"

	"github.com/cpulm/cpulm/memory"
)

// TIMER_PERIOD is the interval between ticks.
const TIMER_PERIOD = time.Second

// Timer polls the wall clock and sets the tick register once per period.
// It is not an interrupt: the CPU polls it between instructions.
type Timer struct {
	ram  *memory.Ram
	last time.Time
}

var _ Device = (*Timer)(nil)

// Attach selects the RAM the tick register lives in.
func (tm *Timer) Attach(ram *memory.Ram) {
	tm.ram = ram
}

// Defines returns the tick register equates.
func (tm *Timer) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"TICK_ADDR": fmt.Sprintf("%d", TICK_ADDR),
	})
}

// Start sets the sample time without ticking.
func (tm *Timer) Start(now time.Time) {
	tm.last = now
}

// Poll writes 1 to the tick register if a period has elapsed since the last
// sample, and resets the sample time.
func (tm *Timer) Poll(now time.Time) (ticked bool) {
	if tm.last.IsZero() {
		tm.last = now
		return
	}

	if now.Sub(tm.last) < TIMER_PERIOD {
		return
	}

	tm.last = now
	if tm.ram != nil {
		tm.ram.Write(TICK_ADDR, 1)
	}

	ticked = true
	return
}
