// Package io provides the memory-mapped devices of the CPUlm machine.
//
// Devices attach to the RAM through write listeners. The tick timer flags
// the passing of each wall-clock second, the real-time clock snapshots the
// date and time when its trigger register is written, and the tape streams
// bytes written by the guest to the host. Rom reads and writes raw program
// and RAM images.
package io

import (
	"iter"

	"github.com/cpulm/cpulm/memory"
)

// Memory-mapped register addresses.
const (
	TICK_ADDR = uint32(1024) // Set to 1 once per elapsed second.

	RTC_TRIGGER = uint32(1025) // Non-zero write snapshots the clock.
	RTC_SECONDS = uint32(1026) // Seconds, 0-59.
	RTC_MINUTE  = uint32(1027) // Minute, 0-59.
	RTC_HOUR    = uint32(1028) // Hour, 0-23.
	RTC_MDAY    = uint32(1029) // Day of month, 1-31.
	RTC_MONTH   = uint32(1030) // Month, 1-12.
	RTC_YEAR    = uint32(1031) // Full year.
	RTC_WDAY    = uint32(1032) // ISO weekday, Monday is 1, Sunday is 7.
	RTC_YDAY    = uint32(1033) // Day of year, 1-366.

	TAPE_OUT = uint32(1034) // Low byte of each write goes to the tape.
)

// Device is a memory-mapped peripheral.
type Device interface {
	// Attach maps the device registers into ram.
	Attach(ram *memory.Ram)
	// Defines returns the assembler equates for the device registers.
	Defines() iter.Seq2[string, string]
}
