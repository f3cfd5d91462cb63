package io

import (
	"fmt"
	"iter"
	"maps"
	"time"

	"github.com/cpulm/cpulm/memory"
)

var _clock_defines = map[string]string{
	"RTC_TRIGGER": fmt.Sprintf("%d", RTC_TRIGGER),
	"RTC_SECONDS": fmt.Sprintf("%d", RTC_SECONDS),
	"RTC_MINUTE":  fmt.Sprintf("%d", RTC_MINUTE),
	"RTC_HOUR":    fmt.Sprintf("%d", RTC_HOUR),
	"RTC_MDAY":    fmt.Sprintf("%d", RTC_MDAY),
	"RTC_MONTH":   fmt.Sprintf("%d", RTC_MONTH),
	"RTC_YEAR":    fmt.Sprintf("%d", RTC_YEAR),
	"RTC_WDAY":    fmt.Sprintf("%d", RTC_WDAY),
	"RTC_YDAY":    fmt.Sprintf("%d", RTC_YDAY),
}

// Clock is the real-time clock. Writing a non-zero value to RTC_TRIGGER
// stores a snapshot of the local date and time in RTC_SECONDS..RTC_YDAY.
type Clock struct {
	Now func() time.Time // Time source. Uses time.Now if nil.
}

var _ Device = (*Clock)(nil)

// Attach maps the trigger register.
func (clk *Clock) Attach(ram *memory.Ram) {
	ram.MapWrite(RTC_TRIGGER, RTC_TRIGGER, func(addr, value uint32) {
		if value == 0 {
			return
		}
		clk.snapshot(ram)
	})
}

// Defines returns the clock register equates.
func (clk *Clock) Defines() iter.Seq2[string, string] {
	return maps.All(_clock_defines)
}

// Fields returns the register values for a point in time, in register order.
func (clk *Clock) Fields(now time.Time) [8]uint32 {
	wday := uint32(now.Weekday())
	if wday == 0 {
		wday = 7
	}

	return [8]uint32{
		uint32(now.Second() % 60),
		uint32(now.Minute()),
		uint32(now.Hour()),
		uint32(now.Day()),
		uint32(now.Month()),
		uint32(now.Year()),
		wday,
		uint32(now.YearDay()),
	}
}

func (clk *Clock) snapshot(ram *memory.Ram) {
	now := time.Now
	if clk.Now != nil {
		now = clk.Now
	}

	for n, value := range clk.Fields(now()) {
		ram.Write(RTC_SECONDS+uint32(n), value)
	}
}
