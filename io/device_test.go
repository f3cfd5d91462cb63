package io

import (
	"bytes"
	"errors"
	"log"
	"maps"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cpulm/cpulm/memory"
)

func quietRam() *memory.Ram {
	return &memory.Ram{Warn: func(err error) {}}
}

func TestTimer_Poll(t *testing.T) {
	assert := assert.New(t)

	ram := quietRam()
	tm := &Timer{}
	tm.Attach(ram)

	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tm.Start(start)

	assert.False(tm.Poll(start.Add(999 * time.Millisecond)))
	assert.Equal(uint64(0), ram.Len())

	assert.True(tm.Poll(start.Add(time.Second)))
	assert.Equal(uint32(1), ram.Read(TICK_ADDR))

	// The guest acknowledges the tick; the sample time was reset.
	ram.Write(TICK_ADDR, 0)
	assert.False(tm.Poll(start.Add(1500 * time.Millisecond)))
	assert.Equal(uint32(0), ram.Read(TICK_ADDR))
	assert.True(tm.Poll(start.Add(2 * time.Second)))
	assert.Equal(uint32(1), ram.Read(TICK_ADDR))
}

func TestTimer_FirstPollSamples(t *testing.T) {
	assert := assert.New(t)

	ram := quietRam()
	tm := &Timer{}
	tm.Attach(ram)

	now := time.Now()
	assert.False(tm.Poll(now))
	assert.True(tm.Poll(now.Add(time.Hour)))
}

func TestClock_Trigger(t *testing.T) {
	assert := assert.New(t)

	// 2023-01-01 is a Sunday.
	when := time.Date(2023, 1, 1, 23, 59, 58, 0, time.Local)
	ram := quietRam()
	clk := &Clock{Now: func() time.Time { return when }}
	clk.Attach(ram)

	ram.Write(RTC_TRIGGER, 0)
	assert.Equal(uint64(RTC_TRIGGER+1), ram.Len())

	ram.Write(RTC_TRIGGER, 0x55)
	expected := []uint32{58, 59, 23, 1, 1, 2023, 7, 1}
	for n, value := range expected {
		assert.Equal(value, ram.Read(RTC_SECONDS+uint32(n)), "field %d", n)
	}
	assert.Equal(uint32(0x55), ram.Read(RTC_TRIGGER))
}

func TestClock_Fields(t *testing.T) {
	assert := assert.New(t)

	clk := &Clock{}
	fields := clk.Fields(time.Date(2024, 2, 29, 8, 30, 15, 0, time.UTC))
	assert.Equal([8]uint32{15, 30, 8, 29, 2, 2024, 4, 60}, fields)
}

func TestClock_NoTrigger(t *testing.T) {
	assert := assert.New(t)

	ram := quietRam()
	clk := &Clock{}
	clk.Attach(ram)

	ram.Write(RTC_SECONDS, 0x99)
	ram.Write(RTC_TRIGGER, 0)
	assert.Equal(uint32(0x99), ram.Read(RTC_SECONDS))
}

func TestTape(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	ram := quietRam()
	tape := &Tape{Output: out}
	tape.Attach(ram)

	for _, ch := range []uint32{'h', 'i', 0x10a} {
		ram.Write(TAPE_OUT, ch)
	}
	ram.Write(TAPE_OUT+1, 'x')

	assert.Equal("hi\n", out.String())
	assert.Equal(3, tape.Written)
}

type failWriter struct{}

func (failWriter) Write(data []byte) (int, error) {
	return 0, errors.New("console gone")
}

func TestTape_WriteError(t *testing.T) {
	assert := assert.New(t)

	logged := &bytes.Buffer{}
	log.SetOutput(logged)
	defer log.SetOutput(os.Stderr)

	ram := quietRam()
	tape := &Tape{Output: failWriter{}}
	tape.Attach(ram)

	ram.Write(TAPE_OUT, 'a')

	assert.Equal(0, tape.Written)
	assert.Contains(logged.String(), "tape: console gone")
	assert.Equal(uint32('a'), ram.Read(TAPE_OUT))
}

func TestTape_NoOutput(t *testing.T) {
	assert := assert.New(t)

	tape := &Tape{}
	assert.NoError(tape.Send('a'))
	assert.Equal(0, tape.Written)
}

func TestRom_RoundTrip(t *testing.T) {
	assert := assert.New(t)

	rom := &Rom{Data: []uint32{0x12345678, 0, 0xffffffff}}
	buf := &bytes.Buffer{}
	assert.NoError(rom.Marshal(buf))
	assert.Equal([]byte{0x78, 0x56, 0x34, 0x12, 0, 0, 0, 0, 0xff, 0xff, 0xff, 0xff}, buf.Bytes())

	other := &Rom{}
	assert.NoError(other.Unmarshal(buf))
	assert.Equal(rom.Data, other.Data)
}

func TestRom_Malformed(t *testing.T) {
	assert := assert.New(t)

	rom := &Rom{}
	err := rom.Unmarshal(bytes.NewReader([]byte{1, 2, 3, 4, 5}))
	assert.True(errors.Is(err, ErrMalformedInput))

	assert.NoError(rom.Unmarshal(bytes.NewReader(nil)))
	assert.Empty(rom.Data)
}

func TestDefines(t *testing.T) {
	assert := assert.New(t)

	devices := []Device{&Timer{}, &Clock{}, &Tape{}}
	all := map[string]string{}
	for _, dev := range devices {
		maps.Insert(all, dev.Defines())
	}

	assert.Equal("1024", all["TICK_ADDR"])
	assert.Equal("1025", all["RTC_TRIGGER"])
	assert.Equal("1033", all["RTC_YDAY"])
	assert.Equal("1034", all["TAPE_OUT"])
}
