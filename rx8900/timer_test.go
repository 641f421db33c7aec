package rx8900

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/ajanata/rtcdrivers/rtc"
)

func TestSetTimer(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice(c)
	bus.Regs[Flag] = uint8(FlagTimer)

	tm := Timer{Source: SourceSecond, Count: 0x123, Interrupt: true}
	c.Assert(d.SetTimer(tm), qt.IsNil)
	c.Assert(bus.Regs[TimerCounter0:TimerCounter0+2], qt.DeepEquals, []byte{0x23, 0x01})
	c.Assert(bus.Regs[Extension]&(extTE|extTSEL), qt.Equals, uint8(extTE|0b10))
	c.Assert(bus.Regs[Control]&ctrlTIE, qt.Equals, uint8(ctrlTIE))
	c.Assert(bus.Regs[Flag], qt.Equals, uint8(0))

	txs := bus.Txs()
	c.Assert(txs[1].W, qt.DeepEquals, []byte{Extension, 0b10})
	c.Assert(txs[3].W, qt.DeepEquals, []byte{TimerCounter0, 0x23, 0x01})
	c.Assert(txs[len(txs)-1].W, qt.DeepEquals, []byte{Extension, extTE | 0b10})
	c.Assert(flagWrites(bus), qt.DeepEquals, []byte{0x2B})

	got, running, err := d.Timer()
	c.Assert(err, qt.IsNil)
	c.Assert(running, qt.IsTrue)
	c.Assert(got, qt.Equals, tm)
	c.Assert(got.Interval(), qt.Equals, 291*time.Second)
}

func TestStopTimer(t *testing.T) {
	c := qt.New(t)
	d, _ := newDevice(c)
	c.Assert(d.SetTimer(Timer{Source: Source64Hz, Count: MaxTimerCount, Interrupt: true}), qt.IsNil)

	c.Assert(d.StopTimer(), qt.IsNil)
	got, running, err := d.Timer()
	c.Assert(err, qt.IsNil)
	c.Assert(running, qt.IsFalse)
	c.Assert(got, qt.Equals, Timer{Source: Source64Hz, Count: MaxTimerCount})
}

func TestSetTimerRejectsInvalid(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice(c)

	c.Assert(d.SetTimer(Timer{Count: 0}), qt.ErrorIs, rtc.ErrOutOfRange)
	c.Assert(d.SetTimer(Timer{Count: MaxTimerCount + 1}), qt.ErrorIs, rtc.ErrOutOfRange)
	c.Assert(d.SetTimer(Timer{Source: 4, Count: 1}), qt.ErrorIs, rtc.ErrOutOfRange)
	c.Assert(bus.Count(), qt.Equals, 0)
}

func TestSourcePeriod(t *testing.T) {
	c := qt.New(t)
	c.Assert(Timer{Source: Source4096Hz, Count: 4096}.Interval(), qt.Equals, time.Second)
	c.Assert(Timer{Source: Source64Hz, Count: 32}.Interval(), qt.Equals, 500*time.Millisecond)
	c.Assert(Timer{Source: SourceMinute, Count: 60}.Interval(), qt.Equals, time.Hour)
}
