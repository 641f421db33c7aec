package rx8900

import (
	"time"

	"github.com/ajanata/rtcdrivers/rtc"
)

// SourceClock is the countdown clock of the fixed-cycle timer (TSEL).
type SourceClock uint8

const (
	Source4096Hz SourceClock = 0b00
	Source64Hz   SourceClock = 0b01
	SourceSecond SourceClock = 0b10
	SourceMinute SourceClock = 0b11
)

// Period is the duration of one count.
func (s SourceClock) Period() time.Duration {
	switch s {
	case Source4096Hz:
		return time.Second / 4096
	case Source64Hz:
		return time.Second / 64
	case SourceSecond:
		return time.Second
	default:
		return time.Minute
	}
}

// MaxTimerCount is the largest value of the 12-bit timer counter.
const MaxTimerCount = 0x0FFF

// Timer is the fixed-cycle timer configuration. The timer raises TF every Count periods of Source.
type Timer struct {
	Source SourceClock
	Count  uint16 // 1..MaxTimerCount
	// Interrupt drives /INT low when the timer fires (TIE).
	Interrupt bool
}

// Interval is the time between two timer events.
func (t Timer) Interval() time.Duration {
	return time.Duration(t.Count) * t.Source.Period()
}

// SetTimer stops the timer, programs source and count (the two counter registers in one transaction), clears TF and
// starts it again.
func (d *Device) SetTimer(t Timer) error {
	if err := d.Check(); err != nil {
		return err
	}
	if t.Source > SourceMinute {
		return &rtc.FieldError{Field: "timer source", Value: int(t.Source), Err: rtc.ErrOutOfRange}
	}
	if t.Count < 1 || t.Count > MaxTimerCount {
		return &rtc.FieldError{Field: "timer count", Value: int(t.Count), Err: rtc.ErrOutOfRange}
	}

	var ctl [3]byte // Extension, Flag, Control
	if err := d.conn.ReadBlock(Extension, ctl[:]); err != nil {
		return d.Observe(err)
	}
	ext := ctl[0]&^(extTE|extTSEL) | uint8(t.Source)
	ctrl := ctl[2] &^ ctrlTIE
	if err := d.conn.WriteRegister(Extension, ext); err != nil {
		return d.Observe(err)
	}
	if err := d.conn.WriteRegister(Control, ctrl); err != nil {
		return d.Observe(err)
	}
	count := [2]byte{uint8(t.Count), uint8(t.Count>>8) & timerHighMax}
	if err := d.conn.WriteBlock(TimerCounter0, count[:]); err != nil {
		return d.Observe(err)
	}
	if err := d.conn.WriteRegister(Flag, uint8(flagMask &^ FlagTimer)); err != nil {
		return d.Observe(err)
	}
	if t.Interrupt {
		if err := d.conn.WriteRegister(Control, ctrl|ctrlTIE); err != nil {
			return d.Observe(err)
		}
	}
	return d.Observe(d.conn.WriteRegister(Extension, ext|extTE))
}

// Timer reads back the timer configuration and whether it is running (TE) in a single transaction.
func (d *Device) Timer() (Timer, bool, error) {
	if err := d.Check(); err != nil {
		return Timer{}, false, err
	}
	var regs [Control - TimerCounter0 + 1]byte
	if err := d.Observe(d.conn.ReadBlock(TimerCounter0, regs[:])); err != nil {
		return Timer{}, false, err
	}
	ext, ctrl := regs[Extension-TimerCounter0], regs[Control-TimerCounter0]
	t := Timer{
		Source:    SourceClock(ext & extTSEL),
		Count:     uint16(regs[1]&timerHighMax)<<8 | uint16(regs[0]),
		Interrupt: ctrl&ctrlTIE != 0,
	}
	return t, ext&extTE != 0, nil
}

// StopTimer clears TE and TIE.
func (d *Device) StopTimer() error {
	if err := d.update(Extension, extTE, 0); err != nil {
		return err
	}
	return d.update(Control, ctrlTIE, 0)
}
