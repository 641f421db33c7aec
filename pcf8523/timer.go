package pcf8523

import (
	"time"

	"github.com/ajanata/rtcdrivers/rtc"
)

// SourceClock is the timer B source clock (TBQ).
type SourceClock uint8

const (
	Source4096Hz SourceClock = iota
	Source64Hz
	SourceSecond
	SourceMinute
	SourceHour
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
	case SourceMinute:
		return time.Minute
	default:
		return time.Hour
	}
}

// Timer is the timer B countdown configuration. The timer raises CTBF every Count periods of Source.
type Timer struct {
	Source SourceClock
	Count  uint8 // at least 1
	// Interrupt drives /INT1 low when the timer fires (CTBIE).
	Interrupt bool
	// Pulse makes the interrupt a pulse instead of following CTBF (TBM).
	Pulse bool
}

// Interval is the time between two timer events.
func (t Timer) Interval() time.Duration {
	return time.Duration(t.Count) * t.Source.Period()
}

// SetTimer stops timer B, programs source and count in one transaction, clears CTBF and starts the timer.
func (d *Device) SetTimer(t Timer) error {
	if err := d.Check(); err != nil {
		return err
	}
	if t.Source > SourceHour {
		return &rtc.FieldError{Field: "timer source", Value: int(t.Source), Err: rtc.ErrOutOfRange}
	}
	if t.Count == 0 {
		return &rtc.FieldError{Field: "timer count", Value: 0, Err: rtc.ErrOutOfRange}
	}

	tmr, err := d.conn.ReadRegister(ClkOutControl)
	if err != nil {
		return d.Observe(err)
	}
	tmr &^= tmrTBC | tmrTBM
	if t.Pulse {
		tmr |= tmrTBM
	}
	if err := d.conn.WriteRegister(ClkOutControl, tmr); err != nil {
		return d.Observe(err)
	}
	ctl2, err := d.conn.ReadRegister(Control2)
	if err != nil {
		return d.Observe(err)
	}
	ctl2 = ctl2&ctrl2Enables&^ctrl2CTBIE | ctrl2Flags&^ctrl2CTBF
	if err := d.conn.WriteRegister(Control2, ctl2); err != nil {
		return d.Observe(err)
	}
	regs := [2]byte{uint8(t.Source), t.Count}
	if err := d.conn.WriteBlock(TimerBFreqControl, regs[:]); err != nil {
		return d.Observe(err)
	}
	if t.Interrupt {
		if err := d.conn.WriteRegister(Control2, ctl2|ctrl2CTBIE); err != nil {
			return d.Observe(err)
		}
	}
	return d.Observe(d.conn.WriteRegister(ClkOutControl, tmr|tmrTBC))
}

// Timer reads back the timer B configuration and whether it is running, in a single transaction. While the timer runs,
// Count is the current countdown value.
func (d *Device) Timer() (Timer, bool, error) {
	if err := d.Check(); err != nil {
		return Timer{}, false, err
	}
	var regs [TimerBValue + 1]byte
	if err := d.Observe(d.conn.ReadBlock(Control1, regs[:])); err != nil {
		return Timer{}, false, err
	}
	tmr := regs[ClkOutControl]
	t := Timer{
		Source:    SourceClock(regs[TimerBFreqControl] & 0b111),
		Count:     regs[TimerBValue],
		Interrupt: regs[Control2]&ctrl2CTBIE != 0,
		Pulse:     tmr&tmrTBM != 0,
	}
	if t.Source > SourceHour {
		t.Source = SourceHour
	}
	return t, tmr&tmrTBC != 0, nil
}

// StopTimer disables timer B and its interrupt.
func (d *Device) StopTimer() error {
	if err := d.Check(); err != nil {
		return err
	}
	if err := d.Observe(d.conn.UpdateRegister(ClkOutControl, tmrTBC, 0)); err != nil {
		return err
	}
	ctl2, err := d.conn.ReadRegister(Control2)
	if err != nil {
		return d.Observe(err)
	}
	return d.Observe(d.conn.WriteRegister(Control2, ctl2&ctrl2Enables&^ctrl2CTBIE|ctrl2Flags))
}
