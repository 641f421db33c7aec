package pcf8523

import (
	"fmt"
	"strings"

	"github.com/ajanata/rtcdrivers/rtc"
)

// Flags collects the status bits spread over Control_2, Control_3 and the seconds register.
type Flags uint8

const (
	// FlagTimerB (CTBF): timer B reached zero.
	FlagTimerB Flags = 1 << iota
	// FlagAlarm (AF): the alarm matched.
	FlagAlarm
	// FlagSecond (SF): a second interrupt occurred.
	FlagSecond
	// FlagBatterySwitched (BSF): the chip switched over to the battery.
	FlagBatterySwitched
	// FlagBatteryLow (BLF): the battery is low. It clears itself once the battery is replaced.
	FlagBatteryLow
	// FlagOscillatorStopped (OS): the time is not valid. Setting the time clears it.
	FlagOscillatorStopped

	clearable = FlagTimerB | FlagAlarm | FlagSecond | FlagBatterySwitched
)

func decodeFlags(regs [4]byte) Flags {
	var f Flags
	bit := func(reg, mask uint8, flag Flags) {
		if reg&mask != 0 {
			f |= flag
		}
	}
	bit(regs[Control2], ctrl2CTBF, FlagTimerB)
	bit(regs[Control2], ctrl2AF, FlagAlarm)
	bit(regs[Control2], ctrl2SF, FlagSecond)
	bit(regs[Control3], ctrl3BSF, FlagBatterySwitched)
	bit(regs[Control3], ctrl3BLF, FlagBatteryLow)
	bit(regs[Seconds], secondsOS, FlagOscillatorStopped)
	return f
}

// Has reports whether every flag in x is set.
func (f Flags) Has(x Flags) bool { return f&x == x }

func (f Flags) String() string {
	names := [...]string{"CTBF", "AF", "SF", "BSF", "BLF", "OS"}
	var s []string
	for i, n := range names {
		if f&(1<<i) != 0 {
			s = append(s, n)
		}
	}
	if len(s) == 0 {
		return "none"
	}
	return strings.Join(s, "|")
}

// Flags reads every status flag in one transaction. It works in every state.
func (d *Device) Flags() (Flags, error) {
	var regs [4]byte
	if err := d.conn.ReadBlock(Control1, regs[:]); err != nil {
		return 0, d.Observe(err)
	}
	return decodeFlags(regs), nil
}

// OscillatorStopped reports OS: the oscillator stopped and the time is not valid. It works in every state.
func (d *Device) OscillatorStopped() (bool, error) {
	f, err := d.Flags()
	return f.Has(FlagOscillatorStopped), err
}

// VoltageLow reports BLF, the battery low flag. It works in every state.
func (d *Device) VoltageLow() (bool, error) {
	f, err := d.Flags()
	return f.Has(FlagBatteryLow), err
}

// PowerOnFlags returns the flags found by the last Configure, before it cleared them.
func (d *Device) PowerOnFlags() Flags { return d.powerOn }

// ClearFlags clears CTBF, AF, SF and BSF. OS and BLF cannot be cleared this way.
func (d *Device) ClearFlags(f Flags) error {
	if err := d.Check(); err != nil {
		return err
	}
	if f&^clearable != 0 {
		return fmt.Errorf("%w: clearing %v", rtc.ErrUnsupported, f&^clearable)
	}
	var regs [2]byte // Control_2, Control_3
	if err := d.conn.ReadBlock(Control2, regs[:]); err != nil {
		return d.Observe(err)
	}
	ctl2 := regs[0]&ctrl2Enables | ctrl2Flags
	if f.Has(FlagTimerB) {
		ctl2 &^= ctrl2CTBF
	}
	if f.Has(FlagAlarm) {
		ctl2 &^= ctrl2AF
	}
	if f.Has(FlagSecond) {
		ctl2 &^= ctrl2SF
	}
	ctl3 := regs[1] | ctrl3BSF
	if f.Has(FlagBatterySwitched) {
		ctl3 &^= ctrl3BSF
	}
	regs[0], regs[1] = ctl2, ctl3
	return d.Observe(d.conn.WriteBlock(Control2, regs[:]))
}
