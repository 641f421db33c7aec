package ds3231

import (
	"fmt"
	"strings"

	"github.com/ajanata/rtcdrivers/rtc"
)

// Flags is the content of the status register, without EN32kHz.
type Flags uint8

const (
	// FlagAlarm1 (A1F): alarm 1 matched.
	FlagAlarm1 Flags = statA1F
	// FlagAlarm2 (A2F): alarm 2 matched.
	FlagAlarm2 Flags = statA2F
	// FlagBusy (BSY): a temperature conversion is running. It cannot be cleared.
	FlagBusy Flags = statBSY
	// FlagOscillatorStopped (OSF): the oscillator stopped and the time is not valid.
	FlagOscillatorStopped Flags = statOSF
)

// Has reports whether every flag in x is set.
func (f Flags) Has(x Flags) bool { return f&x == x }

func (f Flags) String() string {
	var s []string
	if f&FlagOscillatorStopped != 0 {
		s = append(s, "OSF")
	}
	if f&FlagBusy != 0 {
		s = append(s, "BSY")
	}
	if f&FlagAlarm2 != 0 {
		s = append(s, "A2F")
	}
	if f&FlagAlarm1 != 0 {
		s = append(s, "A1F")
	}
	if len(s) == 0 {
		return "none"
	}
	return strings.Join(s, "|")
}

// Flags reads the status register. It works in every state.
func (d *Device) Flags() (Flags, error) {
	v, err := d.conn.ReadRegister(Status)
	if err != nil {
		return 0, d.Observe(err)
	}
	return Flags(v & (statFlags | statBSY)), nil
}

// OscillatorStopped reports OSF. It works in every state.
func (d *Device) OscillatorStopped() (bool, error) {
	f, err := d.Flags()
	return f.Has(FlagOscillatorStopped), err
}

// OscillatorEnabled reports whether the oscillator runs on battery power (EOSC clear). It works in every state.
func (d *Device) OscillatorEnabled() (bool, error) {
	v, err := d.conn.ReadRegister(Control)
	if err != nil {
		return false, d.Observe(err)
	}
	return v&ctrlEOSC == 0, nil
}

// PowerOnFlags returns the flags found by the last Configure.
func (d *Device) PowerOnFlags() Flags { return d.powerOn }

// ClearFlags clears OSF, A2F and A1F.
func (d *Device) ClearFlags(f Flags) error {
	if err := d.Check(); err != nil {
		return err
	}
	if f&FlagBusy != 0 {
		return fmt.Errorf("%w: clearing %v", rtc.ErrUnsupported, FlagBusy)
	}
	return d.clearStatus(uint8(f) & statFlags)
}

// clearStatus writes 0 to the status flags in mask. OSF and EN32kHz otherwise keep the value just read, and the
// alarm flags get a 1, which they ignore.
func (d *Device) clearStatus(mask uint8) error {
	v, err := d.conn.ReadRegister(Status)
	if err != nil {
		return d.Observe(err)
	}
	return d.Observe(d.conn.WriteRegister(Status, v&(statEN32kHz|statOSF)&^mask|(statA1F|statA2F)&^mask))
}
