package rx8900

import "strings"

// Flags is the content of the flag register. The chip sets flags on its own; they are only cleared by ClearFlags (or
// Configure).
type Flags uint8

const (
	// FlagVoltageDetect (VDET): temperature compensation stopped because the supply dropped.
	FlagVoltageDetect Flags = 1 << 0
	// FlagVoltageLow (VLF): the oscillator stopped or data was lost to a supply drop. The time is not valid.
	FlagVoltageLow Flags = 1 << 1
	// FlagAlarm (AF): the alarm matched.
	FlagAlarm Flags = 1 << 3
	// FlagTimer (TF): the fixed-cycle timer reached zero.
	FlagTimer Flags = 1 << 4
	// FlagUpdate (UF): a time-update event occurred.
	FlagUpdate Flags = 1 << 5

	flagMask = FlagVoltageDetect | FlagVoltageLow | FlagAlarm | FlagTimer | FlagUpdate
)

// Has reports whether every flag in x is set.
func (f Flags) Has(x Flags) bool { return f&x == x }

// OscillatorStopped reports VLF.
func (f Flags) OscillatorStopped() bool { return f&FlagVoltageLow != 0 }

// VoltageLow reports VDET.
func (f Flags) VoltageLow() bool { return f&FlagVoltageDetect != 0 }

func (f Flags) String() string {
	names := [...]struct {
		f    Flags
		name string
	}{
		{FlagUpdate, "UF"},
		{FlagTimer, "TF"},
		{FlagAlarm, "AF"},
		{FlagVoltageLow, "VLF"},
		{FlagVoltageDetect, "VDET"},
	}
	var s []string
	for _, n := range names {
		if f&n.f != 0 {
			s = append(s, n.name)
		}
	}
	if len(s) == 0 {
		return "none"
	}
	return strings.Join(s, "|")
}

// Flags reads the flag register. It works in every state, so a Faulted device can still be diagnosed.
func (d *Device) Flags() (Flags, error) {
	v, err := d.conn.ReadRegister(Flag)
	if err != nil {
		return 0, d.Observe(err)
	}
	return Flags(v) & flagMask, nil
}

// OscillatorStopped reports whether the chip lost its time (VLF). It works in every state.
func (d *Device) OscillatorStopped() (bool, error) {
	f, err := d.Flags()
	return f.OscillatorStopped(), err
}

// VoltageLow reports whether the supply voltage detector tripped (VDET). It works in every state.
func (d *Device) VoltageLow() (bool, error) {
	f, err := d.Flags()
	return f.VoltageLow(), err
}

// PowerOnFlags returns the flags found by the last Configure, before it cleared them. FlagVoltageLow here means the
// clock has to be set.
func (d *Device) PowerOnFlags() Flags { return d.powerOn }

// ClearFlags clears the flags in f with one write. Flag bits only accept 0, so bits written as 1 keep whatever the
// chip set in the meantime.
func (d *Device) ClearFlags(f Flags) error {
	if err := d.Check(); err != nil {
		return err
	}
	return d.Observe(d.conn.WriteRegister(Flag, uint8(flagMask &^ f)))
}
