// Package pcf8523 implements a driver for the PCF8523 Real-Time Clock (RTC): reading and setting the current time, the
// alarm, timer B, the clock offset and the battery switch-over function.
//
// The chip can keep the hours in 12-hour form (selected in Control_1). The driver always writes 24-hour values but
// reads either form.
//
// Datasheet: https://www.nxp.com/docs/en/data-sheet/PCF8523.pdf
package pcf8523

import (
	"time"

	"tinygo.org/x/drivers"

	"github.com/ajanata/rtcdrivers/rtc"
)

// DefaultSettleTime is how long Configure waits after starting the oscillator.
const DefaultSettleTime = 10 * time.Millisecond

var _ rtc.Clock = (*Device)(nil)

type Device struct {
	rtc.Lifecycle

	conn  *rtc.Conn
	delay func(time.Duration)

	powerOn Flags
}

// SwitchOver is the battery switch-over mode (PM bits of Control_3).
type SwitchOver uint8

const (
	// SwitchOverStandard switches to the battery when VDD drops below VBAT and below the threshold.
	SwitchOverStandard SwitchOver = iota
	// SwitchOverDirect switches to the battery as soon as VDD drops below VBAT.
	SwitchOverDirect
	// SwitchOverDisabled runs from VDD only.
	SwitchOverDisabled
)

var pmBits = map[SwitchOver]uint8{
	SwitchOverStandard: 0b000,
	SwitchOverDirect:   0b001,
	SwitchOverDisabled: 0b011,
}

// pmNoBatteryLow disables battery low detection when added to the PM bits.
const pmNoBatteryLow = 0b100

// Config is the configuration applied by Configure.
type Config struct {
	Address uint16

	SwitchOver SwitchOver
	// DisableBatteryLow turns the battery low detector off. With SwitchOverDisabled this is the power-on state, so
	// Initialized reports false afterwards.
	DisableBatteryLow bool
	// Capacitor12pF selects the 12.5 pF quartz load capacitance instead of 7 pF.
	Capacitor12pF bool
	// DisableClockOut turns the 32.768 kHz CLKOUT off. Interrupts only reach /INT1 when it is off.
	DisableClockOut bool

	// Delay blocks for the given duration. Defaults to time.Sleep.
	Delay func(time.Duration)
	// SettleTime is waited after the oscillator is started. Zero means DefaultSettleTime, negative means none.
	SettleTime time.Duration
}

func New(i2c drivers.I2C) *Device {
	return &Device{
		conn:  rtc.NewConn(i2c, Address),
		delay: time.Sleep,
	}
}

// Configure starts the oscillator in 24-hour mode, sets the switch-over mode, disables every interrupt and timer B and
// clears the flags after saving them for PowerOnFlags. OS is left alone: it is cleared by setting the time. A clock
// found in 12-hour mode keeps its time, converted to 24-hour form; if its hours register is invalid, OS is set instead.
func (d *Device) Configure(cfg Config) error {
	pm, ok := pmBits[cfg.SwitchOver]
	if !ok {
		return &rtc.FieldError{Field: "switch-over", Value: int(cfg.SwitchOver), Err: rtc.ErrOutOfRange}
	}
	if cfg.DisableBatteryLow {
		pm |= pmNoBatteryLow
	}
	if cfg.Address != 0 {
		d.conn.Address = cfg.Address
	} else {
		d.conn.Address = Address
	}
	if cfg.Delay != nil {
		d.delay = cfg.Delay
	}
	settle := cfg.SettleTime
	if settle == 0 {
		settle = DefaultSettleTime
	}

	var ctl, cof uint8
	if cfg.Capacitor12pF {
		ctl = ctrl1CapSel
	}
	if cfg.DisableClockOut {
		cof = tmrCOF
	}
	err := d.configure(ctl, pm, cof)
	if err == nil && settle > 0 {
		d.delay(settle)
	}
	return d.Configured(err)
}

func (d *Device) configure(ctl1, pm, cof uint8) error {
	var regs [Time + rtc.TimeBlockSize]byte // Control_1 to Control_3, time registers
	if err := d.conn.ReadBlock(Control1, regs[:]); err != nil {
		return err
	}
	d.powerOn = decodeFlags([4]byte(regs[:4]))

	// Leaving 12-hour mode: the whole time block is written back with the hours in 24-hour form, in the same
	// transaction that clears the 12/24 bit.
	n := Time
	if regs[Control1]&ctrl1Hour12 != 0 {
		n = len(regs)
		h, err := layout.Hour24(regs[Hours])
		if err != nil {
			// the stored time is unusable; mark it so that it gets set
			regs[Seconds] |= secondsOS
			d.powerOn |= FlagOscillatorStopped
			h = 0
		}
		regs[Hours], _ = rtc.EncodeBCD(h, 23)
	}

	regs[Control1] = ctl1
	regs[Control2] = 0
	regs[Control3] = pm << pmShift
	if err := d.conn.WriteBlock(Control1, regs[:n]); err != nil {
		return err
	}
	return d.conn.UpdateRegister(ClkOutControl, tmrCOF|tmrTBC, cof)
}

// LostPower reports whether the oscillator stopped since the time was last set (OS). It works in every state.
func (d *Device) LostPower() (bool, error) {
	return d.OscillatorStopped()
}

// Initialized reports whether the switch-over mode was ever set: the chip powers up with PM=111. It works in every
// state.
func (d *Device) Initialized() (bool, error) {
	v, err := d.conn.ReadRegister(Control3)
	if err != nil {
		return false, d.Observe(err)
	}
	return (v&ctrl3PM)>>pmShift != pmNotInit, nil
}

// DateTime reads Control_1 and the time registers in a single transaction, so the hour mode and the hours always
// match.
func (d *Device) DateTime() (rtc.DateTime, error) {
	if err := d.Check(); err != nil {
		return rtc.DateTime{}, err
	}
	var regs [Time + rtc.TimeBlockSize]byte
	if err := d.Observe(d.conn.ReadBlock(Control1, regs[:])); err != nil {
		return rtc.DateTime{}, err
	}
	var b rtc.TimeBlock
	copy(b[:], regs[Time:])
	return layout.DecodeMode(b, hourMode(regs[Control1]))
}

func hourMode(ctl1 uint8) rtc.HourMode {
	if ctl1&ctrl1Hour12 != 0 {
		return rtc.TwelveHour
	}
	return rtc.TwentyFourHour
}

// SetDateTime stops the clock, selects 24-hour mode, writes dt in a single transaction (clearing OS) and starts the
// clock again. A weekday of rtc.AutoWeekday is computed from the date.
func (d *Device) SetDateTime(dt rtc.DateTime) error {
	if err := d.Check(); err != nil {
		return err
	}
	b, err := layout.Encode(dt)
	if err != nil {
		return err
	}

	ctl, err := d.conn.ReadRegister(Control1)
	if err != nil {
		return d.Observe(err)
	}
	// do not change cap_sel or second/alarm/correction interrupts
	ctl &= ctrl1Keep
	if err := d.conn.WriteRegister(Control1, ctl|ctrl1Stop); err != nil {
		return d.Observe(err)
	}
	if err := d.conn.WriteBlock(Time, b[:]); err != nil {
		return d.Observe(err)
	}
	return d.Observe(d.conn.WriteRegister(Control1, ctl))
}

// Set sets the clock to the wall-clock fields of t in t's location.
func (d *Device) Set(t time.Time) error {
	return d.SetDateTime(rtc.FromTime(t))
}

// Now returns the current time as UTC.
func (d *Device) Now() (time.Time, error) {
	dt, err := d.DateTime()
	if err != nil {
		return time.Time{}, err
	}
	return dt.Time(time.UTC), nil
}

// SetOffset programs the clock offset register: value steps of 4.34 ppm applied every two hours, or of 4.069 ppm
// applied every minute.
func (d *Device) SetOffset(value int, everyMinute bool) error {
	if err := d.Check(); err != nil {
		return err
	}
	if value < -64 || value > 63 {
		return &rtc.FieldError{Field: "offset", Value: value, Err: rtc.ErrOutOfRange}
	}
	v := uint8(int8(value)) &^ offsetMinuteMode
	if everyMinute {
		v |= offsetMinuteMode
	}
	return d.Observe(d.conn.WriteRegister(Offset, v))
}

// ClockOffset reads the offset register back.
func (d *Device) ClockOffset() (value int, everyMinute bool, err error) {
	if err := d.Check(); err != nil {
		return 0, false, err
	}
	v, err := d.conn.ReadRegister(Offset)
	if err != nil {
		return 0, false, d.Observe(err)
	}
	// sign-extend the 7-bit value
	return int(int8(v<<1) >> 1), v&offsetMinuteMode != 0, nil
}
