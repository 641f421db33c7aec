// Package ds3231 provides a driver for the DS3231 temperature-compensated RTC: the time, both alarms, the status
// flags, the aging offset and the temperature sensor.
//
// The DS3231 stores two-digit years plus a century bit, so it covers 2000 to 2199. Hours may be kept in 12-hour form;
// the driver reads both forms and always writes 24-hour values. Days of the week are stored as 1 (Sunday) to 7.
//
// Datasheet: https://datasheets.maximintegrated.com/en/ds/DS3231.pdf
package ds3231

import (
	"time"

	"tinygo.org/x/drivers"

	"github.com/ajanata/rtcdrivers/rtc"
)

// DefaultSettleTime is how long Configure waits after starting the oscillator.
const DefaultSettleTime = 10 * time.Millisecond

var _ rtc.Clock = (*Device)(nil)

// Device wraps an I2C connection to a DS3231 device.
type Device struct {
	rtc.Lifecycle

	conn  *rtc.Conn
	delay func(time.Duration)

	powerOn Flags
}

// Config is the configuration applied by Configure.
type Config struct {
	Address uint16

	// Enable32kHz keeps the 32kHz output running.
	Enable32kHz bool

	// Delay blocks for the given duration. Defaults to time.Sleep.
	Delay func(time.Duration)
	// SettleTime is waited after the oscillator is started. Zero means DefaultSettleTime, negative means none.
	SettleTime time.Duration
}

// New creates a new DS3231 driver. The I2C bus must already be configured.
//
// This function only creates the Device object, it does not touch the device.
func New(bus drivers.I2C) *Device {
	return &Device{
		conn:  rtc.NewConn(bus, Address),
		delay: time.Sleep,
	}
}

// Configure starts the oscillator, routes the alarms to /INT (INTCN), disables both alarm interrupts and clears the
// alarm flags. OSF is saved in PowerOnFlags and left set until the time is written.
func (d *Device) Configure(cfg Config) error {
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

	err := d.configure(cfg.Enable32kHz)
	if err == nil && settle > 0 {
		d.delay(settle)
	}
	return d.Configured(err)
}

func (d *Device) configure(en32k bool) error {
	var regs [2]byte // Control, Status
	if err := d.conn.ReadBlock(Control, regs[:]); err != nil {
		return err
	}
	d.powerOn = Flags(regs[1] & (statFlags | statBSY))

	regs[0] = ctrlINTCN
	regs[1] &= statOSF
	if en32k {
		regs[1] |= statEN32kHz
	}
	return d.conn.WriteBlock(Control, regs[:])
}

// DateTime reads the current date and time in a single transaction.
func (d *Device) DateTime() (rtc.DateTime, error) {
	if err := d.Check(); err != nil {
		return rtc.DateTime{}, err
	}
	var b rtc.TimeBlock
	if err := d.Observe(d.conn.ReadBlock(Seconds, b[:])); err != nil {
		return rtc.DateTime{}, err
	}
	return layout.Decode(b)
}

// SetDateTime writes dt in a single transaction, then clears OSF. A weekday of rtc.AutoWeekday is computed from the
// date.
func (d *Device) SetDateTime(dt rtc.DateTime) error {
	if err := d.Check(); err != nil {
		return err
	}
	b, err := layout.Encode(dt)
	if err != nil {
		return err
	}
	if err := d.conn.WriteBlock(Seconds, b[:]); err != nil {
		return d.Observe(err)
	}
	return d.clearStatus(statOSF)
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

// Temperature returns the last temperature conversion in milli-degrees Celsius, with a resolution of 250.
func (d *Device) Temperature() (int32, error) {
	if err := d.Check(); err != nil {
		return 0, err
	}
	var data [2]byte
	if err := d.Observe(d.conn.ReadBlock(TempMSB, data[:])); err != nil {
		return 0, err
	}
	return tempMilliC(data), nil
}

func tempMilliC(data [2]byte) int32 {
	return int32(int8(data[0]))*1000 + int32(data[1]>>6)*250
}

// SetAgingOffset writes the aging offset register. Positive values slow the oscillator down.
func (d *Device) SetAgingOffset(v int8) error {
	if err := d.Check(); err != nil {
		return err
	}
	return d.Observe(d.conn.WriteRegister(AgingOffset, uint8(v)))
}

// AgingOffset reads the aging offset register.
func (d *Device) AgingOffset() (int8, error) {
	if err := d.Check(); err != nil {
		return 0, err
	}
	v, err := d.conn.ReadRegister(AgingOffset)
	return int8(v), d.Observe(err)
}
