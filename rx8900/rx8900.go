// Package rx8900 implements a driver for the Epson RX8900 temperature-compensated Real-Time Clock (RTC): reading and
// setting the time, the alarm, the fixed-cycle timer, the time-update interrupt, the FOUT clock output, the temperature
// sensor and the battery backup function.
//
// The RX8900 keeps a 24-hour clock for the years 2000 to 2099 with a one-hot day-of-week register. It has no oscillator
// enable; a stopped oscillator or lost data is reported through the VLF flag.
//
// Datasheet: https://support.epson.biz/td/api/doc_check.php?dl=app_RX8900CE&lang=en
package rx8900

import (
	"time"

	"tinygo.org/x/drivers"

	"github.com/ajanata/rtcdrivers/rtc"
)

// DefaultSettleTime is how long Configure waits after writing the control registers.
const DefaultSettleTime = 10 * time.Millisecond

var _ rtc.Clock = (*Device)(nil)

// Device wraps an I2C connection to an RX8900. It owns the bus handle: callers sharing the bus between goroutines must
// serialize access to the whole Device.
type Device struct {
	rtc.Lifecycle

	conn  *rtc.Conn
	delay func(time.Duration)

	powerOn Flags
}

// Config is the configuration applied by Configure. The zero value gives the same settings as a freshly powered chip,
// except that the backup switch is turned off (SWOFF=1).
type Config struct {
	Address uint16

	Fout         FoutFrequency
	Compensation CompensationInterval

	// DisableVoltageDetector sets VDETOFF, stopping the supply voltage detector.
	DisableVoltageDetector bool
	// BackupSwitchOn leaves the internal VDD/VBAT switch enabled (SWOFF=0).
	BackupSwitchOn bool
	BackupSampling BackupSampling

	// Delay blocks for the given duration. Defaults to time.Sleep.
	Delay func(time.Duration)
	// SettleTime is waited after the control registers are written. Zero means DefaultSettleTime, negative means none.
	SettleTime time.Duration
}

// New creates a new RX8900 driver on the given I2C bus. Call Configure before using it.
func New(bus drivers.I2C) *Device {
	return &Device{
		conn:  rtc.NewConn(bus, Address),
		delay: time.Sleep,
	}
}

// Configure initializes the chip: the test bit, the timer and every interrupt enable are cleared, the FOUT frequency,
// compensation interval and backup function are set, and stale flags are cleared after being saved for PowerOnFlags.
//
// A bus failure leaves the device Uninitialized. Configure is also the only way out of the Faulted state.
func (d *Device) Configure(cfg Config) error {
	fsel, ok := foutBits[cfg.Fout]
	if !ok {
		return &rtc.FieldError{Field: "fout", Value: int(cfg.Fout), Err: rtc.ErrOutOfRange}
	}
	csel, ok := cselBits[cfg.Compensation]
	if !ok {
		return &rtc.FieldError{Field: "compensation", Value: int(cfg.Compensation), Err: rtc.ErrOutOfRange}
	}
	bksmp, ok := bksmpBits[cfg.BackupSampling]
	if !ok {
		return &rtc.FieldError{Field: "backup sampling", Value: int(cfg.BackupSampling), Err: rtc.ErrOutOfRange}
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

	bk := bksmp
	if cfg.DisableVoltageDetector {
		bk |= bkVDETOFF
	}
	if !cfg.BackupSwitchOn {
		bk |= bkSWOFF
	}

	err := d.configure(fsel, csel, bk)
	if err == nil && settle > 0 {
		d.delay(settle)
	}
	return d.Configured(err)
}

func (d *Device) configure(fsel, csel, bk uint8) error {
	var regs [3]byte // Extension, Flag, Control
	if err := d.conn.ReadBlock(Extension, regs[:]); err != nil {
		return err
	}
	d.powerOn = Flags(regs[1]) & flagMask

	// keep WADA, USEL and TSEL; TEST=0, TE=0
	regs[0] = regs[0]&(extWADA|extUSEL|extTSEL) | fsel<<fselShift
	regs[1] = 0
	regs[2] = csel << cselShift
	if err := d.conn.WriteBlock(Extension, regs[:]); err != nil {
		return err
	}
	return d.conn.UpdateRegister(BackupFunction, bkMask, bk)
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

// SetDateTime writes dt in a single transaction, holding the sub-second counter in reset while it does. A weekday of
// rtc.AutoWeekday is computed from the date.
func (d *Device) SetDateTime(dt rtc.DateTime) error {
	if err := d.Check(); err != nil {
		return err
	}
	b, err := layout.Encode(dt)
	if err != nil {
		return err
	}

	ctrl, err := d.conn.ReadRegister(Control)
	if err != nil {
		return d.Observe(err)
	}
	if err := d.conn.WriteRegister(Control, ctrl|ctrlRESET); err != nil {
		return d.Observe(err)
	}
	if err := d.conn.WriteBlock(Seconds, b[:]); err != nil {
		return d.Observe(err)
	}
	return d.Observe(d.conn.WriteRegister(Control, ctrl&^ctrlRESET))
}

// Now returns the current time as UTC.
func (d *Device) Now() (time.Time, error) {
	dt, err := d.DateTime()
	if err != nil {
		return time.Time{}, err
	}
	return dt.Time(time.UTC), nil
}

// Set sets the clock to the wall-clock fields of t in t's location.
func (d *Device) Set(t time.Time) error {
	return d.SetDateTime(rtc.FromTime(t))
}
