package rx8900

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/ajanata/rtcdrivers/internal/i2ctest"
	"github.com/ajanata/rtcdrivers/rtc"
)

// newBus returns a fake RX8900 whose flag register only accepts zeros.
func newBus() *i2ctest.Bus {
	bus := i2ctest.NewBus(Address)
	bus.WriteHook = func(reg, cur, val uint8) uint8 {
		if reg == Flag {
			return cur & val
		}
		return val
	}
	return bus
}

func noDelay(time.Duration) {}

// flagWrites returns the values written to the flag register, in order.
func flagWrites(bus *i2ctest.Bus) []byte {
	var w []byte
	for _, tx := range bus.Txs() {
		if len(tx.W) == 2 && tx.W[0] == Flag {
			w = append(w, tx.W[1])
		}
	}
	return w
}

// newDevice returns a configured device with an empty transaction log.
func newDevice(c *qt.C) (*Device, *i2ctest.Bus) {
	bus := newBus()
	d := New(bus)
	c.Assert(d.Configure(Config{Delay: noDelay}), qt.IsNil)
	c.Assert(d.State(), qt.Equals, rtc.Ready)
	bus.ResetLog()
	return d, bus
}

func TestConfigure(t *testing.T) {
	c := qt.New(t)
	bus := newBus()
	bus.Regs[Extension] = extTEST | extWADA | extTE | 0b10
	bus.Regs[Flag] = uint8(FlagVoltageLow | FlagAlarm)
	bus.Regs[Control] = ctrlUIE | ctrlTIE | ctrlAIE

	var delays []time.Duration
	d := New(bus)
	c.Assert(d.State(), qt.Equals, rtc.Uninitialized)
	err := d.Configure(Config{
		Fout:         Fout1Hz,
		Compensation: Compensation10s,
		Delay:        func(t time.Duration) { delays = append(delays, t) },
	})
	c.Assert(err, qt.IsNil)
	c.Assert(d.State(), qt.Equals, rtc.Ready)
	c.Assert(d.PowerOnFlags(), qt.Equals, FlagVoltageLow|FlagAlarm)
	c.Assert(delays, qt.DeepEquals, []time.Duration{DefaultSettleTime})

	c.Assert(bus.Regs[Extension], qt.Equals, uint8(extWADA|0b10<<fselShift|0b10))
	c.Assert(bus.Regs[Flag], qt.Equals, uint8(0))
	c.Assert(bus.Regs[Control], qt.Equals, uint8(0b10<<cselShift))
	c.Assert(bus.Regs[BackupFunction], qt.Equals, uint8(bkSWOFF|0b10))

	txs := bus.Txs()
	c.Assert(txs, qt.HasLen, 4)
	c.Assert(txs[0].W, qt.DeepEquals, []byte{Extension})
	c.Assert(txs[0].R, qt.Equals, 3)
	c.Assert(txs[1].W, qt.DeepEquals, []byte{Extension, 0x4A, 0x00, 0x80})
}

func TestConfigureOptions(t *testing.T) {
	c := qt.New(t)
	bus := i2ctest.NewBus(0x33)
	d := New(bus)
	err := d.Configure(Config{
		Address:                0x33,
		DisableVoltageDetector: true,
		BackupSwitchOn:         true,
		BackupSampling:         Sampling2ms,
		SettleTime:             -1,
		Delay:                  func(time.Duration) { c.Error("unexpected delay") },
	})
	c.Assert(err, qt.IsNil)
	c.Assert(bus.Regs[BackupFunction], qt.Equals, uint8(bkVDETOFF))

	b, err := d.Backup()
	c.Assert(err, qt.IsNil)
	c.Assert(b, qt.Equals, Backup{VoltageDetectorOff: true, Sampling: Sampling2ms})
}

func TestConfigureRejectsBadSettings(t *testing.T) {
	c := qt.New(t)
	bus := newBus()
	d := New(bus)

	err := d.Configure(Config{Fout: FoutFrequency(7)})
	c.Assert(err, qt.ErrorIs, rtc.ErrOutOfRange)
	err = d.Configure(Config{Compensation: CompensationInterval(9)})
	c.Assert(err, qt.ErrorIs, rtc.ErrOutOfRange)
	err = d.Configure(Config{BackupSampling: BackupSampling(4)})
	c.Assert(err, qt.ErrorIs, rtc.ErrOutOfRange)

	c.Assert(bus.Count(), qt.Equals, 0)
	c.Assert(d.State(), qt.Equals, rtc.Uninitialized)
}

func TestNotConfigured(t *testing.T) {
	c := qt.New(t)
	bus := newBus()
	d := New(bus)

	_, err := d.DateTime()
	c.Assert(err, qt.ErrorIs, rtc.ErrNotInitialized)
	c.Assert(d.SetDateTime(rtc.DateTime{Year: 2024, Month: 1, Day: 1}), qt.ErrorIs, rtc.ErrNotInitialized)
	c.Assert(d.ClearFlags(FlagAlarm), qt.ErrorIs, rtc.ErrNotInitialized)
	c.Assert(bus.Count(), qt.Equals, 0)
}

func TestConfigureFailure(t *testing.T) {
	c := qt.New(t)
	bus := newBus()
	bus.FailWrites(nil)
	d := New(bus)

	err := d.Configure(Config{Delay: noDelay})
	c.Assert(err, qt.ErrorIs, rtc.ErrBus)
	c.Assert(err, qt.ErrorIs, i2ctest.ErrInjected)
	c.Assert(d.State(), qt.Equals, rtc.Uninitialized)
	c.Assert(d.Fault(), qt.Equals, err)

	// later calls report the failure without touching the bus
	n := bus.Count()
	_, err = d.DateTime()
	c.Assert(err, qt.ErrorIs, rtc.ErrBus)
	c.Assert(bus.Count(), qt.Equals, n)

	bus.Heal()
	c.Assert(d.Configure(Config{Delay: noDelay}), qt.IsNil)
	c.Assert(d.State(), qt.Equals, rtc.Ready)
	c.Assert(d.Fault(), qt.IsNil)
}

func TestDateTimeSingleTransaction(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice(c)
	copy(bus.Regs[Seconds:], []byte{0x56, 0x34, 0x12, 1 << 6, 0x03, 0x02, 0x01})

	dt, err := d.DateTime()
	c.Assert(err, qt.IsNil)
	c.Assert(dt, qt.Equals, rtc.DateTime{
		Year: 2001, Month: time.February, Day: 3, Weekday: time.Saturday,
		Hour: 12, Minute: 34, Second: 56,
	})

	txs := bus.Txs()
	c.Assert(txs, qt.HasLen, 1)
	c.Assert(txs[0].W, qt.DeepEquals, []byte{Seconds})
	c.Assert(txs[0].R, qt.Equals, rtc.TimeBlockSize)

	now, err := d.Now()
	c.Assert(err, qt.IsNil)
	c.Assert(now, qt.Equals, time.Date(2001, time.February, 3, 12, 34, 56, 0, time.UTC))
}

func TestDateTimeInvalidRegisters(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice(c)
	copy(bus.Regs[Seconds:], []byte{0x5A, 0x00, 0x00, 1, 0x01, 0x01, 0x00})

	_, err := d.DateTime()
	c.Assert(err, qt.ErrorIs, rtc.ErrInvalidBCD)

	copy(bus.Regs[Seconds:], []byte{0x00, 0x00, 0x00, 1, 0x31, 0x02, 0x00})
	_, err = d.DateTime()
	c.Assert(err, qt.ErrorIs, rtc.ErrInvalidCalendar)

	// decode errors are not bus errors
	c.Assert(d.State(), qt.Equals, rtc.Ready)
}

func TestSetDateTime(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice(c)
	ctrl := bus.Regs[Control]

	err := d.SetDateTime(rtc.DateTime{
		Year: 2024, Month: time.February, Day: 29, Weekday: rtc.AutoWeekday,
		Hour: 23, Minute: 59, Second: 58,
	})
	c.Assert(err, qt.IsNil)
	c.Assert(bus.Regs[Seconds:Seconds+7], qt.DeepEquals, []byte{0x58, 0x59, 0x23, 1 << 4, 0x29, 0x02, 0x24})
	c.Assert(bus.Regs[Control], qt.Equals, ctrl)

	txs := bus.Txs()
	c.Assert(txs, qt.HasLen, 4)
	c.Assert(txs[0].W, qt.DeepEquals, []byte{Control})
	c.Assert(txs[1].W, qt.DeepEquals, []byte{Control, ctrl | ctrlRESET})
	c.Assert(txs[2].W, qt.DeepEquals, []byte{Seconds, 0x58, 0x59, 0x23, 1 << 4, 0x29, 0x02, 0x24})
	c.Assert(txs[3].W, qt.DeepEquals, []byte{Control, ctrl})
}

func TestSetRoundTrip(t *testing.T) {
	c := qt.New(t)
	d, _ := newDevice(c)
	want := time.Date(2099, time.December, 31, 23, 59, 59, 0, time.UTC)

	c.Assert(d.Set(want), qt.IsNil)
	got, err := d.Now()
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, want)

	dt, err := d.DateTime()
	c.Assert(err, qt.IsNil)
	c.Assert(dt.Weekday, qt.Equals, want.Weekday())
}

func TestSetDateTimeRejectsInvalid(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice(c)

	tests := []rtc.DateTime{
		{Year: 2023, Month: time.February, Day: 29},
		{Year: 2100, Month: time.January, Day: 1},
		{Year: 1999, Month: time.December, Day: 31},
		{Year: 2024, Month: time.January, Day: 1, Hour: 24},
		{Year: 2024, Month: time.January, Day: 1, Weekday: 7},
	}
	for _, dt := range tests {
		c.Check(d.SetDateTime(dt), qt.ErrorIs, rtc.ErrOutOfRange, qt.Commentf("%v", dt))
	}
	c.Assert(bus.Count(), qt.Equals, 0)
	c.Assert(d.State(), qt.Equals, rtc.Ready)
}

func TestFaulted(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice(c)
	bus.Regs[Flag] = uint8(FlagVoltageLow)

	bus.FailNext(nil)
	_, err := d.DateTime()
	c.Assert(err, qt.ErrorIs, rtc.ErrBus)
	c.Assert(d.State(), qt.Equals, rtc.Faulted)

	bus.Heal()
	n := bus.Count()
	_, err = d.DateTime()
	c.Assert(err, qt.ErrorIs, rtc.ErrFaulted)
	c.Assert(err, qt.ErrorIs, rtc.ErrBus)
	c.Assert(d.SetDateTime(rtc.DateTime{Year: 2024, Month: 1, Day: 1}), qt.ErrorIs, rtc.ErrFaulted)
	_, err = d.Temperature()
	c.Assert(err, qt.ErrorIs, rtc.ErrFaulted)
	c.Assert(bus.Count(), qt.Equals, n)

	// the flags stay readable for diagnosis
	stopped, err := d.OscillatorStopped()
	c.Assert(err, qt.IsNil)
	c.Assert(stopped, qt.IsTrue)
	c.Assert(d.State(), qt.Equals, rtc.Faulted)

	c.Assert(d.Configure(Config{Delay: noDelay}), qt.IsNil)
	c.Assert(d.State(), qt.Equals, rtc.Ready)
	c.Assert(d.PowerOnFlags(), qt.Equals, FlagVoltageLow)
}

func TestFlags(t *testing.T) {
	c := qt.New(t)
	bus := newBus()
	bus.Regs[Flag] = 0xFF
	d := New(bus)

	// readable before Configure
	f, err := d.Flags()
	c.Assert(err, qt.IsNil)
	c.Assert(f, qt.Equals, flagMask)
	c.Assert(f.String(), qt.Equals, "UF|TF|AF|VLF|VDET")
	c.Assert(f.OscillatorStopped(), qt.IsTrue)
	c.Assert(f.VoltageLow(), qt.IsTrue)
	c.Assert(Flags(0).String(), qt.Equals, "none")

	bus.Regs[Flag] = uint8(FlagVoltageDetect)
	stopped, err := d.OscillatorStopped()
	c.Assert(err, qt.IsNil)
	c.Assert(stopped, qt.IsFalse)
	low, err := d.VoltageLow()
	c.Assert(err, qt.IsNil)
	c.Assert(low, qt.IsTrue)
}

func TestFlagsBusError(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice(c)
	bus.FailNext(nil)

	_, err := d.OscillatorStopped()
	c.Assert(err, qt.ErrorIs, rtc.ErrBus)
	c.Assert(d.State(), qt.Equals, rtc.Faulted)
}

func TestClearFlags(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice(c)
	bus.Regs[Flag] = uint8(flagMask)

	c.Assert(d.ClearFlags(FlagAlarm|FlagTimer), qt.IsNil)
	f, err := d.Flags()
	c.Assert(err, qt.IsNil)
	c.Assert(f, qt.Equals, FlagUpdate|FlagVoltageLow|FlagVoltageDetect)

	// bits 2, 6 and 7 are reserved and always written as 0
	c.Assert(flagWrites(bus), qt.DeepEquals, []byte{0x23})

	bus.ResetLog()
	c.Assert(d.ClearFlags(Flags(0xFF)), qt.IsNil)
	c.Assert(flagWrites(bus), qt.DeepEquals, []byte{0x00})
}
