package pcf8523

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/ajanata/rtcdrivers/rtc"
)

func TestAlarm(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice(c)
	bus.Regs[Control2] = ctrl2AF | ctrl2SF

	a := Alarm{
		Minute:    rtc.At(30),
		Hour:      rtc.At(6),
		Weekday:   rtc.At(int(time.Friday)),
		Interrupt: true,
	}
	c.Assert(d.SetAlarm(a), qt.IsNil)
	c.Assert(bus.Regs[MinuteAlarm:WeekdayAlarm+1], qt.DeepEquals, []byte{0x30, 0x06, alarmAEN, 0x05})
	c.Assert(bus.Regs[Control1]&ctrl1AIE, qt.Equals, uint8(ctrl1AIE))
	c.Assert(bus.Regs[Control2], qt.Equals, uint8(ctrl2SF))

	got, err := d.Alarm()
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, a)

	c.Assert(d.DisableAlarm(), qt.IsNil)
	got, err = d.Alarm()
	c.Assert(err, qt.IsNil)
	c.Assert(got.Interrupt, qt.IsFalse)
	c.Assert(got.Minute, qt.Equals, rtc.At(30))
}

func TestAlarmTwelveHour(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice(c)
	bus.Regs[Control1] = ctrl1Hour12
	copy(bus.Regs[MinuteAlarm:], []byte{0x00, 0x20 | 0x07, alarmAEN, alarmAEN})

	got, err := d.Alarm()
	c.Assert(err, qt.IsNil)
	c.Assert(got.Hour, qt.Equals, rtc.At(19))

	bus.Regs[HourAlarm] = 0x12
	got, err = d.Alarm()
	c.Assert(err, qt.IsNil)
	c.Assert(got.Hour, qt.Equals, rtc.At(0))

	bus.Regs[HourAlarm] = alarmAEN
	got, err = d.Alarm()
	c.Assert(err, qt.IsNil)
	c.Assert(got.Hour, qt.Equals, rtc.Every)
}

func TestAlarmRejectsInvalid(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice(c)

	for _, a := range []Alarm{
		{Minute: rtc.At(-1)},
		{Hour: rtc.At(24)},
		{Day: rtc.At(0)},
		{Weekday: rtc.At(7)},
	} {
		c.Check(d.SetAlarm(a), qt.ErrorIs, rtc.ErrOutOfRange, qt.Commentf("%+v", a))
	}
	c.Assert(bus.Count(), qt.Equals, 0)
}
