package rx8900

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/ajanata/rtcdrivers/rtc"
)

func TestWeekAlarm(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice(c)
	bus.Regs[Extension] |= extWADA
	bus.Regs[Flag] = uint8(FlagAlarm | FlagVoltageDetect)

	a := Alarm{
		Minute:    rtc.At(30),
		Hour:      rtc.At(7),
		Kind:      WeekAlarm,
		Weekdays:  rtc.WeekdaysOf(time.Monday, time.Friday),
		Interrupt: true,
	}
	c.Assert(d.SetAlarm(a), qt.IsNil)
	c.Assert(bus.Regs[MinuteAlarm:MinuteAlarm+3], qt.DeepEquals, []byte{0x30, 0x07, 0b0010_0010})
	c.Assert(bus.Regs[Extension]&extWADA, qt.Equals, uint8(0))
	c.Assert(bus.Regs[Flag], qt.Equals, uint8(FlagVoltageDetect))
	c.Assert(bus.Regs[Control]&ctrlAIE, qt.Equals, uint8(ctrlAIE))

	got, err := d.Alarm()
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, a)
	c.Assert(got.Weekdays.String(), qt.Equals, "Mon,Fri")
}

func TestAlarmSequence(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice(c)
	bus.Regs[Control] = ctrlAIE

	c.Assert(d.SetAlarm(Alarm{Minute: rtc.At(5), Interrupt: true}), qt.IsNil)
	txs := bus.Txs()
	c.Assert(txs, qt.HasLen, 6)
	c.Assert(txs[1].W, qt.DeepEquals, []byte{Control, 0})
	c.Assert(txs[3].W, qt.DeepEquals, []byte{MinuteAlarm, 0x05, alarmAE, alarmAE})
	c.Assert(txs[4].W, qt.DeepEquals, []byte{Flag, 0x33})
	c.Assert(txs[5].W, qt.DeepEquals, []byte{Control, ctrlAIE})
}

func TestDayAlarm(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice(c)

	a := Alarm{
		Minute: rtc.At(0),
		Hour:   rtc.Every,
		Kind:   DayAlarm,
		Day:    rtc.At(15),
	}
	c.Assert(d.SetAlarm(a), qt.IsNil)
	c.Assert(bus.Regs[MinuteAlarm:MinuteAlarm+3], qt.DeepEquals, []byte{0x00, alarmAE, 0x15})
	c.Assert(bus.Regs[Extension]&extWADA, qt.Equals, uint8(extWADA))
	c.Assert(bus.Regs[Control]&ctrlAIE, qt.Equals, uint8(0))

	got, err := d.Alarm()
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, a)
	c.Assert(got.Kind.String(), qt.Equals, "day")
}

func TestAlarmEveryDay(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice(c)

	c.Assert(d.SetAlarm(Alarm{Minute: rtc.At(1), Hour: rtc.At(2)}), qt.IsNil)
	c.Assert(bus.Regs[WeekDayAlarm], qt.Equals, uint8(alarmAE))

	got, err := d.Alarm()
	c.Assert(err, qt.IsNil)
	c.Assert(got.Weekdays, qt.Equals, rtc.Weekdays(0))
}

func TestAlarmRejectsInvalid(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice(c)

	tests := []Alarm{
		{Minute: rtc.At(60)},
		{Hour: rtc.At(24)},
		{Kind: DayAlarm, Day: rtc.At(0)},
		{Kind: DayAlarm, Day: rtc.At(32)},
		{Kind: AlarmKind(2)},
	}
	for _, a := range tests {
		c.Check(d.SetAlarm(a), qt.ErrorIs, rtc.ErrOutOfRange, qt.Commentf("%+v", a))
	}
	c.Assert(bus.Count(), qt.Equals, 0)
}

func TestAlarmInvalidRegisters(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice(c)
	bus.Regs[MinuteAlarm] = 0x7A

	_, err := d.Alarm()
	c.Assert(err, qt.ErrorIs, rtc.ErrInvalidBCD)

	bus.Regs[MinuteAlarm] = 0x60
	_, err = d.Alarm()
	c.Assert(err, qt.ErrorIs, rtc.ErrInvalidCalendar)
	c.Assert(d.State(), qt.Equals, rtc.Ready)
}

func TestDisableAlarm(t *testing.T) {
	c := qt.New(t)
	d, bus := newDevice(c)
	c.Assert(d.SetAlarm(Alarm{Minute: rtc.At(5), Interrupt: true}), qt.IsNil)
	bus.Regs[Flag] = uint8(FlagAlarm | FlagUpdate)
	bus.ResetLog()

	c.Assert(d.DisableAlarm(), qt.IsNil)
	c.Assert(bus.Regs[Control]&ctrlAIE, qt.Equals, uint8(0))
	c.Assert(bus.Regs[Flag], qt.Equals, uint8(FlagUpdate))
	c.Assert(bus.Regs[MinuteAlarm], qt.Equals, uint8(0x05))
	c.Assert(flagWrites(bus), qt.DeepEquals, []byte{0x33})
}
