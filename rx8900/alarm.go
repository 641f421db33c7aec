package rx8900

import (
	"github.com/ajanata/rtcdrivers/rtc"
)

// AlarmKind selects what the third alarm register compares against (WADA).
type AlarmKind uint8

const (
	// WeekAlarm matches a set of days of the week.
	WeekAlarm AlarmKind = iota
	// DayAlarm matches a day of the month.
	DayAlarm
)

func (k AlarmKind) String() string {
	if k == DayAlarm {
		return "day"
	}
	return "week"
}

// Alarm is the alarm configuration. Fields left as rtc.Every take no part in the comparison.
type Alarm struct {
	Minute rtc.AlarmField
	Hour   rtc.AlarmField

	Kind AlarmKind
	// Weekdays is used by WeekAlarm. An empty set matches every day.
	Weekdays rtc.Weekdays
	// Day is used by DayAlarm.
	Day rtc.AlarmField

	// Interrupt drives /INT low when the alarm matches (AIE).
	Interrupt bool
}

func (a Alarm) encode() ([3]byte, error) {
	var b [3]byte
	var err error
	if b[0], err = rtc.EncodeAlarmField("alarm minute", a.Minute, 0, 59); err != nil {
		return b, err
	}
	if b[1], err = rtc.EncodeAlarmField("alarm hour", a.Hour, 0, 23); err != nil {
		return b, err
	}
	switch a.Kind {
	case WeekAlarm:
		if a.Weekdays&rtc.AllWeekdays == 0 {
			b[2] = alarmAE
		} else {
			b[2] = uint8(a.Weekdays & rtc.AllWeekdays)
		}
	case DayAlarm:
		if b[2], err = rtc.EncodeAlarmField("alarm day", a.Day, 1, 31); err != nil {
			return b, err
		}
	default:
		return b, &rtc.FieldError{Field: "alarm kind", Value: int(a.Kind), Err: rtc.ErrOutOfRange}
	}
	return b, nil
}

// SetAlarm programs the alarm following the datasheet sequence: AIE is cleared, WADA selected, the three alarm
// registers written in one transaction, AF cleared, then AIE set if requested.
func (d *Device) SetAlarm(a Alarm) error {
	if err := d.Check(); err != nil {
		return err
	}
	regs, err := a.encode()
	if err != nil {
		return err
	}

	var ctl [3]byte // Extension, Flag, Control
	if err := d.conn.ReadBlock(Extension, ctl[:]); err != nil {
		return d.Observe(err)
	}
	ext, ctrl := ctl[0]&^extWADA, ctl[2]&^ctrlAIE
	if a.Kind == DayAlarm {
		ext |= extWADA
	}
	if err := d.conn.WriteRegister(Control, ctrl); err != nil {
		return d.Observe(err)
	}
	if err := d.conn.WriteRegister(Extension, ext); err != nil {
		return d.Observe(err)
	}
	if err := d.conn.WriteBlock(MinuteAlarm, regs[:]); err != nil {
		return d.Observe(err)
	}
	if err := d.conn.WriteRegister(Flag, uint8(flagMask &^ FlagAlarm)); err != nil {
		return d.Observe(err)
	}
	if a.Interrupt {
		return d.Observe(d.conn.WriteRegister(Control, ctrl|ctrlAIE))
	}
	return nil
}

// Alarm reads back the alarm configuration in a single transaction.
func (d *Device) Alarm() (Alarm, error) {
	if err := d.Check(); err != nil {
		return Alarm{}, err
	}
	var regs [Control - MinuteAlarm + 1]byte
	if err := d.Observe(d.conn.ReadBlock(MinuteAlarm, regs[:])); err != nil {
		return Alarm{}, err
	}
	ext, ctrl := regs[Extension-MinuteAlarm], regs[Control-MinuteAlarm]

	var a Alarm
	var err error
	if a.Minute, err = rtc.DecodeAlarmField("alarm minute", regs[0], 0x7F, 0, 59); err != nil {
		return Alarm{}, err
	}
	if a.Hour, err = rtc.DecodeAlarmField("alarm hour", regs[1], 0x3F, 0, 23); err != nil {
		return Alarm{}, err
	}
	if ext&extWADA != 0 {
		a.Kind = DayAlarm
		if a.Day, err = rtc.DecodeAlarmField("alarm day", regs[2], 0x3F, 1, 31); err != nil {
			return Alarm{}, err
		}
	} else if regs[2]&alarmAE == 0 {
		a.Weekdays = rtc.Weekdays(regs[2]) & rtc.AllWeekdays
	}
	a.Interrupt = ctrl&ctrlAIE != 0
	return a, nil
}

// DisableAlarm stops the alarm from driving /INT and clears AF. The alarm registers are left as they are.
func (d *Device) DisableAlarm() error {
	if err := d.update(Control, ctrlAIE, 0); err != nil {
		return err
	}
	return d.Observe(d.conn.WriteRegister(Flag, uint8(flagMask &^ FlagAlarm)))
}
