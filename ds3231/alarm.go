package ds3231

import (
	"fmt"

	"github.com/ajanata/rtcdrivers/rtc"
)

// AlarmID selects one of the two alarms.
type AlarmID uint8

const (
	// AlarmOne matches down to the second.
	AlarmOne AlarmID = 1
	// AlarmTwo matches down to the minute and fires at second 00.
	AlarmTwo AlarmID = 2
)

func (id AlarmID) String() string {
	return fmt.Sprintf("alarm %d", uint8(id))
}

// Alarm is an alarm configuration. The chip only supports matching a field when every shorter field matches too, so
// valid alarms fire once per second (alarm 1) or minute, or when the seconds, minutes, hours or the day match.
type Alarm struct {
	Second rtc.AlarmField // alarm 1 only
	Minute rtc.AlarmField
	Hour   rtc.AlarmField
	// Day is the date (1-31), or the day of the week (0 for Sunday to 6) when DayOfWeek is set.
	Day       rtc.AlarmField
	DayOfWeek bool

	// Interrupt drives /INT low when the alarm fires.
	Interrupt bool
}

type alarmRegs struct {
	start  uint8
	n      int
	enable uint8
	flag   uint8
}

func (id AlarmID) regs() (alarmRegs, error) {
	switch id {
	case AlarmOne:
		return alarmRegs{Alarm1, 4, ctrlA1IE, statA1F}, nil
	case AlarmTwo:
		return alarmRegs{Alarm2, 3, ctrlA2IE, statA2F}, nil
	}
	return alarmRegs{}, &rtc.FieldError{Field: "alarm", Value: int(id), Err: rtc.ErrOutOfRange}
}

func (a Alarm) encode(id AlarmID) ([]byte, error) {
	fields := []rtc.AlarmField{a.Second, a.Minute, a.Hour, a.Day}
	if id == AlarmTwo {
		if a.Second.Match {
			return nil, fmt.Errorf("%w: %v cannot match seconds", rtc.ErrUnsupported, id)
		}
		fields = fields[1:]
	}
	for i := 1; i < len(fields); i++ {
		if fields[i].Match && !fields[i-1].Match {
			return nil, fmt.Errorf("%w: %v needs every shorter field to match", rtc.ErrUnsupported, id)
		}
	}

	var b [4]byte
	var err error
	if b[0], err = rtc.EncodeAlarmField("alarm second", a.Second, 0, 59); err != nil {
		return nil, err
	}
	if b[1], err = rtc.EncodeAlarmField("alarm minute", a.Minute, 0, 59); err != nil {
		return nil, err
	}
	if b[2], err = rtc.EncodeAlarmField("alarm hour", a.Hour, 0, 23); err != nil {
		return nil, err
	}
	if a.DayOfWeek {
		day := a.Day
		if day.Match {
			if day.Value < 0 || day.Value > 6 {
				return nil, &rtc.FieldError{Field: "alarm weekday", Value: day.Value, Err: rtc.ErrOutOfRange}
			}
			day.Value++
		}
		if b[3], err = rtc.EncodeAlarmField("alarm weekday", day, 1, 7); err != nil {
			return nil, err
		}
		b[3] |= alarmDY
	} else if b[3], err = rtc.EncodeAlarmField("alarm date", a.Day, 1, 31); err != nil {
		return nil, err
	}

	if id == AlarmTwo {
		return b[1:], nil
	}
	return b[:], nil
}

func decodeAlarm(id AlarmID, regs []byte) (Alarm, error) {
	if id == AlarmTwo {
		regs = append([]byte{alarmMask}, regs...)
	}
	var a Alarm
	var err error
	if a.Second, err = rtc.DecodeAlarmField("alarm second", regs[0], 0x7F, 0, 59); err != nil {
		return Alarm{}, err
	}
	if a.Minute, err = rtc.DecodeAlarmField("alarm minute", regs[1], 0x7F, 0, 59); err != nil {
		return Alarm{}, err
	}
	if a.Hour, err = decodeAlarmHour(regs[2]); err != nil {
		return Alarm{}, err
	}
	a.DayOfWeek = regs[3]&alarmDY != 0
	if !a.DayOfWeek {
		a.Day, err = rtc.DecodeAlarmField("alarm date", regs[3], 0x3F, 1, 31)
		return a, err
	}
	if a.Day, err = rtc.DecodeAlarmField("alarm weekday", regs[3], 0x0F, 1, 7); err != nil {
		return Alarm{}, err
	}
	if a.Day.Match {
		a.Day.Value--
	}
	return a, nil
}

func decodeAlarmHour(b uint8) (rtc.AlarmField, error) {
	if layout.HourMode(b) == rtc.TwentyFourHour {
		return rtc.DecodeAlarmField("alarm hour", b, 0x3F, 0, 23)
	}
	f, err := rtc.DecodeAlarmField("alarm hour", b, 0x1F, 1, 12)
	if err != nil || !f.Match {
		return f, err
	}
	f.Value %= 12
	if b&layout.PMBit != 0 {
		f.Value += 12
	}
	return f, nil
}

// SetAlarm disables the alarm interrupt, writes the alarm registers in one transaction, clears the alarm flag and
// enables the interrupt again if requested.
func (d *Device) SetAlarm(id AlarmID, a Alarm) error {
	if err := d.Check(); err != nil {
		return err
	}
	r, err := id.regs()
	if err != nil {
		return err
	}
	b, err := a.encode(id)
	if err != nil {
		return err
	}

	ctrl, err := d.conn.ReadRegister(Control)
	if err != nil {
		return d.Observe(err)
	}
	ctrl &^= r.enable
	if err := d.conn.WriteRegister(Control, ctrl); err != nil {
		return d.Observe(err)
	}
	if err := d.conn.WriteBlock(r.start, b); err != nil {
		return d.Observe(err)
	}
	if err := d.clearStatus(r.flag); err != nil {
		return err
	}
	if a.Interrupt {
		return d.Observe(d.conn.WriteRegister(Control, ctrl|ctrlINTCN|r.enable))
	}
	return nil
}

// Alarm reads an alarm and its interrupt enable in a single transaction.
func (d *Device) Alarm(id AlarmID) (Alarm, error) {
	if err := d.Check(); err != nil {
		return Alarm{}, err
	}
	r, err := id.regs()
	if err != nil {
		return Alarm{}, err
	}
	var regs [Control - Alarm1 + 1]byte
	if err := d.Observe(d.conn.ReadBlock(Alarm1, regs[:])); err != nil {
		return Alarm{}, err
	}
	a, err := decodeAlarm(id, regs[r.start-Alarm1:int(r.start-Alarm1)+r.n])
	if err != nil {
		return Alarm{}, err
	}
	a.Interrupt = regs[Control-Alarm1]&r.enable != 0
	return a, nil
}

// DisableAlarm clears the alarm's interrupt enable and flag.
func (d *Device) DisableAlarm(id AlarmID) error {
	if err := d.Check(); err != nil {
		return err
	}
	r, err := id.regs()
	if err != nil {
		return err
	}
	if err := d.Observe(d.conn.UpdateRegister(Control, r.enable, 0)); err != nil {
		return err
	}
	return d.clearStatus(r.flag)
}
