package pcf8523

import "github.com/ajanata/rtcdrivers/rtc"

// Alarm is the alarm configuration. The alarm fires when every field that is not rtc.Every matches.
type Alarm struct {
	Minute  rtc.AlarmField
	Hour    rtc.AlarmField // 0-23
	Day     rtc.AlarmField // day of the month
	Weekday rtc.AlarmField // 0 (Sunday) to 6

	// Interrupt drives /INT1 low when the alarm fires (AIE).
	Interrupt bool
}

func (a Alarm) encode() ([4]byte, error) {
	var b [4]byte
	var err error
	if b[0], err = rtc.EncodeAlarmField("alarm minute", a.Minute, 0, 59); err != nil {
		return b, err
	}
	if b[1], err = rtc.EncodeAlarmField("alarm hour", a.Hour, 0, 23); err != nil {
		return b, err
	}
	if b[2], err = rtc.EncodeAlarmField("alarm day", a.Day, 1, 31); err != nil {
		return b, err
	}
	if b[3], err = rtc.EncodeAlarmField("alarm weekday", a.Weekday, 0, 6); err != nil {
		return b, err
	}
	return b, nil
}

// SetAlarm disables the alarm interrupt, writes the four alarm registers in one transaction, clears AF and enables the
// interrupt again if requested.
func (d *Device) SetAlarm(a Alarm) error {
	if err := d.Check(); err != nil {
		return err
	}
	regs, err := a.encode()
	if err != nil {
		return err
	}

	var ctl [2]byte // Control_1, Control_2
	if err := d.conn.ReadBlock(Control1, ctl[:]); err != nil {
		return d.Observe(err)
	}
	ctl1 := ctl[0] &^ ctrl1AIE
	if err := d.conn.WriteRegister(Control1, ctl1); err != nil {
		return d.Observe(err)
	}
	if err := d.conn.WriteBlock(MinuteAlarm, regs[:]); err != nil {
		return d.Observe(err)
	}
	ctl2 := ctl[1]&ctrl2Enables | ctrl2Flags&^ctrl2AF
	if err := d.conn.WriteRegister(Control2, ctl2); err != nil {
		return d.Observe(err)
	}
	if a.Interrupt {
		return d.Observe(d.conn.WriteRegister(Control1, ctl1|ctrl1AIE))
	}
	return nil
}

// Alarm reads the alarm configuration in a single transaction. Alarm hours are returned in 24-hour form even when
// the chip is in 12-hour mode.
func (d *Device) Alarm() (Alarm, error) {
	if err := d.Check(); err != nil {
		return Alarm{}, err
	}
	var regs [WeekdayAlarm + 1]byte
	if err := d.Observe(d.conn.ReadBlock(Control1, regs[:])); err != nil {
		return Alarm{}, err
	}

	var a Alarm
	var err error
	if a.Minute, err = rtc.DecodeAlarmField("alarm minute", regs[MinuteAlarm], 0x7F, 0, 59); err != nil {
		return Alarm{}, err
	}
	if a.Hour, err = decodeAlarmHour(regs[HourAlarm], hourMode(regs[Control1])); err != nil {
		return Alarm{}, err
	}
	if a.Day, err = rtc.DecodeAlarmField("alarm day", regs[DayAlarm], 0x3F, 1, 31); err != nil {
		return Alarm{}, err
	}
	if a.Weekday, err = rtc.DecodeAlarmField("alarm weekday", regs[WeekdayAlarm], 0x07, 0, 6); err != nil {
		return Alarm{}, err
	}
	a.Interrupt = regs[Control1]&ctrl1AIE != 0
	return a, nil
}

func decodeAlarmHour(b uint8, mode rtc.HourMode) (rtc.AlarmField, error) {
	if mode == rtc.TwentyFourHour {
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

// DisableAlarm clears AIE and AF. The alarm registers are left as they are.
func (d *Device) DisableAlarm() error {
	if err := d.Check(); err != nil {
		return err
	}
	var ctl [2]byte
	if err := d.conn.ReadBlock(Control1, ctl[:]); err != nil {
		return d.Observe(err)
	}
	ctl[0] &^= ctrl1AIE
	ctl[1] = ctl[1]&ctrl2Enables | ctrl2Flags&^ctrl2AF
	return d.Observe(d.conn.WriteBlock(Control1, ctl[:]))
}
