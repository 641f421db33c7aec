package main

import (
	"fmt"
	"strings"
	"time"

	"tinygo.org/x/drivers"

	"github.com/ajanata/rtcdrivers/ds3231"
	"github.com/ajanata/rtcdrivers/pcf8523"
	"github.com/ajanata/rtcdrivers/rtc"
	"github.com/ajanata/rtcdrivers/rx8900"
)

// chip is the part of a driver rtcctl drives. The adapters below map the
// generic alarm and timer requests onto what each chip can do.
//
// ClearAllFlags clears the event flags only. The flag telling that the time
// is not valid goes away when the time is set.
type chip interface {
	rtc.Clock
	Name() string
	Configure() error
	FlagReport() (now, powerOn string, err error)
	ClearAllFlags() error
	Temperature() (int32, error)
	Arm(alarmSpec) error
	Armed() (string, error)
	Disarm() error
	StartTimer(time.Duration) error
	StopTimer() error
}

var chipNames = []string{"rx8900", "pcf8523", "ds3231"}

func defaultAddress(name string) (uint16, error) {
	switch name {
	case "rx8900":
		return rx8900.Address, nil
	case "pcf8523":
		return pcf8523.Address, nil
	case "ds3231":
		return ds3231.Address, nil
	}
	return 0, fmt.Errorf("unknown chip %q (want one of %s)", name, strings.Join(chipNames, ", "))
}

func newChip(name string, bus drivers.I2C, addr uint16) (chip, error) {
	if _, err := defaultAddress(name); err != nil {
		return nil, err
	}
	switch name {
	case "rx8900":
		return &rx8900Chip{Device: rx8900.New(bus), addr: addr}, nil
	case "pcf8523":
		return &pcf8523Chip{Device: pcf8523.New(bus), addr: addr}, nil
	default:
		return &ds3231Chip{Device: ds3231.New(bus), addr: addr}, nil
	}
}

// alarmSpec is an alarm as typed on the command line.
type alarmSpec struct {
	Minute   rtc.AlarmField
	Hour     rtc.AlarmField
	Day      rtc.AlarmField
	Weekdays rtc.Weekdays
}

// singleWeekday returns the one day in w, or rtc.Every when w is empty.
func singleWeekday(w rtc.Weekdays, name string) (rtc.AlarmField, error) {
	f := rtc.Every
	for d := time.Sunday; d <= time.Saturday; d++ {
		if !w.Has(d) {
			continue
		}
		if f.Match {
			return f, fmt.Errorf("%s alarms match a single weekday, not %v: %w", name, w, rtc.ErrUnsupported)
		}
		f = rtc.At(int(d))
	}
	return f, nil
}

// fitTimer finds the finest source clock that counts d exactly in at most
// max periods.
func fitTimer(d time.Duration, periods []time.Duration, max int) (source int, count int, err error) {
	if d <= 0 {
		return 0, 0, fmt.Errorf("timer interval %v: %w", d, rtc.ErrOutOfRange)
	}
	for i, p := range periods {
		if d%p != 0 {
			continue
		}
		if n := int(d / p); n >= 1 && n <= max {
			return i, n, nil
		}
	}
	return 0, 0, fmt.Errorf("timer interval %v cannot be counted: %w", d, rtc.ErrOutOfRange)
}

type rx8900Chip struct {
	*rx8900.Device
	addr uint16
}

func (c *rx8900Chip) Name() string { return "rx8900" }

func (c *rx8900Chip) Configure() error {
	return c.Device.Configure(rx8900.Config{Address: c.addr})
}

func (c *rx8900Chip) FlagReport() (string, string, error) {
	f, err := c.Flags()
	return f.String(), c.PowerOnFlags().String(), err
}

func (c *rx8900Chip) ClearAllFlags() error {
	return c.ClearFlags(rx8900.FlagVoltageDetect | rx8900.FlagAlarm | rx8900.FlagTimer | rx8900.FlagUpdate)
}

func (c *rx8900Chip) Arm(s alarmSpec) error {
	a := rx8900.Alarm{Minute: s.Minute, Hour: s.Hour, Weekdays: s.Weekdays, Interrupt: true}
	if s.Day.Match {
		a.Kind, a.Day = rx8900.DayAlarm, s.Day
	}
	return c.SetAlarm(a)
}

func (c *rx8900Chip) Armed() (string, error) {
	a, err := c.Alarm()
	if err != nil {
		return "", err
	}
	days := "every day"
	switch {
	case a.Kind == rx8900.DayAlarm && a.Day.Match:
		days = "day " + a.Day.String()
	case a.Kind == rx8900.WeekAlarm && a.Weekdays&rtc.AllWeekdays != 0:
		days = a.Weekdays.String()
	}
	return fmt.Sprintf("%s:%s %s interrupt=%t", a.Hour, a.Minute, days, a.Interrupt), nil
}

func (c *rx8900Chip) Disarm() error { return c.DisableAlarm() }

var rx8900Sources = []rx8900.SourceClock{
	rx8900.Source4096Hz, rx8900.Source64Hz, rx8900.SourceSecond, rx8900.SourceMinute,
}

func (c *rx8900Chip) StartTimer(d time.Duration) error {
	periods := make([]time.Duration, len(rx8900Sources))
	for i, s := range rx8900Sources {
		periods[i] = s.Period()
	}
	i, n, err := fitTimer(d, periods, rx8900.MaxTimerCount)
	if err != nil {
		return err
	}
	return c.SetTimer(rx8900.Timer{Source: rx8900Sources[i], Count: uint16(n), Interrupt: true})
}

type pcf8523Chip struct {
	*pcf8523.Device
	addr uint16
}

func (c *pcf8523Chip) Name() string { return "pcf8523" }

func (c *pcf8523Chip) Configure() error {
	return c.Device.Configure(pcf8523.Config{Address: c.addr})
}

func (c *pcf8523Chip) FlagReport() (string, string, error) {
	f, err := c.Flags()
	return f.String(), c.PowerOnFlags().String(), err
}

func (c *pcf8523Chip) ClearAllFlags() error {
	return c.ClearFlags(pcf8523.FlagTimerB | pcf8523.FlagAlarm | pcf8523.FlagSecond | pcf8523.FlagBatterySwitched)
}

func (c *pcf8523Chip) Temperature() (int32, error) {
	return 0, fmt.Errorf("pcf8523 temperature: %w", rtc.ErrUnsupported)
}

func (c *pcf8523Chip) Arm(s alarmSpec) error {
	wd, err := singleWeekday(s.Weekdays, c.Name())
	if err != nil {
		return err
	}
	return c.SetAlarm(pcf8523.Alarm{Minute: s.Minute, Hour: s.Hour, Day: s.Day, Weekday: wd, Interrupt: true})
}

func (c *pcf8523Chip) Armed() (string, error) {
	a, err := c.Alarm()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%s day=%s weekday=%s interrupt=%t", a.Hour, a.Minute, a.Day, a.Weekday, a.Interrupt), nil
}

func (c *pcf8523Chip) Disarm() error { return c.DisableAlarm() }

var pcf8523Sources = []pcf8523.SourceClock{
	pcf8523.Source4096Hz, pcf8523.Source64Hz, pcf8523.SourceSecond, pcf8523.SourceMinute, pcf8523.SourceHour,
}

func (c *pcf8523Chip) StartTimer(d time.Duration) error {
	periods := make([]time.Duration, len(pcf8523Sources))
	for i, s := range pcf8523Sources {
		periods[i] = s.Period()
	}
	i, n, err := fitTimer(d, periods, 0xFF)
	if err != nil {
		return err
	}
	return c.SetTimer(pcf8523.Timer{Source: pcf8523Sources[i], Count: uint8(n), Interrupt: true})
}

// ds3231Chip drives alarm 2, which has minute resolution like the other chips.
type ds3231Chip struct {
	*ds3231.Device
	addr uint16
}

func (c *ds3231Chip) Name() string { return "ds3231" }

func (c *ds3231Chip) Configure() error {
	return c.Device.Configure(ds3231.Config{Address: c.addr})
}

func (c *ds3231Chip) FlagReport() (string, string, error) {
	f, err := c.Flags()
	return f.String(), c.PowerOnFlags().String(), err
}

func (c *ds3231Chip) ClearAllFlags() error {
	return c.ClearFlags(ds3231.FlagAlarm1 | ds3231.FlagAlarm2)
}

func (c *ds3231Chip) Arm(s alarmSpec) error {
	a := ds3231.Alarm{Minute: s.Minute, Hour: s.Hour, Day: s.Day, Interrupt: true}
	if !s.Day.Match && s.Weekdays&rtc.AllWeekdays != 0 {
		wd, err := singleWeekday(s.Weekdays, c.Name())
		if err != nil {
			return err
		}
		a.Day, a.DayOfWeek = wd, true
	}
	return c.SetAlarm(ds3231.AlarmTwo, a)
}

func (c *ds3231Chip) Armed() (string, error) {
	a, err := c.Alarm(ds3231.AlarmTwo)
	if err != nil {
		return "", err
	}
	day := "day=" + a.Day.String()
	if a.DayOfWeek {
		day = "weekday=" + a.Day.String()
	}
	return fmt.Sprintf("%s:%s %s interrupt=%t", a.Hour, a.Minute, day, a.Interrupt), nil
}

func (c *ds3231Chip) Disarm() error { return c.DisableAlarm(ds3231.AlarmTwo) }

func (c *ds3231Chip) StartTimer(time.Duration) error {
	return fmt.Errorf("ds3231 timer: %w", rtc.ErrUnsupported)
}

func (c *ds3231Chip) StopTimer() error {
	return fmt.Errorf("ds3231 timer: %w", rtc.ErrUnsupported)
}
