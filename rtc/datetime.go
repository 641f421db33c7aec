package rtc

import (
	"fmt"
	"math/bits"
	"time"
)

// AutoWeekday asks Encode to compute the weekday from the date.
const AutoWeekday time.Weekday = -1

// DateTime is a wall-clock timestamp as the chip stores it: no zone, no
// sub-second part, always in 24-hour form.
type DateTime struct {
	Year    int
	Month   time.Month
	Day     int
	Weekday time.Weekday
	Hour    int
	Minute  int
	Second  int
}

// FromTime copies the wall-clock fields of t, in t's own location.
func FromTime(t time.Time) DateTime {
	return DateTime{
		Year:    t.Year(),
		Month:   t.Month(),
		Day:     t.Day(),
		Weekday: t.Weekday(),
		Hour:    t.Hour(),
		Minute:  t.Minute(),
		Second:  t.Second(),
	}
}

// Time returns dt as a time.Time in loc. The weekday is ignored.
func (dt DateTime) Time(loc *time.Location) time.Time {
	return time.Date(dt.Year, dt.Month, dt.Day, dt.Hour, dt.Minute, dt.Second, 0, loc)
}

func (dt DateTime) String() string {
	s := fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d",
		dt.Year, int(dt.Month), dt.Day, dt.Hour, dt.Minute, dt.Second)
	if dt.Weekday >= time.Sunday && dt.Weekday <= time.Saturday {
		s += " " + dt.Weekday.String()[:3]
	}
	return s
}

// Validate checks every field of dt against the calendar and against the
// years the chip can represent. Failures wrap ErrOutOfRange.
func (l *Layout) Validate(dt DateTime) error {
	switch {
	case dt.Year < l.MinYear() || dt.Year > l.MaxYear():
		return fieldErr("year", dt.Year, ErrOutOfRange)
	case dt.Month < time.January || dt.Month > time.December:
		return fieldErr("month", int(dt.Month), ErrOutOfRange)
	case dt.Day < 1 || dt.Day > DaysIn(dt.Year, dt.Month):
		return fieldErr("day", dt.Day, ErrOutOfRange)
	case dt.Weekday != AutoWeekday && (dt.Weekday < time.Sunday || dt.Weekday > time.Saturday):
		return fieldErr("weekday", int(dt.Weekday), ErrOutOfRange)
	case dt.Hour < 0 || dt.Hour > 23:
		return fieldErr("hour", dt.Hour, ErrOutOfRange)
	case dt.Minute < 0 || dt.Minute > 59:
		return fieldErr("minute", dt.Minute, ErrOutOfRange)
	case dt.Second < 0 || dt.Second > 59:
		return fieldErr("second", dt.Second, ErrOutOfRange)
	}
	return nil
}

// Encode builds the register image of dt. Hours are always written in
// 24-hour form and the century bit is set for years past Epoch+99.
func (l *Layout) Encode(dt DateTime) (TimeBlock, error) {
	var b TimeBlock
	if err := l.Validate(dt); err != nil {
		return b, err
	}

	wd := dt.Weekday
	if wd == AutoWeekday {
		wd = DayOfWeek(dt.Year, dt.Month, dt.Day)
	}
	yy := dt.Year - l.Epoch
	century := yy >= 100
	if century {
		yy -= 100
	}

	var e encoder
	b[l.Seconds] = e.bcd("second", dt.Second, 59)
	b[l.Minutes] = e.bcd("minute", dt.Minute, 59)
	b[l.Hours] = e.bcd("hour", dt.Hour, 23)
	b[l.Day] = e.bcd("day", dt.Day, DaysIn(dt.Year, dt.Month))
	b[l.Month] = e.bcd("month", int(dt.Month), 12)
	b[l.Year] = e.bcd("year", yy, 99)
	if e.err != nil {
		return b, e.err
	}
	if century {
		b[l.Month] |= l.CenturyBit
	}
	b[l.Weekday] = l.encodeWeekday(wd)
	return b, nil
}

// Decode converts a register image to a DateTime, taking the hour mode from
// the hours byte.
func (l *Layout) Decode(b TimeBlock) (DateTime, error) {
	return l.DecodeMode(b, l.HourMode(b[l.Hours]))
}

// DecodeMode is Decode for chips that keep the hour mode outside the time
// registers.
func (l *Layout) DecodeMode(b TimeBlock, mode HourMode) (DateTime, error) {
	var (
		dt DateTime
		d  decoder
	)
	dt.Second = d.bcd("second", b[l.Seconds]&l.SecondsMask)
	dt.Minute = d.bcd("minute", b[l.Minutes]&l.MinutesMask)
	if mode == TwelveHour {
		if d.err == nil {
			h, err := l.Hour24(b[l.Hours])
			if err != nil {
				return dt, err
			}
			dt.Hour = h
		}
	} else {
		dt.Hour = d.bcd("hour", b[l.Hours]&l.HoursMask)
	}
	dt.Day = d.bcd("day", b[l.Day]&l.DayMask)
	dt.Month = time.Month(d.bcd("month", b[l.Month]&l.MonthMask))
	dt.Year = l.Epoch + d.bcd("year", b[l.Year])
	if d.err != nil {
		return dt, d.err
	}
	if l.CenturySet(b[l.Month]) {
		dt.Year += 100
	}

	wd, ok := l.decodeWeekday(b[l.Weekday])
	if !ok {
		return dt, fieldErr("weekday", int(b[l.Weekday]), ErrInvalidCalendar)
	}
	dt.Weekday = wd

	switch {
	case dt.Second > 59:
		return dt, fieldErr("second", dt.Second, ErrInvalidCalendar)
	case dt.Minute > 59:
		return dt, fieldErr("minute", dt.Minute, ErrInvalidCalendar)
	case dt.Hour > 23:
		return dt, fieldErr("hour", dt.Hour, ErrInvalidCalendar)
	case dt.Month < time.January || dt.Month > time.December:
		return dt, fieldErr("month", int(dt.Month), ErrInvalidCalendar)
	case dt.Day < 1 || dt.Day > DaysIn(dt.Year, dt.Month):
		return dt, fieldErr("day", dt.Day, ErrInvalidCalendar)
	}
	return dt, nil
}

func (l *Layout) encodeWeekday(wd time.Weekday) uint8 {
	switch l.WeekdayCoding {
	case WeekdayOneBased:
		return uint8(wd) + 1
	case WeekdayOneHot:
		return 1 << uint(wd)
	default:
		return uint8(wd)
	}
}

func (l *Layout) decodeWeekday(b uint8) (time.Weekday, bool) {
	v := b & l.WeekdayMask
	switch l.WeekdayCoding {
	case WeekdayOneBased:
		if v < 1 || v > 7 {
			return 0, false
		}
		return time.Weekday(v - 1), true
	case WeekdayOneHot:
		if v == 0 || v&(v-1) != 0 || v > 1<<6 {
			return 0, false
		}
		return time.Weekday(bits.TrailingZeros8(v)), true
	default:
		if v > 6 {
			return 0, false
		}
		return time.Weekday(v), true
	}
}

// encoder and decoder keep the first error and turn later calls into no-ops.

type encoder struct{ err error }

func (e *encoder) bcd(field string, v, max int) uint8 {
	if e.err != nil {
		return 0
	}
	b, err := EncodeBCD(v, max)
	if err != nil {
		e.err = fieldErr(field, v, err)
	}
	return b
}

type decoder struct{ err error }

func (d *decoder) bcd(field string, b uint8) int {
	if d.err != nil {
		return 0
	}
	v, err := DecodeBCD(b)
	if err != nil {
		d.err = fieldErr(field, int(b), err)
	}
	return v
}
