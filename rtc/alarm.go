package rtc

import (
	"fmt"
	"strings"
	"time"
)

// AlarmDisable is the "don't care" bit of an alarm register on every
// supported chip: when set, the field takes no part in the comparison.
const AlarmDisable = 0x80

// AlarmField is one alarm register. When Match is false the chip ignores the
// field and Value is not encoded.
type AlarmField struct {
	Value int
	Match bool
}

// Every is an AlarmField that matches any value.
var Every = AlarmField{}

// At is an AlarmField that matches v.
func At(v int) AlarmField { return AlarmField{Value: v, Match: true} }

// EncodeAlarmField encodes f as BCD, checking Value against [lo, hi].
func EncodeAlarmField(name string, f AlarmField, lo, hi int) (uint8, error) {
	if !f.Match {
		return AlarmDisable, nil
	}
	if f.Value < lo {
		return 0, fieldErr(name, f.Value, ErrOutOfRange)
	}
	b, err := EncodeBCD(f.Value, hi)
	if err != nil {
		return 0, fieldErr(name, f.Value, err)
	}
	return b, nil
}

// DecodeAlarmField decodes an alarm register whose value bits are mask. A value
// outside [lo, hi] is reported as ErrInvalidCalendar.
func DecodeAlarmField(name string, b, mask uint8, lo, hi int) (AlarmField, error) {
	if b&AlarmDisable != 0 {
		return Every, nil
	}
	v, err := DecodeBCD(b & mask)
	if err != nil {
		return AlarmField{}, fieldErr(name, int(b), err)
	}
	if v < lo || v > hi {
		return AlarmField{}, fieldErr(name, v, ErrInvalidCalendar)
	}
	return At(v), nil
}

func (f AlarmField) String() string {
	if !f.Match {
		return "*"
	}
	return fmt.Sprintf("%02d", f.Value)
}

// Weekdays is a set of days of the week, Sunday being bit 0.
type Weekdays uint8

// AllWeekdays contains every day.
const AllWeekdays Weekdays = 0x7F

// WeekdaysOf builds a set from days.
func WeekdaysOf(days ...time.Weekday) Weekdays {
	var w Weekdays
	for _, d := range days {
		w = w.With(d)
	}
	return w
}

// With returns w plus d.
func (w Weekdays) With(d time.Weekday) Weekdays {
	if d < time.Sunday || d > time.Saturday {
		return w
	}
	return w | 1<<uint(d)
}

// Has reports whether d is in w.
func (w Weekdays) Has(d time.Weekday) bool {
	return d >= time.Sunday && d <= time.Saturday && w&(1<<uint(d)) != 0
}

func (w Weekdays) String() string {
	if w&AllWeekdays == 0 {
		return "none"
	}
	var sb strings.Builder
	for d := time.Sunday; d <= time.Saturday; d++ {
		if !w.Has(d) {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(d.String()[:3])
	}
	return sb.String()
}
