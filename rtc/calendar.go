package rtc

import "time"

// IsLeap reports whether year is a leap year in the proleptic Gregorian
// calendar.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

var monthDays = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DaysIn returns the number of days in the given month, or 0 if month is not
// in January..December.
func DaysIn(year int, month time.Month) int {
	if month < time.January || month > time.December {
		return 0
	}
	if month == time.February && IsLeap(year) {
		return 29
	}
	return monthDays[month]
}

// sakamoto holds the month offsets of Sakamoto's day-of-week method.
var sakamoto = [12]int{0, 3, 2, 5, 0, 3, 5, 1, 4, 6, 2, 4}

// DayOfWeek computes the Gregorian weekday of a date. The date must be valid.
func DayOfWeek(year int, month time.Month, day int) time.Weekday {
	y := year
	if month < time.March {
		y--
	}
	w := (y + y/4 - y/100 + y/400 + sakamoto[month-1] + day) % 7
	return time.Weekday(w)
}
