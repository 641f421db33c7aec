// Package rtc holds what the real-time clock drivers in this module share:
// the BCD codec, register layout descriptions, the translation between
// timekeeping registers and calendar values, single-transaction register
// access over a drivers.I2C bus, and the driver lifecycle.
//
// Chip packages (rx8900, pcf8523, ds3231) describe their register map with a
// Layout and build their public API on Conn and Lifecycle. Nothing in this
// package logs or retries; every failure is returned to the caller.
package rtc

import "time"

// Clock is the surface common to every RTC driver in this module.
type Clock interface {
	DateTime() (DateTime, error)
	SetDateTime(DateTime) error
	Now() (time.Time, error)
	Set(time.Time) error
	OscillatorStopped() (bool, error)
	State() State
}
