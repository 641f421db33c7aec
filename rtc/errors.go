package rtc

import (
	"errors"
	"fmt"
)

var (
	// ErrBus is the category of every transport failure (NACK, timeout,
	// arbitration loss). Test with errors.Is.
	ErrBus = errors.New("rtc: bus error")

	// ErrInvalidBCD reports a register nibble that is not a decimal digit.
	ErrInvalidBCD = errors.New("rtc: invalid BCD")

	// ErrOutOfRange reports a caller-supplied value outside its domain.
	ErrOutOfRange = errors.New("rtc: value out of range")

	// ErrInvalidCalendar reports decoded registers that do not form a real
	// date or time of day.
	ErrInvalidCalendar = errors.New("rtc: invalid calendar value")

	// ErrNotInitialized is returned by operations called before Configure.
	ErrNotInitialized = errors.New("rtc: device not configured")

	// ErrFaulted is returned by every gated operation once a bus error has
	// been observed. Only a successful Configure clears it.
	ErrFaulted = fmt.Errorf("%w: device faulted, reconfigure to recover", ErrBus)

	// ErrUnsupported is returned for features the chip does not have.
	ErrUnsupported = errors.New("rtc: unsupported by chip")
)

// BusError wraps a transport failure with the transaction that caused it.
type BusError struct {
	Op  string // "read" or "write"
	Reg uint8  // first register of the transaction
	Len int    // number of register bytes
	Err error  // transport error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("rtc: bus %s of %d byte(s) at 0x%02x: %v", e.Op, e.Len, e.Reg, e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }

// Is makes every BusError match ErrBus.
func (e *BusError) Is(target error) bool { return target == ErrBus }

// FieldError names the field that failed to encode or decode.
type FieldError struct {
	Field string
	Value int
	Err   error // ErrInvalidBCD, ErrOutOfRange or ErrInvalidCalendar
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v: %s = %d", e.Err, e.Field, e.Value)
}

func (e *FieldError) Unwrap() error { return e.Err }

func fieldErr(field string, value int, err error) error {
	return &FieldError{Field: field, Value: value, Err: err}
}
