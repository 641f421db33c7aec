package rtc

import "errors"

// State is the lifecycle of a chip driver.
type State uint8

const (
	// Uninitialized: Configure has not succeeded yet.
	Uninitialized State = iota
	// Ready: configured, all operations allowed.
	Ready
	// Faulted: a bus error was observed. Terminal until Configure succeeds.
	Faulted
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Faulted:
		return "faulted"
	}
	return "unknown"
}

// Lifecycle tracks a driver's State. Drivers embed it and route every bus
// result through Observe.
type Lifecycle struct {
	state State
	// bus error that caused the fault or the failed configure
	fault error
}

// State returns the current state.
func (l *Lifecycle) State() State { return l.state }

// Fault returns the bus error that left the driver Faulted, or that made the
// last Configure fail.
func (l *Lifecycle) Fault() error { return l.fault }

// Check gates operations that require a Ready driver.
func (l *Lifecycle) Check() error {
	switch l.state {
	case Ready:
		return nil
	case Faulted:
		return ErrFaulted
	}
	if l.fault != nil {
		return l.fault
	}
	return ErrNotInitialized
}

// Configured records the outcome of Configure. Success moves to Ready from
// any state; failure leaves the driver Uninitialized.
func (l *Lifecycle) Configured(err error) error {
	if err != nil {
		l.state = Uninitialized
		l.fault = err
		return err
	}
	l.state = Ready
	l.fault = nil
	return nil
}

// Observe passes err through, moving a Ready driver to Faulted when err is a
// bus error.
func (l *Lifecycle) Observe(err error) error {
	if err != nil && l.state == Ready && errors.Is(err, ErrBus) {
		l.state = Faulted
		l.fault = err
	}
	return err
}
