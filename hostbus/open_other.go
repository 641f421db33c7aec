//go:build !linux

package hostbus

import (
	"errors"
	"fmt"
	"runtime"
)

// Open is only implemented on Linux.
func Open(bus int) (*Dev, error) {
	return nil, fmt.Errorf("hostbus: i2c on %s: %w", runtime.GOOS, errors.ErrUnsupported)
}

// OpenSMBus is only implemented on Linux.
func OpenSMBus(bus int, addr uint8) (*SMBus, error) {
	return nil, fmt.Errorf("hostbus: smbus on %s: %w", runtime.GOOS, errors.ErrUnsupported)
}

// Close releases the adapter.
func (d *Dev) Close() error { return nil }

func (d *Dev) rdwr([]i2cMsg) error { return errors.ErrUnsupported }
