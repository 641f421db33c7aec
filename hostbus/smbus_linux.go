package hostbus

import (
	"fmt"

	"github.com/go-daq/smbus"
)

// OpenSMBus opens /dev/i2c-<bus> in SMBus mode, addressing addr.
func OpenSMBus(bus int, addr uint8) (*SMBus, error) {
	conn, err := smbus.Open(bus, addr)
	if err != nil {
		return nil, fmt.Errorf("hostbus: open smbus %d: %w", bus, err)
	}
	return &SMBus{conn: conn}, nil
}
