package hostbus

import (
	"errors"
	"fmt"
)

// MaxSMBusBlock is the longest SMBus I2C block transfer.
const MaxSMBusBlock = 32

// ErrUnsupportedTx reports a transaction shape SMBus cannot express.
var ErrUnsupportedTx = errors.New("hostbus: transaction not expressible on SMBus")

// smbusConn is the subset of *smbus.Conn the adapter uses.
type smbusConn interface {
	ReadReg(addr, reg uint8) (uint8, error)
	WriteReg(addr, reg, v uint8) error
	ReadBlockData(addr, reg uint8, buf []byte) error
	WriteBlockData(addr, reg uint8, buf []byte) error
	Close() error
}

// SMBus adapts an SMBus connection to drivers.I2C. Every transaction must start with a register pointer: one byte
// register reads and writes become byte-data calls, longer ones I2C block calls of at most MaxSMBusBlock bytes.
type SMBus struct {
	conn smbusConn
}

func (s *SMBus) Tx(addr uint16, w, r []byte) error {
	if addr > 0x7F {
		return fmt.Errorf("%w: 10-bit address 0x%x", ErrUnsupportedTx, addr)
	}
	a := uint8(addr)
	switch {
	case len(w) == 0:
		return fmt.Errorf("%w: no register pointer", ErrUnsupportedTx)
	case len(w) > 1 && len(r) > 0:
		return fmt.Errorf("%w: write of %d bytes followed by a read", ErrUnsupportedTx, len(w))
	case len(r) > MaxSMBusBlock || len(w)-1 > MaxSMBusBlock:
		return fmt.Errorf("%w: block longer than %d bytes", ErrUnsupportedTx, MaxSMBusBlock)
	case len(r) == 1:
		v, err := s.conn.ReadReg(a, w[0])
		if err != nil {
			return err
		}
		r[0] = v
		return nil
	case len(r) > 1:
		return s.conn.ReadBlockData(a, w[0], r)
	case len(w) == 2:
		return s.conn.WriteReg(a, w[0], w[1])
	case len(w) > 2:
		return s.conn.WriteBlockData(a, w[0], w[1:])
	}
	// register pointer only
	return s.conn.WriteBlockData(a, w[0], nil)
}

// Close releases the adapter.
func (s *SMBus) Close() error { return s.conn.Close() }
