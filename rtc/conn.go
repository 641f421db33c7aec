package rtc

import (
	"tinygo.org/x/drivers"
)

// MaxBlock is the longest register block moved in one transaction.
const MaxBlock = 32

// Conn performs addressed register transactions against one chip. Every
// block operation is exactly one bus transaction; nothing is retried.
type Conn struct {
	bus     drivers.I2C
	Address uint16

	// scratch space for the register pointer plus a full block
	w [MaxBlock + 1]byte
}

// NewConn binds a chip address on bus.
func NewConn(bus drivers.I2C, addr uint16) *Conn {
	return &Conn{bus: bus, Address: addr}
}

// ReadBlock fills dst with len(dst) registers starting at start.
func (c *Conn) ReadBlock(start uint8, dst []byte) error {
	if err := checkBlock(start, len(dst)); err != nil {
		return err
	}
	c.w[0] = start
	if err := c.bus.Tx(c.Address, c.w[:1], dst); err != nil {
		return &BusError{Op: "read", Reg: start, Len: len(dst), Err: err}
	}
	return nil
}

// WriteBlock writes src to len(src) registers starting at start.
func (c *Conn) WriteBlock(start uint8, src []byte) error {
	if err := checkBlock(start, len(src)); err != nil {
		return err
	}
	c.w[0] = start
	n := copy(c.w[1:], src)
	if err := c.bus.Tx(c.Address, c.w[:1+n], nil); err != nil {
		return &BusError{Op: "write", Reg: start, Len: n, Err: err}
	}
	return nil
}

// ReadRegister reads a single register.
func (c *Conn) ReadRegister(reg uint8) (uint8, error) {
	var buf [1]byte
	err := c.ReadBlock(reg, buf[:])
	return buf[0], err
}

// WriteRegister writes a single register.
func (c *Conn) WriteRegister(reg, val uint8) error {
	buf := [1]byte{val}
	return c.WriteBlock(reg, buf[:])
}

// UpdateRegister replaces the bits selected by mask with the same bits of
// val, leaving the rest of the register untouched. It costs two
// transactions and must not be used on timekeeping registers.
func (c *Conn) UpdateRegister(reg, mask, val uint8) error {
	cur, err := c.ReadRegister(reg)
	if err != nil {
		return err
	}
	return c.WriteRegister(reg, cur&^mask|val&mask)
}

func checkBlock(start uint8, n int) error {
	if n < 1 || n > MaxBlock || int(start)+n > 0x100 {
		return fieldErr("block length", n, ErrOutOfRange)
	}
	return nil
}
