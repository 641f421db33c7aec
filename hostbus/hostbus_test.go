package hostbus

import (
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestBuildMsgs(t *testing.T) {
	c := qt.New(t)
	w := []byte{0x00}
	r := make([]byte, 7)

	msgs, err := buildMsgs(0x32, w, r)
	c.Assert(err, qt.IsNil)
	c.Assert(msgs, qt.HasLen, 2)
	c.Assert(msgs[0].addr, qt.Equals, uint16(0x32))
	c.Assert(msgs[0].flags, qt.Equals, uint16(0))
	c.Assert(msgs[0].len, qt.Equals, uint16(1))
	c.Assert(msgs[1].flags, qt.Equals, uint16(i2cFlagRead))
	c.Assert(msgs[1].len, qt.Equals, uint16(7))

	msgs, err = buildMsgs(0x32, []byte{0x0F, 0x01}, nil)
	c.Assert(err, qt.IsNil)
	c.Assert(msgs, qt.HasLen, 1)
	c.Assert(msgs[0].len, qt.Equals, uint16(2))

	msgs, err = buildMsgs(0x32, nil, nil)
	c.Assert(err, qt.IsNil)
	c.Assert(msgs, qt.HasLen, 0)

	_, err = buildMsgs(0x32, nil, make([]byte, MaxTransfer+1))
	c.Assert(err, qt.Equals, ErrTransferSize)
}

type fakeSMBus struct {
	regs  [256]byte
	calls []string
}

func (f *fakeSMBus) ReadReg(addr, reg uint8) (uint8, error) {
	f.calls = append(f.calls, fmt.Sprintf("readreg %02x %02x", addr, reg))
	return f.regs[reg], nil
}

func (f *fakeSMBus) WriteReg(addr, reg, v uint8) error {
	f.calls = append(f.calls, fmt.Sprintf("writereg %02x %02x", addr, reg))
	f.regs[reg] = v
	return nil
}

func (f *fakeSMBus) ReadBlockData(addr, reg uint8, buf []byte) error {
	f.calls = append(f.calls, fmt.Sprintf("readblock %02x %02x %d", addr, reg, len(buf)))
	copy(buf, f.regs[reg:])
	return nil
}

func (f *fakeSMBus) WriteBlockData(addr, reg uint8, buf []byte) error {
	f.calls = append(f.calls, fmt.Sprintf("writeblock %02x %02x %d", addr, reg, len(buf)))
	copy(f.regs[reg:], buf)
	return nil
}

func (f *fakeSMBus) Close() error { return nil }

func TestSMBusTx(t *testing.T) {
	c := qt.New(t)
	conn := &fakeSMBus{}
	s := &SMBus{conn: conn}

	c.Assert(s.Tx(0x32, []byte{0x00, 1, 2, 3, 4, 5, 6, 7}, nil), qt.IsNil)
	c.Assert(s.Tx(0x32, []byte{0x0F, 0x40}, nil), qt.IsNil)
	one := make([]byte, 1)
	c.Assert(s.Tx(0x32, []byte{0x0F}, one), qt.IsNil)
	c.Assert(one[0], qt.Equals, uint8(0x40))
	block := make([]byte, 7)
	c.Assert(s.Tx(0x32, []byte{0x00}, block), qt.IsNil)
	c.Assert(block, qt.DeepEquals, []byte{1, 2, 3, 4, 5, 6, 7})

	c.Assert(conn.calls, qt.DeepEquals, []string{
		"writeblock 32 00 7",
		"writereg 32 0f",
		"readreg 32 0f",
		"readblock 32 00 7",
	})
}

func TestSMBusRejects(t *testing.T) {
	c := qt.New(t)
	s := &SMBus{conn: &fakeSMBus{}}

	c.Assert(s.Tx(0x32, nil, make([]byte, 1)), qt.ErrorIs, ErrUnsupportedTx)
	c.Assert(s.Tx(0x32, []byte{0x00, 0x01}, make([]byte, 1)), qt.ErrorIs, ErrUnsupportedTx)
	c.Assert(s.Tx(0x32, []byte{0x00}, make([]byte, MaxSMBusBlock+1)), qt.ErrorIs, ErrUnsupportedTx)
	c.Assert(s.Tx(0x132, []byte{0x00}, make([]byte, 1)), qt.ErrorIs, ErrUnsupportedTx)
}
