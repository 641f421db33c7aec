// Package hostbus connects the chip drivers to Linux I2C adapters, so the same drivers run on a single-board computer
// as on a microcontroller. Dev issues each transaction as one combined I2C_RDWR transfer with a repeated start; SMBus
// maps transactions onto SMBus block calls for adapters that only speak SMBus.
package hostbus

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"tinygo.org/x/drivers"
)

// MaxTransfer is the largest message the kernel accepts in one I2C_RDWR transfer.
const MaxTransfer = 8192

var (
	_ drivers.I2C = (*Dev)(nil)
	_ drivers.I2C = (*SMBus)(nil)
)

// ErrTransferSize reports a message too long for one transfer.
var ErrTransferSize = errors.New("hostbus: transfer too long")

const (
	i2cRdWr     = 0x0707
	i2cFlagRead = 0x0001
)

// i2cMsg mirrors struct i2c_msg.
type i2cMsg struct {
	addr  uint16
	flags uint16
	len   uint16
	buf   uintptr
}

// i2cRdWrData mirrors struct i2c_rdwr_ioctl_data.
type i2cRdWrData struct {
	msgs  uintptr
	nmsgs uint32
}

// Dev is an open /dev/i2c-N adapter. It is safe for concurrent use; transactions are serialized.
type Dev struct {
	mu   sync.Mutex
	fd   int
	path string
}

func (d *Dev) String() string { return d.path }

// Tx writes w then reads into r in one transfer, with a repeated start between the two.
func (d *Dev) Tx(addr uint16, w, r []byte) error {
	msgs, err := buildMsgs(addr, w, r)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.rdwr(msgs); err != nil {
		return fmt.Errorf("hostbus: %s: transfer to 0x%02x: %w", d.path, addr, err)
	}
	return nil
}

func buildMsgs(addr uint16, w, r []byte) ([]i2cMsg, error) {
	if len(w) > MaxTransfer || len(r) > MaxTransfer {
		return nil, ErrTransferSize
	}
	msgs := make([]i2cMsg, 0, 2)
	if len(w) > 0 {
		msgs = append(msgs, i2cMsg{addr: addr, len: uint16(len(w)), buf: uintptr(unsafe.Pointer(&w[0]))})
	}
	if len(r) > 0 {
		msgs = append(msgs, i2cMsg{addr: addr, flags: i2cFlagRead, len: uint16(len(r)), buf: uintptr(unsafe.Pointer(&r[0]))})
	}
	return msgs, nil
}
