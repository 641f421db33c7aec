// Package i2ctest provides a scripted drivers.I2C for driver tests: a single
// register-file device that records every transaction and can be told to
// fail.
package i2ctest

import (
	"errors"
	"sync"

	"tinygo.org/x/drivers"
)

// ErrNack is returned for transactions addressed to an absent device.
var ErrNack = errors.New("i2ctest: no acknowledge")

// ErrInjected is the default failure returned by FailFrom and FailWrites.
var ErrInjected = errors.New("i2ctest: injected failure")

var _ drivers.I2C = (*Bus)(nil)

// Tx is a recorded transaction.
type Tx struct {
	Addr uint16
	W    []byte // bytes written, register pointer first
	R    int    // bytes read
}

// Reg returns the register pointer of the transaction, or -1 if nothing was
// written.
func (t Tx) Reg() int {
	if len(t.W) == 0 {
		return -1
	}
	return int(t.W[0])
}

// Bus emulates one device with 256 byte-wide registers and an auto-incrementing
// register pointer.
type Bus struct {
	mu sync.Mutex

	Addr uint16
	Regs [256]byte

	// WriteHook, when set, filters every byte written to a register. It gets
	// the current and the written value and returns what is stored.
	WriteHook func(reg, cur, val uint8) uint8

	txs       []Tx
	ptr       uint8
	failFrom  int
	failErr   error
	failWrite error
}

// NewBus returns a device answering at addr.
func NewBus(addr uint16) *Bus {
	return &Bus{Addr: addr, failFrom: -1}
}

func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.txs)
	b.txs = append(b.txs, Tx{Addr: addr, W: append([]byte(nil), w...), R: len(r)})

	if b.failFrom >= 0 && n >= b.failFrom {
		return b.failErr
	}
	if b.failWrite != nil && len(w) > 1 {
		return b.failWrite
	}
	if addr != b.Addr {
		return ErrNack
	}

	if len(w) > 0 {
		b.ptr = w[0]
		for _, v := range w[1:] {
			if b.WriteHook != nil {
				v = b.WriteHook(b.ptr, b.Regs[b.ptr], v)
			}
			b.Regs[b.ptr] = v
			b.ptr++
		}
	}
	for i := range r {
		r[i] = b.Regs[b.ptr]
		b.ptr++
	}
	return nil
}

// Txs returns a copy of the recorded transactions.
func (b *Bus) Txs() []Tx {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Tx(nil), b.txs...)
}

// Count returns the number of transactions seen so far.
func (b *Bus) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.txs)
}

// ResetLog forgets the recorded transactions.
func (b *Bus) ResetLog() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.txs = nil
}

// FailFrom makes transaction number n (counted from the start of the log)
// and every later one fail with err, or ErrInjected if err is nil.
func (b *Bus) FailFrom(n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		err = ErrInjected
	}
	b.failFrom, b.failErr = n, err
}

// FailNext makes every transaction after the ones already logged fail.
func (b *Bus) FailNext(err error) {
	b.FailFrom(b.Count(), err)
}

// FailWrites makes every transaction that writes register data fail.
func (b *Bus) FailWrites(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		err = ErrInjected
	}
	b.failWrite = err
}

// Heal clears every injected failure.
func (b *Bus) Heal() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failFrom, b.failErr, b.failWrite = -1, nil, nil
}
