package hostbus

import (
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Open opens /dev/i2c-<bus>.
func Open(bus int) (*Dev, error) {
	path := fmt.Sprintf("/dev/i2c-%d", bus)
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("hostbus: open %s: %w", path, err)
	}
	return &Dev{fd: fd, path: path}, nil
}

// Close releases the adapter.
func (d *Dev) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}

func (d *Dev) rdwr(msgs []i2cMsg) error {
	if d.fd < 0 {
		return unix.EBADF
	}
	data := i2cRdWrData{
		msgs:  uintptr(unsafe.Pointer(&msgs[0])),
		nmsgs: uint32(len(msgs)),
	}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), i2cRdWr, uintptr(unsafe.Pointer(&data)))
	runtime.KeepAlive(msgs)
	if errno != 0 {
		return errno
	}
	return nil
}
