package rx8900

import "github.com/ajanata/rtcdrivers/rtc"

// FoutFrequency is the clock put out on the FOUT pin while FOE is high.
type FoutFrequency uint8

const (
	Fout32768Hz FoutFrequency = iota
	Fout1024Hz
	Fout1Hz
)

var foutBits = map[FoutFrequency]uint8{
	Fout32768Hz: 0b00,
	Fout1024Hz:  0b01,
	Fout1Hz:     0b10,
}

// CompensationInterval is how often the temperature compensation runs.
type CompensationInterval uint8

const (
	Compensation2s CompensationInterval = iota // power-on default
	Compensation500ms
	Compensation10s
	Compensation30s
)

var cselBits = map[CompensationInterval]uint8{
	Compensation500ms: 0b00,
	Compensation2s:    0b01,
	Compensation10s:   0b10,
	Compensation30s:   0b11,
}

// BackupSampling is the voltage detector sampling time while on battery.
type BackupSampling uint8

const (
	Sampling128ms BackupSampling = iota // power-on default
	Sampling2ms
	Sampling16ms
	Sampling256ms
)

var bksmpBits = map[BackupSampling]uint8{
	Sampling2ms:   0b00,
	Sampling16ms:  0b01,
	Sampling128ms: 0b10,
	Sampling256ms: 0b11,
}

// UpdateInterrupt selects the time-update event period (USEL).
type UpdateInterrupt uint8

const (
	EverySecond UpdateInterrupt = iota
	EveryMinute
)

// Backup is the content of the backup function register.
type Backup struct {
	VoltageDetectorOff bool
	SwitchOff          bool
	Sampling           BackupSampling
}

// SetFout selects the FOUT output frequency.
func (d *Device) SetFout(f FoutFrequency) error {
	bits, ok := foutBits[f]
	if !ok {
		return &rtc.FieldError{Field: "fout", Value: int(f), Err: rtc.ErrOutOfRange}
	}
	return d.update(Extension, extFSEL, bits<<fselShift)
}

// SetCompensation selects the temperature compensation interval.
func (d *Device) SetCompensation(c CompensationInterval) error {
	bits, ok := cselBits[c]
	if !ok {
		return &rtc.FieldError{Field: "compensation", Value: int(c), Err: rtc.ErrOutOfRange}
	}
	return d.update(Control, ctrlCSEL, bits<<cselShift)
}

// SetUpdateInterrupt selects the time-update period and whether the event drives /INT.
func (d *Device) SetUpdateInterrupt(u UpdateInterrupt, enable bool) error {
	var usel, uie uint8
	switch u {
	case EverySecond:
	case EveryMinute:
		usel = extUSEL
	default:
		return &rtc.FieldError{Field: "update interrupt", Value: int(u), Err: rtc.ErrOutOfRange}
	}
	if enable {
		uie = ctrlUIE
	}
	if err := d.update(Extension, extUSEL, usel); err != nil {
		return err
	}
	return d.update(Control, ctrlUIE, uie)
}

// UpdateInterrupt returns the time-update period and whether it drives /INT.
func (d *Device) UpdateInterrupt() (UpdateInterrupt, bool, error) {
	if err := d.Check(); err != nil {
		return 0, false, err
	}
	var regs [3]byte // Extension, Flag, Control
	if err := d.Observe(d.conn.ReadBlock(Extension, regs[:])); err != nil {
		return 0, false, err
	}
	u := EverySecond
	if regs[0]&extUSEL != 0 {
		u = EveryMinute
	}
	return u, regs[2]&ctrlUIE != 0, nil
}

// RAM reads the general purpose RAM byte.
func (d *Device) RAM() (uint8, error) {
	if err := d.Check(); err != nil {
		return 0, err
	}
	v, err := d.conn.ReadRegister(RAM)
	return v, d.Observe(err)
}

// SetRAM writes the general purpose RAM byte, which survives on battery.
func (d *Device) SetRAM(v uint8) error {
	if err := d.Check(); err != nil {
		return err
	}
	return d.Observe(d.conn.WriteRegister(RAM, v))
}

// Temperature returns the temperature sensor reading in milli-degrees Celsius.
func (d *Device) Temperature() (int32, error) {
	if err := d.Check(); err != nil {
		return 0, err
	}
	raw, err := d.conn.ReadRegister(Temp)
	if err != nil {
		return 0, d.Observe(err)
	}
	return tempMilliC(raw), nil
}

// tempMilliC converts the TEMP register: T[°C] = (raw*2 - 187.19) / 3.218.
func tempMilliC(raw uint8) int32 {
	return (int32(raw)*2000 - 187190) * 1000 / 3218
}

// Backup reads the backup function register.
func (d *Device) Backup() (Backup, error) {
	if err := d.Check(); err != nil {
		return Backup{}, err
	}
	v, err := d.conn.ReadRegister(BackupFunction)
	if err != nil {
		return Backup{}, d.Observe(err)
	}
	b := Backup{
		VoltageDetectorOff: v&bkVDETOFF != 0,
		SwitchOff:          v&bkSWOFF != 0,
	}
	for s, bits := range bksmpBits {
		if v&bkBKSMP == bits {
			b.Sampling = s
		}
	}
	return b, nil
}

// update is a gated read-modify-write of control bits.
func (d *Device) update(reg, mask, val uint8) error {
	if err := d.Check(); err != nil {
		return err
	}
	return d.Observe(d.conn.UpdateRegister(reg, mask, val))
}
