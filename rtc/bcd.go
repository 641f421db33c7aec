package rtc

// DecodeBCD converts a packed BCD byte (tens in the high nibble, ones in the
// low nibble) to its integer value.
func DecodeBCD(b uint8) (int, error) {
	hi, lo := b>>4, b&0x0F
	if hi > 9 || lo > 9 {
		return 0, ErrInvalidBCD
	}
	return int(hi)*10 + int(lo), nil
}

// EncodeBCD converts v to packed BCD. v must be in [0, max]; max is capped at
// 99, the largest value two nibbles can hold.
func EncodeBCD(v, max int) (uint8, error) {
	if max > 99 {
		max = 99
	}
	if v < 0 || v > max {
		return 0, ErrOutOfRange
	}
	return uint8(v/10)<<4 | uint8(v%10), nil
}
