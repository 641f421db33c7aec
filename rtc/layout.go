package rtc

// TimeBlockSize is the number of registers holding a full timestamp on every
// supported chip: seconds, minutes, hours, weekday, day, month and year.
const TimeBlockSize = 7

// TimeBlock is the raw image of the timekeeping registers. It is always read
// and written as one bus transaction so the fields cannot tear.
type TimeBlock [TimeBlockSize]byte

// HourMode is the encoding of the hours register.
type HourMode uint8

const (
	TwentyFourHour HourMode = iota
	TwelveHour
)

func (m HourMode) String() string {
	if m == TwelveHour {
		return "12h"
	}
	return "24h"
}

// WeekdayCoding is how a chip stores the day of the week.
type WeekdayCoding uint8

const (
	// WeekdayZeroBased stores 0 (Sunday) to 6 (Saturday).
	WeekdayZeroBased WeekdayCoding = iota
	// WeekdayOneBased stores 1 (Sunday) to 7 (Saturday).
	WeekdayOneBased
	// WeekdayOneHot sets bit n for weekday n, Sunday being bit 0.
	WeekdayOneHot
)

// Layout describes where a chip keeps each timestamp field inside its
// TimeBlock and which extra bits share those bytes.
type Layout struct {
	// Offsets of each field inside the TimeBlock.
	Seconds, Minutes, Hours, Weekday, Day, Month, Year int

	// Value bits of each field; everything else is a flag or unused.
	SecondsMask, MinutesMask, HoursMask, DayMask, MonthMask, WeekdayMask uint8

	// TwelveHourBit, when non-zero, selects 12-hour encoding in the hours
	// byte. PMBit is the afternoon flag in that encoding.
	TwelveHourBit uint8
	PMBit         uint8

	// CenturyBit, when non-zero, is the month-register bit that extends the
	// two-digit year by one century.
	CenturyBit uint8

	WeekdayCoding WeekdayCoding

	// Epoch is the year stored as 00 with the century bit clear.
	Epoch int
}

// HourMode reports how the hours byte h is encoded.
func (l *Layout) HourMode(h uint8) HourMode {
	if l.TwelveHourBit != 0 && h&l.TwelveHourBit != 0 {
		return TwelveHour
	}
	return TwentyFourHour
}

// CenturySet reports whether the century bit is set in the month byte m.
func (l *Layout) CenturySet(m uint8) bool {
	return l.CenturyBit != 0 && m&l.CenturyBit != 0
}

// MinYear is the first year the chip can hold.
func (l *Layout) MinYear() int { return l.Epoch }

// MaxYear is the last year the chip can hold.
func (l *Layout) MaxYear() int {
	if l.CenturyBit != 0 {
		return l.Epoch + 199
	}
	return l.Epoch + 99
}

// hoursMask12 covers the ones and the single tens bit of a 12-hour value.
const hoursMask12 = 0x1F

// Hour24 converts a 12-hour hours register to 0-23.
func (l *Layout) Hour24(b uint8) (int, error) {
	h, err := DecodeBCD(b & hoursMask12)
	if err != nil {
		return 0, fieldErr("hour", int(b&hoursMask12), err)
	}
	if h < 1 || h > 12 {
		return 0, fieldErr("hour", h, ErrInvalidCalendar)
	}
	h %= 12
	if b&l.PMBit != 0 {
		h += 12
	}
	return h, nil
}
