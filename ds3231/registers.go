package ds3231

import "github.com/ajanata/rtcdrivers/rtc"

const (
	Address = 0x68 // I2C address for DS3231

	Seconds     = 0x00 // Time registers starting with seconds
	Minutes     = 0x01
	Hours       = 0x02 // 12/24 and AM/PM bits share the hours register
	Day         = 0x03 // Day of the week, 1 (Sunday) to 7
	Date        = 0x04
	Month       = 0x05 // Century bit and month
	Year        = 0x06
	Alarm1      = 0x07 // Seconds, minutes, hours, day/date
	Alarm2      = 0x0B // Minutes, hours, day/date
	Control     = 0x0E // EOSC BBSQW CONV RS2 RS1 INTCN A2IE A1IE
	Status      = 0x0F // OSF - - - EN32kHz BSY A2F A1F
	AgingOffset = 0x10
	TempMSB     = 0x11
	TempLSB     = 0x12
)

// Control register bits.
const (
	ctrlEOSC  = 1 << 7
	ctrlINTCN = 1 << 2
	ctrlA2IE  = 1 << 1
	ctrlA1IE  = 1 << 0
)

// Status register bits. A2F and A1F only accept 0; writing 1 leaves them unchanged. OSF stores whatever is written.
const (
	statOSF     = 1 << 7
	statEN32kHz = 1 << 3
	statBSY     = 1 << 2
	statA2F     = 1 << 1
	statA1F     = 1 << 0
	statFlags   = statOSF | statA2F | statA1F
)

const (
	alarmMask = rtc.AlarmDisable
	alarmDY   = 1 << 6 // day of the week instead of the date
)

var layout = rtc.Layout{
	Seconds: 0, Minutes: 1, Hours: 2, Weekday: 3, Day: 4, Month: 5, Year: 6,

	SecondsMask: 0x7F,
	MinutesMask: 0x7F,
	HoursMask:   0x3F,
	WeekdayMask: 0x07,
	DayMask:     0x3F,
	MonthMask:   0x1F,

	TwelveHourBit: 0x40,
	PMBit:         0x20,
	CenturyBit:    0x80,

	WeekdayCoding: rtc.WeekdayOneBased,
	Epoch:         2000,
}
