package rx8900

import "github.com/ajanata/rtcdrivers/rtc"

const (
	Address = 0x32 // I2C address for RX8900

	Seconds        = 0x00 // Time registers starting with seconds
	Minutes        = 0x01
	Hours          = 0x02
	Week           = 0x03 // One-hot day of the week
	Day            = 0x04
	Month          = 0x05
	Year           = 0x06
	RAM            = 0x07 // General purpose RAM byte
	MinuteAlarm    = 0x08
	HourAlarm      = 0x09
	WeekDayAlarm   = 0x0A // Week or day alarm, selected by WADA
	TimerCounter0  = 0x0B // Fixed-cycle timer, low byte
	TimerCounter1  = 0x0C // Fixed-cycle timer, high nibble
	Extension      = 0x0D // TEST WADA USEL TE FSEL1 FSEL0 TSEL1 TSEL0
	Flag           = 0x0E // - - UF TF AF - VLF VDET
	Control        = 0x0F // CSEL1 CSEL0 UIE TIE AIE - - RESET
	Temp           = 0x17 // Temperature sensor output
	BackupFunction = 0x18 // - - - - VDETOFF SWOFF BKSMP1 BKSMP0
)

// Extension register bits.
const (
	extTEST   = 1 << 7
	extWADA   = 1 << 6
	extUSEL   = 1 << 5
	extTE     = 1 << 4
	extFSEL   = 0b11 << 2
	extTSEL   = 0b11
	fselShift = 2
)

// Control register bits.
const (
	ctrlCSEL  = 0b11 << 6
	ctrlUIE   = 1 << 5
	ctrlTIE   = 1 << 4
	ctrlAIE   = 1 << 3
	ctrlRESET = 1 << 0
	cselShift = 6
)

// Backup function register bits.
const (
	bkVDETOFF = 1 << 3
	bkSWOFF   = 1 << 2
	bkBKSMP   = 0b11
	bkMask    = bkVDETOFF | bkSWOFF | bkBKSMP
)

const (
	alarmAE      = rtc.AlarmDisable
	timerHighMax = 0x0F
)

var layout = rtc.Layout{
	Seconds: 0, Minutes: 1, Hours: 2, Weekday: 3, Day: 4, Month: 5, Year: 6,

	SecondsMask: 0x7F,
	MinutesMask: 0x7F,
	HoursMask:   0x3F,
	WeekdayMask: 0x7F,
	DayMask:     0x3F,
	MonthMask:   0x1F,

	WeekdayCoding: rtc.WeekdayOneHot,
	Epoch:         2000,
}
