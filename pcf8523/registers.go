package pcf8523

import "github.com/ajanata/rtcdrivers/rtc"

const (
	Address           = 0x68 // I2C address for PCF8523
	Control1          = 0x00 // Control and status register 1
	Control2          = 0x01 // Control and status register 2
	Control3          = 0x02 // Control and status register 3
	Time              = 0x03 // Time registers starting with seconds
	Seconds           = 0x03 // OS flag and seconds
	Minutes           = 0x04
	Hours             = 0x05
	MinuteAlarm       = 0x0A // Alarm registers, one enable bit each
	HourAlarm         = 0x0B
	DayAlarm          = 0x0C
	WeekdayAlarm      = 0x0D
	Offset            = 0x0E // Offset register
	ClkOutControl     = 0x0F // Timer and CLKOUT control register
	TimerAFreqControl = 0x10
	TimerAValue       = 0x11
	TimerBFreqControl = 0x12 // Timer B source clock frequency control
	TimerBValue       = 0x13 // Timer B value (number clock periods)
)

// Control_1 bits.
const (
	ctrl1CapSel = 1 << 7
	ctrl1Stop   = 1 << 5
	ctrl1Hour12 = 1 << 3
	ctrl1AIE    = 1 << 1

	// CAP_SEL and the second/alarm/correction interrupt enables
	ctrl1Keep = 0b1000_0111
)

// Control_2 bits. The flags are cleared by writing 0; a write is ANDed with them so writing 1 keeps a flag.
const (
	ctrl2CTBF    = 1 << 5
	ctrl2SF      = 1 << 4
	ctrl2AF      = 1 << 3
	ctrl2CTBIE   = 1 << 0
	ctrl2Flags   = 0b1111_1000
	ctrl2Enables = 0b0000_0111
)

// Control_3 bits.
const (
	ctrl3PM      = 0b111 << 5
	ctrl3BSF     = 1 << 3
	ctrl3BLF     = 1 << 2
	ctrl3Enables = 0b0000_0011
	pmShift      = 5
	pmNotInit    = 0b111
)

// Tmr_CLKOUT_ctrl bits.
const (
	tmrTBC = 1 << 0
	tmrCOF = 0b111 << 3 // 111 turns CLKOUT off and frees the pin for /INT1
	tmrTBM = 1 << 6
)

const (
	secondsOS        = 1 << 7
	alarmAEN         = rtc.AlarmDisable
	offsetMinuteMode = 1 << 7
)

var layout = rtc.Layout{
	Seconds: 0, Minutes: 1, Hours: 2, Day: 3, Weekday: 4, Month: 5, Year: 6,

	SecondsMask: 0x7F,
	MinutesMask: 0x7F,
	HoursMask:   0x3F,
	DayMask:     0x3F,
	WeekdayMask: 0x07,
	MonthMask:   0x1F,

	// the 12/24 selection lives in Control_1
	PMBit: 0x20,

	WeekdayCoding: rtc.WeekdayZeroBased,
	Epoch:         2000,
}
