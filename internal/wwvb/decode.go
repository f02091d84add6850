package wwvb

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/andrewsil1/wwvbclock/internal/calendar"
	"github.com/andrewsil1/wwvbclock/internal/clockstore"
)

// FrameDecoder is C5: it extracts the BCD fields from a RawFrame,
// validates day-of-year, and detects DUT/leap/DST state (§4.5). It does
// not write the Clock Store; Engine.commit does that with the result.
type FrameDecoder struct {
	logger *log.Logger
}

func NewFrameDecoder(logger *log.Logger) *FrameDecoder {
	return &FrameDecoder{logger: logger}
}

// bitsAt returns frame.Bit at each of the given 1-based second
// positions, in order.
func bitsAt(frame *RawFrame, secs ...int) []bool {
	out := make([]bool, len(secs))
	for i, s := range secs {
		out[i] = frame.Bit[s]
	}
	return out
}

// Decode implements §4.5's field map and failure rules. It returns
// ErrFrameInvalid-wrapping errors for any anomaly other than an
// invalid DUT sign, which is tolerated (DUT treated as zero, frame
// still accepted).
func (fd *FrameDecoder) Decode(frame *RawFrame) (DecodedTime, error) {
	var dt DecodedTime

	minutesTens := bcdDigit(bitsAt(frame, 1, 2, 3), []int{4, 2, 1})
	minutesOnes := bcdDigit(bitsAt(frame, 5, 6, 7, 8), []int{8, 4, 2, 1})
	dt.Minute = minutesTens*10 + minutesOnes

	hoursTens := bcdDigit(bitsAt(frame, 12, 13), []int{2, 1})
	hoursOnes := bcdDigit(bitsAt(frame, 15, 16, 17, 18), []int{8, 4, 2, 1})
	dt.Hour = hoursTens*10 + hoursOnes

	dayHundreds := bcdDigit(bitsAt(frame, 22, 23), []int{2, 1})
	dayTens := bcdDigit(bitsAt(frame, 25, 26, 27, 28), []int{8, 4, 2, 1})
	dayOnes := bcdDigit(bitsAt(frame, 30, 31, 32, 33), []int{8, 4, 2, 1})
	dt.DayOfYear = dayHundreds*100 + dayTens*10 + dayOnes

	dt.DUTSign = decodeDUTSign(frame)
	dutTenths := bcdDigit(bitsAt(frame, 40, 41, 42, 43), []int{8, 4, 2, 1})
	dt.DUTTenths = dutTenths

	yearTens := bcdDigit(bitsAt(frame, 45, 46, 47, 48), []int{8, 4, 2, 1})
	yearOnes := bcdDigit(bitsAt(frame, 50, 51, 52, 53), []int{8, 4, 2, 1})
	dt.Year = yearTens*10 + yearOnes

	dt.LeapYear = frame.Bit[55]
	dt.LeapSecondPending = frame.Bit[56]
	dt.DSTState = decodeDSTState(frame.Bit[57], frame.Bit[58])

	maxDay := 365
	if dt.LeapYear {
		maxDay = 366
	}
	if dt.DayOfYear < 1 || dt.DayOfYear > maxDay {
		return DecodedTime{}, &FrameInvalidError{Sec: 33, Reason: fmt.Sprintf("day-of-year %d exceeds max %d for leap_year=%v", dt.DayOfYear, maxDay, dt.LeapYear)}
	}

	fd.logger.Info("frame decoded",
		"hour", dt.Hour, "minute", dt.Minute, "day_of_year", dt.DayOfYear,
		"year", dt.Year, "dut_sign", dt.DUTSign, "dst", dt.DSTState)

	return dt, nil
}

// decodeDUTSign checks bits 36..38 against the two valid patterns in
// §3: 010 is positive, 001 is negative; anything else is invalid.
func decodeDUTSign(frame *RawFrame) DUTSign {
	b36, b37, b38 := frame.Bit[36], frame.Bit[37], frame.Bit[38]
	switch {
	case !b36 && b37 && !b38:
		return DUTPositive
	case !b36 && !b37 && b38:
		return DUTNegative
	default:
		return DUTInvalid
	}
}

// decodeDSTState maps the transmitted 2-bit pattern (§4.5: 00
// STANDARD, 10 ENDING, 01 STARTING, 11 ENABLED) to the wire/NVRAM
// encoding used elsewhere in the engine (§6).
func decodeDSTState(bit57, bit58 bool) clockstore.DSTState {
	switch {
	case !bit57 && !bit58:
		return clockstore.DSTStandard
	case bit57 && !bit58:
		return clockstore.DSTEnding
	case !bit57 && bit58:
		return clockstore.DSTStarting
	default:
		return clockstore.DSTEnabled
	}
}

// DayOfYearToMonthDay implements §4.5's iterative conversion: subtract
// days_in_month from a running counter until it first drops to <= 0;
// that month is current, and day = counter + days_in_month(month).
func DayOfYearToMonthDay(dayOfYear int, leap bool) (month, day int, err error) {
	counter := dayOfYear
	for m := 1; m <= 12; m++ {
		dim := calendar.DaysInMonth(m, leap)
		counter -= dim
		if counter <= 0 {
			return m, counter + dim, nil
		}
	}
	return 0, 0, fmt.Errorf("%w: day-of-year %d has no matching month", ErrFrameInvalid, dayOfYear)
}

// CommitDecodedTime converts a decoded frame (plus the calendar year
// implied by its 2-digit broadcast year, 2000-2099) into a
// CalendarTime suitable for the Clock Store, per §4.5's commit rules.
// DUT sign INVALID does not reject the frame; it is simply treated as
// zero correction by the caller (§4.5 Failure).
func CommitDecodedTime(dt DecodedTime, minuteSecond int) (clockstore.CalendarTime, error) {
	month, day, err := DayOfYearToMonthDay(dt.DayOfYear, dt.LeapYear)
	if err != nil {
		return clockstore.CalendarTime{}, err
	}
	fullYear := 2000 + dt.Year
	weekday := calendar.DayOfWeek(fullYear, month, day)
	return clockstore.CalendarTime{
		Year:    fullYear,
		Month:   month,
		Day:     day,
		Weekday: weekday,
		Hour:    dt.Hour,
		Minute:  dt.Minute,
		Second:  minuteSecond,
	}, nil
}
