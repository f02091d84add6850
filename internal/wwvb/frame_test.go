package wwvb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseOffsetMSBoundary(t *testing.T) {
	minuteStart := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)

	onTime := minuteStart.Add(5 * time.Second)
	assert.Equal(t, 0, phaseOffsetMS(onTime, minuteStart, 5))

	early := minuteStart.Add(5*time.Second - 25*time.Millisecond)
	assert.Equal(t, -25, phaseOffsetMS(early, minuteStart, 5))

	late := minuteStart.Add(5*time.Second + 25*time.Millisecond)
	assert.Equal(t, 25, phaseOffsetMS(late, minuteStart, 5))
}

// fakeBitSource replays a scripted sequence of BitReadings, ignoring
// the poll interval, so C3/C4 can be driven deterministically.
type fakeBitSource struct {
	readings []BitReading
	next     int
}

func (f *fakeBitSource) NextBit(pollEvery time.Duration) BitReading {
	r := f.readings[f.next]
	f.next++
	return r
}

// setBits sets frame bits at positions (in order) from the big-endian
// weights of value, matching decode.go's field layout.
func setBits(bits map[int]bool, value int, positions []int, weights []int) {
	for i, pos := range positions {
		bits[pos] = value&weights[i] != 0
	}
}

// buildMinuteFrame lays out a full set of 58 data-bit/marker readings
// (seconds 1..58) for the given field values, matching the bit
// positions decode.go reads. minuteStart anchors on-time edges.
func buildMinuteFrame(minuteStart time.Time, minute, hour, dayOfYear, dutTenths int, dutBits [3]bool, yearOnes2Digit int, leapYear, leapSecond bool, dstBits [2]bool) []BitReading {
	bits := make(map[int]bool)

	setBits(bits, minute/10, []int{1, 2, 3}, []int{4, 2, 1})
	setBits(bits, minute%10, []int{5, 6, 7, 8}, []int{8, 4, 2, 1})
	setBits(bits, hour/10, []int{12, 13}, []int{2, 1})
	setBits(bits, hour%10, []int{15, 16, 17, 18}, []int{8, 4, 2, 1})
	setBits(bits, dayOfYear/100, []int{22, 23}, []int{2, 1})
	setBits(bits, (dayOfYear/10)%10, []int{25, 26, 27, 28}, []int{8, 4, 2, 1})
	setBits(bits, dayOfYear%10, []int{30, 31, 32, 33}, []int{8, 4, 2, 1})
	bits[36], bits[37], bits[38] = dutBits[0], dutBits[1], dutBits[2]
	setBits(bits, dutTenths, []int{40, 41, 42, 43}, []int{8, 4, 2, 1})
	setBits(bits, yearOnes2Digit/10, []int{45, 46, 47, 48}, []int{8, 4, 2, 1})
	setBits(bits, yearOnes2Digit%10, []int{50, 51, 52, 53}, []int{8, 4, 2, 1})
	bits[55] = leapYear
	bits[56] = leapSecond
	bits[57], bits[58] = dstBits[0], dstBits[1]

	markers := map[int]bool{9: true, 19: true, 29: true, 39: true, 49: true}

	readings := make([]BitReading, 0, 58)
	for sec := 1; sec <= 58; sec++ {
		edge := minuteStart.Add(time.Duration(sec) * time.Second)
		if markers[sec] {
			readings = append(readings, BitReading{Symbol: Marker, EdgeTime: edge, PhaseValid: true})
			continue
		}
		symbol := Zero
		if bits[sec] {
			symbol = One
		}
		readings = append(readings, BitReading{Symbol: symbol, EdgeTime: edge, PhaseValid: true})
	}
	return readings
}

func TestCollectFrameAccepted(t *testing.T) {
	minuteStart := time.Date(2026, 7, 31, 14, 0, 0, 0, time.UTC)
	readings := buildMinuteFrame(minuteStart, 5, 14, 212, 3, [3]bool{false, true, false}, 26, false, false, [2]bool{false, false})
	src := &fakeBitSource{readings: readings}

	fa := NewFrameAccumulator(DefaultConfig(), src, testLogger())
	frame, err := fa.CollectFrame(minuteStart, time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, frame)
	assert.Equal(t, Marker, frame.Position[9])
	assert.Equal(t, Marker, frame.Position[49])
}

func TestCollectFrameRejectsOutOfPhaseBit(t *testing.T) {
	minuteStart := time.Date(2026, 7, 31, 14, 0, 0, 0, time.UTC)
	readings := buildMinuteFrame(minuteStart, 5, 14, 212, 3, [3]bool{false, true, false}, 26, false, false, [2]bool{false, false})
	// Second 17 arrives far enough off nominal to exceed ToleranceMS.
	readings[16].EdgeTime = readings[16].EdgeTime.Add(100 * time.Millisecond)
	src := &fakeBitSource{readings: readings}

	fa := NewFrameAccumulator(DefaultConfig(), src, testLogger())
	_, err := fa.CollectFrame(minuteStart, time.Millisecond)
	require.Error(t, err)

	var fie *FrameInvalidError
	require.ErrorAs(t, err, &fie)
	assert.Equal(t, 17, fie.Sec)
}

func TestCollectFrameRejectsMissingMarker(t *testing.T) {
	minuteStart := time.Date(2026, 7, 31, 14, 0, 0, 0, time.UTC)
	readings := buildMinuteFrame(minuteStart, 5, 14, 212, 3, [3]bool{false, true, false}, 26, false, false, [2]bool{false, false})
	readings[18] = BitReading{Symbol: Zero, EdgeTime: readings[18].EdgeTime, PhaseValid: true} // sec 19 should be a marker
	src := &fakeBitSource{readings: readings}

	fa := NewFrameAccumulator(DefaultConfig(), src, testLogger())
	_, err := fa.CollectFrame(minuteStart, time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFrameInvalid)
}

func TestCollectFrameRejectsPhaseInvalidReading(t *testing.T) {
	minuteStart := time.Date(2026, 7, 31, 14, 0, 0, 0, time.UTC)
	readings := buildMinuteFrame(minuteStart, 5, 14, 212, 3, [3]bool{false, true, false}, 26, false, false, [2]bool{false, false})
	readings[0].PhaseValid = false
	src := &fakeBitSource{readings: readings}

	fa := NewFrameAccumulator(DefaultConfig(), src, testLogger())
	_, err := fa.CollectFrame(minuteStart, time.Millisecond)
	require.Error(t, err)
	var fie *FrameInvalidError
	require.ErrorAs(t, err, &fie)
	assert.Equal(t, 1, fie.Sec)
}
