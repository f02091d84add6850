package wwvb

import (
	"time"

	"github.com/charmbracelet/log"
)

// FrameAccumulator is C4: it gathers the 58 interior bits of a minute
// frame (seconds 1..58; position 0 is the marker C3 locked on, and
// position 59 is recorded as a marker without being read here, since
// it arrives after collection ends), rejecting the whole frame on the
// first structural defect per §4.4.
type FrameAccumulator struct {
	cfg        Config
	classifier bitSource
	logger     *log.Logger
}

func NewFrameAccumulator(cfg Config, classifier bitSource, logger *log.Logger) *FrameAccumulator {
	return &FrameAccumulator{cfg: cfg, classifier: classifier, logger: logger}
}

// phaseOffsetMS computes the signed offset, in ms, of edgeTime from its
// nominal position sec seconds after minuteStart, re-expressed as the
// nearer second per §4.4 step 2.
func phaseOffsetMS(edgeTime, minuteStart time.Time, sec int) int {
	nominal := minuteStart.Add(time.Duration(sec) * time.Second)
	diff := edgeTime.Sub(nominal)
	ms := int(diff / time.Millisecond)
	ms %= 1000
	if ms > 500 {
		ms -= 1000
	} else if ms < -500 {
		ms += 1000
	}
	return ms
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// CollectFrame implements §4.4. It returns a structural FrameInvalidError
// (wrapping ErrFrameInvalid) on the first defect, bailing out rather
// than waiting the full minute.
func (fa *FrameAccumulator) CollectFrame(minuteStart time.Time, pollEvery time.Duration) (*RawFrame, error) {
	frame := &RawFrame{}
	frame.Position[0] = Marker

	for sec := 1; sec <= 58; sec++ {
		reading := fa.classifier.NextBit(pollEvery)

		if !reading.PhaseValid {
			return nil, &FrameInvalidError{Sec: sec, Reason: "phase invalid"}
		}

		if sec%10 == 9 {
			if reading.Symbol != Marker {
				return nil, &FrameInvalidError{Sec: sec, Reason: "expected marker, got " + reading.Symbol.String()}
			}
			frame.Position[sec] = Marker
			continue
		}

		if reading.Symbol != Zero && reading.Symbol != One {
			return nil, &FrameInvalidError{Sec: sec, Reason: "expected data bit, got " + reading.Symbol.String()}
		}

		offset := phaseOffsetMS(reading.EdgeTime, minuteStart, sec)
		if abs(offset) > fa.cfg.ToleranceMS {
			return nil, &FrameInvalidError{Sec: sec, Reason: "bit arrived out of phase tolerance"}
		}

		frame.Position[sec] = reading.Symbol
		frame.Bit[sec] = reading.Symbol == One
	}

	frame.Position[59] = Marker
	fa.logger.Debug("frame accumulated")
	return frame, nil
}
