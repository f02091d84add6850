package wwvb

import (
	"time"

	"github.com/charmbracelet/log"
)

// syncState is the Frame Synchronizer's internal state machine (§4.3).
type syncState int

const (
	searching syncState = iota
	waitSecond
)

// bitSource is the subset of *BitClassifier that C3 and C4 depend on,
// so tests can drive the synchronizer and accumulator from a scripted
// bit sequence without a real GPIO line behind it.
type bitSource interface {
	NextBit(pollEvery time.Duration) BitReading
}

// FrameSynchronizer is C3: it locates the minute boundary by requiring
// two consecutive phase-valid markers (three during a pending leap
// second) and hands the boundary timestamp to C4.
type FrameSynchronizer struct {
	classifier bitSource
	logger     *log.Logger
}

func NewFrameSynchronizer(classifier bitSource, logger *log.Logger) *FrameSynchronizer {
	return &FrameSynchronizer{classifier: classifier, logger: logger}
}

// LeapSecondContext carries the state from the previously decoded
// frame that the leap-second special case in §4.3 depends on.
type LeapSecondContext struct {
	LeapSecondPending bool
	LastDayOfMonth    bool
	Hour              int
	Minute            int
}

// expectingLeapSecond reports whether the synchronizer should demand a
// third consecutive marker before declaring top-of-minute, per §4.3's
// "leap-second special case".
func (l LeapSecondContext) expectingLeapSecond() bool {
	return l.LeapSecondPending && l.LastDayOfMonth && l.Hour == 23 && l.Minute == 59
}

// AwaitTopOfMinute runs SEARCHING -> WAIT_SECOND -> LOCKED, blocking on
// C2 for each bit, and returns the edge time of the marker that defines
// top-of-minute along with whether a third (leap-second) marker was
// consumed.
func (fs *FrameSynchronizer) AwaitTopOfMinute(ctx LeapSecondContext, pollEvery time.Duration) (topOfMinute time.Time, leapSecond bool, err error) {
	state := searching

	for {
		reading := fs.classifier.NextBit(pollEvery)

		switch state {
		case searching:
			if reading.Symbol == Marker && reading.PhaseValid {
				state = waitSecond
			}

		case waitSecond:
			if reading.Symbol == Marker && reading.PhaseValid {
				if ctx.expectingLeapSecond() {
					third := fs.classifier.NextBit(pollEvery)
					if third.Symbol == Marker && third.PhaseValid {
						fs.logger.Info("locked on minute boundary", "leap_second", true)
						return third.EdgeTime, true, nil
					}
					// Third marker failed to materialize; restart search.
					state = searching
					continue
				}
				fs.logger.Info("locked on minute boundary")
				return reading.EdgeTime, false, nil
			}
			state = searching
		}
	}
}
