// Package wwvb implements the signal-decoding and time-synchronization
// engine for a WWVB-disciplined radio clock: pulse capture, bit
// classification, minute-boundary synchronization, frame accumulation,
// and date/time decoding.
package wwvb

import (
	"time"

	"github.com/andrewsil1/wwvbclock/internal/clockstore"
)

// Symbol is the classification of a single received pulse.
type Symbol int

const (
	Zero Symbol = iota
	One
	Marker
	Invalid
)

func (s Symbol) String() string {
	switch s {
	case Zero:
		return "ZERO"
	case One:
		return "ONE"
	case Marker:
		return "MARKER"
	default:
		return "INVALID"
	}
}

// PulseSample is a single negative-pulse measurement published by the
// pulse capture worker (C1). EdgeTime is the falling-edge timestamp;
// WidthMS is the measured low duration in milliseconds.
type PulseSample struct {
	EdgeTime time.Time
	WidthMS  int
}

// BitReading is what the bit classifier (C2) hands to the frame
// synchronizer and accumulator. EdgeTime is the zero time.Time when
// Symbol is Invalid, matching the SENTINEL behavior described in the
// original spec (§6, §9) but expressed as Go's natural "no value".
type BitReading struct {
	Symbol     Symbol
	EdgeTime   time.Time
	PhaseValid bool
}

// DUTSign is the sign of the broadcast DUT1 correction.
type DUTSign int

const (
	DUTPositive DUTSign = 1
	DUTNegative DUTSign = -1
	DUTInvalid  DUTSign = 0
)

// RawFrame is the fixed 60-bit sequence accumulated by C4. Bit is true
// for ONE, false for ZERO or MARKER (marker positions carry no value,
// only a positional check).
type RawFrame struct {
	Bit      [60]bool
	Position [60]Symbol
}

// DecodedTime is the field-level output of the frame decoder (C5).
// DSTState uses the clockstore package's wire/NVRAM encoding (§6)
// directly, since that value flows straight into the Clock Store.
type DecodedTime struct {
	Minute            int
	Hour              int
	DayOfYear         int
	Year              int
	DUTSign           DUTSign
	DUTTenths         int
	LeapYear          bool
	LeapSecondPending bool
	DSTState          clockstore.DSTState
}
