// Package display defines the external, interface-only collaborators
// spec.md scopes out of the engine: the LCD, the button/rotary editor
// UI, and the serial diagnostic line. Neither the signal-decoding
// engine in internal/wwvb nor cmd/wwvbclockd imports this package.
package display

import "github.com/andrewsil1/wwvbclock/internal/clockstore"

// StatusSource is what a display loop polls to render the clock face:
// the committed calendar time, whether it has ever been validated by a
// decode, and the 0-3 signal-quality bar from the SNR ring.
type StatusSource interface {
	Current() clockstore.CalendarTime
	ClockValid() bool
	SNRBar() int
}

// Editor is the button/rotary-encoder UI that lets an operator set the
// GMT offset and force a DST state, both persisted to the Clock Store's
// NVRAM. spec.md names this surface out of scope; it is captured here
// only as a dependency boundary for a future concrete implementation.
type Editor interface {
	SetGMTOffsetHours(hours int8) error
	SetDSTState(state clockstore.DSTState) error
}

// DebugWriter receives one formatted diagnostic line per committed
// minute frame. It is the "serial debug text output" external
// collaborator named in spec.md §1.
type DebugWriter interface {
	WriteDebugLine(line string) error
}
