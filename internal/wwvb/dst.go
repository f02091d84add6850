package wwvb

import (
	"fmt"
	"sync"

	"github.com/andrewsil1/wwvbclock/internal/clockstore"
)

// DSTMachine is the canonical DST state machine called for by the
// open question in §9: the original firmware checked transitions in
// two places (CheckDST and AdjustForGMT) with subtly different logic
// and an inconsistently referenced "rolledback" flag. This replaces
// both with one state machine and one recorded transition date.
//
// Cycle: STANDARD -> STARTING (broadcast announces the pending spring
// forward) -> at 2:00 local on transition day, skip to 3:00, report
// ENABLED -> ENABLED (steady state) -> ENDING (broadcast announces the
// pending fall back) -> at 2:00 local, repeat the 1:00 hour once,
// report STANDARD -> STANDARD.
type DSTMachine struct {
	mu             sync.Mutex
	lastTransition string // "YYYY-MM-DD" of the last applied spring/fall transition
}

func NewDSTMachine() *DSTMachine {
	return &DSTMachine{}
}

// Apply takes the DST status broadcast in the current frame and the
// local calendar time it applies to, and returns the (possibly
// hour-adjusted) local time plus the effective steady-state DST status
// to persist in NVRAM. It is idempotent per calendar day: a second
// call for the same date does not re-apply the hour skip/repeat.
func (m *DSTMachine) Apply(broadcast clockstore.DSTState, local clockstore.CalendarTime) (clockstore.CalendarTime, clockstore.DSTState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if local.Hour != 2 || local.Minute != 0 {
		return local, broadcast
	}

	key := dateKey(local)
	if m.lastTransition == key {
		return local, broadcast
	}

	switch broadcast {
	case clockstore.DSTStarting:
		local.Hour = 3
		m.lastTransition = key
		return local, clockstore.DSTEnabled
	case clockstore.DSTEnding:
		local.Hour = 1
		m.lastTransition = key
		return local, clockstore.DSTStandard
	default:
		return local, broadcast
	}
}

func dateKey(t clockstore.CalendarTime) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year, t.Month, t.Day)
}
