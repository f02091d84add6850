package wwvb

import (
	"errors"
	"strconv"
)

// Error kinds from §7. NoiseRejected, FrameInvalid, and ClockStoreBusy
// are recovered locally by the caller; WorkerSpawnFailed, RTCAbsent,
// and PulseCaptureStartFailed are fatal and are wrapped so errors.Is
// matches them. WorkerSpawnFailed propagates out of Engine.Run;
// PulseCaptureStartFailed comes from NewPulseCapture and RTCAbsent from
// cmd/wwvbclockd's hardware setup, before the engine starts.
var (
	ErrNoiseRejected           = errors.New("wwvb: pulse rejected as noise")
	ErrFrameInvalid            = errors.New("wwvb: frame structurally invalid")
	ErrClockStoreBusy          = errors.New("wwvb: clock store mailbox not READ")
	ErrWorkerSpawnFailed       = errors.New("wwvb: could not spawn scratch worker")
	ErrRTCAbsent               = errors.New("wwvb: RTC not present at init")
	ErrPulseCaptureStartFailed = errors.New("wwvb: pulse capture hardware unavailable")
)

// FrameInvalidError wraps ErrFrameInvalid with the second at which the
// frame was abandoned, for diagnostics.
type FrameInvalidError struct {
	Sec    int
	Reason string
}

func (e *FrameInvalidError) Error() string {
	return "wwvb: frame invalid at sec=" + strconv.Itoa(e.Sec) + ": " + e.Reason
}

func (e *FrameInvalidError) Unwrap() error { return ErrFrameInvalid }
