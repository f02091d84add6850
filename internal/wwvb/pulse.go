package wwvb

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/warthog618/go-gpiocdev"
)

// PulseCapture is C1: it measures the width of each negative pulse on
// the WWVB receiver's GPIO line and publishes the (edge_time, width_ms)
// pair atomically, per §4.1. It runs as W1 (§5), driven by the kernel's
// gpiocdev edge-event notifications rather than a busy poll loop, but
// exposes the same "publish under a lock, read under a lock" contract
// the spec requires of any implementation.
type PulseCapture struct {
	logger *log.Logger

	mu        sync.RWMutex
	latest    PulseSample
	seq       uint64
	fallTime  time.Time
	haveFall  bool
	haveEpoch bool
	epochWall time.Time
	epochMono time.Duration

	line pulseLine
}

// pulseLine is the subset of *gpiocdev.Line this package depends on,
// so tests can substitute a fake without a real GPIO chip.
type pulseLine interface {
	Close() error
}

// NewPulseCapture requests both-edges notifications on chipName/offset
// and begins publishing pulse samples. A failure to acquire the line is
// the PulseCaptureStartFailed fatal condition of §7.
func NewPulseCapture(chipName string, offset int, logger *log.Logger) (*PulseCapture, error) {
	pc := &PulseCapture{logger: logger}

	line, err := gpiocdev.RequestLine(chipName, offset,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(pc.handleEdge),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: chip=%s offset=%d: %v", ErrPulseCaptureStartFailed, chipName, offset, err)
	}
	pc.line = line
	return pc, nil
}

// handleEdge is invoked by gpiocdev on its own goroutine for every
// edge event. It implements the algorithm in §4.1: a falling edge
// records edge_time; the following rising edge computes width_ms and
// publishes the pair.
func (pc *PulseCapture) handleEdge(evt gpiocdev.LineEvent) {
	pc.mu.Lock()
	if !pc.haveEpoch {
		pc.epochWall = time.Now()
		pc.epochMono = evt.Timestamp
		pc.haveEpoch = true
	}
	ts := pc.epochWall.Add(evt.Timestamp - pc.epochMono)
	pc.mu.Unlock()

	switch evt.Type {
	case gpiocdev.LineEventFallingEdge:
		pc.mu.Lock()
		pc.fallTime = ts
		pc.haveFall = true
		pc.mu.Unlock()

	case gpiocdev.LineEventRisingEdge:
		pc.mu.Lock()
		if !pc.haveFall {
			pc.mu.Unlock()
			return
		}
		width := ts.Sub(pc.fallTime)
		pc.latest = PulseSample{
			EdgeTime: pc.fallTime,
			WidthMS:  int(width / time.Millisecond),
		}
		pc.seq++
		pc.haveFall = false
		pc.mu.Unlock()
		pc.logger.Debug("pulse captured", "width_ms", pc.latest.WidthMS)
	}
}

// Latest returns the most recently published pulse sample and its
// sequence number, read atomically under the capture's lock (§4.1).
func (pc *PulseCapture) Latest() (sample PulseSample, seq uint64) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.latest, pc.seq
}

// Close releases the underlying GPIO line.
func (pc *PulseCapture) Close() error {
	if pc.line == nil {
		return nil
	}
	return pc.line.Close()
}
