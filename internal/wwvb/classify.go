package wwvb

import (
	"time"

	"github.com/charmbracelet/log"
)

// BitClassifier is C2: it consumes pulses from C1, classifies each by
// width per the table in §4.2, and maintains the SNR ring from the
// inter-edge interval. It blocks cooperatively on new pulses, polling
// C1's publication sequence number roughly every millisecond, matching
// the "poll interval ~1ms" suspension contract of §5.
type BitClassifier struct {
	cfg     Config
	capture *PulseCapture
	snr     *snrRing
	logger  *log.Logger

	lastSeq      uint64
	lastEdgeTime time.Time
	haveLast     bool
}

func NewBitClassifier(cfg Config, capture *PulseCapture, logger *log.Logger) *BitClassifier {
	return &BitClassifier{
		cfg:     cfg,
		capture: capture,
		snr:     newSNRRing(cfg),
		logger:  logger,
	}
}

// classifyWidth implements the table in §4.2 and the boundary
// behavior required by §8 (231ms -> INVALID, 530ms -> ONE, 830ms ->
// MARKER, 831ms -> INVALID).
func classifyWidth(widthMS int) Symbol {
	switch {
	case widthMS >= 150 && widthMS <= 230:
		return Zero
	case widthMS >= 450 && widthMS <= 530:
		return One
	case widthMS >= 650 && widthMS <= 830:
		return Marker
	default:
		return Invalid
	}
}

// NextBit blocks until a new pulse has been published by C1, filters
// pulses shorter than the noise floor (retrying rather than surfacing
// them), classifies the survivor, and updates the SNR ring. It has no
// cancellation: it returns only once such a pulse arrives.
func (c *BitClassifier) NextBit(pollEvery time.Duration) BitReading {
	for {
		sample, ok := c.waitForNext(pollEvery)
		if !ok {
			continue
		}
		if sample.WidthMS < c.cfg.NoiseFloorMS {
			// Noise: §4.2 says pulses shorter than 150ms are ignored
			// upstream of classification, not surfaced as INVALID.
			continue
		}
		return c.classify(sample)
	}
}

// waitForNext polls PulseCapture's sequence counter until it advances,
// then returns the new sample.
func (c *BitClassifier) waitForNext(pollEvery time.Duration) (PulseSample, bool) {
	sample, seq := c.capture.Latest()
	if seq == c.lastSeq {
		time.Sleep(pollEvery)
		return PulseSample{}, false
	}
	c.lastSeq = seq
	return sample, true
}

func (c *BitClassifier) classify(sample PulseSample) BitReading {
	symbol := classifyWidth(sample.WidthMS)

	var phaseValid bool
	if c.haveLast {
		delta := sample.EdgeTime.Sub(c.lastEdgeTime)
		c.snr.add(int(delta / time.Millisecond))
		deviation := int(delta/time.Millisecond) - 1000
		if deviation < 0 {
			deviation = -deviation
		}
		phaseValid = deviation <= c.cfg.PhaseToleranceMS
	}
	c.lastEdgeTime = sample.EdgeTime
	c.haveLast = true

	if symbol == Invalid {
		c.logger.Warn("invalid pulse width", "width_ms", sample.WidthMS)
		return BitReading{Symbol: Invalid, PhaseValid: false}
	}

	return BitReading{Symbol: symbol, EdgeTime: sample.EdgeTime, PhaseValid: phaseValid}
}

// SNRBar returns the current 0-3 signal-quality indicator (§3).
func (c *BitClassifier) SNRBar() int {
	return c.snr.bar()
}
