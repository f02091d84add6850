package wwvb

// Config carries the heuristic constants the original firmware baked
// in as compile-time `#define`s. The open question in §9 flags these
// as properties that should be configuration, not constants; Config is
// that configuration. The zero value holds no usable defaults; the
// spec's defaults come from DefaultConfig.
type Config struct {
	// ToleranceMS bounds how far a bit's leading edge may land from
	// its nominal position within the minute frame before C4 rejects
	// the frame (§3, §4.4).
	ToleranceMS int

	// PhaseToleranceMS bounds how far an edge may land from one second
	// past the previous edge before C2 marks it phase-invalid (§3).
	PhaseToleranceMS int

	// NoiseFloorMS is the minimum pulse width C2 will consider;
	// anything shorter is treated as noise and retried (§4.2).
	NoiseFloorMS int

	// SNRWindowSize is N, the number of trailing inter-edge intervals
	// kept in the SNR ring (§3).
	SNRWindowSize int

	// SNRBuckets maps |1000ms - mean| thresholds (ascending) to a
	// quality bar 3..0. len(SNRBuckets) thresholds yield len+1 bars.
	SNRBuckets []int

	// ResyncBaseDelayMS is the fixed part of the resync wait (§4.3);
	// the DUT1 tenths contribute 100ms each on top of this.
	ResyncBaseDelayMS int

	// ScratchWorkerLimit bounds how many scratch workers (resync,
	// diagnostics) may run concurrently. Exceeding it is the
	// WorkerSpawnFailed fatal condition of §7.
	ScratchWorkerLimit int
}

// DefaultConfig returns the constants named explicitly in spec.md.
func DefaultConfig() Config {
	return Config{
		ToleranceMS:        25,
		PhaseToleranceMS:   50,
		NoiseFloorMS:       150,
		SNRWindowSize:      30,
		SNRBuckets:         []int{100, 400, 700},
		ResyncBaseDelayMS:  205,
		ScratchWorkerLimit: 4,
	}
}

// SNRBar reduces a mean absolute deviation (ms) to the 0-3 quality bar
// described in §3: 0-100 -> 3, 101-400 -> 2, 401-700 -> 1, else -> 0.
func (c Config) SNRBar(deviationMS int) int {
	bar := len(c.SNRBuckets)
	for _, threshold := range c.SNRBuckets {
		if deviationMS <= threshold {
			break
		}
		bar--
	}
	return bar
}
