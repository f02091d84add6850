package wwvb

import "sync"

// snrRing is the ring buffer of the last N peak-to-peak inter-edge
// intervals described in §3. It is updated by C2 on every pulse and
// polled by the (external, interface-only) display loop, so reads and
// writes go through a dedicated mutex — the same "small critical
// section around a shared snapshot" shape as the teacher's
// dwgps_info_t/s_gps_mutex pair in dwgps.go.
type snrRing struct {
	mu      sync.Mutex
	samples []int
	next    int
	filled  int
	cfg     Config
}

func newSNRRing(cfg Config) *snrRing {
	return &snrRing{
		samples: make([]int, cfg.SNRWindowSize),
		cfg:     cfg,
	}
}

// add records a new inter-edge interval in milliseconds.
func (r *snrRing) add(intervalMS int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples[r.next] = intervalMS
	r.next = (r.next + 1) % len(r.samples)
	if r.filled < len(r.samples) {
		r.filled++
	}
}

// bar returns the current 0-3 signal-quality indicator, computed from
// exactly the last N intervals recorded (fewer, if the ring has not
// yet filled since startup).
func (r *snrRing) bar() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.filled == 0 {
		return 0
	}
	sum := 0
	for i := 0; i < r.filled; i++ {
		sum += r.samples[i]
	}
	mean := sum / r.filled
	deviation := mean - 1000
	if deviation < 0 {
		deviation = -deviation
	}
	return r.cfg.SNRBar(deviation)
}
