package wwvb

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/andrewsil1/wwvbclock/internal/calendar"
	"github.com/andrewsil1/wwvbclock/internal/clockstore"
)

// Engine wires C1-C5 into the three long-lived workers plus scratch
// workers described in §5. W1 (PulseCapture) runs on gpiocdev's own
// event-handler goroutine; Engine.Run is W2 (the C2->C3->C4->C5
// straight-line loop); the caller runs clockstore.Store.Run as W3.
type Engine struct {
	cfg        Config
	capture    *PulseCapture
	classifier *BitClassifier
	sync       *FrameSynchronizer
	accumulate *FrameAccumulator
	decode     *FrameDecoder
	store      *clockstore.Store
	dst        *DSTMachine
	logger     *log.Logger

	pollEvery time.Duration

	scratchSlots chan struct{}
}

// NewEngine assembles the pipeline. capture must already be started.
func NewEngine(cfg Config, capture *PulseCapture, store *clockstore.Store, logger *log.Logger) *Engine {
	classifier := NewBitClassifier(cfg, capture, logger)
	return &Engine{
		cfg:          cfg,
		capture:      capture,
		classifier:   classifier,
		sync:         NewFrameSynchronizer(classifier, logger),
		accumulate:   NewFrameAccumulator(cfg, classifier, logger),
		decode:       NewFrameDecoder(logger),
		store:        store,
		dst:          NewDSTMachine(),
		logger:       logger,
		pollEvery:    time.Millisecond,
		scratchSlots: make(chan struct{}, cfg.ScratchWorkerLimit),
	}
}

// SNRBar exposes the current 0-3 signal-quality indicator for the
// (external, interface-only) display loop.
func (e *Engine) SNRBar() int {
	return e.classifier.SNRBar()
}

// ClockValid mirrors the Clock Store's flag for display purposes (§7).
func (e *Engine) ClockValid() bool {
	return e.store.ClockValid()
}

// Run is W2: it loops SEARCHING -> LOCKED -> accumulate -> decode ->
// commit forever, returning only on a fatal error (§7) or when stop is
// closed.
func (e *Engine) Run(stop <-chan struct{}) error {
	leapCtx := LeapSecondContext{}
	prevDUTSign := DUTInvalid
	prevDUTTenths := 0

	for {
		select {
		case <-stop:
			return nil
		default:
		}

		topOfMinute, leapSecond, err := e.sync.AwaitTopOfMinute(leapCtx, e.pollEvery)
		if err != nil {
			// AwaitTopOfMinute only returns err on loop cancellation in
			// future extensions; treat as a clean stop.
			return nil
		}

		if err := e.spawnResync(topOfMinute, prevDUTSign, prevDUTTenths, leapSecond); err != nil {
			return err
		}

		frame, err := e.accumulate.CollectFrame(topOfMinute, e.pollEvery)
		if err != nil {
			e.logger.Warn("minute frame rejected, resuming search", "err", err)
			leapCtx = LeapSecondContext{}
			continue
		}

		decoded, err := e.decode.Decode(frame)
		if err != nil {
			e.logger.Warn("decoded frame rejected, resuming search", "err", err)
			leapCtx = LeapSecondContext{}
			continue
		}

		if err := e.commit(decoded); err != nil {
			e.logger.Warn("commit rejected, resuming search", "err", err)
			leapCtx = LeapSecondContext{}
			continue
		}

		leapCtx = LeapSecondContext{
			LeapSecondPending: decoded.LeapSecondPending,
			LastDayOfMonth:    isLastDayOfMonth(decoded),
			Hour:              decoded.Hour,
			Minute:            decoded.Minute,
		}
		prevDUTSign = decoded.DUTSign
		prevDUTTenths = decoded.DUTTenths
	}
}

// isLastDayOfMonth re-derives month/day from the decoded frame to
// evaluate the leap-second special case's "last_day_of_month"
// predicate (§4.3), without needing the Clock Store's committed month.
func isLastDayOfMonth(decoded DecodedTime) bool {
	month, day, err := DayOfYearToMonthDay(decoded.DayOfYear, decoded.LeapYear)
	if err != nil {
		return false
	}
	return day == calendar.DaysInMonth(month, decoded.LeapYear)
}

// commit implements §4.5's Commit/Failure rules: an invalid DUT sign
// does not reject the frame (DUT treated as zero); any other anomaly
// (already filtered by Decode) would have rejected upstream. commit
// additionally applies the canonical DST state machine (§9, SPEC_FULL
// §12) against local time before writing the Clock Store.
func (e *Engine) commit(decoded DecodedTime) error {
	cal, err := CommitDecodedTime(decoded, 0)
	if err != nil {
		return err
	}

	gmtOffset, err := e.store.GMTOffsetHours()
	if err != nil {
		gmtOffset = 0
	}
	local := applyGMTOffset(cal, gmtOffset)
	adjusted, effectiveDST := e.dst.Apply(decoded.DSTState, local)

	// ClockStoreBusy (§7): await READ before issuing WRITE_DATE_TIME.
	err = e.store.WriteDateTime(adjusted)
	for err == clockstore.ErrBusy {
		time.Sleep(e.pollEvery)
		err = e.store.WriteDateTime(adjusted)
	}
	if err != nil {
		return err
	}
	if err := e.store.SetDSTState(effectiveDST); err != nil {
		e.logger.Warn("failed to persist DST state", "err", err)
	}
	return nil
}

// spawnResync implements §4.3's side effect: schedule a one-shot
// scratch worker that waits Δ = 205ms + DUT-tenths*100ms (clamped
// positive) and then issues SYNC_SECONDS. Running out of scratch
// worker capacity is the fatal WorkerSpawnFailed condition of §7.
func (e *Engine) spawnResync(topOfMinute time.Time, dutSign DUTSign, dutTenths int, leapSecond bool) error {
	select {
	case e.scratchSlots <- struct{}{}:
	default:
		return ErrWorkerSpawnFailed
	}

	deltaMS, seconds := resyncPlan(e.cfg, dutSign, dutTenths, leapSecond)

	go func() {
		defer func() { <-e.scratchSlots }()
		time.Sleep(time.Duration(deltaMS) * time.Millisecond)
		if err := e.store.SyncSeconds(seconds); err != nil {
			e.logger.Error("resync failed", "err", err)
		}
	}()
	return nil
}

// resyncPlan computes §4.3's Δ = ResyncBaseDelayMS + DUTSign*tenths*100ms
// and the SYNC_SECONDS argument it is paired with. A negative Δ is
// carried forward into whole seconds until positive, and that carry is
// added to the seconds argument (60 during a pending leap second, 1
// otherwise) so the scratch worker always sleeps a non-negative delay.
func resyncPlan(cfg Config, dutSign DUTSign, dutTenths int, leapSecond bool) (deltaMS int, seconds int) {
	deltaMS = cfg.ResyncBaseDelayMS + int(dutSign)*dutTenths*100
	carry := 0
	for deltaMS <= 0 {
		deltaMS += 1000
		carry++
	}
	seconds = 1 + carry
	if leapSecond {
		seconds = 60 + carry
	}
	return deltaMS, seconds
}

// applyGMTOffset converts a UTC CalendarTime to local time, using the
// standard library's calendar-rollover arithmetic (time.Time) rather
// than a bespoke offset-with-carry implementation; this is a generic
// date operation, not WWVB-specific BCD logic.
func applyGMTOffset(cal clockstore.CalendarTime, gmtOffsetHours int8) clockstore.CalendarTime {
	t := time.Date(cal.Year, time.Month(cal.Month), cal.Day, cal.Hour, cal.Minute, cal.Second, 0, time.UTC)
	t = t.Add(time.Duration(gmtOffsetHours) * time.Hour)
	return clockstore.CalendarTime{
		Year:    t.Year(),
		Month:   int(t.Month()),
		Day:     t.Day(),
		Weekday: int(t.Weekday()),
		Hour:    t.Hour(),
		Minute:  t.Minute(),
		Second:  t.Second(),
	}
}
