// Package clockstore implements the Clock Store external collaborator
// described in spec.md §4.6 and §6: the temperature-compensated RTC
// chip that holds calendar time, DST state, and GMT offset across
// power cycles, fronted by a single-slot command mailbox.
package clockstore

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Command is the Clock Store's single-slot mailbox command (§6).
type Command int

const (
	CmdRead           Command = 0
	CmdWriteDateTime  Command = 1
	CmdSyncSeconds    Command = 2
)

func (c Command) String() string {
	switch c {
	case CmdRead:
		return "READ"
	case CmdWriteDateTime:
		return "WRITE_DATE_TIME"
	case CmdSyncSeconds:
		return "SYNC_SECONDS"
	default:
		return "UNKNOWN"
	}
}

// DSTState is the wire/NVRAM encoding of daylight-saving status (§6):
// 0 STANDARD, 1 ENDING, 2 STARTING, 3 ENABLED.
type DSTState uint8

const (
	DSTStandard DSTState = 0
	DSTEnding   DSTState = 1
	DSTStarting DSTState = 2
	DSTEnabled  DSTState = 3
)

func (s DSTState) String() string {
	switch s {
	case DSTStandard:
		return "STANDARD"
	case DSTEnding:
		return "ENDING"
	case DSTStarting:
		return "STARTING"
	case DSTEnabled:
		return "ENABLED"
	default:
		return "UNKNOWN"
	}
}

// CalendarTime is the civil calendar representation held by the Clock
// Store (§3). SyncSeconds writes only Second; WriteDateTime writes
// every field except Second, which C3's resync owns (§4.5 Commit).
type CalendarTime struct {
	Year    int
	Month   int
	Day     int
	Weekday int
	Hour    int
	Minute  int
	Second  int
}

// RTC is the low-level transport to the physical chip: an external
// collaborator per §1 (the engine never speaks I2C directly). A real
// implementation backs this with an I2C bus (see i2c.go); tests use an
// in-memory fake.
type RTC interface {
	// ReadCalendar and WriteCalendar move whole calendar records
	// to/from chip registers.
	ReadCalendar() (CalendarTime, error)
	WriteCalendar(CalendarTime) error
	// WriteSeconds sets only the seconds register, for the top-of-minute
	// resync (§4.3's SYNC_SECONDS).
	WriteSeconds(seconds int) error
	// ReadNVRAM/WriteNVRAM access the persisted DST state and GMT
	// offset (§6's NVRAM layout).
	ReadNVRAM() ([5]byte, error)
	WriteNVRAM([5]byte) error
	// OscillatorFailed reports the chip's "clock invalid" condition
	// (the Open Question in §9 treats OSF/aging-register handling as
	// silicon-specific; this boolean is the entire abstract contract).
	OscillatorFailed() (bool, error)
}

// Store is the Clock Store: mailbox, lock, and NVRAM-backed DST/GMT
// state, autonomously synced to the hardware RTC by its own worker
// (W3, §5).
type Store struct {
	mu      sync.Mutex
	command Command
	pending CalendarTime
	current CalendarTime

	clockValid bool

	rtc          RTC
	logger       *log.Logger
	readInterval time.Duration
}

// New constructs a Store backed by rtc. It does not start W3; call Run
// in its own goroutine to begin autonomous RTC servicing.
func New(rtc RTC, logger *log.Logger) *Store {
	return &Store{rtc: rtc, command: CmdRead, logger: logger, readInterval: 500 * time.Millisecond}
}

// Command returns the current mailbox command under lock.
func (s *Store) Command() Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.command
}

// WriteDateTime is the store side of §5's ordering rule: it accepts the
// command only while the mailbox is READ and otherwise returns ErrBusy
// at once without waiting; callers retry until the mailbox is READ.
// It blocks the caller's own goroutine only on the lock, never on I2C.
func (s *Store) WriteDateTime(t CalendarTime) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.command != CmdRead {
		return ErrBusy
	}
	t.Second = s.current.Second // C3's resync owns seconds (§4.5 Commit)
	s.pending = t
	s.command = CmdWriteDateTime
	return nil
}

// SyncSeconds issues the one-shot resync command from C3 (§4.3),
// setting the calendar's second field to seconds (which may exceed 59
// during a leap-second minute, per §8 scenario 6; the cached value
// holds until the next READ replaces it with what the RTC reports, and
// I2CRTC stores the seconds register modulo 60).
func (s *Store) SyncSeconds(seconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.command != CmdRead {
		return ErrBusy
	}
	s.pending = s.current
	s.pending.Second = seconds
	s.command = CmdSyncSeconds
	return nil
}

// ClockValid reports whether any frame has been successfully decoded
// and committed since boot (§7).
func (s *Store) ClockValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clockValid
}

// Current returns the most recently read calendar snapshot.
func (s *Store) Current() CalendarTime {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// GMTOffsetHours reads the NVRAM-persisted GMT offset.
func (s *Store) GMTOffsetHours() (int8, error) {
	raw, err := s.rtc.ReadNVRAM()
	if err != nil {
		return 0, err
	}
	return DecodeNVRAM(raw).GMTOffsetHours, nil
}

// SetGMTOffsetHours persists a new GMT offset, preserving DST state.
func (s *Store) SetGMTOffsetHours(hours int8) error {
	raw, err := s.rtc.ReadNVRAM()
	if err != nil {
		return err
	}
	nv := DecodeNVRAM(raw)
	nv.GMTOffsetHours = hours
	return s.rtc.WriteNVRAM(nv.Encode())
}

// DSTState reads the NVRAM-persisted DST state.
func (s *Store) DSTState() (DSTState, error) {
	raw, err := s.rtc.ReadNVRAM()
	if err != nil {
		return DSTStandard, err
	}
	return DecodeNVRAM(raw).DSTState, nil
}

// SetDSTState persists a new DST state, preserving the GMT offset.
// This is the NVRAM write named in §4.5's commit step.
func (s *Store) SetDSTState(state DSTState) error {
	raw, err := s.rtc.ReadNVRAM()
	if err != nil {
		return err
	}
	nv := DecodeNVRAM(raw)
	nv.DSTState = state
	return s.rtc.WriteNVRAM(nv.Encode())
}

// Run is W3 (§5): it autonomously services the mailbox, performing the
// I2C transaction for whichever command is pending and returning the
// mailbox to READ when done. It suspends only inside the I2C call, per
// §5's suspension-point rule.
func (s *Store) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}

		s.mu.Lock()
		cmd := s.command
		pending := s.pending
		s.mu.Unlock()

		switch cmd {
		case CmdRead:
			t, err := s.rtc.ReadCalendar()
			if err != nil {
				s.logger.Error("RTC read failed", "err", err)
				continue
			}
			s.mu.Lock()
			s.current = t
			s.mu.Unlock()
			time.Sleep(s.readInterval)

		case CmdWriteDateTime:
			if err := s.rtc.WriteCalendar(pending); err != nil {
				s.logger.Error("RTC write failed", "err", err)
			} else {
				s.mu.Lock()
				s.current = pending
				s.clockValid = true
				s.mu.Unlock()
			}
			s.mu.Lock()
			s.command = CmdRead
			s.mu.Unlock()

		case CmdSyncSeconds:
			if err := s.rtc.WriteSeconds(pending.Second); err != nil {
				s.logger.Error("RTC seconds sync failed", "err", err)
			} else {
				s.mu.Lock()
				s.current.Second = pending.Second
				s.mu.Unlock()
			}
			s.mu.Lock()
			s.command = CmdRead
			s.mu.Unlock()
		}
	}
}

// ErrBusy is ClockStoreBusy from §7: the mailbox was not READ when a
// caller tried to issue a new command.
var ErrBusy = fmt.Errorf("clockstore: mailbox busy")
