package clockstore

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestStore() (*Store, *MemRTC) {
	rtc := NewMemRTC()
	s := New(rtc, testLogger())
	s.readInterval = time.Millisecond
	return s, rtc
}

func TestWriteDateTimePreservesSeconds(t *testing.T) {
	s, rtc := newTestStore()
	stop := make(chan struct{})
	go s.Run(stop)
	defer close(stop)

	require.Eventually(t, func() bool { return s.Command() == CmdRead }, time.Second, time.Millisecond)

	rtc.WriteCalendar(CalendarTime{Year: 2026, Month: 7, Day: 31, Second: 42})
	require.Eventually(t, func() bool { return s.Current().Second == 42 }, time.Second, time.Millisecond)

	err := s.WriteDateTime(CalendarTime{Year: 2027, Month: 1, Day: 1, Hour: 3, Minute: 15, Second: 59})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return s.ClockValid() }, time.Second, time.Millisecond)
	assert.Equal(t, 42, s.Current().Second, "WriteDateTime must not overwrite the seconds field")
	assert.Equal(t, 2027, s.Current().Year)
}

func TestWriteDateTimeBusyWhileCommandPending(t *testing.T) {
	s, _ := newTestStore()
	s.command = CmdWriteDateTime // simulate a command already in flight
	err := s.WriteDateTime(CalendarTime{Year: 2026})
	assert.ErrorIs(t, err, ErrBusy)
}

func TestSyncSecondsAcceptsValueAboveFiftyNineDuringLeapSecond(t *testing.T) {
	s, _ := newTestStore()
	stop := make(chan struct{})
	go s.Run(stop)
	defer close(stop)

	require.Eventually(t, func() bool { return s.Command() == CmdRead }, time.Second, time.Millisecond)
	err := s.SyncSeconds(60)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return s.Current().Second == 60 }, time.Second, time.Millisecond)
}

func TestGMTOffsetAndDSTStatePersistIndependently(t *testing.T) {
	s, _ := newTestStore()
	require.NoError(t, s.SetGMTOffsetHours(-5))
	require.NoError(t, s.SetDSTState(DSTEnabled))

	offset, err := s.GMTOffsetHours()
	require.NoError(t, err)
	assert.Equal(t, int8(-5), offset)

	state, err := s.DSTState()
	require.NoError(t, err)
	assert.Equal(t, DSTEnabled, state)

	// Changing the offset must not disturb the previously persisted DST state.
	require.NoError(t, s.SetGMTOffsetHours(-8))
	state, err = s.DSTState()
	require.NoError(t, err)
	assert.Equal(t, DSTEnabled, state)
}

func TestCommandStringers(t *testing.T) {
	assert.Equal(t, "READ", CmdRead.String())
	assert.Equal(t, "WRITE_DATE_TIME", CmdWriteDateTime.String())
	assert.Equal(t, "SYNC_SECONDS", CmdSyncSeconds.String())
}

func TestDSTStateStringers(t *testing.T) {
	assert.Equal(t, "STANDARD", DSTStandard.String())
	assert.Equal(t, "ENDING", DSTEnding.String())
	assert.Equal(t, "STARTING", DSTStarting.String())
	assert.Equal(t, "ENABLED", DSTEnabled.String())
}
