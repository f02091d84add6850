package wwvb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reading(symbol Symbol, edge time.Time) BitReading {
	return BitReading{Symbol: symbol, EdgeTime: edge, PhaseValid: true}
}

func TestAwaitTopOfMinuteLocksOnTwoMarkers(t *testing.T) {
	base := time.Date(2026, 7, 31, 14, 4, 59, 0, time.UTC)
	src := &fakeBitSource{readings: []BitReading{
		reading(Marker, base),
		reading(Marker, base.Add(time.Second)),
	}}

	fs := NewFrameSynchronizer(src, testLogger())
	top, leap, err := fs.AwaitTopOfMinute(LeapSecondContext{}, time.Millisecond)
	require.NoError(t, err)
	assert.False(t, leap)
	assert.Equal(t, base.Add(time.Second), top)
}

func TestAwaitTopOfMinuteIgnoresSpuriousMarkerThenLocks(t *testing.T) {
	base := time.Date(2026, 7, 31, 14, 4, 55, 0, time.UTC)
	src := &fakeBitSource{readings: []BitReading{
		reading(Marker, base), // spurious single marker, not followed by a second one
		reading(Zero, base.Add(time.Second)),
		reading(Marker, base.Add(5*time.Second)),
		reading(Marker, base.Add(6*time.Second)),
	}}

	fs := NewFrameSynchronizer(src, testLogger())
	top, leap, err := fs.AwaitTopOfMinute(LeapSecondContext{}, time.Millisecond)
	require.NoError(t, err)
	assert.False(t, leap)
	assert.Equal(t, base.Add(6*time.Second), top)
}

func TestAwaitTopOfMinuteLeapSecondRequiresThirdMarker(t *testing.T) {
	base := time.Date(2026, 6, 30, 23, 59, 58, 0, time.UTC)
	src := &fakeBitSource{readings: []BitReading{
		reading(Marker, base),
		reading(Marker, base.Add(time.Second)),
		reading(Marker, base.Add(2*time.Second)),
	}}

	ctx := LeapSecondContext{LeapSecondPending: true, LastDayOfMonth: true, Hour: 23, Minute: 59}
	fs := NewFrameSynchronizer(src, testLogger())
	top, leap, err := fs.AwaitTopOfMinute(ctx, time.Millisecond)
	require.NoError(t, err)
	assert.True(t, leap)
	assert.Equal(t, base.Add(2*time.Second), top)
}

// A spurious break in the three-marker leap-second sequence must
// restart the search; the expectation of a third marker is carried by
// ctx for the whole call, so the synchronizer still waits out a full
// fresh three-marker sequence rather than settling for two.
func TestAwaitTopOfMinuteLeapSecondRestartsAfterBrokenSequence(t *testing.T) {
	base := time.Date(2026, 6, 30, 23, 59, 58, 0, time.UTC)
	src := &fakeBitSource{readings: []BitReading{
		reading(Marker, base),
		reading(Marker, base.Add(time.Second)),
		reading(Zero, base.Add(2*time.Second)), // third marker fails to appear
		reading(Marker, base.Add(3*time.Second)),
		reading(Marker, base.Add(4*time.Second)),
		reading(Marker, base.Add(5*time.Second)), // third marker succeeds this time
	}}

	ctx := LeapSecondContext{LeapSecondPending: true, LastDayOfMonth: true, Hour: 23, Minute: 59}
	fs := NewFrameSynchronizer(src, testLogger())
	top, leap, err := fs.AwaitTopOfMinute(ctx, time.Millisecond)
	require.NoError(t, err)
	assert.True(t, leap)
	assert.Equal(t, base.Add(5*time.Second), top)
}
