package circuitbreaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreakerTripsAtThreshold(t *testing.T) {
	cb := New(true, 3, time.Minute, time.Minute)

	assert.True(t, cb.Allow())
	assert.False(t, cb.RecordFailure())
	assert.False(t, cb.RecordFailure())
	assert.True(t, cb.RecordFailure())

	assert.True(t, cb.IsOpen())
	assert.False(t, cb.Allow())
}

func TestBreakerSuccessResets(t *testing.T) {
	cb := New(true, 3, time.Minute, time.Minute)

	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()

	count, tripped := cb.State()
	assert.Equal(t, 0, count)
	assert.False(t, tripped)

	// The window starts over after a success.
	assert.False(t, cb.RecordFailure())
	assert.False(t, cb.RecordFailure())
}

func TestBreakerResetTimeout(t *testing.T) {
	cb := New(true, 1, time.Minute, 10*time.Millisecond)

	cb.RecordFailure()
	assert.False(t, cb.Allow())

	time.Sleep(20 * time.Millisecond)
	assert.True(t, cb.Allow())
	assert.False(t, cb.IsOpen())
}

func TestBreakerWindowExpiry(t *testing.T) {
	cb := New(true, 2, 10*time.Millisecond, time.Minute)

	cb.RecordFailure()
	time.Sleep(20 * time.Millisecond)

	// The first failure fell out of the window, so this one does not trip.
	assert.False(t, cb.RecordFailure())
	assert.False(t, cb.IsOpen())
}

func TestBreakerDisabledNeverOpens(t *testing.T) {
	cb := New(false, 1, time.Minute, time.Minute)

	assert.False(t, cb.RecordFailure())
	assert.False(t, cb.RecordFailure())
	assert.True(t, cb.Allow())
	assert.False(t, cb.IsOpen())
}

func TestBreakerManualReset(t *testing.T) {
	cb := New(true, 1, time.Minute, time.Hour)

	cb.RecordFailure()
	assert.True(t, cb.IsOpen())

	cb.Reset()
	assert.False(t, cb.IsOpen())
	assert.True(t, cb.Allow())
}
