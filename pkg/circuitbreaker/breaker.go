package circuitbreaker

import (
	"sync"
	"time"
)

// CircuitBreaker guards the settlement path against hammering a degraded
// chain endpoint. Repeated submission failures inside a rolling window trip
// the circuit; after the reset timeout it closes again.
type CircuitBreaker struct {
	enabled      bool
	threshold    int
	window       time.Duration
	resetTimeout time.Duration

	mu           sync.Mutex
	failureCount int
	lastFailure  time.Time
	tripped      bool
	trippedAt    time.Time
}

// New creates a circuit breaker. A disabled breaker never opens.
func New(enabled bool, threshold int, window, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		enabled:      enabled,
		threshold:    threshold,
		window:       window,
		resetTimeout: resetTimeout,
	}
}

// Allow reports whether a submission may proceed.
func (cb *CircuitBreaker) Allow() bool {
	if !cb.enabled {
		return true
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.tripped && time.Since(cb.trippedAt) > cb.resetTimeout {
		cb.tripped = false
		cb.failureCount = 0
	}
	return !cb.tripped
}

// RecordFailure notes a failed submission and returns true if the circuit is
// now open.
func (cb *CircuitBreaker) RecordFailure() bool {
	if !cb.enabled {
		return false
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()

	if cb.tripped {
		if time.Since(cb.trippedAt) > cb.resetTimeout {
			cb.tripped = false
			cb.failureCount = 0
		} else {
			return true
		}
	}

	// Failures outside the window do not accumulate.
	if time.Since(cb.lastFailure) > cb.window {
		cb.failureCount = 0
	}

	cb.failureCount++
	cb.lastFailure = now

	if cb.failureCount >= cb.threshold {
		cb.tripped = true
		cb.trippedAt = now
		return true
	}
	return false
}

// RecordSuccess resets the failure count after a clean submission.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failureCount = 0
	cb.tripped = false
}

// IsOpen returns true if the circuit is open (tripped).
func (cb *CircuitBreaker) IsOpen() bool {
	if !cb.enabled {
		return false
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.tripped && time.Since(cb.trippedAt) > cb.resetTimeout {
		cb.tripped = false
		cb.failureCount = 0
	}
	return cb.tripped
}

// Reset force-closes the circuit and clears the failure count.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failureCount = 0
	cb.tripped = false
}

// State returns the current failure count and trip status.
func (cb *CircuitBreaker) State() (failureCount int, tripped bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failureCount, cb.tripped
}
