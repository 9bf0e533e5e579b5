package settlement

import (
	"sync"

	"github.com/settlex-hq/settlex-settler/pkg/models"
)

// Tracker maintains per-employee confirmation state for one batch run.
// States only move forward: waiting -> processing -> confirmed/failed.
// A Reset starts a fresh run with every intent back at waiting.
type Tracker struct {
	mu     sync.Mutex
	states map[int]models.SettlementState
	order  []int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{states: make(map[int]models.SettlementState)}
}

// Reset initializes all intents to waiting for a new batch run.
func (t *Tracker) Reset(intents []models.PaymentIntent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.states = make(map[int]models.SettlementState, len(intents))
	t.order = t.order[:0]
	for _, intent := range intents {
		t.states[intent.EmployeeID] = models.StateWaiting
		t.order = append(t.order, intent.EmployeeID)
	}
}

// MarkProcessing moves every waiting intent to processing.
func (t *Tracker) MarkProcessing() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, state := range t.states {
		if state == models.StateWaiting {
			t.states[id] = models.StateProcessing
		}
	}
}

// Complete moves every processing intent to its terminal state. Since the
// batch transaction is atomic, all intents land on the same side.
func (t *Tracker) Complete(success bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	terminal := models.StateFailed
	if success {
		terminal = models.StateConfirmed
	}
	for id, state := range t.states {
		if state == models.StateProcessing {
			t.states[id] = terminal
		}
	}
}

// State returns the current state for one intent.
func (t *Tracker) State(employeeID int) models.SettlementState {
	t.mu.Lock()
	defer t.mu.Unlock()

	if state, ok := t.states[employeeID]; ok {
		return state
	}
	return models.StateWaiting
}

// Snapshot returns a copy of all tracked states.
func (t *Tracker) Snapshot() map[int]models.SettlementState {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[int]models.SettlementState, len(t.states))
	for id, state := range t.states {
		out[id] = state
	}
	return out
}

// ConfirmedCount returns how many intents reached confirmed.
func (t *Tracker) ConfirmedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, state := range t.states {
		if state == models.StateConfirmed {
			n++
		}
	}
	return n
}
