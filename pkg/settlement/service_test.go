package settlement

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/settlex-hq/settlex-settler/pkg/circuitbreaker"
	"github.com/settlex-hq/settlex-settler/pkg/config"
	"github.com/settlex-hq/settlex-settler/pkg/logger"
	"github.com/settlex-hq/settlex-settler/pkg/models"
	"github.com/settlex-hq/settlex-settler/pkg/tokens"
)

type recordingHistory struct {
	mu      sync.Mutex
	records []models.PayrollRecord
	err     error
}

func (h *recordingHistory) AppendRecord(record models.PayrollRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.records = append(h.records, record)
	return nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	notified int
	err      error
	done     chan struct{}
}

func (n *recordingNotifier) NotifyBatch(ctx context.Context, intents []models.PaymentIntent, outcome *models.SettlementOutcome) error {
	n.mu.Lock()
	n.notified = len(intents)
	n.mu.Unlock()
	if n.done != nil {
		close(n.done)
	}
	return n.err
}

func newTestService(backend Backend, breaker *circuitbreaker.CircuitBreaker, notifier Notifier, history HistoryRecorder) *Service {
	reg := tokens.NewRegistry()
	builder := NewBuilder(reg, testPayrollAddr, testDEXAddr, config.PayInSource)
	return NewService(ServiceParams{
		Backend:     backend,
		Builder:     builder,
		Submitter:   NewSubmitter(backend, time.Minute, &logger.EmptyLogger{}),
		Registry:    reg,
		Breaker:     breaker,
		Notifier:    notifier,
		History:     history,
		Logger:      &logger.EmptyLogger{},
		SourceToken: "pathUSD",
		AutoSwap:    true,
	})
}

func batchIntents() []models.PaymentIntent {
	return []models.PaymentIntent{
		intent(1, "0x1111111111111111111111111111111111111111", "100", "AlphaUSD"),
		intent(2, "0x2222222222222222222222222222222222222222", "50", "AlphaUSD"),
		intent(3, "0x3333333333333333333333333333333333333333", "30", "pathUSD"),
	}
}

func TestSettleSuccess(t *testing.T) {
	backend := &fakeBackend{receipt: successReceipt()}
	history := &recordingHistory{}
	notifier := &recordingNotifier{done: make(chan struct{})}
	svc := newTestService(backend, nil, notifier, history)

	outcome, err := svc.Settle(context.Background(), batchIntents(), RunOptions{})
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.True(t, outcome.Success)

	for id := 1; id <= 3; id++ {
		assert.Equal(t, models.StateConfirmed, svc.Tracker().State(id))
	}

	// Payment batch first, then the best-effort record transaction.
	require.Len(t, backend.calls, 2)
	assert.Len(t, backend.calls[0], 7)
	require.Len(t, backend.calls[1], 1)
	assert.Equal(t, RoleRecordBatch, backend.calls[1][0].Role)

	// History captured the run.
	history.mu.Lock()
	require.Len(t, history.records, 1)
	assert.Equal(t, 3, history.records[0].Employees)
	assert.Equal(t, "180.000000", history.records[0].Total)
	assert.Equal(t, "completed", history.records[0].Status)
	history.mu.Unlock()

	select {
	case <-notifier.done:
	case <-time.After(2 * time.Second):
		t.Fatal("notifications never dispatched")
	}
	notifier.mu.Lock()
	assert.Equal(t, 3, notifier.notified)
	notifier.mu.Unlock()
}

// A user declining the wallet interaction is not a failure: the run re-arms
// with every intent back at waiting.
func TestSettleUserRejection(t *testing.T) {
	backend := &fakeBackend{err: errors.New("user rejected transaction in wallet")}
	svc := newTestService(backend, nil, nil, nil)

	outcome, err := svc.Settle(context.Background(), batchIntents(), RunOptions{})
	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, ErrUserRejected)

	for id := 1; id <= 3; id++ {
		assert.Equal(t, models.StateWaiting, svc.Tracker().State(id))
	}
	assert.False(t, svc.InFlight())
}

func TestSettleSubmissionFailure(t *testing.T) {
	backend := &fakeBackend{err: errors.New("execution reverted: insufficient allowance")}
	svc := newTestService(backend, nil, nil, nil)

	_, err := svc.Settle(context.Background(), batchIntents(), RunOptions{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserRejected)

	for id := 1; id <= 3; id++ {
		assert.Equal(t, models.StateFailed, svc.Tracker().State(id))
	}
}

func TestSettleEmptyBatch(t *testing.T) {
	svc := newTestService(&fakeBackend{receipt: successReceipt()}, nil, nil, nil)
	_, err := svc.Settle(context.Background(), nil, RunOptions{})
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestSettleSingleFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	backend := &fakeBackend{
		receipt: successReceipt(),
		block: func(ctx context.Context) {
			started <- struct{}{}
			<-release
		},
	}
	svc := newTestService(backend, nil, nil, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = svc.Settle(context.Background(), batchIntents(), RunOptions{})
	}()

	<-started
	assert.True(t, svc.InFlight())

	_, err := svc.Settle(context.Background(), batchIntents(), RunOptions{})
	assert.ErrorIs(t, err, ErrSettlementInProgress)

	close(release)
	wg.Wait()
	assert.False(t, svc.InFlight())
}

func TestSettleCircuitOpen(t *testing.T) {
	breaker := circuitbreaker.New(true, 1, time.Minute, time.Minute)
	breaker.RecordFailure()

	svc := newTestService(&fakeBackend{receipt: successReceipt()}, breaker, nil, nil)
	_, err := svc.Settle(context.Background(), batchIntents(), RunOptions{})
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

// A failing history append or notifier never turns a settled batch into an
// error.
func TestSettleBestEffortTailIsolated(t *testing.T) {
	backend := &fakeBackend{receipt: successReceipt()}
	history := &recordingHistory{err: errors.New("disk full")}
	notifier := &recordingNotifier{err: errors.New("smtp down"), done: make(chan struct{})}
	svc := newTestService(backend, nil, notifier, history)

	outcome, err := svc.Settle(context.Background(), batchIntents(), RunOptions{})
	require.NoError(t, err)
	assert.True(t, outcome.Success)

	select {
	case <-notifier.done:
	case <-time.After(2 * time.Second):
		t.Fatal("notifications never dispatched")
	}
}

func TestSettleRunOptionsOverride(t *testing.T) {
	backend := &fakeBackend{receipt: successReceipt()}
	svc := newTestService(backend, nil, nil, nil)

	off := false
	_, err := svc.Settle(context.Background(), batchIntents(), RunOptions{AutoSwap: &off})
	require.NoError(t, err)

	// Without auto-swap the payment batch has no swap steps.
	require.NotEmpty(t, backend.calls)
	for _, step := range backend.calls[0] {
		assert.NotEqual(t, RoleSwap, step.Role)
		assert.NotEqual(t, RoleApproveSwap, step.Role)
	}
}

func TestNewBatchIDUnique(t *testing.T) {
	employer := common.HexToAddress("0x9999999999999999999999999999999999999999")
	seen := make(map[[32]byte]bool)
	for i := 0; i < 100; i++ {
		id := NewBatchID(employer)
		assert.False(t, seen[id])
		seen[id] = true
	}
}
