package settlement

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/settlex-hq/settlex-settler/pkg/circuitbreaker"
	"github.com/settlex-hq/settlex-settler/pkg/logger"
	"github.com/settlex-hq/settlex-settler/pkg/metrics"
	"github.com/settlex-hq/settlex-settler/pkg/models"
	"github.com/settlex-hq/settlex-settler/pkg/tokens"
)

// Notifier delivers best-effort payment confirmations. Failures are logged
// and never affect the settlement outcome.
type Notifier interface {
	NotifyBatch(ctx context.Context, intents []models.PaymentIntent, outcome *models.SettlementOutcome) error
}

// HistoryRecorder appends resolved runs to the local payroll history.
type HistoryRecorder interface {
	AppendRecord(record models.PayrollRecord) error
}

// Service orchestrates a payroll batch run: partition, call construction,
// atomic submission, per-employee tracking, then the best-effort record and
// notification tail.
type Service struct {
	backend   Backend
	builder   *Builder
	submitter *Submitter
	tracker   *Tracker
	registry  *tokens.Registry
	breaker   *circuitbreaker.CircuitBreaker
	notifier  Notifier
	history   HistoryRecorder
	log       logger.Logger

	sourceToken string
	autoSwap    bool

	// inFlight gates the settle action: one run at a time.
	inFlight atomic.Bool
}

// ServiceParams collects the service's collaborators.
type ServiceParams struct {
	Backend     Backend
	Builder     *Builder
	Submitter   *Submitter
	Registry    *tokens.Registry
	Breaker     *circuitbreaker.CircuitBreaker
	Notifier    Notifier
	History     HistoryRecorder
	Logger      logger.Logger
	SourceToken string
	AutoSwap    bool
}

// NewService creates the settlement service.
func NewService(p ServiceParams) *Service {
	return &Service{
		backend:     p.Backend,
		builder:     p.Builder,
		submitter:   p.Submitter,
		tracker:     NewTracker(),
		registry:    p.Registry,
		breaker:     p.Breaker,
		notifier:    p.Notifier,
		history:     p.History,
		log:         p.Logger,
		sourceToken: p.SourceToken,
		autoSwap:    p.AutoSwap,
	}
}

// RunOptions override the configured defaults for a single run.
type RunOptions struct {
	SourceToken string
	AutoSwap    *bool
}

// Tracker exposes the per-employee settlement states for the current run.
func (s *Service) Tracker() *Tracker {
	return s.tracker
}

// InFlight reports whether a run is currently being settled.
func (s *Service) InFlight() bool {
	return s.inFlight.Load()
}

// Settle runs one batch end to end. On success every intent is confirmed and
// the batch-record call, notification dispatch, and history append follow as
// best-effort steps. On failure every intent is failed. A user-rejected
// wallet interaction aborts the run with all intents back at waiting.
func (s *Service) Settle(ctx context.Context, intents []models.PaymentIntent, opts RunOptions) (*models.SettlementOutcome, error) {
	if len(intents) == 0 {
		return nil, ErrEmptyBatch
	}

	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSettlementInProgress
	}
	defer s.inFlight.Store(false)

	if s.breaker != nil && !s.breaker.Allow() {
		return nil, ErrCircuitOpen
	}

	sourceSymbol := s.sourceToken
	if opts.SourceToken != "" {
		sourceSymbol = opts.SourceToken
	}
	source := s.registry.Resolve(sourceSymbol)

	autoSwap := s.autoSwap
	if opts.AutoSwap != nil {
		autoSwap = *opts.AutoSwap
	}

	s.tracker.Reset(intents)

	plan, err := BuildSwapPlan(intents, source, s.registry, autoSwap)
	if err != nil {
		return nil, fmt.Errorf("build swap plan: %v", err)
	}

	steps, err := s.builder.Build(plan, source, autoSwap, intents)
	if err != nil {
		return nil, fmt.Errorf("build calls: %v", err)
	}

	for _, step := range steps {
		metrics.CallSteps.WithLabelValues(string(step.Role)).Inc()
	}
	if autoSwap {
		metrics.SwapGroups.Observe(float64(len(plan.Groups)))
	}

	if len(intents) == 1 {
		s.log.InfoWith(logger.Batch, "Settling single payment to %s (%s %s)",
			intents[0].Recipient, intents[0].Amount, source.Symbol)
	} else {
		s.log.InfoWith(logger.Batch, "Settling batch of %d payments (%d swap groups, %d direct, source %s)",
			len(intents), len(plan.Groups), len(plan.Direct), source.Symbol)
	}

	s.tracker.MarkProcessing()

	outcome, err := s.submitter.Submit(ctx, steps)
	if err != nil {
		if IsUserRejection(err) {
			// Silent re-arm: nothing failed, the user just declined.
			s.tracker.Reset(intents)
			metrics.UserCancellations.Inc()
			s.log.NoticeWith(logger.Batch, "Settlement cancelled by user")
			return nil, ErrUserRejected
		}

		s.tracker.Complete(false)
		if s.breaker != nil {
			s.breaker.RecordFailure()
		}
		errorType := ClassifyError(err)
		metrics.SubmissionErrors.WithLabelValues(errorType).Inc()
		metrics.BatchesSettled.WithLabelValues("failed").Inc()
		metrics.IntentsSettled.WithLabelValues(string(models.StateFailed)).Add(float64(len(intents)))
		s.log.ErrorWith(logger.Batch, "Settlement failed (%s): %v", errorType, err)
		return outcome, fmt.Errorf("settlement failed: %v", err)
	}

	s.tracker.Complete(true)
	if s.breaker != nil {
		s.breaker.RecordSuccess()
	}
	metrics.BatchesSettled.WithLabelValues("success").Inc()
	metrics.IntentsSettled.WithLabelValues(string(models.StateConfirmed)).Add(float64(len(intents)))

	// Everything past this point is best-effort: the payment stands
	// regardless of what happens here.
	s.recordBatch(ctx, plan, source, len(intents))
	s.dispatchNotifications(intents, outcome)
	s.appendHistory(intents, plan, outcome)

	return outcome, nil
}

// recordBatch issues the aggregate batch-record transaction. Its failure
// never invalidates the payment.
func (s *Service) recordBatch(ctx context.Context, plan *SwapPlan, source tokens.Token, employeeCount int) {
	batchID := NewBatchID(s.backend.EmployerAddress())

	step, err := s.builder.BuildRecordBatch(batchID, source, plan.Total(), employeeCount)
	if err != nil {
		metrics.RecordBatchErrors.Inc()
		s.log.ErrorWith(logger.Batch, "Batch recording skipped, but payment was successful: %v", err)
		return
	}

	if _, err := s.submitter.Submit(ctx, []CallStep{step}); err != nil {
		metrics.RecordBatchErrors.Inc()
		s.log.ErrorWith(logger.Batch, "Batch recording failed, but payment was successful: %v", err)
		return
	}

	s.log.DebugWith(logger.Batch, "Batch recorded: 0x%x", batchID)
}

// dispatchNotifications fires the confirmation emails without blocking the
// settlement result.
func (s *Service) dispatchNotifications(intents []models.PaymentIntent, outcome *models.SettlementOutcome) {
	if s.notifier == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.notifier.NotifyBatch(ctx, intents, outcome); err != nil {
			metrics.NotificationErrors.Inc()
			s.log.ErrorWith(logger.Notify, "Email notifications failed, but payment was successful: %v", err)
		}
	}()
}

// appendHistory persists the resolved run to the local payroll history.
func (s *Service) appendHistory(intents []models.PaymentIntent, plan *SwapPlan, outcome *models.SettlementOutcome) {
	if s.history == nil {
		return
	}

	record := models.PayrollRecord{
		ID:             "PR-" + uuid.NewString()[:8],
		Date:           time.Now(),
		Employees:      len(intents),
		Total:          tokens.FormatAmount(plan.Total()),
		Fee:            outcome.Fee,
		TxHash:         outcome.TxHash,
		Status:         "completed",
		SettlementTime: fmt.Sprintf("%.1fs", outcome.SettlementTime.Seconds()),
	}

	if err := s.history.AppendRecord(record); err != nil {
		s.log.ErrorWith(logger.Store, "Failed to append payroll history: %v", err)
	}
}
