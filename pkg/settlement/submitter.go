package settlement

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/settlex-hq/settlex-settler/pkg/logger"
	"github.com/settlex-hq/settlex-settler/pkg/metrics"
	"github.com/settlex-hq/settlex-settler/pkg/models"
	"github.com/settlex-hq/settlex-settler/pkg/tokens"
)

// Receipt is the confirmed result of one submitted transaction.
type Receipt struct {
	TxHash            common.Hash
	BlockNumber       *big.Int
	GasUsed           uint64
	EffectiveGasPrice *big.Int
	Status            uint64
}

// Backend abstracts the on-chain interaction: it bundles an ordered call
// list into a single atomic transaction and waits for its receipt.
type Backend interface {
	SendCalls(ctx context.Context, calls []CallStep) (*Receipt, error)
	EmployerAddress() common.Address
}

// Submitter sends a built call sequence as one atomic transaction and
// derives the settlement metrics from its receipt.
type Submitter struct {
	backend        Backend
	receiptTimeout time.Duration
	log            logger.Logger
}

// NewSubmitter creates a submitter. The receipt timeout bounds the wait for
// confirmation so a stalled RPC endpoint cannot hang a run forever.
func NewSubmitter(backend Backend, receiptTimeout time.Duration, log logger.Logger) *Submitter {
	return &Submitter{
		backend:        backend,
		receiptTimeout: receiptTimeout,
		log:            log,
	}
}

// Submit executes the call list atomically and blocks until the receipt
// arrives or the timeout budget runs out. The chain applies either all steps
// or none, so the only outcomes are full success and full failure.
func (s *Submitter) Submit(ctx context.Context, steps []CallStep) (*models.SettlementOutcome, error) {
	if len(steps) == 0 {
		return nil, ErrEmptyBatch
	}

	submitCtx, cancel := context.WithTimeout(ctx, s.receiptTimeout)
	defer cancel()

	start := time.Now()

	receipt, err := s.backend.SendCalls(submitCtx, steps)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)

	outcome := &models.SettlementOutcome{
		TxHash:         receipt.TxHash.Hex(),
		GasUsed:        receipt.GasUsed,
		Fee:            TransactionFee(receipt.GasUsed, receipt.EffectiveGasPrice),
		SettlementTime: elapsed,
		Success:        receipt.Status == 1,
	}
	if receipt.BlockNumber != nil {
		outcome.BlockNumber = receipt.BlockNumber.Uint64()
	}

	metrics.SettlementDuration.Observe(elapsed.Seconds())
	metrics.GasUsed.Observe(float64(receipt.GasUsed))

	if !outcome.Success {
		return outcome, fmt.Errorf("batch transaction %s reverted in block %d", outcome.TxHash, outcome.BlockNumber)
	}

	s.log.InfoWith(logger.Batch, "Batch settled: %s (block %d, gas %d, fee %s, %.1fs)",
		outcome.TxHash, outcome.BlockNumber, outcome.GasUsed, outcome.Fee, elapsed.Seconds())

	return outcome, nil
}

// TransactionFee computes gasUsed x effectiveGasPrice and renders it at the
// payroll token's 6-decimal precision.
func TransactionFee(gasUsed uint64, effectiveGasPrice *big.Int) string {
	if effectiveGasPrice == nil {
		effectiveGasPrice = big.NewInt(0)
	}
	fee := new(big.Int).Mul(new(big.Int).SetUint64(gasUsed), effectiveGasPrice)
	return tokens.FormatAmount(fee)
}
