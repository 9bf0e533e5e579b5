package settlement

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/settlex-hq/settlex-settler/pkg/config"
	"github.com/settlex-hq/settlex-settler/pkg/contracts"
	"github.com/settlex-hq/settlex-settler/pkg/models"
	"github.com/settlex-hq/settlex-settler/pkg/tokens"
)

// CallRole is the logical role of a call step within a batch.
type CallRole string

const (
	RoleApproveSwap    CallRole = "approve-for-swap"
	RoleSwap           CallRole = "execute-swap"
	RoleApprovePayment CallRole = "approve-for-payment"
	RolePayEmployee    CallRole = "pay-employee"
	RoleRecordBatch    CallRole = "record-batch"
)

// CallStep is one encoded contract call. Ordering is significant: approvals
// must precede the calls that spend their allowance, and payments must follow
// all swaps.
type CallStep struct {
	To   common.Address
	Data []byte
	Role CallRole
}

// slippageToleranceBP caps adverse price movement on stablecoin swaps at 1%.
// If the venue cannot deliver 99% of the requested output, the step reverts
// and takes the whole batch transaction with it.
const slippageToleranceBP = 100

func applySlippage(amount *big.Int) *big.Int {
	out := new(big.Int).Mul(amount, big.NewInt(10000-slippageToleranceBP))
	return out.Div(out, big.NewInt(10000))
}

// Builder converts a swap plan into the ordered call sequence of a batch
// transaction.
type Builder struct {
	registry     *tokens.Registry
	payrollAddr  common.Address
	dexAddr      common.Address
	directPolicy config.DirectPaymentPolicy
}

// NewBuilder creates a call builder for the given contract addresses.
func NewBuilder(reg *tokens.Registry, payrollAddr, dexAddr common.Address, policy config.DirectPaymentPolicy) *Builder {
	return &Builder{
		registry:     reg,
		payrollAddr:  payrollAddr,
		dexAddr:      dexAddr,
		directPolicy: policy,
	}
}

// Build produces the ordered call list for a batch. With auto-swap enabled
// the sequence is: approve source to the swap venue, one swap per group, one
// approval per acquired token, one approval for the direct remainder, then
// all payments. Without auto-swap only approvals and payments are emitted.
func (b *Builder) Build(plan *SwapPlan, source tokens.Token, autoSwap bool, intents []models.PaymentIntent) ([]CallStep, error) {
	if len(intents) == 0 {
		return nil, nil
	}

	var steps []CallStep

	if autoSwap {
		// 1. Source allowance for everything the venue will pull.
		if plan.TotalSwapAmount.Sign() > 0 {
			data, err := contracts.PackApprove(b.dexAddr, plan.TotalSwapAmount)
			if err != nil {
				return nil, fmt.Errorf("encode swap approval: %v", err)
			}
			steps = append(steps, CallStep{To: source.Address, Data: data, Role: RoleApproveSwap})
		}

		// 2. One swap per distinct target currency.
		for _, group := range plan.Groups {
			minOut := applySlippage(group.TotalAmount)
			data, err := contracts.PackSwapExactAmountIn(source.Address, group.TokenOut, group.TotalAmount, minOut)
			if err != nil {
				return nil, fmt.Errorf("encode swap for %s: %v", group.Symbol, err)
			}
			steps = append(steps, CallStep{To: b.dexAddr, Data: data, Role: RoleSwap})
		}

		// 3. Let the payroll contract pull the acquired tokens.
		for _, group := range plan.Groups {
			data, err := contracts.PackApprove(b.payrollAddr, group.TotalAmount)
			if err != nil {
				return nil, fmt.Errorf("encode payment approval for %s: %v", group.Symbol, err)
			}
			steps = append(steps, CallStep{To: group.TokenOut, Data: data, Role: RoleApprovePayment})
		}

		// 4. Source allowance for the unswapped remainder.
		if plan.TotalDirectAmount.Sign() > 0 {
			data, err := contracts.PackApprove(b.payrollAddr, plan.TotalDirectAmount)
			if err != nil {
				return nil, fmt.Errorf("encode direct approval: %v", err)
			}
			steps = append(steps, CallStep{To: source.Address, Data: data, Role: RoleApprovePayment})
		}

		// 5. Pay everyone in their own currency, input order preserved.
		for i, intent := range intents {
			payToken := b.registry.Resolve(intent.Currency)
			data, err := contracts.PackPayEmployee(
				common.HexToAddress(intent.Recipient),
				plan.Amount(i),
				payToken.Address,
				EncodeMemo(intent.Memo),
			)
			if err != nil {
				return nil, fmt.Errorf("encode payment for %s: %v", intent.Recipient, err)
			}
			steps = append(steps, CallStep{To: b.payrollAddr, Data: data, Role: RolePayEmployee})
		}

		return steps, nil
	}

	// No-swap flow: the direct-payment policy decides the pay token.
	payTokens := make([]tokens.Token, len(intents))
	approvalTotals := make(map[common.Address]*big.Int)
	var approvalOrder []common.Address

	for i, intent := range intents {
		t := source
		if b.directPolicy == config.PayInPreferred {
			t = b.registry.Resolve(intent.Currency)
		}
		payTokens[i] = t

		total, ok := approvalTotals[t.Address]
		if !ok {
			total = big.NewInt(0)
			approvalTotals[t.Address] = total
			approvalOrder = append(approvalOrder, t.Address)
		}
		total.Add(total, plan.Amount(i))
	}

	for _, addr := range approvalOrder {
		if approvalTotals[addr].Sign() == 0 {
			continue
		}
		data, err := contracts.PackApprove(b.payrollAddr, approvalTotals[addr])
		if err != nil {
			return nil, fmt.Errorf("encode approval: %v", err)
		}
		steps = append(steps, CallStep{To: addr, Data: data, Role: RoleApprovePayment})
	}

	for i, intent := range intents {
		data, err := contracts.PackPayEmployee(
			common.HexToAddress(intent.Recipient),
			plan.Amount(i),
			payTokens[i].Address,
			EncodeMemo(intent.Memo),
		)
		if err != nil {
			return nil, fmt.Errorf("encode payment for %s: %v", intent.Recipient, err)
		}
		steps = append(steps, CallStep{To: b.payrollAddr, Data: data, Role: RolePayEmployee})
	}

	return steps, nil
}

// BuildRecordBatch encodes the best-effort batch-record call, issued as its
// own transaction after the payment transaction has succeeded.
func (b *Builder) BuildRecordBatch(batchID [32]byte, source tokens.Token, total *big.Int, employeeCount int) (CallStep, error) {
	data, err := contracts.PackRecordBatchPayroll(batchID, source.Address, total, big.NewInt(int64(employeeCount)))
	if err != nil {
		return CallStep{}, fmt.Errorf("encode batch record: %v", err)
	}
	return CallStep{To: b.payrollAddr, Data: data, Role: RoleRecordBatch}, nil
}

// EncodeMemo truncates a free-text memo into the contract's fixed 32-byte
// field. Anything beyond 32 bytes is lost.
func EncodeMemo(memo string) [32]byte {
	var out [32]byte
	copy(out[:], memo)
	return out
}
