package settlement

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/settlex-hq/settlex-settler/pkg/models"
	"github.com/settlex-hq/settlex-settler/pkg/tokens"
)

// SwapGroup aggregates all intents requesting the same non-source currency.
// One group exists per distinct target token, built fresh for every batch run.
type SwapGroup struct {
	TokenOut    common.Address
	Symbol      string
	TotalAmount *big.Int
	Intents     []models.PaymentIntent
}

// SwapPlan is the Currency Router's partition of a batch: intents payable
// directly in the source token, and groups needing a swap first. Group order
// follows first appearance in the input; intra-group member order is input
// order.
type SwapPlan struct {
	Direct            []models.PaymentIntent
	Groups            []*SwapGroup
	TotalSwapAmount   *big.Int
	TotalDirectAmount *big.Int

	// amounts holds the parsed base-unit amount per input index so the call
	// builder does not re-parse.
	amounts []*big.Int
}

// Total returns the batch total across direct and swapped intents.
func (p *SwapPlan) Total() *big.Int {
	return new(big.Int).Add(new(big.Int).Set(p.TotalSwapAmount), p.TotalDirectAmount)
}

// Amount returns the parsed base-unit amount for the intent at input index i.
func (p *SwapPlan) Amount(i int) *big.Int {
	return p.amounts[i]
}

// BuildSwapPlan partitions intents by swap need. With auto-swap disabled,
// every intent is direct regardless of its preferred currency; currency
// preference is then applied (or not) by the call builder's direct-payment
// policy. Unknown currency symbols normalize to the registry default before
// comparison.
func BuildSwapPlan(intents []models.PaymentIntent, source tokens.Token, reg *tokens.Registry, autoSwap bool) (*SwapPlan, error) {
	plan := &SwapPlan{
		TotalSwapAmount:   big.NewInt(0),
		TotalDirectAmount: big.NewInt(0),
		amounts:           make([]*big.Int, len(intents)),
	}

	groupIndex := make(map[common.Address]*SwapGroup)

	for i, intent := range intents {
		amount, err := tokens.ParseAmount(intent.Amount)
		if err != nil {
			return nil, fmt.Errorf("intent for %s: %v", intent.Recipient, err)
		}
		if amount.Sign() <= 0 {
			return nil, fmt.Errorf("intent for %s: amount must be greater than zero", intent.Recipient)
		}
		plan.amounts[i] = amount

		target := reg.Resolve(intent.Currency)

		if !autoSwap || target.Address == source.Address {
			plan.Direct = append(plan.Direct, intent)
			plan.TotalDirectAmount.Add(plan.TotalDirectAmount, amount)
			continue
		}

		group, ok := groupIndex[target.Address]
		if !ok {
			group = &SwapGroup{
				TokenOut:    target.Address,
				Symbol:      target.Symbol,
				TotalAmount: big.NewInt(0),
			}
			groupIndex[target.Address] = group
			plan.Groups = append(plan.Groups, group)
		}
		group.TotalAmount.Add(group.TotalAmount, amount)
		group.Intents = append(group.Intents, intent)
		plan.TotalSwapAmount.Add(plan.TotalSwapAmount, amount)
	}

	return plan, nil
}
