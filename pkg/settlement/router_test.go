package settlement

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/settlex-hq/settlex-settler/pkg/models"
	"github.com/settlex-hq/settlex-settler/pkg/tokens"
)

func intent(id int, recipient, amount, currency string) models.PaymentIntent {
	return models.PaymentIntent{
		EmployeeID: id,
		Name:       "Employee",
		Recipient:  recipient,
		Amount:     amount,
		Currency:   currency,
	}
}

func TestBuildSwapPlanPartition(t *testing.T) {
	reg := tokens.NewRegistry()
	source := reg.Resolve("pathUSD")

	intents := []models.PaymentIntent{
		intent(1, "0x1111111111111111111111111111111111111111", "100", "AlphaUSD"),
		intent(2, "0x2222222222222222222222222222222222222222", "50", "AlphaUSD"),
		intent(3, "0x3333333333333333333333333333333333333333", "30", "pathUSD"),
		intent(4, "0x4444444444444444444444444444444444444444", "25", "BetaUSD"),
	}

	plan, err := BuildSwapPlan(intents, source, reg, true)
	require.NoError(t, err)

	assert.Len(t, plan.Direct, 1)
	assert.Equal(t, 3, plan.Direct[0].EmployeeID)
	require.Len(t, plan.Groups, 2)

	// Groups keep first-appearance order.
	assert.Equal(t, "AlphaUSD", plan.Groups[0].Symbol)
	assert.Equal(t, "BetaUSD", plan.Groups[1].Symbol)
	assert.Equal(t, big.NewInt(150_000000), plan.Groups[0].TotalAmount)
	assert.Equal(t, big.NewInt(25_000000), plan.Groups[1].TotalAmount)

	assert.Equal(t, big.NewInt(175_000000), plan.TotalSwapAmount)
	assert.Equal(t, big.NewInt(30_000000), plan.TotalDirectAmount)
	assert.Equal(t, big.NewInt(205_000000), plan.Total())
}

func TestBuildSwapPlanGroupTotalsIgnoreOrder(t *testing.T) {
	reg := tokens.NewRegistry()
	source := reg.Resolve("pathUSD")

	a := intent(1, "0x1111111111111111111111111111111111111111", "100", "AlphaUSD")
	b := intent(2, "0x2222222222222222222222222222222222222222", "50", "AlphaUSD")
	c := intent(3, "0x3333333333333333333333333333333333333333", "30", "BetaUSD")

	forward, err := BuildSwapPlan([]models.PaymentIntent{a, b, c}, source, reg, true)
	require.NoError(t, err)
	reversed, err := BuildSwapPlan([]models.PaymentIntent{c, b, a}, source, reg, true)
	require.NoError(t, err)

	totals := func(p *SwapPlan) map[string]string {
		out := make(map[string]string)
		for _, g := range p.Groups {
			out[g.Symbol] = g.TotalAmount.String()
		}
		return out
	}

	assert.Equal(t, totals(forward), totals(reversed))
	assert.Equal(t, forward.Total(), reversed.Total())
}

func TestBuildSwapPlanSourceNeverGrouped(t *testing.T) {
	reg := tokens.NewRegistry()

	// Every registered token takes a turn as the source.
	for _, src := range reg.List() {
		source := reg.Resolve(src.Symbol)
		intents := []models.PaymentIntent{
			intent(1, "0x1111111111111111111111111111111111111111", "10", "pathUSD"),
			intent(2, "0x2222222222222222222222222222222222222222", "20", "AlphaUSD"),
			intent(3, "0x3333333333333333333333333333333333333333", "30", "BetaUSD"),
			intent(4, "0x4444444444444444444444444444444444444444", "40", "ThetaUSD"),
		}

		plan, err := BuildSwapPlan(intents, source, reg, true)
		require.NoError(t, err)

		for _, g := range plan.Groups {
			assert.NotEqual(t, source.Address, g.TokenOut,
				"source %s must never appear in a swap group", src.Symbol)
		}
		assert.Len(t, plan.Direct, 1)
		assert.Len(t, plan.Groups, 3)
	}
}

func TestBuildSwapPlanAutoSwapDisabled(t *testing.T) {
	reg := tokens.NewRegistry()
	source := reg.Resolve("pathUSD")

	intents := []models.PaymentIntent{
		intent(1, "0x1111111111111111111111111111111111111111", "100", "AlphaUSD"),
		intent(2, "0x2222222222222222222222222222222222222222", "30", "pathUSD"),
	}

	plan, err := BuildSwapPlan(intents, source, reg, false)
	require.NoError(t, err)

	assert.Empty(t, plan.Groups)
	assert.Len(t, plan.Direct, 2)
	assert.Equal(t, big.NewInt(0), plan.TotalSwapAmount)
	assert.Equal(t, big.NewInt(130_000000), plan.TotalDirectAmount)
}

func TestBuildSwapPlanUnknownCurrencyNormalizes(t *testing.T) {
	reg := tokens.NewRegistry()
	source := reg.Resolve("pathUSD")

	intents := []models.PaymentIntent{
		intent(1, "0x1111111111111111111111111111111111111111", "10", "DOGE"),
	}

	plan, err := BuildSwapPlan(intents, source, reg, true)
	require.NoError(t, err)

	// DOGE normalizes to the default, which is the source: no swap needed.
	assert.Empty(t, plan.Groups)
	assert.Len(t, plan.Direct, 1)
}

func TestBuildSwapPlanRejectsBadAmounts(t *testing.T) {
	reg := tokens.NewRegistry()
	source := reg.Resolve("pathUSD")

	for _, amount := range []string{"0", "-5", "abc", "1.1234567", ""} {
		intents := []models.PaymentIntent{
			intent(1, "0x1111111111111111111111111111111111111111", amount, "pathUSD"),
		}
		_, err := BuildSwapPlan(intents, source, reg, true)
		assert.Error(t, err, "amount %q must be rejected", amount)
	}
}
