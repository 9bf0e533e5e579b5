package settlement

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUserRejection(t *testing.T) {
	assert.False(t, IsUserRejection(nil))
	assert.True(t, IsUserRejection(ErrUserRejected))
	assert.True(t, IsUserRejection(fmt.Errorf("submit: %w", ErrUserRejected)))
	assert.True(t, IsUserRejection(errors.New("User Rejected the request")))
	assert.True(t, IsUserRejection(errors.New("MetaMask Tx Signature: User denied transaction signature")))
	assert.False(t, IsUserRejection(errors.New("execution reverted")))
}

func TestClassifyError(t *testing.T) {
	cases := map[string]string{
		"connection refused":                    "network_error",
		"context deadline exceeded":             "network_error",
		"gas required exceeds allowance":        "gas_error",
		"nonce too low":                         "nonce_error",
		"insufficient funds for transfer":       "insufficient_funds",
		"execution reverted: slippage exceeded": "contract_error",
		"something novel":                       "unknown_error",
	}
	for msg, want := range cases {
		assert.Equal(t, want, ClassifyError(errors.New(msg)), msg)
	}
	assert.Equal(t, "user_rejected", ClassifyError(ErrUserRejected))
	assert.Equal(t, "", ClassifyError(nil))
}
