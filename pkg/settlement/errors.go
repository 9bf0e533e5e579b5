package settlement

import (
	"errors"
	"strings"
)

var (
	// ErrUserRejected means the wallet interaction was rejected by the user.
	// It re-arms the run without marking any intent as failed.
	ErrUserRejected = errors.New("user rejected the request")

	// ErrSettlementInProgress means another batch run is still in flight.
	ErrSettlementInProgress = errors.New("settlement already in progress")

	// ErrCircuitOpen means the circuit breaker is refusing submissions.
	ErrCircuitOpen = errors.New("circuit breaker open, submission refused")

	// ErrEmptyBatch means a run was requested with no intents.
	ErrEmptyBatch = errors.New("batch contains no payment intents")
)

// IsUserRejection reports whether an error represents the user declining the
// wallet interaction rather than a real failure.
func IsUserRejection(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUserRejected) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "user rejected") || strings.Contains(msg, "user denied")
}

// ClassifyError maps a submission error to a coarse type for metrics and
// logging.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}
	if IsUserRejection(err) {
		return "user_rejected"
	}

	errStr := err.Error()

	// Network/RPC errors
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "context deadline exceeded") ||
		strings.Contains(errStr, "timed out") ||
		strings.Contains(errStr, "no response") ||
		strings.Contains(errStr, "EOF") {
		return "network_error"
	}

	// Gas-related errors
	if strings.Contains(errStr, "gas required exceeds allowance") ||
		strings.Contains(errStr, "insufficient funds for gas") ||
		strings.Contains(errStr, "gas price too low") {
		return "gas_error"
	}

	// Nonce-related errors
	if strings.Contains(errStr, "nonce too low") ||
		strings.Contains(errStr, "nonce too high") ||
		strings.Contains(errStr, "replacement transaction underpriced") {
		return "nonce_error"
	}

	// Balance-related errors
	if strings.Contains(errStr, "insufficient balance") ||
		strings.Contains(errStr, "insufficient funds") {
		return "insufficient_funds"
	}

	// Contract reverts, including a swap missing its slippage guard
	if strings.Contains(errStr, "execution reverted") {
		return "contract_error"
	}

	return "unknown_error"
}
