package config

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"time"

	"github.com/settlex-hq/settlex-settler/pkg/logger"
)

const (
	// DefaultDEXAddress is the enshrined stablecoin swap precompile
	DefaultDEXAddress = "0xDEc0000000000000000000000000000000000000"

	// DefaultSourceToken defines the token the employer spends by default
	DefaultSourceToken = "pathUSD"

	// DefaultReceiptTimeout bounds the wait for a transaction receipt, in seconds
	DefaultReceiptTimeout = 120

	// DefaultGasMultiplier adds a buffer on top of the suggested gas price
	DefaultGasMultiplier = 1.1

	// DefaultMaxGasPrice defines the maximum gas price for transactions
	DefaultMaxGasPrice = "1000000000" // 1 Gwei

	// DefaultAPIPort defines the default port for the HTTP API
	DefaultAPIPort = "8080"

	// DefaultMetricsPort defines the default port for the health/metrics server
	DefaultMetricsPort = "9090"

	// DefaultDBPath defines where the local history/template store lives
	DefaultDBPath = "settlex.db"

	// DefaultCircuitBreakerEnabled defines whether the circuit breaker is enabled
	DefaultCircuitBreakerEnabled = true

	// DefaultCircuitBreakerThreshold defines the number of failures before the circuit breaker trips
	DefaultCircuitBreakerThreshold = 5

	// DefaultCircuitBreakerWindow defines the time window for the circuit breaker, in minutes
	DefaultCircuitBreakerWindow = 5

	// DefaultCircuitBreakerReset defines the reset timeout for the circuit breaker, in minutes
	DefaultCircuitBreakerReset = 15

	// DefaultSMTPPort defines the default SMTP port for the notifier
	DefaultSMTPPort = 587
)

// getEnv returns the value of an environment variable or a fallback
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// GetEnvReceiptTimeout returns the receipt wait budget from environment variables
func GetEnvReceiptTimeout() (time.Duration, error) {
	receiptTimeout := os.Getenv("RECEIPT_TIMEOUT")
	if receiptTimeout == "" {
		return time.Duration(DefaultReceiptTimeout) * time.Second, nil
	}

	seconds, err := strconv.Atoi(receiptTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid RECEIPT_TIMEOUT value: %s, must be an integer", receiptTimeout)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("RECEIPT_TIMEOUT must be greater than 0")
	}
	return time.Duration(seconds) * time.Second, nil
}

// GetEnvGasMultiplier returns the gas price buffer from environment variables
func GetEnvGasMultiplier() (float64, error) {
	gasMultiplier := os.Getenv("GAS_MULTIPLIER")
	if gasMultiplier == "" {
		return DefaultGasMultiplier, nil
	}

	multiplier, err := strconv.ParseFloat(gasMultiplier, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid GAS_MULTIPLIER value: %s, must be a number", gasMultiplier)
	}
	if multiplier <= 0 {
		return 0, fmt.Errorf("GAS_MULTIPLIER must be greater than 0")
	}
	return multiplier, nil
}

// GetEnvMaxGasPrice returns the maximum gas price from environment variables
func GetEnvMaxGasPrice() (*big.Int, error) {
	maxGasPrice := os.Getenv("MAX_GAS_PRICE")
	if maxGasPrice == "" {
		maxGasPrice = DefaultMaxGasPrice
	}

	price, ok := new(big.Int).SetString(maxGasPrice, 10)
	if !ok {
		return nil, fmt.Errorf("invalid MAX_GAS_PRICE value: %s, must be an integer", maxGasPrice)
	}
	if price.Sign() <= 0 {
		return nil, fmt.Errorf("MAX_GAS_PRICE must be greater than 0")
	}
	return price, nil
}

// GetEnvAutoSwap returns whether auto-swap is enabled by default
func GetEnvAutoSwap() (bool, error) {
	autoSwap := os.Getenv("AUTO_SWAP")
	if autoSwap == "" {
		return false, nil
	}

	enabled, err := strconv.ParseBool(autoSwap)
	if err != nil {
		return false, fmt.Errorf("invalid AUTO_SWAP value: %s, must be a boolean", autoSwap)
	}
	return enabled, nil
}

// GetEnvDirectPaymentPolicy returns the token policy for non-swapped payments
func GetEnvDirectPaymentPolicy() (DirectPaymentPolicy, error) {
	policy := os.Getenv("DIRECT_PAYMENT_POLICY")
	if policy == "" {
		return PayInSource, nil
	}

	switch DirectPaymentPolicy(policy) {
	case PayInSource, PayInPreferred:
		return DirectPaymentPolicy(policy), nil
	}
	return "", fmt.Errorf("invalid DIRECT_PAYMENT_POLICY value: %s, must be 'source' or 'preferred'", policy)
}

// GetEnvSMTP returns the notifier SMTP settings from environment variables
func GetEnvSMTP() (SMTPConfig, error) {
	enabledStr := os.Getenv("EMAIL_ENABLED")
	enabled := false
	if enabledStr != "" {
		var err error
		enabled, err = strconv.ParseBool(enabledStr)
		if err != nil {
			return SMTPConfig{}, fmt.Errorf("invalid EMAIL_ENABLED value: %s, must be a boolean", enabledStr)
		}
	}

	port := DefaultSMTPPort
	if portStr := os.Getenv("EMAIL_PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			return SMTPConfig{}, fmt.Errorf("invalid EMAIL_PORT value: %s, must be an integer", portStr)
		}
	}

	cfg := SMTPConfig{
		Enabled:  enabled,
		Host:     os.Getenv("EMAIL_HOST"),
		Port:     port,
		Username: os.Getenv("EMAIL_USER"),
		Password: os.Getenv("EMAIL_PASS"),
		From:     getEnv("EMAIL_FROM", "payroll@settlex.io"),
	}

	if cfg.Enabled && cfg.Host == "" {
		return SMTPConfig{}, fmt.Errorf("EMAIL_HOST is required when EMAIL_ENABLED is true")
	}
	return cfg, nil
}

// GetEnvCircuitBreakerEnabled returns whether the circuit breaker is enabled from environment variables
func GetEnvCircuitBreakerEnabled() (bool, error) {
	enabled := os.Getenv("CIRCUIT_BREAKER_ENABLED")
	if enabled == "" {
		return DefaultCircuitBreakerEnabled, nil
	}

	value, err := strconv.ParseBool(enabled)
	if err != nil {
		return false, fmt.Errorf("invalid CIRCUIT_BREAKER_ENABLED value: %s, must be a boolean", enabled)
	}
	return value, nil
}

// GetEnvCircuitBreakerThreshold returns the circuit breaker failure threshold from environment variables
func GetEnvCircuitBreakerThreshold() (int, error) {
	threshold := os.Getenv("CIRCUIT_BREAKER_THRESHOLD")
	if threshold == "" {
		return DefaultCircuitBreakerThreshold, nil
	}

	value, err := strconv.Atoi(threshold)
	if err != nil {
		return 0, fmt.Errorf("invalid CIRCUIT_BREAKER_THRESHOLD value: %s, must be an integer", threshold)
	}
	if value <= 0 {
		return 0, fmt.Errorf("CIRCUIT_BREAKER_THRESHOLD must be greater than 0")
	}
	return value, nil
}

// GetEnvCircuitBreakerWindow returns the circuit breaker failure window from environment variables
func GetEnvCircuitBreakerWindow() (time.Duration, error) {
	window := os.Getenv("CIRCUIT_BREAKER_WINDOW")
	if window == "" {
		return time.Duration(DefaultCircuitBreakerWindow) * time.Minute, nil
	}

	value, err := strconv.Atoi(window)
	if err != nil {
		return 0, fmt.Errorf("invalid CIRCUIT_BREAKER_WINDOW value: %s, must be an integer", window)
	}
	if value <= 0 {
		return 0, fmt.Errorf("CIRCUIT_BREAKER_WINDOW must be greater than 0")
	}
	return time.Duration(value) * time.Minute, nil
}

// GetEnvCircuitBreakerReset returns the circuit breaker reset timeout from environment variables
func GetEnvCircuitBreakerReset() (time.Duration, error) {
	reset := os.Getenv("CIRCUIT_BREAKER_RESET")
	if reset == "" {
		return time.Duration(DefaultCircuitBreakerReset) * time.Minute, nil
	}

	value, err := strconv.Atoi(reset)
	if err != nil {
		return 0, fmt.Errorf("invalid CIRCUIT_BREAKER_RESET value: %s, must be an integer", reset)
	}
	if value <= 0 {
		return 0, fmt.Errorf("CIRCUIT_BREAKER_RESET must be greater than 0")
	}
	return time.Duration(value) * time.Minute, nil
}

// GetEnvLogLevel returns the log level from environment variables
func GetEnvLogLevel() (logger.Level, error) {
	level := os.Getenv("LOG_LEVEL")
	switch level {
	case "", "info":
		return logger.InfoLevel, nil
	case "debug":
		return logger.DebugLevel, nil
	case "notice":
		return logger.NoticeLevel, nil
	case "error":
		return logger.ErrorLevel, nil
	}
	return 0, fmt.Errorf("invalid LOG_LEVEL value: %s, must be debug, info, notice or error", level)
}

// GetEnvLogColoring returns whether log coloring is enabled from environment variables
func GetEnvLogColoring() (bool, error) {
	coloring := os.Getenv("LOG_COLORING")
	if coloring == "" {
		return true, nil
	}

	value, err := strconv.ParseBool(coloring)
	if err != nil {
		return false, fmt.Errorf("invalid LOG_COLORING value: %s, must be a boolean", coloring)
	}
	return value, nil
}
