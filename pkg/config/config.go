package config

import (
	"fmt"
	"log"
	"math/big"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/settlex-hq/settlex-settler/pkg/logger"
)

// Config holds the configuration for the settler service
type Config struct {
	RPCURL             string
	PrivateKey         string
	PayrollAddress     string
	DEXAddress         string
	BatchCallerAddress string

	SourceToken         string
	AutoSwap            bool
	DirectPaymentPolicy DirectPaymentPolicy
	ReceiptTimeout      time.Duration
	GasMultiplier       float64
	MaxGasPrice         *big.Int

	APIPort     string
	MetricsPort string
	DBPath      string

	SMTP           SMTPConfig
	CircuitBreaker CircuitBreakerConfig
	LoggerConfig   LoggerConfig
}

// DirectPaymentPolicy decides which token direct (non-swapped) payments use
// when auto-swap is disabled.
type DirectPaymentPolicy string

const (
	// PayInSource pays every direct intent in the employer's source token,
	// ignoring employee currency preference.
	PayInSource DirectPaymentPolicy = "source"
	// PayInPreferred pays each direct intent in the employee's preferred
	// token without swapping, assuming the employer holds those balances.
	PayInPreferred DirectPaymentPolicy = "preferred"
)

// SMTPConfig holds the outbound email settings for payment notifications
type SMTPConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// CircuitBreakerConfig holds circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled        bool
	Threshold      int
	WindowDuration time.Duration
	ResetTimeout   time.Duration
}

// LoggerConfig holds the configuration for logging
type LoggerConfig struct {
	Level    logger.Level
	Coloring bool
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	receiptTimeout, err := GetEnvReceiptTimeout()
	if err != nil {
		return nil, err
	}

	gasMultiplier, err := GetEnvGasMultiplier()
	if err != nil {
		return nil, err
	}

	maxGasPrice, err := GetEnvMaxGasPrice()
	if err != nil {
		return nil, err
	}

	autoSwap, err := GetEnvAutoSwap()
	if err != nil {
		return nil, err
	}

	policy, err := GetEnvDirectPaymentPolicy()
	if err != nil {
		return nil, err
	}

	smtpCfg, err := GetEnvSMTP()
	if err != nil {
		return nil, err
	}

	cbEnabled, err := GetEnvCircuitBreakerEnabled()
	if err != nil {
		return nil, err
	}

	cbThreshold, err := GetEnvCircuitBreakerThreshold()
	if err != nil {
		return nil, err
	}

	cbWindow, err := GetEnvCircuitBreakerWindow()
	if err != nil {
		return nil, err
	}

	cbReset, err := GetEnvCircuitBreakerReset()
	if err != nil {
		return nil, err
	}

	logLevel, err := GetEnvLogLevel()
	if err != nil {
		return nil, err
	}

	logColoring, err := GetEnvLogColoring()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		RPCURL:             os.Getenv("RPC_URL"),
		PrivateKey:         os.Getenv("PRIVATE_KEY"),
		PayrollAddress:     os.Getenv("PAYROLL_ADDRESS"),
		DEXAddress:         getEnv("DEX_ADDRESS", DefaultDEXAddress),
		BatchCallerAddress: os.Getenv("BATCH_CALLER_ADDRESS"),

		SourceToken:         getEnv("SOURCE_TOKEN", DefaultSourceToken),
		AutoSwap:            autoSwap,
		DirectPaymentPolicy: policy,
		ReceiptTimeout:      receiptTimeout,
		GasMultiplier:       gasMultiplier,
		MaxGasPrice:         maxGasPrice,

		APIPort:     getEnv("API_PORT", DefaultAPIPort),
		MetricsPort: getEnv("METRICS_PORT", DefaultMetricsPort),
		DBPath:      getEnv("DB_PATH", DefaultDBPath),

		SMTP: smtpCfg,
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:        cbEnabled,
			Threshold:      cbThreshold,
			WindowDuration: cbWindow,
			ResetTimeout:   cbReset,
		},
		LoggerConfig: LoggerConfig{
			Level:    logLevel,
			Coloring: logColoring,
		},
	}

	// Validate required environment variables
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.RPCURL == "" {
		return fmt.Errorf("RPC_URL environment variable is required")
	}
	if cfg.PrivateKey == "" {
		return fmt.Errorf("PRIVATE_KEY environment variable is required")
	}
	if cfg.PayrollAddress == "" {
		return fmt.Errorf("PAYROLL_ADDRESS environment variable is required")
	}
	if cfg.BatchCallerAddress == "" {
		return fmt.Errorf("BATCH_CALLER_ADDRESS environment variable is required")
	}
	if cfg.DirectPaymentPolicy != PayInSource && cfg.DirectPaymentPolicy != PayInPreferred {
		return fmt.Errorf("invalid DIRECT_PAYMENT_POLICY: %s", cfg.DirectPaymentPolicy)
	}
	return nil
}
