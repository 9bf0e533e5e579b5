package chainclient

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/settlex-hq/settlex-settler/pkg/config"
	"github.com/settlex-hq/settlex-settler/pkg/contracts"
	"github.com/settlex-hq/settlex-settler/pkg/logger"
	"github.com/settlex-hq/settlex-settler/pkg/metrics"
	"github.com/settlex-hq/settlex-settler/pkg/settlement"
)

// Client holds the chain connection and the contract bindings the settler
// drives: the payroll contract, the swap precompile, and the batch caller.
type Client struct {
	RPCURL             string
	ChainID            *big.Int
	Client             *ethclient.Client
	Payroll            *contracts.Payroll
	BatchCaller        *contracts.BatchCaller
	DEX                *contracts.StablecoinDEX
	Auth               *bind.TransactOpts
	GasMultiplier      float64
	MaxGasPrice        *big.Int
	PayrollAddress     common.Address
	DEXAddress         common.Address
	BatchCallerAddress common.Address

	log logger.Logger
}

var _ settlement.Backend = (*Client)(nil)

// New connects to the chain RPC and initializes the contract bindings.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*Client, error) {
	c := &Client{
		RPCURL:             cfg.RPCURL,
		GasMultiplier:      cfg.GasMultiplier,
		MaxGasPrice:        cfg.MaxGasPrice,
		PayrollAddress:     common.HexToAddress(cfg.PayrollAddress),
		DEXAddress:         common.HexToAddress(cfg.DEXAddress),
		BatchCallerAddress: common.HexToAddress(cfg.BatchCallerAddress),
		log:                log,
	}
	if err := c.connect(ctx, cfg.PrivateKey); err != nil {
		return nil, err
	}
	return c, nil
}

// connect establishes the RPC connection and initializes contract instances.
func (c *Client) connect(ctx context.Context, privateKey string) error {
	client, err := ethclient.DialContext(ctx, c.RPCURL)
	if err != nil {
		return fmt.Errorf("failed to connect to client: %v", err)
	}
	c.Client = client

	auth, err := createAuthenticator(ctx, client, privateKey)
	if err != nil {
		return fmt.Errorf("failed to create authenticator: %v", err)
	}
	c.Auth = auth

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chain ID: %v", err)
	}
	c.ChainID = chainID

	payroll, err := contracts.NewPayroll(c.PayrollAddress, client)
	if err != nil {
		return fmt.Errorf("failed to initialize payroll contract: %v", err)
	}
	c.Payroll = payroll

	batchCaller, err := contracts.NewBatchCaller(c.BatchCallerAddress, client)
	if err != nil {
		return fmt.Errorf("failed to initialize batch caller: %v", err)
	}
	c.BatchCaller = batchCaller

	dex, err := contracts.NewStablecoinDEX(c.DEXAddress, client)
	if err != nil {
		return fmt.Errorf("failed to initialize DEX binding: %v", err)
	}
	c.DEX = dex

	c.log.InfoWith(logger.Chain, "Connected to chain %s at %s", chainID.String(), c.RPCURL)
	return nil
}

// EmployerAddress returns the account the settler signs with.
func (c *Client) EmployerAddress() common.Address {
	return c.Auth.From
}

// UpdateGasPrice refreshes the gas price from the network, applies the
// configured multiplier, and caps the result at MaxGasPrice.
func (c *Client) UpdateGasPrice(ctx context.Context) (*big.Int, error) {
	if c.Client == nil {
		return nil, fmt.Errorf("client not connected")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	gasPrice, err := c.Client.SuggestGasPrice(timeoutCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %v", err)
	}

	multiplied := new(big.Float).Mul(
		new(big.Float).SetInt(gasPrice),
		big.NewFloat(c.GasMultiplier),
	)
	finalGasPrice := new(big.Int)
	multiplied.Int(finalGasPrice)

	if c.MaxGasPrice != nil && finalGasPrice.Cmp(c.MaxGasPrice) > 0 {
		finalGasPrice = new(big.Int).Set(c.MaxGasPrice)
	}

	c.Auth.GasPrice = finalGasPrice

	gwei, _ := new(big.Float).Quo(
		new(big.Float).SetInt(finalGasPrice),
		big.NewFloat(1e9),
	).Float64()
	metrics.GasPrice.Set(gwei)

	return finalGasPrice, nil
}

// SendCalls bundles the ordered call list into one atomic batch transaction
// and waits for its receipt. The context bounds the whole interaction.
func (c *Client) SendCalls(ctx context.Context, calls []settlement.CallStep) (*settlement.Receipt, error) {
	if len(calls) == 0 {
		return nil, fmt.Errorf("no calls to send")
	}

	if _, err := c.UpdateGasPrice(ctx); err != nil {
		// Continue with the previous gas price rather than failing the run.
		c.log.ErrorWith(logger.Chain, "Failed to update gas price: %v", err)
	}

	batch := make([]contracts.BatchCall, len(calls))
	for i, call := range calls {
		batch[i] = contracts.BatchCall{To: call.To, Data: call.Data}
	}

	opts := *c.Auth
	opts.Context = ctx

	tx, err := c.BatchCaller.Execute(&opts, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to submit batch transaction: %w", err)
	}

	c.log.DebugWith(logger.Chain, "Batch transaction sent: %s (%d calls)", tx.Hash().Hex(), len(calls))

	receipt, err := bind.WaitMined(ctx, c.Client, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for batch transaction %s: %w", tx.Hash().Hex(), err)
	}

	return &settlement.Receipt{
		TxHash:            receipt.TxHash,
		BlockNumber:       receipt.BlockNumber,
		GasUsed:           receipt.GasUsed,
		EffectiveGasPrice: receipt.EffectiveGasPrice,
		Status:            receipt.Status,
	}, nil
}

// GetLatestBlockNumber gets the latest block number from the chain.
func (c *Client) GetLatestBlockNumber(ctx context.Context) (uint64, error) {
	if c.Client == nil {
		return 0, fmt.Errorf("client not connected")
	}
	return c.Client.BlockNumber(ctx)
}

// EmployerStats reads the employer's aggregate payroll stats from the
// contract.
func (c *Client) EmployerStats(ctx context.Context) (contracts.EmployerStats, error) {
	return c.Payroll.GetEmployerStats(&bind.CallOpts{Context: ctx}, c.EmployerAddress())
}

// EmployerTokenStats reads the employer's total paid for one token.
func (c *Client) EmployerTokenStats(ctx context.Context, token common.Address) (*big.Int, error) {
	return c.Payroll.GetEmployerTokenStats(&bind.CallOpts{Context: ctx}, c.EmployerAddress(), token)
}

// TotalPayments reads the global payment counter from the contract.
func (c *Client) TotalPayments(ctx context.Context) (*big.Int, error) {
	return c.Payroll.TotalPayments(&bind.CallOpts{Context: ctx})
}

// TokenBalance reads the employer's balance of one token.
func (c *Client) TokenBalance(ctx context.Context, token common.Address) (*big.Int, error) {
	erc20, err := contracts.NewERC20(token, c.Client)
	if err != nil {
		return nil, err
	}
	return erc20.BalanceOf(&bind.CallOpts{Context: ctx}, c.EmployerAddress())
}

// Helper function to create authenticator
func createAuthenticator(ctx context.Context, client *ethclient.Client, privateKeyHex string) (*bind.TransactOpts, error) {
	privateKey, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %v", err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %v", err)
	}

	auth, err := bind.NewKeyedTransactorWithChainID(privateKey, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %v", err)
	}

	return auth, nil
}
