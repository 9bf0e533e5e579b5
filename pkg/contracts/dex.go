package contracts

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// StablecoinDEXABI is the ABI of the enshrined stablecoin swap precompile.
const StablecoinDEXABI = `[
	{
		"inputs": [
			{"internalType": "address", "name": "tokenIn", "type": "address"},
			{"internalType": "address", "name": "tokenOut", "type": "address"},
			{"internalType": "uint256", "name": "amountIn", "type": "uint256"},
			{"internalType": "uint256", "name": "minAmountOut", "type": "uint256"}
		],
		"name": "swapExactAmountIn",
		"outputs": [{"internalType": "uint256", "name": "amountOut", "type": "uint256"}],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

var parsedDEXABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(StablecoinDEXABI))
	if err != nil {
		panic(err)
	}
	return parsed
}()

// PackSwapExactAmountIn encodes calldata for swapExactAmountIn(tokenIn, tokenOut, amountIn, minAmountOut).
func PackSwapExactAmountIn(tokenIn, tokenOut common.Address, amountIn, minAmountOut *big.Int) ([]byte, error) {
	return parsedDEXABI.Pack("swapExactAmountIn", tokenIn, tokenOut, amountIn, minAmountOut)
}

// StablecoinDEX is a minimal Go binding around the swap precompile.
type StablecoinDEX struct {
	contract *bind.BoundContract
}

// NewStablecoinDEX creates a new instance of StablecoinDEX, bound to the precompile address.
func NewStablecoinDEX(address common.Address, backend bind.ContractBackend) (*StablecoinDEX, error) {
	contract := bind.NewBoundContract(address, parsedDEXABI, backend, backend, backend)
	return &StablecoinDEX{contract: contract}, nil
}

// SwapExactAmountIn is a paid mutator transaction binding the contract method swapExactAmountIn.
//
// Solidity: function swapExactAmountIn(address tokenIn, address tokenOut, uint256 amountIn, uint256 minAmountOut) returns(uint256 amountOut)
func (_DEX *StablecoinDEX) SwapExactAmountIn(opts *bind.TransactOpts, tokenIn, tokenOut common.Address, amountIn, minAmountOut *big.Int) (*types.Transaction, error) {
	return _DEX.contract.Transact(opts, "swapExactAmountIn", tokenIn, tokenOut, amountIn, minAmountOut)
}
