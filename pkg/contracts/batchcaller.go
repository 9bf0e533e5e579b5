package contracts

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// BatchCallerABI is the ABI of the atomic batch-call entrypoint. All inner
// calls execute in order within one transaction; if any reverts, the whole
// transaction reverts.
const BatchCallerABI = `[
	{
		"inputs": [
			{
				"components": [
					{"internalType": "address", "name": "to", "type": "address"},
					{"internalType": "bytes", "name": "data", "type": "bytes"}
				],
				"internalType": "struct BatchCaller.Call[]",
				"name": "calls",
				"type": "tuple[]"
			}
		],
		"name": "execute",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

// BatchCall is one inner call of an atomic batch.
type BatchCall struct {
	To   common.Address
	Data []byte
}

var parsedBatchCallerABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(BatchCallerABI))
	if err != nil {
		panic(err)
	}
	return parsed
}()

// BatchCaller is a minimal Go binding around the batch-call entrypoint.
type BatchCaller struct {
	contract *bind.BoundContract
}

// NewBatchCaller creates a new instance of BatchCaller, bound to a specific deployed contract.
func NewBatchCaller(address common.Address, backend bind.ContractBackend) (*BatchCaller, error) {
	contract := bind.NewBoundContract(address, parsedBatchCallerABI, backend, backend, backend)
	return &BatchCaller{contract: contract}, nil
}

// Execute is a paid mutator transaction binding the contract method execute.
//
// Solidity: function execute((address,bytes)[] calls) returns()
func (_BatchCaller *BatchCaller) Execute(opts *bind.TransactOpts, calls []BatchCall) (*types.Transaction, error) {
	return _BatchCaller.contract.Transact(opts, "execute", calls)
}
