package contracts

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

// PayrollABI is the ABI of the SettleX payroll contract
const PayrollABI = `[
	{
		"inputs": [
			{"internalType": "address", "name": "employee", "type": "address"},
			{"internalType": "uint256", "name": "amount", "type": "uint256"},
			{"internalType": "address", "name": "token", "type": "address"},
			{"internalType": "bytes32", "name": "memo", "type": "bytes32"}
		],
		"name": "payEmployee",
		"outputs": [{"internalType": "bool", "name": "", "type": "bool"}],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "bytes32", "name": "batchId", "type": "bytes32"},
			{"internalType": "address", "name": "token", "type": "address"},
			{"internalType": "uint256", "name": "totalAmount", "type": "uint256"},
			{"internalType": "uint256", "name": "employeeCount", "type": "uint256"}
		],
		"name": "recordBatchPayroll",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "address", "name": "employer", "type": "address"}],
		"name": "isAuthorizedEmployer",
		"outputs": [{"internalType": "bool", "name": "", "type": "bool"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "address", "name": "employer", "type": "address"}],
		"name": "getEmployerStats",
		"outputs": [
			{"internalType": "uint256", "name": "totalPaid", "type": "uint256"},
			{"internalType": "uint256", "name": "paymentCount", "type": "uint256"},
			{"internalType": "bool", "name": "isAuthorized", "type": "bool"}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "employer", "type": "address"},
			{"internalType": "address", "name": "token", "type": "address"}
		],
		"name": "getEmployerTokenStats",
		"outputs": [{"internalType": "uint256", "name": "totalPaid", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "totalPayments",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "internalType": "address", "name": "employer", "type": "address"},
			{"indexed": true, "internalType": "address", "name": "employee", "type": "address"},
			{"indexed": true, "internalType": "address", "name": "token", "type": "address"},
			{"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"},
			{"indexed": false, "internalType": "bytes32", "name": "memo", "type": "bytes32"},
			{"indexed": false, "internalType": "uint256", "name": "timestamp", "type": "uint256"}
		],
		"name": "PaymentExecuted",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "internalType": "address", "name": "employer", "type": "address"},
			{"indexed": true, "internalType": "bytes32", "name": "batchId", "type": "bytes32"},
			{"indexed": true, "internalType": "address", "name": "token", "type": "address"},
			{"indexed": false, "internalType": "uint256", "name": "totalAmount", "type": "uint256"},
			{"indexed": false, "internalType": "uint256", "name": "employeeCount", "type": "uint256"},
			{"indexed": false, "internalType": "uint256", "name": "timestamp", "type": "uint256"}
		],
		"name": "BatchPayrollExecuted",
		"type": "event"
	}
]`

// Payroll is an auto generated Go binding around an Ethereum contract.
type Payroll struct {
	PayrollCaller     // Read-only binding to the contract
	PayrollTransactor // Write-only binding to the contract
	PayrollFilterer   // Log filterer for contract events
}

// PayrollCaller is an auto generated read-only Go binding around an Ethereum contract.
type PayrollCaller struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// PayrollTransactor is an auto generated write-only Go binding around an Ethereum contract.
type PayrollTransactor struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// PayrollFilterer is an auto generated log filtering Go binding around an Ethereum contract events.
type PayrollFilterer struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// NewPayroll creates a new instance of Payroll, bound to a specific deployed contract.
func NewPayroll(address common.Address, backend bind.ContractBackend) (*Payroll, error) {
	contract, err := bindPayroll(address, backend, backend, backend)
	if err != nil {
		return nil, err
	}
	return &Payroll{
		PayrollCaller:     PayrollCaller{contract: contract},
		PayrollTransactor: PayrollTransactor{contract: contract},
		PayrollFilterer:   PayrollFilterer{contract: contract},
	}, nil
}

// bindPayroll binds a generic wrapper to an already deployed contract.
func bindPayroll(address common.Address, caller bind.ContractCaller, transactor bind.ContractTransactor, filterer bind.ContractFilterer) (*bind.BoundContract, error) {
	parsed, err := abi.JSON(strings.NewReader(PayrollABI))
	if err != nil {
		return nil, err
	}
	return bind.NewBoundContract(address, parsed, caller, transactor, filterer), nil
}

// parsedPayrollABI caches the decoded ABI for calldata packing.
var parsedPayrollABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(PayrollABI))
	if err != nil {
		panic(err)
	}
	return parsed
}()

// PackPayEmployee encodes calldata for payEmployee(employee, amount, token, memo).
func PackPayEmployee(employee common.Address, amount *big.Int, token common.Address, memo [32]byte) ([]byte, error) {
	return parsedPayrollABI.Pack("payEmployee", employee, amount, token, memo)
}

// PackRecordBatchPayroll encodes calldata for recordBatchPayroll(batchId, token, totalAmount, employeeCount).
func PackRecordBatchPayroll(batchID [32]byte, token common.Address, totalAmount *big.Int, employeeCount *big.Int) ([]byte, error) {
	return parsedPayrollABI.Pack("recordBatchPayroll", batchID, token, totalAmount, employeeCount)
}

// PayEmployee is a paid mutator transaction binding the contract method payEmployee.
//
// Solidity: function payEmployee(address employee, uint256 amount, address token, bytes32 memo) returns(bool)
func (_Payroll *PayrollTransactor) PayEmployee(opts *bind.TransactOpts, employee common.Address, amount *big.Int, token common.Address, memo [32]byte) (*types.Transaction, error) {
	return _Payroll.contract.Transact(opts, "payEmployee", employee, amount, token, memo)
}

// RecordBatchPayroll is a paid mutator transaction binding the contract method recordBatchPayroll.
//
// Solidity: function recordBatchPayroll(bytes32 batchId, address token, uint256 totalAmount, uint256 employeeCount) returns()
func (_Payroll *PayrollTransactor) RecordBatchPayroll(opts *bind.TransactOpts, batchID [32]byte, token common.Address, totalAmount *big.Int, employeeCount *big.Int) (*types.Transaction, error) {
	return _Payroll.contract.Transact(opts, "recordBatchPayroll", batchID, token, totalAmount, employeeCount)
}

// IsAuthorizedEmployer is a free data retrieval call binding the contract method isAuthorizedEmployer.
//
// Solidity: function isAuthorizedEmployer(address employer) view returns(bool)
func (_Payroll *PayrollCaller) IsAuthorizedEmployer(opts *bind.CallOpts, employer common.Address) (bool, error) {
	var out []interface{}
	err := _Payroll.contract.Call(opts, &out, "isAuthorizedEmployer", employer)
	if err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// EmployerStats is the result tuple of getEmployerStats.
type EmployerStats struct {
	TotalPaid    *big.Int
	PaymentCount *big.Int
	IsAuthorized bool
}

// GetEmployerStats is a free data retrieval call binding the contract method getEmployerStats.
//
// Solidity: function getEmployerStats(address employer) view returns(uint256 totalPaid, uint256 paymentCount, bool isAuthorized)
func (_Payroll *PayrollCaller) GetEmployerStats(opts *bind.CallOpts, employer common.Address) (EmployerStats, error) {
	var out []interface{}
	err := _Payroll.contract.Call(opts, &out, "getEmployerStats", employer)
	if err != nil {
		return EmployerStats{}, err
	}
	return EmployerStats{
		TotalPaid:    *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		PaymentCount: *abi.ConvertType(out[1], new(*big.Int)).(**big.Int),
		IsAuthorized: *abi.ConvertType(out[2], new(bool)).(*bool),
	}, nil
}

// GetEmployerTokenStats is a free data retrieval call binding the contract method getEmployerTokenStats.
//
// Solidity: function getEmployerTokenStats(address employer, address token) view returns(uint256 totalPaid)
func (_Payroll *PayrollCaller) GetEmployerTokenStats(opts *bind.CallOpts, employer common.Address, token common.Address) (*big.Int, error) {
	var out []interface{}
	err := _Payroll.contract.Call(opts, &out, "getEmployerTokenStats", employer, token)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// TotalPayments is a free data retrieval call binding the contract method totalPayments.
//
// Solidity: function totalPayments() view returns(uint256)
func (_Payroll *PayrollCaller) TotalPayments(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	err := _Payroll.contract.Call(opts, &out, "totalPayments")
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// PayrollPaymentExecutedIterator is returned from FilterPaymentExecuted and is used to iterate over the raw logs and unpacked data for PaymentExecuted events raised by the Payroll contract.
type PayrollPaymentExecutedIterator struct {
	Event *PayrollPaymentExecuted // Event containing the contract specifics and raw log

	contract *bind.BoundContract // Generic contract to use for unpacking event data
	event    string              // Event name to use for unpacking event data

	logs chan types.Log        // Log channel receiving the found contract events
	sub  ethereum.Subscription // Subscription for errors, completion and termination
	done bool                  // Whether the subscription completed delivering logs
	fail error                 // Occurred error to stop iteration
}

// Next advances the iterator to the subsequent event, returning whether there
// are any more events found. In case of a retrieval or parsing error, false is
// returned and Error() can be queried for the exact failure.
func (it *PayrollPaymentExecutedIterator) Next() bool {
	// If the iterator failed, stop iterating
	if it.fail != nil {
		return false
	}
	// If the iterator completed, deliver directly whatever's available
	if it.done {
		select {
		case log := <-it.logs:
			it.Event = new(PayrollPaymentExecuted)
			if err := it.contract.UnpackLog(it.Event, it.event, log); err != nil {
				it.fail = err
				return false
			}
			it.Event.Raw = log
			return true

		default:
			return false
		}
	}
	// Iterator still in progress, wait for either a data or an error event
	select {
	case log := <-it.logs:
		it.Event = new(PayrollPaymentExecuted)
		if err := it.contract.UnpackLog(it.Event, it.event, log); err != nil {
			it.fail = err
			return false
		}
		it.Event.Raw = log
		return true

	case err := <-it.sub.Err():
		it.done = true
		it.fail = err
		return it.Next()
	}
}

// Error returns any retrieval or parsing error occurred during filtering.
func (it *PayrollPaymentExecutedIterator) Error() error {
	return it.fail
}

// Close terminates the iteration process, releasing any pending underlying
// resources.
func (it *PayrollPaymentExecutedIterator) Close() error {
	it.sub.Unsubscribe()
	return nil
}

// PayrollPaymentExecuted represents a PaymentExecuted event raised by the Payroll contract.
type PayrollPaymentExecuted struct {
	Employer  common.Address
	Employee  common.Address
	Token     common.Address
	Amount    *big.Int
	Memo      [32]byte
	Timestamp *big.Int
	Raw       types.Log // Blockchain specific contextual infos
}

// FilterPaymentExecuted is a free log retrieval operation binding the contract event PaymentExecuted.
//
// Solidity: event PaymentExecuted(address indexed employer, address indexed employee, address indexed token, uint256 amount, bytes32 memo, uint256 timestamp)
func (_Payroll *PayrollFilterer) FilterPaymentExecuted(opts *bind.FilterOpts, employer []common.Address, employee []common.Address, token []common.Address) (*PayrollPaymentExecutedIterator, error) {
	var employerRule []interface{}
	for _, employerItem := range employer {
		employerRule = append(employerRule, employerItem)
	}
	var employeeRule []interface{}
	for _, employeeItem := range employee {
		employeeRule = append(employeeRule, employeeItem)
	}
	var tokenRule []interface{}
	for _, tokenItem := range token {
		tokenRule = append(tokenRule, tokenItem)
	}

	logs, sub, err := _Payroll.contract.FilterLogs(opts, "PaymentExecuted", employerRule, employeeRule, tokenRule)
	if err != nil {
		return nil, err
	}
	return &PayrollPaymentExecutedIterator{contract: _Payroll.contract, event: "PaymentExecuted", logs: logs, sub: sub}, nil
}

// WatchPaymentExecuted is a free log subscription operation binding the contract event PaymentExecuted.
//
// Solidity: event PaymentExecuted(address indexed employer, address indexed employee, address indexed token, uint256 amount, bytes32 memo, uint256 timestamp)
func (_Payroll *PayrollFilterer) WatchPaymentExecuted(opts *bind.WatchOpts, sink chan<- *PayrollPaymentExecuted, employer []common.Address, employee []common.Address, token []common.Address) (event.Subscription, error) {
	var employerRule []interface{}
	for _, employerItem := range employer {
		employerRule = append(employerRule, employerItem)
	}
	var employeeRule []interface{}
	for _, employeeItem := range employee {
		employeeRule = append(employeeRule, employeeItem)
	}
	var tokenRule []interface{}
	for _, tokenItem := range token {
		tokenRule = append(tokenRule, tokenItem)
	}

	logs, sub, err := _Payroll.contract.WatchLogs(opts, "PaymentExecuted", employerRule, employeeRule, tokenRule)
	if err != nil {
		return nil, err
	}
	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case log := <-logs:
				// New log arrived, parse the event and forward to the user
				event := new(PayrollPaymentExecuted)
				if err := _Payroll.contract.UnpackLog(event, "PaymentExecuted", log); err != nil {
					return err
				}
				event.Raw = log

				select {
				case sink <- event:
				case err := <-sub.Err():
					return err
				case <-quit:
					return nil
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}

// ParsePaymentExecuted is a log parse operation binding the contract event PaymentExecuted.
//
// Solidity: event PaymentExecuted(address indexed employer, address indexed employee, address indexed token, uint256 amount, bytes32 memo, uint256 timestamp)
func (_Payroll *PayrollFilterer) ParsePaymentExecuted(log types.Log) (*PayrollPaymentExecuted, error) {
	event := new(PayrollPaymentExecuted)
	if err := _Payroll.contract.UnpackLog(event, "PaymentExecuted", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}

// PayrollBatchPayrollExecuted represents a BatchPayrollExecuted event raised by the Payroll contract.
type PayrollBatchPayrollExecuted struct {
	Employer      common.Address
	BatchId       [32]byte
	Token         common.Address
	TotalAmount   *big.Int
	EmployeeCount *big.Int
	Timestamp     *big.Int
	Raw           types.Log // Blockchain specific contextual infos
}

// ParseBatchPayrollExecuted is a log parse operation binding the contract event BatchPayrollExecuted.
//
// Solidity: event BatchPayrollExecuted(address indexed employer, bytes32 indexed batchId, address indexed token, uint256 totalAmount, uint256 employeeCount, uint256 timestamp)
func (_Payroll *PayrollFilterer) ParseBatchPayrollExecuted(log types.Log) (*PayrollBatchPayrollExecuted, error) {
	event := new(PayrollBatchPayrollExecuted)
	if err := _Payroll.contract.UnpackLog(event, "BatchPayrollExecuted", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}
