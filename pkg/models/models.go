package models

import (
	"time"
)

// PaymentIntent describes one requested payment from the employer to an
// employee, denominated in that employee's preferred currency.
type PaymentIntent struct {
	EmployeeID int    `json:"employee_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Recipient  string `json:"recipient"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	Memo       string `json:"memo"`
}

// SettlementState tracks the confirmation state of a single intent within a
// batch run. States never transition backward.
type SettlementState string

const (
	StateWaiting    SettlementState = "waiting"
	StateProcessing SettlementState = "processing"
	StateConfirmed  SettlementState = "confirmed"
	StateFailed     SettlementState = "failed"
)

// SettlementOutcome is populated once the network confirms (or rejects) the
// batch transaction and is immutable afterwards.
type SettlementOutcome struct {
	TxHash         string        `json:"tx_hash"`
	BlockNumber    uint64        `json:"block_number"`
	GasUsed        uint64        `json:"gas_used"`
	Fee            string        `json:"fee"`
	SettlementTime time.Duration `json:"settlement_time"`
	Success        bool          `json:"success"`
}

// PayrollRecord is one entry in the locally persisted payroll history. It is
// a UI convenience, not a source of truth; the chain stays authoritative.
type PayrollRecord struct {
	ID             string    `json:"id"`
	Date           time.Time `json:"date"`
	Employees      int       `json:"employees"`
	Total          string    `json:"total"`
	Fee            string    `json:"fee"`
	TxHash         string    `json:"tx_hash"`
	Status         string    `json:"status"`
	SettlementTime string    `json:"settlement_time"`
}

// PayrollTemplate is a named, reusable batch of payment intents.
type PayrollTemplate struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	CreatedAt time.Time       `json:"created_at"`
	Intents   []PaymentIntent `json:"intents"`
}
