package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerPayment is a payment received from a customer, later allocated across
// one or more open invoices or ledger entries.
type CustomerPayment struct {
	PaymentID   string          `json:"paymentID"` // Primary Key (UUID)
	CustomerID  string          `json:"customerID"`
	PaymentDate time.Time       `json:"paymentDate"`
	Amount      decimal.Decimal `json:"amount"`
	Reference   string          `json:"reference"` // Nullable bank/cheque reference
	Allocations []PaymentAllocation `json:"allocations,omitempty"` // Loaded on demand
	AuditFields
}

// PaymentAllocation assigns a portion of a payment to a target journal entry or invoice.
// The sum of a payment's allocations never exceeds the payment amount.
type PaymentAllocation struct {
	AllocationID  string          `json:"allocationID"` // Primary Key (UUID)
	PaymentID     string          `json:"paymentID"`    // FK -> CustomerPayment.paymentID (owning)
	TargetEntryID string          `json:"targetEntryID"`
	Amount        decimal.Decimal `json:"amount"`
	AuditFields
}
