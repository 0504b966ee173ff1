package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerPayment represents one row of the customer_payments table.
type CustomerPayment struct {
	PaymentID   string          `db:"payment_id"`
	CustomerID  string          `db:"customer_id"`
	PaymentDate time.Time       `db:"payment_date"`
	Amount      decimal.Decimal `db:"amount"`
	Reference   string          `db:"reference"`
	AuditFields
}

// PaymentAllocation represents one row of the payment_allocations table.
type PaymentAllocation struct {
	AllocationID  string          `db:"allocation_id"`
	PaymentID     string          `db:"payment_id"`
	TargetEntryID string          `db:"target_entry_id"`
	Amount        decimal.Decimal `db:"amount"`
	AuditFields
}
