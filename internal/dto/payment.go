package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmaledger/pharma_ledger_app/internal/core/domain"
)

// CreateCustomerPaymentRequest defines the expected input for recording a payment.
type CreateCustomerPaymentRequest struct {
	CustomerID  string          `json:"customerID" binding:"required"`
	PaymentDate time.Time       `json:"paymentDate" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Reference   string          `json:"reference" binding:"max=255"`
}

// UpdateCustomerPaymentRequest defines the fields editable on a payment.
// Amount may grow but never drop below the already-allocated total.
type UpdateCustomerPaymentRequest struct {
	PaymentDate *time.Time       `json:"paymentDate"`
	Amount      *decimal.Decimal `json:"amount"`
	Reference   *string          `json:"reference" binding:"omitempty,max=255"`
}

// CreatePaymentAllocationRequest allocates part of a payment to a target entry.
type CreatePaymentAllocationRequest struct {
	TargetEntryID string          `json:"targetEntryID" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
}

// ListCustomerPaymentsParams holds the filters for listing payments.
type ListCustomerPaymentsParams struct {
	CustomerID *string
	DateFrom   *time.Time
	DateTo     *time.Time
}

// PaymentAllocationResponse defines the data returned for an allocation.
type PaymentAllocationResponse struct {
	AllocationID  string          `json:"allocationID"`
	PaymentID     string          `json:"paymentID"`
	TargetEntryID string          `json:"targetEntryID"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// CustomerPaymentResponse defines the data returned for a payment.
type CustomerPaymentResponse struct {
	PaymentID   string                      `json:"paymentID"`
	CustomerID  string                      `json:"customerID"`
	PaymentDate time.Time                   `json:"paymentDate"`
	Amount      decimal.Decimal             `json:"amount"`
	Reference   string                      `json:"reference,omitempty"`
	Allocations []PaymentAllocationResponse `json:"allocations,omitempty"`
	CreatedAt   time.Time                   `json:"createdAt"`
}

// ListCustomerPaymentsResponse wraps the payment listing payload.
type ListCustomerPaymentsResponse struct {
	Payments []CustomerPaymentResponse `json:"payments"`
}

// ToPaymentAllocationResponse converts a domain allocation to a response DTO.
func ToPaymentAllocationResponse(a *domain.PaymentAllocation) PaymentAllocationResponse {
	return PaymentAllocationResponse{
		AllocationID:  a.AllocationID,
		PaymentID:     a.PaymentID,
		TargetEntryID: a.TargetEntryID,
		Amount:        a.Amount,
		CreatedAt:     a.CreatedAt,
	}
}

// ToPaymentAllocationResponses converts a slice of domain allocations to response DTOs.
func ToPaymentAllocationResponses(allocations []domain.PaymentAllocation) []PaymentAllocationResponse {
	responses := make([]PaymentAllocationResponse, len(allocations))
	for i := range allocations {
		responses[i] = ToPaymentAllocationResponse(&allocations[i])
	}
	return responses
}

// ToCustomerPaymentResponse converts a domain payment to a response DTO.
func ToCustomerPaymentResponse(p *domain.CustomerPayment) CustomerPaymentResponse {
	resp := CustomerPaymentResponse{
		PaymentID:   p.PaymentID,
		CustomerID:  p.CustomerID,
		PaymentDate: p.PaymentDate,
		Amount:      p.Amount,
		Reference:   p.Reference,
		CreatedAt:   p.CreatedAt,
	}
	if len(p.Allocations) > 0 {
		resp.Allocations = ToPaymentAllocationResponses(p.Allocations)
	}
	return resp
}

// ToCustomerPaymentResponses converts a slice of domain payments to response DTOs.
func ToCustomerPaymentResponses(payments []domain.CustomerPayment) []CustomerPaymentResponse {
	responses := make([]CustomerPaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToCustomerPaymentResponse(&payments[i])
	}
	return responses
}
