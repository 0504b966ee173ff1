package services

import (
	"context"

	"github.com/pharmaledger/pharma_ledger_app/internal/core/domain"
	"github.com/pharmaledger/pharma_ledger_app/internal/dto"
)

// PaymentReaderSvc defines read operations for customer payments.
type PaymentReaderSvc interface {
	// GetCustomerPayment retrieves a payment with its allocations populated.
	GetCustomerPayment(ctx context.Context, paymentID string) (*domain.CustomerPayment, error)

	// GetPaymentAllocations retrieves all allocations for a payment.
	GetPaymentAllocations(ctx context.Context, paymentID string) ([]domain.PaymentAllocation, error)

	// ListCustomerPayments retrieves payments matching the filters,
	// ordered by payment date descending.
	ListCustomerPayments(ctx context.Context, params dto.ListCustomerPaymentsParams) ([]domain.CustomerPayment, error)
}

// PaymentWriterSvc defines write operations for customer payments.
type PaymentWriterSvc interface {
	// CreateCustomerPayment records a new payment header.
	CreateCustomerPayment(ctx context.Context, req dto.CreateCustomerPaymentRequest, creator string) (*domain.CustomerPayment, error)

	// CreatePaymentAllocation allocates part of a payment to a target entry,
	// rejecting over-allocation.
	CreatePaymentAllocation(ctx context.Context, paymentID string, req dto.CreatePaymentAllocationRequest, creator string) (*domain.PaymentAllocation, error)

	// UpdateCustomerPayment updates a payment's date, amount or reference.
	UpdateCustomerPayment(ctx context.Context, paymentID string, req dto.UpdateCustomerPaymentRequest, updater string) (*domain.CustomerPayment, error)

	// DeleteCustomerPayment removes a payment and its allocations.
	DeleteCustomerPayment(ctx context.Context, paymentID string) error
}

// PaymentSvcFacade combines all payment service interfaces.
type PaymentSvcFacade interface {
	PaymentReaderSvc
	PaymentWriterSvc
}
