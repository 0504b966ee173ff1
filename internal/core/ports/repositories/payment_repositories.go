package repositories

import (
	"context"

	"github.com/pharmaledger/pharma_ledger_app/internal/core/domain"
	"github.com/pharmaledger/pharma_ledger_app/internal/dto"
)

// PaymentReader defines read operations for customer payment data.
type PaymentReader interface {
	// FindPaymentByID retrieves a payment header by its unique identifier.
	FindPaymentByID(ctx context.Context, paymentID string) (*domain.CustomerPayment, error)

	// FindAllocationsByPaymentID retrieves all allocations for a payment,
	// ordered by creation time ascending.
	FindAllocationsByPaymentID(ctx context.Context, paymentID string) ([]domain.PaymentAllocation, error)

	// ListPayments retrieves payments matching the filters, ordered by
	// payment date descending.
	ListPayments(ctx context.Context, params dto.ListCustomerPaymentsParams) ([]domain.CustomerPayment, error)
}

// PaymentWriter defines write operations for customer payment data.
type PaymentWriter interface {
	// SavePayment inserts a new payment header.
	SavePayment(ctx context.Context, payment domain.CustomerPayment) error

	// SaveAllocation inserts one allocation. The payment row is locked and the
	// allocation sum re-checked inside the same transaction; the insert fails with
	// apperrors.ErrOverAllocation when the sum would exceed the payment amount.
	SaveAllocation(ctx context.Context, allocation domain.PaymentAllocation) error

	// UpdatePayment persists changes to a payment header. Implementations must
	// lock the payment row and re-check the allocated total in the same
	// transaction, refusing an amount below it with ErrConflict.
	UpdatePayment(ctx context.Context, payment domain.CustomerPayment) error

	// DeletePayment removes a payment and its owned allocations atomically.
	DeletePayment(ctx context.Context, paymentID string) error
}

// PaymentRepositoryFacade combines all payment repository interfaces.
type PaymentRepositoryFacade interface {
	PaymentReader
	PaymentWriter
}
