package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmaledger/pharma_ledger_app/internal/apperrors"
	"github.com/pharmaledger/pharma_ledger_app/internal/core/domain"
	portsrepo "github.com/pharmaledger/pharma_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/pharmaledger/pharma_ledger_app/internal/core/ports/services"
	"github.com/pharmaledger/pharma_ledger_app/internal/dto"
	"github.com/pharmaledger/pharma_ledger_app/internal/middleware"
)

var (
	ErrPaymentAmountNotPositive    = fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	ErrAllocationAmountNotPositive = fmt.Errorf("%w: allocation amount must be positive", apperrors.ErrValidation)
	ErrPaymentBelowAllocations     = fmt.Errorf("%w: payment amount cannot drop below allocated total", apperrors.ErrConflict)
)

// paymentService provides customer payment and allocation operations.
type paymentService struct {
	paymentRepo portsrepo.PaymentRepositoryFacade
	journalRepo portsrepo.JournalRepositoryFacade
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(paymentRepo portsrepo.PaymentRepositoryFacade, journalRepo portsrepo.JournalRepositoryFacade) portssvc.PaymentSvcFacade {
	return &paymentService{
		paymentRepo: paymentRepo,
		journalRepo: journalRepo,
	}
}

var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

// CreateCustomerPayment records a new payment header.
func (s *paymentService) CreateCustomerPayment(ctx context.Context, req dto.CreateCustomerPaymentRequest, creator string) (*domain.CustomerPayment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrPaymentAmountNotPositive
	}

	now := time.Now().UTC()
	payment := domain.CustomerPayment{
		PaymentID:   uuid.NewString(),
		CustomerID:  req.CustomerID,
		PaymentDate: req.PaymentDate,
		Amount:      req.Amount,
		Reference:   req.Reference,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creator,
			LastUpdatedAt: now,
			LastUpdatedBy: creator,
		},
	}

	if err := s.paymentRepo.SavePayment(ctx, payment); err != nil {
		logger.Error("Failed to save customer payment", slog.String("customer_id", req.CustomerID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save customer payment: %w", err)
	}

	logger.Info("Customer payment created", slog.String("payment_id", payment.PaymentID), slog.String("customer_id", payment.CustomerID))
	return &payment, nil
}

// CreatePaymentAllocation allocates part of a payment to a target journal entry.
// The allocation sum invariant is checked twice: here against a fresh read for a
// friendly error, and again by the repository under a row lock so concurrent
// allocations cannot jointly overshoot.
func (s *paymentService) CreatePaymentAllocation(ctx context.Context, paymentID string, req dto.CreatePaymentAllocationRequest, creator string) (*domain.PaymentAllocation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrAllocationAmountNotPositive
	}

	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment %s: %w", paymentID, err)
	}

	// The allocation target must be an existing ledger entry.
	if _, err := s.journalRepo.FindEntryByID(ctx, req.TargetEntryID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: target entry %s", apperrors.ErrNotFound, req.TargetEntryID)
		}
		return nil, fmt.Errorf("failed to find target entry %s: %w", req.TargetEntryID, err)
	}

	existing, err := s.paymentRepo.FindAllocationsByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch allocations for payment %s: %w", paymentID, err)
	}

	allocated := decimal.Zero
	for _, a := range existing {
		allocated = allocated.Add(a.Amount)
	}
	if allocated.Add(req.Amount).GreaterThan(payment.Amount) {
		return nil, fmt.Errorf("%w: %s allocated, %s requested, %s available",
			apperrors.ErrOverAllocation, allocated.String(), req.Amount.String(), payment.Amount.Sub(allocated).String())
	}

	now := time.Now().UTC()
	allocation := domain.PaymentAllocation{
		AllocationID:  uuid.NewString(),
		PaymentID:     paymentID,
		TargetEntryID: req.TargetEntryID,
		Amount:        req.Amount,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creator,
			LastUpdatedAt: now,
			LastUpdatedBy: creator,
		},
	}

	if err := s.paymentRepo.SaveAllocation(ctx, allocation); err != nil {
		if !errors.Is(err, apperrors.ErrOverAllocation) {
			logger.Error("Failed to save payment allocation", slog.String("payment_id", paymentID), slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to save payment allocation: %w", err)
	}

	logger.Info("Payment allocation created", slog.String("payment_id", paymentID), slog.String("allocation_id", allocation.AllocationID))
	return &allocation, nil
}

// GetCustomerPayment retrieves a payment with its allocations populated.
func (s *paymentService) GetCustomerPayment(ctx context.Context, paymentID string) (*domain.CustomerPayment, error) {
	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment %s: %w", paymentID, err)
	}

	allocations, err := s.paymentRepo.FindAllocationsByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch allocations for payment %s: %w", paymentID, err)
	}
	payment.Allocations = allocations
	return payment, nil
}

// GetPaymentAllocations retrieves all allocations for a payment.
func (s *paymentService) GetPaymentAllocations(ctx context.Context, paymentID string) ([]domain.PaymentAllocation, error) {
	if _, err := s.paymentRepo.FindPaymentByID(ctx, paymentID); err != nil {
		return nil, fmt.Errorf("failed to find payment %s: %w", paymentID, err)
	}
	allocations, err := s.paymentRepo.FindAllocationsByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch allocations for payment %s: %w", paymentID, err)
	}
	return allocations, nil
}

// ListCustomerPayments retrieves payments matching the filters, newest first.
func (s *paymentService) ListCustomerPayments(ctx context.Context, params dto.ListCustomerPaymentsParams) ([]domain.CustomerPayment, error) {
	payments, err := s.paymentRepo.ListPayments(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list customer payments: %w", err)
	}
	return payments, nil
}

// UpdateCustomerPayment updates a payment's date, amount or reference. The amount
// may never drop below the already-allocated total.
func (s *paymentService) UpdateCustomerPayment(ctx context.Context, paymentID string, req dto.UpdateCustomerPaymentRequest, updater string) (*domain.CustomerPayment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment %s: %w", paymentID, err)
	}

	updated := false
	if req.PaymentDate != nil {
		payment.PaymentDate = *req.PaymentDate
		updated = true
	}
	if req.Reference != nil {
		payment.Reference = *req.Reference
		updated = true
	}
	if req.Amount != nil {
		if req.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, ErrPaymentAmountNotPositive
		}
		allocations, err := s.paymentRepo.FindAllocationsByPaymentID(ctx, paymentID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch allocations for payment %s: %w", paymentID, err)
		}
		allocated := decimal.Zero
		for _, a := range allocations {
			allocated = allocated.Add(a.Amount)
		}
		if req.Amount.LessThan(allocated) {
			return nil, fmt.Errorf("%w: %s allocated, %s requested", ErrPaymentBelowAllocations, allocated.String(), req.Amount.String())
		}
		payment.Amount = *req.Amount
		updated = true
	}
	if !updated {
		return payment, nil
	}

	payment.LastUpdatedAt = time.Now().UTC()
	payment.LastUpdatedBy = updater

	if err := s.paymentRepo.UpdatePayment(ctx, *payment); err != nil {
		logger.Error("Failed to update customer payment", slog.String("payment_id", paymentID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update customer payment: %w", err)
	}

	logger.Info("Customer payment updated", slog.String("payment_id", paymentID))
	return payment, nil
}

// DeleteCustomerPayment removes a payment together with its owned allocations.
func (s *paymentService) DeleteCustomerPayment(ctx context.Context, paymentID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.paymentRepo.FindPaymentByID(ctx, paymentID); err != nil {
		return fmt.Errorf("failed to find payment %s: %w", paymentID, err)
	}

	if err := s.paymentRepo.DeletePayment(ctx, paymentID); err != nil {
		logger.Error("Failed to delete customer payment", slog.String("payment_id", paymentID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete customer payment: %w", err)
	}

	logger.Info("Customer payment deleted", slog.String("payment_id", paymentID))
	return nil
}
