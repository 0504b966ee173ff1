package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pharmaledger/pharma_ledger_app/internal/apperrors"
	"github.com/pharmaledger/pharma_ledger_app/internal/core/domain"
	portsrepo "github.com/pharmaledger/pharma_ledger_app/internal/core/ports/repositories"
	"github.com/pharmaledger/pharma_ledger_app/internal/dto"
	"github.com/pharmaledger/pharma_ledger_app/internal/models"
	"github.com/pharmaledger/pharma_ledger_app/internal/utils/mapping"
)

// PgxPaymentRepository persists customer payments and their allocations.
type PgxPaymentRepository struct {
	BaseRepository
}

// newPgxPaymentRepository creates a new repository for payment data.
func newPgxPaymentRepository(pool *pgxpool.Pool) portsrepo.PaymentRepositoryFacade {
	return &PgxPaymentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PaymentRepositoryFacade = (*PgxPaymentRepository)(nil)

const paymentColumns = `payment_id, customer_id, payment_date, amount, reference, created_at, created_by, last_updated_at, last_updated_by`

const allocationColumns = `allocation_id, payment_id, target_entry_id, amount, created_at, created_by, last_updated_at, last_updated_by`

func scanPayment(row pgx.Row) (*models.CustomerPayment, error) {
	var m models.CustomerPayment
	err := row.Scan(
		&m.PaymentID,
		&m.CustomerID,
		&m.PaymentDate,
		&m.Amount,
		&m.Reference,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanAllocation(row pgx.Row) (*models.PaymentAllocation, error) {
	var m models.PaymentAllocation
	err := row.Scan(
		&m.AllocationID,
		&m.PaymentID,
		&m.TargetEntryID,
		&m.Amount,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SavePayment inserts a new payment header.
func (r *PgxPaymentRepository) SavePayment(ctx context.Context, payment domain.CustomerPayment) error {
	m := mapping.ToModelCustomerPayment(payment)

	query := `
		INSERT INTO customer_payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.PaymentID,
		m.CustomerID,
		m.PaymentDate,
		m.Amount,
		m.Reference,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert customer payment "+m.PaymentID, err)
	}
	return nil
}

// SaveAllocation inserts one allocation. The payment row is locked and the sum of
// existing allocations re-checked inside the same transaction, so two concurrent
// allocations cannot jointly exceed the payment amount.
func (r *PgxPaymentRepository) SaveAllocation(ctx context.Context, allocation domain.PaymentAllocation) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	lockQuery := `SELECT amount FROM customer_payments WHERE payment_id = $1 FOR UPDATE;`
	var paymentAmount decimal.Decimal
	if err := tx.QueryRow(ctx, lockQuery, allocation.PaymentID).Scan(&paymentAmount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.NewAppError(500, "failed to lock payment "+allocation.PaymentID, err)
	}

	sumQuery := `SELECT COALESCE(SUM(amount), 0) FROM payment_allocations WHERE payment_id = $1;`
	var allocated decimal.Decimal
	if err := tx.QueryRow(ctx, sumQuery, allocation.PaymentID).Scan(&allocated); err != nil {
		return apperrors.NewAppError(500, "failed to sum allocations for payment "+allocation.PaymentID, err)
	}

	if allocated.Add(allocation.Amount).GreaterThan(paymentAmount) {
		return fmt.Errorf("%w: payment %s has %s allocated of %s", apperrors.ErrOverAllocation,
			allocation.PaymentID, allocated.String(), paymentAmount.String())
	}

	m := mapping.ToModelPaymentAllocation(allocation)
	insertQuery := `
		INSERT INTO payment_allocations (` + allocationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err = tx.Exec(ctx, insertQuery,
		m.AllocationID,
		m.PaymentID,
		m.TargetEntryID,
		m.Amount,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert allocation "+m.AllocationID, err)
	}

	return r.Commit(ctx, tx)
}

// FindPaymentByID retrieves a payment header by id.
func (r *PgxPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.CustomerPayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM customer_payments WHERE payment_id = $1;`

	m, err := scanPayment(r.Pool.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find payment "+paymentID, err)
	}

	payment := mapping.ToDomainCustomerPayment(*m)
	return &payment, nil
}

// FindAllocationsByPaymentID retrieves a payment's allocations, oldest first.
func (r *PgxPaymentRepository) FindAllocationsByPaymentID(ctx context.Context, paymentID string) ([]domain.PaymentAllocation, error) {
	query := `SELECT ` + allocationColumns + ` FROM payment_allocations WHERE payment_id = $1 ORDER BY created_at ASC;`

	rows, err := r.Pool.Query(ctx, query, paymentID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query allocations for payment "+paymentID, err)
	}
	defer rows.Close()

	allocations := []domain.PaymentAllocation{}
	for rows.Next() {
		m, err := scanAllocation(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan allocation row", err)
		}
		allocations = append(allocations, mapping.ToDomainPaymentAllocation(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating allocation rows", err)
	}
	return allocations, nil
}

// ListPayments retrieves payments matching the filters, newest first.
func (r *PgxPaymentRepository) ListPayments(ctx context.Context, params dto.ListCustomerPaymentsParams) ([]domain.CustomerPayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM customer_payments WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if params.CustomerID != nil {
		query += fmt.Sprintf(` AND customer_id = $%d`, argPos)
		args = append(args, *params.CustomerID)
		argPos++
	}
	if params.DateFrom != nil {
		query += fmt.Sprintf(` AND payment_date >= $%d`, argPos)
		args = append(args, *params.DateFrom)
		argPos++
	}
	if params.DateTo != nil {
		query += fmt.Sprintf(` AND payment_date <= $%d`, argPos)
		args = append(args, *params.DateTo)
		argPos++
	}

	query += ` ORDER BY payment_date DESC, created_at DESC;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query customer payments", err)
	}
	defer rows.Close()

	payments := []domain.CustomerPayment{}
	for rows.Next() {
		m, err := scanPayment(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan payment row", err)
		}
		payments = append(payments, mapping.ToDomainCustomerPayment(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating payment rows", err)
	}
	return payments, nil
}

// UpdatePayment persists changes to a payment header. The payment row is locked
// and the sum of existing allocations re-checked inside the same transaction, so
// a concurrent allocation cannot leave the amount below the allocated total.
func (r *PgxPaymentRepository) UpdatePayment(ctx context.Context, payment domain.CustomerPayment) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	lockQuery := `SELECT amount FROM customer_payments WHERE payment_id = $1 FOR UPDATE;`
	var currentAmount decimal.Decimal
	if err := tx.QueryRow(ctx, lockQuery, payment.PaymentID).Scan(&currentAmount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.NewAppError(500, "failed to lock payment "+payment.PaymentID, err)
	}

	sumQuery := `SELECT COALESCE(SUM(amount), 0) FROM payment_allocations WHERE payment_id = $1;`
	var allocated decimal.Decimal
	if err := tx.QueryRow(ctx, sumQuery, payment.PaymentID).Scan(&allocated); err != nil {
		return apperrors.NewAppError(500, "failed to sum allocations for payment "+payment.PaymentID, err)
	}

	if payment.Amount.LessThan(allocated) {
		return fmt.Errorf("%w: payment %s has %s allocated, cannot shrink to %s", apperrors.ErrConflict,
			payment.PaymentID, allocated.String(), payment.Amount.String())
	}

	m := mapping.ToModelCustomerPayment(payment)
	updateQuery := `
		UPDATE customer_payments
		SET customer_id = $2, payment_date = $3, amount = $4, reference = $5, last_updated_at = $6, last_updated_by = $7
		WHERE payment_id = $1;
	`
	if _, err := tx.Exec(ctx, updateQuery,
		m.PaymentID,
		m.CustomerID,
		m.PaymentDate,
		m.Amount,
		m.Reference,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	); err != nil {
		return apperrors.NewAppError(500, "failed to update payment "+m.PaymentID, err)
	}

	return r.Commit(ctx, tx)
}

// DeletePayment removes a payment and its owned allocations in one transaction.
func (r *PgxPaymentRepository) DeletePayment(ctx context.Context, paymentID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM payment_allocations WHERE payment_id = $1;`, paymentID); err != nil {
		return apperrors.NewAppError(500, "failed to delete allocations for payment "+paymentID, err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM customer_payments WHERE payment_id = $1;`, paymentID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete payment "+paymentID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return r.Commit(ctx, tx)
}
