package repositories

import (
	"context"
	"time"

	"github.com/pharmaledger/pharma_ledger_app/internal/core/domain"
)

// ReportingRepository defines the read-side aggregation queries.
// Drafts never contribute; reversed originals and their reversals both do and cancel out.
type ReportingRepository interface {
	// GetAccountActivityData sums debits and credits per account over the
	// half-open period [from, to).
	GetAccountActivityData(ctx context.Context, from, to time.Time) ([]domain.AccountActivityRow, error)

	// GetProfitAndLossData returns revenue and expense account activity over the
	// half-open period [from, to).
	GetProfitAndLossData(ctx context.Context, from, to time.Time) (revenue []domain.AccountActivityRow, expenses []domain.AccountActivityRow, err error)

	// GetBalanceSheetData returns asset, liability and equity account activity up to asOf.
	GetBalanceSheetData(ctx context.Context, asOf time.Time) (assets []domain.AccountActivityRow, liabilities []domain.AccountActivityRow, equity []domain.AccountActivityRow, err error)
}
