package services

import (
	"context"
	"time"

	"github.com/pharmaledger/pharma_ledger_app/internal/core/domain"
)

// ReportingSvcFacade defines the read-side reporting operations.
type ReportingSvcFacade interface {
	// AccountActivity returns per-account debit/credit totals over the period.
	AccountActivity(ctx context.Context, from, to time.Time) ([]domain.AccountActivityRow, error)

	// ProfitAndLoss generates a profit and loss report for the period.
	ProfitAndLoss(ctx context.Context, from, to time.Time) (*domain.PAndLReport, error)

	// BalanceSheet generates a balance sheet snapshot as of a date.
	BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error)
}
