package pgsql

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharmaledger/pharma_ledger_app/internal/apperrors"
	"github.com/pharmaledger/pharma_ledger_app/internal/core/domain"
	portsrepo "github.com/pharmaledger/pharma_ledger_app/internal/core/ports/repositories"
)

// PgxReportingRepository runs the read-side aggregation queries. Drafts never
// contribute; a reversed original and its reversal both aggregate, so the pair
// cancels out arithmetically.
type PgxReportingRepository struct {
	BaseRepository
}

// newPgxReportingRepository creates a new repository for reporting queries.
func newPgxReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &PgxReportingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

const activityQuery = `
	SELECT a.account_id, a.code, a.name, a.account_type,
	       COALESCE(SUM(l.debit_amount), 0) AS debit_total,
	       COALESCE(SUM(l.credit_amount), 0) AS credit_total
	FROM journal_lines l
	JOIN journal_entries e ON e.entry_id = l.entry_id
	JOIN accounts a ON a.account_id = l.account_id
`

const activityGroupOrder = `
	GROUP BY a.account_id, a.code, a.name, a.account_type
	ORDER BY a.code ASC
`

func collectActivityRows(rows pgx.Rows) ([]domain.AccountActivityRow, error) {
	result := []domain.AccountActivityRow{}
	for rows.Next() {
		var row domain.AccountActivityRow
		var accountType string
		err := rows.Scan(
			&row.AccountID,
			&row.AccountCode,
			&row.AccountName,
			&accountType,
			&row.DebitTotal,
			&row.CreditTotal,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account activity row", err)
		}
		row.AccountType = domain.AccountType(accountType)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating account activity rows", err)
	}
	return result, nil
}

// GetAccountActivityData sums non-draft debits and credits per account over the period.
func (r *PgxReportingRepository) GetAccountActivityData(ctx context.Context, from, to time.Time) ([]domain.AccountActivityRow, error) {
	query := activityQuery + `
	WHERE e.status IN ('POSTED', 'REVERSED') AND e.entry_date >= $1 AND e.entry_date < $2
	` + activityGroupOrder + `;`

	rows, err := r.Pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query account activity", err)
	}
	defer rows.Close()

	return collectActivityRows(rows)
}

// GetProfitAndLossData returns revenue and expense account activity over the period.
func (r *PgxReportingRepository) GetProfitAndLossData(ctx context.Context, from, to time.Time) ([]domain.AccountActivityRow, []domain.AccountActivityRow, error) {
	query := activityQuery + `
	WHERE e.status IN ('POSTED', 'REVERSED') AND e.entry_date >= $1 AND e.entry_date < $2
	  AND a.account_type = $3
	` + activityGroupOrder + `;`

	revenue, err := r.queryActivityByType(ctx, query, from, to, domain.Revenue)
	if err != nil {
		return nil, nil, err
	}
	expenses, err := r.queryActivityByType(ctx, query, from, to, domain.Expense)
	if err != nil {
		return nil, nil, err
	}
	return revenue, expenses, nil
}

// GetBalanceSheetData returns asset, liability and equity account activity from the
// beginning of the ledger up to asOf.
func (r *PgxReportingRepository) GetBalanceSheetData(ctx context.Context, asOf time.Time) ([]domain.AccountActivityRow, []domain.AccountActivityRow, []domain.AccountActivityRow, error) {
	query := activityQuery + `
	WHERE e.status IN ('POSTED', 'REVERSED') AND e.entry_date <= $1
	  AND a.account_type = $2
	` + activityGroupOrder + `;`

	assets, err := r.queryActivityAsOf(ctx, query, asOf, domain.Asset)
	if err != nil {
		return nil, nil, nil, err
	}
	liabilities, err := r.queryActivityAsOf(ctx, query, asOf, domain.Liability)
	if err != nil {
		return nil, nil, nil, err
	}
	equity, err := r.queryActivityAsOf(ctx, query, asOf, domain.Equity)
	if err != nil {
		return nil, nil, nil, err
	}
	return assets, liabilities, equity, nil
}

func (r *PgxReportingRepository) queryActivityByType(ctx context.Context, query string, from, to time.Time, accountType domain.AccountType) ([]domain.AccountActivityRow, error) {
	rows, err := r.Pool.Query(ctx, query, from, to, string(accountType))
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query account activity for type "+string(accountType), err)
	}
	defer rows.Close()

	return collectActivityRows(rows)
}

func (r *PgxReportingRepository) queryActivityAsOf(ctx context.Context, query string, asOf time.Time, accountType domain.AccountType) ([]domain.AccountActivityRow, error) {
	rows, err := r.Pool.Query(ctx, query, asOf, string(accountType))
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query account activity for type "+string(accountType), err)
	}
	defer rows.Close()

	return collectActivityRows(rows)
}
