package accounting

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmaledger/pharma_ledger_app/internal/apperrors"
	"github.com/pharmaledger/pharma_ledger_app/internal/core/domain"
)

// LineTotals holds aggregated debit and credit sums for one group of journal lines.
type LineTotals struct {
	DebitTotal  decimal.Decimal
	CreditTotal decimal.Decimal
}

// ValidateLineAmounts checks that exactly one of debit/credit is set and positive.
func ValidateLineAmounts(line domain.JournalLine) error {
	debitSet := line.DebitAmount.IsPositive()
	creditSet := line.CreditAmount.IsPositive()

	if line.DebitAmount.IsNegative() || line.CreditAmount.IsNegative() {
		return fmt.Errorf("%w: line amounts must not be negative for account %s", apperrors.ErrValidation, line.AccountID)
	}
	if debitSet == creditSet {
		// Either both sides set or both zero.
		return fmt.Errorf("%w: exactly one of debit or credit must be positive for account %s", apperrors.ErrValidation, line.AccountID)
	}
	return nil
}

// SumLines returns the independent debit and credit sums across lines.
func SumLines(lines []domain.JournalLine) LineTotals {
	totals := LineTotals{DebitTotal: decimal.Zero, CreditTotal: decimal.Zero}
	for _, line := range lines {
		totals.DebitTotal = totals.DebitTotal.Add(line.DebitAmount)
		totals.CreditTotal = totals.CreditTotal.Add(line.CreditAmount)
	}
	return totals
}

// IsBalanced reports whether the lines' debit and credit sums are exactly equal.
// Amounts are exact decimals, so no rounding tolerance is needed or applied.
// An entry with zero lines is balanced (0 == 0); callers that require a minimum
// line count enforce it separately.
func IsBalanced(lines []domain.JournalLine) bool {
	totals := SumLines(lines)
	return totals.DebitTotal.Equal(totals.CreditTotal)
}

// ValidateEntryLines enforces the per-line and whole-entry ledger invariants on a
// set of lines about to be posted.
func ValidateEntryLines(lines []domain.JournalLine) error {
	for _, line := range lines {
		if err := ValidateLineAmounts(line); err != nil {
			return err
		}
	}
	totals := SumLines(lines)
	if !totals.DebitTotal.Equal(totals.CreditTotal) {
		return fmt.Errorf("%w: debits sum is %s and credits sum is %s",
			apperrors.ErrUnbalancedEntry, totals.DebitTotal.String(), totals.CreditTotal.String())
	}
	return nil
}

// SummarizeLines groups journal lines by keyFn and sums debits and credits per group.
// It is a pure projection; input ordering does not affect the result.
func SummarizeLines(lines []domain.JournalLine, keyFn func(domain.JournalLine) string) map[string]LineTotals {
	result := make(map[string]LineTotals)
	for _, line := range lines {
		key := keyFn(line)
		totals := result[key]
		totals.DebitTotal = totals.DebitTotal.Add(line.DebitAmount)
		totals.CreditTotal = totals.CreditTotal.Add(line.CreditAmount)
		result[key] = totals
	}
	return result
}

// PeriodWindow derives the half-open [start, end) window for an accounting
// period; end is the first instant of the following period, so intraday
// timestamps on the period's last day fall inside the window. month == 0 means
// the whole year. Days-in-month comes from the calendar, so leap-year
// Februaries extend to day 29.
func PeriodWindow(year int, month int) (time.Time, time.Time, error) {
	if year < 1 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: year must be positive", apperrors.ErrValidation)
	}
	if month < 0 || month > 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: month must be between 1 and 12", apperrors.ErrValidation)
	}

	if month == 0 {
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0), nil
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0), nil
}
