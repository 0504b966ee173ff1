package accounting

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmaledger/pharma_ledger_app/internal/apperrors"
	"github.com/pharmaledger/pharma_ledger_app/internal/core/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func debitLine(accountID, amount string) domain.JournalLine {
	return domain.JournalLine{AccountID: accountID, DebitAmount: dec(amount), CreditAmount: decimal.Zero}
}

func creditLine(accountID, amount string) domain.JournalLine {
	return domain.JournalLine{AccountID: accountID, DebitAmount: decimal.Zero, CreditAmount: dec(amount)}
}

func TestValidateLineAmounts(t *testing.T) {
	assert.NoError(t, ValidateLineAmounts(debitLine("acc-1", "100")))
	assert.NoError(t, ValidateLineAmounts(creditLine("acc-1", "0.0001")))

	// Both sides zero.
	err := ValidateLineAmounts(domain.JournalLine{AccountID: "acc-1"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// Both sides set.
	err = ValidateLineAmounts(domain.JournalLine{AccountID: "acc-1", DebitAmount: dec("10"), CreditAmount: dec("10")})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// Negative amount.
	err = ValidateLineAmounts(domain.JournalLine{AccountID: "acc-1", DebitAmount: dec("-5")})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestSumLines(t *testing.T) {
	totals := SumLines([]domain.JournalLine{
		debitLine("acc-1", "500"),
		creditLine("acc-2", "300"),
		creditLine("acc-3", "200"),
	})
	assert.True(t, totals.DebitTotal.Equal(dec("500")), "debit total was %s", totals.DebitTotal)
	assert.True(t, totals.CreditTotal.Equal(dec("500")), "credit total was %s", totals.CreditTotal)
}

func TestIsBalanced(t *testing.T) {
	assert.True(t, IsBalanced([]domain.JournalLine{
		debitLine("acc-1", "500.00"),
		creditLine("acc-2", "500.00"),
	}))

	// A one-cent mismatch is not balanced; there is no rounding tolerance.
	assert.False(t, IsBalanced([]domain.JournalLine{
		debitLine("acc-1", "500.00"),
		creditLine("acc-2", "499.99"),
	}))

	// Zero lines sum to 0 == 0.
	assert.True(t, IsBalanced(nil))
}

func TestValidateEntryLines(t *testing.T) {
	err := ValidateEntryLines([]domain.JournalLine{
		debitLine("acc-1", "1000"),
		creditLine("acc-2", "600"),
		creditLine("acc-3", "400"),
	})
	assert.NoError(t, err)

	err = ValidateEntryLines([]domain.JournalLine{
		debitLine("acc-1", "1000"),
		creditLine("acc-2", "999.9999"),
	})
	assert.ErrorIs(t, err, apperrors.ErrUnbalancedEntry)

	// A malformed line fails before the balance check runs.
	err = ValidateEntryLines([]domain.JournalLine{
		{AccountID: "acc-1", DebitAmount: dec("10"), CreditAmount: dec("10")},
		{AccountID: "acc-2", DebitAmount: dec("10"), CreditAmount: dec("10")},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestSummarizeLines(t *testing.T) {
	lines := []domain.JournalLine{
		debitLine("acc-1", "100"),
		debitLine("acc-1", "50"),
		creditLine("acc-2", "120"),
		creditLine("acc-1", "30"),
	}

	byAccount := SummarizeLines(lines, func(l domain.JournalLine) string { return l.AccountID })

	require.Len(t, byAccount, 2)
	assert.True(t, byAccount["acc-1"].DebitTotal.Equal(dec("150")))
	assert.True(t, byAccount["acc-1"].CreditTotal.Equal(dec("30")))
	assert.True(t, byAccount["acc-2"].CreditTotal.Equal(dec("120")))
	assert.True(t, byAccount["acc-2"].DebitTotal.Equal(decimal.Zero))
}

func TestPeriodWindow_Month(t *testing.T) {
	start, end, err := PeriodWindow(2025, 2)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), end)

	// Leap year February still ends at March 1st; the 29th is inside the window.
	start, end, err = PeriodWindow(2024, 2)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), end)
	assert.True(t, time.Date(2024, time.February, 29, 15, 0, 0, 0, time.UTC).Before(end))

	start, end, err = PeriodWindow(2025, 12)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestPeriodWindow_WholeYear(t *testing.T) {
	start, end, err := PeriodWindow(2025, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestPeriodWindow_IncludesIntradayLastDay(t *testing.T) {
	start, end, err := PeriodWindow(2025, 2)
	require.NoError(t, err)

	// An entry timestamped mid-day on the period's last calendar day must fall
	// inside the half-open [start, end) window.
	entryDate := time.Date(2025, time.February, 28, 10, 0, 0, 0, time.UTC)
	assert.False(t, entryDate.Before(start))
	assert.True(t, entryDate.Before(end))
}

func TestPeriodWindow_Invalid(t *testing.T) {
	_, _, err := PeriodWindow(0, 1)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, _, err = PeriodWindow(2025, 13)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, _, err = PeriodWindow(2025, -1)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
