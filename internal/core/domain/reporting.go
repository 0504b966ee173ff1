package domain

import "github.com/shopspring/decimal"

// AccountActivityRow is one account's aggregated debit/credit totals over a period.
type AccountActivityRow struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	DebitTotal  decimal.Decimal `json:"debitTotal"`
	CreditTotal decimal.Decimal `json:"creditTotal"`
}

// NetAmount returns the account's net movement with the sign convention of its type:
// debit-normal for assets and expenses, credit-normal otherwise.
func (r AccountActivityRow) NetAmount() decimal.Decimal {
	switch r.AccountType {
	case Asset, Expense:
		return r.DebitTotal.Sub(r.CreditTotal)
	default:
		return r.CreditTotal.Sub(r.DebitTotal)
	}
}

// PAndLReport is a profit and loss summary over a period.
type PAndLReport struct {
	Revenue       []AccountActivityRow `json:"revenue"`
	Expenses      []AccountActivityRow `json:"expenses"`
	TotalRevenue  decimal.Decimal      `json:"totalRevenue"`
	TotalExpenses decimal.Decimal      `json:"totalExpenses"`
	NetProfit     decimal.Decimal      `json:"netProfit"`
}

// BalanceSheetReport is a balance sheet snapshot as of a date.
type BalanceSheetReport struct {
	Assets           []AccountActivityRow `json:"assets"`
	Liabilities      []AccountActivityRow `json:"liabilities"`
	Equity           []AccountActivityRow `json:"equity"`
	TotalAssets      decimal.Decimal      `json:"totalAssets"`
	TotalLiabilities decimal.Decimal      `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal      `json:"totalEquity"`
}
