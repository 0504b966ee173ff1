package dto

import (
	"github.com/shopspring/decimal"

	"github.com/pharmaledger/pharma_ledger_app/internal/core/domain"
)

// AccountActivityRowResponse is one row of an account activity report.
type AccountActivityRowResponse struct {
	AccountID   string             `json:"accountID"`
	AccountCode string             `json:"accountCode"`
	AccountName string             `json:"accountName"`
	AccountType domain.AccountType `json:"accountType"`
	DebitTotal  decimal.Decimal    `json:"debitTotal"`
	CreditTotal decimal.Decimal    `json:"creditTotal"`
	NetAmount   decimal.Decimal    `json:"netAmount"`
}

// AccountActivityResponse wraps the account activity report payload.
type AccountActivityResponse struct {
	Rows []AccountActivityRowResponse `json:"rows"`
}

// ToAccountActivityRowResponse converts a domain activity row to a response DTO.
func ToAccountActivityRowResponse(r domain.AccountActivityRow) AccountActivityRowResponse {
	return AccountActivityRowResponse{
		AccountID:   r.AccountID,
		AccountCode: r.AccountCode,
		AccountName: r.AccountName,
		AccountType: r.AccountType,
		DebitTotal:  r.DebitTotal,
		CreditTotal: r.CreditTotal,
		NetAmount:   r.NetAmount(),
	}
}

// ToAccountActivityRowResponses converts a slice of domain activity rows to DTOs.
func ToAccountActivityRowResponses(rows []domain.AccountActivityRow) []AccountActivityRowResponse {
	responses := make([]AccountActivityRowResponse, len(rows))
	for i, r := range rows {
		responses[i] = ToAccountActivityRowResponse(r)
	}
	return responses
}
