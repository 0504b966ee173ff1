package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmaledger/pharma_ledger_app/internal/core/domain"
)

// CreateJournalLineRequest is one debit or credit posting within a new entry.
// AccountID takes precedence; AccountCode is resolved to an id by the service
// when only the human-entered code is supplied.
type CreateJournalLineRequest struct {
	AccountID    string          `json:"accountID"`
	AccountCode  string          `json:"accountCode"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
}

// CreateJournalEntryRequest defines the expected input for creating a journal entry
// together with its lines.
type CreateJournalEntryRequest struct {
	Date   time.Time                  `json:"date" binding:"required"`
	Memo   string                     `json:"memo" binding:"max=1000"`
	Status domain.EntryStatus         `json:"status" binding:"omitempty,entrystatus"`
	Lines  []CreateJournalLineRequest `json:"lines" binding:"omitempty,dive"`
}

// AddJournalLineRequest appends one line to a draft entry.
type AddJournalLineRequest struct {
	AccountID    string          `json:"accountID"`
	AccountCode  string          `json:"accountCode"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
}

// UpdateJournalEntryRequest defines the fields editable on a draft entry.
type UpdateJournalEntryRequest struct {
	Date *time.Time `json:"date"`
	Memo *string    `json:"memo" binding:"omitempty,max=1000"`
}

// ListJournalEntriesParams holds the filters for listing journal entries.
// The date range is half-open: DateFrom inclusive, DateTo exclusive.
type ListJournalEntriesParams struct {
	DateFrom  *time.Time
	DateTo    *time.Time
	Status    *domain.EntryStatus
	Limit     int
	NextToken *string
}

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	LineID       string          `json:"lineID"`
	AccountID    string          `json:"accountID"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Position     int             `json:"position"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID           string                `json:"entryID"`
	Date              time.Time             `json:"date"`
	Memo              string                `json:"memo"`
	Status            domain.EntryStatus    `json:"status"`
	ReversedByEntryID *string               `json:"reversedByEntryID,omitempty"`
	ReversesEntryID   *string               `json:"reversesEntryID,omitempty"`
	Lines             []JournalLineResponse `json:"lines,omitempty"`
	CreatedAt         time.Time             `json:"createdAt"`
	CreatedBy         string                `json:"createdBy"`
}

// ListJournalEntriesResponse wraps the entry listing payload with the pagination token.
type ListJournalEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// BalanceCheckResponse reports the outcome of a balance validation.
type BalanceCheckResponse struct {
	EntryID     string          `json:"entryID"`
	Balanced    bool            `json:"balanced"`
	DebitTotal  decimal.Decimal `json:"debitTotal"`
	CreditTotal decimal.Decimal `json:"creditTotal"`
}

// ToJournalLineResponse converts a domain.JournalLine to a JournalLineResponse DTO.
func ToJournalLineResponse(line *domain.JournalLine) JournalLineResponse {
	return JournalLineResponse{
		LineID:       line.LineID,
		AccountID:    line.AccountID,
		DebitAmount:  line.DebitAmount,
		CreditAmount: line.CreditAmount,
		Position:     line.Position,
	}
}

// ToJournalLineResponses converts a slice of domain lines to response DTOs.
func ToJournalLineResponses(lines []domain.JournalLine) []JournalLineResponse {
	responses := make([]JournalLineResponse, len(lines))
	for i := range lines {
		responses[i] = ToJournalLineResponse(&lines[i])
	}
	return responses
}

// ToJournalEntryResponse converts a domain.JournalEntry to a JournalEntryResponse DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	resp := JournalEntryResponse{
		EntryID:           e.EntryID,
		Date:              e.EntryDate,
		Memo:              e.Memo,
		Status:            e.Status,
		ReversedByEntryID: e.ReversedByEntryID,
		ReversesEntryID:   e.ReversesEntryID,
		CreatedAt:         e.CreatedAt,
		CreatedBy:         e.CreatedBy,
	}
	if len(e.Lines) > 0 {
		resp.Lines = ToJournalLineResponses(e.Lines)
	}
	return resp
}
