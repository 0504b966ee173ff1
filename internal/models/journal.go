package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus mirrors domain.EntryStatus at the storage layer.
type EntryStatus string

const (
	Draft    EntryStatus = "DRAFT"
	Posted   EntryStatus = "POSTED"
	Reversed EntryStatus = "REVERSED"
)

// JournalEntry represents one row of the journal_entries table.
type JournalEntry struct {
	EntryID           string      `db:"entry_id"`
	EntryDate         time.Time   `db:"entry_date"`
	Memo              string      `db:"memo"`
	Status            EntryStatus `db:"status"`
	ReversedByEntryID *string     `db:"reversed_by_entry_id"`
	ReversesEntryID   *string     `db:"reverses_entry_id"`
	AuditFields
}

// JournalLine represents one row of the journal_lines table.
type JournalLine struct {
	LineID       string          `db:"line_id"`
	EntryID      string          `db:"entry_id"`
	AccountID    string          `db:"account_id"`
	DebitAmount  decimal.Decimal `db:"debit_amount"`
	CreditAmount decimal.Decimal `db:"credit_amount"`
	Position     int             `db:"position"`
	AuditFields
}
