package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the lifecycle state of a journal entry.
// Transitions are one-way: DRAFT -> POSTED -> REVERSED.
type EntryStatus string

const (
	Draft    EntryStatus = "DRAFT"
	Posted   EntryStatus = "POSTED"
	Reversed EntryStatus = "REVERSED"
)

// ValidEntryStatus reports whether s is a known journal entry status.
func ValidEntryStatus(s EntryStatus) bool {
	switch s {
	case Draft, Posted, Reversed:
		return true
	}
	return false
}

// JournalEntry represents a single, balanced financial event composed of multiple lines.
// Lines are exclusively owned by their entry and have no existence outside it.
type JournalEntry struct {
	EntryID           string      `json:"entryID"`   // Primary Key (UUID)
	EntryDate         time.Time   `json:"entryDate"` // Date the event occurred
	Memo              string      `json:"memo"`      // Nullable user description
	Status            EntryStatus `json:"status"`
	ReversedByEntryID *string     `json:"reversedByEntryID,omitempty"` // Set once a reversal is posted
	ReversesEntryID   *string     `json:"reversesEntryID,omitempty"`   // Set on the reversing entry
	Lines             []JournalLine `json:"lines,omitempty"`           // Loaded on demand
	AuditFields
}

// JournalLine is one debit or credit posting within a journal entry.
// Exactly one of DebitAmount/CreditAmount is non-zero and positive.
type JournalLine struct {
	LineID       string          `json:"lineID"`  // Primary Key (UUID)
	EntryID      string          `json:"entryID"` // FK -> JournalEntry.entryID (Not Null)
	AccountID    string          `json:"accountID"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Position     int             `json:"position"` // Ordering within the entry, ascending
	AuditFields
}
