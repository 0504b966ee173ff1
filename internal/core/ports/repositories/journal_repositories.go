package repositories

import (
	"context"
	"time"

	"github.com/pharmaledger/pharma_ledger_app/internal/core/domain"
	"github.com/pharmaledger/pharma_ledger_app/internal/dto"
)

// JournalReader defines read operations for journal data.
type JournalReader interface {
	// FindEntryByID retrieves a journal entry header by its unique identifier.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindLinesByEntryID retrieves an entry's lines ordered by position ascending.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error)

	// FindLinesByEntryIDs retrieves lines for multiple entries, grouped by entry id.
	FindLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.JournalLine, error)

	// ListEntries retrieves entries matching the filters, ordered by entry date
	// descending. A non-positive limit returns the full unpaginated result set.
	ListEntries(ctx context.Context, params dto.ListJournalEntriesParams) ([]domain.JournalEntry, *string, error)
}

// JournalWriter defines write operations for journal data.
// Every multi-row operation executes inside a single database transaction.
type JournalWriter interface {
	// SaveEntry persists an entry header and all of its lines atomically.
	SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine) error

	// AppendLine adds one line to an existing draft entry and bumps the entry's
	// audit fields. The line's position is assigned inside the insert transaction
	// under the entry row lock and returned, so concurrent appends never collide.
	AppendLine(ctx context.Context, line domain.JournalLine) (int, error)

	// PostEntry flips a draft entry to POSTED after re-validating the balance
	// invariant against the persisted lines, all under one transaction.
	PostEntry(ctx context.Context, entryID string, updatedBy string, updatedAt time.Time) error

	// SaveReversal persists a reversing entry with its lines and marks the original
	// entry REVERSED with the back-link, atomically.
	SaveReversal(ctx context.Context, reversing domain.JournalEntry, lines []domain.JournalLine, originalEntryID string) error

	// UpdateEntry persists header changes (date, memo) to an entry.
	UpdateEntry(ctx context.Context, entry domain.JournalEntry) error

	// DeleteEntry removes an entry and its owned lines atomically.
	DeleteEntry(ctx context.Context, entryID string) error
}

// JournalRepositoryFacade combines all journal repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
