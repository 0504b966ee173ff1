package services

import (
	"context"

	"github.com/pharmaledger/pharma_ledger_app/internal/core/domain"
	"github.com/pharmaledger/pharma_ledger_app/internal/dto"
)

// JournalReaderSvc defines read operations for journal entries.
type JournalReaderSvc interface {
	// GetJournalEntry retrieves an entry with its lines populated.
	GetJournalEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// GetJournalLines retrieves an entry's lines ordered by position ascending.
	GetJournalLines(ctx context.Context, entryID string) ([]domain.JournalLine, error)

	// ListJournalEntries retrieves entries matching date range and status filters,
	// ordered by date descending.
	ListJournalEntries(ctx context.Context, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error)

	// ListJournalEntriesByPeriod lists entries within a calendar period.
	// month == 0 covers the whole year.
	ListJournalEntriesByPeriod(ctx context.Context, year int, month int) (*dto.ListJournalEntriesResponse, error)

	// ValidateJournalEntryBalance re-checks the debit/credit sums of a persisted entry.
	ValidateJournalEntryBalance(ctx context.Context, entryID string) (*dto.BalanceCheckResponse, error)
}

// JournalWriterSvc defines write operations for journal entries.
type JournalWriterSvc interface {
	// CreateJournalEntry persists a new entry with its lines in one atomic operation;
	// entries created as POSTED must balance exactly or the whole operation fails.
	CreateJournalEntry(ctx context.Context, req dto.CreateJournalEntryRequest, creator string) (*domain.JournalEntry, error)

	// AddJournalLine appends a line to a DRAFT entry.
	AddJournalLine(ctx context.Context, entryID string, req dto.AddJournalLineRequest, creator string) (*domain.JournalLine, error)

	// PostJournalEntry transitions a DRAFT entry to POSTED, enforcing the balance invariant.
	PostJournalEntry(ctx context.Context, entryID string, updater string) (*domain.JournalEntry, error)

	// ReverseJournalEntry creates a mirrored POSTED entry and marks the original REVERSED.
	ReverseJournalEntry(ctx context.Context, entryID string, creator string) (*domain.JournalEntry, error)

	// UpdateJournalEntry updates the date and memo of a DRAFT entry.
	UpdateJournalEntry(ctx context.Context, entryID string, req dto.UpdateJournalEntryRequest, updater string) (*domain.JournalEntry, error)

	// DeleteJournalEntry removes a DRAFT entry and its lines.
	DeleteJournalEntry(ctx context.Context, entryID string) error
}

// JournalSvcFacade combines all journal service interfaces.
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
}
