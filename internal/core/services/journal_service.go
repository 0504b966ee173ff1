package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pharmaledger/pharma_ledger_app/internal/apperrors"
	"github.com/pharmaledger/pharma_ledger_app/internal/core/domain"
	portsrepo "github.com/pharmaledger/pharma_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/pharmaledger/pharma_ledger_app/internal/core/ports/services"
	"github.com/pharmaledger/pharma_ledger_app/internal/dto"
	"github.com/pharmaledger/pharma_ledger_app/internal/middleware"
	"github.com/pharmaledger/pharma_ledger_app/internal/utils/accounting"
)

var (
	ErrEntryMinLines    = errors.New("journal entry must have at least two lines")
	ErrEntryNotDraft    = errors.New("journal entry is not in draft status")
	ErrEntryNotPosted   = errors.New("journal entry is not in posted status")
	ErrAccountNotFound  = errors.New("account not found")
	ErrAccountInactive  = errors.New("account is inactive")
	ErrLineAccountEmpty = errors.New("journal line must reference an account by id or code")
)

// journalService provides the journal entry and line operations.
type journalService struct {
	journalRepo portsrepo.JournalRepositoryFacade
	accountSvc  portssvc.AccountSvcFacade
}

// NewJournalService creates a new JournalService.
func NewJournalService(journalRepo portsrepo.JournalRepositoryFacade, accountSvc portssvc.AccountSvcFacade) portssvc.JournalSvcFacade {
	return &journalService{
		journalRepo: journalRepo,
		accountSvc:  accountSvc,
	}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// resolveLineAccount resolves a line request to an account id, preferring the id
// and falling back to a code lookup for human-entered codes.
func (s *journalService) resolveLineAccount(ctx context.Context, accountID, accountCode string) (string, error) {
	if accountID != "" {
		return accountID, nil
	}
	if accountCode == "" {
		return "", fmt.Errorf("%w", ErrLineAccountEmpty)
	}
	account, err := s.accountSvc.GetAccountByCode(ctx, accountCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: code %s", ErrAccountNotFound, accountCode)
		}
		return "", err
	}
	return account.AccountID, nil
}

// checkLineAccounts verifies that every referenced account exists and is active.
func (s *journalService) checkLineAccounts(ctx context.Context, lines []domain.JournalLine) error {
	accountIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		accountIDs = append(accountIDs, line.AccountID)
	}
	uniqueIDs := uniqueStrings(accountIDs)

	accounts, err := s.accountSvc.GetAccountsByIDs(ctx, uniqueIDs)
	if err != nil {
		return fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for _, id := range uniqueIDs {
		account, found := accounts[id]
		if !found {
			return fmt.Errorf("%w: ID %s", ErrAccountNotFound, id)
		}
		if !account.IsActive {
			return fmt.Errorf("%w: %s", ErrAccountInactive, id)
		}
	}
	return nil
}

// CreateJournalEntry persists a new entry with its lines. The whole write happens in
// one repository transaction; an unbalanced POSTED entry fails before anything persists.
func (s *journalService) CreateJournalEntry(ctx context.Context, req dto.CreateJournalEntryRequest, creator string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	status := req.Status
	if status == "" {
		status = domain.Posted
	}
	if status == domain.Reversed {
		return nil, fmt.Errorf("%w: entries cannot be created as REVERSED", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	entryID := uuid.NewString()

	lines := make([]domain.JournalLine, len(req.Lines))
	for i, lineReq := range req.Lines {
		accountID, err := s.resolveLineAccount(ctx, lineReq.AccountID, lineReq.AccountCode)
		if err != nil {
			return nil, err
		}
		lines[i] = domain.JournalLine{
			LineID:       uuid.NewString(),
			EntryID:      entryID,
			AccountID:    accountID,
			DebitAmount:  lineReq.DebitAmount,
			CreditAmount: lineReq.CreditAmount,
			Position:     i,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creator,
				LastUpdatedAt: now,
				LastUpdatedBy: creator,
			},
		}
	}

	if status == domain.Posted {
		if len(lines) < 2 {
			return nil, ErrEntryMinLines
		}
		if err := accounting.ValidateEntryLines(lines); err != nil {
			return nil, err
		}
	} else {
		// Drafts may be incomplete and unbalanced, but each present line
		// must still be a well-formed single-sided posting.
		for _, line := range lines {
			if err := accounting.ValidateLineAmounts(line); err != nil {
				return nil, err
			}
		}
	}

	if len(lines) > 0 {
		if err := s.checkLineAccounts(ctx, lines); err != nil {
			return nil, err
		}
	}

	entry := domain.JournalEntry{
		EntryID:   entryID,
		EntryDate: req.Date,
		Memo:      req.Memo,
		Status:    status,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creator,
			LastUpdatedAt: now,
			LastUpdatedBy: creator,
		},
	}

	if err := s.journalRepo.SaveEntry(ctx, entry, lines); err != nil {
		logger.Error("Failed to save journal entry", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save journal entry: %w", err)
	}

	logger.Info("Journal entry created", slog.String("entry_id", entryID), slog.String("status", string(status)), slog.Int("line_count", len(lines)))
	entry.Lines = lines
	return &entry, nil
}

// AddJournalLine appends a line to a DRAFT entry. Posted entries are immutable.
func (s *journalService) AddJournalLine(ctx context.Context, entryID string, req dto.AddJournalLineRequest, creator string) (*domain.JournalLine, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find journal entry %s: %w", entryID, err)
	}
	if entry.Status != domain.Draft {
		return nil, fmt.Errorf("%w: status is %s", ErrEntryNotDraft, entry.Status)
	}

	accountID, err := s.resolveLineAccount(ctx, req.AccountID, req.AccountCode)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	line := domain.JournalLine{
		LineID:       uuid.NewString(),
		EntryID:      entryID,
		AccountID:    accountID,
		DebitAmount:  req.DebitAmount,
		CreditAmount: req.CreditAmount,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creator,
			LastUpdatedAt: now,
			LastUpdatedBy: creator,
		},
	}

	if err := accounting.ValidateLineAmounts(line); err != nil {
		return nil, err
	}
	if err := s.checkLineAccounts(ctx, []domain.JournalLine{line}); err != nil {
		return nil, err
	}

	position, err := s.journalRepo.AppendLine(ctx, line)
	if err != nil {
		logger.Error("Failed to append journal line", slog.String("entry_id", entryID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to append journal line: %w", err)
	}
	line.Position = position

	logger.Info("Journal line added", slog.String("entry_id", entryID), slog.String("line_id", line.LineID))
	return &line, nil
}

// PostJournalEntry transitions a DRAFT entry to POSTED. The repository re-validates
// the balance against the persisted lines inside the posting transaction, so a line
// written by a concurrent editor cannot slip past the check.
func (s *journalService) PostJournalEntry(ctx context.Context, entryID string, updater string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find journal entry %s: %w", entryID, err)
	}
	if entry.Status != domain.Draft {
		return nil, fmt.Errorf("%w: status is %s", ErrEntryNotDraft, entry.Status)
	}

	lines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lines for entry %s: %w", entryID, err)
	}
	if len(lines) < 2 {
		return nil, ErrEntryMinLines
	}
	if err := accounting.ValidateEntryLines(lines); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.journalRepo.PostEntry(ctx, entryID, updater, now); err != nil {
		logger.Error("Failed to post journal entry", slog.String("entry_id", entryID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to post journal entry: %w", err)
	}

	entry.Status = domain.Posted
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = updater
	entry.Lines = lines

	logger.Info("Journal entry posted", slog.String("entry_id", entryID))
	return entry, nil
}

// ReverseJournalEntry creates a mirrored POSTED entry with debit and credit swapped
// on every line, and marks the original entry REVERSED. Corrections to posted
// entries go through here; posted entries themselves never change.
func (s *journalService) ReverseJournalEntry(ctx context.Context, entryID string, creator string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find journal entry %s: %w", entryID, err)
	}
	if original.Status != domain.Posted {
		return nil, fmt.Errorf("%w: status is %s", ErrEntryNotPosted, original.Status)
	}
	if original.ReversesEntryID != nil {
		return nil, fmt.Errorf("%w: cannot reverse an entry that is itself a reversal", apperrors.ErrConflict)
	}

	originalLines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lines for entry %s: %w", entryID, err)
	}

	now := time.Now().UTC()
	reversingID := uuid.NewString()

	reversing := domain.JournalEntry{
		EntryID:         reversingID,
		EntryDate:       original.EntryDate,
		Memo:            fmt.Sprintf("Reversal of: %s", original.Memo),
		Status:          domain.Posted,
		ReversesEntryID: &original.EntryID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creator,
			LastUpdatedAt: now,
			LastUpdatedBy: creator,
		},
	}

	reversingLines := make([]domain.JournalLine, len(originalLines))
	for i, origLine := range originalLines {
		reversingLines[i] = domain.JournalLine{
			LineID:       uuid.NewString(),
			EntryID:      reversingID,
			AccountID:    origLine.AccountID,
			DebitAmount:  origLine.CreditAmount,
			CreditAmount: origLine.DebitAmount,
			Position:     origLine.Position,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creator,
				LastUpdatedAt: now,
				LastUpdatedBy: creator,
			},
		}
	}

	if err := s.journalRepo.SaveReversal(ctx, reversing, reversingLines, original.EntryID); err != nil {
		logger.Error("Failed to save reversing entry", slog.String("entry_id", entryID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save reversing entry: %w", err)
	}

	logger.Info("Journal entry reversed", slog.String("entry_id", entryID), slog.String("reversing_entry_id", reversingID))
	reversing.Lines = reversingLines
	return &reversing, nil
}

// GetJournalEntry retrieves an entry with its lines populated.
func (s *journalService) GetJournalEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find journal entry %s: %w", entryID, err)
	}

	lines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lines for entry %s: %w", entryID, err)
	}
	entry.Lines = lines
	return entry, nil
}

// GetJournalLines retrieves an entry's lines ordered by position ascending.
// The ordering matters: downstream reports treat the first line as the primary debit.
func (s *journalService) GetJournalLines(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	if _, err := s.journalRepo.FindEntryByID(ctx, entryID); err != nil {
		return nil, fmt.Errorf("failed to find journal entry %s: %w", entryID, err)
	}
	lines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lines for entry %s: %w", entryID, err)
	}
	return lines, nil
}

// ValidateJournalEntryBalance re-checks the debit/credit sums of a persisted entry.
// Amounts are exact decimals, so the comparison is exact equality; an entry with
// zero lines is balanced by definition (0 == 0).
func (s *journalService) ValidateJournalEntryBalance(ctx context.Context, entryID string) (*dto.BalanceCheckResponse, error) {
	if _, err := s.journalRepo.FindEntryByID(ctx, entryID); err != nil {
		return nil, fmt.Errorf("failed to find journal entry %s: %w", entryID, err)
	}

	lines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lines for entry %s: %w", entryID, err)
	}

	totals := accounting.SumLines(lines)
	return &dto.BalanceCheckResponse{
		EntryID:     entryID,
		Balanced:    totals.DebitTotal.Equal(totals.CreditTotal),
		DebitTotal:  totals.DebitTotal,
		CreditTotal: totals.CreditTotal,
	}, nil
}

// ListJournalEntries retrieves entries matching the filters, newest entry date first.
func (s *journalService) ListJournalEntries(ctx context.Context, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if params.Status != nil && !domain.ValidEntryStatus(*params.Status) {
		return nil, fmt.Errorf("%w: unknown status %s", apperrors.ErrValidation, *params.Status)
	}

	entries, nextToken, err := s.journalRepo.ListEntries(ctx, params)
	if err != nil {
		logger.Error("Failed to list journal entries", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}

	responses := make([]dto.JournalEntryResponse, len(entries))
	for i := range entries {
		responses[i] = dto.ToJournalEntryResponse(&entries[i])
	}

	return &dto.ListJournalEntriesResponse{Entries: responses, NextToken: nextToken}, nil
}

// ListJournalEntriesByPeriod derives the calendar window for the period and
// delegates to the date-range listing. month == 0 covers the whole year.
func (s *journalService) ListJournalEntriesByPeriod(ctx context.Context, year int, month int) (*dto.ListJournalEntriesResponse, error) {
	start, end, err := accounting.PeriodWindow(year, month)
	if err != nil {
		return nil, err
	}
	return s.ListJournalEntries(ctx, dto.ListJournalEntriesParams{
		DateFrom: &start,
		DateTo:   &end,
	})
}

// UpdateJournalEntry updates the date and memo of a DRAFT entry.
func (s *journalService) UpdateJournalEntry(ctx context.Context, entryID string, req dto.UpdateJournalEntryRequest, updater string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find journal entry %s: %w", entryID, err)
	}
	if entry.Status != domain.Draft {
		return nil, fmt.Errorf("%w: status is %s", ErrEntryNotDraft, entry.Status)
	}

	updated := false
	if req.Date != nil {
		entry.EntryDate = *req.Date
		updated = true
	}
	if req.Memo != nil {
		entry.Memo = *req.Memo
		updated = true
	}
	if !updated {
		return entry, nil
	}

	entry.LastUpdatedAt = time.Now().UTC()
	entry.LastUpdatedBy = updater

	if err := s.journalRepo.UpdateEntry(ctx, *entry); err != nil {
		logger.Error("Failed to update journal entry", slog.String("entry_id", entryID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update journal entry: %w", err)
	}

	logger.Info("Journal entry updated", slog.String("entry_id", entryID))
	return entry, nil
}

// DeleteJournalEntry removes a DRAFT entry together with its owned lines.
func (s *journalService) DeleteJournalEntry(ctx context.Context, entryID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("failed to find journal entry %s: %w", entryID, err)
	}
	if entry.Status != domain.Draft {
		return fmt.Errorf("%w: status is %s", ErrEntryNotDraft, entry.Status)
	}

	if err := s.journalRepo.DeleteEntry(ctx, entryID); err != nil {
		logger.Error("Failed to delete journal entry", slog.String("entry_id", entryID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}

	logger.Info("Journal entry deleted", slog.String("entry_id", entryID))
	return nil
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
