package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharmaledger/pharma_ledger_app/internal/apperrors"
	"github.com/pharmaledger/pharma_ledger_app/internal/core/domain"
	portsrepo "github.com/pharmaledger/pharma_ledger_app/internal/core/ports/repositories"
	"github.com/pharmaledger/pharma_ledger_app/internal/dto"
	"github.com/pharmaledger/pharma_ledger_app/internal/models"
	"github.com/pharmaledger/pharma_ledger_app/internal/utils/accounting"
	"github.com/pharmaledger/pharma_ledger_app/internal/utils/mapping"
	"github.com/pharmaledger/pharma_ledger_app/internal/utils/pagination"
)

// PgxJournalRepository persists journal entries and their lines.
type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal data.
func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

const entryColumns = `entry_id, entry_date, memo, status, reversed_by_entry_id, reverses_entry_id, created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, entry_id, account_id, debit_amount, credit_amount, position, created_at, created_by, last_updated_at, last_updated_by`

const insertLineQuery = `
	INSERT INTO journal_lines (` + lineColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`

func scanEntry(row pgx.Row) (*models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.EntryDate,
		&m.Memo,
		&m.Status,
		&m.ReversedByEntryID,
		&m.ReversesEntryID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanLine(row pgx.Row) (*models.JournalLine, error) {
	var m models.JournalLine
	err := row.Scan(
		&m.LineID,
		&m.EntryID,
		&m.AccountID,
		&m.DebitAmount,
		&m.CreditAmount,
		&m.Position,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func queueLineInsert(batch *pgx.Batch, m models.JournalLine) {
	batch.Queue(insertLineQuery,
		m.LineID,
		m.EntryID,
		m.AccountID,
		m.DebitAmount,
		m.CreditAmount,
		m.Position,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
}

// SaveEntry persists an entry header and all of its lines inside one database
// transaction. A crash mid-sequence leaves nothing behind; readers never observe
// a partially written entry.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	modelEntry := mapping.ToModelJournalEntry(entry)
	entryQuery := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err = tx.Exec(ctx, entryQuery,
		modelEntry.EntryID,
		modelEntry.EntryDate,
		modelEntry.Memo,
		modelEntry.Status,
		modelEntry.ReversedByEntryID,
		modelEntry.ReversesEntryID,
		modelEntry.CreatedAt,
		modelEntry.CreatedBy,
		modelEntry.LastUpdatedAt,
		modelEntry.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert journal entry "+modelEntry.EntryID, err)
	}

	batch := &pgx.Batch{}
	for _, line := range lines {
		queueLineInsert(batch, mapping.ToModelJournalLine(line))
	}
	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			return apperrors.NewAppError(500, "failed to insert lines for entry "+modelEntry.EntryID, err)
		}
	}

	return r.Commit(ctx, tx)
}

// AppendLine adds one line to an existing draft entry and bumps the entry's audit
// fields. The entry row is locked and the next position computed inside the same
// transaction, so concurrent appends cannot race to the same position.
func (r *PgxJournalRepository) AppendLine(ctx context.Context, line domain.JournalLine) (int, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer r.Rollback(ctx, tx)

	lockQuery := `SELECT status FROM journal_entries WHERE entry_id = $1 FOR UPDATE;`
	var status models.EntryStatus
	if err := tx.QueryRow(ctx, lockQuery, line.EntryID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrNotFound
		}
		return 0, apperrors.NewAppError(500, "failed to lock journal entry "+line.EntryID, err)
	}
	if status != models.Draft {
		return 0, fmt.Errorf("%w: entry %s status is %s", apperrors.ErrConflict, line.EntryID, status)
	}

	positionQuery := `SELECT COALESCE(MAX(position) + 1, 0) FROM journal_lines WHERE entry_id = $1;`
	var position int
	if err := tx.QueryRow(ctx, positionQuery, line.EntryID).Scan(&position); err != nil {
		return 0, apperrors.NewAppError(500, "failed to compute line position for entry "+line.EntryID, err)
	}

	line.Position = position
	modelLine := mapping.ToModelJournalLine(line)
	_, err = tx.Exec(ctx, insertLineQuery,
		modelLine.LineID,
		modelLine.EntryID,
		modelLine.AccountID,
		modelLine.DebitAmount,
		modelLine.CreditAmount,
		modelLine.Position,
		modelLine.CreatedAt,
		modelLine.CreatedBy,
		modelLine.LastUpdatedAt,
		modelLine.LastUpdatedBy,
	)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to insert journal line "+modelLine.LineID, err)
	}

	touchQuery := `UPDATE journal_entries SET last_updated_at = $2, last_updated_by = $3 WHERE entry_id = $1;`
	if _, err := tx.Exec(ctx, touchQuery, modelLine.EntryID, modelLine.LastUpdatedAt, modelLine.LastUpdatedBy); err != nil {
		return 0, apperrors.NewAppError(500, "failed to touch journal entry "+modelLine.EntryID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return position, nil
}

// PostEntry flips a draft entry to POSTED. The entry row is locked and the balance
// invariant re-validated against the persisted lines inside the same transaction,
// so a concurrently appended line cannot slip past the check.
func (r *PgxJournalRepository) PostEntry(ctx context.Context, entryID string, updatedBy string, updatedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	lockQuery := `SELECT status FROM journal_entries WHERE entry_id = $1 FOR UPDATE;`
	var status models.EntryStatus
	if err := tx.QueryRow(ctx, lockQuery, entryID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.NewAppError(500, "failed to lock journal entry "+entryID, err)
	}
	if status != models.Draft {
		return fmt.Errorf("%w: entry %s status is %s", apperrors.ErrConflict, entryID, status)
	}

	lines, err := r.findLinesByEntryIDTx(ctx, tx, entryID)
	if err != nil {
		return err
	}
	if err := accounting.ValidateEntryLines(lines); err != nil {
		return err
	}

	updateQuery := `UPDATE journal_entries SET status = $2, last_updated_at = $3, last_updated_by = $4 WHERE entry_id = $1;`
	if _, err := tx.Exec(ctx, updateQuery, entryID, models.Posted, updatedAt, updatedBy); err != nil {
		return apperrors.NewAppError(500, "failed to post journal entry "+entryID, err)
	}

	return r.Commit(ctx, tx)
}

// SaveReversal inserts the reversing entry with its lines and marks the original
// entry REVERSED with the back-link, all in one transaction.
func (r *PgxJournalRepository) SaveReversal(ctx context.Context, reversing domain.JournalEntry, lines []domain.JournalLine, originalEntryID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	lockQuery := `SELECT status FROM journal_entries WHERE entry_id = $1 FOR UPDATE;`
	var status models.EntryStatus
	if err := tx.QueryRow(ctx, lockQuery, originalEntryID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.NewAppError(500, "failed to lock journal entry "+originalEntryID, err)
	}
	if status != models.Posted {
		return fmt.Errorf("%w: entry %s status is %s", apperrors.ErrConflict, originalEntryID, status)
	}

	modelEntry := mapping.ToModelJournalEntry(reversing)
	entryQuery := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err = tx.Exec(ctx, entryQuery,
		modelEntry.EntryID,
		modelEntry.EntryDate,
		modelEntry.Memo,
		modelEntry.Status,
		modelEntry.ReversedByEntryID,
		modelEntry.ReversesEntryID,
		modelEntry.CreatedAt,
		modelEntry.CreatedBy,
		modelEntry.LastUpdatedAt,
		modelEntry.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert reversing entry "+modelEntry.EntryID, err)
	}

	batch := &pgx.Batch{}
	for _, line := range lines {
		queueLineInsert(batch, mapping.ToModelJournalLine(line))
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert lines for reversing entry "+modelEntry.EntryID, err)
	}

	markQuery := `
		UPDATE journal_entries
		SET status = $2, reversed_by_entry_id = $3, last_updated_at = $4, last_updated_by = $5
		WHERE entry_id = $1;
	`
	if _, err := tx.Exec(ctx, markQuery, originalEntryID, models.Reversed, modelEntry.EntryID, modelEntry.LastUpdatedAt, modelEntry.LastUpdatedBy); err != nil {
		return apperrors.NewAppError(500, "failed to mark entry "+originalEntryID+" as reversed", err)
	}

	return r.Commit(ctx, tx)
}

// FindEntryByID retrieves a journal entry header by id.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`

	modelEntry, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find journal entry "+entryID, err)
	}

	entry := mapping.ToDomainJournalEntry(*modelEntry)
	return &entry, nil
}

// FindLinesByEntryID retrieves an entry's lines ordered by position ascending.
func (r *PgxJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	query := `SELECT ` + lineColumns + ` FROM journal_lines WHERE entry_id = $1 ORDER BY position ASC;`

	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for entry "+entryID, err)
	}
	defer rows.Close()

	return collectLines(rows)
}

func (r *PgxJournalRepository) findLinesByEntryIDTx(ctx context.Context, tx pgx.Tx, entryID string) ([]domain.JournalLine, error) {
	query := `SELECT ` + lineColumns + ` FROM journal_lines WHERE entry_id = $1 ORDER BY position ASC;`

	rows, err := tx.Query(ctx, query, entryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for entry "+entryID, err)
	}
	defer rows.Close()

	return collectLines(rows)
}

func collectLines(rows pgx.Rows) ([]domain.JournalLine, error) {
	lines := []domain.JournalLine{}
	for rows.Next() {
		modelLine, err := scanLine(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan journal line row", err)
		}
		lines = append(lines, mapping.ToDomainJournalLine(*modelLine))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating journal line rows", err)
	}
	return lines, nil
}

// FindLinesByEntryIDs retrieves lines for multiple entries, grouped by entry id,
// each group ordered by position ascending.
func (r *PgxJournalRepository) FindLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.JournalLine, error) {
	if len(entryIDs) == 0 {
		return map[string][]domain.JournalLine{}, nil
	}

	query := `SELECT ` + lineColumns + ` FROM journal_lines WHERE entry_id = ANY($1) ORDER BY entry_id, position ASC;`

	rows, err := r.Pool.Query(ctx, query, entryIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for entries", err)
	}
	defer rows.Close()

	result := make(map[string][]domain.JournalLine)
	for rows.Next() {
		modelLine, err := scanLine(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan journal line row", err)
		}
		line := mapping.ToDomainJournalLine(*modelLine)
		result[line.EntryID] = append(result[line.EntryID], line)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating journal line rows", err)
	}
	return result, nil
}

// ListEntries retrieves entries matching the filters, ordered by entry date
// descending then creation time descending. With a positive limit the result is
// token-paginated; otherwise the full result set is returned.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, params dto.ListJournalEntriesParams) ([]domain.JournalEntry, *string, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if params.DateFrom != nil {
		query += fmt.Sprintf(` AND entry_date >= $%d`, argPos)
		args = append(args, *params.DateFrom)
		argPos++
	}
	if params.DateTo != nil {
		query += fmt.Sprintf(` AND entry_date < $%d`, argPos)
		args = append(args, *params.DateTo)
		argPos++
	}
	if params.Status != nil {
		query += fmt.Sprintf(` AND status = $%d`, argPos)
		args = append(args, string(*params.Status))
		argPos++
	}
	if params.NextToken != nil {
		entryDate, createdAt, err := pagination.DecodeToken(*params.NextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		query += fmt.Sprintf(` AND (entry_date, created_at) < ($%d, $%d)`, argPos, argPos+1)
		args = append(args, entryDate, createdAt)
		argPos += 2
	}

	query += ` ORDER BY entry_date DESC, created_at DESC`

	if params.Limit > 0 {
		// Fetch one extra row to decide whether a next page exists.
		query += fmt.Sprintf(` LIMIT $%d`, argPos)
		args = append(args, params.Limit+1)
	}
	query += `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query journal entries", err)
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	for rows.Next() {
		modelEntry, err := scanEntry(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan journal entry row", err)
		}
		entries = append(entries, mapping.ToDomainJournalEntry(*modelEntry))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating journal entry rows", err)
	}

	var nextToken *string
	if params.Limit > 0 && len(entries) > params.Limit {
		entries = entries[:params.Limit]
		last := entries[len(entries)-1]
		token := pagination.EncodeToken(last.EntryDate, last.CreatedAt)
		nextToken = &token
	}

	return entries, nextToken, nil
}

// UpdateEntry persists header changes (date, memo) to an entry.
func (r *PgxJournalRepository) UpdateEntry(ctx context.Context, entry domain.JournalEntry) error {
	modelEntry := mapping.ToModelJournalEntry(entry)

	query := `
		UPDATE journal_entries
		SET entry_date = $2, memo = $3, last_updated_at = $4, last_updated_by = $5
		WHERE entry_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		modelEntry.EntryID,
		modelEntry.EntryDate,
		modelEntry.Memo,
		modelEntry.LastUpdatedAt,
		modelEntry.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update journal entry "+modelEntry.EntryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteEntry removes an entry and its owned lines in one transaction.
func (r *PgxJournalRepository) DeleteEntry(ctx context.Context, entryID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id = $1;`, entryID); err != nil {
		return apperrors.NewAppError(500, "failed to delete lines for entry "+entryID, err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM journal_entries WHERE entry_id = $1;`, entryID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete journal entry "+entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return r.Commit(ctx, tx)
}
