package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"planvault-backend/internal/domain"
	"planvault-backend/internal/repository"
)

type ledgerRepository struct {
	db DBTX
}

func NewLedgerRepository(db DBTX) repository.LedgerRepository {
	return &ledgerRepository{db: db}
}

const ledgerColumns = `id, account_id, type, amount_cents, status, COALESCE(description, ''),
	related_account_id, details, reviewed_by_id, reviewed_at, COALESCE(reject_reason, ''), created_on`

func (r *ledgerRepository) CreateEntry(ctx context.Context, entry *domain.LedgerEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("marshal entry details: %w", err)
	}
	query := `INSERT INTO ledger_entries (account_id, type, amount_cents, status, description,
	            related_account_id, details, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	          RETURNING id, created_on`
	return r.db.QueryRowContext(ctx, query,
		entry.AccountID, entry.Type, entry.AmountCents, entry.Status,
		entry.Description, entry.RelatedAccountID, details,
	).Scan(&entry.ID, &entry.CreatedOn)
}

func (r *ledgerRepository) GetByID(ctx context.Context, id int64) (*domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *ledgerRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// UpdateStatus settles a pending entry. The WHERE clause re-checks PENDING so
// a concurrent settlement of the same entry loses cleanly.
func (r *ledgerRepository) UpdateStatus(ctx context.Context, entry *domain.LedgerEntry) error {
	query := `UPDATE ledger_entries SET status = $2, reviewed_by_id = $3, reviewed_at = $4, reject_reason = $5
	          WHERE id = $1 AND status = 'PENDING'`
	res, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.Status, entry.ReviewedByID, entry.ReviewedAt, entry.RejectReason,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrEntryNotPending
	}
	return nil
}

func (r *ledgerRepository) ListByAccount(ctx context.Context, accountID int64, filter repository.LedgerFilter, page, pageSize int32) ([]domain.LedgerEntry, int32, error) {
	where := `WHERE account_id = $1`
	args := []any{accountID}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where += fmt.Sprintf(" AND created_on >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where += fmt.Sprintf(" AND created_on < $%d", len(args))
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM ledger_entries `+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	args = append(args, pageSize, (page-1)*pageSize)
	query := fmt.Sprintf(`SELECT %s FROM ledger_entries %s ORDER BY created_on DESC LIMIT $%d OFFSET $%d`,
		ledgerColumns, where, len(args)-1, len(args))
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, *entry)
	}
	return entries, count, rows.Err()
}

func (r *ledgerRepository) ListPending(ctx context.Context, entryType domain.EntryType, olderThan time.Time) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries
	          WHERE type = $1 AND status = 'PENDING' AND created_on < $2 ORDER BY created_on ASC`
	rows, err := r.db.QueryContext(ctx, query, entryType, olderThan)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

func (r *ledgerRepository) Summary(ctx context.Context, accountID int64) (*domain.LedgerSummary, error) {
	summary := &domain.LedgerSummary{
		TotalsByType: make(map[domain.EntryType]int64),
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT type, COALESCE(SUM(amount_cents), 0)
		FROM ledger_entries
		WHERE account_id = $1 AND status = 'APPROVED'
		GROUP BY type`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var typ domain.EntryType
		var total int64
		if err := rows.Scan(&typ, &total); err != nil {
			return nil, err
		}
		summary.TotalsByType[typ] = total
		summary.DerivedBalanceCents += total
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT count(*) FILTER (WHERE type = 'DEPOSIT'),
		       count(*) FILTER (WHERE type = 'WITHDRAWAL')
		FROM ledger_entries
		WHERE account_id = $1 AND status = 'PENDING'`, accountID).
		Scan(&summary.PendingDeposits, &summary.PendingWithdrawals)
	if err != nil {
		return nil, err
	}

	return summary, nil
}

func (r *ledgerRepository) CommissionFromSource(ctx context.Context, accountID, sourceAccountID int64) (int64, error) {
	var total int64
	query := `SELECT COALESCE(SUM(amount_cents), 0) FROM ledger_entries
	          WHERE account_id = $1 AND type = 'COMMISSION' AND status = 'APPROVED'
	            AND related_account_id = $2`
	err := r.db.QueryRowContext(ctx, query, accountID, sourceAccountID).Scan(&total)
	return total, err
}

func (r *ledgerRepository) scanOne(row *sql.Row) (*domain.LedgerEntry, error) {
	entry, err := scanLedgerEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func scanLedgerEntry(s rowScanner) (*domain.LedgerEntry, error) {
	var entry domain.LedgerEntry
	var details []byte
	err := s.Scan(
		&entry.ID, &entry.AccountID, &entry.Type, &entry.AmountCents, &entry.Status,
		&entry.Description, &entry.RelatedAccountID, &details,
		&entry.ReviewedByID, &entry.ReviewedAt, &entry.RejectReason, &entry.CreatedOn,
	)
	if err != nil {
		return nil, err
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &entry.Details); err != nil {
			return nil, fmt.Errorf("unmarshal entry details: %w", err)
		}
	}
	return &entry, nil
}
