package postgres

import (
	"context"
	"database/sql"
	"errors"

	"planvault-backend/internal/domain"
	"planvault-backend/internal/repository"
)

type accountRepository struct {
	db DBTX
}

func NewAccountRepository(db DBTX) repository.AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id, public_id, name, email, password_hash, wallet_cents, bonus_cents,
	active_instance_id, invited_by_id, has_deposited, has_activated_plan,
	is_blocked, is_admin, COALESCE(blocked_reason, ''), blocked_on, created_on, updated_on`

func (r *accountRepository) Create(ctx context.Context, acct *domain.Account) error {
	query := `INSERT INTO accounts (public_id, name, email, password_hash, wallet_cents, bonus_cents,
	            invited_by_id, is_admin, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	          RETURNING id, created_on, updated_on`
	return r.db.QueryRowContext(ctx, query,
		acct.PublicID, acct.Name, acct.Email, acct.PasswordHash,
		acct.WalletCents, acct.BonusCents, acct.InvitedByID, acct.IsAdmin,
	).Scan(&acct.ID, &acct.CreatedOn, &acct.UpdatedOn)
}

func (r *accountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *accountRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *accountRepository) GetByPublicID(ctx context.Context, publicID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE public_id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, publicID))
}

func (r *accountRepository) Update(ctx context.Context, acct *domain.Account) error {
	query := `UPDATE accounts SET name = $2, email = $3, password_hash = $4,
	            wallet_cents = $5, bonus_cents = $6, active_instance_id = $7,
	            has_deposited = $8, has_activated_plan = $9,
	            is_blocked = $10, blocked_reason = $11, blocked_on = $12,
	            updated_on = NOW()
	          WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query,
		acct.ID, acct.Name, acct.Email, acct.PasswordHash,
		acct.WalletCents, acct.BonusCents, acct.ActiveInstanceID,
		acct.HasDeposited, acct.HasActivatedPlan,
		acct.IsBlocked, acct.BlockedReason, acct.BlockedOn,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *accountRepository) List(ctx context.Context, page, pageSize int32) ([]domain.Account, int32, error) {
	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM accounts`).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_on DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var accts []domain.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		accts = append(accts, *acct)
	}
	return accts, count, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *accountRepository) scanOne(row *sql.Row) (*domain.Account, error) {
	acct, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return acct, nil
}

func scanAccount(s rowScanner) (*domain.Account, error) {
	var acct domain.Account
	err := s.Scan(
		&acct.ID, &acct.PublicID, &acct.Name, &acct.Email, &acct.PasswordHash,
		&acct.WalletCents, &acct.BonusCents,
		&acct.ActiveInstanceID, &acct.InvitedByID,
		&acct.HasDeposited, &acct.HasActivatedPlan,
		&acct.IsBlocked, &acct.IsAdmin, &acct.BlockedReason, &acct.BlockedOn,
		&acct.CreatedOn, &acct.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	return &acct, nil
}
