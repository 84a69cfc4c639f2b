package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"planvault-backend/internal/domain"
	"planvault-backend/internal/repository"
)

type planInstanceRepository struct {
	db DBTX
}

func NewPlanInstanceRepository(db DBTX) repository.PlanInstanceRepository {
	return &planInstanceRepository{db: db}
}

const instanceColumns = `id, account_id, template_id, invested_cents, daily_profit_cents,
	start_on, end_on, last_collected_at, total_collected_cents, status, created_on`

func (r *planInstanceRepository) Create(ctx context.Context, inst *domain.PlanInstance) error {
	query := `INSERT INTO plan_instances (account_id, template_id, invested_cents, daily_profit_cents,
	            start_on, end_on, last_collected_at, total_collected_cents, status, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	          RETURNING id, created_on`
	return r.db.QueryRowContext(ctx, query,
		inst.AccountID, inst.TemplateID, inst.InvestedCents, inst.DailyProfitCents,
		inst.StartOn, inst.EndOn, inst.LastCollectedAt, inst.TotalCollectedCents, inst.Status,
	).Scan(&inst.ID, &inst.CreatedOn)
}

func (r *planInstanceRepository) GetByID(ctx context.Context, id int64) (*domain.PlanInstance, error) {
	query := `SELECT ` + instanceColumns + ` FROM plan_instances WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *planInstanceRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.PlanInstance, error) {
	query := `SELECT ` + instanceColumns + ` FROM plan_instances WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *planInstanceRepository) Update(ctx context.Context, inst *domain.PlanInstance) error {
	query := `UPDATE plan_instances SET last_collected_at = $2, total_collected_cents = $3, status = $4
	          WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query,
		inst.ID, inst.LastCollectedAt, inst.TotalCollectedCents, inst.Status,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrInstanceNotFound
	}
	return nil
}

func (r *planInstanceRepository) ListByAccount(ctx context.Context, accountID int64) ([]domain.PlanInstance, error) {
	query := `SELECT ` + instanceColumns + ` FROM plan_instances WHERE account_id = $1 ORDER BY created_on DESC`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var insts []domain.PlanInstance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		insts = append(insts, *inst)
	}
	return insts, rows.Err()
}

// ExpireLapsed is the bulk form of the lazy expiry transition: flip lapsed
// ACTIVE instances terminal and detach them from their accounts, in one
// statement each so the sweep stays idempotent under concurrent engine calls.
func (r *planInstanceRepository) ExpireLapsed(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE plan_instances SET status = 'EXPIRED' WHERE status = 'ACTIVE' AND end_on < $1`, now)
	if err != nil {
		return 0, err
	}
	expired, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE accounts SET active_instance_id = NULL, updated_on = NOW()
		WHERE active_instance_id IN (SELECT id FROM plan_instances WHERE status = 'EXPIRED')`)
	if err != nil {
		return expired, err
	}
	return expired, nil
}

func (r *planInstanceRepository) scanOne(row *sql.Row) (*domain.PlanInstance, error) {
	inst, err := scanInstance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrInstanceNotFound
	}
	if err != nil {
		return nil, err
	}
	return inst, nil
}

func scanInstance(s rowScanner) (*domain.PlanInstance, error) {
	var inst domain.PlanInstance
	err := s.Scan(
		&inst.ID, &inst.AccountID, &inst.TemplateID,
		&inst.InvestedCents, &inst.DailyProfitCents,
		&inst.StartOn, &inst.EndOn, &inst.LastCollectedAt,
		&inst.TotalCollectedCents, &inst.Status, &inst.CreatedOn,
	)
	if err != nil {
		return nil, err
	}
	return &inst, nil
}
