package postgres

import (
	"context"
	"database/sql"
	"errors"

	"planvault-backend/internal/domain"
	"planvault-backend/internal/repository"
)

type planRepository struct {
	db DBTX
}

func NewPlanRepository(db DBTX) repository.PlanRepository {
	return &planRepository{db: db}
}

const planColumns = `id, name, min_amount_cents, max_amount_cents, yield_type, daily_yield,
	duration_days, currency, active, created_on, updated_on`

func (r *planRepository) Create(ctx context.Context, tpl *domain.PlanTemplate) error {
	query := `INSERT INTO plan_templates (name, min_amount_cents, max_amount_cents, yield_type,
	            daily_yield, duration_days, currency, active, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	          RETURNING id, created_on, updated_on`
	return r.db.QueryRowContext(ctx, query,
		tpl.Name, tpl.MinAmountCents, tpl.MaxAmountCents, tpl.YieldType,
		tpl.DailyYield, tpl.DurationDays, tpl.Currency, tpl.Active,
	).Scan(&tpl.ID, &tpl.CreatedOn, &tpl.UpdatedOn)
}

func (r *planRepository) GetByID(ctx context.Context, id int64) (*domain.PlanTemplate, error) {
	query := `SELECT ` + planColumns + ` FROM plan_templates WHERE id = $1`
	var tpl domain.PlanTemplate
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tpl.ID, &tpl.Name, &tpl.MinAmountCents, &tpl.MaxAmountCents,
		&tpl.YieldType, &tpl.DailyYield, &tpl.DurationDays, &tpl.Currency,
		&tpl.Active, &tpl.CreatedOn, &tpl.UpdatedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *planRepository) ListActive(ctx context.Context) ([]domain.PlanTemplate, error) {
	query := `SELECT ` + planColumns + ` FROM plan_templates WHERE active ORDER BY min_amount_cents ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tpls []domain.PlanTemplate
	for rows.Next() {
		var tpl domain.PlanTemplate
		if err := rows.Scan(
			&tpl.ID, &tpl.Name, &tpl.MinAmountCents, &tpl.MaxAmountCents,
			&tpl.YieldType, &tpl.DailyYield, &tpl.DurationDays, &tpl.Currency,
			&tpl.Active, &tpl.CreatedOn, &tpl.UpdatedOn,
		); err != nil {
			return nil, err
		}
		tpls = append(tpls, tpl)
	}
	return tpls, rows.Err()
}

func (r *planRepository) Update(ctx context.Context, tpl *domain.PlanTemplate) error {
	query := `UPDATE plan_templates SET name = $2, min_amount_cents = $3, max_amount_cents = $4,
	            yield_type = $5, daily_yield = $6, duration_days = $7, currency = $8,
	            active = $9, updated_on = NOW()
	          WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query,
		tpl.ID, tpl.Name, tpl.MinAmountCents, tpl.MaxAmountCents,
		tpl.YieldType, tpl.DailyYield, tpl.DurationDays, tpl.Currency, tpl.Active,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrPlanNotFound
	}
	return nil
}
