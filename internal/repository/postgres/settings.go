package postgres

import (
	"context"

	"planvault-backend/internal/domain"
	"planvault-backend/internal/repository"
)

// platform_settings is a single-row table (id = 1), seeded at install time.
type settingsRepository struct {
	db DBTX
}

func NewSettingsRepository(db DBTX) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context) (*domain.Settings, error) {
	var s domain.Settings
	query := `SELECT deposit_min_cents, deposit_max_cents, withdraw_min_cents, withdraw_max_cents,
	            withdraw_fee_bps, welcome_bonus_cents, invest_commission_bps, daily_commission_bps,
	            daily_commission_requires_active_plan, updated_on
	          FROM platform_settings WHERE id = 1`
	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.DepositMinCents, &s.DepositMaxCents, &s.WithdrawMinCents, &s.WithdrawMaxCents,
		&s.WithdrawFeeBps, &s.WelcomeBonusCents, &s.InvestCommissionBps, &s.DailyCommissionBps,
		&s.DailyCommissionRequiresActivePlan, &s.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *settingsRepository) Update(ctx context.Context, s *domain.Settings) error {
	query := `UPDATE platform_settings SET deposit_min_cents = $1, deposit_max_cents = $2,
	            withdraw_min_cents = $3, withdraw_max_cents = $4, withdraw_fee_bps = $5,
	            welcome_bonus_cents = $6, invest_commission_bps = $7, daily_commission_bps = $8,
	            daily_commission_requires_active_plan = $9, updated_on = NOW()
	          WHERE id = 1`
	_, err := r.db.ExecContext(ctx, query,
		s.DepositMinCents, s.DepositMaxCents, s.WithdrawMinCents, s.WithdrawMaxCents,
		s.WithdrawFeeBps, s.WelcomeBonusCents, s.InvestCommissionBps, s.DailyCommissionBps,
		s.DailyCommissionRequiresActivePlan,
	)
	return err
}
