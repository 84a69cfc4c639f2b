package service

import (
	"context"
	"fmt"
	"time"

	"planvault-backend/internal/domain"
	"planvault-backend/internal/logger"
	"planvault-backend/internal/repository"
)

type adminService struct {
	tx    repository.TxRunner
	repos repository.Repos
	now   func() time.Time
}

func NewAdminService(tx repository.TxRunner, repos repository.Repos) AdminService {
	return &adminService{
		tx:    tx,
		repos: repos,
		now:   time.Now,
	}
}

func (s *adminService) ListAccounts(ctx context.Context, page, pageSize int32) ([]domain.Account, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.repos.Accounts.List(ctx, page, pageSize)
}

func (s *adminService) BlockAccount(ctx context.Context, adminID, accountID int64, block bool, reason string) error {
	err := s.tx.RunInTx(ctx, func(r repository.Repos) error {
		acct, err := r.Accounts.GetByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if block {
			now := s.now()
			acct.IsBlocked = true
			acct.BlockedReason = reason
			acct.BlockedOn = &now
		} else {
			acct.IsBlocked = false
			acct.BlockedReason = ""
			acct.BlockedOn = nil
		}
		return r.Accounts.Update(ctx, acct)
	})
	if err != nil {
		return err
	}
	logger.Info("account block state changed",
		"admin_id", adminID, "account_id", accountID, "blocked", block)
	return nil
}

func (s *adminService) GetSettings(ctx context.Context) (*domain.Settings, error) {
	return s.repos.Settings.Get(ctx)
}

func (s *adminService) UpdateSettings(ctx context.Context, settings *domain.Settings) error {
	if err := validateSettings(settings); err != nil {
		return err
	}
	return s.repos.Settings.Update(ctx, settings)
}

func validateSettings(s *domain.Settings) error {
	if s.DepositMinCents < 0 || s.WithdrawMinCents < 0 || s.WelcomeBonusCents < 0 {
		return fmt.Errorf("amounts must not be negative")
	}
	if s.DepositMaxCents < 0 || s.WithdrawMaxCents < 0 {
		return fmt.Errorf("amounts must not be negative")
	}
	if s.DepositMaxCents > 0 && s.DepositMaxCents < s.DepositMinCents {
		return fmt.Errorf("deposit max below min")
	}
	if s.WithdrawMaxCents > 0 && s.WithdrawMaxCents < s.WithdrawMinCents {
		return fmt.Errorf("withdraw max below min")
	}
	for _, bps := range []int64{s.WithdrawFeeBps, s.InvestCommissionBps, s.DailyCommissionBps} {
		if bps < 0 || bps > 10000 {
			return fmt.Errorf("rate %d out of range [0, 10000] bps", bps)
		}
	}
	return nil
}
