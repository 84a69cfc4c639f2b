package service

import (
	"context"
	"fmt"
	"time"

	"planvault-backend/internal/domain"
	"planvault-backend/internal/repository"
	"planvault-backend/internal/utils"
)

// planService is the plan instance state machine: activation, daily
// collection, upgrade, renewal, and lazy expiry. Every top-level operation
// runs its balance mutation, instance mutation, and ledger append in one
// transaction with the account row locked first (accounts before instances,
// always, to keep lock order consistent). Referral commission is paid after
// the primary commit and can never undo it.
type planService struct {
	tx       repository.TxRunner
	repos    repository.Repos
	referral ReferralService
	now      func() time.Time
}

func NewPlanService(tx repository.TxRunner, repos repository.Repos, referral ReferralService) PlanService {
	return &planService{
		tx:       tx,
		repos:    repos,
		referral: referral,
		now:      time.Now,
	}
}

func (s *planService) Activate(ctx context.Context, accountID, templateID, amountCents int64) (*domain.PlanInstance, error) {
	var (
		inst     *domain.PlanInstance
		source   *domain.Account
		settings *domain.Settings
	)
	err := s.tx.RunInTx(ctx, func(r repository.Repos) error {
		acct, err := r.Accounts.GetByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if _, err := s.applyLazyExpiry(ctx, r, acct); err != nil {
			return err
		}
		if acct.ActiveInstanceID != nil {
			return domain.ErrAlreadyHasActivePlan
		}

		tpl, err := r.Plans.GetByID(ctx, templateID)
		if err != nil {
			return err
		}
		if amountCents < tpl.MinAmountCents || amountCents > tpl.MaxAmountCents {
			return domain.ErrAmountOutOfRange
		}

		if acct.UsableCents() < amountCents {
			return domain.ErrInsufficientFunds
		}
		// Bonus-first spend-down: bonus is consumed before the wallet is
		// touched, but unspent bonus is kept.
		bonusSpent, walletSpent := utils.SplitSpend(amountCents, acct.BonusCents)

		profit, err := utils.DailyProfit(amountCents, tpl.YieldType, tpl.DailyYield)
		if err != nil {
			return err
		}

		now := s.now()
		inst = &domain.PlanInstance{
			AccountID:        acct.ID,
			TemplateID:       tpl.ID,
			InvestedCents:    amountCents,
			DailyProfitCents: profit,
			StartOn:          now,
			EndOn:            now.AddDate(0, 0, int(tpl.DurationDays)),
			Status:           domain.InstanceStatusActive,
		}
		if err := r.Instances.Create(ctx, inst); err != nil {
			return err
		}

		acct.BonusCents -= bonusSpent
		acct.WalletCents -= walletSpent
		acct.ActiveInstanceID = &inst.ID
		acct.HasActivatedPlan = true
		if err := r.Accounts.Update(ctx, acct); err != nil {
			return err
		}

		// The ledger records the full invested amount, not just the wallet
		// delta; the split lives in the detail payload.
		entry := &domain.LedgerEntry{
			AccountID:   acct.ID,
			Type:        domain.EntryTypeInvestment,
			AmountCents: -amountCents,
			Status:      domain.EntryStatusApproved,
			Description: fmt.Sprintf("Activated plan %s", tpl.Name),
			Details: domain.EntryDetails{
				Investment: &domain.InvestmentDetail{
					TemplateID:       tpl.ID,
					TemplateName:     tpl.Name,
					InstanceID:       inst.ID,
					BonusSpentCents:  bonusSpent,
					WalletSpentCents: walletSpent,
				},
			},
		}
		if err := r.Ledger.CreateEntry(ctx, entry); err != nil {
			return err
		}

		settings, err = r.Settings.Get(ctx)
		if err != nil {
			return err
		}
		source = acct
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.referral.PayCommission(ctx, source, inst.InvestedCents, domain.CommissionTriggerInvestment, settings)
	return inst, nil
}

func (s *planService) Collect(ctx context.Context, accountID int64) (int64, error) {
	var (
		profit   int64
		lapsed   bool
		source   *domain.Account
		settings *domain.Settings
	)
	err := s.tx.RunInTx(ctx, func(r repository.Repos) error {
		acct, err := r.Accounts.GetByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if acct.ActiveInstanceID == nil {
			return domain.ErrNoActivePlan
		}
		inst, err := r.Instances.GetByIDForUpdate(ctx, *acct.ActiveInstanceID)
		if err != nil {
			return err
		}

		now := s.now()
		if inst.Lapsed(now) {
			// Commit the expiry transition, then surface ErrPlanExpired.
			if err := s.expire(ctx, r, acct, inst); err != nil {
				return err
			}
			lapsed = true
			return nil
		}

		// First collection is always allowed; afterwards a full 24 hours
		// must pass between collections.
		if inst.LastCollectedAt != nil {
			nextAt := inst.LastCollectedAt.Add(24 * time.Hour)
			if now.Before(nextAt) {
				return &domain.CollectionNotReadyError{Remaining: nextAt.Sub(now)}
			}
		}

		profit = inst.DailyProfitCents
		collectedAt := now
		inst.LastCollectedAt = &collectedAt
		inst.TotalCollectedCents += profit
		if err := r.Instances.Update(ctx, inst); err != nil {
			return err
		}

		// Collection profit is always real currency, never bonus.
		acct.WalletCents += profit
		if err := r.Accounts.Update(ctx, acct); err != nil {
			return err
		}

		entry := &domain.LedgerEntry{
			AccountID:   acct.ID,
			Type:        domain.EntryTypeCollection,
			AmountCents: profit,
			Status:      domain.EntryStatusApproved,
			Description: fmt.Sprintf("Daily profit on instance #%d", inst.ID),
		}
		if err := r.Ledger.CreateEntry(ctx, entry); err != nil {
			return err
		}

		settings, err = r.Settings.Get(ctx)
		if err != nil {
			return err
		}
		source = acct
		return nil
	})
	if err != nil {
		return 0, err
	}
	if lapsed {
		return 0, domain.ErrPlanExpired
	}

	s.referral.PayCommission(ctx, source, profit, domain.CommissionTriggerCollection, settings)
	return profit, nil
}

func (s *planService) Upgrade(ctx context.Context, accountID, newTemplateID int64) (*domain.PlanInstance, error) {
	var newInst *domain.PlanInstance
	err := s.tx.RunInTx(ctx, func(r repository.Repos) error {
		acct, err := r.Accounts.GetByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		oldInst, err := s.applyLazyExpiry(ctx, r, acct)
		if err != nil {
			return err
		}
		if oldInst == nil {
			return domain.ErrNoActivePlan
		}

		newTpl, err := r.Plans.GetByID(ctx, newTemplateID)
		if err != nil {
			return err
		}
		// Eligibility compares the new template floor against what is
		// actually invested, so buying above an old template's minimum
		// cannot be "upgraded" sideways into a cheaper tier.
		if newTpl.MinAmountCents <= oldInst.InvestedCents {
			return domain.ErrNotAnUpgrade
		}

		// Upgrade cost is wallet-only; bonus is not eligible here.
		diff := newTpl.MinAmountCents - oldInst.InvestedCents
		if acct.WalletCents < diff {
			return domain.ErrInsufficientFunds
		}

		// Voluntary transition into the same terminal state as natural
		// expiry; the instance stays as history.
		oldInst.Status = domain.InstanceStatusExpired
		if err := r.Instances.Update(ctx, oldInst); err != nil {
			return err
		}

		invested := newTpl.MinAmountCents
		profit, err := utils.DailyProfit(invested, newTpl.YieldType, newTpl.DailyYield)
		if err != nil {
			return err
		}
		now := s.now()
		newInst = &domain.PlanInstance{
			AccountID:        acct.ID,
			TemplateID:       newTpl.ID,
			InvestedCents:    invested,
			DailyProfitCents: profit,
			StartOn:          now,
			EndOn:            now.AddDate(0, 0, int(newTpl.DurationDays)),
			Status:           domain.InstanceStatusActive,
		}
		if err := r.Instances.Create(ctx, newInst); err != nil {
			return err
		}

		acct.WalletCents -= diff
		acct.ActiveInstanceID = &newInst.ID
		if err := r.Accounts.Update(ctx, acct); err != nil {
			return err
		}

		entry := &domain.LedgerEntry{
			AccountID:   acct.ID,
			Type:        domain.EntryTypeInvestment,
			AmountCents: -diff,
			Status:      domain.EntryStatusApproved,
			Description: fmt.Sprintf("Upgraded to plan %s", newTpl.Name),
			Details: domain.EntryDetails{
				Investment: &domain.InvestmentDetail{
					TemplateID:       newTpl.ID,
					TemplateName:     newTpl.Name,
					InstanceID:       newInst.ID,
					WalletSpentCents: diff,
					Upgrade:          true,
				},
			},
		}
		return r.Ledger.CreateEntry(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return newInst, nil
}

func (s *planService) Renew(ctx context.Context, accountID, instanceID int64) (*domain.PlanInstance, error) {
	var (
		newInst  *domain.PlanInstance
		source   *domain.Account
		settings *domain.Settings
	)
	err := s.tx.RunInTx(ctx, func(r repository.Repos) error {
		acct, err := r.Accounts.GetByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if _, err := s.applyLazyExpiry(ctx, r, acct); err != nil {
			return err
		}
		if acct.ActiveInstanceID != nil {
			return domain.ErrAlreadyHasActivePlan
		}

		old, err := r.Instances.GetByIDForUpdate(ctx, instanceID)
		if err != nil {
			return err
		}
		if old.AccountID != acct.ID {
			return domain.ErrInstanceNotFound
		}
		if old.Status != domain.InstanceStatusExpired {
			return domain.ErrNotExpired
		}

		tpl, err := r.Plans.GetByID(ctx, old.TemplateID)
		if err != nil {
			return err
		}

		// Renewal re-buys the original template at its floor, wallet-only.
		invested := tpl.MinAmountCents
		if acct.WalletCents < invested {
			return domain.ErrInsufficientFunds
		}
		profit, err := utils.DailyProfit(invested, tpl.YieldType, tpl.DailyYield)
		if err != nil {
			return err
		}

		now := s.now()
		newInst = &domain.PlanInstance{
			AccountID:        acct.ID,
			TemplateID:       tpl.ID,
			InvestedCents:    invested,
			DailyProfitCents: profit,
			StartOn:          now,
			EndOn:            now.AddDate(0, 0, int(tpl.DurationDays)),
			Status:           domain.InstanceStatusActive,
		}
		if err := r.Instances.Create(ctx, newInst); err != nil {
			return err
		}

		acct.WalletCents -= invested
		acct.ActiveInstanceID = &newInst.ID
		if err := r.Accounts.Update(ctx, acct); err != nil {
			return err
		}

		entry := &domain.LedgerEntry{
			AccountID:   acct.ID,
			Type:        domain.EntryTypeInvestment,
			AmountCents: -invested,
			Status:      domain.EntryStatusApproved,
			Description: fmt.Sprintf("Renewed plan %s", tpl.Name),
			Details: domain.EntryDetails{
				Investment: &domain.InvestmentDetail{
					TemplateID:       tpl.ID,
					TemplateName:     tpl.Name,
					InstanceID:       newInst.ID,
					WalletSpentCents: invested,
					Renewal:          true,
				},
			},
		}
		if err := r.Ledger.CreateEntry(ctx, entry); err != nil {
			return err
		}

		settings, err = r.Settings.Get(ctx)
		if err != nil {
			return err
		}
		source = acct
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.referral.PayCommission(ctx, source, newInst.InvestedCents, domain.CommissionTriggerInvestment, settings)
	return newInst, nil
}

func (s *planService) ActiveInstance(ctx context.Context, accountID int64) (*domain.PlanInstance, error) {
	var inst *domain.PlanInstance
	err := s.tx.RunInTx(ctx, func(r repository.Repos) error {
		acct, err := r.Accounts.GetByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		inst, err = s.applyLazyExpiry(ctx, r, acct)
		return err
	})
	if err != nil {
		return nil, err
	}
	return inst, nil
}

func (s *planService) ListInstances(ctx context.Context, accountID int64) ([]domain.PlanInstance, error) {
	return s.repos.Instances.ListByAccount(ctx, accountID)
}

// applyLazyExpiry loads the locked account's active instance and performs
// the expiry transition when it has lapsed. Returns the instance while it is
// still active, nil otherwise. The caller must hold the account row lock.
func (s *planService) applyLazyExpiry(ctx context.Context, r repository.Repos, acct *domain.Account) (*domain.PlanInstance, error) {
	if acct.ActiveInstanceID == nil {
		return nil, nil
	}
	inst, err := r.Instances.GetByIDForUpdate(ctx, *acct.ActiveInstanceID)
	if err != nil {
		return nil, err
	}
	if !inst.Lapsed(s.now()) {
		return inst, nil
	}
	if err := s.expire(ctx, r, acct, inst); err != nil {
		return nil, err
	}
	return nil, nil
}

// expire flips the instance terminal and detaches it from the account.
func (s *planService) expire(ctx context.Context, r repository.Repos, acct *domain.Account, inst *domain.PlanInstance) error {
	inst.Status = domain.InstanceStatusExpired
	if err := r.Instances.Update(ctx, inst); err != nil {
		return err
	}
	acct.ActiveInstanceID = nil
	return r.Accounts.Update(ctx, acct)
}
