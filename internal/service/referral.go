package service

import (
	"context"
	"fmt"
	"time"

	"planvault-backend/internal/domain"
	"planvault-backend/internal/logger"
	"planvault-backend/internal/repository"
	"planvault-backend/internal/utils"
)

// referralService pays single-level commission to the inviter. It runs in
// its own transaction after the triggering operation has committed, so a
// failure here is logged and swallowed, never propagated.
type referralService struct {
	tx    repository.TxRunner
	repos repository.Repos
	now   func() time.Time
}

func NewReferralService(tx repository.TxRunner, repos repository.Repos) ReferralService {
	return &referralService{
		tx:    tx,
		repos: repos,
		now:   time.Now,
	}
}

func (s *referralService) PayCommission(ctx context.Context, source *domain.Account, baseCents int64, trigger domain.CommissionTrigger, settings *domain.Settings) {
	if source == nil || source.InvitedByID == nil || settings == nil {
		return
	}

	var rateBps int64
	switch trigger {
	case domain.CommissionTriggerInvestment:
		rateBps = settings.InvestCommissionBps
	case domain.CommissionTriggerCollection:
		rateBps = settings.DailyCommissionBps
	}
	if rateBps <= 0 {
		return
	}
	commission := utils.ApplyBps(baseCents, rateBps)
	if commission <= 0 {
		return
	}

	err := s.tx.RunInTx(ctx, func(r repository.Repos) error {
		inviter, err := r.Accounts.GetByIDForUpdate(ctx, *source.InvitedByID)
		if err != nil {
			return err
		}
		if inviter.IsBlocked {
			return nil
		}

		// Collection commission can be gated on the inviter holding an
		// active plan of their own.
		if trigger == domain.CommissionTriggerCollection && settings.DailyCommissionRequiresActivePlan {
			active, err := s.inviterHasActivePlan(ctx, r, inviter)
			if err != nil {
				return err
			}
			if !active {
				return nil
			}
		}

		inviter.WalletCents += commission
		if err := r.Accounts.Update(ctx, inviter); err != nil {
			return err
		}

		entry := &domain.LedgerEntry{
			AccountID:        inviter.ID,
			Type:             domain.EntryTypeCommission,
			AmountCents:      commission,
			Status:           domain.EntryStatusApproved,
			Description:      fmt.Sprintf("Referral commission from %s", source.PublicID),
			RelatedAccountID: &source.ID,
			Details: domain.EntryDetails{
				Commission: &domain.CommissionDetail{
					SourceAccountID: source.ID,
					SourcePublicID:  source.PublicID,
					Trigger:         trigger,
					RateBps:         rateBps,
					BaseCents:       baseCents,
				},
			},
		}
		return r.Ledger.CreateEntry(ctx, entry)
	})
	if err != nil {
		logger.ErrorContext(ctx, "referral commission payment failed",
			"source_account_id", source.ID,
			"inviter_id", *source.InvitedByID,
			"trigger", trigger,
			"base_cents", baseCents,
			"error", err)
	}
}

func (s *referralService) CommissionFrom(ctx context.Context, accountID int64, sourcePublicID string) (int64, error) {
	source, err := s.repos.Accounts.GetByPublicID(ctx, sourcePublicID)
	if err != nil {
		return 0, err
	}
	return s.repos.Ledger.CommissionFromSource(ctx, accountID, source.ID)
}

// inviterHasActivePlan applies the same lazy expiry rule the engine uses:
// a lapsed instance found here is expired on the spot and does not count.
func (s *referralService) inviterHasActivePlan(ctx context.Context, r repository.Repos, inviter *domain.Account) (bool, error) {
	if inviter.ActiveInstanceID == nil {
		return false, nil
	}
	inst, err := r.Instances.GetByIDForUpdate(ctx, *inviter.ActiveInstanceID)
	if err != nil {
		return false, err
	}
	if !inst.Lapsed(s.now()) {
		return true, nil
	}
	inst.Status = domain.InstanceStatusExpired
	if err := r.Instances.Update(ctx, inst); err != nil {
		return false, err
	}
	inviter.ActiveInstanceID = nil
	if err := r.Accounts.Update(ctx, inviter); err != nil {
		return false, err
	}
	return false, nil
}
