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

// settlementService handles pending deposit and withdrawal entries and
// their admin review. Funds only move at review time; a request is just a
// PENDING ledger entry.
type settlementService struct {
	tx    repository.TxRunner
	repos repository.Repos
	email EmailService
	now   func() time.Time
}

func NewSettlementService(tx repository.TxRunner, repos repository.Repos, email EmailService) SettlementService {
	return &settlementService{
		tx:    tx,
		repos: repos,
		email: email,
		now:   time.Now,
	}
}

func (s *settlementService) RequestDeposit(ctx context.Context, accountID, amountCents int64, proofURL, method string) (*domain.LedgerEntry, error) {
	settings, err := s.repos.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if amountCents < settings.DepositMinCents {
		return nil, domain.ErrAmountOutOfRange
	}
	if settings.DepositMaxCents > 0 && amountCents > settings.DepositMaxCents {
		return nil, domain.ErrAmountOutOfRange
	}

	acct, err := s.repos.Accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	entry := &domain.LedgerEntry{
		AccountID:   acct.ID,
		Type:        domain.EntryTypeDeposit,
		AmountCents: amountCents,
		Status:      domain.EntryStatusPending,
		Description: fmt.Sprintf("Deposit request via %s", method),
		Details: domain.EntryDetails{
			Deposit: &domain.DepositDetail{
				Method:   method,
				ProofURL: proofURL,
			},
		},
	}
	if err := s.repos.Ledger.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}

	if err := s.email.NotifyAdminDepositRequested(ctx, acct.PublicID, amountCents); err != nil {
		logger.ErrorContext(ctx, "deposit request notification failed", "entry_id", entry.ID, "error", err)
	}
	return entry, nil
}

func (s *settlementService) RequestWithdrawal(ctx context.Context, accountID, amountCents int64, destination, holderName string) (*domain.LedgerEntry, error) {
	settings, err := s.repos.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	acct, err := s.repos.Accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !acct.HasDeposited || !acct.HasActivatedPlan {
		return nil, domain.ErrWithdrawNotEligible
	}
	if amountCents < settings.WithdrawMinCents {
		return nil, domain.ErrAmountOutOfRange
	}
	if settings.WithdrawMaxCents > 0 && amountCents > settings.WithdrawMaxCents {
		return nil, domain.ErrAmountOutOfRange
	}

	// The fee is fixed at request time and persisted in the detail payload;
	// approval debits this exact total even if the rate changes meanwhile.
	fee := utils.ApplyBps(amountCents, settings.WithdrawFeeBps)
	total := amountCents + fee
	if acct.WalletCents < total {
		return nil, domain.ErrInsufficientFunds
	}

	entry := &domain.LedgerEntry{
		AccountID:   acct.ID,
		Type:        domain.EntryTypeWithdrawal,
		AmountCents: -total,
		Status:      domain.EntryStatusPending,
		Description: fmt.Sprintf("Withdrawal request to %s", destination),
		Details: domain.EntryDetails{
			Withdrawal: &domain.WithdrawalDetail{
				Destination: destination,
				HolderName:  holderName,
				AmountCents: amountCents,
				FeeCents:    fee,
				TotalCents:  total,
			},
		},
	}
	if err := s.repos.Ledger.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}

	if err := s.email.NotifyAdminWithdrawalRequested(ctx, acct.PublicID, total); err != nil {
		logger.ErrorContext(ctx, "withdrawal request notification failed", "entry_id", entry.ID, "error", err)
	}
	return entry, nil
}

func (s *settlementService) ApproveDeposit(ctx context.Context, adminID, entryID int64) (*domain.LedgerEntry, error) {
	var (
		entry *domain.LedgerEntry
		acct  *domain.Account
	)
	err := s.tx.RunInTx(ctx, func(r repository.Repos) error {
		var err error
		entry, err = s.pendingEntry(ctx, r, entryID, domain.EntryTypeDeposit)
		if err != nil {
			return err
		}
		acct, err = r.Accounts.GetByIDForUpdate(ctx, entry.AccountID)
		if err != nil {
			return err
		}

		acct.WalletCents += entry.AmountCents
		acct.HasDeposited = true
		if err := r.Accounts.Update(ctx, acct); err != nil {
			return err
		}
		return s.review(ctx, r, entry, adminID, domain.EntryStatusApproved, "")
	})
	if err != nil {
		return nil, err
	}

	s.notifyReviewed(ctx, acct, entry)
	return entry, nil
}

func (s *settlementService) RejectDeposit(ctx context.Context, adminID, entryID int64, reason string) (*domain.LedgerEntry, error) {
	return s.reject(ctx, adminID, entryID, domain.EntryTypeDeposit, reason)
}

func (s *settlementService) ApproveWithdrawal(ctx context.Context, adminID, entryID int64) (*domain.LedgerEntry, error) {
	var (
		entry *domain.LedgerEntry
		acct  *domain.Account
	)
	err := s.tx.RunInTx(ctx, func(r repository.Repos) error {
		var err error
		entry, err = s.pendingEntry(ctx, r, entryID, domain.EntryTypeWithdrawal)
		if err != nil {
			return err
		}
		wd := entry.Details.Withdrawal
		if wd == nil {
			return fmt.Errorf("withdrawal entry %d has no withdrawal detail", entry.ID)
		}
		acct, err = r.Accounts.GetByIDForUpdate(ctx, entry.AccountID)
		if err != nil {
			return err
		}

		// The balance may have been spent since the request. Approving a
		// withdrawal the wallet cannot cover flips it to REJECTED so the
		// entry never stays pending forever.
		if acct.WalletCents < wd.TotalCents {
			return s.review(ctx, r, entry, adminID, domain.EntryStatusRejected, "insufficient balance at approval")
		}

		acct.WalletCents -= wd.TotalCents
		if err := r.Accounts.Update(ctx, acct); err != nil {
			return err
		}
		return s.review(ctx, r, entry, adminID, domain.EntryStatusApproved, "")
	})
	if err != nil {
		return nil, err
	}

	s.notifyReviewed(ctx, acct, entry)
	return entry, nil
}

func (s *settlementService) RejectWithdrawal(ctx context.Context, adminID, entryID int64, reason string) (*domain.LedgerEntry, error) {
	return s.reject(ctx, adminID, entryID, domain.EntryTypeWithdrawal, reason)
}

func (s *settlementService) reject(ctx context.Context, adminID, entryID int64, entryType domain.EntryType, reason string) (*domain.LedgerEntry, error) {
	var (
		entry *domain.LedgerEntry
		acct  *domain.Account
	)
	err := s.tx.RunInTx(ctx, func(r repository.Repos) error {
		var err error
		entry, err = s.pendingEntry(ctx, r, entryID, entryType)
		if err != nil {
			return err
		}
		acct, err = r.Accounts.GetByID(ctx, entry.AccountID)
		if err != nil {
			return err
		}
		return s.review(ctx, r, entry, adminID, domain.EntryStatusRejected, reason)
	})
	if err != nil {
		return nil, err
	}

	s.notifyReviewed(ctx, acct, entry)
	return entry, nil
}

func (s *settlementService) pendingEntry(ctx context.Context, r repository.Repos, entryID int64, entryType domain.EntryType) (*domain.LedgerEntry, error) {
	entry, err := r.Ledger.GetByIDForUpdate(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Type != entryType {
		return nil, domain.ErrEntryNotFound
	}
	if entry.Status != domain.EntryStatusPending {
		return nil, domain.ErrEntryNotPending
	}
	return entry, nil
}

func (s *settlementService) review(ctx context.Context, r repository.Repos, entry *domain.LedgerEntry, adminID int64, status domain.EntryStatus, reason string) error {
	now := s.now()
	entry.Status = status
	entry.ReviewedByID = &adminID
	entry.ReviewedAt = &now
	entry.RejectReason = reason
	return r.Ledger.UpdateStatus(ctx, entry)
}

func (s *settlementService) notifyReviewed(ctx context.Context, acct *domain.Account, entry *domain.LedgerEntry) {
	amount := entry.AmountCents
	if amount < 0 {
		amount = -amount
	}
	if err := s.email.NotifySettlementReviewed(ctx, acct.Email, acct.Name, entry.Type, entry.Status, amount, entry.RejectReason); err != nil {
		logger.ErrorContext(ctx, "settlement review notification failed", "entry_id", entry.ID, "error", err)
	}
}
