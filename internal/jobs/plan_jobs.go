package jobs

import (
	"context"
	"time"

	"planvault-backend/internal/domain"
	"planvault-backend/internal/logger"
)

const jobTimeout = 5 * time.Minute

// ExpireLapsedInstances is the nightly sweep complementing lazy expiry: it
// flips every lapsed ACTIVE instance to EXPIRED in bulk so dormant accounts
// do not keep stale active references forever. Idempotent; an instance the
// lazy path already expired is simply not matched.
func (jr *JobRunner) ExpireLapsedInstances() {
	jr.runWithRecovery("ExpireLapsedInstances", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		count, err := jr.repos.Instances.ExpireLapsed(ctx, time.Now().UTC())
		if err != nil {
			logger.Error("Failed to expire lapsed instances", "error", err)
			return
		}
		logger.Info("Expired lapsed instances", "count", count)
	})
}

// SendSettlementReminders mails the admin a digest of settlement requests
// that have been pending for more than a day.
func (jr *JobRunner) SendSettlementReminders() {
	jr.runWithRecovery("SendSettlementReminders", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		cutoff := time.Now().UTC().Add(-24 * time.Hour)
		deposits, err := jr.repos.Ledger.ListPending(ctx, domain.EntryTypeDeposit, cutoff)
		if err != nil {
			logger.Error("Failed to list pending deposits", "error", err)
			return
		}
		withdrawals, err := jr.repos.Ledger.ListPending(ctx, domain.EntryTypeWithdrawal, cutoff)
		if err != nil {
			logger.Error("Failed to list pending withdrawals", "error", err)
			return
		}
		if len(deposits) == 0 && len(withdrawals) == 0 {
			return
		}

		if err := jr.email.NotifyAdminPendingSettlements(ctx, len(deposits), len(withdrawals)); err != nil {
			logger.Error("Failed to send settlement reminder", "error", err)
			return
		}
		logger.Info("Sent settlement reminder",
			"pending_deposits", len(deposits),
			"pending_withdrawals", len(withdrawals))
	})
}
