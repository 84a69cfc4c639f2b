package domain

import "time"

type EntryType string

const (
	EntryTypeDeposit      EntryType = "DEPOSIT"
	EntryTypeWithdrawal   EntryType = "WITHDRAWAL"
	EntryTypeInvestment   EntryType = "INVESTMENT"
	EntryTypeCollection   EntryType = "COLLECTION"
	EntryTypeCommission   EntryType = "COMMISSION"
	EntryTypeWelcomeBonus EntryType = "WELCOME_BONUS"
	EntryTypeLotteryWin   EntryType = "LOTTERY_WIN"
)

type EntryStatus string

const (
	EntryStatusPending  EntryStatus = "PENDING"
	EntryStatusApproved EntryStatus = "APPROVED"
	EntryStatusRejected EntryStatus = "REJECTED"
)

// LedgerEntry is an immutable record of a balance-affecting event.
// AmountCents is signed: credits positive, debits negative. A withdrawal's
// amount is -(requested + fee). Deposit and withdrawal entries are created
// PENDING and settled by an admin; everything the plan engine writes is
// created APPROVED. Once status leaves PENDING the entry is frozen.
type LedgerEntry struct {
	ID               int64        `json:"id"`
	AccountID        int64        `json:"account_id"`
	Type             EntryType    `json:"type"`
	AmountCents      int64        `json:"amount_cents"`
	Status           EntryStatus  `json:"status"`
	Description      string       `json:"description"`
	RelatedAccountID *int64       `json:"related_account_id,omitempty"` // commission: the downstream account
	Details          EntryDetails `json:"details"`
	ReviewedByID     *int64       `json:"reviewed_by_id,omitempty"`
	ReviewedAt       *time.Time   `json:"reviewed_at,omitempty"`
	RejectReason     string       `json:"reject_reason,omitempty"`
	CreatedOn        time.Time    `json:"created_on"`
}

// EntryDetails is a tagged union keyed by the entry type: exactly one variant
// is set. Persisted as a single JSONB column.
type EntryDetails struct {
	Deposit    *DepositDetail    `json:"deposit,omitempty"`
	Withdrawal *WithdrawalDetail `json:"withdrawal,omitempty"`
	Investment *InvestmentDetail `json:"investment,omitempty"`
	Commission *CommissionDetail `json:"commission,omitempty"`
}

type DepositDetail struct {
	ProofURL string `json:"proof_url"`
	Method   string `json:"method,omitempty"`
}

// WithdrawalDetail is written at request time and read back verbatim at
// approval time: the admin debits TotalCents, not a recomputed figure, so a
// fee-rate change between request and approval cannot cause drift.
type WithdrawalDetail struct {
	Destination string `json:"destination"`
	HolderName  string `json:"holder_name"`
	AmountCents int64  `json:"amount_cents"`
	FeeCents    int64  `json:"fee_cents"`
	TotalCents  int64  `json:"total_cents"`
}

type InvestmentDetail struct {
	TemplateID       int64  `json:"template_id"`
	TemplateName     string `json:"template_name"`
	InstanceID       int64  `json:"instance_id,omitempty"`
	BonusSpentCents  int64  `json:"bonus_spent_cents"`
	WalletSpentCents int64  `json:"wallet_spent_cents"`
	Upgrade          bool   `json:"upgrade,omitempty"`
	Renewal          bool   `json:"renewal,omitempty"`
}

type CommissionTrigger string

const (
	CommissionTriggerInvestment CommissionTrigger = "INVESTMENT"
	CommissionTriggerCollection CommissionTrigger = "COLLECTION"
)

type CommissionDetail struct {
	SourceAccountID int64             `json:"source_account_id"`
	SourcePublicID  string            `json:"source_public_id"`
	Trigger         CommissionTrigger `json:"trigger"`
	RateBps         int64             `json:"rate_bps"`
	BaseCents       int64             `json:"base_cents"`
}

// LedgerSummary aggregates approved entries per type for an account's
// dashboard. DerivedBalanceCents is the signed sum over approved entries and
// must equal wallet + bonus at all times.
type LedgerSummary struct {
	TotalsByType        map[EntryType]int64 `json:"totals_by_type"`
	PendingDeposits     int64               `json:"pending_deposits"`
	PendingWithdrawals  int64               `json:"pending_withdrawals"`
	DerivedBalanceCents int64               `json:"derived_balance_cents"`
}
