package service

import (
	"context"

	"planvault-backend/internal/domain"
	"planvault-backend/internal/repository"
)

type AccountService interface {
	// Register creates an account, credits the welcome bonus, and resolves
	// the optional referral code (the inviter's public ID) to an internal
	// back-reference. Returns the account plus access and refresh tokens.
	Register(ctx context.Context, name, email, password, referralCode string) (*domain.Account, string, string, error)
	Login(ctx context.Context, email, password string) (*domain.Account, string, string, error)
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
	GetProfile(ctx context.Context, accountID int64) (*domain.Account, error)
	GetDashboard(ctx context.Context, accountID int64) (*Dashboard, error)
}

// Dashboard bundles what the account home screen shows. Loading it applies
// lazy expiry to the active instance.
type Dashboard struct {
	Account        *domain.Account       `json:"account"`
	ActiveInstance *domain.PlanInstance  `json:"active_instance,omitempty"`
	Summary        *domain.LedgerSummary `json:"summary"`
}

type PlanService interface {
	Activate(ctx context.Context, accountID, templateID, amountCents int64) (*domain.PlanInstance, error)
	// Collect pays out one daily profit. Returns the profit credited.
	Collect(ctx context.Context, accountID int64) (int64, error)
	Upgrade(ctx context.Context, accountID, newTemplateID int64) (*domain.PlanInstance, error)
	Renew(ctx context.Context, accountID, instanceID int64) (*domain.PlanInstance, error)
	// ActiveInstance returns the account's active instance with lazy expiry
	// applied; nil when there is none.
	ActiveInstance(ctx context.Context, accountID int64) (*domain.PlanInstance, error)
	ListInstances(ctx context.Context, accountID int64) ([]domain.PlanInstance, error)
}

type ReferralService interface {
	// PayCommission credits the inviter of source, if any. Best-effort: it
	// never returns an error because the triggering operation has already
	// committed; failures are logged.
	PayCommission(ctx context.Context, source *domain.Account, baseCents int64, trigger domain.CommissionTrigger, settings *domain.Settings)
	// CommissionFrom reports the total approved commission accountID has
	// earned from the downstream account with the given public ID.
	CommissionFrom(ctx context.Context, accountID int64, sourcePublicID string) (int64, error)
}

type SettlementService interface {
	RequestDeposit(ctx context.Context, accountID, amountCents int64, proofURL, method string) (*domain.LedgerEntry, error)
	RequestWithdrawal(ctx context.Context, accountID, amountCents int64, destination, holderName string) (*domain.LedgerEntry, error)
	ApproveDeposit(ctx context.Context, adminID, entryID int64) (*domain.LedgerEntry, error)
	RejectDeposit(ctx context.Context, adminID, entryID int64, reason string) (*domain.LedgerEntry, error)
	// ApproveWithdrawal debits the total persisted at request time. When the
	// balance no longer covers it the entry flips to REJECTED instead of
	// failing, so the account is never left in limbo.
	ApproveWithdrawal(ctx context.Context, adminID, entryID int64) (*domain.LedgerEntry, error)
	RejectWithdrawal(ctx context.Context, adminID, entryID int64, reason string) (*domain.LedgerEntry, error)
}

type LedgerService interface {
	ListEntries(ctx context.Context, accountID int64, filter repository.LedgerFilter, page, pageSize int32) ([]domain.LedgerEntry, int32, error)
	GetSummary(ctx context.Context, accountID int64) (*domain.LedgerSummary, error)
}

type CatalogService interface {
	ListPlans(ctx context.Context) ([]domain.PlanTemplate, error)
	GetPlan(ctx context.Context, id int64) (*domain.PlanTemplate, error)
	CreatePlan(ctx context.Context, tpl *domain.PlanTemplate) error
	UpdatePlan(ctx context.Context, tpl *domain.PlanTemplate) error
}

type AdminService interface {
	ListAccounts(ctx context.Context, page, pageSize int32) ([]domain.Account, int32, error)
	BlockAccount(ctx context.Context, adminID, accountID int64, block bool, reason string) error
	GetSettings(ctx context.Context) (*domain.Settings, error)
	UpdateSettings(ctx context.Context, s *domain.Settings) error
}

type EmailService interface {
	NotifyAdminDepositRequested(ctx context.Context, publicID string, amountCents int64) error
	NotifyAdminWithdrawalRequested(ctx context.Context, publicID string, totalCents int64) error
	NotifySettlementReviewed(ctx context.Context, email, name string, entryType domain.EntryType, status domain.EntryStatus, amountCents int64, reason string) error
	NotifyAdminPendingSettlements(ctx context.Context, deposits, withdrawals int) error
}
