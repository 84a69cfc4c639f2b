package repository

import (
	"context"
	"time"

	"planvault-backend/internal/domain"
)

type AccountRepository interface {
	Create(ctx context.Context, acct *domain.Account) error
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	// GetByIDForUpdate locks the account row for the duration of the
	// enclosing transaction. Every balance mutation goes through this.
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByPublicID(ctx context.Context, publicID string) (*domain.Account, error)
	Update(ctx context.Context, acct *domain.Account) error
	List(ctx context.Context, page, pageSize int32) ([]domain.Account, int32, error)
}

type PlanRepository interface {
	Create(ctx context.Context, tpl *domain.PlanTemplate) error
	GetByID(ctx context.Context, id int64) (*domain.PlanTemplate, error)
	ListActive(ctx context.Context) ([]domain.PlanTemplate, error)
	Update(ctx context.Context, tpl *domain.PlanTemplate) error
}

type PlanInstanceRepository interface {
	Create(ctx context.Context, inst *domain.PlanInstance) error
	GetByID(ctx context.Context, id int64) (*domain.PlanInstance, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.PlanInstance, error)
	Update(ctx context.Context, inst *domain.PlanInstance) error
	ListByAccount(ctx context.Context, accountID int64) ([]domain.PlanInstance, error)
	// ExpireLapsed flips every lapsed ACTIVE instance to EXPIRED and clears
	// the owning accounts' active references. Used by the nightly sweep.
	ExpireLapsed(ctx context.Context, now time.Time) (int64, error)
}

type LedgerFilter struct {
	Type   domain.EntryType   // empty = all types
	Status domain.EntryStatus // empty = all statuses
	From   *time.Time
	To     *time.Time
}

type LedgerRepository interface {
	CreateEntry(ctx context.Context, entry *domain.LedgerEntry) error
	GetByID(ctx context.Context, id int64) (*domain.LedgerEntry, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.LedgerEntry, error)
	// UpdateStatus settles a PENDING entry. Entries are otherwise immutable.
	UpdateStatus(ctx context.Context, entry *domain.LedgerEntry) error
	ListByAccount(ctx context.Context, accountID int64, filter LedgerFilter, page, pageSize int32) ([]domain.LedgerEntry, int32, error)
	ListPending(ctx context.Context, entryType domain.EntryType, olderThan time.Time) ([]domain.LedgerEntry, error)
	Summary(ctx context.Context, accountID int64) (*domain.LedgerSummary, error)
	// CommissionFromSource sums approved commission an account has earned
	// from one downstream referral.
	CommissionFromSource(ctx context.Context, accountID, sourceAccountID int64) (int64, error)
}

type SettingsRepository interface {
	Get(ctx context.Context) (*domain.Settings, error)
	Update(ctx context.Context, s *domain.Settings) error
}

// Repos bundles every repository. A TxRunner hands callers a Repos bound to
// a single database transaction.
type Repos struct {
	Accounts  AccountRepository
	Plans     PlanRepository
	Instances PlanInstanceRepository
	Ledger    LedgerRepository
	Settings  SettingsRepository
}

// TxRunner executes fn inside one database transaction. Engine operations
// use it so that balance mutation, instance mutation, and ledger append
// commit or roll back as a unit.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(r Repos) error) error
}
