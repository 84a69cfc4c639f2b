package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"planvault-backend/internal/domain"
	"planvault-backend/internal/repository"
)

// stubTxRunner hands the provided repos to fn directly, standing in for a
// real database transaction.
type stubTxRunner struct {
	repos repository.Repos
}

func (s *stubTxRunner) RunInTx(_ context.Context, fn func(r repository.Repos) error) error {
	return fn(s.repos)
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, acct *domain.Account) error {
	args := m.Called(ctx, acct)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByPublicID(ctx context.Context, publicID string) (*domain.Account, error) {
	args := m.Called(ctx, publicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) Update(ctx context.Context, acct *domain.Account) error {
	args := m.Called(ctx, acct)
	return args.Error(0)
}

func (m *MockAccountRepository) List(ctx context.Context, page, pageSize int32) ([]domain.Account, int32, error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Account), args.Get(1).(int32), args.Error(2)
}

type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) Create(ctx context.Context, tpl *domain.PlanTemplate) error {
	args := m.Called(ctx, tpl)
	return args.Error(0)
}

func (m *MockPlanRepository) GetByID(ctx context.Context, id int64) (*domain.PlanTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PlanTemplate), args.Error(1)
}

func (m *MockPlanRepository) ListActive(ctx context.Context) ([]domain.PlanTemplate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PlanTemplate), args.Error(1)
}

func (m *MockPlanRepository) Update(ctx context.Context, tpl *domain.PlanTemplate) error {
	args := m.Called(ctx, tpl)
	return args.Error(0)
}

type MockPlanInstanceRepository struct {
	mock.Mock
}

func (m *MockPlanInstanceRepository) Create(ctx context.Context, inst *domain.PlanInstance) error {
	args := m.Called(ctx, inst)
	return args.Error(0)
}

func (m *MockPlanInstanceRepository) GetByID(ctx context.Context, id int64) (*domain.PlanInstance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PlanInstance), args.Error(1)
}

func (m *MockPlanInstanceRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.PlanInstance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PlanInstance), args.Error(1)
}

func (m *MockPlanInstanceRepository) Update(ctx context.Context, inst *domain.PlanInstance) error {
	args := m.Called(ctx, inst)
	return args.Error(0)
}

func (m *MockPlanInstanceRepository) ListByAccount(ctx context.Context, accountID int64) ([]domain.PlanInstance, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PlanInstance), args.Error(1)
}

func (m *MockPlanInstanceRepository) ExpireLapsed(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) CreateEntry(ctx context.Context, entry *domain.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByID(ctx context.Context, id int64) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) UpdateStatus(ctx context.Context, entry *domain.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) ListByAccount(ctx context.Context, accountID int64, filter repository.LedgerFilter, page, pageSize int32) ([]domain.LedgerEntry, int32, error) {
	args := m.Called(ctx, accountID, filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Get(1).(int32), args.Error(2)
}

func (m *MockLedgerRepository) ListPending(ctx context.Context, entryType domain.EntryType, olderThan time.Time) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, entryType, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) Summary(ctx context.Context, accountID int64) (*domain.LedgerSummary, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerSummary), args.Error(1)
}

func (m *MockLedgerRepository) CommissionFromSource(ctx context.Context, accountID, sourceAccountID int64) (int64, error) {
	args := m.Called(ctx, accountID, sourceAccountID)
	return args.Get(0).(int64), args.Error(1)
}

type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context) (*domain.Settings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Settings), args.Error(1)
}

func (m *MockSettingsRepository) Update(ctx context.Context, s *domain.Settings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) NotifyAdminDepositRequested(ctx context.Context, publicID string, amountCents int64) error {
	args := m.Called(ctx, publicID, amountCents)
	return args.Error(0)
}

func (m *MockEmailService) NotifyAdminWithdrawalRequested(ctx context.Context, publicID string, totalCents int64) error {
	args := m.Called(ctx, publicID, totalCents)
	return args.Error(0)
}

func (m *MockEmailService) NotifySettlementReviewed(ctx context.Context, email, name string, entryType domain.EntryType, status domain.EntryStatus, amountCents int64, reason string) error {
	args := m.Called(ctx, email, name, entryType, status, amountCents, reason)
	return args.Error(0)
}

func (m *MockEmailService) NotifyAdminPendingSettlements(ctx context.Context, deposits, withdrawals int) error {
	args := m.Called(ctx, deposits, withdrawals)
	return args.Error(0)
}

// recordingReferral captures PayCommission invocations so engine tests can
// assert on what would have been paid.
type recordingReferral struct {
	calls []referralCall
}

type referralCall struct {
	source   *domain.Account
	base     int64
	trigger  domain.CommissionTrigger
	settings *domain.Settings
}

func (r *recordingReferral) PayCommission(_ context.Context, source *domain.Account, baseCents int64, trigger domain.CommissionTrigger, settings *domain.Settings) {
	r.calls = append(r.calls, referralCall{source: source, base: baseCents, trigger: trigger, settings: settings})
}

func (r *recordingReferral) CommissionFrom(context.Context, int64, string) (int64, error) {
	return 0, nil
}

// testRepos builds one mock of each repository plus the Repos bundle and a
// stub runner wired to them.
type testRepos struct {
	accounts  *MockAccountRepository
	plans     *MockPlanRepository
	instances *MockPlanInstanceRepository
	ledger    *MockLedgerRepository
	settings  *MockSettingsRepository
	repos     repository.Repos
	tx        *stubTxRunner
}

func newTestRepos() *testRepos {
	tr := &testRepos{
		accounts:  new(MockAccountRepository),
		plans:     new(MockPlanRepository),
		instances: new(MockPlanInstanceRepository),
		ledger:    new(MockLedgerRepository),
		settings:  new(MockSettingsRepository),
	}
	tr.repos = repository.Repos{
		Accounts:  tr.accounts,
		Plans:     tr.plans,
		Instances: tr.instances,
		Ledger:    tr.ledger,
		Settings:  tr.settings,
	}
	tr.tx = &stubTxRunner{repos: tr.repos}
	return tr
}

func (tr *testRepos) assertExpectations(t mock.TestingT) {
	tr.accounts.AssertExpectations(t)
	tr.plans.AssertExpectations(t)
	tr.instances.AssertExpectations(t)
	tr.ledger.AssertExpectations(t)
	tr.settings.AssertExpectations(t)
}
