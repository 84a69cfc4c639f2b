package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"planvault-backend/internal/domain"
)

func newTestReferralService(tr *testRepos) *referralService {
	svc := NewReferralService(tr.tx, tr.repos).(*referralService)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestPayCommissionOnInvestment(t *testing.T) {
	tr := newTestRepos()
	svc := newTestReferralService(tr)

	inviter := &domain.Account{ID: 2, PublicID: "55555", WalletCents: 1000}
	source := &domain.Account{ID: 1, PublicID: "12345", InvitedByID: ptrInt64(2)}
	settings := &domain.Settings{InvestCommissionBps: 1500}

	tr.accounts.On("GetByIDForUpdate", mock.Anything, int64(2)).Return(inviter, nil)
	tr.accounts.On("Update", mock.Anything, inviter).Return(nil)
	tr.ledger.On("CreateEntry", mock.Anything, mock.AnythingOfType("*domain.LedgerEntry")).Return(nil)

	// 15% of 30000 = 4500
	svc.PayCommission(context.Background(), source, 30000, domain.CommissionTriggerInvestment, settings)

	assert.Equal(t, int64(5500), inviter.WalletCents)

	entry := tr.ledger.Calls[0].Arguments.Get(1).(*domain.LedgerEntry)
	assert.Equal(t, domain.EntryTypeCommission, entry.Type)
	assert.Equal(t, int64(4500), entry.AmountCents)
	assert.Equal(t, domain.EntryStatusApproved, entry.Status)
	require.NotNil(t, entry.RelatedAccountID)
	assert.Equal(t, int64(1), *entry.RelatedAccountID)
	require.NotNil(t, entry.Details.Commission)
	assert.Equal(t, "12345", entry.Details.Commission.SourcePublicID)
	assert.Equal(t, int64(1500), entry.Details.Commission.RateBps)
	assert.Equal(t, int64(30000), entry.Details.Commission.BaseCents)

	tr.assertExpectations(t)
}

func TestPayCommissionNoInviter(t *testing.T) {
	tr := newTestRepos()
	svc := newTestReferralService(tr)

	source := &domain.Account{ID: 1, PublicID: "12345"}
	svc.PayCommission(context.Background(), source, 30000, domain.CommissionTriggerInvestment, &domain.Settings{InvestCommissionBps: 1500})

	tr.accounts.AssertNotCalled(t, "GetByIDForUpdate", mock.Anything, mock.Anything)
	tr.ledger.AssertNotCalled(t, "CreateEntry", mock.Anything, mock.Anything)
}

func TestPayCommissionZeroRate(t *testing.T) {
	tr := newTestRepos()
	svc := newTestReferralService(tr)

	source := &domain.Account{ID: 1, InvitedByID: ptrInt64(2)}
	svc.PayCommission(context.Background(), source, 30000, domain.CommissionTriggerInvestment, &domain.Settings{})

	tr.ledger.AssertNotCalled(t, "CreateEntry", mock.Anything, mock.Anything)
}

func TestDailyCommissionGateSkipsInactiveInviter(t *testing.T) {
	tr := newTestRepos()
	svc := newTestReferralService(tr)

	inviter := &domain.Account{ID: 2, WalletCents: 1000} // no active plan
	source := &domain.Account{ID: 1, InvitedByID: ptrInt64(2)}
	settings := &domain.Settings{DailyCommissionBps: 500, DailyCommissionRequiresActivePlan: true}

	tr.accounts.On("GetByIDForUpdate", mock.Anything, int64(2)).Return(inviter, nil)

	svc.PayCommission(context.Background(), source, 2500, domain.CommissionTriggerCollection, settings)

	assert.Equal(t, int64(1000), inviter.WalletCents)
	tr.ledger.AssertNotCalled(t, "CreateEntry", mock.Anything, mock.Anything)
}

func TestDailyCommissionPaidWhenGateDisabled(t *testing.T) {
	tr := newTestRepos()
	svc := newTestReferralService(tr)

	inviter := &domain.Account{ID: 2, WalletCents: 0} // no active plan, gate off
	source := &domain.Account{ID: 1, InvitedByID: ptrInt64(2)}
	settings := &domain.Settings{DailyCommissionBps: 500, DailyCommissionRequiresActivePlan: false}

	tr.accounts.On("GetByIDForUpdate", mock.Anything, int64(2)).Return(inviter, nil)
	tr.accounts.On("Update", mock.Anything, inviter).Return(nil)
	tr.ledger.On("CreateEntry", mock.Anything, mock.Anything).Return(nil)

	// 5% of 2500 = 125
	svc.PayCommission(context.Background(), source, 2500, domain.CommissionTriggerCollection, settings)

	assert.Equal(t, int64(125), inviter.WalletCents)
}

func TestDailyCommissionGateExpiresLapsedInviterPlan(t *testing.T) {
	tr := newTestRepos()
	svc := newTestReferralService(tr)

	inviter := &domain.Account{ID: 2, WalletCents: 0, ActiveInstanceID: ptrInt64(9)}
	lapsed := &domain.PlanInstance{ID: 9, AccountID: 2, EndOn: testNow.Add(-time.Hour), Status: domain.InstanceStatusActive}
	source := &domain.Account{ID: 1, InvitedByID: ptrInt64(2)}
	settings := &domain.Settings{DailyCommissionBps: 500, DailyCommissionRequiresActivePlan: true}

	tr.accounts.On("GetByIDForUpdate", mock.Anything, int64(2)).Return(inviter, nil)
	tr.instances.On("GetByIDForUpdate", mock.Anything, int64(9)).Return(lapsed, nil)
	tr.instances.On("Update", mock.Anything, lapsed).Return(nil)
	tr.accounts.On("Update", mock.Anything, inviter).Return(nil)

	svc.PayCommission(context.Background(), source, 2500, domain.CommissionTriggerCollection, settings)

	// the inviter's stale plan was expired and no commission was paid
	assert.Equal(t, domain.InstanceStatusExpired, lapsed.Status)
	assert.Nil(t, inviter.ActiveInstanceID)
	assert.Equal(t, int64(0), inviter.WalletCents)
	tr.ledger.AssertNotCalled(t, "CreateEntry", mock.Anything, mock.Anything)
}

func TestPayCommissionSkipsBlockedInviter(t *testing.T) {
	tr := newTestRepos()
	svc := newTestReferralService(tr)

	inviter := &domain.Account{ID: 2, IsBlocked: true}
	source := &domain.Account{ID: 1, InvitedByID: ptrInt64(2)}

	tr.accounts.On("GetByIDForUpdate", mock.Anything, int64(2)).Return(inviter, nil)

	svc.PayCommission(context.Background(), source, 30000, domain.CommissionTriggerInvestment, &domain.Settings{InvestCommissionBps: 1500})

	tr.ledger.AssertNotCalled(t, "CreateEntry", mock.Anything, mock.Anything)
}

func TestCommissionFrom(t *testing.T) {
	tr := newTestRepos()
	svc := newTestReferralService(tr)

	source := &domain.Account{ID: 7, PublicID: "33333"}
	tr.accounts.On("GetByPublicID", mock.Anything, "33333").Return(source, nil)
	tr.ledger.On("CommissionFromSource", mock.Anything, int64(2), int64(7)).Return(int64(4500), nil)

	total, err := svc.CommissionFrom(context.Background(), 2, "33333")
	require.NoError(t, err)
	assert.Equal(t, int64(4500), total)
}
