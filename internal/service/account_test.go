package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"planvault-backend/internal/domain"
	"planvault-backend/internal/security"
)

func newTestAccountService(tr *testRepos, plans PlanService) *accountService {
	tokens := security.NewTokenManager("test-secret-0123456789abcdef0123456789", 60, 10080)
	svc := NewAccountService(tr.tx, tr.repos, plans, tokens).(*accountService)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestRegisterCreditsWelcomeBonus(t *testing.T) {
	tr := newTestRepos()
	svc := newTestAccountService(tr, nil)

	settings := &domain.Settings{WelcomeBonusCents: 2500}

	tr.accounts.On("GetByEmail", mock.Anything, "jane@example.com").Return(nil, domain.ErrAccountNotFound)
	tr.settings.On("Get", mock.Anything).Return(settings, nil)
	tr.accounts.On("GetByPublicID", mock.Anything, mock.AnythingOfType("string")).Return(nil, domain.ErrAccountNotFound)
	tr.accounts.On("Create", mock.Anything, mock.AnythingOfType("*domain.Account")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Account).ID = 42
		}).Return(nil)
	tr.ledger.On("CreateEntry", mock.Anything, mock.AnythingOfType("*domain.LedgerEntry")).Return(nil)

	acct, access, refresh, err := svc.Register(context.Background(), "Jane", "Jane@Example.com", "secret-pass", "")
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", acct.Email)
	assert.Equal(t, int64(2500), acct.BonusCents)
	assert.Len(t, acct.PublicID, 5)
	assert.Nil(t, acct.InvitedByID)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte("secret-pass")))

	entry := tr.ledger.Calls[0].Arguments.Get(1).(*domain.LedgerEntry)
	assert.Equal(t, domain.EntryTypeWelcomeBonus, entry.Type)
	assert.Equal(t, int64(2500), entry.AmountCents)
	assert.Equal(t, domain.EntryStatusApproved, entry.Status)
}

func TestRegisterResolvesReferralCode(t *testing.T) {
	tr := newTestRepos()
	svc := newTestAccountService(tr, nil)

	inviter := &domain.Account{ID: 7, PublicID: "55555"}

	tr.accounts.On("GetByEmail", mock.Anything, "jane@example.com").Return(nil, domain.ErrAccountNotFound)
	tr.accounts.On("GetByPublicID", mock.Anything, "55555").Return(inviter, nil)
	tr.settings.On("Get", mock.Anything).Return(&domain.Settings{}, nil)
	// candidate public IDs must come back free
	tr.accounts.On("GetByPublicID", mock.Anything, mock.AnythingOfType("string")).Return(nil, domain.ErrAccountNotFound)
	tr.accounts.On("Create", mock.Anything, mock.AnythingOfType("*domain.Account")).Return(nil)

	acct, _, _, err := svc.Register(context.Background(), "Jane", "jane@example.com", "secret-pass", "55555")
	require.NoError(t, err)

	require.NotNil(t, acct.InvitedByID)
	assert.Equal(t, int64(7), *acct.InvitedByID)
	// no welcome bonus configured, no ledger entry
	tr.ledger.AssertNotCalled(t, "CreateEntry", mock.Anything, mock.Anything)
}

func TestRegisterUnknownReferralCode(t *testing.T) {
	tr := newTestRepos()
	svc := newTestAccountService(tr, nil)

	tr.accounts.On("GetByEmail", mock.Anything, "jane@example.com").Return(nil, domain.ErrAccountNotFound)
	tr.accounts.On("GetByPublicID", mock.Anything, "00000").Return(nil, domain.ErrAccountNotFound)

	_, _, _, err := svc.Register(context.Background(), "Jane", "jane@example.com", "secret-pass", "00000")
	assert.ErrorIs(t, err, domain.ErrReferralCodeUnknown)
}

func TestRegisterEmailTaken(t *testing.T) {
	tr := newTestRepos()
	svc := newTestAccountService(tr, nil)

	tr.accounts.On("GetByEmail", mock.Anything, "jane@example.com").Return(&domain.Account{ID: 1}, nil)

	_, _, _, err := svc.Register(context.Background(), "Jane", "jane@example.com", "secret-pass", "")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	tr := newTestRepos()
	svc := newTestAccountService(tr, nil)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret-pass"), bcrypt.DefaultCost)
	require.NoError(t, err)
	acct := &domain.Account{ID: 1, Email: "jane@example.com", PasswordHash: string(hash)}

	tr.accounts.On("GetByEmail", mock.Anything, "jane@example.com").Return(acct, nil)

	got, access, refresh, err := svc.Login(context.Background(), "jane@example.com", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
}

func TestLoginWrongPassword(t *testing.T) {
	tr := newTestRepos()
	svc := newTestAccountService(tr, nil)

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret-pass"), bcrypt.DefaultCost)
	acct := &domain.Account{ID: 1, Email: "jane@example.com", PasswordHash: string(hash)}

	tr.accounts.On("GetByEmail", mock.Anything, "jane@example.com").Return(acct, nil)

	_, _, _, err := svc.Login(context.Background(), "jane@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	tr := newTestRepos()
	svc := newTestAccountService(tr, nil)

	tr.accounts.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, domain.ErrAccountNotFound)

	_, _, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginBlockedAccount(t *testing.T) {
	tr := newTestRepos()
	svc := newTestAccountService(tr, nil)

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret-pass"), bcrypt.DefaultCost)
	acct := &domain.Account{ID: 1, Email: "jane@example.com", PasswordHash: string(hash), IsBlocked: true}

	tr.accounts.On("GetByEmail", mock.Anything, "jane@example.com").Return(acct, nil)

	_, _, _, err := svc.Login(context.Background(), "jane@example.com", "secret-pass")
	assert.ErrorIs(t, err, domain.ErrAccountBlocked)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	tr := newTestRepos()
	svc := newTestAccountService(tr, nil)

	access, err := svc.tokens.GenerateAccessToken(1, "jane@example.com", false)
	require.NoError(t, err)

	_, _, err = svc.Refresh(context.Background(), access)
	assert.ErrorIs(t, err, security.ErrWrongTokenType)
}

func TestRefreshIssuesNewPair(t *testing.T) {
	tr := newTestRepos()
	svc := newTestAccountService(tr, nil)

	refresh, err := svc.tokens.GenerateRefreshToken(1, "jane@example.com")
	require.NoError(t, err)

	tr.accounts.On("GetByID", mock.Anything, int64(1)).Return(&domain.Account{ID: 1, Email: "jane@example.com"}, nil)

	newAccess, newRefresh, err := svc.Refresh(context.Background(), refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, newAccess)
	assert.NotEmpty(t, newRefresh)
}

func TestGetDashboard(t *testing.T) {
	tr := newTestRepos()
	ref := &recordingReferral{}
	plans := newTestPlanService(tr, ref)
	svc := newTestAccountService(tr, plans)

	acct := &domain.Account{ID: 1, WalletCents: 850, ActiveInstanceID: ptrInt64(5)}
	inst := &domain.PlanInstance{ID: 5, AccountID: 1, EndOn: testNow.AddDate(0, 0, 10), Status: domain.InstanceStatusActive}
	summary := &domain.LedgerSummary{DerivedBalanceCents: 850}

	tr.accounts.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(acct, nil)
	tr.instances.On("GetByIDForUpdate", mock.Anything, int64(5)).Return(inst, nil)
	tr.accounts.On("GetByID", mock.Anything, int64(1)).Return(acct, nil)
	tr.ledger.On("Summary", mock.Anything, int64(1)).Return(summary, nil)

	dash, err := svc.GetDashboard(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, acct, dash.Account)
	assert.Equal(t, inst, dash.ActiveInstance)
	assert.Equal(t, summary, dash.Summary)
}
