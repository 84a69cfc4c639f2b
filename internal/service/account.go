package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"planvault-backend/internal/domain"
	"planvault-backend/internal/repository"
	"planvault-backend/internal/security"
)

const publicIDAttempts = 5

type accountService struct {
	tx     repository.TxRunner
	repos  repository.Repos
	plans  PlanService
	tokens security.TokenManager
	now    func() time.Time
}

func NewAccountService(tx repository.TxRunner, repos repository.Repos, plans PlanService, tokens security.TokenManager) AccountService {
	return &accountService{
		tx:     tx,
		repos:  repos,
		plans:  plans,
		tokens: tokens,
		now:    time.Now,
	}
}

func (s *accountService) Register(ctx context.Context, name, email, password, referralCode string) (*domain.Account, string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.repos.Accounts.GetByEmail(ctx, email); err == nil {
		return nil, "", "", domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, "", "", err
	}

	// The referral code is simply the inviter's public ID.
	var invitedByID *int64
	if referralCode != "" {
		inviter, err := s.repos.Accounts.GetByPublicID(ctx, referralCode)
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, "", "", domain.ErrReferralCodeUnknown
		}
		if err != nil {
			return nil, "", "", err
		}
		invitedByID = &inviter.ID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", fmt.Errorf("hash password: %w", err)
	}

	var acct *domain.Account
	err = s.tx.RunInTx(ctx, func(r repository.Repos) error {
		settings, err := r.Settings.Get(ctx)
		if err != nil {
			return err
		}
		publicID, err := s.freePublicID(ctx, r)
		if err != nil {
			return err
		}

		acct = &domain.Account{
			PublicID:     publicID,
			Name:         name,
			Email:        email,
			PasswordHash: string(hash),
			BonusCents:   settings.WelcomeBonusCents,
			InvitedByID:  invitedByID,
		}
		if err := r.Accounts.Create(ctx, acct); err != nil {
			return err
		}

		if settings.WelcomeBonusCents > 0 {
			entry := &domain.LedgerEntry{
				AccountID:   acct.ID,
				Type:        domain.EntryTypeWelcomeBonus,
				AmountCents: settings.WelcomeBonusCents,
				Status:      domain.EntryStatusApproved,
				Description: "Welcome bonus",
			}
			if err := r.Ledger.CreateEntry(ctx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, "", "", err
	}

	access, refresh, err := s.issueTokens(acct)
	if err != nil {
		return nil, "", "", err
	}
	return acct, access, refresh, nil
}

func (s *accountService) Login(ctx context.Context, email, password string) (*domain.Account, string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	acct, err := s.repos.Accounts.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return nil, "", "", domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return nil, "", "", domain.ErrInvalidCredentials
	}
	if acct.IsBlocked {
		return nil, "", "", domain.ErrAccountBlocked
	}

	access, refresh, err := s.issueTokens(acct)
	if err != nil {
		return nil, "", "", err
	}
	return acct, access, refresh, nil
}

func (s *accountService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	claims, err := s.tokens.ValidateToken(refreshToken)
	if err != nil {
		return "", "", err
	}
	if claims.Type != security.TokenTypeRefresh {
		return "", "", security.ErrWrongTokenType
	}

	acct, err := s.repos.Accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		return "", "", err
	}
	if acct.IsBlocked {
		return "", "", domain.ErrAccountBlocked
	}
	return s.issueTokens(acct)
}

func (s *accountService) GetProfile(ctx context.Context, accountID int64) (*domain.Account, error) {
	return s.repos.Accounts.GetByID(ctx, accountID)
}

func (s *accountService) GetDashboard(ctx context.Context, accountID int64) (*Dashboard, error) {
	// ActiveInstance applies lazy expiry, so the account is loaded after it.
	inst, err := s.plans.ActiveInstance(ctx, accountID)
	if err != nil {
		return nil, err
	}
	acct, err := s.repos.Accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	summary, err := s.repos.Ledger.Summary(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Account:        acct,
		ActiveInstance: inst,
		Summary:        summary,
	}, nil
}

func (s *accountService) issueTokens(acct *domain.Account) (string, string, error) {
	access, err := s.tokens.GenerateAccessToken(acct.ID, acct.Email, acct.IsAdmin)
	if err != nil {
		return "", "", fmt.Errorf("generate access token: %w", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(acct.ID, acct.Email)
	if err != nil {
		return "", "", fmt.Errorf("generate refresh token: %w", err)
	}
	return access, refresh, nil
}

// freePublicID draws random 5-digit IDs until one is unused. The column
// also carries a unique index, so a race between two registrations fails
// the insert rather than producing a duplicate.
func (s *accountService) freePublicID(ctx context.Context, r repository.Repos) (string, error) {
	for i := 0; i < publicIDAttempts; i++ {
		candidate := fmt.Sprintf("%05d", 10000+rand.Intn(90000))
		_, err := r.Accounts.GetByPublicID(ctx, candidate)
		if errors.Is(err, domain.ErrAccountNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("could not allocate a public id after %d attempts", publicIDAttempts)
}
