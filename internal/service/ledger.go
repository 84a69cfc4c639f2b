package service

import (
	"context"

	"planvault-backend/internal/domain"
	"planvault-backend/internal/repository"
)

type ledgerService struct {
	repos repository.Repos
}

func NewLedgerService(repos repository.Repos) LedgerService {
	return &ledgerService{repos: repos}
}

func (s *ledgerService) ListEntries(ctx context.Context, accountID int64, filter repository.LedgerFilter, page, pageSize int32) ([]domain.LedgerEntry, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.repos.Ledger.ListByAccount(ctx, accountID, filter, page, pageSize)
}

func (s *ledgerService) GetSummary(ctx context.Context, accountID int64) (*domain.LedgerSummary, error) {
	return s.repos.Ledger.Summary(ctx, accountID)
}
