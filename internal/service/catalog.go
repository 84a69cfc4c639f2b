package service

import (
	"context"
	"fmt"

	"planvault-backend/internal/cache"
	"planvault-backend/internal/domain"
	"planvault-backend/internal/logger"
	"planvault-backend/internal/repository"
)

// catalogService serves the plan template catalog. The list path goes
// through redis when a cache is wired; the engine never reads from it.
type catalogService struct {
	repos repository.Repos
	cache *cache.PlanCache
}

func NewCatalogService(repos repository.Repos, planCache *cache.PlanCache) CatalogService {
	return &catalogService{repos: repos, cache: planCache}
}

func (s *catalogService) ListPlans(ctx context.Context) ([]domain.PlanTemplate, error) {
	if s.cache != nil {
		tpls, err := s.cache.GetActive(ctx)
		if err != nil {
			logger.Warn("plan cache read failed", "error", err)
		} else if tpls != nil {
			return tpls, nil
		}
	}

	tpls, err := s.repos.Plans.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetActive(ctx, tpls); err != nil {
			logger.Warn("plan cache write failed", "error", err)
		}
	}
	return tpls, nil
}

func (s *catalogService) GetPlan(ctx context.Context, id int64) (*domain.PlanTemplate, error) {
	return s.repos.Plans.GetByID(ctx, id)
}

func (s *catalogService) CreatePlan(ctx context.Context, tpl *domain.PlanTemplate) error {
	if err := validateTemplate(tpl); err != nil {
		return err
	}
	if err := s.repos.Plans.Create(ctx, tpl); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *catalogService) UpdatePlan(ctx context.Context, tpl *domain.PlanTemplate) error {
	if err := validateTemplate(tpl); err != nil {
		return err
	}
	if err := s.repos.Plans.Update(ctx, tpl); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *catalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Warn("plan cache invalidation failed", "error", err)
	}
}

func validateTemplate(tpl *domain.PlanTemplate) error {
	if tpl.Name == "" {
		return fmt.Errorf("template name is required")
	}
	if tpl.MinAmountCents <= 0 || tpl.MaxAmountCents < tpl.MinAmountCents {
		return fmt.Errorf("invalid amount range %d..%d", tpl.MinAmountCents, tpl.MaxAmountCents)
	}
	if tpl.DurationDays <= 0 {
		return fmt.Errorf("duration must be positive")
	}
	switch tpl.YieldType {
	case domain.YieldTypeFixed:
		if tpl.DailyYield <= 0 {
			return fmt.Errorf("fixed daily yield must be positive")
		}
	case domain.YieldTypePercentage:
		// Percentage yield is basis points of the invested amount; more
		// than 100% per day is a configuration mistake.
		if tpl.DailyYield <= 0 || tpl.DailyYield > 10000 {
			return fmt.Errorf("percentage daily yield must be within (0, 10000] bps")
		}
	default:
		return fmt.Errorf("unknown yield type %q", tpl.YieldType)
	}
	return nil
}
