package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"planvault-backend/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	planListKey = "plans:active"
	planListTTL = 5 * time.Minute
)

// PlanCache caches the active plan template list for display paths. The
// engine never reads from here; inside a transaction it goes straight to
// Postgres so activation decisions always see current data.
type PlanCache struct {
	rdb *redis.Client
}

func NewPlanCache(rdb *redis.Client) *PlanCache {
	return &PlanCache{rdb: rdb}
}

// Connect opens a redis client and verifies the connection.
func Connect(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

// GetActive returns the cached template list, or nil on miss.
func (c *PlanCache) GetActive(ctx context.Context) ([]domain.PlanTemplate, error) {
	data, err := c.rdb.Get(ctx, planListKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var tpls []domain.PlanTemplate
	if err := json.Unmarshal(data, &tpls); err != nil {
		return nil, err
	}
	return tpls, nil
}

func (c *PlanCache) SetActive(ctx context.Context, tpls []domain.PlanTemplate) error {
	data, err := json.Marshal(tpls)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, planListKey, data, planListTTL).Err()
}

// Invalidate drops the cached list after an admin edits the catalog.
func (c *PlanCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, planListKey).Err()
}
