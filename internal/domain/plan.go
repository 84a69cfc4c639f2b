package domain

import "time"

type YieldType string

const (
	YieldTypePercentage YieldType = "PERCENTAGE"
	YieldTypeFixed      YieldType = "FIXED"
)

// PlanTemplate is an admin-authored investment product. The engine only ever
// reads templates; snapshots taken at activation keep instances independent
// of later template edits.
//
// DailyYield is cents when YieldType is FIXED, basis points of the invested
// amount when PERCENTAGE (10000 = 100%).
type PlanTemplate struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	MinAmountCents int64     `json:"min_amount_cents"`
	MaxAmountCents int64     `json:"max_amount_cents"`
	YieldType      YieldType `json:"yield_type"`
	DailyYield     int64     `json:"daily_yield"`
	DurationDays   int32     `json:"duration_days"`
	Currency       string    `json:"currency"`
	Active         bool      `json:"active"`
	CreatedOn      time.Time `json:"created_on"`
	UpdatedOn      time.Time `json:"updated_on"`
}

type InstanceStatus string

const (
	InstanceStatusActive  InstanceStatus = "ACTIVE"
	InstanceStatusExpired InstanceStatus = "EXPIRED" // terminal
)

// PlanInstance is one account's concrete, time-bounded activation of a
// template. Instances are never deleted; expired ones remain as history and
// are the target of renewal.
type PlanInstance struct {
	ID                  int64          `json:"id"`
	AccountID           int64          `json:"account_id"`
	TemplateID          int64          `json:"template_id"`
	InvestedCents       int64          `json:"invested_cents"`
	DailyProfitCents    int64          `json:"daily_profit_cents"` // snapshotted at activation
	StartOn             time.Time      `json:"start_on"`
	EndOn               time.Time      `json:"end_on"`
	LastCollectedAt     *time.Time     `json:"last_collected_at,omitempty"`
	TotalCollectedCents int64          `json:"total_collected_cents"`
	Status              InstanceStatus `json:"status"`
	CreatedOn           time.Time      `json:"created_on"`
}

// Lapsed reports whether the instance has passed its end date. The status
// flip itself happens lazily on the next touch.
func (p *PlanInstance) Lapsed(now time.Time) bool {
	return now.After(p.EndOn)
}
