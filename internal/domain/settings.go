package domain

import "time"

// Settings is the admin-mutable platform configuration. It is loaded fresh
// at the start of every engine operation and passed down as a value, never
// cached across requests: an admin may change rates between two calls.
type Settings struct {
	DepositMinCents     int64 `json:"deposit_min_cents"`
	DepositMaxCents     int64 `json:"deposit_max_cents"`
	WithdrawMinCents    int64 `json:"withdraw_min_cents"`
	WithdrawMaxCents    int64 `json:"withdraw_max_cents"`
	WithdrawFeeBps      int64 `json:"withdraw_fee_bps"`
	WelcomeBonusCents   int64 `json:"welcome_bonus_cents"`
	InvestCommissionBps int64 `json:"invest_commission_bps"`
	DailyCommissionBps  int64 `json:"daily_commission_bps"`

	// DailyCommissionRequiresActivePlan gates collection-triggered
	// commission on the referrer holding an active plan of their own.
	DailyCommissionRequiresActivePlan bool `json:"daily_commission_requires_active_plan"`

	UpdatedOn time.Time `json:"updated_on"`
}
