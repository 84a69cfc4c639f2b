package domain

import "time"

// Account holds a user's mutable balance state. Amounts are integer cents.
// BonusCents is promotional credit: spendable on plan activation only, never
// withdrawable, never credited by collection or commission.
type Account struct {
	ID               int64      `json:"id"`
	PublicID         string     `json:"public_id"` // stable 5-digit identifier, unique
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	WalletCents      int64      `json:"wallet_cents"`
	BonusCents       int64      `json:"bonus_cents"`
	ActiveInstanceID *int64     `json:"active_instance_id,omitempty"`
	InvitedByID      *int64     `json:"invited_by_id,omitempty"` // weak back-reference, never cascades
	HasDeposited     bool       `json:"has_deposited"`
	HasActivatedPlan bool       `json:"has_activated_plan"`
	IsBlocked        bool       `json:"is_blocked"`
	IsAdmin          bool       `json:"is_admin"`
	BlockedReason    string     `json:"blocked_reason,omitempty"`
	BlockedOn        *time.Time `json:"blocked_on,omitempty"`
	CreatedOn        time.Time  `json:"created_on"`
	UpdatedOn        time.Time  `json:"updated_on"`
}

// UsableCents is the total the account can put toward a plan activation.
func (a *Account) UsableCents() int64 {
	return a.WalletCents + a.BonusCents
}
