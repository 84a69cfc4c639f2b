package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors returned by the engine and settlement layer. Callers match
// with errors.Is; the HTTP layer maps them to status codes.
var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrAccountBlocked   = errors.New("account is blocked")
	ErrPlanNotFound     = errors.New("plan not found")
	ErrInstanceNotFound = errors.New("plan instance not found")
	ErrEntryNotFound    = errors.New("ledger entry not found")

	ErrAmountOutOfRange  = errors.New("amount is outside the plan's investable range")
	ErrInsufficientFunds = errors.New("insufficient funds")

	ErrAlreadyHasActivePlan = errors.New("account already has an active plan")
	ErrNoActivePlan         = errors.New("account has no active plan")
	ErrPlanExpired          = errors.New("plan has expired")
	ErrNotAnUpgrade         = errors.New("target plan is not an upgrade")
	ErrNotExpired           = errors.New("plan instance is not expired")

	ErrEntryNotPending     = errors.New("ledger entry is not pending")
	ErrWithdrawNotEligible = errors.New("account is not eligible to withdraw")
	ErrEmailTaken          = errors.New("email is already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrReferralCodeUnknown = errors.New("referral code does not match any account")
)

// CollectionNotReadyError reports how long the caller must wait before the
// next collection window opens.
type CollectionNotReadyError struct {
	Remaining time.Duration
}

func (e *CollectionNotReadyError) Error() string {
	return fmt.Sprintf("collection not yet available, retry in %s", e.Remaining.Round(time.Second))
}

// IsCollectionNotReady unwraps err into a CollectionNotReadyError if it is one.
func IsCollectionNotReady(err error) (*CollectionNotReadyError, bool) {
	var cnr *CollectionNotReadyError
	if errors.As(err, &cnr) {
		return cnr, true
	}
	return nil, false
}
