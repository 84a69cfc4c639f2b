package utils

import (
	"fmt"

	"planvault-backend/internal/domain"
)

// ApplyBps applies a basis-point rate to an amount in cents, truncating
// toward zero. 10000 bps = 100%.
func ApplyBps(amountCents, rateBps int64) int64 {
	return amountCents * rateBps / 10000
}

// DailyProfit computes the profit snapshot taken at activation time. The
// result never changes for the life of the instance, even if the template
// is edited afterwards.
func DailyProfit(investedCents int64, yieldType domain.YieldType, dailyYield int64) (int64, error) {
	switch yieldType {
	case domain.YieldTypeFixed:
		return dailyYield, nil
	case domain.YieldTypePercentage:
		return ApplyBps(investedCents, dailyYield), nil
	default:
		return 0, fmt.Errorf("unknown yield type %q", yieldType)
	}
}

// SplitSpend computes the bonus-first spend-down for a plan purchase:
// bonus is consumed up to its full value, the remainder comes from the
// wallet. Callers must verify wallet coverage before mutating.
func SplitSpend(amountCents, bonusCents int64) (bonusSpent, walletSpent int64) {
	bonusSpent = bonusCents
	if amountCents < bonusSpent {
		bonusSpent = amountCents
	}
	return bonusSpent, amountCents - bonusSpent
}

// FormatCents renders cents as a currency string for descriptions and
// notification bodies.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
