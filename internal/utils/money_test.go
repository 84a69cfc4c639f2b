package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planvault-backend/internal/domain"
)

func TestApplyBps(t *testing.T) {
	assert.Equal(t, int64(4500), ApplyBps(30000, 1500)) // 15% of 300.00
	assert.Equal(t, int64(125), ApplyBps(2500, 500))    // 5% of 25.00
	assert.Equal(t, int64(0), ApplyBps(2500, 0))
	assert.Equal(t, int64(2500), ApplyBps(2500, 10000)) // 100%
	assert.Equal(t, int64(0), ApplyBps(3, 500))         // truncates toward zero
}

func TestDailyProfit(t *testing.T) {
	fixed, err := DailyProfit(15000, domain.YieldTypeFixed, 250)
	require.NoError(t, err)
	assert.Equal(t, int64(250), fixed)

	pct, err := DailyProfit(15000, domain.YieldTypePercentage, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(750), pct)

	_, err = DailyProfit(15000, domain.YieldType("WEEKLY"), 500)
	assert.Error(t, err)
}

func TestSplitSpend(t *testing.T) {
	// bonus covers part
	bonus, wallet := SplitSpend(15000, 3000)
	assert.Equal(t, int64(3000), bonus)
	assert.Equal(t, int64(12000), wallet)

	// bonus covers everything, remainder stays
	bonus, wallet = SplitSpend(2000, 3000)
	assert.Equal(t, int64(2000), bonus)
	assert.Equal(t, int64(0), wallet)

	// no bonus at all
	bonus, wallet = SplitSpend(15000, 0)
	assert.Equal(t, int64(0), bonus)
	assert.Equal(t, int64(15000), wallet)
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "150.00", FormatCents(15000))
	assert.Equal(t, "0.05", FormatCents(5))
	assert.Equal(t, "-102.00", FormatCents(-10200))
}
