package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dep(t *testing.T, day int, cod, deposit int64) *BranchDeposit {
	t.Helper()
	d, err := NewBranchDeposit("Mombasa", time.Date(2026, 10, day, 14, 30, 0, 0, time.UTC),
		decimal.NewFromInt(cod), decimal.NewFromInt(deposit), uuid.New())
	require.NoError(t, err)
	return d
}

func TestRecalculateRunningDebts_PrefixSum(t *testing.T) {
	records := []*BranchDeposit{
		dep(t, 1, 1000, 800), // +200
		dep(t, 2, 500, 600),  // -100
		dep(t, 3, 300, 0),    // +300
	}

	changed, closing := RecalculateRunningDebts(decimal.Zero, records)

	assert.Len(t, changed, 3)
	assert.Equal(t, "200", records[0].RunningDebt.String())
	assert.Equal(t, "100", records[1].RunningDebt.String())
	assert.Equal(t, "400", records[2].RunningDebt.String())
	assert.Equal(t, "400", closing.String())
}

func TestRecalculateRunningDebts_SeedAndOrdering(t *testing.T) {
	late := dep(t, 5, 100, 0)
	early := dep(t, 4, 50, 20)

	_, closing := RecalculateRunningDebts(decimal.NewFromInt(1000), []*BranchDeposit{late, early})

	assert.Equal(t, "1030", early.RunningDebt.String(), "records are walked by date, not input order")
	assert.Equal(t, "1130", late.RunningDebt.String())
	assert.Equal(t, "1130", closing.String())
}

func TestRecalculateRunningDebts_OnlyReportsChanges(t *testing.T) {
	records := []*BranchDeposit{dep(t, 1, 100, 0), dep(t, 2, 100, 0)}
	RecalculateRunningDebts(decimal.Zero, records)

	require.NoError(t, records[1].UpdateAmounts(decimal.NewFromInt(100), decimal.NewFromInt(100), uuid.New()))
	changed, closing := RecalculateRunningDebts(decimal.Zero, records)

	require.Len(t, changed, 1)
	assert.Same(t, records[1], changed[0])
	assert.Equal(t, "100", closing.String())
}

func TestRecalculateRunningDebts_Empty(t *testing.T) {
	changed, closing := RecalculateRunningDebts(decimal.NewFromInt(42), nil)
	assert.Empty(t, changed)
	assert.Equal(t, "42", closing.String())
}

func TestRecalculateRunningDebts_EditCascadesForward(t *testing.T) {
	records := []*BranchDeposit{dep(t, 1, 1000, 0), dep(t, 2, 0, 0), dep(t, 3, 0, 500)}
	RecalculateRunningDebts(decimal.Zero, records)
	assert.Equal(t, "500", records[2].RunningDebt.String())

	// Editing the first day must move every later balance.
	require.NoError(t, records[0].UpdateAmounts(decimal.NewFromInt(1000), decimal.NewFromInt(1000), uuid.New()))
	changed, _ := RecalculateRunningDebts(decimal.Zero, records)

	assert.Len(t, changed, 3)
	assert.Equal(t, "0", records[0].RunningDebt.String())
	assert.Equal(t, "0", records[1].RunningDebt.String())
	assert.Equal(t, "-500", records[2].RunningDebt.String())
}
