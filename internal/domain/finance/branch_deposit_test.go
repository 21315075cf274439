package finance

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms/backend/internal/domain/shared"
)

func TestNewBranchDeposit(t *testing.T) {
	d, err := NewBranchDeposit(" Nairobi ", time.Date(2026, 10, 19, 17, 45, 0, 0, time.UTC),
		decimal.NewFromInt(5000), decimal.NewFromInt(4500), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, "Nairobi", d.Branch)
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), d.Date)
	assert.True(t, d.RunningDebt.IsZero())
	assert.Equal(t, "500", d.Net().String())
}

func TestNewBranchDeposit_Validation(t *testing.T) {
	day := time.Now()
	_, err := NewBranchDeposit("", day, decimal.Zero, decimal.Zero, uuid.New())
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	_, err = NewBranchDeposit("Nairobi", time.Time{}, decimal.Zero, decimal.Zero, uuid.New())
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	_, err = NewBranchDeposit("Nairobi", day, decimal.NewFromInt(-1), decimal.Zero, uuid.New())
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	_, err = NewBranchDeposit("Nairobi", day, decimal.Zero, decimal.NewFromInt(-1), uuid.New())
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestBranchDeposit_UpdateAmounts(t *testing.T) {
	d, err := NewBranchDeposit("Nairobi", time.Now(), decimal.NewFromInt(10), decimal.NewFromInt(5), uuid.New())
	require.NoError(t, err)

	editor := uuid.New()
	require.NoError(t, d.UpdateAmounts(decimal.NewFromInt(20), decimal.NewFromInt(1), editor))
	assert.Equal(t, "19", d.Net().String())
	assert.Equal(t, &editor, d.UpdatedBy)

	err = d.UpdateAmounts(decimal.NewFromInt(-20), decimal.Zero, editor)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}
