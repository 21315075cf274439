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

func TestParcelDeposit_RemainingDebt(t *testing.T) {
	creator := uuid.New()
	d, err := NewParcelDeposit(uuid.New(), decimal.NewFromInt(600), decimal.NewFromInt(50), "", creator)
	require.NoError(t, err)

	assert.Equal(t, "350", d.RemainingDebt(decimal.NewFromInt(1000)).String())

	editor := uuid.New()
	require.NoError(t, d.Update(decimal.NewFromInt(1000), decimal.Zero, "settled", editor))
	assert.True(t, d.RemainingDebt(decimal.NewFromInt(1000)).IsZero())
	assert.Equal(t, &creator, d.CreatedBy, "creator is kept on update")
	assert.Equal(t, &editor, d.UpdatedBy)
}

func TestNewParcelDeposit_Validation(t *testing.T) {
	_, err := NewParcelDeposit(uuid.Nil, decimal.Zero, decimal.Zero, "", uuid.New())
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	_, err = NewParcelDeposit(uuid.New(), decimal.NewFromInt(-1), decimal.Zero, "", uuid.New())
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	_, err = NewParcelDeposit(uuid.New(), decimal.Zero, decimal.NewFromInt(-1), "", uuid.New())
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestClerkSummary_RemainingDebt(t *testing.T) {
	s := ClerkSummary{
		TotalAmount:    decimal.NewFromInt(5000),
		TotalDeposited: decimal.NewFromInt(3000),
		TotalExpenses:  decimal.NewFromInt(500),
	}
	assert.Equal(t, "1500", s.RemainingDebt().String())
}

func TestClerkWindow(t *testing.T) {
	utc := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name     string
		date     time.Time
		from, to time.Time
	}{
		{"after grace period", utc(2026, 10, 19), utc(2026, 10, 1), utc(2026, 11, 1)},
		{"first day after grace", utc(2026, 10, 8), utc(2026, 10, 1), utc(2026, 11, 1)},
		{"last grace day", time.Date(2026, 10, 7, 18, 0, 0, 0, time.UTC), utc(2026, 9, 1), utc(2026, 10, 8)},
		{"first of month", utc(2026, 10, 1), utc(2026, 9, 1), utc(2026, 10, 8)},
		{"january wraps year", utc(2027, 1, 3), utc(2026, 12, 1), utc(2027, 1, 8)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := ClerkWindow(tt.date)
			assert.Equal(t, tt.from, from)
			assert.Equal(t, tt.to, to)
		})
	}
}
