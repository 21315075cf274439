package billing

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms/backend/internal/domain/shared"
)

func TestNewContractCustomer(t *testing.T) {
	c, err := NewContractCustomer("FHL-2026-CTR001", CustomerDetails{
		Name:    " Acme Ltd ",
		Email:   "Billing@Acme.com",
		TaxRate: decimal.RequireFromString("16.005"),
	}, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, "Acme Ltd", c.Name)
	assert.Equal(t, "billing@acme.com", c.Email)
	assert.Equal(t, DefaultPaymentTerms, c.PaymentTerms)
	assert.Equal(t, "16.01", c.TaxRate.StringFixed(2))
	assert.True(t, c.IsActive)
}

func TestNewContractCustomer_Validation(t *testing.T) {
	_, err := NewContractCustomer("FHL-2026-CTR001", CustomerDetails{Name: ""}, uuid.New())
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	_, err = NewContractCustomer("FHL-2026-CTR001", CustomerDetails{Name: "A", TaxRate: decimal.NewFromInt(101)}, uuid.New())
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	_, err = NewContractCustomer("", CustomerDetails{Name: "A"}, uuid.New())
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestContractCustomer_Deactivate(t *testing.T) {
	c, err := NewContractCustomer("FHL-2026-CTR001", CustomerDetails{Name: "Acme"}, uuid.New())
	require.NoError(t, err)

	c.Deactivate()
	assert.False(t, c.IsActive)
}

func TestContractNumbers(t *testing.T) {
	assert.Equal(t, "FHL-2026-CTR", ContractNumberPrefix(2026))
	assert.Equal(t, "FHL-2026-CTR007", FormatContractNumber(2026, 7))
	assert.Equal(t, "FHL-2026-CTR1000", FormatContractNumber(2026, 1000))

	assert.Equal(t, 1, NextContractSequence(nil))
	assert.Equal(t, 13, NextContractSequence([]string{"FHL-2026-CTR003", "FHL-2026-CTR012", "garbage", "FHL-2026-CTR009"}))
}
