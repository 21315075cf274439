package finance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/domain/finance"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shipping"
)

type paymentMocks struct {
	cod      *MockCODCollectionRepository
	cheques  *MockChequeDepositRepository
	dispatch *MockDispatchRepository
	branches *MockBranchRepository
	invoices *MockInvoiceRepository
}

func setupPaymentService() (*PaymentService, paymentMocks) {
	m := paymentMocks{
		cod:      new(MockCODCollectionRepository),
		cheques:  new(MockChequeDepositRepository),
		dispatch: new(MockDispatchRepository),
		branches: new(MockBranchRepository),
		invoices: new(MockInvoiceRepository),
	}
	svc := NewPaymentService(m.cod, m.cheques, m.dispatch, m.branches, m.invoices, zap.NewNop())
	return svc, m
}

func testDispatch() *shipping.Dispatch {
	return &shipping.Dispatch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DispatchCode:      "DSP-20240305-0002",
		SourceBranch:      "Mombasa",
		Destination:       "Nairobi",
		VehicleNumber:     "KCA 123X",
		Driver:            "Otieno",
	}
}

func TestPaymentService_CreateCOD(t *testing.T) {
	ctx := context.Background()

	t.Run("copies dispatch and resolves branch", func(t *testing.T) {
		svc, m := setupPaymentService()
		d := testDispatch()
		branch := &identity.Branch{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Name: "Mombasa"}
		m.dispatch.On("FindByID", ctx, d.ID).Return(d, nil)
		m.cod.On("ExistsForDispatch", ctx, d.ID).Return(false, nil)
		m.branches.On("FindByName", ctx, "Mombasa").Return(branch, nil)
		m.cod.On("Save", ctx, mock.AnythingOfType("*finance.CODCollection")).Return(nil)

		resp, err := svc.CreateCOD(ctx, uuid.New(), CreateCODCollectionRequest{
			DispatchID:     d.ID,
			TotalCODAmount: decimal.NewFromInt(4200),
			CollectionDate: fixedNow,
		})

		require.NoError(t, err)
		assert.Equal(t, "DSP-20240305-0002", resp.DispatchCode)
		assert.Equal(t, "Otieno", resp.DriverName)
		require.NotNil(t, resp.BranchID)
		assert.Equal(t, branch.ID, *resp.BranchID)
		assert.Equal(t, "4200", resp.Shortfall.String())
		assert.Equal(t, "collected", resp.Status)
	})

	t.Run("unknown branch name leaves branch empty", func(t *testing.T) {
		svc, m := setupPaymentService()
		d := testDispatch()
		m.dispatch.On("FindByID", ctx, d.ID).Return(d, nil)
		m.cod.On("ExistsForDispatch", ctx, d.ID).Return(false, nil)
		m.branches.On("FindByName", ctx, "Mombasa").Return(nil, shared.NotFound("Branch not found"))
		m.cod.On("Save", ctx, mock.Anything).Return(nil)

		resp, err := svc.CreateCOD(ctx, uuid.New(), CreateCODCollectionRequest{DispatchID: d.ID, TotalCODAmount: decimal.NewFromInt(10)})

		require.NoError(t, err)
		assert.Nil(t, resp.BranchID)
		assert.Equal(t, "Mombasa", resp.BranchName)
	})

	t.Run("missing dispatch", func(t *testing.T) {
		svc, m := setupPaymentService()
		id := uuid.New()
		m.dispatch.On("FindByID", ctx, id).Return(nil, shared.NotFound("Dispatch not found"))

		_, err := svc.CreateCOD(ctx, uuid.New(), CreateCODCollectionRequest{DispatchID: id})

		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("one collection per dispatch", func(t *testing.T) {
		svc, m := setupPaymentService()
		d := testDispatch()
		m.dispatch.On("FindByID", ctx, d.ID).Return(d, nil)
		m.cod.On("ExistsForDispatch", ctx, d.ID).Return(true, nil)

		_, err := svc.CreateCOD(ctx, uuid.New(), CreateCODCollectionRequest{DispatchID: d.ID})

		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		m.cod.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestPaymentService_UpdateCOD(t *testing.T) {
	ctx := context.Background()
	svc, m := setupPaymentService()
	c, err := finance.NewCODCollection(finance.DispatchRef{ID: uuid.New(), Code: "DSP-1"}, decimal.NewFromInt(5000), fixedNow, "", uuid.New())
	require.NoError(t, err)
	m.cod.On("FindByID", ctx, c.ID).Return(c, nil)
	m.cod.On("Save", ctx, c).Return(nil)

	resp, err := svc.UpdateCOD(ctx, uuid.New(), c.ID, UpdateCODCollectionRequest{
		DepositedAmount: decimal.NewFromInt(4500),
		Status:          "deposited",
	})

	require.NoError(t, err)
	assert.Equal(t, "500", resp.Shortfall.String())
	assert.Equal(t, "deposited", resp.Status)
	assert.NotNil(t, resp.DepositDate)

	_, err = svc.UpdateCOD(ctx, uuid.New(), c.ID, UpdateCODCollectionRequest{Status: "lost"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestPaymentService_UpdateCOD_KeepsNotesWhenOmitted(t *testing.T) {
	ctx := context.Background()
	svc, m := setupPaymentService()
	c, err := finance.NewCODCollection(finance.DispatchRef{ID: uuid.New(), Code: "DSP-1"}, decimal.NewFromInt(5000), fixedNow,
		"driver short 500, will top up", uuid.New())
	require.NoError(t, err)
	m.cod.On("FindByID", ctx, c.ID).Return(c, nil)
	m.cod.On("Save", ctx, c).Return(nil)

	resp, err := svc.UpdateCOD(ctx, uuid.New(), c.ID, UpdateCODCollectionRequest{
		DepositedAmount: decimal.NewFromInt(4500),
		Status:          "deposited",
	})

	require.NoError(t, err)
	assert.Equal(t, "driver short 500, will top up", resp.Notes)

	topped := "topped up on Friday"
	resp, err = svc.UpdateCOD(ctx, uuid.New(), c.ID, UpdateCODCollectionRequest{
		DepositedAmount: decimal.NewFromInt(5000),
		Notes:           &topped,
	})

	require.NoError(t, err)
	assert.Equal(t, "topped up on Friday", resp.Notes)
	assert.Equal(t, "deposited", resp.Status)
}

func chequeRequest() CreateChequeDepositRequest {
	return CreateChequeDepositRequest{
		ChequeNumber: " 004512 ",
		DrawerName:   "Coast Traders Ltd",
		BankName:     "KCB",
		Amount:       decimal.NewFromInt(1740),
		DepositDate:  fixedNow,
	}
}

func TestPaymentService_CreateCheque(t *testing.T) {
	ctx := context.Background()

	t.Run("inherits invoice number and customer", func(t *testing.T) {
		svc, m := setupPaymentService()
		inv := &billing.Invoice{
			BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
			InvoiceNumber:      "INV-202403-0006",
			ContractCustomerID: uuid.New(),
		}
		req := chequeRequest()
		req.RelatedInvoiceID = &inv.ID
		m.cheques.On("ExistsByNumber", ctx, "004512").Return(false, nil)
		m.invoices.On("FindByID", ctx, inv.ID).Return(inv, nil)
		m.cheques.On("Save", ctx, mock.AnythingOfType("*finance.ChequeDeposit")).Return(nil)

		resp, err := svc.CreateCheque(ctx, uuid.New(), req)

		require.NoError(t, err)
		assert.Equal(t, "004512", resp.ChequeNumber)
		assert.Equal(t, "INV-202403-0006", resp.RelatedInvoiceNumber)
		require.NotNil(t, resp.ContractCustomerID)
		assert.Equal(t, inv.ContractCustomerID, *resp.ContractCustomerID)
		assert.Equal(t, "deposited", resp.Status)
	})

	t.Run("duplicate number", func(t *testing.T) {
		svc, m := setupPaymentService()
		m.cheques.On("ExistsByNumber", ctx, "004512").Return(true, nil)

		_, err := svc.CreateCheque(ctx, uuid.New(), chequeRequest())

		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("unknown invoice", func(t *testing.T) {
		svc, m := setupPaymentService()
		req := chequeRequest()
		id := uuid.New()
		req.RelatedInvoiceID = &id
		m.cheques.On("ExistsByNumber", ctx, "004512").Return(false, nil)
		m.invoices.On("FindByID", ctx, id).Return(nil, shared.NotFound("Invoice not found"))

		_, err := svc.CreateCheque(ctx, uuid.New(), req)

		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestPaymentService_UpdateCheque(t *testing.T) {
	ctx := context.Background()
	newCheque := func(t *testing.T) *finance.ChequeDeposit {
		c, err := finance.NewChequeDeposit(finance.ChequeDetails{
			ChequeNumber: "9981",
			DrawerName:   "Lake Foods",
			BankName:     "Equity",
			Amount:       decimal.NewFromInt(300),
		}, uuid.New())
		require.NoError(t, err)
		return c
	}

	t.Run("bounce needs a reason", func(t *testing.T) {
		svc, m := setupPaymentService()
		c := newCheque(t)
		m.cheques.On("FindByID", ctx, c.ID).Return(c, nil)

		_, err := svc.UpdateCheque(ctx, uuid.New(), c.ID, UpdateChequeDepositRequest{Status: "bounced"})

		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		m.cheques.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("cleared cheque is final", func(t *testing.T) {
		svc, m := setupPaymentService()
		c := newCheque(t)
		m.cheques.On("FindByID", ctx, c.ID).Return(c, nil)
		m.cheques.On("Save", ctx, c).Return(nil).Once()

		resp, err := svc.UpdateCheque(ctx, uuid.New(), c.ID, UpdateChequeDepositRequest{Status: "cleared"})
		require.NoError(t, err)
		assert.NotNil(t, resp.ClearanceDate)

		_, err = svc.UpdateCheque(ctx, uuid.New(), c.ID, UpdateChequeDepositRequest{Status: "bounced", BounceReason: "Insufficient funds"})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestPaymentService_Summary(t *testing.T) {
	ctx := context.Background()
	svc, m := setupPaymentService()
	m.cod.On("Summarize", ctx, (*time.Time)(nil), (*time.Time)(nil)).Return(&finance.CODSummary{
		TotalCollected: decimal.NewFromInt(9000),
		TotalDeposited: decimal.NewFromInt(8000),
		TotalShortfall: decimal.NewFromInt(1000),
		Count:          3,
	}, nil)
	m.cheques.On("Summarize", ctx, (*time.Time)(nil), (*time.Time)(nil)).Return(&finance.ChequeSummary{
		TotalAmount:   decimal.NewFromInt(2000),
		ClearedAmount: decimal.NewFromInt(1500),
		PendingAmount: decimal.NewFromInt(500),
		BouncedAmount: decimal.Zero,
		Count:         2,
	}, nil)

	resp, err := svc.Summary(ctx, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "1000", resp.COD.TotalShortfall.String())
	assert.Equal(t, int64(2), resp.Cheques.Count)
}
