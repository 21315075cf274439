package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	financeapp "github.com/wms/backend/internal/application/finance"
	identityapp "github.com/wms/backend/internal/application/identity"
	reportapp "github.com/wms/backend/internal/application/report"
	shippingapp "github.com/wms/backend/internal/application/shipping"
	"github.com/wms/backend/internal/domain/shipping"
	"github.com/wms/backend/internal/interfaces/http/dto"
	"github.com/wms/backend/tests/testutil"
)

const staffPassword = "Staff-Password-1"

func (s *apiServer) createUser(t *testing.T, admin, username, role string, branchID *uuid.UUID) identityapp.UserResponse {
	t.Helper()
	w := s.client.As(admin).Do(http.MethodPost, "/api/v1/users", map[string]any{
		"username":  username,
		"email":     username + "@wms.test",
		"password":  staffPassword,
		"role":      role,
		"branch_id": branchID,
	})
	return testutil.Decode[identityapp.UserResponse](t, w, http.StatusCreated)
}

func TestParcelToReportFlow(t *testing.T) {
	s := newAPIServer(t)
	admin := s.login(t, adminUsername, adminPassword)

	w := s.client.As(admin).Do(http.MethodPost, "/api/v1/branches", map[string]string{
		"name":    "Kisumu",
		"address": "Oginga Odinga Street",
	})
	branch := testutil.Decode[identityapp.BranchResponse](t, w, http.StatusCreated)

	s.createUser(t, admin, "akinyi", "clerk", &branch.ID)
	s.createUser(t, admin, "mwangi", "manager", &branch.ID)
	clerk := s.login(t, "akinyi", staffPassword)
	manager := s.login(t, "mwangi", staffPassword)

	// register
	var parcelIDs []uuid.UUID
	for _, receiver := range []string{"0711000001", "0711000002"} {
		w := s.client.As(clerk).Do(http.MethodPost, "/api/v1/parcels", map[string]any{
			"sender":             "Otieno Traders",
			"sender_telephone":   "0722000000",
			"receiver":           "Receiver " + receiver,
			"receiver_telephone": receiver,
			"destination":        "Nairobi",
			"quantity":           1,
			"total_amount":       "1500",
		})
		p := testutil.Decode[shippingapp.ParcelResponse](t, w, http.StatusCreated)
		assert.Contains(t, p.WaybillNumber, branch.Code)
		parcelIDs = append(parcelIDs, p.ID)
	}
	testutil.RequireEventually(t, func() bool {
		return s.events.Count(shipping.EventTypeParcelRegistered) == 2
	}, 5*time.Second)

	// a clerk may not dispatch, and pending parcels cannot leave
	dispatchBody := map[string]any{
		"source_branch":  "Kisumu",
		"destination":    "Nairobi",
		"vehicle_number": "KCB 512T",
		"driver":         "Kiprono",
		"parcel_ids":     parcelIDs,
	}
	testutil.RequireError(t, s.client.As(clerk).Do(http.MethodPost, "/api/v1/dispatches", dispatchBody),
		http.StatusForbidden, dto.ErrCodeForbidden)
	testutil.RequireError(t, s.client.As(manager).Do(http.MethodPost, "/api/v1/dispatches", dispatchBody),
		http.StatusBadRequest, dto.ErrCodeInvalidInput)

	// confirm then dispatch
	w = s.client.As(manager).Do(http.MethodPost, "/api/v1/parcels/confirm", map[string]any{"parcel_ids": parcelIDs})
	confirmed := testutil.Decode[shippingapp.ConfirmResult](t, w, http.StatusOK)
	assert.Equal(t, 2, confirmed.Confirmed)

	w = s.client.As(manager).Do(http.MethodPost, "/api/v1/dispatches", dispatchBody)
	dispatch := testutil.Decode[shippingapp.DispatchResponse](t, w, http.StatusCreated)
	assert.Equal(t, 2, dispatch.ParcelCount)
	assert.ElementsMatch(t, parcelIDs, dispatch.ParcelIDs)

	// every receiver is texted on registration and again on departure
	testutil.RequireEventually(t, func() bool { return len(s.sms.Messages()) == 4 }, 5*time.Second,
		"messages: %v", s.sms.Messages())
	assert.Len(t, s.sms.Containing("KCB 512T"), 2)

	// the day's report
	today := time.Now().UTC().Format(time.DateOnly)
	w = s.client.As(admin).Do(http.MethodGet, "/api/v1/reports/daily?date="+today, nil)
	daily := testutil.Decode[reportapp.DailyReportResponse](t, w, http.StatusOK)
	assert.Equal(t, int64(2), daily.ParcelsRegistered)
	assert.Equal(t, int64(1), daily.Dispatches)
	assert.True(t, daily.ParcelSales.Equal(decimal.NewFromInt(3000)), "sales %s", daily.ParcelSales)

	// clerks do not see finance
	testutil.RequireError(t, s.client.As(clerk).Do(http.MethodGet, "/api/v1/reports/daily", nil),
		http.StatusForbidden, dto.ErrCodeForbidden)
}

func TestBranchLedgerFlow(t *testing.T) {
	s := newAPIServer(t)
	admin := s.login(t, adminUsername, adminPassword)
	s.createUser(t, admin, "wanjiku", "accountant", nil)
	accountant := s.login(t, "wanjiku", staffPassword)
	client := s.client.As(accountant)

	day := func(d int) time.Time { return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC) }
	record := func(d int, cod, deposit int64) financeapp.BranchDepositResponse {
		w := client.Do(http.MethodPost, "/api/v1/branch-deposits", map[string]any{
			"branch":         "Mombasa",
			"date":           day(d),
			"cod_total":      decimal.NewFromInt(cod),
			"deposit_amount": decimal.NewFromInt(deposit),
		})
		return testutil.Decode[financeapp.BranchDepositResponse](t, w, http.StatusCreated)
	}

	second := record(2, 1000, 400)
	assert.True(t, second.RunningDebt.Equal(decimal.NewFromInt(600)))

	// a back-dated day re-walks everything after it
	first := record(1, 500, 200)
	assert.True(t, first.RunningDebt.Equal(decimal.NewFromInt(300)))

	list := func() []financeapp.BranchDepositResponse {
		w := client.Do(http.MethodGet, "/api/v1/branch-deposits?branch=Mombasa", nil)
		return testutil.Decode[[]financeapp.BranchDepositResponse](t, w, http.StatusOK)
	}
	rows := list()
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Date.Equal(day(1)))
	assert.True(t, rows[1].RunningDebt.Equal(decimal.NewFromInt(900)), "running debt %s", rows[1].RunningDebt)

	// same branch and day twice
	w := client.Do(http.MethodPost, "/api/v1/branch-deposits", map[string]any{
		"branch": "Mombasa", "date": day(1), "cod_total": "1", "deposit_amount": "0",
	})
	testutil.RequireError(t, w, http.StatusConflict, dto.ErrCodeAlreadyExists)

	// paying off the first day lowers every later balance
	w = client.Do(http.MethodPut, "/api/v1/branch-deposits/"+first.ID.String(), map[string]any{
		"cod_total": "500", "deposit_amount": "500",
	})
	updated := testutil.Decode[financeapp.BranchDepositResponse](t, w, http.StatusOK)
	assert.True(t, updated.RunningDebt.IsZero())
	assert.True(t, list()[1].RunningDebt.Equal(decimal.NewFromInt(600)))

	w = client.Do(http.MethodGet, "/api/v1/branch-deposits/summary?branch=Mombasa", nil)
	summary := testutil.Decode[[]financeapp.BranchDepositSummaryResponse](t, w, http.StatusOK)
	require.Len(t, summary, 1)
	assert.True(t, summary[0].TotalCod.Equal(decimal.NewFromInt(1500)))
	assert.True(t, summary[0].TotalDeposits.Equal(decimal.NewFromInt(900)))
	assert.Equal(t, int64(2), summary[0].RecordCount)

	// the nightly job repairs balances changed behind the service's back
	require.NoError(t, s.db.DB.Exec("UPDATE branch_deposits SET running_debt = 0").Error)
	changed, err := s.ledger.ReconcileAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.True(t, list()[1].RunningDebt.Equal(decimal.NewFromInt(600)))
}

func TestHealthReportsDatabase(t *testing.T) {
	s := newAPIServer(t)

	w := s.client.Do(http.MethodGet, "/api/v1/health", nil)
	health := testutil.Decode[map[string]any](t, w, http.StatusOK)
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "connected", health["database"])

	require.NoError(t, s.db.SqlDB.Close())
	w = s.client.Do(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
