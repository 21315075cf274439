package finance

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/finance"
	"github.com/wms/backend/internal/domain/shared"
)

// memoryLedger is a BranchDepositRepository over a slice, enough to exercise the ledger walk
type memoryLedger struct {
	rows  map[uuid.UUID]*finance.BranchDeposit
	locks []string
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{rows: make(map[uuid.UUID]*finance.BranchDeposit)}
}

func (l *memoryLedger) branchRows(branch string) []*finance.BranchDeposit {
	var out []*finance.BranchDeposit
	for _, r := range l.rows {
		if r.Branch == branch {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (l *memoryLedger) FindByID(_ context.Context, id uuid.UUID) (*finance.BranchDeposit, error) {
	r, ok := l.rows[id]
	if !ok {
		return nil, shared.NotFound("Branch deposit not found")
	}
	cp := *r
	return &cp, nil
}

func (l *memoryLedger) FindAll(context.Context, finance.BranchDepositFilter) ([]finance.BranchDeposit, int64, error) {
	return nil, 0, nil
}

func (l *memoryLedger) ExistsForBranchDate(_ context.Context, branch string, date time.Time) (bool, error) {
	for _, r := range l.branchRows(branch) {
		if r.Date.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (l *memoryLedger) FindLatestBefore(_ context.Context, branch string, date time.Time) (*finance.BranchDeposit, error) {
	var latest *finance.BranchDeposit
	for _, r := range l.branchRows(branch) {
		if r.Date.Before(date) {
			cp := *r
			latest = &cp
		}
	}
	return latest, nil
}

func (l *memoryLedger) FindFrom(_ context.Context, branch string, date time.Time) ([]*finance.BranchDeposit, error) {
	var out []*finance.BranchDeposit
	for _, r := range l.branchRows(branch) {
		if !r.Date.Before(date) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (l *memoryLedger) FindEarliestDate(_ context.Context, branch string) (*time.Time, error) {
	rows := l.branchRows(branch)
	if len(rows) == 0 {
		return nil, nil
	}
	d := rows[0].Date
	return &d, nil
}

func (l *memoryLedger) ListBranches(context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, r := range l.rows {
		if !seen[r.Branch] {
			seen[r.Branch] = true
			out = append(out, r.Branch)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (l *memoryLedger) Summarize(context.Context, finance.BranchDepositFilter) ([]finance.BranchDepositSummary, error) {
	return nil, nil
}

func (l *memoryLedger) LockBranch(_ context.Context, branch string) error {
	l.locks = append(l.locks, branch)
	return nil
}

func (l *memoryLedger) Save(_ context.Context, d *finance.BranchDeposit) error {
	cp := *d
	l.rows[d.ID] = &cp
	return nil
}

func (l *memoryLedger) UpdateRunningDebts(_ context.Context, deposits []*finance.BranchDeposit) error {
	for _, d := range deposits {
		l.rows[d.ID].RunningDebt = d.RunningDebt
	}
	return nil
}

func (l *memoryLedger) Delete(_ context.Context, id uuid.UUID) error {
	delete(l.rows, id)
	return nil
}

func (l *memoryLedger) debts(branch string) []string {
	var out []string
	for _, r := range l.branchRows(branch) {
		out = append(out, r.RunningDebt.String())
	}
	return out
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func seedRow(t *testing.T, l *memoryLedger, branch string, date time.Time, cod, deposit int64, debt int64) *finance.BranchDeposit {
	t.Helper()
	d, err := finance.NewBranchDeposit(branch, date, decimal.NewFromInt(cod), decimal.NewFromInt(deposit), uuid.New())
	require.NoError(t, err)
	d.RunningDebt = decimal.NewFromInt(debt)
	require.NoError(t, l.Save(context.Background(), d))
	return d
}

func TestLedgerService_Rewalk_SeedsFromPreviousRecord(t *testing.T) {
	ctx := context.Background()
	l := newMemoryLedger()
	seedRow(t, l, "Mombasa", day(1), 1000, 400, 600)
	seedRow(t, l, "Mombasa", day(2), 500, 500, 0) // stale
	seedRow(t, l, "Mombasa", day(3), 300, 0, 0)   // stale
	seedRow(t, l, "Nairobi", day(2), 999, 0, 999)
	svc := NewLedgerService(l, &inlineTransactor{}, nil, zap.NewNop())

	result, err := svc.Rewalk(ctx, "Mombasa", day(2))

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(600).Equal(result.Seed))
	assert.True(t, decimal.NewFromInt(900).Equal(result.ClosingBalance))
	assert.Equal(t, 2, result.Records)
	assert.Equal(t, 2, result.Updated)
	assert.Equal(t, []string{"600", "600", "900"}, l.debts("Mombasa"))
	assert.Equal(t, []string{"999"}, l.debts("Nairobi"))
}

func TestLedgerService_Recalculate(t *testing.T) {
	ctx := context.Background()

	t.Run("walks from the first record and announces drift", func(t *testing.T) {
		l := newMemoryLedger()
		seedRow(t, l, "Mombasa", day(1), 1000, 400, 0)
		seedRow(t, l, "Mombasa", day(4), 200, 500, 0)
		pub := new(MockEventPublisher)
		pub.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			e, ok := events[0].(*finance.LedgerChangedEvent)
			return ok && e.Branch == "Mombasa" && e.ClosingBalance.Equal(decimal.NewFromInt(300))
		})).Return(nil).Once()
		tx := &inlineTransactor{}
		svc := NewLedgerService(l, tx, pub, zap.NewNop())

		result, err := svc.Recalculate(ctx, "Mombasa", nil)

		require.NoError(t, err)
		assert.Equal(t, day(1), result.From)
		assert.Equal(t, []string{"600", "300"}, l.debts("Mombasa"))
		assert.Equal(t, []string{"Mombasa"}, l.locks)
		assert.Equal(t, 1, tx.calls)
		pub.AssertExpectations(t)
	})

	t.Run("consistent ledger publishes nothing", func(t *testing.T) {
		l := newMemoryLedger()
		seedRow(t, l, "Mombasa", day(1), 1000, 400, 600)
		pub := new(MockEventPublisher)
		svc := NewLedgerService(l, &inlineTransactor{}, pub, zap.NewNop())

		result, err := svc.Recalculate(ctx, "Mombasa", nil)

		require.NoError(t, err)
		assert.Zero(t, result.Updated)
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("empty branch", func(t *testing.T) {
		svc := NewLedgerService(newMemoryLedger(), &inlineTransactor{}, nil, zap.NewNop())

		result, err := svc.Recalculate(ctx, "Kisumu", nil)

		require.NoError(t, err)
		assert.Zero(t, result.Records)
		assert.True(t, result.ClosingBalance.IsZero())
	})

	t.Run("branch required", func(t *testing.T) {
		svc := NewLedgerService(newMemoryLedger(), &inlineTransactor{}, nil, zap.NewNop())

		_, err := svc.Recalculate(ctx, "  ", nil)

		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestLedgerService_ReconcileAll(t *testing.T) {
	ctx := context.Background()
	l := newMemoryLedger()
	seedRow(t, l, "Mombasa", day(1), 1000, 400, 600)
	seedRow(t, l, "Nairobi", day(1), 100, 0, 0)
	seedRow(t, l, "Nairobi", day(2), 100, 0, 0)
	svc := NewLedgerService(l, &inlineTransactor{}, nil, zap.NewNop())

	updated, err := svc.ReconcileAll(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, updated)
	assert.Equal(t, []string{"100", "200"}, l.debts("Nairobi"))
}
