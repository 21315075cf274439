package telemetry

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/metric"

	"github.com/wms/backend/internal/domain/finance"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shipping"
)

// BusinessMetrics counts domain activity. It subscribes to the event bus so
// application services never call it directly.
type BusinessMetrics struct {
	parcelsRegistered   *Counter
	dispatchesCreated   *Counter
	dispatchedParcels   *Counter
	expensesDecided     *Counter
	ledgerRecalculated  *Counter
	ledgerRowsRewritten *Counter
}

// NewBusinessMetrics creates the business instruments on meter.
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	var (
		bm  BusinessMetrics
		err error
	)
	if bm.parcelsRegistered, err = NewCounter(meter, "wms.parcels.registered", "Parcels registered", "{parcel}"); err != nil {
		return nil, err
	}
	if bm.dispatchesCreated, err = NewCounter(meter, "wms.dispatches.created", "Dispatches created", "{dispatch}"); err != nil {
		return nil, err
	}
	if bm.dispatchedParcels, err = NewCounter(meter, "wms.dispatches.parcels", "Parcels loaded onto dispatches", "{parcel}"); err != nil {
		return nil, err
	}
	if bm.expensesDecided, err = NewCounter(meter, "wms.expenses.decided", "Expenses approved or rejected", "{expense}"); err != nil {
		return nil, err
	}
	if bm.ledgerRecalculated, err = NewCounter(meter, "wms.ledger.recalculations", "Branch ledger recalculations", "{recalculation}"); err != nil {
		return nil, err
	}
	if bm.ledgerRowsRewritten, err = NewCounter(meter, "wms.ledger.rows_rewritten", "Deposit rows whose running debt was rewritten", "{row}"); err != nil {
		return nil, err
	}
	return &bm, nil
}

func (bm *BusinessMetrics) EventTypes() []string {
	return []string{
		shipping.EventTypeParcelRegistered,
		shipping.EventTypeDispatchCreated,
		finance.EventTypeExpenseDecided,
		finance.EventTypeLedgerChanged,
	}
}

func (bm *BusinessMetrics) Handle(ctx context.Context, e shared.DomainEvent) error {
	switch ev := e.(type) {
	case *shipping.ParcelRegisteredEvent:
		bm.parcelsRegistered.Inc(ctx, AttrDestination.String(strings.ToLower(ev.Destination)))
	case *shipping.DispatchCreatedEvent:
		bm.dispatchesCreated.Inc(ctx, AttrDestination.String(strings.ToLower(ev.Destination)))
		bm.dispatchedParcels.Add(ctx, int64(len(ev.ParcelIDs)))
	case *finance.ExpenseDecidedEvent:
		bm.expensesDecided.Inc(ctx, AttrDecision.String(strings.ToLower(string(ev.Decision))))
	case *finance.LedgerChangedEvent:
		bm.ledgerRecalculated.Inc(ctx, AttrBranch.String(ev.Branch))
		bm.ledgerRowsRewritten.Add(ctx, int64(ev.Updated), AttrBranch.String(ev.Branch))
	}
	return nil
}

var _ shared.EventHandler = (*BusinessMetrics)(nil)
