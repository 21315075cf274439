package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/finance"
	"github.com/wms/backend/internal/domain/shared"
)

// maxInvalidatedDays bounds how far back a ledger change clears cached reports
const maxInvalidatedDays = 62

// Invalidator drops a cached report
type Invalidator interface {
	Invalidate(ctx context.Context, day time.Time) error
}

// CacheInvalidationHandler clears cached daily reports when the figures behind them change
type CacheInvalidationHandler struct {
	reports Invalidator
	logger  *zap.Logger
	now     func() time.Time
}

// NewCacheInvalidationHandler creates a new CacheInvalidationHandler
func NewCacheInvalidationHandler(reports Invalidator, logger *zap.Logger) *CacheInvalidationHandler {
	return &CacheInvalidationHandler{
		reports: reports,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// EventTypes returns the event types this handler is interested in
func (h *CacheInvalidationHandler) EventTypes() []string {
	return []string{finance.EventTypeLedgerChanged, finance.EventTypeExpenseDecided}
}

// Handle clears the affected days. A ledger change moves the outstanding debt
// of every later day, so it clears from its start date through today.
func (h *CacheInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *finance.ExpenseDecidedEvent:
		return h.reports.Invalidate(ctx, e.Date)
	case *finance.LedgerChangedEvent:
		return h.invalidateFrom(ctx, e.FromDate)
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

func (h *CacheInvalidationHandler) invalidateFrom(ctx context.Context, from time.Time) error {
	today := shared.StartOfDay(h.now())
	day := shared.StartOfDay(from)
	if earliest := today.AddDate(0, 0, -maxInvalidatedDays); day.Before(earliest) {
		day = earliest
	}
	var errs []error
	for ; !day.After(today); day = day.AddDate(0, 0, 1) {
		if err := h.reports.Invalidate(ctx, day); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		h.logger.Warn("Failed to clear cached reports", zap.Time("from", from), zap.Error(err))
		return err
	}
	return nil
}
