package finance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/application/event"
	"github.com/wms/backend/internal/domain/finance"
	"github.com/wms/backend/internal/domain/shared"
)

// LedgerResult describes one re-walk of a branch ledger
type LedgerResult struct {
	Branch         string          `json:"branch"`
	From           time.Time       `json:"from"`
	Seed           decimal.Decimal `json:"seed"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Records        int             `json:"records"`
	Updated        int             `json:"updated"`
}

// LedgerService keeps each branch's running debt consistent with its deposit history
type LedgerService struct {
	depositRepo finance.BranchDepositRepository
	tx          shared.Transactor
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	depositRepo finance.BranchDepositRepository,
	tx shared.Transactor,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		depositRepo: depositRepo,
		tx:          tx,
		publisher:   publisher,
		logger:      logger,
	}
}

// Rewalk recomputes running debts of branch from the anchor date onwards.
// It must run inside a transaction that already holds the branch lock.
func (s *LedgerService) Rewalk(ctx context.Context, branch string, anchor time.Time) (*LedgerResult, error) {
	anchor = shared.StartOfDay(anchor)
	seed := decimal.Zero
	prev, err := s.depositRepo.FindLatestBefore(ctx, branch, anchor)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		seed = prev.RunningDebt
	}

	records, err := s.depositRepo.FindFrom(ctx, branch, anchor)
	if err != nil {
		return nil, err
	}
	changed, closing := finance.RecalculateRunningDebts(seed, records)
	if err := s.depositRepo.UpdateRunningDebts(ctx, changed); err != nil {
		return nil, err
	}
	return &LedgerResult{
		Branch:         branch,
		From:           anchor,
		Seed:           seed,
		ClosingBalance: closing,
		Records:        len(records),
		Updated:        len(changed),
	}, nil
}

// Recalculate re-walks a branch in its own transaction. Without from it starts at the first record.
func (s *LedgerService) Recalculate(ctx context.Context, branch string, from *time.Time) (*LedgerResult, error) {
	branch = strings.TrimSpace(branch)
	if branch == "" {
		return nil, shared.Invalid("Branch is required")
	}

	var result *LedgerResult
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.depositRepo.LockBranch(ctx, branch); err != nil {
			return err
		}
		anchor := from
		if anchor == nil {
			earliest, err := s.depositRepo.FindEarliestDate(ctx, branch)
			if err != nil {
				return err
			}
			if earliest == nil {
				result = &LedgerResult{Branch: branch, Seed: decimal.Zero, ClosingBalance: decimal.Zero}
				return nil
			}
			anchor = earliest
		}
		var err error
		result, err = s.Rewalk(ctx, branch, *anchor)
		return err
	})
	if err != nil {
		return nil, err
	}

	if result.Updated > 0 {
		s.Announce(ctx, uuid.Nil, result)
	}
	s.logger.Info("Ledger recalculated",
		zap.String("branch", branch),
		zap.Int("records", result.Records),
		zap.Int("updated", result.Updated),
		zap.String("closing_balance", result.ClosingBalance.String()))
	return result, nil
}

// ReconcileAll re-walks every branch from its first record and returns how many rows changed
func (s *LedgerService) ReconcileAll(ctx context.Context) (int, error) {
	branches, err := s.depositRepo.ListBranches(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, branch := range branches {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		result, err := s.Recalculate(ctx, branch, nil)
		if err != nil {
			return total, fmt.Errorf("reconcile %s: %w", branch, err)
		}
		if result.Updated > 0 {
			s.logger.Warn("Ledger drift corrected",
				zap.String("branch", branch),
				zap.Int("updated", result.Updated))
		}
		total += result.Updated
	}
	return total, nil
}

// Announce publishes a LedgerChanged event for a committed re-walk
func (s *LedgerService) Announce(ctx context.Context, recordID uuid.UUID, result *LedgerResult) {
	event.Publish(ctx, s.publisher, s.logger,
		finance.NewLedgerChangedEvent(recordID, result.Branch, result.From, result.ClosingBalance, result.Updated))
}
