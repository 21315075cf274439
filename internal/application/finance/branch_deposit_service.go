package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/finance"
	"github.com/wms/backend/internal/domain/shared"
)

// BranchDepositResponse is the API view of one ledger day
type BranchDepositResponse struct {
	ID            uuid.UUID       `json:"id"`
	Branch        string          `json:"branch"`
	Date          time.Time       `json:"date"`
	CodTotal      decimal.Decimal `json:"cod_total"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	RunningDebt   decimal.Decimal `json:"running_debt"`
	CreatedBy     *uuid.UUID      `json:"created_by,omitempty"`
	UpdatedBy     *uuid.UUID      `json:"updated_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToBranchDepositResponse converts a domain record to its API view
func ToBranchDepositResponse(d *finance.BranchDeposit) BranchDepositResponse {
	return BranchDepositResponse{
		ID:            d.ID,
		Branch:        d.Branch,
		Date:          d.Date,
		CodTotal:      d.CodTotal,
		DepositAmount: d.DepositAmount,
		RunningDebt:   d.RunningDebt,
		CreatedBy:     d.CreatedBy,
		UpdatedBy:     d.UpdatedBy,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// CreateBranchDepositRequest opens a ledger day for a branch
type CreateBranchDepositRequest struct {
	Branch        string          `json:"branch" binding:"required,max=100"`
	Date          time.Time       `json:"date" binding:"required"`
	CodTotal      decimal.Decimal `json:"cod_total"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
}

// UpdateBranchDepositRequest changes a day's figures. Both amounts must be sent.
type UpdateBranchDepositRequest struct {
	CodTotal      *decimal.Decimal `json:"cod_total" binding:"required"`
	DepositAmount *decimal.Decimal `json:"deposit_amount" binding:"required"`
}

// RecalculateRequest triggers a manual re-walk
type RecalculateRequest struct {
	Branch string     `json:"branch" binding:"required"`
	From   *time.Time `json:"from"`
}

// BranchDepositListFilter contains the query options for the ledger listing
type BranchDepositListFilter struct {
	shared.Filter
	Branch    string
	StartDate *time.Time
	EndDate   *time.Time
}

// BranchDepositSummaryResponse aggregates one branch
type BranchDepositSummaryResponse struct {
	Branch          string          `json:"branch"`
	TotalCod        decimal.Decimal `json:"total_cod"`
	TotalDeposits   decimal.Decimal `json:"total_deposits"`
	TotalDebt       decimal.Decimal `json:"total_debt"`
	RecordCount     int64           `json:"record_count"`
	LastDepositDate *time.Time      `json:"last_deposit_date,omitempty"`
}

var errDuplicateDeposit = shared.Conflict("a deposit record already exists for this branch and date")

// BranchDepositService records daily branch deposits and keeps the running debt current
type BranchDepositService struct {
	depositRepo finance.BranchDepositRepository
	ledger      *LedgerService
	tx          shared.Transactor
	logger      *zap.Logger
}

// NewBranchDepositService creates a new BranchDepositService
func NewBranchDepositService(
	depositRepo finance.BranchDepositRepository,
	ledger *LedgerService,
	tx shared.Transactor,
	logger *zap.Logger,
) *BranchDepositService {
	return &BranchDepositService{
		depositRepo: depositRepo,
		ledger:      ledger,
		tx:          tx,
		logger:      logger,
	}
}

// List returns ledger rows ordered by branch then date
func (s *BranchDepositService) List(ctx context.Context, filter BranchDepositListFilter) (*shared.Paginated[BranchDepositResponse], error) {
	f := finance.BranchDepositFilter{
		Filter:    filter.Filter.Normalize(),
		Branch:    filter.Branch,
		StartDate: dayPtr(filter.StartDate),
		EndDate:   dayPtr(filter.EndDate),
	}
	deposits, total, err := s.depositRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]BranchDepositResponse, len(deposits))
	for i := range deposits {
		items[i] = ToBranchDepositResponse(&deposits[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// GetByID returns one ledger row
func (s *BranchDepositService) GetByID(ctx context.Context, id uuid.UUID) (*BranchDepositResponse, error) {
	d, err := s.depositRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToBranchDepositResponse(d)
	return &resp, nil
}

// Summary aggregates the ledger per branch
func (s *BranchDepositService) Summary(ctx context.Context, filter BranchDepositListFilter) ([]BranchDepositSummaryResponse, error) {
	rows, err := s.depositRepo.Summarize(ctx, finance.BranchDepositFilter{
		Branch:    filter.Branch,
		StartDate: dayPtr(filter.StartDate),
		EndDate:   dayPtr(filter.EndDate),
	})
	if err != nil {
		return nil, err
	}
	out := make([]BranchDepositSummaryResponse, len(rows))
	for i, r := range rows {
		out[i] = BranchDepositSummaryResponse{
			Branch:          r.Branch,
			TotalCod:        r.TotalCod,
			TotalDeposits:   r.TotalDeposits,
			TotalDebt:       r.TotalDebt,
			RecordCount:     r.RecordCount,
			LastDepositDate: r.LastDepositDate,
		}
	}
	return out, nil
}

// Create records a branch day and re-walks the ledger from that date
func (s *BranchDepositService) Create(ctx context.Context, actorID uuid.UUID, req CreateBranchDepositRequest) (*BranchDepositResponse, error) {
	d, err := finance.NewBranchDeposit(req.Branch, req.Date, req.CodTotal, req.DepositAmount, actorID)
	if err != nil {
		return nil, err
	}

	var result *LedgerResult
	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.depositRepo.LockBranch(ctx, d.Branch); err != nil {
			return err
		}
		exists, err := s.depositRepo.ExistsForBranchDate(ctx, d.Branch, d.Date)
		if err != nil {
			return err
		}
		if exists {
			return errDuplicateDeposit
		}
		if err := s.depositRepo.Save(ctx, d); err != nil {
			if shared.IsAlreadyExists(err) {
				return errDuplicateDeposit
			}
			return err
		}
		result, err = s.ledger.Rewalk(ctx, d.Branch, d.Date)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Branch deposit recorded",
		zap.String("branch", d.Branch),
		zap.Time("date", d.Date),
		zap.String("closing_balance", result.ClosingBalance.String()))
	s.ledger.Announce(ctx, d.ID, result)
	return s.GetByID(ctx, d.ID)
}

// Update changes a day's figures and re-walks from its date
func (s *BranchDepositService) Update(ctx context.Context, actorID, id uuid.UUID, req UpdateBranchDepositRequest) (*BranchDepositResponse, error) {
	if req.CodTotal == nil || req.DepositAmount == nil {
		return nil, shared.Invalid("cod_total and deposit_amount are required")
	}
	var (
		d      *finance.BranchDeposit
		result *LedgerResult
	)
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		d, err = s.depositRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.depositRepo.LockBranch(ctx, d.Branch); err != nil {
			return err
		}
		if err := d.UpdateAmounts(*req.CodTotal, *req.DepositAmount, actorID); err != nil {
			return err
		}
		if err := s.depositRepo.Save(ctx, d); err != nil {
			return err
		}
		result, err = s.ledger.Rewalk(ctx, d.Branch, d.Date)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.ledger.Announce(ctx, d.ID, result)
	return s.GetByID(ctx, d.ID)
}

// Delete removes a day and re-walks the branch from the deleted date
func (s *BranchDepositService) Delete(ctx context.Context, id uuid.UUID) error {
	var (
		d      *finance.BranchDeposit
		result *LedgerResult
	)
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		d, err = s.depositRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.depositRepo.LockBranch(ctx, d.Branch); err != nil {
			return err
		}
		if err := s.depositRepo.Delete(ctx, id); err != nil {
			return err
		}
		result, err = s.ledger.Rewalk(ctx, d.Branch, d.Date)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("Branch deposit deleted",
		zap.String("branch", d.Branch),
		zap.Time("date", d.Date))
	s.ledger.Announce(ctx, d.ID, result)
	return nil
}

// Recalculate runs a manual re-walk
func (s *BranchDepositService) Recalculate(ctx context.Context, req RecalculateRequest) (*LedgerResult, error) {
	return s.ledger.Recalculate(ctx, req.Branch, req.From)
}

func dayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := shared.StartOfDay(*t)
	return &d
}
