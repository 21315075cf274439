package persistence

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/finance"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
)

// GormBranchDepositRepository implements finance.BranchDepositRepository using GORM
type GormBranchDepositRepository struct {
	db *gorm.DB
}

// NewGormBranchDepositRepository creates a new GormBranchDepositRepository
func NewGormBranchDepositRepository(db *gorm.DB) *GormBranchDepositRepository {
	return &GormBranchDepositRepository{db: db}
}

// FindByID finds a branch deposit by ID
func (r *GormBranchDepositRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.BranchDeposit, error) {
	var model models.BranchDepositModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "branch deposit")
	}
	return model.ToDomain(), nil
}

func (r *GormBranchDepositRepository) applyFilter(query *gorm.DB, filter finance.BranchDepositFilter) *gorm.DB {
	if filter.Branch != "" {
		query = query.Where("branch = ?", filter.Branch)
	}
	if filter.StartDate != nil {
		query = query.Where("date >= ?", shared.StartOfDay(*filter.StartDate))
	}
	if filter.EndDate != nil {
		_, end := shared.DayRange(*filter.EndDate)
		query = query.Where("date < ?", end)
	}
	return query
}

// FindAll returns a page of ledger rows ordered by branch then date
func (r *GormBranchDepositRepository) FindAll(ctx context.Context, filter finance.BranchDepositFilter) ([]finance.BranchDeposit, int64, error) {
	query := r.applyFilter(conn(ctx, r.db).Model(&models.BranchDepositModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.BranchDepositModel
	if err := paginate(query, filter.Filter, BranchDepositSortFields, "branch ASC, date ASC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	deposits := make([]finance.BranchDeposit, len(rows))
	for i := range rows {
		deposits[i] = *rows[i].ToDomain()
	}
	return deposits, total, nil
}

// ExistsForBranchDate checks whether the branch already has a row for the day
func (r *GormBranchDepositRepository) ExistsForBranchDate(ctx context.Context, branch string, date time.Time) (bool, error) {
	start, end := shared.DayRange(date)
	var count int64
	err := conn(ctx, r.db).Model(&models.BranchDepositModel{}).
		Where("branch = ? AND date >= ? AND date < ?", branch, start, end).
		Count(&count).Error
	return count > 0, err
}

// FindLatestBefore returns the branch's newest row dated before date, or nil
func (r *GormBranchDepositRepository) FindLatestBefore(ctx context.Context, branch string, date time.Time) (*finance.BranchDeposit, error) {
	var rows []models.BranchDepositModel
	if err := conn(ctx, r.db).
		Where("branch = ? AND date < ?", branch, shared.StartOfDay(date)).
		Order("date DESC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].ToDomain(), nil
}

// FindFrom returns the branch's rows dated on or after date, oldest first
func (r *GormBranchDepositRepository) FindFrom(ctx context.Context, branch string, date time.Time) ([]*finance.BranchDeposit, error) {
	var rows []models.BranchDepositModel
	if err := conn(ctx, r.db).
		Where("branch = ? AND date >= ?", branch, shared.StartOfDay(date)).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	deposits := make([]*finance.BranchDeposit, len(rows))
	for i := range rows {
		deposits[i] = rows[i].ToDomain()
	}
	return deposits, nil
}

// FindEarliestDate returns the date of the branch's first row, or nil
func (r *GormBranchDepositRepository) FindEarliestDate(ctx context.Context, branch string) (*time.Time, error) {
	var rows []models.BranchDepositModel
	if err := conn(ctx, r.db).
		Select("date").
		Where("branch = ?", branch).
		Order("date ASC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0].Date, nil
}

// ListBranches returns every branch name present in the ledger
func (r *GormBranchDepositRepository) ListBranches(ctx context.Context) ([]string, error) {
	var branches []string
	err := conn(ctx, r.db).Model(&models.BranchDepositModel{}).
		Distinct("branch").
		Order("branch ASC").
		Pluck("branch", &branches).Error
	return branches, err
}

// Summarize groups the filtered rows per branch. TotalDebt sums running debts.
func (r *GormBranchDepositRepository) Summarize(ctx context.Context, filter finance.BranchDepositFilter) ([]finance.BranchDepositSummary, error) {
	var rows []models.BranchDepositModel
	query := r.applyFilter(conn(ctx, r.db).Model(&models.BranchDepositModel{}), filter)
	if err := query.Select("branch", "date", "cod_total", "deposit_amount", "running_debt").Find(&rows).Error; err != nil {
		return nil, err
	}

	byBranch := make(map[string]*finance.BranchDepositSummary)
	for i := range rows {
		row := &rows[i]
		s, ok := byBranch[row.Branch]
		if !ok {
			s = &finance.BranchDepositSummary{Branch: row.Branch}
			byBranch[row.Branch] = s
		}
		s.TotalCod = s.TotalCod.Add(row.CodTotal)
		s.TotalDeposits = s.TotalDeposits.Add(row.DepositAmount)
		s.TotalDebt = s.TotalDebt.Add(row.RunningDebt)
		s.RecordCount++
		if s.LastDepositDate == nil || row.Date.After(*s.LastDepositDate) {
			d := row.Date
			s.LastDepositDate = &d
		}
	}

	summaries := make([]finance.BranchDepositSummary, 0, len(byBranch))
	for _, s := range byBranch {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return strings.ToLower(summaries[i].Branch) < strings.ToLower(summaries[j].Branch)
	})
	return summaries, nil
}

// LockBranch takes a transaction-scoped advisory lock on the branch name.
// It is a no-op outside postgres and outside a transaction.
func (r *GormBranchDepositRepository) LockBranch(ctx context.Context, branch string) error {
	db := conn(ctx, r.db)
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); !ok {
		return nil
	}
	return db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", branch).Error
}

// Save inserts or fully overwrites a ledger row
func (r *GormBranchDepositRepository) Save(ctx context.Context, deposit *finance.BranchDeposit) error {
	model := models.BranchDepositModelFromDomain(deposit)
	err := translateError(conn(ctx, r.db).Save(model).Error, "branch deposit")
	if errors.Is(err, shared.ErrAlreadyExists) {
		return shared.WrapDomainError("ALREADY_EXISTS", "A deposit record already exists for this branch and date", err)
	}
	return err
}

// UpdateRunningDebts writes only the running_debt column of each row
func (r *GormBranchDepositRepository) UpdateRunningDebts(ctx context.Context, deposits []*finance.BranchDeposit) error {
	if len(deposits) == 0 {
		return nil
	}
	return withTx(ctx, r.db, func(tx *gorm.DB) error {
		now := stamp()
		for _, d := range deposits {
			result := tx.Model(&models.BranchDepositModel{}).
				Where("id = ?", d.ID).
				Updates(map[string]any{"running_debt": d.RunningDebt, "updated_at": now})
			if err := checkDeleted(result, "branch deposit"); err != nil {
				return err
			}
			d.UpdatedAt = now
		}
		return nil
	})
}

// Delete deletes a ledger row by ID
func (r *GormBranchDepositRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return checkDeleted(conn(ctx, r.db).Delete(&models.BranchDepositModel{}, "id = ?", id), "branch deposit")
}

var _ finance.BranchDepositRepository = (*GormBranchDepositRepository)(nil)
