package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/finance"
	"github.com/wms/backend/internal/domain/report"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
)

// GormDailyExpenseRepository implements finance.DailyExpenseRepository using GORM
type GormDailyExpenseRepository struct {
	db *gorm.DB
}

// NewGormDailyExpenseRepository creates a new GormDailyExpenseRepository
func NewGormDailyExpenseRepository(db *gorm.DB) *GormDailyExpenseRepository {
	return &GormDailyExpenseRepository{db: db}
}

// FindByID finds an expense by ID
func (r *GormDailyExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.DailyExpense, error) {
	var model models.DailyExpenseModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "expense")
	}
	return model.ToDomain(), nil
}

// FindAll returns a page of expenses, latest date first
func (r *GormDailyExpenseRepository) FindAll(ctx context.Context, filter finance.DailyExpenseFilter) ([]finance.DailyExpense, int64, error) {
	query := conn(ctx, r.db).Model(&models.DailyExpenseModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.ClerkID != nil {
		query = query.Where("clerk_id = ?", *filter.ClerkID)
	}
	query = dateRange(query, "date", filter.StartDate, filter.EndDate)
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where("LOWER(description) LIKE ? OR LOWER(vendor) LIKE ?", p, p)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.DailyExpenseModel
	if err := paginate(query, filter.Filter, DailyExpenseSortFields, "date DESC, created_at DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	expenses := make([]finance.DailyExpense, len(rows))
	for i := range rows {
		expenses[i] = *rows[i].ToDomain()
	}
	return expenses, total, nil
}

// Summarize totals expenses by status over start..end, adds the month that
// contains monthOf, and breaks approved spend down by category
func (r *GormDailyExpenseRepository) Summarize(ctx context.Context, start, end *time.Time, monthOf time.Time) (*finance.ExpenseSummary, error) {
	var totals struct {
		TotalExpenses    decimal.NullDecimal
		PendingExpenses  decimal.NullDecimal
		ApprovedExpenses decimal.NullDecimal
		RejectedExpenses decimal.NullDecimal
	}
	query := conn(ctx, r.db).Model(&models.DailyExpenseModel{}).
		Select(`SUM(amount) AS total_expenses,
			SUM(CASE WHEN status = ? THEN amount ELSE 0 END) AS pending_expenses,
			SUM(CASE WHEN status = ? THEN amount ELSE 0 END) AS approved_expenses,
			SUM(CASE WHEN status = ? THEN amount ELSE 0 END) AS rejected_expenses`,
			finance.ExpenseStatusPending, finance.ExpenseStatusApproved, finance.ExpenseStatusRejected)
	if err := dateRange(query, "date", start, end).Scan(&totals).Error; err != nil {
		return nil, err
	}

	monthStart, nextMonth := shared.MonthRange(monthOf)
	var monthly decimal.NullDecimal
	if err := conn(ctx, r.db).Model(&models.DailyExpenseModel{}).
		Select("SUM(amount)").
		Where("date >= ? AND date < ?", monthStart, nextMonth).
		Row().Scan(&monthly); err != nil {
		return nil, err
	}

	var breakdown []struct {
		Category finance.ExpenseCategory
		Amount   decimal.Decimal
		Count    int64
	}
	bq := conn(ctx, r.db).Model(&models.DailyExpenseModel{}).
		Select("category, SUM(amount) AS amount, COUNT(*) AS count").
		Where("status = ?", finance.ExpenseStatusApproved)
	if err := dateRange(bq, "date", start, end).
		Group("category").
		Order("amount DESC").
		Scan(&breakdown).Error; err != nil {
		return nil, err
	}

	categories := make([]finance.CategoryTotal, len(breakdown))
	for i, b := range breakdown {
		categories[i] = finance.CategoryTotal{Category: b.Category, Amount: b.Amount, Count: b.Count}
	}

	return &finance.ExpenseSummary{
		TotalExpenses:     totals.TotalExpenses.Decimal,
		PendingExpenses:   totals.PendingExpenses.Decimal,
		ApprovedExpenses:  totals.ApprovedExpenses.Decimal,
		RejectedExpenses:  totals.RejectedExpenses.Decimal,
		MonthlyTotal:      monthly.Decimal,
		CategoryBreakdown: categories,
	}, nil
}

// Save inserts or fully overwrites an expense
func (r *GormDailyExpenseRepository) Save(ctx context.Context, expense *finance.DailyExpense) error {
	model := &models.DailyExpenseModel{}
	model.FromDomain(expense)
	return translateError(conn(ctx, r.db).Save(model).Error, "expense")
}

// SaveWithLock updates an expense only if its version is unchanged since it was read
func (r *GormDailyExpenseRepository) SaveWithLock(ctx context.Context, expense *finance.DailyExpense) error {
	model := &models.DailyExpenseModel{}
	model.FromDomain(expense)
	model.Version = expense.Version + 1
	model.UpdatedAt = stamp()
	if err := updateVersioned(ctx, r.db, model, expense.Version, "expense"); err != nil {
		return err
	}
	expense.Version = model.Version
	expense.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete deletes an expense by ID
func (r *GormDailyExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return checkDeleted(conn(ctx, r.db).Delete(&models.DailyExpenseModel{}, "id = ?", id), "expense")
}

// GormReportRepository implements report.Repository with cross-table aggregates
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// DayFigures sums deposits banked and approved expenses dated in [from, to),
// and each branch's latest running debt dated before to
func (r *GormReportRepository) DayFigures(ctx context.Context, from, to time.Time) (*report.DayFigures, error) {
	db := conn(ctx, r.db)

	var deposits decimal.NullDecimal
	if err := db.Model(&models.BranchDepositModel{}).
		Select("SUM(deposit_amount)").
		Where("date >= ? AND date < ?", from, to).
		Row().Scan(&deposits); err != nil {
		return nil, err
	}

	var expenses decimal.NullDecimal
	if err := db.Model(&models.DailyExpenseModel{}).
		Select("SUM(amount)").
		Where("status = ? AND date >= ? AND date < ?", finance.ExpenseStatusApproved, from, to).
		Row().Scan(&expenses); err != nil {
		return nil, err
	}

	var debt decimal.NullDecimal
	if err := db.Raw(`SELECT SUM(bd.running_debt) FROM branch_deposits bd
		WHERE bd.date = (
			SELECT MAX(b2.date) FROM branch_deposits b2
			WHERE b2.branch = bd.branch AND b2.date < ?
		)`, to).Row().Scan(&debt); err != nil {
		return nil, err
	}

	return &report.DayFigures{
		DepositsBanked:        deposits.Decimal,
		ApprovedExpenses:      expenses.Decimal,
		OutstandingBranchDebt: debt.Decimal,
	}, nil
}

var (
	_ finance.DailyExpenseRepository = (*GormDailyExpenseRepository)(nil)
	_ report.Repository              = (*GormReportRepository)(nil)
)
