package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/finance"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
)

// GormCODCollectionRepository implements finance.CODCollectionRepository using GORM
type GormCODCollectionRepository struct {
	db *gorm.DB
}

// NewGormCODCollectionRepository creates a new GormCODCollectionRepository
func NewGormCODCollectionRepository(db *gorm.DB) *GormCODCollectionRepository {
	return &GormCODCollectionRepository{db: db}
}

// FindByID finds a COD collection by ID
func (r *GormCODCollectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.CODCollection, error) {
	var model models.CODCollectionModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "COD collection")
	}
	return model.ToDomain(), nil
}

// FindAll returns a page of COD collections, latest collection first
func (r *GormCODCollectionRepository) FindAll(ctx context.Context, filter finance.CODCollectionFilter) ([]finance.CODCollection, int64, error) {
	query := conn(ctx, r.db).Model(&models.CODCollectionModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	query = dateRange(query, "collection_date", filter.DateFrom, filter.DateTo)
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where("LOWER(dispatch_code) LIKE ? OR LOWER(driver_name) LIKE ?", p, p)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.CODCollectionModel
	if err := paginate(query, filter.Filter, CODCollectionSortFields, "collection_date DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	collections := make([]finance.CODCollection, len(rows))
	for i := range rows {
		collections[i] = *rows[i].ToDomain()
	}
	return collections, total, nil
}

// ExistsForDispatch checks whether the dispatch already has a collection
func (r *GormCODCollectionRepository) ExistsForDispatch(ctx context.Context, dispatchID uuid.UUID) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.CODCollectionModel{}).Where("dispatch_id = ?", dispatchID).Count(&count).Error
	return count > 0, err
}

// Summarize totals collections whose collection date falls in the range
func (r *GormCODCollectionRepository) Summarize(ctx context.Context, from, to *time.Time) (*finance.CODSummary, error) {
	var row struct {
		TotalCollected decimal.NullDecimal
		TotalDeposited decimal.NullDecimal
		TotalShortfall decimal.NullDecimal
		Count          int64
	}
	query := conn(ctx, r.db).Model(&models.CODCollectionModel{}).
		Select(`SUM(total_cod_amount) AS total_collected,
			SUM(deposited_amount) AS total_deposited,
			SUM(shortfall) AS total_shortfall,
			COUNT(*) AS count`)
	if err := dateRange(query, "collection_date", from, to).Scan(&row).Error; err != nil {
		return nil, err
	}
	return &finance.CODSummary{
		TotalCollected: row.TotalCollected.Decimal,
		TotalDeposited: row.TotalDeposited.Decimal,
		TotalShortfall: row.TotalShortfall.Decimal,
		Count:          row.Count,
	}, nil
}

// Save inserts or fully overwrites a COD collection
func (r *GormCODCollectionRepository) Save(ctx context.Context, collection *finance.CODCollection) error {
	model := &models.CODCollectionModel{}
	model.FromDomain(collection)
	err := translateError(conn(ctx, r.db).Save(model).Error, "COD collection")
	if errors.Is(err, shared.ErrAlreadyExists) {
		return shared.WrapDomainError("ALREADY_EXISTS", "A COD collection already exists for this dispatch", err)
	}
	return err
}

// GormChequeDepositRepository implements finance.ChequeDepositRepository using GORM
type GormChequeDepositRepository struct {
	db *gorm.DB
}

// NewGormChequeDepositRepository creates a new GormChequeDepositRepository
func NewGormChequeDepositRepository(db *gorm.DB) *GormChequeDepositRepository {
	return &GormChequeDepositRepository{db: db}
}

// FindByID finds a cheque deposit by ID
func (r *GormChequeDepositRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.ChequeDeposit, error) {
	var model models.ChequeDepositModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "cheque deposit")
	}
	return model.ToDomain(), nil
}

// FindAll returns a page of cheques, latest deposit first
func (r *GormChequeDepositRepository) FindAll(ctx context.Context, filter finance.ChequeDepositFilter) ([]finance.ChequeDeposit, int64, error) {
	query := conn(ctx, r.db).Model(&models.ChequeDepositModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ContractCustomerID != nil {
		query = query.Where("contract_customer_id = ?", *filter.ContractCustomerID)
	}
	query = dateRange(query, "deposit_date", filter.DateFrom, filter.DateTo)
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where("LOWER(cheque_number) LIKE ? OR LOWER(drawer_name) LIKE ? OR LOWER(bank_name) LIKE ?", p, p, p)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ChequeDepositModel
	if err := paginate(query, filter.Filter, ChequeDepositSortFields, "deposit_date DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	cheques := make([]finance.ChequeDeposit, len(rows))
	for i := range rows {
		cheques[i] = *rows[i].ToDomain()
	}
	return cheques, total, nil
}

// ExistsByNumber checks if a cheque number was already banked
func (r *GormChequeDepositRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.ChequeDepositModel{}).Where("cheque_number = ?", number).Count(&count).Error
	return count > 0, err
}

// Summarize totals cheques by status over the deposit date range. Pending
// means still deposited and not yet cleared.
func (r *GormChequeDepositRepository) Summarize(ctx context.Context, from, to *time.Time) (*finance.ChequeSummary, error) {
	var row struct {
		TotalAmount   decimal.NullDecimal
		ClearedAmount decimal.NullDecimal
		PendingAmount decimal.NullDecimal
		BouncedAmount decimal.NullDecimal
		Count         int64
	}
	query := conn(ctx, r.db).Model(&models.ChequeDepositModel{}).
		Select(`SUM(amount) AS total_amount,
			SUM(CASE WHEN status = ? THEN amount ELSE 0 END) AS cleared_amount,
			SUM(CASE WHEN status = ? THEN amount ELSE 0 END) AS pending_amount,
			SUM(CASE WHEN status = ? THEN amount ELSE 0 END) AS bounced_amount,
			COUNT(*) AS count`,
			finance.ChequeStatusCleared, finance.ChequeStatusDeposited, finance.ChequeStatusBounced)
	if err := dateRange(query, "deposit_date", from, to).Scan(&row).Error; err != nil {
		return nil, err
	}
	return &finance.ChequeSummary{
		TotalAmount:   row.TotalAmount.Decimal,
		ClearedAmount: row.ClearedAmount.Decimal,
		PendingAmount: row.PendingAmount.Decimal,
		BouncedAmount: row.BouncedAmount.Decimal,
		Count:         row.Count,
	}, nil
}

// Save inserts or fully overwrites a cheque deposit
func (r *GormChequeDepositRepository) Save(ctx context.Context, cheque *finance.ChequeDeposit) error {
	model := &models.ChequeDepositModel{}
	model.FromDomain(cheque)
	err := translateError(conn(ctx, r.db).Save(model).Error, "cheque deposit")
	if errors.Is(err, shared.ErrAlreadyExists) {
		return shared.WrapDomainError("ALREADY_EXISTS", "Cheque number already exists", err)
	}
	return err
}

// dateRange restricts column to the days from..to inclusive; either bound may be nil
func dateRange(query *gorm.DB, column string, from, to *time.Time) *gorm.DB {
	if from != nil {
		query = query.Where(column+" >= ?", shared.StartOfDay(*from))
	}
	if to != nil {
		_, end := shared.DayRange(*to)
		query = query.Where(column+" < ?", end)
	}
	return query
}

var (
	_ finance.CODCollectionRepository = (*GormCODCollectionRepository)(nil)
	_ finance.ChequeDepositRepository = (*GormChequeDepositRepository)(nil)
)
