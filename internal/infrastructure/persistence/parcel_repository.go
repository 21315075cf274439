package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/shipping"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
)

// GormParcelRepository implements shipping.ParcelRepository using GORM
type GormParcelRepository struct {
	db *gorm.DB
}

// NewGormParcelRepository creates a new GormParcelRepository
func NewGormParcelRepository(db *gorm.DB) *GormParcelRepository {
	return &GormParcelRepository{db: db}
}

// FindByID finds a parcel by ID
func (r *GormParcelRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Parcel, error) {
	var model models.ParcelModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "parcel")
	}
	return model.ToDomain(), nil
}

// FindByIDs loads the parcels with the given IDs; missing IDs are skipped
func (r *GormParcelRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]shipping.Parcel, error) {
	if len(ids) == 0 {
		return []shipping.Parcel{}, nil
	}
	var rows []models.ParcelModel
	if err := conn(ctx, r.db).Where("id IN ?", ids).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	parcels := make([]shipping.Parcel, len(rows))
	for i := range rows {
		parcels[i] = *rows[i].ToDomain()
	}
	return parcels, nil
}

// FindByWaybill finds a parcel by waybill number
func (r *GormParcelRepository) FindByWaybill(ctx context.Context, waybill string) (*shipping.Parcel, error) {
	var model models.ParcelModel
	if err := conn(ctx, r.db).
		Where("waybill_number = ?", strings.TrimSpace(waybill)).
		First(&model).Error; err != nil {
		return nil, translateError(err, "parcel")
	}
	return model.ToDomain(), nil
}

// FindAll returns a page of parcels, newest first by default
func (r *GormParcelRepository) FindAll(ctx context.Context, filter shipping.ParcelFilter) ([]shipping.Parcel, int64, error) {
	query := r.applyFilter(conn(ctx, r.db).Model(&models.ParcelModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ParcelModel
	if err := paginate(query, filter.Filter, ParcelSortFields, "created_at DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	parcels := make([]shipping.Parcel, len(rows))
	for i := range rows {
		parcels[i] = *rows[i].ToDomain()
	}
	return parcels, total, nil
}

func (r *GormParcelRepository) applyFilter(query *gorm.DB, filter shipping.ParcelFilter) *gorm.DB {
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where(
			"LOWER(waybill_number) LIKE ? OR LOWER(sender) LIKE ? OR LOWER(receiver) LIKE ? OR LOWER(receiver_telephone) LIKE ?",
			p, p, p, p,
		)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.Destination != "" {
		query = query.Where("LOWER(destination) = ?", strings.ToLower(filter.Destination))
	}
	if filter.CreatedBy != nil {
		query = query.Where("created_by = ?", *filter.CreatedBy)
	}
	if filter.ContractCustomerID != nil {
		query = query.Where("contract_customer_id = ?", *filter.ContractCustomerID)
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at < ?", *filter.DateTo)
	}
	if filter.Unbilled {
		query = query.Where("NOT EXISTS (SELECT 1 FROM invoice_items WHERE invoice_items.parcel_id = parcels.id)")
	}
	return query
}

// ExistsByWaybill checks if a waybill number is already used
func (r *GormParcelRepository) ExistsByWaybill(ctx context.Context, waybill string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.ParcelModel{}).
		Where("waybill_number = ?", strings.TrimSpace(waybill)).
		Count(&count).Error
	return count > 0, err
}

// CountCreatedBetween counts parcels created in [from, to)
func (r *GormParcelRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.ParcelModel{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}

// SalesBetween totals non-cancelled parcels created in [from, to)
func (r *GormParcelRepository) SalesBetween(ctx context.Context, from, to time.Time) (*shipping.ParcelSales, error) {
	var row struct {
		ParcelCount int64
		TotalAmount decimal.NullDecimal
		TotalPaid   decimal.NullDecimal
	}
	err := conn(ctx, r.db).Model(&models.ParcelModel{}).
		Select("COUNT(*) AS parcel_count, SUM(total_amount) AS total_amount, SUM(COALESCE(amount_paid, 0)) AS total_paid").
		Where("created_at >= ? AND created_at < ?", from, to).
		Where("status <> ?", shipping.ParcelStatusCancelled).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &shipping.ParcelSales{
		ParcelCount: row.ParcelCount,
		TotalAmount: row.TotalAmount.Decimal,
		TotalPaid:   row.TotalPaid.Decimal,
	}, nil
}

// Save inserts or fully overwrites a parcel
func (r *GormParcelRepository) Save(ctx context.Context, parcel *shipping.Parcel) error {
	return translateError(conn(ctx, r.db).Save(models.ParcelModelFromDomain(parcel)).Error, "parcel")
}

// SaveWithLock updates a parcel only if its version is unchanged since it was read
func (r *GormParcelRepository) SaveWithLock(ctx context.Context, parcel *shipping.Parcel) error {
	model := models.ParcelModelFromDomain(parcel)
	model.Version = parcel.Version + 1
	model.UpdatedAt = stamp()
	if err := updateVersioned(ctx, r.db, model, parcel.Version, "parcel"); err != nil {
		return err
	}
	parcel.Version = model.Version
	parcel.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete deletes a parcel by ID
func (r *GormParcelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return checkDeleted(conn(ctx, r.db).Delete(&models.ParcelModel{}, "id = ?", id), "parcel")
}

// GormDispatchRepository implements shipping.DispatchRepository using GORM
type GormDispatchRepository struct {
	db *gorm.DB
}

// NewGormDispatchRepository creates a new GormDispatchRepository
func NewGormDispatchRepository(db *gorm.DB) *GormDispatchRepository {
	return &GormDispatchRepository{db: db}
}

// FindByID finds a dispatch by ID
func (r *GormDispatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Dispatch, error) {
	var model models.DispatchModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "dispatch")
	}
	return model.ToDomain(), nil
}

// FindAll returns a page of dispatches, latest dispatch time first by default
func (r *GormDispatchRepository) FindAll(ctx context.Context, filter shipping.DispatchFilter) ([]shipping.Dispatch, int64, error) {
	query := conn(ctx, r.db).Model(&models.DispatchModel{})

	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where("LOWER(dispatch_code) LIKE ? OR LOWER(vehicle_number) LIKE ? OR LOWER(driver) LIKE ?", p, p, p)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Destination != "" {
		query = query.Where("LOWER(destination) = ?", strings.ToLower(filter.Destination))
	}
	if filter.SourceBranch != "" {
		query = query.Where("LOWER(source_branch) = ?", strings.ToLower(filter.SourceBranch))
	}
	if filter.DateFrom != nil {
		query = query.Where("dispatch_time >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("dispatch_time < ?", *filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.DispatchModel
	if err := paginate(query, filter.Filter, DispatchSortFields, "dispatch_time DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	dispatches := make([]shipping.Dispatch, len(rows))
	for i := range rows {
		dispatches[i] = *rows[i].ToDomain()
	}
	return dispatches, total, nil
}

// ExistsByCode checks if a dispatch code is already used
func (r *GormDispatchRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.DispatchModel{}).Where("dispatch_code = ?", code).Count(&count).Error
	return count > 0, err
}

// CountCreatedBetween counts dispatches created in [from, to)
func (r *GormDispatchRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.DispatchModel{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}

// Save inserts or fully overwrites a dispatch
func (r *GormDispatchRepository) Save(ctx context.Context, dispatch *shipping.Dispatch) error {
	return translateError(conn(ctx, r.db).Save(models.DispatchModelFromDomain(dispatch)).Error, "dispatch")
}

// SaveWithLock updates a dispatch only if its version is unchanged since it was read
func (r *GormDispatchRepository) SaveWithLock(ctx context.Context, dispatch *shipping.Dispatch) error {
	model := models.DispatchModelFromDomain(dispatch)
	model.Version = dispatch.Version + 1
	model.UpdatedAt = stamp()
	if err := updateVersioned(ctx, r.db, model, dispatch.Version, "dispatch"); err != nil {
		return err
	}
	dispatch.Version = model.Version
	dispatch.UpdatedAt = model.UpdatedAt
	return nil
}

var (
	_ shipping.ParcelRepository   = (*GormParcelRepository)(nil)
	_ shipping.DispatchRepository = (*GormDispatchRepository)(nil)
)
