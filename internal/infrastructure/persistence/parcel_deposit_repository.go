package persistence

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/finance"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shipping"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
)

const parcelDepositView = `parcel_deposits.*,
	parcels.waybill_number AS waybill_number,
	parcels.destination AS destination,
	parcels.total_amount AS parcel_total,
	parcels.created_at AS parcel_created_at,
	users.first_name AS clerk_first_name,
	users.last_name AS clerk_last_name`

// parcelDepositRow is one parcel_deposits row joined with its parcel and clerk
type parcelDepositRow struct {
	models.ParcelDepositModel
	WaybillNumber   string
	Destination     string
	ParcelTotal     decimal.Decimal
	ParcelCreatedAt time.Time
	ClerkFirstName  *string
	ClerkLastName   *string
}

func (row *parcelDepositRow) toView() finance.ParcelDepositView {
	return finance.ParcelDepositView{
		ParcelDeposit:   *row.ParcelDepositModel.ToDomain(),
		WaybillNumber:   row.WaybillNumber,
		Destination:     row.Destination,
		ParcelTotal:     row.ParcelTotal,
		ParcelCreatedAt: row.ParcelCreatedAt,
		ClerkName:       fullName(row.ClerkFirstName, row.ClerkLastName),
	}
}

func fullName(first, last *string) string {
	var parts []string
	for _, p := range []*string{first, last} {
		if p != nil && strings.TrimSpace(*p) != "" {
			parts = append(parts, strings.TrimSpace(*p))
		}
	}
	return strings.Join(parts, " ")
}

// GormParcelDepositRepository implements finance.ParcelDepositRepository using GORM
type GormParcelDepositRepository struct {
	db *gorm.DB
}

// NewGormParcelDepositRepository creates a new GormParcelDepositRepository
func NewGormParcelDepositRepository(db *gorm.DB) *GormParcelDepositRepository {
	return &GormParcelDepositRepository{db: db}
}

func (r *GormParcelDepositRepository) joined(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).
		Table("parcel_deposits").
		Joins("JOIN parcels ON parcels.id = parcel_deposits.parcel_id").
		Joins("LEFT JOIN users ON users.id = parcels.created_by")
}

func (r *GormParcelDepositRepository) findOne(ctx context.Context, cond string, arg any) (*finance.ParcelDepositView, error) {
	var rows []parcelDepositRow
	if err := r.joined(ctx).Select(parcelDepositView).Where(cond, arg).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, shared.NotFound("parcel deposit not found")
	}
	view := rows[0].toView()
	return &view, nil
}

// FindByID finds a parcel deposit by ID
func (r *GormParcelDepositRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.ParcelDepositView, error) {
	return r.findOne(ctx, "parcel_deposits.id = ?", id)
}

// FindByParcelID finds the deposit recorded against a parcel
func (r *GormParcelDepositRepository) FindByParcelID(ctx context.Context, parcelID uuid.UUID) (*finance.ParcelDepositView, error) {
	return r.findOne(ctx, "parcel_deposits.parcel_id = ?", parcelID)
}

// FindAll returns a page of deposits, newest parcel first by default
func (r *GormParcelDepositRepository) FindAll(ctx context.Context, filter finance.ParcelDepositFilter) ([]finance.ParcelDepositView, int64, error) {
	query := r.joined(ctx)
	if filter.Date != nil {
		start, end := shared.DayRange(*filter.Date)
		query = query.Where("parcels.created_at >= ? AND parcels.created_at < ?", start, end)
	}
	if filter.ClerkID != nil {
		query = query.Where("parcels.created_by = ?", *filter.ClerkID)
	}
	if filter.Destination != "" {
		query = query.Where("LOWER(parcels.destination) = ?", strings.ToLower(filter.Destination))
	}
	if filter.Search != "" {
		query = query.Where("LOWER(parcels.waybill_number) LIKE ?", likePattern(filter.Search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	filter.Filter = filter.Filter.Normalize()
	order := "parcels.created_at DESC"
	if field := ValidateSortField(filter.OrderBy, ParcelDepositSortFields, ""); field != "" {
		order = "parcel_deposits." + field + " " + ValidateSortOrder(filter.OrderDir)
	}

	var rows []parcelDepositRow
	if err := query.Select(parcelDepositView).
		Order(order).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	views := make([]finance.ParcelDepositView, len(rows))
	for i := range rows {
		views[i] = rows[i].toView()
	}
	return views, total, nil
}

// ExistsForParcel checks whether a deposit is already recorded for the parcel
func (r *GormParcelDepositRepository) ExistsForParcel(ctx context.Context, parcelID uuid.UUID) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.ParcelDepositModel{}).Where("parcel_id = ?", parcelID).Count(&count).Error
	return count > 0, err
}

// clerkParcelRow is one paid parcel with whatever was deposited against it
type clerkParcelRow struct {
	ClerkID          uuid.UUID
	FirstName        *string
	LastName         *string
	Username         *string
	TotalAmount      decimal.Decimal
	DepositedAmount  decimal.NullDecimal
	Expenses         decimal.NullDecimal
	DepositUpdatedAt *time.Time
}

// ClerkSummaries totals paid parcels created in [From, To) per clerk, largest
// total first. Parcels with no deposit count with zero deposited.
func (r *GormParcelDepositRepository) ClerkSummaries(ctx context.Context, filter finance.ClerkSummaryFilter) ([]finance.ClerkSummary, error) {
	query := conn(ctx, r.db).
		Table("parcels").
		Select(`parcels.created_by AS clerk_id,
			users.first_name AS first_name,
			users.last_name AS last_name,
			users.username AS username,
			parcels.total_amount AS total_amount,
			parcel_deposits.deposited_amount AS deposited_amount,
			parcel_deposits.expenses AS expenses,
			parcel_deposits.updated_at AS deposit_updated_at`).
		Joins("LEFT JOIN parcel_deposits ON parcel_deposits.parcel_id = parcels.id").
		Joins("LEFT JOIN users ON users.id = parcels.created_by").
		Where("parcels.created_by IS NOT NULL").
		Where("parcels.created_at >= ? AND parcels.created_at < ?", filter.From, filter.To).
		Where("parcels.status <> ?", shipping.ParcelStatusCancelled).
		Where("(parcels.amount_paid > 0 OR LOWER(parcels.payment_methods) LIKE ?)", "%paid%")
	if filter.ClerkID != nil {
		query = query.Where("parcels.created_by = ?", *filter.ClerkID)
	}
	if filter.Destination != "" {
		query = query.Where("LOWER(parcels.destination) = ?", strings.ToLower(filter.Destination))
	}

	var rows []clerkParcelRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	byClerk := make(map[uuid.UUID]*finance.ClerkSummary)
	for i := range rows {
		row := &rows[i]
		s, ok := byClerk[row.ClerkID]
		if !ok {
			s = &finance.ClerkSummary{ClerkID: row.ClerkID, ClerkName: fullName(row.FirstName, row.LastName)}
			if row.Username != nil {
				s.ClerkUsername = *row.Username
			}
			byClerk[row.ClerkID] = s
		}
		s.ParcelCount++
		s.TotalAmount = s.TotalAmount.Add(row.TotalAmount)
		s.TotalDeposited = s.TotalDeposited.Add(row.DepositedAmount.Decimal)
		s.TotalExpenses = s.TotalExpenses.Add(row.Expenses.Decimal)
		if row.DepositUpdatedAt != nil && (s.LastUpdate == nil || row.DepositUpdatedAt.After(*s.LastUpdate)) {
			t := *row.DepositUpdatedAt
			s.LastUpdate = &t
		}
	}

	summaries := make([]finance.ClerkSummary, 0, len(byClerk))
	for _, s := range byClerk {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if c := summaries[i].TotalAmount.Cmp(summaries[j].TotalAmount); c != 0 {
			return c > 0
		}
		return summaries[i].ClerkName < summaries[j].ClerkName
	})
	return summaries, nil
}

// Save inserts or fully overwrites a parcel deposit
func (r *GormParcelDepositRepository) Save(ctx context.Context, deposit *finance.ParcelDeposit) error {
	model := &models.ParcelDepositModel{}
	model.FromDomain(deposit)
	err := translateError(conn(ctx, r.db).Save(model).Error, "parcel deposit")
	if errors.Is(err, shared.ErrAlreadyExists) {
		return shared.WrapDomainError("ALREADY_EXISTS", "A deposit already exists for this parcel", err)
	}
	return err
}

// Delete deletes a parcel deposit by ID
func (r *GormParcelDepositRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return checkDeleted(conn(ctx, r.db).Delete(&models.ParcelDepositModel{}, "id = ?", id), "parcel deposit")
}

var _ finance.ParcelDepositRepository = (*GormParcelDepositRepository)(nil)
