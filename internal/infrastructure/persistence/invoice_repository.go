package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
)

// GormContractCustomerRepository implements billing.ContractCustomerRepository using GORM
type GormContractCustomerRepository struct {
	db *gorm.DB
}

// NewGormContractCustomerRepository creates a new GormContractCustomerRepository
func NewGormContractCustomerRepository(db *gorm.DB) *GormContractCustomerRepository {
	return &GormContractCustomerRepository{db: db}
}

// FindByID finds a contract customer by ID
func (r *GormContractCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.ContractCustomer, error) {
	var model models.ContractCustomerModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "contract customer")
	}
	return model.ToDomain(), nil
}

// FindAll returns a page of contract customers. Inactive customers are
// hidden unless the filter asks for them.
func (r *GormContractCustomerRepository) FindAll(ctx context.Context, filter billing.ContractCustomerFilter) ([]billing.ContractCustomer, int64, error) {
	query := conn(ctx, r.db).Model(&models.ContractCustomerModel{})
	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(company_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(contract_number) LIKE ?",
			p, p, p, p,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ContractCustomerModel
	if err := paginate(query, filter.Filter, ContractCustomerSortFields, "name ASC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	customers := make([]billing.ContractCustomer, len(rows))
	for i := range rows {
		customers[i] = *rows[i].ToDomain()
	}
	return customers, total, nil
}

// ExistsByName checks if another customer uses the name
func (r *GormContractCustomerRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	return r.exists(ctx, "LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name)), excludeID)
}

// ExistsByEmail checks if another customer uses the email
func (r *GormContractCustomerRepository) ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	if strings.TrimSpace(email) == "" {
		return false, nil
	}
	return r.exists(ctx, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email)), excludeID)
}

func (r *GormContractCustomerRepository) exists(ctx context.Context, cond string, value any, excludeID *uuid.UUID) (bool, error) {
	query := conn(ctx, r.db).Model(&models.ContractCustomerModel{}).Where(cond, value)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindContractNumbersWithPrefix lists contract numbers starting with prefix
func (r *GormContractCustomerRepository) FindContractNumbersWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	var numbers []string
	err := conn(ctx, r.db).Model(&models.ContractCustomerModel{}).
		Where("contract_number LIKE ?", prefix+"%").
		Pluck("contract_number", &numbers).Error
	return numbers, err
}

// Save inserts or fully overwrites a contract customer
func (r *GormContractCustomerRepository) Save(ctx context.Context, customer *billing.ContractCustomer) error {
	model := models.ContractCustomerModelFromDomain(customer)
	return translateError(conn(ctx, r.db).Save(model).Error, "contract customer")
}

// SaveWithLock updates a contract customer only if its version is unchanged
func (r *GormContractCustomerRepository) SaveWithLock(ctx context.Context, customer *billing.ContractCustomer) error {
	model := models.ContractCustomerModelFromDomain(customer)
	model.Version = customer.Version + 1
	model.UpdatedAt = stamp()
	if err := updateVersioned(ctx, r.db, model, customer.Version, "contract customer"); err != nil {
		return err
	}
	customer.Version = model.Version
	customer.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete deletes a contract customer by ID
func (r *GormContractCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return checkDeleted(conn(ctx, r.db).Delete(&models.ContractCustomerModel{}, "id = ?", id), "contract customer")
}

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, waybill_number ASC")
}

// FindByID finds an invoice by ID with its items
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := conn(ctx, r.db).Preload("Items", orderedItems).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "invoice")
	}
	return model.ToDomain(), nil
}

// FindAll returns a page of invoices without items, newest issue date first
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter billing.InvoiceFilter) ([]billing.Invoice, int64, error) {
	query := conn(ctx, r.db).Model(&models.InvoiceModel{})

	if filter.Search != "" {
		query = query.Where("LOWER(invoice_number) LIKE ?", likePattern(filter.Search))
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ContractCustomerID != nil {
		query = query.Where("contract_customer_id = ?", *filter.ContractCustomerID)
	}
	if filter.DateFrom != nil {
		query = query.Where("issue_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("issue_date < ?", *filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.InvoiceModel
	if err := paginate(query, filter.Filter, InvoiceSortFields, "issue_date DESC, invoice_number DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	invoices := make([]billing.Invoice, len(rows))
	for i := range rows {
		invoices[i] = *rows[i].ToDomain()
	}
	return invoices, total, nil
}

// FindByCustomer lists every invoice of a customer with items, newest first
func (r *GormInvoiceRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]billing.Invoice, error) {
	var rows []models.InvoiceModel
	if err := conn(ctx, r.db).
		Preload("Items", orderedItems).
		Where("contract_customer_id = ?", customerID).
		Order("issue_date DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	invoices := make([]billing.Invoice, len(rows))
	for i := range rows {
		invoices[i] = *rows[i].ToDomain()
	}
	return invoices, nil
}

// ExistsByNumber checks if an invoice number is already used
func (r *GormInvoiceRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.InvoiceModel{}).Where("invoice_number = ?", number).Count(&count).Error
	return count > 0, err
}

// CountCreatedBetween counts invoices created in [from, to)
func (r *GormInvoiceRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.InvoiceModel{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}

// CountByCustomer counts invoices issued to a customer
func (r *GormInvoiceRepository) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.InvoiceModel{}).
		Where("contract_customer_id = ?", customerID).
		Count(&count).Error
	return count, err
}

// BilledParcelIDs returns the parcels among parcelIDs that already sit on an invoice
func (r *GormInvoiceRepository) BilledParcelIDs(ctx context.Context, parcelIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(parcelIDs) == 0 {
		return nil, nil
	}
	var billed []uuid.UUID
	err := conn(ctx, r.db).Model(&models.InvoiceItemModel{}).
		Distinct("parcel_id").
		Where("parcel_id IN ?", parcelIDs).
		Pluck("parcel_id", &billed).Error
	return billed, err
}

// Save upserts the invoice row and replaces its items
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return withTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return translateError(err, "invoice")
		}
		return r.replaceItems(tx, model)
	})
}

// SaveWithLock updates the invoice only if its version is unchanged, then
// replaces its items
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	model.Version = invoice.Version + 1
	model.UpdatedAt = stamp()
	err := withTx(ctx, r.db, func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, txKey{}, tx)
		if err := updateVersioned(txCtx, r.db, model, invoice.Version, "invoice"); err != nil {
			return err
		}
		return r.replaceItems(tx, model)
	})
	if err != nil {
		return err
	}
	invoice.Version = model.Version
	invoice.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *GormInvoiceRepository) replaceItems(tx *gorm.DB, model *models.InvoiceModel) error {
	if err := tx.Where("invoice_id = ?", model.ID).Delete(&models.InvoiceItemModel{}).Error; err != nil {
		return err
	}
	if len(model.Items) == 0 {
		return nil
	}
	for i := range model.Items {
		model.Items[i].InvoiceID = model.ID
	}
	return translateError(tx.Create(&model.Items).Error, "invoice item")
}

// Delete deletes an invoice and its items
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return err
		}
		return checkDeleted(tx.Delete(&models.InvoiceModel{}, "id = ?", id), "invoice")
	})
}

var (
	_ billing.ContractCustomerRepository = (*GormContractCustomerRepository)(nil)
	_ billing.InvoiceRepository          = (*GormInvoiceRepository)(nil)
)
