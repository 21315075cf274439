package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/wms/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel extends BaseModel with version for optimistic locking.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// ToAggregateRoot rebuilds the domain aggregate base
func (m *AggregateModel) ToAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: m.BaseModel.ToDomain(),
		Version:    m.Version,
	}
}

// AuditModel holds the created_by/updated_by user references.
type AuditModel struct {
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`
	UpdatedBy *uuid.UUID `gorm:"type:uuid"`
}

// FromDomainAudited populates AuditModel from domain Audited
func (m *AuditModel) FromDomainAudited(a shared.Audited) {
	m.CreatedBy = a.CreatedBy
	m.UpdatedBy = a.UpdatedBy
}

// ToAudited rebuilds the domain Audited value
func (m *AuditModel) ToAudited() shared.Audited {
	return shared.Audited{CreatedBy: m.CreatedBy, UpdatedBy: m.UpdatedBy}
}

// UUIDArray maps a []uuid.UUID onto a postgres uuid[] column. Under sqlite it
// is stored as the same array literal in a text column.
type UUIDArray []uuid.UUID

// Value implements driver.Valuer
func (a UUIDArray) Value() (driver.Value, error) {
	strs := make(pq.StringArray, len(a))
	for i, id := range a {
		strs[i] = id.String()
	}
	return strs.Value()
}

// Scan implements sql.Scanner
func (a *UUIDArray) Scan(src any) error {
	var strs pq.StringArray
	if err := strs.Scan(src); err != nil {
		return fmt.Errorf("scan uuid array: %w", err)
	}
	ids := make(UUIDArray, 0, len(strs))
	for _, s := range strs {
		id, err := uuid.Parse(s)
		if err != nil {
			return fmt.Errorf("scan uuid array: %w", err)
		}
		ids = append(ids, id)
	}
	*a = ids
	return nil
}

// GormDBDataType picks the column type per dialect for AutoMigrate
func (UUIDArray) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "uuid[]"
	}
	return "text"
}

// AllModels lists every persisted model in dependency order.
func AllModels() []any {
	return []any{
		&BranchModel{},
		&UserModel{},
		&ContractCustomerModel{},
		&ParcelModel{},
		&DispatchModel{},
		&InvoiceModel{},
		&InvoiceItemModel{},
		&BranchDepositModel{},
		&ParcelDepositModel{},
		&CODCollectionModel{},
		&ChequeDepositModel{},
		&DailyExpenseModel{},
	}
}
