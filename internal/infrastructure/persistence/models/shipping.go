package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shipping"
)

// ParcelModel is the persistence model for the Parcel domain entity.
type ParcelModel struct {
	AggregateModel
	AuditModel
	WaybillNumber        string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	QRCode               string           `gorm:"column:qr_code;type:varchar(100)"`
	Sender               string           `gorm:"type:varchar(200);not null"`
	SenderTelephone      string           `gorm:"type:varchar(50);not null"`
	Receiver             string           `gorm:"type:varchar(200);not null"`
	ReceiverTelephone    string           `gorm:"type:varchar(50);not null"`
	Destination          string           `gorm:"type:varchar(100);not null;index"`
	Quantity             *int             `gorm:"type:integer"`
	Description          string           `gorm:"type:text"`
	Amount               *decimal.Decimal `gorm:"type:decimal(18,2)"`
	Rate                 *decimal.Decimal `gorm:"type:decimal(18,2)"`
	PaymentMethods       string           `gorm:"type:varchar(100)"`
	TotalAmount          decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	TotalRate            decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	AmountPaid           *decimal.Decimal `gorm:"type:decimal(18,2)"`
	TransactionCode      string           `gorm:"type:varchar(100)"`
	PaymentUpdatedAt     *time.Time
	PaymentUpdatedBy     *uuid.UUID            `gorm:"type:uuid"`
	Status               shipping.ParcelStatus `gorm:"type:integer;not null;default:0;index"`
	DispatchedAt         *time.Time
	DispatchTrackingCode string     `gorm:"type:varchar(50)"`
	ContractCustomerID   *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (ParcelModel) TableName() string {
	return "parcels"
}

// ToDomain converts the persistence model to a domain Parcel entity.
func (m *ParcelModel) ToDomain() *shipping.Parcel {
	return &shipping.Parcel{
		BaseAggregateRoot:    m.ToAggregateRoot(),
		Audited:              m.ToAudited(),
		WaybillNumber:        m.WaybillNumber,
		QRCode:               m.QRCode,
		Sender:               m.Sender,
		SenderTelephone:      m.SenderTelephone,
		Receiver:             m.Receiver,
		ReceiverTelephone:    m.ReceiverTelephone,
		Destination:          m.Destination,
		Quantity:             m.Quantity,
		Description:          m.Description,
		Amount:               m.Amount,
		Rate:                 m.Rate,
		PaymentMethods:       m.PaymentMethods,
		TotalAmount:          m.TotalAmount,
		TotalRate:            m.TotalRate,
		AmountPaid:           m.AmountPaid,
		TransactionCode:      m.TransactionCode,
		PaymentUpdatedAt:     m.PaymentUpdatedAt,
		PaymentUpdatedBy:     m.PaymentUpdatedBy,
		Status:               m.Status,
		DispatchedAt:         m.DispatchedAt,
		DispatchTrackingCode: m.DispatchTrackingCode,
		ContractCustomerID:   m.ContractCustomerID,
	}
}

// FromDomain populates the persistence model from a domain Parcel entity.
func (m *ParcelModel) FromDomain(p *shipping.Parcel) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.FromDomainAudited(p.Audited)
	m.WaybillNumber = p.WaybillNumber
	m.QRCode = p.QRCode
	m.Sender = p.Sender
	m.SenderTelephone = p.SenderTelephone
	m.Receiver = p.Receiver
	m.ReceiverTelephone = p.ReceiverTelephone
	m.Destination = p.Destination
	m.Quantity = p.Quantity
	m.Description = p.Description
	m.Amount = p.Amount
	m.Rate = p.Rate
	m.PaymentMethods = p.PaymentMethods
	m.TotalAmount = p.TotalAmount
	m.TotalRate = p.TotalRate
	m.AmountPaid = p.AmountPaid
	m.TransactionCode = p.TransactionCode
	m.PaymentUpdatedAt = p.PaymentUpdatedAt
	m.PaymentUpdatedBy = p.PaymentUpdatedBy
	m.Status = p.Status
	m.DispatchedAt = p.DispatchedAt
	m.DispatchTrackingCode = p.DispatchTrackingCode
	m.ContractCustomerID = p.ContractCustomerID
}

// ParcelModelFromDomain creates a new persistence model from a domain Parcel entity.
func ParcelModelFromDomain(p *shipping.Parcel) *ParcelModel {
	m := &ParcelModel{}
	m.FromDomain(p)
	return m
}

// DispatchModel is the persistence model for the Dispatch domain entity.
type DispatchModel struct {
	AggregateModel
	AuditModel
	DispatchCode  string                  `gorm:"type:varchar(50);not null;uniqueIndex"`
	SourceBranch  string                  `gorm:"type:varchar(100);not null"`
	Destination   string                  `gorm:"type:varchar(100);not null;index"`
	VehicleNumber string                  `gorm:"type:varchar(50);not null"`
	Driver        string                  `gorm:"type:varchar(200);not null"`
	ParcelIDs     UUIDArray               `gorm:"column:parcel_ids"`
	DispatchTime  time.Time               `gorm:"not null;index"`
	Status        shipping.DispatchStatus `gorm:"type:varchar(20);not null;default:'dispatched'"`
}

// TableName returns the table name for GORM
func (DispatchModel) TableName() string {
	return "dispatches"
}

// ToDomain converts the persistence model to a domain Dispatch entity.
func (m *DispatchModel) ToDomain() *shipping.Dispatch {
	ids := make([]uuid.UUID, len(m.ParcelIDs))
	copy(ids, m.ParcelIDs)
	return &shipping.Dispatch{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Audited:           m.ToAudited(),
		DispatchCode:      m.DispatchCode,
		SourceBranch:      m.SourceBranch,
		Destination:       m.Destination,
		VehicleNumber:     m.VehicleNumber,
		Driver:            m.Driver,
		ParcelIDs:         ids,
		DispatchTime:      m.DispatchTime,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain Dispatch entity.
func (m *DispatchModel) FromDomain(d *shipping.Dispatch) {
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	m.FromDomainAudited(d.Audited)
	m.DispatchCode = d.DispatchCode
	m.SourceBranch = d.SourceBranch
	m.Destination = d.Destination
	m.VehicleNumber = d.VehicleNumber
	m.Driver = d.Driver
	m.ParcelIDs = UUIDArray(d.ParcelIDs)
	m.DispatchTime = d.DispatchTime
	m.Status = d.Status
}

// DispatchModelFromDomain creates a new persistence model from a domain Dispatch entity.
func DispatchModelFromDomain(d *shipping.Dispatch) *DispatchModel {
	m := &DispatchModel{}
	m.FromDomain(d)
	return m
}
