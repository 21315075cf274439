package shipping

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shipping"
)

// Actor identifies the signed-in user performing an operation
type Actor struct {
	UserID   uuid.UUID
	BranchID *uuid.UUID
}

// ParcelRequest carries the clerk-entered parcel fields
type ParcelRequest struct {
	Sender             string           `json:"sender" binding:"required,max=200"`
	SenderTelephone    string           `json:"sender_telephone" binding:"required,max=50"`
	Receiver           string           `json:"receiver" binding:"required,max=200"`
	ReceiverTelephone  string           `json:"receiver_telephone" binding:"required,max=50"`
	Destination        string           `json:"destination" binding:"required,max=100"`
	Quantity           *int             `json:"quantity" binding:"omitempty,min=1"`
	Description        string           `json:"description" binding:"max=1000"`
	Amount             *decimal.Decimal `json:"amount"`
	Rate               *decimal.Decimal `json:"rate"`
	TotalAmount        *decimal.Decimal `json:"total_amount"`
	TotalRate          *decimal.Decimal `json:"total_rate"`
	PaymentMethods     string           `json:"payment_methods" binding:"max=100"`
	ContractCustomerID *uuid.UUID       `json:"contract_customer_id"`
}

func (r ParcelRequest) details() shipping.ParcelDetails {
	return shipping.ParcelDetails{
		Sender:             r.Sender,
		SenderTelephone:    r.SenderTelephone,
		Receiver:           r.Receiver,
		ReceiverTelephone:  r.ReceiverTelephone,
		Destination:        r.Destination,
		Quantity:           r.Quantity,
		Description:        r.Description,
		Amount:             r.Amount,
		Rate:               r.Rate,
		TotalAmount:        r.TotalAmount,
		TotalRate:          r.TotalRate,
		PaymentMethods:     r.PaymentMethods,
		ContractCustomerID: r.ContractCustomerID,
	}
}

// ParcelPaymentRequest records what the sender paid
type ParcelPaymentRequest struct {
	AmountPaid      decimal.Decimal `json:"amount_paid" binding:"required"`
	PaymentMethods  string          `json:"payment_methods" binding:"max=100"`
	TransactionCode string          `json:"transaction_code" binding:"max=100"`
}

// ParcelListFilter contains the query options for listing parcels
type ParcelListFilter struct {
	shared.Filter
	Statuses           []shipping.ParcelStatus
	Destination        string
	CreatedBy          *uuid.UUID
	ContractCustomerID *uuid.UUID
	DateFrom           *time.Time
	DateTo             *time.Time // inclusive calendar day
}

// ParcelResponse is the API view of a parcel
type ParcelResponse struct {
	ID                   uuid.UUID        `json:"id"`
	WaybillNumber        string           `json:"waybill_number"`
	QRCode               string           `json:"qr_code"`
	Sender               string           `json:"sender"`
	SenderTelephone      string           `json:"sender_telephone"`
	Receiver             string           `json:"receiver"`
	ReceiverTelephone    string           `json:"receiver_telephone"`
	Destination          string           `json:"destination"`
	Quantity             *int             `json:"quantity,omitempty"`
	Description          string           `json:"description"`
	Amount               *decimal.Decimal `json:"amount,omitempty"`
	Rate                 *decimal.Decimal `json:"rate,omitempty"`
	PaymentMethods       string           `json:"payment_methods"`
	TotalAmount          decimal.Decimal  `json:"total_amount"`
	TotalRate            decimal.Decimal  `json:"total_rate"`
	AmountPaid           *decimal.Decimal `json:"amount_paid,omitempty"`
	TransactionCode      string           `json:"transaction_code,omitempty"`
	PaymentUpdatedAt     *time.Time       `json:"payment_updated_at,omitempty"`
	IsPaid               bool             `json:"is_paid"`
	Status               int              `json:"status"`
	StatusName           string           `json:"status_name"`
	DispatchedAt         *time.Time       `json:"dispatched_at,omitempty"`
	DispatchTrackingCode string           `json:"dispatch_tracking_code,omitempty"`
	ContractCustomerID   *uuid.UUID       `json:"contract_customer_id,omitempty"`
	CreatedBy            *uuid.UUID       `json:"created_by,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
	Version              int              `json:"version"`
}

// ToParcelResponse converts a domain parcel to its API view
func ToParcelResponse(p *shipping.Parcel) ParcelResponse {
	return ParcelResponse{
		ID:                   p.ID,
		WaybillNumber:        p.WaybillNumber,
		QRCode:               p.QRCode,
		Sender:               p.Sender,
		SenderTelephone:      p.SenderTelephone,
		Receiver:             p.Receiver,
		ReceiverTelephone:    p.ReceiverTelephone,
		Destination:          p.Destination,
		Quantity:             p.Quantity,
		Description:          p.Description,
		Amount:               p.Amount,
		Rate:                 p.Rate,
		PaymentMethods:       p.PaymentMethods,
		TotalAmount:          p.TotalAmount,
		TotalRate:            p.TotalRate,
		AmountPaid:           p.AmountPaid,
		TransactionCode:      p.TransactionCode,
		PaymentUpdatedAt:     p.PaymentUpdatedAt,
		IsPaid:               p.IsPaid(),
		Status:               int(p.Status),
		StatusName:           p.Status.String(),
		DispatchedAt:         p.DispatchedAt,
		DispatchTrackingCode: p.DispatchTrackingCode,
		ContractCustomerID:   p.ContractCustomerID,
		CreatedBy:            p.CreatedBy,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
		Version:              p.Version,
	}
}

func toParcelResponses(parcels []shipping.Parcel) []ParcelResponse {
	out := make([]ParcelResponse, len(parcels))
	for i := range parcels {
		out[i] = ToParcelResponse(&parcels[i])
	}
	return out
}

// ParcelCountResponse is the number of parcels registered on a day
type ParcelCountResponse struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// ParcelSalesResponse summarises one day's parcel takings
type ParcelSalesResponse struct {
	Date        string          `json:"date"`
	ParcelCount int64           `json:"parcel_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
}

// ConfirmResult reports how many parcels a bulk confirm finalized
type ConfirmResult struct {
	Confirmed int      `json:"confirmed"`
	Skipped   []string `json:"skipped,omitempty"`
}

// CreateDispatchRequest contains the input for creating a dispatch
type CreateDispatchRequest struct {
	SourceBranch  string      `json:"source_branch" binding:"required,max=100"`
	Destination   string      `json:"destination" binding:"max=100"`
	VehicleNumber string      `json:"vehicle_number" binding:"required,max=50"`
	Driver        string      `json:"driver" binding:"required,max=100"`
	ParcelIDs     []uuid.UUID `json:"parcel_ids" binding:"required,min=1"`
}

// DispatchListFilter contains the query options for listing dispatches
type DispatchListFilter struct {
	shared.Filter
	Status       string
	Destination  string
	SourceBranch string
	DateFrom     *time.Time
	DateTo       *time.Time // inclusive calendar day
}

// DispatchResponse is the API view of a dispatch
type DispatchResponse struct {
	ID            uuid.UUID        `json:"id"`
	DispatchCode  string           `json:"dispatch_code"`
	SourceBranch  string           `json:"source_branch"`
	Destination   string           `json:"destination"`
	VehicleNumber string           `json:"vehicle_number"`
	Driver        string           `json:"driver"`
	ParcelIDs     []uuid.UUID      `json:"parcel_ids"`
	ParcelCount   int              `json:"parcel_count"`
	DispatchTime  time.Time        `json:"dispatch_time"`
	Status        string           `json:"status"`
	CreatedBy     *uuid.UUID       `json:"created_by,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	Version       int              `json:"version"`
	Parcels       []ParcelResponse `json:"parcels,omitempty"`
}

// ToDispatchResponse converts a domain dispatch to its API view
func ToDispatchResponse(d *shipping.Dispatch) DispatchResponse {
	return DispatchResponse{
		ID:            d.ID,
		DispatchCode:  d.DispatchCode,
		SourceBranch:  d.SourceBranch,
		Destination:   d.Destination,
		VehicleNumber: d.VehicleNumber,
		Driver:        d.Driver,
		ParcelIDs:     d.ParcelIDs,
		ParcelCount:   len(d.ParcelIDs),
		DispatchTime:  d.DispatchTime,
		Status:        string(d.Status),
		CreatedBy:     d.CreatedBy,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
		Version:       d.Version,
	}
}
