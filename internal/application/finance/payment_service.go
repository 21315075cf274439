package finance

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/domain/finance"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shipping"
)

// ===================== COD Collection DTOs =====================

// CODCollectionResponse is the API view of a COD collection
type CODCollectionResponse struct {
	ID              uuid.UUID       `json:"id"`
	DispatchID      uuid.UUID       `json:"dispatch_id"`
	DispatchCode    string          `json:"dispatch_code"`
	DriverName      string          `json:"driver_name"`
	VehicleNumber   string          `json:"vehicle_number"`
	BranchID        *uuid.UUID      `json:"branch_id,omitempty"`
	BranchName      string          `json:"branch_name"`
	TotalCODAmount  decimal.Decimal `json:"total_cod_amount"`
	DepositedAmount decimal.Decimal `json:"deposited_amount"`
	Shortfall       decimal.Decimal `json:"shortfall"`
	CollectionDate  time.Time       `json:"collection_date"`
	DepositDate     *time.Time      `json:"deposit_date,omitempty"`
	Status          string          `json:"status"`
	Notes           string          `json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToCODCollectionResponse converts a domain collection to its API view
func ToCODCollectionResponse(c *finance.CODCollection) CODCollectionResponse {
	return CODCollectionResponse{
		ID:              c.ID,
		DispatchID:      c.DispatchID,
		DispatchCode:    c.DispatchCode,
		DriverName:      c.DriverName,
		VehicleNumber:   c.VehicleNumber,
		BranchID:        c.BranchID,
		BranchName:      c.BranchName,
		TotalCODAmount:  c.TotalCODAmount,
		DepositedAmount: c.DepositedAmount,
		Shortfall:       c.Shortfall,
		CollectionDate:  c.CollectionDate,
		DepositDate:     c.DepositDate,
		Status:          string(c.Status),
		Notes:           c.Notes,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// CreateCODCollectionRequest records the cash collected on a dispatch
type CreateCODCollectionRequest struct {
	DispatchID     uuid.UUID       `json:"dispatch_id" binding:"required"`
	TotalCODAmount decimal.Decimal `json:"total_cod_amount"`
	CollectionDate time.Time       `json:"collection_date"`
	Notes          string          `json:"notes" binding:"max=1000"`
}

// UpdateCODCollectionRequest records what was banked
type UpdateCODCollectionRequest struct {
	DepositedAmount decimal.Decimal `json:"deposited_amount"`
	DepositDate     *time.Time      `json:"deposit_date"`
	Status          string          `json:"status"`
	Notes           *string         `json:"notes" binding:"omitempty,max=1000"`
}

// CODCollectionListFilter contains the query options for listing collections
type CODCollectionListFilter struct {
	shared.Filter
	Status   string
	BranchID *uuid.UUID
	DateFrom *time.Time
	DateTo   *time.Time
}

// ===================== Cheque DTOs =====================

// ChequeDepositResponse is the API view of a cheque
type ChequeDepositResponse struct {
	ID                   uuid.UUID       `json:"id"`
	ChequeNumber         string          `json:"cheque_number"`
	DrawerName           string          `json:"drawer_name"`
	BankName             string          `json:"bank_name"`
	Amount               decimal.Decimal `json:"amount"`
	DepositDate          time.Time       `json:"deposit_date"`
	ClearanceDate        *time.Time      `json:"clearance_date,omitempty"`
	Status               string          `json:"status"`
	RelatedInvoiceNumber string          `json:"related_invoice_number,omitempty"`
	RelatedInvoiceID     *uuid.UUID      `json:"related_invoice_id,omitempty"`
	ContractCustomerID   *uuid.UUID      `json:"contract_customer_id,omitempty"`
	CustomerName         string          `json:"customer_name"`
	BranchID             *uuid.UUID      `json:"branch_id,omitempty"`
	BranchName           string          `json:"branch_name"`
	Notes                string          `json:"notes"`
	BounceReason         string          `json:"bounce_reason,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// ToChequeDepositResponse converts a domain cheque to its API view
func ToChequeDepositResponse(c *finance.ChequeDeposit) ChequeDepositResponse {
	return ChequeDepositResponse{
		ID:                   c.ID,
		ChequeNumber:         c.ChequeNumber,
		DrawerName:           c.DrawerName,
		BankName:             c.BankName,
		Amount:               c.Amount,
		DepositDate:          c.DepositDate,
		ClearanceDate:        c.ClearanceDate,
		Status:               string(c.Status),
		RelatedInvoiceNumber: c.RelatedInvoiceNumber,
		RelatedInvoiceID:     c.RelatedInvoiceID,
		ContractCustomerID:   c.ContractCustomerID,
		CustomerName:         c.CustomerName,
		BranchID:             c.BranchID,
		BranchName:           c.BranchName,
		Notes:                c.Notes,
		BounceReason:         c.BounceReason,
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
}

// CreateChequeDepositRequest records a banked cheque
type CreateChequeDepositRequest struct {
	ChequeNumber       string          `json:"cheque_number" binding:"required,max=50"`
	DrawerName         string          `json:"drawer_name" binding:"required,max=200"`
	BankName           string          `json:"bank_name" binding:"required,max=100"`
	Amount             decimal.Decimal `json:"amount"`
	DepositDate        time.Time       `json:"deposit_date"`
	RelatedInvoiceID   *uuid.UUID      `json:"related_invoice_id"`
	ContractCustomerID *uuid.UUID      `json:"contract_customer_id"`
	CustomerName       string          `json:"customer_name" binding:"max=200"`
	BranchID           *uuid.UUID      `json:"branch_id"`
	BranchName         string          `json:"branch_name" binding:"max=100"`
	Notes              string          `json:"notes" binding:"max=1000"`
}

// UpdateChequeDepositRequest moves a cheque to its outcome
type UpdateChequeDepositRequest struct {
	Status        string     `json:"status" binding:"required"`
	ClearanceDate *time.Time `json:"clearance_date"`
	BounceReason  string     `json:"bounce_reason" binding:"max=500"`
}

// ChequeDepositListFilter contains the query options for listing cheques
type ChequeDepositListFilter struct {
	shared.Filter
	Status             string
	ContractCustomerID *uuid.UUID
	DateFrom           *time.Time
	DateTo             *time.Time
}

// PaymentSummaryResponse totals COD collections and cheques over a period
type PaymentSummaryResponse struct {
	COD struct {
		TotalCollected decimal.Decimal `json:"total_collected"`
		TotalDeposited decimal.Decimal `json:"total_deposited"`
		TotalShortfall decimal.Decimal `json:"total_shortfall"`
		Count          int64           `json:"count"`
	} `json:"cod"`
	Cheques struct {
		TotalAmount   decimal.Decimal `json:"total_amount"`
		ClearedAmount decimal.Decimal `json:"cleared_amount"`
		PendingAmount decimal.Decimal `json:"pending_amount"`
		BouncedAmount decimal.Decimal `json:"bounced_amount"`
		Count         int64           `json:"count"`
	} `json:"cheques"`
}

// ===================== Payment Service =====================

// PaymentService tracks COD cash and customer cheques
type PaymentService struct {
	codRepo      finance.CODCollectionRepository
	chequeRepo   finance.ChequeDepositRepository
	dispatchRepo shipping.DispatchRepository
	branchRepo   identity.BranchRepository
	invoiceRepo  billing.InvoiceRepository
	logger       *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	codRepo finance.CODCollectionRepository,
	chequeRepo finance.ChequeDepositRepository,
	dispatchRepo shipping.DispatchRepository,
	branchRepo identity.BranchRepository,
	invoiceRepo billing.InvoiceRepository,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		codRepo:      codRepo,
		chequeRepo:   chequeRepo,
		dispatchRepo: dispatchRepo,
		branchRepo:   branchRepo,
		invoiceRepo:  invoiceRepo,
		logger:       logger,
	}
}

// ListCOD returns COD collections matching the filter
func (s *PaymentService) ListCOD(ctx context.Context, filter CODCollectionListFilter) (*shared.Paginated[CODCollectionResponse], error) {
	f := finance.CODCollectionFilter{
		Filter:   filter.Filter.Normalize(),
		BranchID: filter.BranchID,
		DateFrom: filter.DateFrom,
		DateTo:   filter.DateTo,
	}
	if filter.Status != "" {
		status := finance.CODStatus(filter.Status)
		if !status.IsValid() {
			return nil, shared.Invalid("Unknown COD status: " + filter.Status)
		}
		f.Status = &status
	}
	rows, total, err := s.codRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]CODCollectionResponse, len(rows))
	for i := range rows {
		items[i] = ToCODCollectionResponse(&rows[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// GetCOD returns one COD collection
func (s *PaymentService) GetCOD(ctx context.Context, id uuid.UUID) (*CODCollectionResponse, error) {
	c, err := s.codRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCODCollectionResponse(c)
	return &resp, nil
}

// CreateCOD records the cash a driver collected on a dispatch
func (s *PaymentService) CreateCOD(ctx context.Context, actorID uuid.UUID, req CreateCODCollectionRequest) (*CODCollectionResponse, error) {
	dispatch, err := s.dispatchRepo.FindByID(ctx, req.DispatchID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.Invalid("Dispatch does not exist")
		}
		return nil, err
	}
	exists, err := s.codRepo.ExistsForDispatch(ctx, dispatch.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.Conflict("A COD collection already exists for dispatch " + dispatch.DispatchCode)
	}

	ref := finance.DispatchRef{
		ID:            dispatch.ID,
		Code:          dispatch.DispatchCode,
		DriverName:    dispatch.Driver,
		VehicleNumber: dispatch.VehicleNumber,
		BranchName:    dispatch.SourceBranch,
	}
	if branch, err := s.branchRepo.FindByName(ctx, dispatch.SourceBranch); err == nil {
		ref.BranchID = &branch.ID
	} else if !shared.IsNotFound(err) {
		return nil, err
	}

	c, err := finance.NewCODCollection(ref, req.TotalCODAmount, req.CollectionDate, req.Notes, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.codRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("COD collection recorded",
		zap.String("dispatch_code", c.DispatchCode),
		zap.String("total", c.TotalCODAmount.String()))
	resp := ToCODCollectionResponse(c)
	return &resp, nil
}

// UpdateCOD records what was banked and recomputes the shortfall
func (s *PaymentService) UpdateCOD(ctx context.Context, actorID, id uuid.UUID, req UpdateCODCollectionRequest) (*CODCollectionResponse, error) {
	c, err := s.codRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.RecordDeposit(req.DepositedAmount, req.DepositDate, finance.CODStatus(req.Status), req.Notes, actorID); err != nil {
		return nil, err
	}
	if err := s.codRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	if c.Shortfall.IsPositive() && c.Status != finance.CODStatusCollected {
		s.logger.Warn("COD deposit short",
			zap.String("dispatch_code", c.DispatchCode),
			zap.String("shortfall", c.Shortfall.String()))
	}
	resp := ToCODCollectionResponse(c)
	return &resp, nil
}

// ListCheques returns cheques matching the filter
func (s *PaymentService) ListCheques(ctx context.Context, filter ChequeDepositListFilter) (*shared.Paginated[ChequeDepositResponse], error) {
	f := finance.ChequeDepositFilter{
		Filter:             filter.Filter.Normalize(),
		ContractCustomerID: filter.ContractCustomerID,
		DateFrom:           filter.DateFrom,
		DateTo:             filter.DateTo,
	}
	if filter.Status != "" {
		status := finance.ChequeStatus(filter.Status)
		if !status.IsValid() {
			return nil, shared.Invalid("Unknown cheque status: " + filter.Status)
		}
		f.Status = &status
	}
	rows, total, err := s.chequeRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]ChequeDepositResponse, len(rows))
	for i := range rows {
		items[i] = ToChequeDepositResponse(&rows[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// GetCheque returns one cheque
func (s *PaymentService) GetCheque(ctx context.Context, id uuid.UUID) (*ChequeDepositResponse, error) {
	c, err := s.chequeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToChequeDepositResponse(c)
	return &resp, nil
}

// CreateCheque records a banked cheque, linking it to an invoice when one is named
func (s *PaymentService) CreateCheque(ctx context.Context, actorID uuid.UUID, req CreateChequeDepositRequest) (*ChequeDepositResponse, error) {
	number := strings.TrimSpace(req.ChequeNumber)
	exists, err := s.chequeRepo.ExistsByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.Conflict("A cheque with number " + number + " already exists")
	}

	details := finance.ChequeDetails{
		ChequeNumber:       number,
		DrawerName:         req.DrawerName,
		BankName:           req.BankName,
		Amount:             req.Amount,
		DepositDate:        req.DepositDate,
		RelatedInvoiceID:   req.RelatedInvoiceID,
		ContractCustomerID: req.ContractCustomerID,
		CustomerName:       req.CustomerName,
		BranchID:           req.BranchID,
		BranchName:         req.BranchName,
		Notes:              req.Notes,
	}
	if req.RelatedInvoiceID != nil {
		inv, err := s.invoiceRepo.FindByID(ctx, *req.RelatedInvoiceID)
		if err != nil {
			if shared.IsNotFound(err) {
				return nil, shared.Invalid("Related invoice does not exist")
			}
			return nil, err
		}
		details.RelatedInvoiceNumber = inv.InvoiceNumber
		if details.ContractCustomerID == nil {
			details.ContractCustomerID = &inv.ContractCustomerID
		}
	}

	c, err := finance.NewChequeDeposit(details, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.chequeRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("Cheque deposited",
		zap.String("cheque_number", c.ChequeNumber),
		zap.String("amount", c.Amount.String()))
	resp := ToChequeDepositResponse(c)
	return &resp, nil
}

// UpdateCheque records the clearing outcome of a cheque
func (s *PaymentService) UpdateCheque(ctx context.Context, actorID, id uuid.UUID, req UpdateChequeDepositRequest) (*ChequeDepositResponse, error) {
	c, err := s.chequeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.UpdateStatus(finance.ChequeStatus(req.Status), req.ClearanceDate, req.BounceReason, actorID); err != nil {
		return nil, err
	}
	if err := s.chequeRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	if c.Status == finance.ChequeStatusBounced {
		s.logger.Warn("Cheque bounced",
			zap.String("cheque_number", c.ChequeNumber),
			zap.String("reason", c.BounceReason))
	}
	resp := ToChequeDepositResponse(c)
	return &resp, nil
}

// Summary totals COD collections and cheques between two inclusive days
func (s *PaymentService) Summary(ctx context.Context, from, to *time.Time) (*PaymentSummaryResponse, error) {
	cod, err := s.codRepo.Summarize(ctx, from, to)
	if err != nil {
		return nil, err
	}
	cheques, err := s.chequeRepo.Summarize(ctx, from, to)
	if err != nil {
		return nil, err
	}

	var out PaymentSummaryResponse
	out.COD.TotalCollected = cod.TotalCollected
	out.COD.TotalDeposited = cod.TotalDeposited
	out.COD.TotalShortfall = cod.TotalShortfall
	out.COD.Count = cod.Count
	out.Cheques.TotalAmount = cheques.TotalAmount
	out.Cheques.ClearedAmount = cheques.ClearedAmount
	out.Cheques.PendingAmount = cheques.PendingAmount
	out.Cheques.BouncedAmount = cheques.BouncedAmount
	out.Cheques.Count = cheques.Count
	return &out, nil
}
