package finance

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/application/event"
	"github.com/wms/backend/internal/domain/finance"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/storage"
)

// ===================== Expense DTOs =====================

// ExpenseResponse is the API view of a daily expense
type ExpenseResponse struct {
	ID              uuid.UUID       `json:"id"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	Date            time.Time       `json:"date"`
	Vendor          string          `json:"vendor"`
	ReceiptNumber   string          `json:"receipt_number"`
	HasReceipt      bool            `json:"has_receipt"`
	Status          string          `json:"status"`
	ApprovalNotes   string          `json:"approval_notes,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	BranchID        *uuid.UUID      `json:"branch_id,omitempty"`
	BranchName      string          `json:"branch_name"`
	ClerkID         *uuid.UUID      `json:"clerk_id,omitempty"`
	ClerkName       string          `json:"clerk_name"`
	CreatedBy       *uuid.UUID      `json:"created_by,omitempty"`
	CreatedByName   string          `json:"created_by_name"`
	ApprovedBy      *uuid.UUID      `json:"approved_by,omitempty"`
	ApprovedByName  string          `json:"approved_by_name,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// ToExpenseResponse converts a domain expense to its API view
func ToExpenseResponse(e *finance.DailyExpense) ExpenseResponse {
	return ExpenseResponse{
		ID:              e.ID,
		Category:        string(e.Category),
		Description:     e.Description,
		Amount:          e.Amount,
		Date:            e.Date,
		Vendor:          e.Vendor,
		ReceiptNumber:   e.ReceiptNumber,
		HasReceipt:      e.ReceiptKey != "",
		Status:          string(e.Status),
		ApprovalNotes:   e.ApprovalNotes,
		RejectionReason: e.RejectionReason,
		BranchID:        e.BranchID,
		BranchName:      e.BranchName,
		ClerkID:         e.ClerkID,
		ClerkName:       e.ClerkName,
		CreatedBy:       e.CreatedBy,
		CreatedByName:   e.CreatedByName,
		ApprovedBy:      e.ApprovedBy,
		ApprovedByName:  e.ApprovedByName,
		ApprovedAt:      e.ApprovedAt,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
		Version:         e.Version,
	}
}

// ExpenseRequest carries the editable expense fields
type ExpenseRequest struct {
	Category      string          `json:"category" binding:"required"`
	Description   string          `json:"description" binding:"required,max=500"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Vendor        string          `json:"vendor" binding:"max=200"`
	ReceiptNumber string          `json:"receipt_number" binding:"max=100"`
	ClerkID       *uuid.UUID      `json:"clerk_id"`
	ClerkName     string          `json:"clerk_name" binding:"max=100"`
}

// UpdateExpenseRequest carries partial expense changes; nil fields keep their value
type UpdateExpenseRequest struct {
	Category      *string          `json:"category"`
	Description   *string          `json:"description" binding:"omitempty,max=500"`
	Amount        *decimal.Decimal `json:"amount"`
	Date          *time.Time       `json:"date"`
	Vendor        *string          `json:"vendor" binding:"omitempty,max=200"`
	ReceiptNumber *string          `json:"receipt_number" binding:"omitempty,max=100"`
	ClerkID       *uuid.UUID       `json:"clerk_id"`
	ClerkName     *string          `json:"clerk_name" binding:"omitempty,max=100"`
}

func (r UpdateExpenseRequest) applyTo(d *finance.ExpenseDetails) {
	if r.Category != nil {
		d.Category = finance.ExpenseCategory(*r.Category)
	}
	if r.Description != nil {
		d.Description = *r.Description
	}
	if r.Amount != nil {
		d.Amount = *r.Amount
	}
	if r.Date != nil {
		d.Date = *r.Date
	}
	if r.Vendor != nil {
		d.Vendor = *r.Vendor
	}
	if r.ReceiptNumber != nil {
		d.ReceiptNumber = *r.ReceiptNumber
	}
	// a new clerk drops the old clerk's name
	if r.ClerkID != nil {
		d.ClerkID = r.ClerkID
		d.ClerkName = ""
	}
	if r.ClerkName != nil {
		d.ClerkName = *r.ClerkName
	}
}

// ApproveExpenseRequest decides a pending expense
type ApproveExpenseRequest struct {
	ExpenseID       uuid.UUID `json:"expense_id" binding:"required"`
	Approved        bool      `json:"approved"`
	ApprovalNotes   string    `json:"approval_notes" binding:"max=500"`
	RejectionReason string    `json:"rejection_reason" binding:"max=500"`
}

// ExpenseListFilter contains the query options for listing expenses
type ExpenseListFilter struct {
	shared.Filter
	Status    string
	Category  string
	BranchID  *uuid.UUID
	ClerkID   *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}

// CategoryTotalResponse is one line of the approved spend breakdown
type CategoryTotalResponse struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int64           `json:"count"`
}

// ExpenseSummaryResponse totals expenses by status
type ExpenseSummaryResponse struct {
	TotalExpenses     decimal.Decimal         `json:"total_expenses"`
	PendingExpenses   decimal.Decimal         `json:"pending_expenses"`
	ApprovedExpenses  decimal.Decimal         `json:"approved_expenses"`
	RejectedExpenses  decimal.Decimal         `json:"rejected_expenses"`
	MonthlyTotal      decimal.Decimal         `json:"monthly_total"`
	CategoryBreakdown []CategoryTotalResponse `json:"category_breakdown"`
}

// Caller is the signed-in user acting on an expense
type Caller struct {
	UserID uuid.UUID
	Role   identity.Role
}

// ReceiptUpload is a receipt file received from a client
type ReceiptUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ReceiptLink is a time-limited download URL for a receipt
type ReceiptLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

var errStorageDisabled = shared.InvalidState("storage not configured")

// ===================== Expense Service =====================

// ExpenseService records branch running costs and their approval
type ExpenseService struct {
	expenseRepo finance.DailyExpenseRepository
	userRepo    identity.UserRepository
	branchRepo  identity.BranchRepository
	storage     storage.ObjectStorage
	presignTTL  time.Duration
	publisher   shared.EventPublisher
	logger      *zap.Logger
	now         func() time.Time
}

// NewExpenseService creates a new ExpenseService; objects may be nil when storage is disabled
func NewExpenseService(
	expenseRepo finance.DailyExpenseRepository,
	userRepo identity.UserRepository,
	branchRepo identity.BranchRepository,
	objects storage.ObjectStorage,
	presignTTL time.Duration,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *ExpenseService {
	if presignTTL <= 0 {
		presignTTL = 15 * time.Minute
	}
	return &ExpenseService{
		expenseRepo: expenseRepo,
		userRepo:    userRepo,
		branchRepo:  branchRepo,
		storage:     objects,
		presignTTL:  presignTTL,
		publisher:   publisher,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// List returns expenses matching the filter
func (s *ExpenseService) List(ctx context.Context, filter ExpenseListFilter) (*shared.Paginated[ExpenseResponse], error) {
	f := finance.DailyExpenseFilter{
		Filter:    filter.Filter.Normalize(),
		BranchID:  filter.BranchID,
		ClerkID:   filter.ClerkID,
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
	}
	if filter.Status != "" {
		status := finance.ExpenseStatus(filter.Status)
		if !status.IsValid() {
			return nil, shared.Invalid("Unknown expense status: " + filter.Status)
		}
		f.Status = &status
	}
	if filter.Category != "" {
		category := finance.ExpenseCategory(filter.Category)
		if !category.IsValid() {
			return nil, shared.Invalid("Unknown expense category: " + filter.Category)
		}
		f.Category = &category
	}

	expenses, total, err := s.expenseRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		items[i] = ToExpenseResponse(&expenses[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// Pending returns the approval queue
func (s *ExpenseService) Pending(ctx context.Context, filter shared.Filter) (*shared.Paginated[ExpenseResponse], error) {
	return s.List(ctx, ExpenseListFilter{Filter: filter, Status: string(finance.ExpenseStatusPending)})
}

// GetByID returns one expense
func (s *ExpenseService) GetByID(ctx context.Context, id uuid.UUID) (*ExpenseResponse, error) {
	e, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToExpenseResponse(e)
	return &resp, nil
}

// Summary totals expenses over the inclusive range and the current month
func (s *ExpenseService) Summary(ctx context.Context, start, end *time.Time) (*ExpenseSummaryResponse, error) {
	sum, err := s.expenseRepo.Summarize(ctx, start, end, s.now())
	if err != nil {
		return nil, err
	}
	breakdown := make([]CategoryTotalResponse, len(sum.CategoryBreakdown))
	for i, c := range sum.CategoryBreakdown {
		breakdown[i] = CategoryTotalResponse{Category: string(c.Category), Amount: c.Amount, Count: c.Count}
	}
	return &ExpenseSummaryResponse{
		TotalExpenses:     sum.TotalExpenses,
		PendingExpenses:   sum.PendingExpenses,
		ApprovedExpenses:  sum.ApprovedExpenses,
		RejectedExpenses:  sum.RejectedExpenses,
		MonthlyTotal:      sum.MonthlyTotal,
		CategoryBreakdown: breakdown,
	}, nil
}

// Create records a pending expense on behalf of the caller and their branch
func (s *ExpenseService) Create(ctx context.Context, callerID uuid.UUID, req ExpenseRequest) (*ExpenseResponse, error) {
	user, err := s.userRepo.FindByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	details := s.details(req)
	details.BranchID = user.BranchID
	if user.BranchID != nil {
		branch, err := s.branchRepo.FindByID(ctx, *user.BranchID)
		if err != nil && !shared.IsNotFound(err) {
			return nil, err
		}
		if branch != nil {
			details.BranchName = branch.Name
		}
	}
	if details.ClerkID == nil {
		details.ClerkID = &user.ID
		details.ClerkName = user.FullName()
	}

	e, err := finance.NewDailyExpense(details, finance.Actor{ID: user.ID, Name: user.FullName()})
	if err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Save(ctx, e); err != nil {
		return nil, err
	}

	s.logger.Info("Expense recorded",
		zap.String("expense_id", e.ID.String()),
		zap.String("category", string(e.Category)),
		zap.String("amount", e.Amount.String()))
	resp := ToExpenseResponse(e)
	return &resp, nil
}

// Update edits a pending expense. Only the fields sent change; the branch stays as recorded.
func (s *ExpenseService) Update(ctx context.Context, id uuid.UUID, req UpdateExpenseRequest) (*ExpenseResponse, error) {
	e, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	details := e.Details()
	req.applyTo(&details)
	if err := e.Update(details); err != nil {
		return nil, err
	}
	if err := s.expenseRepo.SaveWithLock(ctx, e); err != nil {
		return nil, err
	}
	resp := ToExpenseResponse(e)
	return &resp, nil
}

// Delete removes a pending expense and its receipt
func (s *ExpenseService) Delete(ctx context.Context, id uuid.UUID) error {
	e, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := e.CanDelete(); err != nil {
		return err
	}
	if err := s.expenseRepo.Delete(ctx, id); err != nil {
		return err
	}
	if e.ReceiptKey != "" && s.storage != nil {
		if err := s.storage.Delete(ctx, e.ReceiptKey); err != nil {
			s.logger.Warn("Failed to delete receipt",
				zap.String("key", e.ReceiptKey),
				zap.Error(err))
		}
	}
	return nil
}

// Decide approves or rejects a pending expense. Only admins and accountants may decide.
func (s *ExpenseService) Decide(ctx context.Context, caller Caller, req ApproveExpenseRequest) (*ExpenseResponse, error) {
	if !caller.Role.CanApproveExpenses() {
		return nil, shared.Forbidden("Only admins and accountants can approve expenses")
	}
	e, err := s.expenseRepo.FindByID(ctx, req.ExpenseID)
	if err != nil {
		return nil, err
	}
	approver := finance.Actor{ID: caller.UserID}
	if u, err := s.userRepo.FindByID(ctx, caller.UserID); err == nil {
		approver.Name = u.FullName()
	} else if !shared.IsNotFound(err) {
		return nil, err
	}

	if req.Approved {
		err = e.Approve(approver, req.ApprovalNotes)
	} else {
		err = e.Reject(approver, req.RejectionReason)
	}
	if err != nil {
		return nil, err
	}
	if err := s.expenseRepo.SaveWithLock(ctx, e); err != nil {
		return nil, err
	}

	s.logger.Info("Expense decided",
		zap.String("expense_id", e.ID.String()),
		zap.String("status", string(e.Status)),
		zap.String("approver", approver.Name))
	event.PublishPending(ctx, s.publisher, s.logger, e)
	resp := ToExpenseResponse(e)
	return &resp, nil
}

// UploadReceipt stores a receipt file and records its key on the expense
func (s *ExpenseService) UploadReceipt(ctx context.Context, id uuid.UUID, upload ReceiptUpload) (*ExpenseResponse, error) {
	if s.storage == nil {
		return nil, errStorageDisabled
	}
	ext, ok := storage.ReceiptExtension(upload.ContentType, upload.Filename)
	if !ok {
		return nil, shared.Invalid("Receipt must be an image or a PDF")
	}
	e, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := storage.ReceiptKey(e.ID, e.Date, ext)
	if err := s.storage.Put(ctx, key, upload.Body, upload.Size, upload.ContentType); err != nil {
		return nil, fmt.Errorf("upload receipt: %w", err)
	}
	previous := e.ReceiptKey
	e.AttachReceipt(key)
	if err := s.expenseRepo.SaveWithLock(ctx, e); err != nil {
		return nil, err
	}
	if previous != "" && previous != key {
		if err := s.storage.Delete(ctx, previous); err != nil {
			s.logger.Warn("Failed to delete replaced receipt", zap.String("key", previous), zap.Error(err))
		}
	}

	resp := ToExpenseResponse(e)
	return &resp, nil
}

// ReceiptURL returns a presigned link to an expense's receipt
func (s *ExpenseService) ReceiptURL(ctx context.Context, id uuid.UUID) (*ReceiptLink, error) {
	if s.storage == nil {
		return nil, errStorageDisabled
	}
	e, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.ReceiptKey == "" {
		return nil, shared.NotFound("Expense has no receipt")
	}
	url, expires, err := s.storage.PresignGet(ctx, e.ReceiptKey, s.presignTTL)
	if err != nil {
		return nil, fmt.Errorf("presign receipt: %w", err)
	}
	return &ReceiptLink{URL: url, ExpiresAt: expires}, nil
}

func (s *ExpenseService) details(req ExpenseRequest) finance.ExpenseDetails {
	return finance.ExpenseDetails{
		Category:      finance.ExpenseCategory(req.Category),
		Description:   req.Description,
		Amount:        req.Amount,
		Date:          req.Date,
		Vendor:        req.Vendor,
		ReceiptNumber: req.ReceiptNumber,
		ClerkID:       req.ClerkID,
		ClerkName:     req.ClerkName,
	}
}
