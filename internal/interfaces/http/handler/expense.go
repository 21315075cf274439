package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/wms/backend/internal/application/finance"
)

// ExpenseHandler handles daily expenses and their approval
type ExpenseHandler struct {
	BaseHandler
	expenseService *finance.ExpenseService
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(expenseService *finance.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// List godoc
// @Summary      List expenses
// @Tags         expenses
// @Produce      json
// @Param        status query string false "pending, approved or rejected"
// @Param        category query string false "Category"
// @Param        branch_id query string false "Branch ID"
// @Param        clerk_id query string false "Clerk ID"
// @Param        start_date query string false "YYYY-MM-DD"
// @Param        end_date query string false "YYYY-MM-DD, inclusive"
// @Success      200 {object} APIResponse[[]finance.ExpenseResponse]
// @Security     BearerAuth
// @Router       /expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	branchID, ok := h.queryUUID(c, "branch_id")
	if !ok {
		return
	}
	clerkID, ok := h.queryUUID(c, "clerk_id")
	if !ok {
		return
	}
	start, ok := h.queryDate(c, "start_date")
	if !ok {
		return
	}
	end, ok := h.queryDate(c, "end_date")
	if !ok {
		return
	}
	page, err := h.expenseService.List(c.Request.Context(), finance.ExpenseListFilter{
		Filter:    filter,
		Status:    c.Query("status"),
		Category:  c.Query("category"),
		BranchID:  branchID,
		ClerkID:   clerkID,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// Pending godoc
// @Summary      Expenses awaiting a decision
// @Tags         expenses
// @Produce      json
// @Success      200 {object} APIResponse[[]finance.ExpenseResponse]
// @Security     BearerAuth
// @Router       /expenses/pending [get]
func (h *ExpenseHandler) Pending(c *gin.Context) {
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	page, err := h.expenseService.Pending(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// Summary godoc
// @Summary      Expense totals
// @Tags         expenses
// @Produce      json
// @Param        start_date query string false "YYYY-MM-DD"
// @Param        end_date query string false "YYYY-MM-DD, inclusive"
// @Success      200 {object} APIResponse[finance.ExpenseSummaryResponse]
// @Security     BearerAuth
// @Router       /expenses/summary [get]
func (h *ExpenseHandler) Summary(c *gin.Context) {
	start, ok := h.queryDate(c, "start_date")
	if !ok {
		return
	}
	end, ok := h.queryDate(c, "end_date")
	if !ok {
		return
	}
	summary, err := h.expenseService.Summary(c.Request.Context(), start, end)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// GetByID godoc
// @Summary      Get expense
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID"
// @Success      200 {object} APIResponse[finance.ExpenseResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /expenses/{id} [get]
func (h *ExpenseHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	expense, err := h.expenseService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// Create godoc
// @Summary      Record an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body finance.ExpenseRequest true "Expense"
// @Success      201 {object} APIResponse[finance.ExpenseResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	callerID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var req finance.ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	expense, err := h.expenseService.Create(c.Request.Context(), callerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, expense)
}

// Update godoc
// @Summary      Update a pending expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id path string true "Expense ID"
// @Param        request body finance.UpdateExpenseRequest true "Fields to change"
// @Success      200 {object} APIResponse[finance.ExpenseResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req finance.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	expense, err := h.expenseService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// Delete godoc
// @Summary      Delete a pending expense
// @Tags         expenses
// @Param        id path string true "Expense ID"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.expenseService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Decide godoc
// @Summary      Approve or reject an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body finance.ApproveExpenseRequest true "Decision"
// @Success      200 {object} APIResponse[finance.ExpenseResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /expenses/approve [post]
func (h *ExpenseHandler) Decide(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req finance.ApproveExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	expense, err := h.expenseService.Decide(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// UploadReceipt godoc
// @Summary      Attach a receipt image or PDF
// @Tags         expenses
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Expense ID"
// @Param        file formData file true "Receipt"
// @Success      200 {object} APIResponse[finance.ExpenseResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /expenses/{id}/receipt [post]
func (h *ExpenseHandler) UploadReceipt(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "A receipt file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.BadRequest(c, "Unreadable receipt file")
		return
	}
	defer file.Close()

	expense, err := h.expenseService.UploadReceipt(c.Request.Context(), id, finance.ReceiptUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// ReceiptURL godoc
// @Summary      Presigned link to an expense receipt
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID"
// @Success      200 {object} APIResponse[finance.ReceiptLink]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /expenses/{id}/receipt [get]
func (h *ExpenseHandler) ReceiptURL(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	link, err := h.expenseService.ReceiptURL(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, link)
}
