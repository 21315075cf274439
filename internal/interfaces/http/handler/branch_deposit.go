package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/wms/backend/internal/application/finance"
)

// BranchDepositHandler handles the per-branch COD ledger
type BranchDepositHandler struct {
	BaseHandler
	depositService *finance.BranchDepositService
}

// NewBranchDepositHandler creates a new branch deposit handler
func NewBranchDepositHandler(depositService *finance.BranchDepositService) *BranchDepositHandler {
	return &BranchDepositHandler{depositService: depositService}
}

func (h *BranchDepositHandler) filter(c *gin.Context) (finance.BranchDepositListFilter, bool) {
	base, ok := h.listFilter(c)
	if !ok {
		return finance.BranchDepositListFilter{}, false
	}
	start, ok := h.queryDate(c, "start_date")
	if !ok {
		return finance.BranchDepositListFilter{}, false
	}
	end, ok := h.queryDate(c, "end_date")
	if !ok {
		return finance.BranchDepositListFilter{}, false
	}
	return finance.BranchDepositListFilter{
		Filter:    base,
		Branch:    c.Query("branch"),
		StartDate: start,
		EndDate:   end,
	}, true
}

// List godoc
// @Summary      List branch deposit records
// @Description  Ordered by branch then date
// @Tags         branch-deposits
// @Produce      json
// @Param        branch query string false "Branch name"
// @Param        start_date query string false "YYYY-MM-DD"
// @Param        end_date query string false "YYYY-MM-DD, inclusive"
// @Success      200 {object} APIResponse[[]finance.BranchDepositResponse]
// @Security     BearerAuth
// @Router       /branch-deposits [get]
func (h *BranchDepositHandler) List(c *gin.Context) {
	filter, ok := h.filter(c)
	if !ok {
		return
	}
	page, err := h.depositService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// Summary godoc
// @Summary      Ledger totals per branch
// @Tags         branch-deposits
// @Produce      json
// @Param        branch query string false "Branch name"
// @Param        start_date query string false "YYYY-MM-DD"
// @Param        end_date query string false "YYYY-MM-DD, inclusive"
// @Success      200 {object} APIResponse[[]finance.BranchDepositSummaryResponse]
// @Security     BearerAuth
// @Router       /branch-deposits/summary [get]
func (h *BranchDepositHandler) Summary(c *gin.Context) {
	filter, ok := h.filter(c)
	if !ok {
		return
	}
	summary, err := h.depositService.Summary(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// GetByID godoc
// @Summary      Get branch deposit record
// @Tags         branch-deposits
// @Produce      json
// @Param        id path string true "Record ID"
// @Success      200 {object} APIResponse[finance.BranchDepositResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /branch-deposits/{id} [get]
func (h *BranchDepositHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	record, err := h.depositService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// Create godoc
// @Summary      Record a branch's daily COD and deposit
// @Description  Running debts from that date onwards are recalculated
// @Tags         branch-deposits
// @Accept       json
// @Produce      json
// @Param        request body finance.CreateBranchDepositRequest true "Record"
// @Success      201 {object} APIResponse[finance.BranchDepositResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /branch-deposits [post]
func (h *BranchDepositHandler) Create(c *gin.Context) {
	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var req finance.CreateBranchDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	record, err := h.depositService.Create(c.Request.Context(), actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, record)
}

// Update godoc
// @Summary      Correct a branch deposit record
// @Tags         branch-deposits
// @Accept       json
// @Produce      json
// @Param        id path string true "Record ID"
// @Param        request body finance.UpdateBranchDepositRequest true "Amounts"
// @Success      200 {object} APIResponse[finance.BranchDepositResponse]
// @Security     BearerAuth
// @Router       /branch-deposits/{id} [put]
func (h *BranchDepositHandler) Update(c *gin.Context) {
	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req finance.UpdateBranchDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	record, err := h.depositService.Update(c.Request.Context(), actorID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// Delete godoc
// @Summary      Delete a branch deposit record
// @Tags         branch-deposits
// @Param        id path string true "Record ID"
// @Success      204
// @Security     BearerAuth
// @Router       /branch-deposits/{id} [delete]
func (h *BranchDepositHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.depositService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Recalculate godoc
// @Summary      Re-walk a branch's running debt
// @Tags         branch-deposits
// @Accept       json
// @Produce      json
// @Param        request body finance.RecalculateRequest true "Branch and optional anchor"
// @Success      200 {object} APIResponse[finance.LedgerResult]
// @Security     BearerAuth
// @Router       /branch-deposits/recalculate [post]
func (h *BranchDepositHandler) Recalculate(c *gin.Context) {
	var req finance.RecalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	result, err := h.depositService.Recalculate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
