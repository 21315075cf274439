package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/wms/backend/internal/application/finance"
)

// PaymentHandler handles COD collections and cheque deposits
type PaymentHandler struct {
	BaseHandler
	paymentService *finance.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *finance.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// ===================== COD collections =====================

// ListCOD godoc
// @Summary      List COD collections
// @Tags         payments
// @Produce      json
// @Param        status query string false "collected, deposited or reconciled"
// @Param        branch_id query string false "Branch ID"
// @Param        date_from query string false "YYYY-MM-DD"
// @Param        date_to query string false "YYYY-MM-DD, inclusive"
// @Success      200 {object} APIResponse[[]finance.CODCollectionResponse]
// @Security     BearerAuth
// @Router       /payments/cod [get]
func (h *PaymentHandler) ListCOD(c *gin.Context) {
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	branchID, ok := h.queryUUID(c, "branch_id")
	if !ok {
		return
	}
	from, ok := h.queryDate(c, "date_from")
	if !ok {
		return
	}
	to, ok := h.queryDate(c, "date_to")
	if !ok {
		return
	}
	page, err := h.paymentService.ListCOD(c.Request.Context(), finance.CODCollectionListFilter{
		Filter:   filter,
		Status:   c.Query("status"),
		BranchID: branchID,
		DateFrom: from,
		DateTo:   to,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// GetCOD godoc
// @Summary      Get COD collection
// @Tags         payments
// @Produce      json
// @Param        id path string true "Collection ID"
// @Success      200 {object} APIResponse[finance.CODCollectionResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/cod/{id} [get]
func (h *PaymentHandler) GetCOD(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	cod, err := h.paymentService.GetCOD(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cod)
}

// CreateCOD godoc
// @Summary      Record the COD collected on a dispatch
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body finance.CreateCODCollectionRequest true "Collection"
// @Success      201 {object} APIResponse[finance.CODCollectionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/cod [post]
func (h *PaymentHandler) CreateCOD(c *gin.Context) {
	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var req finance.CreateCODCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	cod, err := h.paymentService.CreateCOD(c.Request.Context(), actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cod)
}

// UpdateCOD godoc
// @Summary      Record the banking of a COD collection
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Collection ID"
// @Param        request body finance.UpdateCODCollectionRequest true "Deposit"
// @Success      200 {object} APIResponse[finance.CODCollectionResponse]
// @Security     BearerAuth
// @Router       /payments/cod/{id} [put]
func (h *PaymentHandler) UpdateCOD(c *gin.Context) {
	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req finance.UpdateCODCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	cod, err := h.paymentService.UpdateCOD(c.Request.Context(), actorID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cod)
}

// ===================== Cheques =====================

// ListCheques godoc
// @Summary      List cheque deposits
// @Tags         payments
// @Produce      json
// @Param        status query string false "deposited, cleared, bounced or cancelled"
// @Param        contract_customer_id query string false "Customer ID"
// @Param        date_from query string false "YYYY-MM-DD"
// @Param        date_to query string false "YYYY-MM-DD, inclusive"
// @Success      200 {object} APIResponse[[]finance.ChequeDepositResponse]
// @Security     BearerAuth
// @Router       /payments/cheques [get]
func (h *PaymentHandler) ListCheques(c *gin.Context) {
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	customerID, ok := h.queryUUID(c, "contract_customer_id")
	if !ok {
		return
	}
	from, ok := h.queryDate(c, "date_from")
	if !ok {
		return
	}
	to, ok := h.queryDate(c, "date_to")
	if !ok {
		return
	}
	page, err := h.paymentService.ListCheques(c.Request.Context(), finance.ChequeDepositListFilter{
		Filter:             filter,
		Status:             c.Query("status"),
		ContractCustomerID: customerID,
		DateFrom:           from,
		DateTo:             to,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// GetCheque godoc
// @Summary      Get cheque deposit
// @Tags         payments
// @Produce      json
// @Param        id path string true "Cheque ID"
// @Success      200 {object} APIResponse[finance.ChequeDepositResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/cheques/{id} [get]
func (h *PaymentHandler) GetCheque(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	cheque, err := h.paymentService.GetCheque(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cheque)
}

// CreateCheque godoc
// @Summary      Record a cheque deposit
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body finance.CreateChequeDepositRequest true "Cheque"
// @Success      201 {object} APIResponse[finance.ChequeDepositResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/cheques [post]
func (h *PaymentHandler) CreateCheque(c *gin.Context) {
	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var req finance.CreateChequeDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	cheque, err := h.paymentService.CreateCheque(c.Request.Context(), actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cheque)
}

// UpdateCheque godoc
// @Summary      Clear, bounce or cancel a cheque
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Cheque ID"
// @Param        request body finance.UpdateChequeDepositRequest true "Status change"
// @Success      200 {object} APIResponse[finance.ChequeDepositResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/cheques/{id} [put]
func (h *PaymentHandler) UpdateCheque(c *gin.Context) {
	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req finance.UpdateChequeDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	cheque, err := h.paymentService.UpdateCheque(c.Request.Context(), actorID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cheque)
}

// Summary godoc
// @Summary      COD and cheque totals
// @Tags         payments
// @Produce      json
// @Param        date_from query string false "YYYY-MM-DD"
// @Param        date_to query string false "YYYY-MM-DD, inclusive"
// @Success      200 {object} APIResponse[finance.PaymentSummaryResponse]
// @Security     BearerAuth
// @Router       /payments/summary [get]
func (h *PaymentHandler) Summary(c *gin.Context) {
	from, ok := h.queryDate(c, "date_from")
	if !ok {
		return
	}
	to, ok := h.queryDate(c, "date_to")
	if !ok {
		return
	}
	summary, err := h.paymentService.Summary(c.Request.Context(), from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
