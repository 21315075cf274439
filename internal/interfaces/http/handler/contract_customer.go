package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/wms/backend/internal/application/billing"
)

// ContractCustomerHandler handles invoiced account customers
type ContractCustomerHandler struct {
	BaseHandler
	customerService *billing.ContractCustomerService
}

// NewContractCustomerHandler creates a new contract customer handler
func NewContractCustomerHandler(customerService *billing.ContractCustomerService) *ContractCustomerHandler {
	return &ContractCustomerHandler{customerService: customerService}
}

// List godoc
// @Summary      List contract customers
// @Description  Active customers ordered by name
// @Tags         contract-customers
// @Produce      json
// @Param        include_inactive query bool false "Include deactivated customers"
// @Success      200 {object} APIResponse[[]billing.CustomerResponse]
// @Security     BearerAuth
// @Router       /contract-customers [get]
func (h *ContractCustomerHandler) List(c *gin.Context) {
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	includeInactive, ok := h.queryBool(c, "include_inactive")
	if !ok {
		return
	}
	page, err := h.customerService.List(c.Request.Context(), billing.CustomerListFilter{
		Filter:          filter,
		IncludeInactive: includeInactive != nil && *includeInactive,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// GetByID godoc
// @Summary      Get contract customer
// @Tags         contract-customers
// @Produce      json
// @Param        id path string true "Customer ID"
// @Success      200 {object} APIResponse[billing.CustomerResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contract-customers/{id} [get]
func (h *ContractCustomerHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	customer, err := h.customerService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Create godoc
// @Summary      Create contract customer
// @Tags         contract-customers
// @Accept       json
// @Produce      json
// @Param        request body billing.CustomerRequest true "Customer"
// @Success      201 {object} APIResponse[billing.CustomerResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contract-customers [post]
func (h *ContractCustomerHandler) Create(c *gin.Context) {
	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var req billing.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	customer, err := h.customerService.Create(c.Request.Context(), actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, customer)
}

// Update godoc
// @Summary      Update contract customer
// @Tags         contract-customers
// @Accept       json
// @Produce      json
// @Param        id path string true "Customer ID"
// @Param        request body billing.CustomerRequest true "Customer"
// @Success      200 {object} APIResponse[billing.CustomerResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contract-customers/{id} [put]
func (h *ContractCustomerHandler) Update(c *gin.Context) {
	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req billing.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	customer, err := h.customerService.Update(c.Request.Context(), actorID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Delete godoc
// @Summary      Delete contract customer
// @Description  Customers with invoices are deactivated instead
// @Tags         contract-customers
// @Param        id path string true "Customer ID"
// @Success      204
// @Security     BearerAuth
// @Router       /contract-customers/{id} [delete]
func (h *ContractCustomerHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if _, err := h.customerService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Invoices godoc
// @Summary      Invoices of a contract customer
// @Tags         contract-customers
// @Produce      json
// @Param        id path string true "Customer ID"
// @Success      200 {object} APIResponse[[]billing.InvoiceResponse]
// @Security     BearerAuth
// @Router       /contract-customers/{id}/invoices [get]
func (h *ContractCustomerHandler) Invoices(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	invoices, err := h.customerService.Invoices(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoices)
}
