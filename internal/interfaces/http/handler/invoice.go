package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wms/backend/internal/application/billing"
)

// InvoiceHandler handles contract customer invoices
type InvoiceHandler struct {
	BaseHandler
	invoiceService *billing.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *billing.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// List godoc
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Param        status query string false "draft, sent, partial, paid or cancelled"
// @Param        contract_customer_id query string false "Customer ID"
// @Param        date_from query string false "Issue date from, YYYY-MM-DD"
// @Param        date_to query string false "Issue date to, YYYY-MM-DD, inclusive"
// @Success      200 {object} APIResponse[[]billing.InvoiceResponse]
// @Security     BearerAuth
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
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

	page, err := h.invoiceService.List(c.Request.Context(), billing.InvoiceListFilter{
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

// GetByID godoc
// @Summary      Get invoice with items
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200 {object} APIResponse[billing.InvoiceResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	invoice, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// ByCustomer godoc
// @Summary      Invoices of a customer
// @Tags         invoices
// @Produce      json
// @Param        customerId path string true "Customer ID"
// @Success      200 {object} APIResponse[[]billing.InvoiceResponse]
// @Security     BearerAuth
// @Router       /invoices/customer/{customerId} [get]
func (h *InvoiceHandler) ByCustomer(c *gin.Context) {
	customerID, ok := h.parseUUIDParam(c, "customerId")
	if !ok {
		return
	}
	invoices, err := h.invoiceService.ByCustomer(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoices)
}

// Create godoc
// @Summary      Create draft invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body billing.CreateInvoiceRequest true "Invoice"
// @Success      201 {object} APIResponse[billing.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var req billing.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	invoice, err := h.invoiceService.Create(c.Request.Context(), actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// Update godoc
// @Summary      Update draft invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Param        request body billing.UpdateInvoiceRequest true "Changes"
// @Success      200 {object} APIResponse[billing.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req billing.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	invoice, err := h.invoiceService.Update(c.Request.Context(), actorID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// AddItems godoc
// @Summary      Bill parcels on a draft invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Param        request body billing.InvoiceItemsRequest true "Parcels"
// @Success      200 {object} APIResponse[billing.InvoiceResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/items [post]
func (h *InvoiceHandler) AddItems(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req billing.InvoiceItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	invoice, err := h.invoiceService.AddItems(c.Request.Context(), id, req.ParcelIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// RemoveItem godoc
// @Summary      Remove an item from a draft invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Param        itemId path string true "Item ID"
// @Success      200 {object} APIResponse[billing.InvoiceResponse]
// @Security     BearerAuth
// @Router       /invoices/{id}/items/{itemId} [delete]
func (h *InvoiceHandler) RemoveItem(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.parseUUIDParam(c, "itemId")
	if !ok {
		return
	}
	invoice, err := h.invoiceService.RemoveItem(c.Request.Context(), id, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Send godoc
// @Summary      Send a draft invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200 {object} APIResponse[billing.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/send [post]
func (h *InvoiceHandler) Send(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	invoice, err := h.invoiceService.Send(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// RecordPayment godoc
// @Summary      Record an invoice payment
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Param        request body billing.InvoicePaymentRequest true "Amount"
// @Success      200 {object} APIResponse[billing.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/payment [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req billing.InvoicePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	invoice, err := h.invoiceService.RecordPayment(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Cancel godoc
// @Summary      Cancel an unpaid invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200 {object} APIResponse[billing.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	invoice, err := h.invoiceService.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Delete godoc
// @Summary      Delete a draft invoice
// @Tags         invoices
// @Param        id path string true "Invoice ID"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.invoiceService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UnbilledParcels godoc
// @Summary      Parcels not yet on any invoice
// @Tags         invoices
// @Produce      json
// @Param        contract_customer_id query string false "Customer ID"
// @Param        date_from query string false "YYYY-MM-DD"
// @Param        date_to query string false "YYYY-MM-DD, inclusive"
// @Success      200 {object} APIResponse[[]billing.UnbilledParcel]
// @Security     BearerAuth
// @Router       /invoices/unbilled-parcels [get]
func (h *InvoiceHandler) UnbilledParcels(c *gin.Context) {
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
	parcels, err := h.invoiceService.UnbilledParcels(c.Request.Context(), billing.UnbilledParcelsFilter{
		ContractCustomerID: customerID,
		DateFrom:           from,
		DateTo:             to,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, parcels)
}

// PDF godoc
// @Summary      Invoice document
// @Description  With storage enabled the PDF is archived; redirect=true answers with its presigned URL
// @Tags         invoices
// @Produce      application/pdf
// @Produce      text/html
// @Param        id path string true "Invoice ID"
// @Param        redirect query bool false "Return the stored copy's URL"
// @Success      200 {file} binary
// @Success      302
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/pdf [get]
func (h *InvoiceHandler) PDF(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	redirect, ok := h.queryBool(c, "redirect")
	if !ok {
		return
	}
	doc, err := h.invoiceService.PDF(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if redirect != nil && *redirect && doc.URL != "" {
		if c.GetHeader("Accept") == "application/json" {
			h.Success(c, URLData{URL: doc.URL, ExpiresAt: doc.ExpiresAt.Format(time.RFC3339)})
			return
		}
		c.Redirect(http.StatusFound, doc.URL)
		return
	}
	h.sendDocument(c, doc.Filename, doc.ContentType, doc.Content)
}
