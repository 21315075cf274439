package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	appshipping "github.com/wms/backend/internal/application/shipping"
	"github.com/wms/backend/internal/domain/shipping"
)

// ParcelHandler handles parcel intake and tracking
type ParcelHandler struct {
	BaseHandler
	parcelService *appshipping.ParcelService
}

// NewParcelHandler creates a new parcel handler
func NewParcelHandler(parcelService *appshipping.ParcelService) *ParcelHandler {
	return &ParcelHandler{parcelService: parcelService}
}

// List godoc
// @Summary      List parcels
// @Tags         parcels
// @Produce      json
// @Param        status query string false "Comma separated statuses, codes or names"
// @Param        destination query string false "Destination"
// @Param        created_by query string false "Clerk ID"
// @Param        contract_customer_id query string false "Contract customer ID"
// @Param        date_from query string false "YYYY-MM-DD"
// @Param        date_to query string false "YYYY-MM-DD, inclusive"
// @Success      200 {object} APIResponse[[]appshipping.ParcelResponse]
// @Security     BearerAuth
// @Router       /parcels [get]
func (h *ParcelHandler) List(c *gin.Context) {
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	statuses, err := parseStatuses(c.Query("status"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	createdBy, ok := h.queryUUID(c, "created_by")
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

	page, err := h.parcelService.List(c.Request.Context(), appshipping.ParcelListFilter{
		Filter:             filter,
		Statuses:           statuses,
		Destination:        c.Query("destination"),
		CreatedBy:          createdBy,
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
// @Summary      Get parcel
// @Tags         parcels
// @Produce      json
// @Param        id path string true "Parcel ID"
// @Success      200 {object} APIResponse[appshipping.ParcelResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /parcels/{id} [get]
func (h *ParcelHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	parcel, err := h.parcelService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, parcel)
}

// GetByWaybill godoc
// @Summary      Track a parcel by waybill
// @Tags         parcels
// @Produce      json
// @Param        waybill path string true "Waybill number"
// @Success      200 {object} APIResponse[appshipping.ParcelResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /parcels/waybill/{waybill} [get]
func (h *ParcelHandler) GetByWaybill(c *gin.Context) {
	parcel, err := h.parcelService.GetByWaybill(c.Request.Context(), c.Param("waybill"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, parcel)
}

// Create godoc
// @Summary      Register parcel
// @Description  Generates the waybill and QR payload
// @Tags         parcels
// @Accept       json
// @Produce      json
// @Param        request body appshipping.ParcelRequest true "Parcel"
// @Success      201 {object} APIResponse[appshipping.ParcelResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /parcels [post]
func (h *ParcelHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appshipping.ParcelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	parcel, err := h.parcelService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, parcel)
}

// Update godoc
// @Summary      Update pending parcel
// @Tags         parcels
// @Accept       json
// @Produce      json
// @Param        id path string true "Parcel ID"
// @Param        request body appshipping.ParcelRequest true "Parcel"
// @Success      200 {object} APIResponse[appshipping.ParcelResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /parcels/{id} [put]
func (h *ParcelHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req appshipping.ParcelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	parcel, err := h.parcelService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, parcel)
}

// Delete godoc
// @Summary      Delete pending parcel
// @Tags         parcels
// @Param        id path string true "Parcel ID"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /parcels/{id} [delete]
func (h *ParcelHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.parcelService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ChangeStatus godoc
// @Summary      Change parcel status
// @Tags         parcels
// @Accept       json
// @Produce      json
// @Param        id path string true "Parcel ID"
// @Param        request body StatusRequest true "Status code or name"
// @Success      200 {object} APIResponse[appshipping.ParcelResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /parcels/{id}/status [put]
func (h *ParcelHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	parcel, err := h.parcelService.ChangeStatus(c.Request.Context(), id, string(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, parcel)
}

// RecordPayment godoc
// @Summary      Record parcel payment
// @Tags         parcels
// @Accept       json
// @Produce      json
// @Param        id path string true "Parcel ID"
// @Param        request body appshipping.ParcelPaymentRequest true "Payment"
// @Success      200 {object} APIResponse[appshipping.ParcelResponse]
// @Security     BearerAuth
// @Router       /parcels/{id}/payment [put]
func (h *ParcelHandler) RecordPayment(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req appshipping.ParcelPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	parcel, err := h.parcelService.RecordPayment(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, parcel)
}

// Confirm godoc
// @Summary      Confirm parcels in bulk
// @Description  Moves pending parcels to finalized; others are skipped
// @Tags         parcels
// @Accept       json
// @Produce      json
// @Param        request body ParcelIDsRequest true "Parcels"
// @Success      200 {object} APIResponse[appshipping.ConfirmResult]
// @Security     BearerAuth
// @Router       /parcels/confirm [post]
func (h *ParcelHandler) Confirm(c *gin.Context) {
	var req ParcelIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	result, err := h.parcelService.Confirm(c.Request.Context(), req.ParcelIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Count godoc
// @Summary      Parcels registered on a day
// @Tags         parcels
// @Produce      json
// @Param        date query string false "YYYY-MM-DD, today by default"
// @Success      200 {object} APIResponse[appshipping.ParcelCountResponse]
// @Security     BearerAuth
// @Router       /parcels/count [get]
func (h *ParcelHandler) Count(c *gin.Context) {
	day, ok := h.dayOrToday(c)
	if !ok {
		return
	}
	result, err := h.parcelService.CountForDay(c.Request.Context(), day)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Sales godoc
// @Summary      Parcel sales on a day
// @Tags         parcels
// @Produce      json
// @Param        date query string false "YYYY-MM-DD, today by default"
// @Success      200 {object} APIResponse[appshipping.ParcelSalesResponse]
// @Security     BearerAuth
// @Router       /parcels/sales [get]
func (h *ParcelHandler) Sales(c *gin.Context) {
	day, ok := h.dayOrToday(c)
	if !ok {
		return
	}
	result, err := h.parcelService.SalesForDay(c.Request.Context(), day)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ForDispatch godoc
// @Summary      Parcels ready for dispatch
// @Tags         parcels
// @Produce      json
// @Param        destination query string false "Destination"
// @Param        statuses query string false "Comma separated statuses, finalized by default"
// @Success      200 {object} APIResponse[[]appshipping.ParcelResponse]
// @Security     BearerAuth
// @Router       /parcels/for-dispatch [get]
func (h *ParcelHandler) ForDispatch(c *gin.Context) {
	statuses, err := parseStatuses(c.Query("statuses"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	parcels, err := h.parcelService.ForDispatch(c.Request.Context(), c.Query("destination"), statuses)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, parcels)
}

func (h *BaseHandler) dayOrToday(c *gin.Context) (time.Time, bool) {
	day, ok := h.queryDate(c, "date")
	if !ok {
		return time.Time{}, false
	}
	if day == nil {
		return time.Now().UTC(), true
	}
	return *day, true
}

func parseStatuses(raw string) ([]shipping.ParcelStatus, error) {
	if raw == "" {
		return nil, nil
	}
	var out []shipping.ParcelStatus
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		st, err := shipping.ParseParcelStatus(part)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}
