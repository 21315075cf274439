package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/wms/backend/internal/application/finance"
)

// ParcelDepositHandler handles clerk deposits against parcels
type ParcelDepositHandler struct {
	BaseHandler
	depositService *finance.ParcelDepositService
}

// NewParcelDepositHandler creates a new parcel deposit handler
func NewParcelDepositHandler(depositService *finance.ParcelDepositService) *ParcelDepositHandler {
	return &ParcelDepositHandler{depositService: depositService}
}

// List godoc
// @Summary      List parcel deposits
// @Tags         parcel-deposits
// @Produce      json
// @Param        date query string false "Parcel created date, YYYY-MM-DD"
// @Param        clerk_id query string false "Clerk ID"
// @Param        destination query string false "Destination"
// @Success      200 {object} APIResponse[[]finance.ParcelDepositResponse]
// @Security     BearerAuth
// @Router       /parcel-deposits [get]
func (h *ParcelDepositHandler) List(c *gin.Context) {
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	date, ok := h.queryDate(c, "date")
	if !ok {
		return
	}
	clerkID, ok := h.queryUUID(c, "clerk_id")
	if !ok {
		return
	}
	page, err := h.depositService.List(c.Request.Context(), finance.ParcelDepositListFilter{
		Filter:      filter,
		Date:        date,
		ClerkID:     clerkID,
		Destination: c.Query("destination"),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// GetByID godoc
// @Summary      Get parcel deposit
// @Tags         parcel-deposits
// @Produce      json
// @Param        id path string true "Deposit ID"
// @Success      200 {object} APIResponse[finance.ParcelDepositResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /parcel-deposits/{id} [get]
func (h *ParcelDepositHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	deposit, err := h.depositService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, deposit)
}

// GetByParcel godoc
// @Summary      Deposit recorded for a parcel
// @Tags         parcel-deposits
// @Produce      json
// @Param        parcelId path string true "Parcel ID"
// @Success      200 {object} APIResponse[finance.ParcelDepositResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /parcel-deposits/parcel/{parcelId} [get]
func (h *ParcelDepositHandler) GetByParcel(c *gin.Context) {
	parcelID, ok := h.parseUUIDParam(c, "parcelId")
	if !ok {
		return
	}
	deposit, err := h.depositService.GetByParcel(c.Request.Context(), parcelID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, deposit)
}

// Create godoc
// @Summary      Record a parcel deposit
// @Tags         parcel-deposits
// @Accept       json
// @Produce      json
// @Param        request body finance.ParcelDepositRequest true "Deposit"
// @Success      201 {object} APIResponse[finance.ParcelDepositResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /parcel-deposits [post]
func (h *ParcelDepositHandler) Create(c *gin.Context) {
	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var req finance.ParcelDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	deposit, err := h.depositService.Create(c.Request.Context(), actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, deposit)
}

// Update godoc
// @Summary      Update a parcel deposit
// @Tags         parcel-deposits
// @Accept       json
// @Produce      json
// @Param        id path string true "Deposit ID"
// @Param        request body finance.ParcelDepositRequest true "Deposit"
// @Success      200 {object} APIResponse[finance.ParcelDepositResponse]
// @Security     BearerAuth
// @Router       /parcel-deposits/{id} [put]
func (h *ParcelDepositHandler) Update(c *gin.Context) {
	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req finance.ParcelDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	deposit, err := h.depositService.Update(c.Request.Context(), actorID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, deposit)
}

// Upsert godoc
// @Summary      Create or update the deposit of a parcel
// @Tags         parcel-deposits
// @Accept       json
// @Produce      json
// @Param        parcelId path string true "Parcel ID"
// @Param        request body finance.ParcelDepositRequest true "Deposit"
// @Success      200 {object} APIResponse[finance.ParcelDepositResponse]
// @Security     BearerAuth
// @Router       /parcel-deposits/parcel/{parcelId} [put]
func (h *ParcelDepositHandler) Upsert(c *gin.Context) {
	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	parcelID, ok := h.parseUUIDParam(c, "parcelId")
	if !ok {
		return
	}
	var req finance.ParcelDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	deposit, err := h.depositService.Upsert(c.Request.Context(), actorID, parcelID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, deposit)
}

// Delete godoc
// @Summary      Delete a parcel deposit
// @Tags         parcel-deposits
// @Param        id path string true "Deposit ID"
// @Success      204
// @Security     BearerAuth
// @Router       /parcel-deposits/{id} [delete]
func (h *ParcelDepositHandler) Delete(c *gin.Context) {
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

// ClerkSummaries godoc
// @Summary      Deposits on paid parcels grouped by clerk
// @Tags         parcel-deposits
// @Produce      json
// @Param        date query string false "YYYY-MM-DD, today by default"
// @Param        destination query string false "Destination"
// @Success      200 {object} APIResponse[[]finance.ClerkSummaryResponse]
// @Security     BearerAuth
// @Router       /parcel-deposits/clerk-summary [get]
func (h *ParcelDepositHandler) ClerkSummaries(c *gin.Context) {
	date, ok := h.queryDate(c, "date")
	if !ok {
		return
	}
	summaries, err := h.depositService.ClerkSummaries(c.Request.Context(), date, c.Query("destination"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summaries)
}

// ClerkWindow godoc
// @Summary      One clerk's collection window
// @Description  The current month from the 8th on, otherwise the previous month through the 7th
// @Tags         parcel-deposits
// @Produce      json
// @Param        userId path string true "Clerk ID"
// @Param        date query string false "YYYY-MM-DD, today by default"
// @Success      200 {object} APIResponse[finance.ClerkWindowResponse]
// @Security     BearerAuth
// @Router       /parcel-deposits/clerk-summary/user/{userId} [get]
func (h *ParcelDepositHandler) ClerkWindow(c *gin.Context) {
	clerkID, ok := h.parseUUIDParam(c, "userId")
	if !ok {
		return
	}
	date, ok := h.queryDate(c, "date")
	if !ok {
		return
	}
	window, err := h.depositService.ClerkWindow(c.Request.Context(), clerkID, date)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, window)
}
