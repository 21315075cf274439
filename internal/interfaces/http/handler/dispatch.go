package handler

import (
	"github.com/gin-gonic/gin"

	appshipping "github.com/wms/backend/internal/application/shipping"
)

// DispatchHandler handles vehicle dispatches
type DispatchHandler struct {
	BaseHandler
	dispatchService *appshipping.DispatchService
}

// NewDispatchHandler creates a new dispatch handler
func NewDispatchHandler(dispatchService *appshipping.DispatchService) *DispatchHandler {
	return &DispatchHandler{dispatchService: dispatchService}
}

// List godoc
// @Summary      List dispatches
// @Tags         dispatches
// @Produce      json
// @Param        status query string false "dispatched, arrived or cancelled"
// @Param        destination query string false "Destination"
// @Param        source_branch query string false "Source branch"
// @Param        date_from query string false "YYYY-MM-DD"
// @Param        date_to query string false "YYYY-MM-DD, inclusive"
// @Success      200 {object} APIResponse[[]appshipping.DispatchResponse]
// @Security     BearerAuth
// @Router       /dispatches [get]
func (h *DispatchHandler) List(c *gin.Context) {
	filter, ok := h.listFilter(c)
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

	page, err := h.dispatchService.List(c.Request.Context(), appshipping.DispatchListFilter{
		Filter:       filter,
		Status:       c.Query("status"),
		Destination:  c.Query("destination"),
		SourceBranch: c.Query("source_branch"),
		DateFrom:     from,
		DateTo:       to,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// GetByID godoc
// @Summary      Get dispatch with its parcels
// @Tags         dispatches
// @Produce      json
// @Param        id path string true "Dispatch ID"
// @Success      200 {object} APIResponse[appshipping.DispatchResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /dispatches/{id} [get]
func (h *DispatchHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	dispatch, err := h.dispatchService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dispatch)
}

// Create godoc
// @Summary      Dispatch finalized parcels
// @Tags         dispatches
// @Accept       json
// @Produce      json
// @Param        request body appshipping.CreateDispatchRequest true "Dispatch"
// @Success      201 {object} APIResponse[appshipping.DispatchResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /dispatches [post]
func (h *DispatchHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appshipping.CreateDispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	dispatch, err := h.dispatchService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dispatch)
}

// ChangeStatus godoc
// @Summary      Mark a dispatch arrived or cancelled
// @Tags         dispatches
// @Accept       json
// @Produce      json
// @Param        id path string true "Dispatch ID"
// @Param        request body StatusRequest true "arrived or cancelled"
// @Success      200 {object} APIResponse[appshipping.DispatchResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /dispatches/{id}/status [put]
func (h *DispatchHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	dispatch, err := h.dispatchService.ChangeStatus(c.Request.Context(), id, string(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dispatch)
}

// Note godoc
// @Summary      Dispatch note
// @Description  PDF when rendering is enabled, otherwise the HTML source
// @Tags         dispatches
// @Produce      application/pdf
// @Produce      text/html
// @Param        id path string true "Dispatch ID"
// @Success      200 {file} binary
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /dispatches/{id}/note [get]
func (h *DispatchHandler) Note(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	doc, err := h.dispatchService.Note(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.sendDocument(c, doc.Filename, doc.ContentType, doc.Content)
}
