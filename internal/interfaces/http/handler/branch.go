package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/wms/backend/internal/application/identity"
)

// BranchHandler handles branch offices
type BranchHandler struct {
	BaseHandler
	branchService *identity.BranchService
}

// NewBranchHandler creates a new branch handler
func NewBranchHandler(branchService *identity.BranchService) *BranchHandler {
	return &BranchHandler{branchService: branchService}
}

// List godoc
// @Summary      List branches
// @Tags         branches
// @Produce      json
// @Param        search query string false "Name search"
// @Success      200 {object} APIResponse[[]identity.BranchResponse]
// @Security     BearerAuth
// @Router       /branches [get]
func (h *BranchHandler) List(c *gin.Context) {
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	page, err := h.branchService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// GetByID godoc
// @Summary      Get branch
// @Tags         branches
// @Produce      json
// @Param        id path string true "Branch ID"
// @Success      200 {object} APIResponse[identity.BranchResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /branches/{id} [get]
func (h *BranchHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	branch, err := h.branchService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, branch)
}

// Create godoc
// @Summary      Create branch
// @Tags         branches
// @Accept       json
// @Produce      json
// @Param        request body BranchRequest true "Branch"
// @Success      201 {object} APIResponse[identity.BranchResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /branches [post]
func (h *BranchHandler) Create(c *gin.Context) {
	var req BranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	branch, err := h.branchService.Create(c.Request.Context(), toBranchRequest(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, branch)
}

// Update godoc
// @Summary      Update branch
// @Tags         branches
// @Accept       json
// @Produce      json
// @Param        id path string true "Branch ID"
// @Param        request body BranchRequest true "Branch"
// @Success      200 {object} APIResponse[identity.BranchResponse]
// @Security     BearerAuth
// @Router       /branches/{id} [put]
func (h *BranchHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req BranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	branch, err := h.branchService.Update(c.Request.Context(), id, toBranchRequest(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, branch)
}

// Delete godoc
// @Summary      Delete branch
// @Description  Refused while users are assigned to the branch
// @Tags         branches
// @Param        id path string true "Branch ID"
// @Success      204
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /branches/{id} [delete]
func (h *BranchHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.branchService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func toBranchRequest(req BranchRequest) identity.BranchRequest {
	return identity.BranchRequest{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
	}
}
