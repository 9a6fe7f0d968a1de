package handler

import (
	"net/http"

	"branchpos/internal/apierror"
	"branchpos/internal/dto"
	"branchpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BranchesHandler struct{ svc service.BranchService }

func NewBranchesHandler(svc service.BranchService) *BranchesHandler {
	return &BranchesHandler{svc: svc}
}

// Create godoc
// @Summary      Create a branch
// @Tags         branches
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateBranchRequest true "Branch"
// @Success      201  {object} dto.BranchResponse
// @Failure      400  {object} apierror.APIError
// @Router       /api/branches [post]
func (h *BranchesHandler) Create(c *gin.Context) {
	var req dto.CreateBranchRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List branches
// @Tags         branches
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.BranchResponse
// @Router       /api/branches [get]
func (h *BranchesHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Branch by id
// @Tags         branches
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Branch UUID"
// @Success      200 {object} dto.BranchResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/branches/{id} [get]
func (h *BranchesHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Update a branch
// @Tags         branches
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                  true "Branch UUID"
// @Param        body body dto.UpdateBranchRequest true "Fields to update"
// @Success      200  {object} dto.BranchResponse
// @Failure      404  {object} apierror.APIError
// @Router       /api/branches/{id} [put]
func (h *BranchesHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.UpdateBranchRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Delete a branch
// @Description  Removes the branch and its stock rows. The main branch is protected and returns 403.
// @Tags         branches
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Branch UUID"
// @Success      204
// @Failure      403 {object} apierror.APIError
// @Failure      404 {object} apierror.APIError
// @Router       /api/branches/{id} [delete]
func (h *BranchesHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
