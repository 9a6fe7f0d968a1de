package handler

import (
	"net/http"

	"branchpos/internal/apierror"
	"branchpos/internal/dto"
	"branchpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StockHandler struct {
	allocator service.AllocatorService
	transfer  service.TransferService
}

func NewStockHandler(allocator service.AllocatorService, transfer service.TransferService) *StockHandler {
	return &StockHandler{allocator: allocator, transfer: transfer}
}

// Allocate godoc
// @Summary      Allocate one product across branches
// @Description  Upserts branch stock rows: existing quantities merge additively. All entries commit as one unit. Negative quantities correct earlier allocations and are rejected if they would underflow.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AllocateStockRequest true "Allocation"
// @Success      201  {array}  dto.AllocatedStockRow
// @Failure      404  {object} apierror.APIError
// @Router       /api/allocate-stock [post]
func (h *StockHandler) Allocate(c *gin.Context) {
	var req dto.AllocateStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.allocator.Allocate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListAllocated godoc
// @Summary      Allocated stock across branches
// @Description  Joined view of branch stock with product, category and branch names.
// @Tags         stock
// @Produce      json
// @Security     BearerAuth
// @Param        branch_id   query string false "Branch UUID"
// @Param        category_id query string false "Category UUID"
// @Param        sku         query string false "Exact SKU"
// @Success      200 {array} dto.AllocatedStockRow
// @Router       /api/allocated-stocks [get]
func (h *StockHandler) ListAllocated(c *gin.Context) {
	var filter dto.AllocatedStockFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.allocator.ListAllocated(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListLedger godoc
// @Summary      Raw stock ledger rows for a branch
// @Description  The branch_products rows as stored, without the joined view's names.
// @Tags         stock
// @Produce      json
// @Security     BearerAuth
// @Param        branch_id query string true "Branch UUID"
// @Success      200 {array}  dto.BranchLedgerRow
// @Failure      404 {object} apierror.APIError
// @Router       /api/allocate-stock [get]
func (h *StockHandler) ListLedger(c *gin.Context) {
	branchID, err := uuid.Parse(c.Query("branch_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid branch_id"))
		return
	}
	resp, err := h.allocator.ListLedger(c.Request.Context(), branchID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListBranchProducts godoc
// @Summary      Products stocked at a branch
// @Tags         stock
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Branch UUID"
// @Success      200 {array} dto.AllocatedStockRow
// @Router       /api/branches/{id}/products [get]
func (h *StockHandler) ListBranchProducts(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.allocator.ListAllocated(c.Request.Context(), dto.AllocatedStockFilter{BranchID: id.String()})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Transfer godoc
// @Summary      Transfer stock between branches
// @Description  Atomically decrements the source branch and credits the destination. Source defaults to the main branch when from_branch_id is omitted.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.TransferStockRequest true "Transfer"
// @Success      200  {object} dto.TransferStockResponse
// @Failure      404  {object} apierror.APIError
// @Router       /api/products/transfer [post]
func (h *StockHandler) Transfer(c *gin.Context) {
	var req dto.TransferStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.transfer.Transfer(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
