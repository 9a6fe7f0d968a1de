package handler

import (
	"net/http"

	"branchpos/internal/apierror"
	"branchpos/internal/dto"
	"branchpos/internal/service"

	"github.com/gin-gonic/gin"
)

type TransactionsHandler struct{ svc service.SettlementService }

func NewTransactionsHandler(svc service.SettlementService) *TransactionsHandler {
	return &TransactionsHandler{svc: svc}
}

// Record godoc
// @Summary      Record a transaction
// @Description  Appends a ledger row by SKU without touching stock, for sales captured outside the settlement path. Branch defaults to the main branch.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RecordTransactionRequest true "Transaction"
// @Success      201  {object} dto.TransactionResponse
// @Failure      404  {object} apierror.APIError
// @Router       /api/transactions [post]
func (h *TransactionsHandler) Record(c *gin.Context) {
	var req dto.RecordTransactionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Record(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List transactions
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        branch_id query string false "Branch UUID"
// @Param        sku       query string false "Exact SKU"
// @Param        date      query string false "YYYY-MM-DD"
// @Param        page      query int    false "Page (default 1)"
// @Param        limit     query int    false "Rows per page (default 50)"
// @Success      200 {object} dto.TransactionListResponse
// @Router       /api/transactions [get]
func (h *TransactionsHandler) List(c *gin.Context) {
	var filter dto.TransactionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
