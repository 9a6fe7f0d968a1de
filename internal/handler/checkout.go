package handler

import (
	"net/http"

	"branchpos/internal/dto"
	"branchpos/internal/service"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct{ svc service.SettlementService }

func NewCheckoutHandler(svc service.SettlementService) *CheckoutHandler {
	return &CheckoutHandler{svc: svc}
}

// SettleSale godoc
// @Summary      Settle a sale
// @Description  Decrements branch stock and appends one ledger row per cart line, all-or-nothing. Insufficient stock on any line rejects the whole cart.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.SettleSaleRequest true "Cart"
// @Success      201  {object} dto.SettleSaleResponse
// @Failure      404  {object} apierror.APIError
// @Router       /api/update-stock [post]
func (h *CheckoutHandler) SettleSale(c *gin.Context) {
	var req dto.SettleSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Settle(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
