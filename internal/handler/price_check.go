package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"branchpos/internal/apierror"
	"branchpos/internal/dto"
	"branchpos/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const priceCacheTTL = 4 * time.Hour

// PriceCheckHandler serves the public price check endpoint.
// No authentication required — no side effects whatsoever.
type PriceCheckHandler struct {
	productRepo repository.ProductRepository
	stockRepo   repository.BranchStockRepository
	rdb         *redis.Client
}

func NewPriceCheckHandler(productRepo repository.ProductRepository, stockRepo repository.BranchStockRepository, rdb *redis.Client) *PriceCheckHandler {
	return &PriceCheckHandler{productRepo: productRepo, stockRepo: stockRepo, rdb: rdb}
}

// GetPriceBySKU godoc
// @Summary      Price check by SKU (no authentication)
// @Tags         price
// @Produce      json
// @Param        sku path string true "SKU"
// @Success      200 {object} dto.PriceCheckResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/price/{sku} [get]
func (h *PriceCheckHandler) GetPriceBySKU(c *gin.Context) {
	sku := c.Param("sku")
	ctx := c.Request.Context()
	cacheKey := "price:" + sku

	// 1. Try Redis cache
	if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var resp dto.PriceCheckResponse
		if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	// 2. Cache miss — query DB
	product, err := h.productRepo.FindBySKU(ctx, sku)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("product not found"))
		return
	}

	// Sum stock across branches for availability
	available := 0
	rows, err := h.stockRepo.ListAllocated(ctx, dto.AllocatedStockFilter{SKU: sku})
	if err == nil {
		for _, row := range rows {
			available += row.Quantity
		}
	}

	resp := dto.PriceCheckResponse{
		Name:           product.Name,
		SellingPrice:   product.SellingPrice,
		StockAvailable: available,
	}
	if product.Category != nil {
		resp.Category = product.Category.Name
	}

	// 3. Populate cache — best effort, ignore errors
	if b, jsonErr := json.Marshal(resp); jsonErr == nil {
		_ = h.rdb.Set(context.Background(), cacheKey, b, priceCacheTTL).Err()
	}

	c.JSON(http.StatusOK, resp)
}
