package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	SKU          string          `json:"sku"           validate:"required,min=3,max=40"`
	Name         string          `json:"name"          validate:"required,min=2,max=120"`
	Description  *string         `json:"description"`
	CategoryID   string          `json:"category_id"   validate:"required,uuid"`
	BuyingPrice  decimal.Decimal `json:"buying_price"  validate:"required"`
	SellingPrice decimal.Decimal `json:"selling_price" validate:"required"`
	// InitialStock is allocated to the main branch when > 0
	InitialStock int `json:"initial_stock" validate:"min=0"`
}

type UpdateProductRequest struct {
	Name         *string          `json:"name"          validate:"omitempty,min=2,max=120"`
	Description  *string          `json:"description"`
	CategoryID   *string          `json:"category_id"   validate:"omitempty,uuid"`
	BuyingPrice  *decimal.Decimal `json:"buying_price"`
	SellingPrice *decimal.Decimal `json:"selling_price"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	SKU        string `form:"sku"`
	Name       string `form:"name"`
	CategoryID string `form:"category_id"`
	Active     string `form:"active"` // "false" = inactive, "all" = everything, default active
	Page       int    `form:"page,default=1"  validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  *string         `json:"description"`
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name,omitempty"`
	BuyingPrice  decimal.Decimal `json:"buying_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Active       bool            `json:"active"`
	CreatedAt    string          `json:"created_at"`
}

type ProductListResponse struct {
	Data       []ProductResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// PriceCheckResponse is returned by the public price check endpoint (no auth required).
type PriceCheckResponse struct {
	Name           string          `json:"name"`
	SellingPrice   decimal.Decimal `json:"selling_price"`
	StockAvailable int             `json:"stock_available"`
	Category       string          `json:"category"`
}
